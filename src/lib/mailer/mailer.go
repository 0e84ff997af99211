package mailer

import (
	"eventify/src/lib"
	"fmt"
	"os"
)

// Notifier is the downstream ticket-delivery sink. Calls are
// fire-and-forget from the reconciler's perspective; a delivery failure
// never rolls back a committed state transition.
type Notifier interface {
	NotifyBookingConfirmed(bookingId uint, email string, eventName string) error
	NotifyPaymentFailed(bookingId uint, email string, eventName string) error
	NotifyRefunded(bookingId uint, email string, eventName string) error
}

var notifier Notifier

func GetNotifier() Notifier {
	if notifier != nil {
		return notifier
	}
	notifier = &SMTPNotifier{}
	return notifier
}

// NewNotifier replaces the notifier instance, used by tests.
func NewNotifier(n Notifier) {
	notifier = n
}

type SMTPNotifier struct{}

func (SMTPNotifier) send(to, subject, body string) error {
	return lib.SendMail(&lib.SendMailInput{
		From:     os.Getenv("MAIL_FROM"),
		FromName: "Eventify",
		To:       []string{to},
		Subject:  subject,
		Body:     body,
	})
}

func (n SMTPNotifier) NotifyBookingConfirmed(bookingId uint, email string, eventName string) error {
	subject := fmt.Sprintf("Your tickets for %s are confirmed", eventName)
	body := fmt.Sprintf("Booking #%d is confirmed. Your tickets are attached to your account and ready to download.", bookingId)
	return n.send(email, subject, body)
}

func (n SMTPNotifier) NotifyPaymentFailed(bookingId uint, email string, eventName string) error {
	subject := fmt.Sprintf("Payment failed for %s", eventName)
	body := fmt.Sprintf("The payment for booking #%d did not go through and the seats were returned to the pool. You can retry the checkout with a valid payment method.", bookingId)
	return n.send(email, subject, body)
}

func (n SMTPNotifier) NotifyRefunded(bookingId uint, email string, eventName string) error {
	subject := fmt.Sprintf("Refund issued for %s", eventName)
	body := fmt.Sprintf("The payment for booking #%d was refunded. The refund should appear on your statement within a few business days.", bookingId)
	return n.send(email, subject, body)
}
