package common

import (
	"context"
	"errors"
	"eventify/src/db"
	"eventify/src/lib"
	"eventify/src/lib/mailer"
	"eventify/src/models"
	"eventify/src/types"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
)

// HandleGatewayEvent applies one gateway webhook to local state. It is
// idempotent: every transition is guarded on the current payment and
// booking status, so redelivered or reordered events settle on the same
// end state, tickets are released at most once, and notifications fire
// at most once. An event for an unknown intent is a recognized no-op,
// not an error, since the gateway may retry webhooks long after local
// cleanup. A non-nil return means the caller should answer 5xx so the
// gateway retries. The redis dedup marker is written only after the
// transaction commits; a marker claimed up front would swallow the
// redelivery of an event whose first processing failed transiently.
func HandleGatewayEvent(ctx context.Context, eventId string, kind types.GatewayEventKind, intentId string) error {
	var dedupKey string
	rd := lib.GetRedisClient()
	if rd != nil && eventId != "" {
		dedupKey = fmt.Sprintf("gateway:event:%s", eventId)
		if seen, err := rd.Exists(ctx, dedupKey).Result(); err == nil && seen > 0 {
			log.Printf("[GatewayEvent] %s already processed, skipping\n", eventId)
			return nil
		}
	}

	var booking models.Booking
	var notify types.GatewayEventKind
	dbi := db.GetDb()
	err := dbi.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		if err := tx.
			Where(&models.Payment{IntentID: intentId}).
			First(&payment).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("[GatewayEvent] no payment for intent [%s], skipping\n", intentId)
				return nil
			}
			return err
		}
		if err := tx.
			Where(&models.Booking{ID: payment.BookingID}).
			Preload("User").
			Preload("Event").
			First(&booking).
			Error; err != nil {
			return err
		}

		switch kind {
		case types.GATEWAY_PAYMENT_SUCCEEDED:
			if payment.Status != types.PAYMENT_PENDING {
				log.Printf("[GatewayEvent] payment [%d] is %s, success is a no-op\n", payment.ID, payment.Status)
				return nil
			}
			if booking.Status != types.BOOKING_PENDING {
				// The sweep got there first; the seats are gone.
				log.Printf("[GatewayEvent] booking [%d] is %s, cannot confirm payment [%d]\n", booking.ID, booking.Status, payment.ID)
				return nil
			}
			if err := setPaymentStatus(tx, payment.ID, types.PAYMENT_PAID); err != nil {
				return err
			}
			if err := setBookingStatus(tx, booking.ID, types.BOOKING_BOOKED); err != nil {
				return err
			}
			notify = types.GATEWAY_PAYMENT_SUCCEEDED

		case types.GATEWAY_PAYMENT_FAILED, types.GATEWAY_PAYMENT_CANCELED:
			target := types.PAYMENT_REJECTED
			if kind == types.GATEWAY_PAYMENT_CANCELED {
				target = types.PAYMENT_CANCELED
			}
			if payment.Status != types.PAYMENT_PENDING {
				log.Printf("[GatewayEvent] payment [%d] is %s, %s is a no-op\n", payment.ID, payment.Status, kind)
				return nil
			}
			if err := setPaymentStatus(tx, payment.ID, target); err != nil {
				return err
			}
			if err := cancelBookingOnce(tx, &booking, types.BOOKING_CANCELED); err != nil {
				return err
			}
			if kind == types.GATEWAY_PAYMENT_FAILED {
				notify = types.GATEWAY_PAYMENT_FAILED
			}

		case types.GATEWAY_CHARGE_REFUNDED:
			if payment.Status == types.PAYMENT_REFUNDED {
				log.Printf("[GatewayEvent] payment [%d] already refunded\n", payment.ID)
				return nil
			}
			if err := setPaymentStatus(tx, payment.ID, types.PAYMENT_REFUNDED); err != nil {
				return err
			}
			if err := cancelBookingOnce(tx, &booking, types.BOOKING_CANCELED); err != nil {
				return err
			}
			notify = types.GATEWAY_CHARGE_REFUNDED

		default:
			log.Printf("[GatewayEvent] unhandled kind %s for intent [%s]\n", kind, intentId)
		}
		return nil
	})
	if err != nil {
		log.Printf("Error reconciling gateway event [%s]: %s\n", eventId, err.Error())
		return err
	}
	if rd != nil && dedupKey != "" {
		if err := rd.Set(ctx, dedupKey, 1, 24*time.Hour).Err(); err != nil {
			log.Printf("Error marking gateway event [%s] as processed: %s\n", eventId, err.Error())
		}
	}

	// Notification is a side effect outside the transaction; a delivery
	// failure must not undo a committed payment confirmation.
	if notify != "" && booking.User != nil && booking.Event != nil {
		n := mailer.GetNotifier()
		var nerr error
		switch notify {
		case types.GATEWAY_PAYMENT_SUCCEEDED:
			nerr = n.NotifyBookingConfirmed(booking.ID, booking.User.Email, booking.Event.Name)
		case types.GATEWAY_PAYMENT_FAILED:
			nerr = n.NotifyPaymentFailed(booking.ID, booking.User.Email, booking.Event.Name)
		case types.GATEWAY_CHARGE_REFUNDED:
			nerr = n.NotifyRefunded(booking.ID, booking.User.Email, booking.Event.Name)
		}
		if nerr != nil {
			log.Printf("Error notifying user for booking [%d]: %s\n", booking.ID, nerr.Error())
		}
	}
	return nil
}

func setPaymentStatus(tx *gorm.DB, paymentId uint, status types.PaymentStatus) error {
	return tx.
		Model(&models.Payment{}).
		Where(&models.Payment{ID: paymentId}).
		Update("status", status).
		Error
}

func setBookingStatus(tx *gorm.DB, bookingId uint, status types.BookingStatus) error {
	return tx.
		Model(&models.Booking{}).
		Where(&models.Booking{ID: bookingId}).
		Update("status", status).
		Error
}

// cancelBookingOnce moves a live booking to a terminal state and
// releases its tickets. A booking already in a terminal state keeps it
// and keeps its (already released) tickets untouched, which is what
// makes release exactly-once under duplicate and reordered webhooks.
func cancelBookingOnce(tx *gorm.DB, booking *models.Booking, target types.BookingStatus) error {
	if booking.Status != types.BOOKING_PENDING && booking.Status != types.BOOKING_BOOKED {
		return nil
	}
	if err := setBookingStatus(tx, booking.ID, target); err != nil {
		return err
	}
	booking.Status = target
	return ReleaseTickets(tx, booking.ID)
}
