package common

import (
	"context"
	"errors"
	"eventify/src/db"
	"eventify/src/lib"
	"eventify/src/models"
	"eventify/src/types"
	"log"

	"gorm.io/gorm"
)

// CancelBooking is the explicit cancellation path (user or admin). A
// pending booking has its intent cancelled; a booked one gets a refund
// request, which the refund webhook later settles on the payment record.
// Tickets are released here either way, under the same once-only guard
// the reconciler uses. Cancelling an already terminal booking is a no-op.
func CancelBooking(ctx context.Context, bookingId uint) error {
	var intentToCancel string
	var intentToRefund string
	dbi := db.GetDb()
	err := dbi.Transaction(func(tx *gorm.DB) error {
		var booking models.Booking
		if err := tx.
			Where(&models.Booking{ID: bookingId}).
			First(&booking).
			Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if booking.Status == types.BOOKING_CANCELED || booking.Status == types.BOOKING_EXPIRED {
			return nil
		}
		var payment models.Payment
		if err := tx.
			Where(&models.Payment{BookingID: booking.ID}).
			First(&payment).
			Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		switch payment.Status {
		case types.PAYMENT_PENDING:
			if err := setPaymentStatus(tx, payment.ID, types.PAYMENT_CANCELED); err != nil {
				return err
			}
			intentToCancel = payment.IntentID
		case types.PAYMENT_PAID:
			intentToRefund = payment.IntentID
		}
		return cancelBookingOnce(tx, &booking, types.BOOKING_CANCELED)
	})
	if err != nil {
		return err
	}

	gw := lib.GetGateway()
	if intentToCancel != "" {
		if err := gw.CancelIntent(ctx, intentToCancel); err != nil {
			log.Printf("Error cancelling payment intent [%s]: %s\n", intentToCancel, err.Error())
		}
	}
	if intentToRefund != "" {
		if err := gw.Refund(ctx, intentToRefund); err != nil {
			log.Printf("Error requesting refund for intent [%s]: %s\n", intentToRefund, err.Error())
		}
	}
	return nil
}
