package common

import (
	"context"
	"eventify/src/config"
	"eventify/src/db"
	"eventify/src/lib"
	"eventify/src/models"
	"eventify/src/types"
	"log"
	"time"

	"gorm.io/gorm"
)

// ExpirePendingBookings releases the tickets of pending bookings whose
// payment never reached a terminal state within the configured TTL. The
// status is re-checked inside each transaction, so a webhook landing
// between the scan and the expiry wins and the release still happens
// exactly once.
func ExpirePendingBookings() {
	cutoff := time.Now().Add(-config.BookingTTL())
	dbi := db.GetDb()

	var ids []uint
	if err := dbi.
		Model(&models.Booking{}).
		Where("status = ? AND created_at < ?", types.BOOKING_PENDING, cutoff).
		Pluck("id", &ids).
		Error; err != nil {
		log.Printf("Error scanning for expired bookings: %s\n", err.Error())
		return
	}

	for _, id := range ids {
		var intentId string
		err := dbi.Transaction(func(tx *gorm.DB) error {
			var booking models.Booking
			if err := tx.
				Where(&models.Booking{ID: id}).
				First(&booking).
				Error; err != nil {
				return err
			}
			if booking.Status != types.BOOKING_PENDING {
				return nil
			}
			var payment models.Payment
			if err := tx.
				Where(&models.Payment{BookingID: booking.ID, Status: types.PAYMENT_PENDING}).
				First(&payment).
				Error; err == nil {
				if err := setPaymentStatus(tx, payment.ID, types.PAYMENT_CANCELED); err != nil {
					return err
				}
				intentId = payment.IntentID
			}
			return cancelBookingOnce(tx, &booking, types.BOOKING_EXPIRED)
		})
		if err != nil {
			log.Printf("Error expiring booking [%d]: %s\n", id, err.Error())
			continue
		}
		if intentId != "" {
			if err := lib.GetGateway().CancelIntent(context.Background(), intentId); err != nil {
				log.Printf("Error cancelling payment intent [%s] for expired booking [%d]: %s\n", intentId, id, err.Error())
			}
		}
		log.Printf("Booking [%d] expired, tickets released\n", id)
	}
}

// StartSweep schedules the expiry sweep on the shared scheduler.
func StartSweep() {
	if _, err := lib.CreateCronJob(ExpirePendingBookings, config.SweepInterval()); err != nil {
		log.Printf("Error scheduling booking expiry sweep: %s\n", err.Error())
	}
}
