package common

import (
	"encoding/json"
	"errors"
	"eventify/src/config"
	"eventify/src/db"
	"eventify/src/models"
	"eventify/src/types"
	"eventify/src/utils"
	"log"
	"time"

	"gorm.io/gorm"
)

// VerifyTicket decrypts a scanned ticket code and reconstructs validity
// from current ticket, booking, payment and event state. Checks run in a
// fixed precedence (payment problems first, then cancellation, then
// expiry) so the scanner surfaces the most actionable reason. Read-only.
func VerifyTicket(token string) (*types.TicketVerification, error) {
	key, err := config.TicketCodeKey()
	if err != nil {
		log.Printf("Could not read ticket code key: %s\n", err.Error())
		return nil, ErrInvalidToken
	}
	message, err := utils.DecryptMessage(key, token)
	if err != nil {
		log.Printf("Error decrypting ticket code: %s\n", err.Error())
		return nil, ErrInvalidToken
	}
	var tok types.TicketToken
	if err := json.Unmarshal([]byte(*message), &tok); err != nil {
		return nil, ErrInvalidToken
	}
	if tok.TicketID == 0 || tok.BookingID == 0 {
		return nil, ErrInvalidToken
	}

	dbi := db.GetDb()
	var ticket models.Ticket
	if err := dbi.Where(&models.Ticket{ID: tok.TicketID}).First(&ticket).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var booking models.Booking
	if err := dbi.
		Where(&models.Booking{ID: tok.BookingID}).
		Preload("User").
		First(&booking).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var payment models.Payment
	if err := dbi.Where(&models.Payment{BookingID: booking.ID}).First(&payment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var event models.Event
	if err := dbi.Where(&models.Event{ID: ticket.EventID}).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	// The booking keeps only the category title; resolve the live row
	// through the ticket so a retitled category still displays.
	var category models.Category
	if err := dbi.Where(&models.Category{ID: ticket.CategoryID}).First(&category).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	result := &types.TicketVerification{
		Attendee: booking.User.Name,
		Event:    event.Name,
		Category: category.Title,
		StartsAt: &event.StartsAt,
	}

	switch {
	case payment.Status == types.PAYMENT_REJECTED:
		result.Reason = types.REASON_PAYMENT_REJECT
	case payment.Status == types.PAYMENT_REFUNDED:
		result.Reason = types.REASON_REFUNDED
	case payment.Status == types.PAYMENT_PENDING:
		result.Reason = types.REASON_PAYMENT_PENDING
	case booking.Status == types.BOOKING_CANCELED:
		result.Reason = types.REASON_CANCELED
	case event.EndsAt.Before(time.Now()):
		result.Reason = types.REASON_EXPIRED
	case payment.Status == types.PAYMENT_PAID && booking.Status == types.BOOKING_BOOKED &&
		ticket.BookingID != nil && *ticket.BookingID == booking.ID:
		result.Valid = true
		result.Reason = types.REASON_VALID
	default:
		result.Reason = types.REASON_INVALID
	}
	return result, nil
}
