package common

import (
	"context"
	"errors"
	"eventify/src/db"
	"eventify/src/lib"
	"eventify/src/models"
	"eventify/src/types"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CheckoutResult struct {
	BookingID    uint   `json:"booking_id"`
	PaymentID    uint   `json:"payment_id"`
	RequestID    string `json:"request_id"`
	ClientSecret string `json:"client_secret"`
}

// Checkout reserves tickets for one category and opens a payment intent
// with the gateway. The intent is created before the local transaction
// so no transaction is held open across the network round-trip; if the
// local writes fail afterwards, the intent is cancelled best-effort. The
// accepted trade-off is a short-lived orphan intent on the gateway side
// rather than a distributed commit protocol.
func Checkout(ctx context.Context, userId uint, params *types.CheckoutRequestBody) (*CheckoutResult, error) {
	dbi := db.GetDb()

	var category models.Category
	if err := dbi.
		Where(&models.Category{EventID: params.EventID, Title: params.Category}).
		Preload("Event").
		First(&category).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	currency := params.Currency
	if currency == "" {
		currency = category.Currency
	}
	unitAmount := int64(math.Round(float64(category.TicketPrice) * 100))
	requestId := uuid.New().String()

	gw := lib.GetGateway()
	intentId, clientSecret, err := gw.CreateIntent(ctx, unitAmount*int64(params.Qty), currency, map[string]string{
		"event_id":   fmt.Sprint(params.EventID),
		"email":      params.Email,
		"request_id": requestId,
	})
	if err != nil {
		log.Printf("Error creating payment intent: %s\n", err.Error())
		return nil, fmt.Errorf("%w: %s", ErrGateway, err.Error())
	}

	var booking models.Booking
	var payment models.Payment
	err = dbi.Transaction(func(tx *gorm.DB) error {
		user := models.User{Email: params.Email}
		if userId > 0 {
			user.ID = userId
			if err := tx.First(&user).Error; err != nil {
				return err
			}
		} else {
			if err := tx.
				Where(&models.User{Email: params.Email}).
				Attrs(&models.User{Phone: params.Phone}).
				FirstOrCreate(&user).
				Error; err != nil {
				return err
			}
		}

		booking = models.Booking{
			UserID:   user.ID,
			EventID:  params.EventID,
			Category: category.Title,
			Qty:      params.Qty,
			Status:   types.BOOKING_PENDING,
		}
		if err := tx.Create(&booking).Error; err != nil {
			return err
		}

		if _, err := ClaimTickets(tx, params.EventID, category.Title, booking.ID, params.Qty); err != nil {
			return err
		}

		payment = models.Payment{
			BookingID: booking.ID,
			Total:     category.TicketPrice * float32(params.Qty),
			Method:    "card",
			Currency:  currency,
			IntentID:  intentId,
			Status:    types.PAYMENT_PENDING,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		cancelIntentBestEffort(ctx, intentId)
		return nil, err
	}

	// The request id goes back to the caller, so a client that lost the
	// response can re-fetch its secret from the cache.
	if rd := lib.GetRedisClient(); rd != nil {
		if _, err := rd.SetEx(ctx, fmt.Sprintf("checkout:%s", requestId), clientSecret, 10*time.Minute).Result(); err != nil {
			log.Printf("Error caching client secret [%s]: %s\n", requestId, err.Error())
		}
	}

	return &CheckoutResult{
		BookingID:    booking.ID,
		PaymentID:    payment.ID,
		RequestID:    requestId,
		ClientSecret: clientSecret,
	}, nil
}

// cancelIntentBestEffort compensates a failed checkout. A cancel failure
// is logged and retried once on a timer; it never masks the primary
// error surfaced to the caller.
func cancelIntentBestEffort(ctx context.Context, intentId string) {
	gw := lib.GetGateway()
	if err := gw.CancelIntent(ctx, intentId); err == nil {
		return
	} else {
		log.Printf("Error cancelling payment intent [%s]: %s\n", intentId, err.Error())
	}
	if _, err := lib.CreateOneTimeCronJob(time.Now().Add(5*time.Minute), func(id string) {
		if err := lib.GetGateway().CancelIntent(context.Background(), id); err != nil {
			log.Printf("Retry cancel of payment intent [%s] failed: %s\n", id, err.Error())
		}
	}, intentId); err != nil {
		log.Printf("Error scheduling cancel retry for intent [%s]: %s\n", intentId, err.Error())
	}
}
