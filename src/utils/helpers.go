package utils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"eventify/src/config"
	"eventify/src/db"
	"eventify/src/models"
	"eventify/src/types"
	"io"
	"log"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// CreateNewEvent persists the event with its categories and
// pre-materializes the ticket rows, one per seat. Inventory is a fixed
// set of addressable slots from the start; bookings only ever claim
// existing rows, never insert new ones.
func CreateNewEvent(organizerId uint, params *types.CreateEventRequestBody) (uint, error) {
	startsAt, err := time.Parse(config.TIME_PARSE_FORMAT, params.StartsAt)
	if err != nil {
		log.Printf("Error parsing starts_at: %s\n", err.Error())
		return 0, err
	}
	endsAt, err := time.Parse(config.TIME_PARSE_FORMAT, params.EndsAt)
	if err != nil {
		log.Printf("Error parsing ends_at: %s\n", err.Error())
		return 0, err
	}

	event := models.Event{
		OrganizerID: organizerId,
		Name:        params.Name,
		Slug:        slug.Make(params.Name),
		About:       &params.Description,
		Location:    params.Location,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
	}
	if params.MeetingURL != "" {
		event.MeetingURL = &params.MeetingURL
	}

	dbi := db.GetDb()
	err = dbi.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		for _, c := range params.Categories {
			currency := c.Currency
			if currency == "" {
				currency = "usd"
			}
			category := models.Category{
				EventID:     event.ID,
				Title:       c.Title,
				Seats:       c.Seats,
				TicketPrice: c.TicketPrice,
				Currency:    currency,
			}
			if err := tx.Create(&category).Error; err != nil {
				return err
			}
			tickets := make([]models.Ticket, 0, c.Seats)
			for place := uint(1); place <= c.Seats; place++ {
				tickets = append(tickets, models.Ticket{
					EventID:    event.ID,
					CategoryID: category.ID,
					Place:      place,
				})
			}
			if err := tx.Create(&tickets).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("CreateNewEvent failed: %s\n", err.Error())
		return 0, err
	}
	return event.ID, nil
}

// IssueTicketToken seals {ticket, booking, issued_at} into the opaque
// string embedded in the QR code.
func IssueTicketToken(ticketId, bookingId uint) (string, error) {
	key, err := config.TicketCodeKey()
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(&types.TicketToken{
		TicketID:  ticketId,
		BookingID: bookingId,
		IssuedAt:  time.Now(),
	})
	if err != nil {
		return "", err
	}
	return EncryptMessage(key, string(raw))
}

func EncryptMessage(key []byte, message string) (string, error) {
	plaintext := []byte(message)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	cipherText := gcm.Seal(nonce, nonce, plaintext, nil)
	encodedString := hex.EncodeToString(cipherText)

	return encodedString, nil
}

func DecryptMessage(key []byte, message string) (*string, error) {
	cipherText, err := hex.DecodeString(message)
	if err != nil {
		return nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(cipherText) < gcm.NonceSize() {
		return nil, aes.KeySizeError(len(cipherText))
	}
	decryptedData, err := gcm.Open(nil, cipherText[:gcm.NonceSize()], cipherText[gcm.NonceSize():], nil)
	if err != nil {
		return nil, err
	}
	decodedString := string(decryptedData)

	return &decodedString, nil
}
