package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type Metadata map[string]any

type EventStatus string

const (
	EVENT_UPCOMING  EventStatus = "upcoming"
	EVENT_ONGOING   EventStatus = "ongoing"
	EVENT_COMPLETED EventStatus = "completed"
)

type BookingStatus string

const (
	BOOKING_PENDING  BookingStatus = "pending"
	BOOKING_BOOKED   BookingStatus = "booked"
	BOOKING_CANCELED BookingStatus = "canceled"
	BOOKING_EXPIRED  BookingStatus = "expired"
)

type PaymentStatus string

const (
	PAYMENT_PENDING  PaymentStatus = "pending"
	PAYMENT_PAID     PaymentStatus = "paid"
	PAYMENT_REJECTED PaymentStatus = "rejected"
	PAYMENT_CANCELED PaymentStatus = "canceled"
	PAYMENT_REFUNDED PaymentStatus = "refunded"
)

// GatewayEventKind is the normalized shape of the webhook events the
// payment gateway emits. The stripe handler maps raw event types onto
// these before reconciliation.
type GatewayEventKind string

const (
	GATEWAY_PAYMENT_SUCCEEDED GatewayEventKind = "payment_succeeded"
	GATEWAY_PAYMENT_FAILED    GatewayEventKind = "payment_failed"
	GATEWAY_PAYMENT_CANCELED  GatewayEventKind = "payment_canceled"
	GATEWAY_CHARGE_REFUNDED   GatewayEventKind = "charge_refunded"
)

type CreateEventRequestBody struct {
	Name        string                      `json:"name" binding:"required"`
	Description string                      `json:"description,omitempty"`
	Location    string                      `json:"location,omitempty"`
	MeetingURL  string                      `json:"meeting_url,omitempty"`
	StartsAt    string                      `json:"starts_at" binding:"required,bookabledate" time_format:"2006-01-02 15:04:05 -07:00"`
	EndsAt      string                      `json:"ends_at" binding:"required,bookabledate,gtdate=StartsAt" time_format:"2006-01-02 15:04:05 -07:00"`
	Categories  []CreateCategoryRequestBody `json:"categories" binding:"required,min=1,dive"`
}

type CreateCategoryRequestBody struct {
	Title       string  `json:"title" binding:"required"`
	Seats       uint    `json:"seats" binding:"required,min=1"`
	TicketPrice float32 `json:"ticket_price" binding:"required"`
	Currency    string  `json:"currency,omitempty"`
}

type CheckoutRequestBody struct {
	EventID  uint   `json:"event" binding:"required"`
	Category string `json:"category" binding:"required"`
	Qty      uint   `json:"qty" binding:"required,min=1"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone,omitempty"`
	Currency string `json:"currency,omitempty"`
}

type RegisterUserRequestBody struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email" binding:"required,email"`
}

type LoginRequestBody struct {
	Email string `json:"email" binding:"required,email"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type VerifyTicketQuery struct {
	Token string `form:"token" binding:"required"`
}

type TicketCodeURIParams struct {
	TicketID uint `uri:"id" binding:"required"`
}

// TicketToken is the payload sealed inside a ticket QR code.
type TicketToken struct {
	TicketID  uint      `json:"ticket_id"`
	BookingID uint      `json:"booking_id"`
	IssuedAt  time.Time `json:"issued_at"`
}

// TicketVerification is what an usher-facing scanner gets back.
type TicketVerification struct {
	Valid    bool       `json:"valid"`
	Reason   string     `json:"reason"`
	Attendee string     `json:"attendee,omitempty"`
	Event    string     `json:"event,omitempty"`
	Category string     `json:"category,omitempty"`
	StartsAt *time.Time `json:"starts_at,omitempty"`
}

const (
	REASON_VALID           = "Valid"
	REASON_INVALID         = "Invalid"
	REASON_PAYMENT_REJECT  = "PaymentRejected"
	REASON_REFUNDED        = "Refunded"
	REASON_PAYMENT_PENDING = "PaymentPending"
	REASON_CANCELED        = "Cancelled"
	REASON_EXPIRED         = "Expired"
)

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}
