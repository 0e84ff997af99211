package models

import "eventify/src/types"

// Payment is the single payment attempt attached to a booking. IntentID
// correlates it with the gateway-side payment intent.
type Payment struct {
	ID        uint                `gorm:"primarykey" json:"id"`
	BookingID uint                `gorm:"uniqueIndex" json:"booking_id,omitempty"`
	Total     float32             `json:"total,omitempty"`
	Method    string              `json:"method,omitempty"`
	Currency  string              `gorm:"default:'usd'" json:"currency,omitempty"`
	IntentID  string              `gorm:"index" json:"-"`
	Status    types.PaymentStatus `gorm:"default:'pending'" json:"status,omitempty"`

	Booking *Booking `json:"-"`

	types.Timestamps
}
