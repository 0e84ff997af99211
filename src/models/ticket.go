package models

import "eventify/src/types"

// Ticket is one pre-materialized seat slot. Rows are created when the
// event is created, one per seat, and are claimed by setting BookingID.
// A nil BookingID means the slot is available.
type Ticket struct {
	ID         uint   `gorm:"primarykey" json:"id"`
	EventID    uint   `json:"event_id,omitempty"`
	CategoryID uint   `gorm:"index" json:"category_id,omitempty"`
	Place      uint   `json:"place,omitempty"`
	Type       string `gorm:"default:'general'" json:"type,omitempty"`
	BookingID  *uint  `gorm:"index" json:"booking_id,omitempty"`

	Event    Event    `json:"-"`
	Category Category `json:"-"`
	Booking  *Booking `json:"-"`

	types.Timestamps
}
