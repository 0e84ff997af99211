package models

import "eventify/src/types"

// Booking keeps the category title, not the id. Retitling a category
// after the fact orphans the reference; readers resolve the category
// through the claimed tickets instead.
type Booking struct {
	ID       uint                `gorm:"primarykey" json:"id"`
	UserID   uint                `json:"user_id,omitempty"`
	EventID  uint                `json:"event_id,omitempty"`
	Category string              `json:"category,omitempty"`
	Qty      uint                `json:"qty,omitempty"`
	Status   types.BookingStatus `gorm:"default:'pending'" json:"status,omitempty"`

	User    *User    `gorm:"foreignKey:user_id" json:"user,omitempty"`
	Event   *Event   `gorm:"foreignKey:event_id" json:"event,omitempty"`
	Tickets []Ticket `gorm:"foreignKey:booking_id" json:"tickets,omitempty"`
	Payment *Payment `gorm:"foreignKey:booking_id" json:"payment,omitempty"`

	types.Timestamps
}
