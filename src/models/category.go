package models

import "eventify/src/types"

// Category is a seating/price tier with fixed capacity. Booked is a
// denormalized count of claimed tickets and must stay within [0, Seats].
type Category struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	EventID     uint    `gorm:"index:idx_category_event_title,unique" json:"event_id,omitempty"`
	Title       string  `gorm:"index:idx_category_event_title,unique" json:"title,omitempty"`
	Seats       uint    `json:"seats,omitempty"`
	Booked      uint    `json:"booked"`
	TicketPrice float32 `json:"ticket_price"`
	Currency    string  `gorm:"default:'usd'" json:"currency,omitempty"`

	Event   Event    `json:"-"`
	Tickets []Ticket `gorm:"foreignKey:category_id" json:"tickets,omitempty"`

	types.Timestamps
}
