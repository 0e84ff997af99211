package models

import (
	"eventify/src/types"
	"time"
)

type Event struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	OrganizerID uint      `json:"organizer,omitempty"`
	Name        string    `json:"name,omitempty"`
	Slug        string    `json:"slug,omitempty"`
	About       *string   `json:"about,omitempty"`
	Location    string    `json:"location,omitempty"`
	MeetingURL  *string   `json:"meeting_url,omitempty"`
	StartsAt    time.Time `json:"starts_at,omitempty"`
	EndsAt      time.Time `json:"ends_at,omitempty"`

	Organizer  User       `gorm:"foreignKey:organizer_id" json:"-"`
	Categories []Category `gorm:"foreignKey:event_id" json:"categories,omitempty"`

	types.Timestamps
}

// Status is derived from the schedule, never stored.
func (e *Event) Status(now time.Time) types.EventStatus {
	if now.Before(e.StartsAt) {
		return types.EVENT_UPCOMING
	}
	if now.After(e.EndsAt) {
		return types.EVENT_COMPLETED
	}
	return types.EVENT_ONGOING
}
