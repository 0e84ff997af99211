package common

import (
	"errors"
	"eventify/src/db"
	"eventify/src/models"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate takes a row lock on supported dialects. The sqlite
// driver used in tests serializes writers on its own and rejects the
// FOR UPDATE syntax.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// CountAvailable returns the number of free ticket slots in a category,
// i.e. pre-materialized ticket rows not claimed by any booking.
func CountAvailable(eventId uint, categoryTitle string) (int64, error) {
	db := db.GetDb()
	var category models.Category
	if err := db.
		Where(&models.Category{EventID: eventId, Title: categoryTitle}).
		First(&category).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	var count int64
	if err := db.
		Model(&models.Ticket{}).
		Where("category_id = ? AND booking_id IS NULL", category.ID).
		Count(&count).
		Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ClaimTickets assigns qty free slots of the category to the booking and
// bumps the denormalized booked counter, all inside the caller's
// transaction. The category row is locked first so concurrent claims
// against the same category serialize; the count seen after the lock is
// the count that holds at commit. Slots are taken in ascending ticket id
// order. Returns ErrInsufficientInventory when fewer than qty are free.
func ClaimTickets(tx *gorm.DB, eventId uint, categoryTitle string, bookingId uint, qty uint) ([]uint, error) {
	var category models.Category
	if err := lockForUpdate(tx).
		Where(&models.Category{EventID: eventId, Title: categoryTitle}).
		First(&category).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var tickets []models.Ticket
	if err := tx.
		Where("category_id = ? AND booking_id IS NULL", category.ID).
		Order("id asc").
		Limit(int(qty)).
		Find(&tickets).
		Error; err != nil {
		return nil, err
	}
	if uint(len(tickets)) < qty {
		return nil, ErrInsufficientInventory
	}

	ids := make([]uint, 0, len(tickets))
	for _, t := range tickets {
		ids = append(ids, t.ID)
	}
	if err := tx.
		Model(&models.Ticket{}).
		Where("id IN ?", ids).
		Update("booking_id", bookingId).
		Error; err != nil {
		return nil, err
	}
	if err := tx.
		Model(&models.Category{}).
		Where(&models.Category{ID: category.ID}).
		Update("booked", gorm.Expr("booked + ?", qty)).
		Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ReleaseTickets returns every slot held by the booking to the pool and
// decrements the booked counters. Claimed rows are never deleted; a
// release clears BookingID only. Callers are responsible for invoking
// this at most once per booking (guarded by the booking status
// transition), so the counters cannot go negative.
func ReleaseTickets(tx *gorm.DB, bookingId uint) error {
	var tickets []models.Ticket
	if err := tx.
		Where("booking_id = ?", bookingId).
		Find(&tickets).
		Error; err != nil {
		return err
	}
	if len(tickets) == 0 {
		return nil
	}

	perCategory := map[uint]uint{}
	for _, t := range tickets {
		perCategory[t.CategoryID]++
	}
	if err := tx.
		Model(&models.Ticket{}).
		Where("booking_id = ?", bookingId).
		Update("booking_id", nil).
		Error; err != nil {
		return err
	}
	for categoryId, n := range perCategory {
		var category models.Category
		if err := lockForUpdate(tx).
			Where(&models.Category{ID: categoryId}).
			First(&category).
			Error; err != nil {
			return err
		}
		released := n
		if released > category.Booked {
			log.Printf("Category [%d] booked counter below released count %d; clamping\n", categoryId, n)
			released = category.Booked
		}
		if err := tx.
			Model(&models.Category{}).
			Where(&models.Category{ID: categoryId}).
			Update("booked", category.Booked-released).
			Error; err != nil {
			return err
		}
	}
	return nil
}
