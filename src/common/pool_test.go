package common

import (
	"eventify/src/models"
	"eventify/src/types"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createPendingBooking(t *testing.T, gdb *gorm.DB, event *models.Event, categoryTitle string, qty uint) *models.Booking {
	t.Helper()
	booking := models.Booking{
		UserID:   event.OrganizerID,
		EventID:  event.ID,
		Category: categoryTitle,
		Qty:      qty,
		Status:   types.BOOKING_PENDING,
	}
	require.NoError(t, gdb.Create(&booking).Error)
	return &booking
}

func TestClaimTickets(t *testing.T) {
	gdb := newTestDB(t)
	event := seedEvent(t, gdb, "General", 5)
	booking := createPendingBooking(t, gdb, event, "General", 2)

	var ids []uint
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var err error
		ids, err = ClaimTickets(tx, event.ID, "General", booking.ID, 2)
		return err
	})
	require.NoError(t, err)
	require.Len(t, ids, 2)

	// Lowest-id free slots first.
	var all []models.Ticket
	require.NoError(t, gdb.Where(&models.Ticket{EventID: event.ID}).Order("id asc").Find(&all).Error)
	assert.Equal(t, []uint{all[0].ID, all[1].ID}, ids)
	for _, ticket := range all[:2] {
		require.NotNil(t, ticket.BookingID)
		assert.Equal(t, booking.ID, *ticket.BookingID)
	}
	for _, ticket := range all[2:] {
		assert.Nil(t, ticket.BookingID)
	}

	category := mustCategory(t, gdb, event.ID, "General")
	assert.Equal(t, uint(2), category.Booked)

	available, err := CountAvailable(event.ID, "General")
	require.NoError(t, err)
	assert.Equal(t, int64(3), available)
}

func TestClaimTicketsInsufficientInventory(t *testing.T) {
	gdb := newTestDB(t)
	event := seedEvent(t, gdb, "General", 3)
	booking := createPendingBooking(t, gdb, event, "General", 4)

	err := gdb.Transaction(func(tx *gorm.DB) error {
		_, err := ClaimTickets(tx, event.ID, "General", booking.ID, 4)
		return err
	})
	require.ErrorIs(t, err, ErrInsufficientInventory)

	// The failed claim leaves no partial assignment behind.
	available, err := CountAvailable(event.ID, "General")
	require.NoError(t, err)
	assert.Equal(t, int64(3), available)
	category := mustCategory(t, gdb, event.ID, "General")
	assert.Equal(t, uint(0), category.Booked)
}

func TestClaimTicketsUnknownCategory(t *testing.T) {
	gdb := newTestDB(t)
	event := seedEvent(t, gdb, "General", 3)

	err := gdb.Transaction(func(tx *gorm.DB) error {
		_, err := ClaimTickets(tx, event.ID, "Balcony", 1, 1)
		return err
	})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReleaseTickets(t *testing.T) {
	gdb := newTestDB(t)
	event := seedEvent(t, gdb, "General", 5)
	booking := createPendingBooking(t, gdb, event, "General", 3)

	require.NoError(t, gdb.Transaction(func(tx *gorm.DB) error {
		_, err := ClaimTickets(tx, event.ID, "General", booking.ID, 3)
		return err
	}))
	require.NoError(t, gdb.Transaction(func(tx *gorm.DB) error {
		return ReleaseTickets(tx, booking.ID)
	}))

	available, err := CountAvailable(event.ID, "General")
	require.NoError(t, err)
	assert.Equal(t, int64(5), available)
	category := mustCategory(t, gdb, event.ID, "General")
	assert.Equal(t, uint(0), category.Booked)

	var held int64
	require.NoError(t, gdb.Model(&models.Ticket{}).Where("booking_id = ?", booking.ID).Count(&held).Error)
	assert.Zero(t, held)
}

func TestReleaseTicketsNothingHeld(t *testing.T) {
	gdb := newTestDB(t)
	event := seedEvent(t, gdb, "General", 2)

	require.NoError(t, gdb.Transaction(func(tx *gorm.DB) error {
		return ReleaseTickets(tx, 999)
	}))
	category := mustCategory(t, gdb, event.ID, "General")
	assert.Equal(t, uint(0), category.Booked)
}

// Thirty bookings race for ten seats, two each. Exactly five claims can
// win and no ticket may end up assigned to two bookings.
func TestConcurrentClaimsNeverOversell(t *testing.T) {
	gdb := newTestDB(t)
	event := seedEvent(t, gdb, "General", 10)

	const contenders = 30
	bookings := make([]*models.Booking, contenders)
	for i := range bookings {
		bookings[i] = createPendingBooking(t, gdb, event, "General", 2)
	}

	var wg sync.WaitGroup
	results := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = gdb.Transaction(func(tx *gorm.DB) error {
				_, err := ClaimTickets(tx, event.ID, "General", bookings[i].ID, 2)
				return err
			})
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range results {
		if err == nil {
			won++
		} else {
			require.ErrorIs(t, err, ErrInsufficientInventory)
		}
	}
	assert.Equal(t, 5, won)

	var claimed int64
	require.NoError(t, gdb.Model(&models.Ticket{}).Where("booking_id IS NOT NULL").Count(&claimed).Error)
	assert.Equal(t, int64(10), claimed)

	// No slot claimed twice: each winning booking holds exactly two.
	for i, booking := range bookings {
		var held int64
		require.NoError(t, gdb.Model(&models.Ticket{}).Where("booking_id = ?", booking.ID).Count(&held).Error)
		if results[i] == nil {
			assert.Equal(t, int64(2), held)
		} else {
			assert.Zero(t, held)
		}
	}

	category := mustCategory(t, gdb, event.ID, "General")
	assert.Equal(t, uint(10), category.Booked)
	available, err := CountAvailable(event.ID, "General")
	require.NoError(t, err)
	assert.Zero(t, available)
}
