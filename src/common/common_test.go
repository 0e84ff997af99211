package common

import (
	"context"
	"errors"
	"eventify/src/db"
	"eventify/src/lib"
	"eventify/src/lib/mailer"
	"eventify/src/models"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB swaps the shared gorm instance for an in-memory sqlite
// database scoped to the test. A single open connection keeps
// concurrent transactions serialized the way the category row lock does
// on postgres.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("error opening test database: %s", err.Error())
	}
	inner, err := gdb.DB()
	if err != nil {
		t.Fatalf("error accessing inner db instance: %s", err.Error())
	}
	inner.SetMaxOpenConns(1)
	if err := gdb.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.Category{},
		&models.Ticket{},
		&models.Booking{},
		&models.Payment{},
	); err != nil {
		t.Fatalf("error migration: %s", err.Error())
	}
	db.NewDB(gdb)
	t.Cleanup(func() {
		db.NewDB(nil)
		inner.Close()
	})
	return gdb
}

func dbHandle(t *testing.T) *gorm.DB {
	t.Helper()
	return db.GetDb()
}

type fakeGateway struct {
	mu         sync.Mutex
	created    []string
	canceled   []string
	refunded   []string
	failCreate bool
	failCancel bool
}

func (g *fakeGateway) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (string, string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failCreate {
		return "", "", errors.New("gateway unavailable")
	}
	id := fmt.Sprintf("pi_%s", uuid.New().String())
	g.created = append(g.created, id)
	return id, fmt.Sprintf("%s_secret", id), nil
}

func (g *fakeGateway) CancelIntent(ctx context.Context, intentId string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failCancel {
		return errors.New("gateway unavailable")
	}
	g.canceled = append(g.canceled, intentId)
	return nil
}

func (g *fakeGateway) Refund(ctx context.Context, intentId string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refunded = append(g.refunded, intentId)
	return nil
}

func newFakeGateway(t *testing.T) *fakeGateway {
	t.Helper()
	g := &fakeGateway{}
	lib.NewGateway(g)
	t.Cleanup(func() { lib.NewGateway(nil) })
	return g
}

type fakeNotifier struct {
	mu        sync.Mutex
	confirmed []uint
	failed    []uint
	refunded  []uint
}

func (n *fakeNotifier) NotifyBookingConfirmed(bookingId uint, email string, eventName string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, bookingId)
	return nil
}

func (n *fakeNotifier) NotifyPaymentFailed(bookingId uint, email string, eventName string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, bookingId)
	return nil
}

func (n *fakeNotifier) NotifyRefunded(bookingId uint, email string, eventName string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.refunded = append(n.refunded, bookingId)
	return nil
}

func newFakeNotifier(t *testing.T) *fakeNotifier {
	t.Helper()
	n := &fakeNotifier{}
	mailer.NewNotifier(n)
	t.Cleanup(func() { mailer.NewNotifier(nil) })
	return n
}

// seedEvent creates an organizer, an upcoming event and one category
// with its pre-materialized ticket rows.
func seedEvent(t *testing.T, gdb *gorm.DB, categoryTitle string, seats uint) *models.Event {
	t.Helper()
	organizer := models.User{Name: "Organizer", Email: fmt.Sprintf("org-%s@example.com", uuid.New().String()), Role: "organizer"}
	if err := gdb.Create(&organizer).Error; err != nil {
		t.Fatalf("error creating organizer: %s", err.Error())
	}
	event := models.Event{
		OrganizerID: organizer.ID,
		Name:        "Test Concert",
		Slug:        "test-concert",
		Location:    "Main Hall",
		StartsAt:    time.Now().Add(48 * time.Hour),
		EndsAt:      time.Now().Add(52 * time.Hour),
	}
	if err := gdb.Create(&event).Error; err != nil {
		t.Fatalf("error creating event: %s", err.Error())
	}
	category := models.Category{
		EventID:     event.ID,
		Title:       categoryTitle,
		Seats:       seats,
		TicketPrice: 25.0,
		Currency:    "usd",
	}
	if err := gdb.Create(&category).Error; err != nil {
		t.Fatalf("error creating category: %s", err.Error())
	}
	tickets := make([]models.Ticket, 0, seats)
	for place := uint(1); place <= seats; place++ {
		tickets = append(tickets, models.Ticket{
			EventID:    event.ID,
			CategoryID: category.ID,
			Place:      place,
		})
	}
	if err := gdb.Create(&tickets).Error; err != nil {
		t.Fatalf("error creating tickets: %s", err.Error())
	}
	return &event
}

func mustCategory(t *testing.T, gdb *gorm.DB, eventId uint, title string) *models.Category {
	t.Helper()
	var category models.Category
	if err := gdb.Where(&models.Category{EventID: eventId, Title: title}).First(&category).Error; err != nil {
		t.Fatalf("error loading category: %s", err.Error())
	}
	return &category
}
