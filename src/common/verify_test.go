package common

import (
	"context"
	"encoding/hex"
	"eventify/src/models"
	"eventify/src/types"
	"eventify/src/utils"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testQrcSecret = "6368616e676520746869732070617373776f726420746f206120736563726574"

func issueTokenForBooking(t *testing.T, bookingId uint) string {
	t.Helper()
	gdb := dbHandle(t)
	var ticket models.Ticket
	require.NoError(t, gdb.Where("booking_id = ?", bookingId).First(&ticket).Error)
	token, err := utils.IssueTicketToken(ticket.ID, bookingId)
	require.NoError(t, err)
	return token
}

func TestVerifyTicketValid(t *testing.T) {
	t.Setenv("API_QRC_SECRET", testQrcSecret)
	gdb := newTestDB(t)
	newFakeGateway(t)
	newFakeNotifier(t)
	event := seedEvent(t, gdb, "General", 5)
	booking, payment := checkoutForTest(t, event, 1)
	require.NoError(t, HandleGatewayEvent(context.Background(), "", types.GATEWAY_PAYMENT_SUCCEEDED, payment.IntentID))

	token := issueTokenForBooking(t, booking.ID)
	result, err := VerifyTicket(token)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, types.REASON_VALID, result.Reason)
	assert.Equal(t, "Test Concert", result.Event)
	assert.Equal(t, "General", result.Category)
	require.NotNil(t, result.StartsAt)
}

func TestVerifyTicketPaymentPending(t *testing.T) {
	t.Setenv("API_QRC_SECRET", testQrcSecret)
	gdb := newTestDB(t)
	newFakeGateway(t)
	event := seedEvent(t, gdb, "General", 5)
	booking, _ := checkoutForTest(t, event, 1)

	token := issueTokenForBooking(t, booking.ID)
	result, err := VerifyTicket(token)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, types.REASON_PAYMENT_PENDING, result.Reason)
}

func TestVerifyTicketPaymentRejected(t *testing.T) {
	t.Setenv("API_QRC_SECRET", testQrcSecret)
	gdb := newTestDB(t)
	newFakeGateway(t)
	newFakeNotifier(t)
	event := seedEvent(t, gdb, "General", 5)
	booking, payment := checkoutForTest(t, event, 1)
	token := issueTokenForBooking(t, booking.ID)
	require.NoError(t, HandleGatewayEvent(context.Background(), "", types.GATEWAY_PAYMENT_FAILED, payment.IntentID))

	result, err := VerifyTicket(token)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, types.REASON_PAYMENT_REJECT, result.Reason)
}

func TestVerifyTicketRefunded(t *testing.T) {
	t.Setenv("API_QRC_SECRET", testQrcSecret)
	gdb := newTestDB(t)
	newFakeGateway(t)
	newFakeNotifier(t)
	event := seedEvent(t, gdb, "General", 5)
	booking, payment := checkoutForTest(t, event, 1)
	require.NoError(t, HandleGatewayEvent(context.Background(), "", types.GATEWAY_PAYMENT_SUCCEEDED, payment.IntentID))
	token := issueTokenForBooking(t, booking.ID)
	require.NoError(t, HandleGatewayEvent(context.Background(), "", types.GATEWAY_CHARGE_REFUNDED, payment.IntentID))

	result, err := VerifyTicket(token)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	// Refund outranks the cancellation it caused.
	assert.Equal(t, types.REASON_REFUNDED, result.Reason)
}

func TestVerifyTicketCancelledBooking(t *testing.T) {
	t.Setenv("API_QRC_SECRET", testQrcSecret)
	gdb := newTestDB(t)
	newFakeGateway(t)
	newFakeNotifier(t)
	event := seedEvent(t, gdb, "General", 5)
	booking, payment := checkoutForTest(t, event, 1)
	require.NoError(t, HandleGatewayEvent(context.Background(), "", types.GATEWAY_PAYMENT_SUCCEEDED, payment.IntentID))
	token := issueTokenForBooking(t, booking.ID)

	require.NoError(t, CancelBooking(context.Background(), booking.ID))

	result, err := VerifyTicket(token)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, types.REASON_CANCELED, result.Reason)
}

func TestVerifyTicketExpiredEvent(t *testing.T) {
	t.Setenv("API_QRC_SECRET", testQrcSecret)
	gdb := newTestDB(t)
	newFakeGateway(t)
	newFakeNotifier(t)
	event := seedEvent(t, gdb, "General", 5)
	booking, payment := checkoutForTest(t, event, 1)
	require.NoError(t, HandleGatewayEvent(context.Background(), "", types.GATEWAY_PAYMENT_SUCCEEDED, payment.IntentID))
	token := issueTokenForBooking(t, booking.ID)

	require.NoError(t, gdb.Model(&models.Event{}).
		Where(&models.Event{ID: event.ID}).
		Updates(map[string]any{
			"starts_at": time.Now().Add(-4 * time.Hour),
			"ends_at":   time.Now().Add(-2 * time.Hour),
		}).Error)

	result, err := VerifyTicket(token)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, types.REASON_EXPIRED, result.Reason)
}

// Payment problems outrank cancellation and expiry even when all three
// apply at once.
func TestVerifyTicketReasonPrecedence(t *testing.T) {
	t.Setenv("API_QRC_SECRET", testQrcSecret)
	gdb := newTestDB(t)
	newFakeGateway(t)
	newFakeNotifier(t)
	event := seedEvent(t, gdb, "General", 5)
	booking, payment := checkoutForTest(t, event, 1)
	token := issueTokenForBooking(t, booking.ID)
	require.NoError(t, HandleGatewayEvent(context.Background(), "", types.GATEWAY_PAYMENT_FAILED, payment.IntentID))
	require.NoError(t, gdb.Model(&models.Event{}).
		Where(&models.Event{ID: event.ID}).
		Updates(map[string]any{
			"starts_at": time.Now().Add(-4 * time.Hour),
			"ends_at":   time.Now().Add(-2 * time.Hour),
		}).Error)

	result, err := VerifyTicket(token)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, types.REASON_PAYMENT_REJECT, result.Reason)
}

func TestVerifyTicketGarbageToken(t *testing.T) {
	t.Setenv("API_QRC_SECRET", testQrcSecret)
	newTestDB(t)

	_, err := VerifyTicket("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)

	// Well-formed hex that was never sealed with our key.
	_, err = VerifyTicket(hex.EncodeToString([]byte("0123456789abcdef0123456789abcdef0123456789abcdef")))
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTicketDeletedRecords(t *testing.T) {
	t.Setenv("API_QRC_SECRET", testQrcSecret)
	gdb := newTestDB(t)
	newFakeGateway(t)
	newFakeNotifier(t)
	event := seedEvent(t, gdb, "General", 5)
	booking, payment := checkoutForTest(t, event, 1)
	require.NoError(t, HandleGatewayEvent(context.Background(), "", types.GATEWAY_PAYMENT_SUCCEEDED, payment.IntentID))
	token := issueTokenForBooking(t, booking.ID)

	require.NoError(t, gdb.Unscoped().Where("booking_id = ?", booking.ID).Delete(&models.Ticket{}).Error)

	_, err := VerifyTicket(token)
	require.ErrorIs(t, err, ErrNotFound)
}
