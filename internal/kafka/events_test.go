package kafka

import (
	"encoding/json"
	"testing"

	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBookingEvent(t *testing.T) {
	b := &domain.Booking{
		ID:            "b-1",
		Type:          domain.BookingTypeHotel,
		Status:        domain.BookingStatusConfirmed,
		PaymentStatus: domain.PaymentStatusPaid,
		Amount:        decimal.RequireFromString("120.5"),
		Currency:      "EUR",
		CustomerEmail: "guest@example.com",
		ProviderRef:   "HB-42",
	}

	event := NewBookingEvent(EventBookingConfirmed, b)

	assert.Equal(t, "booking_confirmed", event.Type)
	assert.Equal(t, "hotel", event.BookingType)
	assert.Equal(t, "120.50", event.Amount)
	assert.Equal(t, "HB-42", event.ProviderRef)
	assert.False(t, event.OccurredAt.IsZero())
}

func TestDecodeEvent(t *testing.T) {
	data, err := json.Marshal(BookingEvent{Type: EventBookingCancelled, BookingID: "b-2", CustomerEmail: "a@b.c"})
	require.NoError(t, err)

	event, err := DecodeEvent(data)
	require.NoError(t, err)
	assert.Equal(t, "b-2", event.BookingID)

	_, err = DecodeEvent([]byte(`{"type":"booking_cancelled"}`))
	assert.Error(t, err)

	_, err = DecodeEvent([]byte(`not json`))
	assert.Error(t, err)
}
