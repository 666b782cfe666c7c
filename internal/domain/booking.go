package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type BookingType string

const (
	BookingTypeFlight BookingType = "flight"
	BookingTypeHotel  BookingType = "hotel"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusFailed    BookingStatus = "failed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Booking is the only persisted entity. Details holds the provider request
// and response payloads as an opaque JSON document.
type Booking struct {
	ID            string          `json:"id"`
	Type          BookingType     `json:"type"`
	Status        BookingStatus   `json:"status"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	Provider      string          `json:"provider"`
	OfferID       string          `json:"offerId,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	ProviderRef   string          `json:"providerRef,omitempty"`
	PaymentRef    string          `json:"paymentRef,omitempty"`
	CustomerEmail string          `json:"customerEmail,omitempty"`
	CustomerName  string          `json:"customerName,omitempty"`
	CustomerPhone string          `json:"customerPhone,omitempty"`
	Details       json.RawMessage `json:"details,omitempty"`
	FailureReason string          `json:"failureReason,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// Cancellable reports whether the booking can still move to cancelled.
func (b *Booking) Cancellable() error {
	if b.Status == BookingStatusCancelled {
		return ErrBookingAlreadyCancelled
	}
	return nil
}

// BookingView is a booking enriched with provider-side data fetched at read time.
type BookingView struct {
	Booking
	LiveDetails json.RawMessage `json:"liveDetails,omitempty"`
}
