package domain

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

type FlightQuery struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"date"`
	ReturnDate    string `json:"returnDate,omitempty"`
	Adults        int    `json:"adults"`
	Children      int    `json:"children"`
}

// Normalize upper-cases airport codes and applies passenger defaults.
func (q FlightQuery) Normalize() FlightQuery {
	q.Origin = strings.ToUpper(strings.TrimSpace(q.Origin))
	q.Destination = strings.ToUpper(strings.TrimSpace(q.Destination))
	q.DepartureDate = strings.TrimSpace(q.DepartureDate)
	q.ReturnDate = strings.TrimSpace(q.ReturnDate)
	if q.Adults <= 0 {
		q.Adults = 1
	}
	if q.Children < 0 {
		q.Children = 0
	}
	return q
}

type FlightOffer struct {
	ID           string          `json:"id"`
	Provider     string          `json:"provider"`
	Airline      string          `json:"airline"`
	FlightNumber string          `json:"flightNumber,omitempty"`
	Price        string          `json:"price"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     string          `json:"currency"`
	Departure    string          `json:"departure"`
	Arrival      string          `json:"arrival"`
	Duration     string          `json:"duration"`
	Stops        string          `json:"stops"`
	BookingLink  string          `json:"bookingLink"`
	Origin       string          `json:"origin"`
	Destination  string          `json:"destination"`
	Aircraft     string          `json:"aircraft,omitempty"`
	IsMock       bool            `json:"isMock,omitempty"`
	// Raw is the provider offer as returned by the search, needed later for
	// price confirmation and booking.
	Raw json.RawMessage `json:"raw,omitempty"`
}

type Traveler struct {
	ID          string `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

type Contact struct {
	Email string `json:"emailAddress"`
	Phone string `json:"phone,omitempty"`
	Name  string `json:"name,omitempty"`
}

// FlightOrder is everything the provider needs to issue a flight order.
type FlightOrder struct {
	Offer     json.RawMessage
	Travelers []Traveler
	Contact   Contact
	Remark    string
}

// ProviderBooking is the provider side result of a booking call.
type ProviderBooking struct {
	Reference string
	Raw       json.RawMessage
}
