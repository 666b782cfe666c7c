package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/Domenick1991/triprex/internal/kafka"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

type BookFlightInput struct {
	FlightOffer    json.RawMessage
	Travelers      []domain.Traveler
	Contact        domain.Contact
	PaymentMethod  string
	IdempotencyKey string
}

type flightDetails struct {
	FlightOffer      json.RawMessage   `json:"flightOffer"`
	Travelers        []domain.Traveler `json:"travelers"`
	Contact          domain.Contact    `json:"contact"`
	PaymentMethod    string            `json:"paymentMethod,omitempty"`
	ProviderResponse json.RawMessage   `json:"providerResponse,omitempty"`
	Error            string            `json:"error,omitempty"`
}

func (d *flightDetails) encode() json.RawMessage {
	data, _ := json.Marshal(d)
	return data
}

// BookFlight creates a pending booking, opens a payment intent and issues the
// flight order with the provider.
func (s *BookingService) BookFlight(ctx context.Context, in BookFlightInput) (*domain.Booking, error) {
	offer, err := validateFlight(in)
	if err != nil {
		return nil, err
	}
	amount, currency, err := s.offerPrice(offer)
	if err != nil {
		return nil, err
	}

	replay, claimed, err := s.claimKey(ctx, in.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if replay != nil {
		return replayed(replay)
	}
	var created *domain.Booking
	if claimed {
		defer func() { s.settleKey(ctx, in.IdempotencyKey, created) }()
	}

	contact := in.Contact
	contact.Email = strings.TrimSpace(contact.Email)
	if contact.Phone == "" {
		contact.Phone = s.cfg.DefaultContactTel
	}
	lead := in.Travelers[0]
	details := &flightDetails{
		FlightOffer:   json.RawMessage(offer.Raw),
		Travelers:     in.Travelers,
		Contact:       contact,
		PaymentMethod: in.PaymentMethod,
	}

	b := &domain.Booking{
		ID:            uuid.NewString(),
		Type:          domain.BookingTypeFlight,
		Status:        domain.BookingStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		Provider:      providerAmadeus,
		OfferID:       offer.Get("id").String(),
		Amount:        amount,
		Currency:      currency,
		CustomerEmail: contact.Email,
		CustomerName:  strings.TrimSpace(lead.FirstName + " " + lead.LastName),
		CustomerPhone: contact.Phone,
		Details:       details.encode(),
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	created = b
	s.transitioned(ctx, kafka.EventBookingCreated, b)

	log := s.logger.With(zap.String("booking_id", b.ID), zap.String("type", string(b.Type)))
	log.Info("flight booking accepted", zap.Int("travelers", len(in.Travelers)), zap.String("amount", b.Amount.StringFixed(2)))

	failed := func(reason string) json.RawMessage {
		details.Error = reason
		return details.encode()
	}

	payment, err := s.payments.CreateIntent(ctx, domain.PaymentRequest{
		Amount:        amount,
		Currency:      currency,
		CustomerEmail: contact.Email,
		Metadata: map[string]string{
			"type":      "flight_booking",
			"bookingId": b.ID,
			"route":     route(offer),
			"travelers": fmt.Sprint(len(in.Travelers)),
		},
	})
	if err != nil {
		log.Error("payment intent failed", zap.Error(err))
		return nil, s.fail(ctx, b, fmt.Errorf("payment: %w", err), failed)
	}
	b.PaymentRef = payment.ID
	if err := s.bookings.Update(ctx, b); err != nil {
		log.Error("storing payment reference failed", zap.String("payment_ref", payment.ID), zap.Error(err))
		return nil, s.fail(ctx, b, fmt.Errorf("store payment reference: %w", err), failed)
	}

	order, err := s.flights.CreateFlightOrder(ctx, domain.FlightOrder{
		Offer:     json.RawMessage(offer.Raw),
		Travelers: in.Travelers,
		Contact:   contact,
		Remark:    s.cfg.BookingRemark,
	})
	if err != nil {
		log.Error("flight order failed", zap.Error(err))
		return nil, s.fail(ctx, b, err, failed)
	}

	details.ProviderResponse = order.Raw
	b.Status = domain.BookingStatusConfirmed
	b.PaymentStatus = domain.PaymentStatusPaid
	b.ProviderRef = order.Reference
	b.Details = details.encode()
	if err := s.bookings.Update(context.WithoutCancel(ctx), b); err != nil {
		return nil, fmt.Errorf("confirm booking: %w", err)
	}
	s.transitioned(ctx, kafka.EventBookingConfirmed, b)
	log.Info("flight booking confirmed", zap.String("provider_ref", b.ProviderRef))
	return b, nil
}

// validateFlight returns the provider offer. Offers coming from the search
// response carry it under "raw".
func validateFlight(in BookFlightInput) (gjson.Result, error) {
	if len(in.FlightOffer) == 0 || len(in.Travelers) == 0 || strings.TrimSpace(in.Contact.Email) == "" {
		return gjson.Result{}, domain.InvalidInput("missing required fields: flightOffer, travelers, contact")
	}
	if !gjson.ValidBytes(in.FlightOffer) {
		return gjson.Result{}, domain.InvalidInput("flightOffer must be a JSON object")
	}
	offer := gjson.ParseBytes(in.FlightOffer)
	if !offer.IsObject() {
		return gjson.Result{}, domain.InvalidInput("flightOffer must be a JSON object")
	}
	if raw := offer.Get("raw"); raw.IsObject() {
		offer = raw
	}
	for i, t := range in.Travelers {
		if strings.TrimSpace(t.FirstName) == "" || strings.TrimSpace(t.LastName) == "" {
			return gjson.Result{}, domain.InvalidInput(fmt.Sprintf("traveler %d: first and last name are required", i+1))
		}
	}
	return offer, nil
}

func (s *BookingService) offerPrice(offer gjson.Result) (decimal.Decimal, string, error) {
	total := firstString(offer, "price.total", "price.grandTotal", "amount")
	amount, err := decimal.NewFromString(total)
	if err != nil || !amount.IsPositive() {
		return decimal.Zero, "", domain.InvalidInput("flightOffer has no valid price")
	}
	currency := firstString(offer, "price.currency", "currency")
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}
	return amount, strings.ToUpper(currency), nil
}

func route(offer gjson.Result) string {
	segments := offer.Get("itineraries.0.segments").Array()
	if len(segments) == 0 {
		return firstString(offer, "origin") + " to " + firstString(offer, "destination")
	}
	return segments[0].Get("departure.iataCode").String() + " to " +
		segments[len(segments)-1].Get("arrival.iataCode").String()
}

func firstString(doc gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := doc.Get(p).String(); v != "" {
			return v
		}
	}
	return ""
}
