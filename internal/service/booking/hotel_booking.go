package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/Domenick1991/triprex/internal/kafka"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookHotelInput struct {
	OfferID         string
	Guests          []domain.Guest
	Payment         domain.CardPayment
	SpecialRequests string
	IdempotencyKey  string
}

type hotelDetails struct {
	HotelOffer       hotelOfferDetails `json:"hotelOffer"`
	Guests           []domain.Guest    `json:"guests"`
	Payment          cardVendor        `json:"payment"`
	SpecialRequests  string            `json:"specialRequests,omitempty"`
	ProviderResponse json.RawMessage   `json:"providerResponse,omitempty"`
	Error            string            `json:"error,omitempty"`
}

type hotelOfferDetails struct {
	ID        string `json:"id"`
	HotelID   string `json:"hotelId,omitempty"`
	HotelName string `json:"hotelName,omitempty"`
	Total     string `json:"total"`
	Currency  string `json:"currency"`
	CheckIn   string `json:"checkInDate,omitempty"`
	CheckOut  string `json:"checkOutDate,omitempty"`
}

// card number and expiry are never persisted
type cardVendor struct {
	Vendor string `json:"vendor"`
}

func (d *hotelDetails) encode() json.RawMessage {
	data, _ := json.Marshal(d)
	return data
}

// BookHotel prices the offer with the provider, creates a pending booking,
// opens a payment intent and books the rooms.
func (s *BookingService) BookHotel(ctx context.Context, in BookHotelInput) (*domain.Booking, error) {
	if err := validateHotel(in); err != nil {
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

	offer, err := s.hotels.GetHotelOffer(ctx, in.OfferID)
	if err != nil {
		s.logger.Warn("hotel offer lookup failed", zap.String("offer_id", in.OfferID), zap.Error(err))
		return nil, fmt.Errorf("%w: hotel offer: %w", domain.ErrProviderUnavailable, err)
	}
	currency := strings.ToUpper(offer.Currency)
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}

	guests := s.formatGuests(in.Guests)
	lead := guests[0]
	details := &hotelDetails{
		HotelOffer: hotelOfferDetails{
			ID:        offer.ID,
			HotelID:   offer.HotelID,
			HotelName: offer.HotelName,
			Total:     offer.Amount.StringFixed(2),
			Currency:  currency,
			CheckIn:   offer.CheckIn,
			CheckOut:  offer.CheckOut,
		},
		Guests:          guests,
		Payment:         cardVendor{Vendor: in.Payment.Vendor},
		SpecialRequests: in.SpecialRequests,
	}

	b := &domain.Booking{
		ID:            uuid.NewString(),
		Type:          domain.BookingTypeHotel,
		Status:        domain.BookingStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		Provider:      providerAmadeus,
		OfferID:       in.OfferID,
		Amount:        offer.Amount,
		Currency:      currency,
		CustomerEmail: lead.Contact.Email,
		CustomerName:  strings.Join(strings.Fields(lead.Name.Title+" "+lead.Name.FirstName+" "+lead.Name.LastName), " "),
		CustomerPhone: lead.Contact.Phone,
		Details:       details.encode(),
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	created = b
	s.transitioned(ctx, kafka.EventBookingCreated, b)

	log := s.logger.With(zap.String("booking_id", b.ID), zap.String("type", string(b.Type)))
	log.Info("hotel booking accepted", zap.Int("guests", len(guests)), zap.String("hotel", offer.HotelName))

	failed := func(reason string) json.RawMessage {
		details.Error = reason
		return details.encode()
	}

	payment, err := s.payments.CreateIntent(ctx, domain.PaymentRequest{
		Amount:        offer.Amount,
		Currency:      currency,
		CustomerEmail: lead.Contact.Email,
		Metadata: map[string]string{
			"type":      "hotel_booking",
			"bookingId": b.ID,
			"hotelId":   offer.HotelID,
			"hotelName": offer.HotelName,
			"guests":    fmt.Sprint(len(guests)),
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

	offerID := offer.ID
	if offerID == "" {
		offerID = in.OfferID
	}
	res, err := s.hotels.CreateHotelBooking(ctx, domain.HotelOrder{
		OfferID:         offerID,
		Guests:          guests,
		Payment:         in.Payment,
		SpecialRequests: in.SpecialRequests,
	})
	if err != nil {
		log.Error("hotel booking failed", zap.Error(err))
		return nil, s.fail(ctx, b, err, failed)
	}

	details.ProviderResponse = res.Raw
	b.Status = domain.BookingStatusConfirmed
	b.PaymentStatus = domain.PaymentStatusPaid
	b.ProviderRef = res.Reference
	b.Details = details.encode()
	if err := s.bookings.Update(context.WithoutCancel(ctx), b); err != nil {
		return nil, fmt.Errorf("confirm booking: %w", err)
	}
	s.transitioned(ctx, kafka.EventBookingConfirmed, b)
	log.Info("hotel booking confirmed", zap.String("provider_ref", b.ProviderRef))
	return b, nil
}

func validateHotel(in BookHotelInput) error {
	if strings.TrimSpace(in.OfferID) == "" || len(in.Guests) == 0 || in.Payment.CardNumber == "" {
		return domain.InvalidInput("missing required fields: offerId, guests, payment")
	}
	for i, g := range in.Guests {
		if strings.TrimSpace(g.Name.FirstName) == "" || strings.TrimSpace(g.Name.LastName) == "" {
			return domain.InvalidInput(fmt.Sprintf("guest %d: first and last name are required", i+1))
		}
	}
	return nil
}

// formatGuests fills in the default contact for guests that gave none.
func (s *BookingService) formatGuests(in []domain.Guest) []domain.Guest {
	out := make([]domain.Guest, len(in))
	for i, g := range in {
		if g.Contact.Email == "" && g.Contact.Phone == "" {
			g.Contact = domain.GuestContact{Email: s.cfg.DefaultGuestEmail, Phone: s.cfg.DefaultContactTel}
		}
		if g.Contact.Email == "" {
			g.Contact.Email = s.cfg.DefaultGuestEmail
		}
		out[i] = g
	}
	return out
}
