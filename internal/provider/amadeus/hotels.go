package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/shopspring/decimal"
)

func (c *Client) GetHotelOffer(ctx context.Context, offerID string) (*domain.HotelOffer, error) {
	res, err := c.do(ctx, "get_hotel_offer", http.MethodGet, "/v3/shopping/hotel-offers/"+url.PathEscape(offerID), nil, nil)
	if err != nil {
		return nil, err
	}

	data := res.Get("data")
	offer := data.Get("offers.0")
	if !offer.Exists() {
		return nil, fmt.Errorf("amadeus: hotel offer %s has no offers", offerID)
	}
	total := offer.Get("price.total").String()
	if total == "" {
		total = offer.Get("price.base").String()
	}
	amount, err := decimal.NewFromString(total)
	if err != nil {
		return nil, fmt.Errorf("amadeus: hotel offer price %q: %w", total, err)
	}

	return &domain.HotelOffer{
		ID:        offer.Get("id").String(),
		HotelName: data.Get("hotel.name").String(),
		HotelID:   data.Get("hotel.hotelId").String(),
		Amount:    amount,
		Currency:  offer.Get("price.currency").String(),
		CheckIn:   offer.Get("checkInDate").String(),
		CheckOut:  offer.Get("checkOutDate").String(),
	}, nil
}

// CreateHotelBooking books one room per guest, all paid with the same card.
func (c *Client) CreateHotelBooking(ctx context.Context, order domain.HotelOrder) (*domain.ProviderBooking, error) {
	guests := make([]map[string]any, 0, len(order.Guests))
	rooms := make([]map[string]any, 0, len(order.Guests))
	for i, g := range order.Guests {
		guests = append(guests, map[string]any{
			"id": i + 1,
			"name": map[string]string{
				"title":     g.Name.Title,
				"firstName": g.Name.FirstName,
				"lastName":  g.Name.LastName,
			},
			"contact": map[string]string{
				"phone": g.Contact.Phone,
				"email": g.Contact.Email,
			},
		})
		room := map[string]any{"guestIds": []int{i + 1}, "paymentId": 1}
		if order.SpecialRequests != "" {
			room["specialRequest"] = order.SpecialRequests
		}
		rooms = append(rooms, room)
	}

	body := map[string]any{
		"data": map[string]any{
			"offerId": order.OfferID,
			"guests":  guests,
			"payments": []map[string]any{{
				"id":     1,
				"method": "creditCard",
				"card": map[string]string{
					"vendorCode": order.Payment.Vendor,
					"cardNumber": order.Payment.CardNumber,
					"expiryDate": order.Payment.ExpiryDate,
				},
			}},
			"rooms": rooms,
		},
	}

	res, err := c.do(ctx, "create_hotel_booking", http.MethodPost, "/v1/booking/hotel-bookings", nil, body)
	if err != nil {
		return nil, err
	}

	first := res.Get("data.0")
	ref := first.Get("providerConfirmationId").String()
	if ref == "" {
		ref = first.Get("id").String()
	}
	if ref == "" {
		return nil, fmt.Errorf("amadeus: hotel booking response without confirmation")
	}
	return &domain.ProviderBooking{Reference: ref, Raw: json.RawMessage(res.Get("data").Raw)}, nil
}
