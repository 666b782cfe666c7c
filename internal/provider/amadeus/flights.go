package amadeus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/Domenick1991/triprex/internal/provider"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

func (c *Client) SearchFlights(ctx context.Context, q domain.FlightQuery) ([]domain.FlightOffer, error) {
	q = q.Normalize()

	params := url.Values{}
	params.Set("originLocationCode", q.Origin)
	params.Set("destinationLocationCode", q.Destination)
	params.Set("departureDate", q.DepartureDate)
	params.Set("adults", strconv.Itoa(q.Adults))
	params.Set("max", strconv.Itoa(c.maxResults))
	if q.ReturnDate != "" {
		params.Set("returnDate", q.ReturnDate)
	}
	if q.Children > 0 {
		params.Set("children", strconv.Itoa(q.Children))
	}

	res, err := c.do(ctx, "search_flights", http.MethodGet, "/v2/shopping/flight-offers", params, nil)
	if err != nil {
		return nil, err
	}
	return mapOffers(res, q), nil
}

func mapOffers(res gjson.Result, q domain.FlightQuery) []domain.FlightOffer {
	carriers := res.Get("dictionaries.carriers")
	aircraft := res.Get("dictionaries.aircraft")

	data := res.Get("data").Array()
	offers := make([]domain.FlightOffer, 0, len(data))
	for _, o := range data {
		segments := o.Get("itineraries.0.segments").Array()
		if len(segments) == 0 {
			continue
		}
		first, last := segments[0], segments[len(segments)-1]

		carrierCode := first.Get("carrierCode").String()
		airline := carriers.Get(carrierCode).String()
		if airline == "" {
			airline = carrierCode
		}

		currency := o.Get("price.currency").String()
		amount, err := decimal.NewFromString(o.Get("price.total").String())
		if err != nil {
			continue
		}

		offers = append(offers, domain.FlightOffer{
			ID:           o.Get("id").String(),
			Provider:     Name,
			Airline:      airline,
			FlightNumber: carrierCode + first.Get("number").String(),
			Price:        provider.FormatPrice(currency, amount),
			Amount:       amount,
			Currency:     currency,
			Departure:    provider.ClockTime(first.Get("departure.at").String()),
			Arrival:      provider.ClockTime(last.Get("arrival.at").String()),
			Duration:     provider.FormatDuration(o.Get("itineraries.0.duration").String()),
			Stops:        provider.FormatStops(len(segments) - 1),
			BookingLink:  provider.SkyscannerLink(q.Origin, q.Destination, q.DepartureDate, q.ReturnDate),
			Origin:       first.Get("departure.iataCode").String(),
			Destination:  last.Get("arrival.iataCode").String(),
			Aircraft:     aircraft.Get(first.Get("aircraft.code").String()).String(),
			Raw:          json.RawMessage(o.Raw),
		})
	}
	return offers
}

// ConfirmPrice re-prices an offer before booking. When only an id is known the
// offer is sent as a bare reference.
func (c *Client) ConfirmPrice(ctx context.Context, offerID string, offer json.RawMessage) (json.RawMessage, error) {
	if len(offer) == 0 {
		ref, err := json.Marshal(map[string]string{"type": "flight-offer", "id": offerID})
		if err != nil {
			return nil, err
		}
		offer = ref
	}

	body := map[string]any{
		"data": map[string]any{
			"type":         "flight-offers-pricing",
			"flightOffers": []json.RawMessage{offer},
		},
	}
	res, err := c.do(ctx, "confirm_price", http.MethodPost, "/v1/shopping/flight-offers/pricing", nil, body)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(res.Get("data").Raw), nil
}

func (c *Client) CreateFlightOrder(ctx context.Context, order domain.FlightOrder) (*domain.ProviderBooking, error) {
	travelers := make([]map[string]any, 0, len(order.Travelers))
	for i, t := range order.Travelers {
		id := t.ID
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		traveler := map[string]any{
			"id":   id,
			"name": map[string]string{"firstName": t.FirstName, "lastName": t.LastName},
		}
		if t.DateOfBirth != "" {
			traveler["dateOfBirth"] = t.DateOfBirth
		}
		if t.Gender != "" {
			traveler["gender"] = t.Gender
		}
		email, phone := t.Email, t.Phone
		if email == "" {
			email = order.Contact.Email
		}
		if phone == "" {
			phone = order.Contact.Phone
		}
		traveler["contact"] = map[string]any{
			"emailAddress": email,
			"phones":       []map[string]string{phoneEntry(phone)},
		}
		travelers = append(travelers, traveler)
	}

	first, last := contactName(order)
	body := map[string]any{
		"data": map[string]any{
			"type":         "flight-order",
			"flightOffers": []json.RawMessage{order.Offer},
			"travelers":    travelers,
			"remarks": map[string]any{
				"general": []map[string]string{{"subType": "GENERAL_MISCELLANEOUS", "text": order.Remark}},
			},
			"ticketingAgreement": map[string]string{"option": "DELAY_TO_CANCEL", "delay": "6D"},
			"contacts": []map[string]any{{
				"addresseeName": map[string]string{"firstName": first, "lastName": last},
				"purpose":       "STANDARD",
				"phones":        []map[string]string{phoneEntry(order.Contact.Phone)},
				"emailAddress":  order.Contact.Email,
			}},
		},
	}

	res, err := c.do(ctx, "create_flight_order", http.MethodPost, "/v1/booking/flight-orders", nil, body)
	if err != nil {
		return nil, err
	}
	ref := res.Get("data.id").String()
	if ref == "" {
		return nil, fmt.Errorf("amadeus: flight order response without id")
	}
	return &domain.ProviderBooking{Reference: ref, Raw: json.RawMessage(res.Get("data").Raw)}, nil
}

func (c *Client) GetFlightOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	res, err := c.do(ctx, "get_flight_order", http.MethodGet, "/v1/booking/flight-orders/"+url.PathEscape(orderID), nil, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(res.Get("data").Raw), nil
}

func (c *Client) CancelFlightOrder(ctx context.Context, orderID string) error {
	_, err := c.do(ctx, "cancel_flight_order", http.MethodDelete, "/v1/booking/flight-orders/"+url.PathEscape(orderID), nil, nil)
	return err
}

// contactName uses the contact name when given, else the local part of the
// email address, else the first traveler.
func contactName(order domain.FlightOrder) (string, string) {
	if order.Contact.Name != "" {
		return splitName(order.Contact.Name)
	}
	if local, _, _ := strings.Cut(order.Contact.Email, "@"); local != "" {
		return local, "Customer"
	}
	if len(order.Travelers) > 0 {
		return order.Travelers[0].FirstName, order.Travelers[0].LastName
	}
	return "Guest", "Customer"
}

func splitName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if i := strings.LastIndex(name, " "); i > 0 {
		return name[:i], name[i+1:]
	}
	return name, "Customer"
}

// phoneEntry splits "+<cc><10 digits>" into the Amadeus phone structure.
func phoneEntry(phone string) map[string]string {
	digits := make([]byte, 0, len(phone))
	for i := 0; i < len(phone); i++ {
		if phone[i] >= '0' && phone[i] <= '9' {
			digits = append(digits, phone[i])
		}
	}
	cc, number := "1", string(digits)
	if len(digits) > 10 {
		cc, number = string(digits[:len(digits)-10]), string(digits[len(digits)-10:])
	}
	return map[string]string{"deviceType": "MOBILE", "countryCallingCode": cc, "number": number}
}
