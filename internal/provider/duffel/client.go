package duffel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/triprex/config"
	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/Domenick1991/triprex/internal/metrics"
	"github.com/Domenick1991/triprex/internal/provider"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const Name = "duffel"

var ErrMissingToken = errors.New("duffel access token missing")

type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("duffel: %d %s: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	if e.Status >= http.StatusInternalServerError || e.Status == http.StatusTooManyRequests {
		return domain.ErrProviderUnavailable
	}
	return nil
}

// Client searches the Duffel offer request API. Only search is supported.
type Client struct {
	baseURL    string
	token      string
	version    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(cfg config.DuffelConfig, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	version := cfg.Version
	if version == "" {
		version = "v2"
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.AccessToken,
		version:    version,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (c *Client) Name() string { return Name }

func (c *Client) Configured() bool { return c.token != "" }

func (c *Client) SearchFlights(ctx context.Context, q domain.FlightQuery) ([]domain.FlightOffer, error) {
	if c.token == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, ErrMissingToken)
	}
	q = q.Normalize()

	started := time.Now()
	res, err := c.createOfferRequest(ctx, offerRequestBody(q))
	metrics.ObserveProvider(Name, "search_flights", started, err)
	if err != nil {
		c.logger.Warn("duffel search failed", zap.String("origin", q.Origin), zap.String("destination", q.Destination), zap.Error(err))
		return nil, err
	}

	c.logger.Debug("duffel offer request created",
		zap.String("id", res.Get("data.id").String()),
		zap.Int("offers", int(res.Get("data.offers.#").Int())),
	)
	return mapOffers(res, q), nil
}

func offerRequestBody(q domain.FlightQuery) map[string]any {
	slices := []map[string]string{{
		"origin":         q.Origin,
		"destination":    q.Destination,
		"departure_date": q.DepartureDate,
	}}
	if q.ReturnDate != "" {
		slices = append(slices, map[string]string{
			"origin":         q.Destination,
			"destination":    q.Origin,
			"departure_date": q.ReturnDate,
		})
	}

	passengers := make([]map[string]string, 0, q.Adults+q.Children)
	for i := 0; i < q.Adults; i++ {
		passengers = append(passengers, map[string]string{"type": "adult"})
	}
	for i := 0; i < q.Children; i++ {
		passengers = append(passengers, map[string]string{"type": "child"})
	}

	return map[string]any{
		"data": map[string]any{
			"slices":      slices,
			"passengers":  passengers,
			"cabin_class": "economy",
		},
	}
}

func (c *Client) createOfferRequest(ctx context.Context, body any) (gjson.Result, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("marshal offer request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/air/offer_requests?return_offers=true", bytes.NewReader(payload))
	if err != nil {
		return gjson.Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Duffel-Version", c.version)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return gjson.Result{}, ctxErr
		}
		return gjson.Result{}, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		doc := gjson.ParseBytes(data)
		msg := doc.Get("errors.0.message").String()
		if msg == "" {
			msg = resp.Status
		}
		return gjson.Result{}, &APIError{Status: resp.StatusCode, Code: doc.Get("errors.0.code").String(), Message: msg}
	}
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, errors.New("duffel: invalid json response")
	}
	return gjson.ParseBytes(data), nil
}

// mapOffers flattens each offer to its first slice and first segment.
func mapOffers(res gjson.Result, q domain.FlightQuery) []domain.FlightOffer {
	data := res.Get("data.offers").Array()
	offers := make([]domain.FlightOffer, 0, len(data))
	for _, o := range data {
		slice := o.Get("slices.0")
		segments := slice.Get("segments").Array()
		if len(segments) == 0 {
			continue
		}
		first, last := segments[0], segments[len(segments)-1]

		currency := o.Get("total_currency").String()
		amount, err := decimal.NewFromString(o.Get("total_amount").String())
		if err != nil {
			continue
		}

		aircraft := first.Get("aircraft.name").String()
		if aircraft == "" {
			aircraft = "Aircraft"
		}

		offers = append(offers, domain.FlightOffer{
			ID:           o.Get("id").String(),
			Provider:     Name,
			Airline:      o.Get("owner.name").String(),
			FlightNumber: first.Get("operating_carrier.iata_code").String() + first.Get("operating_carrier_flight_number").String(),
			Price:        provider.FormatPrice(currency, amount),
			Amount:       amount,
			Currency:     currency,
			Departure:    provider.ClockTime(first.Get("departing_at").String()),
			Arrival:      provider.ClockTime(last.Get("arriving_at").String()),
			Duration:     provider.FormatDuration(slice.Get("duration").String()),
			Stops:        provider.FormatStops(len(segments) - 1),
			BookingLink:  provider.SkyscannerLink(q.Origin, q.Destination, q.DepartureDate, q.ReturnDate),
			Origin:       q.Origin,
			Destination:  q.Destination,
			Aircraft:     aircraft,
			Raw:          json.RawMessage(o.Raw),
		})
	}
	return offers
}
