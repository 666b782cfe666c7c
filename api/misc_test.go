package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/Domenick1991/triprex/config"
	"github.com/Domenick1991/triprex/internal/airports"
	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAirportHandler_search(t *testing.T) {
	r := newTestRouter(t, func(api *gin.RouterGroup) {
		NewAirportHandler(airports.Default()).Register(api.Group("/airports"))
	})

	w := doJSON(r, http.MethodGet, "/api/airports?q=london&limit=3", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var found []domain.Airport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &found))
	assert.Len(t, found, 3)
	for _, a := range found {
		assert.Equal(t, "London", a.City)
	}
}

func TestAirportHandler_emptyQuery(t *testing.T) {
	r := newTestRouter(t, func(api *gin.RouterGroup) {
		NewAirportHandler(airports.Default()).Register(api.Group("/airports"))
	})

	w := doJSON(r, http.MethodGet, "/api/airports", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = doJSON(r, http.MethodGet, "/api/airports?q=par&limit=x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type stubChecker struct{ err error }

func (s stubChecker) CheckConnection(context.Context) error { return s.err }

func TestDebugHandler_env(t *testing.T) {
	cfg := &config.Config{}
	cfg.Providers.Amadeus.ClientID = "abcdefghijklmnop"
	r := newTestRouter(t, func(api *gin.RouterGroup) {
		NewDebugHandler(cfg, &MockFlightUseCase{}, nil).Register(api.Group("/debug"))
	})

	w := doJSON(r, http.MethodGet, "/api/debug/env", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "abcdefgh...", body["AMADEUS_CLIENT_ID"])
	assert.Equal(t, "MISSING", body["AMADEUS_CLIENT_SECRET"])
	assert.Equal(t, true, body["hasClientId"])
	assert.Equal(t, false, body["hasClientSecret"])
}

func TestDebugHandler_flights(t *testing.T) {
	svc := &MockFlightUseCase{}
	handler := NewDebugHandler(&config.Config{}, svc, stubChecker{err: errors.New("401")})
	handler.now = func() time.Time { return time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC) }
	r := newTestRouter(t, func(api *gin.RouterGroup) { handler.Register(api.Group("/debug")) })

	svc.On("Search", mock.Anything, domain.FlightQuery{Origin: "JFK", Destination: "LAX", DepartureDate: "2026-10-31", Adults: 1}).
		Return([]domain.FlightOffer{{ID: "mock-1", IsMock: true}}, nil).Once()

	w := doJSON(r, http.MethodGet, "/api/debug/flights", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["isMockData"])
	assert.Equal(t, float64(1), body["flightCount"])
	assert.Equal(t, "FAILED", body["connectivity"].(map[string]any)["status"])
	svc.AssertExpectations(t)
}

func TestMask(t *testing.T) {
	assert.Equal(t, "MISSING", mask(""))
	assert.Equal(t, "ab...", mask("abcd"))
	assert.Equal(t, "sk_test_...", mask("sk_test_51Habc"))
}

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{domain.InvalidInput("offerId is required"), http.StatusBadRequest, "OfferId is required"},
		{fmt.Errorf("%w: bad signature", domain.ErrInvalidInput), http.StatusBadRequest, "Invalid input: bad signature"},
		{fmt.Errorf("amadeus: %w", domain.ErrProviderUnavailable), http.StatusBadGateway, "Provider unavailable, please try again later"},
		{context.DeadlineExceeded, http.StatusGatewayTimeout, "Request timed out"},
		{errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		status, msg := errorStatus(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.msg, msg, tc.err.Error())
	}
}
