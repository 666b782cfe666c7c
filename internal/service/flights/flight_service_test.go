package flights

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockProvider struct {
	mock.Mock
	name string
}

func (m *MockProvider) Name() string { return m.name }

func (m *MockProvider) SearchFlights(ctx context.Context, q domain.FlightQuery) ([]domain.FlightOffer, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FlightOffer), args.Error(1)
}

type MockPricer struct {
	mock.Mock
}

func (m *MockPricer) ConfirmPrice(ctx context.Context, offerID string, offer json.RawMessage) (json.RawMessage, error) {
	args := m.Called(ctx, offerID, offer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetFlights(ctx context.Context, q domain.FlightQuery) ([]domain.FlightOffer, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FlightOffer), args.Error(1)
}

func (m *MockCache) SetFlights(ctx context.Context, q domain.FlightQuery, offers []domain.FlightOffer) error {
	args := m.Called(ctx, q, offers)
	return args.Error(0)
}

var query = domain.FlightQuery{Origin: "jfk", Destination: "lax", DepartureDate: "2026-12-01"}

func normalized() domain.FlightQuery { return query.Normalize() }

func TestFlightService_Search_PrimarySucceeds(t *testing.T) {
	amadeus := &MockProvider{name: "amadeus"}
	duffel := &MockProvider{name: "duffel"}
	cache := &MockCache{}
	service := &FlightService{
		providers: []SearchProvider{amadeus, duffel},
		cache:     cache,
		logger:    zap.NewNop(),
	}

	ctx := context.Background()
	offers := []domain.FlightOffer{{ID: "1", Provider: "amadeus"}}

	cache.On("GetFlights", ctx, normalized()).Return(nil, nil).Once()
	amadeus.On("SearchFlights", ctx, normalized()).Return(offers, nil).Once()
	cache.On("SetFlights", ctx, normalized(), offers).Return(nil).Once()

	got, err := service.Search(ctx, query)

	assert.NoError(t, err)
	assert.Equal(t, offers, got)
	amadeus.AssertExpectations(t)
	cache.AssertExpectations(t)
	duffel.AssertNotCalled(t, "SearchFlights", mock.Anything, mock.Anything)
}

func TestFlightService_Search_FallsBackOnError(t *testing.T) {
	amadeus := &MockProvider{name: "amadeus"}
	duffel := &MockProvider{name: "duffel"}
	service := NewFlightService([]SearchProvider{amadeus, duffel}, nil, nil, nil)

	ctx := context.Background()
	offers := []domain.FlightOffer{{ID: "off_1", Provider: "duffel"}}

	amadeus.On("SearchFlights", ctx, normalized()).Return(nil, errors.New("401 unauthorized")).Once()
	duffel.On("SearchFlights", ctx, normalized()).Return(offers, nil).Once()

	got, err := service.Search(ctx, query)

	assert.NoError(t, err)
	assert.Equal(t, "duffel", got[0].Provider)
	amadeus.AssertExpectations(t)
	duffel.AssertExpectations(t)
}

func TestFlightService_Search_FallsBackOnEmpty(t *testing.T) {
	amadeus := &MockProvider{name: "amadeus"}
	duffel := &MockProvider{name: "duffel"}
	service := NewFlightService([]SearchProvider{amadeus, duffel}, nil, nil, nil)

	ctx := context.Background()
	offers := []domain.FlightOffer{{ID: "off_1", Provider: "duffel"}}

	amadeus.On("SearchFlights", ctx, normalized()).Return([]domain.FlightOffer{}, nil).Once()
	duffel.On("SearchFlights", ctx, normalized()).Return(offers, nil).Once()

	got, err := service.Search(ctx, query)

	assert.NoError(t, err)
	assert.Equal(t, offers, got)
	duffel.AssertExpectations(t)
}

func TestFlightService_Search_NoFlights(t *testing.T) {
	amadeus := &MockProvider{name: "amadeus"}
	duffel := &MockProvider{name: "duffel"}
	service := NewFlightService([]SearchProvider{amadeus, duffel}, nil, nil, nil)

	ctx := context.Background()
	amadeus.On("SearchFlights", ctx, normalized()).Return(nil, errors.New("boom")).Once()
	duffel.On("SearchFlights", ctx, normalized()).Return([]domain.FlightOffer{}, nil).Once()

	got, err := service.Search(ctx, query)

	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrNoFlightsFound)
}

func TestFlightService_Search_CacheHit(t *testing.T) {
	amadeus := &MockProvider{name: "amadeus"}
	cache := &MockCache{}
	service := NewFlightService([]SearchProvider{amadeus}, nil, cache, nil)

	ctx := context.Background()
	offers := []domain.FlightOffer{{ID: "cached"}}
	cache.On("GetFlights", ctx, normalized()).Return(offers, nil).Once()

	got, err := service.Search(ctx, query)

	assert.NoError(t, err)
	assert.Equal(t, offers, got)
	amadeus.AssertNotCalled(t, "SearchFlights", mock.Anything, mock.Anything)
}

func TestFlightService_Search_CacheErrorIgnored(t *testing.T) {
	amadeus := &MockProvider{name: "amadeus"}
	cache := &MockCache{}
	service := NewFlightService([]SearchProvider{amadeus}, nil, cache, nil)

	ctx := context.Background()
	offers := []domain.FlightOffer{{ID: "1"}}
	cache.On("GetFlights", ctx, normalized()).Return(nil, errors.New("redis down")).Once()
	amadeus.On("SearchFlights", ctx, normalized()).Return(offers, nil).Once()
	cache.On("SetFlights", ctx, normalized(), offers).Return(errors.New("redis down")).Once()

	got, err := service.Search(ctx, query)

	assert.NoError(t, err)
	assert.Equal(t, offers, got)
}

func TestFlightService_Search_Validation(t *testing.T) {
	service := NewFlightService(nil, nil, nil, nil)

	_, err := service.Search(context.Background(), domain.FlightQuery{Origin: "JFK"})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFlightService_Search_ContextCancelled(t *testing.T) {
	amadeus := &MockProvider{name: "amadeus"}
	duffel := &MockProvider{name: "duffel"}
	service := NewFlightService([]SearchProvider{amadeus, duffel}, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	amadeus.On("SearchFlights", ctx, normalized()).Run(func(mock.Arguments) { cancel() }).Return(nil, context.Canceled).Once()

	_, err := service.Search(ctx, query)

	assert.ErrorIs(t, err, context.Canceled)
	duffel.AssertNotCalled(t, "SearchFlights", mock.Anything, mock.Anything)
}

func TestFlightService_ConfirmPrice(t *testing.T) {
	pricer := &MockPricer{}
	service := NewFlightService(nil, pricer, nil, nil)
	ctx := context.Background()

	_, err := service.ConfirmPrice(ctx, "", nil)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	priced := json.RawMessage(`{"flightOffers":[]}`)
	pricer.On("ConfirmPrice", ctx, "42", json.RawMessage(nil)).Return(priced, nil).Once()
	got, err := service.ConfirmPrice(ctx, "42", nil)
	require.NoError(t, err)
	assert.JSONEq(t, string(priced), string(got))

	pricer.On("ConfirmPrice", ctx, "43", json.RawMessage(nil)).Return(nil, errors.New("offer expired")).Once()
	_, err = service.ConfirmPrice(ctx, "43", nil)
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)

	pricer.AssertExpectations(t)
}
