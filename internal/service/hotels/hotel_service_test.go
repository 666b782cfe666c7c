package hotels

import (
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockScraper struct {
	mock.Mock
}

func (m *MockScraper) SearchHotels(ctx context.Context, q domain.HotelQuery) ([]domain.Hotel, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Hotel), args.Error(1)
}

func (m *MockScraper) HotelDetails(ctx context.Context, pageURL string) (*domain.HotelDetails, error) {
	args := m.Called(ctx, pageURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HotelDetails), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetHotels(ctx context.Context, q domain.HotelQuery) ([]domain.Hotel, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Hotel), args.Error(1)
}

func (m *MockCache) SetHotels(ctx context.Context, q domain.HotelQuery, hotels []domain.Hotel) error {
	args := m.Called(ctx, q, hotels)
	return args.Error(0)
}

func validQuery() domain.HotelQuery {
	return domain.HotelQuery{
		Location: "Paris",
		CheckIn:  "2026-12-01",
		CheckOut: "2026-12-04",
		Guests:   domain.GuestConfig{Adults: 2, Rooms: 1},
	}
}

func TestHotelService_Search(t *testing.T) {
	scraper := &MockScraper{}
	cache := &MockCache{}
	service := NewHotelService(scraper, cache, []string{"booking.com"}, nil)

	ctx := context.Background()
	hotels := []domain.Hotel{{ID: "le-petit", Name: "Le Petit"}}

	cache.On("GetHotels", ctx, validQuery()).Return(nil, nil).Once()
	scraper.On("SearchHotels", ctx, validQuery()).Return(hotels, nil).Once()
	cache.On("SetHotels", ctx, validQuery(), hotels).Return(nil).Once()

	got, err := service.Search(ctx, validQuery())

	assert.NoError(t, err)
	assert.Equal(t, hotels, got)
	scraper.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestHotelService_Search_EmptyIsNotAnError(t *testing.T) {
	scraper := &MockScraper{}
	service := NewHotelService(scraper, nil, nil, nil)

	ctx := context.Background()
	scraper.On("SearchHotels", ctx, validQuery()).Return(nil, nil).Once()

	got, err := service.Search(ctx, validQuery())

	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestHotelService_Search_ScraperFailure(t *testing.T) {
	scraper := &MockScraper{}
	service := NewHotelService(scraper, nil, nil, nil)

	ctx := context.Background()
	scraper.On("SearchHotels", ctx, validQuery()).Return(nil, errors.New("chrome crashed")).Once()

	_, err := service.Search(ctx, validQuery())

	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestHotelService_Search_CacheHit(t *testing.T) {
	scraper := &MockScraper{}
	cache := &MockCache{}
	service := NewHotelService(scraper, cache, nil, nil)

	ctx := context.Background()
	hotels := []domain.Hotel{{ID: "cached"}}
	cache.On("GetHotels", ctx, validQuery()).Return(hotels, nil).Once()

	got, err := service.Search(ctx, validQuery())

	assert.NoError(t, err)
	assert.Equal(t, hotels, got)
	scraper.AssertNotCalled(t, "SearchHotels", mock.Anything, mock.Anything)
}

func TestValidateQuery(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(q *domain.HotelQuery)
	}{
		{"missing location", func(q *domain.HotelQuery) { q.Location = " " }},
		{"bad check-in", func(q *domain.HotelQuery) { q.CheckIn = "12/01/2026" }},
		{"check-out before check-in", func(q *domain.HotelQuery) { q.CheckOut = "2026-11-30" }},
		{"same day", func(q *domain.HotelQuery) { q.CheckOut = q.CheckIn }},
		{"no adults", func(q *domain.HotelQuery) { q.Guests.Adults = 0 }},
		{"negative children", func(q *domain.HotelQuery) { q.Guests.Children = -1 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q := validQuery()
			tc.modify(&q)
			_, err := ValidateQuery(q)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	q := validQuery()
	q.Guests.Rooms = 0
	got, err := ValidateQuery(q)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Guests.Rooms)
}

func TestHotelService_Details(t *testing.T) {
	scraper := &MockScraper{}
	service := NewHotelService(scraper, nil, []string{"booking.com"}, nil)
	ctx := context.Background()

	page := "https://www.booking.com/hotel/fr/le-petit.html"
	details := &domain.HotelDetails{URL: page, Description: "Nice"}
	scraper.On("HotelDetails", ctx, page).Return(details, nil).Once()

	got, err := service.Details(ctx, page)
	require.NoError(t, err)
	assert.Equal(t, details, got)

	broken := "https://booking.com/hotel/broken.html"
	scraper.On("HotelDetails", ctx, broken).Return(nil, errors.New("timeout")).Once()
	_, err = service.Details(ctx, broken)
	assert.ErrorIs(t, err, domain.ErrHotelDetailsUnavailable)

	scraper.AssertExpectations(t)
}

func TestHotelService_Details_RejectsURL(t *testing.T) {
	scraper := &MockScraper{}
	service := NewHotelService(scraper, nil, []string{"booking.com"}, nil)
	ctx := context.Background()

	_, err := service.Details(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	for _, u := range []string{
		"http://169.254.169.254/latest/meta-data",
		"file:///etc/passwd",
		"https://evilbooking.com/hotel",
		"https://booking.com.evil.net/hotel",
		"not a url",
	} {
		_, err := service.Details(ctx, u)
		assert.ErrorIs(t, err, domain.ErrURLNotAllowed, u)
	}
	scraper.AssertNotCalled(t, "HotelDetails", mock.Anything, mock.Anything)
}
