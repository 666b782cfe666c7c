package cache

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestFlightsKey_NormalizesQuery(t *testing.T) {
	a := flightsKey(domain.FlightQuery{Origin: "jfk", Destination: "lax ", DepartureDate: "2026-12-01"})
	b := flightsKey(domain.FlightQuery{Origin: "JFK", Destination: "LAX", DepartureDate: "2026-12-01", Adults: 1})
	c := flightsKey(domain.FlightQuery{Origin: "JFK", Destination: "LAX", DepartureDate: "2026-12-01", Adults: 2})

	assert.Equal(t, a, b)
	assert.NotEqual(t, b, c)
}

func TestHotelsKey_IncludesOffset(t *testing.T) {
	q := domain.HotelQuery{Location: "Paris", CheckIn: "2026-12-01", CheckOut: "2026-12-03", Guests: domain.GuestConfig{Adults: 2, Rooms: 1}}
	page2 := q
	page2.Offset = 25

	assert.NotEqual(t, hotelsKey(q), hotelsKey(page2))
	q.Location = " paris"
	assert.Equal(t, hotelsKey(q), hotelsKey(domain.HotelQuery{Location: "PARIS", CheckIn: "2026-12-01", CheckOut: "2026-12-03", Guests: domain.GuestConfig{Adults: 2, Rooms: 1}}))
}

func newContainerCache(t *testing.T) *RedisCache {
	t.Helper()
	if testing.Short() {
		t.Skip("redis container tests are skipped in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)

	c := NewRedisCacheFromClient(redis.NewClient(opts), time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisCache_FlightsRoundTrip(t *testing.T) {
	c := newContainerCache(t)
	ctx := context.Background()
	q := domain.FlightQuery{Origin: "JFK", Destination: "LAX", DepartureDate: "2026-12-01"}

	miss, err := c.GetFlights(ctx, q)
	require.NoError(t, err)
	assert.Nil(t, miss)

	require.NoError(t, c.SetFlights(ctx, q, []domain.FlightOffer{{ID: "1", Airline: "Delta", Provider: "amadeus"}}))

	hit, err := c.GetFlights(ctx, q)
	require.NoError(t, err)
	require.Len(t, hit, 1)
	assert.Equal(t, "Delta", hit[0].Airline)
}

func TestRedisCache_BookingLock(t *testing.T) {
	c := newContainerCache(t)
	ctx := context.Background()

	token, err := c.AcquireBookingLock(ctx, "b1", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	second, err := c.AcquireBookingLock(ctx, "b1", time.Minute)
	require.NoError(t, err)
	assert.Empty(t, second)

	// A stale token must not release someone else's lock.
	require.NoError(t, c.ReleaseBookingLock(ctx, "b1", "other"))
	again, err := c.AcquireBookingLock(ctx, "b1", time.Minute)
	require.NoError(t, err)
	assert.Empty(t, again)

	require.NoError(t, c.ReleaseBookingLock(ctx, "b1", token))
	third, err := c.AcquireBookingLock(ctx, "b1", time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, third)
}

func TestRedisCache_Idempotency(t *testing.T) {
	c := newContainerCache(t)
	ctx := context.Background()

	existing, reserved, err := c.ReserveIdempotencyKey(ctx, "k1", time.Minute)
	require.NoError(t, err)
	assert.True(t, reserved)
	assert.Empty(t, existing)

	existing, reserved, err = c.ReserveIdempotencyKey(ctx, "k1", time.Minute)
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Empty(t, existing)

	require.NoError(t, c.CompleteIdempotencyKey(ctx, "k1", "booking-1", time.Minute))
	existing, reserved, err = c.ReserveIdempotencyKey(ctx, "k1", time.Minute)
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Equal(t, "booking-1", existing)

	require.NoError(t, c.ReleaseIdempotencyKey(ctx, "k1"))
	_, reserved, err = c.ReserveIdempotencyKey(ctx, "k1", time.Minute)
	require.NoError(t, err)
	assert.True(t, reserved)
}
