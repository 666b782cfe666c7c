package mock

import (
	"context"
	"strings"
	"testing"

	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_SearchFlights(t *testing.T) {
	g := NewSeededGenerator(1, 2)

	for run := 0; run < 20; run++ {
		offers, err := g.SearchFlights(context.Background(), domain.FlightQuery{
			Origin: "jfk", Destination: "cdg", DepartureDate: "2026-12-01",
		})
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(offers), 5)
		require.LessOrEqual(t, len(offers), 10)

		for i, o := range offers {
			assert.True(t, o.IsMock)
			assert.Equal(t, Name, o.Provider)
			assert.True(t, strings.HasPrefix(o.ID, "mock-"), o.ID)
			assert.True(t, o.Amount.GreaterThanOrEqual(decimal.NewFromInt(400)), o.Price)
			assert.True(t, o.Amount.LessThanOrEqual(decimal.NewFromInt(1200)), o.Price)
			assert.Contains(t, []string{"Direct", "1 stop", "2 stops"}, o.Stops)
			assert.Equal(t, "JFK", o.Origin)
			assert.Equal(t, "https://www.skyscanner.com/transport/flights/jfk/cdg/261201", o.BookingLink)
			assert.Len(t, o.Departure, 5)
			assert.Len(t, o.Arrival, 5)
			if i > 0 {
				assert.False(t, o.Amount.LessThan(offers[i-1].Amount), "offers must be sorted by price")
			}
		}
	}
}

func TestGenerator_DefaultsRoute(t *testing.T) {
	offers, err := NewGenerator().SearchFlights(context.Background(), domain.FlightQuery{})
	require.NoError(t, err)
	require.NotEmpty(t, offers)
	assert.Equal(t, "JFK", offers[0].Origin)
	assert.Equal(t, "LHR", offers[0].Destination)
}
