package provider

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	cases := map[string]string{
		"PT4H30M":  "4h 30m",
		"PT2H":     "2h",
		"PT45M":    "45m",
		"P1DT2H5M": "26h 5m",
		"pt1h10m":  "1h 10m",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatDuration(in), in)
	}
}

func TestFormatStops(t *testing.T) {
	assert.Equal(t, "Direct", FormatStops(0))
	assert.Equal(t, "1 stop", FormatStops(1))
	assert.Equal(t, "3 stops", FormatStops(3))
}

func TestClockTime(t *testing.T) {
	assert.Equal(t, "10:30", ClockTime("2026-12-01T10:30:00"))
	assert.Equal(t, "07:05", ClockTime("2026-12-01T07:05:00Z"))
	assert.Equal(t, "", ClockTime("tomorrow"))
}

func TestSkyscannerLink(t *testing.T) {
	assert.Equal(t, "https://www.skyscanner.com/transport/flights/jfk/lax/261201",
		SkyscannerLink("JFK", "LAX", "2026-12-01", ""))
	assert.Equal(t, "https://www.skyscanner.com/transport/flights/jfk/lax/261201/261208",
		SkyscannerLink("JFK", "LAX", "2026-12-01", "2026-12-08"))
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "USD 350.00", FormatPrice("USD", decimal.RequireFromString("350")))
}
