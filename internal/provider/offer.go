// Package provider holds formatting shared by the flight offer providers.
package provider

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?)?`)

// FormatDuration turns an ISO-8601 duration such as PT4H30M into "4h 30m".
func FormatDuration(iso string) string {
	m := isoDuration.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(iso)))
	if m == nil || m[0] == "P" || m[0] == "" {
		return strings.ToLower(strings.TrimPrefix(iso, "PT"))
	}
	days, _ := strconv.Atoi(m[1])
	hours, _ := strconv.Atoi(m[2])
	minutes, _ := strconv.Atoi(m[3])
	hours += days * 24

	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

func FormatStops(stops int) string {
	switch {
	case stops <= 0:
		return "Direct"
	case stops == 1:
		return "1 stop"
	default:
		return fmt.Sprintf("%d stops", stops)
	}
}

// ClockTime extracts HH:MM from a provider timestamp. Both RFC3339 and
// zone-less local times are accepted.
func ClockTime(ts string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Format("15:04")
		}
	}
	return ""
}

func FormatPrice(currency string, amount decimal.Decimal) string {
	return fmt.Sprintf("%s %s", currency, amount.StringFixed(2))
}

// SkyscannerLink builds the public search page for a route as a booking fallback.
func SkyscannerLink(origin, destination, departure, ret string) string {
	link := fmt.Sprintf("https://www.skyscanner.com/transport/flights/%s/%s/%s",
		strings.ToLower(origin), strings.ToLower(destination), compactDate(departure))
	if ret != "" {
		link += "/" + compactDate(ret)
	}
	return link
}

func compactDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("060102")
}
