// Package mock generates plausible flight offers when no live provider answers.
package mock

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/Domenick1991/triprex/internal/provider"
	"github.com/shopspring/decimal"
)

const Name = "mock"

type airline struct {
	name string
	code string
}

var airlines = []airline{
	{"Emirates", "EK"},
	{"Qatar Airways", "QR"},
	{"Delta Air Lines", "DL"},
	{"British Airways", "BA"},
	{"Lufthansa", "LH"},
	{"Air France", "AF"},
	{"Turkish Airlines", "TK"},
	{"United Airlines", "UA"},
}

type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewGenerator() *Generator {
	now := uint64(time.Now().UnixNano())
	return NewSeededGenerator(now, now>>1)
}

func NewSeededGenerator(seed1, seed2 uint64) *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(seed1, seed2))}
}

func (g *Generator) Name() string { return Name }

func (g *Generator) Configured() bool { return true }

// SearchFlights returns 5 to 10 offers priced 400-1200 USD, cheapest first.
func (g *Generator) SearchFlights(_ context.Context, q domain.FlightQuery) ([]domain.FlightOffer, error) {
	q = q.Normalize()
	origin, destination := q.Origin, q.Destination
	if origin == "" {
		origin = "JFK"
	}
	if destination == "" {
		destination = "LHR"
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.rnd.IntN(6) + 5
	offers := make([]domain.FlightOffer, 0, n)
	for i := 0; i < n; i++ {
		al := airlines[g.rnd.IntN(len(airlines))]
		amount := decimal.NewFromInt(int64(g.rnd.IntN(801) + 400))

		depHour, depMin := g.rnd.IntN(16)+6, g.rnd.IntN(60)
		durHours, durMins := g.rnd.IntN(10)+4, g.rnd.IntN(60)
		total := depHour*60 + depMin + durHours*60 + durMins

		stops := 0
		if g.rnd.Float64() <= 0.6 {
			stops = 1 + g.rnd.IntN(2)
		}

		offers = append(offers, domain.FlightOffer{
			ID:           fmt.Sprintf("mock-%09x", g.rnd.Uint64()&0xfffffffff),
			Provider:     Name,
			Airline:      al.name,
			FlightNumber: fmt.Sprintf("%s%d", al.code, g.rnd.IntN(900)+100),
			Price:        "USD " + amount.String(),
			Amount:       amount,
			Currency:     "USD",
			Departure:    fmt.Sprintf("%02d:%02d", depHour, depMin),
			Arrival:      fmt.Sprintf("%02d:%02d", (total/60)%24, total%60),
			Duration:     fmt.Sprintf("%dh %dm", durHours, durMins),
			Stops:        provider.FormatStops(stops),
			BookingLink:  provider.SkyscannerLink(origin, destination, q.DepartureDate, q.ReturnDate),
			Origin:       origin,
			Destination:  destination,
			IsMock:       true,
		})
	}

	sort.SliceStable(offers, func(i, j int) bool {
		return offers[i].Amount.LessThan(offers[j].Amount)
	})
	return offers, nil
}
