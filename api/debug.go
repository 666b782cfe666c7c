package api

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Domenick1991/triprex/config"
	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/Domenick1991/triprex/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

const maskedPrefix = 8

type ConnectionChecker interface {
	CheckConnection(ctx context.Context) error
}

// DebugHandler exposes provider diagnostics. Mounted only when
// http.debug_routes is enabled.
type DebugHandler struct {
	cfg     *config.Config
	flights flights.FlightUseCase
	checker ConnectionChecker
	now     func() time.Time
}

func NewDebugHandler(cfg *config.Config, flights flights.FlightUseCase, checker ConnectionChecker) *DebugHandler {
	return &DebugHandler{cfg: cfg, flights: flights, checker: checker, now: time.Now}
}

func (h *DebugHandler) Register(router *gin.RouterGroup) {
	router.GET("/env", h.env)
	router.GET("/flights", h.searchFlights)
}

func (h *DebugHandler) env(c *gin.Context) {
	amadeus := h.cfg.Providers.Amadeus
	c.JSON(http.StatusOK, gin.H{
		"status":                "Environment Check",
		"AMADEUS_CLIENT_ID":     mask(amadeus.ClientID),
		"AMADEUS_CLIENT_SECRET": mask(amadeus.ClientSecret),
		"DUFFEL_ACCESS_TOKEN":   mask(h.cfg.Providers.Duffel.AccessToken),
		"STRIPE_SECRET_KEY":     mask(h.cfg.Stripe.SecretKey),
		"hasClientId":           amadeus.ClientID != "",
		"hasClientSecret":       amadeus.ClientSecret != "",
		"providerOrder":         h.cfg.Providers.Order,
		"allEnvVars": lo.FilterMap(os.Environ(), func(kv string, _ int) (string, bool) {
			name, _, _ := strings.Cut(kv, "=")
			return name, strings.HasPrefix(name, "AMADEUS")
		}),
	})
}

// searchFlights runs a connectivity check and a sample search. Failures are
// reported in the body with status 200.
func (h *DebugHandler) searchFlights(c *gin.Context) {
	ctx := c.Request.Context()

	connectivity := gin.H{"success": false, "status": "NOT_ATTEMPTED"}
	if h.checker != nil {
		if err := h.checker.CheckConnection(ctx); err != nil {
			connectivity = gin.H{"success": false, "status": "FAILED", "error": err.Error()}
		} else {
			connectivity = gin.H{"success": true, "status": "OK"}
		}
	}

	offers, err := h.flights.Search(ctx, domain.FlightQuery{
		Origin:        "JFK",
		Destination:   "LAX",
		DepartureDate: h.now().AddDate(0, 0, 30).Format(time.DateOnly),
		Adults:        1,
	})
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "connectivity": connectivity, "error": err.Error()})
		return
	}

	var sample *domain.FlightOffer
	if len(offers) > 0 {
		sample = &offers[0]
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"connectivity": connectivity,
		"flightCount":  len(offers),
		"isMockData":   sample != nil && sample.IsMock,
		"sampleFlight": sample,
		"allFlights":   offers,
	})
}

func mask(secret string) string {
	if secret == "" {
		return "MISSING"
	}
	if len(secret) <= maskedPrefix {
		return secret[:len(secret)/2] + "..."
	}
	return secret[:maskedPrefix] + "..."
}
