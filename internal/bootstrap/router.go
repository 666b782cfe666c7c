package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/Domenick1991/triprex/api"
	"github.com/Domenick1991/triprex/config"
	"github.com/Domenick1991/triprex/internal/logger"
	"github.com/Domenick1991/triprex/internal/service/booking"
	"github.com/Domenick1991/triprex/internal/service/flights"
	"github.com/Domenick1991/triprex/internal/service/hotels"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

const (
	healthTimeout = 2 * time.Second
	swaggerSpec   = "/swagger/triprex.swagger.json"
)

// Deps are the use cases and adapters the transport layer is built from.
type Deps struct {
	Flights  flights.FlightUseCase
	Hotels   hotels.HotelUseCase
	Bookings booking.BookingUseCase
	Airports api.AirportSearcher
	Webhooks api.WebhookParser
	// Checker backs the debug connectivity route.
	Checker api.ConnectionChecker
	// Health checks run by /healthz, keyed by component.
	Health map[string]func(context.Context) error
	Logger *zap.Logger
}

func (d Deps) logger() *zap.Logger {
	return logger.OrNop(d.Logger)
}

// NewRouter builds the gin engine serving /api, /healthz, /metrics and /docs.
func NewRouter(cfg *config.Config, deps Deps) (*gin.Engine, error) {
	if err := api.RegisterValidators(); err != nil {
		return nil, err
	}
	log := deps.logger()

	r := gin.New()
	r.Use(logger.GinMiddleware(log.Named("http")), logger.Recovery(log))

	group := r.Group("/api")
	api.NewFlightHandler(deps.Flights).Register(group.Group("/flights"))
	api.NewHotelHandler(deps.Hotels).Register(group.Group("/hotels"))
	api.NewBookingHandler(deps.Bookings).Register(group)
	api.NewAirportHandler(deps.Airports).Register(group.Group("/airports"))
	if deps.Webhooks != nil {
		api.NewWebhookHandler(deps.Webhooks, deps.Bookings).Register(group.Group("/webhooks"))
	}
	if cfg.HTTP.DebugRoutes {
		log.Warn("debug routes enabled")
		api.NewDebugHandler(cfg, deps.Flights, deps.Checker).Register(group.Group("/debug"))
	}

	r.GET("/healthz", healthHandler(deps.Health))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.HTTP.SwaggerDir != "" {
		r.StaticFS("/swagger", http.Dir(cfg.HTTP.SwaggerDir))
		r.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(swaggerSpec))))
	}
	return r, nil
}

func healthHandler(checks map[string]func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				results[name] = err.Error()
				continue
			}
			results[name] = "ok"
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{"status": state, "checks": results})
	}
}
