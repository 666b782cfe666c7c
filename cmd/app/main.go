package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/triprex/config"
	"github.com/Domenick1991/triprex/internal/airports"
	"github.com/Domenick1991/triprex/internal/bootstrap"
	"github.com/Domenick1991/triprex/internal/cache"
	"github.com/Domenick1991/triprex/internal/kafka"
	"github.com/Domenick1991/triprex/internal/logger"
	"github.com/Domenick1991/triprex/internal/payment"
	"github.com/Domenick1991/triprex/internal/provider/amadeus"
	"github.com/Domenick1991/triprex/internal/provider/duffel"
	"github.com/Domenick1991/triprex/internal/provider/mock"
	"github.com/Domenick1991/triprex/internal/scraper"
	"github.com/Domenick1991/triprex/internal/service/booking"
	"github.com/Domenick1991/triprex/internal/service/flights"
	"github.com/Domenick1991/triprex/internal/service/hotels"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog, err := logger.NewForEnvironment(cfg.App.Env, cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.OpenStore(ctx, cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("open booking store", zap.Error(err))
	}
	defer store.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.SearchCacheTTL)
	defer redisCache.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers, zlog.Named("kafka"))
	defer producer.Close()

	amadeusClient := amadeus.NewClient(cfg.Providers.Amadeus, cfg.Providers.Timeout, zlog.Named("amadeus"))
	providers := flightProviders(cfg, amadeusClient, zlog)

	browser := scraper.New(cfg.Scraper, zlog.Named("scraper"))
	defer browser.Close()

	stripe := payment.NewStripeGateway(cfg.Stripe, zlog.Named("stripe"))
	if stripe.TestMode() {
		zlog.Warn("stripe secret key not set, payments run in test mode")
	}

	flightService := flights.NewFlightService(providers, amadeusClient, redisCache, zlog.Named("flights"))
	hotelService := hotels.NewHotelService(browser, redisCache, cfg.Scraper.AllowedHosts, zlog.Named("hotels"))
	bookingService := booking.NewBookingService(
		store.Bookings,
		amadeusClient,
		amadeusClient,
		stripe,
		cfg.Booking,
		booking.WithCache(redisCache),
		booking.WithProducer(producer, cfg.Kafka.BookingTopic),
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithPublishRetries(cfg.Kafka.PublishRetries),
		booking.WithLogger(zlog.Named("booking")),
	)

	deps := bootstrap.Deps{
		Flights:  flightService,
		Hotels:   hotelService,
		Bookings: bookingService,
		Airports: airports.Default(),
		Webhooks: stripe,
		Checker:  amadeusClient,
		Health: map[string]func(context.Context) error{
			"database": store.Ping,
			"redis":    redisCache.Ping,
			"kafka":    producer.CheckConnection,
		},
		Logger: zlog,
	}

	if err := bootstrap.Run(ctx, cfg, deps); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
}

// flightProviders follows providers.order; the mock generator is appended
// last when enabled and not already listed.
func flightProviders(cfg *config.Config, amadeusClient *amadeus.Client, zlog *zap.Logger) []flights.SearchProvider {
	providers := make([]flights.SearchProvider, 0, len(cfg.Providers.Order)+1)
	hasMock := false
	for _, name := range cfg.Providers.Order {
		switch name {
		case amadeus.Name:
			providers = append(providers, amadeusClient)
		case duffel.Name:
			providers = append(providers, duffel.NewClient(cfg.Providers.Duffel, cfg.Providers.Timeout, zlog.Named("duffel")))
		case mock.Name:
			providers = append(providers, mock.NewGenerator())
			hasMock = true
		}
	}
	if cfg.Providers.Mock.Enabled && !hasMock {
		zlog.Warn("mock flight provider enabled")
		providers = append(providers, mock.NewGenerator())
	}
	return providers
}
