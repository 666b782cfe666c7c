package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/triprex/config"
	"github.com/Domenick1991/triprex/internal/bootstrap"
	"github.com/Domenick1991/triprex/internal/email"
	"github.com/Domenick1991/triprex/internal/kafka"
	"github.com/Domenick1991/triprex/internal/logger"
	"github.com/Domenick1991/triprex/internal/payment"
	"github.com/Domenick1991/triprex/internal/provider/amadeus"
	"github.com/Domenick1991/triprex/internal/service/booking"
	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
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
	zlog = zlog.Named("worker")
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.OpenStore(ctx, cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("open booking store", zap.Error(err))
	}
	defer store.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers, zlog.Named("kafka"))
	defer producer.Close()

	amadeusClient := amadeus.NewClient(cfg.Providers.Amadeus, cfg.Providers.Timeout, zlog.Named("amadeus"))
	bookingService := booking.NewBookingService(
		store.Bookings,
		amadeusClient,
		amadeusClient,
		payment.NewStripeGateway(cfg.Stripe, zlog.Named("stripe")),
		cfg.Booking,
		booking.WithProducer(producer, cfg.Kafka.BookingTopic),
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithPublishRetries(cfg.Kafka.PublishRetries),
		booking.WithLogger(zlog.Named("booking")),
	)

	sender, err := email.NewSender(cfg.SMTP, zlog.Named("email"))
	if err != nil {
		zlog.Fatal("init email sender", zap.Error(err))
	}

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, zlog.Named("consumer"))
	defer consumer.Close()

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		zlog.Fatal("init scheduler", zap.Error(err))
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(cfg.Worker.SweepInterval),
		gocron.NewTask(func() {
			sweep(ctx, bookingService, zlog)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		zlog.Fatal("schedule pending sweep", zap.Error(err))
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.ConsumeEvents(ctx, func(ctx context.Context, event kafka.BookingEvent) error {
			if err := sender.Send(ctx, event); err != nil {
				// a broken mailbox must not stall the partition
				zlog.Error("send notification", zap.String("booking_id", event.BookingID), zap.String("type", event.Type), zap.Error(err))
			}
			return nil
		})
	})

	g.Go(func() error {
		scheduler.Start()
		zlog.Info("worker started", zap.Duration("sweep_interval", cfg.Worker.SweepInterval))
		<-ctx.Done()
		zlog.Info("shutting down worker")
		return scheduler.Shutdown()
	})

	if err := g.Wait(); err != nil {
		zlog.Fatal("worker stopped", zap.Error(err))
	}
}

func sweep(ctx context.Context, bookings booking.BookingUseCase, zlog *zap.Logger) {
	failed, err := bookings.FailStalePending(ctx)
	if err != nil {
		zlog.Error("fail stale pending bookings", zap.Error(err))
		return
	}
	if len(failed) > 0 {
		zlog.Info("failed stale pending bookings", zap.Int("count", len(failed)))
	}
}
