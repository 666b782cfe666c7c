package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/triprex/config"
	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/Domenick1991/triprex/internal/kafka"
	"github.com/Domenick1991/triprex/internal/metrics"
	"github.com/Domenick1991/triprex/internal/repository"
	"go.uber.org/zap"
)

type BookingUseCase interface {
	BookFlight(ctx context.Context, input BookFlightInput) (*domain.Booking, error)
	BookHotel(ctx context.Context, input BookHotelInput) (*domain.Booking, error)
	Get(ctx context.Context, id string) (*domain.BookingView, error)
	Cancel(ctx context.Context, id string) (*domain.Booking, error)
	FailStalePending(ctx context.Context) ([]domain.Booking, error)
	MarkPayment(ctx context.Context, paymentRef string, status domain.PaymentStatus) (*domain.Booking, error)
	Receipt(ctx context.Context, id string) (string, error)
}

type FlightBooker interface {
	CreateFlightOrder(ctx context.Context, order domain.FlightOrder) (*domain.ProviderBooking, error)
	GetFlightOrder(ctx context.Context, orderID string) (json.RawMessage, error)
	CancelFlightOrder(ctx context.Context, orderID string) error
}

type HotelBooker interface {
	GetHotelOffer(ctx context.Context, offerID string) (*domain.HotelOffer, error)
	CreateHotelBooking(ctx context.Context, order domain.HotelOrder) (*domain.ProviderBooking, error)
}

type PaymentGateway interface {
	CreateIntent(ctx context.Context, req domain.PaymentRequest) (*domain.Payment, error)
	Retrieve(ctx context.Context, id string) (*domain.Payment, error)
	Refund(ctx context.Context, paymentID string) (*domain.Refund, error)
}

type Cache interface {
	AcquireBookingLock(ctx context.Context, bookingID string, ttl time.Duration) (string, error)
	ReleaseBookingLock(ctx context.Context, bookingID, token string) error
	ReserveIdempotencyKey(ctx context.Context, key string, ttl time.Duration) (string, bool, error)
	CompleteIdempotencyKey(ctx context.Context, key, bookingID string, ttl time.Duration) error
	ReleaseIdempotencyKey(ctx context.Context, key string) error
}

type Producer interface {
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error
}

const defaultPublishRetries = 3

const providerAmadeus = "amadeus"

type BookingService struct {
	bookings           repository.BookingRepository
	flights            FlightBooker
	hotels             HotelBooker
	payments           PaymentGateway
	cache              Cache
	producer           Producer
	bookingTopic       string
	notificationsTopic string
	publishRetries     int
	cfg                config.BookingConfig
	logger             *zap.Logger
	now                func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithCache(cache Cache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

func WithProducer(producer Producer, bookingTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
	}
}

// WithPublishRetries bounds the attempts per event publish. Non-positive keeps the default.
func WithPublishRetries(n int) BookingServiceOption {
	return func(s *BookingService) {
		if n > 0 {
			s.publishRetries = n
		}
	}
}

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithLogger(logger *zap.Logger) BookingServiceOption {
	return func(s *BookingService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	flights FlightBooker,
	hotels HotelBooker,
	payments PaymentGateway,
	cfg config.BookingConfig,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings: bookings,
		flights:  flights,
		hotels:   hotels,
		payments: payments,
		cfg:      cfg,
		logger:   zap.NewNop(),
		now:      time.Now,

		publishRetries: defaultPublishRetries,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Get returns the stored booking. Confirmed flight bookings are enriched with
// the live provider order; a failed lookup only costs the enrichment.
func (s *BookingService) Get(ctx context.Context, id string) (*domain.BookingView, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := &domain.BookingView{Booking: *b}

	if b.Status != domain.BookingStatusConfirmed || b.ProviderRef == "" {
		return view, nil
	}
	if b.Type != domain.BookingTypeFlight || s.flights == nil {
		s.logger.Debug("live details not available", zap.String("booking_id", b.ID), zap.String("type", string(b.Type)))
		return view, nil
	}

	liveCtx := ctx
	if s.cfg.LiveDetailsTimeout > 0 {
		var cancel context.CancelFunc
		liveCtx, cancel = context.WithTimeout(ctx, s.cfg.LiveDetailsTimeout)
		defer cancel()
	}
	live, err := s.flights.GetFlightOrder(liveCtx, b.ProviderRef)
	if err != nil {
		s.logger.Warn("could not fetch live booking details", zap.String("booking_id", b.ID), zap.Error(err))
		return view, nil
	}
	view.LiveDetails = live
	return view, nil
}

// Cancel cancels any booking that is not cancelled yet. Provider cancellation
// and refunds are attempted but never block the local cancellation.
func (s *BookingService) Cancel(ctx context.Context, id string) (*domain.Booking, error) {
	unlock, err := s.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := b.Cancellable(); err != nil {
		return nil, err
	}
	log := s.logger.With(zap.String("booking_id", b.ID), zap.String("type", string(b.Type)))

	if b.ProviderRef != "" {
		if err := s.cancelWithProvider(ctx, b); err != nil {
			log.Warn("provider cancellation failed, cancelling locally", zap.Error(err))
		} else {
			log.Info("provider cancellation succeeded")
		}
	}

	if b.PaymentStatus == domain.PaymentStatusPaid && b.PaymentRef != "" {
		refund, err := s.payments.Refund(ctx, b.PaymentRef)
		if err != nil {
			log.Error("refund failed", zap.String("payment_ref", b.PaymentRef), zap.Error(err))
		} else {
			log.Info("refund processed", zap.String("refund_id", refund.ID), zap.String("status", refund.Status))
			b.PaymentStatus = domain.PaymentStatusRefunded
		}
	}

	b.Status = domain.BookingStatusCancelled
	if err := s.bookings.Update(context.WithoutCancel(ctx), b); err != nil {
		return nil, err
	}
	s.transitioned(ctx, kafka.EventBookingCancelled, b)
	return b, nil
}

func (s *BookingService) cancelWithProvider(ctx context.Context, b *domain.Booking) error {
	switch b.Type {
	case domain.BookingTypeFlight:
		if s.flights == nil {
			return domain.ErrUnsupportedOperation
		}
		return s.flights.CancelFlightOrder(ctx, b.ProviderRef)
	default:
		return fmt.Errorf("%s cancellation: %w", b.Type, domain.ErrUnsupportedOperation)
	}
}

// FailStalePending fails bookings that stayed pending longer than the
// configured pending TTL.
func (s *BookingService) FailStalePending(ctx context.Context) ([]domain.Booking, error) {
	ttl := s.cfg.PendingTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	reason := fmt.Sprintf("booking not completed within %s", ttl)
	stale, err := s.bookings.FailStalePending(ctx, s.now().Add(-ttl), reason)
	if err != nil {
		return nil, err
	}
	for i := range stale {
		s.transitioned(ctx, kafka.EventBookingExpired, &stale[i])
	}
	if len(stale) > 0 {
		s.logger.Info("stale pending bookings failed", zap.Int("count", len(stale)))
	}
	return stale, nil
}

// MarkPayment applies a payment status reported by the payment processor.
// A refunded booking never goes back to paid.
func (s *BookingService) MarkPayment(ctx context.Context, paymentRef string, status domain.PaymentStatus) (*domain.Booking, error) {
	if paymentRef == "" {
		return nil, domain.InvalidInput("payment reference is required")
	}
	found, err := s.bookings.FindByPaymentRef(ctx, paymentRef)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lock(ctx, found.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	b, err := s.bookings.GetByID(ctx, found.ID)
	if err != nil {
		return nil, err
	}
	if b.PaymentStatus == status || (b.PaymentStatus == domain.PaymentStatusRefunded && status == domain.PaymentStatusPaid) {
		return b, nil
	}

	b.PaymentStatus = status
	if err := s.bookings.Update(ctx, b); err != nil {
		return nil, err
	}
	s.publish(ctx, kafka.EventPaymentUpdated, b)
	return b, nil
}

// lock takes the per-booking lock. Without a cache, or when Redis is down,
// the operation runs unlocked.
func (s *BookingService) lock(ctx context.Context, id string) (func(), error) {
	noop := func() {}
	if s.cache == nil {
		return noop, nil
	}
	token, err := s.cache.AcquireBookingLock(ctx, id, s.cfg.LockTTL)
	if err != nil {
		s.logger.Warn("booking lock unavailable, continuing unlocked", zap.String("booking_id", id), zap.Error(err))
		return noop, nil
	}
	if token == "" {
		return nil, domain.ErrBookingBusy
	}
	return func() {
		if err := s.cache.ReleaseBookingLock(context.WithoutCancel(ctx), id, token); err != nil {
			s.logger.Warn("booking lock release failed", zap.String("booking_id", id), zap.Error(err))
		}
	}, nil
}

// claimKey reserves an idempotency key. It returns the booking created by an
// earlier request with the same key, or claimed=true when this request owns
// the key and must settle it.
func (s *BookingService) claimKey(ctx context.Context, key string) (*domain.Booking, bool, error) {
	if key == "" || s.cache == nil {
		return nil, false, nil
	}
	existing, reserved, err := s.cache.ReserveIdempotencyKey(ctx, key, s.cfg.IdempotencyTTL)
	if err != nil {
		s.logger.Warn("idempotency key not reserved", zap.Error(err))
		return nil, false, nil
	}
	if reserved {
		return nil, true, nil
	}
	if existing == "" {
		return nil, false, domain.ErrRequestInProgress
	}
	b, err := s.bookings.GetByID(ctx, existing)
	if err != nil {
		return nil, false, err
	}
	return b, false, nil
}

func (s *BookingService) settleKey(ctx context.Context, key string, created *domain.Booking) {
	ctx = context.WithoutCancel(ctx)
	var err error
	if created == nil {
		err = s.cache.ReleaseIdempotencyKey(ctx, key)
	} else {
		err = s.cache.CompleteIdempotencyKey(ctx, key, created.ID, s.cfg.IdempotencyTTL)
	}
	if err != nil {
		s.logger.Warn("idempotency key not settled", zap.Error(err))
	}
}

func replayed(b *domain.Booking) (*domain.Booking, error) {
	if b.Status == domain.BookingStatusFailed {
		return nil, &domain.BookingFailedError{BookingID: b.ID, Err: errors.New(b.FailureReason)}
	}
	return b, nil
}

// fail records the failure on the row and returns the error the caller
// reports, which carries the booking id.
func (s *BookingService) fail(ctx context.Context, b *domain.Booking, cause error, details func(reason string) json.RawMessage) error {
	ctx = context.WithoutCancel(ctx)
	b.Status = domain.BookingStatusFailed
	b.FailureReason = cause.Error()
	if details != nil {
		b.Details = details(b.FailureReason)
	}
	if err := s.bookings.Update(ctx, b); err != nil {
		s.logger.Error("could not record booking failure", zap.String("booking_id", b.ID), zap.Error(err))
	}
	s.transitioned(ctx, kafka.EventBookingFailed, b)
	return &domain.BookingFailedError{BookingID: b.ID, Err: cause}
}

func (s *BookingService) transitioned(ctx context.Context, eventType string, b *domain.Booking) {
	metrics.Bookings.WithLabelValues(string(b.Type), string(b.Status)).Inc()
	s.publish(ctx, eventType, b)
}

func (s *BookingService) publish(ctx context.Context, eventType string, b *domain.Booking) {
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	ctx = context.WithoutCancel(ctx)
	event := kafka.NewBookingEvent(eventType, b)
	if err := s.producer.PublishWithRetry(ctx, s.bookingTopic, b.ID, event, s.publishRetries); err != nil {
		s.logger.Warn("failed to publish booking event", zap.String("type", eventType), zap.String("booking_id", b.ID), zap.Error(err))
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.PublishWithRetry(ctx, s.notificationsTopic, b.ID, event, s.publishRetries); err != nil {
			s.logger.Warn("failed to publish notification", zap.String("type", eventType), zap.String("booking_id", b.ID), zap.Error(err))
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
