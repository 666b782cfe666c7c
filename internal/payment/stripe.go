// Package payment charges and refunds bookings through Stripe.
package payment

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/triprex/config"
	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/Domenick1991/triprex/internal/metrics"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"
)

const (
	StatusTestMode = "test_mode"
	providerName   = "stripe"
)

// StripeGateway runs in test mode when no secret key is configured: nothing
// leaves the process and synthetic ids are returned.
type StripeGateway struct {
	client        *stripe.Client
	key           string
	webhookSecret string
	logger        *zap.Logger
	now           func() time.Time
}

type Option func(*StripeGateway)

func WithBackendURL(url string) Option {
	return func(g *StripeGateway) {
		if g.client == nil {
			return
		}
		backends := stripe.NewBackendsWithConfig(&stripe.BackendConfig{
			URL:               stripe.String(url),
			MaxNetworkRetries: stripe.Int64(0),
		})
		g.client = stripe.NewClient(g.key, stripe.WithBackends(backends))
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *StripeGateway) { g.now = now }
}

func NewStripeGateway(cfg config.StripeConfig, logger *zap.Logger, opts ...Option) *StripeGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &StripeGateway{
		webhookSecret: cfg.WebhookSecret,
		logger:        logger,
		now:           time.Now,
	}
	if cfg.SecretKey != "" {
		g.client = stripe.NewClient(cfg.SecretKey)
		g.key = cfg.SecretKey
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.TestMode() {
		logger.Warn("stripe secret key missing, payments run in test mode")
	}
	return g
}

func (g *StripeGateway) TestMode() bool { return g.client == nil }

func (g *StripeGateway) CreateIntent(ctx context.Context, req domain.PaymentRequest) (*domain.Payment, error) {
	if g.TestMode() {
		id := "test_" + strconv.FormatInt(g.now().UnixNano(), 10)
		g.logger.Info("test mode payment intent", zap.String("id", id), zap.String("amount", req.Amount.StringFixed(2)))
		return &domain.Payment{ID: id, Status: StatusTestMode, TestMode: true}, nil
	}

	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(MinorUnits(req)),
		Currency: stripe.String(strings.ToLower(req.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentCreateAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if req.CustomerEmail != "" {
		params.ReceiptEmail = stripe.String(req.CustomerEmail)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	started := time.Now()
	pi, err := g.client.V1PaymentIntents.Create(ctx, params)
	metrics.ObserveProvider(providerName, "create_intent", started, err)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return &domain.Payment{ID: pi.ID, Status: string(pi.Status), ClientSecret: pi.ClientSecret}, nil
}

func (g *StripeGateway) Retrieve(ctx context.Context, id string) (*domain.Payment, error) {
	if g.TestMode() || strings.HasPrefix(id, "test_") {
		return &domain.Payment{ID: id, Status: StatusTestMode, TestMode: true}, nil
	}

	started := time.Now()
	pi, err := g.client.V1PaymentIntents.Retrieve(ctx, id, &stripe.PaymentIntentRetrieveParams{})
	metrics.ObserveProvider(providerName, "retrieve_intent", started, err)
	if err != nil {
		return nil, fmt.Errorf("retrieve payment intent %s: %w", id, err)
	}
	return &domain.Payment{ID: pi.ID, Status: string(pi.Status), ClientSecret: pi.ClientSecret}, nil
}

// Refund returns the full amount of a payment intent.
func (g *StripeGateway) Refund(ctx context.Context, paymentID string) (*domain.Refund, error) {
	if g.TestMode() || strings.HasPrefix(paymentID, "test_") {
		return &domain.Refund{
			ID:     "test_refund_" + strconv.FormatInt(g.now().UnixNano(), 10),
			Status: StatusTestMode,
		}, nil
	}

	started := time.Now()
	r, err := g.client.V1Refunds.Create(ctx, &stripe.RefundCreateParams{
		PaymentIntent: stripe.String(paymentID),
	})
	metrics.ObserveProvider(providerName, "refund", started, err)
	if err != nil {
		return nil, fmt.Errorf("refund %s: %w", paymentID, err)
	}
	return &domain.Refund{ID: r.ID, Status: string(r.Status)}, nil
}

// MinorUnits converts the amount to cents. Zero-decimal currencies are not
// handled; every supported provider prices in two-decimal currencies.
func MinorUnits(req domain.PaymentRequest) int64 {
	return req.Amount.Shift(2).Round(0).IntPart()
}
