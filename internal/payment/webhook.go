package payment

import (
	"errors"
	"fmt"

	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"github.com/tidwall/gjson"
)

var ErrWebhookSecretMissing = errors.New("stripe webhook secret is not configured")

const (
	EventPaymentSucceeded stripe.EventType = "payment_intent.succeeded"
	EventChargeRefunded   stripe.EventType = "charge.refunded"
)

// WebhookEvent is the part of a Stripe event bookings care about. Status is
// empty for events that do not change a booking.
type WebhookEvent struct {
	ID         string
	Type       string
	PaymentRef string
	Status     domain.PaymentStatus
}

func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*WebhookEvent, error) {
	if g.webhookSecret == "" {
		return nil, ErrWebhookSecretMissing
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	out := &WebhookEvent{ID: event.ID, Type: string(event.Type)}
	switch event.Type {
	case EventPaymentSucceeded:
		out.PaymentRef = gjson.GetBytes(event.Data.Raw, "id").String()
		out.Status = domain.PaymentStatusPaid
	case EventChargeRefunded:
		charge := gjson.ParseBytes(event.Data.Raw)
		out.PaymentRef = charge.Get("payment_intent").String()
		// partial refunds leave the booking paid
		if amount := charge.Get("amount").Int(); amount > 0 && charge.Get("amount_refunded").Int() >= amount {
			out.Status = domain.PaymentStatusRefunded
		}
	}
	return out, nil
}
