package payment

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/Domenick1991/triprex/config"
	"github.com/Domenick1991/triprex/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
)

func TestStripeGateway_TestMode(t *testing.T) {
	fixed := time.Unix(0, 1700000000000000000)
	g := NewStripeGateway(config.StripeConfig{}, nil, WithClock(func() time.Time { return fixed }))
	require.True(t, g.TestMode())

	p, err := g.CreateIntent(context.Background(), domain.PaymentRequest{Amount: decimal.RequireFromString("10.50"), Currency: "USD"})
	require.NoError(t, err)
	assert.Equal(t, "test_1700000000000000000", p.ID)
	assert.Equal(t, StatusTestMode, p.Status)
	assert.True(t, p.TestMode)

	r, err := g.Refund(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "test_refund_1700000000000000000", r.ID)
	assert.Equal(t, StatusTestMode, r.Status)

	got, err := g.Retrieve(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(41230), MinorUnits(domain.PaymentRequest{Amount: decimal.RequireFromString("412.30")}))
	assert.Equal(t, int64(1000), MinorUnits(domain.PaymentRequest{Amount: decimal.RequireFromString("9.999")}))
}

func TestStripeGateway_CreateIntent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		form, err := url.ParseQuery(string(body))
		require.NoError(t, err)
		assert.Equal(t, "41230", form.Get("amount"))
		assert.Equal(t, "usd", form.Get("currency"))
		assert.Equal(t, "jane@example.com", form.Get("receipt_email"))
		assert.Equal(t, "flight", form.Get("metadata[type]"))
		assert.Equal(t, "true", form.Get("automatic_payment_methods[enabled]"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"pi_123","object":"payment_intent","status":"requires_payment_method","client_secret":"pi_123_secret_abc"}`)
	}))
	defer srv.Close()

	g := NewStripeGateway(config.StripeConfig{SecretKey: "sk_test_123"}, nil, WithBackendURL(srv.URL))
	require.False(t, g.TestMode())

	p, err := g.CreateIntent(context.Background(), domain.PaymentRequest{
		Amount:        decimal.RequireFromString("412.30"),
		Currency:      "USD",
		CustomerEmail: "jane@example.com",
		Metadata:      map[string]string{"type": "flight"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", p.ID)
	assert.Equal(t, "requires_payment_method", p.Status)
	assert.Equal(t, "pi_123_secret_abc", p.ClientSecret)
	assert.False(t, p.TestMode)
}

func signed(t *testing.T, secret, payload string) string {
	t.Helper()
	sp := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return sp.Header
}

func TestStripeGateway_ParseWebhook(t *testing.T) {
	g := NewStripeGateway(config.StripeConfig{WebhookSecret: "whsec_test"}, nil)

	succeeded := `{"id":"evt_1","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_9","object":"payment_intent"}}}`
	ev, err := g.ParseWebhook([]byte(succeeded), signed(t, "whsec_test", succeeded))
	require.NoError(t, err)
	assert.Equal(t, "pi_9", ev.PaymentRef)
	assert.Equal(t, domain.PaymentStatusPaid, ev.Status)

	refunded := `{"id":"evt_2","object":"event","type":"charge.refunded","data":{"object":{"id":"ch_1","object":"charge","payment_intent":"pi_9","amount":41230,"amount_refunded":41230}}}`
	ev, err = g.ParseWebhook([]byte(refunded), signed(t, "whsec_test", refunded))
	require.NoError(t, err)
	assert.Equal(t, "pi_9", ev.PaymentRef)
	assert.Equal(t, domain.PaymentStatusRefunded, ev.Status)

	partial := `{"id":"evt_4","object":"event","type":"charge.refunded","data":{"object":{"id":"ch_1","object":"charge","payment_intent":"pi_9","amount":41230,"amount_refunded":10000}}}`
	ev, err = g.ParseWebhook([]byte(partial), signed(t, "whsec_test", partial))
	require.NoError(t, err)
	assert.Equal(t, "pi_9", ev.PaymentRef)
	assert.Empty(t, ev.Status)

	other := `{"id":"evt_3","object":"event","type":"customer.created","data":{"object":{"id":"cus_1","object":"customer"}}}`
	ev, err = g.ParseWebhook([]byte(other), signed(t, "whsec_test", other))
	require.NoError(t, err)
	assert.Empty(t, ev.Status)
	assert.Equal(t, "customer.created", ev.Type)
}

func TestStripeGateway_ParseWebhook_BadSignature(t *testing.T) {
	g := NewStripeGateway(config.StripeConfig{WebhookSecret: "whsec_test"}, nil)
	payload := `{"id":"evt_1","object":"event","type":"payment_intent.succeeded","data":{"object":{"id":"pi_9"}}}`

	_, err := g.ParseWebhook([]byte(payload), signed(t, "whsec_other", payload))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = NewStripeGateway(config.StripeConfig{}, nil).ParseWebhook([]byte(payload), "")
	assert.ErrorIs(t, err, ErrWebhookSecretMissing)
}
