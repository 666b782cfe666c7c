package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	failures int
	calls    int
	written  []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.calls++
	if w.calls <= w.failures {
		return errors.New("leader not available")
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func newTestProducer(w *fakeWriter) *Producer {
	return &Producer{writer: w, logger: zap.NewNop(), backoff: time.Millisecond}
}

func TestProducer_PublishWithRetry_RecoversAfterFailures(t *testing.T) {
	w := &fakeWriter{failures: 2}
	p := newTestProducer(w)

	err := p.PublishWithRetry(context.Background(), "booking-events", "b-1", map[string]string{"type": "booking_created"}, 3)

	require.NoError(t, err)
	assert.Equal(t, 3, w.calls)
	require.Len(t, w.written, 1)
	assert.Equal(t, "booking-events", w.written[0].Topic)
	assert.Equal(t, []byte("b-1"), w.written[0].Key)
	assert.JSONEq(t, `{"type":"booking_created"}`, string(w.written[0].Value))
}

func TestProducer_PublishWithRetry_GivesUp(t *testing.T) {
	w := &fakeWriter{failures: 10}
	p := newTestProducer(w)

	err := p.PublishWithRetry(context.Background(), "booking-events", "b-1", "x", 3)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 retries")
	assert.Equal(t, 3, w.calls)
}

func TestProducer_PublishWithRetry_SingleAttemptBelowOne(t *testing.T) {
	w := &fakeWriter{failures: 10}
	p := newTestProducer(w)

	err := p.PublishWithRetry(context.Background(), "booking-events", "b-1", "x", 0)

	require.Error(t, err)
	assert.Equal(t, 1, w.calls)
}

func TestProducer_PublishWithRetry_StopsOnCancel(t *testing.T) {
	w := &fakeWriter{failures: 10}
	p := &Producer{writer: w, logger: zap.NewNop(), backoff: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.PublishWithRetry(ctx, "booking-events", "b-1", "x", 3)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, w.calls)
}
