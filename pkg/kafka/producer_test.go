package kafka

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func newTestProducer(w *fakeWriter, buf *bytes.Buffer) *Producer {
	return &Producer{writer: w, logger: slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}
}

func reviewEvent(t *testing.T) *Event {
	t.Helper()
	ev, err := NewEvent("review.created", "42", "review", "review-service",
		map[string]any{"id": 42, "product_id": 7, "user_id": 3, "rating": 5})
	require.NoError(t, err)
	return ev
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "ecommerce.review.created", Topic("review", "created"))
	assert.Equal(t, "ecommerce.review.deleted", Topic("review", "deleted"))
}

func TestNewEvent(t *testing.T) {
	ev := reviewEvent(t)
	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, 1, ev.Version)
	assert.Equal(t, "review", ev.AggregateType)

	var data struct {
		ProductID int64 `json:"product_id"`
		Rating    int   `json:"rating"`
	}
	require.NoError(t, ev.UnmarshalData(&data))
	assert.Equal(t, int64(7), data.ProductID)
	assert.Equal(t, 5, data.Rating)
}

func TestNewEvent_UnmarshalableData(t *testing.T) {
	_, err := NewEvent("x", "1", "review", "svc", make(chan int))
	assert.Error(t, err)
}

func TestEvent_RoundTripWithMetadata(t *testing.T) {
	ev := reviewEvent(t).WithCorrelationID("corr-1").WithMetadata("user_id", "3")
	raw, err := ev.Marshal()
	require.NoError(t, err)

	got, err := UnmarshalEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, ev.EventID, got.EventID)
	assert.Equal(t, "corr-1", got.CorrelationID)
	assert.Equal(t, map[string]string{"user_id": "3"}, got.Metadata)

	_, err = UnmarshalEvent([]byte("{"))
	assert.Error(t, err)
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	var buf bytes.Buffer
	p := newTestProducer(w, &buf)
	topic := Topic("review", "created")
	ev := reviewEvent(t).WithCorrelationID("corr-9")
	published := producerPublishes.WithLabelValues(topic, ev.EventType, publishOK)
	before := testutil.ToFloat64(published)
	require.NoError(t, p.Publish(context.Background(), topic, ev))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, topic, msg.Topic)
	assert.Equal(t, "42", string(msg.Key))

	carrier := NewHeaderCarrier(&msg.Headers)
	assert.Equal(t, "review.created", carrier.Get("event_type"))
	assert.Equal(t, "review-service", carrier.Get("source"))
	assert.Equal(t, "corr-9", carrier.Get("correlation_id"))

	assert.Equal(t, before+1, testutil.ToFloat64(published))
	assert.Contains(t, buf.String(), "event published")
}

func TestProducer_PublishError(t *testing.T) {
	w := &fakeWriter{err: errors.New("leader not available")}
	var buf bytes.Buffer
	p := newTestProducer(w, &buf)
	topic := Topic("review", "updated")
	ev := reviewEvent(t)
	failed := producerPublishes.WithLabelValues(topic, ev.EventType, publishError)
	before := testutil.ToFloat64(failed)

	err := p.Publish(context.Background(), topic, ev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), topic)
	assert.Equal(t, before+1, testutil.ToFloat64(failed))
	assert.Contains(t, buf.String(), "failed to publish event")
}

func TestProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	var buf bytes.Buffer
	require.NoError(t, newTestProducer(w, &buf).Close())
	assert.True(t, w.closed)
}

func TestDefaultProducerConfig(t *testing.T) {
	cfg := DefaultProducerConfig([]string{"localhost:9092"})
	assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.False(t, cfg.Async)
}

func TestNewProducer(t *testing.T) {
	p := NewProducer(DefaultProducerConfig([]string{"localhost:9092"}), slog.Default())
	require.NotNil(t, p)
	assert.NoError(t, p.Close())
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	assert.ErrorIs(t, PingBrokers(context.Background(), nil), ErrNoBrokers)
}
