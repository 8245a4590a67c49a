package messaging_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/frauddetect/internal/domain/event"
	"github.com/bibbank/frauddetect/internal/infrastructure/messaging"
	"github.com/bibbank/frauddetect/pkg/events"
	pkgkafka "github.com/bibbank/frauddetect/pkg/kafka"
)

var occurred = time.Date(2024, 6, 1, 2, 15, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockProducer struct {
	topic    string
	messages []pkgkafka.Message
	err      error
}

func (m *mockProducer) Publish(_ context.Context, topic string, messages ...pkgkafka.Message) error {
	if m.err != nil {
		return m.err
	}
	m.topic = topic
	m.messages = append(m.messages, messages...)
	return nil
}

type mockBroadcaster struct {
	payloads [][]byte
	err      error
}

func (m *mockBroadcaster) Broadcast(_ context.Context, payload []byte) error {
	if m.err != nil {
		return m.err
	}
	m.payloads = append(m.payloads, payload)
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	t.Run("wraps events keyed by transaction", func(t *testing.T) {
		producer := &mockProducer{}
		pub := messaging.NewKafkaPublisher(producer, "fraud.events", discardLogger())

		err := pub.Publish(context.Background(),
			event.NewTransactionAssessed("TX1", "1500", "CASH_OUT", "fraud", 92, []string{"Cash out transaction"}, occurred),
			event.NewHighRiskDetected("TX1", "fraud", "High risk transaction detected: TX1", 92, occurred),
		)

		require.NoError(t, err)
		assert.Equal(t, "fraud.events", producer.topic)
		require.Len(t, producer.messages, 2)

		msg := producer.messages[1]
		assert.Equal(t, "TX1", string(msg.Key))
		assert.Equal(t, event.EventTypeHighRiskDetected, msg.Headers[messaging.HeaderEventType])

		var env struct {
			Type        string `json:"type"`
			AggregateID string `json:"aggregate_id"`
			Data        struct {
				TransactionID string `json:"transaction_id"`
				RiskScore     int    `json:"risk_score"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(msg.Value, &env))
		assert.Equal(t, event.EventTypeHighRiskDetected, env.Type)
		assert.Equal(t, "TX1", env.AggregateID)
		assert.Equal(t, 92, env.Data.RiskScore)
	})

	t.Run("nothing to publish", func(t *testing.T) {
		producer := &mockProducer{err: errors.New("unreachable")}
		pub := messaging.NewKafkaPublisher(producer, "fraud.events", discardLogger())

		assert.NoError(t, pub.Publish(context.Background()))
	})

	t.Run("producer failure", func(t *testing.T) {
		producer := &mockProducer{err: errors.New("broker down")}
		pub := messaging.NewKafkaPublisher(producer, "fraud.events", discardLogger())

		err := pub.Publish(context.Background(), event.NewHighRiskDetected("TX1", "fraud", "m", 92, occurred))

		assert.ErrorContains(t, err, "broker down")
	})
}

func TestAlertRelay_Handle(t *testing.T) {
	highRisk, err := json.Marshal(events.Wrap(event.NewHighRiskDetected("TX1", "fraud", "m", 92, occurred)))
	require.NoError(t, err)
	assessed, err := json.Marshal(events.Wrap(event.NewTransactionAssessed("TX1", "10", "PAYMENT", "normal", 5, nil, occurred)))
	require.NoError(t, err)

	tests := []struct {
		name      string
		msg       pkgkafka.Message
		forwarded bool
	}{
		{
			name:      "high risk by header",
			msg:       pkgkafka.Message{Value: highRisk, Headers: map[string]string{messaging.HeaderEventType: event.EventTypeHighRiskDetected}},
			forwarded: true,
		},
		{
			name:      "high risk by envelope",
			msg:       pkgkafka.Message{Value: highRisk},
			forwarded: true,
		},
		{
			name: "other event skipped",
			msg:  pkgkafka.Message{Value: assessed, Headers: map[string]string{messaging.HeaderEventType: event.EventTypeTransactionAssessed}},
		},
		{
			name: "garbage skipped",
			msg:  pkgkafka.Message{Value: []byte("not json")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &mockBroadcaster{}
			relay := messaging.NewAlertRelay(b, discardLogger())

			require.NoError(t, relay.Handle(context.Background(), tt.msg))
			if tt.forwarded {
				require.Len(t, b.payloads, 1)
				assert.Equal(t, tt.msg.Value, b.payloads[0])
			} else {
				assert.Empty(t, b.payloads)
			}
		})
	}

	t.Run("broadcast failure leaves the message uncommitted", func(t *testing.T) {
		relay := messaging.NewAlertRelay(&mockBroadcaster{err: errors.New("redis down")}, discardLogger())

		err := relay.Handle(context.Background(), pkgkafka.Message{Value: highRisk})

		assert.ErrorContains(t, err, "redis down")
	})
}
