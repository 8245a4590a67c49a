package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bibbank/frauddetect/pkg/events"
	pkgkafka "github.com/bibbank/frauddetect/pkg/kafka"
)

// HeaderEventType carries the event type on every published message.
const HeaderEventType = "event_type"

// MessageProducer is the slice of pkg/kafka.Producer the publisher needs.
type MessageProducer interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// KafkaPublisher implements port.EventPublisher using Kafka. Messages are
// keyed by aggregate ID so events of one transaction stay ordered.
type KafkaPublisher struct {
	producer MessageProducer
	logger   *slog.Logger
	topic    string
}

// NewKafkaPublisher creates a new Kafka event publisher.
func NewKafkaPublisher(producer MessageProducer, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// Publish sends the events as one batch, each wrapped in an
// events.Envelope. Nothing is sent if any event fails to encode.
func (p *KafkaPublisher) Publish(ctx context.Context, domainEvents ...events.DomainEvent) error {
	if len(domainEvents) == 0 {
		return nil
	}

	messages := make([]pkgkafka.Message, len(domainEvents))
	for i, evt := range domainEvents {
		msg, err := envelopeMessage(evt)
		if err != nil {
			return err
		}
		messages[i] = msg
	}

	if err := p.producer.Publish(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("failed to publish events to topic %s: %w", p.topic, err)
	}
	p.logger.DebugContext(ctx, "events published", "topic", p.topic, "count", len(messages))
	return nil
}

func envelopeMessage(evt events.DomainEvent) (pkgkafka.Message, error) {
	payload, err := json.Marshal(events.Wrap(evt))
	if err != nil {
		return pkgkafka.Message{}, fmt.Errorf("failed to marshal event %s: %w", evt.EventType(), err)
	}
	return pkgkafka.Message{
		Key:     []byte(evt.AggregateID()),
		Value:   payload,
		Headers: map[string]string{HeaderEventType: evt.EventType()},
	}, nil
}
