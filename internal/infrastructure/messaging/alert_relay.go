package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bibbank/frauddetect/internal/domain/event"
	"github.com/bibbank/frauddetect/internal/domain/port"
	"github.com/bibbank/frauddetect/pkg/events"
	pkgkafka "github.com/bibbank/frauddetect/pkg/kafka"
)

// AlertRelay forwards high-risk events consumed from Kafka to live
// subscribers. Other event types are skipped.
type AlertRelay struct {
	broadcaster port.AlertBroadcaster
	logger      *slog.Logger
}

// NewAlertRelay creates a new AlertRelay.
func NewAlertRelay(broadcaster port.AlertBroadcaster, logger *slog.Logger) *AlertRelay {
	return &AlertRelay{broadcaster: broadcaster, logger: logger}
}

// Handle is a pkg/kafka.Handler. A returned error makes the consumer retry
// the message.
func (r *AlertRelay) Handle(ctx context.Context, msg pkgkafka.Message) error {
	eventType := msg.Headers[HeaderEventType]
	if eventType == "" {
		var env events.Envelope
		if err := json.Unmarshal(msg.Value, &env); err != nil {
			r.logger.WarnContext(ctx, "skipping undecodable message",
				"topic", msg.Topic, "offset", msg.Offset, "error", err)
			return nil
		}
		eventType = env.Type
	}
	if eventType != event.EventTypeHighRiskDetected {
		return nil
	}

	if err := r.broadcaster.Broadcast(ctx, msg.Value); err != nil {
		return fmt.Errorf("failed to broadcast alert: %w", err)
	}
	r.logger.InfoContext(ctx, "alert relayed", "transaction_id", string(msg.Key), "offset", msg.Offset)
	return nil
}
