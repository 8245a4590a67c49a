package port

import (
	"context"

	"github.com/bibbank/frauddetect/pkg/events"
)

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	// Publish sends one or more domain events to the messaging infrastructure.
	Publish(ctx context.Context, events ...events.DomainEvent) error
}

// AlertBroadcaster fans high-risk alerts out to live subscribers.
type AlertBroadcaster interface {
	Broadcast(ctx context.Context, payload []byte) error
}
