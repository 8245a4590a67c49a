package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultAlertChannel is the pub/sub channel live alerts are sent on.
const DefaultAlertChannel = "frauddetect:alerts"

// AlertBroadcaster implements port.AlertBroadcaster over Redis pub/sub.
type AlertBroadcaster struct {
	client  redis.UniversalClient
	channel string
}

// NewAlertBroadcaster creates a broadcaster publishing on channel.
func NewAlertBroadcaster(client redis.UniversalClient, channel string) *AlertBroadcaster {
	if channel == "" {
		channel = DefaultAlertChannel
	}
	return &AlertBroadcaster{client: client, channel: channel}
}

// Broadcast publishes the payload to every current subscriber.
func (b *AlertBroadcaster) Broadcast(ctx context.Context, payload []byte) error {
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", b.channel, err)
	}
	return nil
}

// Subscribe opens a subscription to the alert channel. The caller closes it.
func (b *AlertBroadcaster) Subscribe(ctx context.Context) *redis.PubSub {
	return b.client.Subscribe(ctx, b.channel)
}
