//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/frauddetect/internal/domain/event"
	"github.com/bibbank/frauddetect/internal/domain/model"
	"github.com/bibbank/frauddetect/internal/infrastructure/messaging"
	redisinfra "github.com/bibbank/frauddetect/internal/infrastructure/redis"
	"github.com/bibbank/frauddetect/pkg/events"
	pkgkafka "github.com/bibbank/frauddetect/pkg/kafka"
	"github.com/bibbank/frauddetect/pkg/testutil"
)

// TestAlertRelay publishes the events of a high-risk check to Kafka and
// expects only the alert to come out of the Redis channel.
func TestAlertRelay(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	kc := testutil.NewKafkaContainer(ctx, t)
	t.Cleanup(func() { kc.Cleanup(t) })
	rc := setupRedis(t)

	cfg := kc.ClientConfig("fraudd-relay-test")
	const topic = "fraud.events.test"

	producer, err := pkgkafka.NewProducer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = producer.Close() })

	record := newRecord(t, 50, 3000, 0.93, testutil.FixedTime)
	notification, err := model.NewHighRiskNotification(record, testutil.FixedTime)
	require.NoError(t, err)

	publisher := messaging.NewKafkaPublisher(producer, topic, discard)
	pending := append(record.Events(), notification.Events()...)
	require.Len(t, pending, 2)
	require.NoError(t, publisher.Publish(ctx, pending...))

	broadcaster := redisinfra.NewAlertBroadcaster(rc.Client, "test:relay")
	sub := broadcaster.Subscribe(ctx)
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	relay := messaging.NewAlertRelay(broadcaster, discard)
	consumer, err := pkgkafka.NewConsumer(cfg, topic, relay.Handle, discard)
	require.NoError(t, err)
	t.Cleanup(func() { _ = consumer.Close() })

	consumeCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- consumer.Start(consumeCtx) }()

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var env events.Envelope
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &env))
	assert.Equal(t, event.EventTypeHighRiskDetected, env.Type)
	assert.Equal(t, record.TransactionID(), env.AggregateID)

	stop()
	assert.NoError(t, <-done)
}
