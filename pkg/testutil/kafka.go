package testutil

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go/modules/kafka"

	pkgkafka "github.com/bibbank/frauddetect/pkg/kafka"
)

const kafkaImage = "confluentinc/confluent-local:7.6.1"

// KafkaContainer is a single-node KRaft broker.
type KafkaContainer struct {
	Container *kafka.KafkaContainer
	Brokers   []string
}

// NewKafkaContainer starts a broker. Call Cleanup when done.
func NewKafkaContainer(ctx context.Context, t *testing.T) *KafkaContainer {
	t.Helper()

	c, err := kafka.Run(ctx, kafkaImage, kafka.WithClusterID("fraudd-test"))
	if err != nil {
		t.Fatalf("failed to start kafka container: %v", err)
	}
	brokers, err := c.Brokers(ctx)
	if err != nil {
		terminate(t, "kafka", c)
		t.Fatalf("failed to get kafka brokers: %v", err)
	}
	return &KafkaContainer{Container: c, Brokers: brokers}
}

// ClientConfig returns a plaintext client config joining consumerGroup.
func (kc *KafkaContainer) ClientConfig(consumerGroup string) pkgkafka.Config {
	return pkgkafka.Config{
		Brokers:       kc.Brokers,
		ClientID:      "fraudd-test",
		ConsumerGroup: consumerGroup,
	}
}

// Cleanup terminates the broker.
func (kc *KafkaContainer) Cleanup(t *testing.T) {
	t.Helper()
	if kc.Container != nil {
		terminate(t, "kafka", kc.Container)
	}
}
