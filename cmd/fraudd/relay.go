package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bibbank/frauddetect/internal/infrastructure/messaging"
	redisinfra "github.com/bibbank/frauddetect/internal/infrastructure/redis"
	pkgkafka "github.com/bibbank/frauddetect/pkg/kafka"
)

var errRedisRequired = errors.New("redis.addr is required")

func newRelayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "relay",
		Short: "Forward high-risk alerts from Kafka to Redis pub/sub",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.relay(cmd.Context())
		},
	}
}

func (a *app) relay(ctx context.Context) error {
	kcfg := a.cfg.KafkaClient()
	if !kcfg.Enabled() {
		return errors.New("kafka.brokers is required")
	}
	if a.cfg.Redis.Addr == "" {
		return errRedisRequired
	}

	client, err := a.newRedisClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	relay := messaging.NewAlertRelay(redisinfra.NewAlertBroadcaster(client, a.cfg.Redis.AlertChannel), a.logger)
	consumer, err := pkgkafka.NewConsumer(kcfg, a.cfg.Kafka.Topic, relay.Handle, a.logger)
	if err != nil {
		return err
	}
	defer consumer.Close()

	a.logger.Info("relaying alerts",
		"topic", a.cfg.Kafka.Topic,
		"group", a.cfg.Kafka.ConsumerGroup,
		"channel", a.cfg.Redis.AlertChannel,
	)
	return consumer.Start(ctx)
}

func newAlertsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "alerts",
		Short:       "Print live alerts from the Redis channel",
		Long:        "Subscribe to the alert channel and print each alert payload on its own line until interrupted.",
		Annotations: map[string]string{logsToStderr: ""},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if a.cfg.Redis.Addr == "" {
				return errRedisRequired
			}
			client, err := a.newRedisClient(ctx)
			if err != nil {
				return err
			}
			defer client.Close()

			sub := redisinfra.NewAlertBroadcaster(client, a.cfg.Redis.AlertChannel).Subscribe(ctx)
			defer sub.Close()

			out := cmd.OutOrStdout()
			ch := sub.Channel()
			for {
				select {
				case <-ctx.Done():
					return nil
				case msg, ok := <-ch:
					if !ok {
						return nil
					}
					if _, err := fmt.Fprintln(out, msg.Payload); err != nil {
						return err
					}
				}
			}
		},
	}
}
