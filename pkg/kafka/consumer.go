package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

const (
	defaultHandlerAttempts = 3
	defaultRetryBackoff    = 200 * time.Millisecond
	maxFetchBytes          = 10 << 20
)

// Handler processes one consumed message. A non-nil error asks for a retry.
type Handler func(ctx context.Context, msg Message) error

// Consumer reads a topic as part of a consumer group and commits each
// message once its handler has run.
type Consumer struct {
	reader   *kafkago.Reader
	handler  Handler
	logger   *slog.Logger
	attempts int
	backoff  time.Duration
}

// NewConsumer creates a Consumer for topic. Nothing is fetched until Start.
func NewConsumer(cfg Config, topic string, handler Handler, logger *slog.Logger) (*Consumer, error) {
	dialer, err := newDialer(cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}

	readerCfg := kafkago.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       topic,
		GroupID:     cfg.ConsumerGroup,
		StartOffset: kafkago.FirstOffset,
		MinBytes:    1,
		MaxBytes:    maxFetchBytes,
	}
	if dialer != nil {
		readerCfg.Dialer = dialer
	}

	c := newConsumer(handler, logger, cfg.HandlerAttempts, cfg.RetryBackoff)
	c.reader = kafkago.NewReader(readerCfg)
	return c, nil
}

func newConsumer(handler Handler, logger *slog.Logger, attempts int, backoff time.Duration) *Consumer {
	if attempts <= 0 {
		attempts = defaultHandlerAttempts
	}
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}
	return &Consumer{handler: handler, logger: logger, attempts: attempts, backoff: backoff}
}

// Start fetches and handles messages until ctx is canceled, which is not
// an error. A message whose handler keeps failing is logged and committed
// so it cannot stall the partition.
func (c *Consumer) Start(ctx context.Context) error {
	rc := c.reader.Config()
	c.logger.Info("consumer starting", "topic", rc.Topic, "group", rc.GroupID)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("consumer stopped", "topic", rc.Topic)
				return nil
			}
			return fmt.Errorf("kafka fetch from %s: %w", rc.Topic, err)
		}

		msg := fromKafka(m)
		if err := c.handle(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("dropping message after failed attempts",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"attempts", c.attempts,
				"error", err,
			)
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			c.logger.Warn("commit failed",
				"topic", msg.Topic,
				"partition", msg.Partition,
				"offset", msg.Offset,
				"error", err,
			)
		}
	}
}

// handle runs the handler up to c.attempts times with doubling pauses.
func (c *Consumer) handle(ctx context.Context, msg Message) error {
	wait := c.backoff
	var err error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err = c.handler(ctx, msg); err == nil {
			return nil
		}
		if attempt == c.attempts {
			break
		}
		c.logger.Debug("handler failed, retrying",
			"offset", msg.Offset, "attempt", attempt, "error", err)

		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(wait):
		}
		wait *= 2
	}
	return err
}

func fromKafka(m kafkago.Message) Message {
	headers := make(map[string]string, len(m.Headers))
	for _, h := range m.Headers {
		headers[h.Key] = string(h.Value)
	}
	return Message{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Headers:   headers,
	}
}

// Close leaves the consumer group and closes the reader.
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("kafka close reader: %w", err)
	}
	return nil
}
