package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumerHandle(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	msg := Message{Topic: "fraud.events", Offset: 7}
	errRedisDown := errors.New("redis down")

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		c := newConsumer(func(context.Context, Message) error {
			calls++
			if calls < 3 {
				return errRedisDown
			}
			return nil
		}, logger, 3, time.Millisecond)

		require.NoError(t, c.handle(context.Background(), msg))
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after the configured attempts", func(t *testing.T) {
		calls := 0
		c := newConsumer(func(context.Context, Message) error {
			calls++
			return errRedisDown
		}, logger, 2, time.Millisecond)

		assert.ErrorIs(t, c.handle(context.Background(), msg), errRedisDown)
		assert.Equal(t, 2, calls)
	})

	t.Run("stops waiting when the context ends", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		c := newConsumer(func(context.Context, Message) error {
			cancel()
			return errRedisDown
		}, logger, 5, time.Hour)

		err := c.handle(ctx, msg)
		assert.ErrorIs(t, err, errRedisDown)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("defaults", func(t *testing.T) {
		c := newConsumer(nil, logger, 0, 0)
		assert.Equal(t, defaultHandlerAttempts, c.attempts)
		assert.Equal(t, defaultRetryBackoff, c.backoff)
	})
}
