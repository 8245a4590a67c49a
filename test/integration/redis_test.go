//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/frauddetect/internal/application/usecase"
	"github.com/bibbank/frauddetect/internal/domain/valueobject"
	redisinfra "github.com/bibbank/frauddetect/internal/infrastructure/redis"
	"github.com/bibbank/frauddetect/pkg/testutil"
)

func setupRedis(t *testing.T) *testutil.RedisContainer {
	t.Helper()
	rc := testutil.NewRedisContainer(context.Background(), t)
	t.Cleanup(func() { rc.Cleanup(t) })
	return rc
}

func TestHistoryStore(t *testing.T) {
	rc := setupRedis(t)
	ctx := context.Background()

	t.Run("keeps the newest entries up to capacity", func(t *testing.T) {
		store := redisinfra.NewHistoryStore(rc.Client, "test:history:capped", 3)
		for i := 1; i <= 5; i++ {
			require.NoError(t, store.Add(ctx, historyEntry(i, valueobject.StatusFraud, testutil.FixedTime)))
		}

		entries, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, testutil.TransactionID(5), entries[0].TransactionID)
		assert.Equal(t, testutil.TransactionID(3), entries[2].TransactionID)
		assert.True(t, entries[0].Amount.Equal(historyEntry(5, valueobject.StatusFraud, testutil.FixedTime).Amount))
	})

	t.Run("empty list", func(t *testing.T) {
		entries, err := redisinfra.NewHistoryStore(rc.Client, "test:history:empty", 3).List(ctx)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("statistics over the stored history", func(t *testing.T) {
		store := redisinfra.NewHistoryStore(rc.Client, "test:history:stats", 10)
		history := usecase.NewFraudHistory(store)

		_, err := history.Add(ctx, historyEntry(1, valueobject.StatusFraud, testutil.FixedTime))
		require.NoError(t, err)
		_, err = history.Add(ctx, historyEntry(2, valueobject.StatusSuspicious, testutil.FixedTime.Add(-24*time.Hour)))
		require.NoError(t, err)

		stats, err := history.Statistics(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.TotalTransactions)
		assert.Equal(t, 1, stats.FraudCount)
		assert.Equal(t, 1, stats.SuspiciousCount)
	})
}

func TestAlertBroadcaster(t *testing.T) {
	rc := setupRedis(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	b := redisinfra.NewAlertBroadcaster(rc.Client, "test:alerts")
	sub := b.Subscribe(ctx)
	defer sub.Close()

	// Wait for the subscription to be confirmed before publishing.
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, b.Broadcast(ctx, []byte(`{"type":"fraud.high_risk_detected"}`)))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "test:alerts", msg.Channel)
	assert.JSONEq(t, `{"type":"fraud.high_risk_detected"}`, msg.Payload)
}
