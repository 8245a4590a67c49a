package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/frauddetect/internal/application/usecase"
	"github.com/bibbank/frauddetect/internal/domain/model"
)

func historyEntry(id, status string, amount int64, ts time.Time) model.HistoryEntry {
	return model.HistoryEntry{
		TransactionID: id,
		Status:        status,
		Amount:        decimal.NewFromInt(amount),
		Timestamp:     ts.Format(time.RFC3339),
	}
}

func TestFraudHistory_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("stores alerting entries", func(t *testing.T) {
		store := &mockHistoryStore{}
		uc := usecase.NewFraudHistory(store)

		_, err := uc.Add(ctx, historyEntry("TX1", "fraud", 100, testNow))
		require.NoError(t, err)
		_, err = uc.Add(ctx, historyEntry("TX2", "suspicious", 100, testNow))
		require.NoError(t, err)

		entries, err := uc.List(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "TX2", entries[0].TransactionID, "newest first")
	})

	t.Run("echoes normal entries without storing", func(t *testing.T) {
		store := &mockHistoryStore{}
		uc := usecase.NewFraudHistory(store)

		got, err := uc.Add(ctx, historyEntry("TX3", "normal", 10, testNow))

		require.NoError(t, err)
		assert.Equal(t, "TX3", got.TransactionID)
		entries, _ := uc.List(ctx)
		assert.Empty(t, entries)
	})

	t.Run("store failure", func(t *testing.T) {
		uc := usecase.NewFraudHistory(&mockHistoryStore{addErr: errors.New("redis down")})

		_, err := uc.Add(ctx, historyEntry("TX4", "fraud", 10, testNow))

		assert.ErrorContains(t, err, "failed to add fraud history")
	})
}

func TestFraudHistory_Statistics(t *testing.T) {
	ctx := context.Background()
	store := &mockHistoryStore{}
	uc := usecase.NewFraudHistory(store).WithClock(func() time.Time { return testNow })

	for _, e := range []model.HistoryEntry{
		historyEntry("TX1", "fraud", 1000, testNow),
		historyEntry("TX2", "fraud", 250, testNow.AddDate(0, 0, -2)),
		historyEntry("TX3", "suspicious", 75, testNow),
		historyEntry("TX4", "fraud", 10, testNow.AddDate(0, 0, -30)),
	} {
		_, err := uc.Add(ctx, e)
		require.NoError(t, err)
	}

	stats, err := uc.Statistics(ctx)

	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalTransactions)
	assert.Equal(t, 3, stats.FraudCount)
	assert.Equal(t, 1, stats.SuspiciousCount)
	assert.True(t, decimal.NewFromInt(1260).Equal(stats.FraudAmount))
	assert.Equal(t, []string{"Normal", "Suspicious", "Fraud"}, stats.StatusData.Labels)
	assert.Equal(t, []int{0, 1, 3}, stats.StatusData.Values)

	require.Len(t, stats.TimelineData.Labels, 7)
	assert.Equal(t, "2024-6-1", stats.TimelineData.Labels[6])
	assert.Equal(t, "2024-5-26", stats.TimelineData.Labels[0])
	assert.Equal(t, []int{0, 0, 0, 0, 1, 0, 1}, stats.TimelineData.Values)
	assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 1}, stats.TimelineData.SecondaryValues)
}
