//go:build integration

package integration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/frauddetect/internal/domain/model"
	"github.com/bibbank/frauddetect/internal/domain/service"
	"github.com/bibbank/frauddetect/internal/domain/valueobject"
	pgrepo "github.com/bibbank/frauddetect/internal/infrastructure/postgres"
	"github.com/bibbank/frauddetect/pkg/testutil"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func setupDB(t *testing.T) *testutil.PostgresContainer {
	t.Helper()
	ctx := context.Background()

	pg := testutil.NewPostgresContainer(ctx, t)
	t.Cleanup(func() { pg.Cleanup(t) })

	pg.Migrate(t, pgrepo.Migrations, pgrepo.MigrationsDir)
	return pg
}

// newRecord assesses a request with a fixed clock so records land on known days.
func newRecord(t *testing.T, n int, amount int64, probability float64, at time.Time) *model.TransactionRecord {
	t.Helper()
	return newRecordWithAmount(t, n, decimal.NewFromInt(amount), probability, at)
}

func newRecordWithAmount(t *testing.T, n int, amount decimal.Decimal, probability float64, at time.Time) *model.TransactionRecord {
	t.Helper()

	req, err := model.NewTransactionRequest(
		amount, 15,
		valueobject.TransactionTypeCashOut,
		valueobject.PairCodeCustomerToMerchant,
		valueobject.PartOfDayNight,
	)
	require.NoError(t, err)

	score, err := model.NewScoreResult(nil, probability)
	require.NoError(t, err)

	id := testutil.TransactionID(n)
	assessment := service.NewAssessor().
		WithClock(func() time.Time { return at }).
		WithIDGenerator(func() string { return id }).
		Assess(req, score)

	record, err := model.NewTransactionRecord(assessment, at)
	require.NoError(t, err)
	return record
}

func historyEntry(n int, status valueobject.Status, at time.Time) model.HistoryEntry {
	return model.HistoryEntry{
		TransactionID: fmt.Sprintf("TX%08X", n),
		Timestamp:     at.UTC().Format(time.RFC3339),
		Amount:        decimal.NewFromInt(int64(100 * n)),
		Type:          valueobject.TransactionTypeTransfer.String(),
		PairCode:      valueobject.PairCodeCustomerToCustomer.String(),
		PartOfDay:     valueobject.PartOfDayEvening.String(),
		Day:           at.Day(),
		Status:        status.String(),
		Probability:   0.8,
		RiskScore:     80,
		IsFraud:       status.Equal(valueobject.StatusFraud),
		Factors:       []string{service.FactorLargeTransfer},
	}
}
