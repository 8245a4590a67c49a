package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bibbank/frauddetect/internal/domain/model"
	"github.com/bibbank/frauddetect/internal/domain/valueobject"
	pg "github.com/bibbank/frauddetect/pkg/postgres"
)

const selectTransactions = `
	SELECT t.transaction_id, t.amount, t.type, t.status, t.risk_score,
		t.timestamp, t.day, t.transaction_pair_code, t.part_of_the_day, t.created_at,
		COALESCE(
			(SELECT array_agg(f.factor ORDER BY f.position) FROM risk_factors f WHERE f.transaction_id = t.transaction_id),
			'{}'
		)
	FROM transactions t
`

// TransactionRepository implements port.TransactionRepository using PostgreSQL.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new PostgreSQL-backed transaction repository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Save inserts the record and its risk factors and folds it into the daily
// statistics, all in one database transaction.
func (r *TransactionRepository) Save(ctx context.Context, record *model.TransactionRecord) error {
	return pg.WithTransaction(ctx, r.pool, func(q pg.Querier) error {
		_, err := q.Exec(ctx, `
			INSERT INTO transactions (
				transaction_id, amount, type, status, risk_score,
				timestamp, day, transaction_pair_code, part_of_the_day, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			record.TransactionID(),
			record.Amount(),
			record.Type().String(),
			record.Status().String(),
			record.RiskScore(),
			record.Timestamp(),
			record.Day(),
			record.PairCode().String(),
			record.PartOfDay().String(),
			record.CreatedAt(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}

		if factors := record.Factors(); len(factors) > 0 {
			batch := &pgx.Batch{}
			for i, factor := range factors {
				batch.Queue(
					`INSERT INTO risk_factors (transaction_id, position, factor) VALUES ($1, $2, $3)`,
					record.TransactionID(), i, factor,
				)
			}
			if err := q.SendBatch(ctx, batch).Close(); err != nil {
				return fmt.Errorf("failed to insert risk factors: %w", err)
			}
		}

		if err := upsertDailyStatistics(ctx, q, record); err != nil {
			return err
		}

		return nil
	})
}

func upsertDailyStatistics(ctx context.Context, q pg.Querier, record *model.TransactionRecord) error {
	var normal, suspicious, fraud int
	fraudAmount := decimal.Zero
	switch {
	case record.Status().Equal(valueobject.StatusFraud):
		fraud = 1
		fraudAmount = record.Amount()
	case record.Status().Equal(valueobject.StatusSuspicious):
		suspicious = 1
	default:
		normal = 1
	}

	_, err := q.Exec(ctx, `
		INSERT INTO daily_statistics (date, total_amount, fraud_amount, normal_count, suspicious_count, fraud_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (date) DO UPDATE SET
			total_amount = daily_statistics.total_amount + EXCLUDED.total_amount,
			fraud_amount = daily_statistics.fraud_amount + EXCLUDED.fraud_amount,
			normal_count = daily_statistics.normal_count + EXCLUDED.normal_count,
			suspicious_count = daily_statistics.suspicious_count + EXCLUDED.suspicious_count,
			fraud_count = daily_statistics.fraud_count + EXCLUDED.fraud_count`,
		statisticsDate(record.CreatedAt()), record.Amount(), fraudAmount, normal, suspicious, fraud,
	)
	if err != nil {
		return fmt.Errorf("failed to update daily statistics: %w", err)
	}
	return nil
}

// FindByTransactionID retrieves a record by its transaction ID.
func (r *TransactionRepository) FindByTransactionID(ctx context.Context, transactionID string) (*model.TransactionRecord, error) {
	row := r.pool.QueryRow(ctx, selectTransactions+` WHERE t.transaction_id = $1`, transactionID)
	record, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// FindByStatus lists records with the given status, newest first.
func (r *TransactionRepository) FindByStatus(ctx context.Context, status valueobject.Status, limit int) ([]*model.TransactionRecord, error) {
	return r.list(ctx, ` WHERE t.status = $1 ORDER BY t.timestamp DESC LIMIT $2`, status.String(), limit)
}

// FindByTimestampBetween lists records in [from, to), newest first.
func (r *TransactionRepository) FindByTimestampBetween(ctx context.Context, from, to time.Time, limit int) ([]*model.TransactionRecord, error) {
	return r.list(ctx, ` WHERE t.timestamp >= $1 AND t.timestamp < $2 ORDER BY t.timestamp DESC LIMIT $3`, from, to, limit)
}

// FindHighRisk lists records at or above the given risk score, newest first.
func (r *TransactionRepository) FindHighRisk(ctx context.Context, minRiskScore int, limit int) ([]*model.TransactionRecord, error) {
	return r.list(ctx, ` WHERE t.risk_score >= $1 ORDER BY t.timestamp DESC LIMIT $2`, minRiskScore, limit)
}

// FindRecent lists records created since the given time, newest first.
func (r *TransactionRepository) FindRecent(ctx context.Context, since time.Time, limit int) ([]*model.TransactionRecord, error) {
	return r.list(ctx, ` WHERE t.created_at >= $1 ORDER BY t.created_at DESC LIMIT $2`, since, limit)
}

// CountByStatus counts records per status.
func (r *TransactionRepository) CountByStatus(ctx context.Context) (map[valueobject.Status]int64, error) {
	counts := make(map[valueobject.Status]int64, 3)
	for _, s := range valueobject.AllStatuses() {
		counts[s] = 0
	}

	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM transactions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			statusStr string
			n         int64
		)
		if err := rows.Scan(&statusStr, &n); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		status, err := valueobject.StatusFromString(statusStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse status: %w", err)
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status counts: %w", err)
	}

	return counts, nil
}

func (r *TransactionRepository) list(ctx context.Context, where string, args ...any) ([]*model.TransactionRecord, error) {
	rows, err := r.pool.Query(ctx, selectTransactions+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	records := make([]*model.TransactionRecord, 0)
	for rows.Next() {
		record, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return records, nil
}

func scanTransaction(row pgx.Row) (*model.TransactionRecord, error) {
	var (
		transactionID string
		amount        decimal.Decimal
		typeStr       string
		statusStr     string
		riskScore     int
		timestamp     time.Time
		day           int
		pairCodeStr   string
		partOfDayStr  string
		createdAt     time.Time
		factors       []string
	)

	err := row.Scan(
		&transactionID, &amount, &typeStr, &statusStr, &riskScore,
		&timestamp, &day, &pairCodeStr, &partOfDayStr, &createdAt,
		&factors,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	txType, err := valueobject.TransactionTypeFromString(typeStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transaction type: %w", err)
	}
	status, err := valueobject.StatusFromString(statusStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse status: %w", err)
	}
	pairCode, err := valueobject.PairCodeFromString(pairCodeStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pair code: %w", err)
	}
	partOfDay, err := valueobject.PartOfDayFromString(partOfDayStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse part of day: %w", err)
	}

	return model.ReconstructTransactionRecord(
		transactionID, amount, txType, status, riskScore,
		timestamp, day, pairCode, partOfDay, factors, createdAt,
	), nil
}

// statisticsDate truncates t to its UTC calendar day.
func statisticsDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
