package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/frauddetect/internal/domain/model"
)

// StatisticsRepository implements port.StatisticsRepository using PostgreSQL.
type StatisticsRepository struct {
	pool *pgxpool.Pool
}

// NewStatisticsRepository creates a new PostgreSQL-backed statistics repository.
func NewStatisticsRepository(pool *pgxpool.Pool) *StatisticsRepository {
	return &StatisticsRepository{pool: pool}
}

// FindSince returns the daily aggregates on or after since, oldest first.
func (r *StatisticsRepository) FindSince(ctx context.Context, since time.Time) ([]model.DailyStatistics, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date, total_amount, fraud_amount, normal_count, suspicious_count, fraud_count
		FROM daily_statistics
		WHERE date >= $1
		ORDER BY date`,
		statisticsDate(since),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily statistics: %w", err)
	}
	defer rows.Close()

	stats := make([]model.DailyStatistics, 0)
	for rows.Next() {
		var s model.DailyStatistics
		if err := rows.Scan(&s.Date, &s.TotalAmount, &s.FraudAmount, &s.NormalCount, &s.SuspiciousCount, &s.FraudCount); err != nil {
			return nil, fmt.Errorf("failed to scan daily statistics: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate daily statistics: %w", err)
	}
	return stats, nil
}
