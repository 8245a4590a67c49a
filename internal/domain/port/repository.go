package port

import (
	"context"
	"time"

	"github.com/bibbank/frauddetect/internal/domain/model"
	"github.com/bibbank/frauddetect/internal/domain/valueobject"
)

// TransactionRepository defines the persistence port for transaction records.
type TransactionRepository interface {
	// Save persists a new record with its risk factors and folds it into the
	// daily statistics.
	Save(ctx context.Context, record *model.TransactionRecord) error

	// FindByTransactionID returns the record or model.ErrNotFound.
	FindByTransactionID(ctx context.Context, transactionID string) (*model.TransactionRecord, error)

	// FindByStatus lists records with the given status, newest first.
	FindByStatus(ctx context.Context, status valueobject.Status, limit int) ([]*model.TransactionRecord, error)

	// FindByTimestampBetween lists records with from <= timestamp < to, newest first.
	FindByTimestampBetween(ctx context.Context, from, to time.Time, limit int) ([]*model.TransactionRecord, error)

	// FindHighRisk lists records with risk score >= minRiskScore, newest first.
	FindHighRisk(ctx context.Context, minRiskScore int, limit int) ([]*model.TransactionRecord, error)

	// FindRecent lists records recorded since the given time, newest first.
	FindRecent(ctx context.Context, since time.Time, limit int) ([]*model.TransactionRecord, error)

	// CountByStatus counts records per status. Every status is present in the result.
	CountByStatus(ctx context.Context) (map[valueobject.Status]int64, error)
}

// NotificationRepository defines the persistence port for alert notifications.
type NotificationRepository interface {
	// Save persists a new notification and assigns its ID.
	Save(ctx context.Context, notification *model.Notification) error

	// FindByID returns the notification or model.ErrNotFound.
	FindByID(ctx context.Context, id int64) (*model.Notification, error)

	// MarkRead sets the read flag. Unknown IDs yield model.ErrNotFound.
	MarkRead(ctx context.Context, id int64) error

	// List returns notifications newest first, optionally only unread ones.
	List(ctx context.Context, unreadOnly bool, limit int) ([]*model.Notification, error)

	// FindByTransactionID lists notifications for one transaction.
	FindByTransactionID(ctx context.Context, transactionID string) ([]*model.Notification, error)

	// CountUnread counts notifications not yet read.
	CountUnread(ctx context.Context) (int64, error)
}

// StatisticsRepository reads the per-day aggregates maintained on save.
type StatisticsRepository interface {
	// FindSince returns one entry per recorded day on or after since, oldest first.
	FindSince(ctx context.Context, since time.Time) ([]model.DailyStatistics, error)
}
