package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/frauddetect/internal/domain/model"
)

const selectNotifications = `
	SELECT id, transaction_id, type, message, risk_score, is_read, created_at
	FROM notifications
`

// NotificationRepository implements port.NotificationRepository using PostgreSQL.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository creates a new PostgreSQL-backed notification repository.
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// Save inserts the notification and assigns the generated ID.
func (r *NotificationRepository) Save(ctx context.Context, n *model.Notification) error {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO notifications (transaction_id, type, message, risk_score, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		n.TransactionID(), n.Type(), n.Message(), n.RiskScore(), n.IsRead(), n.CreatedAt(),
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	n.AssignID(id)
	return nil
}

// FindByID retrieves a notification by ID.
func (r *NotificationRepository) FindByID(ctx context.Context, id int64) (*model.Notification, error) {
	n, err := scanNotification(r.pool.QueryRow(ctx, selectNotifications+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

// MarkRead sets the read flag. Marking twice is a no-op.
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// List returns notifications newest first.
func (r *NotificationRepository) List(ctx context.Context, unreadOnly bool, limit int) ([]*model.Notification, error) {
	if unreadOnly {
		return r.list(ctx, ` WHERE NOT is_read ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
	}
	return r.list(ctx, ` ORDER BY created_at DESC, id DESC LIMIT $1`, limit)
}

// FindByTransactionID lists notifications raised for one transaction.
func (r *NotificationRepository) FindByTransactionID(ctx context.Context, transactionID string) ([]*model.Notification, error) {
	return r.list(ctx, ` WHERE transaction_id = $1 ORDER BY created_at DESC, id DESC`, transactionID)
}

// CountUnread counts notifications not yet read.
func (r *NotificationRepository) CountUnread(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE NOT is_read`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return n, nil
}

func (r *NotificationRepository) list(ctx context.Context, where string, args ...any) ([]*model.Notification, error) {
	rows, err := r.pool.Query(ctx, selectNotifications+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	out := make([]*model.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return out, nil
}

func scanNotification(row pgx.Row) (*model.Notification, error) {
	var (
		id            int64
		transactionID string
		notifType     string
		message       string
		riskScore     int
		isRead        bool
		createdAt     time.Time
	)
	if err := row.Scan(&id, &transactionID, &notifType, &message, &riskScore, &isRead, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan notification: %w", err)
	}
	return model.ReconstructNotification(id, transactionID, notifType, message, riskScore, isRead, createdAt), nil
}
