package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/bibbank/frauddetect/internal/application/dto"
	"github.com/bibbank/frauddetect/internal/domain/model"
	"github.com/bibbank/frauddetect/internal/domain/port"
)

// ListNotifications is the use case for browsing alert notifications.
type ListNotifications struct {
	repo port.NotificationRepository
}

// NewListNotifications creates a new ListNotifications use case.
func NewListNotifications(repo port.NotificationRepository) *ListNotifications {
	return &ListNotifications{repo: repo}
}

// Execute lists notifications newest first.
func (uc *ListNotifications) Execute(ctx context.Context, unreadOnly bool, limit int) ([]dto.NotificationResponse, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	ns, err := uc.repo.List(ctx, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return dto.FromNotifications(ns), nil
}

// ForTransaction lists the notifications raised for one transaction.
func (uc *ListNotifications) ForTransaction(ctx context.Context, transactionID string) ([]dto.NotificationResponse, error) {
	ns, err := uc.repo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications for %s: %w", transactionID, err)
	}
	return dto.FromNotifications(ns), nil
}

// MarkNotificationRead is the use case for acknowledging an alert.
type MarkNotificationRead struct {
	repo port.NotificationRepository
}

// NewMarkNotificationRead creates a new MarkNotificationRead use case.
func NewMarkNotificationRead(repo port.NotificationRepository) *MarkNotificationRead {
	return &MarkNotificationRead{repo: repo}
}

// Execute marks the notification read and returns its new state. Marking an
// already read notification is not an error.
func (uc *MarkNotificationRead) Execute(ctx context.Context, id int64) (dto.NotificationResponse, error) {
	if id <= 0 {
		return dto.NotificationResponse{}, &model.ValidationError{
			Field:   "id",
			Value:   id,
			Message: fmt.Sprintf("Invalid notification id: %d", id),
		}
	}
	if err := uc.repo.MarkRead(ctx, id); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return dto.NotificationResponse{}, fmt.Errorf("notification %d: %w", id, model.ErrNotFound)
		}
		return dto.NotificationResponse{}, fmt.Errorf("failed to mark notification read: %w", err)
	}
	n, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return dto.NotificationResponse{}, fmt.Errorf("failed to reload notification: %w", err)
	}
	return dto.FromNotification(n), nil
}
