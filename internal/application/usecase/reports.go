package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/bibbank/frauddetect/internal/application/dto"
	"github.com/bibbank/frauddetect/internal/domain/model"
	"github.com/bibbank/frauddetect/internal/domain/port"
	"github.com/bibbank/frauddetect/internal/domain/valueobject"
)

const (
	dashboardDays     = 7
	timelineDays      = 30
	dashboardRecentTx = 50
)

// GetDashboard is the use case for the summary view over recorded transactions.
type GetDashboard struct {
	transactions  port.TransactionRepository
	notifications port.NotificationRepository
	statistics    port.StatisticsRepository
	now           func() time.Time
}

// NewGetDashboard creates a new GetDashboard use case.
func NewGetDashboard(
	transactions port.TransactionRepository,
	notifications port.NotificationRepository,
	statistics port.StatisticsRepository,
) *GetDashboard {
	return &GetDashboard{
		transactions:  transactions,
		notifications: notifications,
		statistics:    statistics,
		now:           time.Now,
	}
}

// WithClock replaces the clock the reporting windows are anchored to.
func (uc *GetDashboard) WithClock(now func() time.Time) *GetDashboard {
	uc.now = now
	return uc
}

// Execute assembles totals by status, the unread alert count, recent
// transactions and the last week of daily statistics.
func (uc *GetDashboard) Execute(ctx context.Context) (dto.DashboardResponse, error) {
	counts, err := uc.transactions.CountByStatus(ctx)
	if err != nil {
		return dto.DashboardResponse{}, fmt.Errorf("failed to count transactions: %w", err)
	}
	unread, err := uc.notifications.CountUnread(ctx)
	if err != nil {
		return dto.DashboardResponse{}, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	now := uc.now().UTC()
	recent, err := uc.transactions.FindRecent(ctx, now.Add(-RecentWindow), dashboardRecentTx)
	if err != nil {
		return dto.DashboardResponse{}, fmt.Errorf("failed to list recent transactions: %w", err)
	}
	stats, err := uc.statistics.FindSince(ctx, daysAgo(now, dashboardDays))
	if err != nil {
		return dto.DashboardResponse{}, fmt.Errorf("failed to load daily statistics: %w", err)
	}

	d := model.Dashboard{
		RecentTransactions:  recent,
		DailyStats:          stats,
		FraudCount:          counts[valueobject.StatusFraud],
		SuspiciousCount:     counts[valueobject.StatusSuspicious],
		NormalCount:         counts[valueobject.StatusNormal],
		UnreadNotifications: unread,
	}
	d.TotalTransactions = d.FraudCount + d.SuspiciousCount + d.NormalCount

	return dto.FromDashboard(d), nil
}

// GetFraudTimeline is the use case for the last month of daily statistics.
type GetFraudTimeline struct {
	statistics port.StatisticsRepository
	now        func() time.Time
}

// NewGetFraudTimeline creates a new GetFraudTimeline use case.
func NewGetFraudTimeline(statistics port.StatisticsRepository) *GetFraudTimeline {
	return &GetFraudTimeline{statistics: statistics, now: time.Now}
}

// WithClock replaces the clock the timeline window is anchored to.
func (uc *GetFraudTimeline) WithClock(now func() time.Time) *GetFraudTimeline {
	uc.now = now
	return uc
}

// Execute returns one entry per recorded day in the last 30 days, oldest first.
func (uc *GetFraudTimeline) Execute(ctx context.Context) ([]model.DailyStatistics, error) {
	stats, err := uc.statistics.FindSince(ctx, daysAgo(uc.now().UTC(), timelineDays))
	if err != nil {
		return nil, fmt.Errorf("failed to load fraud timeline: %w", err)
	}
	if stats == nil {
		stats = []model.DailyStatistics{}
	}
	return stats, nil
}

// daysAgo returns midnight UTC n days before t.
func daysAgo(t time.Time, n int) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -n)
}
