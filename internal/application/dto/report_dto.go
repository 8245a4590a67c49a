package dto

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/frauddetect/internal/domain/model"
)

// DashboardResponse is the summary view over recorded transactions.
type DashboardResponse struct {
	RecentTransactions  []TransactionResponse   `json:"recentTransactions"`
	DailyStats          []model.DailyStatistics `json:"dailyStats"`
	TotalTransactions   int64                   `json:"totalTransactions"`
	FraudCount          int64                   `json:"fraudCount"`
	SuspiciousCount     int64                   `json:"suspiciousCount"`
	NormalCount         int64                   `json:"normalCount"`
	UnreadNotifications int64                   `json:"unreadNotifications"`
}

// FromDashboard maps the dashboard model to the response DTO.
func FromDashboard(d model.Dashboard) DashboardResponse {
	stats := d.DailyStats
	if stats == nil {
		stats = []model.DailyStatistics{}
	}
	return DashboardResponse{
		TotalTransactions:   d.TotalTransactions,
		FraudCount:          d.FraudCount,
		SuspiciousCount:     d.SuspiciousCount,
		NormalCount:         d.NormalCount,
		UnreadNotifications: d.UnreadNotifications,
		RecentTransactions:  FromRecords(d.RecentTransactions),
		DailyStats:          stats,
	}
}

// ChartSeries is a labelled series for the dashboard charts.
type ChartSeries struct {
	Labels          []string `json:"labels"`
	Values          []int    `json:"values"`
	SecondaryValues []int    `json:"secondaryValues,omitempty"`
}

// FraudStatisticsResponse summarises the fraud history.
type FraudStatisticsResponse struct {
	StatusData        ChartSeries     `json:"statusData"`
	TimelineData      ChartSeries     `json:"timelineData"`
	FraudAmount       decimal.Decimal `json:"fraudAmount"`
	TotalTransactions int             `json:"totalTransactions"`
	FraudCount        int             `json:"fraudCount"`
	SuspiciousCount   int             `json:"suspiciousCount"`
}
