package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyStatistics aggregates recorded transactions for one calendar day (UTC).
type DailyStatistics struct {
	Date            time.Time       `json:"date"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	FraudAmount     decimal.Decimal `json:"fraudAmount"`
	NormalCount     int             `json:"normalCount"`
	SuspiciousCount int             `json:"suspiciousCount"`
	FraudCount      int             `json:"fraudCount"`
}

// Dashboard is the summary view over recorded transactions.
type Dashboard struct {
	RecentTransactions  []*TransactionRecord
	DailyStats          []DailyStatistics
	TotalTransactions   int64
	FraudCount          int64
	SuspiciousCount     int64
	NormalCount         int64
	UnreadNotifications int64
}
