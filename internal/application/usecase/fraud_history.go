package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/frauddetect/internal/application/dto"
	"github.com/bibbank/frauddetect/internal/domain/model"
	"github.com/bibbank/frauddetect/internal/domain/port"
	"github.com/bibbank/frauddetect/internal/domain/valueobject"
)

const historyTimelineDays = 7

// FraudHistory is the use case for the bounded history of fraud and
// suspicious assessments.
type FraudHistory struct {
	store port.HistoryStore
	now   func() time.Time
}

// NewFraudHistory creates a new FraudHistory use case.
func NewFraudHistory(store port.HistoryStore) *FraudHistory {
	return &FraudHistory{store: store, now: time.Now}
}

// WithClock replaces the clock used for the statistics timeline.
func (uc *FraudHistory) WithClock(now func() time.Time) *FraudHistory {
	uc.now = now
	return uc
}

// Add records an externally supplied assessment. Entries that are neither
// fraud nor suspicious are echoed back without being stored.
func (uc *FraudHistory) Add(ctx context.Context, entry model.HistoryEntry) (model.HistoryEntry, error) {
	if !entry.Alerting() {
		return entry, nil
	}
	if err := uc.store.Add(ctx, entry); err != nil {
		return model.HistoryEntry{}, fmt.Errorf("failed to add fraud history: %w", err)
	}
	return entry, nil
}

// List returns the stored entries, newest first.
func (uc *FraudHistory) List(ctx context.Context) ([]model.HistoryEntry, error) {
	entries, err := uc.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list fraud history: %w", err)
	}
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	return entries, nil
}

// Statistics summarises the stored history. The timeline covers the last
// seven days and buckets entries by their own timestamps.
func (uc *FraudHistory) Statistics(ctx context.Context) (dto.FraudStatisticsResponse, error) {
	entries, err := uc.List(ctx)
	if err != nil {
		return dto.FraudStatisticsResponse{}, err
	}

	today := daysAgo(uc.now(), 0)
	labels := make([]string, historyTimelineDays)
	index := make(map[string]int, historyTimelineDays)
	for i := range historyTimelineDays {
		day := today.AddDate(0, 0, i-historyTimelineDays+1)
		labels[i] = day.Format("2006-1-2")
		index[labels[i]] = i
	}
	fraudByDay := make([]int, historyTimelineDays)
	suspiciousByDay := make([]int, historyTimelineDays)

	resp := dto.FraudStatisticsResponse{
		TotalTransactions: len(entries),
		FraudAmount:       decimal.Zero,
	}
	for _, e := range entries {
		status, err := valueobject.StatusFromString(e.Status)
		if err != nil {
			continue
		}
		day := model.ParseTimestamp(e.Timestamp, time.Time{})
		i, inWindow := index[day.UTC().Format("2006-1-2")]

		switch {
		case status.Equal(valueobject.StatusFraud):
			resp.FraudCount++
			resp.FraudAmount = resp.FraudAmount.Add(e.Amount)
			if inWindow {
				fraudByDay[i]++
			}
		case status.Equal(valueobject.StatusSuspicious):
			resp.SuspiciousCount++
			if inWindow {
				suspiciousByDay[i]++
			}
		}
	}

	resp.StatusData = dto.ChartSeries{
		Labels: []string{"Normal", "Suspicious", "Fraud"},
		Values: []int{
			resp.TotalTransactions - resp.FraudCount - resp.SuspiciousCount,
			resp.SuspiciousCount,
			resp.FraudCount,
		},
	}
	resp.TimelineData = dto.ChartSeries{
		Labels:          labels,
		Values:          fraudByDay,
		SecondaryValues: suspiciousByDay,
	}

	return resp, nil
}
