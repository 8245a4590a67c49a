package port

import (
	"context"

	"github.com/bibbank/frauddetect/internal/domain/model"
)

// HistoryStore keeps a bounded, newest-first list of alerting assessments.
type HistoryStore interface {
	// Add stores an entry, evicting the oldest once capacity is reached.
	Add(ctx context.Context, entry model.HistoryEntry) error

	// List returns the stored entries, newest first.
	List(ctx context.Context) ([]model.HistoryEntry, error)
}
