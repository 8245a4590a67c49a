package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/bibbank/frauddetect/internal/domain/model"
)

// DefaultHistoryKey is the list the fraud history lives under.
const DefaultHistoryKey = "frauddetect:history"

// HistoryStore implements port.HistoryStore as a capped Redis list,
// newest entry at the head.
type HistoryStore struct {
	client   redis.UniversalClient
	key      string
	capacity int64
}

// NewHistoryStore creates a store keeping at most capacity entries under key.
func NewHistoryStore(client redis.UniversalClient, key string, capacity int) *HistoryStore {
	if key == "" {
		key = DefaultHistoryKey
	}
	return &HistoryStore{client: client, key: key, capacity: int64(capacity)}
}

// Add pushes the entry and trims the list to capacity in one round trip.
func (s *HistoryStore) Add(ctx context.Context, entry model.HistoryEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, s.key, payload)
		if s.capacity > 0 {
			pipe.LTrim(ctx, s.key, 0, s.capacity-1)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to push history entry: %w", err)
	}
	return nil
}

// List returns the stored entries, newest first.
func (s *HistoryStore) List(ctx context.Context) ([]model.HistoryEntry, error) {
	raw, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	entries := make([]model.HistoryEntry, 0, len(raw))
	for _, r := range raw {
		var e model.HistoryEntry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			return nil, fmt.Errorf("failed to decode history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
