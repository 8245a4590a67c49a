package history

import (
	"context"
	"sync"

	"github.com/bibbank/frauddetect/internal/domain/model"
)

// DefaultCapacity bounds the history when no size is configured.
const DefaultCapacity = 1000

// MemoryStore implements port.HistoryStore as a fixed-size ring buffer.
// It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []model.HistoryEntry
	next    int
	size    int
}

// NewMemoryStore creates a store holding at most capacity entries.
func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryStore{entries: make([]model.HistoryEntry, capacity)}
}

// Add stores the entry, overwriting the oldest once full.
func (s *MemoryStore) Add(_ context.Context, entry model.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[s.next] = entry
	s.next = (s.next + 1) % len(s.entries)
	if s.size < len(s.entries) {
		s.size++
	}
	return nil
}

// List returns the entries newest first.
func (s *MemoryStore) List(_ context.Context) ([]model.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.HistoryEntry, 0, s.size)
	for i := 1; i <= s.size; i++ {
		idx := (s.next - i + len(s.entries)) % len(s.entries)
		out = append(out, s.entries[idx])
	}
	return out, nil
}
