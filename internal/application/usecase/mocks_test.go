package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/bibbank/frauddetect/internal/domain/model"
	"github.com/bibbank/frauddetect/internal/domain/valueobject"
	"github.com/bibbank/frauddetect/pkg/events"
)

// --- Mock implementations ---

type mockScorer struct {
	calls     int
	scoreFunc func(ctx context.Context, req model.TransactionRequest) (model.ScoreResult, error)
}

func (m *mockScorer) Score(ctx context.Context, req model.TransactionRequest) (model.ScoreResult, error) {
	m.calls++
	if m.scoreFunc != nil {
		return m.scoreFunc(ctx, req)
	}
	verdict := false
	return model.NewScoreResult(&verdict, 0.1)
}

type mockTransactionRepository struct {
	saved             []*model.TransactionRecord
	saveFunc          func(ctx context.Context, record *model.TransactionRecord) error
	findByIDFunc      func(ctx context.Context, transactionID string) (*model.TransactionRecord, error)
	findByStatusFunc  func(ctx context.Context, status valueobject.Status, limit int) ([]*model.TransactionRecord, error)
	findBetweenFunc   func(ctx context.Context, from, to time.Time, limit int) ([]*model.TransactionRecord, error)
	findHighRiskFunc  func(ctx context.Context, minRiskScore, limit int) ([]*model.TransactionRecord, error)
	findRecentFunc    func(ctx context.Context, since time.Time, limit int) ([]*model.TransactionRecord, error)
	countByStatusFunc func(ctx context.Context) (map[valueobject.Status]int64, error)
}

func (m *mockTransactionRepository) Save(ctx context.Context, record *model.TransactionRecord) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, record)
	}
	m.saved = append(m.saved, record)
	return nil
}

func (m *mockTransactionRepository) FindByTransactionID(ctx context.Context, transactionID string) (*model.TransactionRecord, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, transactionID)
	}
	return nil, model.ErrNotFound
}

func (m *mockTransactionRepository) FindByStatus(ctx context.Context, status valueobject.Status, limit int) ([]*model.TransactionRecord, error) {
	if m.findByStatusFunc != nil {
		return m.findByStatusFunc(ctx, status, limit)
	}
	return nil, nil
}

func (m *mockTransactionRepository) FindByTimestampBetween(ctx context.Context, from, to time.Time, limit int) ([]*model.TransactionRecord, error) {
	if m.findBetweenFunc != nil {
		return m.findBetweenFunc(ctx, from, to, limit)
	}
	return nil, nil
}

func (m *mockTransactionRepository) FindHighRisk(ctx context.Context, minRiskScore int, limit int) ([]*model.TransactionRecord, error) {
	if m.findHighRiskFunc != nil {
		return m.findHighRiskFunc(ctx, minRiskScore, limit)
	}
	return nil, nil
}

func (m *mockTransactionRepository) FindRecent(ctx context.Context, since time.Time, limit int) ([]*model.TransactionRecord, error) {
	if m.findRecentFunc != nil {
		return m.findRecentFunc(ctx, since, limit)
	}
	return nil, nil
}

func (m *mockTransactionRepository) CountByStatus(ctx context.Context) (map[valueobject.Status]int64, error) {
	if m.countByStatusFunc != nil {
		return m.countByStatusFunc(ctx)
	}
	return map[valueobject.Status]int64{}, nil
}

type mockNotificationRepository struct {
	saved        []*model.Notification
	nextID       int64
	saveFunc     func(ctx context.Context, n *model.Notification) error
	findByIDFunc func(ctx context.Context, id int64) (*model.Notification, error)
	markReadFunc func(ctx context.Context, id int64) error
	listFunc     func(ctx context.Context, unreadOnly bool, limit int) ([]*model.Notification, error)
	unread       int64
}

func (m *mockNotificationRepository) Save(ctx context.Context, n *model.Notification) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, n)
	}
	m.nextID++
	n.AssignID(m.nextID)
	m.saved = append(m.saved, n)
	return nil
}

func (m *mockNotificationRepository) FindByID(ctx context.Context, id int64) (*model.Notification, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, model.ErrNotFound
}

func (m *mockNotificationRepository) MarkRead(ctx context.Context, id int64) error {
	if m.markReadFunc != nil {
		return m.markReadFunc(ctx, id)
	}
	return nil
}

func (m *mockNotificationRepository) List(ctx context.Context, unreadOnly bool, limit int) ([]*model.Notification, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, unreadOnly, limit)
	}
	return m.saved, nil
}

func (m *mockNotificationRepository) FindByTransactionID(_ context.Context, transactionID string) ([]*model.Notification, error) {
	var out []*model.Notification
	for _, n := range m.saved {
		if n.TransactionID() == transactionID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *mockNotificationRepository) CountUnread(_ context.Context) (int64, error) {
	return m.unread, nil
}

type mockStatisticsRepository struct {
	findSinceFunc func(ctx context.Context, since time.Time) ([]model.DailyStatistics, error)
}

func (m *mockStatisticsRepository) FindSince(ctx context.Context, since time.Time) ([]model.DailyStatistics, error) {
	if m.findSinceFunc != nil {
		return m.findSinceFunc(ctx, since)
	}
	return nil, nil
}

type mockEventPublisher struct {
	publishedEvents []events.DomainEvent
	publishFunc     func(ctx context.Context, evts ...events.DomainEvent) error
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...events.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

type mockHistoryStore struct {
	mu      sync.Mutex
	entries []model.HistoryEntry
	addErr  error
}

func (m *mockHistoryStore) Add(_ context.Context, entry model.HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	m.entries = append([]model.HistoryEntry{entry}, m.entries...)
	return nil
}

func (m *mockHistoryStore) List(_ context.Context) ([]model.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.HistoryEntry(nil), m.entries...), nil
}
