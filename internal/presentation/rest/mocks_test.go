package rest

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bibbank/frauddetect/internal/application/usecase"
	"github.com/bibbank/frauddetect/internal/domain/model"
	"github.com/bibbank/frauddetect/internal/domain/service"
	"github.com/bibbank/frauddetect/internal/domain/valueobject"
	"github.com/bibbank/frauddetect/internal/infrastructure/history"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- Mock implementations ---

type mockScorer struct {
	scoreFunc func(ctx context.Context, req model.TransactionRequest) (model.ScoreResult, error)
}

func (m *mockScorer) Score(ctx context.Context, req model.TransactionRequest) (model.ScoreResult, error) {
	if m.scoreFunc != nil {
		return m.scoreFunc(ctx, req)
	}
	verdict := true
	return model.NewScoreResult(&verdict, 0.85)
}

type mockTransactionRepository struct {
	records []*model.TransactionRecord
	lastReq string
	listErr error
	saveErr error
}

func (m *mockTransactionRepository) Save(_ context.Context, record *model.TransactionRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records = append(m.records, record)
	return nil
}

func (m *mockTransactionRepository) FindByTransactionID(_ context.Context, transactionID string) (*model.TransactionRecord, error) {
	for _, r := range m.records {
		if r.TransactionID() == transactionID {
			return r, nil
		}
	}
	return nil, model.ErrNotFound
}

func (m *mockTransactionRepository) filter(lastReq string, keep func(*model.TransactionRecord) bool) ([]*model.TransactionRecord, error) {
	m.lastReq = lastReq
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*model.TransactionRecord
	for _, r := range m.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockTransactionRepository) FindByStatus(_ context.Context, status valueobject.Status, _ int) ([]*model.TransactionRecord, error) {
	return m.filter("status", func(r *model.TransactionRecord) bool { return r.Status().Equal(status) })
}

func (m *mockTransactionRepository) FindByTimestampBetween(_ context.Context, from, to time.Time, _ int) ([]*model.TransactionRecord, error) {
	return m.filter("between", func(r *model.TransactionRecord) bool {
		return !r.Timestamp().Before(from) && r.Timestamp().Before(to)
	})
}

func (m *mockTransactionRepository) FindHighRisk(_ context.Context, minRiskScore, _ int) ([]*model.TransactionRecord, error) {
	return m.filter("high-risk", func(r *model.TransactionRecord) bool { return r.RiskScore() >= minRiskScore })
}

func (m *mockTransactionRepository) FindRecent(_ context.Context, since time.Time, _ int) ([]*model.TransactionRecord, error) {
	return m.filter("recent", func(r *model.TransactionRecord) bool { return !r.CreatedAt().Before(since) })
}

func (m *mockTransactionRepository) CountByStatus(context.Context) (map[valueobject.Status]int64, error) {
	counts := map[valueobject.Status]int64{}
	for _, s := range valueobject.AllStatuses() {
		counts[s] = 0
	}
	for _, r := range m.records {
		counts[r.Status()]++
	}
	return counts, nil
}

type mockNotificationRepository struct {
	saveErr error
	saved   []*model.Notification
}

func (m *mockNotificationRepository) Save(_ context.Context, n *model.Notification) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	n.AssignID(int64(len(m.saved) + 1))
	m.saved = append(m.saved, n)
	return nil
}

func (m *mockNotificationRepository) FindByID(_ context.Context, id int64) (*model.Notification, error) {
	for _, n := range m.saved {
		if n.ID() == id {
			return n, nil
		}
	}
	return nil, model.ErrNotFound
}

func (m *mockNotificationRepository) MarkRead(ctx context.Context, id int64) error {
	n, err := m.FindByID(ctx, id)
	if err != nil {
		return err
	}
	n.MarkRead()
	return nil
}

func (m *mockNotificationRepository) List(_ context.Context, unreadOnly bool, _ int) ([]*model.Notification, error) {
	var out []*model.Notification
	for _, n := range m.saved {
		if !unreadOnly || !n.IsRead() {
			out = append(out, n)
		}
	}
	return out, nil
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

func (m *mockNotificationRepository) CountUnread(ctx context.Context) (int64, error) {
	unread, _ := m.List(ctx, true, 0)
	return int64(len(unread)), nil
}

type mockStatisticsRepository struct {
	stats []model.DailyStatistics
}

func (m *mockStatisticsRepository) FindSince(context.Context, time.Time) ([]model.DailyStatistics, error) {
	return m.stats, nil
}

// --- Helpers ---

var testNow = time.Date(2024, time.June, 1, 2, 15, 0, 0, time.UTC)

type testEnv struct {
	router        *gin.Engine
	scorer        *mockScorer
	transactions  *mockTransactionRepository
	notifications *mockNotificationRepository
	statistics    *mockStatisticsRepository
	history       *history.MemoryStore
}

func newTestEnv(cfg RouterConfig) *testEnv {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env := &testEnv{
		scorer:        &mockScorer{},
		transactions:  &mockTransactionRepository{},
		notifications: &mockNotificationRepository{},
		statistics:    &mockStatisticsRepository{},
		history:       history.NewMemoryStore(10),
	}
	clock := func() time.Time { return testNow }

	ids := 0
	assessor := service.NewAssessor().
		WithClock(clock).
		WithIDGenerator(func() string {
			ids++
			return "TXABCDEF0" + string(rune('0'+ids))
		})

	h := NewHandler(UseCases{
		DetectFraud: usecase.NewDetectFraud(
			service.NewValidator(), assessor, env.scorer,
			env.transactions, env.notifications, logger,
		).WithHistory(env.history).WithClock(clock),
		GetTransaction:    usecase.NewGetTransaction(env.transactions),
		ListTransactions:  usecase.NewListTransactions(env.transactions).WithClock(clock),
		ListNotifications: usecase.NewListNotifications(env.notifications),
		MarkRead:          usecase.NewMarkNotificationRead(env.notifications),
		Dashboard:         usecase.NewGetDashboard(env.transactions, env.notifications, env.statistics).WithClock(clock),
		Timeline:          usecase.NewGetFraudTimeline(env.statistics).WithClock(clock),
		History:           usecase.NewFraudHistory(env.history).WithClock(clock),
	}, logger)

	health := NewHealthHandler(logger, map[string]CheckFunc{
		"database": func(context.Context) error { return nil },
	})

	router, err := NewRouter(h, health, logger, cfg)
	if err != nil {
		panic(err)
	}
	env.router = router
	return env
}
