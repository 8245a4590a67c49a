package grpc

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/frauddetect/internal/application/usecase"
	"github.com/bibbank/frauddetect/internal/domain/model"
	"github.com/bibbank/frauddetect/internal/domain/service"
	"github.com/bibbank/frauddetect/internal/domain/valueobject"
)

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
	records map[string]*model.TransactionRecord
	saveErr error
}

func newMockTransactionRepository() *mockTransactionRepository {
	return &mockTransactionRepository{records: make(map[string]*model.TransactionRecord)}
}

func (m *mockTransactionRepository) Save(_ context.Context, record *model.TransactionRecord) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.records[record.TransactionID()] = record
	return nil
}

func (m *mockTransactionRepository) FindByTransactionID(_ context.Context, transactionID string) (*model.TransactionRecord, error) {
	if r, ok := m.records[transactionID]; ok {
		return r, nil
	}
	return nil, model.ErrNotFound
}

func (m *mockTransactionRepository) FindByStatus(context.Context, valueobject.Status, int) ([]*model.TransactionRecord, error) {
	return nil, nil
}

func (m *mockTransactionRepository) FindByTimestampBetween(context.Context, time.Time, time.Time, int) ([]*model.TransactionRecord, error) {
	return nil, nil
}

func (m *mockTransactionRepository) FindHighRisk(context.Context, int, int) ([]*model.TransactionRecord, error) {
	return nil, nil
}

func (m *mockTransactionRepository) FindRecent(context.Context, time.Time, int) ([]*model.TransactionRecord, error) {
	return nil, nil
}

func (m *mockTransactionRepository) CountByStatus(context.Context) (map[valueobject.Status]int64, error) {
	return map[valueobject.Status]int64{}, nil
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

func (m *mockNotificationRepository) find(id int64) *model.Notification {
	for _, n := range m.saved {
		if n.ID() == id {
			return n
		}
	}
	return nil
}

func (m *mockNotificationRepository) FindByID(_ context.Context, id int64) (*model.Notification, error) {
	if n := m.find(id); n != nil {
		return n, nil
	}
	return nil, model.ErrNotFound
}

func (m *mockNotificationRepository) MarkRead(_ context.Context, id int64) error {
	n := m.find(id)
	if n == nil {
		return model.ErrNotFound
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

func (m *mockNotificationRepository) CountUnread(context.Context) (int64, error) {
	return 0, nil
}

// --- Helpers ---

var testNow = time.Date(2024, time.June, 1, 2, 15, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testDeps struct {
	scorer        *mockScorer
	transactions  *mockTransactionRepository
	notifications *mockNotificationRepository
}

func buildTestHandler() (*FraudServiceHandler, *testDeps) {
	deps := &testDeps{
		scorer:        &mockScorer{},
		transactions:  newMockTransactionRepository(),
		notifications: &mockNotificationRepository{},
	}
	assessor := service.NewAssessor().
		WithClock(func() time.Time { return testNow }).
		WithIDGenerator(func() string { return "TXABCDEF01" })
	detect := usecase.NewDetectFraud(
		service.NewValidator(), assessor, deps.scorer,
		deps.transactions, deps.notifications, testLogger(),
	).WithClock(func() time.Time { return testNow })

	h := NewFraudServiceHandler(
		detect,
		usecase.NewGetTransaction(deps.transactions),
		usecase.NewListNotifications(deps.notifications),
		usecase.NewMarkNotificationRead(deps.notifications),
		testLogger(),
	)
	return h, deps
}

func validRequest() *DetectFraudRequest {
	return &DetectFraudRequest{
		Amount:              "1500",
		Type:                "CASH_OUT",
		TransactionPairCode: "cm",
		PartOfTheDay:        "night",
		Day:                 15,
	}
}

func sampleRecord() *model.TransactionRecord {
	return model.ReconstructTransactionRecord(
		"TX00000001", decimal.NewFromInt(250), valueobject.TransactionTypePayment,
		valueobject.StatusNormal, 12, testNow, 1,
		valueobject.PairCodeCustomerToCustomer, valueobject.PartOfDayMorning,
		nil, testNow,
	)
}
