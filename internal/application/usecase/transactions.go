package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bibbank/frauddetect/internal/application/dto"
	"github.com/bibbank/frauddetect/internal/domain/model"
	"github.com/bibbank/frauddetect/internal/domain/port"
	"github.com/bibbank/frauddetect/internal/domain/valueobject"
)

const (
	// DefaultListLimit caps list queries that do not set a limit.
	DefaultListLimit = 100
	// RecentWindow is how far back "recent" reaches.
	RecentWindow = 7 * 24 * time.Hour
)

// GetTransaction is the use case for retrieving one transaction record.
type GetTransaction struct {
	repo port.TransactionRepository
}

// NewGetTransaction creates a new GetTransaction use case.
func NewGetTransaction(repo port.TransactionRepository) *GetTransaction {
	return &GetTransaction{repo: repo}
}

// Execute retrieves a record by its transaction ID.
func (uc *GetTransaction) Execute(ctx context.Context, transactionID string) (dto.TransactionResponse, error) {
	if transactionID == "" {
		return dto.TransactionResponse{}, &model.ValidationError{Field: "transactionId", Message: "Transaction ID is required"}
	}
	record, err := uc.repo.FindByTransactionID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return dto.TransactionResponse{}, fmt.Errorf("transaction %s: %w", transactionID, model.ErrNotFound)
		}
		return dto.TransactionResponse{}, fmt.Errorf("failed to find transaction: %w", err)
	}
	return dto.FromRecord(record), nil
}

// ListTransactions is the use case for filtered transaction listings.
type ListTransactions struct {
	repo port.TransactionRepository
	now  func() time.Time
}

// NewListTransactions creates a new ListTransactions use case.
func NewListTransactions(repo port.TransactionRepository) *ListTransactions {
	return &ListTransactions{repo: repo, now: time.Now}
}

// WithClock replaces the clock that anchors the default recent window.
func (uc *ListTransactions) WithClock(now func() time.Time) *ListTransactions {
	uc.now = now
	return uc
}

// Execute lists records matching the most specific filter set on req.
func (uc *ListTransactions) Execute(ctx context.Context, req dto.ListTransactionsRequest) ([]dto.TransactionResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var (
		records []*model.TransactionRecord
		err     error
	)
	switch {
	case req.Status != "":
		status, perr := valueobject.StatusFromString(req.Status)
		if perr != nil {
			return nil, &model.ValidationError{Field: "status", Value: req.Status, Message: perr.Error()}
		}
		records, err = uc.repo.FindByStatus(ctx, status, limit)
	case req.From != nil || req.To != nil:
		from, to := uc.window(req.From, req.To)
		if !from.Before(to) {
			return nil, &model.ValidationError{Field: "from", Value: from, Message: "from must be before to"}
		}
		records, err = uc.repo.FindByTimestampBetween(ctx, from, to, limit)
	case req.MinRiskScore != nil:
		if *req.MinRiskScore < 0 || *req.MinRiskScore > 100 {
			return nil, &model.ValidationError{
				Field:   "minRisk",
				Value:   *req.MinRiskScore,
				Message: fmt.Sprintf("Risk score must be between 0 and 100: %d", *req.MinRiskScore),
			}
		}
		records, err = uc.repo.FindHighRisk(ctx, *req.MinRiskScore, limit)
	default:
		records, err = uc.repo.FindRecent(ctx, uc.now().Add(-RecentWindow), limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return dto.FromRecords(records), nil
}

func (uc *ListTransactions) window(from, to *time.Time) (time.Time, time.Time) {
	end := uc.now()
	if to != nil {
		end = *to
	}
	start := end.Add(-RecentWindow)
	if from != nil {
		start = *from
	}
	return start, end
}
