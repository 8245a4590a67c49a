package port

import (
	"context"

	"github.com/bibbank/frauddetect/internal/domain/model"
)

// Scorer obtains a fraud probability for a validated request. Implementations
// classify every failure as a *model.ScoringError.
type Scorer interface {
	Score(ctx context.Context, req model.TransactionRequest) (model.ScoreResult, error)
}
