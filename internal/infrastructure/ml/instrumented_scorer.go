package ml

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/bibbank/frauddetect/internal/domain/model"
	"github.com/bibbank/frauddetect/internal/domain/port"
)

// InstrumentedScorer records latency and outcome of every scorer call.
type InstrumentedScorer struct {
	next     port.Scorer
	duration metric.Float64Histogram
	calls    metric.Int64Counter
}

// NewInstrumentedScorer wraps next with metrics from meter.
func NewInstrumentedScorer(next port.Scorer, meter metric.Meter) (*InstrumentedScorer, error) {
	duration, err := meter.Float64Histogram("fraud_scorer_duration_seconds",
		metric.WithDescription("Wall time of one external scorer invocation."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scorer duration histogram: %w", err)
	}

	calls, err := meter.Int64Counter("fraud_scorer_calls_total",
		metric.WithDescription("Scorer invocations by outcome."),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scorer call counter: %w", err)
	}

	return &InstrumentedScorer{next: next, duration: duration, calls: calls}, nil
}

// Score delegates to the wrapped scorer.
func (s *InstrumentedScorer) Score(ctx context.Context, req model.TransactionRequest) (model.ScoreResult, error) {
	start := time.Now()
	result, err := s.next.Score(ctx, req)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		var sErr *model.ScoringError
		if errors.As(err, &sErr) {
			outcome = string(sErr.Kind)
		}
	}

	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	s.duration.Record(ctx, time.Since(start).Seconds(), attrs)
	s.calls.Add(ctx, 1, attrs)

	return result, err
}
