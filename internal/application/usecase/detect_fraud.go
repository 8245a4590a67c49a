package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bibbank/frauddetect/internal/application/dto"
	"github.com/bibbank/frauddetect/internal/domain/model"
	"github.com/bibbank/frauddetect/internal/domain/port"
	"github.com/bibbank/frauddetect/internal/domain/service"
	"github.com/bibbank/frauddetect/pkg/events"
)

const tracerName = "github.com/bibbank/frauddetect/internal/application/usecase"

// DetectFraud is the use case for a single end-to-end fraud check:
// validate, score, assess, persist and alert.
type DetectFraud struct {
	validator     *service.Validator
	assessor      *service.Assessor
	scorer        port.Scorer
	transactions  port.TransactionRepository
	notifications port.NotificationRepository
	publisher     port.EventPublisher
	history       port.HistoryStore
	logger        *slog.Logger
	tracer        trace.Tracer
	now           func() time.Time
	timeout       time.Duration
}

// NewDetectFraud creates a new DetectFraud use case. Event publishing and
// history recording are off until enabled with WithPublisher and WithHistory.
func NewDetectFraud(
	validator *service.Validator,
	assessor *service.Assessor,
	scorer port.Scorer,
	transactions port.TransactionRepository,
	notifications port.NotificationRepository,
	logger *slog.Logger,
) *DetectFraud {
	return &DetectFraud{
		validator:     validator,
		assessor:      assessor,
		scorer:        scorer,
		transactions:  transactions,
		notifications: notifications,
		logger:        logger,
		tracer:        otel.Tracer(tracerName),
		now:           time.Now,
	}
}

// WithPublisher enables best-effort publishing of domain events.
func (uc *DetectFraud) WithPublisher(p port.EventPublisher) *DetectFraud {
	uc.publisher = p
	return uc
}

// WithHistory enables best-effort recording of alerting assessments.
func (uc *DetectFraud) WithHistory(h port.HistoryStore) *DetectFraud {
	uc.history = h
	return uc
}

// WithScorerTimeout bounds each scorer call. Zero means no bound.
func (uc *DetectFraud) WithScorerTimeout(d time.Duration) *DetectFraud {
	uc.timeout = d
	return uc
}

// WithClock replaces the clock used to stamp records and notifications.
func (uc *DetectFraud) WithClock(now func() time.Time) *DetectFraud {
	uc.now = now
	return uc
}

// Execute runs the fraud check. When the notification cannot be saved the
// transaction record stays persisted and both the assessment and a
// *model.PersistenceError are returned.
func (uc *DetectFraud) Execute(ctx context.Context, req *dto.DetectFraudRequest) (dto.FraudAssessmentResponse, error) {
	ctx, span := uc.tracer.Start(ctx, "DetectFraud")
	defer span.End()

	reject := func(err error) error {
		uc.logFailure(ctx, req, err)
		return fail(span, err)
	}

	// 1. Validate. The scorer is never reached with an invalid request.
	txReq, err := uc.validator.Validate(req.ToRaw())
	if err != nil {
		return dto.FraudAssessmentResponse{}, reject(err)
	}

	// 2. Score.
	score, err := uc.score(ctx, txReq)
	if err != nil {
		return dto.FraudAssessmentResponse{}, reject(err)
	}

	// 3. Assess.
	assessment := uc.assessor.Assess(txReq, score)
	span.SetAttributes(
		attribute.String("fraud.transaction_id", assessment.TransactionID()),
		attribute.String("fraud.status", assessment.Status().String()),
		attribute.Int("fraud.risk_score", assessment.RiskScore()),
	)
	resp := dto.FromAssessment(assessment)

	// 4. Persist the transaction record.
	now := uc.now()
	record, err := model.NewTransactionRecord(assessment, now)
	if err != nil {
		return dto.FraudAssessmentResponse{}, reject(&model.InternalError{Message: "failed to build transaction record", Err: err})
	}
	if err := uc.transactions.Save(ctx, record); err != nil {
		return dto.FraudAssessmentResponse{}, reject(&model.PersistenceError{
			Err:           err,
			Entity:        model.EntityTransaction,
			TransactionID: record.TransactionID(),
		})
	}
	pending := record.ClearEvents()

	// 5. Alert on high risk.
	var alertErr error
	if assessment.RequiresAlert() {
		pending, alertErr = uc.alert(ctx, record, now, pending)
	}

	// 6. Best-effort side effects.
	uc.publish(ctx, pending)
	uc.remember(ctx, assessment)

	if alertErr != nil {
		return resp, reject(alertErr)
	}

	uc.logger.InfoContext(ctx, "transaction assessed",
		"transaction_id", assessment.TransactionID(),
		"status", assessment.Status().String(),
		"risk_score", assessment.RiskScore(),
		"probability", assessment.Probability(),
	)

	return resp, nil
}

// score calls the scorer under the configured timeout and guarantees every
// failure leaves as a *model.ScoringError. The scorer is expected to stop
// once ctx is done.
func (uc *DetectFraud) score(ctx context.Context, req model.TransactionRequest) (model.ScoreResult, error) {
	ctx, span := uc.tracer.Start(ctx, "DetectFraud.score")
	defer span.End()

	if uc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}

	result, err := uc.scorer.Score(ctx, req)
	if err == nil {
		return result, nil
	}

	var scoringErr *model.ScoringError
	if errors.As(err, &scoringErr) {
		return model.ScoreResult{}, fail(span, err)
	}
	kind := model.ScoringErrorStart
	if errors.Is(err, context.DeadlineExceeded) {
		kind = model.ScoringErrorTimeout
	}
	return model.ScoreResult{}, fail(span, &model.ScoringError{Kind: kind, Err: err})
}

func (uc *DetectFraud) alert(
	ctx context.Context,
	record *model.TransactionRecord,
	now time.Time,
	pending []events.DomainEvent,
) ([]events.DomainEvent, error) {
	notification, err := model.NewHighRiskNotification(record, now)
	if err != nil {
		return pending, &model.InternalError{Message: "failed to build notification", Err: err}
	}
	if err := uc.notifications.Save(ctx, notification); err != nil {
		return pending, &model.PersistenceError{
			Err:           err,
			Entity:        model.EntityNotification,
			TransactionID: record.TransactionID(),
		}
	}
	uc.logger.WarnContext(ctx, "high risk transaction detected",
		"transaction_id", record.TransactionID(),
		"risk_score", record.RiskScore(),
		"notification_id", notification.ID(),
	)
	return append(pending, notification.ClearEvents()...), nil
}

func (uc *DetectFraud) publish(ctx context.Context, pending []events.DomainEvent) {
	if uc.publisher == nil || len(pending) == 0 {
		return
	}
	if err := uc.publisher.Publish(ctx, pending...); err != nil {
		uc.logger.WarnContext(ctx, "failed to publish domain events", "count", len(pending), "error", err)
	}
}

func (uc *DetectFraud) remember(ctx context.Context, a model.FraudAssessment) {
	if uc.history == nil || !a.Status().IsAlerting() {
		return
	}
	if err := uc.history.Add(ctx, model.HistoryEntryFromAssessment(a)); err != nil {
		uc.logger.WarnContext(ctx, "failed to record fraud history", "transaction_id", a.TransactionID(), "error", err)
	}
}

// logFailure records a failed check together with the input that caused it.
func (uc *DetectFraud) logFailure(ctx context.Context, req *dto.DetectFraudRequest, err error) {
	attrs := []any{requestAttr(req), slog.String("error", err.Error())}

	var (
		validationErr  *model.ValidationError
		scoringErr     *model.ScoringError
		persistenceErr *model.PersistenceError
	)
	switch {
	case errors.As(err, &validationErr):
		uc.logger.WarnContext(ctx, "fraud check rejected",
			append(attrs, slog.String("field", validationErr.Field))...)
	case errors.As(err, &scoringErr):
		uc.logger.ErrorContext(ctx, "fraud check scoring failed", append(attrs,
			slog.String("kind", string(scoringErr.Kind)),
			slog.Int("exit_code", scoringErr.ExitCode),
			slog.String("stderr", scoringErr.Stderr),
			slog.String("raw_output", scoringErr.RawOutput),
		)...)
	case errors.As(err, &persistenceErr):
		uc.logger.ErrorContext(ctx, "fraud check persistence failed", append(attrs,
			slog.String("entity", string(persistenceErr.Entity)),
			slog.String("transaction_id", persistenceErr.TransactionID),
		)...)
	default:
		uc.logger.ErrorContext(ctx, "fraud check failed", attrs...)
	}
}

func requestAttr(req *dto.DetectFraudRequest) slog.Attr {
	if req == nil {
		return slog.String("request", "null")
	}
	return slog.Group("request",
		slog.String("amount", req.Amount.String()),
		slog.Int("day", req.Day),
		slog.String("type", req.Type),
		slog.String("transaction_pair_code", req.PairCode),
		slog.String("part_of_the_day", req.PartOfDay),
	)
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

// Describe renders an error for logs with its classification.
func Describe(err error) string {
	var (
		validationErr  *model.ValidationError
		scoringErr     *model.ScoringError
		persistenceErr *model.PersistenceError
	)
	switch {
	case errors.As(err, &validationErr):
		return fmt.Sprintf("validation (%s): %v", validationErr.Field, err)
	case errors.As(err, &scoringErr):
		return fmt.Sprintf("scoring (%s): %v", scoringErr.Kind, err)
	case errors.As(err, &persistenceErr):
		return fmt.Sprintf("persistence (%s): %v", persistenceErr.Entity, err)
	default:
		return fmt.Sprintf("internal: %v", err)
	}
}
