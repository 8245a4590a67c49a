package model

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/frauddetect/internal/domain/event"
	"github.com/bibbank/frauddetect/internal/domain/valueobject"
	"github.com/bibbank/frauddetect/pkg/events"
)

// timestampLayouts are the forms scorers are known to report timestamps in.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// TransactionRecord is the persisted trace of one completed fraud check.
// It is written once and never changed afterwards.
type TransactionRecord struct {
	events.EventCollector
	timestamp     time.Time
	createdAt     time.Time
	amount        decimal.Decimal
	txType        valueobject.TransactionType
	status        valueobject.Status
	pairCode      valueobject.PairCode
	partOfDay     valueobject.PartOfDay
	transactionID string
	factors       []string
	riskScore     int
	day           int
}

// NewTransactionRecord derives a record from an assessment. now stamps the
// record and stands in for the assessment timestamp if that cannot be parsed.
func NewTransactionRecord(a FraudAssessment, now time.Time) (*TransactionRecord, error) {
	if a.TransactionID() == "" {
		return nil, fmt.Errorf("transaction ID is required")
	}
	if a.Status().IsZero() {
		return nil, fmt.Errorf("status is required")
	}

	req := a.Request()
	now = now.UTC()

	r := &TransactionRecord{
		transactionID: a.TransactionID(),
		amount:        req.Amount(),
		txType:        req.Type(),
		status:        a.Status(),
		riskScore:     a.RiskScore(),
		timestamp:     ParseTimestamp(a.Timestamp(), now),
		day:           req.Day(),
		pairCode:      req.PairCode(),
		partOfDay:     req.PartOfDay(),
		factors:       a.Factors(),
		createdAt:     now,
	}

	r.Record(event.NewTransactionAssessed(
		r.transactionID, r.amount.String(), r.txType.String(), r.status.String(),
		r.riskScore, r.factors, now,
	))

	return r, nil
}

// ReconstructTransactionRecord rebuilds a record from persisted data (no validation, no events).
func ReconstructTransactionRecord(
	transactionID string,
	amount decimal.Decimal,
	txType valueobject.TransactionType,
	status valueobject.Status,
	riskScore int,
	timestamp time.Time,
	day int,
	pairCode valueobject.PairCode,
	partOfDay valueobject.PartOfDay,
	factors []string,
	createdAt time.Time,
) *TransactionRecord {
	return &TransactionRecord{
		transactionID: transactionID,
		amount:        amount,
		txType:        txType,
		status:        status,
		riskScore:     riskScore,
		timestamp:     timestamp,
		day:           day,
		pairCode:      pairCode,
		partOfDay:     partOfDay,
		factors:       factors,
		createdAt:     createdAt,
	}
}

// ParseTimestamp reads a scorer or assessment timestamp, returning fallback
// when the value is empty or in an unknown layout.
func ParseTimestamp(value string, fallback time.Time) time.Time {
	if value == "" {
		return fallback
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return fallback
}

// --- Accessors ---

func (r *TransactionRecord) TransactionID() string             { return r.transactionID }
func (r *TransactionRecord) Amount() decimal.Decimal           { return r.amount }
func (r *TransactionRecord) Type() valueobject.TransactionType { return r.txType }
func (r *TransactionRecord) Status() valueobject.Status        { return r.status }
func (r *TransactionRecord) RiskScore() int                    { return r.riskScore }
func (r *TransactionRecord) Timestamp() time.Time              { return r.timestamp }
func (r *TransactionRecord) Day() int                          { return r.day }
func (r *TransactionRecord) PairCode() valueobject.PairCode    { return r.pairCode }
func (r *TransactionRecord) PartOfDay() valueobject.PartOfDay  { return r.partOfDay }
func (r *TransactionRecord) Factors() []string                 { return slices.Clone(r.factors) }
func (r *TransactionRecord) CreatedAt() time.Time              { return r.createdAt }
