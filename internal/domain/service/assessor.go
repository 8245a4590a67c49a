package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/frauddetect/internal/domain/model"
	"github.com/bibbank/frauddetect/internal/domain/valueobject"
)

// Risk factor explanations, in the order the rules emit them.
const (
	FactorHighAmount       = "High transaction amount"
	FactorUnusualTime      = "Unusual transaction time"
	FactorCashOut          = "Cash out transaction"
	FactorHighProbability  = "High fraud probability score"
	FactorUnusualPattern   = "Unusual transaction pattern"
	FactorLargeTransfer    = "Large transfer amount"
	FactorMerchantNight    = "Unusual merchant transaction time"
	FactorAdvancedEnsemble = "Advanced ensemble prediction used"
	FactorWeightedEnsemble = "Multi-model ensemble prediction"
)

var (
	highAmountThreshold    = decimal.NewFromInt(1000)
	largeTransferThreshold = decimal.NewFromInt(500)
)

const (
	highProbabilityCutoff  = 0.7
	unusualPatternCutoff   = 0.5
	methodAdvancedEnsemble = "ensemble_cnn"
	methodWeightedEnsemble = "ensemble_weighted"
)

// Assessor turns a request and its score into a FraudAssessment. Given the
// same clock and ID source it is deterministic.
type Assessor struct {
	now   func() time.Time
	newID func() string
}

// NewAssessor creates an Assessor using the wall clock and random IDs.
func NewAssessor() *Assessor {
	return &Assessor{
		now:   time.Now,
		newID: NewTransactionID,
	}
}

// WithClock returns a copy of the assessor reading time from now.
func (a *Assessor) WithClock(now func() time.Time) *Assessor {
	c := *a
	c.now = now
	return &c
}

// WithIDGenerator returns a copy of the assessor drawing IDs from newID.
func (a *Assessor) WithIDGenerator(newID func() string) *Assessor {
	c := *a
	c.newID = newID
	return &c
}

// Assess builds the assessment in one step. Scorer-supplied identifiers,
// timestamps and factors take precedence over generated ones.
func (a *Assessor) Assess(req model.TransactionRequest, score model.ScoreResult) model.FraudAssessment {
	transactionID := score.TransactionID
	if transactionID == "" {
		transactionID = a.newID()
	}

	timestamp := score.Timestamp
	if timestamp == "" {
		timestamp = a.now().UTC().Format(time.RFC3339)
	}

	factors := distinct(score.Factors)
	if len(factors) == 0 {
		factors = RiskFactors(req, score)
	}

	return model.NewFraudAssessment(req, score, transactionID, timestamp, factors)
}

// RiskFactors applies the explanation rules in their fixed order.
func RiskFactors(req model.TransactionRequest, score model.ScoreResult) []string {
	f := &factorList{}
	p := score.Probability

	if req.Amount().GreaterThan(highAmountThreshold) {
		f.add(FactorHighAmount)
	}
	if req.PartOfDay().Equal(valueobject.PartOfDayNight) {
		f.add(FactorUnusualTime)
	}
	if req.Type().Equal(valueobject.TransactionTypeCashOut) {
		f.add(FactorCashOut)
	}
	if p > highProbabilityCutoff {
		f.add(FactorHighProbability)
	}
	if p > unusualPatternCutoff {
		f.add(FactorUnusualPattern)
	}
	if req.Type().Equal(valueobject.TransactionTypeTransfer) && req.Amount().GreaterThan(largeTransferThreshold) {
		f.add(FactorLargeTransfer)
	}
	if req.PairCode().Equal(valueobject.PairCodeCustomerToMerchant) && req.PartOfDay().Equal(valueobject.PartOfDayNight) {
		f.add(FactorMerchantNight)
	}
	if factor := ensembleFactor(score.PredictionMethod); factor != "" {
		f.add(factor)
	}

	return f.items
}

func ensembleFactor(method string) string {
	switch {
	case method == methodAdvancedEnsemble:
		return FactorAdvancedEnsemble
	case strings.Contains(method, methodWeightedEnsemble):
		return FactorWeightedEnsemble
	default:
		return ""
	}
}

// NewTransactionID returns "TX" followed by eight upper-case hex characters.
func NewTransactionID() string {
	return "TX" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

type factorList struct {
	seen  map[string]struct{}
	items []string
}

func (f *factorList) add(factor string) {
	if f.seen == nil {
		f.seen = make(map[string]struct{})
	}
	if _, ok := f.seen[factor]; ok {
		return
	}
	f.seen[factor] = struct{}{}
	f.items = append(f.items, factor)
}

func distinct(factors []string) []string {
	f := &factorList{}
	for _, factor := range factors {
		if factor != "" {
			f.add(factor)
		}
	}
	return f.items
}
