package model

import (
	"maps"
	"math"
	"slices"

	"github.com/bibbank/frauddetect/internal/domain/valueobject"
)

// AlertThreshold is the risk score at and above which a notification is raised.
const AlertThreshold = 70

// FraudAssessment is the immutable outcome of scoring one transaction.
// Status and risk score are always derived from verdict and probability.
type FraudAssessment struct {
	modelPredictions map[string]float64
	request          TransactionRequest
	status           valueobject.Status
	transactionID    string
	timestamp        string
	predictionMethod string
	factors          []string
	probability      float64
	riskScore        int
	verdict          bool
}

// NewFraudAssessment derives status and risk score from the score result and
// binds them to the request, identifier, timestamp and factor list chosen by
// the assessment engine.
func NewFraudAssessment(
	request TransactionRequest,
	score ScoreResult,
	transactionID string,
	timestamp string,
	factors []string,
) FraudAssessment {
	return FraudAssessment{
		request:          request,
		transactionID:    transactionID,
		timestamp:        timestamp,
		verdict:          score.Verdict,
		probability:      score.Probability,
		status:           valueobject.DeriveStatus(score.Verdict, score.Probability),
		riskScore:        RiskScoreFromProbability(score.Probability),
		factors:          slices.Clone(factors),
		predictionMethod: score.PredictionMethod,
		modelPredictions: maps.Clone(score.ModelPredictions),
	}
}

// RiskScoreFromProbability maps a probability onto the 0-100 scale.
func RiskScoreFromProbability(p float64) int {
	if math.IsNaN(p) {
		return 0
	}
	score := int(math.Round(p * 100))
	switch {
	case score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}

func (a FraudAssessment) Request() TransactionRequest          { return a.request }
func (a FraudAssessment) TransactionID() string                { return a.transactionID }
func (a FraudAssessment) Timestamp() string                    { return a.timestamp }
func (a FraudAssessment) Verdict() bool                        { return a.verdict }
func (a FraudAssessment) Probability() float64                 { return a.probability }
func (a FraudAssessment) Status() valueobject.Status           { return a.status }
func (a FraudAssessment) RiskScore() int                       { return a.riskScore }
func (a FraudAssessment) PredictionMethod() string             { return a.predictionMethod }
func (a FraudAssessment) Factors() []string                    { return slices.Clone(a.factors) }
func (a FraudAssessment) ModelPredictions() map[string]float64 { return maps.Clone(a.modelPredictions) }

// RequiresAlert reports whether the assessment crosses the alert threshold.
func (a FraudAssessment) RequiresAlert() bool {
	return a.riskScore >= AlertThreshold
}
