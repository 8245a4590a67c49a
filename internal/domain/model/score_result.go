package model

import (
	"fmt"
	"math"
)

// verdictThreshold is used when a scorer reports a probability but no verdict.
const verdictThreshold = 0.5

// ScoreResult is what an external scorer reports for one transaction.
type ScoreResult struct {
	ModelPredictions map[string]float64
	PredictionMethod string
	TransactionID    string
	Timestamp        string
	Factors          []string
	Probability      float64
	Verdict          bool
}

// NewScoreResult checks the probability and settles the verdict. A nil
// verdict is derived from the probability.
func NewScoreResult(verdict *bool, probability float64) (ScoreResult, error) {
	if math.IsNaN(probability) || probability < 0 || probability > 1 {
		return ScoreResult{}, fmt.Errorf("probability must be within [0,1], got %v", probability)
	}

	v := probability > verdictThreshold
	if verdict != nil {
		v = *verdict
	}

	return ScoreResult{
		Verdict:     v,
		Probability: probability,
	}, nil
}
