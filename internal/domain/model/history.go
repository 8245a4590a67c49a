package model

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/frauddetect/internal/domain/valueobject"
)

// HistoryEntry is the display snapshot of a fraud or suspicious assessment
// kept in the fraud history.
type HistoryEntry struct {
	ModelPredictions map[string]float64 `json:"modelPredictions,omitempty"`
	Amount           decimal.Decimal    `json:"amount"`
	TransactionID    string             `json:"transactionId"`
	Timestamp        string             `json:"timestamp"`
	Type             string             `json:"type"`
	PairCode         string             `json:"transaction_pair_code"`
	PartOfDay        string             `json:"part_of_the_day"`
	Status           string             `json:"status"`
	PredictionMethod string             `json:"predictionMethod,omitempty"`
	Factors          []string           `json:"factors"`
	Probability      float64            `json:"probability"`
	RiskScore        int                `json:"riskScore"`
	Day              int                `json:"day"`
	IsFraud          bool               `json:"isFraud"`
}

// HistoryEntryFromAssessment snapshots an assessment for the history.
func HistoryEntryFromAssessment(a FraudAssessment) HistoryEntry {
	req := a.Request()
	return HistoryEntry{
		TransactionID:    a.TransactionID(),
		Timestamp:        a.Timestamp(),
		Amount:           req.Amount(),
		Type:             req.Type().String(),
		Day:              req.Day(),
		PairCode:         req.PairCode().String(),
		PartOfDay:        req.PartOfDay().String(),
		IsFraud:          a.Verdict(),
		Probability:      a.Probability(),
		Status:           a.Status().String(),
		RiskScore:        a.RiskScore(),
		Factors:          a.Factors(),
		PredictionMethod: a.PredictionMethod(),
		ModelPredictions: a.ModelPredictions(),
	}
}

// Alerting reports whether the entry belongs in the history.
func (h HistoryEntry) Alerting() bool {
	status, err := valueobject.StatusFromString(h.Status)
	return err == nil && status.IsAlerting()
}
