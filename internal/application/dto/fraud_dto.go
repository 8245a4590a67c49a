package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/frauddetect/internal/domain/model"
	"github.com/bibbank/frauddetect/internal/domain/service"
)

// DetectFraudRequest is the input DTO for the DetectFraud use case.
type DetectFraudRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Type      string          `json:"type"`
	PairCode  string          `json:"transaction_pair_code"`
	PartOfDay string          `json:"part_of_the_day"`
	Day       int             `json:"day"`
}

// ToRaw converts the DTO into the validator's input. A nil DTO stays nil.
func (r *DetectFraudRequest) ToRaw() *service.RawTransaction {
	if r == nil {
		return nil
	}
	return &service.RawTransaction{
		Amount:    r.Amount,
		Day:       r.Day,
		Type:      r.Type,
		PairCode:  r.PairCode,
		PartOfDay: r.PartOfDay,
	}
}

// FraudAssessmentResponse is the output DTO of a fraud check.
type FraudAssessmentResponse struct {
	ModelPredictions map[string]float64 `json:"modelPredictions,omitempty"`
	Amount           decimal.Decimal    `json:"amount"`
	TransactionID    string             `json:"transactionId"`
	Timestamp        string             `json:"timestamp"`
	Status           string             `json:"status"`
	PredictionMethod string             `json:"predictionMethod,omitempty"`
	Type             string             `json:"type"`
	PairCode         string             `json:"transaction_pair_code"`
	PartOfDay        string             `json:"part_of_the_day"`
	Factors          []string           `json:"factors"`
	Probability      float64            `json:"probability"`
	RiskScore        int                `json:"riskScore"`
	Day              int                `json:"day"`
	IsFraud          bool               `json:"isFraud"`
}

// FromAssessment maps a domain assessment to the response DTO.
func FromAssessment(a model.FraudAssessment) FraudAssessmentResponse {
	req := a.Request()
	factors := a.Factors()
	if factors == nil {
		factors = []string{}
	}
	return FraudAssessmentResponse{
		IsFraud:          a.Verdict(),
		Probability:      a.Probability(),
		Status:           a.Status().String(),
		RiskScore:        a.RiskScore(),
		Factors:          factors,
		TransactionID:    a.TransactionID(),
		Timestamp:        a.Timestamp(),
		PredictionMethod: a.PredictionMethod(),
		ModelPredictions: a.ModelPredictions(),
		Amount:           req.Amount(),
		Type:             req.Type().String(),
		Day:              req.Day(),
		PairCode:         req.PairCode().String(),
		PartOfDay:        req.PartOfDay().String(),
	}
}

// TransactionResponse is the output DTO for a persisted transaction record.
type TransactionResponse struct {
	Timestamp     time.Time       `json:"timestamp"`
	CreatedAt     time.Time       `json:"createdAt"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transactionId"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	PairCode      string          `json:"transactionPairCode"`
	PartOfDay     string          `json:"partOfTheDay"`
	Factors       []string        `json:"factors"`
	RiskScore     int             `json:"riskScore"`
	Day           int             `json:"day"`
}

// FromRecord maps a transaction record to the response DTO.
func FromRecord(r *model.TransactionRecord) TransactionResponse {
	factors := r.Factors()
	if factors == nil {
		factors = []string{}
	}
	return TransactionResponse{
		TransactionID: r.TransactionID(),
		Amount:        r.Amount(),
		Type:          r.Type().String(),
		Status:        r.Status().String(),
		RiskScore:     r.RiskScore(),
		Timestamp:     r.Timestamp(),
		Day:           r.Day(),
		PairCode:      r.PairCode().String(),
		PartOfDay:     r.PartOfDay().String(),
		Factors:       factors,
		CreatedAt:     r.CreatedAt(),
	}
}

// FromRecords maps a slice of records.
func FromRecords(records []*model.TransactionRecord) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(records))
	for _, r := range records {
		out = append(out, FromRecord(r))
	}
	return out
}

// ListTransactionsRequest selects which records to list. Filters are applied
// by precedence: status, then time range, then minimum risk score; with none
// set the last seven days are returned.
type ListTransactionsRequest struct {
	From         *time.Time
	To           *time.Time
	MinRiskScore *int
	Status       string
	Limit        int
}
