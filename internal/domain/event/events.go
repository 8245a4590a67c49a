package event

import (
	"time"

	"github.com/bibbank/frauddetect/pkg/events"
)

const (
	// EventTypeTransactionAssessed is emitted once a scored transaction has been recorded.
	EventTypeTransactionAssessed = "fraud.transaction.assessed"

	// EventTypeHighRiskDetected is emitted when a transaction crosses the alert threshold.
	EventTypeHighRiskDetected = "fraud.high_risk.detected"

	aggregateTransaction  = "Transaction"
	aggregateNotification = "Notification"
)

// TransactionAssessed is published when an assessed transaction is recorded.
type TransactionAssessed struct {
	events.BaseEvent
	TransactionID string   `json:"transaction_id"`
	Amount        string   `json:"amount"`
	Type          string   `json:"type"`
	Status        string   `json:"status"`
	RiskScore     int      `json:"risk_score"`
	Factors       []string `json:"factors"`
}

// NewTransactionAssessed creates a TransactionAssessed event.
func NewTransactionAssessed(
	transactionID, amount, txType, status string,
	riskScore int,
	factors []string,
	occurredAt time.Time,
) TransactionAssessed {
	return TransactionAssessed{
		BaseEvent:     events.NewBaseEvent(EventTypeTransactionAssessed, transactionID, aggregateTransaction, occurredAt),
		TransactionID: transactionID,
		Amount:        amount,
		Type:          txType,
		Status:        status,
		RiskScore:     riskScore,
		Factors:       factors,
	}
}

// HighRiskDetected is published alongside the alert notification for a
// high-risk transaction.
type HighRiskDetected struct {
	events.BaseEvent
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	RiskScore     int    `json:"risk_score"`
}

// NewHighRiskDetected creates a HighRiskDetected event.
func NewHighRiskDetected(transactionID, status, message string, riskScore int, occurredAt time.Time) HighRiskDetected {
	return HighRiskDetected{
		BaseEvent:     events.NewBaseEvent(EventTypeHighRiskDetected, transactionID, aggregateNotification, occurredAt),
		TransactionID: transactionID,
		Status:        status,
		Message:       message,
		RiskScore:     riskScore,
	}
}
