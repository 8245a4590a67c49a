package model

import (
	"fmt"
	"time"

	"github.com/bibbank/frauddetect/internal/domain/event"
	"github.com/bibbank/frauddetect/pkg/events"
)

// Notification is an alert raised for a high-risk transaction. Only the read
// flag changes after creation.
type Notification struct {
	events.EventCollector
	createdAt     time.Time
	transactionID string
	notifType     string
	message       string
	id            int64
	riskScore     int
	isRead        bool
}

// NewHighRiskNotification creates the alert for a saved record. It refuses
// records below the alert threshold.
func NewHighRiskNotification(record *TransactionRecord, now time.Time) (*Notification, error) {
	if record == nil {
		return nil, fmt.Errorf("transaction record is required")
	}
	if record.RiskScore() < AlertThreshold {
		return nil, fmt.Errorf("risk score %d is below the alert threshold %d", record.RiskScore(), AlertThreshold)
	}

	n := &Notification{
		transactionID: record.TransactionID(),
		notifType:     record.Status().String(),
		message:       "High risk transaction detected: " + record.TransactionID(),
		riskScore:     record.RiskScore(),
		isRead:        false,
		createdAt:     now.UTC(),
	}

	n.Record(event.NewHighRiskDetected(n.transactionID, n.notifType, n.message, n.riskScore, n.createdAt))

	return n, nil
}

// ReconstructNotification rebuilds a notification from persisted data.
func ReconstructNotification(
	id int64,
	transactionID, notifType, message string,
	riskScore int,
	isRead bool,
	createdAt time.Time,
) *Notification {
	return &Notification{
		id:            id,
		transactionID: transactionID,
		notifType:     notifType,
		message:       message,
		riskScore:     riskScore,
		isRead:        isRead,
		createdAt:     createdAt,
	}
}

// AssignID sets the storage-generated identifier after the first save.
func (n *Notification) AssignID(id int64) {
	n.id = id
}

// MarkRead flags the notification as read. Marking twice is a no-op.
func (n *Notification) MarkRead() {
	n.isRead = true
}

func (n *Notification) ID() int64             { return n.id }
func (n *Notification) TransactionID() string { return n.transactionID }
func (n *Notification) Type() string          { return n.notifType }
func (n *Notification) Message() string       { return n.message }
func (n *Notification) RiskScore() int        { return n.riskScore }
func (n *Notification) IsRead() bool          { return n.isRead }
func (n *Notification) CreatedAt() time.Time  { return n.createdAt }
