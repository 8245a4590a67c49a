package dto

import (
	"time"

	"github.com/bibbank/frauddetect/internal/domain/model"
)

// NotificationResponse is the output DTO for an alert notification.
type NotificationResponse struct {
	CreatedAt     time.Time `json:"createdAt"`
	TransactionID string    `json:"transactionId"`
	Type          string    `json:"type"`
	Message       string    `json:"message"`
	ID            int64     `json:"id"`
	RiskScore     int       `json:"riskScore"`
	IsRead        bool      `json:"isRead"`
}

// FromNotification maps a notification to the response DTO.
func FromNotification(n *model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:            n.ID(),
		TransactionID: n.TransactionID(),
		Type:          n.Type(),
		Message:       n.Message(),
		RiskScore:     n.RiskScore(),
		IsRead:        n.IsRead(),
		CreatedAt:     n.CreatedAt(),
	}
}

// FromNotifications maps a slice of notifications.
func FromNotifications(ns []*model.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(ns))
	for _, n := range ns {
		out = append(out, FromNotification(n))
	}
	return out
}
