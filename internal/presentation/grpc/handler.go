package grpc

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/frauddetect/internal/application/dto"
	"github.com/bibbank/frauddetect/internal/application/usecase"
	"github.com/bibbank/frauddetect/internal/domain/model"
	"github.com/bibbank/frauddetect/pkg/auth"
)

var (
	readRoles  = []string{auth.RoleAdmin, auth.RoleAnalyst, auth.RoleAPIClient}
	writeRoles = []string{auth.RoleAdmin, auth.RoleAnalyst}
)

// ErrorDomain and the reasons below identify ErrorInfo details attached to
// statuses that callers must tell apart from a plain Internal.
const (
	ErrorDomain              = "frauddetect"
	ReasonNotificationFailed = "NOTIFICATION_FAILED"
)

// Compile-time assertion that FraudServiceHandler implements FraudServiceServer.
var _ FraudServiceServer = (*FraudServiceHandler)(nil)

// FraudServiceHandler implements the gRPC FraudServiceServer interface.
type FraudServiceHandler struct {
	UnimplementedFraudServiceServer
	detectFraud       *usecase.DetectFraud
	getTransaction    *usecase.GetTransaction
	listNotifications *usecase.ListNotifications
	markRead          *usecase.MarkNotificationRead
	logger            *slog.Logger
	authorize         bool
}

// NewFraudServiceHandler creates a new gRPC handler. Role checks are off
// until WithAuthorization is called.
func NewFraudServiceHandler(
	detectFraud *usecase.DetectFraud,
	getTransaction *usecase.GetTransaction,
	listNotifications *usecase.ListNotifications,
	markRead *usecase.MarkNotificationRead,
	logger *slog.Logger,
) *FraudServiceHandler {
	return &FraudServiceHandler{
		detectFraud:       detectFraud,
		getTransaction:    getTransaction,
		listNotifications: listNotifications,
		markRead:          markRead,
		logger:            logger,
	}
}

// WithAuthorization enforces caller roles taken from the JWT claims.
func (h *FraudServiceHandler) WithAuthorization() *FraudServiceHandler {
	h.authorize = true
	return h
}

// Proto-aligned request/response message types.

// DetectFraudRequest represents the proto DetectFraudRequest message.
type DetectFraudRequest struct {
	Amount              string `json:"amount"`
	Type                string `json:"type"`
	TransactionPairCode string `json:"transaction_pair_code"`
	PartOfTheDay        string `json:"part_of_the_day"`
	Day                 int32  `json:"day"`
}

// AssessmentMsg represents the proto FraudAssessment message.
type AssessmentMsg struct {
	ModelPredictions    map[string]float64 `json:"model_predictions,omitempty"`
	TransactionID       string             `json:"transaction_id"`
	Timestamp           string             `json:"timestamp"`
	Status              string             `json:"status"`
	PredictionMethod    string             `json:"prediction_method,omitempty"`
	Amount              string             `json:"amount"`
	Type                string             `json:"type"`
	TransactionPairCode string             `json:"transaction_pair_code"`
	PartOfTheDay        string             `json:"part_of_the_day"`
	Factors             []string           `json:"factors"`
	Probability         float64            `json:"probability"`
	RiskScore           int32              `json:"risk_score"`
	Day                 int32              `json:"day"`
	IsFraud             bool               `json:"is_fraud"`
}

// DetectFraudResponse represents the proto DetectFraudResponse message.
type DetectFraudResponse struct {
	Assessment *AssessmentMsg `json:"assessment"`
}

// GetTransactionRequest represents the proto GetTransactionRequest message.
type GetTransactionRequest struct {
	TransactionID string `json:"transaction_id"`
}

// TransactionMsg represents the proto TransactionRecord message.
type TransactionMsg struct {
	TransactionID       string   `json:"transaction_id"`
	Amount              string   `json:"amount"`
	Type                string   `json:"type"`
	Status              string   `json:"status"`
	Timestamp           string   `json:"timestamp"`
	CreatedAt           string   `json:"created_at"`
	TransactionPairCode string   `json:"transaction_pair_code"`
	PartOfTheDay        string   `json:"part_of_the_day"`
	Factors             []string `json:"factors"`
	RiskScore           int32    `json:"risk_score"`
	Day                 int32    `json:"day"`
}

// GetTransactionResponse represents the proto GetTransactionResponse message.
type GetTransactionResponse struct {
	Transaction *TransactionMsg `json:"transaction"`
}

// ListNotificationsRequest represents the proto ListNotificationsRequest
// message. A transaction ID takes precedence over the other filters.
type ListNotificationsRequest struct {
	TransactionID string `json:"transaction_id"`
	Limit         int32  `json:"limit"`
	UnreadOnly    bool   `json:"unread_only"`
}

// NotificationMsg represents the proto Notification message.
type NotificationMsg struct {
	TransactionID string `json:"transaction_id"`
	Type          string `json:"type"`
	Message       string `json:"message"`
	CreatedAt     string `json:"created_at"`
	ID            int64  `json:"id"`
	RiskScore     int32  `json:"risk_score"`
	IsRead        bool   `json:"is_read"`
}

// ListNotificationsResponse represents the proto ListNotificationsResponse message.
type ListNotificationsResponse struct {
	Notifications []*NotificationMsg `json:"notifications"`
}

// MarkNotificationReadRequest represents the proto MarkNotificationReadRequest message.
type MarkNotificationReadRequest struct {
	ID int64 `json:"id"`
}

// MarkNotificationReadResponse represents the proto MarkNotificationReadResponse message.
type MarkNotificationReadResponse struct {
	Notification *NotificationMsg `json:"notification"`
}

// DetectFraud runs a fraud check. A nil request is rejected by validation.
func (h *FraudServiceHandler) DetectFraud(ctx context.Context, req *DetectFraudRequest) (*DetectFraudResponse, error) {
	if err := h.requireRole(ctx, readRoles...); err != nil {
		return nil, err
	}

	var in *dto.DetectFraudRequest
	if req != nil {
		amount := decimal.Zero
		if req.Amount != "" {
			var err error
			if amount, err = decimal.NewFromString(req.Amount); err != nil {
				return nil, status.Errorf(codes.InvalidArgument, "Invalid amount: %s", req.Amount)
			}
		}
		in = &dto.DetectFraudRequest{
			Amount:    amount,
			Type:      req.Type,
			PairCode:  req.TransactionPairCode,
			PartOfDay: req.PartOfTheDay,
			Day:       int(req.Day),
		}
	}

	result, err := h.detectFraud.Execute(ctx, in)
	var persistenceErr *model.PersistenceError
	if errors.As(err, &persistenceErr) && persistenceErr.Entity == model.EntityNotification {
		return nil, h.alertFailedStatus(ctx, result, persistenceErr)
	}
	if err != nil {
		return nil, h.toStatus(ctx, "detect fraud", err)
	}

	return &DetectFraudResponse{Assessment: toAssessmentMsg(result)}, nil
}

// GetTransaction returns one recorded transaction.
func (h *FraudServiceHandler) GetTransaction(ctx context.Context, req *GetTransactionRequest) (*GetTransactionResponse, error) {
	if err := h.requireRole(ctx, readRoles...); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	result, err := h.getTransaction.Execute(ctx, req.TransactionID)
	if err != nil {
		return nil, h.toStatus(ctx, "get transaction", err)
	}

	return &GetTransactionResponse{Transaction: toTransactionMsg(result)}, nil
}

// ListNotifications lists alert notifications.
func (h *FraudServiceHandler) ListNotifications(ctx context.Context, req *ListNotificationsRequest) (*ListNotificationsResponse, error) {
	if err := h.requireRole(ctx, readRoles...); err != nil {
		return nil, err
	}
	if req == nil {
		req = &ListNotificationsRequest{}
	}

	var (
		result []dto.NotificationResponse
		err    error
	)
	if req.TransactionID != "" {
		result, err = h.listNotifications.ForTransaction(ctx, req.TransactionID)
	} else {
		result, err = h.listNotifications.Execute(ctx, req.UnreadOnly, int(req.Limit))
	}
	if err != nil {
		return nil, h.toStatus(ctx, "list notifications", err)
	}

	resp := &ListNotificationsResponse{Notifications: make([]*NotificationMsg, 0, len(result))}
	for _, n := range result {
		resp.Notifications = append(resp.Notifications, toNotificationMsg(n))
	}
	return resp, nil
}

// MarkNotificationRead flags a notification as read.
func (h *FraudServiceHandler) MarkNotificationRead(ctx context.Context, req *MarkNotificationReadRequest) (*MarkNotificationReadResponse, error) {
	if err := h.requireRole(ctx, writeRoles...); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	result, err := h.markRead.Execute(ctx, req.ID)
	if err != nil {
		return nil, h.toStatus(ctx, "mark notification read", err)
	}

	return &MarkNotificationReadResponse{Notification: toNotificationMsg(result)}, nil
}

// requireRole checks that the caller has at least one of the given roles.
func (h *FraudServiceHandler) requireRole(ctx context.Context, roles ...string) error {
	if !h.authorize {
		return nil
	}
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "authentication required")
	}
	if !claims.HasAnyRole(roles...) {
		return status.Error(codes.PermissionDenied, "insufficient permissions")
	}
	return nil
}

// toStatus maps use case errors onto gRPC codes. Only validation messages
// reach the caller verbatim.
func (h *FraudServiceHandler) toStatus(ctx context.Context, op string, err error) error {
	var validationErr *model.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return status.Error(codes.InvalidArgument, validationErr.Message)
	case errors.Is(err, model.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	default:
		h.logger.ErrorContext(ctx, op+" failed", slog.String("error", usecase.Describe(err)))
		return status.Error(codes.Internal, "internal error")
	}
}

// alertFailedStatus reports a check that was recorded without its
// notification. The transaction ID travels in the ErrorInfo metadata so the
// caller can look the record up instead of resubmitting.
func (h *FraudServiceHandler) alertFailedStatus(ctx context.Context, result dto.FraudAssessmentResponse, err *model.PersistenceError) error {
	h.logger.ErrorContext(ctx, "detect fraud recorded without alert",
		slog.String("error", usecase.Describe(err)),
		slog.String("transaction_id", err.TransactionID),
	)
	st := status.New(codes.Internal, "transaction recorded but the high risk notification could not be saved")
	detailed, detailErr := st.WithDetails(&errdetails.ErrorInfo{
		Reason: ReasonNotificationFailed,
		Domain: ErrorDomain,
		Metadata: map[string]string{
			"transaction_id": err.TransactionID,
			"status":         result.Status,
			"risk_score":     strconv.Itoa(result.RiskScore),
		},
	})
	if detailErr != nil {
		return st.Err()
	}
	return detailed.Err()
}

func toAssessmentMsg(a dto.FraudAssessmentResponse) *AssessmentMsg {
	return &AssessmentMsg{
		TransactionID:       a.TransactionID,
		Timestamp:           a.Timestamp,
		Status:              a.Status,
		PredictionMethod:    a.PredictionMethod,
		ModelPredictions:    a.ModelPredictions,
		Amount:              a.Amount.String(),
		Type:                a.Type,
		TransactionPairCode: a.PairCode,
		PartOfTheDay:        a.PartOfDay,
		Factors:             a.Factors,
		Probability:         a.Probability,
		RiskScore:           int32(a.RiskScore),
		Day:                 int32(a.Day),
		IsFraud:             a.IsFraud,
	}
}

func toTransactionMsg(t dto.TransactionResponse) *TransactionMsg {
	return &TransactionMsg{
		TransactionID:       t.TransactionID,
		Amount:              t.Amount.String(),
		Type:                t.Type,
		Status:              t.Status,
		Timestamp:           t.Timestamp.Format(time.RFC3339),
		CreatedAt:           t.CreatedAt.Format(time.RFC3339),
		TransactionPairCode: t.PairCode,
		PartOfTheDay:        t.PartOfDay,
		Factors:             t.Factors,
		RiskScore:           int32(t.RiskScore),
		Day:                 int32(t.Day),
	}
}

func toNotificationMsg(n dto.NotificationResponse) *NotificationMsg {
	return &NotificationMsg{
		ID:            n.ID,
		TransactionID: n.TransactionID,
		Type:          n.Type,
		Message:       n.Message,
		RiskScore:     int32(n.RiskScore),
		IsRead:        n.IsRead,
		CreatedAt:     n.CreatedAt.Format(time.RFC3339),
	}
}
