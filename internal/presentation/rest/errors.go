package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bibbank/frauddetect/internal/application/dto"
	"github.com/bibbank/frauddetect/internal/application/usecase"
	"github.com/bibbank/frauddetect/internal/domain/model"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// Error codes of responses that need telling apart beyond the status code.
const (
	CodeNotificationFailed = "notification_failed"
)

// AlertFailedResponse answers a fraud check whose transaction was recorded
// but whose high risk notification could not be saved. Resubmitting the
// request would record the transaction a second time.
type AlertFailedResponse struct {
	Error         string                      `json:"error"`
	Code          string                      `json:"code"`
	TransactionID string                      `json:"transactionId"`
	Assessment    dto.FraudAssessmentResponse `json:"assessment"`
}

func errInvalidQuery(key, value string) error {
	return &model.ValidationError{Field: key, Value: value, Message: fmt.Sprintf("Invalid %s: %s", key, value)}
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// fail writes the response for a use case error. Only validation messages
// are returned verbatim; everything else is logged and answered generically.
func (h *Handler) fail(c *gin.Context, op string, err error) {
	var validationErr *model.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{Error: validationErr.Message, Field: validationErr.Field})
	case errors.Is(err, model.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
	case errors.Is(err, context.Canceled):
		c.AbortWithStatus(499)
	default:
		h.logger.ErrorContext(c.Request.Context(), op+" failed",
			slog.String("error", usecase.Describe(err)),
			slog.String("path", c.FullPath()),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

// failAlert answers a check that was recorded without its notification.
func (h *Handler) failAlert(c *gin.Context, resp dto.FraudAssessmentResponse, err *model.PersistenceError) {
	h.logger.ErrorContext(c.Request.Context(), "detect fraud recorded without alert",
		slog.String("error", usecase.Describe(err)),
		slog.String("transaction_id", err.TransactionID),
		slog.String("path", c.FullPath()),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, AlertFailedResponse{
		Error:         "Transaction recorded but the high risk notification could not be saved",
		Code:          CodeNotificationFailed,
		TransactionID: err.TransactionID,
		Assessment:    resp,
	})
}
