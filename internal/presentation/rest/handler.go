package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bibbank/frauddetect/internal/application/dto"
	"github.com/bibbank/frauddetect/internal/application/usecase"
	"github.com/bibbank/frauddetect/internal/domain/model"
)

// Handler serves the /api endpoints.
type Handler struct {
	detectFraud       *usecase.DetectFraud
	getTransaction    *usecase.GetTransaction
	listTransactions  *usecase.ListTransactions
	listNotifications *usecase.ListNotifications
	markRead          *usecase.MarkNotificationRead
	dashboard         *usecase.GetDashboard
	timeline          *usecase.GetFraudTimeline
	history           *usecase.FraudHistory
	logger            *slog.Logger
}

// UseCases groups the application use cases the handler dispatches to.
type UseCases struct {
	DetectFraud       *usecase.DetectFraud
	GetTransaction    *usecase.GetTransaction
	ListTransactions  *usecase.ListTransactions
	ListNotifications *usecase.ListNotifications
	MarkRead          *usecase.MarkNotificationRead
	Dashboard         *usecase.GetDashboard
	Timeline          *usecase.GetFraudTimeline
	History           *usecase.FraudHistory
}

// NewHandler creates a new REST handler.
func NewHandler(uc UseCases, logger *slog.Logger) *Handler {
	return &Handler{
		detectFraud:       uc.DetectFraud,
		getTransaction:    uc.GetTransaction,
		listTransactions:  uc.ListTransactions,
		listNotifications: uc.ListNotifications,
		markRead:          uc.MarkRead,
		dashboard:         uc.Dashboard,
		timeline:          uc.Timeline,
		history:           uc.History,
		logger:            logger,
	}
}

// DetectFraud handles POST /api/fraud-detect. A missing or null body is
// reported by validation like any other invalid request.
func (h *Handler) DetectFraud(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	var req *dto.DetectFraudRequest
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &req); err != nil {
			badRequest(c, "Invalid request body: "+err.Error())
			return
		}
	}

	resp, err := h.detectFraud.Execute(c.Request.Context(), req)
	var persistenceErr *model.PersistenceError
	if errors.As(err, &persistenceErr) && persistenceErr.Entity == model.EntityNotification {
		h.failAlert(c, resp, persistenceErr)
		return
	}
	if err != nil {
		h.fail(c, "detect fraud", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetTransaction handles GET /api/transactions/:id.
func (h *Handler) GetTransaction(c *gin.Context) {
	resp, err := h.getTransaction.Execute(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, "get transaction", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListTransactions handles GET /api/transactions.
func (h *Handler) ListTransactions(c *gin.Context) {
	req, err := parseListTransactions(c)
	if err != nil {
		h.fail(c, "list transactions", err)
		return
	}
	h.listTransactionsWith(c, req)
}

// RecentTransactions handles GET /api/transactions/recent.
func (h *Handler) RecentTransactions(c *gin.Context) {
	limit, err := intQuery(c, "limit")
	if err != nil {
		h.fail(c, "recent transactions", err)
		return
	}
	h.listTransactionsWith(c, dto.ListTransactionsRequest{Limit: limit})
}

// HighRiskTransactions handles GET /api/transactions/high-risk. The
// threshold defaults to the alert threshold.
func (h *Handler) HighRiskTransactions(c *gin.Context) {
	minRisk := model.AlertThreshold
	if v := c.Query("minRisk"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			h.fail(c, "high risk transactions", errInvalidQuery("minRisk", v))
			return
		}
		minRisk = n
	}
	h.listTransactionsWith(c, dto.ListTransactionsRequest{MinRiskScore: &minRisk})
}

func (h *Handler) listTransactionsWith(c *gin.Context, req dto.ListTransactionsRequest) {
	resp, err := h.listTransactions.Execute(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "list transactions", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListNotifications handles GET /api/notifications.
func (h *Handler) ListNotifications(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		resp []dto.NotificationResponse
		err  error
	)
	if txID := c.Query("transactionId"); txID != "" {
		resp, err = h.listNotifications.ForTransaction(ctx, txID)
	} else {
		limit, perr := intQuery(c, "limit")
		if perr != nil {
			h.fail(c, "list notifications", perr)
			return
		}
		resp, err = h.listNotifications.Execute(ctx, c.Query("unread") == "true", limit)
	}
	if err != nil {
		h.fail(c, "list notifications", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MarkNotificationRead handles PUT /api/notifications/:id/read.
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "Invalid notification id: "+c.Param("id"))
		return
	}

	resp, err := h.markRead.Execute(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "mark notification read", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Dashboard handles GET /api/dashboard.
func (h *Handler) Dashboard(c *gin.Context) {
	resp, err := h.dashboard.Execute(c.Request.Context())
	if err != nil {
		h.fail(c, "dashboard", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// FraudTimeline handles GET /api/fraud-timeline.
func (h *Handler) FraudTimeline(c *gin.Context) {
	resp, err := h.timeline.Execute(c.Request.Context())
	if err != nil {
		h.fail(c, "fraud timeline", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// FraudHistory handles GET /api/fraud-history.
func (h *Handler) FraudHistory(c *gin.Context) {
	resp, err := h.history.List(c.Request.Context())
	if err != nil {
		h.fail(c, "fraud history", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AddFraudHistory handles POST /api/fraud-history.
func (h *Handler) AddFraudHistory(c *gin.Context) {
	var entry model.HistoryEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}

	resp, err := h.history.Add(c.Request.Context(), entry)
	if err != nil {
		h.fail(c, "add fraud history", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// FraudStatistics handles GET /api/fraud-statistics.
func (h *Handler) FraudStatistics(c *gin.Context) {
	resp, err := h.history.Statistics(c.Request.Context())
	if err != nil {
		h.fail(c, "fraud statistics", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func parseListTransactions(c *gin.Context) (dto.ListTransactionsRequest, error) {
	req := dto.ListTransactionsRequest{Status: c.Query("status")}

	var err error
	if req.From, err = timeQuery(c, "from"); err != nil {
		return req, err
	}
	if req.To, err = timeQuery(c, "to"); err != nil {
		return req, err
	}
	if v := c.Query("minRisk"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, errInvalidQuery("minRisk", v)
		}
		req.MinRiskScore = &n
	}
	if req.Limit, err = intQuery(c, "limit"); err != nil {
		return req, err
	}
	return req, nil
}

var timeLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", time.DateOnly}

func timeQuery(c *gin.Context, key string) (*time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, errInvalidQuery(key, v)
}

func intQuery(c *gin.Context, key string) (int, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errInvalidQuery(key, v)
	}
	return n, nil
}
