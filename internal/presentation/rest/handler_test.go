package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/frauddetect/internal/application/dto"
	"github.com/bibbank/frauddetect/internal/domain/model"
	"github.com/bibbank/frauddetect/pkg/auth"
)

const validBody = `{"amount": 1500, "day": 15, "type": "CASH_OUT", "transaction_pair_code": "cm", "part_of_the_day": "night"}`

func doRequest(t *testing.T, env *testEnv, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestDetectFraud(t *testing.T) {
	t.Run("high risk transaction", func(t *testing.T) {
		env := newTestEnv(RouterConfig{})

		w := doRequest(t, env, http.MethodPost, "/api/fraud-detect", validBody)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decode[map[string]any](t, w)
		assert.Equal(t, true, resp["isFraud"])
		assert.Equal(t, "fraud", resp["status"])
		assert.EqualValues(t, 85, resp["riskScore"])
		assert.Equal(t, "TXABCDEF01", resp["transactionId"])
		assert.Equal(t, "2024-06-01T02:15:00Z", resp["timestamp"])
		assert.Equal(t, "cm", resp["transaction_pair_code"])
		assert.Len(t, env.transactions.records, 1)
		assert.Len(t, env.notifications.saved, 1)

		stored, err := env.history.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, stored, 1)
	})

	t.Run("null and empty bodies fail validation", func(t *testing.T) {
		env := newTestEnv(RouterConfig{})

		for _, body := range []string{"null", ""} {
			w := doRequest(t, env, http.MethodPost, "/api/fraud-detect", body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "Request body is null", decode[ErrorResponse](t, w).Error)
		}
	})

	t.Run("invalid field", func(t *testing.T) {
		env := newTestEnv(RouterConfig{})
		body := strings.Replace(validBody, `"night"`, `"dawn"`, 1)

		w := doRequest(t, env, http.MethodPost, "/api/fraud-detect", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid part_of_the_day: dawn", decode[ErrorResponse](t, w).Error)
		assert.Empty(t, env.transactions.records)
	})

	t.Run("malformed json", func(t *testing.T) {
		env := newTestEnv(RouterConfig{})

		w := doRequest(t, env, http.MethodPost, "/api/fraud-detect", `{"amount":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("scorer failure is not leaked", func(t *testing.T) {
		env := newTestEnv(RouterConfig{})
		env.scorer.scoreFunc = func(context.Context, model.TransactionRequest) (model.ScoreResult, error) {
			return model.ScoreResult{}, &model.ScoringError{Kind: model.ScoringErrorExit, ExitCode: 2, Stderr: "ImportError: numpy"}
		}

		w := doRequest(t, env, http.MethodPost, "/api/fraud-detect", validBody)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Internal server error", decode[ErrorResponse](t, w).Error)
		assert.NotContains(t, w.Body.String(), "numpy")
	})
}

func TestDetectFraud_AlertNotSaved(t *testing.T) {
	env := newTestEnv(RouterConfig{})
	env.notifications.saveErr = errors.New("disk full")

	w := doRequest(t, env, http.MethodPost, "/api/fraud-detect", validBody)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode[AlertFailedResponse](t, w)
	assert.Equal(t, CodeNotificationFailed, resp.Code)
	assert.Equal(t, "TXABCDEF01", resp.TransactionID)
	assert.Equal(t, "TXABCDEF01", resp.Assessment.TransactionID)
	assert.Equal(t, "fraud", resp.Assessment.Status)
	assert.Equal(t, 85, resp.Assessment.RiskScore)
	assert.NotContains(t, w.Body.String(), "disk full")
	assert.Len(t, env.transactions.records, 1)
	assert.Empty(t, env.notifications.saved)

	t.Run("transaction save failure stays a plain internal error", func(t *testing.T) {
		env := newTestEnv(RouterConfig{})
		env.transactions.saveErr = errors.New("connection refused")

		w := doRequest(t, env, http.MethodPost, "/api/fraud-detect", validBody)

		require.Equal(t, http.StatusInternalServerError, w.Code)
		body := decode[map[string]any](t, w)
		assert.Equal(t, "Internal server error", body["error"])
		assert.NotContains(t, body, "code")
		assert.NotContains(t, body, "assessment")
	})
}

func TestTransactions(t *testing.T) {
	env := newTestEnv(RouterConfig{})
	require.Equal(t, http.StatusOK, doRequest(t, env, http.MethodPost, "/api/fraud-detect", validBody).Code)

	t.Run("by id", func(t *testing.T) {
		w := doRequest(t, env, http.MethodGet, "/api/transactions/TXABCDEF01", "")

		require.Equal(t, http.StatusOK, w.Code)
		tx := decode[dto.TransactionResponse](t, w)
		assert.Equal(t, "fraud", tx.Status)
		assert.Equal(t, 85, tx.RiskScore)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := doRequest(t, env, http.MethodGet, "/api/transactions/TXFFFFFFFF", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	tests := []struct {
		name     string
		query    string
		wantCode int
		wantReq  string
		wantLen  int
	}{
		{name: "by status", query: "?status=fraud", wantCode: http.StatusOK, wantReq: "status", wantLen: 1},
		{name: "by other status", query: "?status=normal", wantCode: http.StatusOK, wantReq: "status", wantLen: 0},
		{name: "by range", query: "?from=2024-05-31&to=2024-06-02", wantCode: http.StatusOK, wantReq: "between", wantLen: 1},
		{name: "by min risk", query: "?minRisk=90", wantCode: http.StatusOK, wantReq: "high-risk", wantLen: 0},
		{name: "default recent", query: "", wantCode: http.StatusOK, wantReq: "recent", wantLen: 1},
		{name: "bad status", query: "?status=bogus", wantCode: http.StatusBadRequest},
		{name: "bad minRisk", query: "?minRisk=high", wantCode: http.StatusBadRequest},
		{name: "bad date", query: "?from=yesterday", wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.transactions.lastReq = ""

			w := doRequest(t, env, http.MethodGet, "/api/transactions"+tt.query, "")

			require.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.wantCode != http.StatusOK {
				return
			}
			assert.Equal(t, tt.wantReq, env.transactions.lastReq)
			assert.Len(t, decode[[]dto.TransactionResponse](t, w), tt.wantLen)
		})
	}

	t.Run("recent", func(t *testing.T) {
		w := doRequest(t, env, http.MethodGet, "/api/transactions/recent", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "recent", env.transactions.lastReq)
	})

	t.Run("high risk defaults to the alert threshold", func(t *testing.T) {
		w := doRequest(t, env, http.MethodGet, "/api/transactions/high-risk", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "high-risk", env.transactions.lastReq)
		assert.Len(t, decode[[]dto.TransactionResponse](t, w), 1)
	})

	t.Run("repository failure", func(t *testing.T) {
		env.transactions.listErr = errors.New("db down")
		defer func() { env.transactions.listErr = nil }()

		w := doRequest(t, env, http.MethodGet, "/api/transactions/recent", "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestNotifications(t *testing.T) {
	env := newTestEnv(RouterConfig{})
	require.Equal(t, http.StatusOK, doRequest(t, env, http.MethodPost, "/api/fraud-detect", validBody).Code)

	w := doRequest(t, env, http.MethodGet, "/api/notifications?unread=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]dto.NotificationResponse](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, "High risk transaction detected: TXABCDEF01", list[0].Message)

	w = doRequest(t, env, http.MethodGet, "/api/notifications?transactionId=TXABCDEF01", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]dto.NotificationResponse](t, w), 1)

	w = doRequest(t, env, http.MethodPut, "/api/notifications/1/read", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[dto.NotificationResponse](t, w).IsRead)

	w = doRequest(t, env, http.MethodPut, "/api/notifications/1/read", "")
	assert.Equal(t, http.StatusOK, w.Code, "marking twice is harmless")

	w = doRequest(t, env, http.MethodGet, "/api/notifications?unread=true", "")
	assert.Empty(t, decode[[]dto.NotificationResponse](t, w))

	assert.Equal(t, http.StatusNotFound, doRequest(t, env, http.MethodPut, "/api/notifications/42/read", "").Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(t, env, http.MethodPut, "/api/notifications/abc/read", "").Code)
}

func TestReports(t *testing.T) {
	env := newTestEnv(RouterConfig{})
	require.Equal(t, http.StatusOK, doRequest(t, env, http.MethodPost, "/api/fraud-detect", validBody).Code)
	env.statistics.stats = []model.DailyStatistics{{Date: testNow.Truncate(24 * time.Hour), FraudCount: 1}}

	t.Run("dashboard", func(t *testing.T) {
		w := doRequest(t, env, http.MethodGet, "/api/dashboard", "")

		require.Equal(t, http.StatusOK, w.Code)
		d := decode[dto.DashboardResponse](t, w)
		assert.EqualValues(t, 1, d.TotalTransactions)
		assert.EqualValues(t, 1, d.FraudCount)
		assert.EqualValues(t, 1, d.UnreadNotifications)
		assert.Len(t, d.RecentTransactions, 1)
		assert.Len(t, d.DailyStats, 1)
	})

	t.Run("timeline", func(t *testing.T) {
		w := doRequest(t, env, http.MethodGet, "/api/fraud-timeline", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decode[[]model.DailyStatistics](t, w), 1)
	})
}

func TestFraudHistory(t *testing.T) {
	env := newTestEnv(RouterConfig{})

	w := doRequest(t, env, http.MethodGet, "/api/fraud-history", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())

	entry := `{"transactionId":"TXEXT00001","timestamp":"2024-05-31T10:00:00Z","amount":"700","type":"TRANSFER","status":"suspicious","riskScore":45,"probability":0.45}`
	w = doRequest(t, env, http.MethodPost, "/api/fraud-history", entry)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	normal := `{"transactionId":"TXEXT00002","timestamp":"2024-05-31T11:00:00Z","amount":"10","type":"PAYMENT","status":"normal","riskScore":5}`
	w = doRequest(t, env, http.MethodPost, "/api/fraud-history", normal)
	require.Equal(t, http.StatusOK, w.Code)

	require.Equal(t, http.StatusOK, doRequest(t, env, http.MethodPost, "/api/fraud-detect", validBody).Code)

	w = doRequest(t, env, http.MethodGet, "/api/fraud-history", "")
	entries := decode[[]model.HistoryEntry](t, w)
	require.Len(t, entries, 2, "normal entries are not kept")
	assert.Equal(t, "TXABCDEF01", entries[0].TransactionID)

	w = doRequest(t, env, http.MethodGet, "/api/fraud-statistics", "")
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[dto.FraudStatisticsResponse](t, w)
	assert.Equal(t, 2, stats.TotalTransactions)
	assert.Equal(t, 1, stats.FraudCount)
	assert.Equal(t, 1, stats.SuspiciousCount)
	assert.Equal(t, "1500", stats.FraudAmount.String())

	assert.Equal(t, http.StatusBadRequest, doRequest(t, env, http.MethodPost, "/api/fraud-history", "{").Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(RouterConfig{Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})})

	assert.Equal(t, http.StatusOK, doRequest(t, env, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, doRequest(t, env, http.MethodGet, "/readyz", "").Code)

	w := doRequest(t, env, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "# metrics", w.Body.String())
}

func TestReadyzUnavailable(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHealthHandler(logger, map[string]CheckFunc{
		"database": func(context.Context) error { return errors.New("dial tcp: refused") },
	})
	router, err := NewRouter(&Handler{}, h, logger, RouterConfig{})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	resp := decode[ReadinessResponse](t, w)
	assert.Equal(t, "unavailable", resp.Checks["database"])
}

func TestBearerAuth(t *testing.T) {
	jwtSvc, err := auth.NewJWTService(auth.JWTConfig{Secret: "rest-test-secret"})
	require.NoError(t, err)
	env := newTestEnv(RouterConfig{JWT: jwtSvc})

	client, err := jwtSvc.GenerateToken("svc", []string{auth.RoleAPIClient})
	require.NoError(t, err)
	analyst, err := jwtSvc.GenerateToken("ana", []string{auth.RoleAnalyst})
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, doRequest(t, env, http.MethodPost, "/api/fraud-detect", validBody).Code)
	assert.Equal(t, http.StatusUnauthorized,
		doRequest(t, env, http.MethodGet, "/api/dashboard", "", "Authorization", "Bearer nonsense").Code)
	assert.Equal(t, http.StatusOK, doRequest(t, env, http.MethodGet, "/healthz", "").Code, "probes stay open")

	assert.Equal(t, http.StatusOK,
		doRequest(t, env, http.MethodPost, "/api/fraud-detect", validBody, "Authorization", "Bearer "+client).Code)
	assert.Equal(t, http.StatusForbidden,
		doRequest(t, env, http.MethodPut, "/api/notifications/1/read", "", "Authorization", "Bearer "+client).Code)
	assert.Equal(t, http.StatusOK,
		doRequest(t, env, http.MethodPut, "/api/notifications/1/read", "", "Authorization", "Bearer "+analyst).Code)
}
