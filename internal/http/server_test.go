package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Binusha25Liyanage/MoneyMate/internal/auth"
	"github.com/Binusha25Liyanage/MoneyMate/internal/cache"
	"github.com/Binusha25Liyanage/MoneyMate/internal/core"
	"github.com/Binusha25Liyanage/MoneyMate/internal/ledger"
	"github.com/Binusha25Liyanage/MoneyMate/internal/ledger/memory"
	applog "github.com/Binusha25Liyanage/MoneyMate/internal/log"
	"github.com/Binusha25Liyanage/MoneyMate/internal/middleware/ratelimit"
	"github.com/Binusha25Liyanage/MoneyMate/internal/reports"
)

const testSecret = "test-secret"

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	s.SetClock(func() time.Time { return fixedNow })

	add := func(typ core.TxType, amount, category, date string) {
		d, err := core.ParseDate(date)
		require.NoError(t, err)
		_, err = s.AddTransaction(ctx, core.Transaction{
			UserID: 1, Amount: decimal.RequireFromString(amount), Type: typ,
			Category: category, TransactionDate: d, Description: category,
		})
		require.NoError(t, err)
	}
	add(core.Income, "100", "Salary", "2024-03-01")
	add(core.Expense, "30", "Food", "2024-03-05")
	add(core.Expense, "20", "Transport", "2024-03-09")
	add(core.Income, "500", "Salary", "2024-04-01")

	_, err := s.AddGoal(ctx, core.Goal{UserID: 1, TargetAmount: decimal.NewFromInt(200), TargetMonth: 3, TargetYear: 2024})
	require.NoError(t, err)
	return s
}

func discardLogger() *applog.Logger {
	return applog.New(applog.Config{Output: io.Discard, Component: applog.ComponentApp})
}

type testEnv struct {
	server *Server
	token  string
}

func newTestEnv(t *testing.T, backend ledger.Backend, opts ...reports.Option) testEnv {
	t.Helper()
	opts = append([]reports.Option{reports.WithClock(func() time.Time { return fixedNow })}, opts...)
	svc := reports.NewService(backend, opts...)

	authn := auth.NewAuthenticator(testSecret)
	token, err := authn.Issue(1, time.Hour)
	require.NoError(t, err)

	srv := NewServer(":0", Deps{Reports: svc, Auth: authn, Logger: discardLogger()})
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return testEnv{server: srv, token: token}
}

func (e testEnv) get(t *testing.T, target string, authed bool) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if authed {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	rec := httptest.NewRecorder()
	e.server.Handler.ServeHTTP(rec, req)

	var body map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestMonthlyReportRoute(t *testing.T) {
	env := newTestEnv(t, seededStore(t))

	rec, body := env.get(t, "/report?month=3&year=2024", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]any)
	summary := data["summary"].(map[string]any)
	assert.EqualValues(t, 100, summary["income"])
	assert.EqualValues(t, 50, summary["expenses"])
	assert.EqualValues(t, 50, summary["net"])
	assert.EqualValues(t, 3, summary["transactionCount"])

	goal := summary["goalStatus"].(map[string]any)
	assert.EqualValues(t, 200, goal["target"])
	assert.EqualValues(t, 25, goal["progress"])
	assert.Equal(t, false, goal["achieved"])

	period := data["period"].(map[string]any)
	assert.Equal(t, "March", period["monthName"])
	assert.Len(t, data["transactions"], 3)
	assert.Equal(t, "2024-06-15T12:00:00Z", data["generatedAt"])
}

func TestReportDefaultsToCurrentPeriod(t *testing.T) {
	env := newTestEnv(t, seededStore(t))

	rec, body := env.get(t, "/report?month=abc", true)
	require.Equal(t, http.StatusOK, rec.Code)
	period := body["data"].(map[string]any)["period"].(map[string]any)
	assert.EqualValues(t, 6, period["month"])
	assert.EqualValues(t, 2024, period["year"])

	rec, body = env.get(t, "/report?month=0&year=0", true)
	require.Equal(t, http.StatusOK, rec.Code)
	period = body["data"].(map[string]any)["period"].(map[string]any)
	assert.EqualValues(t, 6, period["month"], "zero counts as missing")
	assert.EqualValues(t, 2024, period["year"])

	rec, body = env.get(t, "/report/goal-adherence", true)
	require.Equal(t, http.StatusOK, rec.Code)
	rng := body["data"].(map[string]any)["period"].(map[string]any)
	assert.Equal(t, "2024-01-01", rng["startDate"])
	assert.Equal(t, "2024-06-15", rng["endDate"])
}

func TestEveryReportRouteSucceeds(t *testing.T) {
	env := newTestEnv(t, seededStore(t))

	keys := map[string]string{
		"/report":                       "summary",
		"/report/yearly":                "monthlyBreakdown",
		"/report/monthly-expenditure":   "analysis",
		"/report/goal-adherence":        "tracking",
		"/report/savings-progress":      "progress",
		"/report/category-distribution": "distribution",
		"/report/financial-health":      "health",
	}
	require.Len(t, keys, len(reportRoutes))

	for path, key := range keys {
		t.Run(path, func(t *testing.T) {
			rec, body := env.get(t, path, true)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			data := body["data"].(map[string]any)
			assert.Contains(t, data, key)
			assert.Contains(t, data, "generatedAt")
		})
	}
}

func TestBadParametersReturn400(t *testing.T) {
	env := newTestEnv(t, seededStore(t))

	tests := []struct {
		target  string
		message string
	}{
		{"/report?month=13&year=2024", "Failed to generate report"},
		{"/report?month=-1", "Failed to generate report"},
		{"/report/yearly?year=-5", "Failed to generate yearly report"},
		{"/report/goal-adherence?start_date=2024-13-01", "Failed to generate goal adherence tracking"},
		{"/report/category-distribution?end_date=yesterday", "Failed to generate category expense distribution"},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec, body := env.get(t, tt.target, true)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.message, body["message"])
			assert.NotEmpty(t, body["error"])
			assert.NotContains(t, body, "data")
		})
	}
}

type brokenBackend struct {
	*memory.Store
}

func (brokenBackend) AllTransactions(context.Context, int64) ([]core.Transaction, error) {
	return nil, errors.New("connection refused")
}

func (brokenBackend) Ping(context.Context) error {
	return errors.New("connection refused")
}

func TestFetchFailureReturns500(t *testing.T) {
	env := newTestEnv(t, brokenBackend{seededStore(t)})

	rec, body := env.get(t, "/report/yearly?year=2024", true)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Failed to generate yearly report", body["message"])
	assert.Contains(t, body["error"], "connection refused")
}

func TestReportsRequireAuthentication(t *testing.T) {
	env := newTestEnv(t, seededStore(t))

	rec, body := env.get(t, "/report", false)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["error"], "not authenticated")

	req := httptest.NewRequest(http.MethodGet, "/report/financial-health", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = httptest.NewRecorder()
	env.server.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other, err := auth.NewAuthenticator("another-secret").Issue(1, time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/report/financial-health", nil)
	req.Header.Set("Authorization", "Bearer "+other)
	rec = httptest.NewRecorder()
	env.server.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReportIsScopedToTokenUser(t *testing.T) {
	store := seededStore(t)
	env := newTestEnv(t, store)

	token, err := auth.NewAuthenticator(testSecret).Issue(2, time.Hour)
	require.NoError(t, err)
	env.token = token

	rec, body := env.get(t, "/report?month=3&year=2024", true)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := body["data"].(map[string]any)["summary"].(map[string]any)
	assert.EqualValues(t, 0, summary["transactionCount"])
	assert.Nil(t, summary["goalStatus"])
}

func TestOperationalEndpoints(t *testing.T) {
	env := newTestEnv(t, seededStore(t))

	rec, body := env.get(t, "/healthz", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])

	rec, body = env.get(t, "/readyz", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", body["status"])

	env.get(t, "/report", true)
	rec, _ = env.get(t, "/metrics", false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# TYPE moneymate_http_requests_total counter")
	assert.Contains(t, rec.Body.String(), "moneymate_suspicious_requests_total 0")
	assert.NotContains(t, rec.Body.String(), "moneymate_report_cache_entries")

	broken := newTestEnv(t, brokenBackend{seededStore(t)})
	rec, body = broken.get(t, "/readyz", false)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not ready", body["status"])
}

func TestResponsesCarrySecurityAndTraceHeaders(t *testing.T) {
	env := newTestEnv(t, seededStore(t))

	rec, _ := env.get(t, "/report", true)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRateLimitedRequestsGetEnvelope(t *testing.T) {
	svc := reports.NewService(seededStore(t), reports.WithClock(func() time.Time { return fixedNow }))
	authn := auth.NewAuthenticator(testSecret)
	limiter := ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: 1})
	srv := NewServer(":0", Deps{Reports: svc, Auth: authn, Logger: discardLogger(), Limiter: limiter})
	defer srv.Shutdown(context.Background())

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		require.Equal(t, want, rec.Code, "request %d", i)
	}

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"success":false,"message":"Rate limit exceeded. Please try again later."}`, rec.Body.String())
}

func TestCachedReportsShowInMetrics(t *testing.T) {
	c := cache.NewLRUCache[any](10, time.Minute)
	svc := reports.NewService(seededStore(t), reports.WithClock(func() time.Time { return fixedNow }), reports.WithCache(c))
	authn := auth.NewAuthenticator(testSecret)
	token, err := authn.Issue(1, time.Hour)
	require.NoError(t, err)
	env := testEnv{server: NewServer(":0", Deps{Reports: svc, Auth: authn, Logger: discardLogger(), Cache: c}), token: token}

	env.get(t, "/report/financial-health", true)
	rec, _ := env.get(t, "/metrics", false)
	assert.Contains(t, rec.Body.String(), "moneymate_report_cache_entries 1")
}
