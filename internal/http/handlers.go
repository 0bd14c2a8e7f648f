package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Binusha25Liyanage/MoneyMate/internal/auth"
	applog "github.com/Binusha25Liyanage/MoneyMate/internal/log"
	"github.com/Binusha25Liyanage/MoneyMate/internal/reports"
)

func (s *Server) reportHandler(kind reports.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID, err := auth.UserIDFromContext(ctx)
		if err != nil {
			s.unauthorized(w, r, err)
			return
		}

		params, err := ParseReportParams(r.URL.Query(), reports.DefaultParams(s.reports.Now()))
		if err == nil {
			var data any
			if data, err = s.reports.Generate(ctx, kind, userID, params); err == nil {
				writeJSON(w, r, http.StatusOK, Success(data))
				return
			}
		}

		applog.NewStructuredLogger(applog.FromContext(ctx)).
			LogReportFailure(ctx, err, userID, string(kind), periodLabel(kind, params))
		writeJSON(w, r, StatusFor(err), Failure(kind.FailureMessage(), err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"backend": "ok"}
	status := http.StatusOK
	if err := s.reports.Ping(ctx); err != nil {
		checks["backend"] = err.Error()
		status = http.StatusServiceUnavailable
		applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
	}

	ready := "ready"
	if status != http.StatusOK {
		ready = "not ready"
	}
	writeJSON(w, r, status, map[string]any{
		"status":    ready,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleMetrics writes counters in the Prometheus text format.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	tm := s.tracer.GetMetrics()
	fmt.Fprintf(w, "# HELP moneymate_http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE moneymate_http_requests_total counter\n")
	fmt.Fprintf(w, "moneymate_http_requests_total %d\n", tm.TotalRequests)
	fmt.Fprintf(w, "# HELP moneymate_http_client_errors_total HTTP responses with a 4xx status\n")
	fmt.Fprintf(w, "# TYPE moneymate_http_client_errors_total counter\n")
	fmt.Fprintf(w, "moneymate_http_client_errors_total %d\n", tm.ClientErrors)
	fmt.Fprintf(w, "# HELP moneymate_http_server_errors_total HTTP responses with a 5xx status\n")
	fmt.Fprintf(w, "# TYPE moneymate_http_server_errors_total counter\n")
	fmt.Fprintf(w, "moneymate_http_server_errors_total %d\n", tm.ServerErrors)
	fmt.Fprintf(w, "# HELP moneymate_http_request_duration_avg_ms Average request duration\n")
	fmt.Fprintf(w, "# TYPE moneymate_http_request_duration_avg_ms gauge\n")
	fmt.Fprintf(w, "moneymate_http_request_duration_avg_ms %.3f\n", float64(tm.AverageResponseTime().Microseconds())/1000)

	if s.limiter != nil {
		rm := s.limiter.GetMetrics()
		fmt.Fprintf(w, "# HELP moneymate_rate_limited_requests_total Requests rejected by the rate limiter\n")
		fmt.Fprintf(w, "# TYPE moneymate_rate_limited_requests_total counter\n")
		fmt.Fprintf(w, "moneymate_rate_limited_requests_total %d\n", rm.LimitedRequests)
		fmt.Fprintf(w, "# HELP moneymate_rate_limit_clients Clients tracked by the rate limiter\n")
		fmt.Fprintf(w, "# TYPE moneymate_rate_limit_clients gauge\n")
		fmt.Fprintf(w, "moneymate_rate_limit_clients %d\n", rm.ClientCount)
	}

	sm := s.detector.GetMetrics()
	fmt.Fprintf(w, "# HELP moneymate_suspicious_requests_total Requests flagged as suspicious\n")
	fmt.Fprintf(w, "# TYPE moneymate_suspicious_requests_total counter\n")
	fmt.Fprintf(w, "moneymate_suspicious_requests_total %d\n", sm.SuspiciousRequests)
	fmt.Fprintf(w, "# HELP moneymate_blocked_requests_total Requests blocked by the detector\n")
	fmt.Fprintf(w, "# TYPE moneymate_blocked_requests_total counter\n")
	fmt.Fprintf(w, "moneymate_blocked_requests_total %d\n", sm.BlockedRequests)

	if s.cache != nil {
		fmt.Fprintf(w, "# HELP moneymate_report_cache_entries Reports held in the cache\n")
		fmt.Fprintf(w, "# TYPE moneymate_report_cache_entries gauge\n")
		fmt.Fprintf(w, "moneymate_report_cache_entries %d\n", s.cache.Size())
	}
}
