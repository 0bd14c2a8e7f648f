// Package http serves the report API: one authenticated GET route per
// report plus unauthenticated health, readiness and metrics endpoints.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/Binusha25Liyanage/MoneyMate/internal/auth"
	applog "github.com/Binusha25Liyanage/MoneyMate/internal/log"
	"github.com/Binusha25Liyanage/MoneyMate/internal/middleware/ratelimit"
	"github.com/Binusha25Liyanage/MoneyMate/internal/middleware/security"
	"github.com/Binusha25Liyanage/MoneyMate/internal/middleware/trace"
	"github.com/Binusha25Liyanage/MoneyMate/internal/reports"
)

// Sizer reports the number of entries of a cache, for metrics.
type Sizer interface {
	Size() int
}

// Deps are the collaborators of the server. Limiter and Cache are optional.
type Deps struct {
	Reports  *reports.Service
	Auth     *auth.Authenticator
	Logger   *applog.Logger
	Limiter  *ratelimit.Limiter
	Detector *security.Detector
	Cache    Sizer
}

type Server struct {
	http.Server
	reports  *reports.Service
	auth     *auth.Authenticator
	logger   *applog.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	cache    Sizer
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	detector := d.Detector
	if detector == nil {
		detector = security.NewDetector()
	}

	s := &Server{
		reports:  d.Reports,
		auth:     d.Auth,
		logger:   logger,
		limiter:  d.Limiter,
		detector: detector,
		tracer:   trace.NewMiddleware(logger, detector.ExtractClientIP),
		cache:    d.Cache,
		started:  time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	requireUser := s.auth.Middleware(s.unauthorized)
	for path, kind := range reportRoutes {
		mux.Handle("GET "+path, requireUser(s.reportHandler(kind)))
	}

	var h http.Handler = mux
	if s.limiter != nil {
		h = s.limiter.Middleware(detector.ExtractClientIP, s.rateLimited)(h)
	}
	h = detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// reportRoutes maps each report path to the report it serves.
var reportRoutes = map[string]reports.Kind{
	"/report":                       reports.KindMonthly,
	"/report/yearly":                reports.KindYearly,
	"/report/monthly-expenditure":   reports.KindMonthlyExpenditure,
	"/report/goal-adherence":        reports.KindGoalAdherence,
	"/report/savings-progress":      reports.KindSavingsProgress,
	"/report/category-distribution": reports.KindCategoryDistribution,
	"/report/financial-health":      reports.KindFinancialHealth,
}

// Shutdown stops the rate limiter and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.limiter != nil {
			s.limiter.Stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
