// Package reports assembles the report payloads served by the API from the
// ledger snapshots and procedures of one user.
package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Binusha25Liyanage/MoneyMate/internal/amqp"
	"github.com/Binusha25Liyanage/MoneyMate/internal/analytics"
	"github.com/Binusha25Liyanage/MoneyMate/internal/cache"
	"github.com/Binusha25Liyanage/MoneyMate/internal/core"
	"github.com/Binusha25Liyanage/MoneyMate/internal/ledger"
	applog "github.com/Binusha25Liyanage/MoneyMate/internal/log"
	"github.com/Binusha25Liyanage/MoneyMate/internal/procedures"
)

const DefaultFetchTimeout = 7 * time.Second

var ErrInvalidPeriod = errors.New("invalid period")

// EventPublisher receives an event for every report served.
type EventPublisher interface {
	PublishReportGenerated(ctx context.Context, msg *amqp.ReportGeneratedMessage) error
}

type Service struct {
	backend      ledger.Backend
	cache        cache.Cache[any]
	publisher    EventPublisher
	now          func() time.Time
	fetchTimeout time.Duration
	logger       *slog.Logger
}

type Option func(*Service)

// WithCache enables caching of generated payloads.
func WithCache(c cache.Cache[any]) Option {
	return func(s *Service) { s.cache = c }
}

func WithPublisher(p EventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(backend ledger.Backend, opts ...Option) *Service {
	s := &Service{
		backend:      backend,
		now:          time.Now,
		fetchTimeout: DefaultFetchTimeout,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now is the service clock, used by callers to resolve default periods.
func (s *Service) Now() time.Time {
	return s.now()
}

// Ping checks that the backend is reachable.
func (s *Service) Ping(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.backend.Ping(ctx)
}

// Generate builds the report of kind for userID. Params fields the report
// does not use are ignored.
func (s *Service) Generate(ctx context.Context, kind Kind, userID int64, p Params) (any, error) {
	switch kind {
	case KindMonthly:
		return s.Monthly(ctx, userID, p.Month, p.Year)
	case KindYearly:
		return s.Yearly(ctx, userID, p.Year)
	case KindMonthlyExpenditure:
		return s.MonthlyExpenditure(ctx, userID, p.Year)
	case KindGoalAdherence:
		return s.GoalAdherence(ctx, userID, p.Start, p.End)
	case KindSavingsProgress:
		return s.SavingsProgress(ctx, userID)
	case KindCategoryDistribution:
		return s.CategoryDistribution(ctx, userID, p.Start, p.End)
	case KindFinancialHealth:
		return s.FinancialHealth(ctx, userID)
	}
	return nil, fmt.Errorf("unknown report %q", kind)
}

func (s *Service) Monthly(ctx context.Context, userID int64, month, year int) (*MonthlyReport, error) {
	if !core.ValidMonth(month) {
		return nil, fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
	}
	if err := validateYear(year); err != nil {
		return nil, err
	}

	return serve(ctx, s, KindMonthly, userID, fmt.Sprintf("%04d-%02d", year, month), func(ctx context.Context) (*MonthlyReport, error) {
		var (
			txs  []core.Transaction
			goal *core.Goal
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			ctx, cancel := s.withTimeout(gctx)
			defer cancel()
			var err error
			if txs, err = s.backend.TransactionsByMonth(ctx, userID, month, year); err != nil {
				return fmt.Errorf("fetch transactions: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			ctx, cancel := s.withTimeout(gctx)
			defer cancel()
			var err error
			if goal, err = s.backend.GoalByUserAndMonth(ctx, userID, month, year); err != nil {
				return fmt.Errorf("fetch goal: %w", err)
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		shown := make([]core.Transaction, min(len(txs), MaxReportTransactions))
		copy(shown, txs)

		return &MonthlyReport{
			Period:       MonthPeriod{Month: month, Year: year, MonthName: core.MonthName(month)},
			Summary:      analytics.MonthlySummary(txs, goal),
			Analytics:    analytics.Compute(txs),
			ChartData:    analytics.BuildChartData(txs, month, year),
			Transactions: shown,
			GeneratedAt:  s.generatedAt(),
		}, nil
	})
}

func (s *Service) Yearly(ctx context.Context, userID int64, year int) (*YearlyReport, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}

	return serve(ctx, s, KindYearly, userID, strconv.Itoa(year), func(ctx context.Context) (*YearlyReport, error) {
		var (
			txs   []core.Transaction
			goals []core.Goal
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			ctx, cancel := s.withTimeout(gctx)
			defer cancel()
			var err error
			if txs, err = s.backend.AllTransactions(ctx, userID); err != nil {
				return fmt.Errorf("fetch transactions: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			ctx, cancel := s.withTimeout(gctx)
			defer cancel()
			var err error
			if goals, err = s.backend.UserGoals(ctx, userID); err != nil {
				return fmt.Errorf("fetch goals: %w", err)
			}
			return nil
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		yearTxs := analytics.Filter(txs, func(tx core.Transaction) bool {
			return tx.TransactionDate.Year() == year
		})
		yearGoals := []core.Goal{}
		for _, goal := range goals {
			if goal.TargetYear == year {
				yearGoals = append(yearGoals, goal)
			}
		}

		return &YearlyReport{
			Period:           YearPeriod{Year: year, Type: "yearly"},
			Summary:          analytics.Yearly(yearTxs, yearGoals),
			MonthlyBreakdown: analytics.Breakdown(yearTxs, year),
			GoalsProgress:    yearGoals,
			GeneratedAt:      s.generatedAt(),
		}, nil
	})
}

func (s *Service) MonthlyExpenditure(ctx context.Context, userID int64, year int) (*MonthlyExpenditureReport, error) {
	if err := validateYear(year); err != nil {
		return nil, err
	}

	return serve(ctx, s, KindMonthlyExpenditure, userID, strconv.Itoa(year), func(ctx context.Context) (*MonthlyExpenditureReport, error) {
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()
		rows, err := s.backend.MonthlyExpenditureAnalysis(ctx, userID, year)
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", procedures.MonthlyExpenditureAnalysis, err)
		}
		return &MonthlyExpenditureReport{
			ReportType:  KindMonthlyExpenditure.ReportType(),
			Period:      YearPeriod{Year: year},
			Analysis:    nonNil(rows),
			GeneratedAt: s.generatedAt(),
		}, nil
	})
}

func (s *Service) GoalAdherence(ctx context.Context, userID int64, start, end core.Date) (*GoalAdherenceReport, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	return serve(ctx, s, KindGoalAdherence, userID, rangeKey(start, end), func(ctx context.Context) (*GoalAdherenceReport, error) {
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()
		rows, err := s.backend.GoalAdherenceTracking(ctx, userID, start, end)
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", procedures.GoalAdherenceTracking, err)
		}
		return &GoalAdherenceReport{
			ReportType:  KindGoalAdherence.ReportType(),
			Period:      DateRange{StartDate: start, EndDate: end},
			Tracking:    nonNil(rows),
			GeneratedAt: s.generatedAt(),
		}, nil
	})
}

func (s *Service) SavingsProgress(ctx context.Context, userID int64) (*SavingsProgressReport, error) {
	return serve(ctx, s, KindSavingsProgress, userID, "", func(ctx context.Context) (*SavingsProgressReport, error) {
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()
		rows, err := s.backend.SavingsGoalProgress(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", procedures.SavingsGoalProgress, err)
		}
		return &SavingsProgressReport{
			ReportType:  KindSavingsProgress.ReportType(),
			Progress:    nonNil(rows),
			GeneratedAt: s.generatedAt(),
		}, nil
	})
}

func (s *Service) CategoryDistribution(ctx context.Context, userID int64, start, end core.Date) (*CategoryDistributionReport, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	return serve(ctx, s, KindCategoryDistribution, userID, rangeKey(start, end), func(ctx context.Context) (*CategoryDistributionReport, error) {
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()
		rows, err := s.backend.CategoryExpenseDistribution(ctx, userID, start, end)
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", procedures.CategoryExpenseDistribution, err)
		}
		return &CategoryDistributionReport{
			ReportType:   KindCategoryDistribution.ReportType(),
			Period:       DateRange{StartDate: start, EndDate: end},
			Distribution: nonNil(rows),
			GeneratedAt:  s.generatedAt(),
		}, nil
	})
}

// FinancialHealth reports the health row, or a zero row labelled "No Data"
// when the store returns none.
func (s *Service) FinancialHealth(ctx context.Context, userID int64) (*FinancialHealthReport, error) {
	return serve(ctx, s, KindFinancialHealth, userID, "", func(ctx context.Context) (*FinancialHealthReport, error) {
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()
		rows, err := s.backend.FinancialHealthStatus(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", procedures.FinancialHealthStatus, err)
		}
		health := procedures.NoDataHealth()
		if len(rows) > 0 {
			health = rows[0]
		}
		return &FinancialHealthReport{
			ReportType:  KindFinancialHealth.ReportType(),
			Health:      health,
			GeneratedAt: s.generatedAt(),
		}, nil
	})
}

// InvalidateUser drops every cached report of userID and returns how many
// entries were removed.
func (s *Service) InvalidateUser(userID int64) int {
	if s.cache == nil {
		return 0
	}
	return s.cache.DeletePrefix(cache.UserPrefix(userID))
}

// HandleLedgerChanged invalidates the cached reports of the user whose
// ledger changed.
func (s *Service) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	removed := s.InvalidateUser(msg.UserID)
	s.logger.DebugContext(ctx, "Report cache invalidated",
		applog.FieldUserID, msg.UserID,
		applog.FieldOperation, applog.OpInvalidate,
		"removed", removed)
	return nil
}

// serve returns the cached payload for (kind, userID, period) or builds it,
// then publishes the report event.
func serve[T any](ctx context.Context, s *Service, kind Kind, userID int64, period string, build func(context.Context) (T, error)) (T, error) {
	key := cache.Key(userID, string(kind))
	if period != "" {
		key = cache.Key(userID, string(kind), period)
	}

	var (
		report T
		hit    bool
	)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			report, hit = v.(T)
		}
	}

	if !hit {
		var err error
		report, err = build(ctx)
		if err != nil {
			return report, err
		}
		if s.cache != nil {
			s.cache.Set(key, report)
		}
	}

	s.logger.DebugContext(ctx, "Report generated",
		applog.FieldUserID, userID,
		applog.FieldReportType, string(kind),
		applog.FieldPeriod, period,
		applog.FieldCacheHit, hit)

	s.publish(ctx, kind, userID, period)
	return report, nil
}

func (s *Service) publish(ctx context.Context, kind Kind, userID int64, period string) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewReportGeneratedMessage(userID, kind.ReportType(), period, s.now())
	if err := s.publisher.PublishReportGenerated(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish report event",
			applog.FieldUserID, userID,
			applog.FieldReportType, string(kind),
			applog.FieldError, err)
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.fetchTimeout)
}

func (s *Service) generatedAt() time.Time {
	return s.now().UTC()
}

func validateYear(year int) error {
	if year < 1 || year > 9999 {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, year)
	}
	return nil
}

func validateRange(start, end core.Date) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidPeriod)
	}
	return nil
}

func rangeKey(start, end core.Date) string {
	return start.String() + ".." + end.String()
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
