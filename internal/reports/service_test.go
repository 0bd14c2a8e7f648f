package reports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Binusha25Liyanage/MoneyMate/internal/amqp"
	"github.com/Binusha25Liyanage/MoneyMate/internal/cache"
	"github.com/Binusha25Liyanage/MoneyMate/internal/core"
	"github.com/Binusha25Liyanage/MoneyMate/internal/ledger/memory"
	"github.com/Binusha25Liyanage/MoneyMate/internal/procedures"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func newStore(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	s.SetClock(clock)

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
	add(core.Expense, "80", "Food", "2023-12-20")

	for _, g := range []core.Goal{
		{UserID: 1, TargetAmount: decimal.NewFromInt(200), TargetMonth: 3, TargetYear: 2024},
		{UserID: 1, TargetAmount: decimal.NewFromInt(400), TargetMonth: 4, TargetYear: 2024},
		{UserID: 1, TargetAmount: decimal.NewFromInt(10), TargetMonth: 12, TargetYear: 2023},
	} {
		_, err := s.AddGoal(ctx, g)
		require.NoError(t, err)
	}
	return s
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []*amqp.ReportGeneratedMessage
	err  error
}

func (p *recordingPublisher) PublishReportGenerated(_ context.Context, msg *amqp.ReportGeneratedMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return p.err
}

// failingBackend fails every transaction fetch.
type failingBackend struct {
	*memory.Store
	err error
}

func (f failingBackend) TransactionsByMonth(context.Context, int64, int, int) ([]core.Transaction, error) {
	return nil, f.err
}

func (f failingBackend) AllTransactions(context.Context, int64) ([]core.Transaction, error) {
	return nil, f.err
}

func (f failingBackend) FinancialHealthStatus(context.Context, int64) ([]procedures.FinancialHealth, error) {
	return nil, nil
}

func TestMonthlyReport(t *testing.T) {
	svc := NewService(newStore(t), WithClock(clock))

	r, err := svc.Monthly(context.Background(), 1, 3, 2024)
	require.NoError(t, err)

	assert.Equal(t, MonthPeriod{Month: 3, Year: 2024, MonthName: "March"}, r.Period)
	assert.True(t, decimal.NewFromInt(50).Equal(r.Summary.Net))
	require.NotNil(t, r.Summary.GoalStatus)
	assert.False(t, r.Summary.GoalStatus.Achieved)
	assert.True(t, decimal.NewFromInt(150).Equal(r.Summary.GoalStatus.Remaining))
	assert.Len(t, r.Transactions, 3)
	assert.Len(t, r.ChartData.Daily, 31)
	assert.Equal(t, fixedNow, r.GeneratedAt)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"generatedAt":"2024-06-15T12:00:00Z"`)
}

func TestMonthlyReportCapsTransactions(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	for i := 0; i < 60; i++ {
		_, err := s.AddTransaction(ctx, core.Transaction{
			UserID: 1, Amount: decimal.NewFromInt(1), Type: core.Expense,
			Category: "Food", TransactionDate: core.NewDate(2024, 5, 1+i%28), Description: "x",
		})
		require.NoError(t, err)
	}

	r, err := NewService(s).Monthly(ctx, 1, 5, 2024)
	require.NoError(t, err)
	assert.Len(t, r.Transactions, MaxReportTransactions)
	assert.Equal(t, 60, r.Summary.TransactionCount)
	assert.Nil(t, r.Summary.GoalStatus)
}

func TestMonthlyReportRejectsInvalidMonth(t *testing.T) {
	svc := NewService(newStore(t))
	for _, month := range []int{0, 13, -1} {
		_, err := svc.Monthly(context.Background(), 1, month, 2024)
		assert.ErrorIs(t, err, ErrInvalidPeriod, "month %d", month)
	}
}

func TestYearlyReport(t *testing.T) {
	svc := NewService(newStore(t), WithClock(clock))

	r, err := svc.Yearly(context.Background(), 1, 2024)
	require.NoError(t, err)

	assert.Equal(t, YearPeriod{Year: 2024, Type: "yearly"}, r.Period)
	assert.True(t, decimal.NewFromInt(550).Equal(r.Summary.Net))
	assert.Equal(t, 4, r.Summary.TransactionCount)
	assert.Equal(t, 2, r.Summary.TotalGoals)
	assert.Equal(t, 1, r.Summary.AchievedGoals)
	assert.Len(t, r.MonthlyBreakdown, 12)
	require.Len(t, r.GoalsProgress, 2)
	for _, g := range r.GoalsProgress {
		assert.Equal(t, 2024, g.TargetYear)
	}
}

func TestYearlyReportWithoutData(t *testing.T) {
	r, err := NewService(memory.New()).Yearly(context.Background(), 1, 2030)
	require.NoError(t, err)

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"goalsProgress":[]`)
	assert.True(t, r.Summary.SavingsRate.IsZero())
}

func TestProcedureReports(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newStore(t), WithClock(clock))
	start, end := core.NewDate(2024, 1, 1), core.NewDate(2024, 6, 15)

	exp, err := svc.MonthlyExpenditure(ctx, 1, 2024)
	require.NoError(t, err)
	assert.Equal(t, "Monthly Expenditure Analysis", exp.ReportType)
	require.Len(t, exp.Analysis, 1)
	assert.Equal(t, 3, exp.Analysis[0].MonthNumber)

	adh, err := svc.GoalAdherence(ctx, 1, start, end)
	require.NoError(t, err)
	assert.Equal(t, DateRange{StartDate: start, EndDate: end}, adh.Period)
	require.Len(t, adh.Tracking, 2)
	assert.Equal(t, procedures.AdherenceBelowTarget, adh.Tracking[0].Status)
	assert.Equal(t, procedures.AdherenceAchieved, adh.Tracking[1].Status)

	sav, err := svc.SavingsProgress(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, sav.Progress, 3)

	dist, err := svc.CategoryDistribution(ctx, 1, start, end)
	require.NoError(t, err)
	require.Len(t, dist.Distribution, 2)
	assert.Equal(t, "Food", dist.Distribution[0].CategoryName)

	health, err := svc.FinancialHealth(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Financial Health Status", health.ReportType)
	assert.Equal(t, 5, health.Health.TotalTransactions)
	assert.Equal(t, 3, health.Health.TotalGoals)
}

func TestProcedureReportsSerializeEmptyRows(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.New())

	exp, err := svc.MonthlyExpenditure(ctx, 9, 2024)
	require.NoError(t, err)
	data, err := json.Marshal(exp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"analysis":[]`)

	_, err = svc.GoalAdherence(ctx, 9, core.Date{}, core.NewDate(2024, 1, 1))
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestFinancialHealthFallsBackToNoData(t *testing.T) {
	svc := NewService(failingBackend{Store: memory.New()})

	r, err := svc.FinancialHealth(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, procedures.HealthNoData, r.Health.FinancialHealth)
	assert.Equal(t, 0, r.Health.TotalGoals)
}

func TestFetchFailureAbortsReport(t *testing.T) {
	boom := errors.New("connection reset")
	pub := &recordingPublisher{}
	svc := NewService(failingBackend{Store: memory.New(), err: boom}, WithPublisher(pub))

	_, err := svc.Monthly(context.Background(), 1, 3, 2024)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "fetch transactions")

	_, err = svc.Yearly(context.Background(), 1, 2024)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, pub.msgs, "failed reports publish nothing")
}

func TestCacheServesAndInvalidates(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	c := cache.NewLRUCache[any](16, time.Hour)
	svc := NewService(store, WithCache(c), WithClock(clock))

	first, err := svc.Monthly(ctx, 1, 3, 2024)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Size())

	_, err = store.AddTransaction(ctx, core.Transaction{
		UserID: 1, Amount: decimal.NewFromInt(5), Type: core.Expense,
		Category: "Food", TransactionDate: core.NewDate(2024, 3, 20), Description: "late",
	})
	require.NoError(t, err)

	cached, err := svc.Monthly(ctx, 1, 3, 2024)
	require.NoError(t, err)
	assert.Same(t, first, cached)

	require.NoError(t, svc.HandleLedgerChanged(ctx, &amqp.LedgerChangedMessage{UserID: 1}))
	assert.Equal(t, 0, c.Size())

	fresh, err := svc.Monthly(ctx, 1, 3, 2024)
	require.NoError(t, err)
	assert.Equal(t, 4, fresh.Summary.TransactionCount)
}

func TestReportsPublishEvents(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := NewService(newStore(t), WithPublisher(pub), WithClock(clock))

	_, err := svc.FinancialHealth(context.Background(), 1)
	require.NoError(t, err, "publish failures never fail the report")
	_, err = svc.Yearly(context.Background(), 1, 2024)
	require.NoError(t, err)

	require.Len(t, pub.msgs, 2)
	assert.Equal(t, "Financial Health Status", pub.msgs[0].ReportType)
	assert.Equal(t, "2024", pub.msgs[1].Period)
	assert.Equal(t, int64(1), pub.msgs[1].UserID)
}

func TestGenerateDispatchesEveryKind(t *testing.T) {
	svc := NewService(newStore(t), WithClock(clock))
	p := DefaultParams(fixedNow)

	for _, kind := range Kinds {
		t.Run(string(kind), func(t *testing.T) {
			r, err := svc.Generate(context.Background(), kind, 1, p)
			require.NoError(t, err)
			assert.NotNil(t, r)
		})
	}

	_, err := svc.Generate(context.Background(), Kind("weekly"), 1, p)
	assert.Error(t, err)
}

func TestKinds(t *testing.T) {
	k, err := ParseKind("goal-adherence")
	require.NoError(t, err)
	assert.Equal(t, "Failed to generate goal adherence tracking", k.FailureMessage())
	assert.Equal(t, "Failed to generate report", KindMonthly.FailureMessage())
	assert.Equal(t, "Failed to generate yearly report", KindYearly.FailureMessage())

	_, err = ParseKind("weekly")
	assert.Error(t, err)

	for _, kind := range Kinds {
		assert.NotEmpty(t, kind.ReportType(), fmt.Sprint(kind))
	}
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams(fixedNow)
	assert.Equal(t, 6, p.Month)
	assert.Equal(t, 2024, p.Year)
	assert.Equal(t, "2024-01-01", p.Start.String())
	assert.Equal(t, "2024-06-15", p.End.String())
}
