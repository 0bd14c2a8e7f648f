package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Binusha25Liyanage/MoneyMate/internal/core"
	"github.com/Binusha25Liyanage/MoneyMate/internal/procedures"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "moneymate.db")
	require.NoError(t, RunMigrations(SQLite, dsn))

	db, err := Open(context.Background(), SQLite, dsn)
	require.NoError(t, err)

	repo := NewRepository(db, SQLite, WithClock(func() time.Time { return fixedNow }))
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func newTx(user int64, typ core.TxType, amount, category, date string) core.Transaction {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Transaction{
		UserID:          user,
		Amount:          decimal.RequireFromString(amount),
		Type:            typ,
		Category:        category,
		TransactionDate: d,
		Description:     category + " " + date,
	}
}

func newGoal(user int64, target string, month, year int) core.Goal {
	return core.Goal{UserID: user, TargetAmount: decimal.RequireFromString(target), TargetMonth: month, TargetYear: year}
}

// seed stores a ledger for user 1 plus noise for user 2 and returns user 1's
// transactions and goals as stored.
func seed(t *testing.T, repo *Repository) ([]core.Transaction, []core.Goal) {
	t.Helper()
	ctx := context.Background()

	txs := []core.Transaction{
		newTx(1, core.Income, "2500", "Salary", "2024-01-01"),
		newTx(1, core.Expense, "900", "Rent", "2024-01-02"),
		newTx(1, core.Expense, "123.45", "Food", "2024-01-15"),
		newTx(1, core.Expense, "80.10", "Food", "2024-01-31"),
		newTx(1, core.Income, "2500", "Salary", "2024-02-01"),
		newTx(1, core.Expense, "900", "Rent", "2024-02-02"),
		newTx(1, core.Expense, "400.33", "Travel", "2024-02-20"),
		newTx(1, core.Expense, "1003.55", "Rent", "2024-04-02"),
		newTx(1, core.Income, "180", "Freelance", "2024-05-10"),
		newTx(1, core.Income, "95", "Gift", "2024-07-04"),
		newTx(1, core.Expense, "45", "Food", "2023-12-31"),
		newTx(2, core.Expense, "999", "Rent", "2024-01-05"),
		newTx(2, core.Income, "5", "Salary", "2024-01-05"),
	}
	goals := []core.Goal{
		newGoal(1, "1000", 1, 2024),
		newGoal(1, "1500", 2, 2024),
		newGoal(1, "200", 5, 2024),
		newGoal(1, "100", 6, 2024),
		newGoal(1, "100", 7, 2024),
		newGoal(1, "300", 8, 2024),
		newGoal(2, "10", 1, 2024),
	}

	var userTxs []core.Transaction
	for _, tx := range txs {
		id, err := repo.InsertTransaction(ctx, tx)
		require.NoError(t, err)
		tx.ID = id
		if tx.UserID == 1 {
			userTxs = append(userTxs, tx)
		}
	}
	var userGoals []core.Goal
	for _, g := range goals {
		id, err := repo.InsertGoal(ctx, g)
		require.NoError(t, err)
		g.ID = id
		if g.UserID == 1 {
			userGoals = append(userGoals, g)
		}
	}
	return userTxs, userGoals
}

func assertSameJSON(t *testing.T, want, got any) {
	t.Helper()
	w, err := json.Marshal(want)
	require.NoError(t, err)
	g, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(w), string(g))
}

func TestRepositoryReads(t *testing.T) {
	repo := newTestRepository(t)
	txs, _ := seed(t, repo)
	ctx := context.Background()

	jan, err := repo.TransactionsByMonth(ctx, 1, 1, 2024)
	require.NoError(t, err)
	require.Len(t, jan, 4)
	assert.Equal(t, 31, jan[0].TransactionDate.Day(), "newest first")
	assert.True(t, decimal.RequireFromString("80.10").Equal(jan[0].Amount))
	assert.Equal(t, core.Expense, jan[0].Type)

	all, err := repo.AllTransactions(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, all, len(txs))

	none, err := repo.TransactionsByMonth(ctx, 1, 3, 2024)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = repo.TransactionsByMonth(ctx, 1, 13, 2024)
	assert.ErrorIs(t, err, core.ErrInvalidMonth)
}

func TestRepositoryGoals(t *testing.T) {
	repo := newTestRepository(t)
	seed(t, repo)
	ctx := context.Background()

	g, err := repo.GoalByUserAndMonth(ctx, 1, 2, 2024)
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.True(t, decimal.NewFromInt(1500).Equal(g.TargetAmount))
	assert.False(t, g.CreatedAt.IsZero())

	missing, err := repo.GoalByUserAndMonth(ctx, 1, 3, 2024)
	require.NoError(t, err)
	assert.Nil(t, missing)

	goals, err := repo.UserGoals(ctx, 1)
	require.NoError(t, err)
	require.Len(t, goals, 6)
	assert.Equal(t, 1, goals[0].TargetMonth)
	assert.Equal(t, 8, goals[5].TargetMonth)

	_, err = repo.InsertGoal(ctx, newGoal(1, "5", 2, 2024))
	assert.Error(t, err, "one goal per user and month")
}

func TestInsertRejectsSubCentAmounts(t *testing.T) {
	repo := newTestRepository(t)
	_, err := repo.InsertTransaction(context.Background(), newTx(1, core.Expense, "1.005", "Food", "2024-01-01"))
	assert.ErrorIs(t, err, ErrSubCentAmount)
}

func TestProceduresMatchEvaluators(t *testing.T) {
	repo := newTestRepository(t)
	txs, goals := seed(t, repo)
	ctx := context.Background()

	start, end := core.NewDate(2024, 1, 1), core.NewDate(2024, 6, 30)

	t.Run("monthly expenditure", func(t *testing.T) {
		got, err := repo.MonthlyExpenditureAnalysis(ctx, 1, 2024)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assertSameJSON(t, procedures.MonthlyExpenditure(txs, 2024), got)
	})

	t.Run("goal adherence", func(t *testing.T) {
		got, err := repo.GoalAdherenceTracking(ctx, 1, start, end)
		require.NoError(t, err)
		require.Len(t, got, 4)
		assertSameJSON(t, procedures.GoalAdherence(goals, txs, start, end), got)
	})

	t.Run("savings progress", func(t *testing.T) {
		got, err := repo.SavingsGoalProgress(ctx, 1)
		require.NoError(t, err)
		require.Len(t, got, 6)
		assertSameJSON(t, procedures.SavingsProgress(goals, txs, fixedNow), got)

		// June has a goal but no transactions and has started before today.
		jun := got[3]
		require.Equal(t, 6, jun.TargetMonth)
		assert.Equal(t, procedures.SavingsOverdue, jun.Status)
		assert.True(t, jun.CurrentAmount.IsZero())
		assert.True(t, jun.ProgressPercentage.IsZero())
		assert.True(t, decimal.NewFromInt(100).Equal(jun.RemainingAmount))
	})

	t.Run("category distribution", func(t *testing.T) {
		got, err := repo.CategoryExpenseDistribution(ctx, 1, start, end)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "Rent", got[0].CategoryName)
		assertSameJSON(t, procedures.CategoryDistribution(txs, start, end), got)
	})

	t.Run("financial health", func(t *testing.T) {
		got, err := repo.FinancialHealthStatus(ctx, 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assertSameJSON(t, procedures.HealthStatus(txs, goals), got[0])
	})
}

func TestProceduresForUserWithoutData(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	rows, err := repo.MonthlyExpenditureAnalysis(ctx, 42, 2024)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)

	health, err := repo.FinancialHealthStatus(ctx, 42)
	require.NoError(t, err)
	require.Len(t, health, 1)
	assert.Equal(t, procedures.HealthNeedsImprovement, health[0].FinancialHealth)
	assert.True(t, health[0].SavingsRate.IsZero())
	assert.Equal(t, 0, health[0].TotalTransactions)
}

func TestCallProcedureValidatesArity(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	noop := func(*sql.Rows) error { return nil }

	err := repo.callProcedure(ctx, procedures.MonthlyExpenditureAnalysis, 1, noop)
	assert.True(t, errors.Is(err, ErrProcedureArity))

	err = repo.callProcedure(ctx, procedures.FinancialHealthStatus, 1, noop, 2024)
	assert.True(t, errors.Is(err, ErrProcedureArity))

	err = repo.callProcedure(ctx, procedures.Name("get_everything"), 1, noop)
	assert.True(t, errors.Is(err, ErrUnknownProcedure))
	assert.Contains(t, err.Error(), "get_everything")
}

func TestPostgresQueriesUseDollarPlaceholders(t *testing.T) {
	q := newQueries(Postgres)
	all := []string{q.insertTransaction, q.insertGoal, q.transactionsBetween, q.allTransactions, q.goalByMonth, q.userGoals}
	for _, name := range procedures.All {
		all = append(all, q.procedures[name])
	}
	for _, query := range all {
		assert.NotContains(t, query, "?")
	}
	assert.Contains(t, q.procedures[procedures.GoalAdherenceTracking], "BETWEEN $2::date AND $3::date")
	assert.Contains(t, q.procedures[procedures.GoalAdherenceTracking], "make_date(g.target_year, g.target_month, 1)")
}

func TestRebind(t *testing.T) {
	query := "SELECT * FROM t WHERE a = ?1 AND b = ?12 AND c = ?1"
	assert.Equal(t, query, SQLite.rebind(query))
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $12 AND c = $1", Postgres.rebind(query))
}

func TestParseDialect(t *testing.T) {
	d, err := ParseDialect("postgres")
	require.NoError(t, err)
	assert.Equal(t, Postgres, d)

	_, err = ParseDialect("oracle")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "oracle"))
}
