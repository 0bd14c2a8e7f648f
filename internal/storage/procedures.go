package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Binusha25Liyanage/MoneyMate/internal/core"
	"github.com/Binusha25Liyanage/MoneyMate/internal/procedures"
)

var (
	ErrUnknownProcedure = errors.New("unknown procedure")
	ErrProcedureArity   = errors.New("wrong number of procedure parameters")
)

// callProcedure runs the named report procedure for userID on one pooled
// connection and hands each result row to scan. params are the positional
// parameters after the user id and must match the procedure's arity.
func (r *Repository) callProcedure(ctx context.Context, name procedures.Name, userID int64, scan func(*sql.Rows) error, params ...any) error {
	arity, ok := name.Arity()
	query, found := r.q.procedures[name]
	if !ok || !found {
		return fmt.Errorf("%s: %w", name, ErrUnknownProcedure)
	}
	if len(params) != arity || arity > procedures.MaxParams {
		return fmt.Errorf("%s: %w: want %d, got %d", name, ErrProcedureArity, arity, len(params))
	}

	args := make([]any, 0, 1+len(params)+1)
	args = append(args, userID)
	args = append(args, params...)
	if name == procedures.SavingsGoalProgress {
		args = append(args, core.DateOf(r.now().UTC()).String())
	}

	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%s: acquire connection: %w", name, err)
	}
	defer conn.Close()

	start := time.Now()
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	defer rows.Close()

	n := 0
	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("%s: scan row: %w", name, err)
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	slog.DebugContext(ctx, "Procedure executed",
		"procedure", name,
		"user_id", userID,
		"rows", n,
		"duration", time.Since(start))
	return nil
}

func (r *Repository) MonthlyExpenditureAnalysis(ctx context.Context, userID int64, year int) ([]procedures.MonthlyExpenditureRow, error) {
	out := []procedures.MonthlyExpenditureRow{}
	err := r.callProcedure(ctx, procedures.MonthlyExpenditureAnalysis, userID, func(rows *sql.Rows) error {
		var (
			row   procedures.MonthlyExpenditureRow
			total int64
		)
		if err := rows.Scan(&row.MonthNumber, &row.TransactionCount, &total, &row.Trend); err != nil {
			return err
		}
		row.MonthName = core.MonthName(row.MonthNumber)
		row.TotalAmount = fromCents(total)
		row.AvgAmount = average(row.TotalAmount, row.TransactionCount)
		out = append(out, row)
		return nil
	}, year)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) GoalAdherenceTracking(ctx context.Context, userID int64, start, end core.Date) ([]procedures.GoalAdherenceRow, error) {
	out := []procedures.GoalAdherenceRow{}
	err := r.callProcedure(ctx, procedures.GoalAdherenceTracking, userID, func(rows *sql.Rows) error {
		var (
			row            procedures.GoalAdherenceRow
			target, actual int64
		)
		if err := rows.Scan(&row.GoalID, &row.TargetMonth, &row.TargetYear, &target, &actual, &row.Status); err != nil {
			return err
		}
		row.TargetAmount = fromCents(target)
		row.ActualAmount = fromCents(actual)
		row.Difference = row.ActualAmount.Sub(row.TargetAmount)
		row.AchievementPercentage = procedures.AchievementPercentage(row.ActualAmount, row.TargetAmount)
		out = append(out, row)
		return nil
	}, start.String(), end.String())
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) SavingsGoalProgress(ctx context.Context, userID int64) ([]procedures.SavingsProgressRow, error) {
	now := r.now().UTC()
	out := []procedures.SavingsProgressRow{}
	err := r.callProcedure(ctx, procedures.SavingsGoalProgress, userID, func(rows *sql.Rows) error {
		var (
			row             procedures.SavingsProgressRow
			target, current int64
			count           int
		)
		if err := rows.Scan(&row.ID, &row.TargetMonth, &row.TargetYear, &target, &count, &current, &row.Status); err != nil {
			return err
		}
		row.TargetAmount = fromCents(target)
		row.CurrentAmount = fromCents(current)
		row.ProgressPercentage, row.RemainingAmount = procedures.SavingsFigures(row.TargetAmount, row.CurrentAmount, count > 0)
		monthStart := core.MonthStart(row.TargetYear, row.TargetMonth)
		row.RequiredDailySaving = procedures.RequiredDailySaving(row.TargetAmount, row.CurrentAmount, monthStart, now)
		out = append(out, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) CategoryExpenseDistribution(ctx context.Context, userID int64, start, end core.Date) ([]procedures.CategoryDistributionRow, error) {
	out := []procedures.CategoryDistributionRow{}
	err := r.callProcedure(ctx, procedures.CategoryExpenseDistribution, userID, func(rows *sql.Rows) error {
		var (
			row           procedures.CategoryDistributionRow
			total, window int64
		)
		if err := rows.Scan(&row.CategoryName, &row.TransactionCount, &total, &window); err != nil {
			return err
		}
		row.TotalAmount = fromCents(total)
		row.AvgAmount = average(row.TotalAmount, row.TransactionCount)
		row.PercentageOfTotal = procedures.ShareOfTotal(row.TotalAmount, fromCents(window))
		out = append(out, row)
		return nil
	}, start.String(), end.String())
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) FinancialHealthStatus(ctx context.Context, userID int64) ([]procedures.FinancialHealth, error) {
	out := []procedures.FinancialHealth{}
	err := r.callProcedure(ctx, procedures.FinancialHealthStatus, userID, func(rows *sql.Rows) error {
		var (
			row             procedures.FinancialHealth
			income, expense int64
		)
		if err := rows.Scan(&income, &expense, &row.TotalTransactions, &row.TotalGoals, &row.AchievedGoals, &row.FinancialHealth); err != nil {
			return err
		}
		row.TotalIncome = fromCents(income)
		row.TotalExpenses = fromCents(expense)
		row.NetIncome = row.TotalIncome.Sub(row.TotalExpenses)
		row.SavingsRate = core.Round2(procedures.SavingsRate(row.TotalIncome, row.NetIncome))
		out = append(out, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func average(total decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count)))
}
