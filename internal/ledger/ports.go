// Package ledger declares the read ports the reporting layer needs from the
// transaction and goal store.
package ledger

import (
	"context"

	"github.com/Binusha25Liyanage/MoneyMate/internal/core"
	"github.com/Binusha25Liyanage/MoneyMate/internal/procedures"
)

type (
	TransactionReader interface {
		// TransactionsByMonth returns a user's transactions dated in month/year.
		TransactionsByMonth(ctx context.Context, userID int64, month, year int) ([]core.Transaction, error)
		// AllTransactions returns every transaction of a user.
		AllTransactions(ctx context.Context, userID int64) ([]core.Transaction, error)
	}

	GoalReader interface {
		// GoalByUserAndMonth returns the goal for month/year, or nil, nil when
		// the user has none.
		GoalByUserAndMonth(ctx context.Context, userID int64, month, year int) (*core.Goal, error)
		UserGoals(ctx context.Context, userID int64) ([]core.Goal, error)
	}

	// ProcedureRunner executes the named aggregate reports for one user.
	ProcedureRunner interface {
		MonthlyExpenditureAnalysis(ctx context.Context, userID int64, year int) ([]procedures.MonthlyExpenditureRow, error)
		GoalAdherenceTracking(ctx context.Context, userID int64, start, end core.Date) ([]procedures.GoalAdherenceRow, error)
		SavingsGoalProgress(ctx context.Context, userID int64) ([]procedures.SavingsProgressRow, error)
		CategoryExpenseDistribution(ctx context.Context, userID int64, start, end core.Date) ([]procedures.CategoryDistributionRow, error)
		// FinancialHealthStatus returns at most one row.
		FinancialHealthStatus(ctx context.Context, userID int64) ([]procedures.FinancialHealth, error)
	}

	Backend interface {
		TransactionReader
		GoalReader
		ProcedureRunner
		Ping(ctx context.Context) error
	}
)
