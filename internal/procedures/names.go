// Package procedures describes the five named aggregate reports that run
// inside the store: their names and arity, their typed result rows, the label
// rules they share, and in-process evaluators with the same semantics.
package procedures

type Name string

const (
	MonthlyExpenditureAnalysis  Name = "get_monthly_expenditure_analysis"
	GoalAdherenceTracking       Name = "get_goal_adherence_tracking"
	SavingsGoalProgress         Name = "get_savings_goal_progress"
	CategoryExpenseDistribution Name = "get_category_expense_distribution"
	FinancialHealthStatus       Name = "get_financial_health_status"
)

// MaxParams is the largest number of positional parameters a procedure takes
// after the user id.
const MaxParams = 2

var arity = map[Name]int{
	MonthlyExpenditureAnalysis:  1, // year
	GoalAdherenceTracking:       2, // start date, end date
	SavingsGoalProgress:         0,
	CategoryExpenseDistribution: 2, // start date, end date
	FinancialHealthStatus:       0,
}

// All lists every procedure in a stable order.
var All = []Name{
	MonthlyExpenditureAnalysis,
	GoalAdherenceTracking,
	SavingsGoalProgress,
	CategoryExpenseDistribution,
	FinancialHealthStatus,
}

// Arity returns how many parameters follow the user id, and false for an
// unknown name.
func (n Name) Arity() (int, bool) {
	a, ok := arity[n]
	return a, ok
}

func (n Name) String() string {
	return string(n)
}

// ReportType is the human-readable title used in report payloads.
func (n Name) ReportType() string {
	switch n {
	case MonthlyExpenditureAnalysis:
		return "Monthly Expenditure Analysis"
	case GoalAdherenceTracking:
		return "Goal Adherence Tracking"
	case SavingsGoalProgress:
		return "Savings Goal Progress"
	case CategoryExpenseDistribution:
		return "Category Expense Distribution"
	case FinancialHealthStatus:
		return "Financial Health Status"
	default:
		return ""
	}
}
