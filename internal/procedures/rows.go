package procedures

import "github.com/shopspring/decimal"

type MonthlyExpenditureRow struct {
	MonthNumber      int             `json:"month_number"`
	MonthName        string          `json:"month_name"`
	TransactionCount int             `json:"transaction_count"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	AvgAmount        decimal.Decimal `json:"avg_amount"`
	Trend            string          `json:"trend"`
}

type GoalAdherenceRow struct {
	GoalID                int64           `json:"goal_id"`
	TargetMonth           int             `json:"target_month"`
	TargetYear            int             `json:"target_year"`
	TargetAmount          decimal.Decimal `json:"target_amount"`
	ActualAmount          decimal.Decimal `json:"actual_amount"`
	Difference            decimal.Decimal `json:"difference"`
	AchievementPercentage decimal.Decimal `json:"achievement_percentage"`
	Status                string          `json:"status"`
}

type SavingsProgressRow struct {
	ID                  int64           `json:"id"`
	TargetMonth         int             `json:"target_month"`
	TargetYear          int             `json:"target_year"`
	TargetAmount        decimal.Decimal `json:"target_amount"`
	CurrentAmount       decimal.Decimal `json:"current_amount"`
	ProgressPercentage  decimal.Decimal `json:"progress_percentage"`
	RemainingAmount     decimal.Decimal `json:"remaining_amount"`
	Status              string          `json:"status"`
	RequiredDailySaving decimal.Decimal `json:"required_daily_saving"`
}

type CategoryDistributionRow struct {
	CategoryName      string          `json:"category_name"`
	TransactionCount  int             `json:"transaction_count"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	AvgAmount         decimal.Decimal `json:"avg_amount"`
	PercentageOfTotal decimal.Decimal `json:"percentage_of_total"`
}

// FinancialHealth is the single row of the health procedure.
type FinancialHealth struct {
	TotalIncome       decimal.Decimal `json:"total_income"`
	TotalExpenses     decimal.Decimal `json:"total_expenses"`
	NetIncome         decimal.Decimal `json:"net_income"`
	SavingsRate       decimal.Decimal `json:"savings_rate"`
	FinancialHealth   string          `json:"financial_health"`
	TotalTransactions int             `json:"total_transactions"`
	TotalGoals        int             `json:"total_goals"`
	AchievedGoals     int             `json:"achieved_goals"`
}

// NoDataHealth is reported when the store returns no health row at all.
func NoDataHealth() FinancialHealth {
	return FinancialHealth{
		TotalIncome:     decimal.Zero,
		TotalExpenses:   decimal.Zero,
		NetIncome:       decimal.Zero,
		SavingsRate:     decimal.Zero,
		FinancialHealth: HealthNoData,
	}
}
