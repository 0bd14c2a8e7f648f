package procedures

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Binusha25Liyanage/MoneyMate/internal/analytics"
	"github.com/Binusha25Liyanage/MoneyMate/internal/core"
)

// MonthlyExpenditure evaluates get_monthly_expenditure_analysis over one
// user's transactions.
func MonthlyExpenditure(txs []core.Transaction, year int) []MonthlyExpenditureRow {
	var byMonth [12][]core.Transaction
	for _, tx := range txs {
		if tx.Type != core.Expense || tx.TransactionDate.Year() != year {
			continue
		}
		m := tx.TransactionDate.Month() - 1
		byMonth[m] = append(byMonth[m], tx)
	}

	rows := []MonthlyExpenditureRow{}
	var prev *decimal.Decimal
	for i, month := range byMonth {
		total := analytics.Sum(month)
		if !total.IsPositive() {
			continue
		}
		rows = append(rows, MonthlyExpenditureRow{
			MonthNumber:      i + 1,
			MonthName:        core.MonthName(i + 1),
			TransactionCount: len(month),
			TotalAmount:      total,
			AvgAmount:        analytics.Average(month),
			Trend:            Trend(prev, total),
		})
		prev = &total
	}
	return rows
}

// GoalAdherence evaluates get_goal_adherence_tracking for goals whose target
// month starts within [start, end].
func GoalAdherence(goals []core.Goal, txs []core.Transaction, start, end core.Date) []GoalAdherenceRow {
	rows := []GoalAdherenceRow{}
	for _, g := range sortedGoals(goals) {
		monthStart := core.MonthStart(g.TargetYear, g.TargetMonth)
		if monthStart.Before(start.Time) || monthStart.After(end.Time) {
			continue
		}
		actual := analytics.Net(monthTransactions(txs, g))
		rows = append(rows, GoalAdherenceRow{
			GoalID:                g.ID,
			TargetMonth:           g.TargetMonth,
			TargetYear:            g.TargetYear,
			TargetAmount:          g.TargetAmount,
			ActualAmount:          actual,
			Difference:            actual.Sub(g.TargetAmount),
			AchievementPercentage: AchievementPercentage(actual, g.TargetAmount),
			Status:                AdherenceStatus(actual, g.TargetAmount),
		})
	}
	return rows
}

// SavingsProgress evaluates get_savings_goal_progress as of now.
func SavingsProgress(goals []core.Goal, txs []core.Transaction, now time.Time) []SavingsProgressRow {
	now = now.UTC()
	today := core.DateOf(now)

	rows := []SavingsProgressRow{}
	for _, g := range sortedGoals(goals) {
		month := monthTransactions(txs, g)

		current := analytics.Net(month)
		progress, remaining := SavingsFigures(g.TargetAmount, current, len(month) > 0)
		monthStart := core.MonthStart(g.TargetYear, g.TargetMonth)

		rows = append(rows, SavingsProgressRow{
			ID:                  g.ID,
			TargetMonth:         g.TargetMonth,
			TargetYear:          g.TargetYear,
			TargetAmount:        g.TargetAmount,
			CurrentAmount:       current,
			ProgressPercentage:  progress,
			RemainingAmount:     remaining,
			Status:              SavingsStatus(current, g.TargetAmount, progress, monthStart, today),
			RequiredDailySaving: RequiredDailySaving(g.TargetAmount, current, monthStart, now),
		})
	}
	return rows
}

// CategoryDistribution evaluates get_category_expense_distribution over
// expenses dated within [start, end].
func CategoryDistribution(txs []core.Transaction, start, end core.Date) []CategoryDistributionRow {
	window := analytics.Filter(txs, func(tx core.Transaction) bool {
		d := tx.TransactionDate
		return tx.Type == core.Expense && !d.Before(start.Time) && !d.After(end.Time)
	})
	total := analytics.Sum(window)

	byCategory := make(map[string][]core.Transaction)
	for _, tx := range window {
		byCategory[tx.Category] = append(byCategory[tx.Category], tx)
	}

	rows := []CategoryDistributionRow{}
	for name, group := range byCategory {
		sum := analytics.Sum(group)
		if !sum.IsPositive() {
			continue
		}
		rows = append(rows, CategoryDistributionRow{
			CategoryName:      name,
			TransactionCount:  len(group),
			TotalAmount:       sum,
			AvgAmount:         analytics.Average(group),
			PercentageOfTotal: ShareOfTotal(sum, total),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].TotalAmount.Equal(rows[j].TotalAmount) {
			return rows[i].TotalAmount.GreaterThan(rows[j].TotalAmount)
		}
		return rows[i].CategoryName < rows[j].CategoryName
	})
	return rows
}

// HealthStatus evaluates get_financial_health_status over all of a user's
// transactions and goals.
func HealthStatus(txs []core.Transaction, goals []core.Goal) FinancialHealth {
	income, expense := analytics.Partition(txs)
	totalIncome := analytics.Sum(income)
	totalExpenses := analytics.Sum(expense)
	net := totalIncome.Sub(totalExpenses)

	rate := SavingsRate(totalIncome, net)

	achieved := 0
	for _, g := range goals {
		month := monthTransactions(txs, g)
		if len(month) == 0 {
			continue
		}
		if g.TargetAmount.LessThanOrEqual(analytics.Net(month)) {
			achieved++
		}
	}

	return FinancialHealth{
		TotalIncome:       totalIncome,
		TotalExpenses:     totalExpenses,
		NetIncome:         net,
		SavingsRate:       core.Round2(rate),
		FinancialHealth:   HealthLabel(rate),
		TotalTransactions: len(txs),
		TotalGoals:        len(goals),
		AchievedGoals:     achieved,
	}
}

func monthTransactions(txs []core.Transaction, g core.Goal) []core.Transaction {
	return analytics.Filter(txs, func(tx core.Transaction) bool {
		return tx.InPeriod(g.TargetMonth, g.TargetYear)
	})
}

// sortedGoals orders goals by target year then month, keeping input order on ties.
func sortedGoals(goals []core.Goal) []core.Goal {
	out := append([]core.Goal(nil), goals...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TargetYear != out[j].TargetYear {
			return out[i].TargetYear < out[j].TargetYear
		}
		return out[i].TargetMonth < out[j].TargetMonth
	})
	return out
}
