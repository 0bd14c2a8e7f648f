package analytics

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Binusha25Liyanage/MoneyMate/internal/core"
)

// TopCategoryLimit is how many categories per type the analytics rank.
const TopCategoryLimit = 5

type Totals struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

type Counts struct {
	Income   int `json:"income"`
	Expenses int `json:"expenses"`
	Total    int `json:"total"`
}

type Averages struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

type TopCategories struct {
	Income   []CategoryAmount `json:"income"`
	Expenses []CategoryAmount `json:"expenses"`
}

type CategoryBreakdown struct {
	Income   CategoryTotals `json:"income"`
	Expenses CategoryTotals `json:"expenses"`
}

// PeriodAnalytics is the full analytic view over one set of transactions.
type PeriodAnalytics struct {
	Totals            Totals            `json:"totals"`
	Counts            Counts            `json:"counts"`
	Averages          Averages          `json:"averages"`
	TopCategories     TopCategories     `json:"topCategories"`
	CategoryBreakdown CategoryBreakdown `json:"categoryBreakdown"`
}

// GoalStatus tracks a month's net income against its savings goal.
type GoalStatus struct {
	Target    decimal.Decimal `json:"target"`
	Progress  decimal.Decimal `json:"progress"`
	Achieved  bool            `json:"achieved"`
	Remaining decimal.Decimal `json:"remaining"`
}

// Summary is the monthly headline: totals, transaction count and, when the
// month has a goal, its status.
type Summary struct {
	Totals
	GoalStatus       *GoalStatus `json:"goalStatus"`
	TransactionCount int         `json:"transactionCount"`
}

type YearlyAnalytics struct {
	Totals
	SavingsRate          decimal.Decimal `json:"savingsRate"`
	GoalsAchievementRate decimal.Decimal `json:"goalsAchievementRate"`
	TotalGoals           int             `json:"totalGoals"`
	AchievedGoals        int             `json:"achievedGoals"`
	TransactionCount     int             `json:"transactionCount"`
}

type MonthSummary struct {
	Month     int    `json:"month"`
	MonthName string `json:"monthName"`
	Totals
	TransactionCount int `json:"transactionCount"`
}

// MonthlyBreakdown holds one entry per calendar month, January first.
type MonthlyBreakdown []MonthSummary

// MarshalJSON writes an object keyed by month number in calendar order.
func (b MonthlyBreakdown) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		val, err := json.Marshal(m)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`"` + strconv.Itoa(m.Month) + `":`)
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Compute builds the period analytics for txs.
func Compute(txs []core.Transaction) PeriodAnalytics {
	income, expense := Partition(txs)

	totalIncome := Sum(income)
	totalExpenses := Sum(expense)

	incomeByCategory := GroupByCategory(income)
	expensesByCategory := GroupByCategory(expense)

	return PeriodAnalytics{
		Totals: Totals{
			Income:   totalIncome,
			Expenses: totalExpenses,
			Net:      totalIncome.Sub(totalExpenses),
		},
		Counts: Counts{
			Income:   len(income),
			Expenses: len(expense),
			Total:    len(txs),
		},
		Averages: Averages{
			Income:   Average(income),
			Expenses: Average(expense),
		},
		TopCategories: TopCategories{
			Income:   nonNil(incomeByCategory.Top(TopCategoryLimit)),
			Expenses: nonNil(expensesByCategory.Top(TopCategoryLimit)),
		},
		CategoryBreakdown: CategoryBreakdown{
			Income:   incomeByCategory,
			Expenses: expensesByCategory,
		},
	}
}

// NewGoalStatus compares net against the goal's target.
func NewGoalStatus(net decimal.Decimal, goal core.Goal) GoalStatus {
	return GoalStatus{
		Target:    goal.TargetAmount,
		Progress:  core.Percent(net, goal.TargetAmount),
		Achieved:  net.GreaterThanOrEqual(goal.TargetAmount),
		Remaining: core.MaxZero(goal.TargetAmount.Sub(net)),
	}
}

// MonthlySummary wraps the totals of txs with the status of goal, if any.
func MonthlySummary(txs []core.Transaction, goal *core.Goal) Summary {
	a := Compute(txs)
	s := Summary{
		Totals:           a.Totals,
		TransactionCount: a.Counts.Total,
	}
	if goal != nil {
		status := NewGoalStatus(a.Totals.Net, *goal)
		s.GoalStatus = &status
	}
	return s
}

// GoalAchieved reports whether the net of the transactions dated in the goal's
// target month reaches its target.
func GoalAchieved(goal core.Goal, txs []core.Transaction) bool {
	month := Filter(txs, func(tx core.Transaction) bool {
		return tx.InPeriod(goal.TargetMonth, goal.TargetYear)
	})
	return Compute(month).Totals.Net.GreaterThanOrEqual(goal.TargetAmount)
}

// Yearly summarises a year of transactions and its goals.
func Yearly(txs []core.Transaction, goals []core.Goal) YearlyAnalytics {
	a := Compute(txs)

	achieved := 0
	for _, g := range goals {
		if GoalAchieved(g, txs) {
			achieved++
		}
	}

	return YearlyAnalytics{
		Totals:               a.Totals,
		SavingsRate:          core.Percent(a.Totals.Net, a.Totals.Income),
		GoalsAchievementRate: core.Percent(decimal.NewFromInt(int64(achieved)), decimal.NewFromInt(int64(len(goals)))),
		TotalGoals:           len(goals),
		AchievedGoals:        achieved,
		TransactionCount:     a.Counts.Total,
	}
}

// Breakdown returns one summary per month of year, including empty months.
func Breakdown(txs []core.Transaction, year int) MonthlyBreakdown {
	out := make(MonthlyBreakdown, 0, 12)
	for month := 1; month <= 12; month++ {
		monthTxs := Filter(txs, func(tx core.Transaction) bool {
			return tx.InPeriod(month, year)
		})
		a := Compute(monthTxs)
		out = append(out, MonthSummary{
			Month:            month,
			MonthName:        core.MonthName(month),
			Totals:           a.Totals,
			TransactionCount: a.Counts.Total,
		})
	}
	return out
}

func nonNil(in []CategoryAmount) []CategoryAmount {
	if in == nil {
		return []CategoryAmount{}
	}
	return in
}
