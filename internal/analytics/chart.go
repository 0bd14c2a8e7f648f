package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/Binusha25Liyanage/MoneyMate/internal/core"
)

// WeeksPerMonth is the fixed number of 7-day windows in a monthly chart.
const WeeksPerMonth = 5

type DailyPoint struct {
	Day      int             `json:"day"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

type WeeklyPoint struct {
	Week     int             `json:"week"`
	StartDay int             `json:"startDay"`
	EndDay   int             `json:"endDay"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
}

type ChartData struct {
	Daily  []DailyPoint  `json:"daily"`
	Weekly []WeeklyPoint `json:"weekly"`
}

// BuildChartData buckets txs into daily and weekly series for month/year.
//
// Transactions are matched on day of month only; txs must already be scoped
// to the target month or days of other months with the same number will be
// folded in.
func BuildChartData(txs []core.Transaction, month, year int) ChartData {
	daysInMonth := core.DaysInMonth(year, month)

	daily := make([]DailyPoint, 0, daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		income, expenses := sumDayRange(txs, day, day)
		daily = append(daily, DailyPoint{
			Day:      day,
			Income:   income,
			Expenses: expenses,
			Net:      income.Sub(expenses),
		})
	}

	weekly := make([]WeeklyPoint, 0, WeeksPerMonth)
	for week := 0; week < WeeksPerMonth; week++ {
		start := week*7 + 1
		end := min(start+6, daysInMonth)
		income, expenses := sumDayRange(txs, start, end)
		weekly = append(weekly, WeeklyPoint{
			Week:     week + 1,
			StartDay: start,
			EndDay:   end,
			Income:   income,
			Expenses: expenses,
			Net:      income.Sub(expenses),
		})
	}

	return ChartData{Daily: daily, Weekly: weekly}
}

// sumDayRange totals income and expenses over days first..last inclusive.
// An inverted range matches nothing.
func sumDayRange(txs []core.Transaction, first, last int) (income, expenses decimal.Decimal) {
	income, expenses = decimal.Zero, decimal.Zero
	for _, tx := range txs {
		day := tx.TransactionDate.Day()
		if day < first || day > last {
			continue
		}
		switch tx.Type {
		case core.Income:
			income = income.Add(tx.Amount)
		case core.Expense:
			expenses = expenses.Add(tx.Amount)
		}
	}
	return income, expenses
}
