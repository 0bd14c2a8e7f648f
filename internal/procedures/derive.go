package procedures

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Binusha25Liyanage/MoneyMate/internal/core"
)

var (
	oneDay      = decimal.NewFromInt(1)
	nanosPerDay = decimal.NewFromInt(int64(24 * time.Hour))
)

// SavingsFigures derives progress (percent, 2dp) and remaining amount of a
// goal from the net of its month. A month without transactions has made no
// progress and the whole target remains.
func SavingsFigures(target, current decimal.Decimal, hasTransactions bool) (progress, remaining decimal.Decimal) {
	if !hasTransactions {
		return decimal.Zero, target
	}
	return core.Round2(core.Percent(current, target)), target.Sub(current)
}

// RequiredDailySaving spreads what is left of target over the days until the
// goal month starts, counting at least one day. It is zero once the month has
// started.
func RequiredDailySaving(target, current decimal.Decimal, monthStart core.Date, now time.Time) decimal.Decimal {
	if !monthStart.After(now) {
		return decimal.Zero
	}
	days := decimal.NewFromInt(int64(monthStart.Sub(now))).Div(nanosPerDay)
	return core.Round2(target.Sub(current).Div(decimal.Max(oneDay, days)))
}

// SavingsRate is net/income in percent, unrounded, or zero without income.
func SavingsRate(income, net decimal.Decimal) decimal.Decimal {
	if !income.IsPositive() {
		return decimal.Zero
	}
	return core.Percent(net, income)
}

// AchievementPercentage is actual/target in percent, rounded to 2dp.
func AchievementPercentage(actual, target decimal.Decimal) decimal.Decimal {
	return core.Round2(core.Percent(actual, target))
}

// ShareOfTotal is part/total in percent, rounded to 2dp, or zero when total is
// not positive.
func ShareOfTotal(part, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return core.Round2(core.Percent(part, total))
}
