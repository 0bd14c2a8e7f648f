package procedures

import (
	"github.com/shopspring/decimal"

	"github.com/Binusha25Liyanage/MoneyMate/internal/core"
)

const (
	TrendNoPrevious = "No previous data"
	TrendIncrease   = "Increase"
	TrendDecrease   = "Decrease"
	TrendSame       = "Same"

	AdherenceAchieved    = "Achieved"
	AdherenceNearTarget  = "Near Target"
	AdherenceBelowTarget = "Below Target"

	SavingsAchieved   = "Achieved"
	SavingsOverdue    = "Overdue"
	SavingsNearGoal   = "Near Goal"
	SavingsInProgress = "In Progress"

	HealthExcellent        = "Excellent"
	HealthGood             = "Good"
	HealthNeedsImprovement = "Needs Improvement"
	HealthCritical         = "Critical"
	HealthNoData           = "No Data"
)

var (
	nearTargetRatio = decimal.RequireFromString("0.8")
	nearGoalPercent = decimal.NewFromInt(90)
	excellentRate   = decimal.NewFromInt(20)
	goodRate        = decimal.NewFromInt(10)
)

// Trend compares a month's total with the previous row's. A nil prev means
// the month is the first of the result set.
func Trend(prev *decimal.Decimal, cur decimal.Decimal) string {
	switch {
	case prev == nil:
		return TrendNoPrevious
	case cur.GreaterThan(*prev):
		return TrendIncrease
	case cur.LessThan(*prev):
		return TrendDecrease
	default:
		return TrendSame
	}
}

func AdherenceStatus(actual, target decimal.Decimal) string {
	switch {
	case actual.GreaterThanOrEqual(target):
		return AdherenceAchieved
	case actual.GreaterThanOrEqual(target.Mul(nearTargetRatio)):
		return AdherenceNearTarget
	default:
		return AdherenceBelowTarget
	}
}

// SavingsStatus labels a goal's progress. A goal whose month has started
// before today and is still unmet is overdue.
func SavingsStatus(current, target, progress decimal.Decimal, monthStart, today core.Date) string {
	switch {
	case current.GreaterThanOrEqual(target):
		return SavingsAchieved
	case monthStart.Before(today.Time):
		return SavingsOverdue
	case progress.GreaterThanOrEqual(nearGoalPercent):
		return SavingsNearGoal
	default:
		return SavingsInProgress
	}
}

// HealthLabel grades an unrounded savings rate in percent.
func HealthLabel(rate decimal.Decimal) string {
	switch {
	case rate.GreaterThanOrEqual(excellentRate):
		return HealthExcellent
	case rate.GreaterThanOrEqual(goodRate):
		return HealthGood
	case !rate.IsNegative():
		return HealthNeedsImprovement
	default:
		return HealthCritical
	}
}
