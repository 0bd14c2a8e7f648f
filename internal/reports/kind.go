package reports

import (
	"fmt"

	"github.com/Binusha25Liyanage/MoneyMate/internal/procedures"
)

// Kind names one report of the service. It doubles as the URL suffix, the
// CLI subcommand and the cache key segment.
type Kind string

const (
	KindMonthly              Kind = "monthly"
	KindYearly               Kind = "yearly"
	KindMonthlyExpenditure   Kind = "monthly-expenditure"
	KindGoalAdherence        Kind = "goal-adherence"
	KindSavingsProgress      Kind = "savings-progress"
	KindCategoryDistribution Kind = "category-distribution"
	KindFinancialHealth      Kind = "financial-health"
)

var Kinds = []Kind{
	KindMonthly,
	KindYearly,
	KindMonthlyExpenditure,
	KindGoalAdherence,
	KindSavingsProgress,
	KindCategoryDistribution,
	KindFinancialHealth,
}

var procedureOf = map[Kind]procedures.Name{
	KindMonthlyExpenditure:   procedures.MonthlyExpenditureAnalysis,
	KindGoalAdherence:        procedures.GoalAdherenceTracking,
	KindSavingsProgress:      procedures.SavingsGoalProgress,
	KindCategoryDistribution: procedures.CategoryExpenseDistribution,
	KindFinancialHealth:      procedures.FinancialHealthStatus,
}

func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown report %q", s)
}

// Title is the human name used in failure messages, e.g. "Failed to generate
// yearly report".
func (k Kind) Title() string {
	switch k {
	case KindMonthly:
		return "report"
	case KindYearly:
		return "yearly report"
	case KindMonthlyExpenditure:
		return "monthly expenditure analysis"
	case KindGoalAdherence:
		return "goal adherence tracking"
	case KindSavingsProgress:
		return "savings goal progress"
	case KindCategoryDistribution:
		return "category expense distribution"
	case KindFinancialHealth:
		return "financial health status"
	}
	return string(k)
}

// ReportType is the reportType label of procedure backed reports and the
// report_type of published events.
func (k Kind) ReportType() string {
	if name, ok := procedureOf[k]; ok {
		return name.ReportType()
	}
	switch k {
	case KindMonthly:
		return "Monthly Report"
	case KindYearly:
		return "Yearly Report"
	}
	return string(k)
}

// FailureMessage is the envelope message for a failed report.
func (k Kind) FailureMessage() string {
	return "Failed to generate " + k.Title()
}
