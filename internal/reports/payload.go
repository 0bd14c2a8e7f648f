package reports

import (
	"time"

	"github.com/Binusha25Liyanage/MoneyMate/internal/analytics"
	"github.com/Binusha25Liyanage/MoneyMate/internal/core"
	"github.com/Binusha25Liyanage/MoneyMate/internal/procedures"
)

// MaxReportTransactions caps the raw transactions embedded in a monthly report.
const MaxReportTransactions = 50

type (
	MonthPeriod struct {
		Month     int    `json:"month"`
		Year      int    `json:"year"`
		MonthName string `json:"monthName"`
	}

	YearPeriod struct {
		Year int    `json:"year"`
		Type string `json:"type,omitempty"`
	}

	DateRange struct {
		StartDate core.Date `json:"startDate"`
		EndDate   core.Date `json:"endDate"`
	}
)

type MonthlyReport struct {
	Period       MonthPeriod               `json:"period"`
	Summary      analytics.Summary         `json:"summary"`
	Analytics    analytics.PeriodAnalytics `json:"analytics"`
	ChartData    analytics.ChartData       `json:"chartData"`
	Transactions []core.Transaction        `json:"transactions"`
	GeneratedAt  time.Time                 `json:"generatedAt"`
}

type YearlyReport struct {
	Period           YearPeriod                 `json:"period"`
	Summary          analytics.YearlyAnalytics  `json:"summary"`
	MonthlyBreakdown analytics.MonthlyBreakdown `json:"monthlyBreakdown"`
	GoalsProgress    []core.Goal                `json:"goalsProgress"`
	GeneratedAt      time.Time                  `json:"generatedAt"`
}

type MonthlyExpenditureReport struct {
	ReportType  string                             `json:"reportType"`
	Period      YearPeriod                         `json:"period"`
	Analysis    []procedures.MonthlyExpenditureRow `json:"analysis"`
	GeneratedAt time.Time                          `json:"generatedAt"`
}

type GoalAdherenceReport struct {
	ReportType  string                        `json:"reportType"`
	Period      DateRange                     `json:"period"`
	Tracking    []procedures.GoalAdherenceRow `json:"tracking"`
	GeneratedAt time.Time                     `json:"generatedAt"`
}

type SavingsProgressReport struct {
	ReportType  string                          `json:"reportType"`
	Progress    []procedures.SavingsProgressRow `json:"progress"`
	GeneratedAt time.Time                       `json:"generatedAt"`
}

type CategoryDistributionReport struct {
	ReportType   string                               `json:"reportType"`
	Period       DateRange                            `json:"period"`
	Distribution []procedures.CategoryDistributionRow `json:"distribution"`
	GeneratedAt  time.Time                            `json:"generatedAt"`
}

type FinancialHealthReport struct {
	ReportType  string                     `json:"reportType"`
	Health      procedures.FinancialHealth `json:"health"`
	GeneratedAt time.Time                  `json:"generatedAt"`
}
