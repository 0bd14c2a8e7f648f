package storage

import (
	"fmt"

	"github.com/Binusha25Liyanage/MoneyMate/internal/procedures"
)

// queries holds the SQL of one dialect. Parameters are written ?N and rebound
// per dialect.
type queries struct {
	insertTransaction   string
	insertGoal          string
	transactionsBetween string
	allTransactions     string
	goalByMonth         string
	userGoals           string

	procedures map[procedures.Name]string
}

const (
	transactionColumns = "id, user_id, amount_cents, type, category, transaction_date, description"
	goalColumns        = "id, user_id, target_amount_cents, target_month, target_year, created_at"
	signedCents        = "CASE WHEN t.type = 'income' THEN t.amount_cents ELSE -t.amount_cents END"
)

func newQueries(d Dialect) queries {
	q := queries{
		insertTransaction: `INSERT INTO transactions (user_id, amount_cents, type, category, transaction_date, description)
VALUES (?1, ?2, ?3, ?4, ` + d.date("?5") + `, ?6)
RETURNING id`,
		insertGoal: `INSERT INTO goals (user_id, target_amount_cents, target_month, target_year)
VALUES (?1, ?2, ?3, ?4)
RETURNING id`,
		transactionsBetween: `SELECT ` + transactionColumns + `
FROM transactions
WHERE user_id = ?1 AND transaction_date >= ` + d.date("?2") + ` AND transaction_date < ` + d.date("?3") + `
ORDER BY transaction_date DESC, id DESC`,
		allTransactions: `SELECT ` + transactionColumns + `
FROM transactions
WHERE user_id = ?1
ORDER BY transaction_date DESC, id DESC`,
		goalByMonth: `SELECT ` + goalColumns + `
FROM goals
WHERE user_id = ?1 AND target_month = ?2 AND target_year = ?3`,
		userGoals: `SELECT ` + goalColumns + `
FROM goals
WHERE user_id = ?1
ORDER BY target_year, target_month, id`,
		procedures: procedureQueries(d),
	}

	q.insertTransaction = d.rebind(q.insertTransaction)
	q.insertGoal = d.rebind(q.insertGoal)
	q.transactionsBetween = d.rebind(q.transactionsBetween)
	q.allTransactions = d.rebind(q.allTransactions)
	q.goalByMonth = d.rebind(q.goalByMonth)
	q.userGoals = d.rebind(q.userGoals)
	for name, sql := range q.procedures {
		q.procedures[name] = d.rebind(sql)
	}
	return q
}

// procedureQueries renders the five report procedures. Amounts are summed in
// integer cents; ratios are derived from the sums by the caller.
func procedureQueries(d Dialect) map[procedures.Name]string {
	txMonth := d.month("t.transaction_date")
	txYear := d.year("t.transaction_date")
	goalMonthStart := d.monthStart("g.target_month", "g.target_year")

	goalMonthJoin := fmt.Sprintf(`LEFT JOIN transactions t ON t.user_id = g.user_id
  AND %s = g.target_month
  AND %s = g.target_year`, txMonth, txYear)

	return map[procedures.Name]string{
		// ?1 user, ?2 year
		procedures.MonthlyExpenditureAnalysis: fmt.Sprintf(`SELECT month_number, transaction_count, total_cents,
  CASE
    WHEN LAG(total_cents) OVER (ORDER BY month_number) IS NULL THEN '%[3]s'
    WHEN total_cents > LAG(total_cents) OVER (ORDER BY month_number) THEN '%[4]s'
    WHEN total_cents < LAG(total_cents) OVER (ORDER BY month_number) THEN '%[5]s'
    ELSE '%[6]s'
  END AS trend
FROM (
  SELECT %[1]s AS month_number, COUNT(*) AS transaction_count, SUM(t.amount_cents) AS total_cents
  FROM transactions t
  WHERE t.user_id = ?1 AND t.type = 'expense' AND %[2]s = ?2
  GROUP BY %[1]s
  HAVING SUM(t.amount_cents) > 0
) m
ORDER BY month_number`,
			txMonth, txYear,
			procedures.TrendNoPrevious, procedures.TrendIncrease, procedures.TrendDecrease, procedures.TrendSame),

		// ?1 user, ?2 start date, ?3 end date
		procedures.GoalAdherenceTracking: fmt.Sprintf(`SELECT goal_id, target_month, target_year, target_cents, actual_cents,
  CASE
    WHEN actual_cents >= target_cents THEN '%[4]s'
    WHEN actual_cents * 10 >= target_cents * 8 THEN '%[5]s'
    ELSE '%[6]s'
  END AS status
FROM (
  SELECT g.id AS goal_id, g.target_month, g.target_year, g.target_amount_cents AS target_cents,
    COALESCE(SUM(%[1]s), 0) AS actual_cents
  FROM goals g
  %[2]s
  WHERE g.user_id = ?1
    AND %[3]s BETWEEN %[7]s AND %[8]s
  GROUP BY g.id, g.target_month, g.target_year, g.target_amount_cents
) a
ORDER BY target_year, target_month, goal_id`,
			signedCents, goalMonthJoin, goalMonthStart,
			procedures.AdherenceAchieved, procedures.AdherenceNearTarget, procedures.AdherenceBelowTarget,
			d.date("?2"), d.date("?3")),

		// ?1 user, ?2 today. Near goal means progress rounds to at least
		// 90.00%, i.e. current/target >= 0.89995.
		procedures.SavingsGoalProgress: fmt.Sprintf(`SELECT id, target_month, target_year, target_cents, transaction_count, current_cents,
  CASE
    WHEN current_cents >= target_cents THEN '%[4]s'
    WHEN month_start < %[8]s THEN '%[5]s'
    WHEN current_cents * 20000 >= target_cents * 17999 THEN '%[6]s'
    ELSE '%[7]s'
  END AS status
FROM (
  SELECT g.id, g.target_month, g.target_year, g.target_amount_cents AS target_cents,
    %[3]s AS month_start,
    COUNT(t.id) AS transaction_count,
    COALESCE(SUM(%[1]s), 0) AS current_cents
  FROM goals g
  %[2]s
  WHERE g.user_id = ?1
  GROUP BY g.id, g.target_month, g.target_year, g.target_amount_cents
) p
ORDER BY target_year, target_month, id`,
			signedCents, goalMonthJoin, goalMonthStart,
			procedures.SavingsAchieved, procedures.SavingsOverdue, procedures.SavingsNearGoal, procedures.SavingsInProgress,
			d.date("?2")),

		// ?1 user, ?2 start date, ?3 end date
		procedures.CategoryExpenseDistribution: fmt.Sprintf(`SELECT t.category, COUNT(*) AS transaction_count, SUM(t.amount_cents) AS total_cents,
  SUM(SUM(t.amount_cents)) OVER () AS window_cents
FROM transactions t
WHERE t.user_id = ?1 AND t.type = 'expense'
  AND t.transaction_date BETWEEN %[1]s AND %[2]s
GROUP BY t.category
HAVING SUM(t.amount_cents) > 0
ORDER BY total_cents DESC, %[3]s`,
			d.date("?2"), d.date("?3"), d.collate("t.category")),

		// ?1 user. The label thresholds are the savings rate cut-offs 20, 10
		// and 0 percent, compared without rounding.
		procedures.FinancialHealthStatus: fmt.Sprintf(`SELECT income_cents, expense_cents, transaction_count, goal_count, achieved_goals,
  CASE
    WHEN income_cents > 0 AND (income_cents - expense_cents) * 5 >= income_cents THEN '%[3]s'
    WHEN income_cents > 0 AND (income_cents - expense_cents) * 10 >= income_cents THEN '%[4]s'
    WHEN income_cents <= 0 OR income_cents - expense_cents >= 0 THEN '%[5]s'
    ELSE '%[6]s'
  END AS financial_health
FROM (
  SELECT
    (SELECT COALESCE(SUM(amount_cents), 0) FROM transactions WHERE user_id = ?1 AND type = 'income') AS income_cents,
    (SELECT COALESCE(SUM(amount_cents), 0) FROM transactions WHERE user_id = ?1 AND type = 'expense') AS expense_cents,
    (SELECT COUNT(*) FROM transactions WHERE user_id = ?1) AS transaction_count,
    (SELECT COUNT(*) FROM goals WHERE user_id = ?1) AS goal_count,
    (SELECT COUNT(*) FROM goals g
      WHERE g.user_id = ?1
        AND g.target_amount_cents <= (
          SELECT SUM(%[7]s) FROM transactions t
          WHERE t.user_id = ?1 AND %[1]s = g.target_month AND %[2]s = g.target_year
        )) AS achieved_goals
) h`,
			txMonth, txYear,
			procedures.HealthExcellent, procedures.HealthGood, procedures.HealthNeedsImprovement, procedures.HealthCritical,
			signedCents),
	}
}
