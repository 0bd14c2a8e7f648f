package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Binusha25Liyanage/MoneyMate/internal/core"
)

var ErrSubCentAmount = errors.New("amount has more than two decimal places")

// Repository reads transactions and goals from a SQL store and runs the report
// procedures inside it.
type Repository struct {
	db      *sql.DB
	dialect Dialect
	q       queries
	now     func() time.Time
}

type Option func(*Repository)

// WithClock sets the time source used for "today" in date-relative reports.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

func NewRepository(db *sql.DB, d Dialect, opts ...Option) *Repository {
	r := &Repository{
		db:      db,
		dialect: d,
		q:       newQueries(d),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) Dialect() Dialect {
	return r.dialect
}

func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", r.dialect, err)
	}
	return nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertTransaction validates and stores tx, returning its new id.
func (r *Repository) InsertTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}
	cents, err := toCents(tx.Amount)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.db.QueryRowContext(ctx, r.q.insertTransaction,
		tx.UserID, cents, string(tx.Type), tx.Category, tx.TransactionDate.String(), tx.Description,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	slog.DebugContext(ctx, "Transaction saved",
		"id", id,
		"user_id", tx.UserID,
		"type", tx.Type,
		"amount_cents", cents)

	return id, nil
}

// InsertGoal validates and stores g, returning its new id.
func (r *Repository) InsertGoal(ctx context.Context, g core.Goal) (int64, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}
	cents, err := toCents(g.TargetAmount)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.db.QueryRowContext(ctx, r.q.insertGoal, g.UserID, cents, g.TargetMonth, g.TargetYear).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert goal: %w", err)
	}
	return id, nil
}

func (r *Repository) TransactionsByMonth(ctx context.Context, userID int64, month, year int) ([]core.Transaction, error) {
	if !core.ValidMonth(month) {
		return nil, core.ErrInvalidMonth
	}
	from := core.MonthStart(year, month)
	to := core.DateOf(from.AddDate(0, 1, 0))

	rows, err := r.db.QueryContext(ctx, r.q.transactionsBetween, userID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("get transactions by month: %w", err)
	}
	return scanTransactions(rows)
}

func (r *Repository) AllTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, r.q.allTransactions, userID)
	if err != nil {
		return nil, fmt.Errorf("get all transactions: %w", err)
	}
	return scanTransactions(rows)
}

func (r *Repository) GoalByUserAndMonth(ctx context.Context, userID int64, month, year int) (*core.Goal, error) {
	row := r.db.QueryRowContext(ctx, r.q.goalByMonth, userID, month, year)
	g, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get goal by month: %w", err)
	}
	return &g, nil
}

func (r *Repository) UserGoals(ctx context.Context, userID int64) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx, r.q.userGoals, userID)
	if err != nil {
		return nil, fmt.Errorf("get user goals: %w", err)
	}
	defer rows.Close()

	goals := []core.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return goals, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	defer rows.Close()

	txs := []core.Transaction{}
	for rows.Next() {
		var (
			tx    core.Transaction
			cents int64
			typ   string
		)
		if err := rows.Scan(&tx.ID, &tx.UserID, &cents, &typ, &tx.Category, &tx.TransactionDate, &tx.Description); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Amount = fromCents(cents)
		tx.Type = core.TxType(typ)
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

func scanGoal(s scanner) (core.Goal, error) {
	var (
		g       core.Goal
		cents   int64
		created timestamp
	)
	if err := s.Scan(&g.ID, &g.UserID, &cents, &g.TargetMonth, &g.TargetYear, &created); err != nil {
		return core.Goal{}, err
	}
	g.TargetAmount = fromCents(cents)
	g.CreatedAt = created.Time
	return g, nil
}

func toCents(d decimal.Decimal) (int64, error) {
	shifted := d.Shift(2)
	if !shifted.IsInteger() {
		return 0, ErrSubCentAmount
	}
	return shifted.IntPart(), nil
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

// timestamp scans TIMESTAMP columns, which SQLite may hand back as text.
type timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *timestamp) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return fmt.Errorf("scan timestamp: unsupported type %T", src)
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("scan timestamp: unrecognised value %q", s)
}
