// Package memory is an in-process ledger backend. Procedures are evaluated
// with the in-process evaluators over the stored snapshot.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/Binusha25Liyanage/MoneyMate/internal/core"
	"github.com/Binusha25Liyanage/MoneyMate/internal/procedures"
)

const (
	TransactionsFile = "transactions.json"
	GoalsFile        = "goals.json"
)

var ErrDuplicateGoal = errors.New("goal already exists for this month")

type Store struct {
	mu     sync.RWMutex
	txs    []core.Transaction
	goals  []core.Goal
	nextTx int64
	nextGl int64
	now    func() time.Time
}

func New() *Store {
	return &Store{now: time.Now}
}

// NewFromFiles seeds a store from transactions.json and goals.json under base.
// Missing files leave the store empty.
func NewFromFiles(base string) (*Store, error) {
	s := New()

	var txs []core.Transaction
	if err := readJSON(filepath.Join(base, TransactionsFile), &txs); err != nil {
		return nil, err
	}
	for _, tx := range txs {
		if _, err := s.AddTransaction(context.Background(), tx); err != nil {
			return nil, fmt.Errorf("seed transaction %d: %w", tx.ID, err)
		}
	}

	var goals []core.Goal
	if err := readJSON(filepath.Join(base, GoalsFile), &goals); err != nil {
		return nil, err
	}
	for _, g := range goals {
		if _, err := s.AddGoal(context.Background(), g); err != nil {
			return nil, fmt.Errorf("seed goal %d: %w", g.ID, err)
		}
	}
	return s, nil
}

// SetClock replaces the time source used by the savings progress report.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// AddTransaction validates and stores tx, assigning an id when it has none.
func (s *Store) AddTransaction(_ context.Context, tx core.Transaction) (int64, error) {
	if err := tx.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.ID == 0 {
		s.nextTx++
		tx.ID = s.nextTx
	} else if tx.ID > s.nextTx {
		s.nextTx = tx.ID
	}
	s.txs = append(s.txs, tx)
	return tx.ID, nil
}

// AddGoal validates and stores g. A user has at most one goal per month.
func (s *Store) AddGoal(_ context.Context, g core.Goal) (int64, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.goals {
		if existing.UserID == g.UserID && existing.TargetMonth == g.TargetMonth && existing.TargetYear == g.TargetYear {
			return 0, ErrDuplicateGoal
		}
	}
	if g.ID == 0 {
		s.nextGl++
		g.ID = s.nextGl
	} else if g.ID > s.nextGl {
		s.nextGl = g.ID
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = s.now().UTC()
	}
	s.goals = append(s.goals, g)
	return g.ID, nil
}

func (s *Store) TransactionsByMonth(_ context.Context, userID int64, month, year int) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []core.Transaction{}
	for _, tx := range s.txs {
		if tx.UserID == userID && tx.InPeriod(month, year) {
			out = append(out, tx)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *Store) AllTransactions(_ context.Context, userID int64) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.userTransactions(userID)
	sortNewestFirst(out)
	return out, nil
}

func (s *Store) GoalByUserAndMonth(_ context.Context, userID int64, month, year int) (*core.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.goals {
		if g.UserID == userID && g.TargetMonth == month && g.TargetYear == year {
			found := g
			return &found, nil
		}
	}
	return nil, nil
}

func (s *Store) UserGoals(_ context.Context, userID int64) ([]core.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.userGoals(userID)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TargetYear != out[j].TargetYear {
			return out[i].TargetYear < out[j].TargetYear
		}
		return out[i].TargetMonth < out[j].TargetMonth
	})
	return out, nil
}

func (s *Store) MonthlyExpenditureAnalysis(_ context.Context, userID int64, year int) ([]procedures.MonthlyExpenditureRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return procedures.MonthlyExpenditure(s.userTransactions(userID), year), nil
}

func (s *Store) GoalAdherenceTracking(_ context.Context, userID int64, start, end core.Date) ([]procedures.GoalAdherenceRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return procedures.GoalAdherence(s.userGoals(userID), s.userTransactions(userID), start, end), nil
}

func (s *Store) SavingsGoalProgress(_ context.Context, userID int64) ([]procedures.SavingsProgressRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return procedures.SavingsProgress(s.userGoals(userID), s.userTransactions(userID), s.now()), nil
}

func (s *Store) CategoryExpenseDistribution(_ context.Context, userID int64, start, end core.Date) ([]procedures.CategoryDistributionRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return procedures.CategoryDistribution(s.userTransactions(userID), start, end), nil
}

func (s *Store) FinancialHealthStatus(_ context.Context, userID int64) ([]procedures.FinancialHealth, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return []procedures.FinancialHealth{
		procedures.HealthStatus(s.userTransactions(userID), s.userGoals(userID)),
	}, nil
}

func (s *Store) Ping(context.Context) error {
	return nil
}

// userTransactions returns a copy; callers must hold s.mu.
func (s *Store) userTransactions(userID int64) []core.Transaction {
	out := []core.Transaction{}
	for _, tx := range s.txs {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	return out
}

// userGoals returns a copy; callers must hold s.mu.
func (s *Store) userGoals(userID int64) []core.Goal {
	out := []core.Goal{}
	for _, g := range s.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	return out
}

func sortNewestFirst(txs []core.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		a, b := txs[i].TransactionDate, txs[j].TransactionDate
		if !a.Equal(b.Time) {
			return a.After(b.Time)
		}
		return txs[i].ID > txs[j].ID
	})
}

func readJSON(path string, dst any) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
