// Package analytics turns transaction snapshots into period summaries,
// category breakdowns and chart series. Every function is pure: it reads the
// slices it is given and never mutates them.
package analytics

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/Binusha25Liyanage/MoneyMate/internal/core"
)

// CategoryAmount is one category with its summed amount.
type CategoryAmount struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// CategoryTotals maps category name to summed amount, remembering the order in
// which categories were first seen.
type CategoryTotals struct {
	order  []string
	totals map[string]decimal.Decimal
}

func (c *CategoryTotals) add(category string, amount decimal.Decimal) {
	if c.totals == nil {
		c.totals = make(map[string]decimal.Decimal)
	}
	cur, ok := c.totals[category]
	if !ok {
		c.order = append(c.order, category)
	}
	c.totals[category] = cur.Add(amount)
}

// Get returns the total for category and whether it is present.
func (c CategoryTotals) Get(category string) (decimal.Decimal, bool) {
	v, ok := c.totals[category]
	return v, ok
}

// Len returns the number of categories.
func (c CategoryTotals) Len() int {
	return len(c.order)
}

// Categories returns category names in first-seen order.
func (c CategoryTotals) Categories() []string {
	return append([]string(nil), c.order...)
}

// Entries returns the totals in first-seen order.
func (c CategoryTotals) Entries() []CategoryAmount {
	out := make([]CategoryAmount, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, CategoryAmount{Category: name, Amount: c.totals[name]})
	}
	return out
}

// Top returns at most n categories by descending total. Ties keep first-seen order.
func (c CategoryTotals) Top(n int) []CategoryAmount {
	entries := c.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Amount.GreaterThan(entries[j].Amount)
	})
	if n >= 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// MarshalJSON writes a JSON object whose keys follow first-seen order.
func (c CategoryTotals) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range c.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c.totals[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// GroupByCategory sums amounts per category. Categories that do not occur in
// txs are absent from the result.
func GroupByCategory(txs []core.Transaction) CategoryTotals {
	var out CategoryTotals
	for _, tx := range txs {
		out.add(tx.Category, tx.Amount)
	}
	return out
}

// FilterByType returns the transactions of type t.
func FilterByType(txs []core.Transaction, t core.TxType) []core.Transaction {
	var out []core.Transaction
	for _, tx := range txs {
		if tx.Type == t {
			out = append(out, tx)
		}
	}
	return out
}

// Partition splits txs into income and expense subsets.
func Partition(txs []core.Transaction) (income, expense []core.Transaction) {
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			income = append(income, tx)
		case core.Expense:
			expense = append(expense, tx)
		}
	}
	return income, expense
}

// Filter returns the transactions for which keep returns true.
func Filter(txs []core.Transaction, keep func(core.Transaction) bool) []core.Transaction {
	var out []core.Transaction
	for _, tx := range txs {
		if keep(tx) {
			out = append(out, tx)
		}
	}
	return out
}

func Sum(txs []core.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total
}

func Count(txs []core.Transaction) int {
	return len(txs)
}

// Average is Sum/Count, or zero for an empty list.
func Average(txs []core.Transaction) decimal.Decimal {
	if len(txs) == 0 {
		return decimal.Zero
	}
	return Sum(txs).Div(decimal.NewFromInt(int64(len(txs))))
}

// Net is income minus expense over txs.
func Net(txs []core.Transaction) decimal.Decimal {
	net := decimal.Zero
	for _, tx := range txs {
		net = net.Add(tx.SignedAmount())
	}
	return net
}
