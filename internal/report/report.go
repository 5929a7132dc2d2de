// Package report derives month-scoped views from the transaction log.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
)

// DefaultRecent is the number of rows Recent returns when n <= 0.
const DefaultRecent = 5

// ByMonth returns the transactions dated within the given calendar month,
// first to last day inclusive, in log order.
func ByMonth(txns []model.Transaction, year int, month time.Month) []model.Transaction {
	var out []model.Transaction
	for _, t := range txns {
		if t.Date.In(year, month) {
			out = append(out, t)
		}
	}
	return out
}

// Total sums the amounts of the given type, ignoring transfer legs.
func Total(txns []model.Transaction, typ model.TransactionType) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		if t.Type == typ && !t.IsTransferLeg() {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// SortByDate returns a copy ordered newest first by timestamp, falling back
// to the local date for legacy rows. Ties keep log order.
func SortByDate(txns []model.Transaction) []model.Transaction {
	out := append([]model.Transaction(nil), txns...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EffectiveTime().After(out[j].EffectiveTime())
	})
	return out
}

// Recent returns the n newest transactions of the month.
func Recent(txns []model.Transaction, year int, month time.Month, n int) []model.Transaction {
	if n <= 0 {
		n = DefaultRecent
	}
	sorted := SortByDate(ByMonth(txns, year, month))
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// Filter narrows a transaction list. Zero fields match everything.
type Filter struct {
	Type      model.TransactionType
	Category  string
	AccountID int
	DateFrom  string // YYYY-MM-DD, inclusive
	DateTo    string // YYYY-MM-DD, inclusive
}

// Match reports whether t satisfies every set field of f.
func (f Filter) Match(t model.Transaction) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.AccountID != 0 && t.AccountID != f.AccountID {
		return false
	}
	date := t.Date.String()
	if f.DateFrom != "" && date < f.DateFrom {
		return false
	}
	if f.DateTo != "" && date > f.DateTo {
		return false
	}
	return true
}

// ApplyFilters returns the transactions matching f, in input order.
func ApplyFilters(txns []model.Transaction, f Filter) []model.Transaction {
	var out []model.Transaction
	for _, t := range txns {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// Categories returns the distinct categories in use, sorted.
func Categories(txns []model.Transaction) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range txns {
		if t.Category == "" || seen[t.Category] {
			continue
		}
		seen[t.Category] = true
		out = append(out, t.Category)
	}
	sort.Strings(out)
	return out
}
