package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/tally/internal/model"
)

// NoAccount is shown for transactions whose account no longer exists.
const NoAccount = "N/A"

// Summary is the dashboard for one month.
type Summary struct {
	Year         int
	Month        time.Month
	Income       decimal.Decimal
	Expense      decimal.Decimal
	Net          decimal.Decimal
	TotalBalance decimal.Decimal
	Accounts     []model.Account
	Recent       []model.Transaction
}

// Dashboard builds the month summary: totals excluding transfers, the
// balance across all accounts, and the n newest transactions.
func Dashboard(accounts []model.Account, txns []model.Transaction, year int, month time.Month, n int) Summary {
	monthly := ByMonth(txns, year, month)
	income := Total(monthly, model.TypeIncome)
	expense := Total(monthly, model.TypeExpense)
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance)
	}
	return Summary{
		Year:         year,
		Month:        month,
		Income:       income,
		Expense:      expense,
		Net:          income.Sub(expense),
		TotalBalance: total,
		Accounts:     append([]model.Account(nil), accounts...),
		Recent:       Recent(txns, year, month, n),
	}
}

// Row is one transaction joined with its account name. Amount is signed:
// negative for expenses.
type Row struct {
	Transaction model.Transaction
	AccountName string
	Amount      decimal.Decimal
}

// MonthReport lists the month's transactions newest first.
func MonthReport(accounts []model.Account, txns []model.Transaction, year int, month time.Month) []Row {
	names := AccountNames(accounts)
	sorted := SortByDate(ByMonth(txns, year, month))
	rows := make([]Row, 0, len(sorted))
	for _, t := range sorted {
		rows = append(rows, Row{
			Transaction: t,
			AccountName: names.Name(t.AccountID),
			Amount:      Signed(t),
		})
	}
	return rows
}

// Signed returns the amount negated for expenses.
func Signed(t model.Transaction) decimal.Decimal {
	if t.Type == model.TypeExpense {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Names maps account ids to names.
type Names map[int]string

// AccountNames indexes accounts by id.
func AccountNames(accounts []model.Account) Names {
	names := make(Names, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}
	return names
}

// Name returns the account name, or NoAccount.
func (n Names) Name(id int) string {
	if name, ok := n[id]; ok {
		return name
	}
	return NoAccount
}

// CategoryTotal is one slice of the expense breakdown.
type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
}

// ExpensesByCategory totals expenses per category, excluding transfers,
// largest first.
func ExpensesByCategory(txns []model.Transaction) []CategoryTotal {
	totals := make(map[string]decimal.Decimal)
	for _, t := range txns {
		if t.Type != model.TypeExpense || t.IsTransferLeg() {
			continue
		}
		totals[t.Category] = totals[t.Category].Add(t.Amount)
	}
	out := make([]CategoryTotal, 0, len(totals))
	for c, amt := range totals {
		out = append(out, CategoryTotal{Category: c, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// MonthTotals is one point of the income/expense series.
type MonthTotals struct {
	Year    int
	Month   time.Month
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// MonthlySeries returns income and expense totals for the count months
// ending at year/month, oldest first.
func MonthlySeries(txns []model.Transaction, year int, month time.Month, count int) []MonthTotals {
	if count <= 0 {
		count = 1
	}
	start := time.Date(year, month-time.Month(count-1), 1, 0, 0, 0, 0, time.Local)
	out := make([]MonthTotals, 0, count)
	for i := 0; i < count; i++ {
		m := start.AddDate(0, i, 0)
		monthly := ByMonth(txns, m.Year(), m.Month())
		out = append(out, MonthTotals{
			Year:    m.Year(),
			Month:   m.Month(),
			Income:  Total(monthly, model.TypeIncome),
			Expense: Total(monthly, model.TypeExpense),
		})
	}
	return out
}
