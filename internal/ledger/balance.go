package ledger

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/tally/internal/model"
)

// ApplyEffect moves an account balance by amount: income adds, expense
// subtracts. Balances have no lower bound. An unknown account is skipped.
// The change is in memory only; callers persist it with SaveAccounts.
func (l *Ledger) ApplyEffect(accountID int, typ model.TransactionType, amount decimal.Decimal) {
	i := l.accountIndex(accountID)
	if i < 0 {
		l.log.Warn("balance effect skipped: unknown account",
			zap.Int("account_id", accountID),
			zap.String("type", string(typ)),
			zap.String("amount", amount.String()))
		return
	}
	if typ == model.TypeIncome {
		l.accounts[i].Balance = l.accounts[i].Balance.Add(amount)
	} else {
		l.accounts[i].Balance = l.accounts[i].Balance.Sub(amount)
	}
}

// RevertEffect undoes ApplyEffect for tx.
func (l *Ledger) RevertEffect(tx model.Transaction) {
	opposite := model.TypeIncome
	if tx.Type == model.TypeIncome {
		opposite = model.TypeExpense
	}
	l.ApplyEffect(tx.AccountID, opposite, tx.Amount)
}
