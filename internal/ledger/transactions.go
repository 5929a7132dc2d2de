package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/tally/internal/model"
)

// NewTransaction is the input to AddTransaction.
type NewTransaction struct {
	Date        model.Date
	Description string
	Category    string
	Type        model.TransactionType
	Amount      decimal.Decimal
	AccountID   int
	Reference   string // statement row id; see ImportTransactions
}

// validateTransaction checks nt against the current accounts.
func (l *Ledger) validateTransaction(nt NewTransaction) error {
	if nt.Date.IsZero() {
		return ErrInvalidDate
	}
	if !nt.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, nt.Type)
	}
	if nt.Amount.IsNegative() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, nt.Amount)
	}
	if strings.TrimSpace(nt.Category) == model.CategoryTransfer {
		return ErrReservedCategory
	}
	if l.accountIndex(nt.AccountID) < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownAccount, nt.AccountID)
	}
	return nil
}

// AddTransaction records a transaction and applies its balance effect.
// Expenses may drive a balance negative.
func (l *Ledger) AddTransaction(ctx context.Context, nt NewTransaction) (model.Transaction, error) {
	txns, err := l.AddTransactions(ctx, []NewTransaction{nt})
	if err != nil {
		return model.Transaction{}, err
	}
	return txns[0], nil
}

// AddTransactions records several transactions in one commit. Either all
// are recorded or none is.
func (l *Ledger) AddTransactions(ctx context.Context, nts []NewTransaction) ([]model.Transaction, error) {
	for i, nt := range nts {
		if err := l.validateTransaction(nt); err != nil {
			if len(nts) == 1 {
				return nil, err
			}
			return nil, fmt.Errorf("transaction %d: %w", i+1, err)
		}
	}

	added := make([]model.Transaction, 0, len(nts))
	err := l.mutate(ctx, func() error {
		for _, nt := range nts {
			tx := model.Transaction{
				ID:          l.allocTransactionID(),
				Date:        nt.Date,
				Timestamp:   l.now(),
				Description: strings.TrimSpace(nt.Description),
				Category:    strings.TrimSpace(nt.Category),
				Type:        nt.Type,
				Amount:      nt.Amount,
				AccountID:   nt.AccountID,
				Reference:   nt.Reference,
			}
			l.transactions = append(l.transactions, tx)
			l.ApplyEffect(tx.AccountID, tx.Type, tx.Amount)
			added = append(added, tx)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.log.Info("transactions added", zap.Int("count", len(added)))
	return added, nil
}

// ImportTransactions records statement rows, skipping any whose Reference is
// already recorded on the same account, and returns the added transactions
// and the number skipped. Rows without a Reference are always added.
func (l *Ledger) ImportTransactions(ctx context.Context, nts []NewTransaction) ([]model.Transaction, int, error) {
	type refKey struct {
		account int
		ref     string
	}
	seen := make(map[refKey]bool)
	for _, t := range l.transactions {
		if t.Reference != "" {
			seen[refKey{t.AccountID, t.Reference}] = true
		}
	}

	fresh := make([]NewTransaction, 0, len(nts))
	for _, nt := range nts {
		if nt.Reference != "" {
			k := refKey{nt.AccountID, nt.Reference}
			if seen[k] {
				continue
			}
			seen[k] = true
		}
		fresh = append(fresh, nt)
	}
	skipped := len(nts) - len(fresh)
	if len(fresh) == 0 {
		return nil, skipped, nil
	}
	added, err := l.AddTransactions(ctx, fresh)
	if err != nil {
		return nil, 0, err
	}
	if skipped > 0 {
		l.log.Info("already imported rows skipped", zap.Int("count", skipped))
	}
	return added, skipped, nil
}

// DeleteTransaction reverts and removes the transaction with the given id.
// A transfer leg takes every leg of its transfer with it, so a transfer is
// never left half deleted. It reports false when no such transaction exists.
func (l *Ledger) DeleteTransaction(ctx context.Context, txID int) (bool, error) {
	i := l.transactionIndex(txID)
	if i < 0 {
		return false, nil
	}
	if leg := l.transactions[i]; leg.IsTransferLeg() {
		key := groupKey(leg)
		n, err := l.deleteLegs(ctx, func(t model.Transaction) bool { return groupKey(t) == key })
		return n > 0, err
	}
	err := l.mutate(ctx, func() error {
		tx := l.transactions[i]
		l.RevertEffect(tx)
		l.transactions = append(l.transactions[:i:i], l.transactions[i+1:]...)
		return nil
	})
	if err != nil {
		return false, err
	}
	l.log.Info("transaction deleted", zap.Int("transaction_id", txID))
	return true, nil
}

// Transaction returns the transaction with the given id.
func (l *Ledger) Transaction(txID int) (model.Transaction, bool) {
	if i := l.transactionIndex(txID); i >= 0 {
		return l.transactions[i], true
	}
	return model.Transaction{}, false
}

// Transactions returns a copy of the log in insertion order.
func (l *Ledger) Transactions() []model.Transaction {
	return append([]model.Transaction(nil), l.transactions...)
}

func (l *Ledger) transactionIndex(txID int) int {
	for i, t := range l.transactions {
		if t.ID == txID {
			return i
		}
	}
	return -1
}
