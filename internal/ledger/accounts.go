package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/tally/internal/model"
)

// NewAccount is the input to AddAccount. Balance is the opening balance.
type NewAccount struct {
	Name    string
	Type    model.AccountType
	Balance decimal.Decimal
}

// AddAccount validates and stores a new account.
func (l *Ledger) AddAccount(ctx context.Context, na NewAccount) (model.Account, error) {
	name := strings.TrimSpace(na.Name)
	if name == "" {
		return model.Account{}, fmt.Errorf("account: %w", ErrEmptyName)
	}
	if !na.Type.Valid() {
		return model.Account{}, fmt.Errorf("%w: %q", ErrInvalidAccountType, na.Type)
	}

	var acct model.Account
	err := l.mutate(ctx, func() error {
		acct = model.Account{
			ID:      l.allocAccountID(),
			Name:    name,
			Type:    na.Type,
			Balance: na.Balance,
		}
		l.accounts = append(l.accounts, acct)
		return nil
	})
	if err != nil {
		return model.Account{}, err
	}
	l.log.Info("account added", zap.Int("account_id", acct.ID), zap.String("name", acct.Name))
	return acct, nil
}

// DeleteAccount removes an account that no transaction references.
func (l *Ledger) DeleteAccount(ctx context.Context, accountID int) error {
	i := l.accountIndex(accountID)
	if i < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownAccount, accountID)
	}
	if n := l.countReferences(accountID); n > 0 {
		return fmt.Errorf("%w: account %d is used by %d transactions", ErrAccountInUse, accountID, n)
	}
	err := l.mutate(ctx, func() error {
		l.accounts = append(l.accounts[:i:i], l.accounts[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}
	l.log.Info("account deleted", zap.Int("account_id", accountID))
	return nil
}

// Account returns the account with the given id.
func (l *Ledger) Account(accountID int) (model.Account, bool) {
	if i := l.accountIndex(accountID); i >= 0 {
		return l.accounts[i], true
	}
	return model.Account{}, false
}

// Accounts returns a copy of all accounts in creation order.
func (l *Ledger) Accounts() []model.Account {
	return append([]model.Account(nil), l.accounts...)
}

// TotalBalance sums the balance of every account.
func (l *Ledger) TotalBalance() decimal.Decimal {
	total := decimal.Zero
	for _, a := range l.accounts {
		total = total.Add(a.Balance)
	}
	return total
}

func (l *Ledger) accountIndex(accountID int) int {
	for i, a := range l.accounts {
		if a.ID == accountID {
			return i
		}
	}
	return -1
}

func (l *Ledger) countReferences(accountID int) int {
	n := 0
	for _, t := range l.transactions {
		if t.AccountID == accountID {
			n++
		}
	}
	return n
}
