package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cleared-dev/tally/internal/model"
)

// ValidateTransfer checks that a transfer of amount from one account to
// another may proceed.
func (l *Ledger) ValidateTransfer(fromID, toID int, amount decimal.Decimal) error {
	if fromID == toID {
		return ErrSameAccount
	}
	from, ok := l.Account(fromID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownAccount, fromID)
	}
	if _, ok := l.Account(toID); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownAccount, toID)
	}
	if amount.IsNegative() {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	if from.Balance.LessThan(amount) {
		return fmt.Errorf("%w: balance %s, need %s", ErrInsufficientFunds, from.Balance, amount)
	}
	return nil
}

// ProcessTransfer moves amount between two accounts and records an expense
// leg on the source followed by an income leg on the destination. Both legs
// share a new transfer id.
func (l *Ledger) ProcessTransfer(ctx context.Context, date model.Date, description string, fromID, toID int, amount decimal.Decimal) (model.Transfer, error) {
	if date.IsZero() {
		return model.Transfer{}, ErrInvalidDate
	}
	if err := l.ValidateTransfer(fromID, toID, amount); err != nil {
		return model.Transfer{}, err
	}

	description = strings.TrimSpace(description)
	transferID := l.newTransferID()
	err := l.mutate(ctx, func() error {
		for _, leg := range []struct {
			account int
			typ     model.TransactionType
		}{
			{fromID, model.TypeExpense},
			{toID, model.TypeIncome},
		} {
			tx := model.Transaction{
				ID:          l.allocTransactionID(),
				Date:        date,
				Timestamp:   l.now(),
				Description: model.TransferPrefix + description,
				Category:    model.CategoryTransfer,
				Type:        leg.typ,
				Amount:      amount,
				AccountID:   leg.account,
				TransferID:  transferID,
			}
			l.transactions = append(l.transactions, tx)
			l.ApplyEffect(tx.AccountID, tx.Type, tx.Amount)
		}
		return nil
	})
	if err != nil {
		return model.Transfer{}, err
	}

	l.log.Info("transfer processed",
		zap.String("transfer_id", transferID),
		zap.Int("from", fromID),
		zap.Int("to", toID),
		zap.String("amount", amount.String()))

	for _, t := range l.Transfers() {
		if t.ID == transferID {
			return t, nil
		}
	}
	return model.Transfer{}, fmt.Errorf("transfer %s not found after commit", transferID)
}

// groupKey identifies the transfer a leg belongs to. Legs written with a
// transfer id group by it; legacy legs group by date and description.
func groupKey(t model.Transaction) string {
	if t.TransferID != "" {
		return "id\x00" + t.TransferID
	}
	return "legacy\x00" + t.Date.String() + "\x00" + t.TransferDescription()
}

// Transfers reconstructs transfers from their legs, newest first. Legacy
// legs sharing a date and description collapse into one transfer.
func (l *Ledger) Transfers() []model.Transfer {
	var order []string
	groups := make(map[string]*model.Transfer)
	for _, t := range l.transactions {
		if !t.IsTransferLeg() {
			continue
		}
		key := groupKey(t)
		tr, ok := groups[key]
		if !ok {
			tr = &model.Transfer{
				ID:          t.TransferID,
				Date:        t.Date,
				Description: t.TransferDescription(),
				Amount:      t.Amount,
				Timestamp:   t.Timestamp,
			}
			groups[key] = tr
			order = append(order, key)
		}
		if t.Type == model.TypeExpense {
			tr.FromAccountID = t.AccountID
		} else {
			tr.ToAccountID = t.AccountID
		}
	}

	out := make([]model.Transfer, 0, len(order))
	for _, key := range order {
		out = append(out, *groups[key])
	}
	SortTransfers(out)
	return out
}

// SortTransfers orders transfers newest first by the timestamp of their
// first leg, falling back to the local date. Ties keep their order.
func SortTransfers(transfers []model.Transfer) {
	sort.SliceStable(transfers, func(i, j int) bool {
		return transfers[i].SortTime().After(transfers[j].SortTime())
	})
}

// DeleteTransfer removes every transfer leg with the given date and
// description, reverting each balance effect. It returns the number of legs
// removed; zero means nothing matched.
func (l *Ledger) DeleteTransfer(ctx context.Context, date model.Date, description string) (int, error) {
	want := model.TransferPrefix + strings.TrimSpace(description)
	return l.deleteLegs(ctx, func(t model.Transaction) bool {
		return t.Date == date && t.Description == want
	})
}

// DeleteTransferByID removes both legs of the transfer with the given id.
func (l *Ledger) DeleteTransferByID(ctx context.Context, transferID string) (int, error) {
	if transferID == "" {
		return 0, nil
	}
	return l.deleteLegs(ctx, func(t model.Transaction) bool {
		return t.TransferID == transferID
	})
}

func (l *Ledger) deleteLegs(ctx context.Context, match func(model.Transaction) bool) (int, error) {
	removed := 0
	for _, t := range l.transactions {
		if t.IsTransferLeg() && match(t) {
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}

	err := l.mutate(ctx, func() error {
		kept := make([]model.Transaction, 0, len(l.transactions)-removed)
		for _, t := range l.transactions {
			if t.IsTransferLeg() && match(t) {
				l.RevertEffect(t)
				continue
			}
			kept = append(kept, t)
		}
		l.transactions = kept
		return nil
	})
	if err != nil {
		return 0, err
	}
	l.log.Info("transfer legs deleted", zap.Int("count", removed))
	return removed, nil
}
