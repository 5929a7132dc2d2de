package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a transaction relative to its account.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Valid reports whether t is income or expense.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Label returns the user-facing label used in reports and exports.
func (t TransactionType) Label() string {
	if t == TypeIncome {
		return "Ingreso"
	}
	return "Gasto"
}

// CategoryTransfer marks both legs of a transfer.
const CategoryTransfer = "Transferencia"

// TransferPrefix is prepended to the description of every transfer leg.
const TransferPrefix = "Transferencia: "

// Transaction is one entry of financeData_<user>_transactions.
type Transaction struct {
	ID          int             `json:"id"`
	Date        Date            `json:"date"`
	Timestamp   time.Time       `json:"timestamp,omitzero"` // zero on legacy records
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Type        TransactionType `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	AccountID   int             `json:"accountId"`
	TransferID  string          `json:"transferId,omitempty"`
	Reference   string          `json:"reference,omitempty"` // bank statement row, set by imports
}

// IsTransferLeg reports whether the transaction is one side of a transfer.
func (t Transaction) IsTransferLeg() bool {
	return t.Category == CategoryTransfer
}

// TransferDescription returns the description with the transfer prefix removed.
func (t Transaction) TransferDescription() string {
	return strings.TrimPrefix(t.Description, TransferPrefix)
}

// EffectiveTime is the instant used to order transactions: the creation
// timestamp when present, otherwise local midnight of the transaction date.
func (t Transaction) EffectiveTime() time.Time {
	if !t.Timestamp.IsZero() {
		return t.Timestamp
	}
	return t.Date.Time()
}
