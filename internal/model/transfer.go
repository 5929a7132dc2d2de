package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer is the user-visible view of two linked transfer legs. It is
// derived from the transaction log and never stored.
type Transfer struct {
	ID            string // transfer group id; empty for legacy legs
	Date          Date
	Description   string // without TransferPrefix
	FromAccountID int    // 0 when the expense leg is missing
	ToAccountID   int    // 0 when the income leg is missing
	Amount        decimal.Decimal
	Timestamp     time.Time // timestamp of the first leg found, may be zero
}

// SortTime is the instant transfers are ordered by.
func (t Transfer) SortTime() time.Time {
	if !t.Timestamp.IsZero() {
		return t.Timestamp
	}
	return t.Date.Time()
}
