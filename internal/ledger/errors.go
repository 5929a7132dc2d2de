package ledger

import (
	"fmt"

	"github.com/cleared-dev/tally/internal/model"
)

var (
	ErrSameAccount        = fmt.Errorf("%w: cannot transfer to the same account", model.ErrValidation)
	ErrUnknownAccount     = fmt.Errorf("%w: unknown account", model.ErrValidation)
	ErrInsufficientFunds  = fmt.Errorf("%w: insufficient funds in source account", model.ErrValidation)
	ErrInvalidAmount      = fmt.Errorf("%w: amount must not be negative", model.ErrValidation)
	ErrInvalidType        = fmt.Errorf("%w: transaction type must be income or expense", model.ErrValidation)
	ErrInvalidAccountType = fmt.Errorf("%w: unknown account type", model.ErrValidation)
	ErrInvalidDate        = fmt.Errorf("%w: date is required", model.ErrValidation)
	ErrEmptyName          = fmt.Errorf("%w: name is required", model.ErrValidation)
	ErrReservedCategory   = fmt.Errorf("%w: category %q is reserved for transfers", model.ErrValidation, model.CategoryTransfer)

	ErrAccountInUse = fmt.Errorf("%w: account has transactions", model.ErrReferential)
)
