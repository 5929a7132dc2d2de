package users

import (
	"fmt"

	"github.com/cleared-dev/tally/internal/model"
)

var (
	ErrEmptyUsername      = fmt.Errorf("%w: username is required", model.ErrValidation)
	ErrEmptyPassword      = fmt.Errorf("%w: password is required", model.ErrValidation)
	ErrPasswordMismatch   = fmt.Errorf("%w: passwords do not match", model.ErrValidation)
	ErrDuplicateUser      = fmt.Errorf("%w: username already exists", model.ErrValidation)
	ErrUnknownUser        = fmt.Errorf("%w: user does not exist", model.ErrValidation)
	ErrInvalidRole        = fmt.Errorf("%w: role must be admin or normal", model.ErrValidation)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", model.ErrValidation)
	ErrForbidden          = fmt.Errorf("%w: only administrators can manage users", model.ErrValidation)
	ErrDeleteSelf         = fmt.Errorf("%w: cannot delete your own user", model.ErrValidation)
)
