package model

import "errors"

// Error kinds. Concrete errors wrap one of these so callers can classify
// them with errors.Is.
var (
	// ErrValidation marks a rejected operation caused by bad input. Nothing
	// was mutated.
	ErrValidation = errors.New("validation failed")

	// ErrReferential marks an operation rejected because other records still
	// reference the target.
	ErrReferential = errors.New("referential constraint")
)
