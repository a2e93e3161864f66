package category

import "errors"

// Typed failures returned by resolver CRUD operations. Callers match with
// errors.Is; nothing in this package panics across the engine boundary.
var (
	ErrDuplicateCategory = errors.New("category already exists")
	ErrUnknownCategory   = errors.New("unknown category")
	ErrNotDeletable      = errors.New("built-in categories cannot be deleted")
	ErrValidation        = errors.New("invalid category input")
)
