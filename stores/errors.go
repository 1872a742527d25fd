package stores

import "errors"

var (
	// ErrNotFound means the target document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the requester does not own the target.
	ErrForbidden = errors.New("forbidden")
	// ErrDuplicateEmail means the email unique constraint was violated on insert.
	ErrDuplicateEmail = errors.New("email already registered")
)
