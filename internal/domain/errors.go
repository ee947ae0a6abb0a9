package domain

import "errors"

var (
	// ErrInvalidQuantity rejects quantity updates below one.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrNoSession means no usable authentication credential exists; callers
	// fall back to guest-store semantics.
	ErrNoSession = errors.New("no authenticated session")
)
