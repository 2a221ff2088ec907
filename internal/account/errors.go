package account

import "errors"

var (
	// ErrNotFound indicates the account does not exist or has been closed.
	ErrNotFound = errors.New("account not found")

	// ErrDuplicate indicates the identifier is already taken. Identifiers are
	// permanently retired, so a closed account's id also collides.
	ErrDuplicate = errors.New("account id already exists")
)
