package ledger

import "errors"

var (
	// ErrInvalidAmount indicates a non-positive operation amount.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds covers both rejection causes of a debit: the
	// amount exceeds the available balance, or the remainder would fall below
	// the minimum balance floor. The wrapped message states which.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrSameAccount indicates a transfer whose source and destination are
	// the same account.
	ErrSameAccount = errors.New("cannot transfer to the same account")
)
