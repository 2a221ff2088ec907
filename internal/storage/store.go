// Package storage defines the durable backing store consumed by the account
// store and the ledger engine. Implementations must make every Apply* call
// all-or-nothing: a transaction row and its balance update commit together or
// not at all, and the two legs of a transfer commit together or not at all.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnavailable wraps every backing store failure so callers can treat
	// the whole class uniformly. Operations that hit it are aborted, never
	// retried automatically.
	ErrUnavailable = errors.New("storage unavailable")

	// ErrDuplicateID indicates an insert collided with an existing account
	// row, active or closed. Account identifiers are never reused.
	ErrDuplicateID = errors.New("account id already exists")
)

// AccountRow is the persisted shape of an account.
type AccountRow struct {
	ID         string
	HolderName string
	Balance    int64
	Kind       string
	Email      string
	Phone      string
	Status     string
	CreatedAt  time.Time
}

// TransactionRow is the persisted shape of a ledger transaction. ID is
// assigned by the store on successful insert and is monotonically increasing.
type TransactionRow struct {
	ID           int64
	AccountID    string
	Kind         string
	Amount       int64
	BalanceAfter int64
	Description  string
	Counterparty string
	Status       string
	CreatedAt    time.Time
}

// Store is the contract every backing store implements.
type Store interface {
	// LoadActiveAccounts returns every ACTIVE account row for the startup
	// bulk load.
	LoadActiveAccounts(ctx context.Context) ([]AccountRow, error)

	// InsertAccount persists a new account row. Returns ErrDuplicateID when
	// the identifier was ever used before.
	InsertAccount(ctx context.Context, row AccountRow) error

	// MarkAccountClosed flips an account row to CLOSED without removing it,
	// permanently retiring its identifier.
	MarkAccountClosed(ctx context.Context, id string) error

	// ApplyTransaction durably records a transaction row together with the
	// account's new balance as a single unit and returns the assigned
	// transaction identifier.
	ApplyTransaction(ctx context.Context, row TransactionRow, newBalance int64) (int64, error)

	// ApplyTransfer durably records both legs of a transfer and both balance
	// updates as a single unit, returning the assigned identifiers for the
	// debit and credit rows.
	ApplyTransfer(ctx context.Context, debit, credit TransactionRow, fromBalance, toBalance int64) (int64, int64, error)

	// TransactionsByAccount returns the account's transactions, newest first.
	TransactionsByAccount(ctx context.Context, accountID string) ([]TransactionRow, error)

	// AllTransactions returns the most recent transactions across all
	// accounts, newest first, capped at limit.
	AllTransactions(ctx context.Context, limit int) ([]TransactionRow, error)

	// CountTransactions returns the number of transactions recorded for the
	// account.
	CountTransactions(ctx context.Context, accountID string) (int, error)
}
