package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Postgres persists accounts and transactions in PostgreSQL. Each Apply*
// operation runs inside a single database transaction so the ledger never
// observes a transaction row without its balance update or a transfer leg
// without its counterpart.
type Postgres struct {
	db *pgxpool.Pool
}

// NewPostgres constructs a PostgreSQL-backed store.
func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

// EnsureSchema creates the accounts and transactions tables when absent.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	const ddl = `
        CREATE TABLE IF NOT EXISTS accounts (
            account_id  TEXT PRIMARY KEY,
            holder_name TEXT NOT NULL,
            balance     BIGINT NOT NULL,
            kind        TEXT NOT NULL,
            email       TEXT NOT NULL,
            phone       TEXT NOT NULL,
            status      TEXT NOT NULL,
            created_at  TIMESTAMPTZ NOT NULL
        );
        CREATE TABLE IF NOT EXISTS transactions (
            transaction_id BIGSERIAL PRIMARY KEY,
            account_id     TEXT NOT NULL REFERENCES accounts(account_id),
            kind           TEXT NOT NULL,
            amount         BIGINT NOT NULL,
            balance_after  BIGINT NOT NULL,
            description    TEXT NOT NULL,
            counterparty   TEXT NOT NULL DEFAULT '',
            status         TEXT NOT NULL,
            created_at     TIMESTAMPTZ NOT NULL
        );
        CREATE INDEX IF NOT EXISTS idx_transactions_account
            ON transactions (account_id, created_at DESC);`
	if _, err := s.db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("%w: ensure schema: %v", ErrUnavailable, err)
	}
	return nil
}

// LoadActiveAccounts returns every ACTIVE account row.
func (s *Postgres) LoadActiveAccounts(ctx context.Context) ([]AccountRow, error) {
	const query = `SELECT account_id, holder_name, balance, kind, email, phone, status, created_at
        FROM accounts WHERE status = 'ACTIVE' ORDER BY created_at`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: load accounts: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var out []AccountRow
	for rows.Next() {
		var row AccountRow
		if err := rows.Scan(&row.ID, &row.HolderName, &row.Balance, &row.Kind,
			&row.Email, &row.Phone, &row.Status, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan account: %v", ErrUnavailable, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: load accounts: %v", ErrUnavailable, err)
	}
	return out, nil
}

// InsertAccount persists a new account row.
func (s *Postgres) InsertAccount(ctx context.Context, row AccountRow) error {
	const query = `INSERT INTO accounts (account_id, holder_name, balance, kind, email, phone, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.db.Exec(ctx, query, row.ID, row.HolderName, row.Balance, row.Kind,
		row.Email, row.Phone, row.Status, row.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateID
		}
		return fmt.Errorf("%w: insert account %s: %v", ErrUnavailable, row.ID, err)
	}
	return nil
}

// MarkAccountClosed retires an account identifier, keeping the row for
// historical reporting.
func (s *Postgres) MarkAccountClosed(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `UPDATE accounts SET status = 'CLOSED' WHERE account_id = $1 AND status = 'ACTIVE'`, id)
	if err != nil {
		return fmt.Errorf("%w: close account %s: %v", ErrUnavailable, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: close account %s: no active row", ErrUnavailable, id)
	}
	return nil
}

// ApplyTransaction inserts the transaction row and updates the account
// balance in one database transaction.
func (s *Postgres) ApplyTransaction(ctx context.Context, row TransactionRow, newBalance int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("%w: begin: %v", ErrUnavailable, err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	id, err := insertTransaction(ctx, tx, row)
	if err != nil {
		return 0, err
	}
	if err := updateBalance(ctx, tx, row.AccountID, newBalance); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%w: commit: %v", ErrUnavailable, err)
	}
	return id, nil
}

// ApplyTransfer inserts both transfer legs and updates both balances in one
// database transaction.
func (s *Postgres) ApplyTransfer(ctx context.Context, debit, credit TransactionRow, fromBalance, toBalance int64) (int64, int64, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, 0, fmt.Errorf("%w: begin: %v", ErrUnavailable, err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	debitID, err := insertTransaction(ctx, tx, debit)
	if err != nil {
		return 0, 0, err
	}
	creditID, err := insertTransaction(ctx, tx, credit)
	if err != nil {
		return 0, 0, err
	}
	if err := updateBalance(ctx, tx, debit.AccountID, fromBalance); err != nil {
		return 0, 0, err
	}
	if err := updateBalance(ctx, tx, credit.AccountID, toBalance); err != nil {
		return 0, 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("%w: commit: %v", ErrUnavailable, err)
	}
	return debitID, creditID, nil
}

// TransactionsByAccount returns the account's transactions, newest first.
func (s *Postgres) TransactionsByAccount(ctx context.Context, accountID string) ([]TransactionRow, error) {
	const query = `SELECT transaction_id, account_id, kind, amount, balance_after, description, counterparty, status, created_at
        FROM transactions WHERE account_id = $1 ORDER BY created_at DESC, transaction_id DESC`
	rows, err := s.db.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("%w: query transactions: %v", ErrUnavailable, err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// AllTransactions returns the most recent transactions across all accounts.
func (s *Postgres) AllTransactions(ctx context.Context, limit int) ([]TransactionRow, error) {
	const query = `SELECT transaction_id, account_id, kind, amount, balance_after, description, counterparty, status, created_at
        FROM transactions ORDER BY created_at DESC, transaction_id DESC LIMIT $1`
	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: query transactions: %v", ErrUnavailable, err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// CountTransactions returns the number of recorded transactions for the account.
func (s *Postgres) CountTransactions(ctx context.Context, accountID string) (int, error) {
	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE account_id = $1`, accountID).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: count transactions: %v", ErrUnavailable, err)
	}
	return count, nil
}

func insertTransaction(ctx context.Context, tx pgx.Tx, row TransactionRow) (int64, error) {
	const query = `INSERT INTO transactions (account_id, kind, amount, balance_after, description, counterparty, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING transaction_id`
	var id int64
	if err := tx.QueryRow(ctx, query, row.AccountID, row.Kind, row.Amount, row.BalanceAfter,
		row.Description, row.Counterparty, row.Status, row.CreatedAt.UTC()).Scan(&id); err != nil {
		return 0, fmt.Errorf("%w: insert transaction: %v", ErrUnavailable, err)
	}
	return id, nil
}

func updateBalance(ctx context.Context, tx pgx.Tx, accountID string, balance int64) error {
	tag, err := tx.Exec(ctx, `UPDATE accounts SET balance = $1 WHERE account_id = $2 AND status = 'ACTIVE'`, balance, accountID)
	if err != nil {
		return fmt.Errorf("%w: update balance %s: %v", ErrUnavailable, accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: update balance %s: no active row", ErrUnavailable, accountID)
	}
	return nil
}

func scanTransactions(rows pgx.Rows) ([]TransactionRow, error) {
	var out []TransactionRow
	for rows.Next() {
		var row TransactionRow
		if err := rows.Scan(&row.ID, &row.AccountID, &row.Kind, &row.Amount, &row.BalanceAfter,
			&row.Description, &row.Counterparty, &row.Status, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan transaction: %v", ErrUnavailable, err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read transactions: %v", ErrUnavailable, err)
	}
	return out, nil
}
