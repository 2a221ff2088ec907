package ledger

import (
	"time"

	"github.com/corebank/corebank/internal/storage"
)

// Kind identifies the signed effect of a transaction on its account balance.
type Kind string

const (
	KindDeposit     Kind = "DEPOSIT"
	KindWithdrawal  Kind = "WITHDRAWAL"
	KindTransferOut Kind = "TRANSFER_OUT"
	KindTransferIn  Kind = "TRANSFER_IN"
)

// Status is the outcome recorded on a transaction. Rejected operations never
// produce a record, so the engine only ever writes StatusSuccess; FAILED and
// REVERSED are reserved for future flows.
type Status string

const StatusSuccess Status = "SUCCESS"

// Transaction is an immutable ledger record. ID is assigned by the backing
// store on successful persistence and is monotonically increasing.
// BalanceAfter is a snapshot of the account balance immediately after the
// operation committed; it is never recomputed.
type Transaction struct {
	ID           int64     `json:"id"`
	AccountID    string    `json:"account_id"`
	Kind         Kind      `json:"kind"`
	Amount       int64     `json:"amount"`
	BalanceAfter int64     `json:"balance_after"`
	Description  string    `json:"description"`
	Counterparty string    `json:"counterparty,omitempty"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

func toRow(t Transaction) storage.TransactionRow {
	return storage.TransactionRow{
		ID:           t.ID,
		AccountID:    t.AccountID,
		Kind:         string(t.Kind),
		Amount:       t.Amount,
		BalanceAfter: t.BalanceAfter,
		Description:  t.Description,
		Counterparty: t.Counterparty,
		Status:       string(t.Status),
		CreatedAt:    t.CreatedAt,
	}
}

func fromRow(row storage.TransactionRow) Transaction {
	return Transaction{
		ID:           row.ID,
		AccountID:    row.AccountID,
		Kind:         Kind(row.Kind),
		Amount:       row.Amount,
		BalanceAfter: row.BalanceAfter,
		Description:  row.Description,
		Counterparty: row.Counterparty,
		Status:       Status(row.Status),
		CreatedAt:    row.CreatedAt,
	}
}

func fromRows(rows []storage.TransactionRow) []Transaction {
	out := make([]Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromRow(row))
	}
	return out
}
