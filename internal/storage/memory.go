package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory is a concurrency-safe in-memory store used in development mode and
// unit tests. It keeps closed account rows so retired identifiers stay
// retired, and assigns monotonically increasing transaction identifiers.
//
// Setting WriteErr makes every subsequent write fail with that error, which
// tests use to exercise abort paths.
type Memory struct {
	mu       sync.Mutex
	accounts map[string]AccountRow
	txs      []TransactionRow
	nextTxID int64

	WriteErr error
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{accounts: make(map[string]AccountRow), nextTxID: 1}
}

func (s *Memory) LoadActiveAccounts(_ context.Context) ([]AccountRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []AccountRow
	for _, row := range s.accounts {
		if row.Status == "ACTIVE" {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Memory) InsertAccount(_ context.Context, row AccountRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, s.WriteErr)
	}
	if _, exists := s.accounts[row.ID]; exists {
		return ErrDuplicateID
	}
	s.accounts[row.ID] = row
	return nil
}

func (s *Memory) MarkAccountClosed(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, s.WriteErr)
	}
	row, ok := s.accounts[id]
	if !ok || row.Status != "ACTIVE" {
		return fmt.Errorf("%w: close account %s: no active row", ErrUnavailable, id)
	}
	row.Status = "CLOSED"
	s.accounts[id] = row
	return nil
}

func (s *Memory) ApplyTransaction(_ context.Context, row TransactionRow, newBalance int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, s.WriteErr)
	}
	acct, ok := s.accounts[row.AccountID]
	if !ok || acct.Status != "ACTIVE" {
		return 0, fmt.Errorf("%w: update balance %s: no active row", ErrUnavailable, row.AccountID)
	}
	row.ID = s.nextTxID
	s.nextTxID++
	s.txs = append(s.txs, row)
	acct.Balance = newBalance
	s.accounts[row.AccountID] = acct
	return row.ID, nil
}

func (s *Memory) ApplyTransfer(_ context.Context, debit, credit TransactionRow, fromBalance, toBalance int64) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrUnavailable, s.WriteErr)
	}
	from, ok := s.accounts[debit.AccountID]
	if !ok || from.Status != "ACTIVE" {
		return 0, 0, fmt.Errorf("%w: update balance %s: no active row", ErrUnavailable, debit.AccountID)
	}
	to, ok := s.accounts[credit.AccountID]
	if !ok || to.Status != "ACTIVE" {
		return 0, 0, fmt.Errorf("%w: update balance %s: no active row", ErrUnavailable, credit.AccountID)
	}

	debit.ID = s.nextTxID
	s.nextTxID++
	credit.ID = s.nextTxID
	s.nextTxID++
	s.txs = append(s.txs, debit, credit)

	from.Balance = fromBalance
	to.Balance = toBalance
	s.accounts[debit.AccountID] = from
	s.accounts[credit.AccountID] = to
	return debit.ID, credit.ID, nil
}

func (s *Memory) TransactionsByAccount(_ context.Context, accountID string) ([]TransactionRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []TransactionRow
	for i := len(s.txs) - 1; i >= 0; i-- {
		if s.txs[i].AccountID == accountID {
			out = append(out, s.txs[i])
		}
	}
	return out, nil
}

func (s *Memory) AllTransactions(_ context.Context, limit int) ([]TransactionRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []TransactionRow
	for i := len(s.txs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.txs[i])
	}
	return out, nil
}

func (s *Memory) CountTransactions(_ context.Context, accountID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, tx := range s.txs {
		if tx.AccountID == accountID {
			count++
		}
	}
	return count, nil
}
