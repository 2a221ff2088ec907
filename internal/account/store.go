package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/corebank/corebank/internal/storage"
	"github.com/corebank/corebank/internal/validation"
)

// Store owns the authoritative in-memory view of all active accounts and
// mirrors committed state to the backing store. Writes go through the backing
// store first; the in-memory map only ever holds durably committed state, so
// reads can be served without touching storage.
type Store struct {
	backend storage.Store
	logger  *slog.Logger

	mu       sync.RWMutex
	accounts map[string]*Account
	order    []string
	retired  map[string]struct{}
}

// New builds the store and bulk-loads every active account from the backing
// store. A failed scan is logged and leaves the store empty rather than
// partially populated; callers then see ErrNotFound instead of stale state.
func New(ctx context.Context, backend storage.Store, logger *slog.Logger) *Store {
	s := &Store{
		backend:  backend,
		logger:   logger,
		accounts: make(map[string]*Account),
		retired:  make(map[string]struct{}),
	}

	rows, err := backend.LoadActiveAccounts(ctx)
	if err != nil {
		logger.Error("load accounts, starting empty", "error", err)
		return s
	}
	for _, row := range rows {
		acct := fromRow(row)
		s.accounts[acct.ID] = &acct
		s.order = append(s.order, acct.ID)
	}
	logger.Info("accounts loaded", "count", len(rows))
	return s
}

// CreateInput carries the caller-supplied fields for a new account. Amounts
// are minor units.
type CreateInput struct {
	ID             string
	HolderName     string
	InitialBalance int64
	Kind           Kind
	Email          string
	Phone          string
}

// Create validates, normalizes and persists a new account, exposing it in the
// in-memory view only after the durable write succeeded.
func (s *Store) Create(ctx context.Context, input CreateInput) (Account, error) {
	id, err := validation.AccountID(input.ID)
	if err != nil {
		return Account{}, err
	}
	name, err := validation.HolderName(input.HolderName)
	if err != nil {
		return Account{}, err
	}
	email, err := validation.Email(input.Email)
	if err != nil {
		return Account{}, err
	}
	phone, err := validation.Phone(input.Phone)
	if err != nil {
		return Account{}, err
	}
	if err := validation.InitialBalance(input.InitialBalance); err != nil {
		return Account{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[id]; exists {
		return Account{}, fmt.Errorf("%w: %s", ErrDuplicate, id)
	}
	if _, gone := s.retired[id]; gone {
		return Account{}, fmt.Errorf("%w: %s (retired)", ErrDuplicate, id)
	}

	acct := Account{
		ID:         id,
		HolderName: name,
		Balance:    input.InitialBalance,
		Kind:       input.Kind,
		Email:      email,
		Phone:      phone,
		Status:     StatusActive,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.backend.InsertAccount(ctx, toRow(acct)); err != nil {
		if errors.Is(err, storage.ErrDuplicateID) {
			return Account{}, fmt.Errorf("%w: %s", ErrDuplicate, id)
		}
		return Account{}, err
	}

	s.accounts[id] = &acct
	s.order = append(s.order, id)
	return acct, nil
}

// Get returns a snapshot of the active account with the given id.
func (s *Store) Get(id string) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[id]
	if !ok {
		return Account{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *acct, nil
}

// List returns a snapshot of all active accounts in insertion order.
func (s *Store) List() []Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Account, 0, len(s.accounts))
	for _, id := range s.order {
		if acct, ok := s.accounts[id]; ok {
			out = append(out, *acct)
		}
	}
	return out
}

// ApplyBalance installs a new balance in the in-memory view. Only the ledger
// engine calls this, strictly after the corresponding durable write has
// committed; the cache therefore never runs ahead of the backing store.
func (s *Store) ApplyBalance(id string, balance int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	acct.Balance = balance
	return nil
}

// Close marks the account CLOSED in the backing store, then removes it from
// the active view and retires its identifier for good.
func (s *Store) Close(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := s.backend.MarkAccountClosed(ctx, id); err != nil {
		return err
	}
	delete(s.accounts, id)
	s.retired[id] = struct{}{}
	for i, ordered := range s.order {
		if ordered == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func toRow(a Account) storage.AccountRow {
	return storage.AccountRow{
		ID:         a.ID,
		HolderName: a.HolderName,
		Balance:    a.Balance,
		Kind:       string(a.Kind),
		Email:      a.Email,
		Phone:      a.Phone,
		Status:     string(a.Status),
		CreatedAt:  a.CreatedAt,
	}
}

func fromRow(row storage.AccountRow) Account {
	return Account{
		ID:         row.ID,
		HolderName: row.HolderName,
		Balance:    row.Balance,
		Kind:       Kind(row.Kind),
		Email:      row.Email,
		Phone:      row.Phone,
		Status:     Status(row.Status),
		CreatedAt:  row.CreatedAt,
	}
}
