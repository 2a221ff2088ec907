package account

import (
	"context"
	"errors"
	"testing"

	"github.com/corebank/corebank/internal/logging"
	"github.com/corebank/corebank/internal/storage"
	"github.com/corebank/corebank/internal/validation"
)

func newTestStore(t *testing.T) (*Store, *storage.Memory) {
	t.Helper()
	mem := storage.NewMemory()
	return New(context.Background(), mem, logging.Discard()), mem
}

func validInput(id string) CreateInput {
	return CreateInput{
		ID:             id,
		HolderName:     "Asha Rao",
		InitialBalance: 1000,
		Kind:           KindSavings,
		Email:          "asha@example.com",
		Phone:          "9876543210",
	}
}

func TestCreateNormalizesInput(t *testing.T) {
	store, _ := newTestStore(t)

	acct, err := store.Create(context.Background(), CreateInput{
		ID:             " acc001 ",
		HolderName:     "asha   rao",
		InitialBalance: 0,
		Kind:           KindCurrent,
		Email:          " Asha@Example.COM ",
		Phone:          "98765-43210",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if acct.ID != "ACC001" || acct.HolderName != "Asha Rao" ||
		acct.Email != "asha@example.com" || acct.Phone != "9876543210" {
		t.Fatalf("input not normalized: %+v", acct)
	}
	if acct.Status != StatusActive {
		t.Fatalf("expected ACTIVE status, got %s", acct.Status)
	}

	got, err := store.Get("ACC001")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != acct {
		t.Fatalf("stored snapshot differs: %+v vs %+v", got, acct)
	}
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	bad := []CreateInput{
		{ID: "A1", HolderName: "Asha Rao", Kind: KindSavings, Email: "asha@example.com", Phone: "9876543210"},
		{ID: "ACC001", HolderName: "A", Kind: KindSavings, Email: "asha@example.com", Phone: "9876543210"},
		{ID: "ACC001", HolderName: "Asha Rao", Kind: KindSavings, Email: "nope", Phone: "9876543210"},
		{ID: "ACC001", HolderName: "Asha Rao", Kind: KindSavings, Email: "asha@example.com", Phone: "12345"},
		{ID: "ACC001", HolderName: "Asha Rao", InitialBalance: -1, Kind: KindSavings, Email: "asha@example.com", Phone: "9876543210"},
	}
	for _, input := range bad {
		if _, err := store.Create(ctx, input); !errors.Is(err, validation.ErrInvalid) {
			t.Fatalf("input %+v expected ErrInvalid, got %v", input, err)
		}
	}
	if len(store.List()) != 0 {
		t.Fatalf("rejected inputs must not create accounts")
	}
}

func TestCreateDuplicate(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, validInput("ACC001")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Create(ctx, validInput("acc001")); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestCloseRetiresIdentifier(t *testing.T) {
	store, mem := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, validInput("ACC001")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Close(ctx, "ACC001"); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := store.Get("ACC001"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("closed account still readable: %v", err)
	}
	if _, err := store.Create(ctx, validInput("ACC001")); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("retired identifier was reused: %v", err)
	}

	// The closed row survives in the backing store, so a fresh process
	// rejects the identifier too.
	reloaded := New(ctx, mem, logging.Discard())
	if _, err := reloaded.Create(ctx, validInput("ACC001")); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("retired identifier reused after reload: %v", err)
	}
}

func TestCloseUnknownAccount(t *testing.T) {
	store, _ := newTestStore(t)
	if err := store.Close(context.Background(), "ACC999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateWriteFailureLeavesNoState(t *testing.T) {
	store, mem := newTestStore(t)
	ctx := context.Background()

	mem.WriteErr = errors.New("disk full")
	if _, err := store.Create(ctx, validInput("ACC001")); !errors.Is(err, storage.ErrUnavailable) {
		t.Fatalf("expected storage error, got %v", err)
	}
	mem.WriteErr = nil

	if _, err := store.Get("ACC001"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("aborted create left state behind: %v", err)
	}
	if _, err := store.Create(ctx, validInput("ACC001")); err != nil {
		t.Fatalf("retry after aborted create: %v", err)
	}
}

func TestListInsertionOrder(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"ACC003", "ACC001", "ACC002"} {
		if _, err := store.Create(ctx, validInput(id)); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	list := store.List()
	if len(list) != 3 {
		t.Fatalf("expected 3 accounts, got %d", len(list))
	}
	for i, want := range []string{"ACC003", "ACC001", "ACC002"} {
		if list[i].ID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, list[i].ID)
		}
	}
}

type failingLoader struct {
	*storage.Memory
}

func (f failingLoader) LoadActiveAccounts(context.Context) ([]storage.AccountRow, error) {
	return nil, storage.ErrUnavailable
}

func TestLoadFailureStartsEmpty(t *testing.T) {
	store := New(context.Background(), failingLoader{storage.NewMemory()}, logging.Discard())
	if len(store.List()) != 0 {
		t.Fatalf("expected empty store after failed load")
	}
	if _, err := store.Get("ACC001"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReloadSeesCommittedBalances(t *testing.T) {
	store, mem := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, validInput("ACC001")); err != nil {
		t.Fatalf("create: %v", err)
	}
	row := storage.TransactionRow{AccountID: "ACC001", Kind: "DEPOSIT", Amount: 500, BalanceAfter: 1500, Status: "SUCCESS"}
	if _, err := mem.ApplyTransaction(ctx, row, 1500); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if err := store.ApplyBalance("ACC001", 1500); err != nil {
		t.Fatalf("apply balance: %v", err)
	}

	reloaded := New(ctx, mem, logging.Discard())
	acct, err := reloaded.Get("ACC001")
	if err != nil {
		t.Fatalf("get after reload: %v", err)
	}
	if acct.Balance != 1500 {
		t.Fatalf("expected reloaded balance 1500, got %d", acct.Balance)
	}
}
