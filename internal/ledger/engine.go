package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/corebank/corebank/internal/account"
	"github.com/corebank/corebank/internal/alert"
	"github.com/corebank/corebank/internal/metrics"
	"github.com/corebank/corebank/internal/notification"
	"github.com/corebank/corebank/internal/storage"
)

// Engine is the only component allowed to change balances. Every operation
// runs VALIDATE, LOAD, CHECK-INVARIANT, COMMIT, ALERT in that order; any
// failure before COMMIT leaves all state untouched, and the in-memory balance
// is applied only after the durable commit succeeded.
//
// Mutual exclusion is one mutex per account. Transfers acquire both account
// locks in lexicographic identifier order, so two concurrent transfers over
// the same pair in opposite directions cannot deadlock.
type Engine struct {
	floor     int64
	accounts  *account.Store
	store     storage.Store
	evaluator alert.Evaluator
	notifier  notification.Notifier
	metrics   *metrics.Metrics
	logger    *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine builds the transaction-processing engine. floor is the minimum
// balance, in minor units, that any debit must leave on the source account.
func NewEngine(floor int64, accounts *account.Store, store storage.Store, evaluator alert.Evaluator,
	notifier notification.Notifier, m *metrics.Metrics, logger *slog.Logger) *Engine {
	return &Engine{
		floor:     floor,
		accounts:  accounts,
		store:     store,
		evaluator: evaluator,
		notifier:  notifier,
		metrics:   m,
		logger:    logger,
		locks:     make(map[string]*sync.Mutex),
	}
}

// Floor returns the configured minimum balance floor.
func (e *Engine) Floor() int64 {
	return e.floor
}

// Deposit credits the account and returns the committed transaction record.
func (e *Engine) Deposit(ctx context.Context, accountID string, amount int64, description string) (Transaction, error) {
	if amount <= 0 {
		e.metrics.OperationRejected("invalid_amount")
		return Transaction{}, fmt.Errorf("%w: deposit of %d", ErrInvalidAmount, amount)
	}

	lock := e.lockFor(accountID)
	lock.Lock()
	defer lock.Unlock()

	acct, err := e.accounts.Get(accountID)
	if err != nil {
		e.metrics.OperationRejected("not_found")
		return Transaction{}, err
	}

	newBalance := acct.Balance + amount
	tx := Transaction{
		AccountID:    accountID,
		Kind:         KindDeposit,
		Amount:       amount,
		BalanceAfter: newBalance,
		Description:  defaultDescription(description, "Deposit"),
		Status:       StatusSuccess,
		CreatedAt:    time.Now().UTC(),
	}

	id, err := e.store.ApplyTransaction(ctx, toRow(tx), newBalance)
	if err != nil {
		e.metrics.OperationRejected("storage")
		return Transaction{}, err
	}
	tx.ID = id

	if err := e.accounts.ApplyBalance(accountID, newBalance); err != nil {
		// The durable write committed; only the cached copy is missing, which
		// cannot happen while the account lock is held.
		e.logger.Error("apply balance after commit", "account", accountID, "error", err)
	}

	e.metrics.TransactionCommitted(string(KindDeposit))
	e.logger.Info("deposit committed", "account", accountID, "amount", amount, "balance", newBalance)
	return tx, nil
}

// Withdraw debits the account, enforcing the minimum balance floor, and
// returns the committed transaction record.
func (e *Engine) Withdraw(ctx context.Context, accountID string, amount int64, description string) (Transaction, error) {
	if amount <= 0 {
		e.metrics.OperationRejected("invalid_amount")
		return Transaction{}, fmt.Errorf("%w: withdrawal of %d", ErrInvalidAmount, amount)
	}

	lock := e.lockFor(accountID)
	lock.Lock()
	defer lock.Unlock()

	acct, err := e.accounts.Get(accountID)
	if err != nil {
		e.metrics.OperationRejected("not_found")
		return Transaction{}, err
	}

	if err := e.checkDebit(acct.Balance, amount); err != nil {
		e.metrics.OperationRejected("insufficient_funds")
		return Transaction{}, err
	}

	newBalance := acct.Balance - amount
	tx := Transaction{
		AccountID:    accountID,
		Kind:         KindWithdrawal,
		Amount:       amount,
		BalanceAfter: newBalance,
		Description:  defaultDescription(description, "Withdrawal"),
		Status:       StatusSuccess,
		CreatedAt:    time.Now().UTC(),
	}

	id, err := e.store.ApplyTransaction(ctx, toRow(tx), newBalance)
	if err != nil {
		e.metrics.OperationRejected("storage")
		return Transaction{}, err
	}
	tx.ID = id

	if err := e.accounts.ApplyBalance(accountID, newBalance); err != nil {
		e.logger.Error("apply balance after commit", "account", accountID, "error", err)
	}

	e.metrics.TransactionCommitted(string(KindWithdrawal))
	e.logger.Info("withdrawal committed", "account", accountID, "amount", amount, "balance", newBalance)
	e.alertOnBalance(ctx, acct, newBalance)
	return tx, nil
}

// Transfer moves amount from one account to another as a single logical
// unit: both transaction records and both balance updates commit together or
// not at all. It returns the debit and credit records.
func (e *Engine) Transfer(ctx context.Context, fromID, toID string, amount int64, description string) (Transaction, Transaction, error) {
	if amount <= 0 {
		e.metrics.OperationRejected("invalid_amount")
		return Transaction{}, Transaction{}, fmt.Errorf("%w: transfer of %d", ErrInvalidAmount, amount)
	}
	if fromID == toID {
		e.metrics.OperationRejected("same_account")
		return Transaction{}, Transaction{}, fmt.Errorf("%w: %s", ErrSameAccount, fromID)
	}

	first, second := e.lockFor(fromID), e.lockFor(toID)
	if toID < fromID {
		first, second = second, first
	}
	first.Lock()
	defer first.Unlock()
	second.Lock()
	defer second.Unlock()

	from, err := e.accounts.Get(fromID)
	if err != nil {
		e.metrics.OperationRejected("not_found")
		return Transaction{}, Transaction{}, err
	}
	to, err := e.accounts.Get(toID)
	if err != nil {
		e.metrics.OperationRejected("not_found")
		return Transaction{}, Transaction{}, err
	}

	if err := e.checkDebit(from.Balance, amount); err != nil {
		e.metrics.OperationRejected("insufficient_funds")
		return Transaction{}, Transaction{}, err
	}

	newFrom := from.Balance - amount
	newTo := to.Balance + amount
	now := time.Now().UTC()
	desc := defaultDescription(description, "Transfer")

	debit := Transaction{
		AccountID:    fromID,
		Kind:         KindTransferOut,
		Amount:       amount,
		BalanceAfter: newFrom,
		Description:  desc + " to " + toID,
		Counterparty: toID,
		Status:       StatusSuccess,
		CreatedAt:    now,
	}
	credit := Transaction{
		AccountID:    toID,
		Kind:         KindTransferIn,
		Amount:       amount,
		BalanceAfter: newTo,
		Description:  desc + " from " + fromID,
		Counterparty: fromID,
		Status:       StatusSuccess,
		CreatedAt:    now,
	}

	debitID, creditID, err := e.store.ApplyTransfer(ctx, toRow(debit), toRow(credit), newFrom, newTo)
	if err != nil {
		e.metrics.OperationRejected("storage")
		return Transaction{}, Transaction{}, err
	}
	debit.ID = debitID
	credit.ID = creditID

	if err := e.accounts.ApplyBalance(fromID, newFrom); err != nil {
		e.logger.Error("apply balance after commit", "account", fromID, "error", err)
	}
	if err := e.accounts.ApplyBalance(toID, newTo); err != nil {
		e.logger.Error("apply balance after commit", "account", toID, "error", err)
	}

	e.metrics.TransactionCommitted(string(KindTransferOut))
	e.metrics.TransactionCommitted(string(KindTransferIn))
	e.logger.Info("transfer committed", "from", fromID, "to", toID, "amount", amount)
	e.alertOnBalance(ctx, from, newFrom)
	return debit, credit, nil
}

// History returns the account's transactions, newest first. Records of a
// closed account stay readable; only mutations require an active account.
func (e *Engine) History(ctx context.Context, accountID string) ([]Transaction, error) {
	rows, err := e.store.TransactionsByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

// Recent returns the most recent transactions across all accounts.
func (e *Engine) Recent(ctx context.Context, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := e.store.AllTransactions(ctx, limit)
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

// Count returns the number of transactions recorded for the account.
func (e *Engine) Count(ctx context.Context, accountID string) (int, error) {
	return e.store.CountTransactions(ctx, accountID)
}

// checkDebit enforces the two debit invariants, reporting both as
// ErrInsufficientFunds with messages that name the cause.
func (e *Engine) checkDebit(balance, amount int64) error {
	if amount > balance {
		return fmt.Errorf("%w: available balance is %d", ErrInsufficientFunds, balance)
	}
	if balance-amount < e.floor {
		return fmt.Errorf("%w: would breach minimum balance floor of %d", ErrInsufficientFunds, e.floor)
	}
	return nil
}

// alertOnBalance classifies the post-debit balance and notifies the holder on
// a threshold crossing. Fire-and-forget: a failed send is logged and never
// affects the committed operation.
func (e *Engine) alertOnBalance(ctx context.Context, acct account.Account, newBalance int64) {
	level := e.evaluator.Classify(newBalance)
	if level == alert.LevelHealthy {
		return
	}
	e.metrics.AlertEmitted(string(level))

	acct.Balance = newBalance
	if err := e.notifier.Send(ctx, alert.ThresholdMessage(acct, level, e.evaluator.Threshold(level))); err != nil {
		e.logger.Warn("balance alert delivery failed", "account", acct.ID, "error", err)
	}
}

// lockFor returns the mutex guarding an account, creating it on first use.
// Lock entries are never removed; identifiers are retired, not reused.
func (e *Engine) lockFor(id string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[id] = lock
	}
	return lock
}

func defaultDescription(description, fallback string) string {
	if description == "" {
		return fallback
	}
	return description
}
