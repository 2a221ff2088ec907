// Package report renders read-only views over the ledger: account summaries,
// transaction statements, low balance listings and CSV exports. It consumes
// only the public query operations and holds no state of its own.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/corebank/corebank/internal/account"
	"github.com/corebank/corebank/internal/ledger"
)

// Service builds reports from the account store snapshot and the engine's
// query surface.
type Service struct {
	accounts *account.Store
	engine   *ledger.Engine
}

// NewService constructs a report service.
func NewService(accounts *account.Store, engine *ledger.Engine) *Service {
	return &Service{accounts: accounts, engine: engine}
}

// Summary aggregates headline numbers over all active accounts.
type Summary struct {
	TotalAccounts int   `json:"total_accounts"`
	TotalBalance  int64 `json:"total_balance"`
}

// Summarize computes the headline aggregates.
func (s *Service) Summarize() Summary {
	var sum Summary
	for _, acct := range s.accounts.List() {
		sum.TotalAccounts++
		sum.TotalBalance += acct.Balance
	}
	return sum
}

// WriteAccountTable renders all active accounts as an aligned text table.
func (s *Service) WriteAccountTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Account", "Holder", "Kind", "Balance", "Created"})
	for _, acct := range s.accounts.List() {
		table.Append([]string{
			acct.ID,
			acct.HolderName,
			string(acct.Kind),
			FormatAmount(acct.Balance),
			acct.CreatedAt.Format("2006-01-02"),
		})
	}
	table.Render()
}

// WriteStatement renders an account's transaction history, newest first.
func (s *Service) WriteStatement(ctx context.Context, w io.Writer, accountID string) error {
	acct, err := s.accounts.Get(accountID)
	if err != nil {
		return err
	}
	txs, err := s.engine.History(ctx, accountID)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Statement for %s (%s)\n", acct.ID, acct.HolderName)
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Kind", "Amount", "Balance After", "Description", "Date"})
	for _, tx := range txs {
		table.Append([]string{
			strconv.FormatInt(tx.ID, 10),
			string(tx.Kind),
			FormatAmount(tx.Amount),
			FormatAmount(tx.BalanceAfter),
			tx.Description,
			tx.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	table.Render()
	return nil
}

// LowBalance returns the active accounts under the given threshold.
func (s *Service) LowBalance(threshold int64) []account.Account {
	var out []account.Account
	for _, acct := range s.accounts.List() {
		if acct.Balance < threshold {
			out = append(out, acct)
		}
	}
	return out
}

// ExportAccountsCSV writes all active accounts as CSV.
func (s *Service) ExportAccountsCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"account_id", "holder_name", "balance", "kind", "email", "phone", "status", "created_at"}); err != nil {
		return err
	}
	for _, acct := range s.accounts.List() {
		record := []string{
			acct.ID,
			acct.HolderName,
			FormatAmount(acct.Balance),
			string(acct.Kind),
			acct.Email,
			acct.Phone,
			string(acct.Status),
			acct.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportTransactionsCSV writes an account's transaction history as CSV,
// newest first.
func (s *Service) ExportTransactionsCSV(ctx context.Context, w io.Writer, accountID string) error {
	if _, err := s.accounts.Get(accountID); err != nil {
		return err
	}
	txs, err := s.engine.History(ctx, accountID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"transaction_id", "kind", "amount", "balance_after", "description", "counterparty", "status", "created_at"}); err != nil {
		return err
	}
	for _, tx := range txs {
		record := []string{
			strconv.FormatInt(tx.ID, 10),
			string(tx.Kind),
			FormatAmount(tx.Amount),
			FormatAmount(tx.BalanceAfter),
			tx.Description,
			tx.Counterparty,
			string(tx.Status),
			tx.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatAmount renders a minor-unit amount as a decimal string.
func FormatAmount(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
