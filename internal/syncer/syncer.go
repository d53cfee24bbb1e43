// Package syncer copies settled bank transactions into the budget
// ledger: it resolves the date window, maps each bank transaction to a
// ledger transaction, and imports the result one account at a time.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/powermosfet/actual-sparebank1/internal/config"
	"github.com/powermosfet/actual-sparebank1/internal/model"
)

// Bank is the slice of the bank API the syncer needs.
type Bank interface {
	Transactions(ctx context.Context, account config.Account, from, to time.Time) ([]model.BankTransaction, error)
}

// Ledger is the slice of the budget backend the syncer needs.
type Ledger interface {
	Payees(ctx context.Context) ([]model.Payee, error)
	ImportTransactions(ctx context.Context, accountID string, txs []model.Transaction) error
}

// Syncer drives one import run.
type Syncer struct {
	bank   Bank
	ledger Ledger
	cfg    *config.Config
	logger *log.Logger
}

// New creates a Syncer.
func New(bank Bank, ledger Ledger, cfg *config.Config, logger *log.Logger) *Syncer {
	return &Syncer{bank: bank, ledger: ledger, cfg: cfg, logger: logger}
}

// Result summarizes one account's completed import.
type Result struct {
	Account  config.Account
	Window   Window
	Imported int
}

// Sync imports the window's booked transactions for each account in
// turn. The payee list is fetched once and shared across accounts.
// Accounts are processed strictly sequentially; the first failure
// aborts the run, leaving earlier accounts' imports in place.
func (s *Syncer) Sync(ctx context.Context, accounts []config.Account, window Window) ([]Result, error) {
	payees, err := s.ledger.Payees(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing payees: %w", err)
	}

	var results []Result
	for _, account := range accounts {
		s.logger.Info("importing",
			"account", account.Name,
			"from", window.Start.Format(dateFormat),
			"to", window.End.Format(dateFormat))

		imported, err := s.syncAccount(ctx, account, payees, window)
		if err != nil {
			return results, fmt.Errorf("importing %s: %w", account.Name, err)
		}
		results = append(results, Result{Account: account, Window: window, Imported: imported})
	}
	return results, nil
}

// syncAccount fetches, filters, maps, and imports one account's window.
// Pending transactions are dropped here: their amount and date may still
// change before settlement.
func (s *Syncer) syncAccount(ctx context.Context, account config.Account, payees []model.Payee, window Window) (int, error) {
	txs, err := s.bank.Transactions(ctx, account, window.Start, window.End)
	if err != nil {
		return 0, err
	}

	entries := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !tx.Booked() {
			s.logger.Debug("skipping unsettled transaction",
				"status", tx.BookingStatus, "description", tx.CleanedDescription)
			continue
		}
		entry, err := MapTransaction(tx, s.cfg.Accounts, payees, account)
		if err != nil {
			return 0, err
		}
		entries = append(entries, entry)
	}

	if err := s.ledger.ImportTransactions(ctx, account.ActualID, entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}
