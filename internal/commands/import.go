package commands

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/powermosfet/actual-sparebank1/internal/config"
	"github.com/powermosfet/actual-sparebank1/internal/runlog"
	"github.com/powermosfet/actual-sparebank1/internal/syncer"
)

func newImportCommand(opts *rootOptions) *cobra.Command {
	var accountNumber string
	var days int
	var month string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import booked bank transactions into the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			window, err := resolveWindow(cmd, days, month)
			if err != nil {
				return err
			}

			logger := opts.logger()
			path, cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			accounts, err := selectAccounts(cfg, accountNumber)
			if err != nil {
				return err
			}

			bank, err := bankClient(path, cfg, logger)
			if err != nil {
				return err
			}
			ledger, err := ledgerClient(logger)
			if err != nil {
				return err
			}

			s := syncer.New(bank, ledger, cfg, logger)
			results, runErr := s.Sync(cmd.Context(), accounts, window)

			// Accounts imported before a failure stay imported; log them
			// even when the run aborts.
			writeRunLog(path, results, logger)

			if runErr != nil {
				return runErr
			}
			logger.Info("import complete", "accounts", len(results))
			return nil
		},
	}

	cmd.Flags().StringVar(&accountNumber, "account", "", "bank account number to import (default all mapped accounts)")
	windowFlags(cmd, &days, &month)

	return cmd
}

// selectAccounts picks the run's targets: one mapped account or, in
// number order, all of them.
func selectAccounts(cfg *config.Config, accountNumber string) ([]config.Account, error) {
	if accountNumber != "" {
		account, ok := cfg.Accounts[accountNumber]
		if !ok {
			return nil, fmt.Errorf("account %s is not in the config", accountNumber)
		}
		return []config.Account{account}, nil
	}

	if len(cfg.Accounts) == 0 {
		return nil, errors.New("no accounts configured")
	}

	numbers := make([]string, 0, len(cfg.Accounts))
	for number := range cfg.Accounts {
		numbers = append(numbers, number)
	}
	sort.Strings(numbers)

	accounts := make([]config.Account, 0, len(numbers))
	for _, number := range numbers {
		accounts = append(accounts, cfg.Accounts[number])
	}
	return accounts, nil
}

func writeRunLog(configPath string, results []syncer.Result, logger *log.Logger) {
	if len(results) == 0 {
		return
	}

	now := time.Now()
	entries := make([]runlog.Entry, 0, len(results))
	for _, r := range results {
		entries = append(entries, runlog.Entry{
			Timestamp: now,
			Account:   r.Account.Name,
			From:      r.Window.Start.Format("2006-01-02"),
			To:        r.Window.End.Format("2006-01-02"),
			Imported:  r.Imported,
		})
	}

	if err := runlog.Append(filepath.Dir(configPath), entries); err != nil {
		logger.Warn("failed to write sync log", "error", err)
	}
}
