package commands

import (
	"github.com/spf13/cobra"
)

func newBudgetCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Inspect the budget ledger",
	}
	cmd.AddCommand(newBudgetAccountsCommand(opts))
	cmd.AddCommand(newBudgetPayeesCommand(opts))
	return cmd
}

func newBudgetAccountsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List ledger accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := ledgerClient(opts.logger())
			if err != nil {
				return err
			}
			accounts, err := ledger.Accounts(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, accounts)
		},
	}
}

func newBudgetPayeesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "payees",
		Short: "List ledger payees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := ledgerClient(opts.logger())
			if err != nil {
				return err
			}
			payees, err := ledger.Payees(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, payees)
		},
	}
}
