package commands

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/powermosfet/actual-sparebank1/internal/syncer"
)

// windowFlags registers the date-window flags on commands that fetch
// bank transactions.
func windowFlags(cmd *cobra.Command, days *int, month *string) {
	cmd.Flags().IntVar(days, "days", 0, "sync the last N days ending today")
	cmd.Flags().StringVar(month, "month", "", "calendar month to sync (YYYY-MM, default current month)")
}

// resolveWindow turns the flags into a concrete date range. The two
// selectors are mutually exclusive.
func resolveWindow(cmd *cobra.Command, days int, month string) (syncer.Window, error) {
	if cmd.Flags().Changed("days") && cmd.Flags().Changed("month") {
		return syncer.Window{}, errors.New("--days and --month are mutually exclusive")
	}
	return syncer.ResolveWindow(days, month, time.Now())
}
