package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/powermosfet/actual-sparebank1/internal/actual"
	"github.com/powermosfet/actual-sparebank1/internal/buildinfo"
	"github.com/powermosfet/actual-sparebank1/internal/config"
	"github.com/powermosfet/actual-sparebank1/internal/sparebank1"
)

// rootOptions carries the persistent flags shared by all subcommands.
type rootOptions struct {
	configPath string
	verbose    bool
}

func (o *rootOptions) logger() *log.Logger {
	level := log.InfoLevel
	if o.verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
}

// loadConfig resolves the config path and loads the document. The path
// is returned too, since token rotation rewrites the same file.
func (o *rootOptions) loadConfig() (string, *config.Config, error) {
	path := config.Path(o.configPath)
	cfg, err := config.Load(path)
	if err != nil {
		return "", nil, err
	}
	return path, cfg, nil
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "actual-sparebank1",
		Short:   "Sync Sparebank1 transactions into Actual Budget",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"config file (default $CONFIG_PATH, then "+config.DefaultPath+")")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newBudgetCommand(opts))
	rootCmd.AddCommand(newBankCommand(opts))
	rootCmd.AddCommand(newImportCommand(opts))

	return rootCmd
}

// bankClient wires the token store's persistence to the config file, so
// a rotated refresh token is durable before any request is retried.
func bankClient(path string, cfg *config.Config, logger *log.Logger) (*sparebank1.Client, error) {
	creds, err := config.LoadBankCredentials()
	if err != nil {
		return nil, err
	}

	manager := sparebank1.NewTokenManager(creds.ClientID, creds.ClientSecret, sparebank1.DefaultBaseURL, logger)
	store := sparebank1.NewTokenStore(
		sparebank1.Tokens{Access: cfg.AccessToken, Refresh: cfg.RefreshToken},
		func(t sparebank1.Tokens) error {
			cfg.AccessToken = t.Access
			cfg.RefreshToken = t.Refresh
			return config.Save(path, cfg)
		},
	)
	return sparebank1.NewClient(sparebank1.DefaultBaseURL, manager, store, logger), nil
}

func ledgerClient(logger *log.Logger) (*actual.Client, error) {
	creds, err := config.LoadLedgerCredentials()
	if err != nil {
		return nil, err
	}
	return actual.NewClient(creds, logger), nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
