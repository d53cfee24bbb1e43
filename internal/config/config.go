package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither --config nor CONFIG_PATH is given.
const DefaultPath = "config.yaml"

// Config is the persisted configuration document: the bank-to-ledger
// account mapping plus the current OAuth2 token pair. It is rewritten
// in full after every token rotation.
type Config struct {
	Accounts     map[string]Account `yaml:"accounts"`
	AccessToken  string             `yaml:"access_token,omitempty"`
	RefreshToken string             `yaml:"refresh_token,omitempty"`
}

// Account maps one bank account to its ledger counterpart. The map key
// in Config.Accounts is the bank account number, which is also how
// counterparties are recognized during transfer detection.
type Account struct {
	Name     string `yaml:"name"`
	BankKey  string `yaml:"bank_key"`
	ActualID string `yaml:"actual_id"`
}

// Load reads a config file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Accounts == nil {
		cfg.Accounts = make(map[string]Account)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file, replacing any previous contents.
// Tokens live in this file, so keep it private to the owner.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a starter Config with a placeholder account mapping.
func Default() *Config {
	return &Config{
		Accounts: map[string]Account{
			"97100000000": {
				Name:     "Checking",
				BankKey:  "bank-account-key",
				ActualID: "ledger-account-id",
			},
		},
	}
}

// Path resolves the effective config path: the flag value if set,
// otherwise CONFIG_PATH, otherwise DefaultPath.
func Path(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		return env
	}
	return DefaultPath
}
