package config

import (
	"os"
	"sync"

	"github.com/joho/godotenv"
)

// BankCredentials are the OAuth2 client credentials for the bank API.
type BankCredentials struct {
	ClientID     string
	ClientSecret string
}

// LedgerCredentials locate and authenticate the budget ledger backend.
type LedgerCredentials struct {
	URL      string
	Password string
	BudgetID string
}

// MissingEnvError reports a required environment variable that is not
// set. It is always fatal before any network activity happens.
type MissingEnvError struct {
	Name string
}

func (e *MissingEnvError) Error() string {
	return "missing required environment variable: " + e.Name
}

var loadDotenv sync.Once

func requireEnv(name string) (string, error) {
	// A .env file is a convenience for local runs; in production the
	// variables come from the process environment.
	loadDotenv.Do(func() { _ = godotenv.Load() })

	value := os.Getenv(name)
	if value == "" {
		return "", &MissingEnvError{Name: name}
	}
	return value, nil
}

// LoadBankCredentials reads the bank OAuth2 client credentials from the
// environment.
func LoadBankCredentials() (BankCredentials, error) {
	id, err := requireEnv("SPAREBANK1_CLIENT_ID")
	if err != nil {
		return BankCredentials{}, err
	}
	secret, err := requireEnv("SPAREBANK1_CLIENT_SECRET")
	if err != nil {
		return BankCredentials{}, err
	}
	return BankCredentials{ClientID: id, ClientSecret: secret}, nil
}

// LoadLedgerCredentials reads the ledger backend settings from the
// environment.
func LoadLedgerCredentials() (LedgerCredentials, error) {
	url, err := requireEnv("ACTUAL_URL")
	if err != nil {
		return LedgerCredentials{}, err
	}
	password, err := requireEnv("ACTUAL_PASSWORD")
	if err != nil {
		return LedgerCredentials{}, err
	}
	budgetID, err := requireEnv("ACTUAL_BUDGET_ID")
	if err != nil {
		return LedgerCredentials{}, err
	}
	return LedgerCredentials{URL: url, Password: password, BudgetID: budgetID}, nil
}
