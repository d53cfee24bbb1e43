// Package actual talks to an Actual Budget server through its HTTP API
// bridge. The ledger is treated as an opaque remote store: accounts and
// payees are read, transaction batches are written, and deduplication
// of re-imported transactions happens server-side.
package actual

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/powermosfet/actual-sparebank1/internal/config"
	"github.com/powermosfet/actual-sparebank1/internal/model"
)

// APIError is a non-2xx response from the ledger backend. Always fatal:
// a failed import aborts the remaining accounts of a run.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ledger API returned %d: %s", e.Status, e.Body)
}

// Client is an HTTP client for one budget on an Actual server.
type Client struct {
	baseURL  string
	password string
	budgetID string
	http     *http.Client
	logger   *log.Logger
}

// NewClient creates a ledger client from the environment credentials.
func NewClient(creds config.LedgerCredentials, logger *log.Logger) *Client {
	return &Client{
		baseURL:  creds.URL,
		password: creds.Password,
		budgetID: creds.BudgetID,
		http:     &http.Client{},
		logger:   logger,
	}
}

// Accounts lists the budget's accounts.
func (c *Client) Accounts(ctx context.Context) ([]model.LedgerAccount, error) {
	var payload struct {
		Data []model.LedgerAccount `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/accounts", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// Payees lists the budget's payees, including the transfer pseudo-payees
// the server maintains for every account.
func (c *Client) Payees(ctx context.Context) ([]model.Payee, error) {
	var payload struct {
		Data []model.Payee `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/payees", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// ImportTransactions submits a batch for one ledger account. The server
// deduplicates by transaction identity, so re-importing an overlapping
// window is safe.
func (c *Client) ImportTransactions(ctx context.Context, accountID string, txs []model.Transaction) error {
	body := struct {
		Transactions []model.Transaction `json:"transactions"`
	}{Transactions: txs}

	path := "/accounts/" + accountID + "/transactions/import"
	return c.do(ctx, http.MethodPost, path, body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	requestURL := c.baseURL + "/budgets/" + c.budgetID + path

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("x-api-key", c.password)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("ledger request", "method", method, "url", requestURL)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	c.logger.Debug("ledger response", "status", resp.StatusCode)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &APIError{Status: resp.StatusCode, Body: string(data)}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}
	return nil
}
