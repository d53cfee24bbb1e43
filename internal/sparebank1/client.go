package sparebank1

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/powermosfet/actual-sparebank1/internal/config"
	"github.com/powermosfet/actual-sparebank1/internal/model"
)

const (
	acceptHeader = "application/vnd.sparebank1.v1+json; charset=utf-8"
	dateFormat   = "2006-01-02"
)

// APIError is a non-2xx response from the bank API. A 401 only reaches
// this error after the single allowed refresh has been spent.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bank API returned %d: %s", e.Status, e.Body)
}

// Client issues authenticated GET requests against the bank REST API.
// Each call may trigger at most one token refresh; any other failure is
// fatal for the call.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  *TokenStore
	manager *TokenManager
	logger  *log.Logger
}

// NewClient creates a bank API client. An empty baseURL selects the
// production host.
func NewClient(baseURL string, manager *TokenManager, tokens *TokenStore, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		tokens:  tokens,
		manager: manager,
		logger:  logger,
	}
}

// Per-call request states.
type getState int

const (
	stateSend getState = iota
	stateRefreshing
)

// get runs the per-call state machine: Send, then on a first-attempt
// 401 Refreshing and one more Send. The refreshed flag never resets, so
// a second 401 falls through to the error path instead of looping.
func (c *Client) get(ctx context.Context, requestURL string) ([]byte, error) {
	state := stateSend
	refreshed := false
	for {
		switch state {
		case stateSend:
			status, body, err := c.send(ctx, requestURL)
			if err != nil {
				return nil, err
			}
			if status == http.StatusUnauthorized && !refreshed {
				state = stateRefreshing
				continue
			}
			if status < http.StatusOK || status >= http.StatusMultipleChoices {
				return nil, &APIError{Status: status, Body: string(body)}
			}
			return body, nil

		case stateRefreshing:
			next, err := c.manager.Refresh(ctx, c.tokens.Current())
			if err != nil {
				return nil, err
			}
			if err := c.tokens.Set(next); err != nil {
				return nil, err
			}
			refreshed = true
			state = stateSend
		}
	}
}

func (c *Client) send(ctx context.Context, requestURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.tokens.Current().Access)
	req.Header.Set("Accept", acceptHeader)

	c.logger.Debug("bank GET", "url", requestURL)
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response: %w", err)
	}
	c.logger.Debug("bank response", "status", resp.StatusCode)
	return resp.StatusCode, body, nil
}

// Accounts lists the user's bank accounts.
func (c *Client) Accounts(ctx context.Context) ([]model.BankAccount, error) {
	body, err := c.get(ctx, c.baseURL+"/personal/banking/accounts")
	if err != nil {
		return nil, err
	}
	var payload struct {
		Accounts []model.BankAccount `json:"accounts"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parsing accounts response: %w", err)
	}
	return payload.Accounts, nil
}

// Transactions lists transactions for one mapped account. Only the
// calendar dates of from and to are sent; times are discarded.
func (c *Client) Transactions(ctx context.Context, account config.Account, from, to time.Time) ([]model.BankTransaction, error) {
	q := url.Values{}
	q.Set("accountKey", account.BankKey)
	q.Set("fromDate", from.Format(dateFormat))
	q.Set("toDate", to.Format(dateFormat))
	q.Set("source", "ALL")

	body, err := c.get(ctx, c.baseURL+"/personal/banking/transactions?"+q.Encode())
	if err != nil {
		return nil, err
	}
	var payload struct {
		Transactions []model.BankTransaction `json:"transactions"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parsing transactions response: %w", err)
	}
	return payload.Transactions, nil
}
