package sparebank1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powermosfet/actual-sparebank1/internal/config"
)

// newTokenEndpoint returns a fake OAuth2 token endpoint that always
// issues the same rotated pair, counting calls.
func newTokenEndpoint(t *testing.T, refreshes *int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*refreshes++
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "old-refresh", r.Form.Get("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"new-access","refresh_token":"new-refresh","token_type":"bearer"}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(bankURL, tokenBaseURL string, persist PersistFunc) *Client {
	logger := log.New(io.Discard)
	manager := NewTokenManager("client-id", "client-secret", tokenBaseURL, logger)
	store := NewTokenStore(Tokens{Access: "old-access", Refresh: "old-refresh"}, persist)
	return NewClient(bankURL, manager, store, logger)
}

func TestGetRefreshOnce(t *testing.T) {
	var refreshes int
	tokenSrv := newTokenEndpoint(t, &refreshes)

	var attempts int
	bankSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if r.Header.Get("Authorization") != "Bearer new-access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"accounts":[{"key":"k1","name":"Checking"}]}`)
	}))
	defer bankSrv.Close()

	var persisted []Tokens
	c := newTestClient(bankSrv.URL, tokenSrv.URL, func(tk Tokens) error {
		persisted = append(persisted, tk)
		return nil
	})

	accounts, err := c.Accounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "Checking", accounts[0].Name)

	assert.Equal(t, 1, refreshes)
	assert.Equal(t, 2, attempts)

	// New pair persisted before the retry went out.
	require.Len(t, persisted, 1)
	assert.Equal(t, "new-access", persisted[0].Access)
	assert.Equal(t, "new-refresh", persisted[0].Refresh)
}

func TestGetNoDoubleRefresh(t *testing.T) {
	var refreshes int
	tokenSrv := newTokenEndpoint(t, &refreshes)

	var attempts int
	bankSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer bankSrv.Close()

	c := newTestClient(bankSrv.URL, tokenSrv.URL, nil)

	_, err := c.Accounts(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	assert.Equal(t, 1, refreshes)
	assert.Equal(t, 2, attempts)
}

func TestGetOtherStatusNotRetried(t *testing.T) {
	var refreshes int
	tokenSrv := newTokenEndpoint(t, &refreshes)

	var attempts int
	bankSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "boom")
	}))
	defer bankSrv.Close()

	c := newTestClient(bankSrv.URL, tokenSrv.URL, nil)

	_, err := c.Accounts(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "boom", apiErr.Body)

	assert.Equal(t, 0, refreshes)
	assert.Equal(t, 1, attempts)
}

func TestGetRefreshFailureIsFatal(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_grant"}`)
	}))
	defer tokenSrv.Close()

	bankSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer bankSrv.Close()

	c := newTestClient(bankSrv.URL, tokenSrv.URL, nil)

	_, err := c.Accounts(context.Background())
	require.Error(t, err)

	var refreshErr *RefreshError
	assert.ErrorAs(t, err, &refreshErr)
}

func TestGetPersistFailureAborts(t *testing.T) {
	var refreshes int
	tokenSrv := newTokenEndpoint(t, &refreshes)

	var attempts int
	bankSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer bankSrv.Close()

	c := newTestClient(bankSrv.URL, tokenSrv.URL, func(Tokens) error {
		return errors.New("disk full")
	})

	_, err := c.Accounts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persisting tokens")

	// No retry with tokens that were never made durable.
	assert.Equal(t, 1, attempts)
}

func TestAccountsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/personal/banking/accounts", r.URL.Path)
		assert.Equal(t, "Bearer old-access", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.sparebank1.v1+json; charset=utf-8", r.Header.Get("Accept"))
		fmt.Fprint(w, `{"accounts":[
			{"key":"k1","accountNumber":"97100000000","name":"Checking","balance":1234.56,"currencyCode":"NOK","type":"CURRENT"},
			{"key":"k2","accountNumber":"97100000001","name":"Savings","balance":10,"currencyCode":"NOK","type":"SAVING"}
		]}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL, nil)

	accounts, err := c.Accounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "k1", accounts[0].Key)
	assert.Equal(t, "97100000000", accounts[0].AccountNumber)
	assert.Equal(t, "1234.56", accounts[0].Balance.String())
}

func TestTransactionsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/personal/banking/transactions", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "bank-key-1", q.Get("accountKey"))
		assert.Equal(t, "2024-03-01", q.Get("fromDate"))
		assert.Equal(t, "2024-03-31", q.Get("toDate"))
		assert.Equal(t, "ALL", q.Get("source"))
		fmt.Fprint(w, `{"transactions":[
			{"date":"2024-03-05","amount":-12.5,"description":"COFFEE SHOP OSLO 4521","cleanedDescription":"Coffee Shop","bookingStatus":"BOOKED"}
		]}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL, nil)

	account := config.Account{Name: "Checking", BankKey: "bank-key-1", ActualID: "a1"}
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	txs, err := c.Transactions(context.Background(), account, from, to)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "Coffee Shop", txs[0].CleanedDescription)
	assert.Equal(t, "-12.5", txs[0].Amount.String())
	assert.Equal(t, "BOOKED", txs[0].BookingStatus)
}

func TestTransactionsDatesAreCalendarDays(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2024-03-15", q.Get("fromDate"))
		assert.Equal(t, "2024-03-20", q.Get("toDate"))
		fmt.Fprint(w, `{"transactions":[]}`)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL, nil)

	// Time-of-day components must not leak into the query.
	from := time.Date(2024, 3, 15, 23, 59, 58, 0, time.UTC)
	to := time.Date(2024, 3, 20, 12, 1, 2, 0, time.UTC)

	txs, err := c.Transactions(context.Background(), config.Account{BankKey: "k"}, from, to)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestAccountsBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json")
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, srv.URL, nil)

	_, err := c.Accounts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing accounts response")
}
