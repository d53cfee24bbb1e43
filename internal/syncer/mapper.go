package syncer

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/powermosfet/actual-sparebank1/internal/config"
	"github.com/powermosfet/actual-sparebank1/internal/model"
)

// TransferPayeeNotFoundError means a counterparty account is in the
// mapping but the ledger has no transfer payee for it. The ledger
// auto-creates transfer payees for every account, so this indicates a
// broken mapping, not a recoverable condition.
type TransferPayeeNotFoundError struct {
	LedgerAccountID string
}

func (e *TransferPayeeNotFoundError) Error() string {
	return "no transfer payee found for ledger account " + e.LedgerAccountID
}

var hundred = decimal.NewFromInt(100)

// MapTransaction converts one bank transaction into a ledger transaction
// for the account being synced. Pure: identical inputs always produce
// the identical result.
//
// A counterparty found in the account mapping makes this an internal
// transfer, carried by the payee whose transfer_acct is the mapped
// ledger account. Anything else is an external transaction: the cleaned
// description becomes the payee name used for matching, and the raw
// description is preserved verbatim for audit.
func MapTransaction(tx model.BankTransaction, accounts map[string]config.Account, payees []model.Payee, target config.Account) (model.Transaction, error) {
	date, err := localDate(tx.Date)
	if err != nil {
		return model.Transaction{}, err
	}

	out := model.Transaction{
		Account: target.ActualID,
		Date:    date,
		Amount:  minorUnits(tx.Amount),
	}

	if remote, ok := accounts[tx.RemoteAccountNumber]; ok {
		payee, found := transferPayee(payees, remote.ActualID)
		if !found {
			return model.Transaction{}, &TransferPayeeNotFoundError{LedgerAccountID: remote.ActualID}
		}
		out.Payee = payee.ID
		return out, nil
	}

	out.PayeeName = tx.CleanedDescription
	out.ImportedPayee = tx.Description
	return out, nil
}

// minorUnits converts a major-unit amount to integer minor units.
// Halves round away from zero (shopspring Round semantics), so 0.125
// becomes 13 and -0.125 becomes -13.
func minorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// localDate takes the calendar-date prefix of the bank's date string
// as-is. No timezone conversion: the bank already reports the booking
// date the user expects to see.
func localDate(s string) (string, error) {
	if len(s) < len(dateFormat) {
		return "", fmt.Errorf("transaction date %q is not a calendar date", s)
	}
	day := s[:len(dateFormat)]
	if _, err := time.Parse(dateFormat, day); err != nil {
		return "", fmt.Errorf("parsing transaction date %q: %w", s, err)
	}
	return day, nil
}

func transferPayee(payees []model.Payee, ledgerAccountID string) (model.Payee, bool) {
	for _, p := range payees {
		if p.TransferAccount == ledgerAccountID {
			return p, true
		}
	}
	return model.Payee{}, false
}
