package model

import "github.com/shopspring/decimal"

// Booking statuses reported by the bank. Only booked transactions are
// final; pending ones may still change amount or date.
const (
	BookingStatusBooked  = "BOOKED"
	BookingStatusPending = "PENDING"
)

// BankAccount is an account as returned by the bank's accounts endpoint.
// Key is the opaque routing key the transactions endpoint expects.
type BankAccount struct {
	Key           string          `json:"key"`
	AccountNumber string          `json:"accountNumber"`
	Name          string          `json:"name"`
	Balance       decimal.Decimal `json:"balance"`
	CurrencyCode  string          `json:"currencyCode"`
	Type          string          `json:"type"`
}

// BankTransaction is a raw transaction record from the bank API.
// Date is kept as the bank's own date string; no timezone conversion
// happens anywhere downstream.
type BankTransaction struct {
	Date                string          `json:"date"`
	Amount              decimal.Decimal `json:"amount"`
	RemoteAccountNumber string          `json:"remoteAccountNumber"`
	Description         string          `json:"description"`
	CleanedDescription  string          `json:"cleanedDescription"`
	BookingStatus       string          `json:"bookingStatus"`
}

// Booked reports whether the transaction has settled.
func (t BankTransaction) Booked() bool {
	return t.BookingStatus == BookingStatusBooked
}
