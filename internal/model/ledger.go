package model

// LedgerAccount is an account in the budget ledger.
type LedgerAccount struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Closed bool   `json:"closed"`
}

// Payee is a ledger payee. TransferAccount, when set, marks this as the
// pseudo-payee representing transfers into that ledger account.
type Payee struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	TransferAccount string `json:"transfer_acct,omitempty"`
}

// Transaction is a ledger transaction ready for import. Amount is in
// integer minor units (øre). Exactly one of Payee or the
// PayeeName/ImportedPayee pair is populated: Payee for transfers between
// the user's own accounts, the name pair for external counterparties.
type Transaction struct {
	Account       string `json:"account"`
	Date          string `json:"date"`
	Amount        int64  `json:"amount"`
	Payee         string `json:"payee,omitempty"`
	PayeeName     string `json:"payee_name,omitempty"`
	ImportedPayee string `json:"imported_payee,omitempty"`
}

// Transfer reports whether the transaction was classified as an
// internal transfer.
func (t Transaction) Transfer() bool {
	return t.Payee != ""
}
