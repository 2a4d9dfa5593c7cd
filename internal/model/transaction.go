package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents one imported bank statement row.
type Transaction struct {
	ID          string          `json:"id"`
	AccountID   string          `json:"accountId"`
	FileID      string          `json:"fileId,omitempty"` // empty = not tied to an upload
	Date        time.Time       `json:"date"`
	PostedAt    time.Time       `json:"postedAt"` // ordering value from the statement
	Debit       decimal.Decimal `json:"debit"`    // zero if credit side
	Credit      decimal.Decimal `json:"credit"`   // zero if debit side
	Balance     decimal.Decimal `json:"balance"`  // running balance as printed on the statement
	Description string          `json:"description"`
	Reference   string          `json:"reference,omitempty"`
	ImportedAt  time.Time       `json:"importedAt"`
}

// Amount returns the signed amount (credit minus debit).
func (t Transaction) Amount() decimal.Decimal {
	return t.Credit.Sub(t.Debit)
}

// Before reports whether t orders before other, by posted time with the
// statement date as tie-breaker.
func (t Transaction) Before(other Transaction) bool {
	if !t.PostedAt.Equal(other.PostedAt) {
		return t.PostedAt.Before(other.PostedAt)
	}
	return t.Date.Before(other.Date)
}
