package model

import "github.com/shopspring/decimal"

// Account represents a bank account that owns imported transactions.
type Account struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Number      string          `json:"number,omitempty"`
	Institution string          `json:"institution,omitempty"`
	Currency    string          `json:"currency"`
	// Balance is derived from the account's most recent transaction.
	// It is a convenience value, not authoritative.
	Balance decimal.Decimal `json:"balance"`
}
