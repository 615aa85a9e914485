package domain

import "github.com/shopspring/decimal"

// PaymentMode is a named cash/bank account with a running balance.
//
// Intended invariant (verified by the integrity report, not enforced on write):
// CurrentBalance == OpeningBalance + sum(approved credits) - sum(approved debits).
// CurrentBalance is only ever mutated through signed increments applied by the
// ledger repository; callers never overwrite it directly.
type PaymentMode struct {
	PaymentModeID  string          `json:"paymentModeID"` // Primary Key (UUID)
	Name           string          `json:"name"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	IsActive       bool            `json:"isActive"`
	AuditFields
}
