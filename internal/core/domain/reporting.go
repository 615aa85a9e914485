package domain

import "github.com/shopspring/decimal"

// SummaryGroup is one aggregated row of a ledger summary report, grouped by
// payment mode, party, head or day depending on the requested report type.
type SummaryGroup struct {
	Key          string          `json:"key"`   // group identifier (ID or ISO date)
	Label        string          `json:"label"` // display name for the group
	TotalCredits decimal.Decimal `json:"totalCredits"`
	TotalDebits  decimal.Decimal `json:"totalDebits"`
	Net          decimal.Decimal `json:"net"`
	EntryCount   int64           `json:"entryCount"`
}

// BalanceIntegrity is the result of recomputing a payment mode's balance from
// its approved transaction history and comparing it to the stored running
// balance. Diagnostic only; nothing enforces the invariant on write.
type BalanceIntegrity struct {
	PaymentModeID   string          `json:"paymentModeID"`
	Name            string          `json:"name"`
	OpeningBalance  decimal.Decimal `json:"openingBalance"`
	TotalCredits    decimal.Decimal `json:"totalCredits"`
	TotalDebits     decimal.Decimal `json:"totalDebits"`
	ExpectedBalance decimal.Decimal `json:"expectedBalance"`
	StoredBalance   decimal.Decimal `json:"storedBalance"`
	Discrepancy     decimal.Decimal `json:"discrepancy"`
	IsValid         bool            `json:"isValid"`
}
