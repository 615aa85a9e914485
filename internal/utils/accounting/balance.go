// Package accounting holds the pure balance math shared by services and
// repositories so credit/debit sign conventions stay in one place.
package accounting

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/sunrisehms/finance_backend/internal/core/domain"
)

// IntegrityTolerance is the maximum discrepancy treated as a rounding artifact
// when recomputing a payment mode's balance from its transaction history.
var IntegrityTolerance = decimal.NewFromFloat(0.01)

// SignedDelta returns the signed effect of an approved transaction on its
// payment mode's balance: credit increases, debit decreases. A self-transfer
// behaves as a debit against the source mode; the destination leg is a
// separate positive delta handled by the caller.
func SignedDelta(t domain.TransactionType, amount decimal.Decimal) (decimal.Decimal, error) {
	switch t {
	case domain.Credit:
		return amount, nil
	case domain.Debit, domain.SelfTransfer:
		return amount.Neg(), nil
	}
	return decimal.Zero, fmt.Errorf("unknown transaction type %q", t)
}

// CalculateNewBalance computes the balance after applying a transaction of the
// given type and amount to the current balance.
func CalculateNewBalance(current decimal.Decimal, t domain.TransactionType, amount decimal.Decimal) (decimal.Decimal, error) {
	delta, err := SignedDelta(t, amount)
	if err != nil {
		return decimal.Zero, err
	}
	return current.Add(delta), nil
}

// ReverseDelta returns the increment that undoes a previously applied delta.
func ReverseDelta(delta decimal.Decimal) decimal.Decimal {
	return delta.Neg()
}

// BalancePreview is the non-persisting projection of a transaction's effect,
// used for UI previews. Nothing enforces it before commit.
type BalancePreview struct {
	CurrentBalance   decimal.Decimal `json:"currentBalance"`
	ProjectedBalance decimal.Decimal `json:"projectedBalance"`
	Impact           decimal.Decimal `json:"impact"`
}

// PreviewBalanceImpact projects the balance effect of a transaction without
// persisting anything.
func PreviewBalanceImpact(current decimal.Decimal, t domain.TransactionType, amount decimal.Decimal) (BalancePreview, error) {
	delta, err := SignedDelta(t, amount)
	if err != nil {
		return BalancePreview{}, err
	}
	return BalancePreview{
		CurrentBalance:   current,
		ProjectedBalance: current.Add(delta),
		Impact:           delta,
	}, nil
}

// VerifyBalanceIntegrity recomputes opening + credits - debits and compares it
// against the stored running balance. A discrepancy above IntegrityTolerance
// marks the mode invalid. Diagnostic only; it is never enforced on write.
func VerifyBalanceIntegrity(mode domain.PaymentMode, totalCredits, totalDebits decimal.Decimal) domain.BalanceIntegrity {
	expected := mode.OpeningBalance.Add(totalCredits).Sub(totalDebits)
	discrepancy := mode.CurrentBalance.Sub(expected)
	return domain.BalanceIntegrity{
		PaymentModeID:   mode.PaymentModeID,
		Name:            mode.Name,
		OpeningBalance:  mode.OpeningBalance,
		TotalCredits:    totalCredits,
		TotalDebits:     totalDebits,
		ExpectedBalance: expected,
		StoredBalance:   mode.CurrentBalance,
		Discrepancy:     discrepancy,
		IsValid:         discrepancy.Abs().LessThan(IntegrityTolerance),
	}
}
