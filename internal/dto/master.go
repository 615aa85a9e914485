package dto

import "github.com/shopspring/decimal"

// CreateNamedMasterRequest creates a party, head or payment type.
type CreateNamedMasterRequest struct {
	Name string `json:"name" binding:"required,min=2,max=120"`
}

// CreatePaymentModeRequest creates a cash/bank account.
type CreatePaymentModeRequest struct {
	Name           string          `json:"name" binding:"required,min=2,max=120"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
}

// BalancePreviewParams are the query parameters of the balance preview endpoint.
type BalancePreviewParams struct {
	TransactionType string          `form:"transactionType" binding:"required,oneof=CREDIT DEBIT SELF_TRANSFER"`
	Amount          decimal.Decimal `form:"amount" binding:"required"`
}
