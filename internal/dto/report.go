package dto

import (
	"github.com/shopspring/decimal"

	"github.com/sunrisehms/finance_backend/internal/core/domain"
)

// SummaryReportType enumerates the supported groupings of the summary report.
const (
	SummaryByPaymentMode = "payment-mode"
	SummaryByParty       = "party-wise"
	SummaryByHead        = "head-wise"
	SummaryByDay         = "day-wise"
)

// SummaryParams are the query parameters of GET /finance/reports/summary.
type SummaryParams struct {
	Type      string `form:"type" binding:"required,oneof=payment-mode party-wise head-wise day-wise"`
	StartDate string `form:"startDate"`
	EndDate   string `form:"endDate"`
}

// SummaryResponse is the aggregate rollup for one report type.
type SummaryResponse struct {
	Type              string                    `json:"type"`
	StartDate         string                    `json:"startDate,omitempty"`
	EndDate           string                    `json:"endDate,omitempty"`
	Groups            []domain.SummaryGroup     `json:"groups"`
	GrandTotalCredits decimal.Decimal           `json:"grandTotalCredits"`
	GrandTotalDebits  decimal.Decimal           `json:"grandTotalDebits"`
	GrandNet          decimal.Decimal           `json:"grandNet"`
	Integrity         []domain.BalanceIntegrity `json:"integrity,omitempty"` // payment-mode report only
}
