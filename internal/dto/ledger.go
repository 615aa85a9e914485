package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sunrisehms/finance_backend/internal/core/domain"
)

// CreateLedgerEntryRequest is the body of POST /finance/ledger.
// Exactly one amount field is required depending on transactionType:
// receivedAmount for CREDIT, paymentAmount for DEBIT, transferAmount (plus
// transferToModeID) for SELF_TRANSFER.
type CreateLedgerEntryRequest struct {
	TransactionType  domain.TransactionType `json:"transactionType" binding:"required,oneof=CREDIT DEBIT SELF_TRANSFER"`
	TransactionDate  *time.Time             `json:"transactionDate,omitempty"`
	Description      string                 `json:"description" binding:"required"`
	PartyID          string                 `json:"partyId" binding:"required"`
	HeadID           string                 `json:"headId" binding:"required"`
	PaymentTypeID    string                 `json:"paymentTypeId" binding:"required"`
	PaymentModeID    string                 `json:"paymentModeId" binding:"required"`
	TransferToModeID *string                `json:"transferToModeId,omitempty"`
	PaymentAmount    *decimal.Decimal       `json:"paymentAmount,omitempty"`
	ReceivedAmount   *decimal.Decimal       `json:"receivedAmount,omitempty"`
	TransferAmount   *decimal.Decimal       `json:"transferAmount,omitempty"`
	ComponentA       *decimal.Decimal       `json:"componentA,omitempty"`
	ComponentB       *decimal.Decimal       `json:"componentB,omitempty"`
}

// RejectEntryRequest carries the mandatory rejection reason.
type RejectEntryRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// EditRequestRequest attaches a proposed-change payload to an entry.
type EditRequestRequest struct {
	Changes domain.EditChanges `json:"changes" binding:"required"`
	Reason  string             `json:"reason,omitempty"`
}

// ReasonRequest is the optional free-text reason for edit approve/reject.
type ReasonRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ListLedgerEntriesParams are the query parameters of GET /finance/ledger.
type ListLedgerEntriesParams struct {
	TransactionType string `form:"transactionType"`
	Status          string `form:"status"`
	PartyID         string `form:"partyId"`
	HeadID          string `form:"headId"`
	PaymentModeID   string `form:"paymentModeId"`
	StartDate       string `form:"startDate"`
	EndDate         string `form:"endDate"`
	Search          string `form:"search"`
	Page            int    `form:"page,default=1"`
	Limit           int    `form:"limit,default=50"`
}

// LedgerEntryResponse is the wire form of a ledger entry.
type LedgerEntryResponse struct {
	EntryID          string                    `json:"entryID"`
	SerialNumber     string                    `json:"serialNumber"`
	TransactionType  domain.TransactionType    `json:"transactionType"`
	TransactionDate  time.Time                 `json:"transactionDate"`
	Description      string                    `json:"description"`
	PartyID          string                    `json:"partyId"`
	PartyName        string                    `json:"partyName,omitempty"`
	HeadID           string                    `json:"headId"`
	PaymentTypeID    string                    `json:"paymentTypeId"`
	PaymentModeID    string                    `json:"paymentModeId"`
	TransferToModeID *string                   `json:"transferToModeId,omitempty"`
	PaymentAmount    *decimal.Decimal          `json:"paymentAmount,omitempty"`
	ReceivedAmount   *decimal.Decimal          `json:"receivedAmount,omitempty"`
	TransferAmount   *decimal.Decimal          `json:"transferAmount,omitempty"`
	ComponentA       *decimal.Decimal          `json:"componentA,omitempty"`
	ComponentB       *decimal.Decimal          `json:"componentB,omitempty"`
	OpeningBalance   decimal.Decimal           `json:"openingBalance"`
	CurrentBalance   decimal.Decimal           `json:"currentBalance"`
	Status           domain.EntryStatus        `json:"status"`
	ApprovedBy       *string                   `json:"approvedBy,omitempty"`
	RejectedBy       *string                   `json:"rejectedBy,omitempty"`
	RejectionReason  *string                   `json:"rejectionReason,omitempty"`
	EditRequestStatus *domain.EditRequestStatus `json:"editRequestStatus,omitempty"`
	ProposedChanges  *domain.EditChanges       `json:"proposedChanges,omitempty"`
	EditCount        int                       `json:"editCount"`
	IsDeleted        bool                      `json:"isDeleted"`
	CreatedAt        time.Time                 `json:"createdAt"`
	CreatedBy        string                    `json:"createdBy"`
}

// ListLedgerEntriesResponse is one page of entries plus paging metadata.
type ListLedgerEntriesResponse struct {
	Entries []LedgerEntryResponse `json:"entries"`
	Page    int                   `json:"page"`
	Limit   int                   `json:"limit"`
	Total   int64                 `json:"total"`
}

// ToLedgerEntryResponse converts a domain entry to its wire form.
func ToLedgerEntryResponse(e *domain.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		EntryID:           e.EntryID,
		SerialNumber:      e.SerialNumber,
		TransactionType:   e.TransactionType,
		TransactionDate:   e.TransactionDate,
		Description:       e.Description,
		PartyID:           e.PartyID,
		PartyName:         e.PartyName,
		HeadID:            e.HeadID,
		PaymentTypeID:     e.PaymentTypeID,
		PaymentModeID:     e.PaymentModeID,
		TransferToModeID:  e.TransferToModeID,
		PaymentAmount:     e.PaymentAmount,
		ReceivedAmount:    e.ReceivedAmount,
		TransferAmount:    e.TransferAmount,
		ComponentA:        e.ComponentA,
		ComponentB:        e.ComponentB,
		OpeningBalance:    e.OpeningBalance,
		CurrentBalance:    e.CurrentBalance,
		Status:            e.Status,
		ApprovedBy:        e.ApprovedBy,
		RejectedBy:        e.RejectedBy,
		RejectionReason:   e.RejectionReason,
		EditRequestStatus: e.EditRequestStatus,
		ProposedChanges:   e.ProposedChanges,
		EditCount:         e.EditCount,
		IsDeleted:         e.IsDeleted,
		CreatedAt:         e.CreatedAt,
		CreatedBy:         e.CreatedBy,
	}
}

// ToLedgerEntryResponses converts a slice of domain entries.
func ToLedgerEntryResponses(entries []domain.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, len(entries))
	for i := range entries {
		out[i] = ToLedgerEntryResponse(&entries[i])
	}
	return out
}
