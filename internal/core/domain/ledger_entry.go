package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	Credit       TransactionType = "CREDIT"
	Debit        TransactionType = "DEBIT"
	SelfTransfer TransactionType = "SELF_TRANSFER"
)

// SerialPrefix returns the serial number prefix for the transaction type.
func (t TransactionType) SerialPrefix() string {
	switch t {
	case Credit:
		return "CR"
	case Debit:
		return "DR"
	case SelfTransfer:
		return "ST"
	}
	return ""
}

// EntryStatus is the approval state of a ledger entry.
type EntryStatus string

const (
	StatusPending  EntryStatus = "PENDING"
	StatusApproved EntryStatus = "APPROVED"
	StatusRejected EntryStatus = "REJECTED"
)

// EditRequestStatus is the state of an edit request attached to an entry.
type EditRequestStatus string

const (
	EditPending  EditRequestStatus = "PENDING"
	EditApproved EditRequestStatus = "APPROVED"
	EditRejected EditRequestStatus = "REJECTED"
)

// EditChanges is the proposed-change payload of an edit request. Only these
// fields of an entry are mutable after creation; nil means "unchanged".
type EditChanges struct {
	Description     *string          `json:"description,omitempty"`
	TransactionDate *time.Time       `json:"transactionDate,omitempty"`
	PartyID         *string          `json:"partyID,omitempty"`
	HeadID          *string          `json:"headID,omitempty"`
	PaymentTypeID   *string          `json:"paymentTypeID,omitempty"`
	PaymentModeID   *string          `json:"paymentModeID,omitempty"`
	PaymentAmount   *decimal.Decimal `json:"paymentAmount,omitempty"`
	ReceivedAmount  *decimal.Decimal `json:"receivedAmount,omitempty"`
	TransferAmount  *decimal.Decimal `json:"transferAmount,omitempty"`
}

// Empty reports whether the payload proposes no change at all.
func (c EditChanges) Empty() bool {
	return c.Description == nil && c.TransactionDate == nil && c.PartyID == nil &&
		c.HeadID == nil && c.PaymentTypeID == nil && c.PaymentModeID == nil &&
		c.PaymentAmount == nil && c.ReceivedAmount == nil && c.TransferAmount == nil
}

// LedgerEntry is a single financial transaction affecting a payment mode.
//
// Lifecycle: created (credits auto-APPROVED, debits/self-transfers PENDING) ->
// approve/reject -> optional undo by the original actor. An edit request runs
// its own PENDING -> APPROVED|REJECTED -> (undo) PENDING sub-state machine.
// OpeningBalance/CurrentBalance are snapshots taken at creation and are never
// recomputed afterwards.
type LedgerEntry struct {
	EntryID         string          `json:"entryID"`      // Primary Key (UUID)
	SerialNumber    string          `json:"serialNumber"` // e.g. CR-0001, unique per type
	TransactionType TransactionType `json:"transactionType"`
	TransactionDate time.Time       `json:"transactionDate"`
	Description     string          `json:"description"`

	PartyID          string  `json:"partyID"`
	HeadID           string  `json:"headID"`
	PaymentTypeID    string  `json:"paymentTypeID"`
	PaymentModeID    string  `json:"paymentModeID"`
	TransferToModeID *string `json:"transferToModeID,omitempty"` // self-transfer destination

	PaymentAmount  *decimal.Decimal `json:"paymentAmount,omitempty"`  // debit
	ReceivedAmount *decimal.Decimal `json:"receivedAmount,omitempty"` // credit
	TransferAmount *decimal.Decimal `json:"transferAmount,omitempty"` // self-transfer
	ComponentA     *decimal.Decimal `json:"componentA,omitempty"`     // split portion
	ComponentB     *decimal.Decimal `json:"componentB,omitempty"`     // split portion

	OpeningBalance decimal.Decimal `json:"openingBalance"` // mode balance before this entry
	CurrentBalance decimal.Decimal `json:"currentBalance"` // mode balance after creation

	Status          EntryStatus `json:"status"`
	ApprovedBy      *string     `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time  `json:"approvedAt,omitempty"`
	RejectedBy      *string     `json:"rejectedBy,omitempty"`
	RejectedAt      *time.Time  `json:"rejectedAt,omitempty"`
	RejectionReason *string     `json:"rejectionReason,omitempty"`

	EditRequestStatus *EditRequestStatus `json:"editRequestStatus,omitempty"`
	ProposedChanges   *EditChanges       `json:"proposedChanges,omitempty"`
	EditRequestedBy   *string            `json:"editRequestedBy,omitempty"`
	EditRequestedAt   *time.Time         `json:"editRequestedAt,omitempty"`
	EditRequestReason *string            `json:"editRequestReason,omitempty"`
	EditApprovedBy    *string            `json:"editApprovedBy,omitempty"`
	EditApprovedAt    *time.Time         `json:"editApprovedAt,omitempty"`
	EditRejectedBy    *string            `json:"editRejectedBy,omitempty"`
	EditRejectedAt    *time.Time         `json:"editRejectedAt,omitempty"`
	EditCount         int                `json:"editCount"`

	IsDeleted bool `json:"isDeleted"`
	AuditFields

	// PartyName is populated on list reads for search/display; not persisted on the entry.
	PartyName string `json:"partyName,omitempty"`
}

// Amount returns the operative amount for the entry's transaction type.
func (e *LedgerEntry) Amount() decimal.Decimal {
	switch e.TransactionType {
	case Credit:
		if e.ReceivedAmount != nil {
			return *e.ReceivedAmount
		}
	case Debit:
		if e.PaymentAmount != nil {
			return *e.PaymentAmount
		}
	case SelfTransfer:
		if e.TransferAmount != nil {
			return *e.TransferAmount
		}
	}
	return decimal.Zero
}
