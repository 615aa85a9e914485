package domain

import (
	"encoding/json"
	"time"
)

// AuditAction is the kind of state change recorded in the ledger audit log.
type AuditAction string

const (
	ActionCreated       AuditAction = "CREATED"
	ActionApproved      AuditAction = "APPROVED"
	ActionRejected      AuditAction = "REJECTED"
	ActionEditRequested AuditAction = "EDIT_REQUESTED"
	ActionEditApproved  AuditAction = "EDIT_APPROVED"
	ActionEditRejected  AuditAction = "EDIT_REJECTED"
	ActionUpdated       AuditAction = "UPDATED"
	ActionDeleted       AuditAction = "DELETED"
)

// LedgerAuditLog is an immutable, append-only record of a ledger entry state
// change. Rows are only ever inserted; never updated or deleted.
type LedgerAuditLog struct {
	LogID        string          `json:"logID"` // Primary Key (UUID)
	EntryID      string          `json:"entryID"`
	Action       AuditAction     `json:"action"`
	PreviousData json.RawMessage `json:"previousData,omitempty"`
	NewData      json.RawMessage `json:"newData,omitempty"`
	Reason       string          `json:"reason,omitempty"`
	ActorID      string          `json:"actorID"`
	CreatedAt    time.Time       `json:"createdAt"`
}
