// Package repositories defines the persistence interfaces consumed by the
// service layer. Implementations live under internal/repositories/database.
package repositories

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sunrisehms/finance_backend/internal/core/domain"
)

// ListEntriesFilter narrows the ledger entry listing. Nil/empty fields are
// ignored. Search matches serial number, description and party name.
type ListEntriesFilter struct {
	TransactionType *domain.TransactionType
	Status          *domain.EntryStatus
	PartyID         *string
	HeadID          *string
	PaymentModeID   *string
	StartDate       *time.Time
	EndDate         *time.Time
	Search          string
	Limit           int
	Offset          int
}

// LedgerRepositoryFacade persists ledger entries, their audit trail and the
// payment-mode balance effects. Every method that performs more than one write
// runs them inside a single database transaction.
type LedgerRepositoryFacade interface {
	// CreateEntry mints the entry's serial number, snapshots the payment
	// mode's balance onto the entry, applies balanceDelta to the mode (zero
	// for pending entries) and appends the CREATED audit row, atomically.
	// The entry's SerialNumber, OpeningBalance and CurrentBalance fields are
	// populated on return.
	CreateEntry(ctx context.Context, entry *domain.LedgerEntry, balanceDelta decimal.Decimal, audit domain.LedgerAuditLog) error

	FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error)

	// ListEntries returns one page of entries plus the total match count.
	ListEntries(ctx context.Context, filter ListEntriesFilter) ([]domain.LedgerEntry, int64, error)

	// SaveEntryMutation persists the entry's updated status/edit fields,
	// applies the signed balance deltas per payment mode (locking each mode
	// row) and appends the audit rows, all in one transaction.
	SaveEntryMutation(ctx context.Context, entry domain.LedgerEntry, balanceDeltas map[string]decimal.Decimal, audits []domain.LedgerAuditLog) error
}

// PaymentModeRepositoryFacade manages payment mode master data and totals.
type PaymentModeRepositoryFacade interface {
	CreatePaymentMode(ctx context.Context, mode domain.PaymentMode) error
	FindPaymentModeByID(ctx context.Context, paymentModeID string) (*domain.PaymentMode, error)
	ListPaymentModes(ctx context.Context, includeInactive bool) ([]domain.PaymentMode, error)
	DeactivatePaymentMode(ctx context.Context, paymentModeID string, userID string, now time.Time) error

	// GetPaymentModeTotals sums APPROVED credits and debits for the mode from
	// the entry table, independent of the stored running balance.
	GetPaymentModeTotals(ctx context.Context, paymentModeID string) (credits decimal.Decimal, debits decimal.Decimal, err error)
}

// MasterRepositoryFacade manages the party/head/payment-type reference tables.
type MasterRepositoryFacade interface {
	CreateParty(ctx context.Context, party domain.Party) error
	FindPartyByID(ctx context.Context, partyID string) (*domain.Party, error)
	ListParties(ctx context.Context, includeInactive bool) ([]domain.Party, error)
	DeactivateParty(ctx context.Context, partyID string, userID string, now time.Time) error

	CreateHead(ctx context.Context, head domain.Head) error
	FindHeadByID(ctx context.Context, headID string) (*domain.Head, error)
	ListHeads(ctx context.Context, includeInactive bool) ([]domain.Head, error)
	DeactivateHead(ctx context.Context, headID string, userID string, now time.Time) error

	CreatePaymentType(ctx context.Context, pt domain.PaymentType) error
	FindPaymentTypeByID(ctx context.Context, paymentTypeID string) (*domain.PaymentType, error)
	ListPaymentTypes(ctx context.Context, includeInactive bool) ([]domain.PaymentType, error)
	DeactivatePaymentType(ctx context.Context, paymentTypeID string, userID string, now time.Time) error
}

// AuditLogRepositoryFacade reads the append-only audit trail. Writes happen
// inside the ledger repository's transactions.
type AuditLogRepositoryFacade interface {
	ListAuditLogsByEntry(ctx context.Context, entryID string) ([]domain.LedgerAuditLog, error)
}

// UserRepositoryFacade manages application users.
type UserRepositoryFacade interface {
	CreateUser(ctx context.Context, user domain.User) error
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

// RepositoryProvider bundles all repository implementations for injection
// into the service layer.
type RepositoryProvider struct {
	LedgerRepo      LedgerRepositoryFacade
	PaymentModeRepo PaymentModeRepositoryFacade
	MasterRepo      MasterRepositoryFacade
	AuditLogRepo    AuditLogRepositoryFacade
	UserRepo        UserRepositoryFacade
	ReportingRepo   ReportingRepositoryFacade
}

// ReportingRepositoryFacade runs the aggregate rollup queries behind the
// summary reports. Only APPROVED, non-deleted entries are counted.
type ReportingRepositoryFacade interface {
	SummaryByPaymentMode(ctx context.Context, startDate, endDate *time.Time) ([]domain.SummaryGroup, error)
	SummaryByParty(ctx context.Context, startDate, endDate *time.Time) ([]domain.SummaryGroup, error)
	SummaryByHead(ctx context.Context, startDate, endDate *time.Time) ([]domain.SummaryGroup, error)
	SummaryByDay(ctx context.Context, startDate, endDate *time.Time) ([]domain.SummaryGroup, error)
}
