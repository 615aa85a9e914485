// Package services defines the service-layer interfaces consumed by handlers.
package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sunrisehms/finance_backend/internal/core/domain"
	"github.com/sunrisehms/finance_backend/internal/dto"
	"github.com/sunrisehms/finance_backend/internal/utils/accounting"
)

// LedgerSvcFacade is the ledger entry lifecycle: create, approve/reject, edit
// request flows, undo, soft delete, listing and the audit trail.
type LedgerSvcFacade interface {
	CreateEntry(ctx context.Context, req dto.CreateLedgerEntryRequest, actor domain.Actor) (*domain.LedgerEntry, error)
	GetEntryByID(ctx context.Context, entryID string, actor domain.Actor) (*domain.LedgerEntry, error)
	ListEntries(ctx context.Context, params dto.ListLedgerEntriesParams, actor domain.Actor) (*dto.ListLedgerEntriesResponse, error)

	ApproveEntry(ctx context.Context, entryID string, actor domain.Actor) (*domain.LedgerEntry, error)
	RejectEntry(ctx context.Context, entryID string, reason string, actor domain.Actor) (*domain.LedgerEntry, error)

	RequestEdit(ctx context.Context, entryID string, changes domain.EditChanges, reason string, actor domain.Actor) (*domain.LedgerEntry, error)
	ApproveEdit(ctx context.Context, entryID string, reason string, actor domain.Actor) (*domain.LedgerEntry, error)
	RejectEdit(ctx context.Context, entryID string, reason string, actor domain.Actor) (*domain.LedgerEntry, error)

	UndoLastAction(ctx context.Context, entryID string, actor domain.Actor) (*domain.LedgerEntry, error)
	DeleteEntry(ctx context.Context, entryID string, actor domain.Actor) error

	ListAuditTrail(ctx context.Context, entryID string, actor domain.Actor) ([]domain.LedgerAuditLog, error)
	PreviewBalanceImpact(ctx context.Context, paymentModeID string, t domain.TransactionType, amount decimal.Decimal, actor domain.Actor) (*accounting.BalancePreview, error)
}

// ReportSvcFacade produces summary rollups and balance integrity diagnostics.
type ReportSvcFacade interface {
	GetSummary(ctx context.Context, reportType string, startDate, endDate *time.Time, actor domain.Actor) (*dto.SummaryResponse, error)
	VerifyPaymentModeIntegrity(ctx context.Context, paymentModeID string, actor domain.Actor) (*domain.BalanceIntegrity, error)
}

// MasterSvcFacade manages the reference tables ledger entries point at.
type MasterSvcFacade interface {
	CreatePaymentMode(ctx context.Context, req dto.CreatePaymentModeRequest, actor domain.Actor) (*domain.PaymentMode, error)
	GetPaymentModeByID(ctx context.Context, paymentModeID string, actor domain.Actor) (*domain.PaymentMode, error)
	ListPaymentModes(ctx context.Context, includeInactive bool, actor domain.Actor) ([]domain.PaymentMode, error)
	DeactivatePaymentMode(ctx context.Context, paymentModeID string, actor domain.Actor) error

	CreateParty(ctx context.Context, req dto.CreateNamedMasterRequest, actor domain.Actor) (*domain.Party, error)
	ListParties(ctx context.Context, includeInactive bool, actor domain.Actor) ([]domain.Party, error)
	DeactivateParty(ctx context.Context, partyID string, actor domain.Actor) error

	CreateHead(ctx context.Context, req dto.CreateNamedMasterRequest, actor domain.Actor) (*domain.Head, error)
	ListHeads(ctx context.Context, includeInactive bool, actor domain.Actor) ([]domain.Head, error)
	DeactivateHead(ctx context.Context, headID string, actor domain.Actor) error

	CreatePaymentType(ctx context.Context, req dto.CreateNamedMasterRequest, actor domain.Actor) (*domain.PaymentType, error)
	ListPaymentTypes(ctx context.Context, includeInactive bool, actor domain.Actor) ([]domain.PaymentType, error)
	DeactivatePaymentType(ctx context.Context, paymentTypeID string, actor domain.Actor) error
}

// ServiceContainer bundles all service implementations for route registration.
type ServiceContainer struct {
	Ledger LedgerSvcFacade
	Report ReportSvcFacade
	Master MasterSvcFacade
	User   UserSvcFacade
}

// UserSvcFacade handles authentication and user management.
type UserSvcFacade interface {
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	CreateUser(ctx context.Context, req dto.CreateUserRequest, actor domain.Actor) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}
