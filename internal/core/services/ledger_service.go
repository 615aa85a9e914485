package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sunrisehms/finance_backend/internal/apperrors"
	"github.com/sunrisehms/finance_backend/internal/core/domain"
	portsrepo "github.com/sunrisehms/finance_backend/internal/core/ports/repositories"
	portssvc "github.com/sunrisehms/finance_backend/internal/core/ports/services"
	"github.com/sunrisehms/finance_backend/internal/dto"
	"github.com/sunrisehms/finance_backend/internal/middleware"
	"github.com/sunrisehms/finance_backend/internal/utils/accounting"
)

var (
	ErrNothingToUndo    = errors.New("nothing to undo")
	ErrEntryDeleted     = errors.New("entry has been deleted")
	ErrEditPendingExists = errors.New("an edit request is already pending for this entry")
)

// noPendingEditMessage is the exact client-facing message for edit transitions
// attempted without a pending request.
const noPendingEditMessage = "No pending edit request found"

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// ledgerService implements the ledger entry lifecycle: creation with
// type-dependent auto-approval, the approve/reject/undo state machine, the
// edit-request sub-state machine and the append-only audit trail.
type ledgerService struct {
	ledgerRepo      portsrepo.LedgerRepositoryFacade
	paymentModeRepo portsrepo.PaymentModeRepositoryFacade
	masterRepo      portsrepo.MasterRepositoryFacade
	auditRepo       portsrepo.AuditLogRepositoryFacade
}

// NewLedgerService creates the ledger lifecycle service.
func NewLedgerService(
	ledgerRepo portsrepo.LedgerRepositoryFacade,
	paymentModeRepo portsrepo.PaymentModeRepositoryFacade,
	masterRepo portsrepo.MasterRepositoryFacade,
	auditRepo portsrepo.AuditLogRepositoryFacade,
) portssvc.LedgerSvcFacade {
	return &ledgerService{
		ledgerRepo:      ledgerRepo,
		paymentModeRepo: paymentModeRepo,
		masterRepo:      masterRepo,
		auditRepo:       auditRepo,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func requirePermission(actor domain.Actor, perm domain.Permission) error {
	if !domain.HasPermission(actor.Role, perm) {
		return fmt.Errorf("%w: role %s lacks %s", apperrors.ErrForbidden, actor.Role, perm)
	}
	return nil
}

// snapshot marshals an entry for an audit row. Marshal failure is impossible
// for these field types, so errors reduce to an empty snapshot.
func snapshot(e *domain.LedgerEntry) json.RawMessage {
	b, err := json.Marshal(e)
	if err != nil {
		return nil
	}
	return b
}

func newAudit(entryID string, action domain.AuditAction, prev, next json.RawMessage, reason, actorID string, at time.Time) domain.LedgerAuditLog {
	return domain.LedgerAuditLog{
		LogID:        uuid.NewString(),
		EntryID:      entryID,
		Action:       action,
		PreviousData: prev,
		NewData:      next,
		Reason:       reason,
		ActorID:      actorID,
		CreatedAt:    at,
	}
}

// validateAmounts checks that the amount field required by the transaction
// type is present and positive, that no foreign-type amount is supplied, and
// that split components (when given) sum to the operative amount.
func validateAmounts(req dto.CreateLedgerEntryRequest) (decimal.Decimal, error) {
	positive := func(name string, v *decimal.Decimal) (decimal.Decimal, error) {
		if v == nil {
			return decimal.Zero, fmt.Errorf("%w: %s is required for %s entries", apperrors.ErrValidation, name, req.TransactionType)
		}
		if v.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, fmt.Errorf("%w: %s must be positive", apperrors.ErrValidation, name)
		}
		return *v, nil
	}

	var amount decimal.Decimal
	var err error
	switch req.TransactionType {
	case domain.Credit:
		if req.PaymentAmount != nil || req.TransferAmount != nil {
			return decimal.Zero, fmt.Errorf("%w: only receivedAmount is allowed for CREDIT entries", apperrors.ErrValidation)
		}
		amount, err = positive("receivedAmount", req.ReceivedAmount)
	case domain.Debit:
		if req.ReceivedAmount != nil || req.TransferAmount != nil {
			return decimal.Zero, fmt.Errorf("%w: only paymentAmount is allowed for DEBIT entries", apperrors.ErrValidation)
		}
		amount, err = positive("paymentAmount", req.PaymentAmount)
	case domain.SelfTransfer:
		if req.ReceivedAmount != nil || req.PaymentAmount != nil {
			return decimal.Zero, fmt.Errorf("%w: only transferAmount is allowed for SELF_TRANSFER entries", apperrors.ErrValidation)
		}
		amount, err = positive("transferAmount", req.TransferAmount)
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrValidation, req.TransactionType)
	}
	if err != nil {
		return decimal.Zero, err
	}

	if req.ComponentA != nil || req.ComponentB != nil {
		if req.ComponentA == nil || req.ComponentB == nil {
			return decimal.Zero, fmt.Errorf("%w: componentA and componentB must be provided together", apperrors.ErrValidation)
		}
		if req.ComponentA.IsNegative() || req.ComponentB.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: split components must not be negative", apperrors.ErrValidation)
		}
		if !req.ComponentA.Add(*req.ComponentB).Equal(amount) {
			return decimal.Zero, fmt.Errorf("%w: split components must sum to the entry amount", apperrors.ErrValidation)
		}
	}
	return amount, nil
}

// validateReferences checks every referenced master record exists and is active.
func (s *ledgerService) validateReferences(ctx context.Context, partyID, headID, paymentTypeID, paymentModeID string, transferToModeID *string) (*domain.PaymentMode, error) {
	party, err := s.masterRepo.FindPartyByID(ctx, partyID)
	if err != nil {
		return nil, fmt.Errorf("%w: party %s not found", apperrors.ErrValidation, partyID)
	}
	if !party.IsActive {
		return nil, fmt.Errorf("%w: party %s is inactive", apperrors.ErrValidation, partyID)
	}

	head, err := s.masterRepo.FindHeadByID(ctx, headID)
	if err != nil {
		return nil, fmt.Errorf("%w: head %s not found", apperrors.ErrValidation, headID)
	}
	if !head.IsActive {
		return nil, fmt.Errorf("%w: head %s is inactive", apperrors.ErrValidation, headID)
	}

	pt, err := s.masterRepo.FindPaymentTypeByID(ctx, paymentTypeID)
	if err != nil {
		return nil, fmt.Errorf("%w: payment type %s not found", apperrors.ErrValidation, paymentTypeID)
	}
	if !pt.IsActive {
		return nil, fmt.Errorf("%w: payment type %s is inactive", apperrors.ErrValidation, paymentTypeID)
	}

	mode, err := s.paymentModeRepo.FindPaymentModeByID(ctx, paymentModeID)
	if err != nil {
		return nil, fmt.Errorf("%w: payment mode %s not found", apperrors.ErrValidation, paymentModeID)
	}
	if !mode.IsActive {
		return nil, fmt.Errorf("%w: payment mode %s is inactive", apperrors.ErrValidation, paymentModeID)
	}

	if transferToModeID != nil {
		if *transferToModeID == paymentModeID {
			return nil, fmt.Errorf("%w: transfer destination must differ from the source payment mode", apperrors.ErrValidation)
		}
		dest, err := s.paymentModeRepo.FindPaymentModeByID(ctx, *transferToModeID)
		if err != nil {
			return nil, fmt.Errorf("%w: destination payment mode %s not found", apperrors.ErrValidation, *transferToModeID)
		}
		if !dest.IsActive {
			return nil, fmt.Errorf("%w: destination payment mode %s is inactive", apperrors.ErrValidation, *transferToModeID)
		}
	}
	return mode, nil
}

// CreateEntry validates the request, mints a serial number and persists the
// entry. Credits auto-approve and apply their balance effect immediately;
// debits and self-transfers stay PENDING with the balance untouched.
func (s *ledgerService) CreateEntry(ctx context.Context, req dto.CreateLedgerEntryRequest, actor domain.Actor) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := requirePermission(actor, domain.PermFinanceWrite); err != nil {
		return nil, err
	}

	amount, err := validateAmounts(req)
	if err != nil {
		return nil, err
	}

	if req.TransactionType == domain.SelfTransfer && req.TransferToModeID == nil {
		return nil, fmt.Errorf("%w: transferToModeId is required for SELF_TRANSFER entries", apperrors.ErrValidation)
	}

	if _, err := s.validateReferences(ctx, req.PartyID, req.HeadID, req.PaymentTypeID, req.PaymentModeID, req.TransferToModeID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	txnDate := now
	if req.TransactionDate != nil {
		txnDate = req.TransactionDate.UTC()
	}

	entry := domain.LedgerEntry{
		EntryID:          uuid.NewString(),
		TransactionType:  req.TransactionType,
		TransactionDate:  txnDate,
		Description:      req.Description,
		PartyID:          req.PartyID,
		HeadID:           req.HeadID,
		PaymentTypeID:    req.PaymentTypeID,
		PaymentModeID:    req.PaymentModeID,
		TransferToModeID: req.TransferToModeID,
		PaymentAmount:    req.PaymentAmount,
		ReceivedAmount:   req.ReceivedAmount,
		TransferAmount:   req.TransferAmount,
		ComponentA:       req.ComponentA,
		ComponentB:       req.ComponentB,
		Status:           domain.StatusPending,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}

	// Credits are considered settled money-in: approved on creation by the
	// creating user, with the balance applied in the same transaction.
	balanceDelta := decimal.Zero
	if req.TransactionType == domain.Credit {
		entry.Status = domain.StatusApproved
		entry.ApprovedBy = &actor.UserID
		entry.ApprovedAt = &now
		balanceDelta = amount
	}

	audit := newAudit(entry.EntryID, domain.ActionCreated, nil, nil, "", actor.UserID, now)

	if err := s.ledgerRepo.CreateEntry(ctx, &entry, balanceDelta, audit); err != nil {
		logger.Error("Failed to create ledger entry", slog.String("error", err.Error()), slog.String("payment_mode_id", req.PaymentModeID))
		return nil, fmt.Errorf("failed to create ledger entry: %w", err)
	}

	logger.Info("Ledger entry created",
		slog.String("entry_id", entry.EntryID),
		slog.String("serial_number", entry.SerialNumber),
		slog.String("status", string(entry.Status)))
	return &entry, nil
}

// GetEntryByID retrieves one entry.
func (s *ledgerService) GetEntryByID(ctx context.Context, entryID string, actor domain.Actor) (*domain.LedgerEntry, error) {
	if err := requirePermission(actor, domain.PermFinanceRead); err != nil {
		return nil, err
	}
	return s.ledgerRepo.FindEntryByID(ctx, entryID)
}

// ListEntries returns a filtered, offset-paginated page of entries.
func (s *ledgerService) ListEntries(ctx context.Context, params dto.ListLedgerEntriesParams, actor domain.Actor) (*dto.ListLedgerEntriesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := requirePermission(actor, domain.PermFinanceRead); err != nil {
		return nil, err
	}

	filter, err := buildListFilter(params)
	if err != nil {
		return nil, err
	}

	entries, total, err := s.ledgerRepo.ListEntries(ctx, filter)
	if err != nil {
		logger.Error("Failed to list ledger entries", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}

	page := filter.Offset/filter.Limit + 1
	return &dto.ListLedgerEntriesResponse{
		Entries: dto.ToLedgerEntryResponses(entries),
		Page:    page,
		Limit:   filter.Limit,
		Total:   total,
	}, nil
}

func buildListFilter(params dto.ListLedgerEntriesParams) (portsrepo.ListEntriesFilter, error) {
	filter := portsrepo.ListEntriesFilter{Search: params.Search}

	if params.TransactionType != "" {
		t := domain.TransactionType(params.TransactionType)
		switch t {
		case domain.Credit, domain.Debit, domain.SelfTransfer:
			filter.TransactionType = &t
		default:
			return filter, fmt.Errorf("%w: invalid transactionType %q", apperrors.ErrValidation, params.TransactionType)
		}
	}
	if params.Status != "" {
		st := domain.EntryStatus(params.Status)
		switch st {
		case domain.StatusPending, domain.StatusApproved, domain.StatusRejected:
			filter.Status = &st
		default:
			return filter, fmt.Errorf("%w: invalid status %q", apperrors.ErrValidation, params.Status)
		}
	}
	if params.PartyID != "" {
		filter.PartyID = &params.PartyID
	}
	if params.HeadID != "" {
		filter.HeadID = &params.HeadID
	}
	if params.PaymentModeID != "" {
		filter.PaymentModeID = &params.PaymentModeID
	}
	if params.StartDate != "" {
		t, err := time.Parse("2006-01-02", params.StartDate)
		if err != nil {
			return filter, fmt.Errorf("%w: invalid startDate, expected YYYY-MM-DD", apperrors.ErrValidation)
		}
		filter.StartDate = &t
	}
	if params.EndDate != "" {
		t, err := time.Parse("2006-01-02", params.EndDate)
		if err != nil {
			return filter, fmt.Errorf("%w: invalid endDate, expected YYYY-MM-DD", apperrors.ErrValidation)
		}
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndDate = &end
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	page := params.Page
	if page <= 0 {
		page = 1
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit
	return filter, nil
}

// fetchMutable loads an entry and rejects transitions on deleted entries.
func (s *ledgerService) fetchMutable(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	entry, err := s.ledgerRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.IsDeleted {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrEntryDeleted)
	}
	return entry, nil
}

// ApproveEntry transitions a PENDING entry to APPROVED and applies its balance
// effect. Self-transfers move the amount across both legs.
func (s *ledgerService) ApproveEntry(ctx context.Context, entryID string, actor domain.Actor) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := requirePermission(actor, domain.PermFinanceApprove); err != nil {
		return nil, err
	}

	entry, err := s.fetchMutable(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.StatusPending {
		return nil, fmt.Errorf("%w: entry is %s, only pending entries can be approved", apperrors.ErrConflict, entry.Status)
	}

	prev := snapshot(entry)
	now := time.Now().UTC()
	amount := entry.Amount()

	deltas := map[string]decimal.Decimal{}
	switch entry.TransactionType {
	case domain.Credit:
		deltas[entry.PaymentModeID] = amount
	case domain.Debit:
		deltas[entry.PaymentModeID] = amount.Neg()
	case domain.SelfTransfer:
		deltas[entry.PaymentModeID] = amount.Neg()
		if entry.TransferToModeID != nil {
			deltas[*entry.TransferToModeID] = amount
		}
	}

	entry.Status = domain.StatusApproved
	entry.ApprovedBy = &actor.UserID
	entry.ApprovedAt = &now
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = actor.UserID

	audit := newAudit(entry.EntryID, domain.ActionApproved, prev, snapshot(entry), "", actor.UserID, now)
	if err := s.ledgerRepo.SaveEntryMutation(ctx, *entry, deltas, []domain.LedgerAuditLog{audit}); err != nil {
		logger.Error("Failed to approve ledger entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to approve entry: %w", err)
	}

	logger.Info("Ledger entry approved", slog.String("entry_id", entryID), slog.String("serial_number", entry.SerialNumber))
	return entry, nil
}

// RejectEntry transitions a PENDING entry to REJECTED. The balance is never
// touched by a rejection.
func (s *ledgerService) RejectEntry(ctx context.Context, entryID string, reason string, actor domain.Actor) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := requirePermission(actor, domain.PermFinanceApprove); err != nil {
		return nil, err
	}

	entry, err := s.fetchMutable(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.StatusPending {
		return nil, fmt.Errorf("%w: entry is %s, only pending entries can be rejected", apperrors.ErrConflict, entry.Status)
	}

	prev := snapshot(entry)
	now := time.Now().UTC()

	entry.Status = domain.StatusRejected
	entry.RejectedBy = &actor.UserID
	entry.RejectedAt = &now
	entry.RejectionReason = &reason
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = actor.UserID

	audit := newAudit(entry.EntryID, domain.ActionRejected, prev, snapshot(entry), reason, actor.UserID, now)
	if err := s.ledgerRepo.SaveEntryMutation(ctx, *entry, nil, []domain.LedgerAuditLog{audit}); err != nil {
		logger.Error("Failed to reject ledger entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to reject entry: %w", err)
	}

	logger.Info("Ledger entry rejected", slog.String("entry_id", entryID))
	return entry, nil
}

// RequestEdit attaches a proposed-change payload to an entry. Only one edit
// request may be pending at a time.
func (s *ledgerService) RequestEdit(ctx context.Context, entryID string, changes domain.EditChanges, reason string, actor domain.Actor) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := requirePermission(actor, domain.PermFinanceWrite); err != nil {
		return nil, err
	}
	if changes.Empty() {
		return nil, fmt.Errorf("%w: edit request must propose at least one change", apperrors.ErrValidation)
	}

	entry, err := s.fetchMutable(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.EditRequestStatus != nil && *entry.EditRequestStatus == domain.EditPending {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrEditPendingExists)
	}

	prev := snapshot(entry)
	now := time.Now().UTC()
	pending := domain.EditPending

	entry.EditRequestStatus = &pending
	entry.ProposedChanges = &changes
	entry.EditRequestedBy = &actor.UserID
	entry.EditRequestedAt = &now
	entry.EditRequestReason = &reason
	entry.EditApprovedBy = nil
	entry.EditApprovedAt = nil
	entry.EditRejectedBy = nil
	entry.EditRejectedAt = nil
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = actor.UserID

	audit := newAudit(entry.EntryID, domain.ActionEditRequested, prev, snapshot(entry), reason, actor.UserID, now)
	if err := s.ledgerRepo.SaveEntryMutation(ctx, *entry, nil, []domain.LedgerAuditLog{audit}); err != nil {
		logger.Error("Failed to save edit request", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to save edit request: %w", err)
	}

	logger.Info("Edit request submitted", slog.String("entry_id", entryID))
	return entry, nil
}

// applyEditChanges merges a proposed-change payload onto the entry's mutable
// fields, re-validating every changed foreign key is active and every changed
// amount is positive and applicable to the entry's type.
func (s *ledgerService) applyEditChanges(ctx context.Context, entry *domain.LedgerEntry, changes domain.EditChanges) error {
	if changes.PartyID != nil {
		party, err := s.masterRepo.FindPartyByID(ctx, *changes.PartyID)
		if err != nil || !party.IsActive {
			return fmt.Errorf("%w: party %s is not an active record", apperrors.ErrValidation, *changes.PartyID)
		}
		entry.PartyID = *changes.PartyID
	}
	if changes.HeadID != nil {
		head, err := s.masterRepo.FindHeadByID(ctx, *changes.HeadID)
		if err != nil || !head.IsActive {
			return fmt.Errorf("%w: head %s is not an active record", apperrors.ErrValidation, *changes.HeadID)
		}
		entry.HeadID = *changes.HeadID
	}
	if changes.PaymentTypeID != nil {
		pt, err := s.masterRepo.FindPaymentTypeByID(ctx, *changes.PaymentTypeID)
		if err != nil || !pt.IsActive {
			return fmt.Errorf("%w: payment type %s is not an active record", apperrors.ErrValidation, *changes.PaymentTypeID)
		}
		entry.PaymentTypeID = *changes.PaymentTypeID
	}
	if changes.PaymentModeID != nil {
		mode, err := s.paymentModeRepo.FindPaymentModeByID(ctx, *changes.PaymentModeID)
		if err != nil || !mode.IsActive {
			return fmt.Errorf("%w: payment mode %s is not an active record", apperrors.ErrValidation, *changes.PaymentModeID)
		}
		entry.PaymentModeID = *changes.PaymentModeID
	}

	checkAmount := func(name string, v *decimal.Decimal, applies bool) error {
		if v == nil {
			return nil
		}
		if !applies {
			return fmt.Errorf("%w: %s is not applicable to %s entries", apperrors.ErrValidation, name, entry.TransactionType)
		}
		if v.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: %s must be positive", apperrors.ErrValidation, name)
		}
		return nil
	}
	if err := checkAmount("paymentAmount", changes.PaymentAmount, entry.TransactionType == domain.Debit); err != nil {
		return err
	}
	if err := checkAmount("receivedAmount", changes.ReceivedAmount, entry.TransactionType == domain.Credit); err != nil {
		return err
	}
	if err := checkAmount("transferAmount", changes.TransferAmount, entry.TransactionType == domain.SelfTransfer); err != nil {
		return err
	}
	if changes.PaymentAmount != nil {
		entry.PaymentAmount = changes.PaymentAmount
	}
	if changes.ReceivedAmount != nil {
		entry.ReceivedAmount = changes.ReceivedAmount
	}
	if changes.TransferAmount != nil {
		entry.TransferAmount = changes.TransferAmount
	}

	if changes.Description != nil {
		entry.Description = *changes.Description
	}
	if changes.TransactionDate != nil {
		entry.TransactionDate = changes.TransactionDate.UTC()
	}
	return nil
}

// ApproveEdit merges the pending proposed-change payload onto the entry.
//
// Balance recalculation after an amount or payment-mode edit is deferred to a
// separate reconciliation process; approving such an edit does NOT correct the
// payment mode balance. The integrity report surfaces the resulting drift.
func (s *ledgerService) ApproveEdit(ctx context.Context, entryID string, reason string, actor domain.Actor) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := requirePermission(actor, domain.PermFinanceAdmin); err != nil {
		return nil, err
	}

	entry, err := s.fetchMutable(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.EditRequestStatus == nil || *entry.EditRequestStatus != domain.EditPending || entry.ProposedChanges == nil {
		return nil, apperrors.NewValidationError(noPendingEditMessage)
	}

	prev := snapshot(entry)
	now := time.Now().UTC()
	changes := *entry.ProposedChanges

	if err := s.applyEditChanges(ctx, entry, changes); err != nil {
		return nil, err
	}

	approved := domain.EditApproved
	entry.EditRequestStatus = &approved
	entry.EditApprovedBy = &actor.UserID
	entry.EditApprovedAt = &now
	entry.EditCount++
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = actor.UserID

	next := snapshot(entry)
	audits := []domain.LedgerAuditLog{
		newAudit(entry.EntryID, domain.ActionEditApproved, prev, next, reason, actor.UserID, now),
		newAudit(entry.EntryID, domain.ActionUpdated, prev, next, "edit request applied", actor.UserID, now),
	}
	if err := s.ledgerRepo.SaveEntryMutation(ctx, *entry, nil, audits); err != nil {
		logger.Error("Failed to apply edit request", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to apply edit request: %w", err)
	}

	logger.Info("Edit request approved", slog.String("entry_id", entryID), slog.Int("edit_count", entry.EditCount))
	return entry, nil
}

// RejectEdit declines the pending proposed-change payload.
func (s *ledgerService) RejectEdit(ctx context.Context, entryID string, reason string, actor domain.Actor) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := requirePermission(actor, domain.PermFinanceAdmin); err != nil {
		return nil, err
	}

	entry, err := s.fetchMutable(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry.EditRequestStatus == nil || *entry.EditRequestStatus != domain.EditPending {
		return nil, apperrors.NewValidationError(noPendingEditMessage)
	}

	prev := snapshot(entry)
	now := time.Now().UTC()
	rejected := domain.EditRejected

	entry.EditRequestStatus = &rejected
	entry.EditRejectedBy = &actor.UserID
	entry.EditRejectedAt = &now
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = actor.UserID

	audit := newAudit(entry.EntryID, domain.ActionEditRejected, prev, snapshot(entry), reason, actor.UserID, now)
	if err := s.ledgerRepo.SaveEntryMutation(ctx, *entry, nil, []domain.LedgerAuditLog{audit}); err != nil {
		logger.Error("Failed to reject edit request", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to reject edit request: %w", err)
	}

	logger.Info("Edit request rejected", slog.String("entry_id", entryID))
	return entry, nil
}

// UndoLastAction reverses the caller's own most recent approval or rejection.
// Undoable states: an approved debit, an approved self-transfer (both legs),
// a rejected debit, and an approved or rejected edit request. Anything else
// reports nothing to undo, including attempts by a different user.
func (s *ledgerService) UndoLastAction(ctx context.Context, entryID string, actor domain.Actor) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := requirePermission(actor, domain.PermFinanceRead); err != nil {
		return nil, err
	}

	entry, err := s.fetchMutable(ctx, entryID)
	if err != nil {
		return nil, err
	}

	prev := snapshot(entry)
	now := time.Now().UTC()
	deltas := map[string]decimal.Decimal{}
	var undone string

	switch {
	case entry.Status == domain.StatusApproved &&
		entry.TransactionType == domain.Debit &&
		entry.ApprovedBy != nil && *entry.ApprovedBy == actor.UserID:
		deltas[entry.PaymentModeID] = entry.Amount() // add the debited amount back
		entry.Status = domain.StatusPending
		entry.ApprovedBy = nil
		entry.ApprovedAt = nil
		undone = "debit approval"

	case entry.Status == domain.StatusApproved &&
		entry.TransactionType == domain.SelfTransfer &&
		entry.ApprovedBy != nil && *entry.ApprovedBy == actor.UserID:
		amount := entry.Amount()
		deltas[entry.PaymentModeID] = amount
		if entry.TransferToModeID != nil {
			deltas[*entry.TransferToModeID] = amount.Neg()
		}
		entry.Status = domain.StatusPending
		entry.ApprovedBy = nil
		entry.ApprovedAt = nil
		undone = "self-transfer approval"

	case entry.Status == domain.StatusRejected &&
		entry.TransactionType == domain.Debit &&
		entry.RejectedBy != nil && *entry.RejectedBy == actor.UserID:
		entry.Status = domain.StatusPending
		entry.RejectedBy = nil
		entry.RejectedAt = nil
		entry.RejectionReason = nil
		undone = "debit rejection"

	case entry.EditRequestStatus != nil && *entry.EditRequestStatus == domain.EditApproved &&
		entry.EditApprovedBy != nil && *entry.EditApprovedBy == actor.UserID:
		// Only the sub-state reverts; already-merged field values stay, with
		// their before/after snapshots preserved in the audit log.
		pending := domain.EditPending
		entry.EditRequestStatus = &pending
		entry.EditApprovedBy = nil
		entry.EditApprovedAt = nil
		undone = "edit approval"

	case entry.EditRequestStatus != nil && *entry.EditRequestStatus == domain.EditRejected &&
		entry.EditRejectedBy != nil && *entry.EditRejectedBy == actor.UserID:
		pending := domain.EditPending
		entry.EditRequestStatus = &pending
		entry.EditRejectedBy = nil
		entry.EditRejectedAt = nil
		undone = "edit rejection"

	default:
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, ErrNothingToUndo)
	}

	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = actor.UserID

	reason := "undo of " + undone
	audit := newAudit(entry.EntryID, domain.ActionUpdated, prev, snapshot(entry), reason, actor.UserID, now)
	if err := s.ledgerRepo.SaveEntryMutation(ctx, *entry, deltas, []domain.LedgerAuditLog{audit}); err != nil {
		logger.Error("Failed to undo action", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to undo: %w", err)
	}

	logger.Info("Action undone", slog.String("entry_id", entryID), slog.String("undone", undone))
	return entry, nil
}

// DeleteEntry soft-deletes an entry, blocking all further transitions.
func (s *ledgerService) DeleteEntry(ctx context.Context, entryID string, actor domain.Actor) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := requirePermission(actor, domain.PermFinanceAdmin); err != nil {
		return err
	}

	entry, err := s.fetchMutable(ctx, entryID)
	if err != nil {
		return err
	}

	prev := snapshot(entry)
	now := time.Now().UTC()
	entry.IsDeleted = true
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = actor.UserID

	audit := newAudit(entry.EntryID, domain.ActionDeleted, prev, snapshot(entry), "", actor.UserID, now)
	if err := s.ledgerRepo.SaveEntryMutation(ctx, *entry, nil, []domain.LedgerAuditLog{audit}); err != nil {
		logger.Error("Failed to delete ledger entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return fmt.Errorf("failed to delete entry: %w", err)
	}

	logger.Info("Ledger entry soft-deleted", slog.String("entry_id", entryID))
	return nil
}

// ListAuditTrail returns the append-only audit rows for an entry, oldest first.
func (s *ledgerService) ListAuditTrail(ctx context.Context, entryID string, actor domain.Actor) ([]domain.LedgerAuditLog, error) {
	if err := requirePermission(actor, domain.PermFinanceRead); err != nil {
		return nil, err
	}
	if _, err := s.ledgerRepo.FindEntryByID(ctx, entryID); err != nil {
		return nil, err
	}
	return s.auditRepo.ListAuditLogsByEntry(ctx, entryID)
}

// PreviewBalanceImpact projects a transaction's effect on a payment mode
// without persisting anything.
func (s *ledgerService) PreviewBalanceImpact(ctx context.Context, paymentModeID string, t domain.TransactionType, amount decimal.Decimal, actor domain.Actor) (*accounting.BalancePreview, error) {
	if err := requirePermission(actor, domain.PermFinanceRead); err != nil {
		return nil, err
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	mode, err := s.paymentModeRepo.FindPaymentModeByID(ctx, paymentModeID)
	if err != nil {
		return nil, err
	}
	preview, err := accounting.PreviewBalanceImpact(mode.CurrentBalance, t, amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return &preview, nil
}
