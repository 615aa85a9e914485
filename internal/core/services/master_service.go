package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sunrisehms/finance_backend/internal/apperrors"
	"github.com/sunrisehms/finance_backend/internal/core/domain"
	portsrepo "github.com/sunrisehms/finance_backend/internal/core/ports/repositories"
	portssvc "github.com/sunrisehms/finance_backend/internal/core/ports/services"
	"github.com/sunrisehms/finance_backend/internal/dto"
	"github.com/sunrisehms/finance_backend/internal/middleware"
)

// masterService manages the reference tables ledger entries point at: payment
// modes, parties, heads and payment types. Masters are never hard-deleted;
// deactivation hides them from new entries while history keeps resolving.
type masterService struct {
	masterRepo      portsrepo.MasterRepositoryFacade
	paymentModeRepo portsrepo.PaymentModeRepositoryFacade
}

// NewMasterService creates the master data service.
func NewMasterService(masterRepo portsrepo.MasterRepositoryFacade, paymentModeRepo portsrepo.PaymentModeRepositoryFacade) portssvc.MasterSvcFacade {
	return &masterService{masterRepo: masterRepo, paymentModeRepo: paymentModeRepo}
}

var _ portssvc.MasterSvcFacade = (*masterService)(nil)

func newAuditFields(actorID string, now time.Time) domain.AuditFields {
	return domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     actorID,
		LastUpdatedAt: now,
		LastUpdatedBy: actorID,
	}
}

func cleanName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("%w: name must not be blank", apperrors.ErrValidation)
	}
	return trimmed, nil
}

func (s *masterService) CreatePaymentMode(ctx context.Context, req dto.CreatePaymentModeRequest, actor domain.Actor) (*domain.PaymentMode, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := requirePermission(actor, domain.PermFinanceAdmin); err != nil {
		return nil, err
	}
	name, err := cleanName(req.Name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	mode := domain.PaymentMode{
		PaymentModeID:  uuid.NewString(),
		Name:           name,
		OpeningBalance: req.OpeningBalance,
		CurrentBalance: req.OpeningBalance,
		IsActive:       true,
		AuditFields:    newAuditFields(actor.UserID, now),
	}
	if err := s.paymentModeRepo.CreatePaymentMode(ctx, mode); err != nil {
		logger.Error("Failed to create payment mode", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create payment mode: %w", err)
	}
	logger.Info("Payment mode created", slog.String("payment_mode_id", mode.PaymentModeID), slog.String("name", mode.Name))
	return &mode, nil
}

func (s *masterService) GetPaymentModeByID(ctx context.Context, paymentModeID string, actor domain.Actor) (*domain.PaymentMode, error) {
	if err := requirePermission(actor, domain.PermFinanceRead); err != nil {
		return nil, err
	}
	return s.paymentModeRepo.FindPaymentModeByID(ctx, paymentModeID)
}

func (s *masterService) ListPaymentModes(ctx context.Context, includeInactive bool, actor domain.Actor) ([]domain.PaymentMode, error) {
	if err := requirePermission(actor, domain.PermFinanceRead); err != nil {
		return nil, err
	}
	return s.paymentModeRepo.ListPaymentModes(ctx, includeInactive)
}

func (s *masterService) DeactivatePaymentMode(ctx context.Context, paymentModeID string, actor domain.Actor) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := requirePermission(actor, domain.PermFinanceAdmin); err != nil {
		return err
	}
	if _, err := s.paymentModeRepo.FindPaymentModeByID(ctx, paymentModeID); err != nil {
		return err
	}
	if err := s.paymentModeRepo.DeactivatePaymentMode(ctx, paymentModeID, actor.UserID, time.Now().UTC()); err != nil {
		logger.Error("Failed to deactivate payment mode", slog.String("error", err.Error()), slog.String("payment_mode_id", paymentModeID))
		return fmt.Errorf("failed to deactivate payment mode: %w", err)
	}
	logger.Info("Payment mode deactivated", slog.String("payment_mode_id", paymentModeID))
	return nil
}

func (s *masterService) CreateParty(ctx context.Context, req dto.CreateNamedMasterRequest, actor domain.Actor) (*domain.Party, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := requirePermission(actor, domain.PermFinanceWrite); err != nil {
		return nil, err
	}
	name, err := cleanName(req.Name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	party := domain.Party{
		PartyID:     uuid.NewString(),
		Name:        name,
		IsActive:    true,
		AuditFields: newAuditFields(actor.UserID, now),
	}
	if err := s.masterRepo.CreateParty(ctx, party); err != nil {
		logger.Error("Failed to create party", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create party: %w", err)
	}
	logger.Info("Party created", slog.String("party_id", party.PartyID), slog.String("name", party.Name))
	return &party, nil
}

func (s *masterService) ListParties(ctx context.Context, includeInactive bool, actor domain.Actor) ([]domain.Party, error) {
	if err := requirePermission(actor, domain.PermFinanceRead); err != nil {
		return nil, err
	}
	return s.masterRepo.ListParties(ctx, includeInactive)
}

func (s *masterService) DeactivateParty(ctx context.Context, partyID string, actor domain.Actor) error {
	if err := requirePermission(actor, domain.PermFinanceAdmin); err != nil {
		return err
	}
	if _, err := s.masterRepo.FindPartyByID(ctx, partyID); err != nil {
		return err
	}
	return s.masterRepo.DeactivateParty(ctx, partyID, actor.UserID, time.Now().UTC())
}

func (s *masterService) CreateHead(ctx context.Context, req dto.CreateNamedMasterRequest, actor domain.Actor) (*domain.Head, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := requirePermission(actor, domain.PermFinanceWrite); err != nil {
		return nil, err
	}
	name, err := cleanName(req.Name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	head := domain.Head{
		HeadID:      uuid.NewString(),
		Name:        name,
		IsActive:    true,
		AuditFields: newAuditFields(actor.UserID, now),
	}
	if err := s.masterRepo.CreateHead(ctx, head); err != nil {
		logger.Error("Failed to create head", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create head: %w", err)
	}
	logger.Info("Head created", slog.String("head_id", head.HeadID), slog.String("name", head.Name))
	return &head, nil
}

func (s *masterService) ListHeads(ctx context.Context, includeInactive bool, actor domain.Actor) ([]domain.Head, error) {
	if err := requirePermission(actor, domain.PermFinanceRead); err != nil {
		return nil, err
	}
	return s.masterRepo.ListHeads(ctx, includeInactive)
}

func (s *masterService) DeactivateHead(ctx context.Context, headID string, actor domain.Actor) error {
	if err := requirePermission(actor, domain.PermFinanceAdmin); err != nil {
		return err
	}
	if _, err := s.masterRepo.FindHeadByID(ctx, headID); err != nil {
		return err
	}
	return s.masterRepo.DeactivateHead(ctx, headID, actor.UserID, time.Now().UTC())
}

func (s *masterService) CreatePaymentType(ctx context.Context, req dto.CreateNamedMasterRequest, actor domain.Actor) (*domain.PaymentType, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := requirePermission(actor, domain.PermFinanceWrite); err != nil {
		return nil, err
	}
	name, err := cleanName(req.Name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	pt := domain.PaymentType{
		PaymentTypeID: uuid.NewString(),
		Name:          name,
		IsActive:      true,
		AuditFields:   newAuditFields(actor.UserID, now),
	}
	if err := s.masterRepo.CreatePaymentType(ctx, pt); err != nil {
		logger.Error("Failed to create payment type", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create payment type: %w", err)
	}
	logger.Info("Payment type created", slog.String("payment_type_id", pt.PaymentTypeID), slog.String("name", pt.Name))
	return &pt, nil
}

func (s *masterService) ListPaymentTypes(ctx context.Context, includeInactive bool, actor domain.Actor) ([]domain.PaymentType, error) {
	if err := requirePermission(actor, domain.PermFinanceRead); err != nil {
		return nil, err
	}
	return s.masterRepo.ListPaymentTypes(ctx, includeInactive)
}

func (s *masterService) DeactivatePaymentType(ctx context.Context, paymentTypeID string, actor domain.Actor) error {
	if err := requirePermission(actor, domain.PermFinanceAdmin); err != nil {
		return err
	}
	if _, err := s.masterRepo.FindPaymentTypeByID(ctx, paymentTypeID); err != nil {
		return err
	}
	return s.masterRepo.DeactivatePaymentType(ctx, paymentTypeID, actor.UserID, time.Now().UTC())
}
