package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sunrisehms/finance_backend/internal/apperrors"
	"github.com/sunrisehms/finance_backend/internal/core/domain"
	portsrepo "github.com/sunrisehms/finance_backend/internal/core/ports/repositories"
	portssvc "github.com/sunrisehms/finance_backend/internal/core/ports/services"
	"github.com/sunrisehms/finance_backend/internal/dto"
	"github.com/sunrisehms/finance_backend/internal/middleware"
	"github.com/sunrisehms/finance_backend/internal/utils/accounting"
)

// reportService produces the summary rollups and the balance integrity
// diagnostic. All figures come from APPROVED, non-deleted entries.
type reportService struct {
	reportingRepo   portsrepo.ReportingRepositoryFacade
	paymentModeRepo portsrepo.PaymentModeRepositoryFacade
}

// NewReportService creates the reporting service.
func NewReportService(reportingRepo portsrepo.ReportingRepositoryFacade, paymentModeRepo portsrepo.PaymentModeRepositoryFacade) portssvc.ReportSvcFacade {
	return &reportService{reportingRepo: reportingRepo, paymentModeRepo: paymentModeRepo}
}

var _ portssvc.ReportSvcFacade = (*reportService)(nil)

// GetSummary aggregates approved entries grouped by the requested dimension.
// The payment-mode report additionally carries per-mode integrity rows so a
// drifted running balance is visible next to its recomputed value.
func (s *reportService) GetSummary(ctx context.Context, reportType string, startDate, endDate *time.Time, actor domain.Actor) (*dto.SummaryResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := requirePermission(actor, domain.PermFinanceRead); err != nil {
		return nil, err
	}
	if startDate != nil && endDate != nil && endDate.Before(*startDate) {
		return nil, fmt.Errorf("%w: endDate must not precede startDate", apperrors.ErrValidation)
	}

	var groups []domain.SummaryGroup
	var err error
	switch reportType {
	case dto.SummaryByPaymentMode:
		groups, err = s.reportingRepo.SummaryByPaymentMode(ctx, startDate, endDate)
	case dto.SummaryByParty:
		groups, err = s.reportingRepo.SummaryByParty(ctx, startDate, endDate)
	case dto.SummaryByHead:
		groups, err = s.reportingRepo.SummaryByHead(ctx, startDate, endDate)
	case dto.SummaryByDay:
		groups, err = s.reportingRepo.SummaryByDay(ctx, startDate, endDate)
	default:
		return nil, fmt.Errorf("%w: unknown report type %q", apperrors.ErrValidation, reportType)
	}
	if err != nil {
		logger.Error("Failed to build summary report", slog.String("error", err.Error()), slog.String("type", reportType))
		return nil, fmt.Errorf("failed to build summary report: %w", err)
	}

	resp := &dto.SummaryResponse{
		Type:              reportType,
		Groups:            groups,
		GrandTotalCredits: decimal.Zero,
		GrandTotalDebits:  decimal.Zero,
		GrandNet:          decimal.Zero,
	}
	if startDate != nil {
		resp.StartDate = startDate.Format("2006-01-02")
	}
	if endDate != nil {
		resp.EndDate = endDate.Format("2006-01-02")
	}
	for _, g := range groups {
		resp.GrandTotalCredits = resp.GrandTotalCredits.Add(g.TotalCredits)
		resp.GrandTotalDebits = resp.GrandTotalDebits.Add(g.TotalDebits)
	}
	resp.GrandNet = resp.GrandTotalCredits.Sub(resp.GrandTotalDebits)

	// Integrity rows only make sense unwindowed: the stored balance reflects
	// the full history, not a date slice.
	if reportType == dto.SummaryByPaymentMode && startDate == nil && endDate == nil {
		integrity, err := s.collectIntegrity(ctx)
		if err != nil {
			logger.Error("Failed to compute balance integrity", slog.String("error", err.Error()))
			return nil, err
		}
		resp.Integrity = integrity
	}
	return resp, nil
}

func (s *reportService) collectIntegrity(ctx context.Context) ([]domain.BalanceIntegrity, error) {
	modes, err := s.paymentModeRepo.ListPaymentModes(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment modes: %w", err)
	}
	results := make([]domain.BalanceIntegrity, 0, len(modes))
	for i := range modes {
		credits, debits, err := s.paymentModeRepo.GetPaymentModeTotals(ctx, modes[i].PaymentModeID)
		if err != nil {
			return nil, fmt.Errorf("failed to total payment mode %s: %w", modes[i].PaymentModeID, err)
		}
		results = append(results, accounting.VerifyBalanceIntegrity(modes[i], credits, debits))
	}
	return results, nil
}

// VerifyPaymentModeIntegrity recomputes one payment mode's balance from its
// approved history and compares it to the stored running balance.
func (s *reportService) VerifyPaymentModeIntegrity(ctx context.Context, paymentModeID string, actor domain.Actor) (*domain.BalanceIntegrity, error) {
	if err := requirePermission(actor, domain.PermFinanceRead); err != nil {
		return nil, err
	}
	mode, err := s.paymentModeRepo.FindPaymentModeByID(ctx, paymentModeID)
	if err != nil {
		return nil, err
	}
	credits, debits, err := s.paymentModeRepo.GetPaymentModeTotals(ctx, paymentModeID)
	if err != nil {
		return nil, fmt.Errorf("failed to total payment mode %s: %w", paymentModeID, err)
	}
	result := accounting.VerifyBalanceIntegrity(*mode, credits, debits)
	return &result, nil
}
