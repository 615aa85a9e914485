package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sunrisehms/finance_backend/internal/apperrors"
	"github.com/sunrisehms/finance_backend/internal/core/domain"
	portsrepo "github.com/sunrisehms/finance_backend/internal/core/ports/repositories"
)

// ReportingRepository runs the aggregate rollups behind the summary reports.
// All queries count only APPROVED, non-deleted entries.
type ReportingRepository struct {
	BaseRepository
}

func newReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepositoryFacade {
	return &ReportingRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ReportingRepositoryFacade = (*ReportingRepository)(nil)

func dateWindow(startDate, endDate *time.Time, args []interface{}) (string, []interface{}) {
	clause := ""
	if startDate != nil {
		args = append(args, *startDate)
		clause += fmt.Sprintf(" AND le.transaction_date >= $%d", len(args))
	}
	if endDate != nil {
		args = append(args, *endDate)
		clause += fmt.Sprintf(" AND le.transaction_date <= $%d", len(args))
	}
	return clause, args
}

func collectGroups(rows pgx.Rows) ([]domain.SummaryGroup, error) {
	defer rows.Close()

	var groups []domain.SummaryGroup
	for rows.Next() {
		var g domain.SummaryGroup
		if err := rows.Scan(&g.Key, &g.Label, &g.TotalCredits, &g.TotalDebits, &g.EntryCount); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan summary group", err)
		}
		g.Net = g.TotalCredits.Sub(g.TotalDebits)
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate summary groups", err)
	}
	return groups, nil
}

// SummaryByPaymentMode rolls up per payment mode. Self-transfer legs count as
// a debit on the source mode and a credit on the destination mode.
func (r *ReportingRepository) SummaryByPaymentMode(ctx context.Context, startDate, endDate *time.Time) ([]domain.SummaryGroup, error) {
	var args []interface{}
	window, args := dateWindow(startDate, endDate, args)

	query := `
		WITH legs AS (
			SELECT le.payment_mode_id AS mode_id,
				CASE WHEN le.transaction_type = 'CREDIT' THEN le.received_amount ELSE 0 END AS credit,
				CASE WHEN le.transaction_type = 'DEBIT' THEN le.payment_amount
				     WHEN le.transaction_type = 'SELF_TRANSFER' THEN le.transfer_amount
				     ELSE 0 END AS debit
			FROM ledger_entries le
			WHERE le.status = 'APPROVED' AND le.is_deleted = FALSE` + window + `
			UNION ALL
			SELECT le.transfer_to_mode_id AS mode_id, le.transfer_amount AS credit, 0 AS debit
			FROM ledger_entries le
			WHERE le.status = 'APPROVED' AND le.is_deleted = FALSE
			  AND le.transaction_type = 'SELF_TRANSFER' AND le.transfer_to_mode_id IS NOT NULL` + window + `
		)
		SELECT pm.payment_mode_id, pm.name,
			COALESCE(SUM(l.credit), 0), COALESCE(SUM(l.debit), 0), COUNT(*)
		FROM legs l
		JOIN payment_modes pm ON pm.payment_mode_id = l.mode_id
		GROUP BY pm.payment_mode_id, pm.name
		ORDER BY pm.name;
	`
	// The same window placeholders appear in both halves of the UNION.
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query payment mode summary", err)
	}
	return collectGroups(rows)
}

// SummaryByParty rolls up credits and debits per party. Self-transfers are
// internal moves and are excluded.
func (r *ReportingRepository) SummaryByParty(ctx context.Context, startDate, endDate *time.Time) ([]domain.SummaryGroup, error) {
	var args []interface{}
	window, args := dateWindow(startDate, endDate, args)

	query := `
		SELECT p.party_id, p.name,
			COALESCE(SUM(CASE WHEN le.transaction_type = 'CREDIT' THEN le.received_amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN le.transaction_type = 'DEBIT' THEN le.payment_amount ELSE 0 END), 0),
			COUNT(*)
		FROM ledger_entries le
		JOIN parties p ON p.party_id = le.party_id
		WHERE le.status = 'APPROVED' AND le.is_deleted = FALSE
		  AND le.transaction_type IN ('CREDIT', 'DEBIT')` + window + `
		GROUP BY p.party_id, p.name
		ORDER BY p.name;
	`
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query party summary", err)
	}
	return collectGroups(rows)
}

// SummaryByHead rolls up credits and debits per head. Self-transfers are excluded.
func (r *ReportingRepository) SummaryByHead(ctx context.Context, startDate, endDate *time.Time) ([]domain.SummaryGroup, error) {
	var args []interface{}
	window, args := dateWindow(startDate, endDate, args)

	query := `
		SELECT h.head_id, h.name,
			COALESCE(SUM(CASE WHEN le.transaction_type = 'CREDIT' THEN le.received_amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN le.transaction_type = 'DEBIT' THEN le.payment_amount ELSE 0 END), 0),
			COUNT(*)
		FROM ledger_entries le
		JOIN heads h ON h.head_id = le.head_id
		WHERE le.status = 'APPROVED' AND le.is_deleted = FALSE
		  AND le.transaction_type IN ('CREDIT', 'DEBIT')` + window + `
		GROUP BY h.head_id, h.name
		ORDER BY h.name;
	`
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query head summary", err)
	}
	return collectGroups(rows)
}

// SummaryByDay rolls up credits and debits per calendar day, newest first.
func (r *ReportingRepository) SummaryByDay(ctx context.Context, startDate, endDate *time.Time) ([]domain.SummaryGroup, error) {
	var args []interface{}
	window, args := dateWindow(startDate, endDate, args)

	query := `
		SELECT to_char(le.transaction_date, 'YYYY-MM-DD') AS day,
			to_char(le.transaction_date, 'YYYY-MM-DD') AS label,
			COALESCE(SUM(CASE WHEN le.transaction_type = 'CREDIT' THEN le.received_amount ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN le.transaction_type = 'DEBIT' THEN le.payment_amount ELSE 0 END), 0),
			COUNT(*)
		FROM ledger_entries le
		WHERE le.status = 'APPROVED' AND le.is_deleted = FALSE
		  AND le.transaction_type IN ('CREDIT', 'DEBIT')` + window + `
		GROUP BY day
		ORDER BY day DESC;
	`
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query daily summary", err)
	}
	return collectGroups(rows)
}
