package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sunrisehms/finance_backend/internal/apperrors"
	"github.com/sunrisehms/finance_backend/internal/core/domain"
	portsrepo "github.com/sunrisehms/finance_backend/internal/core/ports/repositories"
)

type PgxPaymentModeRepository struct {
	BaseRepository
}

// newPgxPaymentModeRepository creates a new repository for payment mode data.
func newPgxPaymentModeRepository(pool *pgxpool.Pool) portsrepo.PaymentModeRepositoryFacade {
	return &PgxPaymentModeRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.PaymentModeRepositoryFacade = (*PgxPaymentModeRepository)(nil)

const paymentModeColumns = `
	payment_mode_id, name, opening_balance, current_balance, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

func scanPaymentMode(row pgx.Row, m *domain.PaymentMode) error {
	return row.Scan(
		&m.PaymentModeID, &m.Name, &m.OpeningBalance, &m.CurrentBalance, &m.IsActive,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
}

// isUniqueViolation reports whether err is a Postgres unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *PgxPaymentModeRepository) CreatePaymentMode(ctx context.Context, mode domain.PaymentMode) error {
	query := `
		INSERT INTO payment_modes (` + paymentModeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		mode.PaymentModeID, mode.Name, mode.OpeningBalance, mode.CurrentBalance, mode.IsActive,
		mode.CreatedAt, mode.CreatedBy, mode.LastUpdatedAt, mode.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewAppError(409, "payment mode name already exists", apperrors.ErrDuplicate)
		}
		return apperrors.NewAppError(500, "failed to insert payment mode "+mode.PaymentModeID, err)
	}
	return nil
}

func (r *PgxPaymentModeRepository) FindPaymentModeByID(ctx context.Context, paymentModeID string) (*domain.PaymentMode, error) {
	query := `SELECT ` + paymentModeColumns + ` FROM payment_modes WHERE payment_mode_id = $1;`

	var mode domain.PaymentMode
	err := scanPaymentMode(r.Pool.QueryRow(ctx, query, paymentModeID), &mode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("payment mode " + paymentModeID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find payment mode "+paymentModeID, err)
	}
	return &mode, nil
}

func (r *PgxPaymentModeRepository) ListPaymentModes(ctx context.Context, includeInactive bool) ([]domain.PaymentMode, error) {
	query := `SELECT ` + paymentModeColumns + ` FROM payment_modes`
	if !includeInactive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list payment modes", err)
	}
	defer rows.Close()

	var modes []domain.PaymentMode
	for rows.Next() {
		var m domain.PaymentMode
		if err := scanPaymentMode(rows, &m); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan payment mode", err)
		}
		modes = append(modes, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate payment modes", err)
	}
	return modes, nil
}

func (r *PgxPaymentModeRepository) DeactivatePaymentMode(ctx context.Context, paymentModeID string, userID string, now time.Time) error {
	query := `
		UPDATE payment_modes
		SET is_active = FALSE, last_updated_at = $1, last_updated_by = $2
		WHERE payment_mode_id = $3;
	`
	tag, err := r.Pool.Exec(ctx, query, now, userID, paymentModeID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to deactivate payment mode "+paymentModeID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("payment mode " + paymentModeID + " not found")
	}
	return nil
}

// GetPaymentModeTotals sums APPROVED credits and debits touching the mode,
// counting self-transfers on both legs.
func (r *PgxPaymentModeRepository) GetPaymentModeTotals(ctx context.Context, paymentModeID string) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE
				WHEN transaction_type = 'CREDIT' AND payment_mode_id = $1 THEN received_amount
				WHEN transaction_type = 'SELF_TRANSFER' AND transfer_to_mode_id = $1 THEN transfer_amount
				ELSE 0 END), 0) AS total_credits,
			COALESCE(SUM(CASE
				WHEN transaction_type = 'DEBIT' AND payment_mode_id = $1 THEN payment_amount
				WHEN transaction_type = 'SELF_TRANSFER' AND payment_mode_id = $1 THEN transfer_amount
				ELSE 0 END), 0) AS total_debits
		FROM ledger_entries
		WHERE status = 'APPROVED'
		  AND is_deleted = FALSE
		  AND (payment_mode_id = $1 OR transfer_to_mode_id = $1);
	`
	var credits, debits decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, paymentModeID).Scan(&credits, &debits); err != nil {
		return decimal.Zero, decimal.Zero, apperrors.NewAppError(500, "failed to total payment mode "+paymentModeID, err)
	}
	return credits, debits, nil
}
