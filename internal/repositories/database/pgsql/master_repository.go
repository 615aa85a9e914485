package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sunrisehms/finance_backend/internal/apperrors"
	"github.com/sunrisehms/finance_backend/internal/core/domain"
	portsrepo "github.com/sunrisehms/finance_backend/internal/core/ports/repositories"
)

// PgxMasterRepository persists the party/head/payment-type reference tables.
// The three tables share a shape, so the queries only differ in table and key
// column names.
type PgxMasterRepository struct {
	BaseRepository
}

// newPgxMasterRepository creates a new repository for master reference data.
func newPgxMasterRepository(pool *pgxpool.Pool) portsrepo.MasterRepositoryFacade {
	return &PgxMasterRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.MasterRepositoryFacade = (*PgxMasterRepository)(nil)

type namedMasterRow struct {
	ID       string
	Name     string
	IsActive bool
	domain.AuditFields
}

func (r *PgxMasterRepository) insertNamed(ctx context.Context, table, idCol string, row namedMasterRow) error {
	query := `
		INSERT INTO ` + table + ` (` + idCol + `, name, is_active, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.Pool.Exec(ctx, query,
		row.ID, row.Name, row.IsActive,
		row.CreatedAt, row.CreatedBy, row.LastUpdatedAt, row.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewAppError(409, "name already exists in "+table, apperrors.ErrDuplicate)
		}
		return apperrors.NewAppError(500, "failed to insert into "+table, err)
	}
	return nil
}

func (r *PgxMasterRepository) findNamed(ctx context.Context, table, idCol, id string) (*namedMasterRow, error) {
	query := `
		SELECT ` + idCol + `, name, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM ` + table + ` WHERE ` + idCol + ` = $1;
	`
	var row namedMasterRow
	err := r.Pool.QueryRow(ctx, query, id).Scan(
		&row.ID, &row.Name, &row.IsActive,
		&row.CreatedAt, &row.CreatedBy, &row.LastUpdatedAt, &row.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("record " + id + " not found in " + table)
		}
		return nil, apperrors.NewAppError(500, "failed to find record in "+table, err)
	}
	return &row, nil
}

func (r *PgxMasterRepository) listNamed(ctx context.Context, table, idCol string, includeInactive bool) ([]namedMasterRow, error) {
	query := `
		SELECT ` + idCol + `, name, is_active, created_at, created_by, last_updated_at, last_updated_by
		FROM ` + table
	if !includeInactive {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name;`

	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list "+table, err)
	}
	defer rows.Close()

	var result []namedMasterRow
	for rows.Next() {
		var row namedMasterRow
		err := rows.Scan(
			&row.ID, &row.Name, &row.IsActive,
			&row.CreatedAt, &row.CreatedBy, &row.LastUpdatedAt, &row.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan row from "+table, err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate "+table, err)
	}
	return result, nil
}

func (r *PgxMasterRepository) deactivateNamed(ctx context.Context, table, idCol, id, userID string, now time.Time) error {
	query := `
		UPDATE ` + table + `
		SET is_active = FALSE, last_updated_at = $1, last_updated_by = $2
		WHERE ` + idCol + ` = $3;
	`
	tag, err := r.Pool.Exec(ctx, query, now, userID, id)
	if err != nil {
		return apperrors.NewAppError(500, "failed to deactivate record in "+table, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("record " + id + " not found in " + table)
	}
	return nil
}

func (r *PgxMasterRepository) CreateParty(ctx context.Context, party domain.Party) error {
	return r.insertNamed(ctx, "parties", "party_id", namedMasterRow{
		ID: party.PartyID, Name: party.Name, IsActive: party.IsActive, AuditFields: party.AuditFields,
	})
}

func (r *PgxMasterRepository) FindPartyByID(ctx context.Context, partyID string) (*domain.Party, error) {
	row, err := r.findNamed(ctx, "parties", "party_id", partyID)
	if err != nil {
		return nil, err
	}
	return &domain.Party{PartyID: row.ID, Name: row.Name, IsActive: row.IsActive, AuditFields: row.AuditFields}, nil
}

func (r *PgxMasterRepository) ListParties(ctx context.Context, includeInactive bool) ([]domain.Party, error) {
	rows, err := r.listNamed(ctx, "parties", "party_id", includeInactive)
	if err != nil {
		return nil, err
	}
	parties := make([]domain.Party, 0, len(rows))
	for _, row := range rows {
		parties = append(parties, domain.Party{PartyID: row.ID, Name: row.Name, IsActive: row.IsActive, AuditFields: row.AuditFields})
	}
	return parties, nil
}

func (r *PgxMasterRepository) DeactivateParty(ctx context.Context, partyID string, userID string, now time.Time) error {
	return r.deactivateNamed(ctx, "parties", "party_id", partyID, userID, now)
}

func (r *PgxMasterRepository) CreateHead(ctx context.Context, head domain.Head) error {
	return r.insertNamed(ctx, "heads", "head_id", namedMasterRow{
		ID: head.HeadID, Name: head.Name, IsActive: head.IsActive, AuditFields: head.AuditFields,
	})
}

func (r *PgxMasterRepository) FindHeadByID(ctx context.Context, headID string) (*domain.Head, error) {
	row, err := r.findNamed(ctx, "heads", "head_id", headID)
	if err != nil {
		return nil, err
	}
	return &domain.Head{HeadID: row.ID, Name: row.Name, IsActive: row.IsActive, AuditFields: row.AuditFields}, nil
}

func (r *PgxMasterRepository) ListHeads(ctx context.Context, includeInactive bool) ([]domain.Head, error) {
	rows, err := r.listNamed(ctx, "heads", "head_id", includeInactive)
	if err != nil {
		return nil, err
	}
	heads := make([]domain.Head, 0, len(rows))
	for _, row := range rows {
		heads = append(heads, domain.Head{HeadID: row.ID, Name: row.Name, IsActive: row.IsActive, AuditFields: row.AuditFields})
	}
	return heads, nil
}

func (r *PgxMasterRepository) DeactivateHead(ctx context.Context, headID string, userID string, now time.Time) error {
	return r.deactivateNamed(ctx, "heads", "head_id", headID, userID, now)
}

func (r *PgxMasterRepository) CreatePaymentType(ctx context.Context, pt domain.PaymentType) error {
	return r.insertNamed(ctx, "payment_types", "payment_type_id", namedMasterRow{
		ID: pt.PaymentTypeID, Name: pt.Name, IsActive: pt.IsActive, AuditFields: pt.AuditFields,
	})
}

func (r *PgxMasterRepository) FindPaymentTypeByID(ctx context.Context, paymentTypeID string) (*domain.PaymentType, error) {
	row, err := r.findNamed(ctx, "payment_types", "payment_type_id", paymentTypeID)
	if err != nil {
		return nil, err
	}
	return &domain.PaymentType{PaymentTypeID: row.ID, Name: row.Name, IsActive: row.IsActive, AuditFields: row.AuditFields}, nil
}

func (r *PgxMasterRepository) ListPaymentTypes(ctx context.Context, includeInactive bool) ([]domain.PaymentType, error) {
	rows, err := r.listNamed(ctx, "payment_types", "payment_type_id", includeInactive)
	if err != nil {
		return nil, err
	}
	types := make([]domain.PaymentType, 0, len(rows))
	for _, row := range rows {
		types = append(types, domain.PaymentType{PaymentTypeID: row.ID, Name: row.Name, IsActive: row.IsActive, AuditFields: row.AuditFields})
	}
	return types, nil
}

func (r *PgxMasterRepository) DeactivatePaymentType(ctx context.Context, paymentTypeID string, userID string, now time.Time) error {
	return r.deactivateNamed(ctx, "payment_types", "payment_type_id", paymentTypeID, userID, now)
}
