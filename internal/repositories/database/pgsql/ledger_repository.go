package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sunrisehms/finance_backend/internal/apperrors"
	"github.com/sunrisehms/finance_backend/internal/core/domain"
	portsrepo "github.com/sunrisehms/finance_backend/internal/core/ports/repositories"
	"github.com/sunrisehms/finance_backend/internal/utils/serial"
)

type PgxLedgerRepository struct {
	BaseRepository
}

// newPgxLedgerRepository creates a new repository for ledger entry data.
func newPgxLedgerRepository(pool *pgxpool.Pool) portsrepo.LedgerRepositoryFacade {
	return &PgxLedgerRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

const entryColumns = `
	entry_id, serial_number, transaction_type, transaction_date, description,
	party_id, head_id, payment_type_id, payment_mode_id, transfer_to_mode_id,
	payment_amount, received_amount, transfer_amount, component_a, component_b,
	opening_balance, current_balance,
	status, approved_by, approved_at, rejected_by, rejected_at, rejection_reason,
	edit_request_status, proposed_changes, edit_requested_by, edit_requested_at,
	edit_request_reason, edit_approved_by, edit_approved_at, edit_rejected_by,
	edit_rejected_at, edit_count,
	is_deleted, created_at, created_by, last_updated_at, last_updated_by`

const entryColumnsQualified = `
	le.entry_id, le.serial_number, le.transaction_type, le.transaction_date, le.description,
	le.party_id, le.head_id, le.payment_type_id, le.payment_mode_id, le.transfer_to_mode_id,
	le.payment_amount, le.received_amount, le.transfer_amount, le.component_a, le.component_b,
	le.opening_balance, le.current_balance,
	le.status, le.approved_by, le.approved_at, le.rejected_by, le.rejected_at, le.rejection_reason,
	le.edit_request_status, le.proposed_changes, le.edit_requested_by, le.edit_requested_at,
	le.edit_request_reason, le.edit_approved_by, le.edit_approved_at, le.edit_rejected_by,
	le.edit_rejected_at, le.edit_count,
	le.is_deleted, le.created_at, le.created_by, le.last_updated_at, le.last_updated_by`

const insertAuditLogQuery = `
	INSERT INTO ledger_audit_logs (log_id, entry_id, action, previous_data, new_data, reason, actor_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`

func scanEntry(row pgx.Row, e *domain.LedgerEntry) error {
	return row.Scan(
		&e.EntryID, &e.SerialNumber, &e.TransactionType, &e.TransactionDate, &e.Description,
		&e.PartyID, &e.HeadID, &e.PaymentTypeID, &e.PaymentModeID, &e.TransferToModeID,
		&e.PaymentAmount, &e.ReceivedAmount, &e.TransferAmount, &e.ComponentA, &e.ComponentB,
		&e.OpeningBalance, &e.CurrentBalance,
		&e.Status, &e.ApprovedBy, &e.ApprovedAt, &e.RejectedBy, &e.RejectedAt, &e.RejectionReason,
		&e.EditRequestStatus, &e.ProposedChanges, &e.EditRequestedBy, &e.EditRequestedAt,
		&e.EditRequestReason, &e.EditApprovedBy, &e.EditApprovedAt, &e.EditRejectedBy,
		&e.EditRejectedAt, &e.EditCount,
		&e.IsDeleted, &e.CreatedAt, &e.CreatedBy, &e.LastUpdatedAt, &e.LastUpdatedBy,
	)
}

func queueAuditInsert(batch *pgx.Batch, audit domain.LedgerAuditLog) {
	batch.Queue(insertAuditLogQuery,
		audit.LogID, audit.EntryID, audit.Action, audit.PreviousData,
		audit.NewData, nullableString(audit.Reason), audit.ActorID, audit.CreatedAt,
	)
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// CreateEntry inserts the entry, its CREATED audit row and the balance effect
// in one transaction. The serial number is minted inside the transaction under
// an advisory lock keyed by transaction type, so concurrent creates of the
// same type cannot collide or leave gaps.
func (r *PgxLedgerRepository) CreateEntry(ctx context.Context, entry *domain.LedgerEntry, balanceDelta decimal.Decimal, audit domain.LedgerAuditLog) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	// Serialize serial-number assignment per transaction type.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1));`, "ledger_serial_"+string(entry.TransactionType)); err != nil {
		return apperrors.NewAppError(500, "failed to acquire serial lock", err)
	}

	var lastSerial *string
	err = tx.QueryRow(ctx, `
		SELECT serial_number FROM ledger_entries
		WHERE transaction_type = $1
		ORDER BY created_at DESC, serial_number DESC
		LIMIT 1;
	`, entry.TransactionType).Scan(&lastSerial)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewAppError(500, "failed to read last serial number", err)
	}
	last := ""
	if lastSerial != nil {
		last = *lastSerial
	}
	entry.SerialNumber = serial.Next(entry.TransactionType.SerialPrefix(), last)

	// Lock the payment mode row, snapshot its balance onto the entry and
	// apply the delta (zero for pending entries).
	var currentBalance decimal.Decimal
	err = tx.QueryRow(ctx, `
		SELECT current_balance FROM payment_modes
		WHERE payment_mode_id = $1
		FOR UPDATE;
	`, entry.PaymentModeID).Scan(&currentBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFoundError("payment mode " + entry.PaymentModeID + " not found")
		}
		return apperrors.NewAppError(500, "failed to lock payment mode "+entry.PaymentModeID, err)
	}

	entry.OpeningBalance = currentBalance
	entry.CurrentBalance = currentBalance.Add(balanceDelta)

	if !balanceDelta.IsZero() {
		_, err = tx.Exec(ctx, `
			UPDATE payment_modes
			SET current_balance = current_balance + $1, last_updated_at = $2, last_updated_by = $3
			WHERE payment_mode_id = $4;
		`, balanceDelta, entry.LastUpdatedAt, entry.LastUpdatedBy, entry.PaymentModeID)
		if err != nil {
			return apperrors.NewAppError(500, "failed to apply balance to payment mode "+entry.PaymentModeID, err)
		}
	}

	insertQuery := `
		INSERT INTO ledger_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
			$31, $32, $33, $34, $35, $36, $37, $38);
	`
	_, err = tx.Exec(ctx, insertQuery,
		entry.EntryID, entry.SerialNumber, entry.TransactionType, entry.TransactionDate, entry.Description,
		entry.PartyID, entry.HeadID, entry.PaymentTypeID, entry.PaymentModeID, entry.TransferToModeID,
		entry.PaymentAmount, entry.ReceivedAmount, entry.TransferAmount, entry.ComponentA, entry.ComponentB,
		entry.OpeningBalance, entry.CurrentBalance,
		entry.Status, entry.ApprovedBy, entry.ApprovedAt, entry.RejectedBy, entry.RejectedAt, entry.RejectionReason,
		entry.EditRequestStatus, entry.ProposedChanges, entry.EditRequestedBy, entry.EditRequestedAt,
		entry.EditRequestReason, entry.EditApprovedBy, entry.EditApprovedAt, entry.EditRejectedBy,
		entry.EditRejectedAt, entry.EditCount,
		entry.IsDeleted, entry.CreatedAt, entry.CreatedBy, entry.LastUpdatedAt, entry.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert ledger entry "+entry.EntryID, err)
	}

	// The CREATED audit row captures the final entry, serial and balances included.
	if audit.NewData == nil {
		if data, err := json.Marshal(entry); err == nil {
			audit.NewData = data
		}
	}
	_, err = tx.Exec(ctx, insertAuditLogQuery,
		audit.LogID, audit.EntryID, audit.Action, audit.PreviousData,
		audit.NewData, nullableString(audit.Reason), audit.ActorID, audit.CreatedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert audit log for entry "+entry.EntryID, err)
	}

	return r.Commit(ctx, tx)
}

// FindEntryByID retrieves a ledger entry by its ID, deleted ones included.
func (r *PgxLedgerRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE entry_id = $1;`

	var entry domain.LedgerEntry
	err := scanEntry(r.Pool.QueryRow(ctx, query, entryID), &entry)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("ledger entry " + entryID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find ledger entry "+entryID, err)
	}
	return &entry, nil
}

// ListEntries returns one page of non-deleted entries plus the total match count.
func (r *PgxLedgerRepository) ListEntries(ctx context.Context, filter portsrepo.ListEntriesFilter) ([]domain.LedgerEntry, int64, error) {
	conditions := []string{"le.is_deleted = FALSE"}
	args := []interface{}{}

	addArg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.TransactionType != nil {
		conditions = append(conditions, "le.transaction_type = "+addArg(*filter.TransactionType))
	}
	if filter.Status != nil {
		conditions = append(conditions, "le.status = "+addArg(*filter.Status))
	}
	if filter.PartyID != nil {
		conditions = append(conditions, "le.party_id = "+addArg(*filter.PartyID))
	}
	if filter.HeadID != nil {
		conditions = append(conditions, "le.head_id = "+addArg(*filter.HeadID))
	}
	if filter.PaymentModeID != nil {
		conditions = append(conditions, "(le.payment_mode_id = "+addArg(*filter.PaymentModeID)+" OR le.transfer_to_mode_id = "+addArg(*filter.PaymentModeID)+")")
	}
	if filter.StartDate != nil {
		conditions = append(conditions, "le.transaction_date >= "+addArg(*filter.StartDate))
	}
	if filter.EndDate != nil {
		conditions = append(conditions, "le.transaction_date <= "+addArg(*filter.EndDate))
	}
	if filter.Search != "" {
		p := addArg("%" + filter.Search + "%")
		conditions = append(conditions, "(le.serial_number ILIKE "+p+" OR le.description ILIKE "+p+" OR p.name ILIKE "+p+")")
	}

	where := strings.Join(conditions, " AND ")
	fromClause := `FROM ledger_entries le JOIN parties p ON p.party_id = le.party_id WHERE ` + where

	var total int64
	if err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) `+fromClause+`;`, args...).Scan(&total); err != nil {
		return nil, 0, apperrors.NewAppError(500, "failed to count ledger entries", err)
	}

	query := `SELECT ` + entryColumnsQualified + `, p.name AS party_name ` + fromClause +
		` ORDER BY le.transaction_date DESC, le.created_at DESC LIMIT ` + addArg(filter.Limit) +
		` OFFSET ` + addArg(filter.Offset) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, apperrors.NewAppError(500, "failed to list ledger entries", err)
	}
	defer rows.Close()

	entries := make([]domain.LedgerEntry, 0, filter.Limit)
	for rows.Next() {
		var e domain.LedgerEntry
		err := rows.Scan(
			&e.EntryID, &e.SerialNumber, &e.TransactionType, &e.TransactionDate, &e.Description,
			&e.PartyID, &e.HeadID, &e.PaymentTypeID, &e.PaymentModeID, &e.TransferToModeID,
			&e.PaymentAmount, &e.ReceivedAmount, &e.TransferAmount, &e.ComponentA, &e.ComponentB,
			&e.OpeningBalance, &e.CurrentBalance,
			&e.Status, &e.ApprovedBy, &e.ApprovedAt, &e.RejectedBy, &e.RejectedAt, &e.RejectionReason,
			&e.EditRequestStatus, &e.ProposedChanges, &e.EditRequestedBy, &e.EditRequestedAt,
			&e.EditRequestReason, &e.EditApprovedBy, &e.EditApprovedAt, &e.EditRejectedBy,
			&e.EditRejectedAt, &e.EditCount,
			&e.IsDeleted, &e.CreatedAt, &e.CreatedBy, &e.LastUpdatedAt, &e.LastUpdatedBy,
			&e.PartyName,
		)
		if err != nil {
			return nil, 0, apperrors.NewAppError(500, "failed to scan ledger entry", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperrors.NewAppError(500, "failed to iterate ledger entries", err)
	}
	return entries, total, nil
}

// SaveEntryMutation persists the entry's lifecycle fields, applies the signed
// balance deltas (locking each payment mode row) and appends the audit rows,
// all in one transaction.
func (r *PgxLedgerRepository) SaveEntryMutation(ctx context.Context, entry domain.LedgerEntry, balanceDeltas map[string]decimal.Decimal, audits []domain.LedgerAuditLog) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	updateQuery := `
		UPDATE ledger_entries SET
			transaction_date = $1, description = $2,
			party_id = $3, head_id = $4, payment_type_id = $5, payment_mode_id = $6,
			payment_amount = $7, received_amount = $8, transfer_amount = $9,
			status = $10, approved_by = $11, approved_at = $12,
			rejected_by = $13, rejected_at = $14, rejection_reason = $15,
			edit_request_status = $16, proposed_changes = $17,
			edit_requested_by = $18, edit_requested_at = $19, edit_request_reason = $20,
			edit_approved_by = $21, edit_approved_at = $22,
			edit_rejected_by = $23, edit_rejected_at = $24, edit_count = $25,
			is_deleted = $26, last_updated_at = $27, last_updated_by = $28
		WHERE entry_id = $29;
	`
	tag, err := tx.Exec(ctx, updateQuery,
		entry.TransactionDate, entry.Description,
		entry.PartyID, entry.HeadID, entry.PaymentTypeID, entry.PaymentModeID,
		entry.PaymentAmount, entry.ReceivedAmount, entry.TransferAmount,
		entry.Status, entry.ApprovedBy, entry.ApprovedAt,
		entry.RejectedBy, entry.RejectedAt, entry.RejectionReason,
		entry.EditRequestStatus, entry.ProposedChanges,
		entry.EditRequestedBy, entry.EditRequestedAt, entry.EditRequestReason,
		entry.EditApprovedBy, entry.EditApprovedAt,
		entry.EditRejectedBy, entry.EditRejectedAt, entry.EditCount,
		entry.IsDeleted, entry.LastUpdatedAt, entry.LastUpdatedBy,
		entry.EntryID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update ledger entry "+entry.EntryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("ledger entry " + entry.EntryID + " not found")
	}

	for modeID, delta := range balanceDeltas {
		if delta.IsZero() {
			continue
		}
		var balance decimal.Decimal
		err := tx.QueryRow(ctx, `
			SELECT current_balance FROM payment_modes
			WHERE payment_mode_id = $1
			FOR UPDATE;
		`, modeID).Scan(&balance)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFoundError("payment mode " + modeID + " not found")
			}
			return apperrors.NewAppError(500, "failed to lock payment mode "+modeID, err)
		}
		_, err = tx.Exec(ctx, `
			UPDATE payment_modes
			SET current_balance = current_balance + $1, last_updated_at = $2, last_updated_by = $3
			WHERE payment_mode_id = $4;
		`, delta, entry.LastUpdatedAt, entry.LastUpdatedBy, modeID)
		if err != nil {
			return apperrors.NewAppError(500, "failed to apply balance to payment mode "+modeID, err)
		}
	}

	batch := &pgx.Batch{}
	for _, audit := range audits {
		queueAuditInsert(batch, audit)
	}
	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			return apperrors.NewAppError(500, "failed to insert audit logs for entry "+entry.EntryID, err)
		}
	}

	return r.Commit(ctx, tx)
}
