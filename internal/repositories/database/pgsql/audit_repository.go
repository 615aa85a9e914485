package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sunrisehms/finance_backend/internal/apperrors"
	"github.com/sunrisehms/finance_backend/internal/core/domain"
	portsrepo "github.com/sunrisehms/finance_backend/internal/core/ports/repositories"
)

// PgxAuditLogRepository reads the append-only ledger audit trail. Audit rows
// are written inside the ledger repository's transactions.
type PgxAuditLogRepository struct {
	BaseRepository
}

func newPgxAuditLogRepository(pool *pgxpool.Pool) portsrepo.AuditLogRepositoryFacade {
	return &PgxAuditLogRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.AuditLogRepositoryFacade = (*PgxAuditLogRepository)(nil)

// ListAuditLogsByEntry returns an entry's audit rows, oldest first.
func (r *PgxAuditLogRepository) ListAuditLogsByEntry(ctx context.Context, entryID string) ([]domain.LedgerAuditLog, error) {
	query := `
		SELECT log_id, entry_id, action, previous_data, new_data, reason, actor_id, created_at
		FROM ledger_audit_logs
		WHERE entry_id = $1
		ORDER BY created_at ASC, log_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list audit logs for entry "+entryID, err)
	}
	defer rows.Close()

	var logs []domain.LedgerAuditLog
	for rows.Next() {
		var l domain.LedgerAuditLog
		var reason *string
		err := rows.Scan(&l.LogID, &l.EntryID, &l.Action, &l.PreviousData, &l.NewData, &reason, &l.ActorID, &l.CreatedAt)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan audit log", err)
		}
		if reason != nil {
			l.Reason = *reason
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "failed to iterate audit logs", err)
	}
	return logs, nil
}
