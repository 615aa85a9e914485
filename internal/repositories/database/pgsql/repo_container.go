package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/sunrisehms/finance_backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		LedgerRepo:      newPgxLedgerRepository(dbPool),
		PaymentModeRepo: newPgxPaymentModeRepository(dbPool),
		MasterRepo:      newPgxMasterRepository(dbPool),
		AuditLogRepo:    newPgxAuditLogRepository(dbPool),
		UserRepo:        newPgxUserRepository(dbPool),
		ReportingRepo:   newReportingRepository(dbPool),
	}
}
