package pgsql

import (
	"time"

	portsrepo "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires the PostgreSQL-backed ledger repositories.
func NewRepositoryProvider(dbPool *pgxpool.Pool, txTimeout, lockTimeout time.Duration) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UnitOfWork: &BaseRepository{Pool: dbPool, TxTimeout: txTimeout, LockTimeout: lockTimeout},
		Accounts:   &PgxAccountRepository{db: dbPool},
		Journals:   &PgxJournalRepository{db: dbPool},
	}
}
