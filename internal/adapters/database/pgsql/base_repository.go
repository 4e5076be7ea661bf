package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// BaseRepository provides transaction handling for the ledger repositories.
// It implements portsrepo.UnitOfWork.
type BaseRepository struct {
	Pool        *pgxpool.Pool
	TxTimeout   time.Duration
	LockTimeout time.Duration
}

var _ portsrepo.UnitOfWork = (*BaseRepository)(nil)

type pgxLedgerTx struct {
	accounts *PgxAccountRepository
	journals *PgxJournalRepository
}

func (t pgxLedgerTx) Accounts() portsrepo.AccountRepository { return t.accounts }
func (t pgxLedgerTx) Journals() portsrepo.JournalRepository { return t.journals }

type pgxReadTx struct {
	accounts *PgxAccountRepository
	journals *PgxJournalRepository
}

func (t pgxReadTx) Accounts() portsrepo.AccountReader { return t.accounts }
func (t pgxReadTx) Journals() portsrepo.JournalReader { return t.journals }

// Begin starts a new database transaction with the given options.
func (r *BaseRepository) Begin(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	tx, err := r.Pool.BeginTx(ctx, opts)
	if err != nil {
		return nil, classifyError(apperrors.NewAppError(500, "failed to begin transaction", err))
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return classifyError(apperrors.NewAppError(500, "failed to commit transaction", err))
	}
	return nil
}

// Rollback rolls back a transaction. It runs on a fresh context so that an
// expired request deadline still releases the connection cleanly.
func (r *BaseRepository) Rollback(tx pgx.Tx) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		slog.Default().Error("failed to rollback transaction", slog.String("error", err.Error()))
	}
}

// WithinTx runs fn in a READ COMMITTED transaction bounded by TxTimeout.
// Row locks taken through the repositories serialize concurrent writers.
func (r *BaseRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) error {
	if r.TxTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.TxTimeout)
		defer cancel()
	}

	tx, err := r.Begin(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite})
	if err != nil {
		return err
	}
	defer r.Rollback(tx) // no-op after a successful commit

	if r.LockTimeout > 0 {
		// SET LOCAL does not accept bind parameters.
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = %d", r.LockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return classifyError(apperrors.NewAppError(500, "failed to set lock timeout", err))
		}
	}

	if err := fn(ctx, pgxLedgerTx{
		accounts: &PgxAccountRepository{db: tx},
		journals: &PgxJournalRepository{db: tx},
	}); err != nil {
		return classifyError(err)
	}
	return r.Commit(ctx, tx)
}

// WithinSnapshot runs fn in a READ ONLY REPEATABLE READ transaction so every
// query observes the same committed snapshot.
func (r *BaseRepository) WithinSnapshot(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerReadTx) error) error {
	tx, err := r.Begin(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return err
	}
	defer r.Rollback(tx)

	if err := fn(ctx, pgxReadTx{
		accounts: &PgxAccountRepository{db: tx},
		journals: &PgxJournalRepository{db: tx},
	}); err != nil {
		return classifyError(err)
	}
	return r.Commit(ctx, tx)
}
