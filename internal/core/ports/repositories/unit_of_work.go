package repositories

import "context"

// LedgerTx exposes the repositories bound to one read-write transaction.
type LedgerTx interface {
	Accounts() AccountRepository
	Journals() JournalRepository
}

// LedgerReadTx exposes read-only repositories bound to one consistent snapshot.
type LedgerReadTx interface {
	Accounts() AccountReader
	Journals() JournalReader
}

// UnitOfWork runs ledger operations atomically.
//
// WithinTx commits when fn returns nil and rolls back every write otherwise.
// Lock waits, deadlocks, serialization failures and deadline expiry surface as
// apperrors.ErrRetryable.
//
// WithinSnapshot gives fn a read-only view in which every read observes the
// same committed state.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
	WithinSnapshot(ctx context.Context, fn func(ctx context.Context, tx LedgerReadTx) error) error
}
