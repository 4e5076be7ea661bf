// Package memory implements the ledger repositories in process memory.
// It is used for development and tests; state is lost on restart.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/repositories"
)

type state struct {
	accounts   map[string]domain.Account
	codes      map[string]string                    // code -> account id
	entries    map[string]domain.JournalEntry       // header only, Lines is never set
	sources    map[domain.SourceDocument]string     // unique (source type, source id) -> entry id
	lines      map[string][]domain.JournalEntryLine // entry id -> lines
	journalSeq int64
}

func newState() *state {
	return &state{
		accounts: make(map[string]domain.Account),
		codes:    make(map[string]string),
		entries:  make(map[string]domain.JournalEntry),
		sources:  make(map[domain.SourceDocument]string),
		lines:    make(map[string][]domain.JournalEntryLine),
	}
}

func (s *state) clone() *state {
	c := &state{
		accounts:   make(map[string]domain.Account, len(s.accounts)),
		codes:      make(map[string]string, len(s.codes)),
		entries:    make(map[string]domain.JournalEntry, len(s.entries)),
		sources:    make(map[domain.SourceDocument]string, len(s.sources)),
		lines:      make(map[string][]domain.JournalEntryLine, len(s.lines)),
		journalSeq: s.journalSeq,
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.codes {
		c.codes[k] = v
	}
	for k, v := range s.entries {
		c.entries[k] = v
	}
	for k, v := range s.sources {
		c.sources[k] = v
	}
	for k, v := range s.lines {
		c.lines[k] = append([]domain.JournalEntryLine(nil), v...)
	}
	return c
}

// Store is an in-memory UnitOfWork. A single writer lock serializes
// transactions; each transaction works on a copy of the state that replaces
// the committed state only when the callback succeeds.
type Store struct {
	mu sync.RWMutex
	st *state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{st: newState()}
}

var _ portsrepo.UnitOfWork = (*Store)(nil)

type ledgerTx struct {
	accounts *accountRepository
	journals *journalRepository
}

func (t ledgerTx) Accounts() portsrepo.AccountRepository { return t.accounts }
func (t ledgerTx) Journals() portsrepo.JournalRepository { return t.journals }

type readTx struct {
	accounts *accountRepository
	journals *journalRepository
}

func (t readTx) Accounts() portsrepo.AccountReader { return t.accounts }
func (t readTx) Journals() portsrepo.JournalReader { return t.journals }

// WithinTx runs fn against a private copy of the state and commits it if fn succeeds.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrRetryable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.st.clone()
	tx := ledgerTx{
		accounts: &accountRepository{st: working},
		journals: &journalRepository{st: working},
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: transaction deadline exceeded before commit: %v", apperrors.ErrRetryable, err)
	}
	s.st = working
	return nil
}

// WithinSnapshot runs fn against the committed state while holding the read lock.
func (s *Store) WithinSnapshot(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerReadTx) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrRetryable, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(ctx, readTx{
		accounts: &accountRepository{st: s.st},
		journals: &journalRepository{st: s.st},
	})
}

// AccountReader returns a reader that reads committed state outside a unit of work.
func (s *Store) AccountReader() portsrepo.AccountReader {
	return &lockedAccountReader{s: s}
}

// JournalReader returns a reader that reads committed state outside a unit of work.
func (s *Store) JournalReader() portsrepo.JournalReader {
	return &lockedJournalReader{s: s}
}

// Provider bundles the store as the repository dependencies of the service container.
func (s *Store) Provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		UnitOfWork: s,
		Accounts:   s.AccountReader(),
		Journals:   s.JournalReader(),
	}
}
