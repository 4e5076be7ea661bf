package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
)

// ListEntriesParams filters and pages journal entry listings.
// Entries are returned newest first, ordered by (entry_date DESC, journal_number DESC).
type ListEntriesParams struct {
	SourceType *domain.SourceDocumentType
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int

	// AfterDate and AfterNumber continue a listing strictly after this cursor.
	AfterDate   *time.Time
	AfterNumber int64
}

// JournalReader defines read operations for journal data
type JournalReader interface {
	// FindEntryByID retrieves an entry header by id.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindEntriesBySource returns the entries recorded for a source document.
	FindEntriesBySource(ctx context.Context, source domain.SourceDocument) ([]domain.JournalEntry, error)

	// FindLinesByEntryID returns the lines of an entry ordered by line number.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalEntryLine, error)

	// ListEntries retrieves a page of entry headers.
	ListEntries(ctx context.Context, params ListEntriesParams) ([]domain.JournalEntry, error)

	// ListAccountLines returns posted lines of an account with entry_date in [from, to],
	// ordered by (entry_date, journal_number, line_number).
	ListAccountLines(ctx context.Context, accountID string, from, to time.Time) ([]domain.LedgerLine, error)

	// SumAccountLinesBefore sums debit and credit of posted lines of an account dated before the given day.
	SumAccountLinesBefore(ctx context.Context, accountID string, before time.Time) (domain.LineTotals, error)

	// SumLinesByAccount sums posted lines per account for every account that has lines.
	SumLinesByAccount(ctx context.Context) (map[string]domain.LineTotals, error)

	// SumLinesByEntry sums the lines of every posted entry, keyed by entry id.
	SumLinesByEntry(ctx context.Context) (map[string]domain.LineTotals, error)

	// ListPostedEntries returns every posted entry header. Used by reconciliation.
	ListPostedEntries(ctx context.Context) ([]domain.JournalEntry, error)
}

// JournalWriter defines write operations for journal data.
// Implementations are only handed out inside a unit of work.
type JournalWriter interface {
	// NextJournalNumber allocates the next journal number.
	NextJournalNumber(ctx context.Context) (int64, error)

	// LockEntriesBySource returns the entries of a source document and locks them until the unit of work ends.
	LockEntriesBySource(ctx context.Context, source domain.SourceDocument) ([]domain.JournalEntry, error)

	// SaveEntry persists an entry header together with its lines.
	// A second entry for the same source yields apperrors.ErrDuplicatePosting.
	SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine) error

	// UpdateEntryStatus changes the status of an entry.
	UpdateEntryStatus(ctx context.Context, entryID string, status domain.JournalStatus, userID string, now time.Time) error

	// DeleteLinesByEntryID removes every line of an entry and returns how many were removed.
	DeleteLinesByEntryID(ctx context.Context, entryID string) (int, error)

	// DeleteEntry removes an entry header. Its lines must be deleted first.
	DeleteEntry(ctx context.Context, entryID string) error
}

// JournalRepository combines the journal reader and writer.
type JournalRepository interface {
	JournalReader
	JournalWriter
}
