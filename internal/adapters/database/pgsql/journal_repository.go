package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/furniture_erp_ledger/internal/models"
	"github.com/SscSPs/furniture_erp_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type PgxJournalRepository struct {
	db querier
}

// Ensure PgxJournalRepository implements portsrepo.JournalRepository
var _ portsrepo.JournalRepository = (*PgxJournalRepository)(nil)

const entryColumns = `entry_id, journal_number, entry_date, description, source_document_type, source_document_id,
	status, total_debit, total_credit, created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, journal_entry_id, line_number, account_id, debit_amount, credit_amount, description, reference`

func scanEntry(row pgx.Row) (domain.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.JournalNumber,
		&m.EntryDate,
		&m.Description,
		&m.SourceDocumentType,
		&m.SourceDocumentID,
		&m.Status,
		&m.TotalDebit,
		&m.TotalCredit,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.JournalEntry{}, err
	}
	return mapping.ToDomainJournalEntry(m), nil
}

func (r *PgxJournalRepository) queryEntries(ctx context.Context, query string, args ...any) ([]domain.JournalEntry, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, classifyError(fmt.Errorf("failed to query journal entries: %w", err))
	}
	defer rows.Close()

	entries := []domain.JournalEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan journal entry row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError(fmt.Errorf("error iterating journal entry rows: %w", err))
	}
	return entries, nil
}

// FindEntryByID retrieves an entry header by id.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`
	e, err := scanEntry(r.db.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrEntryNotFound, entryID)
		}
		return nil, classifyError(fmt.Errorf("failed to find journal entry %s: %w", entryID, err))
	}
	return &e, nil
}

// FindEntriesBySource returns the entries recorded for a source document.
func (r *PgxJournalRepository) FindEntriesBySource(ctx context.Context, source domain.SourceDocument) ([]domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries
		WHERE source_document_type = $1 AND source_document_id = $2
		ORDER BY journal_number;`
	return r.queryEntries(ctx, query, string(source.Type), source.ID)
}

// LockEntriesBySource is FindEntriesBySource with row locks held until the transaction ends.
func (r *PgxJournalRepository) LockEntriesBySource(ctx context.Context, source domain.SourceDocument) ([]domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries
		WHERE source_document_type = $1 AND source_document_id = $2
		ORDER BY journal_number
		FOR UPDATE;`
	return r.queryEntries(ctx, query, string(source.Type), source.ID)
}

// FindLinesByEntryID returns the lines of an entry ordered by line number.
func (r *PgxJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalEntryLine, error) {
	query := `SELECT ` + lineColumns + ` FROM journal_entry_lines WHERE journal_entry_id = $1 ORDER BY line_number;`
	rows, err := r.db.Query(ctx, query, entryID)
	if err != nil {
		return nil, classifyError(fmt.Errorf("failed to query lines for entry %s: %w", entryID, err))
	}
	defer rows.Close()

	lines := []models.JournalEntryLine{}
	for rows.Next() {
		var l models.JournalEntryLine
		if err := rows.Scan(
			&l.LineID,
			&l.JournalEntryID,
			&l.LineNumber,
			&l.AccountID,
			&l.DebitAmount,
			&l.CreditAmount,
			&l.Description,
			&l.Reference,
		); err != nil {
			return nil, fmt.Errorf("failed to scan line row for entry %s: %w", entryID, err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError(fmt.Errorf("error iterating line rows for entry %s: %w", entryID, err))
	}
	return mapping.ToDomainJournalEntryLineSlice(lines), nil
}

// ListEntries retrieves a page of entry headers, newest first.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, params portsrepo.ListEntriesParams) ([]domain.JournalEntry, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if params.SourceType != nil {
		where = append(where, "source_document_type = "+arg(string(*params.SourceType)))
	}
	if params.FromDate != nil {
		where = append(where, "entry_date >= "+arg(*params.FromDate))
	}
	if params.ToDate != nil {
		where = append(where, "entry_date <= "+arg(*params.ToDate))
	}
	if params.AfterDate != nil {
		// Tuple comparison keeps the cursor stable under the sort order below.
		where = append(where, "(entry_date, journal_number) < ("+arg(*params.AfterDate)+", "+arg(params.AfterNumber)+")")
	}

	query := `SELECT ` + entryColumns + ` FROM journal_entries`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY entry_date DESC, journal_number DESC LIMIT " + arg(limit) + ";"

	return r.queryEntries(ctx, query, args...)
}

// ListAccountLines returns posted lines of an account in [from, to] in ledger order.
func (r *PgxJournalRepository) ListAccountLines(ctx context.Context, accountID string, from, to time.Time) ([]domain.LedgerLine, error) {
	query := `
		SELECT e.entry_id, e.journal_number, e.entry_date, e.description, e.source_document_type, e.source_document_id,
		       l.line_id, l.line_number, l.account_id, l.debit_amount, l.credit_amount, l.description, l.reference
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.entry_id = l.journal_entry_id
		WHERE l.account_id = $1 AND e.status = 'POSTED' AND e.entry_date >= $2 AND e.entry_date <= $3
		ORDER BY e.entry_date, e.journal_number, l.line_number;
	`
	rows, err := r.db.Query(ctx, query, accountID, from, to)
	if err != nil {
		return nil, classifyError(fmt.Errorf("failed to query ledger lines for account %s: %w", accountID, err))
	}
	defer rows.Close()

	out := []domain.LedgerLine{}
	for rows.Next() {
		var (
			ll         domain.LedgerLine
			sourceType string
			m          models.JournalEntryLine
		)
		if err := rows.Scan(
			&ll.EntryID,
			&ll.JournalNumber,
			&ll.EntryDate,
			&ll.EntryDescription,
			&sourceType,
			&ll.Source.ID,
			&m.LineID,
			&m.LineNumber,
			&m.AccountID,
			&m.DebitAmount,
			&m.CreditAmount,
			&m.Description,
			&m.Reference,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ledger line for account %s: %w", accountID, err)
		}
		m.JournalEntryID = ll.EntryID
		ll.EntryDate = domain.DateOnly(ll.EntryDate)
		ll.Source.Type = domain.SourceDocumentType(sourceType)
		ll.Line = mapping.ToDomainJournalEntryLine(m)
		out = append(out, ll)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError(fmt.Errorf("error iterating ledger lines for account %s: %w", accountID, err))
	}
	return out, nil
}

// SumAccountLinesBefore sums posted lines of an account dated before the given day.
func (r *PgxJournalRepository) SumAccountLinesBefore(ctx context.Context, accountID string, before time.Time) (domain.LineTotals, error) {
	query := `
		SELECT COALESCE(SUM(l.debit_amount), 0), COALESCE(SUM(l.credit_amount), 0)
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.entry_id = l.journal_entry_id
		WHERE l.account_id = $1 AND e.status = 'POSTED' AND e.entry_date < $2;
	`
	var totals domain.LineTotals
	if err := r.db.QueryRow(ctx, query, accountID, before).Scan(&totals.Debit, &totals.Credit); err != nil {
		return domain.LineTotals{}, classifyError(fmt.Errorf("failed to sum lines before %s for account %s: %w", before.Format(time.DateOnly), accountID, err))
	}
	return totals, nil
}

func (r *PgxJournalRepository) sumGrouped(ctx context.Context, query string) (map[string]domain.LineTotals, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, classifyError(fmt.Errorf("failed to sum lines: %w", err))
	}
	defer rows.Close()

	sums := make(map[string]domain.LineTotals)
	for rows.Next() {
		var (
			key           string
			debit, credit decimal.Decimal
		)
		if err := rows.Scan(&key, &debit, &credit); err != nil {
			return nil, fmt.Errorf("failed to scan line sum: %w", err)
		}
		sums[key] = domain.LineTotals{Debit: debit, Credit: credit}
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError(fmt.Errorf("error iterating line sums: %w", err))
	}
	return sums, nil
}

// SumLinesByAccount sums posted lines per account.
func (r *PgxJournalRepository) SumLinesByAccount(ctx context.Context) (map[string]domain.LineTotals, error) {
	return r.sumGrouped(ctx, `
		SELECT l.account_id, SUM(l.debit_amount), SUM(l.credit_amount)
		FROM journal_entry_lines l
		JOIN journal_entries e ON e.entry_id = l.journal_entry_id
		WHERE e.status = 'POSTED'
		GROUP BY l.account_id;
	`)
}

// SumLinesByEntry sums the lines of every posted entry.
func (r *PgxJournalRepository) SumLinesByEntry(ctx context.Context) (map[string]domain.LineTotals, error) {
	return r.sumGrouped(ctx, `
		SELECT e.entry_id, COALESCE(SUM(l.debit_amount), 0), COALESCE(SUM(l.credit_amount), 0)
		FROM journal_entries e
		LEFT JOIN journal_entry_lines l ON l.journal_entry_id = e.entry_id
		WHERE e.status = 'POSTED'
		GROUP BY e.entry_id;
	`)
}

// ListPostedEntries returns every posted entry header ordered by journal number.
func (r *PgxJournalRepository) ListPostedEntries(ctx context.Context) ([]domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE status = 'POSTED' ORDER BY journal_number;`
	return r.queryEntries(ctx, query)
}

// NextJournalNumber draws from journal_number_seq. Values consumed by a
// rolled-back transaction leave gaps but are never reused.
func (r *PgxJournalRepository) NextJournalNumber(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT nextval('journal_number_seq');`).Scan(&n); err != nil {
		return 0, classifyError(fmt.Errorf("failed to allocate journal number: %w", err))
	}
	return n, nil
}

// SaveEntry inserts the header and all lines in one batch.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine) error {
	m := mapping.ToModelJournalEntry(entry)

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO journal_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);`,
		m.EntryID,
		m.JournalNumber,
		m.EntryDate,
		m.Description,
		m.SourceDocumentType,
		m.SourceDocumentID,
		m.Status,
		m.TotalDebit,
		m.TotalCredit,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	lineQuery := `INSERT INTO journal_entry_lines (` + lineColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`
	for _, line := range lines {
		l := mapping.ToModelJournalEntryLine(line)
		batch.Queue(lineQuery,
			l.LineID,
			l.JournalEntryID,
			l.LineNumber,
			l.AccountID,
			l.DebitAmount,
			l.CreditAmount,
			l.Description,
			l.Reference,
		)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			if constraint, ok := uniqueViolation(err); ok && constraint == constraintEntrySource {
				return fmt.Errorf("%w: %s", apperrors.ErrDuplicatePosting, entry.Source)
			}
			if constraint, ok := foreignKeyViolation(err); ok && constraint == constraintEntryAccount {
				return fmt.Errorf("%w: referenced by entry %s", apperrors.ErrAccountNotFound, m.EntryID)
			}
			return classifyError(fmt.Errorf("failed to insert journal entry %s: %w", m.EntryID, err))
		}
	}
	return nil
}

// UpdateEntryStatus changes the status of an entry.
func (r *PgxJournalRepository) UpdateEntryStatus(ctx context.Context, entryID string, status domain.JournalStatus, userID string, now time.Time) error {
	query := `UPDATE journal_entries SET status = $1, last_updated_at = $2, last_updated_by = $3 WHERE entry_id = $4;`
	cmdTag, err := r.db.Exec(ctx, query, string(status), now, userID, entryID)
	if err != nil {
		return classifyError(fmt.Errorf("failed to update status of entry %s: %w", entryID, err))
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrEntryNotFound, entryID)
	}
	return nil
}

// DeleteLinesByEntryID removes every line of an entry.
func (r *PgxJournalRepository) DeleteLinesByEntryID(ctx context.Context, entryID string) (int, error) {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM journal_entry_lines WHERE journal_entry_id = $1;`, entryID)
	if err != nil {
		return 0, classifyError(fmt.Errorf("failed to delete lines of entry %s: %w", entryID, err))
	}
	return int(cmdTag.RowsAffected()), nil
}

// DeleteEntry removes an entry header; the foreign key rejects it while lines remain.
func (r *PgxJournalRepository) DeleteEntry(ctx context.Context, entryID string) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM journal_entries WHERE entry_id = $1;`, entryID)
	if err != nil {
		return classifyError(fmt.Errorf("failed to delete entry %s: %w", entryID, err))
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrEntryNotFound, entryID)
	}
	return nil
}
