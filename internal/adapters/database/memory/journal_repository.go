package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/repositories"
)

type journalRepository struct {
	st *state
}

var _ portsrepo.JournalRepository = (*journalRepository)(nil)

func (r *journalRepository) FindEntryByID(_ context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, ok := r.st.entries[entryID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrEntryNotFound, entryID)
	}
	return &entry, nil
}

func (r *journalRepository) FindEntriesBySource(_ context.Context, source domain.SourceDocument) ([]domain.JournalEntry, error) {
	id, ok := r.st.sources[source]
	if !ok {
		return []domain.JournalEntry{}, nil
	}
	return []domain.JournalEntry{r.st.entries[id]}, nil
}

func (r *journalRepository) FindLinesByEntryID(_ context.Context, entryID string) ([]domain.JournalEntryLine, error) {
	lines := append([]domain.JournalEntryLine(nil), r.st.lines[entryID]...)
	sort.Slice(lines, func(i, j int) bool { return lines[i].LineNumber < lines[j].LineNumber })
	return lines, nil
}

func (r *journalRepository) ListEntries(_ context.Context, params portsrepo.ListEntriesParams) ([]domain.JournalEntry, error) {
	out := make([]domain.JournalEntry, 0)
	for _, e := range r.st.entries {
		if params.SourceType != nil && e.Source.Type != *params.SourceType {
			continue
		}
		if params.FromDate != nil && e.EntryDate.Before(*params.FromDate) {
			continue
		}
		if params.ToDate != nil && e.EntryDate.After(*params.ToDate) {
			continue
		}
		if params.AfterDate != nil {
			if e.EntryDate.After(*params.AfterDate) {
				continue
			}
			if e.EntryDate.Equal(*params.AfterDate) && e.JournalNumber >= params.AfterNumber {
				continue
			}
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EntryDate.Equal(out[j].EntryDate) {
			return out[i].EntryDate.After(out[j].EntryDate)
		}
		return out[i].JournalNumber > out[j].JournalNumber
	})
	if params.Limit > 0 && len(out) > params.Limit {
		out = out[:params.Limit]
	}
	return out, nil
}

func (r *journalRepository) postedLines(accountID string, keep func(e domain.JournalEntry) bool) []domain.LedgerLine {
	var out []domain.LedgerLine
	for entryID, lines := range r.st.lines {
		e := r.st.entries[entryID]
		if e.Status != domain.Posted || !keep(e) {
			continue
		}
		for _, l := range lines {
			if l.AccountID != accountID {
				continue
			}
			out = append(out, domain.LedgerLine{
				EntryID:          e.EntryID,
				JournalNumber:    e.JournalNumber,
				EntryDate:        e.EntryDate,
				EntryDescription: e.Description,
				Source:           e.Source,
				Line:             l,
			})
		}
	}
	return out
}

func (r *journalRepository) ListAccountLines(_ context.Context, accountID string, from, to time.Time) ([]domain.LedgerLine, error) {
	out := r.postedLines(accountID, func(e domain.JournalEntry) bool {
		return !e.EntryDate.Before(from) && !e.EntryDate.After(to)
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.Before(b.EntryDate)
		}
		if a.JournalNumber != b.JournalNumber {
			return a.JournalNumber < b.JournalNumber
		}
		return a.Line.LineNumber < b.Line.LineNumber
	})
	if out == nil {
		out = []domain.LedgerLine{}
	}
	return out, nil
}

func (r *journalRepository) SumAccountLinesBefore(_ context.Context, accountID string, before time.Time) (domain.LineTotals, error) {
	totals := domain.TotalsOf(nil)
	for _, ll := range r.postedLines(accountID, func(e domain.JournalEntry) bool { return e.EntryDate.Before(before) }) {
		totals = totals.Add(ll.Line.DebitAmount, ll.Line.CreditAmount)
	}
	return totals, nil
}

func (r *journalRepository) SumLinesByAccount(_ context.Context) (map[string]domain.LineTotals, error) {
	sums := make(map[string]domain.LineTotals)
	for entryID, lines := range r.st.lines {
		if r.st.entries[entryID].Status != domain.Posted {
			continue
		}
		for _, l := range lines {
			t, ok := sums[l.AccountID]
			if !ok {
				t = domain.TotalsOf(nil)
			}
			sums[l.AccountID] = t.Add(l.DebitAmount, l.CreditAmount)
		}
	}
	return sums, nil
}

func (r *journalRepository) SumLinesByEntry(_ context.Context) (map[string]domain.LineTotals, error) {
	sums := make(map[string]domain.LineTotals)
	for entryID, e := range r.st.entries {
		if e.Status != domain.Posted {
			continue
		}
		sums[entryID] = domain.TotalsOf(r.st.lines[entryID])
	}
	return sums, nil
}

func (r *journalRepository) ListPostedEntries(_ context.Context) ([]domain.JournalEntry, error) {
	out := make([]domain.JournalEntry, 0, len(r.st.entries))
	for _, e := range r.st.entries {
		if e.Status == domain.Posted {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JournalNumber < out[j].JournalNumber })
	return out, nil
}

func (r *journalRepository) NextJournalNumber(_ context.Context) (int64, error) {
	r.st.journalSeq++
	return r.st.journalSeq, nil
}

func (r *journalRepository) LockEntriesBySource(ctx context.Context, source domain.SourceDocument) ([]domain.JournalEntry, error) {
	return r.FindEntriesBySource(ctx, source)
}

func (r *journalRepository) SaveEntry(_ context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine) error {
	if _, exists := r.st.sources[entry.Source]; exists {
		return fmt.Errorf("%w: %s", apperrors.ErrDuplicatePosting, entry.Source)
	}
	if _, exists := r.st.entries[entry.EntryID]; exists {
		return fmt.Errorf("%w: entry id %s", apperrors.ErrConflict, entry.EntryID)
	}
	entry.Lines = nil
	r.st.entries[entry.EntryID] = entry
	r.st.sources[entry.Source] = entry.EntryID
	r.st.lines[entry.EntryID] = append([]domain.JournalEntryLine(nil), lines...)
	return nil
}

func (r *journalRepository) UpdateEntryStatus(_ context.Context, entryID string, status domain.JournalStatus, userID string, now time.Time) error {
	e, ok := r.st.entries[entryID]
	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrEntryNotFound, entryID)
	}
	e.Status = status
	e.LastUpdatedAt = now
	e.LastUpdatedBy = userID
	r.st.entries[entryID] = e
	return nil
}

func (r *journalRepository) DeleteLinesByEntryID(_ context.Context, entryID string) (int, error) {
	n := len(r.st.lines[entryID])
	delete(r.st.lines, entryID)
	return n, nil
}

func (r *journalRepository) DeleteEntry(_ context.Context, entryID string) error {
	e, ok := r.st.entries[entryID]
	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrEntryNotFound, entryID)
	}
	if len(r.st.lines[entryID]) > 0 {
		return fmt.Errorf("entry %s still has lines", entryID)
	}
	delete(r.st.entries, entryID)
	delete(r.st.lines, entryID)
	if r.st.sources[e.Source] == entryID {
		delete(r.st.sources, e.Source)
	}
	return nil
}

// lockedJournalReader reads committed state under the store's read lock.
type lockedJournalReader struct {
	s *Store
}

func (l *lockedJournalReader) repo() *journalRepository {
	return &journalRepository{st: l.s.st}
}

func (l *lockedJournalReader) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	return l.repo().FindEntryByID(ctx, entryID)
}

func (l *lockedJournalReader) FindEntriesBySource(ctx context.Context, source domain.SourceDocument) ([]domain.JournalEntry, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	return l.repo().FindEntriesBySource(ctx, source)
}

func (l *lockedJournalReader) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalEntryLine, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	return l.repo().FindLinesByEntryID(ctx, entryID)
}

func (l *lockedJournalReader) ListEntries(ctx context.Context, params portsrepo.ListEntriesParams) ([]domain.JournalEntry, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	return l.repo().ListEntries(ctx, params)
}

func (l *lockedJournalReader) ListAccountLines(ctx context.Context, accountID string, from, to time.Time) ([]domain.LedgerLine, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	return l.repo().ListAccountLines(ctx, accountID, from, to)
}

func (l *lockedJournalReader) SumAccountLinesBefore(ctx context.Context, accountID string, before time.Time) (domain.LineTotals, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	return l.repo().SumAccountLinesBefore(ctx, accountID, before)
}

func (l *lockedJournalReader) SumLinesByAccount(ctx context.Context) (map[string]domain.LineTotals, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	return l.repo().SumLinesByAccount(ctx)
}

func (l *lockedJournalReader) SumLinesByEntry(ctx context.Context) (map[string]domain.LineTotals, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	return l.repo().SumLinesByEntry(ctx)
}

func (l *lockedJournalReader) ListPostedEntries(ctx context.Context) ([]domain.JournalEntry, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	return l.repo().ListPostedEntries(ctx)
}
