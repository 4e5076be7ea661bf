package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/furniture_erp_ledger/internal/platform/metrics"
	"github.com/SscSPs/furniture_erp_ledger/internal/utils/accounting"
)

// ReversalService undoes the entry of a source document, optionally posting a replacement.
type ReversalService struct {
	BaseService
	uow     portsrepo.UnitOfWork
	journal *JournalService
}

// NewReversalService creates a new ReversalService. Reposting goes through journal's posting path.
func NewReversalService(cfg LedgerConfig, uow portsrepo.UnitOfWork, journal *JournalService) *ReversalService {
	return &ReversalService{
		BaseService: newBaseService(cfg),
		uow:         uow,
		journal:     journal,
	}
}

var _ portssvc.ReversalSvc = (*ReversalService)(nil)

// reverseWithinTx applies the inverse of every line of the source's entries and
// deletes them, lines first. Inactive accounts are still restored.
func (s *ReversalService) reverseWithinTx(ctx context.Context, tx portsrepo.LedgerTx, source domain.SourceDocument, userID string) (*domain.ReversalResult, []domain.JournalEntry, error) {
	entries, err := tx.Journals().LockEntriesBySource(ctx, source)
	if err != nil {
		return nil, nil, err
	}
	if len(entries) == 0 {
		return nil, nil, fmt.Errorf("%w: no entry for %s", apperrors.ErrEntryNotFound, source)
	}

	var lines []domain.JournalEntryLine
	for _, e := range entries {
		entryLines, err := tx.Journals().FindLinesByEntryID(ctx, e.EntryID)
		if err != nil {
			return nil, nil, err
		}
		lines = append(lines, entryLines...)
	}

	accountIDs := accounting.SortedAccountIDs(lines, func(l domain.JournalEntryLine) string { return l.AccountID })
	locked, err := tx.Accounts().FindAccountsByIDsForUpdate(ctx, accountIDs)
	if err != nil {
		return nil, nil, err
	}
	changes, err := accounting.BalanceChanges(lines, locked)
	if err != nil {
		return nil, nil, err
	}
	inverse := accounting.InverseChanges(changes)
	if err := tx.Accounts().UpdateAccountBalances(ctx, inverse, userID, s.now()); err != nil {
		return nil, nil, err
	}

	result := &domain.ReversalResult{Source: source, ReversedEntries: len(entries)}
	for _, e := range entries {
		n, err := tx.Journals().DeleteLinesByEntryID(ctx, e.EntryID)
		if err != nil {
			return nil, nil, err
		}
		result.ReversedLineCount += n
		if err := tx.Journals().DeleteEntry(ctx, e.EntryID); err != nil {
			return nil, nil, err
		}
	}

	for _, id := range accountIDs {
		acc := locked[id]
		result.RestoredAccounts = append(result.RestoredAccounts, domain.AccountBalance{
			AccountID: id,
			Code:      acc.Code,
			Balance:   acc.CurrentBalance.Add(inverse[id]),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].JournalNumber < entries[j].JournalNumber })
	return result, entries, nil
}

// ReverseEntry applies the inverse of every line of the source's entries and deletes them in one transaction.
func (s *ReversalService) ReverseEntry(ctx context.Context, source domain.SourceDocument, userID string) (result *domain.ReversalResult, err error) {
	defer func(start time.Time) { metrics.ObserveOperation("reverse_entry", start, err) }(time.Now())

	if err := source.Validate(); err != nil {
		return nil, err
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		var txErr error
		result, _, txErr = s.reverseWithinTx(ctx, tx, source, userID)
		return txErr
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to reverse journal entry", slog.String("source", source.String()))
		}
		return nil, fmt.Errorf("failed to reverse entry for %s: %w", source, err)
	}

	s.LogInfo(ctx, "Journal entry reversed",
		slog.String("source", source.String()),
		slog.Int("reversed_lines", result.ReversedLineCount),
	)
	return result, nil
}

// RepostWithNewAmount reverses the source's entry and posts the replacement in the same transaction.
// Date and description of the reversed entry carry over unless the command overrides them.
func (s *ReversalService) RepostWithNewAmount(ctx context.Context, source domain.SourceDocument, cmd domain.RepostCommand, userID string) (posted *domain.JournalEntry, err error) {
	defer func(start time.Time) { metrics.ObserveOperation("repost_entry", start, err) }(time.Now())

	if err := source.Validate(); err != nil {
		return nil, err
	}

	// Fail fast on malformed lines before taking any lock.
	probe := domain.PostEntryCommand{Source: source, EntryDate: s.now(), Lines: cmd.Lines}
	if cmd.EntryDate != nil {
		probe.EntryDate = *cmd.EntryDate
	}
	if _, err := s.journal.validatePosting(probe); err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		_, reversed, err := s.reverseWithinTx(ctx, tx, source, userID)
		if err != nil {
			return err
		}

		post := domain.PostEntryCommand{
			Source:      source,
			EntryDate:   reversed[0].EntryDate,
			Description: reversed[0].Description,
			Lines:       cmd.Lines,
		}
		if cmd.EntryDate != nil {
			post.EntryDate = *cmd.EntryDate
		}
		if cmd.Description != nil {
			post.Description = *cmd.Description
		}
		post, err = s.journal.validatePosting(post)
		if err != nil {
			return err
		}

		posted, err = s.journal.postWithinTx(ctx, tx, post, userID)
		return err
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) && !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to repost journal entry", slog.String("source", source.String()))
		}
		return nil, fmt.Errorf("failed to repost entry for %s: %w", source, err)
	}

	s.LogInfo(ctx, "Journal entry reposted",
		slog.String("source", source.String()),
		slog.String("entry_id", posted.EntryID),
		slog.Int64("journal_number", posted.JournalNumber),
	)
	return posted, nil
}
