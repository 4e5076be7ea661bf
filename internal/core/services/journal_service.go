package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/furniture_erp_ledger/internal/dto"
	"github.com/SscSPs/furniture_erp_ledger/internal/platform/metrics"
	"github.com/SscSPs/furniture_erp_ledger/internal/utils/accounting"
	"github.com/SscSPs/furniture_erp_ledger/internal/utils/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	minEntryLines     = 2
	defaultEntryLimit = 20
)

// JournalService posts and reads double-entry journal entries.
type JournalService struct {
	BaseService
	uow      portsrepo.UnitOfWork
	journals portsrepo.JournalReader
}

// NewJournalService creates a new JournalService.
func NewJournalService(cfg LedgerConfig, uow portsrepo.UnitOfWork, journals portsrepo.JournalReader) *JournalService {
	return &JournalService{
		BaseService: newBaseService(cfg),
		uow:         uow,
		journals:    journals,
	}
}

var _ portssvc.JournalSvcFacade = (*JournalService)(nil)

// validatePosting checks everything that can be checked without storage and
// returns the command with amounts rounded to the ledger scale.
func (s *JournalService) validatePosting(cmd domain.PostEntryCommand) (domain.PostEntryCommand, error) {
	if err := cmd.Source.Validate(); err != nil {
		return cmd, err
	}
	if cmd.EntryDate.IsZero() {
		return cmd, fmt.Errorf("%w: entry date is required", apperrors.ErrValidation)
	}
	if len(cmd.Lines) < minEntryLines {
		return cmd, fmt.Errorf("%w: journal entry needs at least %d lines, got %d", apperrors.ErrValidation, minEntryLines, len(cmd.Lines))
	}

	rounded := make([]domain.PostingLine, len(cmd.Lines))
	totals := domain.LineTotals{Debit: decimal.Zero, Credit: decimal.Zero}
	for i, line := range cmd.Lines {
		line.Debit = domain.RoundAmount(line.Debit)
		line.Credit = domain.RoundAmount(line.Credit)
		if err := line.Validate(i + 1); err != nil {
			return cmd, err
		}
		totals = totals.Add(line.Debit, line.Credit)
		rounded[i] = line
	}
	if !totals.IsBalanced(s.cfg.Epsilon) {
		return cmd, fmt.Errorf("%w: debits %s, credits %s", apperrors.ErrUnbalancedEntry, totals.Debit, totals.Credit)
	}

	cmd.EntryDate = domain.DateOnly(cmd.EntryDate)
	cmd.Description = strings.TrimSpace(cmd.Description)
	cmd.Lines = rounded
	return cmd, nil
}

// postWithinTx records a validated command inside an open unit of work:
// duplicate check, account locks in id order, journal number, balance deltas,
// then the header (DRAFT) with its lines, finally marked POSTED.
func (s *JournalService) postWithinTx(ctx context.Context, tx portsrepo.LedgerTx, cmd domain.PostEntryCommand, userID string) (*domain.JournalEntry, error) {
	existing, err := tx.Journals().LockEntriesBySource(ctx, cmd.Source)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("%w: %s (journal #%d)", apperrors.ErrDuplicatePosting, cmd.Source, existing[0].JournalNumber)
	}

	if cmd.Lines, err = s.openAccounts(ctx, tx, cmd.Lines, userID); err != nil {
		return nil, err
	}

	accountIDs := accounting.SortedAccountIDs(cmd.Lines, func(l domain.PostingLine) string { return l.AccountID })
	locked, err := tx.Accounts().FindAccountsByIDsForUpdate(ctx, accountIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range accountIDs {
		account, ok := locked[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, id)
		}
		if !account.IsActive {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountInactive, account.Code)
		}
	}

	number, err := tx.Journals().NextJournalNumber(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	entry := domain.JournalEntry{
		EntryID:       uuid.NewString(),
		JournalNumber: number,
		EntryDate:     cmd.EntryDate,
		Description:   cmd.Description,
		Source:        cmd.Source,
		Status:        domain.Draft,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	lines := make([]domain.JournalEntryLine, len(cmd.Lines))
	for i, l := range cmd.Lines {
		lines[i] = domain.JournalEntryLine{
			LineID:         uuid.NewString(),
			JournalEntryID: entry.EntryID,
			LineNumber:     i + 1,
			AccountID:      l.AccountID,
			DebitAmount:    l.Debit,
			CreditAmount:   l.Credit,
			Description:    l.Description,
			Reference:      l.Reference,
		}
	}
	totals := domain.TotalsOf(lines)
	entry.TotalDebit = totals.Debit
	entry.TotalCredit = totals.Credit

	changes, err := accounting.BalanceChanges(lines, locked)
	if err != nil {
		return nil, err
	}
	if err := tx.Accounts().UpdateAccountBalances(ctx, changes, userID, now); err != nil {
		return nil, err
	}
	if err := tx.Journals().SaveEntry(ctx, entry, lines); err != nil {
		return nil, err
	}
	if err := tx.Journals().UpdateEntryStatus(ctx, entry.EntryID, domain.Posted, userID, now); err != nil {
		return nil, err
	}

	entry.Status = domain.Posted
	entry.Lines = lines
	return &entry, nil
}

// openAccounts binds lines carrying an account template to the account with
// that code, creating it in tx when absent. A failed posting rolls the new
// account back with everything else.
func (s *JournalService) openAccounts(ctx context.Context, tx portsrepo.LedgerTx, lines []domain.PostingLine, userID string) ([]domain.PostingLine, error) {
	bound := slices.Clone(lines)
	for i, l := range bound {
		if l.AccountID != "" || l.OpenAccount == nil {
			continue
		}
		t := l.OpenAccount
		candidate := newAccount(t.Code, t.Name, "", t.AccountType, t.NormalBalance, decimal.Zero, userID, s.now())
		if err := candidate.Validate(); err != nil {
			return nil, err
		}
		account, created, err := lookupOrCreateWithinTx(ctx, tx, candidate)
		if errors.Is(err, apperrors.ErrDuplicateAccount) {
			// Another transaction opened the same code first; a retry will find it.
			return nil, fmt.Errorf("%w: account %s was opened concurrently", apperrors.ErrRetryable, candidate.Code)
		}
		if err != nil {
			return nil, err
		}
		if err := checkAccountType(account, candidate); err != nil {
			return nil, err
		}
		if created {
			s.LogInfo(ctx, "Account opened by posting", slog.String("account_id", account.AccountID), slog.String("code", account.Code))
		}
		bound[i].AccountID = account.AccountID
		bound[i].OpenAccount = nil
	}
	return bound, nil
}

// PostEntry validates and posts a balanced entry, updating every affected account balance atomically.
func (s *JournalService) PostEntry(ctx context.Context, cmd domain.PostEntryCommand, userID string) (posted *domain.JournalEntry, err error) {
	defer func(start time.Time) { metrics.ObserveOperation("post_entry", start, err) }(time.Now())

	cmd, err = s.validatePosting(cmd)
	if err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		var txErr error
		posted, txErr = s.postWithinTx(ctx, tx, cmd, userID)
		return txErr
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) && !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to post journal entry", slog.String("source", cmd.Source.String()))
		}
		return nil, fmt.Errorf("failed to post journal entry for %s: %w", cmd.Source, err)
	}

	s.LogInfo(ctx, "Journal entry posted",
		slog.String("entry_id", posted.EntryID),
		slog.Int64("journal_number", posted.JournalNumber),
		slog.String("source", posted.Source.String()),
		slog.String("total", posted.TotalDebit.String()),
	)
	return posted, nil
}

// GetEntryByID retrieves an entry together with its lines.
func (s *JournalService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	var entry *domain.JournalEntry
	err := s.uow.WithinSnapshot(ctx, func(ctx context.Context, tx portsrepo.LedgerReadTx) error {
		found, err := tx.Journals().FindEntryByID(ctx, entryID)
		if err != nil {
			return err
		}
		found.Lines, err = tx.Journals().FindLinesByEntryID(ctx, entryID)
		if err != nil {
			return err
		}
		entry = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// GetEntryBySource retrieves the entry recorded for a source document, with its lines.
func (s *JournalService) GetEntryBySource(ctx context.Context, source domain.SourceDocument) (*domain.JournalEntry, error) {
	if err := source.Validate(); err != nil {
		return nil, err
	}
	var entry *domain.JournalEntry
	err := s.uow.WithinSnapshot(ctx, func(ctx context.Context, tx portsrepo.LedgerReadTx) error {
		entries, err := tx.Journals().FindEntriesBySource(ctx, source)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return fmt.Errorf("%w: no entry for %s", apperrors.ErrEntryNotFound, source)
		}
		found := entries[0]
		found.Lines, err = tx.Journals().FindLinesByEntryID(ctx, found.EntryID)
		if err != nil {
			return err
		}
		entry = &found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ListEntries retrieves a page of entry headers, newest first.
func (s *JournalService) ListEntries(ctx context.Context, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error) {
	from, to, err := params.DateRange()
	if err != nil {
		return nil, err
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultEntryLimit
	}

	query := portsrepo.ListEntriesParams{FromDate: from, ToDate: to, Limit: limit + 1}
	if params.SourceType != "" {
		st := domain.SourceDocumentType(params.SourceType)
		if !st.IsValid() {
			return nil, fmt.Errorf("%w: unknown source document type '%s'", apperrors.ErrValidation, params.SourceType)
		}
		query.SourceType = &st
	}
	if params.NextToken != "" {
		afterDate, afterNumber, err := pagination.DecodeToken(params.NextToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		query.AfterDate = &afterDate
		query.AfterNumber = afterNumber
	}

	entries, err := s.journals.ListEntries(ctx, query)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journal entries")
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}

	resp := &dto.ListJournalEntriesResponse{Entries: make([]dto.JournalEntryResponse, 0, limit)}
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[limit-1]
		token := pagination.EncodeToken(last.EntryDate, last.JournalNumber)
		resp.NextToken = &token
	}
	for i := range entries {
		resp.Entries = append(resp.Entries, dto.ToJournalEntryResponse(&entries[i]))
	}
	return resp, nil
}
