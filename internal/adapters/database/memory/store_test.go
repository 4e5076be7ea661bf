package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAccount(t *testing.T, s *Store, id, code string) {
	t.Helper()
	err := s.WithinTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.Accounts().SaveAccount(ctx, domain.Account{
			AccountID: id, Code: code, Name: code,
			AccountType: domain.Asset, NormalBalance: domain.DebitNormal,
			CurrentBalance: decimal.Zero, OpeningBalance: decimal.Zero, IsActive: true,
		})
	})
	require.NoError(t, err)
}

func entry(id string, number int64, date string, src domain.SourceDocument) domain.JournalEntry {
	d, _ := time.Parse(time.DateOnly, date)
	return domain.JournalEntry{EntryID: id, JournalNumber: number, EntryDate: d, Source: src, Status: domain.Posted}
}

func TestWithinTx_FailedCallbackLeavesNoTrace(t *testing.T) {
	s := NewStore()
	seedAccount(t, s, "a1", "1000")
	boom := errors.New("boom")

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		require.NoError(t, tx.Accounts().UpdateAccountBalances(ctx, map[string]decimal.Decimal{"a1": decimal.NewFromInt(10)}, "u", time.Now()))
		n, err := tx.Journals().NextJournalNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	acc, err := s.AccountReader().FindAccountByID(context.Background(), "a1")
	require.NoError(t, err)
	assert.True(t, acc.CurrentBalance.IsZero())

	err = s.WithinTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		n, err := tx.Journals().NextJournalNumber(ctx)
		assert.Equal(t, int64(1), n)
		return err
	})
	require.NoError(t, err)
}

func TestWithinTx_CancelledContextIsRetryable(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.WithinTx(ctx, func(context.Context, portsrepo.LedgerTx) error { return nil })
	assert.ErrorIs(t, err, apperrors.ErrRetryable)

	err = s.WithinSnapshot(ctx, func(context.Context, portsrepo.LedgerReadTx) error { return nil })
	assert.ErrorIs(t, err, apperrors.ErrRetryable)
}

func TestAccountRepository_Constraints(t *testing.T) {
	s := NewStore()
	seedAccount(t, s, "a1", "1000")

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.Accounts().SaveAccount(ctx, domain.Account{AccountID: "a2", Code: "1000"})
	})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateAccount)

	err = s.WithinTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.Accounts().UpdateAccountBalances(ctx, map[string]decimal.Decimal{"ghost": decimal.NewFromInt(1)}, "u", time.Now())
	})
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)

	_, err = s.AccountReader().FindAccountByCode(context.Background(), "9999")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestJournalRepository_SourceUniquenessAndDeleteOrder(t *testing.T) {
	s := NewStore()
	seedAccount(t, s, "a1", "1000")
	src := domain.SourceDocument{Type: domain.SourceInvoice, ID: "INV-1"}
	lines := []domain.JournalEntryLine{{LineID: "l1", JournalEntryID: "e1", LineNumber: 1, AccountID: "a1", DebitAmount: decimal.NewFromInt(5)}}

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.Journals().SaveEntry(ctx, entry("e1", 1, "2024-01-01", src), lines)
	})
	require.NoError(t, err)

	err = s.WithinTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.Journals().SaveEntry(ctx, entry("e2", 2, "2024-01-01", src), nil)
	})
	assert.ErrorIs(t, err, apperrors.ErrDuplicatePosting)

	err = s.WithinTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.Journals().DeleteEntry(ctx, "e1")
	})
	assert.Error(t, err, "header must not be deleted while lines remain")

	err = s.WithinTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		n, err := tx.Journals().DeleteLinesByEntryID(ctx, "e1")
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		return tx.Journals().DeleteEntry(ctx, "e1")
	})
	require.NoError(t, err)

	found, err := s.JournalReader().FindEntriesBySource(context.Background(), src)
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestJournalRepository_ListEntriesCursor(t *testing.T) {
	s := NewStore()
	err := s.WithinTx(context.Background(), func(ctx context.Context, tx portsrepo.LedgerTx) error {
		for _, e := range []domain.JournalEntry{
			entry("e1", 1, "2024-01-01", domain.SourceDocument{Type: domain.SourceInvoice, ID: "1"}),
			entry("e2", 2, "2024-01-02", domain.SourceDocument{Type: domain.SourceInvoice, ID: "2"}),
			entry("e3", 3, "2024-01-02", domain.SourceDocument{Type: domain.SourcePayment, ID: "3"}),
		} {
			if err := tx.Journals().SaveEntry(ctx, e, nil); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	all, err := s.JournalReader().ListEntries(context.Background(), portsrepo.ListEntriesParams{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"e3", "e2", "e1"}, []string{all[0].EntryID, all[1].EntryID, all[2].EntryID})

	after := all[0].EntryDate
	rest, err := s.JournalReader().ListEntries(context.Background(), portsrepo.ListEntriesParams{AfterDate: &after, AfterNumber: 3})
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.Equal(t, "e2", rest[0].EntryID)

	invoices := domain.SourceInvoice
	filtered, err := s.JournalReader().ListEntries(context.Background(), portsrepo.ListEntriesParams{SourceType: &invoices, Limit: 1})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "e2", filtered[0].EntryID)
}
