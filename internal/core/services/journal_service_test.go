package services_test

import (
	"sync"
	"testing"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	"github.com/SscSPs/furniture_erp_ledger/internal/dto"
	"github.com/stretchr/testify/suite"
)

type JournalServiceTestSuite struct {
	ledgerSuite
}

func TestJournalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}

func (s *JournalServiceTestSuite) TestPostEntry_InvoiceMovesBothSidesUp() {
	entry := s.post(source(domain.SourceInvoice, "INV-1"), "2024-02-01",
		debit(s.id("1100"), "1000"),
		credit(s.id("4000"), "1000"),
	)

	s.Equal(domain.Posted, entry.Status)
	s.Equal(int64(1), entry.JournalNumber)
	s.Len(entry.Lines, 2)
	s.True(entry.TotalDebit.Equal(d("1000")))
	s.True(entry.TotalCredit.Equal(d("1000")))
	s.Equal(testUserID, entry.CreatedBy)

	// AR is DEBIT-normal, Sales is CREDIT-normal: both grow.
	s.assertBalance("1100", "1000")
	s.assertBalance("4000", "1000")
}

func (s *JournalServiceTestSuite) TestPostEntry_UnbalancedIsRejectedWithoutMutation() {
	_, err := s.svc.Journal.PostEntry(s.ctx, domain.PostEntryCommand{
		Source:    source(domain.SourceExpense, "EXP-1"),
		EntryDate: day("2024-02-01"),
		Lines: []domain.PostingLine{
			debit(s.id("5000"), "500"),
			credit(s.id("1000"), "400"),
		},
	}, testUserID)

	s.Require().Error(err)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.ErrorIs(err, apperrors.ErrUnbalancedEntry)
	s.assertBalance("5000", "0")
	s.assertBalance("1000", "0")

	_, err = s.svc.Journal.GetEntryBySource(s.ctx, source(domain.SourceExpense, "EXP-1"))
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *JournalServiceTestSuite) TestPostEntry_ImbalanceBelowEpsilonIsAccepted() {
	entry := s.post(source(domain.SourceExpense, "EXP-2"), "2024-02-01",
		debit(s.id("5000"), "100.00"),
		credit(s.id("1000"), "99.995"), // rounds to 100.00
	)
	s.True(entry.TotalCredit.Equal(d("100")))
}

func (s *JournalServiceTestSuite) TestPostEntry_ValidationErrors() {
	cash, sales := s.id("1000"), s.id("4000")
	cases := []struct {
		name string
		cmd  domain.PostEntryCommand
	}{
		{"single line", domain.PostEntryCommand{
			Source: source(domain.SourceInvoice, "A"), EntryDate: day("2024-01-01"),
			Lines: []domain.PostingLine{debit(cash, "10")},
		}},
		{"both sides on one line", domain.PostEntryCommand{
			Source: source(domain.SourceInvoice, "B"), EntryDate: day("2024-01-01"),
			Lines: []domain.PostingLine{
				{AccountID: cash, Debit: d("10"), Credit: d("10")},
				credit(sales, "0"),
			},
		}},
		{"negative amount", domain.PostEntryCommand{
			Source: source(domain.SourceInvoice, "C"), EntryDate: day("2024-01-01"),
			Lines: []domain.PostingLine{debit(cash, "-10"), credit(sales, "-10")},
		}},
		{"unknown source type", domain.PostEntryCommand{
			Source: source("QUOTE", "D"), EntryDate: day("2024-01-01"),
			Lines: []domain.PostingLine{debit(cash, "10"), credit(sales, "10")},
		}},
		{"missing source id", domain.PostEntryCommand{
			Source: source(domain.SourceInvoice, ""), EntryDate: day("2024-01-01"),
			Lines: []domain.PostingLine{debit(cash, "10"), credit(sales, "10")},
		}},
		{"missing date", domain.PostEntryCommand{
			Source: source(domain.SourceInvoice, "E"),
			Lines:  []domain.PostingLine{debit(cash, "10"), credit(sales, "10")},
		}},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.svc.Journal.PostEntry(s.ctx, tc.cmd, testUserID)
			s.ErrorIs(err, apperrors.ErrValidation)
		})
	}
	s.assertBalance("1000", "0")
	s.assertBalance("4000", "0")
}

func (s *JournalServiceTestSuite) TestPostEntry_UnknownAccount() {
	_, err := s.svc.Journal.PostEntry(s.ctx, domain.PostEntryCommand{
		Source:    source(domain.SourceInvoice, "INV-X"),
		EntryDate: day("2024-02-01"),
		Lines:     []domain.PostingLine{debit("no-such-account", "10"), credit(s.id("4000"), "10")},
	}, testUserID)

	s.ErrorIs(err, apperrors.ErrAccountNotFound)
	s.assertBalance("4000", "0")
}

func (s *JournalServiceTestSuite) TestPostEntry_InactiveAccountIsRejected() {
	s.Require().NoError(s.svc.Account.DeactivateAccount(s.ctx, s.id("4000"), testUserID))

	_, err := s.svc.Journal.PostEntry(s.ctx, domain.PostEntryCommand{
		Source:    source(domain.SourceInvoice, "INV-2"),
		EntryDate: day("2024-02-01"),
		Lines:     []domain.PostingLine{debit(s.id("1100"), "10"), credit(s.id("4000"), "10")},
	}, testUserID)

	s.ErrorIs(err, apperrors.ErrAccountInactive)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.assertBalance("1100", "0")
}

func (s *JournalServiceTestSuite) TestPostEntry_DuplicateSourceIsConflict() {
	src := source(domain.SourcePayment, "PAY-1")
	s.post(src, "2024-02-01", debit(s.id("1000"), "250"), credit(s.id("1100"), "250"))

	_, err := s.svc.Journal.PostEntry(s.ctx, domain.PostEntryCommand{
		Source:    src,
		EntryDate: day("2024-02-02"),
		Lines:     []domain.PostingLine{debit(s.id("1000"), "250"), credit(s.id("1100"), "250")},
	}, testUserID)

	s.ErrorIs(err, apperrors.ErrConflict)
	s.ErrorIs(err, apperrors.ErrDuplicatePosting)
	s.assertBalance("1000", "250")
}

func (s *JournalServiceTestSuite) TestPostEntry_JournalNumbersAreSequential() {
	for i, id := range []string{"INV-10", "INV-11", "INV-12"} {
		entry := s.post(source(domain.SourceInvoice, id), "2024-02-01",
			debit(s.id("1100"), "1"), credit(s.id("4000"), "1"))
		s.Equal(int64(i+1), entry.JournalNumber)
	}
}

func (s *JournalServiceTestSuite) TestPostEntry_RollsBackOnStorageFailure() {
	faulty := &faultyUoW{Store: s.store, failSaveEntry: true}
	s.useUnitOfWork(faulty)

	_, err := s.svc.Journal.PostEntry(s.ctx, domain.PostEntryCommand{
		Source:    source(domain.SourceInvoice, "INV-RB"),
		EntryDate: day("2024-02-01"),
		Lines:     []domain.PostingLine{debit(s.id("1100"), "75"), credit(s.id("4000"), "75")},
	}, testUserID)

	s.ErrorIs(err, errInjected)
	// The balance deltas were applied before the header write failed; none may survive.
	s.assertBalance("1100", "0")
	s.assertBalance("4000", "0")

	faulty.failSaveEntry = false
	entry := s.post(source(domain.SourceInvoice, "INV-RB"), "2024-02-01",
		debit(s.id("1100"), "75"), credit(s.id("4000"), "75"))
	s.Equal(int64(1), entry.JournalNumber, "the failed attempt must not consume a journal number in memory")
}

func (s *JournalServiceTestSuite) TestPostEntry_ConcurrentPostingsDoNotLoseUpdates() {
	cash, ar := s.id("1000"), s.id("1100")
	amounts := map[string]string{"PAY-100": "100", "PAY-50": "50"}

	var wg sync.WaitGroup
	errs := make(chan error, len(amounts))
	for docID, amount := range amounts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.svc.Journal.PostEntry(s.ctx, domain.PostEntryCommand{
				Source:    source(domain.SourcePayment, docID),
				EntryDate: day("2024-02-01"),
				Lines:     []domain.PostingLine{debit(cash, amount), credit(ar, amount)},
			}, testUserID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.NoError(err)
	}

	s.assertBalance("1000", "150")
	s.assertBalance("1100", "-150")
}

func (s *JournalServiceTestSuite) TestPostedEntriesBalance() {
	s.post(source(domain.SourceInvoice, "INV-20"), "2024-02-01",
		debit(s.id("1100"), "300"), credit(s.id("4000"), "200"), credit(s.id("4000"), "100"))
	entry := s.post(source(domain.SourcePurchaseOrder, "PO-1"), "2024-02-02",
		debit(s.id("1200"), "80.10"), debit(s.id("5000"), "19.90"), credit(s.id("2000"), "100"))

	got, err := s.svc.Journal.GetEntryByID(s.ctx, entry.EntryID)
	s.Require().NoError(err)
	totals := domain.TotalsOf(got.Lines)
	s.True(totals.Debit.Equal(totals.Credit))
	s.True(totals.Debit.Equal(got.TotalDebit))
	s.True(totals.Credit.Equal(got.TotalCredit))
	s.Equal([]int{1, 2, 3}, []int{got.Lines[0].LineNumber, got.Lines[1].LineNumber, got.Lines[2].LineNumber})

	_, err = s.svc.Reporting.CheckConsistency(s.ctx)
	s.NoError(err)
}

func (s *JournalServiceTestSuite) TestGetEntryBySource() {
	src := source(domain.SourceInvoice, "INV-30")
	posted := s.post(src, "2024-03-01", debit(s.id("1100"), "40"), credit(s.id("4000"), "40"))

	got, err := s.svc.Journal.GetEntryBySource(s.ctx, src)
	s.Require().NoError(err)
	s.Equal(posted.EntryID, got.EntryID)
	s.Len(got.Lines, 2)

	_, err = s.svc.Journal.GetEntryBySource(s.ctx, source(domain.SourceInvoice, "nope"))
	s.ErrorIs(err, apperrors.ErrEntryNotFound)

	_, err = s.svc.Journal.GetEntryByID(s.ctx, "nope")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *JournalServiceTestSuite) TestListEntries_PagesNewestFirst() {
	s.post(source(domain.SourceInvoice, "INV-A"), "2024-01-10", debit(s.id("1100"), "1"), credit(s.id("4000"), "1"))
	s.post(source(domain.SourceInvoice, "INV-B"), "2024-01-12", debit(s.id("1100"), "1"), credit(s.id("4000"), "1"))
	s.post(source(domain.SourcePayment, "PAY-A"), "2024-01-12", debit(s.id("1000"), "1"), credit(s.id("1100"), "1"))
	s.post(source(domain.SourceInvoice, "INV-C"), "2024-01-11", debit(s.id("1100"), "1"), credit(s.id("4000"), "1"))

	page, err := s.svc.Journal.ListEntries(s.ctx, dto.ListJournalEntriesParams{Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(page.Entries, 2)
	s.Equal("PAY-A", page.Entries[0].SourceDocumentID)
	s.Equal("INV-B", page.Entries[1].SourceDocumentID)
	s.Require().NotNil(page.NextToken)

	page, err = s.svc.Journal.ListEntries(s.ctx, dto.ListJournalEntriesParams{Limit: 2, NextToken: *page.NextToken})
	s.Require().NoError(err)
	s.Require().Len(page.Entries, 2)
	s.Equal("INV-C", page.Entries[0].SourceDocumentID)
	s.Equal("INV-A", page.Entries[1].SourceDocumentID)
	s.Nil(page.NextToken)

	filtered, err := s.svc.Journal.ListEntries(s.ctx, dto.ListJournalEntriesParams{
		Limit: 10, SourceType: string(domain.SourceInvoice), FromDate: "2024-01-11",
	})
	s.Require().NoError(err)
	s.Len(filtered.Entries, 2)

	_, err = s.svc.Journal.ListEntries(s.ctx, dto.ListJournalEntriesParams{Limit: 10, NextToken: "garbage!"})
	s.ErrorIs(err, apperrors.ErrValidation)
}
