package services_test

import (
	"testing"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	"github.com/SscSPs/furniture_erp_ledger/internal/dto"
	"github.com/stretchr/testify/suite"
)

type ReconciliationServiceTestSuite struct {
	ledgerSuite
}

func TestReconciliationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReconciliationServiceTestSuite))
}

func (s *ReconciliationServiceTestSuite) TestCheckConsistency_CleanLedger() {
	s.post(source(domain.SourceInvoice, "I-1"), "2024-02-01", debit(s.id("1100"), "100"), credit(s.id("4000"), "100"))
	s.post(source(domain.SourcePayment, "P-1"), "2024-02-03", debit(s.id("1000"), "60"), credit(s.id("1100"), "60"))

	report, err := s.svc.Reporting.CheckConsistency(s.ctx)
	s.Require().NoError(err)
	s.True(report.Consistent())
	s.Equal(len(seedChart), report.AccountsChecked)
	s.Equal(2, report.EntriesChecked)
	s.True(report.GlobalDebit.Equal(d("160")))
	s.True(report.GlobalDebit.Equal(report.GlobalCredit))
}

func (s *ReconciliationServiceTestSuite) TestCheckConsistency_ReportsDriftWithoutCorrecting() {
	s.post(source(domain.SourceInvoice, "I-1"), "2024-02-01", debit(s.id("1100"), "100"), credit(s.id("4000"), "100"))

	// A direct adjustment moves the stored balance without any journal line.
	_, err := s.balances.AdjustBalance(s.ctx, s.id("1100"), d("5"), testUserID)
	s.Require().NoError(err)

	report, err := s.svc.Reporting.CheckConsistency(s.ctx)
	s.ErrorIs(err, apperrors.ErrConsistency)
	s.Require().NotNil(report)
	s.Require().Len(report.AccountDrifts, 1)

	drift := report.AccountDrifts[0]
	s.Equal("1100", drift.Code)
	s.True(drift.StoredBalance.Equal(d("105")))
	s.True(drift.ExpectedBalance.Equal(d("100")))
	s.True(drift.Difference.Equal(d("5")))
	s.Empty(report.EntryImbalances)

	s.assertBalance("1100", "105")
}

func (s *ReconciliationServiceTestSuite) TestCheckConsistency_OpeningBalanceCounts() {
	_, err := s.svc.Account.CreateAccount(s.ctx, dto.CreateAccountRequest{
		Code: "3000", Name: "Owner Capital", AccountType: domain.Equity, OpeningBalance: d("2500"),
	}, testUserID)
	s.Require().NoError(err)

	report, err := s.svc.Reporting.CheckConsistency(s.ctx)
	s.Require().NoError(err)
	s.Equal(len(seedChart)+1, report.AccountsChecked)
}
