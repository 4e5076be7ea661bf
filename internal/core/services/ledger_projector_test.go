package services_test

import (
	"testing"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	"github.com/SscSPs/furniture_erp_ledger/internal/dto"
	"github.com/stretchr/testify/suite"
)

type LedgerProjectorTestSuite struct {
	ledgerSuite
}

func TestLedgerProjectorTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerProjectorTestSuite))
}

func (s *LedgerProjectorTestSuite) TestProjectGeneralLedger_RunningBalance() {
	bank, err := s.svc.Account.CreateAccount(s.ctx, dto.CreateAccountRequest{
		Code: "1020", Name: "Savings", AccountType: domain.Asset, OpeningBalance: d("1000"),
	}, testUserID)
	s.Require().NoError(err)
	ar := s.id("1100")

	s.post(source(domain.SourcePayment, "P-OLD"), "2024-01-15", debit(bank.AccountID, "200"), credit(ar, "200"))
	s.post(source(domain.SourceExpense, "E-1"), "2024-02-10", debit(s.id("5000"), "50"), credit(bank.AccountID, "50"))
	s.post(source(domain.SourcePayment, "P-1"), "2024-02-05", debit(bank.AccountID, "300"), credit(ar, "300"))
	s.post(source(domain.SourcePayment, "P-2"), "2024-02-10", debit(bank.AccountID, "25"), credit(ar, "25"))
	s.post(source(domain.SourcePayment, "P-LATE"), "2024-03-01", debit(bank.AccountID, "999"), credit(ar, "999"))

	gl, err := s.svc.Reporting.ProjectGeneralLedger(s.ctx, bank.AccountID, day("2024-02-01"), day("2024-02-29"))
	s.Require().NoError(err)

	s.True(gl.OpeningBalance.Equal(d("1200")), "opening %s", gl.OpeningBalance)
	s.Require().Len(gl.Rows, 3)

	// Ordered by entry date, then journal number: E-1 (#2) precedes P-2 (#4) on the same day.
	s.Equal("PAYMENT/P-1", gl.Rows[0].Reference)
	s.Equal(int64(3), gl.Rows[0].JournalNumber)
	s.Equal(int64(2), gl.Rows[1].JournalNumber)
	s.Equal(int64(4), gl.Rows[2].JournalNumber)

	s.True(gl.Rows[0].RunningBalance.Equal(d("1500")))
	s.True(gl.Rows[1].RunningBalance.Equal(d("1450")))
	s.True(gl.Rows[2].RunningBalance.Equal(d("1475")))
	s.True(gl.ClosingBalance.Equal(d("1475")))
	s.Equal(day("2024-02-01"), gl.FromDate)
}

func (s *LedgerProjectorTestSuite) TestProjectGeneralLedger_CreditNormalAccount() {
	sales := s.id("4000")
	s.post(source(domain.SourceInvoice, "I-1"), "2024-02-01", debit(s.id("1100"), "100"), credit(sales, "100"))
	s.post(source(domain.SourceInvoice, "I-2"), "2024-02-02", debit(s.id("1100"), "40"), credit(sales, "40"))

	gl, err := s.svc.Reporting.ProjectGeneralLedger(s.ctx, sales, day("2024-02-02"), day("2024-02-02"))
	s.Require().NoError(err)
	s.True(gl.OpeningBalance.Equal(d("100")))
	s.Require().Len(gl.Rows, 1)
	s.True(gl.ClosingBalance.Equal(d("140")))
	s.True(gl.ClosingBalance.Equal(s.balance("4000")))
}

func (s *LedgerProjectorTestSuite) TestProjectGeneralLedger_EmptyPeriod() {
	gl, err := s.svc.Reporting.ProjectGeneralLedger(s.ctx, s.id("1000"), day("2024-01-01"), day("2024-01-31"))
	s.Require().NoError(err)
	s.Empty(gl.Rows)
	s.True(gl.OpeningBalance.IsZero())
	s.True(gl.ClosingBalance.IsZero())
}

func (s *LedgerProjectorTestSuite) TestProjectGeneralLedger_Errors() {
	_, err := s.svc.Reporting.ProjectGeneralLedger(s.ctx, s.id("1000"), day("2024-02-01"), day("2024-01-31"))
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.svc.Reporting.ProjectGeneralLedger(s.ctx, "ghost", day("2024-01-01"), day("2024-01-31"))
	s.ErrorIs(err, apperrors.ErrNotFound)
}
