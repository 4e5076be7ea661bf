package services_test

import (
	"sync"
	"testing"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	"github.com/SscSPs/furniture_erp_ledger/internal/dto"
	"github.com/stretchr/testify/suite"
)

type AccountServiceTestSuite struct {
	ledgerSuite
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}

func (s *AccountServiceTestSuite) TestCreateAccount_Success() {
	parent := s.id("5000")
	acc, err := s.svc.Account.CreateAccount(s.ctx, dto.CreateAccountRequest{
		Code:            "5200",
		Name:            "  Workshop Utilities ",
		AccountType:     domain.Expense,
		ParentAccountID: &parent,
		OpeningBalance:  d("12.345"),
	}, testUserID)
	s.Require().NoError(err)

	s.NotEmpty(acc.AccountID)
	s.Equal("Workshop Utilities", acc.Name)
	s.Equal(domain.DebitNormal, acc.NormalBalance)
	s.Equal(parent, acc.ParentAccountID)
	s.True(acc.OpeningBalance.Equal(d("12.35")))
	s.True(acc.CurrentBalance.Equal(acc.OpeningBalance))
	s.True(acc.IsActive)
	s.Equal(testUserID, acc.CreatedBy)

	stored, err := s.svc.Account.GetAccountByCode(s.ctx, "5200")
	s.Require().NoError(err)
	s.Equal(acc.AccountID, stored.AccountID)
}

func (s *AccountServiceTestSuite) TestCreateAccount_DefaultsNormalBalanceFromType() {
	for _, tc := range []struct {
		code string
		typ  domain.AccountType
		want domain.NormalBalance
	}{
		{"A1", domain.Asset, domain.DebitNormal},
		{"X1", domain.Expense, domain.DebitNormal},
		{"L1", domain.Liability, domain.CreditNormal},
		{"E1", domain.Equity, domain.CreditNormal},
		{"R1", domain.Revenue, domain.CreditNormal},
	} {
		acc, err := s.svc.Account.CreateAccount(s.ctx, dto.CreateAccountRequest{Code: tc.code, Name: tc.code, AccountType: tc.typ}, testUserID)
		s.Require().NoError(err)
		s.Equal(tc.want, acc.NormalBalance, tc.code)
	}
}

func (s *AccountServiceTestSuite) TestCreateAccount_Errors() {
	_, err := s.svc.Account.CreateAccount(s.ctx, dto.CreateAccountRequest{Code: "1000", Name: "Cash again", AccountType: domain.Asset}, testUserID)
	s.ErrorIs(err, apperrors.ErrConflict)
	s.ErrorIs(err, apperrors.ErrDuplicateAccount)

	_, err = s.svc.Account.CreateAccount(s.ctx, dto.CreateAccountRequest{Code: "9000", Name: "Odd", AccountType: "CONTRA"}, testUserID)
	s.ErrorIs(err, apperrors.ErrValidation)

	missing := "no-such-parent"
	_, err = s.svc.Account.CreateAccount(s.ctx, dto.CreateAccountRequest{
		Code: "9001", Name: "Orphan", AccountType: domain.Asset, ParentAccountID: &missing,
	}, testUserID)
	s.ErrorIs(err, apperrors.ErrValidation)
	_, err = s.svc.Account.GetAccountByCode(s.ctx, "9001")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *AccountServiceTestSuite) TestLookupOrCreateAccount() {
	req := dto.LookupOrCreateAccountRequest{Code: "EQ-7", Name: "Partner equity - Dana", AccountType: domain.Equity}

	created, err := s.svc.Account.LookupOrCreateAccount(s.ctx, req, testUserID)
	s.Require().NoError(err)
	s.True(created.CurrentBalance.IsZero())
	s.Equal(domain.CreditNormal, created.NormalBalance)

	again, err := s.svc.Account.LookupOrCreateAccount(s.ctx, req, testUserID)
	s.Require().NoError(err)
	s.Equal(created.AccountID, again.AccountID)

	req.AccountType = domain.Asset
	_, err = s.svc.Account.LookupOrCreateAccount(s.ctx, req, testUserID)
	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *AccountServiceTestSuite) TestLookupOrCreateAccount_ConcurrentCallersShareOneAccount() {
	req := dto.LookupOrCreateAccountRequest{Code: "EQ-42", Name: "Partner equity", AccountType: domain.Equity}

	const callers = 8
	ids := make([]string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acc, err := s.svc.Account.LookupOrCreateAccount(s.ctx, req, testUserID)
			if err == nil {
				ids[i] = acc.AccountID
			}
		}()
	}
	wg.Wait()

	for _, id := range ids {
		s.Equal(ids[0], id)
	}
	s.NotEmpty(ids[0])
}

func (s *AccountServiceTestSuite) TestAdjustBalance() {
	result, err := s.balances.AdjustBalance(s.ctx, s.id("1000"), d("100.005"), testUserID)
	s.Require().NoError(err)
	s.True(result.Balance.Equal(d("100.01")))
	s.Equal("1000", result.Code)

	result, err = s.balances.AdjustBalance(s.ctx, s.id("1000"), d("-40"), testUserID)
	s.Require().NoError(err)
	s.True(result.Balance.Equal(d("60.01")))
	s.assertBalance("1000", "60.01")
}

func (s *AccountServiceTestSuite) TestAdjustBalance_Errors() {
	_, err := s.balances.AdjustBalance(s.ctx, "ghost", d("1"), testUserID)
	s.ErrorIs(err, apperrors.ErrAccountNotFound)

	s.Require().NoError(s.svc.Account.DeactivateAccount(s.ctx, s.id("1010"), testUserID))
	_, err = s.balances.AdjustBalance(s.ctx, s.id("1010"), d("1"), testUserID)
	s.ErrorIs(err, apperrors.ErrAccountInactive)
	s.assertBalance("1010", "0")

	s.Require().NoError(s.svc.Account.ActivateAccount(s.ctx, s.id("1010"), testUserID))
	_, err = s.balances.AdjustBalance(s.ctx, s.id("1010"), d("1"), testUserID)
	s.NoError(err)
}

func (s *AccountServiceTestSuite) TestUpdateAccountDetails() {
	name := "Petty Cash"
	desc := "Front desk drawer"
	parent := s.id("1010")
	updated, err := s.svc.Account.UpdateAccountDetails(s.ctx, s.id("1000"), dto.UpdateAccountRequest{
		Name: &name, Description: &desc, ParentAccountID: &parent,
	}, testUserID)
	s.Require().NoError(err)
	s.Equal(name, updated.Name)
	s.Equal(desc, updated.Description)
	s.Equal(parent, updated.ParentAccountID)
	s.Equal(domain.Asset, updated.AccountType)

	self := s.id("1000")
	_, err = s.svc.Account.UpdateAccountDetails(s.ctx, self, dto.UpdateAccountRequest{ParentAccountID: &self}, testUserID)
	s.ErrorIs(err, apperrors.ErrValidation)

	blank := " "
	_, err = s.svc.Account.UpdateAccountDetails(s.ctx, self, dto.UpdateAccountRequest{Name: &blank}, testUserID)
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.svc.Account.UpdateAccountDetails(s.ctx, "ghost", dto.UpdateAccountRequest{Name: &name}, testUserID)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *AccountServiceTestSuite) TestListAccounts() {
	page, err := s.svc.Account.ListAccounts(s.ctx, 3, 0)
	s.Require().NoError(err)
	s.Require().Len(page, 3)
	s.Equal([]string{"1000", "1010", "1100"}, []string{page[0].Code, page[1].Code, page[2].Code})

	page, err = s.svc.Account.ListAccounts(s.ctx, 10, 6)
	s.Require().NoError(err)
	s.Len(page, len(seedChart)-6)
}
