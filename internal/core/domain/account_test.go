package domain_test

import (
	"errors"
	"testing"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDefaultNormalBalance(t *testing.T) {
	tests := []struct {
		accountType domain.AccountType
		want        domain.NormalBalance
	}{
		{domain.Asset, domain.DebitNormal},
		{domain.Expense, domain.DebitNormal},
		{domain.Liability, domain.CreditNormal},
		{domain.Equity, domain.CreditNormal},
		{domain.Revenue, domain.CreditNormal},
	}

	for _, tt := range tests {
		t.Run(string(tt.accountType), func(t *testing.T) {
			assert.Equal(t, tt.want, domain.DefaultNormalBalance(tt.accountType))
		})
	}
}

func TestAccount_SignedEffect(t *testing.T) {
	hundred := decimal.NewFromInt(100)

	tests := []struct {
		name   string
		normal domain.NormalBalance
		debit  decimal.Decimal
		credit decimal.Decimal
		want   decimal.Decimal
	}{
		{"debit increases debit-normal", domain.DebitNormal, hundred, decimal.Zero, hundred},
		{"credit decreases debit-normal", domain.DebitNormal, decimal.Zero, hundred, hundred.Neg()},
		{"credit increases credit-normal", domain.CreditNormal, decimal.Zero, hundred, hundred},
		{"debit decreases credit-normal", domain.CreditNormal, hundred, decimal.Zero, hundred.Neg()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := domain.Account{NormalBalance: tt.normal}
			got := acc.SignedEffect(tt.debit, tt.credit)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestAccount_Validate(t *testing.T) {
	valid := domain.Account{
		Code:          "1100",
		Name:          "Accounts Receivable",
		AccountType:   domain.Asset,
		NormalBalance: domain.DebitNormal,
	}
	assert.NoError(t, valid.Validate())

	missingCode := valid
	missingCode.Code = ""
	assert.True(t, errors.Is(missingCode.Validate(), apperrors.ErrValidation))

	badType := valid
	badType.AccountType = "INCOME"
	assert.ErrorContains(t, badType.Validate(), "unknown account type")

	badNormal := valid
	badNormal.NormalBalance = "SIDEWAYS"
	assert.ErrorContains(t, badNormal.Validate(), "unknown normal balance")
}

func TestAccountRoleMap(t *testing.T) {
	roles := domain.AccountRoleMap{
		domain.RoleCash: "acc-cash",
	}

	id, err := roles.AccountFor(domain.RoleCash)
	assert.NoError(t, err)
	assert.Equal(t, "acc-cash", id)

	_, err = roles.AccountFor(domain.RoleBank)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	missing := roles.Missing()
	assert.Len(t, missing, len(domain.AccountRoles)-1)
	assert.NotContains(t, missing, domain.RoleCash)

	assert.Equal(t, domain.RoleCash, domain.PaymentCash.Role())
	assert.Equal(t, domain.RoleBank, domain.PaymentBank.Role())
	assert.Equal(t, domain.RoleBank, domain.PaymentMethod("CHEQUE").Role())
}
