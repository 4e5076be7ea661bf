package domain

import (
	"fmt"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// IsValid reports whether t is one of the five chart-of-accounts types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// NormalBalance is the side on which an account naturally increases.
type NormalBalance string

const (
	DebitNormal  NormalBalance = "DEBIT"
	CreditNormal NormalBalance = "CREDIT"
)

func (n NormalBalance) IsValid() bool {
	return n == DebitNormal || n == CreditNormal
}

// DefaultNormalBalance returns the conventional normal balance for an account type.
func DefaultNormalBalance(t AccountType) NormalBalance {
	switch t {
	case Asset, Expense:
		return DebitNormal
	default:
		return CreditNormal
	}
}

// Account represents a chart-of-accounts entry with its running balance.
type Account struct {
	AccountID       string          `json:"accountID"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	AccountType     AccountType     `json:"accountType"`
	NormalBalance   NormalBalance   `json:"normalBalance"`
	ParentAccountID string          `json:"parentAccountID"` // display-only hierarchy
	OpeningBalance  decimal.Decimal `json:"openingBalance"`
	CurrentBalance  decimal.Decimal `json:"currentBalance"`
	IsActive        bool            `json:"isActive"`
	AuditFields
}

// SignedEffect returns how a debit/credit pair moves this account's balance.
// DEBIT-normal accounts grow with debits, CREDIT-normal accounts with credits.
func (a Account) SignedEffect(debit, credit decimal.Decimal) decimal.Decimal {
	return SignedEffect(a.NormalBalance, debit, credit)
}

// SignedEffect is the package-level form of Account.SignedEffect.
func SignedEffect(n NormalBalance, debit, credit decimal.Decimal) decimal.Decimal {
	if n == CreditNormal {
		return credit.Sub(debit)
	}
	return debit.Sub(credit)
}

// Validate checks the structural fields required to persist an account.
func (a Account) Validate() error {
	if a.Code == "" {
		return fmt.Errorf("%w: account code is required", apperrors.ErrValidation)
	}
	if a.Name == "" {
		return fmt.Errorf("%w: account name is required", apperrors.ErrValidation)
	}
	if !a.AccountType.IsValid() {
		return fmt.Errorf("%w: unknown account type '%s'", apperrors.ErrValidation, a.AccountType)
	}
	if !a.NormalBalance.IsValid() {
		return fmt.Errorf("%w: unknown normal balance '%s'", apperrors.ErrValidation, a.NormalBalance)
	}
	return nil
}

// AccountBalance is a compact (id, balance) pair returned after balance mutations.
type AccountBalance struct {
	AccountID string          `json:"accountID"`
	Code      string          `json:"code"`
	Balance   decimal.Decimal `json:"balance"`
}
