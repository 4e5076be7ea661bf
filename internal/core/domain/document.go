package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// BusinessDocument is the accounting-relevant part of an ERP document
// (invoice, payment, purchase order, supplier payment, expense, partner investment).
type BusinessDocument struct {
	ID            string
	Date          time.Time
	Description   string
	Reference     string
	Amount        decimal.Decimal
	PaymentMethod PaymentMethod

	// ExpenseAccountID overrides the GENERAL_EXPENSE role for expenses.
	ExpenseAccountID string

	PartnerID   string
	PartnerName string
}

// Validate checks the fields shared by every document kind.
func (d BusinessDocument) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: document id is required", apperrors.ErrValidation)
	}
	if d.Date.IsZero() {
		return fmt.Errorf("%w: document date is required", apperrors.ErrValidation)
	}
	if d.Amount.IsNegative() {
		return fmt.Errorf("%w: document amount must not be negative", apperrors.ErrValidation)
	}
	return nil
}

// PartnerEquityCode is the account code of a partner's equity account.
func PartnerEquityCode(partnerID string) string {
	return "EQ-" + partnerID
}
