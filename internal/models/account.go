package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

// NormalBalance is the side on which an account increases.
type NormalBalance string

// Account mirrors a row of the accounts table.
type Account struct {
	AccountID       string         `db:"account_id"`
	Code            string         `db:"code"`
	Name            string         `db:"name"`
	Description     string         `db:"description"`
	AccountType     AccountType    `db:"account_type"`
	NormalBalance   NormalBalance  `db:"normal_balance"`
	ParentAccountID sql.NullString `db:"parent_account_id"`
	IsActive        bool           `db:"is_active"`
	AuditFields
	OpeningBalance decimal.Decimal `db:"opening_balance"`
	CurrentBalance decimal.Decimal `db:"current_balance"`
}
