package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

// JournalEntry mirrors a row of the journal_entries table.
type JournalEntry struct {
	EntryID            string          `db:"entry_id"`
	JournalNumber      int64           `db:"journal_number"`
	EntryDate          time.Time       `db:"entry_date"`
	Description        string          `db:"description"`
	SourceDocumentType string          `db:"source_document_type"`
	SourceDocumentID   string          `db:"source_document_id"`
	Status             JournalStatus   `db:"status"`
	TotalDebit         decimal.Decimal `db:"total_debit"`
	TotalCredit        decimal.Decimal `db:"total_credit"`
	AuditFields
}

// JournalEntryLine mirrors a row of the journal_entry_lines table.
type JournalEntryLine struct {
	LineID         string          `db:"line_id"`
	JournalEntryID string          `db:"journal_entry_id"`
	LineNumber     int             `db:"line_number"`
	AccountID      string          `db:"account_id"`
	DebitAmount    decimal.Decimal `db:"debit_amount"`
	CreditAmount   decimal.Decimal `db:"credit_amount"`
	Description    string          `db:"description"`
	Reference      string          `db:"reference"`
}
