package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Draft  JournalStatus = "DRAFT"
	Posted JournalStatus = "POSTED"
)

// SourceDocumentType tags the business record that produced a journal entry.
type SourceDocumentType string

const (
	SourceInvoice           SourceDocumentType = "INVOICE"
	SourcePayment           SourceDocumentType = "PAYMENT"
	SourceExpense           SourceDocumentType = "EXPENSE"
	SourcePurchaseOrder     SourceDocumentType = "PURCHASE_ORDER"
	SourceSupplierPayment   SourceDocumentType = "SUPPLIER_PAYMENT"
	SourcePartnerInvestment SourceDocumentType = "PARTNER_INVESTMENT"
)

// SourceDocumentTypes lists every accepted source document tag.
var SourceDocumentTypes = []SourceDocumentType{
	SourceInvoice,
	SourcePayment,
	SourceExpense,
	SourcePurchaseOrder,
	SourceSupplierPayment,
	SourcePartnerInvestment,
}

func (s SourceDocumentType) IsValid() bool {
	for _, t := range SourceDocumentTypes {
		if s == t {
			return true
		}
	}
	return false
}

// SourceDocument identifies the business record behind an entry.
type SourceDocument struct {
	Type SourceDocumentType `json:"type"`
	ID   string             `json:"id"`
}

func (s SourceDocument) String() string {
	return string(s.Type) + "/" + s.ID
}

// Validate checks that the source document reference is usable.
func (s SourceDocument) Validate() error {
	if !s.Type.IsValid() {
		return fmt.Errorf("%w: unknown source document type '%s'", apperrors.ErrValidation, s.Type)
	}
	if s.ID == "" {
		return fmt.Errorf("%w: source document id is required", apperrors.ErrValidation)
	}
	return nil
}

// JournalEntry is a balanced set of lines representing one financial event.
type JournalEntry struct {
	EntryID       string             `json:"entryID"`
	JournalNumber int64              `json:"journalNumber"`
	EntryDate     time.Time          `json:"entryDate"`
	Description   string             `json:"description"`
	Source        SourceDocument     `json:"source"`
	Status        JournalStatus      `json:"status"`
	TotalDebit    decimal.Decimal    `json:"totalDebit"`
	TotalCredit   decimal.Decimal    `json:"totalCredit"`
	Lines         []JournalEntryLine `json:"lines,omitempty"`
	AuditFields
}

// JournalEntryLine is a single debit or credit against one account.
type JournalEntryLine struct {
	LineID         string          `json:"lineID"`
	JournalEntryID string          `json:"journalEntryID"`
	LineNumber     int             `json:"lineNumber"`
	AccountID      string          `json:"accountID"`
	DebitAmount    decimal.Decimal `json:"debitAmount"`
	CreditAmount   decimal.Decimal `json:"creditAmount"`
	Description    string          `json:"description"`
	Reference      string          `json:"reference"`
}

// PostingLine is the caller-supplied shape of a line before it is posted.
type PostingLine struct {
	AccountID string
	// OpenAccount is used when AccountID is empty: the account is looked up by
	// code, or created, inside the posting transaction.
	OpenAccount *AccountTemplate
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
	Reference   string
}

// AccountTemplate describes an account a posting opens on first use.
type AccountTemplate struct {
	Code          string
	Name          string
	AccountType   AccountType
	NormalBalance NormalBalance
}

// Validate enforces the one-sided, positive amount convention for a line.
func (l PostingLine) Validate(lineNumber int) error {
	if l.AccountID == "" && (l.OpenAccount == nil || l.OpenAccount.Code == "") {
		return fmt.Errorf("%w: line %d: account id is required", apperrors.ErrValidation, lineNumber)
	}
	if l.Debit.IsNegative() || l.Credit.IsNegative() {
		return fmt.Errorf("%w: line %d: amounts must not be negative", apperrors.ErrValidation, lineNumber)
	}
	hasDebit := l.Debit.IsPositive()
	hasCredit := l.Credit.IsPositive()
	if hasDebit == hasCredit {
		return fmt.Errorf("%w: line %d: exactly one of debit or credit must be positive", apperrors.ErrValidation, lineNumber)
	}
	return nil
}

// LineTotals accumulates debit and credit sums.
type LineTotals struct {
	Debit  decimal.Decimal `json:"debit"`
	Credit decimal.Decimal `json:"credit"`
}

// Add returns the totals with one more debit/credit pair included.
func (t LineTotals) Add(debit, credit decimal.Decimal) LineTotals {
	return LineTotals{Debit: t.Debit.Add(debit), Credit: t.Credit.Add(credit)}
}

// TotalsOf sums the debit and credit sides of lines.
func TotalsOf(lines []JournalEntryLine) LineTotals {
	totals := LineTotals{Debit: decimal.Zero, Credit: decimal.Zero}
	for _, l := range lines {
		totals = totals.Add(l.DebitAmount, l.CreditAmount)
	}
	return totals
}

// IsBalanced reports whether debits equal credits within eps.
func (t LineTotals) IsBalanced(eps decimal.Decimal) bool {
	return WithinEpsilon(t.Debit, t.Credit, eps)
}

// LedgerLine is a posted line joined with its entry header, used by read models.
type LedgerLine struct {
	EntryID          string
	JournalNumber    int64
	EntryDate        time.Time
	EntryDescription string
	Source           SourceDocument
	Line             JournalEntryLine
}

// PostEntryCommand carries everything needed to post one journal entry.
type PostEntryCommand struct {
	Source      SourceDocument
	EntryDate   time.Time
	Description string
	Lines       []PostingLine
}

// RepostCommand replaces the lines of an existing source entry.
// Nil EntryDate or Description keep the values of the reversed entry.
type RepostCommand struct {
	EntryDate   *time.Time
	Description *string
	Lines       []PostingLine
}

// ReversalResult summarizes what a reversal undid.
type ReversalResult struct {
	Source            SourceDocument   `json:"source"`
	ReversedEntries   int              `json:"reversedEntries"`
	ReversedLineCount int              `json:"reversedLineCount"`
	RestoredAccounts  []AccountBalance `json:"restoredAccounts"`
}
