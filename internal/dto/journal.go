package dto

import (
	"fmt"
	"time"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalLineRequest is one debit or credit line in a posting request.
type JournalLineRequest struct {
	AccountID   string          `json:"accountID" binding:"required"`
	Debit       decimal.Decimal `json:"debit" binding:"dnonneg"`
	Credit      decimal.Decimal `json:"credit" binding:"dnonneg"`
	Description string          `json:"description"`
	Reference   string          `json:"reference"`
}

// PostJournalEntryRequest posts a balanced entry for a source document.
type PostJournalEntryRequest struct {
	SourceDocumentType domain.SourceDocumentType `json:"sourceDocumentType" binding:"required,oneof=INVOICE PAYMENT EXPENSE PURCHASE_ORDER SUPPLIER_PAYMENT PARTNER_INVESTMENT"`
	SourceDocumentID   string                    `json:"sourceDocumentID" binding:"required,max=128"`
	EntryDate          string                    `json:"entryDate" binding:"required,datetime=2006-01-02"`
	Description        string                    `json:"description"`
	Lines              []JournalLineRequest      `json:"lines" binding:"required,min=2,dive"`
}

// RepostJournalEntryRequest replaces the entry of a source document.
// Omitted entryDate or description keep the values of the reversed entry.
type RepostJournalEntryRequest struct {
	EntryDate   *string              `json:"entryDate" binding:"omitempty,datetime=2006-01-02"`
	Description *string              `json:"description"`
	Lines       []JournalLineRequest `json:"lines" binding:"required,min=2,dive"`
}

func toPostingLines(reqs []JournalLineRequest) []domain.PostingLine {
	lines := make([]domain.PostingLine, len(reqs))
	for i, l := range reqs {
		lines[i] = domain.PostingLine{
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Description: l.Description,
			Reference:   l.Reference,
		}
	}
	return lines
}

// ToCommand converts the request into a posting command.
func (r PostJournalEntryRequest) ToCommand() (domain.PostEntryCommand, error) {
	date, err := ParseDate("entryDate", r.EntryDate)
	if err != nil {
		return domain.PostEntryCommand{}, err
	}
	return domain.PostEntryCommand{
		Source:      domain.SourceDocument{Type: r.SourceDocumentType, ID: r.SourceDocumentID},
		EntryDate:   date,
		Description: r.Description,
		Lines:       toPostingLines(r.Lines),
	}, nil
}

// ToCommand converts the request into a repost command.
func (r RepostJournalEntryRequest) ToCommand() (domain.RepostCommand, error) {
	cmd := domain.RepostCommand{
		Description: r.Description,
		Lines:       toPostingLines(r.Lines),
	}
	if r.EntryDate != nil {
		date, err := ParseDate("entryDate", *r.EntryDate)
		if err != nil {
			return domain.RepostCommand{}, err
		}
		cmd.EntryDate = &date
	}
	return cmd, nil
}

// JournalLineResponse defines the data returned for a journal entry line.
type JournalLineResponse struct {
	LineID       string          `json:"lineID"`
	LineNumber   int             `json:"lineNumber"`
	AccountID    string          `json:"accountID"`
	DebitAmount  decimal.Decimal `json:"debitAmount"`
	CreditAmount decimal.Decimal `json:"creditAmount"`
	Description  string          `json:"description"`
	Reference    string          `json:"reference"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID            string                    `json:"entryID"`
	JournalNumber      int64                     `json:"journalNumber"`
	EntryDate          string                    `json:"entryDate"`
	Description        string                    `json:"description"`
	SourceDocumentType domain.SourceDocumentType `json:"sourceDocumentType"`
	SourceDocumentID   string                    `json:"sourceDocumentID"`
	Status             domain.JournalStatus      `json:"status"`
	TotalDebit         decimal.Decimal           `json:"totalDebit"`
	TotalCredit        decimal.Decimal           `json:"totalCredit"`
	Lines              []JournalLineResponse     `json:"lines,omitempty"`
	CreatedAt          time.Time                 `json:"createdAt"`
	CreatedBy          string                    `json:"createdBy"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to JournalEntryResponse DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	resp := JournalEntryResponse{
		EntryID:            e.EntryID,
		JournalNumber:      e.JournalNumber,
		EntryDate:          e.EntryDate.Format(DateLayout),
		Description:        e.Description,
		SourceDocumentType: e.Source.Type,
		SourceDocumentID:   e.Source.ID,
		Status:             e.Status,
		TotalDebit:         e.TotalDebit,
		TotalCredit:        e.TotalCredit,
		CreatedAt:          e.CreatedAt,
		CreatedBy:          e.CreatedBy,
	}
	if len(e.Lines) > 0 {
		resp.Lines = make([]JournalLineResponse, len(e.Lines))
		for i, l := range e.Lines {
			resp.Lines[i] = JournalLineResponse{
				LineID:       l.LineID,
				LineNumber:   l.LineNumber,
				AccountID:    l.AccountID,
				DebitAmount:  l.DebitAmount,
				CreditAmount: l.CreditAmount,
				Description:  l.Description,
				Reference:    l.Reference,
			}
		}
	}
	return resp
}

// ListJournalEntriesParams defines query parameters for listing journal entries.
type ListJournalEntriesParams struct {
	Limit      int    `form:"limit,default=20" binding:"min=1,max=200"`
	NextToken  string `form:"nextToken"`
	SourceType string `form:"sourceType" binding:"omitempty,oneof=INVOICE PAYMENT EXPENSE PURCHASE_ORDER SUPPLIER_PAYMENT PARTNER_INVESTMENT"`
	FromDate   string `form:"fromDate" binding:"omitempty,datetime=2006-01-02"`
	ToDate     string `form:"toDate" binding:"omitempty,datetime=2006-01-02"`
}

// DateRange parses the optional date filters.
func (p ListJournalEntriesParams) DateRange() (*time.Time, *time.Time, error) {
	from, err := parseOptionalDate("fromDate", p.FromDate)
	if err != nil {
		return nil, nil, err
	}
	to, err := parseOptionalDate("toDate", p.ToDate)
	if err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, fmt.Errorf("%w: fromDate must not be after toDate", apperrors.ErrValidation)
	}
	return from, to, nil
}

// ListJournalEntriesResponse wraps a page of journal entries.
type ListJournalEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// ReversalResponse summarizes a reversal.
type ReversalResponse struct {
	SourceDocumentType domain.SourceDocumentType `json:"sourceDocumentType"`
	SourceDocumentID   string                    `json:"sourceDocumentID"`
	ReversedEntries    int                       `json:"reversedEntries"`
	ReversedLineCount  int                       `json:"reversedLineCount"`
	RestoredAccounts   []domain.AccountBalance   `json:"restoredAccounts"`
}

// ToReversalResponse converts a domain.ReversalResult to ReversalResponse DTO.
func ToReversalResponse(r *domain.ReversalResult) ReversalResponse {
	return ReversalResponse{
		SourceDocumentType: r.Source.Type,
		SourceDocumentID:   r.Source.ID,
		ReversedEntries:    r.ReversedEntries,
		ReversedLineCount:  r.ReversedLineCount,
		RestoredAccounts:   r.RestoredAccounts,
	}
}
