package dto

import (
	"time"

	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AgingRecordRequest is one open receivable or payable document.
type AgingRecordRequest struct {
	DocumentID     string          `json:"documentID" binding:"required"`
	DocumentNumber string          `json:"documentNumber"`
	PartyID        string          `json:"partyID"`
	PartyName      string          `json:"partyName"`
	DocumentDate   string          `json:"documentDate" binding:"omitempty,datetime=2006-01-02"`
	DueDate        string          `json:"dueDate" binding:"omitempty,datetime=2006-01-02"`
	TotalAmount    decimal.Decimal `json:"totalAmount" binding:"dnonneg"`
	PaidAmount     decimal.Decimal `json:"paidAmount" binding:"dnonneg"`
}

// AgingReportRequest asks for an aging report over the supplied records.
type AgingReportRequest struct {
	Kind    domain.AgingKind     `json:"kind" binding:"required,oneof=RECEIVABLE PAYABLE"`
	AsOf    string               `json:"asOf" binding:"required,datetime=2006-01-02"`
	Records []AgingRecordRequest `json:"records" binding:"dive"`
}

// ToDomain converts the request records and parses the as-of date.
func (r AgingReportRequest) ToDomain() ([]domain.AgingRecord, time.Time, error) {
	asOf, err := ParseDate("asOf", r.AsOf)
	if err != nil {
		return nil, time.Time{}, err
	}
	records := make([]domain.AgingRecord, len(r.Records))
	for i, rec := range r.Records {
		docDate, err := parseOptionalDate("documentDate", rec.DocumentDate)
		if err != nil {
			return nil, time.Time{}, err
		}
		dueDate, err := parseOptionalDate("dueDate", rec.DueDate)
		if err != nil {
			return nil, time.Time{}, err
		}
		records[i] = domain.AgingRecord{
			DocumentID:     rec.DocumentID,
			DocumentNumber: rec.DocumentNumber,
			PartyID:        rec.PartyID,
			PartyName:      rec.PartyName,
			DocumentDate:   docDate,
			DueDate:        dueDate,
			TotalAmount:    rec.TotalAmount,
			PaidAmount:     rec.PaidAmount,
		}
	}
	return records, asOf, nil
}

// GeneralLedgerParams defines query parameters for the general ledger view.
type GeneralLedgerParams struct {
	FromDate string `form:"fromDate" binding:"required,datetime=2006-01-02"`
	ToDate   string `form:"toDate" binding:"required,datetime=2006-01-02"`
}

// GeneralLedgerRowResponse is one row of the general ledger view.
type GeneralLedgerRowResponse struct {
	Date           string          `json:"date"`
	EntryID        string          `json:"entryID"`
	JournalNumber  int64           `json:"journalNumber"`
	Reference      string          `json:"reference"`
	Description    string          `json:"description"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// GeneralLedgerResponse is the running-balance view of one account.
type GeneralLedgerResponse struct {
	Account        AccountResponse            `json:"account"`
	FromDate       string                     `json:"fromDate"`
	ToDate         string                     `json:"toDate"`
	OpeningBalance decimal.Decimal            `json:"openingBalance"`
	Rows           []GeneralLedgerRowResponse `json:"rows"`
	ClosingBalance decimal.Decimal            `json:"closingBalance"`
}

// ToGeneralLedgerResponse converts a domain.GeneralLedger to its response DTO.
func ToGeneralLedgerResponse(gl *domain.GeneralLedger) GeneralLedgerResponse {
	rows := make([]GeneralLedgerRowResponse, len(gl.Rows))
	for i, r := range gl.Rows {
		rows[i] = GeneralLedgerRowResponse{
			Date:           r.Date.Format(DateLayout),
			EntryID:        r.EntryID,
			JournalNumber:  r.JournalNumber,
			Reference:      r.Reference,
			Description:    r.Description,
			Debit:          r.Debit,
			Credit:         r.Credit,
			RunningBalance: r.RunningBalance,
		}
	}
	return GeneralLedgerResponse{
		Account:        ToAccountResponse(&gl.Account),
		FromDate:       gl.FromDate.Format(DateLayout),
		ToDate:         gl.ToDate.Format(DateLayout),
		OpeningBalance: gl.OpeningBalance,
		Rows:           rows,
		ClosingBalance: gl.ClosingBalance,
	}
}
