package dto

import (
	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DocumentRequest is the accounting-relevant part of an ERP document posted by
// the sales, procurement, finance and equity modules.
type DocumentRequest struct {
	DocumentID       string               `json:"documentID" binding:"required,max=128"`
	Date             string               `json:"date" binding:"required,datetime=2006-01-02"`
	Description      string               `json:"description"`
	Reference        string               `json:"reference"`
	Amount           decimal.Decimal      `json:"amount" binding:"dnonneg"`
	PaymentMethod    domain.PaymentMethod `json:"paymentMethod" binding:"omitempty,oneof=CASH BANK"`
	ExpenseAccountID string               `json:"expenseAccountID"`
	PartnerID        string               `json:"partnerID"`
	PartnerName      string               `json:"partnerName"`
}

// ToDomain converts the request into a business document.
func (r DocumentRequest) ToDomain() (domain.BusinessDocument, error) {
	date, err := ParseDate("date", r.Date)
	if err != nil {
		return domain.BusinessDocument{}, err
	}
	return domain.BusinessDocument{
		ID:               r.DocumentID,
		Date:             date,
		Description:      r.Description,
		Reference:        r.Reference,
		Amount:           r.Amount,
		PaymentMethod:    r.PaymentMethod,
		ExpenseAccountID: r.ExpenseAccountID,
		PartnerID:        r.PartnerID,
		PartnerName:      r.PartnerName,
	}, nil
}

// DocumentPostingResponse is returned after posting a document.
// Entry is nil when the document produced no journal entry.
type DocumentPostingResponse struct {
	Posted bool                  `json:"posted"`
	Entry  *JournalEntryResponse `json:"entry,omitempty"`
}

// ToDocumentPostingResponse converts an optional entry into the response DTO.
func ToDocumentPostingResponse(e *domain.JournalEntry) DocumentPostingResponse {
	if e == nil {
		return DocumentPostingResponse{Posted: false}
	}
	resp := ToJournalEntryResponse(e)
	return DocumentPostingResponse{Posted: true, Entry: &resp}
}
