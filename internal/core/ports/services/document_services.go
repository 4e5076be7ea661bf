package services

import (
	"context"

	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
)

// DocumentSvc posts ERP business documents through role-mapped accounts.
type DocumentSvc interface {
	PostInvoice(ctx context.Context, doc domain.BusinessDocument, userID string) (*domain.JournalEntry, error)
	PostPayment(ctx context.Context, doc domain.BusinessDocument, userID string) (*domain.JournalEntry, error)
	PostPurchaseOrder(ctx context.Context, doc domain.BusinessDocument, userID string) (*domain.JournalEntry, error)
	PostSupplierPayment(ctx context.Context, doc domain.BusinessDocument, userID string) (*domain.JournalEntry, error)
	PostExpense(ctx context.Context, doc domain.BusinessDocument, userID string) (*domain.JournalEntry, error)

	// PostPartnerInvestment returns a nil entry when the amount is zero.
	PostPartnerInvestment(ctx context.Context, doc domain.BusinessDocument, userID string) (*domain.JournalEntry, error)

	// AmendDocument reposts the document's entry with the lines derived from doc.
	AmendDocument(ctx context.Context, docType domain.SourceDocumentType, doc domain.BusinessDocument, userID string) (*domain.JournalEntry, error)

	// DeleteDocument reverses the document's entry.
	DeleteDocument(ctx context.Context, source domain.SourceDocument, userID string) (*domain.ReversalResult, error)
}
