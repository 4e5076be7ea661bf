package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/services"
)

// DocumentService turns ERP business documents into journal entries through
// the configured account roles.
type DocumentService struct {
	BaseService
	roles    domain.AccountRoleMap
	journal  portssvc.JournalSvcFacade
	reversal portssvc.ReversalSvc
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(cfg LedgerConfig, roles domain.AccountRoleMap, journal portssvc.JournalSvcFacade, reversal portssvc.ReversalSvc) *DocumentService {
	return &DocumentService{
		BaseService: newBaseService(cfg),
		roles:       roles,
		journal:     journal,
		reversal:    reversal,
	}
}

var _ portssvc.DocumentSvc = (*DocumentService)(nil)

var documentLabels = map[domain.SourceDocumentType]string{
	domain.SourceInvoice:           "Invoice",
	domain.SourcePayment:           "Payment",
	domain.SourcePurchaseOrder:     "Purchase order",
	domain.SourceSupplierPayment:   "Supplier payment",
	domain.SourceExpense:           "Expense",
	domain.SourcePartnerInvestment: "Partner investment",
}

func describe(docType domain.SourceDocumentType, doc domain.BusinessDocument) string {
	if doc.Description != "" {
		return doc.Description
	}
	ref := doc.Reference
	if ref == "" {
		ref = doc.ID
	}
	return documentLabels[docType] + " " + ref
}

// pair builds the two-line entry debiting one account and crediting another.
func pair(debitAccount, creditAccount string, doc domain.BusinessDocument, description string) []domain.PostingLine {
	return []domain.PostingLine{
		{AccountID: debitAccount, Debit: doc.Amount, Description: description, Reference: doc.Reference},
		{AccountID: creditAccount, Credit: doc.Amount, Description: description, Reference: doc.Reference},
	}
}

// linesFor maps a document to its debit and credit accounts.
func (s *DocumentService) linesFor(docType domain.SourceDocumentType, doc domain.BusinessDocument) ([]domain.PostingLine, error) {
	var debitRole, creditRole domain.AccountRole
	switch docType {
	case domain.SourceInvoice:
		debitRole, creditRole = domain.RoleAccountsReceivable, domain.RoleSalesRevenue
	case domain.SourcePayment:
		debitRole, creditRole = doc.PaymentMethod.Role(), domain.RoleAccountsReceivable
	case domain.SourcePurchaseOrder:
		debitRole, creditRole = domain.RoleInventory, domain.RoleAccountsPayable
	case domain.SourceSupplierPayment:
		debitRole, creditRole = domain.RoleAccountsPayable, doc.PaymentMethod.Role()
	case domain.SourceExpense:
		creditAccount, err := s.roles.AccountFor(doc.PaymentMethod.Role())
		if err != nil {
			return nil, err
		}
		debitAccount := doc.ExpenseAccountID
		if debitAccount == "" {
			if debitAccount, err = s.roles.AccountFor(domain.RoleGeneralExpense); err != nil {
				return nil, err
			}
		}
		return pair(debitAccount, creditAccount, doc, describe(docType, doc)), nil
	case domain.SourcePartnerInvestment:
		if doc.PartnerID == "" {
			return nil, fmt.Errorf("%w: partner id is required", apperrors.ErrValidation)
		}
		debitAccount, err := s.roles.AccountFor(doc.PaymentMethod.Role())
		if err != nil {
			return nil, err
		}
		name := doc.PartnerName
		if name == "" {
			name = doc.PartnerID
		}
		// The equity account opens inside the posting transaction so a failed
		// posting leaves no account behind.
		lines := pair(debitAccount, "", doc, describe(docType, doc))
		lines[1].OpenAccount = &domain.AccountTemplate{
			Code:          domain.PartnerEquityCode(doc.PartnerID),
			Name:          "Partner equity - " + name,
			AccountType:   domain.Equity,
			NormalBalance: domain.CreditNormal,
		}
		return lines, nil
	default:
		return nil, fmt.Errorf("%w: unsupported document type '%s'", apperrors.ErrValidation, docType)
	}

	debitAccount, err := s.roles.AccountFor(debitRole)
	if err != nil {
		return nil, err
	}
	creditAccount, err := s.roles.AccountFor(creditRole)
	if err != nil {
		return nil, err
	}
	return pair(debitAccount, creditAccount, doc, describe(docType, doc)), nil
}

func (s *DocumentService) post(ctx context.Context, docType domain.SourceDocumentType, doc domain.BusinessDocument, userID string) (*domain.JournalEntry, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if !doc.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: %s amount must be positive", apperrors.ErrValidation, documentLabels[docType])
	}
	lines, err := s.linesFor(docType, doc)
	if err != nil {
		return nil, err
	}
	return s.journal.PostEntry(ctx, domain.PostEntryCommand{
		Source:      domain.SourceDocument{Type: docType, ID: doc.ID},
		EntryDate:   doc.Date,
		Description: describe(docType, doc),
		Lines:       lines,
	}, userID)
}

// PostInvoice debits receivables and credits sales revenue when an invoice ships.
func (s *DocumentService) PostInvoice(ctx context.Context, doc domain.BusinessDocument, userID string) (*domain.JournalEntry, error) {
	return s.post(ctx, domain.SourceInvoice, doc, userID)
}

// PostPayment debits cash or bank and credits receivables.
func (s *DocumentService) PostPayment(ctx context.Context, doc domain.BusinessDocument, userID string) (*domain.JournalEntry, error) {
	return s.post(ctx, domain.SourcePayment, doc, userID)
}

// PostPurchaseOrder debits inventory and credits payables.
func (s *DocumentService) PostPurchaseOrder(ctx context.Context, doc domain.BusinessDocument, userID string) (*domain.JournalEntry, error) {
	return s.post(ctx, domain.SourcePurchaseOrder, doc, userID)
}

// PostSupplierPayment debits payables and credits cash or bank.
func (s *DocumentService) PostSupplierPayment(ctx context.Context, doc domain.BusinessDocument, userID string) (*domain.JournalEntry, error) {
	return s.post(ctx, domain.SourceSupplierPayment, doc, userID)
}

// PostExpense debits the expense account (GENERAL_EXPENSE unless overridden) and credits cash or bank.
func (s *DocumentService) PostExpense(ctx context.Context, doc domain.BusinessDocument, userID string) (*domain.JournalEntry, error) {
	return s.post(ctx, domain.SourceExpense, doc, userID)
}

// PostPartnerInvestment debits cash or bank and credits the partner's equity account,
// creating that account on first use. A zero investment records nothing.
func (s *DocumentService) PostPartnerInvestment(ctx context.Context, doc domain.BusinessDocument, userID string) (*domain.JournalEntry, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if doc.Amount.IsZero() {
		s.LogDebug(ctx, "Zero partner investment, no entry posted", slog.String("document_id", doc.ID))
		return nil, nil
	}
	return s.post(ctx, domain.SourcePartnerInvestment, doc, userID)
}

// AmendDocument reposts the document's entry with the lines derived from doc.
// Amending a partner investment down to zero only reverses it.
func (s *DocumentService) AmendDocument(ctx context.Context, docType domain.SourceDocumentType, doc domain.BusinessDocument, userID string) (*domain.JournalEntry, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	source := domain.SourceDocument{Type: docType, ID: doc.ID}
	if err := source.Validate(); err != nil {
		return nil, err
	}
	if doc.Amount.IsZero() && docType == domain.SourcePartnerInvestment {
		if _, err := s.reversal.ReverseEntry(ctx, source, userID); err != nil {
			return nil, err
		}
		return nil, nil
	}
	if !doc.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: %s amount must be positive", apperrors.ErrValidation, documentLabels[docType])
	}

	lines, err := s.linesFor(docType, doc)
	if err != nil {
		return nil, err
	}
	date := doc.Date
	description := describe(docType, doc)
	return s.reversal.RepostWithNewAmount(ctx, source, domain.RepostCommand{
		EntryDate:   &date,
		Description: &description,
		Lines:       lines,
	}, userID)
}

// DeleteDocument reverses the document's entry.
func (s *DocumentService) DeleteDocument(ctx context.Context, source domain.SourceDocument, userID string) (*domain.ReversalResult, error) {
	return s.reversal.ReverseEntry(ctx, source, userID)
}

// ResolveAccountRoles maps configured role codes to account ids. Every role in
// domain.AccountRoles must be bound to an existing account.
func ResolveAccountRoles(ctx context.Context, accounts portsrepo.AccountReader, codes map[domain.AccountRole]string) (domain.AccountRoleMap, error) {
	roles := make(domain.AccountRoleMap, len(codes))
	for role, code := range codes {
		account, err := accounts.FindAccountByCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("account role %s: code %s: %w", role, code, err)
		}
		roles[role] = account.AccountID
	}
	if missing := roles.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: account roles not configured: %v", apperrors.ErrValidation, missing)
	}
	return roles, nil
}
