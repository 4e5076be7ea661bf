package handlers_test

import (
	"context"
	"time"

	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/furniture_erp_ledger/internal/dto"
	"github.com/stretchr/testify/mock"
)

// --- Mock Account Service ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) LookupOrCreateAccount(ctx context.Context, req dto.LookupOrCreateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) UpdateAccountDetails(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	return m.Called(ctx, accountID, userID).Error(0)
}

func (m *MockAccountService) ActivateAccount(ctx context.Context, accountID string, userID string) error {
	return m.Called(ctx, accountID, userID).Error(0)
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock Journal Service ---
type MockJournalService struct {
	mock.Mock
}

func (m *MockJournalService) GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) GetEntryBySource(ctx context.Context, source domain.SourceDocument) (*domain.JournalEntry, error) {
	args := m.Called(ctx, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalService) ListEntries(ctx context.Context, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListJournalEntriesResponse), args.Error(1)
}

func (m *MockJournalService) PostEntry(ctx context.Context, cmd domain.PostEntryCommand, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, cmd, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

var _ portssvc.JournalSvcFacade = (*MockJournalService)(nil)

// --- Mock Reversal Service ---
type MockReversalService struct {
	mock.Mock
}

func (m *MockReversalService) ReverseEntry(ctx context.Context, source domain.SourceDocument, userID string) (*domain.ReversalResult, error) {
	args := m.Called(ctx, source, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReversalResult), args.Error(1)
}

func (m *MockReversalService) RepostWithNewAmount(ctx context.Context, source domain.SourceDocument, cmd domain.RepostCommand, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, source, cmd, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

var _ portssvc.ReversalSvc = (*MockReversalService)(nil)

// --- Mock Document Service ---
type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) PostInvoice(ctx context.Context, doc domain.BusinessDocument, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, doc, userID)
	return entryOrNil(args)
}

func (m *MockDocumentService) PostPayment(ctx context.Context, doc domain.BusinessDocument, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, doc, userID)
	return entryOrNil(args)
}

func (m *MockDocumentService) PostPurchaseOrder(ctx context.Context, doc domain.BusinessDocument, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, doc, userID)
	return entryOrNil(args)
}

func (m *MockDocumentService) PostSupplierPayment(ctx context.Context, doc domain.BusinessDocument, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, doc, userID)
	return entryOrNil(args)
}

func (m *MockDocumentService) PostExpense(ctx context.Context, doc domain.BusinessDocument, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, doc, userID)
	return entryOrNil(args)
}

func (m *MockDocumentService) PostPartnerInvestment(ctx context.Context, doc domain.BusinessDocument, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, doc, userID)
	return entryOrNil(args)
}

func (m *MockDocumentService) AmendDocument(ctx context.Context, docType domain.SourceDocumentType, doc domain.BusinessDocument, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, docType, doc, userID)
	return entryOrNil(args)
}

func (m *MockDocumentService) DeleteDocument(ctx context.Context, source domain.SourceDocument, userID string) (*domain.ReversalResult, error) {
	args := m.Called(ctx, source, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReversalResult), args.Error(1)
}

func entryOrNil(args mock.Arguments) (*domain.JournalEntry, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

var _ portssvc.DocumentSvc = (*MockDocumentService)(nil)

// --- Mock Reporting Service ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) ComputeAging(ctx context.Context, kind domain.AgingKind, records []domain.AgingRecord, asOf time.Time) (*domain.AgingReport, error) {
	args := m.Called(ctx, kind, records, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AgingReport), args.Error(1)
}

func (m *MockReportingService) ProjectGeneralLedger(ctx context.Context, accountID string, from, to time.Time) (*domain.GeneralLedger, error) {
	args := m.Called(ctx, accountID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GeneralLedger), args.Error(1)
}

func (m *MockReportingService) CheckConsistency(ctx context.Context) (*domain.ConsistencyReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConsistencyReport), args.Error(1)
}

var _ portssvc.ReportingService = (*MockReportingService)(nil)
