package services

import (
	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/services"
)

// reportingService combines the read-side report services behind one facade.
type reportingService struct {
	*AgingService
	*LedgerProjector
	*ReconciliationService
}

var _ portssvc.ReportingService = reportingService{}

// NewServiceContainer creates a new service container with all services initialized.
func NewServiceContainer(cfg LedgerConfig, repos portsrepo.RepositoryProvider, roles domain.AccountRoleMap) *portssvc.ServiceContainer {
	accountSvc := NewAccountService(cfg, repos.UnitOfWork, repos.Accounts)
	journalSvc := NewJournalService(cfg, repos.UnitOfWork, repos.Journals)
	reversalSvc := NewReversalService(cfg, repos.UnitOfWork, journalSvc)

	return &portssvc.ServiceContainer{
		Account:  accountSvc,
		Journal:  journalSvc,
		Reversal: reversalSvc,
		Reporting: reportingService{
			AgingService:          NewAgingService(cfg),
			LedgerProjector:       NewLedgerProjector(cfg, repos.UnitOfWork),
			ReconciliationService: NewReconciliationService(cfg, repos.UnitOfWork),
		},
		Document: NewDocumentService(cfg, roles, journalSvc, reversalSvc),
	}
}
