package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/furniture_erp_ledger/internal/platform/metrics"
	"github.com/shopspring/decimal"
)

const reconciliationPageSize = 500

// ReconciliationService recomputes balances from posted lines and reports drift.
// It never corrects anything.
type ReconciliationService struct {
	BaseService
	uow portsrepo.UnitOfWork
}

// NewReconciliationService creates a new ReconciliationService.
func NewReconciliationService(cfg LedgerConfig, uow portsrepo.UnitOfWork) *ReconciliationService {
	return &ReconciliationService{BaseService: newBaseService(cfg), uow: uow}
}

var _ portssvc.ReconciliationSvc = (*ReconciliationService)(nil)

// CheckConsistency returns the report and apperrors.ErrConsistency when anything drifted.
func (s *ReconciliationService) CheckConsistency(ctx context.Context) (*domain.ConsistencyReport, error) {
	report := &domain.ConsistencyReport{
		CheckedAt:       s.now(),
		AccountDrifts:   []domain.AccountDrift{},
		EntryImbalances: []domain.EntryImbalance{},
		GlobalDebit:     decimal.Zero,
		GlobalCredit:    decimal.Zero,
	}
	eps := s.cfg.Epsilon

	err := s.uow.WithinSnapshot(ctx, func(ctx context.Context, tx portsrepo.LedgerReadTx) error {
		byAccount, err := tx.Journals().SumLinesByAccount(ctx)
		if err != nil {
			return err
		}
		for offset := 0; ; offset += reconciliationPageSize {
			accounts, err := tx.Accounts().ListAccounts(ctx, reconciliationPageSize, offset)
			if err != nil {
				return err
			}
			for _, acc := range accounts {
				report.AccountsChecked++
				totals := byAccount[acc.AccountID]
				expected := acc.OpeningBalance.Add(acc.SignedEffect(totals.Debit, totals.Credit))
				if !domain.WithinEpsilon(acc.CurrentBalance, expected, eps) {
					report.AccountDrifts = append(report.AccountDrifts, domain.AccountDrift{
						AccountID:       acc.AccountID,
						Code:            acc.Code,
						StoredBalance:   acc.CurrentBalance,
						ExpectedBalance: expected,
						Difference:      acc.CurrentBalance.Sub(expected),
					})
				}
			}
			if len(accounts) < reconciliationPageSize {
				break
			}
		}

		byEntry, err := tx.Journals().SumLinesByEntry(ctx)
		if err != nil {
			return err
		}
		entries, err := tx.Journals().ListPostedEntries(ctx)
		if err != nil {
			return err
		}
		for _, e := range entries {
			report.EntriesChecked++
			lines := byEntry[e.EntryID]
			report.GlobalDebit = report.GlobalDebit.Add(lines.Debit)
			report.GlobalCredit = report.GlobalCredit.Add(lines.Credit)
			if !lines.IsBalanced(eps) ||
				!domain.WithinEpsilon(e.TotalDebit, lines.Debit, eps) ||
				!domain.WithinEpsilon(e.TotalCredit, lines.Credit, eps) {
				report.EntryImbalances = append(report.EntryImbalances, domain.EntryImbalance{
					EntryID:       e.EntryID,
					JournalNumber: e.JournalNumber,
					HeaderDebit:   e.TotalDebit,
					HeaderCredit:  e.TotalCredit,
					LineDebit:     lines.Debit,
					LineCredit:    lines.Credit,
				})
			}
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Reconciliation pass failed")
		return nil, fmt.Errorf("failed to check ledger consistency: %w", err)
	}

	sort.Slice(report.AccountDrifts, func(i, j int) bool { return report.AccountDrifts[i].Code < report.AccountDrifts[j].Code })
	sort.Slice(report.EntryImbalances, func(i, j int) bool {
		return report.EntryImbalances[i].JournalNumber < report.EntryImbalances[j].JournalNumber
	})

	findings := len(report.AccountDrifts) + len(report.EntryImbalances)
	metrics.SetConsistencyFindings(findings)
	if findings > 0 {
		s.GetLogger(ctx).Warn("Ledger drift detected",
			slog.Int("account_drifts", len(report.AccountDrifts)),
			slog.Int("entry_imbalances", len(report.EntryImbalances)),
		)
		return report, fmt.Errorf("%w: %d account drift(s), %d entry imbalance(s)",
			apperrors.ErrConsistency, len(report.AccountDrifts), len(report.EntryImbalances))
	}
	return report, nil
}
