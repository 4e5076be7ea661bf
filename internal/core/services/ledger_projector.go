package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/services"
)

// LedgerProjector builds the running-balance view of an account from posted lines.
type LedgerProjector struct {
	BaseService
	uow portsrepo.UnitOfWork
}

// NewLedgerProjector creates a new LedgerProjector.
func NewLedgerProjector(cfg LedgerConfig, uow portsrepo.UnitOfWork) *LedgerProjector {
	return &LedgerProjector{BaseService: newBaseService(cfg), uow: uow}
}

var _ portssvc.LedgerProjectorSvc = (*LedgerProjector)(nil)

// ProjectGeneralLedger reads the account, its pre-period totals and its period lines
// from one snapshot so the opening, rows and closing agree with each other.
func (p *LedgerProjector) ProjectGeneralLedger(ctx context.Context, accountID string, from, to time.Time) (*domain.GeneralLedger, error) {
	from, to = domain.DateOnly(from), domain.DateOnly(to)
	if from.After(to) {
		return nil, fmt.Errorf("%w: fromDate %s is after toDate %s", apperrors.ErrValidation,
			from.Format(time.DateOnly), to.Format(time.DateOnly))
	}

	var gl *domain.GeneralLedger
	err := p.uow.WithinSnapshot(ctx, func(ctx context.Context, tx portsrepo.LedgerReadTx) error {
		account, err := tx.Accounts().FindAccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		before, err := tx.Journals().SumAccountLinesBefore(ctx, accountID, from)
		if err != nil {
			return err
		}
		lines, err := tx.Journals().ListAccountLines(ctx, accountID, from, to)
		if err != nil {
			return err
		}
		sort.SliceStable(lines, func(i, j int) bool {
			a, b := lines[i], lines[j]
			if !a.EntryDate.Equal(b.EntryDate) {
				return a.EntryDate.Before(b.EntryDate)
			}
			if a.JournalNumber != b.JournalNumber {
				return a.JournalNumber < b.JournalNumber
			}
			return a.Line.LineNumber < b.Line.LineNumber
		})

		opening := account.OpeningBalance.Add(account.SignedEffect(before.Debit, before.Credit))
		running := opening
		rows := make([]domain.GeneralLedgerRow, 0, len(lines))
		for _, l := range lines {
			running = running.Add(account.SignedEffect(l.Line.DebitAmount, l.Line.CreditAmount))
			reference := l.Line.Reference
			if reference == "" {
				reference = l.Source.String()
			}
			description := l.Line.Description
			if description == "" {
				description = l.EntryDescription
			}
			rows = append(rows, domain.GeneralLedgerRow{
				Date:           l.EntryDate,
				EntryID:        l.EntryID,
				JournalNumber:  l.JournalNumber,
				LineNumber:     l.Line.LineNumber,
				Reference:      reference,
				Description:    description,
				Debit:          l.Line.DebitAmount,
				Credit:         l.Line.CreditAmount,
				RunningBalance: running,
			})
		}

		gl = &domain.GeneralLedger{
			Account:        *account,
			FromDate:       from,
			ToDate:         to,
			OpeningBalance: opening,
			Rows:           rows,
			ClosingBalance: running,
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to project general ledger for account %s: %w", accountID, err)
	}
	return gl, nil
}
