package services

import (
	"context"
	"time"

	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
)

// AgingSvc buckets open receivables or payables by days outstanding.
type AgingSvc interface {
	ComputeAging(ctx context.Context, kind domain.AgingKind, records []domain.AgingRecord, asOf time.Time) (*domain.AgingReport, error)
}

// LedgerProjectorSvc builds the running-balance view of an account.
type LedgerProjectorSvc interface {
	ProjectGeneralLedger(ctx context.Context, accountID string, from, to time.Time) (*domain.GeneralLedger, error)
}

// ReconciliationSvc verifies stored balances against posted lines.
type ReconciliationSvc interface {
	// CheckConsistency returns the report and apperrors.ErrConsistency when anything drifted.
	CheckConsistency(ctx context.Context) (*domain.ConsistencyReport, error)
}

// ReportingService combines the read-side report services
type ReportingService interface {
	AgingSvc
	LedgerProjectorSvc
	ReconciliationSvc
}
