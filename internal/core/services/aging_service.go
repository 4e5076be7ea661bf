package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/services"
	"golang.org/x/sync/errgroup"
)

const hoursPerDay = 24

// AgingService buckets open receivables and payables by days outstanding.
// It is a pure reduction over caller-supplied records and touches no storage.
type AgingService struct {
	BaseService
}

// NewAgingService creates a new AgingService.
func NewAgingService(cfg LedgerConfig) *AgingService {
	return &AgingService{BaseService: newBaseService(cfg)}
}

var _ portssvc.AgingSvc = (*AgingService)(nil)

type agingPartial struct {
	buckets domain.AgingBuckets
	counts  map[domain.AgingBucket]int
	items   []domain.AgingItem
}

// daysOutstanding counts whole calendar days from the due date (or the
// document date when no due date is set) to asOf, never below zero.
func daysOutstanding(r domain.AgingRecord, asOf time.Time) (int, error) {
	ref := r.DueDate
	if ref == nil {
		ref = r.DocumentDate
	}
	if ref == nil {
		return 0, fmt.Errorf("%w: record %s has neither due date nor document date", apperrors.ErrValidation, r.DocumentID)
	}
	days := int(domain.DateOnly(asOf).Sub(domain.DateOnly(*ref)).Hours() / hoursPerDay)
	if days < 0 {
		days = 0
	}
	return days, nil
}

func (s *AgingService) reduce(ctx context.Context, records []domain.AgingRecord, asOf time.Time) (agingPartial, error) {
	p := agingPartial{buckets: domain.NewAgingBuckets(), counts: make(map[domain.AgingBucket]int)}
	for i, r := range records {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return p, err
			}
		}
		outstanding := r.Outstanding()
		if outstanding.LessThanOrEqual(s.cfg.Epsilon) {
			continue
		}
		days, err := daysOutstanding(r, asOf)
		if err != nil {
			return p, err
		}
		bucket := domain.BucketFor(days)
		p.buckets = p.buckets.Add(bucket, outstanding)
		p.counts[bucket]++
		p.items = append(p.items, domain.AgingItem{
			DocumentID:      r.DocumentID,
			DocumentNumber:  r.DocumentNumber,
			PartyID:         r.PartyID,
			PartyName:       r.PartyName,
			DaysOutstanding: days,
			Bucket:          bucket,
			Outstanding:     outstanding,
		})
	}
	return p, nil
}

// ComputeAging splits the records into shards reduced concurrently and merges
// the partial results. The report does not depend on record order.
func (s *AgingService) ComputeAging(ctx context.Context, kind domain.AgingKind, records []domain.AgingRecord, asOf time.Time) (*domain.AgingReport, error) {
	switch kind {
	case "":
		kind = domain.Receivable
	case domain.Receivable, domain.Payable:
	default:
		return nil, fmt.Errorf("%w: unknown aging kind '%s'", apperrors.ErrValidation, kind)
	}
	if asOf.IsZero() {
		return nil, fmt.Errorf("%w: as-of date is required", apperrors.ErrValidation)
	}

	shards := s.cfg.AgingWorkers
	if shards > len(records) {
		shards = len(records)
	}
	if shards < 1 {
		shards = 1
	}
	size := (len(records) + shards - 1) / shards

	partials := make([]agingPartial, shards)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < shards; i++ {
		lo := i * size
		hi := lo + size
		if hi > len(records) {
			hi = len(records)
		}
		if lo >= hi {
			partials[i] = agingPartial{buckets: domain.NewAgingBuckets()}
			continue
		}
		g.Go(func() error {
			p, err := s.reduce(gctx, records[lo:hi], asOf)
			partials[i] = p
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &domain.AgingReport{
		Kind:    kind,
		AsOf:    domain.DateOnly(asOf),
		Buckets: domain.NewAgingBuckets(),
		Counts:  make(map[domain.AgingBucket]int, len(domain.AgingBucketOrder)),
		Items:   []domain.AgingItem{},
	}
	for _, b := range domain.AgingBucketOrder {
		report.Counts[b] = 0
	}
	for _, p := range partials {
		report.Buckets = report.Buckets.Merge(p.buckets)
		for b, n := range p.counts {
			report.Counts[b] += n
		}
		report.Items = append(report.Items, p.items...)
	}
	report.TotalOutstanding = report.Buckets.Total()
	sort.Slice(report.Items, func(i, j int) bool {
		a, b := report.Items[i], report.Items[j]
		if a.DaysOutstanding != b.DaysOutstanding {
			return a.DaysOutstanding > b.DaysOutstanding
		}
		return a.DocumentID < b.DocumentID
	})

	s.LogDebug(ctx, "Aging computed",
		slog.String("kind", string(kind)),
		slog.Int("records", len(records)),
		slog.Int("included", len(report.Items)),
		slog.Int("shards", shards),
	)
	return report, nil
}
