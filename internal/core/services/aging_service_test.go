package services_test

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	"github.com/SscSPs/furniture_erp_ledger/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(t time.Time) *time.Time { return &t }

func record(id string, due *time.Time, total, paid string) domain.AgingRecord {
	return domain.AgingRecord{DocumentID: id, DueDate: due, TotalAmount: d(total), PaidAmount: d(paid)}
}

func TestComputeAging_DueDateBucket(t *testing.T) {
	svc := services.NewAgingService(services.LedgerConfig{AgingWorkers: 2})

	report, err := svc.ComputeAging(context.Background(), domain.Receivable, []domain.AgingRecord{
		record("INV-1", ptr(day("2024-01-01")), "1000", "250"),
	}, day("2024-03-15"))
	require.NoError(t, err)

	require.Len(t, report.Items, 1)
	assert.Equal(t, 74, report.Items[0].DaysOutstanding)
	assert.Equal(t, domain.Bucket61To90, report.Items[0].Bucket)
	assert.True(t, report.Buckets.D61To90.Equal(d("750")))
	assert.True(t, report.TotalOutstanding.Equal(d("750")))
	assert.Equal(t, 1, report.Counts[domain.Bucket61To90])
	assert.Equal(t, 0, report.Counts[domain.BucketCurrent])
}

func TestComputeAging_BucketBoundaries(t *testing.T) {
	svc := services.NewAgingService(services.LedgerConfig{})
	asOf := day("2024-06-30")

	cases := []struct {
		days int
		want domain.AgingBucket
	}{
		{0, domain.BucketCurrent},
		{30, domain.BucketCurrent},
		{31, domain.Bucket31To60},
		{60, domain.Bucket31To60},
		{61, domain.Bucket61To90},
		{90, domain.Bucket61To90},
		{91, domain.Bucket91To120},
		{120, domain.Bucket91To120},
		{121, domain.BucketOver120},
		{400, domain.BucketOver120},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%d days", tc.days), func(t *testing.T) {
			due := asOf.AddDate(0, 0, -tc.days)
			report, err := svc.ComputeAging(context.Background(), domain.Payable,
				[]domain.AgingRecord{record("B", &due, "10", "0")}, asOf)
			require.NoError(t, err)
			require.Len(t, report.Items, 1)
			assert.Equal(t, tc.days, report.Items[0].DaysOutstanding)
			assert.Equal(t, tc.want, report.Items[0].Bucket)
		})
	}
}

func TestComputeAging_FutureDueDateIsCurrent(t *testing.T) {
	svc := services.NewAgingService(services.LedgerConfig{})
	report, err := svc.ComputeAging(context.Background(), domain.Receivable,
		[]domain.AgingRecord{record("F", ptr(day("2024-12-31")), "10", "0")}, day("2024-06-30"))
	require.NoError(t, err)
	assert.Equal(t, 0, report.Items[0].DaysOutstanding)
	assert.Equal(t, domain.BucketCurrent, report.Items[0].Bucket)
}

func TestComputeAging_FallsBackToDocumentDate(t *testing.T) {
	svc := services.NewAgingService(services.LedgerConfig{})
	rec := record("NO-DUE", nil, "100", "0")
	rec.DocumentDate = ptr(day("2024-01-01"))

	report, err := svc.ComputeAging(context.Background(), domain.Receivable, []domain.AgingRecord{rec}, day("2024-02-15"))
	require.NoError(t, err)
	assert.Equal(t, 45, report.Items[0].DaysOutstanding)
	assert.Equal(t, domain.Bucket31To60, report.Items[0].Bucket)
}

func TestComputeAging_RecordWithoutDatesIsInvalid(t *testing.T) {
	svc := services.NewAgingService(services.LedgerConfig{AgingWorkers: 3})
	_, err := svc.ComputeAging(context.Background(), domain.Receivable, []domain.AgingRecord{
		record("OK", ptr(day("2024-01-01")), "100", "0"),
		record("UNDATED", nil, "100", "0"),
	}, day("2024-02-15"))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.ErrorContains(t, err, "UNDATED")
}

func TestComputeAging_SettledRecordsAreExcluded(t *testing.T) {
	svc := services.NewAgingService(services.LedgerConfig{Epsilon: domain.DefaultEpsilon})
	due := ptr(day("2024-01-01"))

	report, err := svc.ComputeAging(context.Background(), domain.Receivable, []domain.AgingRecord{
		record("PAID", due, "100", "100"),
		record("OVERPAID", due, "100", "120"),
		record("DUST", due, "100", "99.995"),
		// A settled record does not need dates.
		record("PAID-UNDATED", nil, "50", "50"),
		record("OPEN", due, "100", "99.98"),
	}, day("2024-01-10"))
	require.NoError(t, err)

	require.Len(t, report.Items, 1)
	assert.Equal(t, "OPEN", report.Items[0].DocumentID)
	assert.True(t, report.TotalOutstanding.Equal(d("0.02")))
}

func TestComputeAging_ParallelMatchesSequential(t *testing.T) {
	asOf := day("2024-06-30")
	rng := rand.New(rand.NewSource(42))
	records := make([]domain.AgingRecord, 0, 1000)
	for i := 0; i < 1000; i++ {
		due := asOf.AddDate(0, 0, -rng.Intn(200))
		total := d(fmt.Sprintf("%d.%02d", rng.Intn(5000), rng.Intn(100)))
		paid := total.Mul(d(fmt.Sprintf("0.%d", rng.Intn(10))))
		records = append(records, domain.AgingRecord{
			DocumentID:  fmt.Sprintf("DOC-%04d", i),
			DueDate:     &due,
			TotalAmount: total,
			PaidAmount:  paid,
		})
	}

	sequential, err := services.NewAgingService(services.LedgerConfig{AgingWorkers: 1}).
		ComputeAging(context.Background(), domain.Receivable, records, asOf)
	require.NoError(t, err)

	shuffled := append([]domain.AgingRecord(nil), records...)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	parallel, err := services.NewAgingService(services.LedgerConfig{AgingWorkers: 8}).
		ComputeAging(context.Background(), domain.Receivable, shuffled, asOf)
	require.NoError(t, err)

	assert.True(t, sequential.TotalOutstanding.Equal(parallel.TotalOutstanding))
	assert.True(t, sequential.Buckets.Current.Equal(parallel.Buckets.Current))
	assert.True(t, sequential.Buckets.D31To60.Equal(parallel.Buckets.D31To60))
	assert.True(t, sequential.Buckets.D61To90.Equal(parallel.Buckets.D61To90))
	assert.True(t, sequential.Buckets.D91To120.Equal(parallel.Buckets.D91To120))
	assert.True(t, sequential.Buckets.Over120.Equal(parallel.Buckets.Over120))
	assert.Equal(t, sequential.Counts, parallel.Counts)
	assert.Equal(t, sequential.Items, parallel.Items)
	assert.True(t, sequential.Buckets.Total().Equal(sequential.TotalOutstanding))
}

func TestComputeAging_ItemsSortedByAgeThenDocument(t *testing.T) {
	svc := services.NewAgingService(services.LedgerConfig{AgingWorkers: 2})
	asOf := day("2024-03-01")
	report, err := svc.ComputeAging(context.Background(), domain.Receivable, []domain.AgingRecord{
		record("B", ptr(day("2024-02-01")), "10", "0"),
		record("C", ptr(day("2023-12-01")), "10", "0"),
		record("A", ptr(day("2024-02-01")), "10", "0"),
	}, asOf)
	require.NoError(t, err)

	ids := make([]string, len(report.Items))
	for i, it := range report.Items {
		ids[i] = it.DocumentID
	}
	assert.Equal(t, []string{"C", "A", "B"}, ids)
}

func TestComputeAging_InputErrors(t *testing.T) {
	svc := services.NewAgingService(services.LedgerConfig{})

	_, err := svc.ComputeAging(context.Background(), "SIDEWAYS", nil, day("2024-01-01"))
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = svc.ComputeAging(context.Background(), domain.Receivable, nil, time.Time{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	report, err := svc.ComputeAging(context.Background(), "", nil, day("2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, domain.Receivable, report.Kind)
	assert.True(t, report.TotalOutstanding.IsZero())
	assert.Empty(t, report.Items)
}
