package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AgingKind says whether an aging report covers receivables or payables.
type AgingKind string

const (
	Receivable AgingKind = "RECEIVABLE"
	Payable    AgingKind = "PAYABLE"
)

// AgingBucket is a time-since-due classification.
type AgingBucket string

const (
	BucketCurrent AgingBucket = "Current"
	Bucket31To60  AgingBucket = "31-60 Days"
	Bucket61To90  AgingBucket = "61-90 Days"
	Bucket91To120 AgingBucket = "91-120 Days"
	BucketOver120 AgingBucket = "120+ Days"
)

// AgingBucketOrder lists buckets from youngest to oldest.
var AgingBucketOrder = []AgingBucket{BucketCurrent, Bucket31To60, Bucket61To90, Bucket91To120, BucketOver120}

// BucketFor classifies days outstanding. Upper bounds are inclusive.
func BucketFor(daysOutstanding int) AgingBucket {
	switch {
	case daysOutstanding <= 30:
		return BucketCurrent
	case daysOutstanding <= 60:
		return Bucket31To60
	case daysOutstanding <= 90:
		return Bucket61To90
	case daysOutstanding <= 120:
		return Bucket91To120
	default:
		return BucketOver120
	}
}

// AgingRecord is an open receivable or payable document supplied by a caller.
type AgingRecord struct {
	DocumentID     string
	DocumentNumber string
	PartyID        string
	PartyName      string
	DocumentDate   *time.Time
	DueDate        *time.Time
	TotalAmount    decimal.Decimal
	PaidAmount     decimal.Decimal
}

// Outstanding is the unpaid part of the record.
func (r AgingRecord) Outstanding() decimal.Decimal {
	return r.TotalAmount.Sub(r.PaidAmount)
}

// AgingBuckets holds the per-bucket sums of outstanding amounts.
type AgingBuckets struct {
	Current  decimal.Decimal `json:"current"`
	D31To60  decimal.Decimal `json:"d31_60"`
	D61To90  decimal.Decimal `json:"d61_90"`
	D91To120 decimal.Decimal `json:"d91_120"`
	Over120  decimal.Decimal `json:"over120"`
}

// NewAgingBuckets returns buckets with every sum at zero.
func NewAgingBuckets() AgingBuckets {
	return AgingBuckets{
		Current:  decimal.Zero,
		D31To60:  decimal.Zero,
		D61To90:  decimal.Zero,
		D91To120: decimal.Zero,
		Over120:  decimal.Zero,
	}
}

// Add returns the buckets with amount added to bucket b.
func (a AgingBuckets) Add(b AgingBucket, amount decimal.Decimal) AgingBuckets {
	switch b {
	case BucketCurrent:
		a.Current = a.Current.Add(amount)
	case Bucket31To60:
		a.D31To60 = a.D31To60.Add(amount)
	case Bucket61To90:
		a.D61To90 = a.D61To90.Add(amount)
	case Bucket91To120:
		a.D91To120 = a.D91To120.Add(amount)
	default:
		a.Over120 = a.Over120.Add(amount)
	}
	return a
}

// Merge sums two partial bucket sets.
func (a AgingBuckets) Merge(o AgingBuckets) AgingBuckets {
	return AgingBuckets{
		Current:  a.Current.Add(o.Current),
		D31To60:  a.D31To60.Add(o.D31To60),
		D61To90:  a.D61To90.Add(o.D61To90),
		D91To120: a.D91To120.Add(o.D91To120),
		Over120:  a.Over120.Add(o.Over120),
	}
}

// Total is the sum over every bucket.
func (a AgingBuckets) Total() decimal.Decimal {
	return a.Current.Add(a.D31To60).Add(a.D61To90).Add(a.D91To120).Add(a.Over120)
}

// AgingItem is one included record with its classification.
type AgingItem struct {
	DocumentID      string          `json:"documentID"`
	DocumentNumber  string          `json:"documentNumber"`
	PartyID         string          `json:"partyID"`
	PartyName       string          `json:"partyName"`
	DaysOutstanding int             `json:"daysOutstanding"`
	Bucket          AgingBucket     `json:"bucket"`
	Outstanding     decimal.Decimal `json:"outstanding"`
}

// AgingReport is the aggregated output consumed by aging exporters.
type AgingReport struct {
	Kind             AgingKind           `json:"kind"`
	AsOf             time.Time           `json:"asOf"`
	Buckets          AgingBuckets        `json:"buckets"`
	Counts           map[AgingBucket]int `json:"counts"`
	TotalOutstanding decimal.Decimal     `json:"totalOutstanding"`
	Items            []AgingItem         `json:"items"`
}

// GeneralLedgerRow is one posted line in the running-balance view.
type GeneralLedgerRow struct {
	Date           time.Time       `json:"date"`
	EntryID        string          `json:"entryID"`
	JournalNumber  int64           `json:"journalNumber"`
	LineNumber     int             `json:"lineNumber"`
	Reference      string          `json:"reference"`
	Description    string          `json:"description"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// GeneralLedger is the projected view of an account over a date range.
type GeneralLedger struct {
	Account        Account            `json:"account"`
	FromDate       time.Time          `json:"fromDate"`
	ToDate         time.Time          `json:"toDate"`
	OpeningBalance decimal.Decimal    `json:"openingBalance"`
	Rows           []GeneralLedgerRow `json:"rows"`
	ClosingBalance decimal.Decimal    `json:"closingBalance"`
}

// AccountDrift records a stored balance that disagrees with its posted lines.
type AccountDrift struct {
	AccountID       string          `json:"accountID"`
	Code            string          `json:"code"`
	StoredBalance   decimal.Decimal `json:"storedBalance"`
	ExpectedBalance decimal.Decimal `json:"expectedBalance"`
	Difference      decimal.Decimal `json:"difference"`
}

// EntryImbalance records a posted entry whose totals disagree with its lines.
type EntryImbalance struct {
	EntryID       string          `json:"entryID"`
	JournalNumber int64           `json:"journalNumber"`
	HeaderDebit   decimal.Decimal `json:"headerDebit"`
	HeaderCredit  decimal.Decimal `json:"headerCredit"`
	LineDebit     decimal.Decimal `json:"lineDebit"`
	LineCredit    decimal.Decimal `json:"lineCredit"`
}

// ConsistencyReport is the outcome of a reconciliation pass.
type ConsistencyReport struct {
	CheckedAt       time.Time        `json:"checkedAt"`
	AccountsChecked int              `json:"accountsChecked"`
	EntriesChecked  int              `json:"entriesChecked"`
	AccountDrifts   []AccountDrift   `json:"accountDrifts"`
	EntryImbalances []EntryImbalance `json:"entryImbalances"`
	GlobalDebit     decimal.Decimal  `json:"globalDebit"`
	GlobalCredit    decimal.Decimal  `json:"globalCredit"`
}

// Consistent reports whether the pass found nothing to review.
func (r ConsistencyReport) Consistent() bool {
	return len(r.AccountDrifts) == 0 && len(r.EntryImbalances) == 0
}
