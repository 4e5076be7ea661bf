package services

import (
	"context"

	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	"github.com/SscSPs/furniture_erp_ledger/internal/dto"
)

// JournalReaderSvc defines read operations for journal data
type JournalReaderSvc interface {
	// GetEntryByID retrieves an entry together with its lines.
	GetEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// GetEntryBySource retrieves the entry recorded for a source document, with its lines.
	GetEntryBySource(ctx context.Context, source domain.SourceDocument) (*domain.JournalEntry, error)

	// ListEntries retrieves a page of entry headers, newest first.
	ListEntries(ctx context.Context, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error)
}

// JournalWriterSvc defines write operations for journal data
type JournalWriterSvc interface {
	// PostEntry validates and posts a balanced entry, updating every affected account balance atomically.
	PostEntry(ctx context.Context, cmd domain.PostEntryCommand, userID string) (*domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal-related service interfaces
// This is a facade for clients that need access to all operations
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
}

// ReversalSvc undoes or replaces the entry of a source document.
type ReversalSvc interface {
	// ReverseEntry applies the inverse of every line of the source's entries and deletes them.
	ReverseEntry(ctx context.Context, source domain.SourceDocument, userID string) (*domain.ReversalResult, error)

	// RepostWithNewAmount reverses the source's entry and posts the replacement in one transaction.
	RepostWithNewAmount(ctx context.Context, source domain.SourceDocument, cmd domain.RepostCommand, userID string) (*domain.JournalEntry, error)
}
