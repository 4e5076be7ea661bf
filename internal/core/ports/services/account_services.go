package services

import (
	"context"

	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	"github.com/SscSPs/furniture_erp_ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountByCode retrieves an account by its chart-of-accounts code.
	GetAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// ListAccounts retrieves a page of accounts ordered by code.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount persists a new account during chart-of-accounts setup.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error)

	// LookupOrCreateAccount returns the account with the given code, creating it with a zero balance if absent.
	LookupOrCreateAccount(ctx context.Context, req dto.LookupOrCreateAccountRequest, userID string) (*domain.Account, error)

	// UpdateAccountDetails changes the cosmetic fields of an account.
	UpdateAccountDetails(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// DeactivateAccount marks an account as inactive. Inactive accounts reject new postings.
	DeactivateAccount(ctx context.Context, accountID string, userID string) error

	// ActivateAccount marks an account as active again.
	ActivateAccount(ctx context.Context, accountID string, userID string) error
}

// AccountBalanceSvc defines direct balance maintenance. It bypasses the
// journal and is not part of AccountSvcFacade; balances seen by API clients
// move only through postings and reversals.
type AccountBalanceSvc interface {
	// AdjustBalance adds a signed delta to the current balance under a row lock.
	AdjustBalance(ctx context.Context, accountID string, signedDelta decimal.Decimal, userID string) (*domain.AccountBalance, error)
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
}
