package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByCode retrieves an account by its unique chart-of-accounts code.
	FindAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs. Unknown IDs are absent from the map.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves a page of accounts ordered by code.
	ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error)
}

// AccountWriter defines write operations for account data.
// Implementations are only handed out inside a unit of work.
type AccountWriter interface {
	// SaveAccount persists a new account. A duplicate code yields apperrors.ErrDuplicateAccount.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccountDetails updates the cosmetic fields (name, description, parent).
	UpdateAccountDetails(ctx context.Context, account domain.Account) error

	// SetAccountActive flips the active flag of an account.
	SetAccountActive(ctx context.Context, accountID string, active bool, userID string, now time.Time) error

	// FindAccountsByIDsForUpdate selects accounts and locks them until the unit of work ends.
	// Locks are acquired in ascending id order.
	FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error)

	// UpdateAccountBalances adds each signed delta to the current balance of its account.
	UpdateAccountBalances(ctx context.Context, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error
}

// AccountRepository combines the account reader and writer.
type AccountRepository interface {
	AccountReader
	AccountWriter
}
