package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/furniture_erp_ledger/internal/models"
	"github.com/SscSPs/furniture_erp_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type PgxAccountRepository struct {
	db querier
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepository
var _ portsrepo.AccountRepository = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, code, name, description, account_type, normal_balance, parent_account_id,
	is_active, created_at, created_by, last_updated_at, last_updated_by, opening_balance, current_balance`

func scanAccount(row pgx.Row) (domain.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.Code,
		&m.Name,
		&m.Description,
		&m.AccountType,
		&m.NormalBalance,
		&m.ParentAccountID,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
		&m.OpeningBalance,
		&m.CurrentBalance,
	)
	if err != nil {
		return domain.Account{}, err
	}
	return mapping.ToDomainAccount(m), nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := r.db.Exec(ctx, query,
		m.AccountID,
		m.Code,
		m.Name,
		m.Description,
		m.AccountType,
		m.NormalBalance,
		m.ParentAccountID,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.OpeningBalance,
		m.CurrentBalance,
	)
	if err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			if constraint == constraintAccountCode {
				return fmt.Errorf("%w: %s", apperrors.ErrDuplicateAccount, m.Code)
			}
			return fmt.Errorf("%w: account %s already exists", apperrors.ErrConflict, m.AccountID)
		}
		if _, ok := foreignKeyViolation(err); ok {
			return fmt.Errorf("%w: parent account %s", apperrors.ErrAccountNotFound, m.ParentAccountID.String)
		}
		return classifyError(fmt.Errorf("failed to save account %s: %w", m.AccountID, err))
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	acc, err := scanAccount(r.db.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
		}
		return nil, classifyError(fmt.Errorf("failed to find account by ID %s: %w", accountID, err))
	}
	return &acc, nil
}

// FindAccountByCode retrieves an account by its chart-of-accounts code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = $1;`
	acc, err := scanAccount(r.db.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: code %s", apperrors.ErrAccountNotFound, code)
		}
		return nil, classifyError(fmt.Errorf("failed to find account by code %s: %w", code, err))
	}
	return &acc, nil
}

func (r *PgxAccountRepository) queryAccounts(ctx context.Context, query string, args ...any) (map[string]domain.Account, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, classifyError(fmt.Errorf("failed to query accounts: %w", err))
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.Account)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accountsMap[acc.AccountID] = acc
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError(fmt.Errorf("error iterating account rows: %w", err))
	}
	return accountsMap, nil
}

// FindAccountsByIDs retrieves multiple accounts by their IDs.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1);`
	return r.queryAccounts(ctx, query, accountIDs)
}

// FindAccountsByIDsForUpdate locks the selected rows until the transaction ends.
// ORDER BY makes every writer acquire row locks in the same order, so two
// postings touching the same accounts cannot deadlock each other.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	ids := append([]string(nil), accountIDs...)
	sort.Strings(ids)
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1) ORDER BY account_id FOR UPDATE;`
	return r.queryAccounts(ctx, query, ids)
}

// ListAccounts retrieves a page of accounts ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY code LIMIT $1 OFFSET $2;`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, classifyError(fmt.Errorf("failed to list accounts: %w", err))
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError(fmt.Errorf("error iterating account rows: %w", err))
	}
	return accounts, nil
}

// UpdateAccountDetails updates name, description and parent only.
func (r *PgxAccountRepository) UpdateAccountDetails(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		UPDATE accounts
		SET name = $1, description = $2, parent_account_id = $3, last_updated_at = $4, last_updated_by = $5
		WHERE account_id = $6;
	`
	cmdTag, err := r.db.Exec(ctx, query, m.Name, m.Description, m.ParentAccountID, m.LastUpdatedAt, m.LastUpdatedBy, m.AccountID)
	if err != nil {
		if _, ok := foreignKeyViolation(err); ok {
			return fmt.Errorf("%w: parent account %s", apperrors.ErrAccountNotFound, m.ParentAccountID.String)
		}
		return classifyError(fmt.Errorf("failed to update account %s: %w", m.AccountID, err))
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, m.AccountID)
	}
	return nil
}

// SetAccountActive flips the active flag of an account.
func (r *PgxAccountRepository) SetAccountActive(ctx context.Context, accountID string, active bool, userID string, now time.Time) error {
	query := `UPDATE accounts SET is_active = $1, last_updated_at = $2, last_updated_by = $3 WHERE account_id = $4;`
	cmdTag, err := r.db.Exec(ctx, query, active, now, userID, accountID)
	if err != nil {
		return classifyError(fmt.Errorf("failed to set active flag on account %s: %w", accountID, err))
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
	}
	return nil
}

// UpdateAccountBalances applies every delta in one batch. The caller must
// already hold the row locks from FindAccountsByIDsForUpdate.
func (r *PgxAccountRepository) UpdateAccountBalances(ctx context.Context, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	if len(balanceChanges) == 0 {
		return nil
	}
	ids := make([]string, 0, len(balanceChanges))
	for id := range balanceChanges {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	query := `
		UPDATE accounts
		SET current_balance = current_balance + $1, last_updated_at = $2, last_updated_by = $3
		WHERE account_id = $4;
	`
	batch := &pgx.Batch{}
	for _, id := range ids {
		batch.Queue(query, balanceChanges[id], now, userID, id)
	}

	br := r.db.SendBatch(ctx, batch)
	defer br.Close()
	for _, id := range ids {
		cmdTag, err := br.Exec()
		if err != nil {
			return classifyError(fmt.Errorf("failed to update balance of account %s: %w", id, err))
		}
		if cmdTag.RowsAffected() == 0 {
			return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, id)
		}
	}
	return nil
}
