package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type accountRepository struct {
	st *state
}

var _ portsrepo.AccountRepository = (*accountRepository)(nil)

func (r *accountRepository) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	acc, ok := r.st.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
	}
	return &acc, nil
}

func (r *accountRepository) FindAccountByCode(_ context.Context, code string) (*domain.Account, error) {
	id, ok := r.st.codes[code]
	if !ok {
		return nil, fmt.Errorf("%w: code %s", apperrors.ErrAccountNotFound, code)
	}
	acc := r.st.accounts[id]
	return &acc, nil
}

func (r *accountRepository) FindAccountsByIDs(_ context.Context, accountIDs []string) (map[string]domain.Account, error) {
	found := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if acc, ok := r.st.accounts[id]; ok {
			found[id] = acc
		}
	}
	return found, nil
}

func (r *accountRepository) ListAccounts(_ context.Context, limit int, offset int) ([]domain.Account, error) {
	all := make([]domain.Account, 0, len(r.st.accounts))
	for _, acc := range r.st.accounts {
		all = append(all, acc)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })

	if offset >= len(all) {
		return []domain.Account{}, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

func (r *accountRepository) SaveAccount(_ context.Context, account domain.Account) error {
	if _, exists := r.st.codes[account.Code]; exists {
		return fmt.Errorf("%w: %s", apperrors.ErrDuplicateAccount, account.Code)
	}
	if _, exists := r.st.accounts[account.AccountID]; exists {
		return fmt.Errorf("%w: account id %s", apperrors.ErrConflict, account.AccountID)
	}
	r.st.accounts[account.AccountID] = account
	r.st.codes[account.Code] = account.AccountID
	return nil
}

func (r *accountRepository) UpdateAccountDetails(_ context.Context, account domain.Account) error {
	existing, ok := r.st.accounts[account.AccountID]
	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, account.AccountID)
	}
	existing.Name = account.Name
	existing.Description = account.Description
	existing.ParentAccountID = account.ParentAccountID
	existing.LastUpdatedAt = account.LastUpdatedAt
	existing.LastUpdatedBy = account.LastUpdatedBy
	r.st.accounts[account.AccountID] = existing
	return nil
}

func (r *accountRepository) SetAccountActive(_ context.Context, accountID string, active bool, userID string, now time.Time) error {
	acc, ok := r.st.accounts[accountID]
	if !ok {
		return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
	}
	acc.IsActive = active
	acc.LastUpdatedAt = now
	acc.LastUpdatedBy = userID
	r.st.accounts[accountID] = acc
	return nil
}

// FindAccountsByIDsForUpdate needs no extra locking: the store's writer lock
// is held for the whole transaction.
func (r *accountRepository) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	return r.FindAccountsByIDs(ctx, accountIDs)
}

func (r *accountRepository) UpdateAccountBalances(_ context.Context, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	for id := range balanceChanges {
		if _, ok := r.st.accounts[id]; !ok {
			return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, id)
		}
	}
	for id, delta := range balanceChanges {
		acc := r.st.accounts[id]
		acc.CurrentBalance = acc.CurrentBalance.Add(delta)
		acc.LastUpdatedAt = now
		acc.LastUpdatedBy = userID
		r.st.accounts[id] = acc
	}
	return nil
}

// lockedAccountReader reads committed state under the store's read lock.
type lockedAccountReader struct {
	s *Store
}

func (l *lockedAccountReader) repo() *accountRepository {
	return &accountRepository{st: l.s.st}
}

func (l *lockedAccountReader) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	return l.repo().FindAccountByID(ctx, accountID)
}

func (l *lockedAccountReader) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	return l.repo().FindAccountByCode(ctx, code)
}

func (l *lockedAccountReader) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	return l.repo().FindAccountsByIDs(ctx, accountIDs)
}

func (l *lockedAccountReader) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	l.s.mu.RLock()
	defer l.s.mu.RUnlock()
	return l.repo().ListAccounts(ctx, limit, offset)
}
