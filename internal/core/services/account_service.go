package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/furniture_erp_ledger/internal/dto"
	"github.com/SscSPs/furniture_erp_ledger/internal/platform/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountService maintains the chart of accounts and account balances.
type AccountService struct {
	BaseService
	uow      portsrepo.UnitOfWork
	accounts portsrepo.AccountReader
}

// NewAccountService creates a new AccountService.
func NewAccountService(cfg LedgerConfig, uow portsrepo.UnitOfWork, accounts portsrepo.AccountReader) *AccountService {
	return &AccountService{
		BaseService: newBaseService(cfg),
		uow:         uow,
		accounts:    accounts,
	}
}

var (
	_ portssvc.AccountSvcFacade  = (*AccountService)(nil)
	_ portssvc.AccountBalanceSvc = (*AccountService)(nil)
)

func newAccount(code, name, description string, accountType domain.AccountType, normal domain.NormalBalance, opening decimal.Decimal, userID string, now time.Time) domain.Account {
	if normal == "" {
		normal = domain.DefaultNormalBalance(accountType)
	}
	opening = domain.RoundAmount(opening)
	return domain.Account{
		AccountID:      uuid.NewString(),
		Code:           strings.TrimSpace(code),
		Name:           strings.TrimSpace(name),
		Description:    description,
		AccountType:    accountType,
		NormalBalance:  normal,
		OpeningBalance: opening,
		CurrentBalance: opening,
		IsActive:       true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
}

// CreateAccount persists a new account. The opening balance becomes the current balance.
func (s *AccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	account := newAccount(req.Code, req.Name, req.Description, req.AccountType, req.NormalBalance, req.OpeningBalance, userID, s.now())
	if err := account.Validate(); err != nil {
		return nil, err
	}

	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		if req.ParentAccountID != nil && *req.ParentAccountID != "" {
			if _, err := tx.Accounts().FindAccountByID(ctx, *req.ParentAccountID); err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					return fmt.Errorf("%w: parent account %s does not exist", apperrors.ErrValidation, *req.ParentAccountID)
				}
				return err
			}
			account.ParentAccountID = *req.ParentAccountID
		}
		return tx.Accounts().SaveAccount(ctx, account)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create account", slog.String("code", account.Code))
		return nil, fmt.Errorf("failed to create account %s: %w", account.Code, err)
	}

	s.LogInfo(ctx, "Account created", slog.String("account_id", account.AccountID), slog.String("code", account.Code))
	return &account, nil
}

// lookupOrCreateWithinTx returns the account holding candidate's code, saving
// candidate when the code is free. created reports which of the two happened.
func lookupOrCreateWithinTx(ctx context.Context, tx portsrepo.LedgerTx, candidate domain.Account) (account domain.Account, created bool, err error) {
	existing, err := tx.Accounts().FindAccountByCode(ctx, candidate.Code)
	if err == nil {
		return *existing, false, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return domain.Account{}, false, err
	}
	if err := tx.Accounts().SaveAccount(ctx, candidate); err != nil {
		return domain.Account{}, false, err
	}
	return candidate, true, nil
}

func checkAccountType(found, requested domain.Account) error {
	if found.AccountType != requested.AccountType {
		return fmt.Errorf("%w: account %s exists with type %s, requested %s",
			apperrors.ErrConflict, found.Code, found.AccountType, requested.AccountType)
	}
	return nil
}

// LookupOrCreateAccount returns the account with the given code, creating it with a zero balance if absent.
// A concurrent creator of the same code is absorbed by re-reading after the unique conflict.
func (s *AccountService) LookupOrCreateAccount(ctx context.Context, req dto.LookupOrCreateAccountRequest, userID string) (*domain.Account, error) {
	candidate := newAccount(req.Code, req.Name, "", req.AccountType, req.NormalBalance, decimal.Zero, userID, s.now())
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	var result domain.Account
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		var err error
		result, _, err = lookupOrCreateWithinTx(ctx, tx, candidate)
		return err
	})
	if errors.Is(err, apperrors.ErrDuplicateAccount) {
		existing, readErr := s.accounts.FindAccountByCode(ctx, candidate.Code)
		if readErr != nil {
			return nil, fmt.Errorf("failed to re-read account %s after concurrent create: %w", candidate.Code, readErr)
		}
		result, err = *existing, nil
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to look up or create account", slog.String("code", candidate.Code))
		return nil, fmt.Errorf("failed to look up or create account %s: %w", candidate.Code, err)
	}

	if err := checkAccountType(result, candidate); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetAccountByID retrieves a specific account by its unique identifier.
func (s *AccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accounts.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get account", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

// GetAccountByCode retrieves an account by its chart-of-accounts code.
func (s *AccountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	return s.accounts.FindAccountByCode(ctx, code)
}

// ListAccounts retrieves a page of accounts ordered by code.
func (s *AccountService) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	accounts, err := s.accounts.ListAccounts(ctx, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

// UpdateAccountDetails changes the cosmetic fields of an account. Balances and type are never touched.
func (s *AccountService) UpdateAccountDetails(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	var updated domain.Account
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		locked, err := tx.Accounts().FindAccountsByIDsForUpdate(ctx, []string{accountID})
		if err != nil {
			return err
		}
		account, ok := locked[accountID]
		if !ok {
			return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return fmt.Errorf("%w: account name must not be empty", apperrors.ErrValidation)
			}
			account.Name = name
		}
		if req.Description != nil {
			account.Description = *req.Description
		}
		if req.ParentAccountID != nil {
			parent := *req.ParentAccountID
			if parent == accountID {
				return fmt.Errorf("%w: an account cannot be its own parent", apperrors.ErrValidation)
			}
			if parent != "" {
				if _, err := tx.Accounts().FindAccountByID(ctx, parent); err != nil {
					if errors.Is(err, apperrors.ErrNotFound) {
						return fmt.Errorf("%w: parent account %s does not exist", apperrors.ErrValidation, parent)
					}
					return err
				}
			}
			account.ParentAccountID = parent
		}
		account.LastUpdatedAt = s.now()
		account.LastUpdatedBy = userID

		if err := tx.Accounts().UpdateAccountDetails(ctx, account); err != nil {
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update account %s: %w", accountID, err)
	}
	return &updated, nil
}

// DeactivateAccount marks an account as inactive. Inactive accounts reject new postings.
func (s *AccountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	return s.setActive(ctx, accountID, false, userID)
}

// ActivateAccount marks an account as active again.
func (s *AccountService) ActivateAccount(ctx context.Context, accountID string, userID string) error {
	return s.setActive(ctx, accountID, true, userID)
}

func (s *AccountService) setActive(ctx context.Context, accountID string, active bool, userID string) error {
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return tx.Accounts().SetAccountActive(ctx, accountID, active, userID, s.now())
	})
	if err != nil {
		return fmt.Errorf("failed to set account %s active=%t: %w", accountID, active, err)
	}
	s.LogInfo(ctx, "Account activation changed", slog.String("account_id", accountID), slog.Bool("active", active))
	return nil
}

// AdjustBalance adds a signed delta to the current balance of an active account under a row lock.
func (s *AccountService) AdjustBalance(ctx context.Context, accountID string, signedDelta decimal.Decimal, userID string) (result *domain.AccountBalance, err error) {
	defer func(start time.Time) { metrics.ObserveOperation("adjust_balance", start, err) }(time.Now())

	delta := domain.RoundAmount(signedDelta)
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		locked, err := tx.Accounts().FindAccountsByIDsForUpdate(ctx, []string{accountID})
		if err != nil {
			return err
		}
		account, ok := locked[accountID]
		if !ok {
			return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
		}
		if !account.IsActive {
			return fmt.Errorf("%w: %s", apperrors.ErrAccountInactive, account.Code)
		}
		if err := tx.Accounts().UpdateAccountBalances(ctx, map[string]decimal.Decimal{accountID: delta}, userID, s.now()); err != nil {
			return err
		}
		result = &domain.AccountBalance{
			AccountID: account.AccountID,
			Code:      account.Code,
			Balance:   account.CurrentBalance.Add(delta),
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to adjust account balance", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to adjust balance of account %s: %w", accountID, err)
	}
	return result, nil
}
