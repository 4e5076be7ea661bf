package accounting

import (
	"fmt"
	"sort"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BalanceChanges sums the signed effect of every line per account.
// Each line moves its account by debit − credit (DEBIT-normal) or credit − debit (CREDIT-normal).
// Accounts whose net change is zero are still present in the result.
func BalanceChanges(lines []domain.JournalEntryLine, accounts map[string]domain.Account) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal, len(accounts))
	for _, line := range lines {
		account, ok := accounts[line.AccountID]
		if !ok {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrAccountNotFound, line.AccountID)
		}
		effect := account.SignedEffect(line.DebitAmount, line.CreditAmount)
		changes[line.AccountID] = changes[line.AccountID].Add(effect)
	}
	return changes, nil
}

// InverseChanges negates every delta. Applying the result undoes the original changes.
func InverseChanges(changes map[string]decimal.Decimal) map[string]decimal.Decimal {
	inverse := make(map[string]decimal.Decimal, len(changes))
	for id, delta := range changes {
		inverse[id] = delta.Neg()
	}
	return inverse
}

// SortedAccountIDs returns the distinct account ids referenced by lines in ascending order.
// Locks must be taken in this order to keep concurrent postings deadlock free.
func SortedAccountIDs[L any](lines []L, accountID func(L) string) []string {
	seen := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		id := accountID(l)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
