package domain

import (
	"fmt"
	"sort"

	"github.com/SscSPs/furniture_erp_ledger/internal/apperrors"
)

// AccountRole names a posting purpose that is bound to one concrete account.
type AccountRole string

const (
	RoleCash               AccountRole = "CASH"
	RoleBank               AccountRole = "BANK"
	RoleAccountsReceivable AccountRole = "ACCOUNTS_RECEIVABLE"
	RoleAccountsPayable    AccountRole = "ACCOUNTS_PAYABLE"
	RoleSalesRevenue       AccountRole = "SALES_REVENUE"
	RoleInventory          AccountRole = "INVENTORY"
	RoleGeneralExpense     AccountRole = "GENERAL_EXPENSE"
)

// AccountRoles lists every role a deployment must bind.
var AccountRoles = []AccountRole{
	RoleCash,
	RoleBank,
	RoleAccountsReceivable,
	RoleAccountsPayable,
	RoleSalesRevenue,
	RoleInventory,
	RoleGeneralExpense,
}

// AccountRoleMap resolves roles to account ids. It is built once at startup.
type AccountRoleMap map[AccountRole]string

// AccountFor returns the account bound to role.
func (m AccountRoleMap) AccountFor(role AccountRole) (string, error) {
	id, ok := m[role]
	if !ok || id == "" {
		return "", fmt.Errorf("%w: no account bound to role %s", apperrors.ErrValidation, role)
	}
	return id, nil
}

// Missing returns the roles in AccountRoles that have no binding, sorted.
func (m AccountRoleMap) Missing() []AccountRole {
	var missing []AccountRole
	for _, r := range AccountRoles {
		if m[r] == "" {
			missing = append(missing, r)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}

// PaymentMethod selects the cash-side role for money movements.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "CASH"
	PaymentBank PaymentMethod = "BANK"
)

// Role returns the account role a payment method settles through.
// Anything other than CASH settles through the bank account.
func (p PaymentMethod) Role() AccountRole {
	if p == PaymentCash {
		return RoleCash
	}
	return RoleBank
}
