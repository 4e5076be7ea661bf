package services

import (
	"context"
	"fmt"

	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/furniture_erp_ledger/internal/dto"
)

// BootstrapUserID is recorded as creator of accounts made at startup.
const BootstrapUserID = "system"

type roleAccountTemplate struct {
	code        string
	name        string
	accountType domain.AccountType
}

// roleAccountTemplates is the default furniture-shop chart for each posting role.
var roleAccountTemplates = map[domain.AccountRole]roleAccountTemplate{
	domain.RoleCash:               {code: "1000", name: "Cash", accountType: domain.Asset},
	domain.RoleBank:               {code: "1010", name: "Bank", accountType: domain.Asset},
	domain.RoleAccountsReceivable: {code: "1100", name: "Accounts Receivable", accountType: domain.Asset},
	domain.RoleInventory:          {code: "1200", name: "Inventory", accountType: domain.Asset},
	domain.RoleAccountsPayable:    {code: "2000", name: "Accounts Payable", accountType: domain.Liability},
	domain.RoleSalesRevenue:       {code: "4000", name: "Sales Revenue", accountType: domain.Revenue},
	domain.RoleGeneralExpense:     {code: "5000", name: "General Expense", accountType: domain.Expense},
}

// BootstrapRoleAccounts makes sure every posting role is backed by an account.
// Roles without a configured code get the default code. Missing accounts are
// created with a zero balance; existing ones are reused as long as their type
// matches. It returns the complete role to code mapping.
func BootstrapRoleAccounts(ctx context.Context, accounts portssvc.AccountWriterSvc, codes map[domain.AccountRole]string) (map[domain.AccountRole]string, error) {
	resolved := make(map[domain.AccountRole]string, len(domain.AccountRoles))
	for _, role := range domain.AccountRoles {
		tmpl, ok := roleAccountTemplates[role]
		if !ok {
			return nil, fmt.Errorf("no default account for role %s", role)
		}
		code := codes[role]
		if code == "" {
			code = tmpl.code
		}
		_, err := accounts.LookupOrCreateAccount(ctx, dto.LookupOrCreateAccountRequest{
			Code:        code,
			Name:        tmpl.name,
			AccountType: tmpl.accountType,
		}, BootstrapUserID)
		if err != nil {
			return nil, fmt.Errorf("bootstrap account for role %s (code %s): %w", role, code, err)
		}
		resolved[role] = code
	}
	return resolved, nil
}
