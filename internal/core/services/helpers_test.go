package services_test

import (
	"context"
	"errors"
	"time"

	"github.com/SscSPs/furniture_erp_ledger/internal/adapters/database/memory"
	"github.com/SscSPs/furniture_erp_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/furniture_erp_ledger/internal/core/ports/services"
	"github.com/SscSPs/furniture_erp_ledger/internal/core/services"
	"github.com/SscSPs/furniture_erp_ledger/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

const testUserID = "user-1"

var errInjected = errors.New("injected storage failure")

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func debit(accountID, amount string) domain.PostingLine {
	return domain.PostingLine{AccountID: accountID, Debit: d(amount)}
}

func credit(accountID, amount string) domain.PostingLine {
	return domain.PostingLine{AccountID: accountID, Credit: d(amount)}
}

func source(t domain.SourceDocumentType, id string) domain.SourceDocument {
	return domain.SourceDocument{Type: t, ID: id}
}

// ledgerSuite wires every service against a fresh in-memory store with a
// seeded chart of accounts.
type ledgerSuite struct {
	suite.Suite
	ctx      context.Context
	store    *memory.Store
	cfg      services.LedgerConfig
	svc      *portssvc.ServiceContainer
	accounts map[string]*domain.Account // by code

	// balances reaches the direct balance maintenance the container does not expose.
	balances portssvc.AccountBalanceSvc
}

var seedChart = []dto.CreateAccountRequest{
	{Code: "1000", Name: "Cash", AccountType: domain.Asset},
	{Code: "1010", Name: "Bank", AccountType: domain.Asset},
	{Code: "1100", Name: "Accounts Receivable", AccountType: domain.Asset},
	{Code: "1200", Name: "Inventory", AccountType: domain.Asset},
	{Code: "2000", Name: "Accounts Payable", AccountType: domain.Liability},
	{Code: "4000", Name: "Sales Revenue", AccountType: domain.Revenue},
	{Code: "5000", Name: "General Expense", AccountType: domain.Expense},
	{Code: "5100", Name: "Rent", AccountType: domain.Expense},
}

var seedRoles = map[domain.AccountRole]string{
	domain.RoleCash:               "1000",
	domain.RoleBank:               "1010",
	domain.RoleAccountsReceivable: "1100",
	domain.RoleInventory:          "1200",
	domain.RoleAccountsPayable:    "2000",
	domain.RoleSalesRevenue:       "4000",
	domain.RoleGeneralExpense:     "5000",
}

func (s *ledgerSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memory.NewStore()
	s.cfg = services.LedgerConfig{Epsilon: domain.DefaultEpsilon, AgingWorkers: 4}

	bootstrap := services.NewAccountService(s.cfg, s.store, s.store.AccountReader())
	s.accounts = make(map[string]*domain.Account, len(seedChart))
	for _, req := range seedChart {
		acc, err := bootstrap.CreateAccount(s.ctx, req, testUserID)
		s.Require().NoError(err)
		s.accounts[req.Code] = acc
	}
	s.useUnitOfWork(s.store)
}

// useUnitOfWork rewires the services to write through uow while reading the suite's store.
func (s *ledgerSuite) useUnitOfWork(uow portsrepo.UnitOfWork) {
	repos := s.store.Provider()
	repos.UnitOfWork = uow

	roles, err := services.ResolveAccountRoles(s.ctx, repos.Accounts, seedRoles)
	s.Require().NoError(err)
	s.svc = services.NewServiceContainer(s.cfg, repos, roles)
	s.balances = services.NewAccountService(s.cfg, uow, repos.Accounts)
}

func (s *ledgerSuite) id(code string) string {
	acc, ok := s.accounts[code]
	s.Require().True(ok, "unknown seeded account %s", code)
	return acc.AccountID
}

func (s *ledgerSuite) balance(code string) decimal.Decimal {
	acc, err := s.store.AccountReader().FindAccountByID(s.ctx, s.id(code))
	s.Require().NoError(err)
	return acc.CurrentBalance
}

func (s *ledgerSuite) assertBalance(code, want string) {
	got := s.balance(code)
	s.True(got.Equal(d(want)), "account %s: want %s, got %s", code, want, got)
}

func (s *ledgerSuite) post(src domain.SourceDocument, date string, lines ...domain.PostingLine) *domain.JournalEntry {
	entry, err := s.svc.Journal.PostEntry(s.ctx, domain.PostEntryCommand{
		Source:      src,
		EntryDate:   day(date),
		Description: "test " + src.String(),
		Lines:       lines,
	}, testUserID)
	s.Require().NoError(err)
	return entry
}

// faultyUoW wraps a store and injects failures into the repositories it hands out.
type faultyUoW struct {
	*memory.Store
	failSaveEntry     bool
	failDeleteEntry   bool
	failBalanceUpdate bool
}

type faultyTx struct {
	portsrepo.LedgerTx
	u *faultyUoW
}

type faultyJournals struct {
	portsrepo.JournalRepository
	u *faultyUoW
}

type faultyAccounts struct {
	portsrepo.AccountRepository
	u *faultyUoW
}

func (u *faultyUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.LedgerTx) error) error {
	return u.Store.WithinTx(ctx, func(ctx context.Context, tx portsrepo.LedgerTx) error {
		return fn(ctx, faultyTx{LedgerTx: tx, u: u})
	})
}

func (t faultyTx) Journals() portsrepo.JournalRepository {
	return faultyJournals{JournalRepository: t.LedgerTx.Journals(), u: t.u}
}

func (t faultyTx) Accounts() portsrepo.AccountRepository {
	return faultyAccounts{AccountRepository: t.LedgerTx.Accounts(), u: t.u}
}

func (j faultyJournals) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalEntryLine) error {
	if j.u.failSaveEntry {
		return errInjected
	}
	return j.JournalRepository.SaveEntry(ctx, entry, lines)
}

func (j faultyJournals) DeleteEntry(ctx context.Context, entryID string) error {
	if j.u.failDeleteEntry {
		return errInjected
	}
	return j.JournalRepository.DeleteEntry(ctx, entryID)
}

func (a faultyAccounts) UpdateAccountBalances(ctx context.Context, changes map[string]decimal.Decimal, userID string, now time.Time) error {
	if a.u.failBalanceUpdate {
		return errInjected
	}
	return a.AccountRepository.UpdateAccountBalances(ctx, changes, userID, now)
}
