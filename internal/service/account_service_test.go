package service

import (
	"errors"
	"testing"
	"time"

	"github.com/splitbook/splitbook-backend/internal/domain"
	"github.com/splitbook/splitbook-backend/internal/testutil"
)

func TestAccountService_CreateAndGet(t *testing.T) {
	accountRepo := testutil.NewMockAccountRepository()
	service := NewAccountService(accountRepo)
	owner := domain.NewUserID()

	account, err := service.CreateDebitAccount(owner, "Checking", "First National", "1234")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got, err := service.GetAccount(owner, account.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.DisplayName() != "Checking (**** 1234)" {
		t.Errorf("display name = %q", got.DisplayName())
	}

	// Another user's lookup must not see the account
	if _, err := service.GetAccount(domain.NewUserID(), account.ID); err != domain.ErrAccountNotFound {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccountService_CreateValidationPropagates(t *testing.T) {
	service := NewAccountService(testutil.NewMockAccountRepository())

	if _, err := service.CreateCashAccount(domain.NewUserID(), "  "); err != domain.ErrAccountNameRequired {
		t.Errorf("expected ErrAccountNameRequired, got %v", err)
	}
	if _, err := service.CreateDebitAccount(domain.NewUserID(), "Checking", "Bank", "12"); err != domain.ErrInvalidLast4 {
		t.Errorf("expected ErrInvalidLast4, got %v", err)
	}
}

func TestAccountService_GetAccountsFiltersInactive(t *testing.T) {
	accountRepo := testutil.NewMockAccountRepository()
	service := NewAccountService(accountRepo)
	owner := domain.NewUserID()

	active, err := service.CreateCashAccount(owner, "Wallet")
	if err != nil {
		t.Fatal(err)
	}
	dormant, err := service.CreateCashAccount(owner, "Old Wallet")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := service.SetActive(owner, dormant.ID, false); err != nil {
		t.Fatal(err)
	}

	accounts, err := service.GetAccounts(owner, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(accounts) != 1 || accounts[0].ID != active.ID {
		t.Errorf("active-only accounts = %d, want just %s", len(accounts), active.Name)
	}

	all, err := service.GetAccounts(owner, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Errorf("all accounts = %d, want 2", len(all))
	}
}

func TestAccountService_GetBillingCycle(t *testing.T) {
	accountRepo := testutil.NewMockAccountRepository()
	service := NewAccountService(accountRepo)
	owner := domain.NewUserID()

	credit, err := service.CreateCreditAccount(domain.CreditAccountInput{
		Name:            "Everyday Card",
		BankName:        "First National",
		Last4:           "4242",
		StatementDay:    20,
		GracePeriodDays: 10,
		Expiration:      time.Date(2027, time.June, 1, 0, 0, 0, 0, time.UTC),
		OwnerID:         owner,
	})
	if err != nil {
		t.Fatal(err)
	}

	cycle, err := service.GetBillingCycle(owner, credit.ID, time.Date(2025, time.June, 25, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	wantDue := time.Date(2025, time.June, 30, 23, 59, 59, 0, time.UTC)
	if !cycle.Due.Equal(wantDue) {
		t.Errorf("due = %v, want %v", cycle.Due, wantDue)
	}

	cash, err := service.CreateCashAccount(owner, "Wallet")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := service.GetBillingCycle(owner, cash.ID, time.Now()); !errors.Is(err, domain.ErrNoBillingCycle) {
		t.Fatalf("expected ErrNoBillingCycle, got %v", err)
	}
}
