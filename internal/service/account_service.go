package service

import (
	"time"

	"github.com/splitbook/splitbook-backend/internal/domain"
)

// AccountService handles account-related business logic
type AccountService struct {
	accountRepo domain.AccountRepository
}

// NewAccountService creates a new AccountService
func NewAccountService(accountRepo domain.AccountRepository) *AccountService {
	return &AccountService{accountRepo: accountRepo}
}

// CreateCashAccount creates a cash account for the user
func (s *AccountService) CreateCashAccount(ownerID domain.UserID, name string) (*domain.Account, error) {
	account, err := domain.NewCashAccount(name, ownerID)
	if err != nil {
		return nil, err
	}
	return s.accountRepo.Create(account)
}

// CreateDebitAccount creates a debit account for the user
func (s *AccountService) CreateDebitAccount(ownerID domain.UserID, name, bankName, last4 string) (*domain.Account, error) {
	account, err := domain.NewDebitAccount(name, bankName, last4, ownerID)
	if err != nil {
		return nil, err
	}
	return s.accountRepo.Create(account)
}

// CreateCreditAccount creates a credit account for the user
func (s *AccountService) CreateCreditAccount(in domain.CreditAccountInput) (*domain.Account, error) {
	account, err := domain.NewCreditAccount(in)
	if err != nil {
		return nil, err
	}
	return s.accountRepo.Create(account)
}

// CreateLoanAccount creates a loan account for the user
func (s *AccountService) CreateLoanAccount(in domain.LoanAccountInput) (*domain.Account, error) {
	account, err := domain.NewLoanAccount(in)
	if err != nil {
		return nil, err
	}
	return s.accountRepo.Create(account)
}

// GetAccount retrieves an account owned by the user
func (s *AccountService) GetAccount(ownerID domain.UserID, id domain.AccountID) (*domain.Account, error) {
	account, err := s.accountRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if account.OwnerID != ownerID {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}

// GetAccounts retrieves the user's accounts
func (s *AccountService) GetAccounts(ownerID domain.UserID, includeInactive bool) ([]*domain.Account, error) {
	return s.accountRepo.GetAllByOwner(ownerID, includeInactive)
}

// SetActive activates or deactivates an account
func (s *AccountService) SetActive(ownerID domain.UserID, id domain.AccountID, active bool) (*domain.Account, error) {
	account, err := s.GetAccount(ownerID, id)
	if err != nil {
		return nil, err
	}

	if active {
		account.Activate()
	} else {
		account.Deactivate()
	}
	return s.accountRepo.Update(account)
}

// GetBillingCycle resolves the account's statement window at the reference
// date. Cash and debit accounts have none.
func (s *AccountService) GetBillingCycle(ownerID domain.UserID, id domain.AccountID, ref time.Time) (*domain.BillingCycle, error) {
	account, err := s.GetAccount(ownerID, id)
	if err != nil {
		return nil, err
	}

	cycle := account.BillingCycle(ref)
	if cycle == nil {
		return nil, domain.ErrNoBillingCycle
	}
	return cycle, nil
}
