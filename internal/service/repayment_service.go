package service

import (
	"time"

	"github.com/splitbook/splitbook-backend/internal/domain"
	"github.com/splitbook/splitbook-backend/internal/websocket"
)

// RepaymentService computes statement repayments from a batch of transactions
// and attaches them to the journal
type RepaymentService struct {
	journalRepo     domain.JournalRepository
	accountRepo     domain.AccountRepository
	transactionRepo domain.TransactionRepository
	eventPublisher  websocket.EventPublisher
}

// NewRepaymentService creates a new RepaymentService
func NewRepaymentService(journalRepo domain.JournalRepository, accountRepo domain.AccountRepository, transactionRepo domain.TransactionRepository) *RepaymentService {
	return &RepaymentService{
		journalRepo:     journalRepo,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *RepaymentService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *RepaymentService) publishEvent(journalID domain.JournalID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(journalID.String(), event)
	}
}

// CreateRepaymentInput carries the fields of a repayment computation
type CreateRepaymentInput struct {
	Date            time.Time
	Transactions    []*domain.Transaction
	StatementPeriod domain.Period
}

// CreateRepayment sums the batch into a repayment amount in the journal's
// currency and attaches the repayment to the journal. The batch must be
// non-empty and homogeneous on account. The stored flag is false when the
// journal already holds a repayment for the same statement; the journal is
// untouched in that case. The caller persists the mutated journal.
func (s *RepaymentService) CreateRepayment(journal *domain.Journal, in CreateRepaymentInput) (*domain.Repayment, bool, error) {
	if len(in.Transactions) == 0 {
		return nil, false, domain.ErrEmptyRepayment
	}

	accountID := in.Transactions[0].AccountID
	for _, txn := range in.Transactions[1:] {
		if txn.AccountID != accountID {
			return nil, false, domain.ErrMixedAccountRepayment
		}
	}

	repayment := domain.Repayment{
		ID:              domain.NewRepaymentID(),
		JournalID:       journal.ID,
		AccountID:       accountID,
		StatementPeriod: in.StatementPeriod,
		Date:            in.Date,
		Amount:          domain.NewMoney(sumAmounts(in.Transactions), journal.Currency),
	}

	stored := journal.AddRepayment(repayment)
	return &repayment, stored, nil
}

// CreateStatementRepayment resolves the account's billing cycle at the
// reference date, gathers the journal's transactions on that account within
// the statement window, and records the repayment on the journal.
func (s *RepaymentService) CreateStatementRepayment(journalID domain.JournalID, accountID domain.AccountID, ref time.Time) (*domain.Repayment, error) {
	journal, err := s.journalRepo.GetByID(journalID)
	if err != nil {
		return nil, err
	}
	if !journal.HasAccount(accountID) {
		return nil, domain.ErrAccountNotLinked
	}

	account, err := s.accountRepo.GetByID(accountID)
	if err != nil {
		return nil, err
	}
	cycle := account.BillingCycle(ref)
	if cycle == nil {
		return nil, domain.ErrNoBillingCycle
	}

	transactions, err := s.transactionRepo.GetByAccountInPeriod(journalID, accountID, cycle.Period())
	if err != nil {
		return nil, err
	}

	repayment, stored, err := s.CreateRepayment(journal, CreateRepaymentInput{
		Date:            ref,
		Transactions:    transactions,
		StatementPeriod: cycle.Period(),
	})
	if err != nil {
		return nil, err
	}
	if !stored {
		return repayment, nil
	}

	if err := s.journalRepo.Save(journal); err != nil {
		return nil, err
	}

	s.publishEvent(journal.ID, websocket.RepaymentCreated(repayment))
	return repayment, nil
}
