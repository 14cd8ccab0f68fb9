package service

import (
	"github.com/shopspring/decimal"
	"github.com/splitbook/splitbook-backend/internal/domain"
	"github.com/splitbook/splitbook-backend/internal/websocket"
)

// TransactionService handles transaction-related business logic
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	journalRepo     domain.JournalRepository
	eventPublisher  websocket.EventPublisher
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo domain.TransactionRepository, journalRepo domain.JournalRepository) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		journalRepo:     journalRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *TransactionService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *TransactionService) publishEvent(journalID domain.JournalID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(journalID.String(), event)
	}
}

// CreateTransaction records a transaction on a journal on behalf of a
// collaborator. Creating the transaction may register new tags on the
// journal, so both are persisted in one unit of work.
func (s *TransactionService) CreateTransaction(userID domain.UserID, journalID domain.JournalID, in domain.NewTransactionInput) (*domain.Transaction, error) {
	journal, err := s.journalRepo.GetByID(journalID)
	if err != nil {
		return nil, err
	}
	if !journal.CanWrite(userID) {
		return nil, domain.NewJournalNotAccessibleError(userID)
	}
	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if in.Type != domain.TransactionTypeIncome && in.Type != domain.TransactionTypeExpense && in.Type != domain.TransactionTypeTransfer {
		return nil, domain.ErrInvalidTransactionType
	}
	if in.PaidBy == "" {
		in.PaidBy = userID
	}

	txn, err := domain.NewTransaction(journal, in)
	if err != nil {
		return nil, err
	}

	created, err := s.transactionRepo.CreateWithJournal(txn, journal)
	if err != nil {
		return nil, err
	}

	s.publishEvent(journal.ID, websocket.TransactionCreated(created))
	return created, nil
}

// GetTransactions retrieves a journal's transactions with optional filters
func (s *TransactionService) GetTransactions(userID domain.UserID, journalID domain.JournalID, filters *domain.TransactionFilters) ([]*domain.Transaction, error) {
	journal, err := s.journalRepo.GetByID(journalID)
	if err != nil {
		return nil, err
	}
	if !journal.HasCollaborator(userID) {
		return nil, domain.NewJournalNotAccessibleError(userID)
	}
	return s.transactionRepo.GetByJournal(journalID, filters)
}

// GetTransactionByID retrieves a single transaction, checking journal access
func (s *TransactionService) GetTransactionByID(userID domain.UserID, id domain.TransactionID) (*domain.Transaction, error) {
	txn, err := s.transactionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	journal, err := s.journalRepo.GetByID(txn.JournalID)
	if err != nil {
		return nil, err
	}
	if !journal.HasCollaborator(userID) {
		return nil, domain.NewJournalNotAccessibleError(userID)
	}
	return txn, nil
}

// UpdateTransaction merges the provided fields into the transaction. An empty
// update is a no-op and returns the transaction unchanged.
func (s *TransactionService) UpdateTransaction(userID domain.UserID, id domain.TransactionID, update domain.TransactionUpdate) (*domain.Transaction, error) {
	txn, err := s.transactionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	journal, err := s.journalRepo.GetByID(txn.JournalID)
	if err != nil {
		return nil, err
	}
	if !journal.CanWrite(userID) {
		return nil, domain.NewJournalNotAccessibleError(userID)
	}

	if !txn.Edit(update) {
		return txn, nil
	}

	updated, err := s.transactionRepo.Update(txn)
	if err != nil {
		return nil, err
	}

	s.publishEvent(journal.ID, websocket.TransactionUpdated(updated))
	return updated, nil
}

// ApproveTransaction approves a pending transaction. Only the journal owner
// reviews pending transactions.
func (s *TransactionService) ApproveTransaction(userID domain.UserID, id domain.TransactionID) (*domain.Transaction, error) {
	return s.reviewTransaction(userID, id, true)
}

// RejectTransaction rejects a pending transaction. Only the journal owner
// reviews pending transactions.
func (s *TransactionService) RejectTransaction(userID domain.UserID, id domain.TransactionID) (*domain.Transaction, error) {
	return s.reviewTransaction(userID, id, false)
}

func (s *TransactionService) reviewTransaction(userID domain.UserID, id domain.TransactionID, approve bool) (*domain.Transaction, error) {
	txn, err := s.transactionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	journal, err := s.journalRepo.GetByID(txn.JournalID)
	if err != nil {
		return nil, err
	}
	if journal.OwnerID != userID {
		return nil, domain.NewJournalNotAccessibleError(userID)
	}

	if approve {
		txn.Approve()
	} else {
		txn.Reject()
	}

	updated, err := s.transactionRepo.Update(txn)
	if err != nil {
		return nil, err
	}

	if approve {
		s.publishEvent(journal.ID, websocket.TransactionApproved(updated))
	} else {
		s.publishEvent(journal.ID, websocket.TransactionRejected(updated))
	}
	return updated, nil
}

// DeleteTransaction removes a transaction from its journal
func (s *TransactionService) DeleteTransaction(userID domain.UserID, id domain.TransactionID) error {
	txn, err := s.transactionRepo.GetByID(id)
	if err != nil {
		return err
	}
	journal, err := s.journalRepo.GetByID(txn.JournalID)
	if err != nil {
		return err
	}
	if !journal.CanWrite(userID) {
		return domain.NewJournalNotAccessibleError(userID)
	}

	if err := s.transactionRepo.Delete(id); err != nil {
		return err
	}

	s.publishEvent(journal.ID, websocket.TransactionDeleted(txn))
	return nil
}
