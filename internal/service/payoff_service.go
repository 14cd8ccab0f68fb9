package service

import (
	"github.com/shopspring/decimal"
	"github.com/splitbook/splitbook-backend/internal/domain"
	"github.com/splitbook/splitbook-backend/internal/websocket"
)

// PayoffService maintains the two-sided link between a payoff transaction and
// the transactions it settles. All payoff link mutation goes through here so
// the back- and forward-references never desync.
type PayoffService struct {
	transactionRepo domain.TransactionRepository
	eventPublisher  websocket.EventPublisher
}

// NewPayoffService creates a new PayoffService
func NewPayoffService(transactionRepo domain.TransactionRepository) *PayoffService {
	return &PayoffService{transactionRepo: transactionRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *PayoffService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *PayoffService) publishEvent(journalID domain.JournalID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(journalID.String(), event)
	}
}

// MarkAsPayoffTransaction links the payoff transaction to every transaction in
// toBePaidOff. The payoff amount must cover the sum of the transactions it has
// already settled plus the new batch; if it does not, nothing is mutated.
func (s *PayoffService) MarkAsPayoffTransaction(payoff *domain.Transaction, alreadyPaidOff, toBePaidOff []*domain.Transaction) error {
	alreadyPaidOffAmount := sumAmounts(alreadyPaidOff)
	totalToBePaidOffAmount := sumAmounts(toBePaidOff)

	if payoff.Amount.LessThan(alreadyPaidOffAmount.Add(totalToBePaidOffAmount)) {
		return domain.ErrInsufficientPaidOff
	}

	for _, txn := range toBePaidOff {
		domain.LinkPayoff(payoff, txn)
	}
	return nil
}

// ClearPayoffStatus removes the link between a payoff transaction and one
// transaction it settled. Both sides are cleared; the caller is responsible
// for passing a correct pair.
func (s *PayoffService) ClearPayoffStatus(toClear, payoff *domain.Transaction) {
	domain.UnlinkPayoff(payoff, toClear)
}

// SettleTransactions loads the payoff transaction and the batch it should
// settle, applies the sufficiency check against everything the payoff has
// settled so far, and persists both sides of the link atomically.
func (s *PayoffService) SettleTransactions(payoffID domain.TransactionID, toBePaidOffIDs []domain.TransactionID) (*domain.Transaction, error) {
	payoff, err := s.transactionRepo.GetByID(payoffID)
	if err != nil {
		return nil, err
	}

	alreadyPaidOff, err := s.transactionRepo.GetByIDs(payoff.RelatedTransactions)
	if err != nil {
		return nil, err
	}

	toBePaidOff, err := s.transactionRepo.GetByIDs(toBePaidOffIDs)
	if err != nil {
		return nil, err
	}
	for _, txn := range toBePaidOff {
		if txn.JournalID != payoff.JournalID {
			return nil, domain.ErrCrossJournalPayoff
		}
	}

	if err := s.MarkAsPayoffTransaction(payoff, alreadyPaidOff, toBePaidOff); err != nil {
		return nil, err
	}

	if err := s.transactionRepo.SavePayoffLinks(payoff, toBePaidOff); err != nil {
		return nil, err
	}

	s.publishEvent(payoff.JournalID, websocket.PayoffLinked(payoff))
	return payoff, nil
}

// UnsettleTransaction clears one settled transaction from its payoff and
// persists both sides
func (s *PayoffService) UnsettleTransaction(payoffID, settledID domain.TransactionID) error {
	payoff, err := s.transactionRepo.GetByID(payoffID)
	if err != nil {
		return err
	}
	settled, err := s.transactionRepo.GetByID(settledID)
	if err != nil {
		return err
	}

	s.ClearPayoffStatus(settled, payoff)

	if err := s.transactionRepo.SavePayoffLinks(payoff, []*domain.Transaction{settled}); err != nil {
		return err
	}

	s.publishEvent(payoff.JournalID, websocket.PayoffUnlinked(payoff))
	return nil
}

// sumAmounts totals the amounts of a transaction batch
func sumAmounts(txns []*domain.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range txns {
		total = total.Add(txn.Amount)
	}
	return total
}
