package service

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/splitbook/splitbook-backend/internal/domain"
	"github.com/splitbook/splitbook-backend/internal/testutil"
)

func journalForServiceTest(t *testing.T) *domain.Journal {
	t.Helper()
	journal, err := domain.NewJournal(domain.NewUserID(), "owner@example.com", "Household", "EUR")
	if err != nil {
		t.Fatalf("expected journal, got error %v", err)
	}
	return journal
}

func transactionOnJournal(t *testing.T, journal *domain.Journal, amount int64) *domain.Transaction {
	t.Helper()
	txn, err := domain.NewTransaction(journal, domain.NewTransactionInput{
		Title:     "Expense",
		Amount:    decimal.NewFromInt(amount),
		Date:      time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
		AccountID: domain.NewAccountID(),
		Type:      domain.TransactionTypeExpense,
		PaidBy:    journal.OwnerID,
	})
	if err != nil {
		t.Fatalf("expected transaction, got error %v", err)
	}
	return txn
}

func TestPayoffService_MarkAsPayoffTransaction_Success(t *testing.T) {
	journal := journalForServiceTest(t)
	service := NewPayoffService(testutil.NewMockTransactionRepository())

	payoff := transactionOnJournal(t, journal, 100)
	already := transactionOnJournal(t, journal, 50)
	toSettle := []*domain.Transaction{
		transactionOnJournal(t, journal, 30),
		transactionOnJournal(t, journal, 20),
	}

	err := service.MarkAsPayoffTransaction(payoff, []*domain.Transaction{already}, toSettle)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for _, txn := range toSettle {
		if txn.PaidOffBy == nil || *txn.PaidOffBy != payoff.ID {
			t.Errorf("transaction %s must back-reference the payoff", txn.ID)
		}
	}
	if len(payoff.RelatedTransactions) != 2 {
		t.Errorf("payoff related count = %d, want 2", len(payoff.RelatedTransactions))
	}
}

func TestPayoffService_MarkAsPayoffTransaction_InsufficientAmount(t *testing.T) {
	journal := journalForServiceTest(t)
	service := NewPayoffService(testutil.NewMockTransactionRepository())

	payoff := transactionOnJournal(t, journal, 100)
	already := transactionOnJournal(t, journal, 50)
	toSettle := []*domain.Transaction{
		transactionOnJournal(t, journal, 30),
		transactionOnJournal(t, journal, 21),
	}

	err := service.MarkAsPayoffTransaction(payoff, []*domain.Transaction{already}, toSettle)
	if !errors.Is(err, domain.ErrInsufficientPaidOff) {
		t.Fatalf("expected ErrInsufficientPaidOff, got %v", err)
	}

	// All-or-nothing: no partial mutation on failure
	for _, txn := range toSettle {
		if txn.PaidOffBy != nil {
			t.Error("no back-reference may be set on failure")
		}
	}
	if len(payoff.RelatedTransactions) != 0 {
		t.Error("no forward-reference may be added on failure")
	}
}

func TestPayoffService_MarkAsPayoffTransaction_ExactCoverSucceeds(t *testing.T) {
	journal := journalForServiceTest(t)
	service := NewPayoffService(testutil.NewMockTransactionRepository())

	payoff := transactionOnJournal(t, journal, 100)
	already := transactionOnJournal(t, journal, 50)
	toSettle := []*domain.Transaction{transactionOnJournal(t, journal, 50)}

	if err := service.MarkAsPayoffTransaction(payoff, []*domain.Transaction{already}, toSettle); err != nil {
		t.Fatalf("exactly covering amount must succeed, got %v", err)
	}
	if toSettle[0].PaidOffBy == nil || *toSettle[0].PaidOffBy != payoff.ID {
		t.Error("settled transaction must back-reference the payoff")
	}
}

func TestPayoffService_ClearPayoffStatus(t *testing.T) {
	journal := journalForServiceTest(t)
	service := NewPayoffService(testutil.NewMockTransactionRepository())

	payoff := transactionOnJournal(t, journal, 100)
	settled := transactionOnJournal(t, journal, 40)
	if err := service.MarkAsPayoffTransaction(payoff, nil, []*domain.Transaction{settled}); err != nil {
		t.Fatal(err)
	}

	service.ClearPayoffStatus(settled, payoff)

	if settled.PaidOffBy != nil {
		t.Error("back-reference must be cleared")
	}
	if len(payoff.RelatedTransactions) != 0 {
		t.Error("forward-reference must be removed")
	}
}

func TestPayoffService_SettleTransactions_PersistsLinks(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	journal := journalForServiceTest(t)

	payoff := transactionOnJournal(t, journal, 100)
	txn1 := transactionOnJournal(t, journal, 30)
	txn2 := transactionOnJournal(t, journal, 20)
	transactionRepo.AddTransaction(payoff)
	transactionRepo.AddTransaction(txn1)
	transactionRepo.AddTransaction(txn2)

	service := NewPayoffService(transactionRepo)

	result, err := service.SettleTransactions(payoff.ID, []domain.TransactionID{txn1.ID, txn2.ID})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(result.RelatedTransactions) != 2 {
		t.Errorf("related count = %d, want 2", len(result.RelatedTransactions))
	}
	if transactionRepo.SavePayoffCalls != 1 {
		t.Errorf("SavePayoffLinks calls = %d, want 1", transactionRepo.SavePayoffCalls)
	}

	stored, err := transactionRepo.GetByID(txn1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.PaidOffBy == nil || *stored.PaidOffBy != payoff.ID {
		t.Error("persisted transaction must back-reference the payoff")
	}
}

func TestPayoffService_SettleTransactions_AccountsForPriorSettlements(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	journal := journalForServiceTest(t)

	payoff := transactionOnJournal(t, journal, 100)
	first := transactionOnJournal(t, journal, 60)
	second := transactionOnJournal(t, journal, 50)
	transactionRepo.AddTransaction(payoff)
	transactionRepo.AddTransaction(first)
	transactionRepo.AddTransaction(second)

	service := NewPayoffService(transactionRepo)

	if _, err := service.SettleTransactions(payoff.ID, []domain.TransactionID{first.ID}); err != nil {
		t.Fatalf("first settlement must succeed, got %v", err)
	}

	// 60 already settled, 50 more would exceed the payoff amount of 100
	_, err := service.SettleTransactions(payoff.ID, []domain.TransactionID{second.ID})
	if !errors.Is(err, domain.ErrInsufficientPaidOff) {
		t.Fatalf("expected ErrInsufficientPaidOff, got %v", err)
	}
}

func TestPayoffService_SettleTransactions_RejectsCrossJournalBatch(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	journal := journalForServiceTest(t)
	other := journalForServiceTest(t)

	payoff := transactionOnJournal(t, journal, 100)
	foreign := transactionOnJournal(t, other, 10)
	transactionRepo.AddTransaction(payoff)
	transactionRepo.AddTransaction(foreign)

	service := NewPayoffService(transactionRepo)

	_, err := service.SettleTransactions(payoff.ID, []domain.TransactionID{foreign.ID})
	if !errors.Is(err, domain.ErrCrossJournalPayoff) {
		t.Fatalf("expected ErrCrossJournalPayoff, got %v", err)
	}
	if transactionRepo.SavePayoffCalls != 0 {
		t.Error("nothing may be persisted on failure")
	}
}

func TestPayoffService_UnsettleTransaction(t *testing.T) {
	transactionRepo := testutil.NewMockTransactionRepository()
	journal := journalForServiceTest(t)

	payoff := transactionOnJournal(t, journal, 100)
	settled := transactionOnJournal(t, journal, 40)
	transactionRepo.AddTransaction(payoff)
	transactionRepo.AddTransaction(settled)

	service := NewPayoffService(transactionRepo)

	if _, err := service.SettleTransactions(payoff.ID, []domain.TransactionID{settled.ID}); err != nil {
		t.Fatal(err)
	}
	if err := service.UnsettleTransaction(payoff.ID, settled.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	stored, err := transactionRepo.GetByID(settled.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.PaidOffBy != nil {
		t.Error("back-reference must be cleared after unsettle")
	}
}
