package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func transactionInputForTest(journal *Journal) NewTransactionInput {
	return NewTransactionInput{
		Title:     "Groceries",
		Amount:    decimal.NewFromInt(42),
		Date:      time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC),
		AccountID: NewAccountID(),
		Type:      TransactionTypeExpense,
		PaidBy:    journal.OwnerID,
		Tags:      []string{"food"},
	}
}

func TestNewTransactionAutoApprovedByDefault(t *testing.T) {
	journal := journalForTest(t)

	txn, err := NewTransaction(journal, transactionInputForTest(journal))
	if err != nil {
		t.Fatal(err)
	}
	if txn.Status != TransactionStatusAutoApproved {
		t.Errorf("status = %s, want auto_approved", txn.Status)
	}
	if txn.JournalID != journal.ID {
		t.Errorf("journalID = %s, want %s", txn.JournalID, journal.ID)
	}
}

func TestNewTransactionPendingWhenApprovalRequired(t *testing.T) {
	journal := journalForTest(t)
	journal.SetApprovalRequirement(true)

	txn, err := NewTransaction(journal, transactionInputForTest(journal))
	if err != nil {
		t.Fatal(err)
	}
	if txn.Status != TransactionStatusPending {
		t.Errorf("status = %s, want pending", txn.Status)
	}
}

func TestNewTransactionRejectsArchivedJournal(t *testing.T) {
	journal := journalForTest(t)
	journal.Archive()

	_, err := NewTransaction(journal, transactionInputForTest(journal))
	if !errors.Is(err, ErrJournalArchived) {
		t.Errorf("err = %v, want ErrJournalArchived", err)
	}
}

func TestNewTransactionRejectsNonCollaboratorPayer(t *testing.T) {
	journal := journalForTest(t)
	stranger := NewUserID()

	in := transactionInputForTest(journal)
	in.PaidBy = stranger

	_, err := NewTransaction(journal, in)
	if !errors.Is(err, ErrJournalNotAccessible) {
		t.Fatalf("err = %v, want ErrJournalNotAccessible", err)
	}

	var domainErr *Error
	if !errors.As(err, &domainErr) {
		t.Fatal("error must be a domain error")
	}
	if domainErr.Code != "journalNotAccessible" {
		t.Errorf("code = %q, want journalNotAccessible", domainErr.Code)
	}
}

func TestNewTransactionRegistersUnknownTags(t *testing.T) {
	journal := journalForTest(t)
	journal.AddTags([]string{"food"})

	in := transactionInputForTest(journal)
	in.Tags = []string{"food", "holiday trip"}

	txn, err := NewTransaction(journal, in)
	if err != nil {
		t.Fatal(err)
	}

	if !journal.HasTag("holiday trip") {
		t.Error("unknown tag must be registered onto the journal")
	}
	if got := len(journal.Tags()); got != 2 {
		t.Errorf("journal tag count = %d, want 2", got)
	}
	if len(txn.Tags) != 2 || txn.Tags[0] != "food" || txn.Tags[1] != "holidaytrip" {
		t.Errorf("transaction tags = %v, want derived ids [food holidaytrip]", txn.Tags)
	}
}

func TestEditMergesOnlyProvidedFields(t *testing.T) {
	journal := journalForTest(t)
	txn, err := NewTransaction(journal, transactionInputForTest(journal))
	if err != nil {
		t.Fatal(err)
	}

	originalAmount := txn.Amount
	newTitle := "Weekly Groceries"

	if changed := txn.Edit(TransactionUpdate{Title: &newTitle}); !changed {
		t.Fatal("edit with a field must report a change")
	}
	if txn.Title != newTitle {
		t.Errorf("title = %q, want %q", txn.Title, newTitle)
	}
	if !txn.Amount.Equal(originalAmount) {
		t.Error("amount must be untouched when not provided")
	}
}

func TestEditEmptyUpdateIsNoOp(t *testing.T) {
	journal := journalForTest(t)
	txn, err := NewTransaction(journal, transactionInputForTest(journal))
	if err != nil {
		t.Fatal(err)
	}

	before := txn.UpdatedAt
	if changed := txn.Edit(TransactionUpdate{}); changed {
		t.Error("empty edit must report no change")
	}
	if !txn.UpdatedAt.Equal(before) {
		t.Error("empty edit must not touch the transaction")
	}
}

func TestApproveRejectOnlyFromPending(t *testing.T) {
	journal := journalForTest(t)
	journal.SetApprovalRequirement(true)

	txn, err := NewTransaction(journal, transactionInputForTest(journal))
	if err != nil {
		t.Fatal(err)
	}

	txn.Approve()
	if txn.Status != TransactionStatusApproved {
		t.Fatalf("status = %s, want approved", txn.Status)
	}

	// Further transitions are silent no-ops
	txn.Reject()
	if txn.Status != TransactionStatusApproved {
		t.Errorf("reject after approve changed status to %s", txn.Status)
	}
	txn.Approve()
	if txn.Status != TransactionStatusApproved {
		t.Errorf("double approve changed status to %s", txn.Status)
	}

	// Auto-approved transactions never transition
	relaxed := journalForTest(t)
	auto, err := NewTransaction(relaxed, transactionInputForTest(relaxed))
	if err != nil {
		t.Fatal(err)
	}
	auto.Reject()
	if auto.Status == TransactionStatusRejected {
		t.Error("auto-approved transaction must not be rejectable")
	}
}

func TestPayoffLinkMaintainsBothSides(t *testing.T) {
	journal := journalForTest(t)
	payoff, _ := NewTransaction(journal, transactionInputForTest(journal))
	settled, _ := NewTransaction(journal, transactionInputForTest(journal))

	LinkPayoff(payoff, settled)

	if settled.PaidOffBy == nil || *settled.PaidOffBy != payoff.ID {
		t.Error("settled transaction must back-reference the payoff")
	}
	if len(payoff.RelatedTransactions) != 1 || payoff.RelatedTransactions[0] != settled.ID {
		t.Error("payoff must forward-reference the settled transaction")
	}

	UnlinkPayoff(payoff, settled)

	if settled.PaidOffBy != nil {
		t.Error("back-reference must be cleared")
	}
	if len(payoff.RelatedTransactions) != 0 {
		t.Error("forward-reference must be removed")
	}
}
