package service

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/splitbook/splitbook-backend/internal/domain"
	"github.com/splitbook/splitbook-backend/internal/testutil"
)

func repaymentServiceForTest() (*RepaymentService, *testutil.MockJournalRepository, *testutil.MockAccountRepository, *testutil.MockTransactionRepository) {
	journalRepo := testutil.NewMockJournalRepository()
	accountRepo := testutil.NewMockAccountRepository()
	transactionRepo := testutil.NewMockTransactionRepository()
	return NewRepaymentService(journalRepo, accountRepo, transactionRepo), journalRepo, accountRepo, transactionRepo
}

func expenseOnAccount(t *testing.T, journal *domain.Journal, accountID domain.AccountID, amount int64, date time.Time) *domain.Transaction {
	t.Helper()
	txn, err := domain.NewTransaction(journal, domain.NewTransactionInput{
		Title:     "Expense",
		Amount:    decimal.NewFromInt(amount),
		Date:      date,
		AccountID: accountID,
		Type:      domain.TransactionTypeExpense,
		PaidBy:    journal.OwnerID,
	})
	if err != nil {
		t.Fatalf("expected transaction, got error %v", err)
	}
	return txn
}

func TestRepaymentService_CreateRepayment_SumsBatchInJournalCurrency(t *testing.T) {
	service, _, _, _ := repaymentServiceForTest()
	journal := journalForServiceTest(t)
	accountID := domain.NewAccountID()

	date := time.Date(2025, time.June, 28, 0, 0, 0, 0, time.UTC)
	period := domain.NewPeriod(
		time.Date(2025, time.May, 21, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, 20, 23, 59, 59, 0, time.UTC),
	)
	batch := []*domain.Transaction{
		expenseOnAccount(t, journal, accountID, 30, date),
		expenseOnAccount(t, journal, accountID, 45, date),
	}

	repayment, stored, err := service.CreateRepayment(journal, CreateRepaymentInput{
		Date:            date,
		Transactions:    batch,
		StatementPeriod: period,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !stored {
		t.Fatal("repayment must be stored on the journal")
	}

	want := domain.NewMoney(decimal.NewFromInt(75), "EUR")
	if !repayment.Amount.Equal(want) {
		t.Errorf("amount = %+v, want %+v", repayment.Amount, want)
	}
	if repayment.AccountID != accountID {
		t.Errorf("accountID = %s, want %s", repayment.AccountID, accountID)
	}
	if repayment.JournalID != journal.ID {
		t.Errorf("journalID = %s, want %s", repayment.JournalID, journal.ID)
	}
	if got := len(journal.Repayments()); got != 1 {
		t.Errorf("journal repayment count = %d, want 1", got)
	}
}

func TestRepaymentService_CreateRepayment_EmptyBatch(t *testing.T) {
	service, _, _, _ := repaymentServiceForTest()
	journal := journalForServiceTest(t)

	_, _, err := service.CreateRepayment(journal, CreateRepaymentInput{Date: time.Now()})
	if !errors.Is(err, domain.ErrEmptyRepayment) {
		t.Fatalf("expected ErrEmptyRepayment, got %v", err)
	}
}

func TestRepaymentService_CreateRepayment_MixedAccountBatch(t *testing.T) {
	service, _, _, _ := repaymentServiceForTest()
	journal := journalForServiceTest(t)

	date := time.Date(2025, time.June, 28, 0, 0, 0, 0, time.UTC)
	batch := []*domain.Transaction{
		expenseOnAccount(t, journal, domain.NewAccountID(), 30, date),
		expenseOnAccount(t, journal, domain.NewAccountID(), 45, date),
	}

	_, _, err := service.CreateRepayment(journal, CreateRepaymentInput{
		Date:         date,
		Transactions: batch,
	})
	if !errors.Is(err, domain.ErrMixedAccountRepayment) {
		t.Fatalf("expected ErrMixedAccountRepayment, got %v", err)
	}
	if got := len(journal.Repayments()); got != 0 {
		t.Errorf("journal repayment count = %d, want 0", got)
	}
}

func TestRepaymentService_CreateRepayment_DuplicateStatementDropped(t *testing.T) {
	service, _, _, _ := repaymentServiceForTest()
	journal := journalForServiceTest(t)
	accountID := domain.NewAccountID()

	date := time.Date(2025, time.June, 28, 0, 0, 0, 0, time.UTC)
	period := domain.NewPeriod(
		time.Date(2025, time.May, 21, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, 20, 23, 59, 59, 0, time.UTC),
	)
	in := CreateRepaymentInput{
		Date:            date,
		Transactions:    []*domain.Transaction{expenseOnAccount(t, journal, accountID, 30, date)},
		StatementPeriod: period,
	}

	if _, stored, err := service.CreateRepayment(journal, in); err != nil || !stored {
		t.Fatalf("first repayment = (stored %v, err %v), want (true, nil)", stored, err)
	}
	repayment, stored, err := service.CreateRepayment(journal, in)
	if err != nil {
		t.Fatalf("duplicate must not be an error, got %v", err)
	}
	if stored {
		t.Error("duplicate statement repayment must be dropped")
	}
	if repayment == nil {
		t.Error("the computed repayment is still returned")
	}
	if got := len(journal.Repayments()); got != 1 {
		t.Errorf("journal repayment count = %d, want 1", got)
	}
}

func TestRepaymentService_CreateStatementRepayment(t *testing.T) {
	service, journalRepo, accountRepo, transactionRepo := repaymentServiceForTest()

	owner := domain.NewUserID()
	journal, err := domain.NewJournal(owner, "owner@example.com", "Household", "EUR")
	if err != nil {
		t.Fatal(err)
	}

	account, err := domain.NewCreditAccount(domain.CreditAccountInput{
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
	if err := journal.LinkAccount(account.ID, owner); err != nil {
		t.Fatal(err)
	}
	journalRepo.Create(journal)
	accountRepo.Create(account)

	// Two inside the May 21 – June 20 statement, one outside
	inside1 := expenseOnAccount(t, journal, account.ID, 40, time.Date(2025, time.May, 25, 0, 0, 0, 0, time.UTC))
	inside2 := expenseOnAccount(t, journal, account.ID, 60, time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC))
	outside := expenseOnAccount(t, journal, account.ID, 999, time.Date(2025, time.June, 21, 0, 0, 0, 0, time.UTC))
	transactionRepo.AddTransaction(inside1)
	transactionRepo.AddTransaction(inside2)
	transactionRepo.AddTransaction(outside)

	ref := time.Date(2025, time.June, 25, 0, 0, 0, 0, time.UTC)
	repayment, err := service.CreateStatementRepayment(journal.ID, account.ID, ref)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := domain.NewMoney(decimal.NewFromInt(100), "EUR")
	if !repayment.Amount.Equal(want) {
		t.Errorf("amount = %+v, want %+v", repayment.Amount, want)
	}
	wantStart := time.Date(2025, time.May, 21, 0, 0, 0, 0, time.UTC)
	if !repayment.StatementPeriod.Start.Equal(wantStart) {
		t.Errorf("statement start = %v, want %v", repayment.StatementPeriod.Start, wantStart)
	}

	saved, err := journalRepo.GetByID(journal.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(saved.Repayments()); got != 1 {
		t.Errorf("persisted repayment count = %d, want 1", got)
	}
}

func TestRepaymentService_CreateStatementRepayment_UnlinkedAccount(t *testing.T) {
	service, journalRepo, accountRepo, _ := repaymentServiceForTest()

	owner := domain.NewUserID()
	journal, err := domain.NewJournal(owner, "owner@example.com", "Household", "EUR")
	if err != nil {
		t.Fatal(err)
	}
	account, err := domain.NewCashAccount("Wallet", owner)
	if err != nil {
		t.Fatal(err)
	}
	journalRepo.Create(journal)
	accountRepo.Create(account)

	_, err = service.CreateStatementRepayment(journal.ID, account.ID, time.Now())
	if !errors.Is(err, domain.ErrAccountNotLinked) {
		t.Fatalf("expected ErrAccountNotLinked, got %v", err)
	}
}

func TestRepaymentService_CreateStatementRepayment_NoCycleAccount(t *testing.T) {
	service, journalRepo, accountRepo, _ := repaymentServiceForTest()

	owner := domain.NewUserID()
	journal, err := domain.NewJournal(owner, "owner@example.com", "Household", "EUR")
	if err != nil {
		t.Fatal(err)
	}
	account, err := domain.NewCashAccount("Wallet", owner)
	if err != nil {
		t.Fatal(err)
	}
	if err := journal.LinkAccount(account.ID, owner); err != nil {
		t.Fatal(err)
	}
	journalRepo.Create(journal)
	accountRepo.Create(account)

	_, err = service.CreateStatementRepayment(journal.ID, account.ID, time.Now())
	if !errors.Is(err, domain.ErrNoBillingCycle) {
		t.Fatalf("expected ErrNoBillingCycle, got %v", err)
	}
}
