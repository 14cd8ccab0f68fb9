package service

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/splitbook/splitbook-backend/internal/domain"
)

// ReportingService builds read-only projections over journals and accounts.
// Nothing here mutates state.
type ReportingService struct {
	journalRepo     domain.JournalRepository
	accountRepo     domain.AccountRepository
	transactionRepo domain.TransactionRepository
}

// NewReportingService creates a new ReportingService
func NewReportingService(journalRepo domain.JournalRepository, accountRepo domain.AccountRepository, transactionRepo domain.TransactionRepository) *ReportingService {
	return &ReportingService{
		journalRepo:     journalRepo,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
	}
}

// DueDateEntry is one account's upcoming statement obligation
type DueDateEntry struct {
	AccountID   domain.AccountID    `json:"accountId"`
	AccountName string              `json:"accountName"`
	AccountType domain.AccountType  `json:"accountType"`
	Cycle       domain.BillingCycle `json:"cycle"`
	Outstanding domain.Money        `json:"outstanding"`
	Repaid      bool                `json:"repaid"`
}

// DueDateReport lists, for every credit or loan account linked to the
// journal, the billing cycle containing the reference date, the spend inside
// that cycle, and whether a repayment already covers the statement. Entries
// are sorted by due date.
func (s *ReportingService) DueDateReport(userID domain.UserID, journalID domain.JournalID, ref time.Time) ([]DueDateEntry, error) {
	journal, err := s.journalRepo.GetByID(journalID)
	if err != nil {
		return nil, err
	}
	if !journal.HasCollaborator(userID) {
		return nil, domain.NewJournalNotAccessibleError(userID)
	}

	links := journal.AccountLinks()
	ids := make([]domain.AccountID, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.AccountID)
	}
	accounts, err := s.accountRepo.GetByIDs(ids)
	if err != nil {
		return nil, err
	}

	repayments := journal.Repayments()

	entries := make([]DueDateEntry, 0, len(accounts))
	for _, account := range accounts {
		if !account.IsCreditOrLoan() || !account.Active {
			continue
		}
		cycle := account.BillingCycle(ref)
		if cycle == nil {
			continue
		}

		transactions, err := s.transactionRepo.GetByAccountInPeriod(journalID, account.ID, cycle.Period())
		if err != nil {
			return nil, err
		}
		outstanding := decimal.Zero
		for _, txn := range transactions {
			if txn.Status == domain.TransactionStatusRejected {
				continue
			}
			outstanding = outstanding.Add(txn.Amount)
		}

		repaid := false
		for _, r := range repayments {
			if r.AccountID == account.ID && r.StatementPeriod.Equal(cycle.Period()) {
				repaid = true
				break
			}
		}

		entries = append(entries, DueDateEntry{
			AccountID:   account.ID,
			AccountName: account.DisplayName(),
			AccountType: account.Type,
			Cycle:       *cycle,
			Outstanding: domain.NewMoney(outstanding, journal.Currency),
			Repaid:      repaid,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Cycle.Due.Before(entries[j].Cycle.Due)
	})
	return entries, nil
}

// MonthlySpend is the spend aggregated over one calendar month
type MonthlySpend struct {
	Year    int          `json:"year"`
	Month   time.Month   `json:"month"`
	Income  domain.Money `json:"income"`
	Expense domain.Money `json:"expense"`
}

// MonthlySpendReport totals approved income and expense per calendar month
// between from and to (inclusive, by month)
func (s *ReportingService) MonthlySpendReport(userID domain.UserID, journalID domain.JournalID, from, to time.Time) ([]MonthlySpend, error) {
	journal, err := s.journalRepo.GetByID(journalID)
	if err != nil {
		return nil, err
	}
	if !journal.HasCollaborator(userID) {
		return nil, domain.NewJournalNotAccessibleError(userID)
	}

	transactions, err := s.transactionRepo.GetByJournal(journalID, &domain.TransactionFilters{
		StartDate: &from,
		EndDate:   &to,
	})
	if err != nil {
		return nil, err
	}

	type monthKey struct {
		year  int
		month time.Month
	}
	totals := make(map[monthKey]*MonthlySpend)
	for _, txn := range transactions {
		if txn.Status == domain.TransactionStatusPending || txn.Status == domain.TransactionStatusRejected {
			continue
		}
		key := monthKey{txn.Date.Year(), txn.Date.Month()}
		spend, ok := totals[key]
		if !ok {
			spend = &MonthlySpend{
				Year:    key.year,
				Month:   key.month,
				Income:  domain.NewMoney(decimal.Zero, journal.Currency),
				Expense: domain.NewMoney(decimal.Zero, journal.Currency),
			}
			totals[key] = spend
		}
		switch txn.Type {
		case domain.TransactionTypeIncome:
			spend.Income.Amount = spend.Income.Amount.Add(txn.Amount)
		case domain.TransactionTypeExpense:
			spend.Expense.Amount = spend.Expense.Amount.Add(txn.Amount)
		}
	}

	report := make([]MonthlySpend, 0, len(totals))
	for _, spend := range totals {
		report = append(report, *spend)
	}
	sort.Slice(report, func(i, j int) bool {
		if report[i].Year != report[j].Year {
			return report[i].Year < report[j].Year
		}
		return report[i].Month < report[j].Month
	})
	return report, nil
}
