package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

type TransactionStatus string

const (
	TransactionStatusPending      TransactionStatus = "pending"
	TransactionStatusApproved     TransactionStatus = "approved"
	TransactionStatusRejected     TransactionStatus = "rejected"
	TransactionStatusAutoApproved TransactionStatus = "auto_approved"
)

// Transaction is a single ledger entry in a journal. Amounts are positive;
// direction is implied by Type. PaidOffBy points at the transaction that
// settled this one; RelatedTransactions lists the transactions this one has
// settled when it itself is a payoff. Both sides of that link are maintained
// exclusively by the payoff service.
type Transaction struct {
	ID                  TransactionID     `json:"id"`
	JournalID           JournalID         `json:"journalId"`
	Title               string            `json:"title"`
	Amount              decimal.Decimal   `json:"amount"`
	Date                time.Time         `json:"date"`
	AccountID           AccountID         `json:"accountId"`
	Type                TransactionType   `json:"type"`
	PaidBy              UserID            `json:"paidBy"`
	Tags                []TagID           `json:"tags"`
	Status              TransactionStatus `json:"status"`
	Notes               *string           `json:"notes,omitempty"`
	PaidOffBy           *TransactionID    `json:"paidOffBy,omitempty"`
	RelatedTransactions []TransactionID   `json:"relatedTransactions,omitempty"`
	ReceiptPath         *string           `json:"receiptPath,omitempty"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}

// NewTransactionInput carries the fields of a transaction factory call
type NewTransactionInput struct {
	Title     string
	Amount    decimal.Decimal
	Date      time.Time
	AccountID AccountID
	Type      TransactionType
	PaidBy    UserID
	Tags      []string
	Notes     *string
}

// NewTransaction creates a transaction against a journal. The journal must
// not be archived and the payer must be a collaborator. Tag names unknown to
// the journal are registered onto it as a side effect, so the caller must
// persist the journal together with the transaction. Status starts
// auto-approved unless the journal requires approval.
func NewTransaction(journal *Journal, in NewTransactionInput) (*Transaction, error) {
	if journal.Archived {
		return nil, ErrJournalArchived
	}
	if !journal.HasCollaborator(in.PaidBy) {
		return nil, NewJournalNotAccessibleError(in.PaidBy)
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrTransactionTitleRequired
	}

	journal.AddTags(in.Tags)
	tagIDs := make([]TagID, 0, len(in.Tags))
	for _, name := range in.Tags {
		if id := NewTag(name).ID; id != "" {
			tagIDs = append(tagIDs, id)
		}
	}

	status := TransactionStatusAutoApproved
	if journal.RequiresApproval {
		status = TransactionStatusPending
	}

	now := time.Now().UTC()
	return &Transaction{
		ID:        NewTransactionID(),
		JournalID: journal.ID,
		Title:     strings.TrimSpace(in.Title),
		Amount:    in.Amount,
		Date:      in.Date,
		AccountID: in.AccountID,
		Type:      in.Type,
		PaidBy:    in.PaidBy,
		Tags:      tagIDs,
		Status:    status,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// TransactionUpdate holds the partial fields of an edit; nil fields are
// left untouched
type TransactionUpdate struct {
	Title     *string
	Amount    *decimal.Decimal
	Date      *time.Time
	AccountID *AccountID
	Type      *TransactionType
	PaidBy    *UserID
	Tags      []TagID
	Notes     *string
}

// Edit merges the provided fields in place. An empty update is a no-op
// returning false. No creation-time validation is re-run on edit.
func (t *Transaction) Edit(update TransactionUpdate) bool {
	if update.Title == nil && update.Amount == nil && update.Date == nil &&
		update.AccountID == nil && update.Type == nil && update.PaidBy == nil &&
		update.Tags == nil && update.Notes == nil {
		return false
	}
	if update.Title != nil {
		t.Title = *update.Title
	}
	if update.Amount != nil {
		t.Amount = *update.Amount
	}
	if update.Date != nil {
		t.Date = *update.Date
	}
	if update.AccountID != nil {
		t.AccountID = *update.AccountID
	}
	if update.Type != nil {
		t.Type = *update.Type
	}
	if update.PaidBy != nil {
		t.PaidBy = *update.PaidBy
	}
	if update.Tags != nil {
		t.Tags = update.Tags
	}
	if update.Notes != nil {
		t.Notes = update.Notes
	}
	t.UpdatedAt = time.Now().UTC()
	return true
}

// Approve transitions a pending transaction to approved; any other status is
// a silent no-op
func (t *Transaction) Approve() {
	if t.Status == TransactionStatusPending {
		t.Status = TransactionStatusApproved
	}
}

// Reject transitions a pending transaction to rejected; any other status is
// a silent no-op
func (t *Transaction) Reject() {
	if t.Status == TransactionStatusPending {
		t.Status = TransactionStatusRejected
	}
}

// markPaidOffBy sets the settling back-reference. Re-marking overwrites.
func (t *Transaction) markPaidOffBy(payoffID TransactionID) {
	t.PaidOffBy = &payoffID
}

// clearPaidOffBy removes the settling back-reference
func (t *Transaction) clearPaidOffBy() {
	t.PaidOffBy = nil
}

// addRelatedTransaction appends a settled transaction to the forward list
func (t *Transaction) addRelatedTransaction(id TransactionID) {
	t.RelatedTransactions = append(t.RelatedTransactions, id)
}

// removeRelatedTransaction drops a settled transaction from the forward list
func (t *Transaction) removeRelatedTransaction(id TransactionID) {
	for i, existing := range t.RelatedTransactions {
		if existing == id {
			t.RelatedTransactions = append(t.RelatedTransactions[:i], t.RelatedTransactions[i+1:]...)
			return
		}
	}
}

// LinkPayoff records on both sides that payoff settles txn. Kept here so the
// two-sided link can only be touched through the payoff service.
func LinkPayoff(payoff, txn *Transaction) {
	txn.markPaidOffBy(payoff.ID)
	payoff.addRelatedTransaction(txn.ID)
}

// UnlinkPayoff clears both sides of a payoff link. The caller is responsible
// for passing a correct pair; no check is made that they were linked.
func UnlinkPayoff(payoff, txn *Transaction) {
	txn.clearPaidOffBy()
	payoff.removeRelatedTransaction(txn.ID)
}

// TransactionFilters narrows journal transaction queries
type TransactionFilters struct {
	AccountID *AccountID
	StartDate *time.Time
	EndDate   *time.Time
	Type      *TransactionType
	Status    *TransactionStatus
}

// TransactionRepository defines the interface for transaction persistence.
// CreateWithJournal and SavePayoffLinks write multiple entities in one
// database transaction because the domain couples them in one unit of work.
type TransactionRepository interface {
	Create(txn *Transaction) (*Transaction, error)
	CreateWithJournal(txn *Transaction, journal *Journal) (*Transaction, error)
	GetByID(id TransactionID) (*Transaction, error)
	GetByIDs(ids []TransactionID) ([]*Transaction, error)
	GetByJournal(journalID JournalID, filters *TransactionFilters) ([]*Transaction, error)
	GetByAccountInPeriod(journalID JournalID, accountID AccountID, period Period) ([]*Transaction, error)
	Update(txn *Transaction) (*Transaction, error)
	SavePayoffLinks(payoff *Transaction, settled []*Transaction) error
	Delete(id TransactionID) error
}
