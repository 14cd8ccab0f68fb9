package domain

import "github.com/google/uuid"

// Identifier types are distinct string aliases so an AccountID can never be
// passed where a JournalID is expected. Values are UUIDs compared by value.
type (
	UserID        string
	AccountID     string
	JournalID     string
	TransactionID string
	RepaymentID   string
)

// NewUserID generates a fresh user identifier
func NewUserID() UserID {
	return UserID(uuid.NewString())
}

// NewAccountID generates a fresh account identifier
func NewAccountID() AccountID {
	return AccountID(uuid.NewString())
}

// NewJournalID generates a fresh journal identifier
func NewJournalID() JournalID {
	return JournalID(uuid.NewString())
}

// NewTransactionID generates a fresh transaction identifier
func NewTransactionID() TransactionID {
	return TransactionID(uuid.NewString())
}

// NewRepaymentID generates a fresh repayment identifier
func NewRepaymentID() RepaymentID {
	return RepaymentID(uuid.NewString())
}

func (id UserID) String() string        { return string(id) }
func (id AccountID) String() string     { return string(id) }
func (id JournalID) String() string     { return string(id) }
func (id TransactionID) String() string { return string(id) }
func (id RepaymentID) String() string   { return string(id) }
