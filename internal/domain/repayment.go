package domain

import "time"

// Repayment records a payoff event against one account's statement period,
// attached to a journal. Immutable once constructed; the journal enforces
// dedup by (accountID, journalID, statementPeriod).
type Repayment struct {
	ID              RepaymentID `json:"id"`
	JournalID       JournalID   `json:"journalId"`
	AccountID       AccountID   `json:"accountId"`
	StatementPeriod Period      `json:"statementPeriod"`
	Date            time.Time   `json:"date"`
	Amount          Money       `json:"amount"`
}

// CoversSameStatement reports whether two repayments share the dedup key
func (r Repayment) CoversSameStatement(other Repayment) bool {
	return r.AccountID == other.AccountID &&
		r.JournalID == other.JournalID &&
		r.StatementPeriod.Equal(other.StatementPeriod)
}
