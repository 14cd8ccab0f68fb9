package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/splitbook/splitbook-backend/internal/util"
)

// Money is an amount tagged with its ISO currency code
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// NewMoney creates a Money value
func NewMoney(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

// Equal compares amount and currency
func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

// Period is a closed date interval
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewPeriod creates a Period
func NewPeriod(start, end time.Time) Period {
	return Period{Start: start, End: end}
}

// Equal compares two periods by calendar date on both bounds
func (p Period) Equal(other Period) bool {
	return util.TruncateToDate(p.Start).Equal(util.TruncateToDate(other.Start)) &&
		util.TruncateToDate(p.End).Equal(util.TruncateToDate(other.End))
}

// Contains reports whether the instant falls inside the interval, comparing
// calendar dates only
func (p Period) Contains(t time.Time) bool {
	return util.SameOrAfterDate(t, p.Start) && util.SameOrBeforeDate(t, p.End)
}

// BillingCycle is the derived statement window for an account at a reference
// date. It is never persisted; it emerges from the account configuration.
type BillingCycle struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Due   time.Time `json:"due"`
}

// Period returns the start/end window of the cycle
func (c BillingCycle) Period() Period {
	return Period{Start: c.Start, End: c.End}
}
