package util

import "time"

// PreviousMonth returns the year and month immediately before the given one
func PreviousMonth(year int, month time.Month) (int, time.Month) {
	if month == time.January {
		return year - 1, time.December
	}
	return year, month - 1
}

// StartOfDay returns the given instant at 00:00:00
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the given instant at 23:59:59
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// EndOfMonth returns the last second of the month the given instant falls in
func EndOfMonth(t time.Time) time.Time {
	// Day 0 of the next month is the last day of this one
	last := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location())
	return EndOfDay(last)
}

// TruncateToDate strips the time-of-day portion
func TruncateToDate(t time.Time) time.Time {
	return StartOfDay(t)
}

// SameOrAfterDate compares two instants by calendar date only
func SameOrAfterDate(t, other time.Time) bool {
	return !TruncateToDate(t).Before(TruncateToDate(other))
}

// SameOrBeforeDate compares two instants by calendar date only
func SameOrBeforeDate(t, other time.Time) bool {
	return !TruncateToDate(t).After(TruncateToDate(other))
}

// DayInMonth returns the given day within year/month, clamped to the month's
// last day (e.g. day 31 in February yields Feb 28/29)
func DayInMonth(year int, month time.Month, day int) time.Time {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
