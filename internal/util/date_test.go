package util

import (
	"testing"
	"time"
)

func TestPreviousMonth(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     time.Month
		wantYear  int
		wantMonth time.Month
	}{
		{"mid year", 2025, time.June, 2025, time.May},
		{"january wraps", 2025, time.January, 2024, time.December},
		{"february", 2025, time.February, 2025, time.January},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotYear, gotMonth := PreviousMonth(tt.year, tt.month)
			if gotYear != tt.wantYear || gotMonth != tt.wantMonth {
				t.Errorf("PreviousMonth(%d, %v) = (%d, %v), want (%d, %v)",
					tt.year, tt.month, gotYear, gotMonth, tt.wantYear, tt.wantMonth)
			}
		})
	}
}

func TestEndOfMonth(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			"march snaps to 31st",
			time.Date(2025, time.March, 15, 10, 30, 0, 0, time.UTC),
			time.Date(2025, time.March, 31, 23, 59, 59, 0, time.UTC),
		},
		{
			"february non-leap",
			time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.February, 28, 23, 59, 59, 0, time.UTC),
		},
		{
			"february leap",
			time.Date(2024, time.February, 29, 12, 0, 0, 0, time.UTC),
			time.Date(2024, time.February, 29, 23, 59, 59, 0, time.UTC),
		},
		{
			"december wraps year boundary",
			time.Date(2025, time.December, 5, 0, 0, 0, 0, time.UTC),
			time.Date(2025, time.December, 31, 23, 59, 59, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EndOfMonth(tt.in); !got.Equal(tt.want) {
				t.Errorf("EndOfMonth(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStartAndEndOfDay(t *testing.T) {
	in := time.Date(2025, time.June, 25, 14, 45, 12, 500, time.UTC)

	if got := StartOfDay(in); !got.Equal(time.Date(2025, time.June, 25, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("StartOfDay = %v", got)
	}
	if got := EndOfDay(in); !got.Equal(time.Date(2025, time.June, 25, 23, 59, 59, 0, time.UTC)) {
		t.Errorf("EndOfDay = %v", got)
	}
}

func TestDateOnlyComparisons(t *testing.T) {
	morning := time.Date(2025, time.June, 15, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2025, time.June, 15, 22, 0, 0, 0, time.UTC)
	nextDay := time.Date(2025, time.June, 16, 1, 0, 0, 0, time.UTC)

	if !SameOrAfterDate(morning, evening) {
		t.Error("same calendar date should compare as same-or-after")
	}
	if !SameOrBeforeDate(evening, morning) {
		t.Error("same calendar date should compare as same-or-before")
	}
	if SameOrBeforeDate(nextDay, morning) {
		t.Error("next day should not be same-or-before")
	}
	if !SameOrAfterDate(nextDay, evening) {
		t.Error("next day should be same-or-after")
	}
}

func TestDayInMonth(t *testing.T) {
	// Day 31 in February clamps to the last day
	got := DayInMonth(2025, time.February, 31)
	want := time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DayInMonth(2025, Feb, 31) = %v, want %v", got, want)
	}

	// Regular day passes through
	got = DayInMonth(2025, time.June, 20)
	want = time.Date(2025, time.June, 20, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DayInMonth(2025, Jun, 20) = %v, want %v", got, want)
	}
}
