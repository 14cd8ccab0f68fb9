package domain

import "testing"

func TestNewTagNormalization(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantName string
		wantID   TagID
	}{
		{"lowercase", "food", "Food", "food"},
		{"already titled", "Food", "Food", "food"},
		{"uppercase", "FOOD", "Food", "food"},
		{"multi word", "eating out", "Eating Out", "eatingout"},
		{"extra whitespace", "  eating   out  ", "Eating Out", "eatingout"},
		{"mixed case words", "MONTHLY rent", "Monthly Rent", "monthlyrent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag := NewTag(tt.input)
			if tag.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", tag.Name, tt.wantName)
			}
			if tag.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", tag.ID, tt.wantID)
			}
		})
	}
}

func TestTagEqualityByDerivedID(t *testing.T) {
	if !NewTag("food").Equal(NewTag("Food")) {
		t.Error("tags differing only by case must be equal")
	}
	if !NewTag("eating out").Equal(NewTag("Eating   Out")) {
		t.Error("tags differing only by whitespace must be equal")
	}
	if NewTag("food").Equal(NewTag("rent")) {
		t.Error("distinct tags must not be equal")
	}
}
