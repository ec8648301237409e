package tradelog

import (
	"slices"
	"testing"
)

func TestRange_Days(t *testing.T) {
	tests := []struct {
		name     string
		r        Range
		expected []Date
	}{
		{
			name:     "single day",
			r:        NewRange(NewDate(2024, 1, 10), NewDate(2024, 1, 10)),
			expected: []Date{NewDate(2024, 1, 10)},
		},
		{
			name:     "across a month, reversed bounds",
			r:        NewRange(NewDate(2024, 3, 1), NewDate(2024, 2, 28)),
			expected: []Date{NewDate(2024, 2, 28), NewDate(2024, 2, 29), NewDate(2024, 3, 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := slices.Collect(tt.r.Days())
			if !slices.Equal(got, tt.expected) {
				t.Errorf("Range.Days() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPeriod_Range(t *testing.T) {
	tests := []struct {
		name     string
		p        Period
		d        Date
		expected string
	}{
		{"daily", Daily, NewDate(2024, 2, 15), "2024-02-15"},
		{"monthly", Monthly, NewDate(2024, 2, 15), "2024-02-01_2024-02-29"},
		{"monthly december", Monthly, NewDate(2024, 12, 31), "2024-12-01_2024-12-31"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Range(tt.d).Identifier(); got != tt.expected {
				t.Errorf("Period.Range(%v).Identifier() = %q, want %q", tt.d, got, tt.expected)
			}
		})
	}
}
