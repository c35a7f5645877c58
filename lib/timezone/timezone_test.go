package timezone

import (
	"testing"
	"time"
)

func TestStartOfWeek(t *testing.T) {
	testCases := []struct {
		in       time.Time
		expected time.Time
	}{
		{
			// a Wednesday
			in:       time.Date(2024, 7, 3, 15, 30, 0, 0, Location),
			expected: time.Date(2024, 7, 1, 0, 0, 0, 0, Location),
		},
		{
			// a Sunday still belongs to the week started the previous Monday
			in:       time.Date(2024, 7, 7, 23, 59, 0, 0, Location),
			expected: time.Date(2024, 7, 1, 0, 0, 0, 0, Location),
		},
		{
			// a Monday maps to itself
			in:       time.Date(2024, 7, 1, 0, 0, 0, 0, Location),
			expected: time.Date(2024, 7, 1, 0, 0, 0, 0, Location),
		},
	}
	for _, tc := range testCases {
		got := StartOfWeek(tc.in)
		if !got.Equal(tc.expected) {
			t.Fatalf("StartOfWeek(%v) = %v, expected %v", tc.in, got, tc.expected)
		}
	}
}
