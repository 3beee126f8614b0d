package database

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

func TestDurationToPgInterval(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected pgtype.Interval
	}{
		{
			name:     "zero duration",
			duration: 0,
			expected: pgtype.Interval{Valid: true},
		},
		{
			name:     "90 days retention",
			duration: 90 * 24 * time.Hour,
			expected: pgtype.Interval{Days: 90, Valid: true},
		},
		{
			name:     "36 hours splits into days and remainder",
			duration: 36 * time.Hour,
			expected: pgtype.Interval{Days: 1, Microseconds: 12 * time.Hour.Microseconds(), Valid: true},
		},
		{
			name:     "sub-day duration",
			duration: 30 * time.Minute,
			expected: pgtype.Interval{Microseconds: 30 * time.Minute.Microseconds(), Valid: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := durationToPgInterval(tt.duration)
			if got != tt.expected {
				t.Fatalf("durationToPgInterval(%v) = %+v, want %+v", tt.duration, got, tt.expected)
			}
		})
	}
}
