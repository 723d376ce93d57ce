package service

import (
	"testing"
	"time"
)

func TestNextStreak(t *testing.T) {
	today := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	lastWeek := today.AddDate(0, 0, -7)

	tests := []struct {
		name         string
		current      int
		lastActivity *time.Time
		accuracy     float64
		want         int
	}{
		{"first ever qualifying day", 0, nil, 0.9, 1},
		{"continues from yesterday", 4, &yesterday, 0.85, 5},
		{"exactly at threshold continues", 2, &yesterday, 0.85, 3},
		{"gap restarts at one", 9, &lastWeek, 1.0, 1},
		{"low accuracy breaks streak", 9, &yesterday, 0.84, 0},
		{"low accuracy with no history", 0, nil, 0.5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nextStreak(tt.current, tt.lastActivity, today, tt.accuracy)
			if got != tt.want {
				t.Errorf("nextStreak() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDateOnly(t *testing.T) {
	ts := time.Date(2025, 6, 10, 23, 59, 58, 123, time.FixedZone("X", 3600))
	got := dateOnly(ts)
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 || got.Nanosecond() != 0 {
		t.Errorf("dateOnly() should zero the time of day, got %v", got)
	}
	if got.Location() != time.UTC {
		t.Errorf("dateOnly() should normalize to UTC, got %v", got.Location())
	}
}
