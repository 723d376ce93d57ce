package service

import (
	"testing"
	"time"

	"magizhquiz/internal/models"
)

func fixedScheduler(now time.Time) *SpacedRepetitionService {
	return &SpacedRepetitionService{
		now:    func() time.Time { return now },
		jitter: func() float64 { return 1.0 },
	}
}

func TestNextReviewAtProgression(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := fixedScheduler(now)

	tests := []struct {
		name       string
		difficulty models.Difficulty
		reps       int
		correct    bool
		wantDays   int
	}{
		{"easy first review", models.DifficultyEasy, 1, true, 3},
		{"easy deep into table", models.DifficultyEasy, 5, true, 60},
		{"easy beyond table caps", models.DifficultyEasy, 20, true, 60},
		{"medium second review", models.DifficultyMedium, 2, true, 5},
		{"hard stays short", models.DifficultyHard, 2, true, 3},
		{"miss resets easy", models.DifficultyEasy, 0, false, 1},
		{"miss resets hard", models.DifficultyHard, 0, false, 1},
		{"unknown difficulty falls back to medium", models.Difficulty("weird"), 1, true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.NextReviewAt(tt.difficulty, tt.reps, tt.correct)
			want := now.Add(time.Duration(tt.wantDays) * 24 * time.Hour)
			if !got.Equal(want) {
				t.Errorf("NextReviewAt() = %v, want %v", got, want)
			}
		})
	}
}

func TestNextReviewAtJitterFloor(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := fixedScheduler(now)
	s.jitter = func() float64 { return 0.8 }

	// 1-day base interval * 0.8 rounds down to 0; the floor keeps it at 1
	got := s.NextReviewAt(models.DifficultyHard, 0, true)
	want := now.Add(24 * time.Hour)
	if !got.Equal(want) {
		t.Errorf("NextReviewAt() = %v, want %v", got, want)
	}
}

func TestOrderByPriority(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cards := []models.Card{
		{ID: 1}, // scheduled in the future
		{ID: 2}, // overdue by 2 days
		{ID: 3}, // never studied
		{ID: 4}, // overdue by 5 days
	}

	at := func(d time.Duration) *time.Time {
		ts := now.Add(d)
		return &ts
	}
	plans := map[int64]*models.StudyPlan{
		1: {CardID: 1, NextReviewAt: at(72 * time.Hour)},
		2: {CardID: 2, NextReviewAt: at(-48 * time.Hour)},
		4: {CardID: 4, NextReviewAt: at(-120 * time.Hour)},
	}

	ordered := orderByPriority(cards, plans, now)

	want := []int64{4, 2, 3, 1}
	if len(ordered) != len(want) {
		t.Fatalf("orderByPriority() returned %d cards, want %d", len(ordered), len(want))
	}
	for i, id := range want {
		if ordered[i].ID != id {
			t.Errorf("position %d: card ID = %d, want %d", i, ordered[i].ID, id)
		}
	}
}

func TestOrderByPriorityDueAtNowCountsAsDue(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	cards := []models.Card{{ID: 1}, {ID: 2}}
	plans := map[int64]*models.StudyPlan{
		1: {CardID: 1, NextReviewAt: &now},
	}

	ordered := orderByPriority(cards, plans, now)
	if ordered[0].ID != 1 {
		t.Errorf("card due exactly now should sort before new cards, got ID %d first", ordered[0].ID)
	}
}
