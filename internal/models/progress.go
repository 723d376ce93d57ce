package models

import "time"

// UserProgress tracks a user's history against one deck
type UserProgress struct {
	UserID        int64      `json:"user_id"`
	DeckID        int64      `json:"deck_id"`
	TotalAttempts int        `json:"total_attempts"`
	BestScore     float64    `json:"best_score"` // best accuracy, 0-1
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty"`
	MasteryLevel  float64    `json:"mastery_level"` // 0-1 scale
}

// Streak tracks consecutive days of qualifying activity
type Streak struct {
	UserID           int64      `json:"user_id"`
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	LastActivityDate *time.Time `json:"last_activity_date,omitempty"`
}

// StreakReminder pairs a user's contact details with their at-risk streak
type StreakReminder struct {
	Email         string
	Name          string
	CurrentStreak int
}

// DailyChallenge is one per-day deck challenge for a user
type DailyChallenge struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	DeckID          int64     `json:"deck_id"`
	Date            time.Time `json:"date"`
	Completed       bool      `json:"completed"`
	Score           *float64  `json:"score,omitempty"`
	AccuracyPercent *float64  `json:"accuracy_percent,omitempty"`
}

// ActionType identifies an activity log entry kind
type ActionType string

const (
	ActionCreateDeck   ActionType = "create_deck"
	ActionCreateCard   ActionType = "create_card"
	ActionCompleteQuiz ActionType = "complete_quiz"
	ActionStarDeck     ActionType = "star_deck"
)

// ActivityEntry is one row of the user activity feed
type ActivityEntry struct {
	ID           int64             `json:"id"`
	UserID       int64             `json:"user_id"`
	ActionType   ActionType        `json:"action_type"`
	ResourceType string            `json:"resource_type"`
	ResourceID   int64             `json:"resource_id"`
	ExtraData    map[string]string `json:"extra_data,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// StudyPlan is the spaced-repetition schedule for one user/card pair
type StudyPlan struct {
	UserID          int64      `json:"user_id"`
	CardID          int64      `json:"card_id"`
	RepetitionCount int        `json:"repetition_count"`
	NextReviewAt    *time.Time `json:"next_review_at,omitempty"`
	Difficulty      Difficulty `json:"difficulty"`
}

// DashboardStats aggregates a user's study activity for the dashboard
type DashboardStats struct {
	TotalDecks        int     `json:"total_decks"`
	TotalCardsStudied int     `json:"total_cards_studied"`
	CurrentStreak     int     `json:"current_streak"`
	TotalQuizSessions int     `json:"total_quiz_sessions"`
	AverageScore      float64 `json:"average_score"`
	CardsDue          int     `json:"cards_due"`
	WeeklyActivity    []int   `json:"weekly_activity"` // last 7 days, oldest first
}

// DeckStats aggregates a user's performance on one deck
type DeckStats struct {
	TotalAttempts       int            `json:"total_attempts"`
	AverageScore        float64        `json:"average_score"`
	CompletionRate      float64        `json:"completion_rate"`
	DifficultyBreakdown map[string]int `json:"difficulty_breakdown"`
	RecentScores        []float64      `json:"recent_scores"`
}

// LeaderboardEntry is one ranked row of the leaderboard
type LeaderboardEntry struct {
	Rank         int     `json:"rank"`
	UserID       int64   `json:"user_id"`
	Name         string  `json:"name"`
	Username     string  `json:"username"`
	AvatarURL    string  `json:"avatar_url,omitempty"`
	QuizCount    int     `json:"quiz_count"`
	AverageScore float64 `json:"average_score"`
}
