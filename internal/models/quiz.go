package models

import "time"

// QuizMode selects how cards are picked for a recorded quiz session
type QuizMode string

const (
	ModeExam   QuizMode = "exam"
	ModeStudy  QuizMode = "study"
	ModeReview QuizMode = "review"
)

// Valid reports whether m is a known quiz mode
func (m QuizMode) Valid() bool {
	switch m {
	case ModeExam, ModeStudy, ModeReview:
		return true
	}
	return false
}

// Difficulty is the learner's self-assessed difficulty rating for a card
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is a known difficulty
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// QuizSession is one recorded run through a deck
type QuizSession struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"user_id"`
	DeckID         int64      `json:"deck_id"`
	Mode           QuizMode   `json:"mode"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	Score          *float64   `json:"score,omitempty"`
	TotalQuestions int        `json:"total_questions"`
}

// QuizAnswer is a single graded answer inside a quiz session
type QuizAnswer struct {
	ID               int64      `json:"id"`
	SessionID        int64      `json:"session_id"`
	CardID           int64      `json:"card_id"`
	UserAnswers      []string   `json:"user_answers"`
	IsCorrect        bool       `json:"is_correct"`
	DifficultyRating Difficulty `json:"difficulty_rating,omitempty"`
	TimeTakenSec     int        `json:"time_taken,omitempty"`
}
