package service

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"magizhquiz/internal/models"
	"magizhquiz/internal/repository"
)

var ErrNoChallengeDeck = errors.New("no public deck available for a challenge")

// streakAccuracyThreshold is the minimum daily-challenge accuracy that
// keeps a streak alive
const streakAccuracyThreshold = 0.85

// Achievement is an earned milestone shown on the user's profile
type Achievement struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// achievement thresholds
const (
	perfectScorerCount   = 5
	streakMasterDays     = 30
	quizEnthusiastCount  = 100
	deckCreatorCount     = 10
	knowledgeSeekerCards = 1000
)

// GamificationService handles streaks, daily challenges, achievements
// and the leaderboard
type GamificationService struct {
	progressRepo *repository.ProgressRepository
	quizRepo     *repository.QuizRepository
	deckRepo     *repository.DeckRepository

	now  func() time.Time
	pick func(n int) int
}

// NewGamificationService creates a new gamification service
func NewGamificationService(progressRepo *repository.ProgressRepository, quizRepo *repository.QuizRepository, deckRepo *repository.DeckRepository) *GamificationService {
	return &GamificationService{
		progressRepo: progressRepo,
		quizRepo:     quizRepo,
		deckRepo:     deckRepo,
		now:          time.Now,
		pick:         rand.Intn,
	}
}

// UpdateStreak applies one day's challenge accuracy to the user's streak.
// Runs at most once per calendar day; accuracy at or above the threshold
// continues or restarts the streak, below it breaks the streak.
func (s *GamificationService) UpdateStreak(userID int64, accuracy float64) (*models.Streak, error) {
	streak, err := s.progressRepo.GetStreak(userID)
	if err != nil {
		return nil, err
	}
	if streak == nil {
		streak = &models.Streak{UserID: userID}
	}

	today := dateOnly(s.now())
	if streak.LastActivityDate != nil && dateOnly(*streak.LastActivityDate).Equal(today) {
		return streak, nil
	}

	streak.CurrentStreak = nextStreak(streak.CurrentStreak, streak.LastActivityDate, today, accuracy)
	if streak.CurrentStreak > streak.LongestStreak {
		streak.LongestStreak = streak.CurrentStreak
	}
	streak.LastActivityDate = &today

	if err := s.progressRepo.UpsertStreak(streak); err != nil {
		return nil, err
	}
	return streak, nil
}

// nextStreak computes the new current-streak value for a day with the
// given accuracy. lastActivity is the previous qualifying day, or nil.
func nextStreak(current int, lastActivity *time.Time, today time.Time, accuracy float64) int {
	if accuracy < streakAccuracyThreshold {
		return 0
	}
	if lastActivity != nil && dateOnly(*lastActivity).Equal(today.AddDate(0, 0, -1)) {
		return current + 1
	}
	return 1
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// TodaysChallenge returns the user's challenge for today, creating one if
// needed. The deck is drawn from the user's own public decks first, then
// from popular public decks.
func (s *GamificationService) TodaysChallenge(userID int64) (*models.DailyChallenge, error) {
	today := dateOnly(s.now())

	existing, err := s.progressRepo.GetDailyChallenge(userID, today)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	ids, err := s.deckRepo.ListPublicDeckIDs(userID, 10)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, ErrNoChallengeDeck
	}

	deckID := ids[s.pick(len(ids))]
	return s.progressRepo.CreateDailyChallenge(userID, deckID, today)
}

// RecordChallengeResult applies an exam result to today's challenge, if
// one exists for the deck and is still open, and updates the streak
func (s *GamificationService) RecordChallengeResult(userID, deckID int64, score, total int) error {
	if total <= 0 {
		return nil
	}

	challenge, err := s.progressRepo.GetDailyChallenge(userID, dateOnly(s.now()))
	if err != nil {
		return err
	}
	if challenge == nil || challenge.Completed || challenge.DeckID != deckID {
		return nil
	}

	accuracy := float64(score) / float64(total)
	if err := s.progressRepo.CompleteDailyChallenge(challenge.ID, float64(score), accuracy*100); err != nil {
		return err
	}
	if _, err := s.UpdateStreak(userID, accuracy); err != nil {
		return fmt.Errorf("failed to update streak: %w", err)
	}
	return nil
}

// GetStreak returns the user's streak, zero-valued if none exists yet
func (s *GamificationService) GetStreak(userID int64) (*models.Streak, error) {
	streak, err := s.progressRepo.GetStreak(userID)
	if err != nil {
		return nil, err
	}
	if streak == nil {
		streak = &models.Streak{UserID: userID}
	}
	return streak, nil
}

// Achievements computes the user's earned achievements from their stats
func (s *GamificationService) Achievements(userID int64) ([]Achievement, error) {
	var achievements []Achievement

	perfect, err := s.quizRepo.CountPerfectSessions(userID)
	if err != nil {
		return nil, err
	}
	if perfect >= perfectScorerCount {
		achievements = append(achievements, Achievement{
			Type:        "perfect_scorer",
			Title:       "Perfect Scorer",
			Description: fmt.Sprintf("%d perfect quiz scores", perfect),
			Icon:        "target",
		})
	}

	totalQuizzes, err := s.quizRepo.CountCompletedSessions(userID)
	if err != nil {
		return nil, err
	}
	if totalQuizzes >= quizEnthusiastCount {
		achievements = append(achievements, Achievement{
			Type:        "quiz_enthusiast",
			Title:       "Quiz Enthusiast",
			Description: fmt.Sprintf("%d quizzes completed", totalQuizzes),
			Icon:        "books",
		})
	}

	streak, err := s.progressRepo.GetStreak(userID)
	if err != nil {
		return nil, err
	}
	if streak != nil && streak.LongestStreak >= streakMasterDays {
		achievements = append(achievements, Achievement{
			Type:        "streak_master",
			Title:       "Streak Master",
			Description: fmt.Sprintf("%d-day learning streak", streak.LongestStreak),
			Icon:        "fire",
		})
	}

	deckCount, err := s.deckRepo.CountUserDecks(userID)
	if err != nil {
		return nil, err
	}
	if deckCount >= deckCreatorCount {
		achievements = append(achievements, Achievement{
			Type:        "deck_creator",
			Title:       "Deck Creator",
			Description: fmt.Sprintf("%d decks created", deckCount),
			Icon:        "palette",
		})
	}

	cardsStudied, err := s.quizRepo.CountDistinctCardsStudied(userID)
	if err != nil {
		return nil, err
	}
	if cardsStudied >= knowledgeSeekerCards {
		achievements = append(achievements, Achievement{
			Type:        "knowledge_seeker",
			Title:       "Knowledge Seeker",
			Description: fmt.Sprintf("%d cards studied", cardsStudied),
			Icon:        "compass",
		})
	}

	if achievements == nil {
		achievements = []Achievement{}
	}
	return achievements, nil
}

// Leaderboard returns the top users by completed quizzes
func (s *GamificationService) Leaderboard(limit int) ([]models.LeaderboardEntry, error) {
	return s.quizRepo.Leaderboard(limit)
}
