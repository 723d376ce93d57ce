package service

import (
	"time"

	"magizhquiz/internal/models"
	"magizhquiz/internal/repository"
)

// AnalyticsService aggregates study history into dashboard and per-deck
// statistics
type AnalyticsService struct {
	quizRepo     *repository.QuizRepository
	deckRepo     *repository.DeckRepository
	progressRepo *repository.ProgressRepository
	scheduler    *SpacedRepetitionService

	now func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(quizRepo *repository.QuizRepository, deckRepo *repository.DeckRepository, progressRepo *repository.ProgressRepository, scheduler *SpacedRepetitionService) *AnalyticsService {
	return &AnalyticsService{
		quizRepo:     quizRepo,
		deckRepo:     deckRepo,
		progressRepo: progressRepo,
		scheduler:    scheduler,
		now:          time.Now,
	}
}

// Dashboard builds the user's dashboard stats: counts, average score and
// completed sessions per day over the last week, oldest day first
func (s *AnalyticsService) Dashboard(userID int64) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}

	var err error
	if stats.TotalDecks, err = s.deckRepo.CountUserDecks(userID); err != nil {
		return nil, err
	}
	if stats.TotalCardsStudied, err = s.quizRepo.CountDistinctCardsStudied(userID); err != nil {
		return nil, err
	}
	if stats.TotalQuizSessions, err = s.quizRepo.CountCompletedSessions(userID); err != nil {
		return nil, err
	}
	if stats.AverageScore, err = s.quizRepo.AverageScore(userID); err != nil {
		return nil, err
	}
	if stats.CardsDue, err = s.scheduler.DueCount(userID); err != nil {
		return nil, err
	}

	streak, err := s.progressRepo.GetStreak(userID)
	if err != nil {
		return nil, err
	}
	if streak != nil {
		stats.CurrentStreak = streak.CurrentStreak
	}

	now := s.now()
	weekAgo := now.AddDate(0, 0, -6)
	start := time.Date(weekAgo.Year(), weekAgo.Month(), weekAgo.Day(), 0, 0, 0, 0, now.Location())
	perDay, err := s.quizRepo.SessionsCompletedSince(userID, start)
	if err != nil {
		return nil, err
	}

	stats.WeeklyActivity = make([]int, 7)
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		stats.WeeklyActivity[i] = perDay[day]
	}
	return stats, nil
}

// DeckStats builds the user's performance summary for one deck
func (s *AnalyticsService) DeckStats(userID, deckID int64) (*models.DeckStats, error) {
	return s.quizRepo.DeckStats(userID, deckID, 10)
}

// RecentSessions returns the user's latest completed quiz sessions
func (s *AnalyticsService) RecentSessions(userID int64, limit int) ([]models.QuizSession, error) {
	return s.quizRepo.ListRecentSessions(userID, limit)
}

// Activity returns the user's recent activity feed
func (s *AnalyticsService) Activity(userID int64, limit int) ([]models.ActivityEntry, error) {
	return s.progressRepo.ListActivity(userID, limit)
}

// Progress returns the user's progress row for one deck, zero-valued when
// the deck has never been attempted
func (s *AnalyticsService) Progress(userID, deckID int64) (*models.UserProgress, error) {
	progress, err := s.progressRepo.GetProgress(userID, deckID)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		progress = &models.UserProgress{UserID: userID, DeckID: deckID}
	}
	return progress, nil
}
