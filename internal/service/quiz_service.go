package service

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"magizhquiz/internal/models"
	"magizhquiz/internal/repository"
	"magizhquiz/internal/study"
)

var (
	ErrSessionNotFound   = errors.New("quiz session not found")
	ErrSessionCompleted  = errors.New("quiz session already completed")
	ErrNoCardsForQuiz    = errors.New("no cards available for this quiz")
	ErrInvalidQuizMode   = errors.New("invalid quiz mode")
	ErrCardNotInSession  = errors.New("card does not belong to this session's deck")
	ErrNothingToComplete = errors.New("no answers recorded for this session")
	ErrSessionFull       = errors.New("session already has an answer for every question")
)

const quizCardLimit = 20

// QuizService runs persisted quiz sessions: card selection by mode,
// answer grading and the completion side effects (progress, streaks,
// daily challenges, activity log)
type QuizService struct {
	quizRepo     *repository.QuizRepository
	cardRepo     *repository.CardRepository
	deckRepo     *repository.DeckRepository
	progressRepo *repository.ProgressRepository
	scheduler    *SpacedRepetitionService
	gamification *GamificationService

	shuffle func([]models.Card)
}

// NewQuizService creates a new quiz service
func NewQuizService(
	quizRepo *repository.QuizRepository,
	cardRepo *repository.CardRepository,
	deckRepo *repository.DeckRepository,
	progressRepo *repository.ProgressRepository,
	scheduler *SpacedRepetitionService,
	gamification *GamificationService,
) *QuizService {
	return &QuizService{
		quizRepo:     quizRepo,
		cardRepo:     cardRepo,
		deckRepo:     deckRepo,
		progressRepo: progressRepo,
		scheduler:    scheduler,
		gamification: gamification,
		shuffle: func(cards []models.Card) {
			rand.Shuffle(len(cards), func(i, j int) {
				cards[i], cards[j] = cards[j], cards[i]
			})
		},
	}
}

// SelectCards picks the cards for a quiz run over a deck. Exam mode takes
// all cards in random order; study mode orders by spaced-repetition
// priority; review mode takes only cards whose latest answer was wrong.
// At most twenty cards are returned.
func (s *QuizService) SelectCards(userID, deckID int64, mode models.QuizMode) ([]models.Card, error) {
	switch mode {
	case models.ModeReview:
		ids, err := s.quizRepo.ListIncorrectCardIDs(userID, deckID)
		if err != nil {
			return nil, err
		}
		cards, err := s.cardRepo.ListCardsByIDs(ids)
		if err != nil {
			return nil, err
		}
		return capCards(cards), nil

	case models.ModeStudy:
		cards, err := s.cardRepo.ListCardsByDeck(deckID)
		if err != nil {
			return nil, err
		}
		ordered, err := s.scheduler.AdaptiveDeckOrder(userID, deckID, cards)
		if err != nil {
			return nil, err
		}
		return capCards(ordered), nil

	case models.ModeExam:
		cards, err := s.cardRepo.ListCardsByDeck(deckID)
		if err != nil {
			return nil, err
		}
		s.shuffle(cards)
		return capCards(cards), nil
	}

	return nil, ErrInvalidQuizMode
}

func capCards(cards []models.Card) []models.Card {
	if len(cards) > quizCardLimit {
		return cards[:quizCardLimit]
	}
	return cards
}

// StartSession creates a recorded quiz session over a visible deck and
// returns it with the selected cards
func (s *QuizService) StartSession(userID, deckID int64, mode models.QuizMode) (*models.QuizSession, []models.Card, error) {
	if !mode.Valid() {
		return nil, nil, ErrInvalidQuizMode
	}

	deck, err := s.deckRepo.GetDeckByID(deckID)
	if err != nil {
		return nil, nil, err
	}
	if deck == nil {
		return nil, nil, ErrDeckNotFound
	}
	if !deck.IsPublic && deck.UserID != userID {
		return nil, nil, ErrAccessDenied
	}

	cards, err := s.SelectCards(userID, deckID, mode)
	if err != nil {
		return nil, nil, err
	}
	if len(cards) == 0 {
		return nil, nil, ErrNoCardsForQuiz
	}

	session, err := s.quizRepo.CreateSession(userID, deckID, mode, len(cards))
	if err != nil {
		return nil, nil, err
	}
	return session, cards, nil
}

// SubmitAnswer grades one answer against the card's correct set and
// records it. In study mode a difficulty rating also updates the
// spaced-repetition schedule.
func (s *QuizService) SubmitAnswer(userID, sessionID, cardID int64, userAnswers []string, rating models.Difficulty, timeTakenSec int) (bool, error) {
	session, err := s.getOwnedSession(userID, sessionID)
	if err != nil {
		return false, err
	}
	if session.CompletedAt != nil {
		return false, ErrSessionCompleted
	}

	recorded, err := s.quizRepo.CountAnswers(sessionID)
	if err != nil {
		return false, err
	}
	if recorded >= session.TotalQuestions {
		return false, ErrSessionFull
	}

	card, err := s.cardRepo.GetCardByID(cardID)
	if err != nil {
		return false, err
	}
	if card == nil {
		return false, ErrCardNotFound
	}
	if card.DeckID != session.DeckID {
		return false, ErrCardNotInSession
	}

	isCorrect := study.Grade(userAnswers, card.CorrectAnswers)

	answer := &models.QuizAnswer{
		SessionID:        sessionID,
		CardID:           cardID,
		UserAnswers:      userAnswers,
		IsCorrect:        isCorrect,
		DifficultyRating: rating,
		TimeTakenSec:     timeTakenSec,
	}
	if _, err := s.quizRepo.RecordAnswer(answer); err != nil {
		return false, err
	}

	if session.Mode == models.ModeStudy && rating.Valid() {
		if _, err := s.scheduler.RecordAnswer(userID, cardID, isCorrect, rating); err != nil {
			return false, fmt.Errorf("failed to update study plan: %w", err)
		}
	}
	return isCorrect, nil
}

// CompleteSession finalizes a session: stores the score, updates the
// user's deck progress and mastery, logs the activity and, for exam
// mode, feeds the result into today's daily challenge
func (s *QuizService) CompleteSession(userID, sessionID int64) (*models.QuizSession, error) {
	session, err := s.getOwnedSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.CompletedAt != nil {
		return nil, ErrSessionCompleted
	}

	answers, err := s.quizRepo.ListAnswers(sessionID)
	if err != nil {
		return nil, err
	}
	if len(answers) == 0 {
		return nil, ErrNothingToComplete
	}

	correct := 0
	for _, a := range answers {
		if a.IsCorrect {
			correct++
		}
	}
	accuracy := float64(correct) / float64(len(answers))

	if err := s.quizRepo.CompleteSession(sessionID, float64(correct)); err != nil {
		return nil, err
	}

	if err := s.updateProgress(userID, session.DeckID, accuracy); err != nil {
		return nil, err
	}

	extra := map[string]string{
		"score": fmt.Sprintf("%d", correct),
		"total": fmt.Sprintf("%d", len(answers)),
		"mode":  string(session.Mode),
	}
	if err := s.progressRepo.LogActivity(userID, models.ActionCompleteQuiz, "quiz", sessionID, extra); err != nil {
		return nil, fmt.Errorf("failed to log quiz completion: %w", err)
	}

	if session.Mode == models.ModeExam {
		if err := s.gamification.RecordChallengeResult(userID, session.DeckID, correct, len(answers)); err != nil {
			return nil, err
		}
	}

	return s.quizRepo.GetSessionByID(sessionID)
}

func (s *QuizService) updateProgress(userID, deckID int64, accuracy float64) error {
	progress, err := s.progressRepo.GetProgress(userID, deckID)
	if err != nil {
		return err
	}
	if progress == nil {
		progress = &models.UserProgress{UserID: userID, DeckID: deckID}
	}

	progress.TotalAttempts++
	now := time.Now()
	progress.LastAttemptAt = &now
	if accuracy > progress.BestScore {
		progress.BestScore = accuracy
	}
	progress.MasteryLevel = progress.MasteryLevel + accuracy*0.1
	if progress.MasteryLevel > 1.0 {
		progress.MasteryLevel = 1.0
	}

	return s.progressRepo.UpsertProgress(progress)
}

// GetSession returns a session the user owns, with its answers
func (s *QuizService) GetSession(userID, sessionID int64) (*models.QuizSession, []models.QuizAnswer, error) {
	session, err := s.getOwnedSession(userID, sessionID)
	if err != nil {
		return nil, nil, err
	}
	answers, err := s.quizRepo.ListAnswers(sessionID)
	if err != nil {
		return nil, nil, err
	}
	return session, answers, nil
}

func (s *QuizService) getOwnedSession(userID, sessionID int64) (*models.QuizSession, error) {
	session, err := s.quizRepo.GetSessionByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil || session.UserID != userID {
		return nil, ErrSessionNotFound
	}
	return session, nil
}
