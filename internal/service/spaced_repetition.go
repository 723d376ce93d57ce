package service

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"magizhquiz/internal/models"
	"magizhquiz/internal/repository"
)

// reviewIntervals holds the base review intervals in days per difficulty.
// Correct answers walk the table left to right; a miss resets to the start.
var reviewIntervals = map[models.Difficulty][]int{
	models.DifficultyEasy:   {1, 3, 7, 14, 30, 60},
	models.DifficultyMedium: {1, 2, 5, 10, 21, 45},
	models.DifficultyHard:   {1, 1, 3, 6, 12, 24},
}

// SpacedRepetitionService schedules card reviews. Correct answers advance
// the card through a per-difficulty interval table with a small random
// variation so reviews do not cluster; a miss resets the progression.
type SpacedRepetitionService struct {
	planRepo *repository.StudyPlanRepository
	cardRepo *repository.CardRepository

	// overridable in tests
	now    func() time.Time
	jitter func() float64
}

// NewSpacedRepetitionService creates a new spaced repetition service
func NewSpacedRepetitionService(planRepo *repository.StudyPlanRepository, cardRepo *repository.CardRepository) *SpacedRepetitionService {
	return &SpacedRepetitionService{
		planRepo: planRepo,
		cardRepo: cardRepo,
		now:      time.Now,
		jitter:   func() float64 { return 0.8 + rand.Float64()*0.4 },
	}
}

// NextReviewAt computes when a card should next be reviewed given the
// repetition count after this answer
func (s *SpacedRepetitionService) NextReviewAt(difficulty models.Difficulty, repetitionCount int, isCorrect bool) time.Time {
	intervals, ok := reviewIntervals[difficulty]
	if !ok {
		intervals = reviewIntervals[models.DifficultyMedium]
	}

	var days int
	if !isCorrect {
		days = intervals[0]
	} else {
		idx := repetitionCount
		if idx > len(intervals)-1 {
			idx = len(intervals) - 1
		}
		days = int(float64(intervals[idx]) * s.jitter())
		if days < 1 {
			days = 1
		}
	}

	return s.now().Add(time.Duration(days) * 24 * time.Hour)
}

// RecordAnswer updates the schedule row for one user/card pair after a
// graded answer. A correct answer increments the repetition count; a miss
// resets it to zero. The difficulty rating replaces the stored one.
func (s *SpacedRepetitionService) RecordAnswer(userID, cardID int64, isCorrect bool, rating models.Difficulty) (*models.StudyPlan, error) {
	if !rating.Valid() {
		rating = models.DifficultyMedium
	}

	plan, err := s.planRepo.GetPlan(userID, cardID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		plan = &models.StudyPlan{UserID: userID, CardID: cardID}
	}

	if isCorrect {
		plan.RepetitionCount++
	} else {
		plan.RepetitionCount = 0
	}
	plan.Difficulty = rating

	next := s.NextReviewAt(rating, plan.RepetitionCount, isCorrect)
	plan.NextReviewAt = &next

	if err := s.planRepo.UpsertPlan(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// DueCards returns the user's cards due for review, most overdue first
func (s *SpacedRepetitionService) DueCards(userID int64, limit int) ([]models.Card, error) {
	ids, err := s.planRepo.ListDueCardIDs(userID, s.now(), limit)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	cards, err := s.cardRepo.ListCardsByIDs(ids)
	if err != nil {
		return nil, err
	}

	// Restore due order; ListCardsByIDs returns ID order
	pos := make(map[int64]int, len(ids))
	for i, id := range ids {
		pos[id] = i
	}
	sort.SliceStable(cards, func(i, j int) bool {
		return pos[cards[i].ID] < pos[cards[j].ID]
	})
	return cards, nil
}

// AdaptiveDeckOrder reorders a deck's cards by review priority: due cards
// most overdue first, then cards never studied, then cards scheduled in
// the future
func (s *SpacedRepetitionService) AdaptiveDeckOrder(userID, deckID int64, cards []models.Card) ([]models.Card, error) {
	plans, err := s.planRepo.GetPlansForDeck(userID, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to load study plans: %w", err)
	}
	return orderByPriority(cards, plans, s.now()), nil
}

func orderByPriority(cards []models.Card, plans map[int64]*models.StudyPlan, now time.Time) []models.Card {
	type scheduled struct {
		card models.Card
		at   time.Time
	}
	var due, future []scheduled
	var fresh []models.Card

	for _, card := range cards {
		plan, ok := plans[card.ID]
		if !ok || plan.NextReviewAt == nil {
			fresh = append(fresh, card)
			continue
		}
		if !plan.NextReviewAt.After(now) {
			due = append(due, scheduled{card, *plan.NextReviewAt})
		} else {
			future = append(future, scheduled{card, *plan.NextReviewAt})
		}
	}

	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })

	ordered := make([]models.Card, 0, len(cards))
	for _, s := range due {
		ordered = append(ordered, s.card)
	}
	ordered = append(ordered, fresh...)
	for _, s := range future {
		ordered = append(ordered, s.card)
	}
	return ordered
}

// DueCount returns how many of the user's cards are due for review
func (s *SpacedRepetitionService) DueCount(userID int64) (int, error) {
	return s.planRepo.CountDue(userID, s.now())
}
