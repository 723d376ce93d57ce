package repository

import (
	"database/sql"
	"fmt"
	"time"

	"magizhquiz/internal/database"
	"magizhquiz/internal/models"
)

// StudyPlanRepository handles the spaced-repetition schedule rows
type StudyPlanRepository struct {
	db *database.DB
}

// NewStudyPlanRepository creates a new study plan repository
func NewStudyPlanRepository(db *database.DB) *StudyPlanRepository {
	return &StudyPlanRepository{db: db}
}

// GetPlan retrieves the schedule row for one user/card pair
func (r *StudyPlanRepository) GetPlan(userID, cardID int64) (*models.StudyPlan, error) {
	query := `
		SELECT user_id, card_id, repetition_count, next_review_at, COALESCE(difficulty, '')
		FROM study_plans
		WHERE user_id = ? AND card_id = ?
	`
	p := &models.StudyPlan{}
	var difficulty string
	err := r.db.QueryRow(query, userID, cardID).Scan(
		&p.UserID, &p.CardID, &p.RepetitionCount, &p.NextReviewAt, &difficulty)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get study plan: %w", err)
	}

	p.Difficulty = models.Difficulty(difficulty)
	return p, nil
}

// GetPlansForDeck returns the user's schedule rows for a deck's cards,
// keyed by card ID
func (r *StudyPlanRepository) GetPlansForDeck(userID, deckID int64) (map[int64]*models.StudyPlan, error) {
	query := `
		SELECT p.user_id, p.card_id, p.repetition_count, p.next_review_at, COALESCE(p.difficulty, '')
		FROM study_plans p
		JOIN cards c ON c.id = p.card_id
		WHERE p.user_id = ? AND c.deck_id = ?
	`
	rows, err := r.db.Query(query, userID, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to list study plans: %w", err)
	}
	defer rows.Close()

	plans := make(map[int64]*models.StudyPlan)
	for rows.Next() {
		p := &models.StudyPlan{}
		var difficulty string
		err := rows.Scan(&p.UserID, &p.CardID, &p.RepetitionCount, &p.NextReviewAt, &difficulty)
		if err != nil {
			return nil, fmt.Errorf("failed to scan study plan: %w", err)
		}
		p.Difficulty = models.Difficulty(difficulty)
		plans[p.CardID] = p
	}
	return plans, rows.Err()
}

// UpsertPlan inserts or replaces the schedule row for one user/card pair
func (r *StudyPlanRepository) UpsertPlan(p *models.StudyPlan) error {
	existing, err := r.GetPlan(p.UserID, p.CardID)
	if err != nil {
		return err
	}

	if existing == nil {
		query := `
			INSERT INTO study_plans (user_id, card_id, repetition_count, next_review_at, difficulty)
			VALUES (?, ?, ?, ?, ?)
		`
		if _, err := r.db.Exec(query, p.UserID, p.CardID, p.RepetitionCount, p.NextReviewAt, string(p.Difficulty)); err != nil {
			return fmt.Errorf("failed to insert study plan: %w", err)
		}
		return nil
	}

	query := `
		UPDATE study_plans
		SET repetition_count = ?, next_review_at = ?, difficulty = ?
		WHERE user_id = ? AND card_id = ?
	`
	if _, err := r.db.Exec(query, p.RepetitionCount, p.NextReviewAt, string(p.Difficulty), p.UserID, p.CardID); err != nil {
		return fmt.Errorf("failed to update study plan: %w", err)
	}
	return nil
}

// ListDueCardIDs returns the user's card IDs whose next review is at or
// before now, soonest first
func (r *StudyPlanRepository) ListDueCardIDs(userID int64, now time.Time, limit int) ([]int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `
		SELECT card_id
		FROM study_plans
		WHERE user_id = ? AND next_review_at IS NOT NULL AND next_review_at <= ?
		ORDER BY next_review_at ASC
		LIMIT ?
	`
	rows, err := r.db.Query(query, userID, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due cards: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountDue returns how many of the user's cards are due for review
func (r *StudyPlanRepository) CountDue(userID int64, now time.Time) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM study_plans WHERE user_id = ? AND next_review_at IS NOT NULL AND next_review_at <= ?"
	if err := r.db.QueryRow(query, userID, now).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count due cards: %w", err)
	}
	return count, nil
}
