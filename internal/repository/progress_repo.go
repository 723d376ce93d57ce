package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"magizhquiz/internal/database"
	"magizhquiz/internal/models"
)

// ProgressRepository handles database operations for progress tracking,
// streaks, daily challenges and the activity log
type ProgressRepository struct {
	db *database.DB
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *database.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// GetProgress retrieves a user's progress against one deck
func (r *ProgressRepository) GetProgress(userID, deckID int64) (*models.UserProgress, error) {
	query := `
		SELECT user_id, deck_id, total_attempts, best_score, last_attempt_at, mastery_level
		FROM user_progress
		WHERE user_id = ? AND deck_id = ?
	`
	p := &models.UserProgress{}
	err := r.db.QueryRow(query, userID, deckID).Scan(
		&p.UserID, &p.DeckID, &p.TotalAttempts, &p.BestScore, &p.LastAttemptAt, &p.MasteryLevel)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return p, nil
}

// UpsertProgress inserts or replaces a user's progress row for a deck
func (r *ProgressRepository) UpsertProgress(p *models.UserProgress) error {
	existing, err := r.GetProgress(p.UserID, p.DeckID)
	if err != nil {
		return err
	}

	if existing == nil {
		query := `
			INSERT INTO user_progress (user_id, deck_id, total_attempts, best_score, last_attempt_at, mastery_level)
			VALUES (?, ?, ?, ?, ?, ?)
		`
		if _, err := r.db.Exec(query, p.UserID, p.DeckID, p.TotalAttempts, p.BestScore, p.LastAttemptAt, p.MasteryLevel); err != nil {
			return fmt.Errorf("failed to insert progress: %w", err)
		}
		return nil
	}

	query := `
		UPDATE user_progress
		SET total_attempts = ?, best_score = ?, last_attempt_at = ?, mastery_level = ?
		WHERE user_id = ? AND deck_id = ?
	`
	if _, err := r.db.Exec(query, p.TotalAttempts, p.BestScore, p.LastAttemptAt, p.MasteryLevel, p.UserID, p.DeckID); err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	return nil
}

// GetStreak retrieves a user's streak row
func (r *ProgressRepository) GetStreak(userID int64) (*models.Streak, error) {
	query := `
		SELECT user_id, current_streak, longest_streak, last_activity_date
		FROM streaks
		WHERE user_id = ?
	`
	s := &models.Streak{}
	err := r.db.QueryRow(query, userID).Scan(
		&s.UserID, &s.CurrentStreak, &s.LongestStreak, &s.LastActivityDate)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}
	return s, nil
}

// UpsertStreak inserts or replaces a user's streak row
func (r *ProgressRepository) UpsertStreak(s *models.Streak) error {
	existing, err := r.GetStreak(s.UserID)
	if err != nil {
		return err
	}

	if existing == nil {
		query := `
			INSERT INTO streaks (user_id, current_streak, longest_streak, last_activity_date)
			VALUES (?, ?, ?, ?)
		`
		if _, err := r.db.Exec(query, s.UserID, s.CurrentStreak, s.LongestStreak, s.LastActivityDate); err != nil {
			return fmt.Errorf("failed to insert streak: %w", err)
		}
		return nil
	}

	query := `
		UPDATE streaks
		SET current_streak = ?, longest_streak = ?, last_activity_date = ?
		WHERE user_id = ?
	`
	if _, err := r.db.Exec(query, s.CurrentStreak, s.LongestStreak, s.LastActivityDate, s.UserID); err != nil {
		return fmt.Errorf("failed to update streak: %w", err)
	}
	return nil
}

// ListStreaksAtRisk returns users whose streak survives only if they
// practice today: a positive streak whose last activity was yesterday.
// Activity dates are stored normalized to UTC midnight.
func (r *ProgressRepository) ListStreaksAtRisk(today time.Time) ([]models.StreakReminder, error) {
	yesterday := today.AddDate(0, 0, -1)
	query := `
		SELECT u.email, u.name, s.current_streak
		FROM streaks s
		JOIN users u ON u.id = s.user_id
		WHERE s.current_streak > 0
			AND s.last_activity_date >= ? AND s.last_activity_date < ?
	`
	rows, err := r.db.Query(query, yesterday, today)
	if err != nil {
		return nil, fmt.Errorf("failed to list streaks at risk: %w", err)
	}
	defer rows.Close()

	var reminders []models.StreakReminder
	for rows.Next() {
		var rem models.StreakReminder
		if err := rows.Scan(&rem.Email, &rem.Name, &rem.CurrentStreak); err != nil {
			return nil, fmt.Errorf("failed to scan streak reminder: %w", err)
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}

// GetDailyChallenge retrieves a user's challenge for the given day
func (r *ProgressRepository) GetDailyChallenge(userID int64, date time.Time) (*models.DailyChallenge, error) {
	query := `
		SELECT id, user_id, deck_id, date, completed, score, accuracy_percent
		FROM daily_challenges
		WHERE user_id = ? AND date = ?
	`
	c := &models.DailyChallenge{}
	day := date.Format("2006-01-02")
	var stored string
	err := r.db.QueryRow(query, userID, day).Scan(
		&c.ID, &c.UserID, &c.DeckID, &stored, &c.Completed, &c.Score, &c.AccuracyPercent)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily challenge: %w", err)
	}

	if c.Date, err = time.Parse("2006-01-02", stored); err != nil {
		return nil, fmt.Errorf("failed to parse challenge date: %w", err)
	}
	return c, nil
}

// CreateDailyChallenge inserts a challenge for the given day
func (r *ProgressRepository) CreateDailyChallenge(userID, deckID int64, date time.Time) (*models.DailyChallenge, error) {
	query := `
		INSERT INTO daily_challenges (user_id, deck_id, date, completed)
		VALUES (?, ?, ?, ?)
	`
	day := date.Format("2006-01-02")
	if _, err := r.db.ExecReturningID(query, userID, deckID, day, false); err != nil {
		return nil, fmt.Errorf("failed to create daily challenge: %w", err)
	}
	return r.GetDailyChallenge(userID, date)
}

// CompleteDailyChallenge records the result of the day's challenge
func (r *ProgressRepository) CompleteDailyChallenge(id int64, score, accuracyPercent float64) error {
	query := `
		UPDATE daily_challenges SET completed = ?, score = ?, accuracy_percent = ?
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, true, score, accuracyPercent, id); err != nil {
		return fmt.Errorf("failed to complete daily challenge: %w", err)
	}
	return nil
}

// LogActivity appends one entry to the user's activity feed
func (r *ProgressRepository) LogActivity(userID int64, action models.ActionType, resourceType string, resourceID int64, extra map[string]string) error {
	var extraJSON string
	if len(extra) > 0 {
		data, err := json.Marshal(extra)
		if err != nil {
			return fmt.Errorf("failed to encode activity data: %w", err)
		}
		extraJSON = string(data)
	}

	query := `
		INSERT INTO activity_log (user_id, action_type, resource_type, resource_id, extra_data)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := r.db.Exec(query, userID, string(action), resourceType, resourceID, extraJSON); err != nil {
		return fmt.Errorf("failed to log activity: %w", err)
	}
	return nil
}

// ListActivity returns the user's most recent activity entries
func (r *ProgressRepository) ListActivity(userID int64, limit int) ([]models.ActivityEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := `
		SELECT id, user_id, action_type, resource_type, resource_id, COALESCE(extra_data, ''), created_at
		FROM activity_log
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var entries []models.ActivityEntry
	for rows.Next() {
		var e models.ActivityEntry
		var action, extraJSON string
		err := rows.Scan(&e.ID, &e.UserID, &action, &e.ResourceType, &e.ResourceID, &extraJSON, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		e.ActionType = models.ActionType(action)
		if extraJSON != "" {
			if err := json.Unmarshal([]byte(extraJSON), &e.ExtraData); err != nil {
				return nil, fmt.Errorf("failed to decode activity data: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
