package repository

import (
	"database/sql"
	"fmt"
	"time"

	"magizhquiz/internal/database"
	"magizhquiz/internal/models"
)

// QuizRepository handles database operations for quiz sessions and answers
type QuizRepository struct {
	db *database.DB
}

// NewQuizRepository creates a new quiz repository
func NewQuizRepository(db *database.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

// CreateSession inserts a new quiz session
func (r *QuizRepository) CreateSession(userID, deckID int64, mode models.QuizMode, totalQuestions int) (*models.QuizSession, error) {
	query := `
		INSERT INTO quiz_sessions (user_id, deck_id, mode, total_questions)
		VALUES (?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, userID, deckID, string(mode), totalQuestions)
	if err != nil {
		return nil, fmt.Errorf("failed to create quiz session: %w", err)
	}
	return r.GetSessionByID(id)
}

// GetSessionByID retrieves a quiz session by ID
func (r *QuizRepository) GetSessionByID(id int64) (*models.QuizSession, error) {
	query := `
		SELECT id, user_id, deck_id, mode, started_at, completed_at, score, total_questions
		FROM quiz_sessions
		WHERE id = ?
	`
	session := &models.QuizSession{}
	var mode string
	err := r.db.QueryRow(query, id).Scan(
		&session.ID,
		&session.UserID,
		&session.DeckID,
		&mode,
		&session.StartedAt,
		&session.CompletedAt,
		&session.Score,
		&session.TotalQuestions,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz session: %w", err)
	}

	session.Mode = models.QuizMode(mode)
	return session, nil
}

// CompleteSession marks a session completed with its final score
func (r *QuizRepository) CompleteSession(id int64, score float64) error {
	query := "UPDATE quiz_sessions SET completed_at = ?, score = ? WHERE id = ?"
	if _, err := r.db.Exec(query, time.Now(), score, id); err != nil {
		return fmt.Errorf("failed to complete quiz session: %w", err)
	}
	return nil
}

// RecordAnswer inserts one graded answer for a session
func (r *QuizRepository) RecordAnswer(answer *models.QuizAnswer) (int64, error) {
	answersJSON, err := marshalStrings(answer.UserAnswers)
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO quiz_answers (session_id, card_id, user_answers, is_correct, difficulty_rating, time_taken)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		answer.SessionID, answer.CardID, answersJSON,
		answer.IsCorrect, string(answer.DifficultyRating), answer.TimeTakenSec)
	if err != nil {
		return 0, fmt.Errorf("failed to record answer: %w", err)
	}
	return id, nil
}

// ListAnswers returns a session's answers in answer order
func (r *QuizRepository) ListAnswers(sessionID int64) ([]models.QuizAnswer, error) {
	query := `
		SELECT id, session_id, card_id, COALESCE(user_answers, ''), is_correct,
			COALESCE(difficulty_rating, ''), COALESCE(time_taken, 0)
		FROM quiz_answers
		WHERE session_id = ?
		ORDER BY id ASC
	`
	rows, err := r.db.Query(query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	defer rows.Close()

	var answers []models.QuizAnswer
	for rows.Next() {
		var a models.QuizAnswer
		var answersJSON, rating string
		err := rows.Scan(&a.ID, &a.SessionID, &a.CardID, &answersJSON, &a.IsCorrect, &rating, &a.TimeTakenSec)
		if err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		if a.UserAnswers, err = unmarshalStrings(answersJSON); err != nil {
			return nil, err
		}
		a.DifficultyRating = models.Difficulty(rating)
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

// CountAnswers returns how many answers a session has recorded
func (r *QuizRepository) CountAnswers(sessionID int64) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM quiz_answers WHERE session_id = ?"
	if err := r.db.QueryRow(query, sessionID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count answers: %w", err)
	}
	return count, nil
}

// ListIncorrectCardIDs returns the IDs of a deck's cards the user most
// recently answered incorrectly. A card counts as incorrect when its
// latest recorded answer across all of the user's sessions was wrong.
func (r *QuizRepository) ListIncorrectCardIDs(userID, deckID int64) ([]int64, error) {
	query := `
		SELECT a.card_id
		FROM quiz_answers a
		JOIN quiz_sessions s ON s.id = a.session_id
		WHERE s.user_id = ? AND s.deck_id = ?
			AND a.id = (
				SELECT MAX(a2.id)
				FROM quiz_answers a2
				JOIN quiz_sessions s2 ON s2.id = a2.session_id
				WHERE s2.user_id = s.user_id AND a2.card_id = a.card_id
			)
			AND a.is_correct = ?
	`
	rows, err := r.db.Query(query, userID, deckID, false)
	if err != nil {
		return nil, fmt.Errorf("failed to list incorrect cards: %w", err)
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

// ListRecentSessions returns the user's most recent completed sessions
func (r *QuizRepository) ListRecentSessions(userID int64, limit int) ([]models.QuizSession, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `
		SELECT id, user_id, deck_id, mode, started_at, completed_at, score, total_questions
		FROM quiz_sessions
		WHERE user_id = ? AND completed_at IS NOT NULL
		ORDER BY completed_at DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.QuizSession
	for rows.Next() {
		var s models.QuizSession
		var mode string
		err := rows.Scan(&s.ID, &s.UserID, &s.DeckID, &mode, &s.StartedAt, &s.CompletedAt, &s.Score, &s.TotalQuestions)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s.Mode = models.QuizMode(mode)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// CountCompletedSessions returns how many sessions the user has completed
func (r *QuizRepository) CountCompletedSessions(userID int64) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM quiz_sessions WHERE user_id = ? AND completed_at IS NOT NULL"
	if err := r.db.QueryRow(query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

// CountPerfectSessions returns how many completed sessions scored full marks
func (r *QuizRepository) CountPerfectSessions(userID int64) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM quiz_sessions
		WHERE user_id = ? AND completed_at IS NOT NULL AND score = total_questions
	`
	if err := r.db.QueryRow(query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count perfect sessions: %w", err)
	}
	return count, nil
}

// AverageScore returns the user's mean score over completed sessions
func (r *QuizRepository) AverageScore(userID int64) (float64, error) {
	var avg sql.NullFloat64
	query := "SELECT AVG(score) FROM quiz_sessions WHERE user_id = ? AND completed_at IS NOT NULL"
	if err := r.db.QueryRow(query, userID).Scan(&avg); err != nil {
		return 0, fmt.Errorf("failed to average score: %w", err)
	}
	return avg.Float64, nil
}

// CountDistinctCardsStudied returns how many distinct cards the user has answered
func (r *QuizRepository) CountDistinctCardsStudied(userID int64) (int, error) {
	var count int
	query := `
		SELECT COUNT(DISTINCT a.card_id)
		FROM quiz_answers a
		JOIN quiz_sessions s ON s.id = a.session_id
		WHERE s.user_id = ?
	`
	if err := r.db.QueryRow(query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count cards studied: %w", err)
	}
	return count, nil
}

// SessionsCompletedSince counts completed sessions per day since the cutoff.
// The map key is the day in YYYY-MM-DD form.
func (r *QuizRepository) SessionsCompletedSince(userID int64, since time.Time) (map[string]int, error) {
	query := `
		SELECT completed_at
		FROM quiz_sessions
		WHERE user_id = ? AND completed_at IS NOT NULL AND completed_at >= ?
	`
	rows, err := r.db.Query(query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list session days: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var completedAt time.Time
		if err := rows.Scan(&completedAt); err != nil {
			return nil, err
		}
		counts[completedAt.Format("2006-01-02")]++
	}
	return counts, rows.Err()
}

// DeckStats aggregates the user's completed sessions against one deck
func (r *QuizRepository) DeckStats(userID, deckID int64, recentLimit int) (*models.DeckStats, error) {
	stats := &models.DeckStats{
		DifficultyBreakdown: make(map[string]int),
		RecentScores:        []float64{},
	}

	var avg sql.NullFloat64
	query := `
		SELECT COUNT(*), AVG(score)
		FROM quiz_sessions
		WHERE user_id = ? AND deck_id = ? AND completed_at IS NOT NULL
	`
	if err := r.db.QueryRow(query, userID, deckID).Scan(&stats.TotalAttempts, &avg); err != nil {
		return nil, fmt.Errorf("failed to aggregate deck stats: %w", err)
	}
	stats.AverageScore = avg.Float64

	var started int
	query = "SELECT COUNT(*) FROM quiz_sessions WHERE user_id = ? AND deck_id = ?"
	if err := r.db.QueryRow(query, userID, deckID).Scan(&started); err != nil {
		return nil, fmt.Errorf("failed to count started sessions: %w", err)
	}
	if started > 0 {
		stats.CompletionRate = float64(stats.TotalAttempts) / float64(started)
	}

	query = `
		SELECT a.difficulty_rating, COUNT(*)
		FROM quiz_answers a
		JOIN quiz_sessions s ON s.id = a.session_id
		WHERE s.user_id = ? AND s.deck_id = ? AND a.difficulty_rating != ''
		GROUP BY a.difficulty_rating
	`
	rows, err := r.db.Query(query, userID, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate difficulty ratings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var rating string
		var count int
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, err
		}
		stats.DifficultyBreakdown[rating] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if recentLimit <= 0 {
		recentLimit = 10
	}
	query = `
		SELECT score
		FROM quiz_sessions
		WHERE user_id = ? AND deck_id = ? AND completed_at IS NOT NULL
		ORDER BY completed_at DESC
		LIMIT ?
	`
	scoreRows, err := r.db.Query(query, userID, deckID, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent scores: %w", err)
	}
	defer scoreRows.Close()
	for scoreRows.Next() {
		var score float64
		if err := scoreRows.Scan(&score); err != nil {
			return nil, err
		}
		stats.RecentScores = append(stats.RecentScores, score)
	}
	return stats, scoreRows.Err()
}

// Leaderboard returns the top users by completed-session count, then by
// average score. Users with no completed sessions are excluded.
func (r *QuizRepository) Leaderboard(limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	query := `
		SELECT u.id, u.name, COALESCE(u.username, ''), COALESCE(u.avatar_url, ''),
			COUNT(s.id), COALESCE(AVG(s.score), 0)
		FROM users u
		JOIN quiz_sessions s ON s.user_id = u.id AND s.completed_at IS NOT NULL
		GROUP BY u.id, u.name, u.username, u.avatar_url
		ORDER BY COUNT(s.id) DESC, AVG(s.score) DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to build leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		err := rows.Scan(&e.UserID, &e.Name, &e.Username, &e.AvatarURL, &e.QuizCount, &e.AverageScore)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard entry: %w", err)
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteStaleSessions removes unfinished sessions older than the cutoff
func (r *QuizRepository) DeleteStaleSessions(olderThan time.Time) (int64, error) {
	query := "DELETE FROM quiz_sessions WHERE completed_at IS NULL AND started_at < ?"
	result, err := r.db.Exec(query, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}
