package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"magizhquiz/internal/database"
)

// BackupData is the complete database backup document
type BackupData struct {
	Version      string                `json:"version"`
	ExportedAt   time.Time             `json:"exported_at"`
	Users        []UserBackup          `json:"users"`
	Decks        []DeckBackup          `json:"decks"`
	Cards        []CardBackup          `json:"cards"`
	DeckStars    []DeckStarBackup      `json:"deck_stars"`
	Bookmarks    []BookmarkBackup      `json:"card_bookmarks"`
	Comments     []CommentBackup       `json:"deck_comments"`
	QuizSessions []QuizSessionBackup   `json:"quiz_sessions"`
	QuizAnswers  []QuizAnswerBackup    `json:"quiz_answers"`
	Progress     []UserProgressBackup  `json:"user_progress"`
	Streaks      []StreakBackup        `json:"streaks"`
	StudyPlans   []StudyPlanBackup     `json:"study_plans"`
}

// UserBackup is one users row
type UserBackup struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	GoogleID     string    `json:"google_id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	UsernameSet  bool      `json:"username_set"`
	Bio          string    `json:"bio"`
	AvatarURL    string    `json:"avatar_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DeckBackup is one decks row; Tags keeps the stored JSON text
type DeckBackup struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	UserID      int64     `json:"user_id"`
	IsPublic    bool      `json:"is_public"`
	Tags        string    `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CardBackup is one cards row; list columns keep the stored JSON text
type CardBackup struct {
	ID             int64     `json:"id"`
	DeckID         int64     `json:"deck_id"`
	Question       string    `json:"question"`
	QuestionType   string    `json:"question_type"`
	Options        string    `json:"options"`
	CorrectAnswers string    `json:"correct_answers"`
	Explanation    string    `json:"explanation"`
	ImageURL       string    `json:"image_url"`
	Tags           string    `json:"tags"`
	CreatedAt      time.Time `json:"created_at"`
}

// DeckStarBackup is one deck_stars row
type DeckStarBackup struct {
	DeckID    int64     `json:"deck_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// BookmarkBackup is one card_bookmarks row
type BookmarkBackup struct {
	CardID    int64     `json:"card_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentBackup is one deck_comments row
type CommentBackup struct {
	ID        int64     `json:"id"`
	DeckID    int64     `json:"deck_id"`
	UserID    int64     `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// QuizSessionBackup is one quiz_sessions row
type QuizSessionBackup struct {
	ID             int64      `json:"id"`
	UserID         int64      `json:"user_id"`
	DeckID         int64      `json:"deck_id"`
	Mode           string     `json:"mode"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at"`
	Score          *float64   `json:"score"`
	TotalQuestions int        `json:"total_questions"`
}

// QuizAnswerBackup is one quiz_answers row
type QuizAnswerBackup struct {
	ID               int64  `json:"id"`
	SessionID        int64  `json:"session_id"`
	CardID           int64  `json:"card_id"`
	UserAnswers      string `json:"user_answers"`
	IsCorrect        bool   `json:"is_correct"`
	DifficultyRating string `json:"difficulty_rating"`
	TimeTaken        int    `json:"time_taken"`
}

// UserProgressBackup is one user_progress row
type UserProgressBackup struct {
	UserID        int64      `json:"user_id"`
	DeckID        int64      `json:"deck_id"`
	TotalAttempts int        `json:"total_attempts"`
	BestScore     float64    `json:"best_score"`
	LastAttemptAt *time.Time `json:"last_attempt_at"`
	MasteryLevel  float64    `json:"mastery_level"`
}

// StreakBackup is one streaks row
type StreakBackup struct {
	UserID           int64      `json:"user_id"`
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	LastActivityDate *time.Time `json:"last_activity_date"`
}

// StudyPlanBackup is one study_plans row
type StudyPlanBackup struct {
	UserID          int64      `json:"user_id"`
	CardID          int64      `json:"card_id"`
	RepetitionCount int        `json:"repetition_count"`
	NextReviewAt    *time.Time `json:"next_review_at"`
	Difficulty      string     `json:"difficulty"`
}

// BackupService exports and imports the full database as JSON
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export writes a full backup document to w
func (s *BackupService) Export(w io.Writer) error {
	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
	}

	var err error
	if backup.Users, err = s.exportUsers(); err != nil {
		return err
	}
	if backup.Decks, err = s.exportDecks(); err != nil {
		return err
	}
	if backup.Cards, err = s.exportCards(); err != nil {
		return err
	}
	if backup.DeckStars, err = s.exportStars(); err != nil {
		return err
	}
	if backup.Bookmarks, err = s.exportBookmarks(); err != nil {
		return err
	}
	if backup.Comments, err = s.exportComments(); err != nil {
		return err
	}
	if backup.QuizSessions, err = s.exportSessions(); err != nil {
		return err
	}
	if backup.QuizAnswers, err = s.exportAnswers(); err != nil {
		return err
	}
	if backup.Progress, err = s.exportProgress(); err != nil {
		return err
	}
	if backup.Streaks, err = s.exportStreaks(); err != nil {
		return err
	}
	if backup.StudyPlans, err = s.exportStudyPlans(); err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported %d users, %d decks, %d cards, %d quiz sessions",
		len(backup.Users), len(backup.Decks), len(backup.Cards), len(backup.QuizSessions))
	return nil
}

// ExportToFile writes a full backup to the given path
func (s *BackupService) ExportToFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer f.Close()
	return s.Export(f)
}

func (s *BackupService) exportUsers() ([]UserBackup, error) {
	rows, err := s.db.Query(`
		SELECT id, email, COALESCE(password_hash, ''), COALESCE(google_id, ''), name,
			COALESCE(username, ''), username_set, COALESCE(bio, ''), COALESCE(avatar_url, ''),
			created_at, updated_at
		FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to export users: %w", err)
	}
	defer rows.Close()

	var users []UserBackup
	for rows.Next() {
		var u UserBackup
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.GoogleID, &u.Name,
			&u.Username, &u.UsernameSet, &u.Bio, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *BackupService) exportDecks() ([]DeckBackup, error) {
	rows, err := s.db.Query(`
		SELECT id, title, COALESCE(description, ''), user_id, is_public, COALESCE(tags, ''),
			created_at, updated_at
		FROM decks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to export decks: %w", err)
	}
	defer rows.Close()

	var decks []DeckBackup
	for rows.Next() {
		var d DeckBackup
		if err := rows.Scan(&d.ID, &d.Title, &d.Description, &d.UserID, &d.IsPublic,
			&d.Tags, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

func (s *BackupService) exportCards() ([]CardBackup, error) {
	rows, err := s.db.Query(`
		SELECT id, deck_id, question, question_type, COALESCE(options, ''),
			COALESCE(correct_answers, ''), COALESCE(explanation, ''), COALESCE(image_url, ''),
			COALESCE(tags, ''), created_at
		FROM cards ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to export cards: %w", err)
	}
	defer rows.Close()

	var cards []CardBackup
	for rows.Next() {
		var c CardBackup
		if err := rows.Scan(&c.ID, &c.DeckID, &c.Question, &c.QuestionType, &c.Options,
			&c.CorrectAnswers, &c.Explanation, &c.ImageURL, &c.Tags, &c.CreatedAt); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func (s *BackupService) exportStars() ([]DeckStarBackup, error) {
	rows, err := s.db.Query("SELECT deck_id, user_id, created_at FROM deck_stars ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to export deck stars: %w", err)
	}
	defer rows.Close()

	var stars []DeckStarBackup
	for rows.Next() {
		var st DeckStarBackup
		if err := rows.Scan(&st.DeckID, &st.UserID, &st.CreatedAt); err != nil {
			return nil, err
		}
		stars = append(stars, st)
	}
	return stars, rows.Err()
}

func (s *BackupService) exportBookmarks() ([]BookmarkBackup, error) {
	rows, err := s.db.Query("SELECT card_id, user_id, created_at FROM card_bookmarks ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to export bookmarks: %w", err)
	}
	defer rows.Close()

	var bookmarks []BookmarkBackup
	for rows.Next() {
		var b BookmarkBackup
		if err := rows.Scan(&b.CardID, &b.UserID, &b.CreatedAt); err != nil {
			return nil, err
		}
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, rows.Err()
}

func (s *BackupService) exportComments() ([]CommentBackup, error) {
	rows, err := s.db.Query("SELECT id, deck_id, user_id, content, created_at FROM deck_comments ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to export comments: %w", err)
	}
	defer rows.Close()

	var comments []CommentBackup
	for rows.Next() {
		var c CommentBackup
		if err := rows.Scan(&c.ID, &c.DeckID, &c.UserID, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *BackupService) exportSessions() ([]QuizSessionBackup, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, deck_id, mode, started_at, completed_at, score, total_questions
		FROM quiz_sessions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to export quiz sessions: %w", err)
	}
	defer rows.Close()

	var sessions []QuizSessionBackup
	for rows.Next() {
		var qs QuizSessionBackup
		if err := rows.Scan(&qs.ID, &qs.UserID, &qs.DeckID, &qs.Mode, &qs.StartedAt,
			&qs.CompletedAt, &qs.Score, &qs.TotalQuestions); err != nil {
			return nil, err
		}
		sessions = append(sessions, qs)
	}
	return sessions, rows.Err()
}

func (s *BackupService) exportAnswers() ([]QuizAnswerBackup, error) {
	rows, err := s.db.Query(`
		SELECT id, session_id, card_id, COALESCE(user_answers, ''), is_correct,
			COALESCE(difficulty_rating, ''), COALESCE(time_taken, 0)
		FROM quiz_answers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to export quiz answers: %w", err)
	}
	defer rows.Close()

	var answers []QuizAnswerBackup
	for rows.Next() {
		var a QuizAnswerBackup
		if err := rows.Scan(&a.ID, &a.SessionID, &a.CardID, &a.UserAnswers, &a.IsCorrect,
			&a.DifficultyRating, &a.TimeTaken); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

func (s *BackupService) exportProgress() ([]UserProgressBackup, error) {
	rows, err := s.db.Query(`
		SELECT user_id, deck_id, total_attempts, best_score, last_attempt_at, mastery_level
		FROM user_progress ORDER BY user_id, deck_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to export progress: %w", err)
	}
	defer rows.Close()

	var progress []UserProgressBackup
	for rows.Next() {
		var p UserProgressBackup
		if err := rows.Scan(&p.UserID, &p.DeckID, &p.TotalAttempts, &p.BestScore,
			&p.LastAttemptAt, &p.MasteryLevel); err != nil {
			return nil, err
		}
		progress = append(progress, p)
	}
	return progress, rows.Err()
}

func (s *BackupService) exportStreaks() ([]StreakBackup, error) {
	rows, err := s.db.Query(`
		SELECT user_id, current_streak, longest_streak, last_activity_date
		FROM streaks ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to export streaks: %w", err)
	}
	defer rows.Close()

	var streaks []StreakBackup
	for rows.Next() {
		var st StreakBackup
		if err := rows.Scan(&st.UserID, &st.CurrentStreak, &st.LongestStreak, &st.LastActivityDate); err != nil {
			return nil, err
		}
		streaks = append(streaks, st)
	}
	return streaks, rows.Err()
}

func (s *BackupService) exportStudyPlans() ([]StudyPlanBackup, error) {
	rows, err := s.db.Query(`
		SELECT user_id, card_id, repetition_count, next_review_at, COALESCE(difficulty, '')
		FROM study_plans ORDER BY user_id, card_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to export study plans: %w", err)
	}
	defer rows.Close()

	var plans []StudyPlanBackup
	for rows.Next() {
		var p StudyPlanBackup
		if err := rows.Scan(&p.UserID, &p.CardID, &p.RepetitionCount, &p.NextReviewAt, &p.Difficulty); err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// Import loads a backup document into the database. With clear set, all
// existing rows are deleted first; otherwise rows are inserted on top of
// whatever is present and conflicts fail the import.
func (s *BackupService) Import(r io.Reader, clear bool) error {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version == "" {
		return fmt.Errorf("backup file is missing a version")
	}

	if clear {
		if err := s.clearAll(); err != nil {
			return err
		}
	}

	for _, u := range backup.Users {
		_, err := s.db.Exec(`
			INSERT INTO users (id, email, password_hash, google_id, name, username, username_set, bio, avatar_url, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			u.ID, u.Email, u.PasswordHash, u.GoogleID, u.Name, u.Username, u.UsernameSet,
			u.Bio, u.AvatarURL, u.CreatedAt, u.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import user %d: %w", u.ID, err)
		}
	}

	for _, d := range backup.Decks {
		_, err := s.db.Exec(`
			INSERT INTO decks (id, title, description, user_id, is_public, tags, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			d.ID, d.Title, d.Description, d.UserID, d.IsPublic, d.Tags, d.CreatedAt, d.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import deck %d: %w", d.ID, err)
		}
	}

	for _, c := range backup.Cards {
		_, err := s.db.Exec(`
			INSERT INTO cards (id, deck_id, question, question_type, options, correct_answers, explanation, image_url, tags, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.DeckID, c.Question, c.QuestionType, c.Options, c.CorrectAnswers,
			c.Explanation, c.ImageURL, c.Tags, c.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import card %d: %w", c.ID, err)
		}
	}

	for _, st := range backup.DeckStars {
		_, err := s.db.Exec(
			"INSERT INTO deck_stars (deck_id, user_id, created_at) VALUES (?, ?, ?)",
			st.DeckID, st.UserID, st.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import deck star: %w", err)
		}
	}

	for _, b := range backup.Bookmarks {
		_, err := s.db.Exec(
			"INSERT INTO card_bookmarks (card_id, user_id, created_at) VALUES (?, ?, ?)",
			b.CardID, b.UserID, b.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import bookmark: %w", err)
		}
	}

	for _, c := range backup.Comments {
		_, err := s.db.Exec(
			"INSERT INTO deck_comments (id, deck_id, user_id, content, created_at) VALUES (?, ?, ?, ?, ?)",
			c.ID, c.DeckID, c.UserID, c.Content, c.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import comment %d: %w", c.ID, err)
		}
	}

	for _, qs := range backup.QuizSessions {
		_, err := s.db.Exec(`
			INSERT INTO quiz_sessions (id, user_id, deck_id, mode, started_at, completed_at, score, total_questions)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			qs.ID, qs.UserID, qs.DeckID, qs.Mode, qs.StartedAt, qs.CompletedAt, qs.Score, qs.TotalQuestions)
		if err != nil {
			return fmt.Errorf("failed to import quiz session %d: %w", qs.ID, err)
		}
	}

	for _, a := range backup.QuizAnswers {
		_, err := s.db.Exec(`
			INSERT INTO quiz_answers (id, session_id, card_id, user_answers, is_correct, difficulty_rating, time_taken)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.SessionID, a.CardID, a.UserAnswers, a.IsCorrect, a.DifficultyRating, a.TimeTaken)
		if err != nil {
			return fmt.Errorf("failed to import quiz answer %d: %w", a.ID, err)
		}
	}

	for _, p := range backup.Progress {
		_, err := s.db.Exec(`
			INSERT INTO user_progress (user_id, deck_id, total_attempts, best_score, last_attempt_at, mastery_level)
			VALUES (?, ?, ?, ?, ?, ?)`,
			p.UserID, p.DeckID, p.TotalAttempts, p.BestScore, p.LastAttemptAt, p.MasteryLevel)
		if err != nil {
			return fmt.Errorf("failed to import progress: %w", err)
		}
	}

	for _, st := range backup.Streaks {
		_, err := s.db.Exec(`
			INSERT INTO streaks (user_id, current_streak, longest_streak, last_activity_date)
			VALUES (?, ?, ?, ?)`,
			st.UserID, st.CurrentStreak, st.LongestStreak, st.LastActivityDate)
		if err != nil {
			return fmt.Errorf("failed to import streak: %w", err)
		}
	}

	for _, p := range backup.StudyPlans {
		_, err := s.db.Exec(`
			INSERT INTO study_plans (user_id, card_id, repetition_count, next_review_at, difficulty)
			VALUES (?, ?, ?, ?, ?)`,
			p.UserID, p.CardID, p.RepetitionCount, p.NextReviewAt, p.Difficulty)
		if err != nil {
			return fmt.Errorf("failed to import study plan: %w", err)
		}
	}

	log.Printf("Imported %d users, %d decks, %d cards, %d quiz sessions",
		len(backup.Users), len(backup.Decks), len(backup.Cards), len(backup.QuizSessions))
	return nil
}

// ImportFromFile loads a backup from the given path
func (s *BackupService) ImportFromFile(path string, clear bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()
	return s.Import(f, clear)
}

func (s *BackupService) clearAll() error {
	// Child tables first so foreign keys hold on engines without cascade
	tables := []string{
		"quiz_answers", "quiz_sessions", "study_plans", "user_progress",
		"daily_challenges", "activity_log", "streaks",
		"card_bookmarks", "deck_comments", "deck_stars", "cards", "decks", "users",
	}
	for _, table := range tables {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}
