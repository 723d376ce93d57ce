package repository

import (
	"database/sql"
	"fmt"
	"time"

	"magizhquiz/internal/database"
	"magizhquiz/internal/models"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, COALESCE(password_hash, ''), COALESCE(google_id, ''), name,
	COALESCE(username, ''), username_set, COALESCE(bio, ''), COALESCE(avatar_url, ''), created_at, updated_at`

// CreateUser inserts a new password-based user
func (r *UserRepository) CreateUser(email, passwordHash, name string) (*models.User, error) {
	query := `
		INSERT INTO users (email, password_hash, name, username_set)
		VALUES (?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, email, passwordHash, name, false)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return r.GetUserByID(id)
}

// CreateOAuthUser inserts a new user from a Google OAuth profile
func (r *UserRepository) CreateOAuthUser(email, googleID, name, avatarURL string) (*models.User, error) {
	query := `
		INSERT INTO users (email, google_id, name, avatar_url, username_set)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, email, googleID, name, avatarURL, false)
	if err != nil {
		return nil, fmt.Errorf("failed to create oauth user: %w", err)
	}
	return r.GetUserByID(id)
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(id int64) (*models.User, error) {
	return r.getUser("SELECT "+userColumns+" FROM users WHERE id = ?", id)
}

// GetUserByEmail retrieves a user by email address
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	return r.getUser("SELECT "+userColumns+" FROM users WHERE email = ?", email)
}

// GetUserByUsername retrieves a user by username
func (r *UserRepository) GetUserByUsername(username string) (*models.User, error) {
	return r.getUser("SELECT "+userColumns+" FROM users WHERE username = ?", username)
}

// GetUserByGoogleID retrieves a user by their Google subject identifier
func (r *UserRepository) GetUserByGoogleID(googleID string) (*models.User, error) {
	return r.getUser("SELECT "+userColumns+" FROM users WHERE google_id = ?", googleID)
}

func (r *UserRepository) getUser(query string, arg interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRow(query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.GoogleID,
		&user.Name,
		&user.Username,
		&user.UsernameSet,
		&user.Bio,
		&user.AvatarURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// SetUsername completes signup by assigning the chosen username
func (r *UserRepository) SetUsername(id int64, username string) error {
	query := `
		UPDATE users SET username = ?, username_set = ?, updated_at = ?
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, username, true, time.Now(), id); err != nil {
		return fmt.Errorf("failed to set username: %w", err)
	}
	return nil
}

// LinkGoogleID attaches a Google subject identifier to an existing
// account so later Google logins resolve by google_id directly
func (r *UserRepository) LinkGoogleID(id int64, googleID string) error {
	query := `
		UPDATE users SET google_id = ?, updated_at = ?
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, googleID, time.Now(), id); err != nil {
		return fmt.Errorf("failed to link google id: %w", err)
	}
	return nil
}

// UpdateProfile updates the mutable profile fields
func (r *UserRepository) UpdateProfile(id int64, name, bio, avatarURL string) error {
	query := `
		UPDATE users SET name = ?, bio = ?, avatar_url = ?, updated_at = ?
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, name, bio, avatarURL, time.Now(), id); err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}
