package repository

import (
	"database/sql"
	"fmt"
	"time"

	"magizhquiz/internal/database"
	"magizhquiz/internal/models"
)

// DeckRepository handles database operations for decks, stars and comments
type DeckRepository struct {
	db *database.DB
}

// NewDeckRepository creates a new deck repository
func NewDeckRepository(db *database.DB) *DeckRepository {
	return &DeckRepository{db: db}
}

// CreateDeck inserts a new deck
func (r *DeckRepository) CreateDeck(userID int64, title, description string, isPublic bool, tags []string) (*models.Deck, error) {
	tagsJSON, err := marshalStrings(tags)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO decks (title, description, user_id, is_public, tags)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, title, description, userID, isPublic, tagsJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to create deck: %w", err)
	}
	return r.GetDeckByID(id)
}

// GetDeckByID retrieves a deck by ID
func (r *DeckRepository) GetDeckByID(id int64) (*models.Deck, error) {
	query := `
		SELECT id, title, COALESCE(description, ''), user_id, is_public, COALESCE(tags, ''), created_at, updated_at
		FROM decks
		WHERE id = ?
	`
	deck := &models.Deck{}
	var tagsJSON string
	err := r.db.QueryRow(query, id).Scan(
		&deck.ID,
		&deck.Title,
		&deck.Description,
		&deck.UserID,
		&deck.IsPublic,
		&tagsJSON,
		&deck.CreatedAt,
		&deck.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}

	if deck.Tags, err = unmarshalStrings(tagsJSON); err != nil {
		return nil, err
	}
	return deck, nil
}

// ListDecks returns decks visible to the viewer, newest first. A viewerID
// of 0 means anonymous: only public decks are returned. Filters are
// applied on top of visibility.
func (r *DeckRepository) ListDecks(filter models.DeckFilter, viewerID int64) ([]models.DeckWithMeta, error) {
	query := `
		SELECT d.id, d.title, COALESCE(d.description, ''), d.user_id, d.is_public, COALESCE(d.tags, ''),
			d.created_at, d.updated_at,
			u.id, u.name, COALESCE(u.username, ''), COALESCE(u.bio, ''), COALESCE(u.avatar_url, ''), u.created_at,
			(SELECT COUNT(*) FROM cards c WHERE c.deck_id = d.id),
			(SELECT COUNT(*) FROM deck_stars s WHERE s.deck_id = d.id),
			EXISTS (SELECT 1 FROM deck_stars s WHERE s.deck_id = d.id AND s.user_id = ?)
		FROM decks d
		JOIN users u ON u.id = d.user_id
		WHERE 1=1
	`
	args := []interface{}{viewerID}

	if filter.PublicOnly || viewerID == 0 {
		query += " AND d.is_public = ?"
		args = append(args, true)
	} else {
		query += " AND (d.is_public = ? OR d.user_id = ?)"
		args = append(args, true, viewerID)
	}

	if filter.OwnerID != 0 {
		query += " AND d.user_id = ?"
		args = append(args, filter.OwnerID)
	}

	if filter.Search != "" {
		query += " AND (d.title LIKE ? OR d.description LIKE ?)"
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}

	if filter.Tag != "" {
		// Tags are a JSON list column; match the quoted element
		query += " AND d.tags LIKE ?"
		args = append(args, `%"`+filter.Tag+`"%`)
	}

	query += " ORDER BY d.created_at DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	return r.scanDeckRows(query, args...)
}

// ListStarredDecks returns the decks a user has starred, newest star first
func (r *DeckRepository) ListStarredDecks(userID int64) ([]models.DeckWithMeta, error) {
	query := `
		SELECT d.id, d.title, COALESCE(d.description, ''), d.user_id, d.is_public, COALESCE(d.tags, ''),
			d.created_at, d.updated_at,
			u.id, u.name, COALESCE(u.username, ''), COALESCE(u.bio, ''), COALESCE(u.avatar_url, ''), u.created_at,
			(SELECT COUNT(*) FROM cards c WHERE c.deck_id = d.id),
			(SELECT COUNT(*) FROM deck_stars s WHERE s.deck_id = d.id),
			1
		FROM deck_stars star
		JOIN decks d ON d.id = star.deck_id
		JOIN users u ON u.id = d.user_id
		WHERE star.user_id = ?
		ORDER BY star.created_at DESC
	`
	return r.scanDeckRows(query, userID)
}

func (r *DeckRepository) scanDeckRows(query string, args ...interface{}) ([]models.DeckWithMeta, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer rows.Close()

	var decks []models.DeckWithMeta
	for rows.Next() {
		var d models.DeckWithMeta
		var tagsJSON string
		err := rows.Scan(
			&d.ID, &d.Title, &d.Description, &d.UserID, &d.IsPublic, &tagsJSON,
			&d.CreatedAt, &d.UpdatedAt,
			&d.Owner.ID, &d.Owner.Name, &d.Owner.Username, &d.Owner.Bio, &d.Owner.AvatarURL, &d.Owner.CreatedAt,
			&d.CardCount, &d.StarCount, &d.IsStarred,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		if d.Tags, err = unmarshalStrings(tagsJSON); err != nil {
			return nil, err
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

// UpdateDeck updates the mutable deck fields
func (r *DeckRepository) UpdateDeck(id int64, title, description string, isPublic bool, tags []string) error {
	tagsJSON, err := marshalStrings(tags)
	if err != nil {
		return err
	}

	query := `
		UPDATE decks SET title = ?, description = ?, is_public = ?, tags = ?, updated_at = ?
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, title, description, isPublic, tagsJSON, time.Now(), id); err != nil {
		return fmt.Errorf("failed to update deck: %w", err)
	}
	return nil
}

// DeleteDeck removes a deck; cards, stars and comments cascade
func (r *DeckRepository) DeleteDeck(id int64) error {
	if _, err := r.db.Exec("DELETE FROM decks WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	return nil
}

// IsStarred reports whether the user has starred the deck
func (r *DeckRepository) IsStarred(deckID, userID int64) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM deck_stars WHERE deck_id = ? AND user_id = ?"
	if err := r.db.QueryRow(query, deckID, userID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check star: %w", err)
	}
	return count > 0, nil
}

// Star records a star for the deck
func (r *DeckRepository) Star(deckID, userID int64) error {
	query := "INSERT INTO deck_stars (deck_id, user_id) VALUES (?, ?)"
	if _, err := r.db.Exec(query, deckID, userID); err != nil {
		return fmt.Errorf("failed to star deck: %w", err)
	}
	return nil
}

// Unstar removes a star for the deck
func (r *DeckRepository) Unstar(deckID, userID int64) error {
	query := "DELETE FROM deck_stars WHERE deck_id = ? AND user_id = ?"
	if _, err := r.db.Exec(query, deckID, userID); err != nil {
		return fmt.Errorf("failed to unstar deck: %w", err)
	}
	return nil
}

// CountUserDecks returns how many decks a user owns
func (r *DeckRepository) CountUserDecks(userID int64) (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM decks WHERE user_id = ?", userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count decks: %w", err)
	}
	return count, nil
}

// ListPublicDeckIDs returns the IDs of public decks, capped at limit.
// Used by the daily-challenge picker.
func (r *DeckRepository) ListPublicDeckIDs(preferredOwner int64, limit int) ([]int64, error) {
	query := `
		SELECT id FROM decks
		WHERE is_public = ?
		ORDER BY CASE WHEN user_id = ? THEN 0 ELSE 1 END, created_at DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, true, preferredOwner, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list public decks: %w", err)
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

// AddComment inserts a deck comment
func (r *DeckRepository) AddComment(deckID, userID int64, content string) (int64, error) {
	query := "INSERT INTO deck_comments (deck_id, user_id, content) VALUES (?, ?, ?)"
	id, err := r.db.ExecReturningID(query, deckID, userID, content)
	if err != nil {
		return 0, fmt.Errorf("failed to add comment: %w", err)
	}
	return id, nil
}

// ListComments returns a deck's comments, oldest first
func (r *DeckRepository) ListComments(deckID int64) ([]models.DeckComment, error) {
	query := `
		SELECT c.id, c.deck_id, c.user_id, c.content, c.created_at,
			u.id, u.name, COALESCE(u.username, ''), COALESCE(u.bio, ''), COALESCE(u.avatar_url, ''), u.created_at
		FROM deck_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.deck_id = ?
		ORDER BY c.created_at ASC
	`
	rows, err := r.db.Query(query, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []models.DeckComment
	for rows.Next() {
		var c models.DeckComment
		err := rows.Scan(
			&c.ID, &c.DeckID, &c.UserID, &c.Content, &c.CreatedAt,
			&c.User.ID, &c.User.Name, &c.User.Username, &c.User.Bio, &c.User.AvatarURL, &c.User.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
