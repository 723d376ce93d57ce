package repository

import (
	"database/sql"
	"fmt"

	"magizhquiz/internal/database"
	"magizhquiz/internal/models"
)

// CardRepository handles database operations for cards and bookmarks
type CardRepository struct {
	db *database.DB
}

// NewCardRepository creates a new card repository
func NewCardRepository(db *database.DB) *CardRepository {
	return &CardRepository{db: db}
}

const cardColumns = `id, deck_id, question, question_type, COALESCE(options, ''),
	COALESCE(correct_answers, ''), COALESCE(explanation, ''), COALESCE(image_url, ''),
	COALESCE(tags, ''), created_at`

// CreateCard inserts a new card into a deck
func (r *CardRepository) CreateCard(card *models.Card) (*models.Card, error) {
	optionsJSON, err := marshalStrings(card.Options)
	if err != nil {
		return nil, err
	}
	answersJSON, err := marshalStrings(card.CorrectAnswers)
	if err != nil {
		return nil, err
	}
	tagsJSON, err := marshalStrings(card.Tags)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO cards (deck_id, question, question_type, options, correct_answers, explanation, image_url, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		card.DeckID, card.Question, string(card.QuestionType),
		optionsJSON, answersJSON, card.Explanation, card.ImageURL, tagsJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}
	return r.GetCardByID(id)
}

// GetCardByID retrieves a card by ID
func (r *CardRepository) GetCardByID(id int64) (*models.Card, error) {
	query := "SELECT " + cardColumns + " FROM cards WHERE id = ?"
	card, err := r.scanCard(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}
	return card, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *CardRepository) scanCard(row rowScanner) (*models.Card, error) {
	card := &models.Card{}
	var questionType string
	var optionsJSON, answersJSON, tagsJSON string
	err := row.Scan(
		&card.ID,
		&card.DeckID,
		&card.Question,
		&questionType,
		&optionsJSON,
		&answersJSON,
		&card.Explanation,
		&card.ImageURL,
		&tagsJSON,
		&card.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	card.QuestionType = models.QuestionType(questionType)
	if card.Options, err = unmarshalStrings(optionsJSON); err != nil {
		return nil, err
	}
	if card.CorrectAnswers, err = unmarshalStrings(answersJSON); err != nil {
		return nil, err
	}
	if card.Tags, err = unmarshalStrings(tagsJSON); err != nil {
		return nil, err
	}
	return card, nil
}

// ListCardsByDeck returns a deck's cards in creation order
func (r *CardRepository) ListCardsByDeck(deckID int64) ([]models.Card, error) {
	query := "SELECT " + cardColumns + " FROM cards WHERE deck_id = ? ORDER BY id ASC"
	rows, err := r.db.Query(query, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		card, err := r.scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, *card)
	}
	return cards, rows.Err()
}

// ListCardsByIDs returns the cards with the given IDs. Cards are returned
// in ID order, not input order; missing IDs are silently skipped.
func (r *CardRepository) ListCardsByIDs(ids []int64) ([]models.Card, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := "SELECT " + cardColumns + " FROM cards WHERE id IN ("
	args := make([]interface{}, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			query += ", "
		}
		query += "?"
		args = append(args, id)
	}
	query += ") ORDER BY id ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards by ids: %w", err)
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		card, err := r.scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, *card)
	}
	return cards, rows.Err()
}

// UpdateCard updates the mutable card fields
func (r *CardRepository) UpdateCard(card *models.Card) error {
	optionsJSON, err := marshalStrings(card.Options)
	if err != nil {
		return err
	}
	answersJSON, err := marshalStrings(card.CorrectAnswers)
	if err != nil {
		return err
	}
	tagsJSON, err := marshalStrings(card.Tags)
	if err != nil {
		return err
	}

	query := `
		UPDATE cards
		SET question = ?, question_type = ?, options = ?, correct_answers = ?,
			explanation = ?, image_url = ?, tags = ?
		WHERE id = ?
	`
	_, err = r.db.Exec(query,
		card.Question, string(card.QuestionType), optionsJSON, answersJSON,
		card.Explanation, card.ImageURL, tagsJSON, card.ID)
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}
	return nil
}

// DeleteCard removes a card; bookmarks and study plans cascade
func (r *CardRepository) DeleteCard(id int64) error {
	if _, err := r.db.Exec("DELETE FROM cards WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return nil
}

// CountCardsByDeck returns how many cards a deck has
func (r *CardRepository) CountCardsByDeck(deckID int64) (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM cards WHERE deck_id = ?", deckID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count cards: %w", err)
	}
	return count, nil
}

// IsBookmarked reports whether the user has bookmarked the card
func (r *CardRepository) IsBookmarked(cardID, userID int64) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM card_bookmarks WHERE card_id = ? AND user_id = ?"
	if err := r.db.QueryRow(query, cardID, userID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check bookmark: %w", err)
	}
	return count > 0, nil
}

// Bookmark records a bookmark for the card
func (r *CardRepository) Bookmark(cardID, userID int64) error {
	query := "INSERT INTO card_bookmarks (card_id, user_id) VALUES (?, ?)"
	if _, err := r.db.Exec(query, cardID, userID); err != nil {
		return fmt.Errorf("failed to bookmark card: %w", err)
	}
	return nil
}

// Unbookmark removes a bookmark for the card
func (r *CardRepository) Unbookmark(cardID, userID int64) error {
	query := "DELETE FROM card_bookmarks WHERE card_id = ? AND user_id = ?"
	if _, err := r.db.Exec(query, cardID, userID); err != nil {
		return fmt.Errorf("failed to unbookmark card: %w", err)
	}
	return nil
}

// ListBookmarkedCards returns the user's bookmarked cards, newest bookmark first
func (r *CardRepository) ListBookmarkedCards(userID int64) ([]models.Card, error) {
	query := `
		SELECT c.id, c.deck_id, c.question, c.question_type, COALESCE(c.options, ''),
			COALESCE(c.correct_answers, ''), COALESCE(c.explanation, ''), COALESCE(c.image_url, ''),
			COALESCE(c.tags, ''), c.created_at
		FROM card_bookmarks b
		JOIN cards c ON c.id = b.card_id
		WHERE b.user_id = ?
		ORDER BY b.created_at DESC
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarked cards: %w", err)
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		card, err := r.scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, *card)
	}
	return cards, rows.Err()
}

// BookmarkedIDsForDeck returns which of a deck's cards the user has bookmarked
func (r *CardRepository) BookmarkedIDsForDeck(deckID, userID int64) (map[int64]bool, error) {
	query := `
		SELECT b.card_id
		FROM card_bookmarks b
		JOIN cards c ON c.id = b.card_id
		WHERE c.deck_id = ? AND b.user_id = ?
	`
	rows, err := r.db.Query(query, deckID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}
