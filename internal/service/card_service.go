package service

import (
	"errors"
	"fmt"

	"magizhquiz/internal/models"
	"magizhquiz/internal/repository"
	"magizhquiz/internal/validation"
)

var (
	ErrCardNotFound      = errors.New("card not found")
	ErrAlreadyBookmarked = errors.New("card already bookmarked")
	ErrNotBookmarked     = errors.New("card not bookmarked")
	ErrDeckFull          = errors.New("deck has reached the card limit")
)

// maxCardsPerDeck caps how many cards a single deck may hold
const maxCardsPerDeck = 500

// CardService handles card business logic and bookmarks
type CardService struct {
	cardRepo     *repository.CardRepository
	deckRepo     *repository.DeckRepository
	progressRepo *repository.ProgressRepository
}

// NewCardService creates a new card service
func NewCardService(cardRepo *repository.CardRepository, deckRepo *repository.DeckRepository, progressRepo *repository.ProgressRepository) *CardService {
	return &CardService{
		cardRepo:     cardRepo,
		deckRepo:     deckRepo,
		progressRepo: progressRepo,
	}
}

// getVisibleCard returns a card the viewer may see, via its deck's visibility
func (s *CardService) getVisibleCard(cardID, viewerID int64) (*models.Card, error) {
	card, err := s.cardRepo.GetCardByID(cardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrCardNotFound
	}

	deck, err := s.deckRepo.GetDeckByID(card.DeckID)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, ErrCardNotFound
	}
	if !deck.IsPublic && deck.UserID != viewerID {
		return nil, ErrAccessDenied
	}
	return card, nil
}

// getOwnedCard returns a card only if the user owns its deck
func (s *CardService) getOwnedCard(cardID, userID int64) (*models.Card, error) {
	card, err := s.cardRepo.GetCardByID(cardID)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, ErrCardNotFound
	}

	deck, err := s.deckRepo.GetDeckByID(card.DeckID)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, ErrCardNotFound
	}
	if deck.UserID != userID {
		return nil, ErrAccessDenied
	}
	return card, nil
}

// CreateCard validates and adds a card to a deck the user owns
func (s *CardService) CreateCard(userID int64, card *models.Card) (*models.Card, error) {
	deck, err := s.deckRepo.GetDeckByID(card.DeckID)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, ErrDeckNotFound
	}
	if deck.UserID != userID {
		return nil, ErrAccessDenied
	}

	if err := validation.ValidateCard(card.QuestionType, card.Question, card.Options, card.CorrectAnswers); err != nil {
		return nil, err
	}

	count, err := s.cardRepo.CountCardsByDeck(card.DeckID)
	if err != nil {
		return nil, err
	}
	if count >= maxCardsPerDeck {
		return nil, ErrDeckFull
	}

	created, err := s.cardRepo.CreateCard(card)
	if err != nil {
		return nil, err
	}

	if err := s.progressRepo.LogActivity(userID, models.ActionCreateCard, "card", created.ID, nil); err != nil {
		return nil, fmt.Errorf("failed to log card creation: %w", err)
	}
	return created, nil
}

// UpdateCard validates and updates a card in a deck the user owns
func (s *CardService) UpdateCard(userID int64, card *models.Card) (*models.Card, error) {
	existing, err := s.getOwnedCard(card.ID, userID)
	if err != nil {
		return nil, err
	}

	if err := validation.ValidateCard(card.QuestionType, card.Question, card.Options, card.CorrectAnswers); err != nil {
		return nil, err
	}

	card.DeckID = existing.DeckID
	if err := s.cardRepo.UpdateCard(card); err != nil {
		return nil, err
	}
	return s.cardRepo.GetCardByID(card.ID)
}

// DeleteCard removes a card from a deck the user owns
func (s *CardService) DeleteCard(cardID, userID int64) error {
	if _, err := s.getOwnedCard(cardID, userID); err != nil {
		return err
	}
	return s.cardRepo.DeleteCard(cardID)
}

// ListDeckCards returns a visible deck's cards with the viewer's bookmarks
func (s *CardService) ListDeckCards(deckID, viewerID int64) ([]models.CardWithMeta, error) {
	deck, err := s.deckRepo.GetDeckByID(deckID)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, ErrDeckNotFound
	}
	if !deck.IsPublic && deck.UserID != viewerID {
		return nil, ErrAccessDenied
	}

	cards, err := s.cardRepo.ListCardsByDeck(deckID)
	if err != nil {
		return nil, err
	}

	var bookmarked map[int64]bool
	if viewerID != 0 {
		bookmarked, err = s.cardRepo.BookmarkedIDsForDeck(deckID, viewerID)
		if err != nil {
			return nil, err
		}
	}

	result := make([]models.CardWithMeta, 0, len(cards))
	for _, card := range cards {
		result = append(result, models.CardWithMeta{
			Card:         card,
			IsBookmarked: bookmarked[card.ID],
		})
	}
	return result, nil
}

// StudyCards returns a visible deck's cards in their stored order, for
// hosting an in-memory study session
func (s *CardService) StudyCards(deckID, userID int64) ([]models.Card, error) {
	deck, err := s.deckRepo.GetDeckByID(deckID)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, ErrDeckNotFound
	}
	if !deck.IsPublic && deck.UserID != userID {
		return nil, ErrAccessDenied
	}
	return s.cardRepo.ListCardsByDeck(deckID)
}

// BookmarkCard bookmarks a visible card
func (s *CardService) BookmarkCard(cardID, userID int64) error {
	if _, err := s.getVisibleCard(cardID, userID); err != nil {
		return err
	}

	bookmarked, err := s.cardRepo.IsBookmarked(cardID, userID)
	if err != nil {
		return err
	}
	if bookmarked {
		return ErrAlreadyBookmarked
	}
	return s.cardRepo.Bookmark(cardID, userID)
}

// UnbookmarkCard removes the user's bookmark from a card
func (s *CardService) UnbookmarkCard(cardID, userID int64) error {
	bookmarked, err := s.cardRepo.IsBookmarked(cardID, userID)
	if err != nil {
		return err
	}
	if !bookmarked {
		return ErrNotBookmarked
	}
	return s.cardRepo.Unbookmark(cardID, userID)
}

// ListBookmarkedCards returns the user's bookmarked cards
func (s *CardService) ListBookmarkedCards(userID int64) ([]models.Card, error) {
	return s.cardRepo.ListBookmarkedCards(userID)
}
