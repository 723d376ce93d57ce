package service

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"magizhquiz/internal/models"
	"magizhquiz/internal/repository"
	"magizhquiz/internal/validation"
)

var (
	ErrDeckNotFound    = errors.New("deck not found")
	ErrAccessDenied    = errors.New("access denied")
	ErrAlreadyStarred  = errors.New("deck already starred")
	ErrNotStarred      = errors.New("deck not starred")
	ErrCannotStarOwn   = errors.New("cannot star your own deck")
	ErrCommentNotFound = errors.New("comment not found")
)

// DeckService handles deck business logic, including visibility checks,
// stars and comments
type DeckService struct {
	deckRepo     *repository.DeckRepository
	cardRepo     *repository.CardRepository
	progressRepo *repository.ProgressRepository
}

// NewDeckService creates a new deck service
func NewDeckService(deckRepo *repository.DeckRepository, cardRepo *repository.CardRepository, progressRepo *repository.ProgressRepository) *DeckService {
	return &DeckService{
		deckRepo:     deckRepo,
		cardRepo:     cardRepo,
		progressRepo: progressRepo,
	}
}

// GetDeckForViewer returns a deck the viewer may see. Private decks are
// visible only to their owner.
func (s *DeckService) GetDeckForViewer(deckID, viewerID int64) (*models.Deck, error) {
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
	return deck, nil
}

// GetOwnedDeck returns a deck only if the user owns it
func (s *DeckService) GetOwnedDeck(deckID, userID int64) (*models.Deck, error) {
	deck, err := s.deckRepo.GetDeckByID(deckID)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, ErrDeckNotFound
	}
	if deck.UserID != userID {
		return nil, ErrAccessDenied
	}
	return deck, nil
}

// CreateDeck validates and creates a deck, logging the activity
func (s *DeckService) CreateDeck(userID int64, title, description string, isPublic bool, tags []string) (*models.Deck, error) {
	if err := validation.ValidateDeckTitle(title); err != nil {
		return nil, err
	}

	deck, err := s.deckRepo.CreateDeck(userID, title, description, isPublic, tags)
	if err != nil {
		return nil, err
	}

	if err := s.progressRepo.LogActivity(userID, models.ActionCreateDeck, "deck", deck.ID, nil); err != nil {
		return nil, fmt.Errorf("failed to log deck creation: %w", err)
	}
	return deck, nil
}

// UpdateDeck validates and updates a deck the user owns
func (s *DeckService) UpdateDeck(deckID, userID int64, title, description string, isPublic bool, tags []string) (*models.Deck, error) {
	if _, err := s.GetOwnedDeck(deckID, userID); err != nil {
		return nil, err
	}
	if err := validation.ValidateDeckTitle(title); err != nil {
		return nil, err
	}

	if err := s.deckRepo.UpdateDeck(deckID, title, description, isPublic, tags); err != nil {
		return nil, err
	}
	return s.deckRepo.GetDeckByID(deckID)
}

// DeleteDeck removes a deck the user owns
func (s *DeckService) DeleteDeck(deckID, userID int64) error {
	if _, err := s.GetOwnedDeck(deckID, userID); err != nil {
		return err
	}
	return s.deckRepo.DeleteDeck(deckID)
}

// ListDecks returns decks visible to the viewer with the given filters
func (s *DeckService) ListDecks(filter models.DeckFilter, viewerID int64) ([]models.DeckWithMeta, error) {
	return s.deckRepo.ListDecks(filter, viewerID)
}

// ListStarredDecks returns the decks the user has starred
func (s *DeckService) ListStarredDecks(userID int64) ([]models.DeckWithMeta, error) {
	return s.deckRepo.ListStarredDecks(userID)
}

// DuplicateDeck copies a visible deck and its cards into the user's
// collection. The copy is always private until the user publishes it.
func (s *DeckService) DuplicateDeck(deckID, userID int64) (*models.Deck, error) {
	source, err := s.GetDeckForViewer(deckID, userID)
	if err != nil {
		return nil, err
	}

	copyTitle := truncateTitle(source.Title + " (copy)")

	dup, err := s.deckRepo.CreateDeck(userID, copyTitle, source.Description, false, source.Tags)
	if err != nil {
		return nil, err
	}

	cards, err := s.cardRepo.ListCardsByDeck(deckID)
	if err != nil {
		return nil, err
	}
	for i := range cards {
		card := cards[i]
		card.ID = 0
		card.DeckID = dup.ID
		if _, err := s.cardRepo.CreateCard(&card); err != nil {
			return nil, fmt.Errorf("failed to copy card: %w", err)
		}
	}
	return dup, nil
}

// truncateTitle caps a generated deck title at the 200-character limit
// without splitting a multi-byte rune
func truncateTitle(title string) string {
	const maxRunes = 200
	if utf8.RuneCountInString(title) <= maxRunes {
		return title
	}
	return string([]rune(title)[:maxRunes])
}

// StarDeck stars a visible deck the user does not own
func (s *DeckService) StarDeck(deckID, userID int64) error {
	deck, err := s.GetDeckForViewer(deckID, userID)
	if err != nil {
		return err
	}
	if deck.UserID == userID {
		return ErrCannotStarOwn
	}

	starred, err := s.deckRepo.IsStarred(deckID, userID)
	if err != nil {
		return err
	}
	if starred {
		return ErrAlreadyStarred
	}

	if err := s.deckRepo.Star(deckID, userID); err != nil {
		return err
	}
	if err := s.progressRepo.LogActivity(userID, models.ActionStarDeck, "deck", deckID, nil); err != nil {
		return fmt.Errorf("failed to log star: %w", err)
	}
	return nil
}

// UnstarDeck removes the user's star from a deck
func (s *DeckService) UnstarDeck(deckID, userID int64) error {
	starred, err := s.deckRepo.IsStarred(deckID, userID)
	if err != nil {
		return err
	}
	if !starred {
		return ErrNotStarred
	}
	return s.deckRepo.Unstar(deckID, userID)
}

// AddComment validates and posts a comment on a visible deck
func (s *DeckService) AddComment(deckID, userID int64, content string) ([]models.DeckComment, error) {
	if _, err := s.GetDeckForViewer(deckID, userID); err != nil {
		return nil, err
	}
	if err := validation.ValidateComment(content); err != nil {
		return nil, err
	}

	if _, err := s.deckRepo.AddComment(deckID, userID, content); err != nil {
		return nil, err
	}
	return s.deckRepo.ListComments(deckID)
}

// ListComments returns the comments on a visible deck
func (s *DeckService) ListComments(deckID, viewerID int64) ([]models.DeckComment, error) {
	if _, err := s.GetDeckForViewer(deckID, viewerID); err != nil {
		return nil, err
	}
	return s.deckRepo.ListComments(deckID)
}
