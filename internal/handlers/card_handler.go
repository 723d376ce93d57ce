package handlers

import (
	"net/http"
	"strconv"

	"magizhquiz/internal/models"
	"magizhquiz/internal/service"
)

// CardHandler handles card endpoints
type CardHandler struct {
	cardService *service.CardService
	scheduler   *service.SpacedRepetitionService
}

// NewCardHandler creates a new card handler
func NewCardHandler(cardService *service.CardService, scheduler *service.SpacedRepetitionService) *CardHandler {
	return &CardHandler{cardService: cardService, scheduler: scheduler}
}

// ListByDeck handles GET /api/cards?deck={id}
func (h *CardHandler) ListByDeck(w http.ResponseWriter, r *http.Request) {
	deckID, err := strconv.ParseInt(r.URL.Query().Get("deck"), 10, 64)
	if err != nil || deckID <= 0 {
		writeError(w, http.StatusBadRequest, "deck query parameter is required")
		return
	}

	cards, err := h.cardService.ListDeckCards(deckID, UserIDFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if cards == nil {
		cards = []models.CardWithMeta{}
	}
	writeJSON(w, http.StatusOK, cards)
}

type cardRequest struct {
	DeckID         int64    `json:"deck_id"`
	Question       string   `json:"question"`
	QuestionType   string   `json:"question_type"`
	Options        []string `json:"options"`
	CorrectAnswers []string `json:"correct_answers"`
	Explanation    string   `json:"explanation"`
	ImageURL       string   `json:"image_url"`
	Tags           []string `json:"tags"`
}

func (req *cardRequest) toModel() *models.Card {
	return &models.Card{
		DeckID:         req.DeckID,
		Question:       req.Question,
		QuestionType:   models.QuestionType(req.QuestionType),
		Options:        req.Options,
		CorrectAnswers: req.CorrectAnswers,
		Explanation:    req.Explanation,
		ImageURL:       req.ImageURL,
		Tags:           req.Tags,
	}
}

// Create handles POST /api/cards
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	card, err := h.cardService.CreateCard(UserIDFromContext(r.Context()), req.toModel())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

// Update handles PUT /api/cards/{id}
func (h *CardHandler) Update(w http.ResponseWriter, r *http.Request) {
	cardID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req cardRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	card := req.toModel()
	card.ID = cardID
	updated, err := h.cardService.UpdateCard(UserIDFromContext(r.Context()), card)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/cards/{id}
func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	cardID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.cardService.DeleteCard(cardID, UserIDFromContext(r.Context())); err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "card deleted"})
}

// Bookmark handles POST /api/cards/{id}/bookmark
func (h *CardHandler) Bookmark(w http.ResponseWriter, r *http.Request) {
	cardID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.cardService.BookmarkCard(cardID, UserIDFromContext(r.Context())); err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "card bookmarked"})
}

// Unbookmark handles DELETE /api/cards/{id}/bookmark
func (h *CardHandler) Unbookmark(w http.ResponseWriter, r *http.Request) {
	cardID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.cardService.UnbookmarkCard(cardID, UserIDFromContext(r.Context())); err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "bookmark removed"})
}

// ListDue handles GET /api/cards/due: the user's cards due for spaced
// review, most overdue first
func (h *CardHandler) ListDue(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	cards, err := h.scheduler.DueCards(UserIDFromContext(r.Context()), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if cards == nil {
		cards = []models.Card{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cards": cards,
		"count": len(cards),
	})
}

// ListBookmarked handles GET /api/cards/bookmarked
func (h *CardHandler) ListBookmarked(w http.ResponseWriter, r *http.Request) {
	cards, err := h.cardService.ListBookmarkedCards(UserIDFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if cards == nil {
		cards = []models.Card{}
	}
	writeJSON(w, http.StatusOK, cards)
}
