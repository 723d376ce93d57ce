package handlers

import (
	"net/http"
	"strconv"

	"magizhquiz/internal/models"
	"magizhquiz/internal/service"
)

// DeckHandler handles deck endpoints
type DeckHandler struct {
	deckService *service.DeckService
}

// NewDeckHandler creates a new deck handler
func NewDeckHandler(deckService *service.DeckService) *DeckHandler {
	return &DeckHandler{deckService: deckService}
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

// List handles GET /api/decks
func (h *DeckHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.DeckFilter{
		Search:     q.Get("search"),
		Tag:        q.Get("tag"),
		PublicOnly: q.Get("public") == "true",
	}
	if owner := q.Get("owner"); owner != "" {
		if ownerID, err := strconv.ParseInt(owner, 10, 64); err == nil {
			filter.OwnerID = ownerID
		}
	}
	if limit := q.Get("limit"); limit != "" {
		filter.Limit, _ = strconv.Atoi(limit)
	}
	if offset := q.Get("offset"); offset != "" {
		filter.Offset, _ = strconv.Atoi(offset)
	}

	decks, err := h.deckService.ListDecks(filter, UserIDFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if decks == nil {
		decks = []models.DeckWithMeta{}
	}
	writeJSON(w, http.StatusOK, decks)
}

type deckRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	IsPublic    bool     `json:"is_public"`
	Tags        []string `json:"tags"`
}

// Create handles POST /api/decks
func (h *DeckHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req deckRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	deck, err := h.deckService.CreateDeck(UserIDFromContext(r.Context()), req.Title, req.Description, req.IsPublic, req.Tags)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, deck)
}

// Get handles GET /api/decks/{id}
func (h *DeckHandler) Get(w http.ResponseWriter, r *http.Request) {
	deckID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	deck, err := h.deckService.GetDeckForViewer(deckID, UserIDFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

// Update handles PUT /api/decks/{id}
func (h *DeckHandler) Update(w http.ResponseWriter, r *http.Request) {
	deckID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req deckRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	deck, err := h.deckService.UpdateDeck(deckID, UserIDFromContext(r.Context()), req.Title, req.Description, req.IsPublic, req.Tags)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

// Delete handles DELETE /api/decks/{id}
func (h *DeckHandler) Delete(w http.ResponseWriter, r *http.Request) {
	deckID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.deckService.DeleteDeck(deckID, UserIDFromContext(r.Context())); err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deck deleted"})
}

// Star handles POST /api/decks/{id}/star
func (h *DeckHandler) Star(w http.ResponseWriter, r *http.Request) {
	deckID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.deckService.StarDeck(deckID, UserIDFromContext(r.Context())); err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deck starred"})
}

// Unstar handles DELETE /api/decks/{id}/star
func (h *DeckHandler) Unstar(w http.ResponseWriter, r *http.Request) {
	deckID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.deckService.UnstarDeck(deckID, UserIDFromContext(r.Context())); err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "star removed"})
}

// Duplicate handles POST /api/decks/{id}/duplicate
func (h *DeckHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	deckID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	deck, err := h.deckService.DuplicateDeck(deckID, UserIDFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, deck)
}

// ListComments handles GET /api/decks/{id}/comments
func (h *DeckHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	deckID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	comments, err := h.deckService.ListComments(deckID, UserIDFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if comments == nil {
		comments = []models.DeckComment{}
	}
	writeJSON(w, http.StatusOK, comments)
}

type commentRequest struct {
	Content string `json:"content"`
}

// AddComment handles POST /api/decks/{id}/comments
func (h *DeckHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	deckID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comments, err := h.deckService.AddComment(deckID, UserIDFromContext(r.Context()), req.Content)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comments)
}

// ListStarred handles GET /api/decks/starred
func (h *DeckHandler) ListStarred(w http.ResponseWriter, r *http.Request) {
	decks, err := h.deckService.ListStarredDecks(UserIDFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if decks == nil {
		decks = []models.DeckWithMeta{}
	}
	writeJSON(w, http.StatusOK, decks)
}
