package handlers

import (
	"net/http"
	"strconv"

	"magizhquiz/internal/models"
	"magizhquiz/internal/service"
)

// AnalyticsHandler handles dashboard and statistics endpoints
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Dashboard handles GET /api/analytics/dashboard
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.analytics.Dashboard(UserIDFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// DeckStats handles GET /api/analytics/decks/{id}
func (h *AnalyticsHandler) DeckStats(w http.ResponseWriter, r *http.Request) {
	deckID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	userID := UserIDFromContext(r.Context())
	stats, err := h.analytics.DeckStats(userID, deckID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	progress, err := h.analytics.Progress(userID, deckID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"stats":    stats,
		"progress": progress,
	})
}

// RecentSessions handles GET /api/analytics/sessions
func (h *AnalyticsHandler) RecentSessions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	sessions, err := h.analytics.RecentSessions(UserIDFromContext(r.Context()), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if sessions == nil {
		sessions = []models.QuizSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

// Activity handles GET /api/analytics/activity
func (h *AnalyticsHandler) Activity(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.analytics.Activity(UserIDFromContext(r.Context()), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []models.ActivityEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
