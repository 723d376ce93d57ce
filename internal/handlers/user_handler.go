package handlers

import (
	"net/http"
	"strconv"

	"magizhquiz/internal/models"
	"magizhquiz/internal/repository"
	"magizhquiz/internal/service"
)

// UserHandler handles public profile and account endpoints
type UserHandler struct {
	userRepo     *repository.UserRepository
	deckService  *service.DeckService
	gamification *service.GamificationService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userRepo *repository.UserRepository, deckService *service.DeckService, gamification *service.GamificationService) *UserHandler {
	return &UserHandler{
		userRepo:     userRepo,
		deckService:  deckService,
		gamification: gamification,
	}
}

// GetProfile handles GET /api/users/{username}: the public profile with
// the user's public decks and achievements
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	user, err := h.userRepo.GetUserByUsername(username)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	decks, err := h.deckService.ListDecks(models.DeckFilter{
		OwnerID:    user.ID,
		PublicOnly: true,
	}, UserIDFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if decks == nil {
		decks = []models.DeckWithMeta{}
	}

	achievements, err := h.gamification.Achievements(user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"user":         user.Public(),
		"decks":        decks,
		"achievements": achievements,
	})
}

type updateProfileRequest struct {
	Name      string `json:"name"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
}

// UpdateProfile handles PUT /api/users/me
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := UserIDFromContext(r.Context())
	if err := h.userRepo.UpdateProfile(userID, req.Name, req.Bio, req.AvatarURL); err != nil {
		respondServiceError(w, err)
		return
	}

	user, err := h.userRepo.GetUserByID(userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// GetStreak handles GET /api/users/me/streak
func (h *UserHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	streak, err := h.gamification.GetStreak(UserIDFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, streak)
}

// GetDailyChallenge handles GET /api/users/me/daily-challenge
func (h *UserHandler) GetDailyChallenge(w http.ResponseWriter, r *http.Request) {
	challenge, err := h.gamification.TodaysChallenge(UserIDFromContext(r.Context()))
	if err != nil {
		if err == service.ErrNoChallengeDeck {
			writeJSON(w, http.StatusOK, nil)
			return
		}
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, challenge)
}

// GetAchievements handles GET /api/users/me/achievements
func (h *UserHandler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	achievements, err := h.gamification.Achievements(UserIDFromContext(r.Context()))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, achievements)
}

// Leaderboard handles GET /api/users/leaderboard
func (h *UserHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.gamification.Leaderboard(limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
