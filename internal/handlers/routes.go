package handlers

import "net/http"

// Handlers bundles everything the router mounts
type Handlers struct {
	Auth      *AuthHandler
	Deck      *DeckHandler
	Card      *CardHandler
	Study     *StudyHandler
	Quiz      *QuizHandler
	User      *UserHandler
	Analytics *AnalyticsHandler
	Transfer  *TransferHandler
}

// NewRouter builds the HTTP routing table. Auth-sensitive routes are
// wrapped per-route; logging and CORS wrap the whole mux.
func NewRouter(h *Handlers, mw *Middleware, frontendOrigin string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// auth
	mux.HandleFunc("POST /api/auth/register", mw.RateLimit(h.Auth.Register))
	mux.HandleFunc("POST /api/auth/login", mw.RateLimit(h.Auth.Login))
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)
	mux.HandleFunc("GET /api/auth/me", mw.RequireAuth(h.Auth.Me))
	mux.HandleFunc("POST /api/auth/complete-signup", mw.RequireAuth(h.Auth.CompleteSignup))
	mux.HandleFunc("POST /api/auth/demo-login", mw.RateLimit(h.Auth.DemoLogin))
	mux.HandleFunc("GET /api/auth/google/start", h.Auth.GoogleStart)
	mux.HandleFunc("GET /api/auth/google/callback", h.Auth.GoogleCallback)

	// decks
	mux.HandleFunc("GET /api/decks", mw.OptionalAuth(h.Deck.List))
	mux.HandleFunc("POST /api/decks", mw.RequireAuth(h.Deck.Create))
	mux.HandleFunc("GET /api/decks/starred", mw.RequireAuth(h.Deck.ListStarred))
	mux.HandleFunc("GET /api/decks/{id}", mw.OptionalAuth(h.Deck.Get))
	mux.HandleFunc("PUT /api/decks/{id}", mw.RequireAuth(h.Deck.Update))
	mux.HandleFunc("DELETE /api/decks/{id}", mw.RequireAuth(h.Deck.Delete))
	mux.HandleFunc("POST /api/decks/{id}/star", mw.RequireAuth(h.Deck.Star))
	mux.HandleFunc("DELETE /api/decks/{id}/star", mw.RequireAuth(h.Deck.Unstar))
	mux.HandleFunc("POST /api/decks/{id}/duplicate", mw.RequireAuth(h.Deck.Duplicate))
	mux.HandleFunc("GET /api/decks/{id}/comments", mw.OptionalAuth(h.Deck.ListComments))
	mux.HandleFunc("POST /api/decks/{id}/comments", mw.RequireAuth(h.Deck.AddComment))

	// cards
	mux.HandleFunc("GET /api/cards", mw.OptionalAuth(h.Card.ListByDeck))
	mux.HandleFunc("POST /api/cards", mw.RequireAuth(h.Card.Create))
	mux.HandleFunc("GET /api/cards/bookmarked", mw.RequireAuth(h.Card.ListBookmarked))
	mux.HandleFunc("GET /api/cards/due", mw.RequireAuth(h.Card.ListDue))
	mux.HandleFunc("PUT /api/cards/{id}", mw.RequireAuth(h.Card.Update))
	mux.HandleFunc("DELETE /api/cards/{id}", mw.RequireAuth(h.Card.Delete))
	mux.HandleFunc("POST /api/cards/{id}/bookmark", mw.RequireAuth(h.Card.Bookmark))
	mux.HandleFunc("DELETE /api/cards/{id}/bookmark", mw.RequireAuth(h.Card.Unbookmark))

	// study session host
	mux.HandleFunc("POST /api/study/start/{deckId}", mw.RequireAuth(h.Study.Start))
	mux.HandleFunc("GET /api/study/session", mw.RequireAuth(h.Study.Get))
	mux.HandleFunc("POST /api/study/select", mw.RequireAuth(h.Study.SelectAnswer))
	mux.HandleFunc("POST /api/study/submit", mw.RequireAuth(h.Study.Submit))
	mux.HandleFunc("POST /api/study/retry", mw.RequireAuth(h.Study.Retry))
	mux.HandleFunc("POST /api/study/advance", mw.RequireAuth(h.Study.Advance))
	mux.HandleFunc("POST /api/study/restart", mw.RequireAuth(h.Study.Restart))
	mux.HandleFunc("POST /api/study/exit", mw.RequireAuth(h.Study.Exit))

	// recorded quizzes
	mux.HandleFunc("POST /api/quiz/sessions", mw.RequireAuth(h.Quiz.Start))
	mux.HandleFunc("GET /api/quiz/sessions/{id}", mw.RequireAuth(h.Quiz.Get))
	mux.HandleFunc("POST /api/quiz/sessions/{id}/answers", mw.RequireAuth(h.Quiz.SubmitAnswer))
	mux.HandleFunc("POST /api/quiz/sessions/{id}/complete", mw.RequireAuth(h.Quiz.Complete))

	// analytics
	mux.HandleFunc("GET /api/analytics/dashboard", mw.RequireAuth(h.Analytics.Dashboard))
	mux.HandleFunc("GET /api/analytics/decks/{id}", mw.RequireAuth(h.Analytics.DeckStats))
	mux.HandleFunc("GET /api/analytics/sessions", mw.RequireAuth(h.Analytics.RecentSessions))
	mux.HandleFunc("GET /api/analytics/activity", mw.RequireAuth(h.Analytics.Activity))

	// users and gamification
	mux.HandleFunc("PUT /api/users/me", mw.RequireAuth(h.User.UpdateProfile))
	mux.HandleFunc("GET /api/users/me/streak", mw.RequireAuth(h.User.GetStreak))
	mux.HandleFunc("GET /api/users/me/daily-challenge", mw.RequireAuth(h.User.GetDailyChallenge))
	mux.HandleFunc("GET /api/users/me/achievements", mw.RequireAuth(h.User.GetAchievements))
	mux.HandleFunc("GET /api/users/leaderboard", h.User.Leaderboard)
	mux.HandleFunc("GET /api/users/{username}", mw.OptionalAuth(h.User.GetProfile))

	// import/export
	mux.HandleFunc("POST /api/import/csv/{deckId}", mw.RequireAuth(h.Transfer.ImportCSV))
	mux.HandleFunc("POST /api/import/deck", mw.RequireAuth(h.Transfer.ImportDeck))
	mux.HandleFunc("GET /api/import/template/csv", h.Transfer.CSVTemplate)
	mux.HandleFunc("GET /api/export/deck/{id}", mw.RequireAuth(h.Transfer.ExportDeck))

	return WithRequestLogging(WithCORS(frontendOrigin)(mux))
}
