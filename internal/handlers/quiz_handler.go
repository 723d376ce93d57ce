package handlers

import (
	"net/http"

	"magizhquiz/internal/models"
	"magizhquiz/internal/service"
)

// QuizHandler handles recorded quiz session endpoints
type QuizHandler struct {
	quizService *service.QuizService
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(quizService *service.QuizService) *QuizHandler {
	return &QuizHandler{quizService: quizService}
}

type startQuizRequest struct {
	DeckID int64  `json:"deck_id"`
	Mode   string `json:"mode"`
}

// Start handles POST /api/quiz/sessions
func (h *QuizHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startQuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, cards, err := h.quizService.StartSession(UserIDFromContext(r.Context()), req.DeckID, models.QuizMode(req.Mode))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"session": session,
		"cards":   cards,
	})
}

type submitAnswerRequest struct {
	CardID           int64    `json:"card_id"`
	UserAnswers      []string `json:"user_answers"`
	DifficultyRating string   `json:"difficulty_rating"`
	TimeTaken        int      `json:"time_taken"`
}

// SubmitAnswer handles POST /api/quiz/sessions/{id}/answers
func (h *QuizHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req submitAnswerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.UserAnswers) == 0 {
		writeError(w, http.StatusBadRequest, "user_answers is required")
		return
	}

	isCorrect, err := h.quizService.SubmitAnswer(
		UserIDFromContext(r.Context()), sessionID, req.CardID,
		req.UserAnswers, models.Difficulty(req.DifficultyRating), req.TimeTaken)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_correct": isCorrect})
}

// Complete handles POST /api/quiz/sessions/{id}/complete
func (h *QuizHandler) Complete(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	session, err := h.quizService.CompleteSession(UserIDFromContext(r.Context()), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// Get handles GET /api/quiz/sessions/{id}
func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	session, answers, err := h.quizService.GetSession(UserIDFromContext(r.Context()), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if answers == nil {
		answers = []models.QuizAnswer{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session": session,
		"answers": answers,
	})
}
