package handlers

import (
	"net/http"
	"sync"
	"time"

	"magizhquiz/internal/models"
	"magizhquiz/internal/study"
)

// StudyCardProvider resolves the ordered card list a study session runs
// over. The deck must be visible to the user and non-empty.
type StudyCardProvider interface {
	StudyCards(deckID, userID int64) ([]models.Card, error)
}

// StudyHandler hosts one live study session per authenticated user. The
// map lock guards lookup and replacement; each entry carries its own
// lock so concurrent requests from the same user serialize on the
// session.
type StudyHandler struct {
	provider StudyCardProvider

	mu       sync.Mutex
	sessions map[int64]*studyEntry
}

type studyEntry struct {
	deckID     int64
	lastActive time.Time

	mu      sync.Mutex // held across every session operation and render
	session *study.Session
}

// NewStudyHandler creates a new study handler
func NewStudyHandler(provider StudyCardProvider) *StudyHandler {
	return &StudyHandler{
		provider: provider,
		sessions: make(map[int64]*studyEntry),
	}
}

// studyCardView is the current card as shown to the learner. Correct
// answers and explanation are withheld until feedback is visible.
type studyCardView struct {
	ID             int64               `json:"id"`
	Question       string              `json:"question"`
	QuestionType   models.QuestionType `json:"question_type"`
	Options        []string            `json:"options"`
	ImageURL       string              `json:"image_url,omitempty"`
	CorrectAnswers []string            `json:"correct_answers,omitempty"`
	Explanation    string              `json:"explanation,omitempty"`
}

// studyView is the session state rendered after every operation
type studyView struct {
	DeckID          int64         `json:"deck_id"`
	CardCount       int           `json:"card_count"`
	CurrentIndex    int           `json:"current_index"`
	Card            studyCardView `json:"card"`
	SelectedAnswers []string      `json:"selected_answers"`
	FeedbackVisible bool          `json:"feedback_visible"`
	LastCorrect     bool          `json:"last_correct"`
	Score           int           `json:"score"`
	ElapsedSeconds  int           `json:"elapsed_seconds"`
	Completed       bool          `json:"completed"`
}

func renderStudy(deckID int64, s *study.Session) studyView {
	card := s.CurrentCard()
	view := studyView{
		DeckID:       deckID,
		CardCount:    len(s.Cards),
		CurrentIndex: s.CurrentIndex,
		Card: studyCardView{
			ID:           card.ID,
			Question:     card.Question,
			QuestionType: card.QuestionType,
			Options:      card.Options,
			ImageURL:     card.ImageURL,
		},
		SelectedAnswers: append([]string{}, s.SelectedAnswers...),
		FeedbackVisible: s.FeedbackVisible,
		LastCorrect:     s.LastCorrect,
		Score:           s.Score,
		ElapsedSeconds:  int(s.Elapsed().Seconds()),
		Completed:       s.Completed,
	}
	if s.FeedbackVisible || s.Completed {
		view.Card.CorrectAnswers = card.CorrectAnswers
		view.Card.Explanation = card.Explanation
	}
	return view
}

// Start handles POST /api/study/start/{deckId}: begins a fresh session,
// replacing any session the user already has
func (h *StudyHandler) Start(w http.ResponseWriter, r *http.Request) {
	deckID, ok := pathID(w, r, "deckId")
	if !ok {
		return
	}
	userID := UserIDFromContext(r.Context())

	cards, err := h.provider.StudyCards(deckID, userID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	session, err := study.Start(cards)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	entry := &studyEntry{deckID: deckID, session: session, lastActive: time.Now()}
	h.mu.Lock()
	h.sessions[userID] = entry
	h.mu.Unlock()

	entry.mu.Lock()
	view := renderStudy(deckID, session)
	entry.mu.Unlock()
	writeJSON(w, http.StatusCreated, view)
}

// withSession looks up the caller's session, applies op to it and
// writes the resulting view. The entry lock is held from the operation
// through the render so concurrent requests cannot interleave on the
// session state.
func (h *StudyHandler) withSession(w http.ResponseWriter, r *http.Request, op func(*study.Session)) {
	entry, ok := h.entry(w, r)
	if !ok {
		return
	}

	entry.mu.Lock()
	if op != nil {
		op(entry.session)
	}
	view := renderStudy(entry.deckID, entry.session)
	entry.mu.Unlock()

	writeJSON(w, http.StatusOK, view)
}

// Get handles GET /api/study/session
func (h *StudyHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, nil)
}

type selectAnswerRequest struct {
	Answer string `json:"answer"`
}

// SelectAnswer handles POST /api/study/select
func (h *StudyHandler) SelectAnswer(w http.ResponseWriter, r *http.Request) {
	var req selectAnswerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Answer == "" {
		writeError(w, http.StatusBadRequest, "answer is required")
		return
	}

	h.withSession(w, r, func(s *study.Session) { s.SelectAnswer(req.Answer) })
}

// Submit handles POST /api/study/submit
func (h *StudyHandler) Submit(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *study.Session) { s.Submit() })
}

// Retry handles POST /api/study/retry
func (h *StudyHandler) Retry(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *study.Session) { s.Retry() })
}

// Advance handles POST /api/study/advance
func (h *StudyHandler) Advance(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *study.Session) { s.Advance() })
}

// Restart handles POST /api/study/restart
func (h *StudyHandler) Restart(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *study.Session) { s.Restart() })
}

// Exit handles POST /api/study/exit: discards the session
func (h *StudyHandler) Exit(w http.ResponseWriter, r *http.Request) {
	userID := UserIDFromContext(r.Context())
	h.mu.Lock()
	delete(h.sessions, userID)
	h.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"message": "session ended"})
}

func (h *StudyHandler) entry(w http.ResponseWriter, r *http.Request) (*studyEntry, bool) {
	userID := UserIDFromContext(r.Context())
	h.mu.Lock()
	entry, exists := h.sessions[userID]
	if exists {
		entry.lastActive = time.Now()
	}
	h.mu.Unlock()

	if !exists {
		writeError(w, http.StatusNotFound, "no active study session")
		return nil, false
	}
	return entry, true
}

// CleanupStale drops sessions idle for longer than maxIdle. Called
// periodically from the server's background loop.
func (h *StudyHandler) CleanupStale(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	h.mu.Lock()
	defer h.mu.Unlock()

	removed := 0
	for userID, entry := range h.sessions {
		if entry.lastActive.Before(cutoff) {
			delete(h.sessions, userID)
			removed++
		}
	}
	return removed
}
