package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"magizhquiz/internal/models"
	"magizhquiz/internal/service"
)

type fakeCardProvider struct {
	cards map[int64][]models.Card
	err   error
}

func (f *fakeCardProvider) StudyCards(deckID, userID int64) ([]models.Card, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.cards[deckID], nil
}

func testCards() []models.Card {
	return []models.Card{
		{
			ID:             1,
			DeckID:         7,
			Question:       "Pick A",
			QuestionType:   models.QuestionMCQ,
			Options:        []string{"A", "B"},
			CorrectAnswers: []string{"A"},
		},
		{
			ID:             2,
			DeckID:         7,
			Question:       "Pick X and Z",
			QuestionType:   models.QuestionMultiSelect,
			Options:        []string{"X", "Y", "Z"},
			CorrectAnswers: []string{"X", "Z"},
		},
	}
}

func studyRequest(method, path, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	ctx := context.WithValue(req.Context(), UserIDContextKey, int64(42))
	return req.WithContext(ctx)
}

func decodeStudyView(t *testing.T, rec *httptest.ResponseRecorder) studyView {
	t.Helper()
	var view studyView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("failed to decode response: %v\nbody: %s", err, rec.Body.String())
	}
	return view
}

func startSession(t *testing.T, h *StudyHandler) studyView {
	t.Helper()
	req := studyRequest("POST", "/api/study/start/7", "")
	req.SetPathValue("deckId", "7")
	rec := httptest.NewRecorder()
	h.Start(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Start status = %d, body: %s", rec.Code, rec.Body.String())
	}
	return decodeStudyView(t, rec)
}

func TestStudyStart(t *testing.T) {
	h := NewStudyHandler(&fakeCardProvider{cards: map[int64][]models.Card{7: testCards()}})

	view := startSession(t, h)
	if view.DeckID != 7 || view.CardCount != 2 || view.CurrentIndex != 0 {
		t.Errorf("unexpected initial view: %+v", view)
	}
	if view.Card.Question != "Pick A" {
		t.Errorf("Card.Question = %q, want %q", view.Card.Question, "Pick A")
	}
	if view.Card.CorrectAnswers != nil {
		t.Error("correct answers should be withheld before feedback")
	}
}

func TestStudyStartEmptyDeck(t *testing.T) {
	h := NewStudyHandler(&fakeCardProvider{cards: map[int64][]models.Card{}})

	req := studyRequest("POST", "/api/study/start/7", "")
	req.SetPathValue("deckId", "7")
	rec := httptest.NewRecorder()
	h.Start(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Start on empty deck status = %d, want 400", rec.Code)
	}
}

func TestStudyStartDeniedDeck(t *testing.T) {
	h := NewStudyHandler(&fakeCardProvider{err: service.ErrAccessDenied})

	req := studyRequest("POST", "/api/study/start/7", "")
	req.SetPathValue("deckId", "7")
	rec := httptest.NewRecorder()
	h.Start(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("Start on private deck status = %d, want 403", rec.Code)
	}
}

func TestStudyNoActiveSession(t *testing.T) {
	h := NewStudyHandler(&fakeCardProvider{})

	rec := httptest.NewRecorder()
	h.Get(rec, studyRequest("GET", "/api/study/session", ""))

	if rec.Code != http.StatusNotFound {
		t.Errorf("Get without session status = %d, want 404", rec.Code)
	}
}

func TestStudySelectSubmitAdvanceFlow(t *testing.T) {
	h := NewStudyHandler(&fakeCardProvider{cards: map[int64][]models.Card{7: testCards()}})
	startSession(t, h)

	// select A on the mcq card
	rec := httptest.NewRecorder()
	h.SelectAnswer(rec, studyRequest("POST", "/api/study/select", `{"answer":"A"}`))
	view := decodeStudyView(t, rec)
	if len(view.SelectedAnswers) != 1 || view.SelectedAnswers[0] != "A" {
		t.Fatalf("SelectedAnswers = %v, want [A]", view.SelectedAnswers)
	}

	// submit: correct, feedback visible, answers revealed
	rec = httptest.NewRecorder()
	h.Submit(rec, studyRequest("POST", "/api/study/submit", ""))
	view = decodeStudyView(t, rec)
	if !view.FeedbackVisible || !view.LastCorrect || view.Score != 1 {
		t.Fatalf("after submit: %+v", view)
	}
	if len(view.Card.CorrectAnswers) == 0 {
		t.Error("correct answers should be revealed with feedback")
	}

	// advance to the multi-select card
	rec = httptest.NewRecorder()
	h.Advance(rec, studyRequest("POST", "/api/study/advance", ""))
	view = decodeStudyView(t, rec)
	if view.CurrentIndex != 1 || view.FeedbackVisible {
		t.Fatalf("after advance: %+v", view)
	}

	// wrong answer on the multi-select card
	h.SelectAnswer(httptest.NewRecorder(), studyRequest("POST", "/api/study/select", `{"answer":"Y"}`))
	rec = httptest.NewRecorder()
	h.Submit(rec, studyRequest("POST", "/api/study/submit", ""))
	view = decodeStudyView(t, rec)
	if view.LastCorrect || view.Score != 1 {
		t.Fatalf("after wrong submit: %+v", view)
	}

	// retry, answer correctly; score still counts only the first attempt
	h.Retry(httptest.NewRecorder(), studyRequest("POST", "/api/study/retry", ""))
	h.SelectAnswer(httptest.NewRecorder(), studyRequest("POST", "/api/study/select", `{"answer":"X"}`))
	h.SelectAnswer(httptest.NewRecorder(), studyRequest("POST", "/api/study/select", `{"answer":"Z"}`))
	rec = httptest.NewRecorder()
	h.Submit(rec, studyRequest("POST", "/api/study/submit", ""))
	view = decodeStudyView(t, rec)
	if !view.LastCorrect {
		t.Error("retry with the correct set should grade correct")
	}
	if view.Score != 1 {
		t.Errorf("Score = %d, want 1 (first attempt only)", view.Score)
	}

	// advance past the last card completes the session
	rec = httptest.NewRecorder()
	h.Advance(rec, studyRequest("POST", "/api/study/advance", ""))
	view = decodeStudyView(t, rec)
	if !view.Completed || view.CurrentIndex != 1 {
		t.Fatalf("after final advance: %+v", view)
	}
}

func TestStudyRestart(t *testing.T) {
	h := NewStudyHandler(&fakeCardProvider{cards: map[int64][]models.Card{7: testCards()}})
	startSession(t, h)

	h.SelectAnswer(httptest.NewRecorder(), studyRequest("POST", "/api/study/select", `{"answer":"A"}`))
	h.Submit(httptest.NewRecorder(), studyRequest("POST", "/api/study/submit", ""))

	rec := httptest.NewRecorder()
	h.Restart(rec, studyRequest("POST", "/api/study/restart", ""))
	view := decodeStudyView(t, rec)
	if view.Score != 0 || view.CurrentIndex != 0 || view.FeedbackVisible || view.Completed {
		t.Errorf("after restart: %+v", view)
	}
}

func TestStudyExit(t *testing.T) {
	h := NewStudyHandler(&fakeCardProvider{cards: map[int64][]models.Card{7: testCards()}})
	startSession(t, h)

	rec := httptest.NewRecorder()
	h.Exit(rec, studyRequest("POST", "/api/study/exit", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("Exit status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Get(rec, studyRequest("GET", "/api/study/session", ""))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Get after exit status = %d, want 404", rec.Code)
	}
}

// TestStudyConcurrentOperations drives one user's session from many
// goroutines at once. Run with -race: every operation and render must
// serialize on the session.
func TestStudyConcurrentOperations(t *testing.T) {
	h := NewStudyHandler(&fakeCardProvider{cards: map[int64][]models.Card{7: testCards()}})
	startSession(t, h)

	ops := []func(){
		func() {
			h.SelectAnswer(httptest.NewRecorder(), studyRequest("POST", "/api/study/select", `{"answer":"A"}`))
		},
		func() { h.Submit(httptest.NewRecorder(), studyRequest("POST", "/api/study/submit", "")) },
		func() { h.Retry(httptest.NewRecorder(), studyRequest("POST", "/api/study/retry", "")) },
		func() { h.Advance(httptest.NewRecorder(), studyRequest("POST", "/api/study/advance", "")) },
		func() { h.Restart(httptest.NewRecorder(), studyRequest("POST", "/api/study/restart", "")) },
		func() { h.Get(httptest.NewRecorder(), studyRequest("GET", "/api/study/session", "")) },
	}

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		for _, op := range ops {
			wg.Add(1)
			go func(do func()) {
				defer wg.Done()
				do()
			}(op)
		}
	}
	wg.Wait()

	// The session must still respond with a coherent view
	rec := httptest.NewRecorder()
	h.Get(rec, studyRequest("GET", "/api/study/session", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("Get after concurrent operations status = %d", rec.Code)
	}
	view := decodeStudyView(t, rec)
	if view.CardCount != 2 || view.CurrentIndex < 0 || view.CurrentIndex >= view.CardCount {
		t.Errorf("inconsistent view after concurrent operations: %+v", view)
	}
}

func TestStudyCleanupStale(t *testing.T) {
	h := NewStudyHandler(&fakeCardProvider{cards: map[int64][]models.Card{7: testCards()}})
	startSession(t, h)

	h.mu.Lock()
	h.sessions[42].lastActive = time.Now().Add(-2 * time.Hour)
	h.mu.Unlock()

	if removed := h.CleanupStale(time.Hour); removed != 1 {
		t.Errorf("CleanupStale removed %d sessions, want 1", removed)
	}

	rec := httptest.NewRecorder()
	h.Get(rec, studyRequest("GET", "/api/study/session", ""))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Get after cleanup status = %d, want 404", rec.Code)
	}
}
