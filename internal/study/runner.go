// Package study implements the in-memory study-session state machine: one
// attempt at an ordered list of cards, moving between presenting, feedback
// and completed states as the learner answers.
//
// A Session is owned by exactly one caller and is driven by user events on a
// single goroutine; none of its operations perform I/O. Precondition
// violations caused by UI races (double-submit, selecting while feedback is
// shown) are deliberately no-ops rather than errors.
package study

import (
	"errors"
	"time"

	"magizhquiz/internal/models"
)

// ErrNoCards is returned by Start when the card list is empty.
// This is a caller error: the host must resolve a non-empty deck first.
var ErrNoCards = errors.New("study: card list is empty")

// Session holds the state of one study attempt. Cards is fixed for the
// session's lifetime; everything else mutates as the learner progresses.
type Session struct {
	Cards []models.Card `json:"cards"`

	// CurrentIndex stays on the last card after completion so the
	// summary view can still address it.
	CurrentIndex int `json:"current_index"`

	// SelectedAnswers is the in-progress response for the current card,
	// cleared on every advance, retry and restart.
	SelectedAnswers []string `json:"selected_answers"`

	// RecordedAnswers maps card ID to the most recently submitted
	// response; a retry overwrites the prior entry.
	RecordedAnswers map[int64][]string `json:"recorded_answers"`

	// firstResults holds the verdict of the first graded submission per
	// card ID. Score is derived from it and never changes on retries.
	firstResults map[int64]bool

	FeedbackVisible bool      `json:"feedback_visible"`
	LastCorrect     bool      `json:"last_correct"`
	Score           int       `json:"score"`
	StartedAt       time.Time `json:"started_at"`
	Completed       bool      `json:"completed"`
}

// Start creates a new session over the given ordered card list
func Start(cards []models.Card) (*Session, error) {
	if len(cards) == 0 {
		return nil, ErrNoCards
	}
	return &Session{
		Cards:           cards,
		CurrentIndex:    0,
		RecordedAnswers: make(map[int64][]string),
		firstResults:    make(map[int64]bool),
		StartedAt:       time.Now(),
	}, nil
}

// CurrentCard returns the card being presented (or summarized, once completed)
func (s *Session) CurrentCard() models.Card {
	return s.Cards[s.CurrentIndex]
}

// Elapsed returns the time since the attempt started. Cosmetic only; it has
// no effect on grading or transitions.
func (s *Session) Elapsed() time.Duration {
	return time.Since(s.StartedAt)
}

// SelectAnswer updates the in-progress response for the current card.
// For mcq and fill_blank cards the selection is replaced; for multi_select
// the answer's membership is toggled. No-op while feedback is shown or
// after completion.
func (s *Session) SelectAnswer(answer string) {
	if s.FeedbackVisible || s.Completed {
		return
	}

	if s.CurrentCard().QuestionType == models.QuestionMultiSelect {
		for i, a := range s.SelectedAnswers {
			if a == answer {
				s.SelectedAnswers = append(s.SelectedAnswers[:i], s.SelectedAnswers[i+1:]...)
				return
			}
		}
		s.SelectedAnswers = append(s.SelectedAnswers, answer)
		return
	}

	s.SelectedAnswers = []string{answer}
}

// Submit grades the current selection against the card's correct answers
// and shows feedback. The comparison is exact set equality: deduplicated,
// order-independent, case-sensitive, no trimming. Score counts only the
// first graded submission per card. No-op if nothing is selected or
// feedback is already shown.
func (s *Session) Submit() {
	if s.FeedbackVisible || s.Completed || len(s.SelectedAnswers) == 0 {
		return
	}

	card := s.CurrentCard()
	correct := answerSetsEqual(s.SelectedAnswers, card.CorrectAnswers)

	recorded := make([]string, len(s.SelectedAnswers))
	copy(recorded, s.SelectedAnswers)
	s.RecordedAnswers[card.ID] = recorded

	if _, graded := s.firstResults[card.ID]; !graded {
		s.firstResults[card.ID] = correct
		if correct {
			s.Score++
		}
	}

	s.LastCorrect = correct
	s.FeedbackVisible = true
}

// Retry returns to presenting the same card after an incorrect submission.
// No-op unless feedback is shown and the last submission was wrong.
func (s *Session) Retry() {
	if !s.FeedbackVisible || s.LastCorrect {
		return
	}
	s.SelectedAnswers = nil
	s.FeedbackVisible = false
}

// Advance moves to the next card, or completes the session on the last one.
// CurrentIndex is left on the last card at completion. No-op unless
// feedback is shown.
func (s *Session) Advance() {
	if !s.FeedbackVisible {
		return
	}
	s.SelectedAnswers = nil
	s.FeedbackVisible = false

	if s.CurrentIndex+1 == len(s.Cards) {
		s.Completed = true
		return
	}
	s.CurrentIndex++
}

// Restart begins a fresh attempt over the same card sequence
func (s *Session) Restart() {
	s.CurrentIndex = 0
	s.SelectedAnswers = nil
	s.RecordedAnswers = make(map[int64][]string)
	s.firstResults = make(map[int64]bool)
	s.FeedbackVisible = false
	s.LastCorrect = false
	s.Score = 0
	s.StartedAt = time.Now()
	s.Completed = false
}

// FirstAttemptCorrect reports the verdict of the first graded submission
// for the given card, and whether that card has been graded at all.
func (s *Session) FirstAttemptCorrect(cardID int64) (correct, graded bool) {
	correct, graded = s.firstResults[cardID]
	return correct, graded
}

// Grade reports whether a submitted answer list matches the correct
// answers under set equality. This is the one grading rule for the whole
// application; persisted quizzes use it too.
func Grade(given, correct []string) bool {
	return answerSetsEqual(given, correct)
}

// answerSetsEqual compares two answer lists as sets: deduplicated,
// order-independent, exact string match.
func answerSetsEqual(a, b []string) bool {
	as := make(map[string]struct{}, len(a))
	for _, v := range a {
		as[v] = struct{}{}
	}
	bs := make(map[string]struct{}, len(b))
	for _, v := range b {
		bs[v] = struct{}{}
	}
	if len(as) != len(bs) {
		return false
	}
	for v := range as {
		if _, ok := bs[v]; !ok {
			return false
		}
	}
	return true
}
