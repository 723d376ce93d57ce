package study

import (
	"errors"
	"testing"

	"magizhquiz/internal/models"
)

func sampleCards() []models.Card {
	return []models.Card{
		{
			ID:             1,
			QuestionType:   models.QuestionMCQ,
			Question:       "Pick A",
			Options:        []string{"A", "B"},
			CorrectAnswers: []string{"A"},
		},
		{
			ID:             2,
			QuestionType:   models.QuestionMultiSelect,
			Question:       "Pick X and Z",
			Options:        []string{"X", "Y", "Z"},
			CorrectAnswers: []string{"X", "Z"},
		},
	}
}

func TestStart(t *testing.T) {
	s, err := Start(sampleCards())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.CurrentIndex != 0 {
		t.Errorf("CurrentIndex = %d, want 0", s.CurrentIndex)
	}
	if s.Completed {
		t.Error("Completed should be false")
	}
	if s.Score != 0 {
		t.Errorf("Score = %d, want 0", s.Score)
	}
	if s.FeedbackVisible {
		t.Error("FeedbackVisible should be false")
	}
	if len(s.SelectedAnswers) != 0 {
		t.Errorf("SelectedAnswers = %v, want empty", s.SelectedAnswers)
	}
	if len(s.RecordedAnswers) != 0 {
		t.Errorf("RecordedAnswers = %v, want empty", s.RecordedAnswers)
	}
}

func TestStartEmpty(t *testing.T) {
	if _, err := Start(nil); !errors.Is(err, ErrNoCards) {
		t.Errorf("Start(nil) error = %v, want ErrNoCards", err)
	}
	if _, err := Start([]models.Card{}); !errors.Is(err, ErrNoCards) {
		t.Errorf("Start([]) error = %v, want ErrNoCards", err)
	}
}

func TestSelectAnswerSingleChoiceReplaces(t *testing.T) {
	s, _ := Start(sampleCards())

	s.SelectAnswer("A")
	s.SelectAnswer("B")

	if len(s.SelectedAnswers) != 1 || s.SelectedAnswers[0] != "B" {
		t.Errorf("SelectedAnswers = %v, want [B]", s.SelectedAnswers)
	}
}

func TestSelectAnswerMultiSelectToggles(t *testing.T) {
	s, _ := Start(sampleCards())

	// Move onto the multi_select card
	s.SelectAnswer("A")
	s.Submit()
	s.Advance()

	s.SelectAnswer("X")
	s.SelectAnswer("Y")
	if len(s.SelectedAnswers) != 2 {
		t.Fatalf("SelectedAnswers = %v, want two entries", s.SelectedAnswers)
	}

	// Toggling the same answer twice returns the selection to its prior state
	s.SelectAnswer("Y")
	if len(s.SelectedAnswers) != 1 || s.SelectedAnswers[0] != "X" {
		t.Errorf("SelectedAnswers = %v, want [X]", s.SelectedAnswers)
	}
}

func TestSelectAnswerIgnoredDuringFeedback(t *testing.T) {
	s, _ := Start(sampleCards())
	s.SelectAnswer("A")
	s.Submit()

	s.SelectAnswer("B")
	if len(s.SelectedAnswers) != 1 || s.SelectedAnswers[0] != "A" {
		t.Errorf("SelectedAnswers = %v, want [A] (selection frozen during feedback)", s.SelectedAnswers)
	}
}

func TestSubmitRequiresSelection(t *testing.T) {
	s, _ := Start(sampleCards())
	s.Submit()

	if s.FeedbackVisible {
		t.Error("Submit with no selection should be a no-op")
	}
}

func TestGradingIsOrderIndependent(t *testing.T) {
	tests := []struct {
		name      string
		submitted []string
		want      bool
	}{
		{"ordered", []string{"X", "Z"}, true},
		{"reversed", []string{"Z", "X"}, true},
		{"duplicate entries", []string{"X", "Z", "X"}, true},
		{"partial", []string{"X"}, false},
		{"superset", []string{"X", "Y", "Z"}, false},
		{"wrong pair", []string{"X", "Y"}, false},
		{"case sensitive", []string{"x", "z"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := answerSetsEqual(tt.submitted, []string{"X", "Z"}); got != tt.want {
				t.Errorf("answerSetsEqual(%v) = %v, want %v", tt.submitted, got, tt.want)
			}
		})
	}
}

func TestRetryAfterIncorrect(t *testing.T) {
	s, _ := Start(sampleCards())
	s.SelectAnswer("B")
	s.Submit()

	if s.LastCorrect {
		t.Fatal("submission should have been graded incorrect")
	}

	s.Retry()

	if s.FeedbackVisible {
		t.Error("FeedbackVisible should be false after retry")
	}
	if len(s.SelectedAnswers) != 0 {
		t.Errorf("SelectedAnswers = %v, want empty", s.SelectedAnswers)
	}
	if s.CurrentIndex != 0 {
		t.Errorf("CurrentIndex = %d, want 0", s.CurrentIndex)
	}
	if s.Score != 0 {
		t.Errorf("Score = %d, want 0", s.Score)
	}
}

func TestRetryAfterCorrectIsNoop(t *testing.T) {
	s, _ := Start(sampleCards())
	s.SelectAnswer("A")
	s.Submit()

	s.Retry()

	if !s.FeedbackVisible {
		t.Error("Retry after a correct submission should be a no-op")
	}
}

func TestScoreCountsFirstAttemptOnly(t *testing.T) {
	s, _ := Start(sampleCards())

	// First attempt incorrect
	s.SelectAnswer("B")
	s.Submit()
	if s.Score != 0 {
		t.Fatalf("Score = %d, want 0 after incorrect submission", s.Score)
	}

	// Retry and answer correctly: score must not change
	s.Retry()
	s.SelectAnswer("A")
	s.Submit()

	if !s.LastCorrect {
		t.Fatal("retried submission should grade correct")
	}
	if s.Score != 0 {
		t.Errorf("Score = %d, want 0 (first attempt was incorrect)", s.Score)
	}

	correct, graded := s.FirstAttemptCorrect(1)
	if !graded || correct {
		t.Errorf("FirstAttemptCorrect(1) = (%v, %v), want (false, true)", correct, graded)
	}
}

func TestRetryOverwritesRecordedAnswer(t *testing.T) {
	s, _ := Start(sampleCards())

	s.SelectAnswer("B")
	s.Submit()
	s.Retry()
	s.SelectAnswer("A")
	s.Submit()

	if len(s.RecordedAnswers) != 1 {
		t.Fatalf("RecordedAnswers has %d entries, want 1", len(s.RecordedAnswers))
	}
	if got := s.RecordedAnswers[1]; len(got) != 1 || got[0] != "A" {
		t.Errorf("RecordedAnswers[1] = %v, want [A]", got)
	}
}

func TestAdvanceOnLastCardCompletes(t *testing.T) {
	s, _ := Start(sampleCards())

	s.SelectAnswer("A")
	s.Submit()
	s.Advance()

	s.SelectAnswer("X")
	s.SelectAnswer("Z")
	s.Submit()
	s.Advance()

	if !s.Completed {
		t.Error("Completed should be true after advancing past the last card")
	}
	if s.CurrentIndex != len(s.Cards)-1 {
		t.Errorf("CurrentIndex = %d, want %d (last card stays addressable)", s.CurrentIndex, len(s.Cards)-1)
	}
}

func TestAdvanceWithoutFeedbackIsNoop(t *testing.T) {
	s, _ := Start(sampleCards())
	s.Advance()

	if s.CurrentIndex != 0 || s.Completed {
		t.Error("Advance without feedback should be a no-op")
	}
}

func TestRestart(t *testing.T) {
	s, _ := Start(sampleCards())

	s.SelectAnswer("A")
	s.Submit()
	s.Advance()
	s.SelectAnswer("X")
	s.SelectAnswer("Z")
	s.Submit()
	s.Advance()

	if !s.Completed {
		t.Fatal("session should be completed")
	}

	s.Restart()

	if s.CurrentIndex != 0 || s.Completed || s.FeedbackVisible {
		t.Error("Restart should return to a fresh presenting state")
	}
	if s.Score != 0 {
		t.Errorf("Score = %d, want 0 after restart", s.Score)
	}
	if len(s.RecordedAnswers) != 0 || len(s.SelectedAnswers) != 0 {
		t.Error("Restart should clear recorded and selected answers")
	}
	if len(s.Cards) != 2 {
		t.Errorf("Restart must keep the same card sequence, got %d cards", len(s.Cards))
	}
}

// TestFullSession walks the end-to-end scenario: a correct single-choice
// answer, an incorrect multi-select answer, a retry that succeeds, and
// completion.
func TestFullSession(t *testing.T) {
	s, err := Start(sampleCards())
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	// Card 1: correct on first attempt
	s.SelectAnswer("A")
	s.Submit()
	if !s.FeedbackVisible || !s.LastCorrect {
		t.Fatal("card 1 should grade correct")
	}
	if s.Score != 1 {
		t.Fatalf("Score = %d, want 1", s.Score)
	}

	s.Advance()
	if s.CurrentIndex != 1 || s.FeedbackVisible {
		t.Fatalf("after advance: index=%d feedback=%v", s.CurrentIndex, s.FeedbackVisible)
	}

	// Card 2: {X,Y} is incorrect against {X,Z}
	s.SelectAnswer("X")
	s.SelectAnswer("Y")
	s.Submit()
	if s.LastCorrect {
		t.Fatal("card 2 first attempt should grade incorrect")
	}
	if s.Score != 1 {
		t.Fatalf("Score = %d, want 1 (unchanged)", s.Score)
	}

	s.Retry()
	if s.FeedbackVisible || len(s.SelectedAnswers) != 0 || s.CurrentIndex != 1 {
		t.Fatal("retry should clear selection and stay on card 2")
	}

	// Second attempt correct, but score reflects the first attempt
	s.SelectAnswer("X")
	s.SelectAnswer("Z")
	s.Submit()
	if !s.LastCorrect {
		t.Fatal("card 2 retry should grade correct")
	}
	if s.Score != 1 {
		t.Fatalf("Score = %d, want 1 (first attempt on card 2 was incorrect)", s.Score)
	}

	s.Advance()
	if !s.Completed {
		t.Fatal("session should be completed")
	}
	if s.CurrentIndex != 1 {
		t.Fatalf("CurrentIndex = %d, want 1", s.CurrentIndex)
	}
}
