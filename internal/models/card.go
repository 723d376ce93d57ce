package models

import "time"

// QuestionType determines selection cardinality and grading comparison
type QuestionType string

const (
	QuestionMCQ         QuestionType = "mcq"
	QuestionMultiSelect QuestionType = "multi_select"
	QuestionFillBlank   QuestionType = "fill_blank"
)

// Valid reports whether t is a known question type
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionMCQ, QuestionMultiSelect, QuestionFillBlank:
		return true
	}
	return false
}

// Card is one question unit in a deck. Options is empty for fill_blank
// cards; for the other types CorrectAnswers must be a subset of Options.
type Card struct {
	ID             int64        `json:"id"`
	DeckID         int64        `json:"deck_id"`
	Question       string       `json:"question"`
	QuestionType   QuestionType `json:"question_type"`
	Options        []string     `json:"options"`
	CorrectAnswers []string     `json:"correct_answers"`
	Explanation    string       `json:"explanation,omitempty"`
	ImageURL       string       `json:"image_url,omitempty"`
	Tags           []string     `json:"tags"`
	CreatedAt      time.Time    `json:"created_at"`
}

// CardWithMeta extends Card with viewer-specific info
type CardWithMeta struct {
	Card
	IsBookmarked bool `json:"is_bookmarked"`
}
