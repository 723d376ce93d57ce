package validation

import (
	"testing"

	"magizhquiz/internal/models"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid email", "user@example.com", false},
		{"valid with plus", "user+tag@example.com", false},
		{"empty", "", true},
		{"missing domain", "user@", true},
		{"missing at", "userexample.com", true},
		{"whitespace only", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "correcthorse", false},
		{"exactly 8 chars", "12345678", false},
		{"too short", "short", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid", "magizh_user", false},
		{"valid with digits", "user123", false},
		{"too short", "ab", true},
		{"uppercase", "User123", true},
		{"spaces", "user name", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUsername(%q) error = %v, wantErr %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestValidateCard(t *testing.T) {
	tests := []struct {
		name           string
		questionType   models.QuestionType
		question       string
		options        []string
		correctAnswers []string
		wantErr        bool
	}{
		{
			name:           "valid mcq",
			questionType:   models.QuestionMCQ,
			question:       "What is 2+2?",
			options:        []string{"3", "4"},
			correctAnswers: []string{"4"},
		},
		{
			name:           "valid multi_select",
			questionType:   models.QuestionMultiSelect,
			question:       "Pick the primes",
			options:        []string{"2", "3", "4"},
			correctAnswers: []string{"2", "3"},
		},
		{
			name:           "valid fill_blank",
			questionType:   models.QuestionFillBlank,
			question:       "Capital of France?",
			correctAnswers: []string{"Paris", "paris"},
		},
		{
			name:           "empty question",
			questionType:   models.QuestionMCQ,
			question:       "  ",
			options:        []string{"a", "b"},
			correctAnswers: []string{"a"},
			wantErr:        true,
		},
		{
			name:           "unknown type",
			questionType:   "essay",
			question:       "Discuss",
			correctAnswers: []string{"x"},
			wantErr:        true,
		},
		{
			name:           "no correct answers",
			questionType:   models.QuestionMCQ,
			question:       "What?",
			options:        []string{"a", "b"},
			correctAnswers: nil,
			wantErr:        true,
		},
		{
			name:           "mcq with two correct answers",
			questionType:   models.QuestionMCQ,
			question:       "What?",
			options:        []string{"a", "b"},
			correctAnswers: []string{"a", "b"},
			wantErr:        true,
		},
		{
			name:           "correct answer not among options",
			questionType:   models.QuestionMultiSelect,
			question:       "What?",
			options:        []string{"a", "b"},
			correctAnswers: []string{"a", "c"},
			wantErr:        true,
		},
		{
			name:           "fill_blank with options",
			questionType:   models.QuestionFillBlank,
			question:       "What?",
			options:        []string{"a"},
			correctAnswers: []string{"a"},
			wantErr:        true,
		},
		{
			name:           "single option mcq",
			questionType:   models.QuestionMCQ,
			question:       "What?",
			options:        []string{"a"},
			correctAnswers: []string{"a"},
			wantErr:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCard(tt.questionType, tt.question, tt.options, tt.correctAnswers)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCard() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
