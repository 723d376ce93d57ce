package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"magizhquiz/internal/models"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-z0-9_]{3,50}$`)
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a display name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// ValidateUsername checks if a username is valid: lowercase letters,
// digits and underscores, 3-50 characters
func ValidateUsername(username string) error {
	if username == "" {
		return ValidationError{Field: "username", Message: "username is required"}
	}
	if !usernameRegex.MatchString(username) {
		return ValidationError{Field: "username", Message: "username must be 3-50 lowercase letters, digits or underscores"}
	}
	return nil
}

// ValidateDeckTitle checks if a deck title is valid
func ValidateDeckTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ValidationError{Field: "title", Message: "title is required"}
	}
	if utf8.RuneCountInString(title) > 200 {
		return ValidationError{Field: "title", Message: "title must be at most 200 characters"}
	}
	return nil
}

// ValidateComment checks if a deck comment is valid
func ValidateComment(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ValidationError{Field: "content", Message: "comment is required"}
	}
	if utf8.RuneCountInString(content) > 1000 {
		return ValidationError{Field: "content", Message: "comment must be at most 1000 characters"}
	}
	return nil
}

// ValidateCard checks a card against the data-model invariants: a known
// question type, at least one correct answer, and for option-based types a
// correct-answer set that is a subset of the options. fill_blank cards
// carry no options; their accepted answers stand alone.
func ValidateCard(questionType models.QuestionType, question string, options, correctAnswers []string) error {
	if strings.TrimSpace(question) == "" {
		return ValidationError{Field: "question", Message: "question is required"}
	}
	if !questionType.Valid() {
		return ValidationError{Field: "question_type", Message: "unknown question type"}
	}
	if len(correctAnswers) == 0 {
		return ValidationError{Field: "correct_answers", Message: "at least one correct answer is required"}
	}

	switch questionType {
	case models.QuestionFillBlank:
		if len(options) != 0 {
			return ValidationError{Field: "options", Message: "fill_blank cards must not have options"}
		}
	case models.QuestionMCQ:
		if len(correctAnswers) != 1 {
			return ValidationError{Field: "correct_answers", Message: "mcq cards must have exactly one correct answer"}
		}
		fallthrough
	case models.QuestionMultiSelect:
		if len(options) < 2 {
			return ValidationError{Field: "options", Message: "at least two options are required"}
		}
		optionSet := make(map[string]struct{}, len(options))
		for _, opt := range options {
			optionSet[opt] = struct{}{}
		}
		for _, ans := range correctAnswers {
			if _, ok := optionSet[ans]; !ok {
				return ValidationError{Field: "correct_answers", Message: fmt.Sprintf("correct answer %q is not among the options", ans)}
			}
		}
	}

	return nil
}
