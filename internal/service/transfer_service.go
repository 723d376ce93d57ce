package service

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"magizhquiz/internal/models"
	"magizhquiz/internal/repository"
	"magizhquiz/internal/validation"
)

var (
	ErrInvalidImportFile = errors.New("invalid import file")
	ErrMissingCSVHeader  = errors.New("csv is missing the question or correct_answers column")
)

// TransferService handles CSV card import and JSON deck export/import
type TransferService struct {
	deckRepo     *repository.DeckRepository
	cardRepo     *repository.CardRepository
	progressRepo *repository.ProgressRepository

	now func() time.Time
}

// NewTransferService creates a new transfer service
func NewTransferService(deckRepo *repository.DeckRepository, cardRepo *repository.CardRepository, progressRepo *repository.ProgressRepository) *TransferService {
	return &TransferService{
		deckRepo:     deckRepo,
		cardRepo:     cardRepo,
		progressRepo: progressRepo,
		now:          time.Now,
	}
}

// ImportResult summarizes a card import run
type ImportResult struct {
	CardsCreated int      `json:"cards_created"`
	Errors       []string `json:"errors,omitempty"`
}

// ImportCardsCSV reads cards from a CSV stream into a deck the user owns.
// Expected columns: question, correct_answers (required), question_type,
// options, explanation, tags. List columns are comma-separated within the
// cell. Invalid rows are skipped and reported, not fatal.
func (s *TransferService) ImportCardsCSV(userID, deckID int64, r io.Reader) (*ImportResult, error) {
	deck, err := s.deckRepo.GetDeckByID(deckID)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, ErrDeckNotFound
	}
	if deck.UserID != userID {
		return nil, ErrAccessDenied
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImportFile, err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := col["question"]; !ok {
		return nil, ErrMissingCSVHeader
	}
	if _, ok := col["correct_answers"]; !ok {
		return nil, ErrMissingCSVHeader
	}

	result := &ImportResult{}
	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}

		field := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		question := field("question")
		correctAnswers := splitList(field("correct_answers"))
		if question == "" || len(correctAnswers) == 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: missing required fields", rowNum))
			continue
		}

		questionType := strings.ToLower(field("question_type"))
		if !models.QuestionType(questionType).Valid() {
			questionType = string(models.QuestionMCQ)
		}

		card := &models.Card{
			DeckID:         deckID,
			Question:       question,
			QuestionType:   models.QuestionType(questionType),
			Options:        splitList(field("options")),
			CorrectAnswers: correctAnswers,
			Explanation:    field("explanation"),
			Tags:           splitList(field("tags")),
		}

		if err := validation.ValidateCard(card.QuestionType, card.Question, card.Options, card.CorrectAnswers); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		if _, err := s.cardRepo.CreateCard(card); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", rowNum, err))
			continue
		}
		result.CardsCreated++
	}
	return result, nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DeckExport is the JSON document produced by ExportDeck and accepted by
// ImportDeck
type DeckExport struct {
	Deck struct {
		Title       string    `json:"title"`
		Description string    `json:"description"`
		Tags        []string  `json:"tags"`
		IsPublic    bool      `json:"is_public"`
		CreatedAt   time.Time `json:"created_at"`
		CardCount   int       `json:"card_count"`
	} `json:"deck"`
	Cards []exportCard `json:"cards"`
	Info  struct {
		ExportedAt    time.Time `json:"exported_at"`
		ExportedBy    string    `json:"exported_by"`
		FormatVersion string    `json:"format_version"`
	} `json:"export_info"`
}

type exportCard struct {
	Question       string   `json:"question"`
	QuestionType   string   `json:"question_type"`
	Options        []string `json:"options"`
	CorrectAnswers []string `json:"correct_answers"`
	Explanation    string   `json:"explanation,omitempty"`
	Tags           []string `json:"tags"`
}

// ExportDeck serializes a visible deck and its cards
func (s *TransferService) ExportDeck(deckID, viewerID int64, exportedBy string) (*DeckExport, error) {
	deck, err := s.deckRepo.GetDeckByID(deckID)
	if err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, ErrDeckNotFound
	}
	if !deck.IsPublic && deck.UserID != viewerID {
		return nil, ErrAccessDenied
	}

	cards, err := s.cardRepo.ListCardsByDeck(deckID)
	if err != nil {
		return nil, err
	}

	export := &DeckExport{}
	export.Deck.Title = deck.Title
	export.Deck.Description = deck.Description
	export.Deck.Tags = deck.Tags
	export.Deck.IsPublic = deck.IsPublic
	export.Deck.CreatedAt = deck.CreatedAt
	export.Deck.CardCount = len(cards)

	export.Cards = make([]exportCard, 0, len(cards))
	for _, card := range cards {
		export.Cards = append(export.Cards, exportCard{
			Question:       card.Question,
			QuestionType:   string(card.QuestionType),
			Options:        card.Options,
			CorrectAnswers: card.CorrectAnswers,
			Explanation:    card.Explanation,
			Tags:           card.Tags,
		})
	}

	export.Info.ExportedAt = s.now()
	export.Info.ExportedBy = exportedBy
	export.Info.FormatVersion = "1.0"
	return export, nil
}

// ImportDeck creates a new private deck from an exported JSON stream.
// Invalid cards are skipped; the deck title gets an "(Imported)" suffix.
func (s *TransferService) ImportDeck(userID int64, r io.Reader) (*models.Deck, *ImportResult, error) {
	var export DeckExport
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidImportFile, err)
	}
	if export.Deck.Title == "" {
		return nil, nil, ErrInvalidImportFile
	}

	title := truncateTitle(export.Deck.Title + " (Imported)")
	deck, err := s.deckRepo.CreateDeck(userID, title, export.Deck.Description, false, export.Deck.Tags)
	if err != nil {
		return nil, nil, err
	}

	result := &ImportResult{}
	for i, c := range export.Cards {
		if err := validation.ValidateCard(models.QuestionType(c.QuestionType), c.Question, c.Options, c.CorrectAnswers); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("card %d: %v", i+1, err))
			continue
		}
		card := &models.Card{
			DeckID:         deck.ID,
			Question:       c.Question,
			QuestionType:   models.QuestionType(c.QuestionType),
			Options:        c.Options,
			CorrectAnswers: c.CorrectAnswers,
			Explanation:    c.Explanation,
			Tags:           c.Tags,
		}
		if _, err := s.cardRepo.CreateCard(card); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("card %d: %v", i+1, err))
			continue
		}
		result.CardsCreated++
	}

	extra := map[string]string{
		"imported":    "true",
		"cards_count": fmt.Sprintf("%d", result.CardsCreated),
	}
	if err := s.progressRepo.LogActivity(userID, models.ActionCreateDeck, "deck", deck.ID, extra); err != nil {
		return nil, nil, fmt.Errorf("failed to log deck import: %w", err)
	}
	return deck, result, nil
}

// CSVTemplate returns an example CSV document for card import
func (s *TransferService) CSVTemplate() string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	w.Write([]string{"question", "question_type", "options", "correct_answers", "explanation", "tags"})
	w.Write([]string{
		"What is the capital of France?", "mcq",
		"Paris,London,Berlin,Madrid", "Paris",
		"Paris is the capital and most populous city of France.",
		"geography,capitals",
	})
	w.Write([]string{
		"Which of these are programming languages?", "multi_select",
		"Python,JavaScript,HTML,SQL", "Python,JavaScript",
		"HTML is markup and SQL is a query language.",
		"programming,languages",
	})
	w.Flush()
	return b.String()
}
