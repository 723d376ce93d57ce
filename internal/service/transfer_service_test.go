package service

import (
	"encoding/csv"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantRunes int
	}{
		{"short title unchanged", "World Capitals (Imported)", 25},
		{"ascii at the limit", strings.Repeat("a", 205), 200},
		{"multi-byte title", strings.Repeat("த", 198) + " (Imported)", 200},
		{"emoji title", strings.Repeat("🂡", 205), 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateTitle(tt.input)
			if n := utf8.RuneCountInString(got); n != tt.wantRunes {
				t.Errorf("truncateTitle rune count = %d, want %d", n, tt.wantRunes)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncateTitle(%q) split a rune: %q", tt.input, got)
			}
			if !strings.HasPrefix(tt.input, got) {
				t.Errorf("truncateTitle(%q) = %q, not a prefix of the input", tt.input, got)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single", "Paris", []string{"Paris"}},
		{"multiple", "Paris,London,Berlin", []string{"Paris", "London", "Berlin"}},
		{"trims whitespace", " Paris , London ", []string{"Paris", "London"}},
		{"drops empty items", "Paris,,London,", []string{"Paris", "London"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitList(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("splitList(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("splitList(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCSVTemplate(t *testing.T) {
	s := &TransferService{}
	template := s.CSVTemplate()

	reader := csv.NewReader(strings.NewReader(template))
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("template is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("template has %d rows, want header plus 2 examples", len(records))
	}

	header := records[0]
	required := map[string]bool{"question": false, "correct_answers": false}
	for _, name := range header {
		if _, ok := required[name]; ok {
			required[name] = true
		}
	}
	for name, found := range required {
		if !found {
			t.Errorf("template header is missing column %q", name)
		}
	}

	for i, row := range records[1:] {
		if len(row) != len(header) {
			t.Errorf("example row %d has %d fields, header has %d", i+1, len(row), len(header))
		}
	}
}
