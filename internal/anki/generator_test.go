package anki

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/snonux/learnmk/internal/lesson"
	"codeberg.org/snonux/learnmk/internal/testutil"
)

func TestNewGenerator(t *testing.T) {
	gen := NewGenerator(nil)
	if gen.options == nil {
		t.Fatal("Generator options should not be nil")
	}
	if gen.options.OutputPath != "learnmk_anki.csv" || !gen.options.IncludeHeaders {
		t.Errorf("Unexpected default options: %+v", gen.options)
	}

	gen = NewGenerator(&GeneratorOptions{OutputPath: "custom.csv"})
	if gen.options.OutputPath != "custom.csv" {
		t.Errorf("Expected custom output path, got '%s'", gen.options.OutputPath)
	}
}

func TestCardsDeduplicates(t *testing.T) {
	gen := NewGenerator(nil)
	gen.AddCard(Card{English: "dog", Macedonian: "куче"})
	gen.AddCard(Card{English: "dog", Macedonian: "куче"})
	gen.AddCard(Card{English: "cat", Macedonian: "мачка"})

	if got := len(gen.Cards()); got != 2 {
		t.Errorf("Expected 2 unique cards, got %d", got)
	}
}

func TestAddTopic(t *testing.T) {
	root := testutil.CreateLessonTree(t, map[string]map[string]string{
		"01 farm animals": {
			"animals.csv":             "dog,куче\ncat,мачка\n",
			"match_animals.csv":       "dog,куче\ncow,крава\n",
			"sentence_farm_en_mk.csv": "The dog sleeps,Кучето спие\n",
		},
	})
	catalog := lesson.NewCatalog(root)
	topics, err := catalog.Topics()
	if err != nil {
		t.Fatalf("Topics failed: %v", err)
	}

	gen := NewGenerator(nil)
	added, err := gen.AddTopic(catalog, topics[0])
	if err != nil {
		t.Fatalf("AddTopic failed: %v", err)
	}
	if added != 5 {
		t.Errorf("Expected 5 added cards, got %d", added)
	}

	cards := gen.Cards()
	if len(cards) != 4 {
		t.Fatalf("Expected 4 unique cards, got %d", len(cards))
	}
	for _, c := range cards {
		if len(c.Tags) != 1 || c.Tags[0] != "learnmk::01_farm_animals" {
			t.Errorf("Unexpected tags %v", c.Tags)
		}
	}
}

func TestAddTopicMalformed(t *testing.T) {
	root := testutil.CreateLessonTree(t, map[string]map[string]string{
		"bad": {"broken.csv": "one,two,three\n"},
	})
	catalog := lesson.NewCatalog(root)
	topics, err := catalog.Topics()
	if err != nil {
		t.Fatalf("Topics failed: %v", err)
	}

	if _, err := NewGenerator(nil).AddTopic(catalog, topics[0]); err == nil {
		t.Error("Expected error for malformed lesson file")
	}
}

func TestGenerateCSV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "anki.csv")
	gen := NewGenerator(&GeneratorOptions{OutputPath: out, IncludeHeaders: true})
	gen.AddCard(Card{English: "hello, friend", Macedonian: "здраво, пријателе", Tags: []string{"learnmk::greetings"}})

	if err := gen.GenerateCSV(); err != nil {
		t.Fatalf("GenerateCSV failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "#separator:comma\n") {
		t.Errorf("Missing Anki header, got %q", content)
	}

	var body []string
	for _, line := range strings.Split(content, "\n") {
		if !strings.HasPrefix(line, "#") {
			body = append(body, line)
		}
	}
	records, err := csv.NewReader(strings.NewReader(strings.Join(body, "\n"))).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse CSV body: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	want := []string{"здраво, пријателе", "hello, friend", "learnmk::greetings"}
	for i := range want {
		if records[0][i] != want[i] {
			t.Errorf("Field %d = %q, want %q", i, records[0][i], want[i])
		}
	}
}

func TestGenerateCSVWithoutHeaders(t *testing.T) {
	out := filepath.Join(t.TempDir(), "anki.csv")
	gen := NewGenerator(&GeneratorOptions{OutputPath: out})
	gen.AddCard(Card{English: "dog", Macedonian: "куче"})

	if err := gen.GenerateCSV(); err != nil {
		t.Fatalf("GenerateCSV failed: %v", err)
	}
	testutil.AssertFileContains(t, out, "куче,dog,")
}

func TestGenerateCSVBadPath(t *testing.T) {
	gen := NewGenerator(&GeneratorOptions{OutputPath: filepath.Join(t.TempDir(), "missing", "anki.csv")})
	if err := gen.GenerateCSV(); err == nil {
		t.Error("Expected error for unwritable path")
	}
}
