package anki

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/samber/lo"

	"codeberg.org/snonux/learnmk/internal/lesson"
)

// Card represents a single Anki note
type Card struct {
	English    string
	Macedonian string
	Tags       []string
}

// GeneratorOptions configures the Anki export
type GeneratorOptions struct {
	OutputPath     string // Output CSV file path
	IncludeHeaders bool   // Write the Anki "#" header lines
}

// DefaultGeneratorOptions returns sensible defaults
func DefaultGeneratorOptions() *GeneratorOptions {
	return &GeneratorOptions{
		OutputPath:     "learnmk_anki.csv",
		IncludeHeaders: true,
	}
}

// Generator collects cards and writes an Anki-compatible import file
type Generator struct {
	options *GeneratorOptions
	cards   []Card
}

// NewGenerator creates a new Anki generator
func NewGenerator(options *GeneratorOptions) *Generator {
	if options == nil {
		options = DefaultGeneratorOptions()
	}
	return &Generator{options: options}
}

// AddCard adds a card to the collection
func (g *Generator) AddCard(card Card) {
	g.cards = append(g.cards, card)
}

// Cards returns the collected cards without duplicates
func (g *Generator) Cards() []Card {
	return lo.UniqBy(g.cards, func(c Card) string {
		return c.English + "\x00" + c.Macedonian
	})
}

// AddTopic adds every pair and sentence of a topic, tagged with the topic id.
// Quiz and matching files share the same two column format.
func (g *Generator) AddTopic(catalog *lesson.Catalog, topic lesson.Topic) (int, error) {
	files, err := catalog.ExerciseFiles(topic)
	if err != nil {
		return 0, err
	}

	tags := []string{tagFor(topic.ID)}
	before := len(g.cards)
	for _, file := range files {
		switch file.Kind {
		case lesson.KindSentence:
			set, err := lesson.LoadSentences(file.Path)
			if err != nil {
				return 0, err
			}
			for _, item := range set.Items {
				g.AddCard(Card{English: item.English, Macedonian: item.Macedonian, Tags: tags})
			}
		default:
			m, err := lesson.LoadMatching(file.Path)
			if err != nil {
				return 0, err
			}
			for _, p := range m.Pairs {
				g.AddCard(Card{English: p.Left, Macedonian: p.Right, Tags: tags})
			}
		}
	}
	return len(g.cards) - before, nil
}

// GenerateCSV creates a CSV file for Anki import
func (g *Generator) GenerateCSV() error {
	file, err := os.Create(g.options.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	if g.options.IncludeHeaders {
		header := "#separator:comma\n#html:false\n#columns:Macedonian,English,Tags\n#tags column:3\n"
		if _, err := file.WriteString(header); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	for _, card := range g.Cards() {
		record := []string{card.Macedonian, card.English, strings.Join(card.Tags, " ")}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write card: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// tagFor turns a topic folder name into a single Anki tag
func tagFor(topicID string) string {
	return "learnmk::" + strings.Join(strings.Fields(topicID), "_")
}
