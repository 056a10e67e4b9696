package exercise

import (
	"errors"
	"reflect"
	"testing"

	"codeberg.org/snonux/learnmk/internal/lesson"
)

func greetingSet() *lesson.SentenceSet {
	return &lesson.SentenceSet{
		Items: []lesson.SentenceItem{
			{
				English:          "Good morning",
				Macedonian:       "Добро утро",
				MacedonianBlocks: []string{"Добро", "утро"},
				EnglishBlocks:    []string{"Good", "morning"},
			},
			{
				English:          "very very good",
				Macedonian:       "многу многу добро",
				MacedonianBlocks: []string{"многу", "многу", "добро"},
				EnglishBlocks:    []string{"very", "very", "good"},
			},
		},
		Total: 2,
	}
}

func TestSentenceCorrectOrder(t *testing.T) {
	s, err := NewSentence(greetingSet(), lesson.EnglishToMacedonian)
	if err != nil {
		t.Fatalf("NewSentence() error = %v", err)
	}

	p, _ := s.Prompt()
	if p.Source != "Good morning" || p.Number != 1 || p.Total != 2 {
		t.Errorf("Prompt() = %+v", p)
	}

	s.AppendBlock("Добро")
	s.AppendBlock("утро")
	out, err := s.Submit()
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !out.Correct || out.Complete {
		t.Errorf("Submit() = %+v, want correct and not complete", out)
	}
	if s.Position() != 1 || len(s.Built()) != 0 {
		t.Errorf("next item not started: position %d built %v", s.Position(), s.Built())
	}
}

func TestSentenceWrongOrderKeepsBuild(t *testing.T) {
	s, _ := NewSentence(greetingSet(), lesson.EnglishToMacedonian)

	s.AppendBlock("утро")
	s.AppendBlock("Добро")
	out, _ := s.Submit()
	if out.Correct {
		t.Error("wrong order accepted")
	}
	if out.Expected != "Добро утро" {
		t.Errorf("Expected = %q", out.Expected)
	}
	if !reflect.DeepEqual(s.Built(), []string{"утро", "Добро"}) {
		t.Errorf("build not retained: %v", s.Built())
	}
	if s.Position() != 0 {
		t.Errorf("Position() = %d, want 0", s.Position())
	}
}

func TestSentenceDuplicateBlocks(t *testing.T) {
	s, _ := NewSentence(greetingSet(), lesson.EnglishToMacedonian)
	s.AppendBlock("Добро")
	s.AppendBlock("утро")
	s.Submit()

	if err := s.AppendBlock("многу"); err != nil {
		t.Fatalf("AppendBlock() error = %v", err)
	}
	p, _ := s.Prompt()
	used := 0
	for _, b := range p.Pool {
		if b.Text == "многу" && b.Used {
			used++
		}
	}
	if used != 1 {
		t.Errorf("%d многу blocks consumed, want 1", used)
	}

	s.AppendBlock("многу")
	if err := s.AppendBlock("многу"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("third многу error = %v, want ErrInvalidState", err)
	}

	s.RemoveLast()
	if !reflect.DeepEqual(s.Built(), []string{"многу"}) {
		t.Errorf("Built() = %v after RemoveLast", s.Built())
	}
	s.AppendBlock("многу")
	s.AppendBlock("добро")

	var results []Result
	s.OnComplete(func(r Result) { results = append(results, r) })
	out, _ := s.Submit()
	if !out.Complete {
		t.Fatalf("Submit() = %+v, want complete", out)
	}
	if len(results) != 1 || results[0] != (Result{Total: 2}) {
		t.Errorf("results = %+v, want one unscored Result{Total: 2}", results)
	}
	if err := s.AppendBlock("x"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("AppendBlock() after complete error = %v", err)
	}
}

func TestSentenceRemoveLastEmpty(t *testing.T) {
	s, _ := NewSentence(greetingSet(), lesson.EnglishToMacedonian)
	if err := s.RemoveLast(); err != nil {
		t.Errorf("RemoveLast() on empty build error = %v", err)
	}
}

func TestSentenceMacedonianToEnglish(t *testing.T) {
	s, _ := NewSentence(greetingSet(), lesson.MacedonianToEnglish)

	p, _ := s.Prompt()
	if p.Source != "Добро утро" {
		t.Errorf("Source = %q, want Macedonian sentence", p.Source)
	}
	s.AppendBlock("Good")
	s.AppendBlock("morning")
	if out, _ := s.Submit(); !out.Correct {
		t.Error("english build rejected")
	}
}

func TestNewSentenceEmpty(t *testing.T) {
	if _, err := NewSentence(&lesson.SentenceSet{}, lesson.EnglishToMacedonian); !errors.Is(err, ErrNoItems) {
		t.Errorf("NewSentence() error = %v, want ErrNoItems", err)
	}
}
