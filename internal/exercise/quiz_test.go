package exercise

import (
	"errors"
	"testing"

	"github.com/samber/lo"

	"codeberg.org/snonux/learnmk/internal/lesson"
)

func animalsQuiz() *lesson.Quiz {
	cards := []lesson.Card{
		{Prompt: "dog", Answer: "куче"},
		{Prompt: "cat", Answer: "мачка"},
		{Prompt: "bird", Answer: "птица"},
		{Prompt: "fish", Answer: "риба"},
		{Prompt: "horse", Answer: "коњ"},
	}
	return &lesson.Quiz{
		Cards:   cards,
		Answers: lo.Map(cards, func(c lesson.Card, _ int) string { return c.Answer }),
	}
}

func TestQuizChoices(t *testing.T) {
	q, err := NewQuiz(animalsQuiz(), ShrinkChoices)
	if err != nil {
		t.Fatalf("NewQuiz() error = %v", err)
	}

	for i := 0; i < q.Total(); i++ {
		p, err := q.Prompt()
		if err != nil {
			t.Fatalf("Prompt() error = %v", err)
		}
		if len(p.Choices) != ChoiceCount {
			t.Errorf("card %d: %d choices, want %d", p.Number, len(p.Choices), ChoiceCount)
		}
		if n := lo.Count(p.Choices, p.Answer); n != 1 {
			t.Errorf("card %d: correct answer appears %d times", p.Number, n)
		}
		if len(lo.Uniq(p.Choices)) != len(p.Choices) {
			t.Errorf("card %d: repeated choice in %v", p.Number, p.Choices)
		}
		if _, err := q.Submit(p.Answer); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}
}

func TestQuizChoicesStablePerShowing(t *testing.T) {
	q, _ := NewQuiz(animalsQuiz(), ShrinkChoices)

	first, _ := q.Prompt()
	second, _ := q.Prompt()
	if !lo.Every(first.Choices, second.Choices) || len(first.Choices) != len(second.Choices) {
		t.Errorf("choices changed without moving: %v vs %v", first.Choices, second.Choices)
	}
}

func TestQuizDistractorShortage(t *testing.T) {
	small := &lesson.Quiz{
		Cards:   []lesson.Card{{Prompt: "one", Answer: "еден"}, {Prompt: "two", Answer: "два"}, {Prompt: "uno", Answer: "еден"}},
		Answers: []string{"еден", "два", "еден"},
	}

	t.Run("shrink", func(t *testing.T) {
		q, _ := NewQuiz(small, ShrinkChoices)
		p, err := q.Prompt()
		if err != nil {
			t.Fatalf("Prompt() error = %v", err)
		}
		if len(p.Choices) != 2 {
			t.Errorf("choices = %v, want 2 entries", p.Choices)
		}
	})

	t.Run("strict", func(t *testing.T) {
		q, _ := NewQuiz(small, FailOnShortage)
		if _, err := q.Prompt(); !errors.Is(err, ErrInsufficientDistractors) {
			t.Errorf("Prompt() error = %v, want ErrInsufficientDistractors", err)
		}
	})
}

func TestQuizScoringAndCompletion(t *testing.T) {
	q, _ := NewQuiz(animalsQuiz(), ShrinkChoices)

	var results []Result
	q.OnComplete(func(r Result) { results = append(results, r) })

	for i := 0; i < q.Total(); i++ {
		p, _ := q.Prompt()
		answer := p.Answer
		if i == 1 {
			answer = "wrong"
		}
		out, err := q.Submit(answer)
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if out.Correct != (i != 1) {
			t.Errorf("card %d Correct = %v", i, out.Correct)
		}
		if out.Complete != (i == q.Total()-1) {
			t.Errorf("card %d Complete = %v", i, out.Complete)
		}
	}

	if q.State() != Complete {
		t.Fatalf("State() = %s, want complete", q.State())
	}
	if len(results) != 1 {
		t.Fatalf("OnComplete fired %d times, want 1", len(results))
	}
	if results[0] != (Result{Score: 4, Total: 5, Scored: true}) {
		t.Errorf("Result = %+v", results[0])
	}

	if _, err := q.Submit("куче"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Submit() after complete error = %v, want ErrInvalidState", err)
	}
	if _, err := q.Prompt(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Prompt() after complete error = %v, want ErrInvalidState", err)
	}
	if len(results) != 1 {
		t.Errorf("OnComplete fired again")
	}
}

func TestQuizGoBack(t *testing.T) {
	q, _ := NewQuiz(animalsQuiz(), ShrinkChoices)

	if err := q.GoBack(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("GoBack() at start error = %v, want ErrInvalidState", err)
	}

	p, _ := q.Prompt()
	if err := q.GoBack(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("GoBack() on first card error = %v, want ErrInvalidState", err)
	}

	q.Submit(p.Answer)
	if q.Score() != 1 {
		t.Fatalf("Score() = %d, want 1", q.Score())
	}

	if err := q.GoBack(); err != nil {
		t.Fatalf("GoBack() error = %v", err)
	}
	if q.Position() != 0 || q.Score() != 0 {
		t.Errorf("after GoBack position = %d score = %d, want 0 0", q.Position(), q.Score())
	}

	again, _ := q.Prompt()
	if again.Question != p.Question {
		t.Errorf("GoBack() showed %q, want %q", again.Question, p.Question)
	}

	// Answering every card correctly after going back never exceeds the total
	for q.State() != Complete {
		p, _ := q.Prompt()
		q.Submit(p.Answer)
	}
	if q.Score() != q.Total() {
		t.Errorf("Score() = %d, want %d", q.Score(), q.Total())
	}
}

func TestNewQuizEmpty(t *testing.T) {
	if _, err := NewQuiz(&lesson.Quiz{}, ShrinkChoices); !errors.Is(err, ErrNoItems) {
		t.Errorf("NewQuiz() error = %v, want ErrNoItems", err)
	}
}
