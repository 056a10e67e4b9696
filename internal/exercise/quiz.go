package exercise

import (
	"fmt"

	"github.com/samber/lo"

	"codeberg.org/snonux/learnmk/internal/lesson"
)

// ChoiceCount is the size of a full choice set
const ChoiceCount = 4

// DistractorPolicy decides what a quiz does when a card lacks distractors
type DistractorPolicy int

const (
	// ShrinkChoices offers every distinct wrong answer there is
	ShrinkChoices DistractorPolicy = iota
	// FailOnShortage makes Prompt return ErrInsufficientDistractors
	FailOnShortage
)

// Prompt is what a front-end shows for the current quiz card
type Prompt struct {
	Question string
	Answer   string
	Number   int // 1 based
	Total    int
	Choices  []string
}

// Quiz is the multiple choice engine
type Quiz struct {
	cards   []lesson.Card
	answers []string
	policy  DistractorPolicy

	state   State
	pos     int
	score   int
	correct []bool
	choices []string

	done completion
}

// NewQuiz starts a quiz over already shuffled cards
func NewQuiz(q *lesson.Quiz, policy DistractorPolicy) (*Quiz, error) {
	if q == nil || len(q.Cards) == 0 {
		return nil, ErrNoItems
	}
	return &Quiz{
		cards:   q.Cards,
		answers: q.Answers,
		policy:  policy,
		correct: make([]bool, len(q.Cards)),
	}, nil
}

// OnComplete registers the hook called once when the last card is answered
func (q *Quiz) OnComplete(fn func(Result)) {
	q.done.set(fn)
}

func (q *Quiz) State() State { return q.state }
func (q *Quiz) Score() int   { return q.score }
func (q *Quiz) Total() int   { return len(q.cards) }

// Position returns the 0 based index of the current card
func (q *Quiz) Position() int { return q.pos }

// Prompt returns the current card with its choice set. The choices stay the
// same until the position changes.
func (q *Quiz) Prompt() (Prompt, error) {
	if q.state == Complete {
		return Prompt{}, stateError("prompt", q.state)
	}

	card := q.cards[q.pos]
	if q.choices == nil {
		choices, err := q.makeChoices(card.Answer)
		if err != nil {
			return Prompt{}, err
		}
		q.choices = choices
	}
	if q.state == Ready {
		q.state = InProgress
	}

	return Prompt{
		Question: card.Prompt,
		Answer:   card.Answer,
		Number:   q.pos + 1,
		Total:    len(q.cards),
		Choices:  append([]string(nil), q.choices...),
	}, nil
}

func (q *Quiz) makeChoices(answer string) ([]string, error) {
	wrong := lo.Uniq(lo.Without(q.answers, answer))
	if len(wrong) < ChoiceCount-1 && q.policy == FailOnShortage {
		return nil, fmt.Errorf("card %d has %d distinct wrong answers: %w", q.pos+1, len(wrong), ErrInsufficientDistractors)
	}

	choices := append(lo.Samples(wrong, ChoiceCount-1), answer)
	return lo.Shuffle(choices), nil
}

// Submit answers the current card and advances
func (q *Quiz) Submit(choice string) (Outcome, error) {
	if q.state == Complete {
		return Outcome{}, stateError("submit", q.state)
	}

	card := q.cards[q.pos]
	out := Outcome{Correct: choice == card.Answer, Expected: card.Answer}
	if out.Correct {
		q.score++
		q.correct[q.pos] = true
	}

	q.pos++
	q.choices = nil
	q.state = InProgress

	if q.pos == len(q.cards) {
		q.state = Complete
		out.Complete = true
		q.done.fire(Result{Score: q.score, Total: len(q.cards), Scored: true})
	}
	return out, nil
}

// GoBack returns to the previous card. A point earned on it is withdrawn so
// the card can be answered again.
func (q *Quiz) GoBack() error {
	if q.state != InProgress || q.pos == 0 {
		return stateError("go back", q.state)
	}

	q.pos--
	if q.correct[q.pos] {
		q.correct[q.pos] = false
		q.score--
	}
	q.choices = nil
	return nil
}
