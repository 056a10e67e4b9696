package exercise

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"codeberg.org/snonux/learnmk/internal/lesson"
)

// Block is one pool entry of the sentence builder
type Block struct {
	Text string
	Used bool
}

// SentencePrompt is what a front-end shows for the current sentence
type SentencePrompt struct {
	Source string
	Number int // 1 based
	Total  int
	Pool   []Block
	Built  []string
}

// Sentence is the sentence builder engine. Results are unscored.
type Sentence struct {
	items     []lesson.SentenceItem
	direction lesson.Direction

	state State
	pos   int
	pool  []Block
	built []int // pool indices in build order

	done completion
}

// NewSentence starts a sentence builder in the given direction
func NewSentence(set *lesson.SentenceSet, direction lesson.Direction) (*Sentence, error) {
	if set == nil || len(set.Items) == 0 {
		return nil, ErrNoItems
	}

	s := &Sentence{items: set.Items, direction: direction}
	s.showItem()
	return s, nil
}

// OnComplete registers the hook called once after the last sentence
func (s *Sentence) OnComplete(fn func(Result)) {
	s.done.set(fn)
}

func (s *Sentence) State() State                { return s.state }
func (s *Sentence) Direction() lesson.Direction { return s.direction }
func (s *Sentence) Total() int                  { return len(s.items) }

// Position returns the 0 based index of the current sentence
func (s *Sentence) Position() int { return s.pos }

func (s *Sentence) showItem() {
	item := s.items[s.pos]
	blocks := item.MacedonianBlocks
	if s.direction == lesson.MacedonianToEnglish {
		blocks = item.EnglishBlocks
	}

	s.pool = lo.Shuffle(lo.Map(blocks, func(b string, _ int) Block {
		return Block{Text: b}
	}))
	s.built = nil
}

func (s *Sentence) source() string {
	if s.direction == lesson.MacedonianToEnglish {
		return s.items[s.pos].Macedonian
	}
	return s.items[s.pos].English
}

func (s *Sentence) target() string {
	if s.direction == lesson.MacedonianToEnglish {
		return s.items[s.pos].English
	}
	return s.items[s.pos].Macedonian
}

// Prompt returns the current sentence, pool and build
func (s *Sentence) Prompt() (SentencePrompt, error) {
	if s.state == Complete {
		return SentencePrompt{}, stateError("prompt", s.state)
	}
	if s.state == Ready {
		s.state = InProgress
	}

	return SentencePrompt{
		Source: s.source(),
		Number: s.pos + 1,
		Total:  len(s.items),
		Pool:   append([]Block(nil), s.pool...),
		Built:  s.Built(),
	}, nil
}

// Built returns the texts of the blocks placed so far
func (s *Sentence) Built() []string {
	return lo.Map(s.built, func(i int, _ int) string {
		return s.pool[i].Text
	})
}

// AppendBlock consumes one unused pool block with the given text
func (s *Sentence) AppendBlock(text string) error {
	if s.state == Complete {
		return stateError("append block", s.state)
	}

	for i, b := range s.pool {
		if b.Text == text && !b.Used {
			s.pool[i].Used = true
			s.built = append(s.built, i)
			s.state = InProgress
			return nil
		}
	}
	return fmt.Errorf("no unused block %q: %w", text, ErrInvalidState)
}

// RemoveLast takes back the most recently placed block
func (s *Sentence) RemoveLast() error {
	if s.state == Complete {
		return stateError("remove block", s.state)
	}
	if len(s.built) == 0 {
		return nil
	}

	last := s.built[len(s.built)-1]
	s.pool[last].Used = false
	s.built = s.built[:len(s.built)-1]
	return nil
}

// Submit checks the build against the target sentence. A wrong build is kept
// so it can be corrected.
func (s *Sentence) Submit() (Outcome, error) {
	if s.state == Complete {
		return Outcome{}, stateError("submit", s.state)
	}

	target := s.target()
	out := Outcome{
		Correct:  strings.Join(s.Built(), " ") == target,
		Expected: target,
	}
	if !out.Correct {
		return out, nil
	}

	s.pos++
	if s.pos == len(s.items) {
		s.state = Complete
		out.Complete = true
		s.done.fire(Result{Total: len(s.items)})
		return out, nil
	}
	s.state = InProgress
	s.showItem()
	return out, nil
}
