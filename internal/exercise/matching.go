package exercise

import (
	"fmt"

	"codeberg.org/snonux/learnmk/internal/lesson"
)

// Item is one entry of a matching column in display order
type Item struct {
	Text    string
	Matched bool
}

// Matching is the matching-pairs engine. Items are tracked per instance so
// duplicate texts in a column are matched one at a time.
type Matching struct {
	mapping map[string]string
	left    []Item
	right   []Item
	total   int

	state    State
	selected string
	matched  int

	done completion
}

// NewMatching starts a matching game over the shuffled columns of m. The
// game needs one match per distinct left item: a repeated left item only
// maps to its last right item, so its earlier pairs cannot be matched.
func NewMatching(m *lesson.Matching) (*Matching, error) {
	if m == nil || len(m.Pairs) == 0 {
		return nil, ErrNoItems
	}

	game := &Matching{
		mapping: m.Mapping,
		total:   len(m.Mapping),
	}
	for _, s := range m.LeftItems {
		game.left = append(game.left, Item{Text: s})
	}
	for _, s := range m.RightItems {
		game.right = append(game.right, Item{Text: s})
	}
	return game, nil
}

// OnComplete registers the hook called once when every pair is matched
func (m *Matching) OnComplete(fn func(Result)) {
	m.done.set(fn)
}

func (m *Matching) State() State { return m.state }
func (m *Matching) Matched() int { return m.matched }
func (m *Matching) Total() int   { return m.total }

// Selected returns the pending left pick, if any
func (m *Matching) Selected() (string, bool) {
	return m.selected, m.state == AwaitingRightPick
}

// Left returns the left column in display order
func (m *Matching) Left() []Item {
	return append([]Item(nil), m.left...)
}

// Right returns the right column in display order
func (m *Matching) Right() []Item {
	return append([]Item(nil), m.right...)
}

// Available reports whether an unmatched instance of text remains in the
// left (left == true) or right column.
func (m *Matching) Available(text string, left bool) bool {
	column := m.right
	if left {
		column = m.left
	}
	return freeInstance(column, text) >= 0
}

// PickLeft selects a left item, replacing any earlier selection
func (m *Matching) PickLeft(item string) error {
	if m.state == Complete {
		return stateError("pick left", m.state)
	}
	if freeInstance(m.left, item) < 0 {
		return fmt.Errorf("left item %q is not available: %w", item, ErrInvalidState)
	}

	m.selected = item
	m.state = AwaitingRightPick
	return nil
}

// PickRight tries to match the selected left item with a right item. A wrong
// pick clears the selection without penalty.
func (m *Matching) PickRight(item string) (Outcome, error) {
	if m.state != AwaitingRightPick {
		return Outcome{}, fmt.Errorf("must select left first: %w", stateError("pick right", m.state))
	}

	ri := freeInstance(m.right, item)
	if ri < 0 {
		return Outcome{}, fmt.Errorf("right item %q is not available: %w", item, ErrInvalidState)
	}

	expected := m.mapping[m.selected]
	out := Outcome{Correct: expected == item, Expected: expected}
	if out.Correct {
		m.left[freeInstance(m.left, m.selected)].Matched = true
		m.right[ri].Matched = true
		m.matched++
	}

	m.selected = ""
	m.state = InProgress

	if m.matched == m.total {
		m.state = Complete
		out.Complete = true
		m.done.fire(Result{Score: m.matched, Total: m.total, Scored: true})
	}
	return out, nil
}

func freeInstance(items []Item, text string) int {
	for i, it := range items {
		if it.Text == text && !it.Matched {
			return i
		}
	}
	return -1
}
