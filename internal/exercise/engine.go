package exercise

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is returned for an operation the engine's state does not allow
	ErrInvalidState = errors.New("invalid state")
	// ErrInsufficientDistractors is returned by a strict quiz when a card has
	// fewer than three distinct wrong answers
	ErrInsufficientDistractors = errors.New("insufficient distractors")
	// ErrNoItems is returned when an engine is built from an empty exercise
	ErrNoItems = errors.New("exercise has no items")
)

// State is the lifecycle state of an engine
type State int

const (
	Ready State = iota
	InProgress
	AwaitingRightPick
	Complete
)

func (s State) String() string {
	switch s {
	case Ready:
		return "ready"
	case InProgress:
		return "in progress"
	case AwaitingRightPick:
		return "awaiting right pick"
	case Complete:
		return "complete"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Result is reported once when an engine completes
type Result struct {
	Score  int
	Total  int
	Scored bool
}

// Outcome describes the effect of one answer
type Outcome struct {
	Correct  bool
	Expected string
	Complete bool
}

// completion runs the OnComplete hook at most once
type completion struct {
	hook  func(Result)
	fired bool
}

func (c *completion) set(fn func(Result)) {
	c.hook = fn
}

func (c *completion) fire(r Result) {
	if c.fired {
		return
	}
	c.fired = true
	if c.hook != nil {
		c.hook(r)
	}
}

func stateError(op string, s State) error {
	return fmt.Errorf("%s while %s: %w", op, s, ErrInvalidState)
}
