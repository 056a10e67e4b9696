// Package terminal plays lessons on a line-oriented terminal.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"codeberg.org/snonux/learnmk/internal/exercise"
	"codeberg.org/snonux/learnmk/internal/session"
)

var (
	heading = color.New(color.FgCyan, color.Bold)
	good    = color.New(color.FgGreen)
	bad     = color.New(color.FgRed)
	muted   = color.New(color.Faint)
)

// Player reads commands from In and writes screens to Out
type Player struct {
	ctrl     *session.Controller
	in       *bufio.Scanner
	out      io.Writer
	finished *session.ExerciseResult
}

// NewPlayer takes over the controller's finish callback
func NewPlayer(ctrl *session.Controller, in io.Reader, out io.Writer) *Player {
	p := &Player{
		ctrl: ctrl,
		in:   bufio.NewScanner(in),
		out:  out,
	}
	ctrl.OnFinish(func(r session.ExerciseResult) {
		p.finished = &r
	})
	return p
}

func (p *Player) readLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.in.Scan() {
		if err := p.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(p.in.Text()), nil
}

// readIndex parses a 1 based number in [1, n] into a 0 based index
func readIndex(s string, n int) (int, bool) {
	i, err := strconv.Atoi(s)
	if err != nil || i < 1 || i > n {
		return 0, false
	}
	return i - 1, true
}

// Run shows the topic menu until the user quits or input ends
func (p *Player) Run() error {
	err := p.menu()
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (p *Player) menu() error {
	for {
		topics, err := p.ctrl.Topics()
		if err != nil {
			return err
		}

		heading.Fprintln(p.out, "Topics")
		for _, t := range topics {
			if !t.Unlocked {
				muted.Fprintf(p.out, "  %d. %s (locked)\n", t.Index+1, t.Name)
				continue
			}
			fmt.Fprintf(p.out, "  %d. %s [%d/%d]\n", t.Index+1, t.Name, t.Completed, t.Total)
		}

		line, err := p.readLine("topic number, r=reset, q=quit> ")
		if err != nil {
			return err
		}

		switch line {
		case "q":
			return nil
		case "r":
			archived, err := p.ctrl.ResetProgress()
			if err != nil {
				bad.Fprintf(p.out, "Reset failed: %v\n", err)
				continue
			}
			if archived != "" {
				fmt.Fprintf(p.out, "Progress archived to %s\n", archived)
			}
			good.Fprintln(p.out, "Progress reset")
			continue
		}

		i, ok := readIndex(line, len(topics))
		if !ok {
			bad.Fprintln(p.out, "Unknown command")
			continue
		}
		if err := p.ctrl.SelectTopic(i); err != nil {
			bad.Fprintln(p.out, err)
			continue
		}
		if err := p.topic(); err != nil {
			return err
		}
	}
}

func (p *Player) topic() error {
	for {
		info, err := p.ctrl.CurrentTopic()
		if err != nil {
			return err
		}
		exercises, err := p.ctrl.Exercises()
		if err != nil {
			return err
		}

		heading.Fprintf(p.out, "%s [%d/%d]\n", info.Name, info.Completed, info.Total)
		for _, e := range exercises {
			mark := " "
			if e.Finished {
				mark = good.Sprint("✓")
			}
			fmt.Fprintf(p.out, "  %s %d. %s\n", mark, e.Index+1, e.Title)
		}

		line, err := p.readLine("exercise number, b=back> ")
		if err != nil {
			return err
		}
		if line == "b" {
			return p.ctrl.Back()
		}

		j, ok := readIndex(line, len(exercises))
		if !ok {
			bad.Fprintln(p.out, "Unknown command")
			continue
		}
		if err := p.PlayExercise(j); err != nil {
			return err
		}
	}
}

// PlayExercise starts exercise j of the selected topic and plays it to the
// end or until the user abandons it. Load errors are reported, not returned.
func (p *Player) PlayExercise(j int) error {
	if err := p.ctrl.StartExercise(j); err != nil {
		bad.Fprintf(p.out, "Cannot start exercise: %v\n", err)
		return nil
	}

	p.finished = nil
	var err error
	switch {
	case p.ctrl.Quiz() != nil:
		err = p.quiz(p.ctrl.Quiz())
	case p.ctrl.Matching() != nil:
		err = p.matching(p.ctrl.Matching())
	case p.ctrl.Sentence() != nil:
		err = p.sentence(p.ctrl.Sentence())
	}
	if err != nil {
		return err
	}

	p.reportFinished()
	return nil
}

func (p *Player) reportOutcome(out exercise.Outcome) {
	if out.Correct {
		good.Fprintln(p.out, "Correct!")
		return
	}
	bad.Fprintf(p.out, "Wrong, the answer is %s\n", out.Expected)
}

func (p *Player) reportFinished() {
	r := p.finished
	if r == nil {
		return
	}

	if r.Scored {
		heading.Fprintf(p.out, "Finished: %d/%d\n", r.Score, r.Total)
	} else {
		heading.Fprintf(p.out, "Finished all %d sentences\n", r.Total)
	}
	if r.NewTopicUnlocked {
		good.Fprintln(p.out, "A new topic is unlocked!")
	}
	if r.SaveErr != nil {
		bad.Fprintf(p.out, "Progress could not be saved: %v\n", r.SaveErr)
	}
}

func (p *Player) quiz(q *exercise.Quiz) error {
	for p.ctrl.State() == session.InExercise {
		prompt, err := p.ctrl.QuizPrompt()
		if err != nil {
			bad.Fprintf(p.out, "Cannot continue: %v\n", err)
			return p.ctrl.Back()
		}

		heading.Fprintf(p.out, "%d/%d  %s\n", prompt.Number, prompt.Total, prompt.Question)
		for i, c := range prompt.Choices {
			fmt.Fprintf(p.out, "  %d. %s\n", i+1, c)
		}

		line, err := p.readLine("choice, p=previous, b=back> ")
		if err != nil {
			return err
		}
		switch line {
		case "b":
			return p.ctrl.Back()
		case "p":
			if err := q.GoBack(); err != nil {
				bad.Fprintln(p.out, "No previous card")
			}
			continue
		}

		i, ok := readIndex(line, len(prompt.Choices))
		if !ok {
			bad.Fprintf(p.out, "Pick 1 to %d\n", len(prompt.Choices))
			continue
		}
		out, err := q.Submit(prompt.Choices[i])
		if err != nil {
			return err
		}
		p.reportOutcome(out)
	}
	return nil
}

func (p *Player) matching(m *exercise.Matching) error {
	for p.ctrl.State() == session.InExercise {
		left, right := m.Left(), m.Right()

		heading.Fprintf(p.out, "Matched %d/%d\n", m.Matched(), m.Total())
		for i := 0; i < max(len(left), len(right)); i++ {
			fmt.Fprintf(p.out, "  %2d. %-24s %2d. %s\n", i+1, itemLabel(left, i), i+1, itemLabel(right, i))
		}
		if sel, ok := m.Selected(); ok {
			fmt.Fprintf(p.out, "Selected: %s\n", sel)
		}

		line, err := p.readLine("l <n>, r <n>, b=back> ")
		if err != nil {
			return err
		}
		if line == "b" {
			return p.ctrl.Back()
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			bad.Fprintln(p.out, "Use l <n> or r <n>")
			continue
		}

		switch fields[0] {
		case "l":
			i, ok := readIndex(fields[1], len(left))
			if !ok {
				bad.Fprintln(p.out, "No such item")
				continue
			}
			if err := m.PickLeft(left[i].Text); err != nil {
				bad.Fprintln(p.out, "Already matched")
			}
		case "r":
			i, ok := readIndex(fields[1], len(right))
			if !ok {
				bad.Fprintln(p.out, "No such item")
				continue
			}
			if !m.Available(right[i].Text, false) {
				bad.Fprintln(p.out, "Already matched")
				continue
			}
			out, err := m.PickRight(right[i].Text)
			if errors.Is(err, exercise.ErrInvalidState) {
				bad.Fprintln(p.out, "Select an unmatched left item first")
				continue
			}
			if err != nil {
				return err
			}
			if out.Correct {
				good.Fprintln(p.out, "Match!")
			} else {
				bad.Fprintln(p.out, "No match")
			}
		default:
			bad.Fprintln(p.out, "Use l <n> or r <n>")
		}
	}
	return nil
}

func itemLabel(items []exercise.Item, i int) string {
	if i >= len(items) {
		return ""
	}
	if items[i].Matched {
		return muted.Sprint(items[i].Text + " ✓")
	}
	return items[i].Text
}

func (p *Player) sentence(s *exercise.Sentence) error {
	for p.ctrl.State() == session.InExercise {
		prompt, err := s.Prompt()
		if err != nil {
			return err
		}

		heading.Fprintf(p.out, "%d/%d  %s\n", prompt.Number, prompt.Total, prompt.Source)
		fmt.Fprintf(p.out, "> %s\n", strings.Join(prompt.Built, " "))
		for i, b := range prompt.Pool {
			if b.Used {
				muted.Fprintf(p.out, "  %d. %s\n", i+1, b.Text)
			} else {
				fmt.Fprintf(p.out, "  %d. %s\n", i+1, b.Text)
			}
		}

		line, err := p.readLine("block number, u=undo, s=submit, b=back> ")
		if err != nil {
			return err
		}

		switch line {
		case "b":
			return p.ctrl.Back()
		case "u":
			if err := s.RemoveLast(); err != nil {
				return err
			}
			continue
		case "s":
			out, err := s.Submit()
			if err != nil {
				return err
			}
			if out.Correct {
				good.Fprintln(p.out, "Correct!")
			} else {
				bad.Fprintln(p.out, "Not quite, try again")
			}
			continue
		}

		i, ok := readIndex(line, len(prompt.Pool))
		if !ok {
			bad.Fprintln(p.out, "Unknown command")
			continue
		}
		if err := s.AppendBlock(prompt.Pool[i].Text); err != nil {
			bad.Fprintln(p.out, "Block already used")
		}
	}
	return nil
}
