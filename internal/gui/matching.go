package gui

import (
	"errors"
	"fmt"

	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"codeberg.org/snonux/learnmk/internal/exercise"
)

func (a *Application) showMatching(m *exercise.Matching) {
	a.leftButtons, a.rightButtons = nil, nil
	selected, awaiting := m.Selected()

	left := container.NewVBox()
	highlighted := false
	for _, item := range m.Left() {
		btn := ttwidget.NewButton(item.Text, func() {
			a.onPickLeft(m, item.Text)
		})
		switch {
		case item.Matched:
			btn.SetIcon(theme.ConfirmIcon())
			btn.Disable()
		case awaiting && !highlighted && item.Text == selected:
			btn.Importance = widget.HighImportance
			highlighted = true
		}
		a.leftButtons = append(a.leftButtons, btn)
		left.Add(btn)
	}

	right := container.NewVBox()
	for _, item := range m.Right() {
		btn := ttwidget.NewButton(item.Text, func() {
			a.onPickRight(m, item.Text)
		})
		if item.Matched {
			btn.SetIcon(theme.ConfirmIcon())
			btn.Disable()
		}
		a.rightButtons = append(a.rightButtons, btn)
		right.Add(btn)
	}

	hint := "Pick a word on the left, then its translation on the right"
	if awaiting {
		hint = fmt.Sprintf("Now pick the translation of %q", selected)
	}

	header := container.NewVBox(
		newLabel(fmt.Sprintf("Matched %d of %d", m.Matched(), m.Total()), true),
		newLabel(hint, false),
	)
	footer := container.NewVBox(
		newFeedbackLabel(a.feedback),
		container.NewHBox(a.backButton("Quit exercise")),
	)

	a.setScreen(screenMatching, container.NewBorder(header, footer, nil, nil,
		container.NewVScroll(container.NewGridWithColumns(2, left, right))))
}

func (a *Application) onPickLeft(m *exercise.Matching, text string) {
	if err := m.PickLeft(text); err != nil {
		a.showError(err)
		return
	}
	a.feedback = ""
	a.showMatching(m)
}

func (a *Application) onPickRight(m *exercise.Matching, text string) {
	out, err := m.PickRight(text)
	switch {
	case errors.Is(err, exercise.ErrInvalidState):
		a.feedback = "Pick a word on the left first"
		a.showMatching(m)
		return
	case err != nil:
		a.showError(err)
		return
	}
	if out.Complete {
		return
	}
	if out.Correct {
		a.feedback = "Correct!"
	} else {
		a.feedback = "Not a pair, try again"
	}
	a.showMatching(m)
}
