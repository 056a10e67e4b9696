package gui

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"codeberg.org/snonux/learnmk/internal/exercise"
)

func (a *Application) showSentence(s *exercise.Sentence) {
	a.blockButtons = nil

	prompt, err := s.Prompt()
	if err != nil {
		a.showError(err)
		a.goBack()
		return
	}

	pool := container.NewGridWithColumns(4)
	for _, block := range prompt.Pool {
		btn := ttwidget.NewButton(block.Text, func() {
			if err := s.AppendBlock(block.Text); err != nil {
				a.showError(err)
				return
			}
			a.feedback = ""
			a.showSentence(s)
		})
		if block.Used {
			btn.Disable()
		}
		a.blockButtons = append(a.blockButtons, btn)
		pool.Add(btn)
	}

	built := strings.Join(prompt.Built, " ")
	if built == "" {
		built = "..."
	}
	builtLabel := newLabel(built, true)
	builtLabel.Wrapping = fyne.TextWrapWord

	undoBtn := ttwidget.NewButtonWithIcon("Undo", theme.ContentUndoIcon(), func() {
		if err := s.RemoveLast(); err != nil {
			a.showError(err)
			return
		}
		a.showSentence(s)
	})
	undoBtn.SetToolTip("Remove the last block (u)")
	if len(prompt.Built) == 0 {
		undoBtn.Disable()
	}

	submitBtn := ttwidget.NewButtonWithIcon("Check", theme.ConfirmIcon(), func() {
		a.onSubmitSentence(s)
	})
	submitBtn.Importance = widget.HighImportance
	submitBtn.SetToolTip("Check the sentence (s)")
	a.undoButton, a.submitButton = undoBtn, submitBtn

	header := container.NewVBox(
		newLabel(fmt.Sprintf("Sentence %d of %d  (%s)", prompt.Number, prompt.Total, s.Direction()), false),
		newLabel(prompt.Source, true),
	)
	footer := container.NewVBox(
		newFeedbackLabel(a.feedback),
		container.NewHBox(a.backButton("Quit exercise"), layout.NewSpacer(), undoBtn, submitBtn),
	)

	a.setScreen(screenSentence, container.NewBorder(header, footer, nil, nil,
		container.NewVBox(builtLabel, widget.NewSeparator(), pool)))
}

func (a *Application) onSubmitSentence(s *exercise.Sentence) {
	out, err := s.Submit()
	if err != nil {
		a.showError(err)
		return
	}
	if out.Complete {
		return
	}
	if out.Correct {
		a.feedback = "Correct!"
	} else {
		a.feedback = "Not quite, fix the sentence and check again"
	}
	a.showSentence(s)
}
