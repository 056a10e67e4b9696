package gui

import (
	"fmt"

	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"codeberg.org/snonux/learnmk/internal/exercise"
)

func (a *Application) showQuiz(q *exercise.Quiz) {
	a.choiceButtons = nil

	prompt, err := a.ctrl.QuizPrompt()
	if err != nil {
		a.showError(err)
		a.goBack()
		return
	}

	choices := container.NewVBox()
	for i, choice := range prompt.Choices {
		btn := ttwidget.NewButton(choice, func() {
			a.onChoice(q, choice)
		})
		btn.SetToolTip(fmt.Sprintf("Answer %d", i+1))
		a.choiceButtons = append(a.choiceButtons, btn)

		if a.player.Enabled() {
			choices.Add(container.NewBorder(nil, nil, nil, a.audioButton(choice), btn))
		} else {
			choices.Add(btn)
		}
	}

	prevBtn := ttwidget.NewButtonWithIcon("Previous", theme.MediaSkipPreviousIcon(), func() {
		if err := q.GoBack(); err != nil {
			a.showError(err)
			return
		}
		a.feedback = ""
		a.showQuiz(q)
	})
	prevBtn.SetToolTip("Go back one card (p)")
	if q.Position() == 0 {
		prevBtn.Disable()
	}
	a.prevButton = prevBtn

	header := container.NewVBox(
		newLabel(fmt.Sprintf("Card %d of %d    Score %d", prompt.Number, prompt.Total, q.Score()), false),
		newLabel(prompt.Question, true),
	)
	footer := container.NewVBox(
		newFeedbackLabel(a.feedback),
		container.NewHBox(a.backButton("Quit exercise"), layout.NewSpacer(), prevBtn),
	)
	if a.player.Enabled() {
		footer.Add(a.player)
	}

	a.setScreen(screenQuiz, container.NewBorder(header, footer, nil, nil, choices))
}

func (a *Application) onChoice(q *exercise.Quiz, choice string) {
	out, err := q.Submit(choice)
	if err != nil {
		a.showError(err)
		return
	}
	if out.Complete {
		return
	}
	a.feedback = outcomeText(out)
	a.showQuiz(q)
}

// outcomeText describes an answer for the feedback line
func outcomeText(out exercise.Outcome) string {
	if out.Correct {
		return "Correct!"
	}
	return "Wrong, the answer was: " + out.Expected
}
