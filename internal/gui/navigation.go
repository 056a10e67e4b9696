package gui

import (
	"errors"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"codeberg.org/snonux/learnmk/internal/lesson"
	"codeberg.org/snonux/learnmk/internal/session"
)

// showMenu lists the topics; locked topics are disabled
func (a *Application) showMenu() {
	a.menuButtons = nil

	topics, err := a.ctrl.Topics()
	if err != nil {
		msg := "Cannot read lessons"
		if errors.Is(err, lesson.ErrContentUnavailable) {
			msg = "Lesson folder not found"
		}
		a.setScreen(screenMenu, container.NewVBox(
			newLabel(msg, true),
			widget.NewLabel(err.Error()),
			a.menuToolbar(),
		))
		return
	}

	list := container.NewVBox()
	for _, t := range topics {
		btn := ttwidget.NewButton(fmt.Sprintf("%s  (%d/%d)", t.Name, t.Completed, t.Total), func() {
			a.onSelectTopic(t.Index)
		})
		switch {
		case !t.Unlocked:
			btn.SetIcon(theme.VisibilityOffIcon())
			btn.SetToolTip("Locked: finish the previous topic first")
			btn.Disable()
		case t.Total > 0 && t.Completed >= t.Total:
			btn.SetIcon(theme.ConfirmIcon())
			btn.SetToolTip("All exercises done")
		default:
			btn.SetToolTip(fmt.Sprintf("%d of %d exercises done (%d)", t.Completed, t.Total, t.Index+1))
		}
		a.menuButtons = append(a.menuButtons, btn)
		list.Add(btn)
	}
	if len(topics) == 0 {
		list.Add(widget.NewLabel("No topics found"))
	}

	a.setScreen(screenMenu, container.NewBorder(
		newLabel("Choose a topic", true),
		a.menuToolbar(),
		nil, nil,
		container.NewVScroll(list),
	))
}

func (a *Application) menuToolbar() fyne.CanvasObject {
	saveBtn := ttwidget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), a.onSave)
	saveBtn.SetToolTip("Save progress")

	resetBtn := ttwidget.NewButtonWithIcon("Reset", theme.DeleteIcon(), a.onReset)
	resetBtn.Importance = widget.DangerImportance
	resetBtn.SetToolTip("Archive progress and start over")

	exitBtn := ttwidget.NewButtonWithIcon("Exit", theme.LogoutIcon(), a.onExit)
	exitBtn.SetToolTip("Save and quit (q)")

	helpBtn := ttwidget.NewButtonWithIcon("", theme.HelpIcon(), a.onShowHotkeys)
	helpBtn.SetToolTip("Show hotkeys (h)")

	bar := container.NewHBox(saveBtn, resetBtn)
	if a.config.History != nil {
		historyBtn := ttwidget.NewButtonWithIcon("History", theme.HistoryIcon(), a.onShowHistory)
		historyBtn.SetToolTip("Recently finished exercises")
		bar.Add(historyBtn)
	}
	bar.Add(layout.NewSpacer())
	bar.Add(helpBtn)
	bar.Add(exitBtn)
	return bar
}

func (a *Application) onSelectTopic(i int) {
	if err := a.ctrl.SelectTopic(i); err != nil {
		a.showError(err)
		a.showMenu()
		return
	}
	a.showTopic()
}

// showTopic lists the exercises of the selected topic
func (a *Application) showTopic() {
	a.exerciseButtons = nil

	info, err := a.ctrl.CurrentTopic()
	if err != nil {
		a.showError(err)
		a.showMenu()
		return
	}
	exercises, err := a.ctrl.Exercises()
	if err != nil {
		a.showError(err)
		a.goBack()
		return
	}

	list := container.NewVBox()
	for _, ex := range exercises {
		btn := ttwidget.NewButton(ex.Title, func() {
			a.onStartExercise(ex.Index)
		})
		btn.SetToolTip(fmt.Sprintf("%s (%s)", ex.File.Name, ex.File.Kind))
		if ex.Finished {
			btn.SetIcon(theme.ConfirmIcon())
		}
		a.exerciseButtons = append(a.exerciseButtons, btn)
		list.Add(btn)
	}
	if len(exercises) == 0 {
		list.Add(widget.NewLabel("This topic has no exercises"))
	}

	a.setScreen(screenTopic, container.NewBorder(
		newLabel(fmt.Sprintf("%s  (%d/%d)", info.Name, info.Completed, info.Total), true),
		container.NewHBox(a.backButton("Back to topics")),
		nil, nil,
		container.NewVScroll(list),
	))
}

func (a *Application) onStartExercise(j int) {
	if err := a.ctrl.StartExercise(j); err != nil {
		a.showError(err)
		a.showTopic()
		return
	}
	a.feedback = ""
	a.showExercise()
}

// showExercise renders the screen of the running engine
func (a *Application) showExercise() {
	switch {
	case a.ctrl.Quiz() != nil:
		a.showQuiz(a.ctrl.Quiz())
	case a.ctrl.Matching() != nil:
		a.showMatching(a.ctrl.Matching())
	case a.ctrl.Sentence() != nil:
		a.showSentence(a.ctrl.Sentence())
	}
}

func (a *Application) backButton(label string) *ttwidget.Button {
	btn := ttwidget.NewButtonWithIcon(label, theme.NavigateBackIcon(), a.goBack)
	btn.SetToolTip(label + " (Esc)")
	return btn
}

// goBack leaves the current screen. A running exercise is abandoned.
func (a *Application) goBack() {
	switch a.ctrl.State() {
	case session.InExercise:
		a.player.Stop()
		if err := a.ctrl.Back(); err != nil {
			a.showError(err)
			return
		}
		a.showTopic()
	case session.AtTopicSelection:
		if err := a.ctrl.Back(); err != nil {
			a.showError(err)
			return
		}
		a.showMenu()
	}
}

func (a *Application) onSave() {
	if err := a.ctrl.SaveProgress(); err != nil {
		a.showError(fmt.Errorf("failed to save progress: %w", err))
		return
	}
	a.showInfo("Saved", "Progress saved")
}

func (a *Application) onReset() {
	a.dialogOpen = true
	d := dialog.NewConfirm("Reset progress",
		"Archive the current progress and lock all topics but the first?",
		func(ok bool) {
			a.dialogOpen = false
			if ok {
				a.resetProgress()
			}
		}, a.window)
	d.Show()
}

func (a *Application) resetProgress() {
	archived, err := a.ctrl.ResetProgress()
	if err != nil {
		a.showError(err)
		return
	}
	a.showMenu()
	if archived != "" {
		a.showInfo("Progress reset", "Previous progress archived to\n"+archived)
	}
}

func (a *Application) onExit() {
	a.window.Close()
}
