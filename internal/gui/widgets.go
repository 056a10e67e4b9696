package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"
)

// newFeedbackLabel shows the outcome of the previous answer
func newFeedbackLabel(text string) *widget.Label {
	l := widget.NewLabelWithStyle(text, fyne.TextAlignCenter, fyne.TextStyle{Italic: true})
	l.Wrapping = fyne.TextWrapWord
	return l
}

// audioButton pronounces a choice of the running exercise
func (a *Application) audioButton(text string) *ttwidget.Button {
	exerciseID := a.ctrl.ExerciseID()
	btn := ttwidget.NewButtonWithIcon("", theme.VolumeUpIcon(), func() {
		a.player.PlayText(exerciseID, text)
	})
	btn.SetToolTip("Pronounce " + text)
	return btn
}
