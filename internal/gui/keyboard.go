package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"
)

// setupKeyboardShortcuts binds hotkeys for Latin and Macedonian layouts
func (a *Application) setupKeyboardShortcuts() {
	a.window.Canvas().SetOnTypedRune(a.handleRune)
	a.window.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyEscape && !a.dialogOpen {
			a.goBack()
		}
	})
}

func (a *Application) handleRune(r rune) {
	if a.dialogOpen {
		return
	}

	if r >= '1' && r <= '9' {
		a.tapNumbered(int(r - '1'))
		return
	}

	switch r {
	case 'h', 'H', 'х', 'Х':
		a.onShowHotkeys()
	case 'p', 'P', 'п', 'П':
		tap(a.prevButton)
	case 'u', 'U', 'у', 'У':
		tap(a.undoButton)
	case 's', 'S', 'с', 'С':
		tap(a.submitButton)
	case 'q', 'Q', 'љ', 'Љ':
		if a.screen == screenMenu {
			a.onExit()
		}
	}
}

// tapNumbered presses the i-th button of the current list
func (a *Application) tapNumbered(i int) {
	var buttons []*ttwidget.Button
	switch a.screen {
	case screenMenu:
		buttons = a.menuButtons
	case screenTopic:
		buttons = a.exerciseButtons
	case screenQuiz:
		buttons = a.choiceButtons
	case screenSentence:
		buttons = a.blockButtons
	}
	if i < len(buttons) {
		tap(buttons[i])
	}
}

func tap(btn *ttwidget.Button) {
	if btn == nil || btn.Disabled() || btn.OnTapped == nil {
		return
	}
	btn.OnTapped()
}

// onShowHotkeys displays the keyboard shortcuts dialog
func (a *Application) onShowHotkeys() {
	hotkeys := `## Keyboard Shortcuts

**1-9** Pick a topic, exercise, answer or sentence block  
**Esc** Back / quit the running exercise  
**p/п** Previous quiz card  
**u/у** Remove the last sentence block  
**s/с** Check the sentence  
**h/х** Show this help  
**q/љ** Quit (on the topic menu)  

---
*All hotkeys work with both Latin and Macedonian keyboards*`

	content := widget.NewRichTextFromMarkdown(hotkeys)
	content.Wrapping = fyne.TextWrapWord

	scroll := container.NewScroll(container.NewPadded(content))
	scroll.SetMinSize(fyne.NewSize(480, 320))

	d := dialog.NewCustom("Keyboard Shortcuts", "Close", scroll, a.window)
	a.dialogOpen = true
	d.SetOnClosed(func() { a.dialogOpen = false })
	d.Show()
}
