package gui

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	fynetooltip "github.com/dweymouth/fyne-tooltip"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"codeberg.org/snonux/learnmk/internal"
	"codeberg.org/snonux/learnmk/internal/audio"
	"codeberg.org/snonux/learnmk/internal/history"
	"codeberg.org/snonux/learnmk/internal/logging"
	"codeberg.org/snonux/learnmk/internal/session"
)

type screen int

const (
	screenMenu screen = iota
	screenTopic
	screenQuiz
	screenMatching
	screenSentence
)

// HistorySource lists finished exercises for the history window
type HistorySource interface {
	Recent(ctx context.Context, limit int) ([]history.Entry, error)
}

// Config holds GUI application configuration
type Config struct {
	Controller *session.Controller
	Prefetcher *audio.Prefetcher // nil hides the pronunciation buttons
	History    HistorySource     // nil hides the history button
	Logger     *logging.Logger
	App        fyne.App // nil creates the desktop application
}

// Application represents the main GUI application
type Application struct {
	app    fyne.App
	window fyne.Window
	body   *fyne.Container

	ctrl   *session.Controller
	config *Config
	log    *logging.Logger
	player *AudioPlayer

	screen   screen
	feedback string // outcome of the last answer, shown on the next card

	// Buttons of the current screen, used by keyboard shortcuts
	menuButtons     []*ttwidget.Button
	exerciseButtons []*ttwidget.Button
	choiceButtons   []*ttwidget.Button
	leftButtons     []*ttwidget.Button
	rightButtons    []*ttwidget.Button
	blockButtons    []*ttwidget.Button
	prevButton      *ttwidget.Button
	undoButton      *ttwidget.Button
	submitButton    *ttwidget.Button

	lastResult *session.ExerciseResult
	dialogOpen bool
}

// New creates a new GUI application on the controller's menu
func New(config *Config) *Application {
	fyneApp := config.App
	if fyneApp == nil {
		fyneApp = app.NewWithID("org.codeberg.snonux.learnmk")
	}

	a := &Application{
		app:    fyneApp,
		config: config,
		ctrl:   config.Controller,
		log:    logging.OrNop(config.Logger),
	}
	a.player = NewAudioPlayer(config.Prefetcher, a.log)

	a.ctrl.OnFinish(a.onFinished)
	a.setupUI()
	a.showMenu()

	return a
}

// setupUI creates the window; screens are swapped inside body
func (a *Application) setupUI() {
	a.window = a.app.NewWindow(fmt.Sprintf("learnmk v%s - Macedonian Vocabulary", internal.Version))
	a.window.Resize(fyne.NewSize(720, 560))

	a.body = container.NewStack()
	a.window.SetContent(fynetooltip.AddWindowToolTipLayer(a.body, a.window.Canvas()))

	a.window.SetOnClosed(func() {
		a.player.Stop()
		if err := a.ctrl.SaveProgress(); err != nil {
			a.log.Warn("failed to save progress on exit", "error", err)
		}
	})

	a.setupKeyboardShortcuts()
}

// Run starts the GUI application
func (a *Application) Run() {
	a.window.ShowAndRun()
}

func (a *Application) setScreen(s screen, content fyne.CanvasObject) {
	a.screen = s
	if s != screenQuiz {
		a.prevButton = nil
	}
	if s != screenSentence {
		a.undoButton, a.submitButton = nil, nil
	}
	a.body.Objects = []fyne.CanvasObject{container.NewPadded(content)}
	a.body.Refresh()
}

// showError reports err in a dialog and logs it
func (a *Application) showError(err error) {
	a.log.Warn("gui error", "error", err)
	dialog.ShowError(err, a.window)
}

// onFinished runs inside the engine call that completed the exercise
func (a *Application) onFinished(r session.ExerciseResult) {
	a.lastResult = &r
	a.feedback = ""
	a.player.Stop()

	msg := fmt.Sprintf("Score: %d / %d", r.Score, r.Total)
	if !r.Scored {
		msg = fmt.Sprintf("All %d sentences built", r.Total)
	}
	if r.NewTopicUnlocked {
		msg += "\n\nA new topic is unlocked!"
	}

	a.showTopic()
	if r.SaveErr != nil {
		a.showError(fmt.Errorf("progress could not be saved: %w", r.SaveErr))
	}
	a.showInfo("Exercise complete", msg)
}

func (a *Application) showInfo(title, msg string) {
	d := dialog.NewInformation(title, msg, a.window)
	a.dialogOpen = true
	d.SetOnClosed(func() { a.dialogOpen = false })
	d.Show()
}

// newLabel returns a centred label, bold when heading is set
func newLabel(text string, heading bool) *widget.Label {
	return widget.NewLabelWithStyle(text, fyne.TextAlignCenter, fyne.TextStyle{Bold: heading})
}
