package gui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"codeberg.org/snonux/learnmk/internal/history"
)

// historyLimit is the number of results the history window shows
const historyLimit = 50

// HistoryView is a read-only list of finished exercises, newest first
type HistoryView struct {
	widget.BaseWidget

	container  *fyne.Container
	entry      *widget.Entry
	scrollView *container.Scroll
}

// NewHistoryView creates an empty history view
func NewHistoryView() *HistoryView {
	v := &HistoryView{}

	v.entry = widget.NewMultiLineEntry()
	v.entry.Disable()
	v.entry.Wrapping = fyne.TextWrapOff

	v.scrollView = container.NewScroll(v.entry)
	v.scrollView.SetMinSize(fyne.NewSize(560, 360))

	v.container = container.NewBorder(
		widget.NewLabel("Finished exercises (newest first):"),
		nil, nil, nil,
		v.scrollView,
	)

	v.ExtendBaseWidget(v)
	return v
}

// CreateRenderer implements fyne.Widget
func (v *HistoryView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.container)
}

// SetEntries replaces the listed results
func (v *HistoryView) SetEntries(entries []history.Entry) {
	v.entry.SetText(formatHistory(entries))
	v.scrollView.Offset = fyne.NewPos(0, 0)
	v.scrollView.Refresh()
}

// Text returns what the view currently shows
func (v *HistoryView) Text() string {
	return v.entry.Text
}

func formatHistory(entries []history.Entry) string {
	if len(entries) == 0 {
		return "Nothing finished yet"
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		score := "unscored"
		if e.Scored {
			score = fmt.Sprintf("%d/%d", e.Score, e.Total)
		}
		lines = append(lines, fmt.Sprintf("[%s] %s / %s  %s  %s",
			e.FinishedAt.Format("2006-01-02 15:04"), e.Topic, e.Exercise, e.Kind, score))
	}
	return strings.Join(lines, "\n")
}

// onShowHistory opens a window with the most recent results
func (a *Application) onShowHistory() {
	if a.config.History == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	entries, err := a.config.History.Recent(ctx, historyLimit)
	if err != nil {
		a.showError(fmt.Errorf("failed to load history: %w", err))
		return
	}

	view := NewHistoryView()
	view.SetEntries(entries)

	w := a.app.NewWindow("learnmk history")
	w.SetContent(container.NewPadded(view))
	w.Show()
}
