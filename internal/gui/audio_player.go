package gui

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	ttwidget "github.com/dweymouth/fyne-tooltip/widget"

	"codeberg.org/snonux/learnmk/internal/audio"
	"codeberg.org/snonux/learnmk/internal/logging"
)

// fetchTimeout bounds the synthesis of a choice that was not prefetched
const fetchTimeout = 30 * time.Second

// AudioPlayer pronounces quiz choices. Prefetched files play at once,
// anything else is synthesized on demand.
type AudioPlayer struct {
	widget.BaseWidget

	container   *fyne.Container
	stopButton  *ttwidget.Button
	statusLabel *widget.Label

	prefetcher *audio.Prefetcher
	log        *logging.Logger

	mu         sync.Mutex
	playCmd    *exec.Cmd
	cancel     context.CancelFunc
	generation int
}

// NewAudioPlayer creates the player; a nil prefetcher disables it
func NewAudioPlayer(prefetcher *audio.Prefetcher, log *logging.Logger) *AudioPlayer {
	p := &AudioPlayer{
		prefetcher: prefetcher,
		log:        logging.OrNop(log),
	}

	p.stopButton = ttwidget.NewButtonWithIcon("", theme.MediaStopIcon(), p.Stop)
	p.stopButton.SetToolTip("Stop audio")
	p.stopButton.Disable()

	p.statusLabel = widget.NewLabel("")

	p.container = container.NewHBox(
		p.stopButton,
		layout.NewSpacer(),
		p.statusLabel,
	)

	p.ExtendBaseWidget(p)
	return p
}

// CreateRenderer implements fyne.Widget
func (p *AudioPlayer) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(p.container)
}

// Enabled reports whether pronunciations are available
func (p *AudioPlayer) Enabled() bool {
	return p.prefetcher != nil
}

// PlayText pronounces text, a choice of the given exercise
func (p *AudioPlayer) PlayText(exerciseID, text string) {
	if !p.Enabled() {
		return
	}
	p.Stop()

	if path, ok := p.prefetcher.Lookup(exerciseID, text); ok {
		p.play(path, text)
		return
	}

	p.statusLabel.SetText(fmt.Sprintf("Generating: %s", text))

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	p.mu.Lock()
	p.cancel = cancel
	gen := p.generation
	p.mu.Unlock()

	go func() {
		defer cancel()
		path, err := p.prefetcher.Fetch(ctx, exerciseID, text)
		fyne.Do(func() {
			if !p.current(gen) {
				return
			}
			if err != nil {
				p.log.Warn("failed to synthesize choice", "text", text, "error", err)
				p.statusLabel.SetText("Audio unavailable")
				return
			}
			p.play(path, text)
		})
	}()
}

func (p *AudioPlayer) current(gen int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return gen == p.generation
}

func (p *AudioPlayer) play(path, text string) {
	cmd, err := audio.Play(path)
	if err != nil {
		p.log.Warn("failed to play audio", "file", path, "error", err)
		p.statusLabel.SetText(fmt.Sprintf("Error: %v", err))
		return
	}

	p.mu.Lock()
	p.playCmd = cmd
	p.mu.Unlock()

	p.stopButton.Enable()
	p.statusLabel.SetText(fmt.Sprintf("Playing: %s", text))
}

// Stop kills the running playback and forgets any pending synthesis
func (p *AudioPlayer) Stop() {
	p.mu.Lock()
	p.generation++
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if p.playCmd != nil && p.playCmd.Process != nil {
		p.playCmd.Process.Kill()
	}
	p.playCmd = nil
	p.mu.Unlock()

	p.stopButton.Disable()
	p.statusLabel.SetText("")
}
