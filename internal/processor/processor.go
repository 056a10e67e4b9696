package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/fatih/color"
	"github.com/itchyny/json2yaml"
	"github.com/tidwall/sjson"
	"golang.org/x/exp/maps"

	"codeberg.org/snonux/learnmk/internal"
	"codeberg.org/snonux/learnmk/internal/anki"
	"codeberg.org/snonux/learnmk/internal/audio"
	"codeberg.org/snonux/learnmk/internal/cli"
	"codeberg.org/snonux/learnmk/internal/exercise"
	"codeberg.org/snonux/learnmk/internal/gui"
	"codeberg.org/snonux/learnmk/internal/history"
	"codeberg.org/snonux/learnmk/internal/importer"
	"codeberg.org/snonux/learnmk/internal/lesson"
	"codeberg.org/snonux/learnmk/internal/logging"
	"codeberg.org/snonux/learnmk/internal/models"
	"codeberg.org/snonux/learnmk/internal/progress"
	"codeberg.org/snonux/learnmk/internal/session"
	"codeberg.org/snonux/learnmk/internal/terminal"
)

var (
	title  = color.New(color.FgCyan, color.Bold)
	locked = color.New(color.Faint)
	done   = color.New(color.FgGreen)
)

// Processor wires the stores, audio and the session controller together
// for one learnmk invocation.
type Processor struct {
	flags   *cli.Flags
	log     *logging.Logger
	catalog *lesson.Catalog
	names   *lesson.Names
	store   *progress.Store
	history *history.DB // nil when history is disabled or unavailable
}

// NewProcessor opens the progress file and history database named by flags.
// A broken history database is logged and learnmk runs without it.
func NewProcessor(flags *cli.Flags) (*Processor, error) {
	log, err := logging.New(flags.LogMode)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	p := &Processor{
		flags:   flags,
		log:     log,
		catalog: lesson.NewCatalog(flags.LessonsDir),
		names:   lesson.LoadNames(flags.LessonsDir, log),
		store:   progress.Open(flags.ProgressFile, log),
	}

	if flags.HistoryFile != "" {
		if err := os.MkdirAll(filepath.Dir(flags.HistoryFile), 0755); err != nil {
			log.Warn("history disabled", "error", err)
		} else if db, err := history.Open(flags.HistoryFile); err != nil {
			log.Warn("history disabled", "file", flags.HistoryFile, "error", err)
		} else {
			p.history = db
		}
	}

	return p, nil
}

// Close releases the history database and flushes the logger
func (p *Processor) Close() error {
	defer p.log.Sync()
	if p.history != nil {
		return p.history.Close()
	}
	return nil
}

func (p *Processor) policy() exercise.DistractorPolicy {
	if p.flags.StrictDistractors {
		return exercise.FailOnShortage
	}
	return exercise.ShrinkChoices
}

// NewController creates a session controller on the menu. The prefetcher
// may be nil.
func (p *Processor) NewController(prefetcher *audio.Prefetcher) *session.Controller {
	opts := session.Options{
		Catalog:   p.catalog,
		Names:     p.names,
		Progress:  p.store,
		Policy:    p.policy(),
		UnlockAll: p.flags.UnlockAll,
		Logger:    p.log,
	}
	if p.history != nil {
		opts.History = p.history
	}
	if prefetcher != nil {
		opts.Prefetcher = prefetcher
	}
	return session.New(opts)
}

// AudioConfig translates the flags into a speech provider configuration
func (p *Processor) AudioConfig() *audio.Config {
	config := audio.DefaultProviderConfig()
	config.Provider = p.flags.AudioProvider
	config.CacheDir = p.flags.AudioCacheDir
	config.OpenAIKey = cli.GetOpenAIKey()
	config.OpenAIBaseURL = p.flags.OpenAIBaseURL
	config.Logger = p.log
	if p.flags.OpenAIModel != "" {
		config.OpenAIModel = p.flags.OpenAIModel
	}
	if p.flags.OpenAIVoice != "" {
		config.OpenAIVoice = p.flags.OpenAIVoice
	}
	if p.flags.OpenAISpeed > 0 {
		config.OpenAISpeed = p.flags.OpenAISpeed
	}
	if p.flags.OpenAIInstruction != "" {
		config.OpenAIInstruction = p.flags.OpenAIInstruction
	}
	return config
}

// newPrefetcher returns nil when audio is disabled or no provider works
func (p *Processor) newPrefetcher() *audio.Prefetcher {
	if p.flags.NoAudio {
		return nil
	}
	config := p.AudioConfig()
	provider, err := audio.NewProvider(config)
	if err != nil {
		p.log.Warn("pronunciation audio disabled", "provider", config.Provider, "error", err)
		return nil
	}
	if err := provider.IsAvailable(); err != nil {
		p.log.Warn("pronunciation audio disabled", "provider", provider.Name(), "error", err)
		return nil
	}
	p.log.Info("pronunciation audio enabled", "provider", provider.Name(), "cache", config.CacheDir)
	return audio.NewPrefetcher(provider, config.CacheDir, p.log)
}

// RunGUIMode launches the GUI application
func (p *Processor) RunGUIMode() error {
	prefetcher := p.newPrefetcher()
	if prefetcher != nil {
		defer prefetcher.Close()
	}

	config := &gui.Config{
		Controller: p.NewController(prefetcher),
		Prefetcher: prefetcher,
		Logger:     p.log,
	}
	if p.history != nil {
		config.History = p.history
	}
	gui.New(config).Run()
	return nil
}

// RunTerminal plays lessons on a line-oriented terminal
func (p *Processor) RunTerminal(in io.Reader, out io.Writer) error {
	return terminal.NewPlayer(p.NewController(nil), in, out).Run()
}

// ListTopics prints every topic with its lock state and progress
func (p *Processor) ListTopics(w io.Writer) error {
	ctrl := p.NewController(nil)
	topics, err := ctrl.Topics()
	if err != nil {
		return err
	}
	if len(topics) == 0 {
		fmt.Fprintf(w, "No topics found in %s\n", p.catalog.Root())
		return nil
	}

	title.Fprintf(w, "Topics in %s\n", p.catalog.Root())
	known := make(map[string]bool, len(topics))
	for _, t := range topics {
		known[t.Topic.ID] = true
		line := fmt.Sprintf("%2d. %-24s %d/%d", t.Index+1, t.Name, t.Completed, t.Total)
		if p.history != nil {
			if s, err := p.history.TopicSummary(context.Background(), t.Topic.ID); err != nil {
				p.log.Warn("failed to summarize topic", "topic", t.Topic.ID, "error", err)
			} else if s.Attempts > 0 {
				line += fmt.Sprintf("  (%d runs, best %d)", s.Attempts, s.BestScore)
			}
		}
		switch {
		case !t.Unlocked:
			locked.Fprintln(w, line+"  locked")
		case t.Total > 0 && t.Completed >= t.Total:
			done.Fprintln(w, line+"  done")
		default:
			fmt.Fprintln(w, line)
		}
	}

	// Progress kept for folders that were renamed or removed
	orphans := maps.Keys(p.store.Snapshot().TopicProgress)
	slices.Sort(orphans)
	for _, id := range orphans {
		if !known[id] {
			locked.Fprintf(w, "    progress for missing topic %s\n", id)
		}
	}
	return nil
}

// ProgressDocument returns the saved progress as JSON with a meta block
func (p *Processor) ProgressDocument() ([]byte, error) {
	data, err := json.Marshal(p.store.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("failed to encode progress: %w", err)
	}
	meta := map[string]interface{}{
		"meta.file":         p.store.Path(),
		"meta.generated_at": time.Now().Format(time.RFC3339),
		"meta.version":      internal.Version,
	}
	keys := maps.Keys(meta)
	slices.Sort(keys)
	for _, k := range keys {
		if data, err = sjson.SetBytes(data, k, meta[k]); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", k, err)
		}
	}
	return data, nil
}

// ShowProgress prints the progress document as indented JSON or YAML
func (p *Processor) ShowProgress(w io.Writer, asYAML bool) error {
	data, err := p.ProgressDocument()
	if err != nil {
		return err
	}
	if asYAML {
		if err := json2yaml.Convert(w, bytes.NewReader(data)); err != nil {
			return fmt.Errorf("failed to convert progress to yaml: %w", err)
		}
		return nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return fmt.Errorf("failed to indent progress: %w", err)
	}
	out.WriteByte('\n')
	_, err = out.WriteTo(w)
	return err
}

// ResetProgress archives the progress file and starts from scratch
func (p *Processor) ResetProgress(w io.Writer) error {
	archived, err := p.NewController(nil).ResetProgress()
	if err != nil {
		return err
	}
	if archived == "" {
		fmt.Fprintln(w, "Progress reset")
		return nil
	}
	fmt.Fprintf(w, "Progress reset, previous file archived to %s\n", archived)
	return nil
}

// ShowHistory prints the most recent finished exercises
func (p *Processor) ShowHistory(w io.Writer, limit int) error {
	if p.history == nil {
		return fmt.Errorf("history is not available")
	}
	entries, err := p.history.Recent(context.Background(), limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No exercises finished yet")
		return nil
	}
	for _, e := range entries {
		score := "-"
		if e.Scored {
			score = fmt.Sprintf("%d/%d", e.Score, e.Total)
		}
		fmt.Fprintf(w, "%s  %-8s %-7s %s / %s\n",
			e.FinishedAt.Format("2006-01-02 15:04"), e.Kind, score,
			p.names.Topic(e.Topic), e.Exercise)
	}
	return nil
}

// Import converts a workbook or word list into topic folders under the
// lessons directory
func (p *Processor) Import(path string, w io.Writer) error {
	written, err := importer.Import(path, p.catalog.Root(), p.log)
	if err != nil {
		return err
	}
	for _, path := range written {
		fmt.Fprintf(w, "Wrote %s\n", path)
	}
	fmt.Fprintf(w, "Imported %d lesson files into %s\n", len(written), p.catalog.Root())
	return nil
}

// Export writes every topic of the content root into one Anki import file
func (p *Processor) Export(outputPath string, w io.Writer) error {
	opts := anki.DefaultGeneratorOptions()
	if outputPath != "" {
		opts.OutputPath = outputPath
	}

	topics, err := p.catalog.Topics()
	if err != nil {
		return err
	}

	gen := anki.NewGenerator(opts)
	for _, topic := range topics {
		added, err := gen.AddTopic(p.catalog, topic)
		if err != nil {
			return fmt.Errorf("export topic %s: %w", topic.ID, err)
		}
		p.log.Debug("exported topic", "topic", topic.ID, "cards", added)
	}

	if err := gen.GenerateCSV(); err != nil {
		return err
	}
	fmt.Fprintf(w, "Exported %d cards to %s\n", len(gen.Cards()), opts.OutputPath)
	return nil
}

// ListVoices prints the speech models and voices usable for pronunciations
func (p *Processor) ListVoices(w io.Writer) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return models.NewLister(cli.GetOpenAIKey(), p.flags.OpenAIBaseURL).Print(ctx, w)
}
