package progress

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"codeberg.org/snonux/learnmk/internal/archive"
	"codeberg.org/snonux/learnmk/internal/logging"
)

// ErrCorrupt marks a progress document that cannot be used
var ErrCorrupt = errors.New("corrupt progress document")

// TopicProgress is the stored state of one topic
type TopicProgress struct {
	Completed int      `json:"completed"`
	Finished  []string `json:"finished,omitempty"`
}

// Record is the whole progress document
type Record struct {
	UnlockedTopic int                      `json:"unlocked_topic"`
	TopicProgress map[string]TopicProgress `json:"topic_progress"`
}

func newRecord() Record {
	return Record{TopicProgress: make(map[string]TopicProgress)}
}

func (r Record) clone() Record {
	c := Record{
		UnlockedTopic: r.UnlockedTopic,
		TopicProgress: make(map[string]TopicProgress, len(r.TopicProgress)),
	}
	for id, tp := range r.TopicProgress {
		c.TopicProgress[id] = TopicProgress{
			Completed: tp.Completed,
			Finished:  append([]string(nil), tp.Finished...),
		}
	}
	return c
}

// CompletionInput describes one finished exercise
type CompletionInput struct {
	TopicID       string
	TopicIndex    int
	TopicCount    int
	ExerciseFile  string
	ExerciseCount int
}

// Store owns the progress document at one path
type Store struct {
	path   string
	log    *logging.Logger
	record Record
}

// Open loads the document at path. A missing or unusable document yields
// the default state; the problem is logged, never returned.
func Open(path string, log *logging.Logger) *Store {
	s := &Store{
		path:   path,
		log:    logging.OrNop(log).With("progress", path),
		record: newRecord(),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Debug("no progress document yet, starting fresh")
		} else {
			s.log.Warn("cannot read progress document, starting fresh", "error", err)
		}
		return s
	}

	rec, err := decode(data)
	if err != nil {
		s.log.Warn("ignoring progress document", "error", err)
		return s
	}
	s.record = rec
	s.log.Debug("progress loaded", "unlocked_topic", rec.UnlockedTopic, "topics", len(rec.TopicProgress))
	return s
}

// decode reads both the current and the legacy document shape
func decode(data []byte) (Record, error) {
	if !gjson.ValidBytes(data) {
		return Record{}, fmt.Errorf("%w: not valid JSON", ErrCorrupt)
	}
	if err := validate(data); err != nil {
		return Record{}, err
	}

	rec := newRecord()
	doc := gjson.ParseBytes(data)

	unlocked := doc.Get("unlocked_topic")
	if !unlocked.Exists() {
		unlocked = doc.Get("unlocked")
	}
	rec.UnlockedTopic = int(unlocked.Int())

	doc.Get("topic_progress").ForEach(func(key, value gjson.Result) bool {
		tp := TopicProgress{Completed: int(value.Get("completed").Int())}
		for _, f := range value.Get("finished").Array() {
			tp.Finished = append(tp.Finished, f.String())
		}
		tp.Finished = lo.Uniq(tp.Finished)
		rec.TopicProgress[key.String()] = tp
		return true
	})
	return rec, nil
}

// Path returns the document location
func (s *Store) Path() string {
	return s.path
}

// Unlocked returns the index of the highest unlocked topic
func (s *Store) Unlocked() int {
	return s.record.UnlockedTopic
}

// Completed returns the number of distinct exercises finished in a topic
func (s *Store) Completed(topicID string) int {
	return s.record.TopicProgress[topicID].Completed
}

// Finished reports whether an exercise file of a topic has been finished
func (s *Store) Finished(topicID, file string) bool {
	return lo.Contains(s.record.TopicProgress[topicID].Finished, file)
}

// Snapshot returns a deep copy of the current state
func (s *Store) Snapshot() Record {
	return s.record.clone()
}

// RecordCompletion marks an exercise finished, applies the unlock rule and
// persists the result. It reports whether a new topic was unlocked. On a
// save error the in-memory state is kept.
func (s *Store) RecordCompletion(in CompletionInput) (bool, error) {
	tp := s.record.TopicProgress[in.TopicID]
	if !lo.Contains(tp.Finished, in.ExerciseFile) {
		tp.Finished = append(tp.Finished, in.ExerciseFile)
	}

	completed := max(tp.Completed, len(tp.Finished))
	if in.ExerciseCount > 0 {
		completed = min(completed, in.ExerciseCount)
	}
	tp.Completed = completed
	s.record.TopicProgress[in.TopicID] = tp

	unlocked := false
	if in.TopicIndex == s.record.UnlockedTopic &&
		tp.Completed >= in.ExerciseCount &&
		s.record.UnlockedTopic < in.TopicCount-1 {
		s.record.UnlockedTopic++
		unlocked = true
		s.log.Info("topic unlocked", "index", s.record.UnlockedTopic)
	}

	if err := s.Save(); err != nil {
		s.log.Error("failed to save progress", "error", err)
		return unlocked, err
	}
	return unlocked, nil
}

// Save writes the document atomically: temp file, fsync, rename
func (s *Store) Save() error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.record); err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create progress directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write progress: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync progress: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close progress: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace progress: %w", err)
	}
	return nil
}

// Reset archives the current document and returns to the default state.
// It returns the archive location, empty when there was nothing to archive.
func (s *Store) Reset() (string, error) {
	var archived string
	if _, err := os.Stat(s.path); err == nil {
		archived, err = archive.ArchiveFile(s.path)
		if err != nil {
			return "", fmt.Errorf("failed to archive progress: %w", err)
		}
		s.log.Info("progress archived", "archive", archived)
	}

	s.record = newRecord()
	return archived, nil
}
