// Package session drives the menu, topic and exercise screens of a learning
// session and records finished exercises.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codeberg.org/snonux/learnmk/internal"
	"codeberg.org/snonux/learnmk/internal/exercise"
	"codeberg.org/snonux/learnmk/internal/history"
	"codeberg.org/snonux/learnmk/internal/lesson"
	"codeberg.org/snonux/learnmk/internal/logging"
	"codeberg.org/snonux/learnmk/internal/progress"
)

var (
	ErrTopicLocked    = errors.New("topic is locked")
	ErrNoSuchTopic    = errors.New("no such topic")
	ErrNoSuchExercise = errors.New("no such exercise")
	ErrWrongState     = errors.New("not allowed in the current state")
)

// State is the screen the session is on
type State int

const (
	AtMenu State = iota
	AtTopicSelection
	InExercise
)

func (s State) String() string {
	switch s {
	case AtMenu:
		return "menu"
	case AtTopicSelection:
		return "topic selection"
	case InExercise:
		return "exercise"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Recorder stores finished exercises
type Recorder interface {
	Record(ctx context.Context, e history.Entry) (string, error)
}

// Prefetcher receives the choices of every new quiz prompt
type Prefetcher interface {
	Prefetch(exerciseID string, texts []string)
	Cancel(exerciseID string)
}

// TopicInfo describes one topic on the menu
type TopicInfo struct {
	Topic     lesson.Topic
	Index     int
	Name      string
	Unlocked  bool
	Completed int
	Total     int
}

// ExerciseInfo describes one exercise of the selected topic
type ExerciseInfo struct {
	File     lesson.ExerciseFile
	Index    int
	Title    string
	Finished bool
}

// ExerciseResult is produced once per completed exercise run
type ExerciseResult struct {
	TopicID       string
	TopicIndex    int
	ExerciseFile  string
	ExerciseIndex int
	Kind          lesson.Kind
	Score         int
	Scored        bool
	Total         int
	FinishedAt    time.Time

	NewTopicUnlocked bool
	SaveErr          error
}

// Options configures a Controller. Catalog and Progress are required.
type Options struct {
	Catalog    *lesson.Catalog
	Names      *lesson.Names
	Progress   *progress.Store
	History    Recorder
	Prefetcher Prefetcher
	Policy     exercise.DistractorPolicy
	UnlockAll  bool
	Logger     *logging.Logger
}

// Controller is the session state machine. It is not safe for concurrent use.
type Controller struct {
	opts Options
	log  *logging.Logger

	state State

	topics     []lesson.Topic
	topicIndex int
	files      []lesson.ExerciseFile

	exerciseIndex int
	exerciseID    string
	run           int

	quiz     *exercise.Quiz
	matching *exercise.Matching
	sentence *exercise.Sentence

	onFinish func(ExerciseResult)
}

// New creates a controller on the menu
func New(opts Options) *Controller {
	if opts.Names == nil {
		opts.Names = lesson.NewNames()
	}
	return &Controller{
		opts: opts,
		log:  logging.OrNop(opts.Logger),
	}
}

// OnFinish registers the callback run after every completed exercise
func (c *Controller) OnFinish(fn func(ExerciseResult)) {
	c.onFinish = fn
}

func (c *Controller) State() State { return c.state }

func (c *Controller) Quiz() *exercise.Quiz         { return c.quiz }
func (c *Controller) Matching() *exercise.Matching { return c.matching }
func (c *Controller) Sentence() *exercise.Sentence { return c.sentence }

func (c *Controller) unlocked(index int) bool {
	return c.opts.UnlockAll || index <= c.opts.Progress.Unlocked()
}

// Topics lists every topic with its lock and completion state
func (c *Controller) Topics() ([]TopicInfo, error) {
	topics, err := c.opts.Catalog.Topics()
	if err != nil {
		return nil, err
	}
	c.topics = topics

	infos := make([]TopicInfo, 0, len(topics))
	for i, t := range topics {
		info := TopicInfo{
			Topic:     t,
			Index:     i,
			Name:      c.opts.Names.Topic(t.ID),
			Unlocked:  c.unlocked(i),
			Completed: c.opts.Progress.Completed(t.ID),
		}
		if files, err := c.opts.Catalog.ExerciseFiles(t); err != nil {
			c.log.Warn("cannot list exercises", "topic", t.ID, "error", err)
		} else {
			info.Total = len(files)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// SelectTopic opens the topic at index i
func (c *Controller) SelectTopic(i int) error {
	if c.state != AtMenu {
		return fmt.Errorf("select topic from %s: %w", c.state, ErrWrongState)
	}

	topics, err := c.opts.Catalog.Topics()
	if err != nil {
		return err
	}
	if i < 0 || i >= len(topics) {
		return fmt.Errorf("topic %d of %d: %w", i, len(topics), ErrNoSuchTopic)
	}
	if !c.unlocked(i) {
		return fmt.Errorf("topic %s: %w", topics[i].ID, ErrTopicLocked)
	}

	files, err := c.opts.Catalog.ExerciseFiles(topics[i])
	if err != nil {
		return err
	}

	c.topics = topics
	c.topicIndex = i
	c.files = files
	c.state = AtTopicSelection
	c.log.Debug("topic selected", "topic", topics[i].ID, "exercises", len(files))
	return nil
}

// CurrentTopic returns the selected topic
func (c *Controller) CurrentTopic() (TopicInfo, error) {
	if c.state == AtMenu {
		return TopicInfo{}, fmt.Errorf("no topic selected: %w", ErrWrongState)
	}
	t := c.topics[c.topicIndex]
	return TopicInfo{
		Topic:     t,
		Index:     c.topicIndex,
		Name:      c.opts.Names.Topic(t.ID),
		Unlocked:  true,
		Completed: c.opts.Progress.Completed(t.ID),
		Total:     len(c.files),
	}, nil
}

// Exercises lists the exercises of the selected topic
func (c *Controller) Exercises() ([]ExerciseInfo, error) {
	topic, err := c.CurrentTopic()
	if err != nil {
		return nil, err
	}

	infos := make([]ExerciseInfo, 0, len(c.files))
	for j, f := range c.files {
		infos = append(infos, ExerciseInfo{
			File:     f,
			Index:    j,
			Title:    c.opts.Names.Exercise(topic.Name, f, j),
			Finished: c.opts.Progress.Finished(topic.Topic.ID, f.Name),
		})
	}
	return infos, nil
}

// StartExercise loads exercise j of the selected topic and builds its engine
func (c *Controller) StartExercise(j int) error {
	if c.state != AtTopicSelection {
		return fmt.Errorf("start exercise from %s: %w", c.state, ErrWrongState)
	}
	if j < 0 || j >= len(c.files) {
		return fmt.Errorf("exercise %d of %d: %w", j, len(c.files), ErrNoSuchExercise)
	}

	file := c.files[j]
	c.run++
	run := c.run
	hook := func(r exercise.Result) { c.finish(run, r) }

	var (
		quiz     *exercise.Quiz
		matching *exercise.Matching
		sentence *exercise.Sentence
	)
	switch file.Kind {
	case lesson.KindMatching:
		m, err := lesson.LoadMatching(file.Path)
		if err != nil {
			return err
		}
		if matching, err = exercise.NewMatching(m); err != nil {
			return fmt.Errorf("%s: %w", file.Name, err)
		}
		matching.OnComplete(hook)
	case lesson.KindSentence:
		s, err := lesson.LoadSentences(file.Path)
		if err != nil {
			return err
		}
		if sentence, err = exercise.NewSentence(s, file.Direction); err != nil {
			return fmt.Errorf("%s: %w", file.Name, err)
		}
		sentence.OnComplete(hook)
	default:
		q, err := lesson.LoadQuiz(file.Path)
		if err != nil {
			return err
		}
		if quiz, err = exercise.NewQuiz(q, c.opts.Policy); err != nil {
			return fmt.Errorf("%s: %w", file.Name, err)
		}
		quiz.OnComplete(hook)
	}

	c.quiz, c.matching, c.sentence = quiz, matching, sentence
	c.exerciseIndex = j
	c.exerciseID = internal.ExerciseID(c.topics[c.topicIndex].ID, file.Name)
	c.state = InExercise
	c.log.Debug("exercise started", "file", file.Name, "kind", file.Kind.String())
	return nil
}

// ExerciseID identifies the running exercise, empty outside an exercise
func (c *Controller) ExerciseID() string {
	if c.state != InExercise {
		return ""
	}
	return c.exerciseID
}

// QuizPrompt returns the current quiz prompt and hands its choices to the
// prefetcher.
func (c *Controller) QuizPrompt() (exercise.Prompt, error) {
	if c.state != InExercise || c.quiz == nil {
		return exercise.Prompt{}, fmt.Errorf("no quiz running: %w", ErrWrongState)
	}

	p, err := c.quiz.Prompt()
	if err != nil {
		return p, err
	}
	if c.opts.Prefetcher != nil {
		c.opts.Prefetcher.Prefetch(c.exerciseID, p.Choices)
	}
	return p, nil
}

// finish runs when the engine of run completes. Completions of abandoned
// runs are ignored.
func (c *Controller) finish(run int, r exercise.Result) {
	if run != c.run || c.state != InExercise {
		return
	}

	topic := c.topics[c.topicIndex]
	file := c.files[c.exerciseIndex]
	result := ExerciseResult{
		TopicID:       topic.ID,
		TopicIndex:    c.topicIndex,
		ExerciseFile:  file.Name,
		ExerciseIndex: c.exerciseIndex,
		Kind:          file.Kind,
		Score:         r.Score,
		Scored:        r.Scored,
		Total:         r.Total,
		FinishedAt:    time.Now(),
	}

	result.NewTopicUnlocked, result.SaveErr = c.opts.Progress.RecordCompletion(progress.CompletionInput{
		TopicID:       topic.ID,
		TopicIndex:    c.topicIndex,
		TopicCount:    len(c.topics),
		ExerciseFile:  file.Name,
		ExerciseCount: len(c.files),
	})

	c.recordHistory(result)
	if c.opts.Prefetcher != nil {
		c.opts.Prefetcher.Cancel(c.exerciseID)
	}

	c.leaveExercise()
	c.log.Info("exercise finished", "topic", topic.ID, "file", file.Name, "score", r.Score, "total", r.Total, "scored", r.Scored)

	if c.onFinish != nil {
		c.onFinish(result)
	}
}

func (c *Controller) recordHistory(r ExerciseResult) {
	if c.opts.History == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := c.opts.History.Record(ctx, history.Entry{
		Topic:         r.TopicID,
		TopicIndex:    r.TopicIndex,
		Exercise:      r.ExerciseFile,
		ExerciseIndex: r.ExerciseIndex,
		Kind:          r.Kind.String(),
		Score:         r.Score,
		Scored:        r.Scored,
		Total:         r.Total,
		FinishedAt:    r.FinishedAt,
	})
	if err != nil {
		c.log.Warn("failed to record history", "error", err)
	}
}

func (c *Controller) leaveExercise() {
	c.quiz, c.matching, c.sentence = nil, nil, nil
	c.exerciseID = ""
	c.state = AtTopicSelection
}

// Back abandons a running exercise without recording it, or returns from
// the topic screen to the menu.
func (c *Controller) Back() error {
	switch c.state {
	case InExercise:
		if c.opts.Prefetcher != nil {
			c.opts.Prefetcher.Cancel(c.exerciseID)
		}
		c.run++
		c.leaveExercise()
	case AtTopicSelection:
		c.files = nil
		c.state = AtMenu
	default:
		return fmt.Errorf("back from %s: %w", c.state, ErrWrongState)
	}
	return nil
}

// SaveProgress writes the progress document
func (c *Controller) SaveProgress() error {
	return c.opts.Progress.Save()
}

// ResetProgress archives the progress document and starts over. It is only
// allowed on the menu.
func (c *Controller) ResetProgress() (string, error) {
	if c.state != AtMenu {
		return "", fmt.Errorf("reset from %s: %w", c.state, ErrWrongState)
	}
	return c.opts.Progress.Reset()
}
