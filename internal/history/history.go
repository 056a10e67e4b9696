// Package history keeps a SQLite log of every finished exercise.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/segmentio/ksuid"
)

// Entry is one finished exercise run
type Entry struct {
	ID            string
	Topic         string
	TopicIndex    int
	Exercise      string
	ExerciseIndex int
	Kind          string
	Score         int
	Scored        bool
	Total         int
	FinishedAt    time.Time
}

// Summary aggregates the runs of one topic
type Summary struct {
	Topic     string
	Attempts  int
	BestScore int
	Exercises int // distinct exercise files
}

// DB is an open history database
type DB struct {
	db *sql.DB
}

// Open opens or creates the history database at path
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// sqlite serializes writers anyway
	db.SetMaxOpenConns(1)

	h := &DB{db: db}
	if err := h.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return h, nil
}

func (h *DB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS results (
			id text PRIMARY KEY,
			topic text NOT NULL,
			topic_index integer NOT NULL,
			exercise text NOT NULL,
			exercise_index integer NOT NULL,
			kind text NOT NULL,
			score integer,
			total integer NOT NULL,
			finished_at integer NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS ix_results_topic ON results (topic)`,
		`CREATE INDEX IF NOT EXISTS ix_results_finished ON results (finished_at)`,
	}

	for _, query := range queries {
		if _, err := h.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	return nil
}

// Record appends an entry and returns its id. Unscored entries store a
// NULL score.
func (h *DB) Record(ctx context.Context, e Entry) (string, error) {
	if e.ID == "" {
		e.ID = ksuid.New().String()
	}
	if e.FinishedAt.IsZero() {
		e.FinishedAt = time.Now()
	}

	var score sql.NullInt64
	if e.Scored {
		score = sql.NullInt64{Int64: int64(e.Score), Valid: true}
	}

	_, err := h.db.ExecContext(ctx,
		`INSERT INTO results (id, topic, topic_index, exercise, exercise_index, kind, score, total, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Topic, e.TopicIndex, e.Exercise, e.ExerciseIndex, e.Kind, score, e.Total, e.FinishedAt.UnixMilli(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert result: %w", err)
	}
	return e.ID, nil
}

// Recent returns up to limit entries, newest first
func (h *DB) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, topic, topic_index, exercise, exercise_index, kind, score, total, finished_at
		 FROM results ORDER BY finished_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			score    sql.NullInt64
			finished int64
		)
		if err := rows.Scan(&e.ID, &e.Topic, &e.TopicIndex, &e.Exercise, &e.ExerciseIndex, &e.Kind, &score, &e.Total, &finished); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		e.Scored = score.Valid
		e.Score = int(score.Int64)
		e.FinishedAt = time.UnixMilli(finished)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// TopicSummary aggregates the entries of one topic
func (h *DB) TopicSummary(ctx context.Context, topic string) (Summary, error) {
	s := Summary{Topic: topic}
	row := h.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COUNT(DISTINCT exercise)
		 FROM results WHERE topic = ?`, topic)
	if err := row.Scan(&s.Attempts, &s.BestScore, &s.Exercises); err != nil {
		return s, fmt.Errorf("failed to summarize topic %s: %w", topic, err)
	}
	return s, nil
}

// Close closes the database
func (h *DB) Close() error {
	return h.db.Close()
}
