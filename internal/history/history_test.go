package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "data", "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndRecent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	entries := []Entry{
		{Topic: "01_animals", Exercise: "words.csv", Kind: "quiz", Score: 3, Scored: true, Total: 4, FinishedAt: base},
		{Topic: "01_animals", Exercise: "match_pets.csv", ExerciseIndex: 1, Kind: "matching", Score: 2, Scored: true, Total: 2, FinishedAt: base.Add(time.Minute)},
		{Topic: "02_greetings", TopicIndex: 1, Exercise: "sentence_hi_en_mk.csv", Kind: "sentence", Total: 2, FinishedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		id, err := db.Record(ctx, e)
		if err != nil {
			t.Fatalf("Record() error = %v", err)
		}
		if id == "" {
			t.Error("Record() returned an empty id")
		}
	}

	recent, err := db.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Recent() returned %d entries, want 2", len(recent))
	}

	newest := recent[0]
	if newest.Exercise != "sentence_hi_en_mk.csv" || newest.Scored || newest.Score != 0 {
		t.Errorf("newest = %+v, want the unscored sentence run", newest)
	}
	if !newest.FinishedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("FinishedAt = %v", newest.FinishedAt)
	}
	if recent[1].Exercise != "match_pets.csv" || !recent[1].Scored || recent[1].Score != 2 {
		t.Errorf("second = %+v", recent[1])
	}
}

func TestTopicSummary(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	for _, score := range []int{1, 4, 2} {
		if _, err := db.Record(ctx, Entry{Topic: "01_animals", Exercise: "words.csv", Kind: "quiz", Score: score, Scored: true, Total: 4}); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}
	db.Record(ctx, Entry{Topic: "01_animals", Exercise: "match_pets.csv", Kind: "matching", Score: 2, Scored: true, Total: 2})

	s, err := db.TopicSummary(ctx, "01_animals")
	if err != nil {
		t.Fatalf("TopicSummary() error = %v", err)
	}
	if s.Attempts != 4 || s.BestScore != 4 || s.Exercises != 2 {
		t.Errorf("TopicSummary() = %+v, want 4 attempts, best 4, 2 exercises", s)
	}

	empty, err := db.TopicSummary(ctx, "99_none")
	if err != nil {
		t.Fatalf("TopicSummary() error = %v", err)
	}
	if empty.Attempts != 0 || empty.BestScore != 0 {
		t.Errorf("empty summary = %+v", empty)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := context.Background()

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	db.Record(ctx, Entry{Topic: "01_a", Exercise: "w.csv", Kind: "quiz", Scored: true, Score: 1, Total: 1})
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer db.Close()

	recent, _ := db.Recent(ctx, 10)
	if len(recent) != 1 {
		t.Errorf("Recent() after reopen = %d entries, want 1", len(recent))
	}
}
