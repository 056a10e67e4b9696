package audio

import (
	"context"
	"errors"
	"testing"
	"time"

	"codeberg.org/snonux/learnmk/internal/testutil"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestPrefetcherPrefetchAndLookup(t *testing.T) {
	fake := &testutil.FakeSpeechProvider{}
	p := NewPrefetcher(fake, t.TempDir(), nil)
	defer p.Close()

	p.Prefetch("ex1", []string{"куче", "мачка", "куче", "dog"})

	waitFor(t, func() bool {
		_, a := p.Lookup("ex1", "куче")
		_, b := p.Lookup("ex1", "мачка")
		return a && b
	})

	if _, ok := p.Lookup("ex1", "dog"); ok {
		t.Error("non Cyrillic text was synthesized")
	}
	if n := len(fake.Calls()); n != 2 {
		t.Errorf("provider called %d times, want 2", n)
	}

	path, _ := p.Lookup("ex1", "куче")
	testutil.AssertFileExists(t, path)
}

func TestPrefetcherNewBatchEvictsOld(t *testing.T) {
	fake := &testutil.FakeSpeechProvider{}
	p := NewPrefetcher(fake, t.TempDir(), nil)
	defer p.Close()

	p.Prefetch("ex1", []string{"куче", "мачка"})
	waitFor(t, func() bool {
		_, a := p.Lookup("ex1", "куче")
		_, b := p.Lookup("ex1", "мачка")
		return a && b
	})
	oldPath, _ := p.Lookup("ex1", "мачка")

	p.Prefetch("ex1", []string{"куче", "риба"})
	if _, ok := p.Lookup("ex1", "мачка"); ok {
		t.Error("choice of the previous batch still cached")
	}
	testutil.AssertFileNotExists(t, oldPath)
	if _, ok := p.Lookup("ex1", "куче"); !ok {
		t.Error("choice shared with the new batch was evicted")
	}

	waitFor(t, func() bool {
		_, ok := p.Lookup("ex1", "риба")
		return ok
	})
}

func TestPrefetcherCancel(t *testing.T) {
	p := NewPrefetcher(&testutil.FakeSpeechProvider{}, t.TempDir(), nil)
	defer p.Close()

	path, err := p.Fetch(context.Background(), "ex1", "птица")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if _, err := p.Fetch(context.Background(), "ex2", "птица"); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	p.Cancel("ex1")
	if _, ok := p.Lookup("ex1", "птица"); ok {
		t.Error("Cancel() kept the exercise cache")
	}
	testutil.AssertFileNotExists(t, path)
	if _, ok := p.Lookup("ex2", "птица"); !ok {
		t.Error("Cancel() dropped another exercise")
	}

	p.Invalidate()
	if _, ok := p.Lookup("ex2", "птица"); ok {
		t.Error("Invalidate() kept cached files")
	}
}

func TestPrefetcherFetchError(t *testing.T) {
	boom := errors.New("boom")
	fake := &testutil.FakeSpeechProvider{Errors: map[string]error{"риба": boom}}
	p := NewPrefetcher(fake, t.TempDir(), nil)
	defer p.Close()

	if _, err := p.Fetch(context.Background(), "ex1", "риба"); !errors.Is(err, boom) {
		t.Errorf("Fetch() error = %v, want %v", err, boom)
	}
	if _, ok := p.Lookup("ex1", "риба"); ok {
		t.Error("failed synthesis was cached")
	}
}

func TestPrefetcherBreakerOpens(t *testing.T) {
	boom := errors.New("boom")
	fake := &testutil.FakeSpeechProvider{Errors: map[string]error{"а": boom, "б": boom, "в": boom}}
	p := NewPrefetcher(fake, t.TempDir(), nil)
	defer p.Close()

	ctx := context.Background()
	for _, text := range []string{"а", "б", "в"} {
		p.Fetch(ctx, "ex1", text)
	}

	before := len(fake.Calls())
	if _, err := p.Fetch(ctx, "ex1", "г"); err == nil {
		t.Error("Fetch() succeeded with an open breaker")
	}
	if len(fake.Calls()) != before {
		t.Error("provider called while the breaker is open")
	}
}

func TestPrefetcherClose(t *testing.T) {
	p := NewPrefetcher(&testutil.FakeSpeechProvider{}, t.TempDir(), nil)

	p.Prefetch("ex1", []string{"куче"})
	p.Close()

	if _, ok := p.Lookup("ex1", "куче"); ok {
		t.Error("cache not empty after Close()")
	}
	p.Prefetch("ex1", []string{"мачка"})
	if _, ok := p.Lookup("ex1", "мачка"); ok {
		t.Error("Prefetch() ran after Close()")
	}
}

func TestPrefetcherSharedChoiceAcrossBatches(t *testing.T) {
	gate := make(chan struct{})
	fake := &testutil.FakeSpeechProvider{Gate: gate}
	p := NewPrefetcher(fake, t.TempDir(), nil)
	defer p.Close()

	p.Prefetch("ex1", []string{"куче"})
	waitFor(t, func() bool { return len(fake.Calls()) == 1 })

	// the next card offers the same choice while it is still synthesizing
	p.Prefetch("ex1", []string{"куче", "мачка"})
	close(gate)

	waitFor(t, func() bool {
		_, a := p.Lookup("ex1", "куче")
		_, b := p.Lookup("ex1", "мачка")
		return a && b
	})

	path, _ := p.Lookup("ex1", "куче")
	testutil.AssertFileExists(t, path)

	calls := 0
	for _, text := range fake.Calls() {
		if text == "куче" {
			calls++
		}
	}
	if calls != 1 {
		t.Errorf("shared choice synthesized %d times, want 1", calls)
	}
}

func TestPrefetcherFetchOutlivesCancelledBatch(t *testing.T) {
	gate := make(chan struct{})
	fake := &testutil.FakeSpeechProvider{Gate: gate}
	p := NewPrefetcher(fake, t.TempDir(), nil)
	defer p.Close()

	p.Prefetch("ex1", []string{"куче"})
	waitFor(t, func() bool { return len(fake.Calls()) == 1 })
	p.Prefetch("ex1", []string{"мачка"})

	type result struct {
		path string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		path, err := p.Fetch(context.Background(), "ex1", "куче")
		done <- result{path, err}
	}()
	close(gate)

	select {
	case res := <-done:
		if res.err != nil {
			t.Fatalf("Fetch() error = %v", res.err)
		}
		testutil.AssertFileExists(t, res.path)
	case <-time.After(5 * time.Second):
		t.Fatal("Fetch() did not return")
	}
}

func TestPrefetcherFetchCallerGivesUp(t *testing.T) {
	gate := make(chan struct{})
	fake := &testutil.FakeSpeechProvider{Gate: gate}
	p := NewPrefetcher(fake, t.TempDir(), nil)
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Fetch(ctx, "ex1", "риба"); !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch() error = %v, want context.Canceled", err)
	}

	close(gate)
	waitFor(t, func() bool {
		_, ok := p.Lookup("ex1", "риба")
		return ok
	})
	path, _ := p.Lookup("ex1", "риба")
	testutil.AssertFileExists(t, path)
}
