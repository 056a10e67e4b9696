package audio

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"codeberg.org/snonux/learnmk/internal/logging"
)

// prefetchParallelism bounds concurrent provider calls of one batch
const prefetchParallelism = 4

var errPrefetcherClosed = errors.New("prefetcher closed")

type cacheKey struct {
	exercise string
	text     string
}

type batch struct {
	exercise string
	keys     []cacheKey
	cancel   context.CancelFunc
}

// Prefetcher synthesizes quiz choices ahead of time. It only ever touches
// its own cache; cancelling never blocks.
type Prefetcher struct {
	provider Provider
	dir      string
	log      *logging.Logger
	breaker  *gobreaker.CircuitBreaker
	flight   singleflight.Group

	// provider calls run under ctx, which only Close cancels
	ctx  context.Context
	stop context.CancelFunc

	mu      sync.Mutex
	cache   map[cacheKey]string
	current *batch
	closed  bool
	wg      sync.WaitGroup
}

// NewPrefetcher caches synthesized files under dir
func NewPrefetcher(provider Provider, dir string, log *logging.Logger) *Prefetcher {
	log = logging.OrNop(log)
	ctx, stop := context.WithCancel(context.Background())

	return &Prefetcher{
		ctx:      ctx,
		stop:     stop,
		provider: provider,
		dir:      dir,
		log:      log,
		cache:    make(map[cacheKey]string),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "speech-" + provider.Name(),
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("speech circuit breaker changed state", "breaker", name, "from", from.String(), "to", to.String())
			},
		}),
	}
}

// Prefetch replaces the running batch with the given choices. Cached files
// the new batch does not need are removed. Texts without Cyrillic are
// skipped.
func (p *Prefetcher) Prefetch(exerciseID string, texts []string) {
	texts = lo.Filter(lo.Uniq(texts), func(s string, _ int) bool {
		return ValidateMacedonianText(s) == nil
	})

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	next := &batch{
		exercise: exerciseID,
		keys:     lo.Map(texts, func(s string, _ int) cacheKey { return cacheKey{exerciseID, s} }),
		cancel:   cancel,
	}
	prev := p.current
	p.current = next
	if prev != nil {
		prev.cancel()
	}
	p.evictLocked(lo.Without(lo.Keys(p.cache), next.keys...))
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		defer cancel()

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(prefetchParallelism)
		for _, text := range texts {
			g.Go(func() error {
				if _, err := p.Fetch(gctx, exerciseID, text); err != nil && gctx.Err() == nil {
					p.log.Debug("prefetch failed", "exercise", exerciseID, "text", text, "error", err)
				}
				return nil
			})
		}
		_ = g.Wait()
	}()
}

// Lookup returns the cached file of a choice, if it is ready
func (p *Prefetcher) Lookup(exerciseID, text string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	path, ok := p.cache[cacheKey{exerciseID, text}]
	return path, ok
}

// Fetch returns the audio file of a choice, synthesizing it if needed.
// Concurrent requests for the same choice share one provider call; a caller
// whose ctx ends stops waiting but does not abort that call.
func (p *Prefetcher) Fetch(ctx context.Context, exerciseID, text string) (string, error) {
	if path, ok := p.Lookup(exerciseID, text); ok {
		return path, nil
	}

	key := cacheKey{exerciseID, text}
	ch := p.flight.DoChan(exerciseID+"\x00"+text, func() (interface{}, error) {
		return p.synthesize(key)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", fmt.Errorf("failed to synthesize %q: %w", text, res.Err)
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// synthesize produces the file of key and caches it. A result that arrives
// after a newer batch started stays cached until the next eviction.
func (p *Prefetcher) synthesize(key cacheKey) (string, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return "", errPrefetcherClosed
	}
	if path, ok := p.cache[key]; ok {
		p.mu.Unlock()
		return path, nil
	}
	p.wg.Add(1)
	p.mu.Unlock()
	defer p.wg.Done()

	path := p.pathFor(key)
	_, err := p.breaker.Execute(func() (interface{}, error) {
		return nil, p.provider.GenerateAudio(p.ctx, key.text, path)
	})
	if err != nil {
		os.Remove(path)
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		os.Remove(path)
		return "", errPrefetcherClosed
	}
	p.cache[key] = path
	return path, nil
}

// Cancel stops the running batch if it belongs to exerciseID and drops the
// exercise's cached files.
func (p *Prefetcher) Cancel(exerciseID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil && p.current.exercise == exerciseID {
		p.current.cancel()
		p.current = nil
	}
	p.evictLocked(lo.Filter(lo.Keys(p.cache), func(k cacheKey, _ int) bool {
		return k.exercise == exerciseID
	}))
}

// Invalidate stops all work and empties the cache
func (p *Prefetcher) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != nil {
		p.current.cancel()
		p.current = nil
	}
	p.evictLocked(lo.Keys(p.cache))
}

// Close invalidates the cache and waits for running batches to stop
func (p *Prefetcher) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.stop()
	p.Invalidate()
	p.wg.Wait()
}

func (p *Prefetcher) evictLocked(keys []cacheKey) {
	for _, k := range keys {
		if path, ok := p.cache[k]; ok {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				p.log.Debug("cannot remove cached audio", "path", path, "error", err)
			}
			delete(p.cache, k)
		}
	}
}

func (p *Prefetcher) pathFor(k cacheKey) string {
	sum := md5.Sum([]byte(k.text))
	return filepath.Join(p.dir, k.exercise, hex.EncodeToString(sum[:])+".mp3")
}
