package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FakeSpeechProvider satisfies audio.Provider by writing a few fake MP3
// bytes per request and recording every call. A non-nil Gate holds every
// call until it is closed.
type FakeSpeechProvider struct {
	Errors    map[string]error
	Available error
	Gate      chan struct{}

	mu    sync.Mutex
	calls []string
}

// GenerateAudio records the call and writes a fake MP3 frame header
func (m *FakeSpeechProvider) GenerateAudio(ctx context.Context, text string, outputFile string) error {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if m.Gate != nil {
		select {
		case <-m.Gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err, ok := m.Errors[text]; ok {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return os.WriteFile(outputFile, []byte{0xFF, 0xFB, 0x90, 0x00}, 0644)
}

// Name returns the provider name
func (m *FakeSpeechProvider) Name() string {
	return "fake"
}

// IsAvailable returns the configured availability error
func (m *FakeSpeechProvider) IsAvailable() error {
	return m.Available
}

// Calls returns a copy of the texts synthesized so far
func (m *FakeSpeechProvider) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
