// Package audio synthesizes Macedonian speech for quiz choices and plays it
// back through the system audio player.
package audio

import (
	"context"
	"fmt"

	"codeberg.org/snonux/learnmk/internal/logging"
)

// Provider defines the interface for text-to-speech providers
type Provider interface {
	// GenerateAudio generates audio from text and saves it to the specified file
	GenerateAudio(ctx context.Context, text string, outputFile string) error

	// Name returns the provider name
	Name() string

	// IsAvailable checks if the provider is properly configured and available
	IsAvailable() error
}

// Config holds common configuration for audio providers
type Config struct {
	Provider string // "openai", "espeak" or "auto" (openai with espeak fallback)
	CacheDir string // Directory for prefetched audio files

	// OpenAI-specific settings
	OpenAIKey         string
	OpenAIBaseURL     string  // empty means the public API
	OpenAIModel       string  // "tts-1", "tts-1-hd", or "gpt-4o-mini-tts"
	OpenAIVoice       string  // "alloy", "nova", "shimmer", ...
	OpenAISpeed       float64 // 0.25 to 4.0
	OpenAIInstruction string  // Voice instructions for gpt-4o-mini-tts model

	// espeak-ng settings
	ESpeakVoice string
	ESpeakSpeed int

	Logger *logging.Logger
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:          "openai",
		OpenAIModel:       "gpt-4o-mini-tts",
		OpenAIVoice:       "nova",
		OpenAISpeed:       0.9,
		OpenAIInstruction: "You are speaking Macedonian (македонски јазик). Pronounce the text with standard Macedonian phonetics, not Serbian or Bulgarian. Speak slowly and clearly for language learners.",
		ESpeakVoice:       "mk",
		ESpeakSpeed:       140,
	}
}

// NewProvider creates the appropriate audio provider based on configuration
func NewProvider(config *Config) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	switch config.Provider {
	case "openai":
		if config.OpenAIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAIProvider(config)

	case "espeak", "espeak-ng":
		return NewESpeakProvider(espeakConfigFrom(config))

	case "auto":
		fallback, err := NewESpeakProvider(espeakConfigFrom(config))
		if config.OpenAIKey == "" {
			return fallback, err
		}
		primary, perr := NewOpenAIProvider(config)
		if perr != nil {
			return nil, perr
		}
		if err != nil {
			return primary, nil
		}
		return NewProviderWithFallback(primary, fallback, config.Logger), nil

	default:
		return nil, fmt.Errorf("unknown audio provider: %s", config.Provider)
	}
}

func espeakConfigFrom(config *Config) *ESpeakConfig {
	ec := DefaultConfig()
	if config.ESpeakVoice != "" {
		ec.Voice = config.ESpeakVoice
	}
	if config.ESpeakSpeed > 0 {
		ec.Speed = config.ESpeakSpeed
	}
	return ec
}

// ProviderWithFallback wraps a primary provider with a fallback option
type ProviderWithFallback struct {
	primary  Provider
	fallback Provider
	log      *logging.Logger
}

// NewProviderWithFallback creates a provider that falls back to secondary if primary fails
func NewProviderWithFallback(primary, fallback Provider, log *logging.Logger) Provider {
	return &ProviderWithFallback{
		primary:  primary,
		fallback: fallback,
		log:      logging.OrNop(log),
	}
}

// GenerateAudio tries primary provider first, falls back to secondary on error
func (p *ProviderWithFallback) GenerateAudio(ctx context.Context, text string, outputFile string) error {
	err := p.primary.GenerateAudio(ctx, text, outputFile)
	if err == nil || ctx.Err() != nil {
		return err
	}

	p.log.Warn("primary speech provider failed, falling back",
		"primary", p.primary.Name(), "fallback", p.fallback.Name(), "error", err)
	return p.fallback.GenerateAudio(ctx, text, outputFile)
}

// Name returns the provider name
func (p *ProviderWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", p.primary.Name(), p.fallback.Name())
}

// IsAvailable checks if at least one provider is available
func (p *ProviderWithFallback) IsAvailable() error {
	primaryErr := p.primary.IsAvailable()
	if primaryErr == nil {
		return nil
	}

	fallbackErr := p.fallback.IsAvailable()
	if fallbackErr == nil {
		return nil
	}

	return fmt.Errorf("both providers unavailable: primary=%v, fallback=%v",
		primaryErr, fallbackErr)
}
