package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/learnmk/internal/audio"
)

// OpenAIVoices are the voices the speech endpoint accepts
var OpenAIVoices = []string{
	"alloy", "ash", "ballad", "coral", "echo", "fable",
	"nova", "onyx", "sage", "shimmer", "verse",
}

// Lister handles listing the speech models and voices learnmk can use
type Lister struct {
	apiKey string
	client *openai.Client
}

// NewLister creates a new model lister. An empty baseURL means the public
// OpenAI API.
func NewLister(apiKey, baseURL string) *Lister {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Lister{
		apiKey: apiKey,
		client: openai.NewClientWithConfig(config),
	}
}

// SpeechModels returns the sorted ids of the text-to-speech models
// available to the API key
func (l *Lister) SpeechModels(ctx context.Context) ([]string, error) {
	if l.apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .learnmk.yaml")
	}

	models, err := l.client.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	var tts []string
	for _, model := range models.Models {
		if strings.Contains(model.ID, "tts") {
			tts = append(tts, model.ID)
		}
	}
	sort.Strings(tts)
	return tts, nil
}

// Print writes the speech models, OpenAI voices and espeak-ng voices.
// Without an API key only the offline voices are listed.
func (l *Lister) Print(ctx context.Context, w io.Writer) error {
	if l.apiKey != "" {
		models, err := l.SpeechModels(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "OpenAI text-to-speech models:")
		if len(models) == 0 {
			fmt.Fprintln(w, "  No TTS models found")
		}
		for _, m := range models {
			fmt.Fprintf(w, "  %s\n", m)
		}

		fmt.Fprintln(w, "\nOpenAI voices (--openai-voice):")
		fmt.Fprintf(w, "  %s\n", strings.Join(OpenAIVoices, ", "))
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "espeak-ng Macedonian voices:")
	fmt.Fprintf(w, "  %s\n", strings.Join(audio.ListVoices(), ", "))
	return nil
}
