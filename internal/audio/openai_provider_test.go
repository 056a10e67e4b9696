package audio

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestNewOpenAIProvider(t *testing.T) {
	if _, err := NewOpenAIProvider(&Config{}); err == nil || err.Error() != "OpenAI API key is required" {
		t.Errorf("NewOpenAIProvider() error = %v, want missing key error", err)
	}

	provider, err := NewOpenAIProvider(&Config{OpenAIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error = %v", err)
	}
	if provider.Name() != "openai" {
		t.Errorf("Name() = %v, want openai", provider.Name())
	}
	if err := provider.IsAvailable(); err != nil {
		t.Errorf("IsAvailable() error = %v", err)
	}
}

func fakeSpeechServer(t *testing.T, status int, got *map[string]interface{}) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got != nil {
			json.NewDecoder(r.Body).Decode(got)
		}
		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			w.Write([]byte(`{"error": {"message": "boom", "type": "server_error"}}`))
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte{0xFF, 0xFB, 0x90, 0x00})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestOpenAIProviderGenerateAudio(t *testing.T) {
	var body map[string]interface{}
	server := fakeSpeechServer(t, http.StatusOK, &body)

	config := DefaultProviderConfig()
	config.OpenAIKey = "test-key"
	config.OpenAIBaseURL = server.URL + "/v1"
	provider, err := NewOpenAIProvider(config)
	if err != nil {
		t.Fatalf("NewOpenAIProvider() error = %v", err)
	}

	out := filepath.Join(t.TempDir(), "sub", "kuche.mp3")
	if err := provider.GenerateAudio(context.Background(), "Куче!", out); err != nil {
		t.Fatalf("GenerateAudio() error = %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil || len(data) != 4 {
		t.Errorf("audio file = %v, %v; want 4 bytes", data, err)
	}
	if body["input"] != "Куче" {
		t.Errorf("input = %v, want punctuation stripped", body["input"])
	}
	if body["instructions"] == nil {
		t.Error("instructions not sent for gpt-4o-mini-tts")
	}
}

func TestOpenAIProviderGenerateAudioErrors(t *testing.T) {
	server := fakeSpeechServer(t, http.StatusInternalServerError, nil)
	provider, _ := NewOpenAIProvider(&Config{OpenAIKey: "k", OpenAIModel: "tts-1", OpenAIVoice: "nova", OpenAIBaseURL: server.URL + "/v1"})

	out := filepath.Join(t.TempDir(), "x.mp3")
	if err := provider.GenerateAudio(context.Background(), "куче", out); err == nil {
		t.Error("GenerateAudio() expected API error")
	}
	if err := provider.GenerateAudio(context.Background(), "dog", out); err == nil {
		t.Error("GenerateAudio() expected validation error for Latin text")
	}
}

func TestCleanSpeechText(t *testing.T) {
	tests := map[string]string{
		"Добро утро!":       "Добро утро",
		"  Како си?  ":      "Како си",
		"„Здраво“, рече.":   "„Здраво“ рече",
		"(мачка) – животно": "мачка животно",
	}
	for in, want := range tests {
		if got := cleanSpeechText(in); got != want {
			t.Errorf("cleanSpeechText(%q) = %q, want %q", in, got, want)
		}
	}
}
