package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ESpeakConfig holds configuration for espeak-ng audio generation
type ESpeakConfig struct {
	Voice     string // Voice variant (e.g., "mk", "mk+m1", "mk+f2")
	Speed     int    // Speech speed in words per minute
	Pitch     int    // 0 to 99
	Amplitude int    // 0 to 200
}

// DefaultConfig returns the default configuration for the Macedonian voice
func DefaultConfig() *ESpeakConfig {
	return &ESpeakConfig{
		Voice:     "mk",
		Speed:     140,
		Pitch:     50,
		Amplitude: 100,
	}
}

// ESpeak runs the espeak-ng binary
type ESpeak struct {
	config *ESpeakConfig
}

// New creates a new ESpeak instance with the given configuration
func New(config *ESpeakConfig) (*ESpeak, error) {
	if err := checkESpeakInstalled(); err != nil {
		return nil, err
	}
	if config == nil {
		config = DefaultConfig()
	}
	return &ESpeak{config: config}, nil
}

// args builds the espeak-ng command line writing a WAV file
func (e *ESpeak) args(text, wavFile string) []string {
	return []string{
		"-v", e.config.Voice,
		"-s", strconv.Itoa(clamp(e.config.Speed, 80, 450)),
		"-p", strconv.Itoa(clamp(e.config.Pitch, 0, 99)),
		"-a", strconv.Itoa(clamp(e.config.Amplitude, 0, 200)),
		"-w", wavFile,
		text,
	}
}

// GenerateWAV writes a WAV file for the given text
func (e *ESpeak) GenerateWAV(ctx context.Context, text string, outputFile string) error {
	if text == "" {
		return fmt.Errorf("text cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	output, err := exec.CommandContext(ctx, "espeak-ng", e.args(text, outputFile)...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("espeak-ng failed: %w\nOutput: %s", err, string(output))
	}
	return nil
}

// GenerateMP3 writes a WAV file and converts it with ffmpeg
func (e *ESpeak) GenerateMP3(ctx context.Context, text string, outputFile string) error {
	tempWAV := strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + "_temp.wav"
	defer os.Remove(tempWAV)

	if err := e.GenerateWAV(ctx, text, tempWAV); err != nil {
		return err
	}
	return convertWAVToMP3(ctx, tempWAV, outputFile)
}

func convertWAVToMP3(ctx context.Context, wavFile, mp3File string) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("ffmpeg is not installed or not in PATH: %w", err)
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", "-i", wavFile, "-acodec", "mp3", "-y", mp3File)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg conversion failed: %w\nOutput: %s", err, string(output))
	}
	return nil
}

// checkESpeakInstalled verifies that espeak-ng is available on the system
func checkESpeakInstalled() error {
	if _, err := exec.LookPath("espeak-ng"); err != nil {
		return fmt.Errorf("espeak-ng is not installed or not in PATH: %w", err)
	}
	return nil
}

// ListVoices returns the Macedonian voice variants of espeak-ng
func ListVoices() []string {
	return []string{"mk", "mk+m1", "mk+m2", "mk+m3", "mk+f1", "mk+f2", "mk+f3"}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
