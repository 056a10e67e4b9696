package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile           string
	LessonsDir        string
	ProgressFile      string
	HistoryFile       string
	LogMode           string
	UnlockAll         bool
	StrictDistractors bool

	// Audio flags
	AudioProvider string
	AudioCacheDir string
	NoAudio       bool

	// OpenAI flags
	OpenAIModel       string
	OpenAIVoice       string
	OpenAISpeed       float64
	OpenAIInstruction string
	OpenAIBaseURL     string

	// Subcommand flags
	YAML         bool
	HistoryLimit int
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	stateDir := StateDir()
	return &Flags{
		LessonsDir:    "lessons",
		ProgressFile:  filepath.Join(stateDir, "progress.json"),
		HistoryFile:   filepath.Join(stateDir, "history.db"),
		LogMode:       "quiet",
		AudioProvider: "auto",
		AudioCacheDir: filepath.Join(stateDir, "audio"),
		OpenAIModel:   "gpt-4o-mini-tts",
		OpenAIVoice:   "nova",
		OpenAISpeed:   0.9,
		HistoryLimit:  20,
	}
}

// StateDir returns the directory learnmk keeps its progress, history and
// audio cache in. It falls back to the working directory when no home
// directory is known.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "learnmk")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".learnmk"
	}
	return filepath.Join(home, ".local", "state", "learnmk")
}

// Resolve copies values from viper back into the flags, so that settings
// from the config file or LEARNMK_ environment variables apply wherever
// the matching flag was not given explicitly.
func (f *Flags) Resolve() {
	stringKeys := []struct {
		key string
		dst *string
	}{
		{"lessons.dir", &f.LessonsDir},
		{"progress.file", &f.ProgressFile},
		{"history.file", &f.HistoryFile},
		{"log.mode", &f.LogMode},
		{"audio.provider", &f.AudioProvider},
		{"audio.cache_dir", &f.AudioCacheDir},
		{"audio.openai_model", &f.OpenAIModel},
		{"audio.openai_voice", &f.OpenAIVoice},
		{"audio.openai_instruction", &f.OpenAIInstruction},
		{"audio.openai_base_url", &f.OpenAIBaseURL},
	}
	for _, k := range stringKeys {
		if viper.IsSet(k.key) {
			*k.dst = viper.GetString(k.key)
		}
	}

	boolKeys := []struct {
		key string
		dst *bool
	}{
		{"lessons.unlock_all", &f.UnlockAll},
		{"quiz.strict_distractors", &f.StrictDistractors},
		{"audio.disabled", &f.NoAudio},
	}
	for _, k := range boolKeys {
		if viper.IsSet(k.key) {
			*k.dst = viper.GetBool(k.key)
		}
	}

	if viper.IsSet("audio.openai_speed") {
		f.OpenAISpeed = viper.GetFloat64("audio.openai_speed")
	}
}
