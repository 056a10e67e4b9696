package cli

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type recordedRun struct {
	action Action
	args   []string
}

func newTestCommand(t *testing.T, flags *Flags) (*cobra.Command, *[]recordedRun) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	var runs []recordedRun
	cmd := CreateRootCommand(flags, func(action Action, args []string) error {
		runs = append(runs, recordedRun{action: action, args: args})
		return nil
	})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd, &runs
}

func TestCreateRootCommand(t *testing.T) {
	cmd, _ := newTestCommand(t, NewFlags())

	if cmd.Use != "learnmk" {
		t.Errorf("Expected Use to be 'learnmk', got %s", cmd.Use)
	}

	flagNames := []string{
		"config", "lessons", "progress-file", "history-file", "log",
		"unlock-all", "strict-distractors", "audio-provider", "audio-cache",
		"no-audio", "openai-model", "openai-voice", "openai-speed",
		"openai-instruction", "openai-base-url",
	}
	for _, name := range flagNames {
		t.Run("flag_"+name, func(t *testing.T) {
			if lookupPersistent(cmd, name) == nil {
				t.Errorf("Expected persistent flag %s to exist", name)
			}
		})
	}

	for _, name := range []string{"gui", "play", "topics", "progress", "reset", "history", "import", "voices", "export"} {
		t.Run("command_"+name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			if err != nil || sub == cmd {
				t.Errorf("Expected subcommand %s, got err %v", name, err)
			}
		})
	}
}

func lookupPersistent(cmd *cobra.Command, name string) *pflag.Flag {
	return cmd.PersistentFlags().Lookup(name)
}

func TestCommandDispatch(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		action Action
		rest   []string
	}{
		{"default is gui", nil, ActionGUI, []string{}},
		{"gui", []string{"gui"}, ActionGUI, []string{}},
		{"play", []string{"play"}, ActionPlay, []string{}},
		{"topics", []string{"topics"}, ActionTopics, []string{}},
		{"progress", []string{"progress"}, ActionProgress, []string{}},
		{"reset", []string{"reset"}, ActionReset, []string{}},
		{"history", []string{"history", "-n", "5"}, ActionHistory, []string{}},
		{"import", []string{"import", "book.xlsx"}, ActionImport, []string{"book.xlsx"}},
		{"voices", []string{"voices"}, ActionVoices, []string{}},
		{"export default", []string{"export"}, ActionExport, []string{}},
		{"export path", []string{"export", "out.csv"}, ActionExport, []string{"out.csv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, runs := newTestCommand(t, NewFlags())
			cmd.SetArgs(tt.args)
			if tt.args == nil {
				cmd.SetArgs([]string{})
			}

			if err := cmd.Execute(); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if len(*runs) != 1 {
				t.Fatalf("Expected one run, got %d", len(*runs))
			}
			got := (*runs)[0]
			if got.action != tt.action {
				t.Errorf("action = %s, want %s", got.action, tt.action)
			}
			if len(got.args) != len(tt.rest) || (len(tt.rest) > 0 && !reflect.DeepEqual(got.args, tt.rest)) {
				t.Errorf("args = %v, want %v", got.args, tt.rest)
			}
		})
	}
}

func TestCommandArgumentValidation(t *testing.T) {
	for _, args := range [][]string{
		{"import"},
		{"topics", "extra"},
		{"export", "a.csv", "b.csv"},
		{"stray"},
	} {
		cmd, runs := newTestCommand(t, NewFlags())
		cmd.SetArgs(args)
		if err := cmd.Execute(); err == nil {
			t.Errorf("Execute(%v) expected error", args)
		}
		if len(*runs) != 0 {
			t.Errorf("Execute(%v) should not run an action", args)
		}
	}
}

func TestSubcommandFlags(t *testing.T) {
	flags := NewFlags()
	cmd, _ := newTestCommand(t, flags)
	cmd.SetArgs([]string{"progress", "--yaml"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !flags.YAML {
		t.Error("--yaml not applied")
	}

	flags = NewFlags()
	cmd, _ = newTestCommand(t, flags)
	cmd.SetArgs([]string{"history", "--limit", "3", "--unlock-all"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if flags.HistoryLimit != 3 {
		t.Errorf("HistoryLimit = %d, want 3", flags.HistoryLimit)
	}
	if !flags.UnlockAll {
		t.Error("persistent --unlock-all not applied to subcommand")
	}
}

func TestBindFlagsToViper(t *testing.T) {
	flags := NewFlags()
	cmd, _ := newTestCommand(t, flags)

	cmd.PersistentFlags().Set("lessons", "/test/lessons")
	cmd.PersistentFlags().Set("openai-model", "tts-1-hd")
	cmd.PersistentFlags().Set("strict-distractors", "true")

	if got := viper.GetString("lessons.dir"); got != "/test/lessons" {
		t.Errorf("lessons.dir = %s, want /test/lessons", got)
	}
	if got := viper.GetString("audio.openai_model"); got != "tts-1-hd" {
		t.Errorf("audio.openai_model = %s, want tts-1-hd", got)
	}
	if !viper.GetBool("quiz.strict_distractors") {
		t.Error("quiz.strict_distractors not bound")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "learnmk.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}
	return path
}

func TestInitConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg := writeConfig(t, `lessons:
  dir: /cfg/lessons
audio:
  provider: espeak
  openai_key: test-key
`)
	InitConfig(cfg)

	if got := viper.GetString("lessons.dir"); got != "/cfg/lessons" {
		t.Errorf("lessons.dir = %s, want /cfg/lessons", got)
	}
	if got := viper.GetString("audio.provider"); got != "espeak" {
		t.Errorf("audio.provider = %s, want espeak", got)
	}

	t.Setenv("LEARNMK_HISTORY_FILE", "/env/history.db")
	if got := viper.GetString("history.file"); got != "/env/history.db" {
		t.Errorf("history.file = %s, want value from LEARNMK_HISTORY_FILE", got)
	}
}

func TestResolvePrecedence(t *testing.T) {
	flags := NewFlags()
	cmd, _ := newTestCommand(t, flags)

	InitConfig(writeConfig(t, `lessons:
  dir: /cfg/lessons
  unlock_all: true
progress:
  file: /cfg/progress.json
audio:
  openai_speed: 1.5
`))

	cmd.SetArgs([]string{"topics", "--lessons", "/flag/lessons"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	flags.Resolve()

	if flags.LessonsDir != "/flag/lessons" {
		t.Errorf("LessonsDir = %s, explicit flag should win", flags.LessonsDir)
	}
	if flags.ProgressFile != "/cfg/progress.json" {
		t.Errorf("ProgressFile = %s, want config value", flags.ProgressFile)
	}
	if !flags.UnlockAll {
		t.Error("UnlockAll should come from config")
	}
	if flags.OpenAISpeed != 1.5 {
		t.Errorf("OpenAISpeed = %v, want 1.5", flags.OpenAISpeed)
	}
	if flags.AudioProvider != "auto" {
		t.Errorf("AudioProvider = %s, default should survive", flags.AudioProvider)
	}
}

func TestGetOpenAIKey(t *testing.T) {
	tests := []struct {
		name      string
		envKey    string
		configKey string
		expected  string
	}{
		{"from environment", "env-test-key", "config-test-key", "env-test-key"},
		{"from config when no env", "", "config-test-key", "config-test-key"},
		{"empty when neither set", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			t.Setenv("OPENAI_API_KEY", tt.envKey)

			if tt.configKey != "" {
				viper.Set("audio.openai_key", tt.configKey)
			}

			if got := GetOpenAIKey(); got != tt.expected {
				t.Errorf("GetOpenAIKey() = %v, want %v", got, tt.expected)
			}
		})
	}
}
