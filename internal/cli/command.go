package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/learnmk/internal"
)

// Action names the thing a command invocation asks learnmk to do.
type Action string

const (
	ActionGUI      Action = "gui"
	ActionPlay     Action = "play"
	ActionTopics   Action = "topics"
	ActionProgress Action = "progress"
	ActionReset    Action = "reset"
	ActionHistory  Action = "history"
	ActionImport   Action = "import"
	ActionVoices   Action = "voices"
	ActionExport   Action = "export"
)

// RunFunc executes an action with the positional arguments of its command.
type RunFunc func(action Action, args []string) error

// CreateRootCommand creates and configures the root cobra command. Every
// subcommand, and the root command itself, hands its work to run.
func CreateRootCommand(flags *Flags, run RunFunc) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "learnmk",
		Short: "Macedonian vocabulary trainer",
		Long: `learnmk drills Macedonian vocabulary from CSV lessons grouped into topic
folders: multiple-choice quizzes, matching pairs and sentence building.

Examples:
  learnmk                          # Launch interactive GUI (default)
  learnmk play                     # Practise in the terminal
  learnmk topics                   # List topics and progress
  learnmk import lessons.xlsx      # Turn a workbook into lesson files
  learnmk import 03_food.txt       # Turn a "mk = en" word list into a topic
  learnmk export deck.csv          # Write all topics as an Anki import file`,
		Args:          cobra.NoArgs,
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(ActionGUI, args)
		},
	}

	setupFlags(rootCmd, flags)

	rootCmd.AddCommand(
		newActionCommand(run, ActionGUI, "gui", "Launch the graphical trainer", cobra.NoArgs),
		newActionCommand(run, ActionPlay, "play", "Practise in the terminal", cobra.NoArgs),
		newActionCommand(run, ActionTopics, "topics", "List topics, lock state and progress", cobra.NoArgs),
		newProgressCommand(run, flags),
		newActionCommand(run, ActionReset, "reset", "Archive the progress file and start over", cobra.NoArgs),
		newHistoryCommand(run, flags),
		newActionCommand(run, ActionVoices, "voices", "List speech models and voices for pronunciations", cobra.NoArgs),
		newActionCommand(run, ActionImport, "import <workbook.xlsx|words.txt>", "Convert an Excel workbook or word list into topic folders", cobra.ExactArgs(1)),
		newActionCommand(run, ActionExport, "export [anki.csv]", "Export all topics as an Anki import file", cobra.MaximumNArgs(1)),
	)

	return rootCmd
}

func newActionCommand(run RunFunc, action Action, use, short string, args cobra.PositionalArgs) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(action, args)
		},
	}
}

func newProgressCommand(run RunFunc, flags *Flags) *cobra.Command {
	cmd := newActionCommand(run, ActionProgress, "progress", "Print the saved progress document", cobra.NoArgs)
	cmd.Flags().BoolVar(&flags.YAML, "yaml", false, "Print progress as YAML instead of JSON")
	return cmd
}

func newHistoryCommand(run RunFunc, flags *Flags) *cobra.Command {
	cmd := newActionCommand(run, ActionHistory, "history", "Show recently finished exercises", cobra.NoArgs)
	cmd.Flags().IntVarP(&flags.HistoryLimit, "limit", "n", flags.HistoryLimit, "Number of results to show")
	return cmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	pf := cmd.PersistentFlags()

	// Global flags
	pf.StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.learnmk.yaml)")
	pf.StringVarP(&flags.LessonsDir, "lessons", "l", flags.LessonsDir, "Directory holding the topic folders")
	pf.StringVar(&flags.ProgressFile, "progress-file", flags.ProgressFile, "Progress JSON file")
	pf.StringVar(&flags.HistoryFile, "history-file", flags.HistoryFile, "SQLite database of finished exercises (empty disables history)")
	pf.StringVar(&flags.LogMode, "log", flags.LogMode, "Log mode: dev, quiet or prod")
	pf.BoolVar(&flags.UnlockAll, "unlock-all", false, "Make every topic selectable")
	pf.BoolVar(&flags.StrictDistractors, "strict-distractors", false, "Refuse quiz cards with fewer than three wrong answers")

	// Audio flags
	pf.StringVar(&flags.AudioProvider, "audio-provider", flags.AudioProvider, "Speech provider: auto, openai or espeak")
	pf.StringVar(&flags.AudioCacheDir, "audio-cache", flags.AudioCacheDir, "Directory for prefetched pronunciations")
	pf.BoolVar(&flags.NoAudio, "no-audio", false, "Disable pronunciation audio")

	// OpenAI flags
	pf.StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI TTS model: tts-1, tts-1-hd, gpt-4o-mini-tts")
	pf.StringVar(&flags.OpenAIVoice, "openai-voice", flags.OpenAIVoice, "OpenAI voice: alloy, ash, ballad, coral, echo, fable, onyx, nova, sage, shimmer, verse")
	pf.Float64Var(&flags.OpenAISpeed, "openai-speed", flags.OpenAISpeed, "OpenAI speech speed (0.25 to 4.0, may be ignored by gpt-4o-mini-tts)")
	pf.StringVar(&flags.OpenAIInstruction, "openai-instruction", "", "Voice instructions for gpt-4o-mini-tts (default asks for standard Macedonian)")
	pf.StringVar(&flags.OpenAIBaseURL, "openai-base-url", "", "Alternative OpenAI compatible endpoint")

	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	viper.BindPFlag("lessons.dir", pf.Lookup("lessons"))
	viper.BindPFlag("lessons.unlock_all", pf.Lookup("unlock-all"))
	viper.BindPFlag("progress.file", pf.Lookup("progress-file"))
	viper.BindPFlag("history.file", pf.Lookup("history-file"))
	viper.BindPFlag("log.mode", pf.Lookup("log"))
	viper.BindPFlag("quiz.strict_distractors", pf.Lookup("strict-distractors"))
	viper.BindPFlag("audio.provider", pf.Lookup("audio-provider"))
	viper.BindPFlag("audio.cache_dir", pf.Lookup("audio-cache"))
	viper.BindPFlag("audio.disabled", pf.Lookup("no-audio"))
	viper.BindPFlag("audio.openai_model", pf.Lookup("openai-model"))
	viper.BindPFlag("audio.openai_voice", pf.Lookup("openai-voice"))
	viper.BindPFlag("audio.openai_speed", pf.Lookup("openai-speed"))
	viper.BindPFlag("audio.openai_instruction", pf.Lookup("openai-instruction"))
	viper.BindPFlag("audio.openai_base_url", pf.Lookup("openai-base-url"))
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".learnmk" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".learnmk")
	}

	// LEARNMK_LESSONS_DIR and friends
	viper.SetEnvPrefix("LEARNMK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("audio.openai_key")
}
