package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/learnmk/internal/cli"
	"codeberg.org/snonux/learnmk/internal/processor"
)

func main() {
	flags := cli.NewFlags()

	rootCmd := cli.CreateRootCommand(flags, func(action cli.Action, args []string) error {
		return runAction(action, args, flags)
	})

	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
		flags.Resolve()
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runAction(action cli.Action, args []string, flags *cli.Flags) error {
	proc, err := processor.NewProcessor(flags)
	if err != nil {
		return err
	}
	defer proc.Close()

	switch action {
	case cli.ActionGUI:
		return proc.RunGUIMode()
	case cli.ActionPlay:
		return proc.RunTerminal(os.Stdin, os.Stdout)
	case cli.ActionTopics:
		return proc.ListTopics(os.Stdout)
	case cli.ActionProgress:
		return proc.ShowProgress(os.Stdout, flags.YAML)
	case cli.ActionReset:
		return proc.ResetProgress(os.Stdout)
	case cli.ActionHistory:
		return proc.ShowHistory(os.Stdout, flags.HistoryLimit)
	case cli.ActionVoices:
		return proc.ListVoices(os.Stdout)
	case cli.ActionImport:
		return proc.Import(args[0], os.Stdout)
	case cli.ActionExport:
		var out string
		if len(args) > 0 {
			out = args[0]
		}
		return proc.Export(out, os.Stdout)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
}
