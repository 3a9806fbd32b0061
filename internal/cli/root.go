package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/retriever/internal/app"
)

type globalFlags struct {
	configPath string
	prefsPath  string
	envFile    string
	poll       time.Duration
}

func (g *globalFlags) options() app.Options {
	return app.Options{
		ConfigPath: g.configPath,
		PrefsPath:  g.prefsPath,
		EnvFile:    g.envFile,
		PollEvery:  g.poll,
	}
}

// RootCmd builds the retriever command tree. Without a subcommand it starts
// the TUI.
func RootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "retriever",
		Short:         "Terminal client for the lost-and-found platform",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), g.options())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&g.configPath, "config", "", "config file (default ~/.config/retriever/config.toml)")
	flags.StringVar(&g.prefsPath, "prefs", "", "preferences file (default ~/.config/retriever/prefs.toml)")
	flags.StringVar(&g.envFile, "env-file", ".env", "dotenv file loaded before the config")
	flags.DurationVar(&g.poll, "poll", 0, "session refresh interval, e.g. 15s (default from config)")

	root.AddCommand(
		tuiCmd(g),
		listCmd(g),
		itemsCmd(g),
		staffCmd(g),
		searchCmd(g),
		logsCmd(g),
	)
	return root
}

func tuiCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), g.options())
		},
	}
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context, args []string) int {
	root := RootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "retriever: %v\n", err)
		return 1
	}
	return 0
}
