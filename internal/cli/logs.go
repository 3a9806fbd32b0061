package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/retriever/internal/config"
	"github.com/five82/retriever/internal/logtail"
)

func logsCmd(g *globalFlags) *cobra.Command {
	var (
		lines int
		level string
		plain bool
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the end of the client log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(g.envFile); err != nil {
				return err
			}
			cfg, err := config.Load(g.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			tail, err := logtail.Read(cfg.LogPath(), lines)
			if err != nil {
				return err
			}
			tail = logtail.Filter(tail, level)
			if !plain {
				tail = logtail.ColorizeLines(tail)
			}
			out := cmd.OutOrStdout()
			if len(tail) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "no log lines in %s\n", cfg.LogPath())
				return nil
			}
			for _, line := range tail {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	flags := cmd.Flags()
	flags.IntVarP(&lines, "lines", "n", 50, "number of lines to show (0 for all)")
	flags.StringVar(&level, "level", "", "minimum level: debug, info, warn or error")
	flags.BoolVar(&plain, "plain", false, "disable colors")
	return cmd
}
