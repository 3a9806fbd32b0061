package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/retriever/internal/app"
	"github.com/five82/retriever/internal/visualsearch"
)

func searchCmd(g *globalFlags) *cobra.Command {
	var detail int
	cmd := &cobra.Command{
		Use:   "search <image>",
		Short: "Find found items that look like an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := visualsearch.FileFromPath(args[0])
			if err != nil {
				return err
			}
			env, err := app.Setup(g.options())
			if err != nil {
				return err
			}
			defer env.Close()

			out := cmd.OutOrStdout()
			errOut := cmd.ErrOrStderr()
			flow, err := visualsearch.New(visualsearch.Config{
				Searcher: env.Client,
				BaseURL:  env.Client.BaseURL(),
				Timeout:  env.Config.RequestTimeout,
				Logger:   env.Logger,
				OnSearching: func(f visualsearch.File) {
					fmt.Fprintf(errOut, "Searching with %s (%s, %d bytes)...\n", f.Name, f.MIME, f.Size())
				},
				OnResults: func(results []visualsearch.MatchResult) { writeResults(out, results) },
				OnEmpty:   func() { fmt.Fprintln(out, "No similar items found.") },
				OnDetail:  func(r visualsearch.MatchResult) { writeResultDetail(out, r) },
			})
			if err != nil {
				return err
			}

			if err := flow.SelectFile(file); err != nil {
				if errors.Is(err, visualsearch.ErrNotImage) {
					return fmt.Errorf("%s is not an image (%s)", file.Name, file.MIME)
				}
				return err
			}
			if err := flow.Submit(cmd.Context()); err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			if detail > 0 {
				fmt.Fprintln(out)
				return flow.SelectResult(detail - 1)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&detail, "detail", 0, "also print the detail view of this 1-based result")
	return cmd
}
