package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/retriever/internal/app"
	"github.com/five82/retriever/internal/lists"
)

func listCmd(g *globalFlags) *cobra.Command {
	var (
		query  string
		facet  string
		page   int
		action string
		row    int
		detail int
		values map[string]string
	)
	kinds := make([]string, 0, len(lists.Kinds()))
	for _, k := range lists.Kinds() {
		kinds = append(kinds, string(k))
	}

	cmd := &cobra.Command{
		Use:       "list <" + strings.Join(kinds, "|") + ">",
		Short:     "Print one page of an entity list",
		Args:      cobra.ExactArgs(1),
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := lists.ParseKind(args[0])
			if err != nil {
				return err
			}
			env, err := app.Setup(g.options())
			if err != nil {
				return err
			}
			defer env.Close()

			ctx := cmd.Context()
			if action != "" {
				refreshUser(ctx, env)
			}

			l, err := lists.New(kind, env.ListOptions(lists.Hooks{}))
			if err != nil {
				return err
			}
			if err := l.Load(ctx); err != nil {
				return fmt.Errorf("load %s: %w", kind, err)
			}
			l.SetQuery(query, strings.ToUpper(facet))
			l.GoToPage(page)

			out := cmd.OutOrStdout()
			if action != "" {
				req := lists.Request{Action: action, Values: values}
				if keys := l.Snapshot().Keys; row >= 1 && row <= len(keys) {
					req.Record = keys[row-1]
				}
				if err := l.Run(ctx, req); err != nil {
					return fmt.Errorf("%s %s row %d: %w", kind, action, row, err)
				}
				fmt.Fprintf(out, "Ran %q on row %d.\n", action, row)
			}
			if detail > 0 {
				fields, ok := l.Detail(detail - 1)
				if !ok {
					return fmt.Errorf("no row %d on page %d", detail, l.Snapshot().Meta.Page)
				}
				writeFields(out, fields)
				return nil
			}
			writeSnapshot(out, l.Snapshot())
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&query, "query", "q", "", "case-insensitive search text")
	flags.StringVarP(&facet, "facet", "f", "ALL", "status facet, e.g. LOST, PENDING, ACTIVE, UNREAD")
	flags.IntVarP(&page, "page", "p", 1, "page number (clamped to the last page)")
	flags.StringVar(&action, "do", "", "action key to run on --row before printing, e.g. d, a, x, c, t, r, A")
	flags.IntVar(&row, "row", 1, "1-based row on the current page for --do")
	flags.StringToStringVar(&values, "set", nil, "form values for --do, e.g. --set email=a@b.c")
	flags.IntVar(&detail, "detail", 0, "print the detail view of this 1-based row instead of the table")
	return cmd
}

// refreshUser loads the signed-in user so role-gated actions are filtered.
// Failure is not fatal: the actions are then offered and the server decides.
func refreshUser(ctx context.Context, env *app.Env) {
	if err := env.Refresh(ctx); err != nil {
		env.Logger.Warn("could not load current user; role checks left to the server", "err", err)
	}
}
