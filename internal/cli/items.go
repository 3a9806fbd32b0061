package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/five82/retriever/internal/app"
	"github.com/five82/retriever/internal/lists"
)

// reportFlags maps item flags to the items form fields.
var reportFlags = map[string]string{
	"type":        "item_type",
	"brand":       "brand",
	"color":       "color",
	"description": "description",
	"location":    "location",
	"image":       "image",
}

func addReportFlags(flags *pflag.FlagSet, withImage bool) {
	flags.String("type", "", "item type, e.g. Umbrella")
	flags.String("brand", "", "brand")
	flags.String("color", "", "color")
	flags.String("description", "", "description")
	flags.String("location", "", "where it was lost or found")
	if withImage {
		flags.String("image", "", "photo to attach")
	}
}

// changedValues collects the flags given on the command line as form values.
func changedValues(flags *pflag.FlagSet, names map[string]string) map[string]string {
	values := map[string]string{}
	for flag, field := range names {
		if f := flags.Lookup(flag); f != nil && f.Changed {
			values[field] = f.Value.String()
		}
	}
	return values
}

func itemsCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Report, view and edit lost or found items",
	}

	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Report an item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := lists.Request{Action: "n", Values: changedValues(cmd.Flags(), reportFlags)}
			if err := runForm(cmd, g, lists.Items, req); err != nil {
				return fmt.Errorf("report item: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Item reported.")
			return nil
		},
	}
	addReportFlags(newCmd.Flags(), true)

	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an item that has no match yet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("item id %q: %w", args[0], err)
			}
			req := lists.Request{Action: "u", Record: args[0], Values: changedValues(cmd.Flags(), reportFlags)}
			if err := runForm(cmd, g, lists.Items, req); err != nil {
				return fmt.Errorf("edit item %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Item %s updated.\n", args[0])
			return nil
		},
	}
	addReportFlags(editCmd.Flags(), false)

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print one of your items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("item id %q: %w", args[0], err)
			}
			env, err := app.Setup(g.options())
			if err != nil {
				return err
			}
			defer env.Close()

			item, err := env.Client.Item(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("show item %d: %w", id, err)
			}
			writeFields(cmd.OutOrStdout(), lists.ItemFields(*item))
			return nil
		},
	}

	cmd.AddCommand(newCmd, editCmd, showCmd)
	return cmd
}

func staffCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staff",
		Short: "Manage staff accounts",
	}
	names := map[string]string{
		"first":    "first_name",
		"last":     "last_name",
		"email":    "email",
		"password": "password",
	}
	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Create a staff account (admins only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := lists.Request{Action: "n", Values: changedValues(cmd.Flags(), names)}
			if err := runForm(cmd, g, lists.Staff, req); err != nil {
				return fmt.Errorf("create staff: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Staff account %s created.\n", req.Values["email"])
			return nil
		},
	}
	flags := newCmd.Flags()
	flags.String("first", "", "first name")
	flags.String("last", "", "last name")
	flags.String("email", "", "login email")
	flags.String("password", "", "initial password, at least 8 characters")

	cmd.AddCommand(newCmd)
	return cmd
}

// runForm loads the list and submits a form action through it, so the
// request gets the same checks and refresh as in the TUI.
func runForm(cmd *cobra.Command, g *globalFlags, kind lists.Kind, req lists.Request) error {
	env, err := app.Setup(g.options())
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := cmd.Context()
	refreshUser(ctx, env)
	return submit(ctx, env, kind, req)
}

func submit(ctx context.Context, env *app.Env, kind lists.Kind, req lists.Request) error {
	l, err := lists.New(kind, env.ListOptions(lists.Hooks{}))
	if err != nil {
		return err
	}
	if err := l.Load(ctx); err != nil {
		return fmt.Errorf("load %s: %w", kind, err)
	}
	return l.Run(ctx, req)
}
