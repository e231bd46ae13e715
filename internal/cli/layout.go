package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/banktags/pkg/app"
	"github.com/matzehuels/banktags/pkg/catalog"
	"github.com/matzehuels/banktags/pkg/errors"
	"github.com/matzehuels/banktags/pkg/grid"
	"github.com/matzehuels/banktags/pkg/store"
)

// layoutCommand creates the layout management command.
func (c *CLI) layoutCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "layout",
		Aliases: []string{"layouts"},
		Short:   "List, create, select, rename and delete layouts",
		Long: `Manage the layout collection.

The current layout (marked ● in the list) is the one grid, import and
export commands operate on.`,
	}

	cmd.AddCommand(c.layoutListCommand())
	cmd.AddCommand(c.layoutNewCommand())
	cmd.AddCommand(c.layoutSelectCommand())
	cmd.AddCommand(c.layoutRenameCommand())
	cmd.AddCommand(c.layoutDeleteCommand())
	cmd.AddCommand(c.layoutShowCommand())

	return cmd
}

func (c *CLI) layoutListCommand() *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List layouts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(_ context.Context, a *app.App) error {
				layouts := a.Layouts.Search(query)
				if len(layouts) == 0 {
					printInfo("No layouts match %q", query)
					return nil
				}
				for _, l := range layouts {
					printLayoutLine(l, l.ID == a.Layouts.CurrentID())
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&query, "search", "s", "", "filter by title, author or tag")
	return cmd
}

func (c *CLI) layoutNewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "new [title]",
		Short: "Create a layout and make it current",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := store.DefaultTitle
			if len(args) == 1 {
				title = args[0]
			}
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				l, err := a.CreateLayout(ctx, title)
				if err != nil {
					return err
				}
				printSuccess("Created layout %s %s", StyleNumber.Render(fmt.Sprint(l.ID)), StyleValue.Render(l.Title))
				printNextStep("Place an item", fmt.Sprintf("banktags grid place 0 0 %q", "Abyssal whip"))
				return nil
			})
		},
	}
}

func (c *CLI) layoutSelectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "select <id>",
		Short: "Make a layout current",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseInt("id", args[0])
			if err != nil {
				return err
			}
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				l, err := a.SelectLayout(ctx, id)
				if err != nil {
					return err
				}
				printSuccess("Selected %s", StyleValue.Render(l.Title))
				printLayoutStats(l, "")
				return nil
			})
		},
	}
}

func (c *CLI) layoutRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Rename a layout",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseInt("id", args[0])
			if err != nil {
				return err
			}
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.RenameLayout(ctx, id, args[1]); err != nil {
					return err
				}
				printSuccess("Renamed layout %d to %s", id, StyleValue.Render(strings.TrimSpace(args[1])))
				return nil
			})
		},
	}
}

func (c *CLI) layoutDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a layout",
		Long:    `Delete a layout. Deleting the last layout leaves a fresh empty one in its place.`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseInt("id", args[0])
			if err != nil {
				return err
			}
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.DeleteLayout(ctx, id); err != nil {
					return err
				}
				printSuccess("Deleted layout %d", id)
				if cur := a.Current(); cur != nil {
					printDetail("Current layout: %d %s", cur.ID, cur.Title)
				}
				return nil
			})
		},
	}
}

func (c *CLI) layoutShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Render a layout's grid",
		Long:  `Render a layout's grid with item names. Without an id the current layout is shown.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				l := a.Current()
				if len(args) == 1 {
					id, err := parseInt("id", args[0])
					if err != nil {
						return err
					}
					if l, err = a.Layouts.Get(id); err != nil {
						return err
					}
				}
				if l == nil {
					return errors.New(errors.ErrCodeLayoutNotFound, "no layout selected")
				}
				if err := waitCatalog(ctx, a); err != nil {
					return err
				}
				printLayout(cmd, l, a.Catalog.Catalog(), a.Layouts.Origin())
				return nil
			})
		},
	}
}

// printLayout prints a layout's title, stats and grid.
func printLayout(cmd *cobra.Command, l *grid.Layout, cat *catalog.Catalog, origin string) {
	fmt.Fprintln(cmd.OutOrStdout(), StyleTitle.Render(l.Title)+" "+StyleDim.Render(fmt.Sprintf("#%d", l.ID)))
	if l.Author != "" {
		printKeyValue("Author", l.Author)
	}
	printLayoutStats(l, origin)
	printNewline()
	fmt.Fprintln(cmd.OutOrStdout(), renderGrid(l, gridView{Label: cat.Name}))
}
