package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/banktags/pkg/app"
	"github.com/matzehuels/banktags/pkg/catalog"
	"github.com/matzehuels/banktags/pkg/editor"
	"github.com/matzehuels/banktags/pkg/errors"
)

// maxSuggestions bounds the candidates listed for an ambiguous item name.
const maxSuggestions = 5

// gridCommand creates the grid editing command. Every subcommand edits the
// current layout and saves the collection.
func (c *CLI) gridCommand() *cobra.Command {
	var show bool
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Edit the current layout's grid",
		Long: `Edit the current layout's grid. Coordinates are zero-based: x is the
column (0-7), y the row.`,
	}
	cmd.PersistentFlags().BoolVar(&show, "show", false, "render the grid after the edit")

	cmd.AddCommand(c.gridPlaceCommand(&show))
	cmd.AddCommand(c.gridMoveCommand(&show))
	cmd.AddCommand(c.gridRemoveCommand(&show))
	cmd.AddCommand(c.gridInsertRowCommand(&show))
	cmd.AddCommand(c.gridDeleteRowCommand(&show))
	cmd.AddCommand(c.gridClearCommand(&show))

	return cmd
}

func (c *CLI) gridPlaceCommand(show *bool) *cobra.Command {
	var quantity int
	cmd := &cobra.Command{
		Use:   "place <x> <y> <item>",
		Short: "Place an item on a cell, replacing any occupant",
		Long: `Place an item on a cell, replacing any occupant.

The item is an external id (e.g. 4151) or a name ("Abyssal whip"). A name
that matches several items lists the candidates.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePos(args[0], args[1])
			if err != nil {
				return err
			}
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := waitCatalog(ctx, a); err != nil {
					return err
				}
				def, err := resolveItem(a.Catalog.Catalog(), args[2])
				if err != nil {
					return err
				}
				res, err := a.Dispatch(ctx, editor.Place{Pos: pos, ItemID: def.InternalID, Quantity: quantity})
				if err != nil {
					return err
				}
				reportEdit(res, "Placed %s at %s", def.Name, pos)
				return c.maybeShow(cmd, *show, a)
			})
		},
	}
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "stack size")
	return cmd
}

func (c *CLI) gridMoveCommand(show *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "move <x> <y> <to-x> <to-y>",
		Short: "Move an item, swapping with any occupant",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parsePos(args[0], args[1])
			if err != nil {
				return err
			}
			to, err := parsePos(args[2], args[3])
			if err != nil {
				return err
			}
			return c.dispatch(cmd, *show, editor.Move{From: from, To: to}, "Moved %s to %s", from, to)
		},
	}
}

func (c *CLI) gridRemoveCommand(show *bool) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <x> <y>",
		Aliases: []string{"rm"},
		Short:   "Remove the item on a cell",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := parsePos(args[0], args[1])
			if err != nil {
				return err
			}
			return c.dispatch(cmd, *show, editor.Remove{Pos: pos}, "Removed item at %s", pos)
		},
	}
}

func (c *CLI) gridInsertRowCommand(show *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "insert-row <row>",
		Short: "Insert an empty row below a row",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := parseInt("row", args[0])
			if err != nil {
				return err
			}
			return c.dispatch(cmd, *show, editor.InsertRow{Row: row}, "Inserted a row below %d", row)
		},
	}
}

func (c *CLI) gridDeleteRowCommand(show *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-row <row>",
		Short: "Delete a row and its items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := parseInt("row", args[0])
			if err != nil {
				return err
			}
			return c.dispatch(cmd, *show, editor.DeleteRow{Row: row}, "Deleted row %d", row)
		},
	}
}

func (c *CLI) gridClearCommand(show *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every item from the layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.dispatch(cmd, *show, editor.Clear{}, "Cleared layout")
		},
	}
}

// dispatch runs a command that needs no catalog lookup.
func (c *CLI) dispatch(cmd *cobra.Command, show bool, ec editor.Command, format string, args ...any) error {
	return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
		res, err := a.Dispatch(ctx, ec)
		if err != nil {
			return err
		}
		reportEdit(res, format, args...)
		return c.maybeShow(cmd, show, a)
	})
}

func (c *CLI) maybeShow(cmd *cobra.Command, show bool, a *app.App) error {
	if !show {
		return nil
	}
	printNewline()
	printLayout(cmd, a.Current(), a.Catalog.Catalog(), "")
	return nil
}

// reportEdit prints the outcome of a grid edit. Commands that leave the
// layout unchanged, such as moving from an empty cell, say so.
func reportEdit(res editor.Result, format string, args ...any) {
	if !res.Changed {
		printInfo("Nothing to change")
		return
	}
	printSuccess(format, args...)
}

// resolveItem finds the item a user typed: an exact name, an external id,
// or an unambiguous part of a name. Unknown numeric ids fall back to the
// raw number so a missing catalog does not block editing.
func resolveItem(cat *catalog.Catalog, arg string) (catalog.ItemDefinition, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return catalog.ItemDefinition{}, errors.New(errors.ErrCodeEmptyInput, "item is empty")
	}

	matches := cat.Search(arg, 0)
	for _, def := range matches {
		if strings.EqualFold(def.Name, arg) {
			return def, nil
		}
	}

	if res := catalog.DefaultChain(cat).Resolve(arg); !res.Opaque() {
		if def, ok := cat.ByInternal(res.ItemID); ok {
			return def, nil
		}
		return catalog.ItemDefinition{InternalID: res.ItemID, ExternalID: arg, Name: cat.Name(res.ItemID)}, nil
	}

	switch len(matches) {
	case 0:
		return catalog.ItemDefinition{}, errors.New(errors.ErrCodeItemNotFound, "no item matches %q", arg)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, 0, maxSuggestions)
		for _, def := range matches[:min(len(matches), maxSuggestions)] {
			names = append(names, def.Name)
		}
		return catalog.ItemDefinition{}, errors.New(errors.ErrCodeItemNotFound,
			"%q matches %d items: %s", arg, len(matches), strings.Join(names, ", "))
	}
}

