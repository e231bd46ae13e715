package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/banktags/pkg/app"
	"github.com/matzehuels/banktags/pkg/errors"
	bio "github.com/matzehuels/banktags/pkg/io"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

// collectionCommand creates the whole-collection interchange command.
func (c *CLI) collectionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collection",
		Short: "Import or export every layout as JSON or YAML",
		Long: `Import or export the whole layout collection.

Files ending in .yaml or .yml use YAML; everything else is JSON. Both a bare
array of layouts and a {"layouts": [...]} document are accepted on import.`,
	}

	cmd.AddCommand(c.collectionExportCommand())
	cmd.AddCommand(c.collectionImportCommand())

	return cmd
}

func (c *CLI) collectionExportCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write the collection to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(_ context.Context, a *app.App) error {
				layouts := a.Layouts.List()
				if len(args) == 1 {
					if err := bio.ExportFile(args[0], layouts); err != nil {
						return errors.Wrap(errors.ErrCodeInvalidPath, err, "export collection")
					}
					printSuccess("Exported %d layouts", len(layouts))
					printFile(args[0])
					return nil
				}
				switch format {
				case formatJSON:
					return bio.WriteJSON(cmd.OutOrStdout(), layouts)
				case formatYAML:
					return bio.WriteYAML(cmd.OutOrStdout(), layouts)
				default:
					return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want json or yaml)", format)
				}
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", formatJSON, "stdout format: json or yaml")
	return cmd
}

func (c *CLI) collectionImportCommand() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the collection with the layouts in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			layouts, err := bio.ImportFile(args[0])
			if err != nil {
				return err
			}
			if dryRun {
				printSuccess("%d layouts are valid", len(layouts))
				for _, l := range layouts {
					printLayoutLine(l, false)
				}
				return nil
			}
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.ReplaceLayouts(ctx, layouts); err != nil {
					return err
				}
				printSuccess("Imported %d layouts", len(layouts))
				if cur := a.Current(); cur != nil {
					printDetail("Current layout: %d %s", cur.ID, cur.Title)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the file without changing the collection")
	return cmd
}
