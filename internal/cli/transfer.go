package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/matzehuels/banktags/pkg/app"
	"github.com/matzehuels/banktags/pkg/banktags"
	"github.com/matzehuels/banktags/pkg/editor"
	"github.com/matzehuels/banktags/pkg/errors"
)

// clipboardWrite is swapped out in tests.
var clipboardWrite = clipboard.WriteAll

// importCommand creates the Banktags import command.
func (c *CLI) importCommand() *cobra.Command {
	var file string
	var paste bool
	cmd := &cobra.Command{
		Use:   "import [text]",
		Short: "Merge a Banktags string into the current layout",
		Long: `Merge a Banktags string into the current layout.

The text is read from the argument, --file, --paste (the clipboard) or stdin,
in that order. Only the first line is used. Items keep their cell when it is
free and otherwise go to the first free cell. Ids the catalog does not know
are reported; numeric ones are kept as raw ids, the rest are skipped.

Shape:
  ` + banktags.Shape,
		Example: `  banktags import 'banktags,1,Melee,20594,layout,0,4151,9,1333'
  pbpaste | banktags import`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := importText(cmd, args, file, paste)
			if err != nil {
				return err
			}
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := waitCatalog(ctx, a); err != nil {
					return err
				}
				res, err := a.Dispatch(ctx, editor.Import{Text: text})
				if err != nil {
					return err
				}
				printImportResult(res)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the Banktags string from a file")
	cmd.Flags().BoolVar(&paste, "paste", false, "read the Banktags string from the clipboard")
	cmd.MarkFlagsMutuallyExclusive("file", "paste")
	return cmd
}

func importText(cmd *cobra.Command, args []string, file string, paste bool) (string, error) {
	switch {
	case len(args) == 1:
		return args[0], nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", file)
		}
		return string(data), nil
	case paste:
		text, err := clipboard.ReadAll()
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeUnsupported, err, "read clipboard")
		}
		return text, nil
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read stdin")
		}
		return string(data), nil
	}
}

func printImportResult(res editor.Result) {
	printSuccess("Imported %d items", res.Added)
	if res.Skipped > 0 {
		printDetail("%d items skipped: their ids are not numbers", res.Skipped)
	}
	for _, w := range res.Warnings {
		printWarning("%s", w)
	}
}

// exportCommand creates the Banktags export command.
func (c *CLI) exportCommand() *cobra.Command {
	var copyOut bool
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print the current layout as a Banktags string",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := waitCatalog(ctx, a); err != nil {
					return err
				}
				res, err := a.Dispatch(ctx, editor.Export{})
				if err != nil {
					return err
				}
				if copyOut {
					if err := clipboardWrite(res.Text); err != nil {
						printWarning("Could not copy to clipboard: %v", err)
					} else {
						printSuccess("Copied %s to the clipboard", StyleValue.Render(a.Current().Title))
						return nil
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(res.Text))
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&copyOut, "copy", "c", false, "copy to the clipboard instead of printing")
	return cmd
}
