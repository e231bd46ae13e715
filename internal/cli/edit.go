package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/banktags/pkg/app"
)

// editCommand creates the interactive grid editor command.
func (c *CLI) editCommand() *cobra.Command {
	var layoutID int
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit layouts in an interactive grid editor",
		Long: `Open the interactive grid editor on the current layout.

Pick an item in the palette (tab, then enter) and place it with enter on a
cell. Enter on a placed item selects it; enter on an empty cell moves it
there and s swaps it with the item under the cursor. The palette is
filled once the item catalog has loaded. Press ? for every key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd, func(ctx context.Context, a *app.App) error {
				if layoutID > 0 {
					if _, err := a.SelectLayout(ctx, layoutID); err != nil {
						return err
					}
				}
				p := tea.NewProgram(newEditorModel(ctx, a), tea.WithAltScreen(), tea.WithContext(ctx))
				_, err := p.Run()
				return err
			})
		},
	}
	cmd.Flags().IntVar(&layoutID, "layout", 0, "layout id to open (default: the current layout)")
	return cmd
}
