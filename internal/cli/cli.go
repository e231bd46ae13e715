package cli

import (
	"context"
	"io"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/banktags/pkg/app"
	"github.com/matzehuels/banktags/pkg/buildinfo"
	"github.com/matzehuels/banktags/pkg/config"
	"github.com/matzehuels/banktags/pkg/errors"
	"github.com/matzehuels/banktags/pkg/grid"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "banktags"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
	refresh    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Banktags arranges bank tag layouts on an 8-column grid",
		Long:         `Banktags edits bank tag layouts: items from the item catalog placed on an 8-column grid, imported from and exported to the single-line Banktags text format.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := LogInfo
			if c.verbose {
				level = LogDebug
				registerLogHooks(c.Logger)
			}
			c.SetLogLevel(level)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/banktags/config.toml)")
	root.PersistentFlags().BoolVar(&c.refresh, "refresh", false, "bypass the HTTP cache when fetching the catalog")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.gridCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.collectionCommand())
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// App Factory
// =============================================================================

func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}

// openApp loads the config, opens the storage backend and starts the
// catalog load. Callers must Close the returned app.
func (c *CLI) openApp(ctx context.Context) (*app.App, config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, cfg, err
	}
	if !c.verbose {
		c.SetLogLevel(parseLevel(cfg.Log.Level))
	}
	opts, err := app.FromConfig(ctx, cfg, c.refresh)
	if err != nil {
		return nil, cfg, err
	}
	loggerFromContext(ctx).Debug("opening app", "storage", cfg.Storage.Backend, "items", cfg.Catalog.ItemsURL)
	a, err := app.Open(ctx, opts)
	return a, cfg, err
}

// withApp opens the app for the duration of fn.
func (c *CLI) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	ctx := cmd.Context()
	a, _, err := c.openApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			loggerFromContext(ctx).Warn("close storage", "err", cerr)
		}
	}()
	return fn(ctx, a)
}

// waitCatalog blocks until the catalog gate opens and warns when the load
// failed. Commands that resolve ids call it before dispatching.
func waitCatalog(ctx context.Context, a *app.App) error {
	if !a.Catalog.Ready() {
		s := newSpinnerWithContext(ctx, "Loading item catalog...")
		s.Start()
		err := a.Catalog.Wait(ctx)
		s.Stop()
		if err != nil {
			return err
		}
	}
	if err := a.Catalog.Err(); err != nil {
		printWarning("%v", err)
		printDetail("ids fall back to raw numbers; run `banktags catalog build` to fetch the catalog")
	}
	return nil
}

// =============================================================================
// Argument Helpers
// =============================================================================

func parseInt(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s must be an integer, got %q", name, s)
	}
	return n, nil
}

func parsePos(xs, ys string) (grid.Pos, error) {
	x, err := parseInt("x", xs)
	if err != nil {
		return grid.Pos{}, err
	}
	y, err := parseInt("y", ys)
	if err != nil {
		return grid.Pos{}, err
	}
	return grid.Pos{X: x, Y: y}, nil
}
