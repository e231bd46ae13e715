package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/banktags/pkg/server"
	"github.com/matzehuels/banktags/pkg/session"
)

// serveCommand creates the HTTP API command.
func (c *CLI) serveCommand() *cobra.Command {
	var addr, logFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the editor over an HTTP API",
		Long: `Serve the layout collection and editor over a JSON HTTP API for a
browser front end. The server runs until interrupted.`,
		Example: `  banktags serve --addr :8080
  curl localhost:8080/api/export`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cfg, err := c.openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = cfg.Server.Addr
			}
			if logFile == "" {
				logFile = cfg.Log.File
			}

			logger := c.Logger
			if logFile != "" {
				w := newRotatingWriter(logFile)
				defer w.Close()
				logger = teeLogger(os.Stderr, w, c.Logger.GetLevel())
				if c.verbose {
					registerLogHooks(logger)
				}
			}

			srv := server.New(a, server.Options{
				Sessions:   session.NewMemoryStore(),
				SessionTTL: cfg.Server.SessionTTL.Duration,
				Logger:     logger,
			})
			printInfo("Serving %s on %s", StyleValue.Render(a.Current().Title), StyleLink.Render("http://"+addr))
			printDetail("Press Ctrl+C to stop")
			return srv.Run(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "also write logs to this file, rotated by size")
	return cmd
}
