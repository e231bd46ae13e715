// Package cli implements the banktags command-line interface.
//
// This package provides commands for managing a collection of bank tag
// layouts, editing a layout's grid, converting to and from the Banktags
// text format, building the item catalog, and running the TUI editor and
// HTTP API. The CLI is built using cobra and logs via the
// charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - layout: List, create, select, rename, delete and show layouts
//   - grid: Place, move and remove items; insert and delete rows
//   - import / export: Banktags text in and out (optionally via clipboard)
//   - collection: Whole-collection JSON/YAML interchange
//   - catalog: Build the item catalog from the wiki, look up and search items
//   - edit: Interactive grid editor
//   - serve: HTTP API for a browser front end
//   - config / cache: Settings file and HTTP cache management
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context. banktags serve --log-file additionally
// writes to a size-rotated file.
//
// # Example
//
//	import "github.com/matzehuels/banktags/internal/cli"
//
//	func main() {
//	    if err := cli.Execute(context.Background()); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/matzehuels/banktags/pkg/observability"
)

// Rotation settings for --log-file.
const (
	logMaxSizeMB  = 10
	logMaxBackups = 3
	logMaxAgeDays = 28
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// newRotatingWriter returns a size-rotated, compressed log file writer.
func newRotatingWriter(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
		MaxAge:     logMaxAgeDays,
		Compress:   true,
	}
}

// teeLogger returns a logger writing to both the console logger's output
// and a rotating file in logfmt, so the file stays machine-readable.
func teeLogger(console io.Writer, file io.Writer, level log.Level) *log.Logger {
	l := newLogger(io.MultiWriter(console, file), level)
	l.SetFormatter(log.LogfmtFormatter)
	return l
}

// parseLevel maps a config level name to a log level, defaulting to info.
func parseLevel(s string) log.Level {
	level, err := log.ParseLevel(s)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Fetched 4123 wiki rows (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// ctxKey is the type for context keys used in this package.
type ctxKey int

// loggerKey is the context key for storing a logger.
const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability
// =============================================================================

// logHooks writes every observability event as a debug line.
type logHooks struct{ logger *log.Logger }

func registerLogHooks(l *log.Logger) {
	h := logHooks{logger: l.WithPrefix("trace")}
	observability.SetEditorHooks(h)
	observability.SetStoreHooks(h)
	observability.SetHTTPHooks(h)
}

func (h logHooks) OnCommand(_ context.Context, name string, d time.Duration, err error) {
	h.logger.Debug("command", "name", name, "dur", d.Round(time.Microsecond), "err", err)
}

func (h logHooks) OnCatalogLoaded(_ context.Context, items int, d time.Duration, err error) {
	h.logger.Debug("catalog loaded", "items", items, "dur", d.Round(time.Millisecond), "err", err)
}

func (h logHooks) OnLoad(_ context.Context, backend, origin string, layouts int, err error) {
	h.logger.Debug("collection loaded", "backend", backend, "origin", origin, "layouts", layouts, "err", err)
}

func (h logHooks) OnSave(_ context.Context, backend string, size int, d time.Duration, err error) {
	h.logger.Debug("collection saved", "backend", backend, "bytes", size, "dur", d.Round(time.Microsecond), "err", err)
}

func (h logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "dur", d.Round(time.Millisecond))
}

func (h logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Warn("http error", "method", method, "host", host, "path", path, "err", err)
}
