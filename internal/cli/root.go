package cli

import (
	"context"
	"os"

	"github.com/matzehuels/banktags/pkg/buildinfo"
)

// SetVersion sets the version information displayed by --version and sent
// in the User-Agent of outgoing requests. It is typically called by the
// main package with values injected via ldflags at build time.
//
// Parameters:
//   - v: semantic version string (e.g., "v1.2.3")
//   - c: git commit SHA (short or long form)
//   - d: build timestamp (e.g., "2025-12-20T14:32:01Z")
func SetVersion(v, c, d string) {
	if v != "" {
		buildinfo.Version = v
	}
	if c != "" {
		buildinfo.Commit = c
	}
	if d != "" {
		buildinfo.Date = d
	}
}

// Execute runs the banktags CLI and returns an error if any command fails.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level, plus debug lines for every editor
//     command, store load/save and outgoing HTTP request
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
//
// Example:
//
//	func main() {
//	    ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	    defer cancel()
//	    if err := cli.Execute(ctx); err != nil {
//	        os.Exit(1)
//	    }
//	}
func Execute(ctx context.Context) error {
	c := New(os.Stderr, LogInfo)
	return c.RootCommand().ExecuteContext(ctx)
}
