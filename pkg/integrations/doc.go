// Package integrations provides the HTTP client shared by everything that
// talks to a remote service: the catalog source, the remote default layout
// set and the wiki catalog builder in [wiki].
//
// # Client
//
// [Client] wraps [net/http] with:
//   - a 10 second request timeout
//   - retries with exponential backoff for network errors, 429 and 5xx
//     responses (see [httputil.Retry])
//   - an optional file cache keyed by request (see [Client.Cached])
//   - a User-Agent identifying the tool
//   - [observability.HTTPHooks] events for every request
//
// Failures are reported as [ErrNotFound] for 404 responses and [ErrNetwork]
// for everything else, so callers can branch with [errors.Is].
//
// [wiki]: github.com/matzehuels/banktags/pkg/integrations/wiki
// [observability.HTTPHooks]: github.com/matzehuels/banktags/pkg/observability.HTTPHooks
package integrations
