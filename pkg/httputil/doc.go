// Package httputil provides HTTP utilities for the catalog and layout fetchers.
//
// # Overview
//
//   - [Cache]: file-based caching of decoded JSON responses
//   - [Retry]: automatic retry with exponential backoff
//
// # Caching
//
// The item catalog is a multi-megabyte JSON document that rarely changes, so
// [Cache] keeps decoded responses under ~/.cache/banktags/ with a TTL.
// Keys should be namespaced by source ("items:", "placeholders:", "wiki:").
//
//	cache, err := httputil.NewCache("", 24*time.Hour)
//	items := cache.Namespace("items:")
//	ok, err := items.Get(url, &records)
//
// `banktags cache clear` removes every entry.
//
// # Retry
//
// [Retry] re-runs an operation whose error is wrapped in [RetryableError]
// (network failures, 5xx responses). Other errors are returned immediately.
package httputil
