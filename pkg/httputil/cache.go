package httputil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ErrExpired is returned by [Cache.Get] when a cached entry exists but has
// exceeded its time-to-live. Callers should refetch and call [Cache.Set].
var ErrExpired = errors.New("cache entry expired")

// Cache stores JSON-marshalable values as files named by the SHA-256 of
// their key. Entries expire based on file modification time; a TTL of 0
// means entries never expire.
//
// Cache is not goroutine-safe. Several instances may share a directory.
type Cache struct {
	dir    string
	ttl    time.Duration
	prefix string
}

// NewCache creates a Cache in dir with the given TTL.
// An empty dir selects [DefaultDir]. The directory is created if missing.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

// DefaultDir returns the cache directory using the XDG convention
// ($XDG_CACHE_HOME/banktags or ~/.cache/banktags).
func DefaultDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, "banktags"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "banktags"), nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// TTL returns the time-to-live for entries.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get loads the entry for key into v.
//
//   - (true, nil): hit, v populated
//   - (false, nil): miss
//   - (false, ErrExpired): stale entry, v unchanged
//   - (false, err): I/O or decode failure
func (c *Cache) Get(key string, v any) (bool, error) {
	path := c.keyPath(c.prefix + key)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return false, ErrExpired
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores v under key, refreshing its modification time.
func (c *Cache) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(c.keyPath(c.prefix+key), data, 0o644)
}

// Namespace returns a view of the cache whose keys are prefixed with prefix.
// Namespaces chain: c.Namespace("a:").Namespace("b:") prefixes "a:b:".
func (c *Cache) Namespace(prefix string) *Cache {
	return &Cache{
		dir:    c.dir,
		ttl:    c.ttl,
		prefix: c.prefix + prefix,
	}
}

// Clear removes every entry in the cache directory, across namespaces,
// and reports how many files were removed.
func (c *Cache) Clear() (int, error) {
	entries, err := os.ReadDir(c.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err == nil {
			n++
		}
	}
	return n, nil
}

func (c *Cache) keyPath(key string) string {
	h := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(h[:]))
}
