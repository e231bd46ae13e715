// Package config loads the banktags settings file.
//
// The file is TOML, by default at $XDG_CONFIG_HOME/banktags/config.toml.
// A missing file is not an error: [Load] then returns [Defaults]. After the
// file is read, BANKTAGS_* environment variables override individual
// settings; they are never written back by [Config.Save].
//
//	[storage]
//	backend = "sqlite"
//	path = "/home/me/.local/share/banktags/banktags.sqlite"
//
//	[catalog]
//	items_url = "https://example.org/items.json"
//	cache_ttl = "24h"
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/banktags/pkg/errors"
	"github.com/matzehuels/banktags/pkg/integrations/wiki"
	"github.com/matzehuels/banktags/pkg/store"
)

const appName = "banktags"

// Environment variables that override file settings.
const (
	EnvStorage         = "BANKTAGS_STORAGE"
	EnvStoragePath     = "BANKTAGS_STORAGE_PATH"
	EnvRedisAddr       = "BANKTAGS_REDIS_ADDR"
	EnvMongoURI        = "BANKTAGS_MONGO_URI"
	EnvItemsURL        = "BANKTAGS_ITEMS_URL"
	EnvPlaceholdersURL = "BANKTAGS_PLACEHOLDERS_URL"
	EnvLayoutsURL      = "BANKTAGS_LAYOUTS_URL"
	EnvAddr            = "BANKTAGS_ADDR"
	EnvLogLevel        = "BANKTAGS_LOG_LEVEL"
	EnvLogFile         = "BANKTAGS_LOG_FILE"
)

// Duration is a time.Duration written as a string ("24h") in TOML.
type Duration struct{ time.Duration }

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// StorageConfig selects the layout persistence backend.
type StorageConfig struct {
	Backend       string `toml:"backend"`
	Path          string `toml:"path,omitempty"`
	RedisAddr     string `toml:"redis_addr,omitempty"`
	MongoURI      string `toml:"mongo_uri,omitempty"`
	MongoDatabase string `toml:"mongo_database,omitempty"`
}

// CatalogConfig locates the item catalog. ItemsURL may be an http(s) URL or
// a local file; empty means items.json in the data directory.
type CatalogConfig struct {
	ItemsURL        string   `toml:"items_url,omitempty"`
	PlaceholdersURL string   `toml:"placeholders_url,omitempty"`
	WikiURL         string   `toml:"wiki_url"`
	CacheTTL        Duration `toml:"cache_ttl"`
}

// RemoteConfig points at a default layout set used when nothing is stored.
type RemoteConfig struct {
	LayoutsURL string `toml:"layouts_url,omitempty"`
}

// ServerConfig configures banktags serve.
type ServerConfig struct {
	Addr       string   `toml:"addr"`
	SessionTTL Duration `toml:"session_ttl"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file,omitempty"`
}

// Config is the whole settings file.
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Catalog CatalogConfig `toml:"catalog"`
	Remote  RemoteConfig  `toml:"remote"`
	Server  ServerConfig  `toml:"server"`
	Log     LogConfig     `toml:"log"`
}

// Defaults returns the built-in settings.
func Defaults() Config {
	return Config{
		Storage: StorageConfig{Backend: store.BackendFile},
		Catalog: CatalogConfig{
			WikiURL:  wiki.DefaultBaseURL,
			CacheTTL: Duration{24 * time.Hour},
		},
		Server: ServerConfig{Addr: "127.0.0.1:8080", SessionTTL: Duration{2 * time.Hour}},
		Log:    LogConfig{Level: "info"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/banktags/config.toml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads path on top of the defaults and applies environment
// overrides. An empty path means [DefaultPath].
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			applyEnv(&cfg)
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return cfg, errors.Wrap(errors.ErrCodeInvalidPath, err, "read config %s", path)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
		}
	}

	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

// Save writes c to path as TOML, creating parent directories.
func (c Config) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Validate checks the settings that would otherwise fail late.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case store.BackendMemory, store.BackendFile, store.BackendSQLite, store.BackendRedis, store.BackendMongo:
	default:
		return errors.New(errors.ErrCodeUnsupported, "unknown storage backend %q", c.Storage.Backend)
	}
	if c.Remote.LayoutsURL != "" {
		if err := errors.ValidateURL(c.Remote.LayoutsURL); err != nil {
			return err
		}
	}
	if c.Catalog.WikiURL != "" {
		return errors.ValidateURL(c.Catalog.WikiURL)
	}
	return nil
}

// StoreOptions converts the storage section for [store.Open].
func (c Config) StoreOptions() store.Options {
	return store.Options{
		Backend:       c.Storage.Backend,
		Path:          c.Storage.Path,
		RedisAddr:     c.Storage.RedisAddr,
		MongoURI:      c.Storage.MongoURI,
		MongoDatabase: c.Storage.MongoDatabase,
	}
}

// RemoteItems reports whether the catalog is fetched over HTTP.
func (c Config) RemoteItems() bool { return isHTTP(c.Catalog.ItemsURL) }

func isHTTP(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func applyEnv(c *Config) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Storage.Backend, EnvStorage)
	set(&c.Storage.Path, EnvStoragePath)
	set(&c.Storage.RedisAddr, EnvRedisAddr)
	set(&c.Storage.MongoURI, EnvMongoURI)
	set(&c.Catalog.ItemsURL, EnvItemsURL)
	set(&c.Catalog.PlaceholdersURL, EnvPlaceholdersURL)
	set(&c.Remote.LayoutsURL, EnvLayoutsURL)
	set(&c.Server.Addr, EnvAddr)
	set(&c.Log.Level, EnvLogLevel)
	set(&c.Log.File, EnvLogFile)
}

// Overridden lists the environment variables currently overriding settings.
func Overridden() []string {
	var out []string
	for _, key := range []string{
		EnvStorage, EnvStoragePath, EnvRedisAddr, EnvMongoURI, EnvItemsURL,
		EnvPlaceholdersURL, EnvLayoutsURL, EnvAddr, EnvLogLevel, EnvLogFile,
	} {
		if strings.TrimSpace(os.Getenv(key)) != "" {
			out = append(out, key)
		}
	}
	return out
}
