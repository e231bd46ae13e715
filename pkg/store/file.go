package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileBackend stores each key as a JSON file in a directory.
type FileBackend struct {
	mu  sync.RWMutex
	dir string
}

// NewFileBackend creates a file backend. If dir is empty, defaults to
// [DefaultDataDir].
func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		d, err := DefaultDataDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

// DefaultDataDir returns $XDG_DATA_HOME/banktags or ~/.local/share/banktags.
func DefaultDataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "banktags"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "banktags"), nil
}

var keyReplacer = strings.NewReplacer(":", "_", "/", "_", "\\", "_")

// Path returns the file that holds key.
func (f *FileBackend) Path(key string) string {
	return filepath.Join(f.dir, keyReplacer.Replace(key)+".json")
}

func (f *FileBackend) Load(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return data, true, nil
}

// Save writes through a temporary file so a crash never leaves a
// truncated collection behind.
func (f *FileBackend) Save(_ context.Context, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := f.Path(key)
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", key, err)
	}
	return os.Rename(tmp.Name(), path)
}

func (f *FileBackend) Close() error { return nil }
