package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/matzehuels/banktags/pkg/integrations"
)

// Source supplies the raw item list and placeholder pairs.
type Source interface {
	Load(ctx context.Context) ([]Record, []Placeholder, error)
}

// StaticSource serves fixed data. A non-nil Err is returned instead.
type StaticSource struct {
	Records      []Record
	Placeholders []Placeholder
	Err          error
}

// Load implements [Source].
func (s StaticSource) Load(context.Context) ([]Record, []Placeholder, error) {
	if s.Err != nil {
		return nil, nil, s.Err
	}
	return s.Records, s.Placeholders, nil
}

// FileSource reads records and, optionally, placeholder pairs from local
// JSON files.
type FileSource struct {
	ItemsPath        string
	PlaceholdersPath string
}

// Load implements [Source].
func (s FileSource) Load(context.Context) ([]Record, []Placeholder, error) {
	var records []Record
	if err := readJSON(s.ItemsPath, &records); err != nil {
		return nil, nil, err
	}
	var placeholders []Placeholder
	if s.PlaceholdersPath != "" {
		if err := readJSON(s.PlaceholdersPath, &placeholders); err != nil {
			return nil, nil, err
		}
	}
	return records, placeholders, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// HTTPSource fetches records and placeholder pairs over HTTP with the
// client's cache and retry policy.
type HTTPSource struct {
	Client          *integrations.Client
	ItemsURL        string
	PlaceholdersURL string
	Refresh         bool
}

// Load implements [Source]. A placeholder list that cannot be fetched is
// not fatal; the catalog then resolves by primary id only.
func (s HTTPSource) Load(ctx context.Context) ([]Record, []Placeholder, error) {
	var records []Record
	err := s.Client.Cached(ctx, "items:"+s.ItemsURL, s.Refresh, &records, func() error {
		return s.Client.Get(ctx, s.ItemsURL, &records)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("items %s: %w", s.ItemsURL, err)
	}
	if s.PlaceholdersURL == "" {
		return records, nil, nil
	}
	var placeholders []Placeholder
	err = s.Client.Cached(ctx, "placeholders:"+s.PlaceholdersURL, s.Refresh, &placeholders, func() error {
		return s.Client.Get(ctx, s.PlaceholdersURL, &placeholders)
	})
	if err != nil {
		return records, nil, nil
	}
	return records, placeholders, nil
}
