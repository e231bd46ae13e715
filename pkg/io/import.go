package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/banktags/pkg/errors"
	"github.com/matzehuels/banktags/pkg/grid"
)

type envelope struct {
	Layouts []*grid.Layout `json:"layouts" yaml:"layouts"`
}

// DecodeJSON validates and decodes a JSON collection.
func DecodeJSON(data []byte) ([]*grid.Layout, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyInput, "empty collection document")
	}
	if err := Validate(data); err != nil {
		return nil, err
	}

	var layouts []*grid.Layout
	if trimmed := bytes.TrimSpace(data); trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &layouts); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode collection")
		}
	} else {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode collection")
		}
		layouts = env.Layouts
	}
	return finish(layouts)
}

// DecodeYAML converts a YAML collection to JSON and decodes it with
// [DecodeJSON], so both formats share one schema.
func DecodeYAML(data []byte) ([]*grid.Layout, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml collection")
	}
	if doc == nil {
		return nil, errors.New(errors.ErrCodeEmptyInput, "empty collection document")
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "convert yaml collection")
	}
	return DecodeJSON(js)
}

// ReadJSON decodes a JSON collection from r. ReadJSON does not close r.
func ReadJSON(r io.Reader) ([]*grid.Layout, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return DecodeJSON(data)
}

// ReadYAML decodes a YAML collection from r. ReadYAML does not close r.
func ReadYAML(r io.Reader) ([]*grid.Layout, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return DecodeYAML(data)
}

// ImportFile reads a collection from path, choosing YAML for .yaml and
// .yml files and JSON otherwise.
func ImportFile(path string) ([]*grid.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if IsYAML(path) {
		return DecodeYAML(data)
	}
	return DecodeJSON(data)
}

// IsYAML reports whether path has a YAML extension.
func IsYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func finish(layouts []*grid.Layout) ([]*grid.Layout, error) {
	seen := make(map[int]bool, len(layouts))
	out := make([]*grid.Layout, 0, len(layouts))
	for _, l := range layouts {
		if l == nil {
			continue
		}
		if seen[l.ID] {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate layout id %d", l.ID)
		}
		seen[l.ID] = true
		l.Normalize()
		if err := l.Validate(); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}
