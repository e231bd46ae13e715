package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/banktags/pkg/grid"
)

// WriteJSON writes layouts as an indented {"layouts": [...]} document.
func WriteJSON(w io.Writer, layouts []*grid.Layout) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(envelope{Layouts: nonNil(layouts)})
}

// WriteYAML writes layouts as a YAML document with a layouts key.
func WriteYAML(w io.Writer, layouts []*grid.Layout) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(envelope{Layouts: nonNil(layouts)}); err != nil {
		return err
	}
	return enc.Close()
}

// ExportFile writes layouts to path, as YAML for .yaml and .yml files and
// JSON otherwise.
func ExportFile(path string, layouts []*grid.Layout) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	write := WriteJSON
	if IsYAML(path) {
		write = WriteYAML
	}
	if err := write(f, layouts); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func nonNil(layouts []*grid.Layout) []*grid.Layout {
	if layouts == nil {
		return []*grid.Layout{}
	}
	return layouts
}
