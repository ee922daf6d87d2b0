// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
)

//go:embed data/*.yaml
var embedded embed.FS

// Parse decodes a YAML rule table and runs the schema and invariant checks.
// Unknown keys are rejected.
func Parse(data []byte) (*Jurisdiction, error) {
	var j Jurisdiction
	if err := yaml.UnmarshalWithOptions(data, &j, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rule table: %w", err)
	}
	if err := checkSchema(&j); err != nil {
		return nil, err
	}
	if err := Validate(&j); err != nil {
		return nil, err
	}
	return &j, nil
}

func LoadFile(path string) (*Jurisdiction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule table: %w", err)
	}
	j, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return j, nil
}

// LoadDir loads every *.yaml and *.yml file in dir, in lexical order.
func LoadDir(dir string) ([]*Jurisdiction, error) {
	return loadFS(os.DirFS(dir), ".")
}

// Embedded returns the rule tables compiled into the binary.
func Embedded() ([]*Jurisdiction, error) {
	return loadFS(embedded, "data")
}

func loadFS(fsys fs.FS, dir string) ([]*Jurisdiction, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("listing rule tables: %w", err)
	}

	var out []*Jurisdiction
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		name := e.Name()
		if dir != "." {
			name = dir + "/" + name
		}
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading rule table %s: %w", name, err)
		}
		j, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out = append(out, j)
	}
	return out, nil
}
