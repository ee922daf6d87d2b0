// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownJurisdiction = errors.New("unknown jurisdiction")

// Registry indexes loaded rule tables by jurisdiction id. It is built once
// and only read afterwards, so it is safe for concurrent use.
type Registry struct {
	byID map[string]*Jurisdiction
	ids  []string
}

// NewRegistry indexes the given tables. Later tables may not reuse an id.
func NewRegistry(tables ...*Jurisdiction) (*Registry, error) {
	r := &Registry{byID: make(map[string]*Jurisdiction, len(tables))}
	for _, j := range tables {
		if _, dup := r.byID[j.ID]; dup {
			return nil, fmt.Errorf("jurisdiction %q is defined more than once", j.ID)
		}
		r.byID[j.ID] = j
		r.ids = append(r.ids, j.ID)
	}
	sort.Strings(r.ids)
	return r, nil
}

// DefaultRegistry loads the embedded tables plus any tables found in extraDir.
// An empty extraDir loads only the embedded tables.
func DefaultRegistry(extraDir string) (*Registry, error) {
	tables, err := Embedded()
	if err != nil {
		return nil, err
	}
	if extraDir != "" {
		extra, err := LoadDir(extraDir)
		if err != nil {
			return nil, err
		}
		tables = append(tables, extra...)
	}
	return NewRegistry(tables...)
}

func (r *Registry) Get(id string) (*Jurisdiction, error) {
	j, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownJurisdiction, id)
	}
	return j, nil
}

// List returns the tables sorted by id.
func (r *Registry) List() []*Jurisdiction {
	out := make([]*Jurisdiction, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.byID[id])
	}
	return out
}
