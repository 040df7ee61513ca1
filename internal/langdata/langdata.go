// Package langdata holds the generated language table: the flat
// code→name JSON document produced by the code-table builder.
package langdata

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Table is an immutable code→name lookup. Replacing the table (after
// a rebuild) means constructing a new one, never mutating in place.
type Table struct {
	names map[string]string
}

// New builds a Table from a code→name mapping. The mapping is copied.
func New(names map[string]string) *Table {
	copied := make(map[string]string, len(names))
	for code, name := range names {
		copied[code] = name
	}
	return &Table{names: copied}
}

// Load reads the generated JSON table from path.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read language table: %w", err)
	}

	names := make(map[string]string)
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("parse language table %s: %w", path, err)
	}

	return New(names), nil
}

// Lookup returns the language name for a code.
func (t *Table) Lookup(code string) (string, bool) {
	name, ok := t.names[code]
	return name, ok
}

// Len returns the number of known codes.
func (t *Table) Len() int {
	return len(t.names)
}

// Codes returns all known codes sorted ascending.
func (t *Table) Codes() []string {
	out := make([]string, 0, len(t.names))
	for code := range t.names {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// All returns a copy of the full code→name mapping.
func (t *Table) All() map[string]string {
	out := make(map[string]string, len(t.names))
	for code, name := range t.names {
		out[code] = name
	}
	return out
}
