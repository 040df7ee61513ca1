// Package codetable builds the language code lookup table from a
// CLD-style source listing.
//
// The source file is line-oriented: each usable line holds at least
// three comma-separated fields, of which only the first two matter —
// a language name (possibly wrapped in the `{"` / `"` decoration of a
// C initializer) and its short code. Names are grouped by code so that
// ambiguous codes (one code claimed by several distinct names) can be
// reported before anything is written.
package codetable

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Table groups language names by code. Codes keep first-seen order so
// diagnostics are deterministic; the name list per code is
// deduplicated and kept in first-seen order.
type Table struct {
	codes []string
	names map[string][]string
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{names: make(map[string][]string)}
}

// ParseRecord splits a raw input line into its name and code fields.
// A line is usable only if it splits into more than two comma-separated
// fields; excess fields are ignored. Returns ok=false for unusable
// lines.
//
// Trimming order matters: whitespace is the outer layer, the quote and
// brace decoration the inner one. `  {"ENGLISH"` becomes `ENGLISH`.
func ParseRecord(line string) (name, code string, ok bool) {
	fields := strings.Split(line, ",")
	if len(fields) <= 2 {
		return "", "", false
	}

	name = strings.Trim(strings.TrimSpace(fields[0]), `{"`)
	code = strings.Trim(strings.TrimSpace(fields[1]), `"`)
	return name, code, true
}

// Add records a name observation for a code. Repeats of a name already
// listed for that code are dropped; only distinct names can make a
// code ambiguous.
func (t *Table) Add(name, code string) {
	existing, seen := t.names[code]
	if !seen {
		t.codes = append(t.codes, code)
		t.names[code] = []string{name}
		return
	}
	for _, n := range existing {
		if n == name {
			return
		}
	}
	t.names[code] = append(existing, name)
}

// Len returns the number of distinct codes observed.
func (t *Table) Len() int {
	return len(t.codes)
}

// Codes returns all observed codes in first-seen order.
func (t *Table) Codes() []string {
	out := make([]string, len(t.codes))
	copy(out, t.codes)
	return out
}

// Names returns the distinct names observed for a code, in first-seen
// order.
func (t *Table) Names(code string) []string {
	names := t.names[code]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Conflict describes a code claimed by more than one distinct name.
type Conflict struct {
	Code  string   `json:"code"`
	Names []string `json:"names"`
}

// Conflicts returns every ambiguous code, in first-seen order.
func (t *Table) Conflicts() []Conflict {
	var out []Conflict
	for _, code := range t.codes {
		if names := t.names[code]; len(names) > 1 {
			out = append(out, Conflict{Code: code, Names: t.Names(code)})
		}
	}
	return out
}

// Parse reads a source listing and groups every usable record into a
// Table.
func Parse(r io.Reader) (*Table, error) {
	t := NewTable()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if name, code, ok := ParseRecord(scanner.Text()); ok {
			t.Add(name, code)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read source listing: %w", err)
	}

	return t, nil
}
