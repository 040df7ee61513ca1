package codetable

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Result is the normalized code→name mapping written on a clean run.
// It is a value distinct from the Table it was derived from: the
// grouped table stays list-valued and untouched once validated.
type Result map[string]string

// ErrConflicts is returned by Table.Result when the table holds at
// least one ambiguous code.
var ErrConflicts = fmt.Errorf("table has conflicting codes")

// Result builds the normalized mapping from a conflict-free table.
// Every single-entry name list collapses to its capitalized name.
func (t *Table) Result() (Result, error) {
	if len(t.Conflicts()) > 0 {
		return nil, ErrConflicts
	}

	out := make(Result, len(t.codes))
	for _, code := range t.codes {
		out[code] = Capitalize(t.names[code][0])
	}
	return out, nil
}

// Capitalize uppercases the first rune and lowercases the remainder.
// Already-capitalized single words pass through unchanged.
func Capitalize(s string) string {
	if s == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}

// Encode serializes the result as a pretty-printed JSON object:
// keys sorted ascending, 4-space indentation.
func (r Result) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encode result table: %w", err)
	}
	return data, nil
}

// WriteFile encodes the result and writes it to path, replacing any
// existing file.
func (r Result) WriteFile(path string) error {
	data, err := r.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write result table: %w", err)
	}
	return nil
}
