package codetable

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Default filenames, both resolved against the working directory.
const (
	SourceFile = "cld_codes.txt"
	OutputFile = "cld_codes.json"
)

// Run executes a full build: parse the source listing at inPath,
// report totals and overlaps to w, and — only when no code is
// ambiguous — write the normalized table to outPath.
//
// A run with overlaps is not an error: the conflicts are reported, the
// output file is left untouched, and Run returns nil.
func Run(inPath, outPath string, w io.Writer) error {
	src, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("open source listing: %w", err)
	}
	defer src.Close()

	table, err := Parse(src)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Total languages: %d\n", table.Len())
	fmt.Fprintln(w, "Overlaps:")

	conflicts := table.Conflicts()
	if len(conflicts) > 0 {
		for _, c := range conflicts {
			fmt.Fprintf(w, "%s: %s\n", c.Code, formatNames(c.Names))
		}
		return nil
	}

	result, err := table.Result()
	if err != nil {
		return err
	}
	if err := result.WriteFile(outPath); err != nil {
		return err
	}

	fmt.Fprintf(w, "None! Result saved in %s\n", outPath)
	return nil
}

// formatNames renders a conflict's name list as ["a", "b"].
func formatNames(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("%q", n)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
