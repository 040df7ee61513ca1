// Command codegen converts the CLD source listing (cld_codes.txt in
// the working directory) into the deduplicated code→name lookup table
// the server loads (cld_codes.json).
//
// There are no flags. A run with overlapping codes prints each
// conflict and writes nothing; that is a normal outcome, not an error.
package main

import (
	"log/slog"
	"os"

	"github.com/langtools/langcodes/internal/codetable"
)

func main() {
	if err := codetable.Run(codetable.SourceFile, codetable.OutputFile, os.Stdout); err != nil {
		slog.Error("code table build failed", "error", err)
		os.Exit(1)
	}
}
