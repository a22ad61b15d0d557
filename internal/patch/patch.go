// Package patch renders human-readable unified diffs between two versions
// of a file's content.
package patch

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// Pretty returns a unified diff from before to after for the file at path,
// with three lines of context. It returns "" when the contents are equal.
func Pretty(path, before, after string) (string, error) {
	if before == after {
		return "", nil
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: path,
		ToFile:   path,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", fmt.Errorf("formatting patch for %s: %w", path, err)
	}
	return text, nil
}
