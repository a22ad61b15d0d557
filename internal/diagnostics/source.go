package diagnostics

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// CommandSource feeds a Store from the output of an external lint/compile
// command, e.g. "go vet ./..." or "eslint --format unix .".
type CommandSource struct {
	WorkDir string
	Command []string // argv; Command[0] is the executable
}

// compiler-style "path:line:col: message" or "path:line: message"
var diagLineRegex = regexp.MustCompile(`^(.+?):(\d+)(?::(\d+))?:\s*(.+)$`)

// Refresh runs the command and replaces the Store's contents with the parsed
// diagnostics. Lint commands conventionally exit non-zero when they find
// problems, so a non-zero exit with parseable output is not an error.
func (c *CommandSource) Refresh(ctx context.Context, store *Store) error {
	if len(c.Command) == 0 {
		return nil
	}

	cmd := exec.CommandContext(ctx, c.Command[0], c.Command[1:]...)
	cmd.Dir = c.WorkDir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	runErr := cmd.Run()

	parsed := ParseToolOutput(out.String(), c.WorkDir)
	if runErr != nil && len(parsed) == 0 && out.Len() == 0 {
		// The tool itself failed to run; keep the previous snapshot.
		return runErr
	}

	store.Clear()
	for _, fd := range parsed {
		store.Publish(fd.Path, fd.Diagnostics)
	}
	return nil
}

// ParseToolOutput parses compiler-style "path:line:col: message" lines into
// per-file diagnostics. Relative paths are resolved against workDir. Lines
// that don't match the pattern are ignored. A message containing "warning:"
// is classified as a warning; everything else is an error.
func ParseToolOutput(output, workDir string) []FileDiagnostics {
	byPath := make(map[string][]Diagnostic)
	var order []string

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		m := diagLineRegex.FindStringSubmatch(scanner.Text())
		if m == nil {
			continue
		}
		path := m[1]
		if !filepath.IsAbs(path) && workDir != "" {
			path = filepath.Join(workDir, path)
		}
		line, _ := strconv.Atoi(m[2])
		col := 0
		if m[3] != "" {
			col, _ = strconv.Atoi(m[3])
		}
		message := strings.TrimSpace(m[4])

		severity := SeverityError
		if strings.HasPrefix(strings.ToLower(message), "warning:") {
			severity = SeverityWarning
			message = strings.TrimSpace(message[len("warning:"):])
		}

		// Tool output is 1-based; diagnostics are 0-based.
		pos := Position{Line: line - 1, Character: max(col-1, 0)}
		if _, ok := byPath[path]; !ok {
			order = append(order, path)
		}
		byPath[path] = append(byPath[path], Diagnostic{
			Range:    Range{Start: pos, End: pos},
			Severity: severity,
			Source:   "lint",
			Message:  message,
		})
	}

	result := make([]FileDiagnostics, 0, len(order))
	for _, p := range order {
		result = append(result, FileDiagnostics{Path: p, Diagnostics: byPath[p]})
	}
	return result
}
