// Package diagnostics captures lint/compile problems as snapshots and
// computes the delta of problems introduced between two snapshots.
package diagnostics

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Severity follows LSP numbering: lower is more severe.
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInformation
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "Error"
	case SeverityWarning:
		return "Warning"
	case SeverityInformation:
		return "Information"
	case SeverityHint:
		return "Hint"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Position is a zero-based line/character location.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range spans from Start to End, both zero-based.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	Range    Range    `json:"range"`
	Severity Severity `json:"severity"`
	Source   string   `json:"source,omitempty"` // e.g. the tool that produced it
	Message  string   `json:"message"`
}

// FileDiagnostics groups the diagnostics of one file.
type FileDiagnostics struct {
	Path        string       `json:"path"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Store holds the current diagnostics per file and hands out snapshots.
type Store struct {
	mu     sync.RWMutex
	byPath map[string][]Diagnostic
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{byPath: make(map[string][]Diagnostic)}
}

// Publish replaces the diagnostics recorded for path. An empty slice clears
// the file's entry.
func (s *Store) Publish(path string, diags []Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(diags) == 0 {
		delete(s.byPath, path)
		return
	}
	s.byPath[path] = append([]Diagnostic(nil), diags...)
}

// Clear removes all recorded diagnostics.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byPath = make(map[string][]Diagnostic)
}

// Snapshot returns a deep copy of all current diagnostics, sorted by path
// and position, so later Publish calls cannot mutate a captured baseline.
func (s *Store) Snapshot() []FileDiagnostics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	paths := make([]string, 0, len(s.byPath))
	for p := range s.byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	snap := make([]FileDiagnostics, 0, len(paths))
	for _, p := range paths {
		diags := append([]Diagnostic(nil), s.byPath[p]...)
		sort.Slice(diags, func(i, j int) bool {
			if diags[i].Range.Start.Line != diags[j].Range.Start.Line {
				return diags[i].Range.Start.Line < diags[j].Range.Start.Line
			}
			return diags[i].Range.Start.Character < diags[j].Range.Start.Character
		})
		snap = append(snap, FileDiagnostics{Path: p, Diagnostics: diags})
	}
	return snap
}

// key identifies a diagnostic for delta computation.
type key struct {
	rng      Range
	severity Severity
	source   string
	message  string
}

// Delta returns the diagnostics present in after but not in before,
// restricted to severities at or above maxSeverity (lower value = more
// severe). Resolved diagnostics are ignored: only newly introduced problems
// matter to the caller.
func Delta(before, after []FileDiagnostics, maxSeverity Severity) []FileDiagnostics {
	seen := make(map[string]map[key]bool, len(before))
	for _, fd := range before {
		m := make(map[key]bool, len(fd.Diagnostics))
		for _, d := range fd.Diagnostics {
			m[key{d.Range, d.Severity, d.Source, d.Message}] = true
		}
		seen[fd.Path] = m
	}

	var delta []FileDiagnostics
	for _, fd := range after {
		var fresh []Diagnostic
		for _, d := range fd.Diagnostics {
			if d.Severity > maxSeverity {
				continue
			}
			if seen[fd.Path][key{d.Range, d.Severity, d.Source, d.Message}] {
				continue
			}
			fresh = append(fresh, d)
		}
		if len(fresh) > 0 {
			delta = append(delta, FileDiagnostics{Path: fd.Path, Diagnostics: fresh})
		}
	}
	return delta
}

// Format renders a delta as a human-readable problems block. Paths are shown
// relative to workDir when possible. Returns "" for an empty delta.
func Format(delta []FileDiagnostics, workDir string) string {
	if len(delta) == 0 {
		return ""
	}

	var sb strings.Builder
	for _, fd := range delta {
		path := fd.Path
		if workDir != "" {
			if rel, err := filepath.Rel(workDir, fd.Path); err == nil && !strings.HasPrefix(rel, "..") {
				path = rel
			}
		}
		fmt.Fprintf(&sb, "# %s\n", path)
		for _, d := range fd.Diagnostics {
			source := d.Source
			if source == "" {
				source = "diagnostics"
			}
			// Report 1-based line numbers to humans.
			fmt.Fprintf(&sb, "- [%s %s] Line %d: %s\n",
				source, d.Severity, d.Range.Start.Line+1, d.Message)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
