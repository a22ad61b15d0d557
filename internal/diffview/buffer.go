package diffview

import (
	"strings"
	"sync"
)

// Buffer is a line-oriented document model. Internally the text is stored as
// the slice produced by splitting on "\n", so a trailing terminator shows up
// as a final empty element and round-trips exactly.
type Buffer struct {
	mu    sync.Mutex
	lines []string
}

// NewBuffer returns a Buffer holding text.
func NewBuffer(text string) *Buffer {
	return &Buffer{lines: strings.Split(text, "\n")}
}

// Text returns the buffer's full content.
func (b *Buffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Join(b.lines, "\n")
}

// SetText replaces the whole content.
func (b *Buffer) SetText(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = strings.Split(text, "\n")
}

// LineCount returns the number of rows, counting a trailing terminator's
// empty row the way editors do.
func (b *Buffer) LineCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.lines)
}

// Lines returns a copy of the buffer's rows.
func (b *Buffer) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...)
}

// ReplaceLines replaces rows [start, end) with content, matching an editor's
// replace of the range from start-of-line start to start-of-line end.
// end < 0 or past the last row extends the range to the document end.
func (b *Buffer) ReplaceLines(content string, start, end int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if start < 0 {
		start = 0
	}
	if start > len(b.lines) {
		start = len(b.lines)
	}
	if end < 0 || end > len(b.lines) {
		end = len(b.lines)
	}
	if end < start {
		end = start
	}

	var sb strings.Builder
	for _, line := range b.lines[:start] {
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString(content)
	sb.WriteString(strings.Join(b.lines[end:], "\n"))
	b.lines = strings.Split(sb.String(), "\n")
}

// Truncate removes everything from row n to the document end, keeping the
// terminator of row n-1 (the editor semantics of deleting from (n,0) to EOF).
func (b *Buffer) Truncate(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n < 0 {
		n = 0
	}
	if len(b.lines) <= n {
		return
	}
	b.lines = append(b.lines[:n:n], "")
}
