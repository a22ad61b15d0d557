// Package diffview defines the editing-surface capability an edit session
// drives, plus a headless in-memory implementation of it. The session core
// never depends on a concrete surface; interactive surfaces (internal/tui)
// implement the same contract.
package diffview

import "context"

// LineRange addresses document lines [Start, End). End < 0 means
// "through the end of the document".
type LineRange struct {
	Start int
	End   int
}

// FullRange addresses the whole document.
var FullRange = LineRange{Start: 0, End: -1}

// Provider is the editing surface an edit session mutates while streaming
// and reconciles against at save time.
type Provider interface {
	// OpenDiffEditor opens the surface for the file at absPath, seeded with
	// its original content, and returns once the surface is ready.
	OpenDiffEditor(ctx context.Context, absPath, originalContent string) error

	// ScrollEditorToLine reveals line (zero-based) in the surface.
	ScrollEditorToLine(ctx context.Context, line int) error

	// ScrollAnimation scrolls gradually from startLine to endLine so large
	// streamed chunks stay visually trackable.
	ScrollAnimation(ctx context.Context, startLine, endLine int) error

	// TruncateDocument removes all content from line (zero-based) to the
	// document end.
	TruncateDocument(ctx context.Context, line int) error

	// ReplaceText replaces the lines addressed by rng with content.
	// currentLine is the last line carrying new content, for cursor/reveal
	// bookkeeping in visual surfaces.
	ReplaceText(ctx context.Context, content string, rng LineRange, currentLine int) error

	// ShowDocument brings the real (non-diff) file view forward.
	ShowDocument(ctx context.Context) error

	// CloseDiffView closes the diff surface.
	CloseDiffView(ctx context.Context) error

	// ResetDiffView releases the surface's resources. Idempotent.
	ResetDiffView(ctx context.Context) error

	// DocumentText returns the surface's current document text.
	DocumentText(ctx context.Context) (string, error)

	// SaveDocument persists the document to disk. Persisting may run an
	// external formatter that alters the document first.
	SaveDocument(ctx context.Context) error

	// IsDirty reports whether the document differs from its saved state.
	IsDirty() bool

	// IsDocumentOpen reports whether the file at absPath was already open in
	// the host before the session began.
	IsDocumentOpen(absPath string) bool

	// Active reports whether a surface is currently open.
	Active() bool
}
