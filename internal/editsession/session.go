// Package editsession implements the lifecycle of one assisted edit to one
// file: open a diff surface, stream an incrementally generated replacement
// into it, then reconcile the saved result against what the generator
// intended, what a human edited before accepting, and what an auto-formatter
// changed on save. The whole operation can be reverted instead.
package editsession

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/malonzhao/cline/internal/diagnostics"
	"github.com/malonzhao/cline/internal/diffview"
	"github.com/malonzhao/cline/internal/fsops"
	"github.com/malonzhao/cline/internal/textenc"
	"github.com/malonzhao/cline/internal/watch"
)

// EditType says whether the session creates a new file or modifies one.
type EditType string

const (
	EditTypeCreate EditType = "create"
	EditTypeModify EditType = "modify"
)

var (
	// ErrNotOpen is returned when Update runs before Open.
	ErrNotOpen = errors.New("edit session not open")
	// ErrSessionActive is returned when Open runs while a session is active.
	ErrSessionActive = errors.New("edit session already active")
)

const byteOrderMark = "\ufeff"

// defaultScrollThreshold is the largest number of newly revealed lines that
// still jumps directly instead of animating.
const defaultScrollThreshold = 5

// Snapshotter captures all currently known diagnostics.
type Snapshotter interface {
	Snapshot() []diagnostics.FileDiagnostics
}

// Session owns one assisted edit from Open to Reset. It is not safe for
// concurrent use: the caller must let each operation return before issuing
// the next (single-writer model).
type Session struct {
	view  diffview.Provider
	enc   textenc.Resolver
	diags Snapshotter
	store Store

	workDir         string
	scrollThreshold int
	watchExternal   bool

	id              string
	relPath         string
	absPath         string
	editType        EditType
	encoding        string
	originalContent string
	streamedLines   []string
	newContent      string
	createdDirs     []string
	documentWasOpen bool
	preDiagnostics  []diagnostics.FileDiagnostics
	monitor         *watch.Monitor
	startedAt       time.Time
	active          bool
}

// Option configures a Session.
type Option func(*Session)

// WithDiagnostics supplies the diagnostics snapshot source used to compute
// the new-problems delta at save time.
func WithDiagnostics(s Snapshotter) Option {
	return func(sess *Session) { sess.diags = s }
}

// WithEncodingResolver overrides the default encoding resolver.
func WithEncodingResolver(r textenc.Resolver) Option {
	return func(sess *Session) { sess.enc = r }
}

// WithStore persists the pending session so it can be reverted from another
// process.
func WithStore(st Store) Option {
	return func(sess *Session) { sess.store = st }
}

// WithScrollThreshold overrides the direct-jump/animation cutoff.
func WithScrollThreshold(n int) Option {
	return func(sess *Session) {
		if n > 0 {
			sess.scrollThreshold = n
		}
	}
}

// WithExternalWatch enables monitoring of the target file for modifications
// made outside the session while it is streaming.
func WithExternalWatch(enabled bool) Option {
	return func(sess *Session) { sess.watchExternal = enabled }
}

// New returns a Session rooted at workDir that drives view.
func New(workDir string, view diffview.Provider, opts ...Option) *Session {
	s := &Session{
		view:            view,
		enc:             textenc.NewResolver(),
		workDir:         workDir,
		scrollThreshold: defaultScrollThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resume reconstructs an active Session from a persisted snapshot so that
// RevertChanges works after the opening process has exited. The view is not
// reopened; revert falls back to direct filesystem restoration when the
// surface is inactive.
func Resume(snap *Snapshot, view diffview.Provider, opts ...Option) *Session {
	s := New(snap.WorkDir, view, opts...)
	s.id = snap.ID
	s.relPath = snap.RelPath
	s.absPath = snap.AbsPath
	s.editType = snap.EditType
	s.encoding = snap.Encoding
	s.originalContent = snap.OriginalContent
	s.createdDirs = snap.CreatedDirs
	s.documentWasOpen = snap.DocumentWasOpen
	s.startedAt = snap.StartedAt
	s.active = true
	return s
}

// Open starts a session for relPath. For an existing file the content is
// read and decoded to become the revert baseline; for a new file the missing
// ancestor directories are created (and recorded for rollback) and an empty
// file is written so the surface has something to open. The surface is then
// opened and scrolled to the top.
//
// Session state is populated before each fallible step so that a failure
// mid-open still leaves enough state for RevertChanges to roll back.
func (s *Session) Open(ctx context.Context, relPath string) error {
	if s.active {
		return fmt.Errorf("%w: %s", ErrSessionActive, s.relPath)
	}

	abs := relPath
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(s.workDir, relPath)
	}
	s.relPath = relPath
	s.absPath = abs
	s.streamedLines = nil
	s.newContent = ""
	s.startedAt = time.Now()

	if fsops.FileExists(abs) {
		s.editType = EditTypeModify
		raw, err := fsops.ReadFile(abs)
		if err != nil {
			return err
		}
		s.encoding = s.enc.Detect(raw)
		text, err := s.enc.Decode(raw, s.encoding)
		if err != nil {
			return fmt.Errorf("opening %s: %w", relPath, err)
		}
		s.originalContent = text
	} else {
		s.editType = EditTypeCreate
		s.encoding = textenc.UTF8
		s.originalContent = ""
		created, err := fsops.CreateDirectoriesForFile(abs)
		// Record before checking err: a partial failure still needs correct
		// rollback of whatever directories were created.
		s.createdDirs = created
		if err != nil {
			return err
		}
		if err := fsops.WriteFile(abs, nil); err != nil {
			return err
		}
	}

	s.documentWasOpen = s.view.IsDocumentOpen(abs)
	if s.diags != nil {
		s.preDiagnostics = s.diags.Snapshot()
	}

	if err := s.view.OpenDiffEditor(ctx, abs, s.originalContent); err != nil {
		return fmt.Errorf("opening diff surface for %s: %w", relPath, err)
	}
	if err := s.view.ScrollEditorToLine(ctx, 0); err != nil {
		return err
	}

	if s.watchExternal {
		// Best-effort: a platform without watch support still edits fine.
		if m, err := watch.Start(abs); err == nil {
			s.monitor = m
		}
	}

	s.id = uuid.New().String()
	s.active = true

	if s.store != nil {
		if err := s.store.Save(s.Snapshot()); err != nil {
			return err
		}
	}
	return nil
}

// Update applies the next accumulated content of the in-progress generation
// to the surface. Non-final updates withhold the last (possibly partial)
// line; the final update truncates leftover trailing content and pins down
// the trailing-terminator convention.
func (s *Session) Update(ctx context.Context, accumulatedContent string, isFinal bool, changeLocation *diffview.LineRange) error {
	if !s.active || s.relPath == "" {
		return ErrNotOpen
	}

	// Strip exactly one leading byte-order mark so the full-prefix replace
	// cannot duplicate a mark the surface already preserves.
	accumulatedContent = strings.TrimPrefix(accumulatedContent, byteOrderMark)
	s.newContent = accumulatedContent

	accLines := strings.Split(accumulatedContent, "\n")
	if isFinal {
		// A trailing terminator produces a final empty element; it is the
		// terminator of the last line, not a line of its own.
		if n := len(accLines); n > 0 && accLines[n-1] == "" {
			accLines = accLines[:n-1]
		}
	} else {
		// The last element is a partial, not-yet-terminated line; commit it
		// only once it is known to be complete.
		accLines = accLines[:len(accLines)-1]
	}

	prevCount := len(s.streamedLines)
	diffCount := 0
	if len(accLines) > prevCount {
		diffCount = len(accLines) - prevCount
	}

	currentLine := prevCount + diffCount - 1
	if currentLine >= 0 {
		// Full-prefix replace rather than incremental insert: surfaces that
		// auto-close syntactic constructs per line would corrupt an
		// incremental insert.
		content := strings.Join(accLines, "\n") + "\n"
		rng := diffview.LineRange{Start: 0, End: currentLine + 1}
		if err := s.view.ReplaceText(ctx, content, rng, currentLine); err != nil {
			return fmt.Errorf("updating %s: %w", s.relPath, err)
		}

		switch {
		case changeLocation != nil:
			// An explicit change location wins over the heuristic.
			if err := s.view.ScrollEditorToLine(ctx, changeLocation.Start); err != nil {
				return err
			}
		case diffCount <= s.scrollThreshold:
			if err := s.view.ScrollEditorToLine(ctx, currentLine); err != nil {
				return err
			}
		default:
			from := prevCount - 1
			if from < 0 {
				from = 0
			}
			if err := s.view.ScrollAnimation(ctx, from, currentLine); err != nil {
				return err
			}
			if err := s.view.ScrollEditorToLine(ctx, currentLine); err != nil {
				return err
			}
		}
	}

	s.streamedLines = accLines

	if isFinal {
		// Remove leftover trailing content from a previous, longer,
		// accumulated version. Runs even with zero new lines so a shrunken
		// stream still truncates.
		if err := s.view.TruncateDocument(ctx, len(accLines)); err != nil {
			return fmt.Errorf("truncating %s: %w", s.relPath, err)
		}
		if strings.HasSuffix(s.originalContent, "\n") && !strings.HasSuffix(s.newContent, "\n") {
			s.newContent += "\n"
		}
	}
	return nil
}

// Reset clears all mutable session state, releases the surface, and removes
// any persisted pending snapshot. Idempotent; the terminal step of both the
// save and revert paths.
func (s *Session) Reset(ctx context.Context) error {
	s.id = ""
	s.relPath = ""
	s.absPath = ""
	s.editType = ""
	s.encoding = ""
	s.originalContent = ""
	s.streamedLines = nil
	s.newContent = ""
	s.createdDirs = nil
	s.documentWasOpen = false
	s.preDiagnostics = nil
	s.startedAt = time.Time{}
	s.active = false

	if s.monitor != nil {
		s.monitor.Stop()
		s.monitor = nil
	}

	err := s.view.ResetDiffView(ctx)
	if s.store != nil {
		if derr := s.store.Delete(); derr != nil && err == nil {
			err = derr
		}
	}
	return err
}

// Active reports whether the session is between Open and Reset.
func (s *Session) Active() bool { return s.active }

// ID returns the session's identifier, empty when inactive.
func (s *Session) ID() string { return s.id }

// RelPath returns the path the session was opened with.
func (s *Session) RelPath() string { return s.relPath }

// Type returns the session's edit type.
func (s *Session) Type() EditType { return s.editType }

// StreamedLineCount returns how many complete lines have been committed to
// the surface so far.
func (s *Session) StreamedLineCount() int { return len(s.streamedLines) }

// DocumentText returns the current surface content, ErrNoSurface when the
// surface is not open.
func (s *Session) DocumentText(ctx context.Context) (string, error) {
	return s.view.DocumentText(ctx)
}

// Snapshot captures the session state needed for cross-process revert.
func (s *Session) Snapshot() *Snapshot {
	return &Snapshot{
		ID:              s.id,
		RelPath:         s.relPath,
		AbsPath:         s.absPath,
		WorkDir:         s.workDir,
		EditType:        s.editType,
		Encoding:        s.encoding,
		OriginalContent: s.originalContent,
		CreatedDirs:     append([]string(nil), s.createdDirs...),
		DocumentWasOpen: s.documentWasOpen,
		StartedAt:       s.startedAt,
	}
}
