package editsession

import (
	"context"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/malonzhao/cline/internal/diagnostics"
	"github.com/malonzhao/cline/internal/patch"
)

// SaveResult is the outcome of a three-way save reconciliation.
type SaveResult struct {
	// NewProblemsMessage lists error-severity diagnostics introduced since
	// the session's baseline; empty if none.
	NewProblemsMessage string
	// UserEdits is a patch from the intended content to what a human shaped
	// it into before accepting; empty if the content was accepted as-is.
	UserEdits string
	// AutoFormattingEdits is a patch describing what persisting itself
	// changed (format-on-save); empty if nothing changed.
	AutoFormattingEdits string
	// FinalContent is the normalized post-save content, the baseline for any
	// subsequent edit round.
	FinalContent string
	// Warnings carries non-fatal observations, e.g. external modification of
	// the file during streaming.
	Warnings []string
}

// SaveChanges persists the surface's document and reconciles the intended,
// pre-save, and post-save contents. Called without an open surface or
// streamed content it returns an empty result: there is nothing to save,
// which is not an error.
func (s *Session) SaveChanges(ctx context.Context) (*SaveResult, error) {
	res := &SaveResult{}
	if s.relPath == "" || s.newContent == "" || !s.view.Active() {
		return res, nil
	}

	// The document may already differ from newContent: the human may have
	// edited the surface before accepting.
	preSaveContent, err := s.view.DocumentText(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading document for %s: %w", s.relPath, err)
	}

	if s.view.IsDirty() {
		if s.monitor != nil {
			s.monitor.Mask()
		}
		err := s.view.SaveDocument(ctx)
		if s.monitor != nil {
			s.monitor.Unmask()
		}
		if err != nil {
			return nil, fmt.Errorf("saving %s: %w", s.relPath, err)
		}
	}

	// Persisting may have run a formatter; capture what actually landed.
	postSaveContent, err := s.view.DocumentText(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading document for %s: %w", s.relPath, err)
	}

	if err := s.view.ShowDocument(ctx); err != nil {
		return nil, err
	}
	if err := s.view.CloseDiffView(ctx); err != nil {
		return nil, err
	}

	// Before/after snapshots isolate problems caused by this edit; slow
	// linters simply contribute nothing rather than stale noise.
	if s.diags != nil {
		delta := diagnostics.Delta(s.preDiagnostics, s.diags.Snapshot(), diagnostics.SeverityError)
		res.NewProblemsMessage = diagnostics.Format(delta, s.workDir)
	}

	// Normalize all three snapshots to the terminator style newContent
	// actually uses, so the comparison itself cannot manufacture diff noise
	// from editor-injected trailing newlines.
	eol := "\n"
	if strings.Contains(s.newContent, "\r\n") {
		eol = "\r\n"
	}
	normNew := normalizeEOL(s.newContent, eol)
	normPre := normalizeEOL(preSaveContent, eol)
	normPost := normalizeEOL(postSaveContent, eol)

	if normPre != normNew {
		if p, perr := patch.Pretty(s.relPath, normNew, normPre); perr == nil {
			res.UserEdits = p
		} else {
			res.Warnings = append(res.Warnings, "could not format user-edit patch: "+perr.Error())
		}
	}
	if normPre != normPost {
		if p, perr := patch.Pretty(s.relPath, normPre, normPost); perr == nil {
			res.AutoFormattingEdits = p
		} else {
			res.Warnings = append(res.Warnings, "could not format auto-formatting patch: "+perr.Error())
		}
	}
	res.FinalContent = normPost

	if s.monitor != nil && s.monitor.Changed() {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("%s was modified outside the session while streaming", s.relPath))
	}

	if err := s.Reset(ctx); err != nil {
		return res, err
	}
	return res, nil
}

// ScrollToFirstDiff reveals the first line of the surface that differs from
// the original content. Removed lines do not exist in the current surface,
// so the scroll target is the run's start position in the current sequence.
// No-op without an active surface.
func (s *Session) ScrollToFirstDiff(ctx context.Context) error {
	if !s.view.Active() {
		return nil
	}
	current, err := s.view.DocumentText(ctx)
	if err != nil {
		return err
	}

	matcher := difflib.NewMatcher(
		difflib.SplitLines(s.originalContent),
		difflib.SplitLines(current),
	)
	for _, op := range matcher.GetOpCodes() {
		if op.Tag == 'e' {
			continue
		}
		return s.view.ScrollEditorToLine(ctx, op.J1)
	}
	return nil
}

// normalizeEOL rewrites text to use eol throughout and end with exactly one
// terminator.
func normalizeEOL(text, eol string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimRight(text, " \t\r\n")
	if eol != "\n" {
		text = strings.ReplaceAll(text, "\n", eol)
	}
	return text + eol
}
