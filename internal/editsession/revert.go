package editsession

import (
	"context"
	"fmt"

	"github.com/malonzhao/cline/internal/diffview"
	"github.com/malonzhao/cline/internal/fsops"
)

// RevertChanges undoes the session. A Create session deletes the file and
// removes every directory the session created, deepest first, exactly
// mirroring Open. A Modify session restores the original content verbatim.
// Failures to delete are fatal and propagate: a silent partial revert would
// hide filesystem state from the caller.
func (s *Session) RevertChanges(ctx context.Context) error {
	if s.editType == "" {
		// Nothing was opened; reverting is a no-op.
		return nil
	}

	switch s.editType {
	case EditTypeCreate:
		if s.view.Active() {
			// Flush any unsaved surface state first so nothing leaks, then
			// tear the surface down before removing the file under it.
			if s.view.IsDirty() {
				if err := s.saveMasked(ctx); err != nil {
					return err
				}
			}
			if err := s.view.CloseDiffView(ctx); err != nil {
				return err
			}
		}
		if err := fsops.Delete(s.absPath); err != nil {
			return err
		}
		for i := len(s.createdDirs) - 1; i >= 0; i-- {
			if err := fsops.RemoveDir(s.createdDirs[i]); err != nil {
				return err
			}
		}

	case EditTypeModify:
		if s.view.Active() {
			if err := s.view.ReplaceText(ctx, s.originalContent, diffview.FullRange, 0); err != nil {
				return fmt.Errorf("restoring %s: %w", s.relPath, err)
			}
			if err := s.saveMasked(ctx); err != nil {
				return err
			}
			if s.documentWasOpen {
				if err := s.view.ShowDocument(ctx); err != nil {
					return err
				}
			}
			if err := s.view.CloseDiffView(ctx); err != nil {
				return err
			}
		} else {
			// Cross-process revert: no surface to drive, restore on disk.
			if err := fsops.WriteFile(s.absPath, []byte(s.originalContent)); err != nil {
				return err
			}
		}
	}

	return s.Reset(ctx)
}

// saveMasked persists the surface document without the external-change
// monitor counting the session's own write.
func (s *Session) saveMasked(ctx context.Context) error {
	if s.monitor != nil {
		s.monitor.Mask()
		defer s.monitor.Unmask()
	}
	if err := s.view.SaveDocument(ctx); err != nil {
		return fmt.Errorf("saving %s: %w", s.relPath, err)
	}
	return nil
}
