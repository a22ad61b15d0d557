package editsession_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/malonzhao/cline/internal/diffview"
	"github.com/malonzhao/cline/internal/editsession"
)

// newSession returns a session over a temp dir with a headless surface.
func newSession(t *testing.T, hook diffview.SaveHook, opts ...editsession.Option) (*editsession.Session, *diffview.BufferProvider, string) {
	t.Helper()
	tmp := t.TempDir()
	view := diffview.NewBufferProvider(hook)
	return editsession.New(tmp, view, opts...), view, tmp
}

func TestOpenCreateRecordsDirectories(t *testing.T) {
	s, view, tmp := newSession(t, nil)
	ctx := context.Background()

	if err := s.Open(ctx, filepath.Join("notes", "todo.txt")); err != nil {
		t.Fatalf("Open: %v", err)
	}

	if s.Type() != editsession.EditTypeCreate {
		t.Errorf("Type = %v, want create", s.Type())
	}
	if !view.Active() {
		t.Error("surface not active after Open")
	}
	text, err := view.DocumentText(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if text != "" {
		t.Errorf("original content = %q, want empty for create", text)
	}

	// The notes/ ancestor did not exist; it must be recorded and created,
	// and an empty file written so the surface has something to open.
	if _, err := os.Stat(filepath.Join(tmp, "notes")); err != nil {
		t.Errorf("notes/ not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmp, "notes", "todo.txt")); err != nil {
		t.Errorf("empty file not written: %v", err)
	}
	snap := s.Snapshot()
	if len(snap.CreatedDirs) != 1 || snap.CreatedDirs[0] != filepath.Join(tmp, "notes") {
		t.Errorf("CreatedDirs = %v, want [notes]", snap.CreatedDirs)
	}
}

func TestOpenModifyReadsOriginal(t *testing.T) {
	s, view, tmp := newSession(t, nil)
	ctx := context.Background()

	path := filepath.Join(tmp, "main.go")
	if err := os.WriteFile(path, []byte("package main\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := s.Open(ctx, "main.go"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Type() != editsession.EditTypeModify {
		t.Errorf("Type = %v, want modify", s.Type())
	}
	text, _ := view.DocumentText(ctx)
	if text != "package main\n" {
		t.Errorf("surface seeded with %q", text)
	}
	if len(s.Snapshot().CreatedDirs) != 0 {
		t.Error("modify session must not record created directories")
	}
}

func TestOpenWhileActiveFails(t *testing.T) {
	s, _, _ := newSession(t, nil)
	ctx := context.Background()

	if err := s.Open(ctx, "a.txt"); err != nil {
		t.Fatal(err)
	}
	err := s.Open(ctx, "b.txt")
	if !errors.Is(err, editsession.ErrSessionActive) {
		t.Errorf("second Open error = %v, want ErrSessionActive", err)
	}
}

func TestUpdateBeforeOpenFails(t *testing.T) {
	s, _, _ := newSession(t, nil)
	err := s.Update(context.Background(), "content\n", false, nil)
	if !errors.Is(err, editsession.ErrNotOpen) {
		t.Errorf("Update error = %v, want ErrNotOpen", err)
	}
}

func TestUpdateWithholdsPartialLine(t *testing.T) {
	s, view, _ := newSession(t, nil)
	ctx := context.Background()
	if err := s.Open(ctx, "todo.txt"); err != nil {
		t.Fatal(err)
	}

	if err := s.Update(ctx, "line1\nline2\nline3", false, nil); err != nil {
		t.Fatalf("Update: %v", err)
	}

	text, _ := view.DocumentText(ctx)
	if text != "line1\nline2\n" {
		t.Errorf("surface = %q, want the two complete lines only", text)
	}
	if s.StreamedLineCount() != 2 {
		t.Errorf("StreamedLineCount = %d, want 2", s.StreamedLineCount())
	}
}

func TestUpdateFinalTruncates(t *testing.T) {
	s, view, _ := newSession(t, nil)
	ctx := context.Background()
	if err := s.Open(ctx, "todo.txt"); err != nil {
		t.Fatal(err)
	}

	if err := s.Update(ctx, "line1\nline2\nline3", false, nil); err != nil {
		t.Fatal(err)
	}
	if err := s.Update(ctx, "line1\nline2\nline3\n", true, nil); err != nil {
		t.Fatal(err)
	}

	text, _ := view.DocumentText(ctx)
	if text != "line1\nline2\nline3\n" {
		t.Errorf("surface = %q, want 3 lines plus terminator", text)
	}
	if s.StreamedLineCount() != 3 {
		t.Errorf("StreamedLineCount = %d, want 3", s.StreamedLineCount())
	}
}

func TestUpdateFinalShrunkenStreamTruncates(t *testing.T) {
	s, view, _ := newSession(t, nil)
	ctx := context.Background()
	if err := s.Open(ctx, "todo.txt"); err != nil {
		t.Fatal(err)
	}

	if err := s.Update(ctx, "l1\nl2\nl3\nl4\nl5\nl6\n", false, nil); err != nil {
		t.Fatal(err)
	}
	// The stream shrank; the final update must remove the leftover tail.
	if err := s.Update(ctx, "l1\nl2\n", true, nil); err != nil {
		t.Fatal(err)
	}

	text, _ := view.DocumentText(ctx)
	if text != "l1\nl2\n" {
		t.Errorf("surface = %q, want truncated to 2 lines", text)
	}
}

func TestUpdateEmptyNonFinalIsNoop(t *testing.T) {
	s, view, _ := newSession(t, nil)
	ctx := context.Background()
	if err := s.Open(ctx, "todo.txt"); err != nil {
		t.Fatal(err)
	}

	if err := s.Update(ctx, "", false, nil); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if s.StreamedLineCount() != 0 {
		t.Errorf("StreamedLineCount = %d, want 0", s.StreamedLineCount())
	}
	text, _ := view.DocumentText(ctx)
	if text != "" {
		t.Errorf("surface = %q, want untouched", text)
	}
}

func TestUpdatePreservesOriginalTrailingNewline(t *testing.T) {
	s, view, tmp := newSession(t, nil)
	ctx := context.Background()
	if err := os.WriteFile(filepath.Join(tmp, "a.txt"), []byte("old\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Open(ctx, "a.txt"); err != nil {
		t.Fatal(err)
	}

	// Final content arrives without a trailing terminator although the
	// original had one; save reconciliation must not see that as a change.
	if err := s.Update(ctx, "new line", true, nil); err != nil {
		t.Fatal(err)
	}
	res, err := s.SaveChanges(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.UserEdits != "" {
		t.Errorf("UserEdits = %q, want none from terminator drift", res.UserEdits)
	}
	_ = view
}

func TestUpdateScrollHeuristic(t *testing.T) {
	ctx := context.Background()

	t.Run("small update jumps", func(t *testing.T) {
		s, view, _ := newSession(t, nil)
		if err := s.Open(ctx, "x.txt"); err != nil {
			t.Fatal(err)
		}
		if err := s.Update(ctx, "a\nb\nc\n", false, nil); err != nil {
			t.Fatal(err)
		}
		if got := view.ScrollLine(); got != 2 {
			t.Errorf("scroll line = %d, want 2", got)
		}
		if len(view.Animations()) != 0 {
			t.Errorf("animations = %v, want none for a small update", view.Animations())
		}
	})

	t.Run("large update animates", func(t *testing.T) {
		s, view, _ := newSession(t, nil)
		if err := s.Open(ctx, "x.txt"); err != nil {
			t.Fatal(err)
		}
		if err := s.Update(ctx, strings.Repeat("line\n", 10), false, nil); err != nil {
			t.Fatal(err)
		}
		anims := view.Animations()
		if len(anims) != 1 || anims[0] != [2]int{0, 9} {
			t.Errorf("animations = %v, want [[0 9]]", anims)
		}
		if got := view.ScrollLine(); got != 9 {
			t.Errorf("scroll line = %d, want 9", got)
		}
	})

	t.Run("explicit change location wins", func(t *testing.T) {
		s, view, _ := newSession(t, nil)
		if err := s.Open(ctx, "x.txt"); err != nil {
			t.Fatal(err)
		}
		loc := &diffview.LineRange{Start: 4, End: 6}
		if err := s.Update(ctx, strings.Repeat("line\n", 10), false, loc); err != nil {
			t.Fatal(err)
		}
		if got := view.ScrollLine(); got != 4 {
			t.Errorf("scroll line = %d, want the explicit location 4", got)
		}
		if len(view.Animations()) != 0 {
			t.Error("explicit location must bypass the animation heuristic")
		}
	})
}

func TestUpdateStripsByteOrderMark(t *testing.T) {
	s, view, _ := newSession(t, nil)
	ctx := context.Background()
	if err := s.Open(ctx, "bom.txt"); err != nil {
		t.Fatal(err)
	}

	// Property: feeding content with or without a leading mark, repeatedly,
	// never yields a mark in the surface.
	rapid.Check(t, func(rt *rapid.T) {
		body := rapid.StringMatching(`[a-z \n]{0,40}`).Draw(rt, "body")
		withBOM := rapid.Bool().Draw(rt, "with_bom")
		content := body + "\n"
		if withBOM {
			content = "\ufeff" + content
		}
		if err := s.Update(ctx, content, false, nil); err != nil {
			rt.Fatalf("Update: %v", err)
		}
		text, err := view.DocumentText(ctx)
		if err != nil {
			rt.Fatalf("DocumentText: %v", err)
		}
		if strings.Contains(text, "\ufeff") {
			rt.Errorf("byte-order mark leaked into surface: %q", text)
		}
	})
}

func TestResetIsIdempotent(t *testing.T) {
	s, view, _ := newSession(t, nil)
	ctx := context.Background()
	if err := s.Open(ctx, "a.txt"); err != nil {
		t.Fatal(err)
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if s.Active() {
		t.Error("session still active after Reset")
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("second Reset: %v", err)
	}
	if view.Active() {
		t.Error("surface still active after Reset")
	}
}
