package diffview_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/malonzhao/cline/internal/diffview"
	"github.com/malonzhao/cline/internal/fsops"
)

func TestBufferReplaceLines(t *testing.T) {
	tests := []struct {
		name       string
		initial    string
		content    string
		start, end int
		want       string
	}{
		{
			name:    "first stream into empty document",
			initial: "",
			content: "line1\nline2\n",
			start:   0, end: 2,
			want: "line1\nline2\n",
		},
		{
			name:    "grow prefix replace",
			initial: "line1\nline2\n",
			content: "line1\nline2\nline3\n",
			start:   0, end: 3,
			want: "line1\nline2\nline3\n",
		},
		{
			name:    "prefix replace keeps remainder",
			initial: "line1\nline2\nold3\nold4",
			content: "line1\nline2\nline3\n",
			start:   0, end: 3,
			want: "line1\nline2\nline3\nold4",
		},
		{
			name:    "full range replace restores verbatim",
			initial: "a\nb\nc\n",
			content: "original content",
			start:   0, end: -1,
			want: "original content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := diffview.NewBuffer(tt.initial)
			b.ReplaceLines(tt.content, tt.start, tt.end)
			if got := b.Text(); got != tt.want {
				t.Errorf("Text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBufferTruncate(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		n       int
		want    string
	}{
		{"removes leftover lines", "l1\nl2\nl3\nextra1\nextra2", 3, "l1\nl2\nl3\n"},
		{"noop when already short", "l1\nl2\n", 5, "l1\nl2\n"},
		{"exact trailing newline kept", "l1\nl2\nl3\n", 3, "l1\nl2\nl3\n"},
		{"truncate to empty", "junk", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := diffview.NewBuffer(tt.initial)
			b.Truncate(tt.n)
			if got := b.Text(); got != tt.want {
				t.Errorf("Text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBufferProviderSaveAndDirty(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "file.txt")
	ctx := context.Background()

	p := diffview.NewBufferProvider(nil)
	if err := p.OpenDiffEditor(ctx, path, "original\n"); err != nil {
		t.Fatal(err)
	}
	if p.IsDirty() {
		t.Error("freshly opened surface should not be dirty")
	}

	if err := p.ReplaceText(ctx, "changed\n", diffview.LineRange{Start: 0, End: 1}, 0); err != nil {
		t.Fatal(err)
	}
	if !p.IsDirty() {
		t.Error("surface should be dirty after ReplaceText")
	}

	if err := p.SaveDocument(ctx); err != nil {
		t.Fatal(err)
	}
	if p.IsDirty() {
		t.Error("surface should be clean after save")
	}
	data, err := fsops.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "changed\n" {
		t.Errorf("persisted = %q, want %q", data, "changed\n")
	}
}

func TestBufferProviderSaveHook(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "file.txt")
	ctx := context.Background()

	// Hook reindents: the document must reflect the formatted content after save.
	hook := func(content string) string { return "\t" + content }
	p := diffview.NewBufferProvider(hook)
	if err := p.OpenDiffEditor(ctx, path, ""); err != nil {
		t.Fatal(err)
	}
	if err := p.ReplaceText(ctx, "x := 1\n", diffview.LineRange{Start: 0, End: 1}, 0); err != nil {
		t.Fatal(err)
	}
	if err := p.SaveDocument(ctx); err != nil {
		t.Fatal(err)
	}

	text, err := p.DocumentText(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if text != "\tx := 1\n" {
		t.Errorf("document after formatted save = %q", text)
	}
}

func TestBufferProviderInactiveOperations(t *testing.T) {
	p := diffview.NewBufferProvider(nil)
	ctx := context.Background()

	if _, err := p.DocumentText(ctx); err == nil {
		t.Error("DocumentText without surface: want error")
	}
	if err := p.ReplaceText(ctx, "x", diffview.FullRange, 0); err == nil {
		t.Error("ReplaceText without surface: want error")
	}
	if err := p.ResetDiffView(ctx); err != nil {
		t.Errorf("ResetDiffView should be idempotent: %v", err)
	}
}
