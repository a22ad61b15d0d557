package diffview

import (
	"context"
	"errors"
	"sync"

	"github.com/malonzhao/cline/internal/fsops"
)

// ErrNoSurface is returned when a document operation runs without an open
// surface.
var ErrNoSurface = errors.New("no active diff surface")

// SaveHook mimics a host's format-on-save step: it receives the document
// content about to be persisted and returns the content to persist instead.
type SaveHook func(content string) string

// BufferProvider is a headless Provider backed by an in-memory Buffer and
// the real filesystem. It is the surface used for non-interactive runs and
// for tests.
type BufferProvider struct {
	mu sync.Mutex

	buffer  *Buffer
	absPath string
	open    bool
	saved   string // content as last persisted

	saveHook   SaveHook
	scrollLine int
	animations [][2]int // recorded (start, end) pairs
}

// NewBufferProvider returns a headless provider. hook may be nil.
func NewBufferProvider(hook SaveHook) *BufferProvider {
	return &BufferProvider{saveHook: hook}
}

func (p *BufferProvider) OpenDiffEditor(_ context.Context, absPath, originalContent string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buffer = NewBuffer(originalContent)
	p.absPath = absPath
	p.saved = originalContent
	p.open = true
	p.scrollLine = 0
	p.animations = nil
	return nil
}

func (p *BufferProvider) ScrollEditorToLine(_ context.Context, line int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scrollLine = line
	return nil
}

func (p *BufferProvider) ScrollAnimation(_ context.Context, startLine, endLine int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.animations = append(p.animations, [2]int{startLine, endLine})
	p.scrollLine = endLine
	return nil
}

func (p *BufferProvider) TruncateDocument(_ context.Context, line int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open {
		return ErrNoSurface
	}
	p.buffer.Truncate(line)
	return nil
}

func (p *BufferProvider) ReplaceText(_ context.Context, content string, rng LineRange, _ int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open {
		return ErrNoSurface
	}
	p.buffer.ReplaceLines(content, rng.Start, rng.End)
	return nil
}

func (p *BufferProvider) ShowDocument(context.Context) error { return nil }

func (p *BufferProvider) CloseDiffView(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = false
	return nil
}

func (p *BufferProvider) ResetDiffView(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buffer = nil
	p.absPath = ""
	p.saved = ""
	p.open = false
	return nil
}

func (p *BufferProvider) DocumentText(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.buffer == nil {
		return "", ErrNoSurface
	}
	return p.buffer.Text(), nil
}

// SaveDocument runs the save hook, applies any content it produced back to
// the document, and persists to disk.
func (p *BufferProvider) SaveDocument(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.buffer == nil {
		return ErrNoSurface
	}

	content := p.buffer.Text()
	if p.saveHook != nil {
		if formatted := p.saveHook(content); formatted != content {
			p.buffer.SetText(formatted)
			content = formatted
		}
	}
	if err := fsops.WriteFile(p.absPath, []byte(content)); err != nil {
		return err
	}
	p.saved = content
	return nil
}

func (p *BufferProvider) IsDirty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buffer != nil && p.buffer.Text() != p.saved
}

// IsDocumentOpen always reports false: a headless surface has no host editor
// that could have the file open already.
func (p *BufferProvider) IsDocumentOpen(string) bool { return false }

func (p *BufferProvider) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// ScrollLine returns the last scroll target, for tests and status surfaces.
func (p *BufferProvider) ScrollLine() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scrollLine
}

// Animations returns the recorded (start, end) scroll animations.
func (p *BufferProvider) Animations() [][2]int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][2]int(nil), p.animations...)
}
