// Package report renders the outcome of an edit session for human or
// machine consumption.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/malonzhao/cline/internal/editsession"
)

// Report is the renderable outcome of a completed edit session.
type Report struct {
	Path      string                `json:"path"`
	EditType  editsession.EditType  `json:"edit_type"`
	SavedAt   time.Time             `json:"saved_at"`
	Result    editsession.SaveResult `json:"result"`
}

// Renderer serializes a Report to bytes.
type Renderer interface {
	Render(rep *Report) ([]byte, error)
}

// NewRenderer returns the Renderer for a format name ("markdown" or "json").
func NewRenderer(format string) (Renderer, error) {
	switch format {
	case "markdown", "":
		return &MarkdownRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want markdown or json)", format)
	}
}

// JSONRenderer renders a Report as indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(rep *Report) ([]byte, error) {
	return json.MarshalIndent(rep, "", "  ")
}

// MarkdownRenderer renders a Report as human-readable Markdown.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(rep *Report) ([]byte, error) {
	var sb strings.Builder

	verb := "Edited"
	if rep.EditType == editsession.EditTypeCreate {
		verb = "Created"
	}
	fmt.Fprintf(&sb, "# %s %s — %s\n\n",
		verb,
		rep.Path,
		rep.SavedAt.Format("2006-01-02 15:04:05 MST"),
	)

	// ## User Edits
	sb.WriteString("## User Edits\n\n")
	if rep.Result.UserEdits == "" {
		sb.WriteString("_Saved without user edits._\n")
	} else {
		writeDiffBlock(&sb, rep.Result.UserEdits)
	}
	sb.WriteString("\n")

	// ## Auto-Formatting
	sb.WriteString("## Auto-Formatting\n\n")
	if rep.Result.AutoFormattingEdits == "" {
		sb.WriteString("_No formatter changes._\n")
	} else {
		writeDiffBlock(&sb, rep.Result.AutoFormattingEdits)
	}
	sb.WriteString("\n")

	// ## New Problems
	sb.WriteString("## New Problems\n\n")
	if rep.Result.NewProblemsMessage == "" {
		sb.WriteString("_No new problems._\n")
	} else {
		sb.WriteString(rep.Result.NewProblemsMessage)
		if !strings.HasSuffix(rep.Result.NewProblemsMessage, "\n") {
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")

	if len(rep.Result.Warnings) > 0 {
		sb.WriteString("## Warnings\n\n")
		for _, w := range rep.Result.Warnings {
			fmt.Fprintf(&sb, "- %s\n", w)
		}
		sb.WriteString("\n")
	}

	return []byte(sb.String()), nil
}

func writeDiffBlock(sb *strings.Builder, diff string) {
	sb.WriteString("```diff\n")
	sb.WriteString(diff)
	if !strings.HasSuffix(diff, "\n") {
		sb.WriteString("\n")
	}
	sb.WriteString("```\n")
}
