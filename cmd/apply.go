package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/malonzhao/cline/internal/config"
	"github.com/malonzhao/cline/internal/diagnostics"
	"github.com/malonzhao/cline/internal/diffview"
	"github.com/malonzhao/cline/internal/editsession"
	"github.com/malonzhao/cline/internal/patch"
	"github.com/malonzhao/cline/internal/report"
	"github.com/malonzhao/cline/internal/tui"
)

var (
	applyChunkSize int
	applyFormat    string
	applyPlain     bool
)

var applyCmd = &cobra.Command{
	Use:   "apply <path>",
	Short: "Stream stdin into a file through an edit session and save it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cfg := GetConfig()

		workDir, err := os.Getwd()
		if err != nil {
			return err
		}

		s, diagStore, lint, err := newEditSession(workDir, cfg)
		if err != nil {
			return err
		}

		// Baseline diagnostics before the file is touched.
		if lint != nil {
			if err := lint.Refresh(ctx, diagStore); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: lint baseline failed: %v\n", err)
			}
		}

		if err := s.Open(ctx, args[0]); err != nil {
			return err
		}

		if err := streamInto(ctx, s, cmd.InOrStdin(), applyChunkSize); err != nil {
			// A failed stream must not leave a half-written session behind.
			if rerr := s.RevertChanges(ctx); rerr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: revert failed: %v\n", rerr)
			}
			return err
		}

		// Interactive review before accepting, unless forced headless.
		if !applyPlain && term.IsTerminal(os.Stdout.Fd()) {
			accepted, err := reviewInTUI(ctx, s)
			if err != nil {
				return err
			}
			if !accepted {
				if err := s.RevertChanges(ctx); err != nil {
					return err
				}
				cmd.Println("Edit discarded.")
				return nil
			}
		}

		if err := s.ScrollToFirstDiff(ctx); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
		}

		// Fresh diagnostics after the edit, so save sees the delta.
		if lint != nil {
			if err := lint.Refresh(ctx, diagStore); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: lint refresh failed: %v\n", err)
			}
		}

		editType := s.Type()
		res, err := s.SaveChanges(ctx)
		if err != nil {
			if rerr := s.RevertChanges(ctx); rerr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: revert failed: %v\n", rerr)
			}
			return err
		}

		format := applyFormat
		if format == "" {
			format = cfg.DefaultFormat
		}
		renderer, err := report.NewRenderer(format)
		if err != nil {
			return err
		}
		out, err := renderer.Render(&report.Report{
			Path:     args[0],
			EditType: editType,
			SavedAt:  time.Now(),
			Result:   *res,
		})
		if err != nil {
			return fmt.Errorf("render report: %w", err)
		}
		cmd.Print(string(out))
		return nil
	},
}

// newEditSession builds a session wired to the merged configuration, plus
// the diagnostics store and lint source when lint_command is configured.
func newEditSession(workDir string, cfg config.Config) (*editsession.Session, *diagnostics.Store, *diagnostics.CommandSource, error) {
	store, err := editsession.NewStore()
	if err != nil {
		return nil, nil, nil, err
	}

	opts := []editsession.Option{
		editsession.WithStore(store),
		editsession.WithScrollThreshold(cfg.ScrollThreshold),
	}
	if cfg.WatchExternal != nil {
		opts = append(opts, editsession.WithExternalWatch(*cfg.WatchExternal))
	}

	var diagStore *diagnostics.Store
	var lint *diagnostics.CommandSource
	if cfg.LintCommand != "" {
		diagStore = diagnostics.NewStore()
		lint = &diagnostics.CommandSource{
			WorkDir: workDir,
			Command: strings.Fields(cfg.LintCommand),
		}
		opts = append(opts, editsession.WithDiagnostics(diagStore))
	}

	view := diffview.NewBufferProvider(nil)
	return editsession.New(workDir, view, opts...), diagStore, lint, nil
}

// streamInto feeds the reader into the session in chunkSize pieces, growing
// the accumulated content each time, and issues the final update at EOF.
func streamInto(ctx context.Context, s *editsession.Session, r io.Reader, chunkSize int) error {
	if chunkSize <= 0 {
		chunkSize = 4096
	}
	var acc strings.Builder
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			acc.Write(buf[:n])
			if uerr := s.Update(ctx, acc.String(), false, nil); uerr != nil {
				return uerr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
	}
	return s.Update(ctx, acc.String(), true, nil)
}

// reviewInTUI shows the pending edit in the viewer and reports acceptance.
func reviewInTUI(ctx context.Context, s *editsession.Session) (bool, error) {
	snap := s.Snapshot()
	updated, err := s.DocumentText(ctx)
	if err != nil {
		return false, err
	}
	diff, err := patch.Pretty(snap.RelPath, snap.OriginalContent, updated)
	if err != nil {
		return false, err
	}
	return tui.Run(&tui.Review{
		Path:     snap.RelPath,
		Original: snap.OriginalContent,
		Updated:  updated,
		Diff:     diff,
	})
}

func init() {
	applyCmd.Flags().IntVar(&applyChunkSize, "chunk-size", 4096, "bytes read from stdin per streaming update")
	applyCmd.Flags().StringVar(&applyFormat, "format", "", "Report format: markdown or json (overrides config)")
	applyCmd.Flags().BoolVar(&applyPlain, "plain", false, "skip the interactive review even on a terminal")
	rootCmd.AddCommand(applyCmd)
}
