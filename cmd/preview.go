package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/malonzhao/cline/internal/patch"
)

var previewCmd = &cobra.Command{
	Use:   "preview <path>",
	Short: "Stream stdin into a file, show the diff, then revert",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		workDir, err := os.Getwd()
		if err != nil {
			return err
		}

		s, _, _, err := newEditSession(workDir, GetConfig())
		if err != nil {
			return err
		}

		if err := s.Open(ctx, args[0]); err != nil {
			return err
		}
		// Whatever happens past this point, the file must end up untouched.
		defer func() {
			if rerr := s.RevertChanges(ctx); rerr != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: revert failed: %v\n", rerr)
			}
		}()

		if err := streamInto(ctx, s, cmd.InOrStdin(), 4096); err != nil {
			return err
		}

		snap := s.Snapshot()
		updated, err := s.DocumentText(ctx)
		if err != nil {
			return err
		}
		diff, err := patch.Pretty(snap.RelPath, snap.OriginalContent, updated)
		if err != nil {
			return err
		}
		if diff == "" {
			cmd.Println("No changes.")
			return nil
		}
		cmd.Print(diff)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
}
