package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/malonzhao/cline/internal/diffview"
	"github.com/malonzhao/cline/internal/editsession"
)

var revertCmd = &cobra.Command{
	Use:   "revert",
	Short: "Undo the pending edit session left by another process",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		store, err := editsession.NewStore()
		if err != nil {
			return err
		}
		snap, err := store.Load()
		if err != nil {
			if errors.Is(err, editsession.ErrNoPending) {
				return fmt.Errorf("no pending edit session")
			}
			return err
		}

		s := editsession.Resume(snap, diffview.NewBufferProvider(nil),
			editsession.WithStore(store))
		if err := s.RevertChanges(ctx); err != nil {
			return err
		}

		cmd.Printf("Reverted %s.\n", snap.RelPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(revertCmd)
}
