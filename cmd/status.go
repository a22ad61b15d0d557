package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/malonzhao/cline/internal/editsession"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the pending edit session, if any",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := editsession.NewStore()
		if err != nil {
			return err
		}

		snap, err := store.Load()
		if err != nil {
			if errors.Is(err, editsession.ErrNoPending) {
				cmd.Println("no pending edit session")
				return nil
			}
			return err
		}

		cmd.Printf("Path: %s\n", snap.RelPath)
		cmd.Printf("Type: %s\n", snap.EditType)
		cmd.Printf("Started: %s\n", snap.StartedAt.Format(time.RFC3339))
		if len(snap.CreatedDirs) > 0 {
			cmd.Printf("Created directories: %d\n", len(snap.CreatedDirs))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
