package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/malonzhao/cline/internal/patch"
)

var diffCmd = &cobra.Command{
	Use:   "diff <path>",
	Short: "Print the unified diff between a file and stdin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		before, err := os.ReadFile(args[0])
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}

		after, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		diff, err := patch.Pretty(args[0], string(before), string(after))
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
	rootCmd.AddCommand(diffCmd)
}
