package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/malonzhao/cline/internal/config"
)

var setupForce bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Write a default global config file",
	// Bypass the normal PersistentPreRunE so setup works before config exists.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		dir := filepath.Join(home, ".config", "cline")
		path := filepath.Join(dir, "config.json")

		if _, err := os.Stat(path); err == nil && !setupForce {
			cmd.Printf("Config already exists at %s (use --force to overwrite).\n", path)
			return nil
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		data, err := json.MarshalIndent(config.Defaults(), "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		cmd.Printf("Wrote %s.\n", path)
		return nil
	},
}

func init() {
	setupCmd.Flags().BoolVar(&setupForce, "force", false, "overwrite an existing config file")
	rootCmd.AddCommand(setupCmd)
}
