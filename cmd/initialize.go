package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"roster/internal/config"
)

// starterRoster is the scaffolded team file; ids and models are examples.
const starterRoster = `# Team members available for @-mentions.
members:
  - id: dev
    name: Dev
    model: sonnet
  - id: reviewer
    name: Reviewer
    nickname: rev
    model: opus
    system_prompt: You review code changes for correctness and style.
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a .roster directory with config and team files",
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	basePath, err := os.Getwd()
	if err != nil {
		return err
	}

	configPath := filepath.Join(basePath, ".roster", "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s already exists, skipping\n", configPath)
	} else {
		if err := config.WriteDefaultConfig(configPath); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", configPath)
	}

	rosterPath := config.DefaultRosterFile(basePath)
	if _, err := os.Stat(rosterPath); err == nil {
		fmt.Fprintf(cmd.OutOrStdout(), "%s already exists, skipping\n", rosterPath)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(rosterPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(rosterPath, []byte(starterRoster), 0o644); err != nil {
		return fmt.Errorf("writing roster: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", rosterPath)
	return nil
}
