package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"roster/internal/config"
	"roster/internal/roster"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List the configured team members",
	RunE:  runAgents,
}

func init() {
	rootCmd.AddCommand(agentsCmd)
}

func runAgents(cmd *cobra.Command, args []string) error {
	basePath := cfg.BasePath
	if basePath == "" {
		var err error
		basePath, err = os.Getwd()
		if err != nil {
			return err
		}
	}

	rosterFile := cfg.RosterFile
	if rosterFile == "" {
		rosterFile = config.DefaultRosterFile(basePath)
	}
	team, err := roster.Load(rosterFile)
	if err != nil {
		return fmt.Errorf("loading roster: %w", err)
	}

	for _, m := range team.Members() {
		line := fmt.Sprintf("%-12s %s", m.ID, m.Name)
		if m.Nickname != "" {
			line += fmt.Sprintf(" (@%s)", m.Nickname)
		}
		if m.Model != "" {
			line += fmt.Sprintf(" [%s]", m.Model)
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}
