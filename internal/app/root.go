package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/updatewatch/internal/config"
)

var (
	dbPath     string
	configPath string

	// RootCmd is the root command for updatewatch
	RootCmd = &cobra.Command{
		Use:   "updatewatch",
		Short: "Track the latest releases of software you care about",
		Long: `updatewatch keeps a small database of programs and the GitHub release
each one is at, checks for newer releases, and sends push notifications
via ntfy.sh when something you track publishes an update.

Quick Start:
  1. updatewatch add github -n alpha_tui -r LMH01/alpha_tui
  2. updatewatch check
  3. updatewatch watch --topic my-updates   # Keep this running!
  4. After updating a program: updatewatch updated alpha_tui

Notification behavior:
  A plain 'check' shows results on the terminal and suppresses future
  push notifications for exactly the versions it displayed - you have
  seen them. 'check --notify' and the watch loop push each update once
  per version to the configured ntfy topic.

Examples:
  # List tracked programs
  updatewatch list

  # Check once, with push notifications
  updatewatch check --notify --topic my-updates

  # Review past update checks
  updatewatch checks

  # Prune a program's update history to the 10 most recent entries
  updatewatch history alpha_tui --prune 10`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: ~/.updatewatch/updatewatch.db)")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: ~/.config/updatewatch/config.toml)")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// loadConfig reads the optional config file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// getDBPath returns the database path: the --db flag, then the config file,
// then the default under the user's home directory.
func getDBPath(cfg *config.Config) (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	if p := cfg.DatabasePath(); p != "" {
		return p, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	// Create .updatewatch directory if it doesn't exist
	dir := filepath.Join(home, ".updatewatch")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create updatewatch directory: %w", err)
	}

	return filepath.Join(dir, "updatewatch.db"), nil
}
