package app

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/updatewatch/internal/store"
)

var (
	addName       string
	addRepository string

	addCmd = &cobra.Command{
		Use:   "add",
		Short: "Add a program to track for updates",
	}

	addGitHubCmd = &cobra.Command{
		Use:   "github",
		Short: "Track a program via its GitHub releases",
		Long: `Track a program whose releases are published on GitHub.

The latest release tag is fetched immediately and recorded as both the
current and the latest version: adding a program never reports the
release that existed at add time as a pending update. If the fetch
fails, the program is not added.`,
		Example: `  updatewatch add github -n alpha_tui -r LMH01/alpha_tui`,
		RunE:    runAddGitHub,
	}
)

func init() {
	addGitHubCmd.Flags().StringVarP(&addName, "name", "n", "", "display name for the program")
	addGitHubCmd.Flags().StringVarP(&addRepository, "repository", "r", "", "GitHub repository (owner/repo) releases are taken from")
	addGitHubCmd.MarkFlagRequired("name")
	addGitHubCmd.MarkFlagRequired("repository")

	addCmd.AddCommand(addGitHubCmd)
	RootCmd.AddCommand(addCmd)
}

func runAddGitHub(cmd *cobra.Command, args []string) error {
	st, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	// Reject duplicates before spending a provider request.
	if _, err := st.GetProgram(addName); err == nil {
		return fmt.Errorf("program %s already exists", addName)
	}

	// Add is atomic with the seed fetch: nothing is persisted when the
	// provider call fails.
	gh := newGitHubProvider(cfg)
	latest, err := gh.LatestVersion(context.Background(), addRepository)
	if err != nil {
		return fmt.Errorf("failed to fetch latest release for %s: %w", addRepository, err)
	}

	now := time.Now().UTC()
	program := &store.Program{
		Name:                    addName,
		Provider:                store.ProviderGitHub,
		Repository:              addRepository,
		CurrentVersion:          latest,
		CurrentVersionUpdatedAt: now,
		LatestVersion:           latest,
		LatestVersionUpdatedAt:  now,
	}
	if err := st.InsertProgram(program); err != nil {
		return err
	}

	fmt.Printf("Added %s (%s) at version %s\n", addName, addRepository, latest)
	return nil
}
