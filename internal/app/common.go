package app

import (
	"fmt"

	"github.com/blackwell-systems/updatewatch/internal/config"
	"github.com/blackwell-systems/updatewatch/internal/notify"
	"github.com/blackwell-systems/updatewatch/internal/provider"
	"github.com/blackwell-systems/updatewatch/internal/store"
)

// openStore loads the config, opens the database and ensures the schema
// exists. The caller must Close the store.
func openStore() (*store.Store, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	dbPath, err := getDBPath(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get database path: %w", err)
	}

	st, err := store.New(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := st.CreateSchema(); err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to create database schema: %w", err)
	}

	return st, cfg, nil
}

// newGitHubProvider builds the release provider, authenticated when a token
// is configured.
func newGitHubProvider(cfg *config.Config) *provider.GitHub {
	if token := cfg.GitHubToken(); token != "" {
		return provider.NewGitHub(provider.WithToken(token))
	}
	return provider.NewGitHub()
}

// newNotifier builds the ntfy transport against the configured server.
func newNotifier(cfg *config.Config) *notify.Ntfy {
	return notify.NewNtfy(notify.WithServer(cfg.NtfyServer()))
}

// resolveTopic returns the flag value when set, otherwise the configured
// topic. An empty result is an error for commands that send notifications.
func resolveTopic(flagValue string, cfg *config.Config) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if topic := cfg.NtfyTopic(); topic != "" {
		return topic, nil
	}
	return "", fmt.Errorf("no ntfy topic configured: pass --topic or set %s in the config file", config.KeyNtfyTopic)
}
