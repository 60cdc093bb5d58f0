// Package config provides configuration loading for updatewatch.
//
// Precedence: defaults < config file < environment variables < command-line
// flags (flags are applied by the command layer). The config file is optional;
// a missing file is not an error.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Configuration keys. Environment variables use the UW_ prefix with dots and
// dashes replaced by underscores, e.g. UW_NTFY_TOPIC, UW_GITHUB_TOKEN.
const (
	KeyDatabasePath  = "database.path"
	KeyNtfyTopic     = "ntfy.topic"
	KeyNtfyServer    = "ntfy.server"
	KeyCheckInterval = "check.interval-seconds"
	KeyGitHubToken   = "github.token"

	envPrefix = "UW"
)

const (
	// DefaultCheckIntervalSeconds is the scheduler interval when none is
	// configured.
	DefaultCheckIntervalSeconds = 3600

	// DefaultNtfyServer is the public ntfy.sh instance.
	DefaultNtfyServer = "https://ntfy.sh"
)

// Config is the loaded configuration.
type Config struct {
	v        *viper.Viper
	filePath string // empty when no config file was found
}

// Dir returns the updatewatch config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/updatewatch if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "updatewatch"), nil
}

// Load reads the config file at path, or from the default location
// ({config dir}/config.toml) when path is empty. A missing file yields a
// config of pure defaults and environment variables; a file that exists but
// cannot be parsed is an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault(KeyCheckInterval, DefaultCheckIntervalSeconds)
	v.SetDefault(KeyNtfyServer, DefaultNtfyServer)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path == "" {
		dir, err := Dir()
		if err != nil {
			return nil, fmt.Errorf("failed to determine config directory: %w", err)
		}
		path = filepath.Join(dir, "config.toml")
	}

	cfg := &Config{v: v}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg.filePath = path
	return cfg, nil
}

// FilePath returns the path of the config file that was read, or "" when no
// file was found.
func (c *Config) FilePath() string {
	return c.filePath
}

// DatabasePath returns the configured database path, or "" when unset.
func (c *Config) DatabasePath() string {
	return c.v.GetString(KeyDatabasePath)
}

// NtfyTopic returns the configured notification topic, or "" when unset.
func (c *Config) NtfyTopic() string {
	return c.v.GetString(KeyNtfyTopic)
}

// NtfyServer returns the notification server URL.
func (c *Config) NtfyServer() string {
	return c.v.GetString(KeyNtfyServer)
}

// CheckIntervalSeconds returns the scheduler interval in seconds.
func (c *Config) CheckIntervalSeconds() int {
	return c.v.GetInt(KeyCheckInterval)
}

// GitHubToken returns the GitHub access token, or "" when unset.
func (c *Config) GitHubToken() string {
	return c.v.GetString(KeyGitHubToken)
}

// Watch re-reads the config file whenever it changes on disk and invokes
// onChange with the refreshed config. No-op when no config file was found at
// load time.
func (c *Config) Watch(onChange func(*Config)) {
	if c.filePath == "" {
		return
	}
	c.v.OnConfigChange(func(_ fsnotify.Event) {
		onChange(c)
	})
	c.v.WatchConfig()
}
