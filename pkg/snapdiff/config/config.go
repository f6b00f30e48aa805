package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size"`
	MaxAge     int    `mapstructure:"max_age"`
	MaxBackups int    `mapstructure:"max_backups"`
	Daily      bool   `mapstructure:"daily"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Rotation   RotationConfig    `mapstructure:"rotation"`
	Components map[string]string `mapstructure:"components"`
}

// StoreConfig configures where snapshot records and difference reports are kept.
type StoreConfig struct {
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// Config represents the application configuration.
type Config struct {
	// Targets is the manual-mode list of directories to snapshot.
	Targets []string `mapstructure:"targets"`

	// Manual selects the configured target list instead of the
	// environment-derived default list.
	Manual bool `mapstructure:"manual"`

	// Sequential runs one enumeration at a time instead of one goroutine
	// per target. Slower, but peak resource use is bounded.
	Sequential bool `mapstructure:"sequential"`

	// Output is the difference report output format.
	Output string `mapstructure:"output"`

	Store   StoreConfig   `mapstructure:"store"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/snapdiff/config.yaml
//   - $HOME/.config/snapdiff/config.yaml
//
// Environment variables are prefixed with SNAPDIFF_ (e.g., SNAPDIFF_MANUAL).
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and type
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Add config paths
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "snapdiff"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "snapdiff"))

	// Set environment variable prefix and enable auto env binding
	v.SetEnvPrefix("SNAPDIFF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	// Read config file (ignore if not found)
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable; we use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Expand ~ in the store path if present
	if strings.HasPrefix(cfg.Store.Path, "~") {
		cfg.Store.Path = filepath.Join(homeDir, cfg.Store.Path[1:])
	}

	return &cfg, nil
}

// SetDefaults registers all configuration defaults on the given viper
// instance. The cobra layer shares these with the library Load path.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("manual", false)
	v.SetDefault("sequential", false)
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("targets", []string{})

	v.SetDefault("store.path", DefaultStorePath())
	v.SetDefault("store.retention_days", DefaultRetentionDays)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means use DefaultLogPath
	v.SetDefault("logging.rotation.max_size", "10MB")
	v.SetDefault("logging.rotation.max_age", 30)
	v.SetDefault("logging.rotation.max_backups", 5)
	v.SetDefault("logging.rotation.daily", true)
	v.SetDefault("logging.components", map[string]string{
		"scanner": "info",
		"diff":    "info",
		"store":   "info",
	})
}

// DefaultStorePath returns the default directory for snapshot records and
// difference reports. It uses $XDG_DATA_HOME/snapdiff.
func DefaultStorePath() string {
	return filepath.Join(xdg.DataHome, "snapdiff")
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	// Check XDG_CONFIG_HOME first
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "snapdiff"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "snapdiff"), nil
}

// EnsureConfigDir creates the config directory if it doesn't exist.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, path[1:]), nil
}

// WriteDefault writes a default config file if none exists.
// Returns nil if a config file already exists.
func WriteDefault() error {
	if err := EnsureConfigDir(); err != nil {
		return err
	}

	configDir, err := ConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.yaml")

	// Check if config file already exists
	if _, err := os.Stat(configPath); err == nil {
		// Config file exists, do nothing
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	defaultConfig := fmt.Sprintf(`# snapdiff configuration

# Directories to snapshot when running with --manual.
# Auto mode ignores this list and derives installer-prone locations
# from the environment instead.
targets: []

# Run one enumeration at a time instead of one per target.
sequential: false

# Output format for difference reports: pretty, plain, json.
output: %s

store:
  # Where snapshot records and difference reports are written.
  path: %s
  retention_days: %d

logging:
  level: info
  rotation:
    max_size: 10MB
    max_age: 30
    max_backups: 5
    daily: true
`, DefaultOutput, DefaultStorePath(), DefaultRetentionDays)

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
