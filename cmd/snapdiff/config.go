package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/snapdiff/pkg/snapdiff/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage snapdiff configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/snapdiff/config.yaml (if set)
  2. ~/.config/snapdiff/config.yaml

Environment variables can override config file settings using the
SNAPDIFF_ prefix:
  SNAPDIFF_MANUAL=true
  SNAPDIFF_SEQUENTIAL=true
  SNAPDIFF_STORE_PATH=/var/lib/snapdiff`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the current configuration settings from all sources.`,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long:  `Create a default configuration file if none exists.`,
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow prints the effective configuration.
func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if used := viper.ConfigFileUsed(); used != "" {
		printInfo("Config file: %s", used)
	} else {
		printInfo("Config file: (none, using defaults)")
	}

	printInfo("")
	printInfo("manual:          %t", cfg.Manual)
	printInfo("sequential:      %t", cfg.Sequential)
	printInfo("output:          %s", cfg.Output)
	if len(cfg.Targets) > 0 {
		printInfo("targets:         %s", strings.Join(cfg.Targets, ", "))
	} else {
		printInfo("targets:         (none)")
	}
	printInfo("store.path:      %s", cfg.Store.Path)
	printInfo("store.retention: %d days", cfg.Store.RetentionDays)
	printInfo("logging.level:   %s", cfg.Logging.Level)

	printInfo("")
	printInfo("Auto-mode targets on this system:")
	for _, target := range config.AutoTargets() {
		printInfo("  %s", target)
	}

	return nil
}

// runConfigInit writes the default config file.
func runConfigInit(_ *cobra.Command, _ []string) error {
	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}

	dir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	printInfo("Config file: %s", filepath.Join(dir, "config.yaml"))
	return nil
}
