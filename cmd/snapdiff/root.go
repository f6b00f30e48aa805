package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/snapdiff/pkg/snapdiff/config"
	"github.com/jamesainslie/snapdiff/pkg/snapdiff/logging"
	"github.com/jamesainslie/snapdiff/pkg/snapdiff/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "snapdiff",
		Short: "Snapshot filesystem locations and diff the snapshots",
		Long: `Snapdiff takes point-in-time inventories of a set of filesystem locations
and compares two inventories to report what changed. Run a snapshot before
an installer or system process, run another after, and diff the two.

By default snapdiff scans a set of locations that installers and
applications commonly write to. Use --manual to scan the targets
configured in the config file instead.

Examples:
  snapdiff                       # Snapshot the default locations
  snapdiff -m                    # Snapshot the configured targets
  snapdiff -s                    # Snapshot one target at a time
  snapdiff diff                  # Diff the two newest snapshots
  snapdiff diff old.json new.json
  snapdiff history               # List stored snapshot records`,
		Args: cobra.NoArgs,
		RunE: runSnapshot,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/snapdiff/config.yaml)")
	rootCmd.PersistentFlags().BoolP("manual", "m", false, "scan the targets configured in the config file")
	rootCmd.PersistentFlags().BoolP("sequential", "s", false, "scan one target at a time (bounded resource use)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format for diff reports (pretty, plain, json)")
	rootCmd.PersistentFlags().String("store", "", "directory for snapshot records and reports")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	// Bind flags to viper
	_ = viper.BindPFlag("manual", rootCmd.PersistentFlags().Lookup("manual"))
	_ = viper.BindPFlag("sequential", rootCmd.PersistentFlags().Lookup("sequential"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("store.path", rootCmd.PersistentFlags().Lookup("store"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Set config name and type
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		// Add config paths in order of precedence
		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "snapdiff"))
		}

		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "snapdiff"))
		}
	}

	// Set environment variable prefix and enable auto env binding
	viper.SetEnvPrefix("SNAPDIFF")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// initLogging initializes the logging system from the effective configuration.
func initLogging() error {
	cfg := logging.Config{
		Level:      viper.GetString("logging.level"),
		Path:       viper.GetString("logging.path"),
		Components: viper.GetStringMapString("logging.components"),
		Rotation:   rotationFromConfig(),
	}

	if getVerbose() {
		cfg.ConsoleLevel = "debug"
	}

	return logging.Init(cfg)
}

// rotationFromConfig builds the rotation settings from viper.
func rotationFromConfig() logging.RotationConfig {
	rc := logging.DefaultRotationConfig()

	if maxSize := viper.GetString("logging.rotation.max_size"); maxSize != "" {
		parsed, err := types.ParseSize(maxSize)
		if err == nil && parsed > 0 {
			rc.MaxSize = parsed
		} else if err != nil {
			printWarning("ignoring logging.rotation.max_size: %v", err)
		}
	}
	if maxAge := viper.GetInt("logging.rotation.max_age"); maxAge > 0 {
		rc.MaxAge = maxAge
	}
	if maxBackups := viper.GetInt("logging.rotation.max_backups"); maxBackups > 0 {
		rc.MaxBackups = maxBackups
	}
	rc.Daily = viper.GetBool("logging.rotation.daily")

	return rc
}

// storeDir returns the effective store directory.
func storeDir() string {
	if dir := viper.GetString("store.path"); dir != "" {
		return dir
	}
	return config.DefaultStorePath()
}

// outputFormat returns the effective diff output format.
func outputFormat() string {
	if format := viper.GetString("output"); format != "" {
		return format
	}
	return config.DefaultOutput
}

// Execute runs the root command.
func Execute() error {
	defer func() {
		_ = logging.Close()
	}()
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

// printWarning prints a non-fatal warning to stderr.
func printWarning(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// humanCount formats an entry count with its size noun.
func humanCount(n uint) string {
	if n == 1 {
		return "1 entry"
	}
	return fmt.Sprintf("%d entries", n)
}
