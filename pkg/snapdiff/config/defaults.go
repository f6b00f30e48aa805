// Package config provides configuration management for the snapdiff
// filesystem auditor.
package config

// Default configuration values for snapdiff.
const (
	// DefaultConfigDir is the default configuration directory path.
	DefaultConfigDir = "~/.config/snapdiff"

	// DefaultRetentionDays is the default number of days to retain stored
	// snapshot records and difference reports.
	DefaultRetentionDays = 30

	// DefaultOutput is the default output format for difference reports.
	DefaultOutput = "pretty"
)
