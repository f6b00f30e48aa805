package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/adrg/xdg"
)

// ErrNoTargets is returned when manual mode is selected but no targets are
// configured.
var ErrNoTargets = errors.New("no targets configured")

// ResolveTargets returns the deduplicated, absolute list of directories to
// snapshot. Manual mode takes the configured target list and fails when it is
// empty; auto mode derives installer-prone locations from the environment.
func (c *Config) ResolveTargets() ([]string, error) {
	if c.Manual {
		return ManualTargets(c.Targets)
	}
	return AutoTargets(), nil
}

// ManualTargets normalizes a configured target list.
// It returns ErrNoTargets if the list is empty after normalization.
func ManualTargets(targets []string) ([]string, error) {
	normalized := normalizeTargets(targets)
	if len(normalized) == 0 {
		return nil, ErrNoTargets
	}
	return normalized, nil
}

// AutoTargets returns the default set of directories that installers and
// applications commonly write to. Locations that cannot be resolved on this
// system are skipped rather than reported.
func AutoTargets() []string {
	var targets []string

	if home, err := os.UserHomeDir(); err == nil {
		targets = append(targets, home)
	}

	targets = append(targets,
		xdg.ConfigHome,
		xdg.CacheHome,
		xdg.DataHome,
		xdg.StateHome,
		os.TempDir(),
	)

	targets = append(targets, platformTargets()...)

	return normalizeTargets(targets)
}

// platformTargets returns OS-specific system locations.
func platformTargets() []string {
	if runtime.GOOS == "windows" {
		var targets []string
		if drive := os.Getenv("SYSTEMDRIVE"); drive != "" {
			targets = append(targets, drive+`\`)
		}
		for _, key := range []string{
			"ProgramData",
			"ProgramFiles",
			"ProgramFiles(x86)",
			"APPDATA",
			"LOCALAPPDATA",
		} {
			if dir := os.Getenv(key); dir != "" {
				targets = append(targets, dir)
			}
		}
		if profile := os.Getenv("USERPROFILE"); profile != "" {
			targets = append(targets, profile, filepath.Join(profile, "AppData", "LocalLow"))
		}
		return targets
	}

	return []string{"/usr/local", "/opt", "/etc"}
}

// normalizeTargets expands, absolutizes, and deduplicates a target list.
// The result is sorted so downstream iteration order is stable.
func normalizeTargets(targets []string) []string {
	seen := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		if target == "" {
			continue
		}

		expanded, err := ExpandPath(target)
		if err != nil {
			continue
		}

		abs, err := filepath.Abs(expanded)
		if err != nil {
			continue
		}

		seen[abs] = struct{}{}
	}

	normalized := make([]string, 0, len(seen))
	for target := range seen {
		normalized = append(normalized, target)
	}
	sort.Strings(normalized)
	return normalized
}
