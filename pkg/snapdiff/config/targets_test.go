package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualTargetsEmpty(t *testing.T) {
	_, err := ManualTargets(nil)
	assert.ErrorIs(t, err, ErrNoTargets)

	_, err = ManualTargets([]string{"", ""})
	assert.ErrorIs(t, err, ErrNoTargets)
}

func TestManualTargetsDeduplicates(t *testing.T) {
	dir := t.TempDir()

	targets, err := ManualTargets([]string{dir, dir, dir + string(filepath.Separator)})
	require.NoError(t, err)
	assert.Equal(t, []string{dir}, targets)
}

func TestManualTargetsAbsolutizes(t *testing.T) {
	targets, err := ManualTargets([]string{"relative/dir"})
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.True(t, filepath.IsAbs(targets[0]))
}

func TestManualTargetsExpandsTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	targets, err := ManualTargets([]string{"~/watched"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(home, "watched")}, targets)
}

func TestManualTargetsSorted(t *testing.T) {
	targets, err := ManualTargets([]string{"/zeta", "/alpha", "/mid"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/alpha", "/mid", "/zeta"}, targets)
}

func TestResolveTargets(t *testing.T) {
	dir := t.TempDir()

	manual := &Config{Manual: true, Targets: []string{dir}}
	targets, err := manual.ResolveTargets()
	require.NoError(t, err)
	assert.Equal(t, []string{dir}, targets)

	_, err = (&Config{Manual: true}).ResolveTargets()
	assert.ErrorIs(t, err, ErrNoTargets)

	auto, err := (&Config{}).ResolveTargets()
	require.NoError(t, err)
	assert.NotEmpty(t, auto)
}

func TestAutoTargets(t *testing.T) {
	targets := AutoTargets()
	require.NotEmpty(t, targets, "auto mode always resolves at least the home directory")

	seen := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		assert.True(t, filepath.IsAbs(target), "auto target %q is not absolute", target)

		_, dup := seen[target]
		assert.False(t, dup, "auto target %q appears twice", target)
		seen[target] = struct{}{}
	}
}
