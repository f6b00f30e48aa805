package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{input: "debug", want: LevelDebug},
		{input: "info", want: LevelInfo},
		{input: "warn", want: LevelWarn},
		{input: "warning", want: LevelWarn},
		{input: "error", want: LevelError},
		{input: "ERROR", want: LevelError},
		{input: "verbose", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLevel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "debug", LevelDebug.String())
	assert.Equal(t, "info", LevelInfo.String())
	assert.Equal(t, "warn", LevelWarn.String())
	assert.Equal(t, "error", LevelError.String())
}

func TestLoggerBeforeInitIsSilent(t *testing.T) {
	// Must not panic or write anywhere.
	logger := Get("uninitialized")
	logger.Info("message before init")
	logger.Error("error before init")
}

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	require.NoError(t, Init(Config{Level: "info", Path: path}))
	defer func() { require.NoError(t, Close()) }()

	Get("testcomp").Info("scan started", "targets", 3)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "scan started")
	assert.Contains(t, string(data), "testcomp")
}

func TestComponentLevelOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	require.NoError(t, Init(Config{
		Level:      "info",
		Path:       path,
		Components: map[string]string{"chatty": "error"},
	}))
	defer func() { require.NoError(t, Close()) }()

	Get("chatty").Info("suppressed")
	Get("chatty").Error("emitted")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "suppressed")
	assert.Contains(t, string(data), "emitted")
}

func TestInitRejectsBadLevel(t *testing.T) {
	err := Init(Config{Level: "loud", Path: filepath.Join(t.TempDir(), "x.log")})
	assert.Error(t, err)
}

func TestLoggerWith(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	require.NoError(t, Init(Config{Level: "info", Path: path}))
	defer func() { require.NoError(t, Close()) }()

	Get("scanner").With("run", "abc123").Info("batch merged")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "abc123")
}

func TestRotatingWriterRotatesBySize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rotate.log")

	w, err := NewRotatingWriter(path, RotationConfig{MaxSize: 64})
	require.NoError(t, err)

	line := strings.Repeat("x", 48) + "\n"
	_, err = w.Write([]byte(line))
	require.NoError(t, err)
	_, err = w.Write([]byte(line))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(entries), 2, "expected the main log plus a rotated file")
}

func TestRotatingWriterPruneHonorsMaxBackups(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")

	for _, stamp := range []string{"2021-11-07_01-47-59", "2021-11-07_01-48-00", "2021-11-07_01-49-30"} {
		require.NoError(t, os.WriteFile(path+"."+stamp, []byte("old"), 0o644))
	}

	// Startup prune keeps the newest backup and drops the rest.
	w, err := NewRotatingWriter(path, RotationConfig{MaxBackups: 1})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = os.Stat(path + ".2021-11-07_01-49-30")
	assert.NoError(t, err, "newest backup survives")
	_, err = os.Stat(path + ".2021-11-07_01-48-00")
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(path + ".2021-11-07_01-47-59")
	assert.True(t, os.IsNotExist(err))
}

func TestRotatingWriterCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "app.log")

	w, err := NewRotatingWriter(path, RotationConfig{})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
