package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jamesainslie/snapdiff/pkg/snapdiff/logging"
	"github.com/jamesainslie/snapdiff/pkg/snapdiff/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot(dateTime string) *types.Snapshot {
	snap := types.NewSnapshot()
	snap.Entries.Insert(types.Entry{Kind: types.KindFile, Path: "/tmp/a", Octets: 42})
	snap.Entries.Insert(types.Entry{Kind: types.KindDirectory, Path: "/tmp/b"})
	snap.EntryCount = uint(snap.Entries.Len())
	snap.DateTime = dateTime
	return snap
}

func TestNewRequiresDir(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)

	snap := testSnapshot("2021-11-07_01-47-59")
	path, err := st.SaveSnapshot(snap)
	require.NoError(t, err)
	assert.Equal(t, "record_2021-11-07_01-47-59.json", filepath.Base(path))

	loaded, err := LoadSnapshot(path)
	require.NoError(t, err)
	assert.True(t, snap.Equal(loaded))
	assert.Equal(t, snap.DateTime, loaded.DateTime)
}

func TestSaveSnapshotDeconflictsNames(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)

	snap := testSnapshot("2021-11-07_01-47-59")
	first, err := st.SaveSnapshot(snap)
	require.NoError(t, err)
	second, err := st.SaveSnapshot(snap)
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "same-second snapshots must not overwrite each other")
}

func TestSaveReport(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)

	report := &types.DifferenceReport{
		DateTime: "2021-11-07_01-48-00",
		Entries: []types.EntryDifference{
			{Kind: types.KindFile, Difference: types.DiffNew, Path: "/tmp/new"},
		},
	}

	path, err := st.SaveReport(report)
	require.NoError(t, err)
	assert.Equal(t, "analysis_2021-11-07_01-48-00.json", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "EntriesDifference")
	assert.Contains(t, string(data), "DifferenceType")
}

func TestSaveSnapshotUnsearchableDir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}

	dir := t.TempDir()
	st, err := New(dir)
	require.NoError(t, err)

	// Write permission without search permission: the name probe inside
	// the directory fails with something other than not-exist.
	require.NoError(t, os.Chmod(dir, 0o600))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	_, err = st.SaveSnapshot(testSnapshot("2021-11-07_01-47-59"))
	assert.Error(t, err, "a persistent stat failure must surface, not retry forever")
}

func TestLoadSnapshotMissingFile(t *testing.T) {
	_, err := LoadSnapshot(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadSnapshotMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "this is not json"},
		{name: "missing entries", content: `{"DateTime":"x","ToolRevision":1,"EntryCount":0}`},
		{
			name: "count mismatch",
			content: `{"DateTime":"x","ToolRevision":1,"EntryCount":5,
				"Entries":[{"Type":"File","Path":"/a","Octets":1}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := LoadSnapshot(path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedSnapshot)
		})
	}
}

func TestLoadSnapshotNewerRevisionWarns(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "store.log")
	require.NoError(t, logging.Init(logging.Config{Level: "info", Path: logPath}))
	defer func() { require.NoError(t, logging.Close()) }()

	path := filepath.Join(t.TempDir(), "record_future.json")
	content := `{"DateTime":"x","ToolRevision":99,"EntryCount":1,
		"Entries":[{"Type":"File","Path":"/a","Octets":1}]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	snap, err := LoadSnapshot(path)
	require.NoError(t, err, "a newer revision still loads")
	assert.Equal(t, uint(99), snap.UsedToolRevision)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "newer tool revision")
}

func TestSaveSnapshotLogsAfterInit(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "store.log")
	require.NoError(t, logging.Init(logging.Config{Level: "info", Path: logPath}))
	defer func() { require.NoError(t, logging.Close()) }()

	st, err := New(t.TempDir())
	require.NoError(t, err)
	_, err = st.SaveSnapshot(testSnapshot("2021-11-07_01-47-59"))
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "snapshot record written")
}

func TestListRecordsNewestFirst(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = st.SaveSnapshot(testSnapshot("2021-11-07_01-47-59"))
	require.NoError(t, err)
	_, err = st.SaveSnapshot(testSnapshot("2021-11-07_01-48-00"))
	require.NoError(t, err)

	records, err := st.ListRecords(0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, strings.Contains(records[0].Name, "01-48-00"))
	assert.True(t, strings.Contains(records[1].Name, "01-47-59"))
}

func TestListRecordsIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	st, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "analysis_x.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0o644))

	records, err := st.ListRecords(0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestListRecordsMissingDir(t *testing.T) {
	st, err := New(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)

	records, err := st.ListRecords(0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLatestPair(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = st.SaveSnapshot(testSnapshot("2021-11-07_01-47-59"))
	require.NoError(t, err)
	_, err = st.SaveSnapshot(testSnapshot("2021-11-07_01-48-00"))
	require.NoError(t, err)
	_, err = st.SaveSnapshot(testSnapshot("2021-11-07_01-49-30"))
	require.NoError(t, err)

	before, after, err := st.LatestPair()
	require.NoError(t, err)
	assert.Contains(t, before, "01-48-00", "older of the newest pair comes first")
	assert.Contains(t, after, "01-49-30")
}

func TestLatestPairNotEnoughRecords(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = st.SaveSnapshot(testSnapshot("2021-11-07_01-47-59"))
	require.NoError(t, err)

	_, _, err = st.LatestPair()
	assert.ErrorIs(t, err, ErrNotEnoughRecords)
}

func TestCleanRemovesExpired(t *testing.T) {
	dir := t.TempDir()
	st, err := New(dir)
	require.NoError(t, err)

	oldPath, err := st.SaveSnapshot(testSnapshot("2021-11-07_01-47-59"))
	require.NoError(t, err)
	freshPath, err := st.SaveSnapshot(testSnapshot("2021-11-07_01-48-00"))
	require.NoError(t, err)

	stale := time.Now().AddDate(0, 0, -60)
	require.NoError(t, os.Chtimes(oldPath, stale, stale))

	removed, err := st.Clean(30)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(oldPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(freshPath)
	assert.NoError(t, err)
}

func TestCleanZeroRetentionIsNoop(t *testing.T) {
	st, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = st.SaveSnapshot(testSnapshot("2021-11-07_01-47-59"))
	require.NoError(t, err)

	removed, err := st.Clean(0)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
