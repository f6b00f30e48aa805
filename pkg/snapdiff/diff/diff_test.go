package diff

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jamesainslie/snapdiff/pkg/snapdiff/logging"
	"github.com/jamesainslie/snapdiff/pkg/snapdiff/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// snap builds a finalized snapshot holding the given entries.
func snap(entries ...types.Entry) *types.Snapshot {
	s := types.NewSnapshot()
	for _, e := range entries {
		s.Entries.Insert(e)
	}
	s.EntryCount = uint(s.Entries.Len())
	s.DateTime = types.Timestamp()
	return s
}

func file(path string, octets uint64) types.Entry {
	return types.Entry{Kind: types.KindFile, Path: path, Octets: octets}
}

// byKind collects paths from the report grouped by difference kind.
func byKind(report *types.DifferenceReport) map[types.DifferenceKind][]string {
	grouped := make(map[types.DifferenceKind][]string)
	for _, e := range report.Entries {
		grouped[e.Difference] = append(grouped[e.Difference], e.Path)
	}
	return grouped
}

func TestDiffIdenticalSnapshots(t *testing.T) {
	a := snap(file("/x", 100), file("/y", 200))

	report := Compute(a, a)
	require.Len(t, report.Entries, 2)

	for _, e := range report.Entries {
		assert.Equal(t, types.DiffNoChange, e.Difference)
		assert.Zero(t, e.OctetsDifference)
		assert.NotEmpty(t, e.Path)
	}
}

func TestDiffSizeChange(t *testing.T) {
	before := snap(file("/x", 100))
	after := snap(file("/x", 200))

	report := Compute(before, after)
	require.Len(t, report.Entries, 1)

	e := report.Entries[0]
	assert.Equal(t, types.DiffSizeChange, e.Difference)
	assert.Equal(t, "/x", e.Path)
	assert.Equal(t, uint64(100), e.OctetsDifference)

	grouped := byKind(report)
	assert.Empty(t, grouped[types.DiffNew], "a resized path is not new")
	assert.Empty(t, grouped[types.DiffRemoved], "a resized path is not removed")
}

func TestDiffShrunkFile(t *testing.T) {
	before := snap(file("/x", 500))
	after := snap(file("/x", 200))

	report := Compute(before, after)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, types.DiffSizeChange, report.Entries[0].Difference)
	assert.Equal(t, uint64(300), report.Entries[0].OctetsDifference)
}

func TestDiffNewEntry(t *testing.T) {
	before := snap(file("/a", 10))
	after := snap(file("/a", 10), file("/b", 20))

	grouped := byKind(Compute(before, after))
	assert.Equal(t, []string{"/a"}, grouped[types.DiffNoChange])
	assert.Equal(t, []string{"/b"}, grouped[types.DiffNew])
	assert.Empty(t, grouped[types.DiffRemoved])
	assert.Empty(t, grouped[types.DiffSizeChange])
}

func TestDiffRemovedEntry(t *testing.T) {
	before := snap(file("/a", 10), file("/b", 20))
	after := snap(file("/a", 10))

	grouped := byKind(Compute(before, after))
	assert.Equal(t, []string{"/a"}, grouped[types.DiffNoChange])
	assert.Equal(t, []string{"/b"}, grouped[types.DiffRemoved])
	assert.Empty(t, grouped[types.DiffNew])
	assert.Empty(t, grouped[types.DiffSizeChange])
}

func TestDiffRemovedCarriesKindAndPath(t *testing.T) {
	before := snap(types.Entry{Kind: types.KindDirectory, Path: "/gone"})
	after := snap()

	report := Compute(before, after)
	require.Len(t, report.Entries, 1)

	e := report.Entries[0]
	assert.Equal(t, types.DiffRemoved, e.Difference)
	assert.Equal(t, types.KindDirectory, e.Kind)
	assert.Equal(t, "/gone", e.Path)
	assert.Zero(t, e.OctetsDifference)
}

func TestDiffKindChangeIsNewPlusRemoved(t *testing.T) {
	// A path that was a file and became a directory is a different
	// location, not a size change.
	before := snap(file("/p", 10))
	after := snap(types.Entry{Kind: types.KindDirectory, Path: "/p"})

	grouped := byKind(Compute(before, after))
	assert.Equal(t, []string{"/p"}, grouped[types.DiffNew])
	assert.Equal(t, []string{"/p"}, grouped[types.DiffRemoved])
	assert.Empty(t, grouped[types.DiffSizeChange])
}

func TestDiffEmptySnapshots(t *testing.T) {
	report := Compute(snap(), snap())
	assert.Empty(t, report.Entries)
	assert.NotEmpty(t, report.DateTime)
}

func TestComputeLogsComparison(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "diff.log")
	require.NoError(t, logging.Init(logging.Config{Level: "info", Path: logPath}))
	defer func() { require.NoError(t, logging.Close()) }()

	Compute(snap(file("/x", 1)), snap(file("/x", 2)))

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "snapshots compared")
}

func TestDiffMixedChanges(t *testing.T) {
	before := snap(
		file("/same", 1),
		file("/resized", 100),
		file("/deleted", 50),
	)
	after := snap(
		file("/same", 1),
		file("/resized", 160),
		file("/created", 70),
	)

	grouped := byKind(Compute(before, after))
	assert.Equal(t, []string{"/same"}, grouped[types.DiffNoChange])
	assert.Equal(t, []string{"/resized"}, grouped[types.DiffSizeChange])
	assert.Equal(t, []string{"/created"}, grouped[types.DiffNew])
	assert.Equal(t, []string{"/deleted"}, grouped[types.DiffRemoved])
}
