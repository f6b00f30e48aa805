// Package diff compares two snapshots and classifies every entry's fate.
//
// Entry identity is the full (kind, path, size) triple, so raw set operations
// alone cannot tell a resized file from a brand-new one: the resized file
// shows up in the after-only set with no counterpart to retire. The engine
// therefore layers a per-(kind, path) size index over both snapshots and uses
// it to split the after-only set into New and SizeChange, and to find the
// paths that disappeared entirely.
package diff

import (
	"sort"

	"github.com/jamesainslie/snapdiff/pkg/snapdiff/logging"
	"github.com/jamesainslie/snapdiff/pkg/snapdiff/types"
)

// location identifies an entry independent of its size.
type location struct {
	kind types.EntryKind
	path string
}

// sizeIndex maps every (kind, path) in a snapshot to its observed size.
type sizeIndex map[location]uint64

// indexSnapshot builds the per-location size index for one snapshot.
func indexSnapshot(s *types.Snapshot) sizeIndex {
	idx := make(sizeIndex, s.Entries.Len())
	for entry := range s.Entries {
		idx[location{kind: entry.Kind, path: entry.Path}] = entry.Octets
	}
	return idx
}

// Compute compares two snapshots and returns the classified difference
// report. Entries identical across both snapshots are NoChange; entries only
// in after are New or SizeChange depending on whether before held the same
// (kind, path) at another size; locations only in before are Removed.
func Compute(before, after *types.Snapshot) *types.DifferenceReport {
	beforeIdx := indexSnapshot(before)
	afterIdx := indexSnapshot(after)

	differences := make([]types.EntryDifference, 0, after.Entries.Len())

	for _, entry := range after.Entries.Sorted() {
		switch {
		case before.Entries.Contains(entry):
			differences = append(differences, types.EntryDifference{
				Kind:       entry.Kind,
				Difference: types.DiffNoChange,
				Path:       entry.Path,
			})

		default:
			loc := location{kind: entry.Kind, path: entry.Path}
			previous, existed := beforeIdx[loc]
			if existed {
				differences = append(differences, types.EntryDifference{
					Kind:             entry.Kind,
					Difference:       types.DiffSizeChange,
					Path:             entry.Path,
					OctetsDifference: absDelta(previous, entry.Octets),
				})
				continue
			}

			differences = append(differences, types.EntryDifference{
				Kind:       entry.Kind,
				Difference: types.DiffNew,
				Path:       entry.Path,
			})
		}
	}

	// Locations present before but gone after, by (kind, path) rather than
	// by full identity, so a resized file is not also reported removed.
	removed := make([]types.EntryDifference, 0)
	for loc := range beforeIdx {
		if _, stillThere := afterIdx[loc]; stillThere {
			continue
		}
		removed = append(removed, types.EntryDifference{
			Kind:       loc.kind,
			Difference: types.DiffRemoved,
			Path:       loc.path,
		})
	}
	sort.Slice(removed, func(i, j int) bool {
		if removed[i].Path != removed[j].Path {
			return removed[i].Path < removed[j].Path
		}
		return removed[i].Kind < removed[j].Kind
	})
	differences = append(differences, removed...)

	report := &types.DifferenceReport{
		DateTime: types.Timestamp(),
		Entries:  differences,
	}

	logging.Get("diff").Info("snapshots compared",
		"before", before.DateTime,
		"after", after.DateTime,
		"differences", len(differences))

	return report
}

// absDelta returns |a - b| without underflowing.
func absDelta(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}
