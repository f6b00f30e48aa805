// Package types provides core data types for the snapdiff filesystem auditor.
// It includes the entry and snapshot structures produced by scans, the
// difference structures produced by comparing snapshots, and the persisted
// JSON forms of both.
package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Binary (IEC) size units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// ToolRevision is the schema revision stamped into every persisted snapshot.
// Readers refuse nothing below it and warn above it, so old records stay
// loadable as the format evolves.
const ToolRevision uint = 1

// TimestampLayout is the layout used for snapshot timestamps and for the
// timestamped record/report filenames.
const TimestampLayout = "2006-01-02_15-04-05"

// Timestamp returns the current local time formatted with TimestampLayout.
func Timestamp() string {
	return time.Now().Format(TimestampLayout)
}

// EntryKind identifies what kind of filesystem object an entry describes.
type EntryKind string

// Entry kinds. Unknown covers symlinks, special files, and anything that
// disappears between listing and inspection.
const (
	KindFile      EntryKind = "File"
	KindDirectory EntryKind = "Directory"
	KindUnknown   EntryKind = "Unknown"
)

// Entry describes one filesystem child observed at scan time.
//
// Two entries are equal iff kind, path, and size are all equal; the struct is
// comparable and is used directly as the key of EntrySet. A size change
// therefore produces a distinct entry rather than mutating an existing one.
type Entry struct {
	// Kind is the classification of the child.
	Kind EntryKind `json:"Type"`

	// Path is the absolute, platform-native path of the child.
	Path string `json:"Path"`

	// Octets is the byte length. It is zero for directories and for files
	// whose metadata could not be read.
	Octets uint64 `json:"Octets,omitempty"`
}

// HumanSize returns the entry size formatted as a human-readable string
// using binary (IEC) units.
func (e Entry) HumanSize() string {
	return FormatSize(e.Octets)
}

// EntrySet is a deduplicated set of entries keyed by the full
// (kind, path, size) identity. The zero value is not usable; use NewEntrySet.
//
// It serializes as a JSON array sorted by path, then kind, then size, so that
// persisted snapshots are byte-stable regardless of insertion order.
type EntrySet map[Entry]struct{}

// NewEntrySet returns an empty set, optionally seeded with entries.
func NewEntrySet(entries ...Entry) EntrySet {
	s := make(EntrySet, len(entries))
	for _, e := range entries {
		s.Insert(e)
	}
	return s
}

// Insert adds an entry to the set. Duplicates collapse to one.
func (s EntrySet) Insert(e Entry) {
	s[e] = struct{}{}
}

// Contains reports whether the exact (kind, path, size) triple is present.
func (s EntrySet) Contains(e Entry) bool {
	_, ok := s[e]
	return ok
}

// Len returns the number of distinct entries.
func (s EntrySet) Len() int {
	return len(s)
}

// Equal reports whether both sets hold exactly the same entries.
func (s EntrySet) Equal(other EntrySet) bool {
	if len(s) != len(other) {
		return false
	}
	for e := range s {
		if !other.Contains(e) {
			return false
		}
	}
	return true
}

// Sorted returns the entries as a slice sorted by path, kind, size.
func (s EntrySet) Sorted() []Entry {
	entries := make([]Entry, 0, len(s))
	for e := range s {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Path != entries[j].Path {
			return entries[i].Path < entries[j].Path
		}
		if entries[i].Kind != entries[j].Kind {
			return entries[i].Kind < entries[j].Kind
		}
		return entries[i].Octets < entries[j].Octets
	})
	return entries
}

// MarshalJSON serializes the set as a sorted JSON array.
func (s EntrySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON deserializes a JSON array into the set, collapsing duplicates.
func (s *EntrySet) UnmarshalJSON(data []byte) error {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	set := NewEntrySet(entries...)
	*s = set
	return nil
}

// Snapshot is the result of one full scan: a deduplicated set of entries plus
// metadata. It is created empty by the scan aggregator, mutated only by the
// aggregator while batches arrive, and immutable once finalized.
type Snapshot struct {
	// DateTime is when the snapshot was finalized, in TimestampLayout form.
	// Informational only; it does not participate in equality.
	DateTime string `json:"DateTime"`

	// UsedToolRevision is the schema revision the snapshot was written with.
	UsedToolRevision uint `json:"ToolRevision"`

	// EntryCount duplicates len(Entries) so persisted snapshots can be
	// inspected without parsing the full entry array.
	EntryCount uint `json:"EntryCount"`

	// Entries is the deduplicated set of observed entries.
	Entries EntrySet `json:"Entries"`
}

// NewSnapshot returns an empty snapshot stamped with the current tool revision.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		UsedToolRevision: ToolRevision,
		Entries:          NewEntrySet(),
	}
}

// Equal reports whether two snapshots hold the same content. DateTime is
// purely informational and is ignored.
func (s *Snapshot) Equal(other *Snapshot) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.UsedToolRevision == other.UsedToolRevision &&
		s.EntryCount == other.EntryCount &&
		s.Entries.Equal(other.Entries)
}

// DifferenceKind classifies the fate of one entry between two snapshots.
type DifferenceKind string

// Difference kinds.
const (
	DiffNew        DifferenceKind = "New"
	DiffRemoved    DifferenceKind = "Removed"
	DiffSizeChange DifferenceKind = "SizeChange"
	DiffNoChange   DifferenceKind = "NoChange"
)

// EntryDifference is one line of a difference report.
type EntryDifference struct {
	// Kind is the entry kind of the referenced entry.
	Kind EntryKind `json:"Type"`

	// Difference classifies the entry's fate between the two snapshots.
	Difference DifferenceKind `json:"DifferenceType"`

	// Path is the entry path. Present for every classification.
	Path string `json:"Path,omitempty"`

	// OctetsDifference is |after size - before size|. Nonzero only for
	// SizeChange differences.
	OctetsDifference uint64 `json:"OctetsDifference,omitempty"`
}

// DifferenceReport is the result of comparing two snapshots. Entry order
// carries no meaning; it derives from set enumeration and is sorted only for
// output stability.
type DifferenceReport struct {
	// DateTime is when the report was produced, in TimestampLayout form.
	DateTime string `json:"DateTime"`

	// Entries holds one difference per classified entry.
	Entries []EntryDifference `json:"EntriesDifference"`
}

// ScanError pairs a path with the error encountered while scanning it.
type ScanError struct {
	// Path is the directory or entry the error occurred on.
	Path string `json:"path"`

	// Error is the error message.
	Error string `json:"error"`
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units, for consistency with common filesystem tools.
func FormatSize(octets uint64) string {
	return humanize.IBytes(octets)
}

// sizePattern matches size strings like "1024", "10MB", "1.5GiB", "2T".
var sizePattern = regexp.MustCompile(`(?i)^([0-9]+(?:\.[0-9]+)?)\s*([KMGT]?(?:i?B)?)$`)

// ErrInvalidSize indicates that a size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size format")

// ErrNegativeSize indicates that a negative size value was provided.
var ErrNegativeSize = errors.New("size cannot be negative")

// ParseSize parses a human-readable size string into a byte count.
// Plain byte counts ("1024"), single-letter units ("10M"), and the KB/KiB
// suffix families are accepted, case-insensitively, with K through T units.
// Decimal values are truncated to the nearest byte. A suffix outside that
// set is an error, never a silent truncation.
//
// Returns ErrInvalidSize for an unrecognized format and ErrNegativeSize for
// a negative value.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}
	if strings.HasPrefix(s, "-") {
		return 0, ErrNegativeSize
	}

	matches := sizePattern.FindStringSubmatch(s)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}

	unit := strings.ToUpper(matches[2])
	unit = strings.TrimSuffix(strings.TrimSuffix(unit, "IB"), "B")

	var multiplier int64
	switch unit {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	case "T":
		multiplier = TiB
	default:
		return 0, fmt.Errorf("%w: unknown suffix %q", ErrInvalidSize, unit)
	}

	return int64(value * float64(multiplier)), nil
}
