package scanner

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jamesainslie/snapdiff/pkg/snapdiff/types"
)

// invalidPathPlaceholder substitutes for paths that cannot be rendered as a
// display string. The entry still counts toward totals.
const invalidPathPlaceholder = "Invalid path"

// Enumerate lists the immediate children of dir and classifies each one.
// It never fails the run: a directory that cannot be opened yields an empty
// sequence and a non-nil error for the caller to report. Children that vanish
// between listing and inspection are silently skipped. Subdirectories are not
// recursed into; scheduling them is the caller's concern.
func Enumerate(dir string) ([]types.Entry, error) {
	children, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	entries := make([]types.Entry, 0, len(children))
	for _, child := range children {
		entry, ok := classify(dir, child)
		if !ok {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// classify inspects one child of dir and produces the entry describing it.
// It reports ok=false only when the child no longer exists at inspection
// time. All other failure degrades: unreadable metadata falls back to the
// listing's own type information with size zero, and anything that is neither
// a regular file nor a directory is Unknown.
func classify(dir string, child os.DirEntry) (types.Entry, bool) {
	path := filepath.Join(dir, child.Name())

	kind := types.KindUnknown
	var octets uint64

	info, err := os.Stat(path)
	switch {
	case err == nil:
		switch {
		case info.Mode().IsRegular():
			kind = types.KindFile
			octets = uint64(info.Size())
		case info.IsDir():
			kind = types.KindDirectory
		}
	case errors.Is(err, fs.ErrNotExist):
		// Raced with a delete between listing and stat. The window is
		// inherent; neither an entry nor an error.
		return types.Entry{}, false
	default:
		// Metadata unreadable. The listing already told us the type.
		switch {
		case child.Type().IsRegular():
			kind = types.KindFile
		case child.IsDir():
			kind = types.KindDirectory
		}
	}

	return types.Entry{
		Kind:   kind,
		Path:   displayPath(path),
		Octets: octets,
	}, true
}

// displayPath resolves path to its absolute form, degrading to a placeholder
// rather than dropping the entry.
func displayPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return invalidPathPlaceholder
	}
	return abs
}
