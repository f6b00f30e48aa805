// Package store persists snapshot records and difference reports as
// timestamped JSON files and reads them back for diffing.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jamesainslie/snapdiff/pkg/snapdiff/logging"
	"github.com/jamesainslie/snapdiff/pkg/snapdiff/types"
)

// Filename prefixes for the two persisted document kinds.
const (
	recordPrefix = "record_"
	reportPrefix = "analysis_"
)

// ErrMalformedSnapshot is returned when a snapshot file cannot be parsed or
// fails validation. Diffing never proceeds on malformed input.
var ErrMalformedSnapshot = errors.New("malformed snapshot")

// ErrNotEnoughRecords is returned when a latest-pair diff is requested but
// the store holds fewer than two records.
var ErrNotEnoughRecords = errors.New("store holds fewer than two snapshot records")

// Store manages the on-disk snapshot record directory.
type Store struct {
	dir string
	mu  sync.Mutex
}

// New creates a Store rooted at dir. The directory is created lazily on the
// first write.
func New(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("store directory cannot be empty")
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// SaveSnapshot writes a finalized snapshot as record_<timestamp>.json and
// returns the file path.
func (s *Store) SaveSnapshot(snapshot *types.Snapshot) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := recordPrefix + snapshot.DateTime + ".json"
	path, err := s.write(name, snapshot)
	if err != nil {
		return "", err
	}

	logging.Get("store").Info("snapshot record written", "path", path, "entries", snapshot.EntryCount)
	return path, nil
}

// SaveReport writes a difference report as analysis_<timestamp>.json and
// returns the file path.
func (s *Store) SaveReport(report *types.DifferenceReport) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := reportPrefix + report.DateTime + ".json"
	path, err := s.write(name, report)
	if err != nil {
		return "", err
	}

	logging.Get("store").Info("difference report written", "path", path, "differences", len(report.Entries))
	return path, nil
}

// write marshals v and writes it atomically under name, deconflicting the
// filename if a document with the same timestamp already exists.
func (s *Store) write(name string, v interface{}) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create store directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal document: %w", err)
	}

	path := filepath.Join(s.dir, name)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		_, err := os.Stat(path)
		if os.IsNotExist(err) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to stat %s: %w", path, err)
		}
		path = filepath.Join(s.dir, fmt.Sprintf("%s_%d%s", base, n, ext))
	}

	// Write atomically using a temp file and rename
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		// Cleanup temp file on rename failure
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to rename temp file: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads and validates one snapshot file. Any parse or validation
// failure fails fast with an error wrapping ErrMalformedSnapshot; partial
// results are never returned.
func LoadSnapshot(path string) (*types.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file %s: %w", path, err)
	}

	var snapshot types.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedSnapshot, path, err)
	}

	if snapshot.Entries == nil {
		return nil, fmt.Errorf("%w: %s: missing Entries", ErrMalformedSnapshot, path)
	}
	if int(snapshot.EntryCount) != snapshot.Entries.Len() {
		return nil, fmt.Errorf("%w: %s: EntryCount %d does not match %d entries",
			ErrMalformedSnapshot, path, snapshot.EntryCount, snapshot.Entries.Len())
	}

	if snapshot.UsedToolRevision > types.ToolRevision {
		logging.Get("store").Warn("snapshot written by a newer tool revision",
			"path", path,
			"revision", snapshot.UsedToolRevision,
			"supported", types.ToolRevision)
	}

	return &snapshot, nil
}

// RecordInfo describes one stored snapshot record file.
type RecordInfo struct {
	// Name is the record filename.
	Name string

	// Path is the full path to the record file.
	Path string

	// Size is the file size in bytes.
	Size int64

	// ModTime is the file modification time.
	ModTime time.Time
}

// ListRecords returns all snapshot records, newest first. If limit is
// positive, at most limit records are returned.
func (s *Store) ListRecords(limit int) ([]RecordInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RecordInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read store directory: %w", err)
	}

	records := make([]RecordInfo, 0, len(files))
	for _, f := range files {
		if f.IsDir() || !strings.HasPrefix(f.Name(), recordPrefix) || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}

		info, err := f.Info()
		if err != nil {
			continue
		}

		records = append(records, RecordInfo{
			Name:    f.Name(),
			Path:    filepath.Join(s.dir, f.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	// Timestamped names sort chronologically; newest first.
	sort.Slice(records, func(i, j int) bool {
		return records[i].Name > records[j].Name
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	return records, nil
}

// LatestPair returns the paths of the two newest snapshot records, oldest of
// the pair first, for a before/after diff.
func (s *Store) LatestPair() (before, after string, err error) {
	records, err := s.ListRecords(2)
	if err != nil {
		return "", "", err
	}
	if len(records) < 2 {
		return "", "", ErrNotEnoughRecords
	}

	// records is newest-first.
	return records[1].Path, records[0].Path, nil
}

// Clean removes snapshot records and difference reports older than
// retentionDays. It returns the number of files removed.
func (s *Store) Clean(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read store directory: %w", err)
	}

	logger := logging.Get("store")
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	removed := 0

	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		if !strings.HasPrefix(f.Name(), recordPrefix) && !strings.HasPrefix(f.Name(), reportPrefix) {
			continue
		}

		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(s.dir, f.Name())); err != nil {
			logger.Warn("failed to remove expired record", "name", f.Name(), "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		logger.Info("expired records removed", "count", removed, "retention_days", retentionDays)
	}

	return removed, nil
}
