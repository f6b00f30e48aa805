// Package output provides formatters for displaying snapdiff difference
// reports in various output formats (pretty, plain, json).
//
// The package uses a registry pattern to allow registration of multiple
// formatter implementations that can be selected at runtime.
//
// Basic usage:
//
//	formatter, err := output.Get("pretty")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"

	"github.com/jamesainslie/snapdiff/pkg/snapdiff/types"
)

// Result contains the complete output data for formatting: the difference
// report plus the labels of the two snapshots it was computed from.
type Result struct {
	// Report is the classified difference report.
	Report *types.DifferenceReport

	// Before is a label for the older snapshot (usually its file path).
	Before string

	// After is a label for the newer snapshot.
	After string
}

// Summary tallies the report by difference kind.
type Summary struct {
	// New is the number of entries present only in the newer snapshot.
	New int

	// Removed is the number of entries that disappeared.
	Removed int

	// SizeChanged is the number of entries whose size changed.
	SizeChanged int

	// Unchanged is the number of entries identical in both snapshots.
	Unchanged int

	// OctetsChanged is the sum of all size deltas.
	OctetsChanged uint64
}

// Summarize tallies the report's entries by kind.
func (r *Result) Summarize() Summary {
	var s Summary
	for _, e := range r.Report.Entries {
		switch e.Difference {
		case types.DiffNew:
			s.New++
		case types.DiffRemoved:
			s.Removed++
		case types.DiffSizeChange:
			s.SizeChanged++
			s.OctetsChanged += e.OctetsDifference
		case types.DiffNoChange:
			s.Unchanged++
		}
	}
	return s
}

// Changed returns the report entries that are not NoChange, in report order.
func (r *Result) Changed() []types.EntryDifference {
	changed := make([]types.EntryDifference, 0, len(r.Report.Entries))
	for _, e := range r.Report.Entries {
		if e.Difference != types.DiffNoChange {
			changed = append(changed, e)
		}
	}
	return changed
}

// Formatter is the interface that all output formatters must implement.
type Formatter interface {
	// Format writes the formatted output to the buffer.
	// It returns an error if formatting fails.
	Format(w *bytes.Buffer, r *Result) error
}

// FormatterFactory is a function that creates a new Formatter instance.
type FormatterFactory func() Formatter

// Registry manages formatter registration and lookup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]FormatterFactory
}

// NewRegistry creates a new formatter registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]FormatterFactory),
	}
}

// Register adds a formatter factory to the registry.
// It will replace any existing formatter with the same name.
func (r *Registry) Register(name string, factory FormatterFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns a new formatter instance by name.
// It returns an error if the formatter is not found.
func (r *Registry) Get(name string) (Formatter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter: %s", name)
	}
	return factory(), nil
}

// Available returns a sorted list of all registered formatter names.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the global formatter registry.
var DefaultRegistry = NewRegistry()

// Register adds a formatter factory to the default registry.
func Register(name string, factory FormatterFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get returns a new formatter instance from the default registry.
func Get(name string) (Formatter, error) {
	return DefaultRegistry.Get(name)
}

// Available returns all formatter names from the default registry.
func Available() []string {
	return DefaultRegistry.Available()
}
