package scanner

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jamesainslie/snapdiff/pkg/snapdiff/logging"
	"github.com/jamesainslie/snapdiff/pkg/snapdiff/types"
)

// batch is the message each enumeration unit hands to the aggregator:
// one target's classified children, possibly empty.
type batch struct {
	target  string
	entries []types.Entry
}

// Result contains the finalized snapshot plus run statistics.
type Result struct {
	// Snapshot is the finalized, deduplicated inventory.
	Snapshot *types.Snapshot

	// Targets is the number of directories dispatched.
	Targets int

	// Elapsed is the total time taken to complete the scan.
	Elapsed time.Duration

	// Errors contains the per-target failures that were recovered from.
	Errors []types.ScanError
}

// Scanner takes one point-in-time inventory of the configured targets.
//
// Enumeration units share nothing: each owns its local batch until it hands
// it to the aggregator over the results channel, and the aggregator is the
// only writer to the snapshot under construction. A Scanner is single-use.
type Scanner struct {
	opts   Options
	logger *logging.Logger

	errors   []types.ScanError
	errorsMu sync.Mutex
}

// New creates a Scanner with the given options.
func New(opts Options) *Scanner {
	opts.Validate()

	return &Scanner{
		opts:   opts,
		logger: logging.Get("scanner").With("run", uuid.NewString()[:8]),
	}
}

// Scan dispatches one enumeration per target, collects their batches, and
// returns the finalized snapshot. It blocks until every dispatched unit has
// reported. Cancellation is honored only between targets in sequential mode;
// a unit already blocked on directory I/O runs to completion.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	start := time.Now()

	targets := s.opts.Targets
	total := len(targets)

	s.logger.Info("scan started",
		"targets", total,
		"sequential", s.opts.Sequential)

	// Buffered to the job count so no producer ever blocks on the
	// aggregator, even if it has already stopped consuming.
	results := make(chan batch, total)

	finalized := make(chan *types.Snapshot, 1)
	go s.aggregate(results, total, finalized)

	if s.opts.Sequential {
		for _, target := range targets {
			if ctx.Err() != nil {
				// The aggregator still expects one batch per target.
				results <- batch{target: target}
				continue
			}
			s.scanTarget(target, results)
		}
	} else {
		for _, target := range targets {
			go s.scanTarget(target, results)
		}
	}

	snapshot := <-finalized

	result := &Result{
		Snapshot: snapshot,
		Targets:  total,
		Elapsed:  time.Since(start),
		Errors:   s.errors,
	}

	s.logger.Info("scan finished",
		"entries", snapshot.EntryCount,
		"errors", len(result.Errors),
		"elapsed", result.Elapsed)

	return result, ctx.Err()
}

// scanTarget enumerates one target directory and hands the resulting batch to
// the aggregator. The send is deferred so it happens on every exit path; a
// unit that never reports would stall the aggregator forever.
func (s *Scanner) scanTarget(target string, results chan<- batch) {
	b := batch{target: target}
	defer func() {
		results <- b
	}()

	s.logger.Debug("enumerating", "target", target)

	entries, err := Enumerate(target)
	if err != nil {
		// Recovered locally: the target contributes an empty batch and
		// the other targets are unaffected.
		s.addError(target, err)
		s.logger.Warn("cannot open target directory", "target", target, "error", err)
		return
	}

	b.entries = entries
}

// aggregate is the single consumer of enumeration batches. It owns the
// snapshot under construction outright, merges every received batch into the
// entry set, and finalizes once the expected number of jobs have reported.
// A zero job count finalizes immediately without waiting on any message.
func (s *Scanner) aggregate(results <-chan batch, jobs int, finalized chan<- *types.Snapshot) {
	snapshot := types.NewSnapshot()

	for completed := 0; completed < jobs; {
		b := <-results

		for _, entry := range b.entries {
			snapshot.Entries.Insert(entry)
		}

		completed++
		s.logger.Debug("batch merged",
			"target", b.target,
			"entries", len(b.entries),
			"completed", completed,
			"jobs", jobs)

		if s.opts.OnTarget != nil {
			s.opts.OnTarget(completed, jobs)
		}
	}

	snapshot.EntryCount = uint(snapshot.Entries.Len())
	snapshot.DateTime = types.Timestamp()

	finalized <- snapshot
}

// addError records a recovered per-target failure thread-safely.
func (s *Scanner) addError(path string, err error) {
	s.errorsMu.Lock()
	s.errors = append(s.errors, types.ScanError{
		Path:  path,
		Error: err.Error(),
	})
	s.errorsMu.Unlock()
}
