// Package scanner implements the concurrent snapshot engine for the snapdiff
// filesystem auditor. It fans enumeration work out across the target
// directories and aggregates the per-directory batches into one deduplicated
// snapshot through a single-consumer channel.
package scanner

// Options configures a scan.
type Options struct {
	// Targets are the directories whose immediate children are inventoried.
	// Duplicates are collapsed before dispatch.
	Targets []string

	// Sequential runs one enumeration at a time in target order instead of
	// one goroutine per target. Slower, but at most one directory listing is
	// in flight at any moment.
	Sequential bool

	// OnTarget is called as each target's batch is merged, with the number
	// of targets completed so far out of the total. It is called from the
	// aggregator goroutine.
	OnTarget func(completed, total int)
}

// Validate normalizes the options. Duplicate targets are collapsed,
// preserving first-occurrence order. The caller's slice is left untouched.
func (o *Options) Validate() {
	seen := make(map[string]struct{}, len(o.Targets))
	targets := make([]string, 0, len(o.Targets))
	for _, t := range o.Targets {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		targets = append(targets, t)
	}
	o.Targets = targets
}
