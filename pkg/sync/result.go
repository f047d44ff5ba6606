package sync

import (
	"fmt"
	"strings"
)

// Stats accumulates action outcomes over one run. Counters only ever
// increment; the service is the sole writer.
type Stats struct {
	Created   int
	Updated   int
	Deleted   int
	Unchanged int
	Errors    int
}

// Result is the externally observable outcome of one sync run.
type Result struct {
	Stats Stats

	// MatchedResources and TotalResources report matching coverage.
	// Unmatched resources are skipped, not errors.
	MatchedResources int
	TotalResources   int

	// Year is the target calendar year the run was scoped to.
	Year int

	// DryRun reports whether actions were computed but not applied.
	DryRun bool
}

// HasChanges reports whether the run produced (or, for a dry run, would
// produce) any writes.
func (r *Result) HasChanges() bool {
	return r.Stats.Created > 0 || r.Stats.Updated > 0 || r.Stats.Deleted > 0
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	var b strings.Builder
	if r.DryRun {
		b.WriteString("(dry run) ")
	}
	fmt.Fprintf(&b, "%d created, %d updated, %d deleted, %d unchanged, %d errors",
		r.Stats.Created, r.Stats.Updated, r.Stats.Deleted, r.Stats.Unchanged, r.Stats.Errors)
	fmt.Fprintf(&b, " | matched %d of %d resources, year %d",
		r.MatchedResources, r.TotalResources, r.Year)
	return b.String()
}
