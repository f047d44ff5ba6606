// Package reconcile computes the minimal set of create/update/delete actions
// that converges a local resource's unavailability set to the master's.
// It is a pure set-diff by occurrence key: no I/O is performed and no domain
// errors are raised, so the computation is trivially repeatable. Running it
// against its own applied output yields an all-unchanged plan, which is what
// makes sync runs idempotent.
package reconcile

import (
	"fmt"

	"github.com/dispatchware/fleetsync/pkg/fleet"
)

// Plan is the ordered action set for one matched resource pair. Actions are
// grouped creates, then updates, then deletes, each in the order their
// source records were encountered; the plan is deterministic for
// deterministic input ordering.
type Plan struct {
	// Creates are master records absent from the local store. They carry
	// the local resource ID and no record ID.
	Creates []fleet.Unavailability

	// Updates are local records whose occurrence key matched a master
	// record but whose mutable fields differ. They carry the local record
	// ID with the master's fields.
	Updates []fleet.Unavailability

	// Deletes are local records in the sync window with no master
	// counterpart.
	Deletes []fleet.Unavailability

	// Unchanged counts key matches with no field differences.
	Unchanged int
}

// HasChanges reports whether the plan contains any actions.
func (p *Plan) HasChanges() bool {
	return len(p.Creates) > 0 || len(p.Updates) > 0 || len(p.Deletes) > 0
}

// Summary returns a human-readable summary of the plan.
func (p *Plan) Summary() string {
	if !p.HasChanges() {
		return fmt.Sprintf("no changes (%d unchanged)", p.Unchanged)
	}
	return fmt.Sprintf("%d creates, %d updates, %d deletes, %d unchanged",
		len(p.Creates), len(p.Updates), len(p.Deletes), p.Unchanged)
}

// Reconcile diffs the master records against the local records for one
// matched pair and returns the plan that converges the local side.
//
// localResourceID is the local-store resource the records belong to; master
// records are re-keyed to it before comparison because occurrence keys are
// local-scoped. Only records whose start date falls in the target year
// participate; local records outside the window are never deleted.
func Reconcile(localResourceID string, master, local []fleet.Unavailability, year int) *Plan {
	plan := &Plan{}

	inWindow := fleet.FilterYear(local, year)

	// Occurrence key -> index into inWindow. First occurrence wins a key;
	// later duplicates are never matchable and fall through to the delete
	// set.
	existing := make(map[fleet.Key]int, len(inWindow))
	for i, rec := range inWindow {
		if _, ok := existing[rec.Key()]; !ok {
			existing[rec.Key()] = i
		}
	}

	consumed := make([]bool, len(inWindow))

	// Master occurrences dedupe by key too, first wins; without this a
	// duplicated master record would re-create an occurrence the store
	// already holds on every run.
	wanted := make(map[fleet.Key]bool, len(inWindow))

	for _, rec := range fleet.FilterYear(master, year) {
		want := rec
		want.ID = ""
		want.ResourceID = localResourceID

		key := want.Key()
		if wanted[key] {
			continue
		}
		wanted[key] = true

		i, ok := existing[key]
		if !ok {
			plan.Creates = append(plan.Creates, want)
			continue
		}

		// Consumed keys are no longer eligible for deletion.
		delete(existing, key)
		consumed[i] = true

		have := inWindow[i]
		if have.Differs(want) {
			want.ID = have.ID
			plan.Updates = append(plan.Updates, want)
		} else {
			plan.Unchanged++
		}
	}

	for i, rec := range inWindow {
		if !consumed[i] {
			plan.Deletes = append(plan.Deletes, rec)
		}
	}

	return plan
}
