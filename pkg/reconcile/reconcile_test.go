package reconcile

import (
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dispatchware/fleetsync/pkg/fleet"
)

func ts(year, month, day int) utc.Time {
	return utc.Time{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

func record(id, resourceID string, start, end utc.Time, reason, note string) fleet.Unavailability {
	return fleet.Unavailability{
		ID:         id,
		ResourceID: resourceID,
		Start:      start,
		End:        end,
		Reason:     reason,
		Note:       note,
	}
}

func TestReconcileCreate(t *testing.T) {
	master := []fleet.Unavailability{
		record("", "m1", ts(2025, 1, 1), ts(2025, 1, 5), "maintenance", ""),
	}

	plan := Reconcile("l1", master, nil, 2025)

	require.Len(t, plan.Creates, 1)
	assert.Empty(t, plan.Updates)
	assert.Empty(t, plan.Deletes)
	assert.Equal(t, 0, plan.Unchanged)

	// Creates carry the local resource ID and no record ID.
	assert.Equal(t, "l1", plan.Creates[0].ResourceID)
	assert.Equal(t, "", plan.Creates[0].ID)
}

func TestReconcileDelete(t *testing.T) {
	local := []fleet.Unavailability{
		record("u9", "l1", ts(2025, 2, 1), ts(2025, 2, 2), "repair", ""),
	}

	plan := Reconcile("l1", nil, local, 2025)

	assert.Empty(t, plan.Creates)
	require.Len(t, plan.Deletes, 1)
	assert.Equal(t, "u9", plan.Deletes[0].ID)
}

func TestReconcileNoteOnlyDifferenceIsUpdate(t *testing.T) {
	// Identical occurrence keys with different notes must produce an
	// update, never a create+delete pair.
	master := []fleet.Unavailability{
		record("", "m1", ts(2025, 3, 1), ts(2025, 3, 3), "leave", "approved by HR"),
	}
	local := []fleet.Unavailability{
		record("u5", "l1", ts(2025, 3, 1), ts(2025, 3, 3), "leave", ""),
	}

	plan := Reconcile("l1", master, local, 2025)

	assert.Empty(t, plan.Creates)
	assert.Empty(t, plan.Deletes)
	require.Len(t, plan.Updates, 1)

	// The update preserves the local record ID and carries master fields.
	assert.Equal(t, "u5", plan.Updates[0].ID)
	assert.Equal(t, "approved by HR", plan.Updates[0].Note)
	assert.Equal(t, "l1", plan.Updates[0].ResourceID)
}

func TestReconcileUnchanged(t *testing.T) {
	master := []fleet.Unavailability{
		record("", "m1", ts(2025, 3, 1), ts(2025, 3, 3), "leave", "ok"),
	}
	local := []fleet.Unavailability{
		record("u5", "l1", ts(2025, 3, 1), ts(2025, 3, 3), "leave", "ok"),
	}

	plan := Reconcile("l1", master, local, 2025)

	assert.False(t, plan.HasChanges())
	assert.Equal(t, 1, plan.Unchanged)
}

func TestReconcileIdempotence(t *testing.T) {
	master := []fleet.Unavailability{
		record("", "m1", ts(2025, 1, 10), ts(2025, 1, 12), "maintenance", "a"),
		record("", "m1", ts(2025, 2, 10), ts(2025, 2, 12), "repair", "b"),
		record("", "m1", ts(2025, 3, 10), ts(2025, 3, 12), "leave", "c"),
	}

	first := Reconcile("l1", master, nil, 2025)
	require.Len(t, first.Creates, 3)

	// Simulate the creates having been applied: the store assigned IDs.
	applied := make([]fleet.Unavailability, len(first.Creates))
	for i, rec := range first.Creates {
		rec.ID = "assigned-" + rec.Reason
		applied[i] = rec
	}

	second := Reconcile("l1", master, applied, 2025)
	assert.Empty(t, second.Creates)
	assert.Empty(t, second.Updates)
	assert.Empty(t, second.Deletes)
	assert.Equal(t, len(master), second.Unchanged)
}

func TestReconcileDuplicateMasterRecordsCollapse(t *testing.T) {
	// The master feed may repeat an occurrence. Duplicates collapse to one
	// action; a store already holding the occurrence sees no changes, so
	// repeated runs converge instead of churning create+delete.
	dup := record("", "m1", ts(2025, 1, 1), ts(2025, 1, 5), "maintenance", "")
	master := []fleet.Unavailability{dup, dup}

	plan := Reconcile("l1", master, nil, 2025)
	require.Len(t, plan.Creates, 1)

	local := []fleet.Unavailability{
		record("u1", "l1", ts(2025, 1, 1), ts(2025, 1, 5), "maintenance", ""),
	}

	plan = Reconcile("l1", master, local, 2025)
	assert.Empty(t, plan.Creates)
	assert.Empty(t, plan.Updates)
	assert.Empty(t, plan.Deletes)
	assert.Equal(t, 1, plan.Unchanged)
}

func TestReconcileDeletionSafetyOutsideYear(t *testing.T) {
	// A local record starting outside the target year is out of the sync
	// window and must never be deleted, regardless of master content.
	local := []fleet.Unavailability{
		record("u1", "l1", ts(2024, 12, 20), ts(2024, 12, 22), "maintenance", ""),
		record("u2", "l1", ts(2025, 5, 1), ts(2025, 5, 2), "repair", ""),
		record("u3", "l1", ts(2026, 1, 1), ts(2026, 1, 2), "leave", ""),
	}

	plan := Reconcile("l1", nil, local, 2025)

	require.Len(t, plan.Deletes, 1)
	assert.Equal(t, "u2", plan.Deletes[0].ID)
}

func TestReconcileMasterOutsideYearIgnored(t *testing.T) {
	master := []fleet.Unavailability{
		record("", "m1", ts(2024, 6, 1), ts(2024, 6, 2), "maintenance", ""),
	}

	plan := Reconcile("l1", master, nil, 2025)
	assert.False(t, plan.HasChanges())
	assert.Equal(t, 0, plan.Unchanged)
}

func TestReconcileOrderingIsDeterministic(t *testing.T) {
	master := []fleet.Unavailability{
		record("", "m1", ts(2025, 4, 1), ts(2025, 4, 2), "a", ""),
		record("", "m1", ts(2025, 2, 1), ts(2025, 2, 2), "b", ""),
		record("", "m1", ts(2025, 3, 1), ts(2025, 3, 2), "c", ""),
	}
	local := []fleet.Unavailability{
		record("u1", "l1", ts(2025, 8, 1), ts(2025, 8, 2), "x", ""),
		record("u2", "l1", ts(2025, 7, 1), ts(2025, 7, 2), "y", ""),
	}

	plan := Reconcile("l1", master, local, 2025)

	// Creates follow master encounter order, deletes local encounter order.
	require.Len(t, plan.Creates, 3)
	assert.Equal(t, "a", plan.Creates[0].Reason)
	assert.Equal(t, "b", plan.Creates[1].Reason)
	assert.Equal(t, "c", plan.Creates[2].Reason)

	require.Len(t, plan.Deletes, 2)
	assert.Equal(t, "u1", plan.Deletes[0].ID)
	assert.Equal(t, "u2", plan.Deletes[1].ID)
}

func TestReconcileEndBeforeStartPassesThrough(t *testing.T) {
	// Malformed ranges are the data source's problem; the diff treats them
	// like any other occurrence.
	master := []fleet.Unavailability{
		record("", "m1", ts(2025, 5, 10), ts(2025, 5, 1), "maintenance", ""),
	}

	plan := Reconcile("l1", master, nil, 2025)
	require.Len(t, plan.Creates, 1)
}

func TestPlanSummary(t *testing.T) {
	plan := &Plan{Unchanged: 2}
	assert.Equal(t, "no changes (2 unchanged)", plan.Summary())

	plan.Creates = []fleet.Unavailability{{}}
	assert.Contains(t, plan.Summary(), "1 creates")
}
