package fleet

import (
	"github.com/agentstation/utc"
)

// Unavailability is a time-bounded record of a resource being unavailable.
// Records fetched from the local environment carry the ID assigned by that
// store; records built from master data have no ID until they are created
// on the local side.
type Unavailability struct {
	// ID is the local-store identifier. Empty for records that have not
	// been created on the local side yet.
	ID string

	// ResourceID identifies the resource the record belongs to, scoped to
	// the environment the record lives in.
	ResourceID string

	// Start and End bound the unavailability window.
	Start utc.Time
	End   utc.Time

	// Reason is the unavailability type tag (e.g. "maintenance", "leave").
	Reason string

	// Note is free-form metadata. The only mutable field outside the
	// occurrence key; a note difference alone triggers an update.
	Note string
}

// Key identifies "the same occurrence" of an unavailability across the two
// environments. The local-store ID is deliberately excluded: master records
// never carry one.
type Key struct {
	ResourceID string
	Start      int64 // Unix seconds, UTC
	End        int64
	Reason     string
}

// Key returns the occurrence equality key for the record.
func (u Unavailability) Key() Key {
	return Key{
		ResourceID: u.ResourceID,
		Start:      u.Start.Unix(),
		End:        u.End.Unix(),
		Reason:     u.Reason,
	}
}

// InYear reports whether the record is in scope for a sync run targeting
// the given calendar year. The start date is the sole inclusion test;
// records spanning the year boundary are in scope iff they start in it.
func (u Unavailability) InYear(year int) bool {
	return u.Start.Year() == year
}

// Differs reports whether the record's mutable fields differ from other.
// Both records are assumed to share the same occurrence key, so only the
// fields outside the key participate.
func (u Unavailability) Differs(other Unavailability) bool {
	return u.Note != other.Note
}

// FilterYear returns the records whose start date falls in the given year,
// preserving input order.
func FilterYear(records []Unavailability, year int) []Unavailability {
	filtered := make([]Unavailability, 0, len(records))
	for _, r := range records {
		if r.InYear(year) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}
