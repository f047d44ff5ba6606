// Package fleet defines the domain types shared across the fleetsync system:
// resources (drivers, trucks, trailers) and their unavailability records.
// Values of these types are read-only snapshots fetched once per sync run;
// they are compared, never mutated in place.
package fleet

import (
	"strings"
	"unicode"
)

// Resource is the identity anchor for matching. A resource lives in exactly
// one environment; its ID is scoped to that environment, so the same
// real-world entity carries different IDs on the master and local sides.
type Resource struct {
	// ID is the environment-scoped identifier of the resource.
	ID string

	// Name is the display name, used as a last-resort match key.
	Name string

	// LicensePlate is the raw license plate string, if the resource has
	// a vehicle attached. May be empty.
	LicensePlate string

	// CustomFields holds deliberately synchronized external keys such as
	// an employee number or fleet number. Compared with exact string
	// equality during matching.
	CustomFields map[string]string
}

// CustomField returns the value of a custom field, or "" when unset.
func (r Resource) CustomField(key string) string {
	if r.CustomFields == nil {
		return ""
	}
	return r.CustomFields[key]
}

// NormalizedPlate returns the license plate in canonical form: uppercase
// with all whitespace and punctuation stripped. Returns "" when the
// resource has no plate.
func (r Resource) NormalizedPlate() string {
	return NormalizePlate(r.LicensePlate)
}

// NormalizePlate canonicalizes a license plate string so that plates
// recorded with different spacing or separators still compare equal
// ("ABC-123" and "abc 123" both normalize to "ABC123").
func NormalizePlate(plate string) string {
	var b strings.Builder
	b.Grow(len(plate))
	for _, r := range plate {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}
