package match

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/dispatchware/fleetsync/pkg/fleet"
)

// Strategy attempts to find the local counterpart of a master resource among
// the not-yet-claimed candidates. Strategies are evaluated in a fixed
// priority order reflecting match confidence, not discovery order.
type Strategy interface {
	// Name identifies the strategy in logs.
	Name() string

	// Match returns the first candidate the strategy considers the same
	// real-world entity as master, and whether one was found.
	Match(master fleet.Resource, candidates []fleet.Resource) (fleet.Resource, bool)
}

// CustomFieldStrategy matches on designated custom fields. These fields are
// deliberately synchronized external keys, so this is the highest-confidence
// strategy. Comparison is exact and case-sensitive.
type CustomFieldStrategy struct {
	// Keys are the custom field names that participate, in priority order.
	Keys []string
}

// Name implements the Strategy interface.
func (s *CustomFieldStrategy) Name() string { return "custom-fields" }

// Match implements the Strategy interface.
func (s *CustomFieldStrategy) Match(master fleet.Resource, candidates []fleet.Resource) (fleet.Resource, bool) {
	for _, key := range s.Keys {
		value := master.CustomField(key)
		if value == "" {
			continue
		}
		for _, c := range candidates {
			if c.CustomField(key) == value {
				return c, true
			}
		}
	}
	return fleet.Resource{}, false
}

// PlateStrategy matches on normalized license plates: uppercase with
// whitespace and punctuation stripped, so "ABC-123" matches "abc 123".
type PlateStrategy struct{}

// Name implements the Strategy interface.
func (s *PlateStrategy) Name() string { return "license-plate" }

// Match implements the Strategy interface.
func (s *PlateStrategy) Match(master fleet.Resource, candidates []fleet.Resource) (fleet.Resource, bool) {
	plate := master.NormalizedPlate()
	if plate == "" {
		return fleet.Resource{}, false
	}
	for _, c := range candidates {
		if c.NormalizedPlate() == plate {
			return c, true
		}
	}
	return fleet.Resource{}, false
}

// NameStrategy matches on display names after trimming and Unicode case
// folding. Lowest confidence; used only when the stronger strategies fail.
type NameStrategy struct{}

// Name implements the Strategy interface.
func (s *NameStrategy) Name() string { return "name" }

// Match implements the Strategy interface.
func (s *NameStrategy) Match(master fleet.Resource, candidates []fleet.Resource) (fleet.Resource, bool) {
	name := foldName(master.Name)
	if name == "" {
		return fleet.Resource{}, false
	}
	for _, c := range candidates {
		if foldName(c.Name) == name {
			return c, true
		}
	}
	return fleet.Resource{}, false
}

var folder = cases.Fold()

// foldName canonicalizes a display name for case-insensitive comparison.
func foldName(name string) string {
	return folder.String(strings.TrimSpace(name))
}
