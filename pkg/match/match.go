// Package match implements the resource matching engine. It establishes a
// correspondence between master and local resources that share no primary
// key, by evaluating a prioritized chain of matching strategies: deliberately
// synchronized custom fields first, then normalized license plates, then
// display names.
//
// Matching is injective: once a local resource is claimed it is removed from
// consideration for subsequent master resources, so no local resource is
// matched twice in a run.
package match

import (
	"github.com/rs/zerolog"

	"github.com/dispatchware/fleetsync/pkg/fleet"
	"github.com/dispatchware/fleetsync/pkg/logging"
)

// Pair is a matched master/local resource pair referring to the same
// real-world entity.
type Pair struct {
	MasterID string
	LocalID  string
}

// Result is the outcome of matching one master resource set against one
// local resource set.
type Result struct {
	// Pairs holds the matched pairs in master input order.
	Pairs []Pair

	// Unmatched holds the IDs of master resources no strategy could match.
	// An unmatched resource is an expected, reportable outcome, not an error.
	Unmatched []string
}

// LocalFor returns the local resource ID matched to the given master
// resource, if any.
func (r *Result) LocalFor(masterID string) (string, bool) {
	for _, p := range r.Pairs {
		if p.MasterID == masterID {
			return p.LocalID, true
		}
	}
	return "", false
}

// Matched returns the number of matched pairs.
func (r *Result) Matched() int {
	return len(r.Pairs)
}

// Matcher matches master resources against local resources using an ordered
// strategy chain. Strategies are plain values in a slice; new ones append
// without touching the driver.
type Matcher struct {
	strategies []Strategy
	logger     *zerolog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithStrategies replaces the default strategy chain. Order is priority
// order: the first strategy that finds a candidate wins.
func WithStrategies(strategies ...Strategy) Option {
	return func(m *Matcher) {
		m.strategies = strategies
	}
}

// WithRules builds the default strategy chain from the given rules.
func WithRules(rules *Rules) Option {
	return func(m *Matcher) {
		m.strategies = rules.Strategies()
	}
}

// WithLogger sets the logger used for per-strategy debug output.
func WithLogger(logger *zerolog.Logger) Option {
	return func(m *Matcher) {
		m.logger = logger
	}
}

// New creates a Matcher. Without options it uses the default rules:
// custom fields (employeenumber, fleetno), then license plate, then name.
func New(opts ...Option) *Matcher {
	m := &Matcher{
		strategies: DefaultRules().Strategies(),
		logger:     logging.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match evaluates every master resource against the unclaimed local
// resources, first strategy to succeed wins. Duplicate IDs on either side:
// the first occurrence takes the slot, later duplicates are ignored.
func (m *Matcher) Match(master, local []fleet.Resource) *Result {
	result := &Result{}

	candidates := dedupe(local)
	seen := make(map[string]bool, len(master))

	for _, res := range master {
		if res.ID == "" || seen[res.ID] {
			continue
		}
		seen[res.ID] = true

		matched := false
		for _, strategy := range m.strategies {
			hit, ok := strategy.Match(res, candidates)
			if !ok {
				continue
			}

			result.Pairs = append(result.Pairs, Pair{MasterID: res.ID, LocalID: hit.ID})
			candidates = unclaim(candidates, hit.ID)
			matched = true

			m.logger.Debug().
				Str("strategy", strategy.Name()).
				Str("master_id", res.ID).
				Str("local_id", hit.ID).
				Msg("Matched resource")
			break
		}

		if !matched {
			result.Unmatched = append(result.Unmatched, res.ID)
			m.logger.Warn().
				Str("master_id", res.ID).
				Str("name", res.Name).
				Msg("No match found for resource")
		}
	}

	m.logger.Info().
		Int("matched", len(result.Pairs)).
		Int("total", len(seen)).
		Msg("Resource matching complete")

	return result
}

// dedupe removes later duplicates by ID, preserving order.
func dedupe(resources []fleet.Resource) []fleet.Resource {
	out := make([]fleet.Resource, 0, len(resources))
	seen := make(map[string]bool, len(resources))
	for _, r := range resources {
		if r.ID == "" || seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	return out
}

// unclaim removes the claimed resource from the candidate set.
func unclaim(candidates []fleet.Resource, id string) []fleet.Resource {
	out := candidates[:0]
	for _, c := range candidates {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}
