package sync

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/dispatchware/fleetsync/pkg/match"
)

// Option configures a sync Service.
type Option func(*Service)

// WithYear sets the target calendar year. Defaults to the current UTC year.
func WithYear(year int) Option {
	return func(s *Service) {
		s.year = year
	}
}

// WithDryRun computes and reports the plan without applying writes.
func WithDryRun(dryRun bool) Option {
	return func(s *Service) {
		s.dryRun = dryRun
	}
}

// WithMatcher replaces the default resource matcher.
func WithMatcher(m *match.Matcher) Option {
	return func(s *Service) {
		s.matcher = m
	}
}

// WithLogger sets the logger for the run.
func WithLogger(logger *zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// currentYear returns the current calendar year in UTC.
func currentYear() int {
	return time.Now().UTC().Year()
}
