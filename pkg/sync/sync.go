// Package sync drives a full reconciliation run: it loads the resource sets
// of both environments, matches them once, reconciles each matched pair and
// applies the resulting actions to the local store, aggregating per-resource
// and per-action statistics. Individual failures are isolated so one bad
// record never aborts the run; only authentication failures and a failure to
// list either environment's resources are fatal.
package sync

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/dispatchware/fleetsync/pkg/errors"
	"github.com/dispatchware/fleetsync/pkg/fleet"
	"github.com/dispatchware/fleetsync/pkg/logging"
	"github.com/dispatchware/fleetsync/pkg/match"
	"github.com/dispatchware/fleetsync/pkg/reconcile"
)

// ResourceLister lists the full resource set of one environment. A failure
// here is fatal for the run: no partial resource list is usable for
// matching.
type ResourceLister interface {
	ListResources(ctx context.Context) ([]fleet.Resource, error)
}

// UnavailabilityReader reads the unavailability records of one resource,
// scoped to the target calendar year.
type UnavailabilityReader interface {
	ListUnavailabilities(ctx context.Context, resourceID string, year int) ([]fleet.Unavailability, error)
}

// UnavailabilityWriter applies reconciliation actions to the local store.
// Create returns the record with its store-assigned ID.
type UnavailabilityWriter interface {
	CreateUnavailability(ctx context.Context, u fleet.Unavailability) (fleet.Unavailability, error)
	UpdateUnavailability(ctx context.Context, u fleet.Unavailability) (fleet.Unavailability, error)
	DeleteUnavailability(ctx context.Context, resourceID, id string) error
}

// MasterSource is the read-only view of the master environment.
type MasterSource interface {
	ResourceLister
	UnavailabilityReader
}

// LocalStore is the read-write view of the local environment being
// converged to the master.
type LocalStore interface {
	ResourceLister
	UnavailabilityReader
	UnavailabilityWriter
}

// Service orchestrates one sync run. Runs are sequential: each matched pair
// is processed to completion before the next; the only shared state is the
// stats accumulator, owned exclusively by the service.
type Service struct {
	master  MasterSource
	local   LocalStore
	matcher *match.Matcher
	year    int
	dryRun  bool
	logger  *zerolog.Logger
}

// New creates a sync service for the given environments.
func New(master MasterSource, local LocalStore, opts ...Option) *Service {
	s := &Service{
		master: master,
		local:  local,
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.year == 0 {
		s.year = currentYear()
	}
	if s.matcher == nil {
		s.matcher = match.New(match.WithLogger(s.logger))
	}
	return s
}

// Run executes the sync: fetch both resource sets, match once, then
// reconcile and apply each matched pair. The run completes after all matched
// pairs have been attempted once; a retried run reprocesses everything and
// relies on the idempotent key diff to avoid duplicate side effects.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	ctx = logging.WithLogger(ctx, s.logger)

	masterResources, err := s.master.ListResources(ctx)
	if err != nil {
		return nil, errors.WrapResource("list", "resource", "master", err)
	}
	s.logger.Info().Int("count", len(masterResources)).Msg("Fetched master resources")

	localResources, err := s.local.ListResources(ctx)
	if err != nil {
		return nil, errors.WrapResource("list", "resource", "local", err)
	}
	s.logger.Info().Int("count", len(localResources)).Msg("Fetched local resources")

	matches := s.matcher.Match(masterResources, localResources)

	result := &Result{
		Year:             s.year,
		DryRun:           s.dryRun,
		TotalResources:   matches.Matched() + len(matches.Unmatched),
		MatchedResources: matches.Matched(),
	}

	for _, pair := range matches.Pairs {
		s.syncPair(ctx, pair, &result.Stats)
	}

	s.logger.Info().
		Int("created", result.Stats.Created).
		Int("updated", result.Stats.Updated).
		Int("deleted", result.Stats.Deleted).
		Int("unchanged", result.Stats.Unchanged).
		Int("errors", result.Stats.Errors).
		Msg("Sync complete")

	return result, nil
}

// syncPair reconciles and applies one matched pair. The pair's identity
// travels in the context logger so downstream clients log with it too.
// Failures are recorded in stats and logged; they never propagate.
func (s *Service) syncPair(ctx context.Context, pair match.Pair, stats *Stats) {
	ctx = logging.WithField(ctx, "master_id", pair.MasterID)
	ctx = logging.WithResource(ctx, pair.LocalID)
	logger := logging.Ctx(ctx)

	masterRecords, err := s.master.ListUnavailabilities(ctx, pair.MasterID, s.year)
	if err != nil {
		stats.Errors++
		logger.Error().Err(err).Msg("Failed to fetch master unavailabilities")
		return
	}

	localRecords, err := s.local.ListUnavailabilities(ctx, pair.LocalID, s.year)
	if err != nil {
		stats.Errors++
		logger.Error().Err(err).Msg("Failed to fetch local unavailabilities")
		return
	}

	plan := reconcile.Reconcile(pair.LocalID, masterRecords, localRecords, s.year)
	stats.Unchanged += plan.Unchanged

	if s.dryRun {
		stats.Created += len(plan.Creates)
		stats.Updated += len(plan.Updates)
		stats.Deleted += len(plan.Deletes)
		if plan.HasChanges() {
			logger.Info().Str("plan", plan.Summary()).Msg("Dry run, not applying")
		}
		return
	}

	s.apply(ctx, pair, plan, stats)
}

// apply executes the plan's actions in creates, updates, deletes order.
// A rejected action increments errors and does not roll back actions
// already applied for the same pair.
func (s *Service) apply(ctx context.Context, pair match.Pair, plan *reconcile.Plan, stats *Stats) {
	logger := logging.Ctx(ctx)

	for _, rec := range plan.Creates {
		created, err := s.local.CreateUnavailability(logging.WithOperation(ctx, "create"), rec)
		if err != nil {
			stats.Errors++
			logger.Error().Err(errors.NewSyncError(pair.LocalID, "create", err)).Msg("Create rejected")
			continue
		}
		stats.Created++
		logger.Debug().
			Str("id", created.ID).
			Time("start", rec.Start.Time).
			Time("end", rec.End.Time).
			Msg("Created unavailability")
	}

	for _, rec := range plan.Updates {
		if _, err := s.local.UpdateUnavailability(logging.WithOperation(ctx, "update"), rec); err != nil {
			stats.Errors++
			logger.Error().Err(errors.NewSyncError(pair.LocalID, "update", err)).Msg("Update rejected")
			continue
		}
		stats.Updated++
		logger.Debug().Str("id", rec.ID).Msg("Updated unavailability")
	}

	for _, rec := range plan.Deletes {
		if err := s.local.DeleteUnavailability(logging.WithOperation(ctx, "delete"), rec.ResourceID, rec.ID); err != nil {
			stats.Errors++
			logger.Error().Err(errors.NewSyncError(pair.LocalID, "delete", err)).Msg("Delete rejected")
			continue
		}
		stats.Deleted++
		logger.Debug().Str("id", rec.ID).Msg("Deleted unavailability")
	}
}
