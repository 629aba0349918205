// Package scheduler keeps the snapshot cache warm for watched
// locations, so a provider outage during a real incident still finds
// recent conditions to fall back on.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/seojedaperez/ignismap-engine/internal/config"
	"github.com/seojedaperez/ignismap-engine/internal/domain"
)

// SnapshotRefresher is the engine operation the scheduler drives.
type SnapshotRefresher interface {
	RefreshSnapshot(ctx context.Context, location domain.GeoPoint) error
}

// refreshTimeout bounds one full pass over the watched locations.
const refreshTimeout = 2 * time.Minute

// Refresher periodically refreshes snapshots for the configured
// watched locations.
type Refresher struct {
	cron      *cron.Cron
	refresher SnapshotRefresher
	locations []config.WatchedLocation
	logger    *slog.Logger
}

// New creates a Refresher; Start must be called to begin scheduling.
func New(refresher SnapshotRefresher, locations []config.WatchedLocation, logger *slog.Logger) *Refresher {
	return &Refresher{
		cron:      cron.New(),
		refresher: refresher,
		locations: locations,
		logger:    logger,
	}
}

// Start registers the refresh job under the given cron spec and starts
// the scheduler. With no watched locations there is nothing to do.
func (r *Refresher) Start(spec string) error {
	if len(r.locations) == 0 {
		r.logger.Info("no watched locations, snapshot refresh disabled")
		return nil
	}

	if _, err := r.cron.AddFunc(spec, r.RefreshAll); err != nil {
		return err
	}
	r.cron.Start()
	r.logger.Info("snapshot refresh scheduled", "spec", spec, "locations", len(r.locations))
	return nil
}

// Stop halts scheduling and waits for a running pass to finish.
func (r *Refresher) Stop() {
	<-r.cron.Stop().Done()
}

// RefreshAll runs one pass over every watched location. Failures are
// logged per location; one unreachable cell must not starve the rest.
func (r *Refresher) RefreshAll() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	var failed int
	for _, loc := range r.locations {
		point := domain.GeoPoint{Lat: loc.Lat, Lon: loc.Lon}
		if err := r.refresher.RefreshSnapshot(ctx, point); err != nil {
			failed++
			r.logger.Warn("snapshot refresh failed", "lat", loc.Lat, "lon", loc.Lon, "error", err)
		}
	}
	r.logger.Debug("snapshot refresh pass complete", "locations", len(r.locations), "failed", failed)
}
