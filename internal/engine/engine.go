package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/seojedaperez/ignismap-engine/internal/domain"
	"github.com/seojedaperez/ignismap-engine/internal/observability"
)

// SnapshotProvider fetches fresh environmental conditions for a location.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, location domain.GeoPoint) (domain.EnvironmentalSnapshot, error)
}

// SnapshotCache stores the last known snapshot per location so analyses
// can degrade instead of failing during provider outages.
type SnapshotCache interface {
	Get(ctx context.Context, location domain.GeoPoint) (domain.EnvironmentalSnapshot, bool, error)
	Put(ctx context.Context, location domain.GeoPoint, snap domain.EnvironmentalSnapshot) error
}

// ZoneProvider resolves the facility and population context around a
// location.
type ZoneProvider interface {
	Zone(ctx context.Context, location domain.GeoPoint) (domain.ZoneContext, error)
}

// Publisher emits completed analysis bundles to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, bundle AnalysisBundle) error
}

// AnalysisBundle is the complete output of one analysis: every module's
// result plus the degradation trail that explains the confidence.
type AnalysisBundle struct {
	Observation  domain.FireObservation       `json:"observation"`
	Role         domain.OrganizationRole      `json:"role"`
	Snapshot     domain.EnvironmentalSnapshot `json:"snapshot"`
	Risk         domain.RiskAssessment        `json:"risk"`
	Spread       domain.SpreadPrediction      `json:"spread"`
	Wind         domain.WindProfile           `json:"wind"`
	Plan         domain.TacticalPlan          `json:"plan"`
	Catalog      []domain.StrategyEntry       `json:"catalog"`
	AttackAngles []domain.AttackAngle         `json:"attack_angles"`
	Warnings     []string                     `json:"warnings,omitempty"`
	GeneratedAt  time.Time                    `json:"generated_at"`
	Confidence   float64                      `json:"confidence"`
}

// zeroSnapshotQuality marks an analysis that ran with no environmental
// data at all: provider down and nothing cached.
const zeroSnapshotQuality = 0.2

// Engine wires the four computation modules to the data collaborators
// and runs them with the documented concurrency shape: risk and wind in
// parallel once the snapshot is in, spread after risk, plan as the
// synchronization point.
type Engine struct {
	scorer    *domain.Scorer
	predictor *domain.Predictor
	analyzer  *domain.WindAnalyzer
	planner   *domain.Planner

	snapshots SnapshotProvider
	cache     SnapshotCache
	zones     ZoneProvider
	publisher Publisher

	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// Options are the optional collaborators. Nil fields disable the
// corresponding degradation or publishing path.
type Options struct {
	Cache     SnapshotCache
	Publisher Publisher
}

// New creates an Engine over the given collaborators and doctrine.
func New(snapshots SnapshotProvider, zones ZoneProvider, doctrine *domain.Doctrine, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Engine {
	return &Engine{
		scorer:    domain.NewScorer(),
		predictor: domain.NewPredictor(),
		analyzer:  domain.NewWindAnalyzer(),
		planner:   domain.NewPlanner(doctrine),
		snapshots: snapshots,
		cache:     opts.Cache,
		zones:     zones,
		publisher: opts.Publisher,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once the engine has completed at least one
// analysis, or an error describing why the service is not yet ready.
func (e *Engine) CheckReadiness(_ context.Context) error {
	if !e.ready.Load() {
		return errors.New("engine has not completed any analysis yet")
	}
	return nil
}

// Analyze runs the full module chain for one observation and role.
// Collaborator outages degrade the result and lower its confidence;
// only an invalid observation fails the analysis outright.
func (e *Engine) Analyze(ctx context.Context, obs domain.FireObservation, role domain.OrganizationRole) (AnalysisBundle, error) {
	start := time.Now()
	normalized := domain.ParseRole(string(role))

	bundle, err := e.analyze(ctx, obs, normalized)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	e.metrics.AnalysesTotal.WithLabelValues(string(normalized), outcome).Inc()
	e.metrics.AnalysisDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		e.logger.Error("analysis failed", "observation_id", obs.ID, "role", normalized, "error", err)
		return AnalysisBundle{}, err
	}

	e.ready.Store(true)
	e.metrics.EngineReady.Set(1)
	e.logger.Info("analysis complete",
		"observation_id", obs.ID,
		"role", normalized,
		"magnitude", bundle.Risk.MagnitudeScore,
		"danger", bundle.Risk.DangerScore,
		"spread_kmh", bundle.Spread.SpeedKmh,
		"confidence", bundle.Confidence,
		"warnings", len(bundle.Warnings),
	)

	e.publish(ctx, bundle)
	return bundle, nil
}

func (e *Engine) analyze(ctx context.Context, obs domain.FireObservation, role domain.OrganizationRole) (AnalysisBundle, error) {
	if err := obs.Validate(); err != nil {
		return AnalysisBundle{}, err
	}

	snap, warnings := e.resolveSnapshot(ctx, obs.Location)

	// Zone resolution and wind analysis are independent of risk; run
	// them alongside the risk→spread chain.
	var (
		wg      sync.WaitGroup
		zone    domain.ZoneContext
		zoneErr error
		wind    domain.WindProfile
		windErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		zone, zoneErr = e.resolveZone(ctx, obs.Location)
	}()
	go func() {
		defer wg.Done()
		windStart := time.Now()
		wind, windErr = e.analyzer.Analyze(snap, obs.Location)
		e.metrics.ModuleDuration.WithLabelValues("wind").Observe(time.Since(windStart).Seconds())
	}()

	riskStart := time.Now()
	risk, riskErr := e.scorer.Score(obs, snap)
	e.metrics.ModuleDuration.WithLabelValues("risk").Observe(time.Since(riskStart).Seconds())

	var (
		spread    domain.SpreadPrediction
		spreadErr error
	)
	if riskErr == nil {
		spreadStart := time.Now()
		spread, spreadErr = e.predictor.Predict(obs, snap, risk)
		e.metrics.ModuleDuration.WithLabelValues("spread").Observe(time.Since(spreadStart).Seconds())
	}

	wg.Wait()

	// The snapshot validated before the fan-out, so module errors here
	// mean the observation itself is unusable.
	if riskErr != nil {
		return AnalysisBundle{}, riskErr
	}
	if spreadErr != nil {
		return AnalysisBundle{}, spreadErr
	}
	if windErr != nil {
		return AnalysisBundle{}, windErr
	}

	if zoneErr != nil {
		e.logger.Warn("zone context unavailable, planning without facility data",
			"lat", obs.Location.Lat, "lon", obs.Location.Lon, "error", zoneErr)
		warnings = append(warnings, "facility data unavailable; plan carries no water sources, civilian areas, or shelters")
		zone = domain.ZoneContext{}
	}
	if wind.Degraded {
		warnings = append(warnings, "hourly wind series unavailable; forecast synthesized from current conditions")
	}
	for _, change := range wind.CriticalChanges {
		e.metrics.CriticalChanges.WithLabelValues(change.Trigger).Inc()
	}

	planStart := time.Now()
	plan, err := e.planner.GeneratePlan(obs, zone, domain.PlanInputs{Risk: risk, Spread: spread, Wind: wind}, role)
	e.metrics.ModuleDuration.WithLabelValues("plan").Observe(time.Since(planStart).Seconds())
	if err != nil {
		return AnalysisBundle{}, err
	}

	return AnalysisBundle{
		Observation:  obs,
		Role:         plan.Role,
		Snapshot:     snap,
		Risk:         risk,
		Spread:       spread,
		Wind:         wind,
		Plan:         plan,
		Catalog:      e.planner.StrategyCatalog(obs.Location, wind, spread, risk),
		AttackAngles: e.analyzer.OptimalAttackAngles(wind.Current),
		Warnings:     warnings,
		GeneratedAt:  plan.GeneratedAt,
		Confidence:   plan.Confidence,
	}, nil
}

// resolveSnapshot runs the degradation ladder: fresh provider data,
// then the last known snapshot marked stale, then a zero-value snapshot
// that keeps the geometry-only outputs usable.
func (e *Engine) resolveSnapshot(ctx context.Context, location domain.GeoPoint) (domain.EnvironmentalSnapshot, []string) {
	snap, err := e.fetchSnapshot(ctx, location)
	if err == nil {
		if e.cache != nil {
			if cacheErr := e.cache.Put(ctx, location, snap); cacheErr != nil {
				e.logger.Warn("snapshot cache write failed", "error", cacheErr)
			}
		}
		return snap, nil
	}

	if e.cache != nil {
		cached, ok, cacheErr := e.cache.Get(ctx, location)
		if cacheErr != nil {
			e.logger.Warn("snapshot cache read failed", "error", cacheErr)
		}
		if ok {
			unavailable := &domain.DataUnavailableError{Source: "weather provider", Fallback: "last known snapshot", Err: err}
			e.logger.Warn("using cached snapshot", "lat", location.Lat, "lon", location.Lon, "error", unavailable)
			e.metrics.SnapshotFallbacks.WithLabelValues("cache").Inc()

			cached.Stale = true
			cached.Quality = cached.EffectiveQuality() * 0.8
			return cached, []string{unavailable.Error()}
		}
	}

	unavailable := &domain.DataUnavailableError{Source: "weather provider", Fallback: "zero-value snapshot", Err: err}
	e.logger.Warn("no environmental data available", "lat", location.Lat, "lon", location.Lon, "error", unavailable)
	e.metrics.SnapshotFallbacks.WithLabelValues("zero_value").Inc()

	return domain.EnvironmentalSnapshot{
		Location:   location,
		CapturedAt: time.Now().UTC(),
		Quality:    zeroSnapshotQuality,
		Stale:      true,
	}, []string{unavailable.Error()}
}

// fetchSnapshot guards against a provider returning readings the
// modules would reject; an invalid snapshot is an outage.
func (e *Engine) fetchSnapshot(ctx context.Context, location domain.GeoPoint) (domain.EnvironmentalSnapshot, error) {
	start := time.Now()
	snap, err := e.snapshots.Snapshot(ctx, location)
	e.metrics.ProviderDuration.WithLabelValues("weather").Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.EnvironmentalSnapshot{}, err
	}
	if err := snap.Validate(); err != nil {
		return domain.EnvironmentalSnapshot{}, err
	}
	return snap, nil
}

func (e *Engine) resolveZone(ctx context.Context, location domain.GeoPoint) (domain.ZoneContext, error) {
	start := time.Now()
	zone, err := e.zones.Zone(ctx, location)
	e.metrics.ProviderDuration.WithLabelValues("facilities").Observe(time.Since(start).Seconds())
	return zone, err
}

// publish sends the bundle to the sink, best effort. A broker outage
// must never fail an analysis the caller is waiting on.
func (e *Engine) publish(ctx context.Context, bundle AnalysisBundle) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, bundle); err != nil {
		e.logger.Error("bundle publish failed", "observation_id", bundle.Observation.ID, "error", err)
		e.metrics.PublishOutcomes.WithLabelValues("error").Inc()
		return
	}
	e.metrics.PublishOutcomes.WithLabelValues("success").Inc()
}

// RefreshSnapshot fetches and caches conditions for a watched location.
// Used by the scheduler so a later provider outage still finds a recent
// snapshot in the cache.
func (e *Engine) RefreshSnapshot(ctx context.Context, location domain.GeoPoint) error {
	snap, err := e.fetchSnapshot(ctx, location)
	if err != nil {
		return err
	}
	if e.cache == nil {
		return nil
	}
	return e.cache.Put(ctx, location, snap)
}
