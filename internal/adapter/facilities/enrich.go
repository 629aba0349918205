package facilities

import (
	"context"
	"log/slog"

	"github.com/seojedaperez/ignismap-engine/internal/domain"
)

// WeatherProvider is the upstream snapshot source the enricher wraps.
type WeatherProvider interface {
	Snapshot(ctx context.Context, location domain.GeoPoint) (domain.EnvironmentalSnapshot, error)
}

// EnrichedProvider composes a weather provider with a facility survey:
// the weather snapshot gets its exposure indices filled in so the
// danger score has something to work with. A failed survey degrades to
// zero exposure instead of failing the snapshot.
type EnrichedProvider struct {
	weather    WeatherProvider
	facilities Surveyor
	logger     *slog.Logger
}

// NewEnrichedProvider wraps a weather provider with facility-derived
// exposure enrichment.
func NewEnrichedProvider(weather WeatherProvider, facilities Surveyor, logger *slog.Logger) *EnrichedProvider {
	return &EnrichedProvider{
		weather:    weather,
		facilities: facilities,
		logger:     logger,
	}
}

func (p *EnrichedProvider) Snapshot(ctx context.Context, location domain.GeoPoint) (domain.EnvironmentalSnapshot, error) {
	snap, err := p.weather.Snapshot(ctx, location)
	if err != nil {
		return domain.EnvironmentalSnapshot{}, err
	}

	_, exposure, err := p.facilities.Survey(ctx, location)
	if err != nil {
		p.logger.Warn("exposure enrichment unavailable, danger score degrades to zero exposure",
			"lat", location.Lat, "lon", location.Lon, "error", err)
		return snap, nil
	}

	snap.Exposure = exposure
	return snap, nil
}
