package facilities

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seojedaperez/ignismap-engine/internal/domain"
	"github.com/seojedaperez/ignismap-engine/internal/observability"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testElements() []element {
	return []element{
		{Type: "node", Lat: 39.46, Lon: -0.37, Tags: map[string]string{"emergency": "fire_hydrant"}},
		{Type: "way", Center: &center{Lat: 39.50, Lon: -0.38}, Tags: map[string]string{"natural": "water", "name": "north pond"}},
		{Type: "way", Center: &center{Lat: 39.48, Lon: -0.35}, Tags: map[string]string{"waterway": "river", "name": "Turia"}},
		{Type: "way", Center: &center{Lat: 39.47, Lon: -0.39}, Tags: map[string]string{"amenity": "hospital", "name": "valley hospital", "population": "400"}},
		{Type: "way", Center: &center{Lat: 39.45, Lon: -0.36}, Tags: map[string]string{"amenity": "school", "name": "hillside school"}},
		{Type: "way", Center: &center{Lat: 39.44, Lon: -0.38}, Tags: map[string]string{"amenity": "social_facility", "name": "care home"}},
		{Type: "way", Center: &center{Lat: 39.46, Lon: -0.40}, Tags: map[string]string{"landuse": "residential", "name": "riverside homes", "population": "1200"}},
		{Type: "node", Lat: 39.44, Lon: -0.40, Tags: map[string]string{"emergency": "assembly_point", "name": "sports hall"}},
		{Type: "relation", Center: &center{Lat: 39.52, Lon: -0.42}, Tags: map[string]string{"boundary": "protected_area", "name": "Albufera"}},
		{Type: "way", Center: &center{Lat: 39.51, Lon: -0.41}, Tags: map[string]string{"landuse": "forest"}},
	}
}

func TestClient_Survey_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		query := r.Form.Get("data")
		assert.Contains(t, query, "fire_hydrant")
		assert.Contains(t, query, "around:15000")

		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(overpassResponse{Elements: testElements()}))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 15, 5*time.Second, discardLogger())
	zone, exposure, err := c.Survey(context.Background(), domain.GeoPoint{Lat: 39.47, Lon: -0.38})
	require.NoError(t, err)

	require.Len(t, zone.WaterSources, 3)
	assert.Equal(t, "Turia", zone.WaterSources[2].Name)
	assert.Equal(t, "river", zone.WaterSources[2].Type)

	require.Len(t, zone.CivilianAreas, 4)
	byName := make(map[string]domain.CivilianArea)
	for _, area := range zone.CivilianAreas {
		byName[area.Name] = area
	}
	assert.Equal(t, 5, byName["valley hospital"].EvacuationPriority)
	assert.True(t, byName["valley hospital"].SpecialNeeds)
	assert.Equal(t, 400, byName["valley hospital"].Population, "OSM population tag wins over the default")
	assert.Equal(t, 500, byName["hillside school"].Population, "default fills a missing tag")
	assert.Equal(t, 1200, byName["riverside homes"].Population)

	require.Len(t, zone.Shelters, 1)
	assert.Equal(t, "sports hall", zone.Shelters[0].Name)
	assert.Equal(t, 1.0, zone.Quality)

	assert.Greater(t, exposure.PopulationDensity, 0.0)
	assert.Greater(t, exposure.InfrastructureIndex, 0.0)
	assert.LessOrEqual(t, exposure.InfrastructureIndex, 1.0)
	assert.Greater(t, exposure.EnvironmentalValue, 0.0, "protected area and forest must register")
}

func TestClient_Survey_WayLocationUsesCenter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(overpassResponse{Elements: []element{
			{Type: "way", Center: &center{Lat: 39.50, Lon: -0.38}, Tags: map[string]string{"natural": "water"}},
		}}))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 15, 5*time.Second, discardLogger())
	zone, err := c.Zone(context.Background(), domain.GeoPoint{Lat: 39.47, Lon: -0.38})
	require.NoError(t, err)

	require.Len(t, zone.WaterSources, 1)
	assert.Equal(t, domain.GeoPoint{Lat: 39.50, Lon: -0.38}, zone.WaterSources[0].Location)
}

func TestClient_Survey_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 15, 5*time.Second, discardLogger())
	_, _, err := c.Survey(context.Background(), domain.GeoPoint{Lat: 39.47, Lon: -0.38})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "504")
}

func TestCachedClient_SharesOneRoundTrip(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(overpassResponse{Elements: testElements()}))
	}))
	defer srv.Close()

	cached := NewCachedClient(NewClient(srv.URL, 15, 5*time.Second, discardLogger()), 10, observability.NewMetricsForTesting())

	loc := domain.GeoPoint{Lat: 39.47, Lon: -0.38}
	_, _, err := cached.Survey(context.Background(), loc)
	require.NoError(t, err)

	// A detection a few hundred meters away lands in the same cell.
	nearby := domain.GeoPoint{Lat: 39.472, Lon: -0.379}
	zone, err := cached.Zone(context.Background(), nearby)
	require.NoError(t, err)
	assert.NotEmpty(t, zone.WaterSources)

	assert.Equal(t, int32(1), calls.Load())
}

func TestCachedClient_ErrorsAreNotCached(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(overpassResponse{Elements: testElements()}))
	}))
	defer srv.Close()

	cached := NewCachedClient(NewClient(srv.URL, 15, 5*time.Second, discardLogger()), 10, observability.NewMetricsForTesting())
	loc := domain.GeoPoint{Lat: 39.47, Lon: -0.38}

	_, _, err := cached.Survey(context.Background(), loc)
	require.Error(t, err)

	_, _, err = cached.Survey(context.Background(), loc)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestLRUCacheEviction(t *testing.T) {
	cache := newLRUCache(2)
	cache.put("a", surveyResult{})
	cache.put("b", surveyResult{})

	// Touch "a" so "b" is the eviction candidate.
	_, ok := cache.get("a")
	require.True(t, ok)

	cache.put("c", surveyResult{})

	_, ok = cache.get("b")
	assert.False(t, ok, "least recently used entry must be evicted")
	_, ok = cache.get("a")
	assert.True(t, ok)
	_, ok = cache.get("c")
	assert.True(t, ok)
}

type staticSurveyor struct {
	zone     domain.ZoneContext
	exposure domain.Exposure
	err      error
}

func (s *staticSurveyor) Survey(context.Context, domain.GeoPoint) (domain.ZoneContext, domain.Exposure, error) {
	return s.zone, s.exposure, s.err
}

type staticWeather struct {
	snap domain.EnvironmentalSnapshot
	err  error
}

func (s *staticWeather) Snapshot(context.Context, domain.GeoPoint) (domain.EnvironmentalSnapshot, error) {
	return s.snap, s.err
}

func TestEnrichedProvider_FillsExposure(t *testing.T) {
	exposure := domain.Exposure{PopulationDensity: 450, InfrastructureIndex: 0.6}
	p := NewEnrichedProvider(
		&staticWeather{snap: domain.EnvironmentalSnapshot{TemperatureC: 34, HumidityPct: 18}},
		&staticSurveyor{exposure: exposure},
		discardLogger(),
	)

	snap, err := p.Snapshot(context.Background(), domain.GeoPoint{Lat: 39.47, Lon: -0.38})
	require.NoError(t, err)
	assert.Equal(t, exposure, snap.Exposure)
	assert.Equal(t, 34.0, snap.TemperatureC)
}

func TestEnrichedProvider_SurveyFailureDegrades(t *testing.T) {
	p := NewEnrichedProvider(
		&staticWeather{snap: domain.EnvironmentalSnapshot{TemperatureC: 34, HumidityPct: 18}},
		&staticSurveyor{err: errors.New("overpass down")},
		discardLogger(),
	)

	snap, err := p.Snapshot(context.Background(), domain.GeoPoint{Lat: 39.47, Lon: -0.38})
	require.NoError(t, err, "exposure enrichment is best effort")
	assert.Equal(t, domain.Exposure{}, snap.Exposure)
}

func TestEnrichedProvider_WeatherFailurePropagates(t *testing.T) {
	p := NewEnrichedProvider(
		&staticWeather{err: errors.New("weather down")},
		&staticSurveyor{},
		discardLogger(),
	)

	_, err := p.Snapshot(context.Background(), domain.GeoPoint{Lat: 39.47, Lon: -0.38})
	assert.Error(t, err)
}
