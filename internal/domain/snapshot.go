package domain

import "time"

// LandCover holds the fractional land-cover mix around the fire.
// Fractions are in [0,1] and need not sum to exactly 1.
type LandCover struct {
	Forest float64 `json:"forest"`
	Shrub  float64 `json:"shrub"`
	Grass  float64 `json:"grass"`
	Urban  float64 `json:"urban"`
	Water  float64 `json:"water"`
}

// Exposure quantifies what the fire threatens. Populated by the
// facilities collaborator; zero values mean "nothing known nearby" and
// score accordingly.
type Exposure struct {
	PopulationDensity   float64 `json:"population_density"`   // persons per km² within the threat radius
	InfrastructureIndex float64 `json:"infrastructure_index"` // 0–1, critical facility density
	EconomicValueIndex  float64 `json:"economic_value_index"` // 0–1
	EnvironmentalValue  float64 `json:"environmental_value"`  // 0–1, protected/high-conservation share
}

// HourlyConditions is the raw hourly weather series carried inside a
// snapshot. All slices are index-aligned; Times drives the length.
type HourlyConditions struct {
	Times        []time.Time `json:"times"`
	TemperatureC []float64   `json:"temperature_c"`
	WindSpeedKmh []float64   `json:"wind_speed_kmh"`
	WindDirDeg   []float64   `json:"wind_dir_deg"`
	WindGustKmh  []float64   `json:"wind_gust_kmh"`
}

// EnvironmentalSnapshot is the shared read-only input object consumed by
// every computation module. A collaborator refreshes it periodically;
// the engine falls back to the last-known snapshot (with Stale set and
// reduced Quality) when the provider is unavailable.
type EnvironmentalSnapshot struct {
	Location   GeoPoint  `json:"location"`
	CapturedAt time.Time `json:"captured_at"`

	TemperatureC float64 `json:"temperature_c"`
	HumidityPct  float64 `json:"humidity_pct"`
	WindSpeedKmh float64 `json:"wind_speed_kmh"`
	WindDirDeg   float64 `json:"wind_dir_deg"`
	WindGustKmh  float64 `json:"wind_gust_kmh"`

	NDVI              float64 `json:"ndvi"`               // vegetation density index, 0–1
	VegetationDryness float64 `json:"vegetation_dryness"` // 0–1, 1 = fully cured fuel
	DroughtIndex      float64 `json:"drought_index"`      // 0–5 (Keetch-Byram style, rescaled)
	DroughtCategory   string  `json:"drought_category"`   // "none".."exceptional"

	LandCover           LandCover `json:"land_cover"`
	Exposure            Exposure  `json:"exposure"`
	HistoricalFireCount int       `json:"historical_fire_count"` // incidents in cell, last 10 years

	Hourly HourlyConditions `json:"hourly,omitempty"`

	// Quality is 0–1; 1 means fresh provider data. The fallback path
	// lowers it so degraded outputs are visibly distinguishable.
	Quality float64 `json:"quality"`
	Stale   bool    `json:"stale"`
}

// Validate checks the numeric fields the scoring and prediction modules
// require. Vegetation and drought enrichment may default to zero.
func (s EnvironmentalSnapshot) Validate() error {
	if s.HumidityPct < 0 || s.HumidityPct > 100 {
		return &ValidationError{Field: "humidity_pct", Reason: "must be in [0,100]"}
	}
	if s.WindSpeedKmh < 0 {
		return &ValidationError{Field: "wind_speed_kmh", Reason: "must be non-negative"}
	}
	if s.TemperatureC < -90 || s.TemperatureC > 60 {
		return &ValidationError{Field: "temperature_c", Reason: "outside plausible range"}
	}
	return nil
}

// EffectiveQuality returns the quality indicator, defaulting to 1 when
// a collaborator forgot to set it.
func (s EnvironmentalSnapshot) EffectiveQuality() float64 {
	if s.Quality <= 0 {
		return 1
	}
	return clamp(s.Quality, 0, 1)
}
