// Package openmeteo fetches current and hourly fire-weather conditions
// from the Open-Meteo forecast API and maps them into environmental
// snapshots.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/seojedaperez/ignismap-engine/internal/domain"
)

// openMeteoTimeLayout is the ISO-8601 minute resolution Open-Meteo uses.
const openMeteoTimeLayout = "2006-01-02T15:04"

// Client implements the engine's snapshot provider over Open-Meteo.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// Snapshot fetches current conditions plus a 24-hour hourly outlook for
// the location. Soil moisture in the top layer stands in for fuel
// dryness where no dedicated fuel-moisture product is available.
func (c *Client) Snapshot(ctx context.Context, location domain.GeoPoint) (domain.EnvironmentalSnapshot, error) {
	params := url.Values{
		"latitude":        {fmt.Sprintf("%.6f", location.Lat)},
		"longitude":       {fmt.Sprintf("%.6f", location.Lon)},
		"current":         {"temperature_2m,relative_humidity_2m,wind_speed_10m,wind_direction_10m,wind_gusts_10m"},
		"hourly":          {"temperature_2m,wind_speed_10m,wind_direction_10m,wind_gusts_10m,soil_moisture_0_to_1cm"},
		"forecast_hours":  {"24"},
		"wind_speed_unit": {"kmh"},
		"timezone":        {"UTC"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.EnvironmentalSnapshot{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.EnvironmentalSnapshot{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.EnvironmentalSnapshot{}, fmt.Errorf("open-meteo API error: status %d: %s", resp.StatusCode, body)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.EnvironmentalSnapshot{}, fmt.Errorf("decode response: %w", err)
	}

	return c.toSnapshot(location, payload)
}

func (c *Client) toSnapshot(location domain.GeoPoint, payload response) (domain.EnvironmentalSnapshot, error) {
	capturedAt, err := time.Parse(openMeteoTimeLayout, payload.Current.Time)
	if err != nil {
		capturedAt = time.Now().UTC()
	}

	snap := domain.EnvironmentalSnapshot{
		Location:     location,
		CapturedAt:   capturedAt,
		TemperatureC: payload.Current.Temperature,
		HumidityPct:  payload.Current.Humidity,
		WindSpeedKmh: payload.Current.WindSpeed,
		WindDirDeg:   payload.Current.WindDirection,
		WindGustKmh:  payload.Current.WindGusts,
		Quality:      1,
	}

	hourly, err := c.toHourly(payload.Hourly)
	if err != nil {
		c.logger.Warn("discarding malformed hourly series", "error", err)
	} else {
		snap.Hourly = hourly
	}

	snap.VegetationDryness = drynessFromSoilMoisture(payload.Hourly.SoilMoisture)
	snap.DroughtIndex = snap.VegetationDryness * 5
	snap.DroughtCategory = droughtCategory(snap.DroughtIndex)

	if err := snap.Validate(); err != nil {
		return domain.EnvironmentalSnapshot{}, fmt.Errorf("provider returned implausible conditions: %w", err)
	}
	return snap, nil
}

func (c *Client) toHourly(h hourly) (domain.HourlyConditions, error) {
	n := len(h.Times)
	if n == 0 {
		return domain.HourlyConditions{}, fmt.Errorf("empty hourly series")
	}
	if len(h.Temperature) != n || len(h.WindSpeed) != n || len(h.WindDirection) != n || len(h.WindGusts) != n {
		return domain.HourlyConditions{}, fmt.Errorf("hourly series lengths disagree")
	}

	out := domain.HourlyConditions{
		TemperatureC: h.Temperature,
		WindSpeedKmh: h.WindSpeed,
		WindDirDeg:   h.WindDirection,
		WindGustKmh:  h.WindGusts,
	}
	for _, raw := range h.Times {
		t, err := time.Parse(openMeteoTimeLayout, raw)
		if err != nil {
			return domain.HourlyConditions{}, fmt.Errorf("parse hourly time %q: %w", raw, err)
		}
		out.Times = append(out.Times, t)
	}
	return out, nil
}

// drynessFromSoilMoisture maps topsoil volumetric moisture (m³/m³) to a
// 0–1 cured-fuel fraction. 0.30 m³/m³ is saturated Mediterranean soil;
// bone-dry soil reads near zero.
func drynessFromSoilMoisture(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	var total float64
	for _, v := range series {
		total += v
	}
	mean := total / float64(len(series))

	dryness := 1 - mean/0.30
	if dryness < 0 {
		return 0
	}
	if dryness > 1 {
		return 1
	}
	return dryness
}

func droughtCategory(index float64) string {
	switch {
	case index >= 4.5:
		return "exceptional"
	case index >= 3.5:
		return "extreme"
	case index >= 2.5:
		return "severe"
	case index >= 1.5:
		return "moderate"
	case index >= 0.5:
		return "abnormally_dry"
	default:
		return "none"
	}
}

// Open-Meteo API response types.

type response struct {
	Current current `json:"current"`
	Hourly  hourly  `json:"hourly"`
}

type current struct {
	Time          string  `json:"time"`
	Temperature   float64 `json:"temperature_2m"`
	Humidity      float64 `json:"relative_humidity_2m"`
	WindSpeed     float64 `json:"wind_speed_10m"`
	WindDirection float64 `json:"wind_direction_10m"`
	WindGusts     float64 `json:"wind_gusts_10m"`
}

type hourly struct {
	Times         []string  `json:"time"`
	Temperature   []float64 `json:"temperature_2m"`
	WindSpeed     []float64 `json:"wind_speed_10m"`
	WindDirection []float64 `json:"wind_direction_10m"`
	WindGusts     []float64 `json:"wind_gusts_10m"`
	SoilMoisture  []float64 `json:"soil_moisture_0_to_1cm"`
}
