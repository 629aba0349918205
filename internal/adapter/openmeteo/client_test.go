package openmeteo

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seojedaperez/ignismap-engine/internal/domain"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

func testClient(baseURL string) *Client {
	return NewClient(baseURL, 5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testResponse() response {
	h := hourly{}
	for i := 0; i < 24; i++ {
		h.Times = append(h.Times, time.Date(2026, 8, 14, i, 0, 0, 0, time.UTC).Format(openMeteoTimeLayout))
		h.Temperature = append(h.Temperature, 30)
		h.WindSpeed = append(h.WindSpeed, 22)
		h.WindDirection = append(h.WindDirection, 225)
		h.WindGusts = append(h.WindGusts, 33)
		h.SoilMoisture = append(h.SoilMoisture, 0.06)
	}
	return response{
		Current: current{
			Time:          "2026-08-14T12:30",
			Temperature:   34,
			Humidity:      18,
			WindSpeed:     28,
			WindDirection: 225,
			WindGusts:     40,
		},
		Hourly: h,
	}
}

func TestClient_Snapshot_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "39.470000", r.URL.Query().Get("latitude"))
		assert.Equal(t, "-0.380000", r.URL.Query().Get("longitude"))
		assert.Equal(t, "kmh", r.URL.Query().Get("wind_speed_unit"))
		assert.Equal(t, "24", r.URL.Query().Get("forecast_hours"))

		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(testResponse()))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	snap, err := c.Snapshot(context.Background(), domain.GeoPoint{Lat: 39.47, Lon: -0.38})
	require.NoError(t, err)

	assert.Equal(t, 34.0, snap.TemperatureC)
	assert.Equal(t, 18.0, snap.HumidityPct)
	assert.Equal(t, 28.0, snap.WindSpeedKmh)
	assert.Equal(t, 225.0, snap.WindDirDeg)
	assert.Equal(t, 40.0, snap.WindGustKmh)
	assert.Equal(t, time.Date(2026, 8, 14, 12, 30, 0, 0, time.UTC), snap.CapturedAt)
	assert.Equal(t, 1.0, snap.Quality)
	assert.False(t, snap.Stale)

	require.Len(t, snap.Hourly.Times, 24)
	assert.Equal(t, 22.0, snap.Hourly.WindSpeedKmh[0])

	// 0.06 m³/m³ topsoil moisture is dry summer ground.
	assert.InDelta(t, 0.8, snap.VegetationDryness, 1e-9)
	assert.InDelta(t, 4.0, snap.DroughtIndex, 1e-9)
	assert.Equal(t, "extreme", snap.DroughtCategory)
}

func TestClient_Snapshot_MalformedHourlyIsDropped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := testResponse()
		resp.Hourly.WindSpeed = resp.Hourly.WindSpeed[:5] // lengths disagree

		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	snap, err := c.Snapshot(context.Background(), domain.GeoPoint{Lat: 39.47, Lon: -0.38})
	require.NoError(t, err, "current conditions remain usable without the series")

	assert.Empty(t, snap.Hourly.Times)
	assert.Equal(t, 34.0, snap.TemperatureC)
}

func TestClient_Snapshot_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"reason":"Minutely API request limit exceeded"}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Snapshot(context.Background(), domain.GeoPoint{Lat: 39.47, Lon: -0.38})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestClient_Snapshot_ImplausibleConditionsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := testResponse()
		resp.Current.Humidity = 180

		w.Header().Set(headerContentType, contentTypeJSON)
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Snapshot(context.Background(), domain.GeoPoint{Lat: 39.47, Lon: -0.38})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "implausible")
}

func TestClient_Snapshot_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 50*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err := c.Snapshot(context.Background(), domain.GeoPoint{Lat: 39.47, Lon: -0.38})
	require.Error(t, err)
}

func TestDrynessFromSoilMoisture(t *testing.T) {
	tests := []struct {
		name   string
		series []float64
		want   float64
	}{
		{"no data", nil, 0},
		{"saturated", []float64{0.35, 0.40}, 0},
		{"bone dry", []float64{0, 0}, 1},
		{"midpoint", []float64{0.15}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, drynessFromSoilMoisture(tt.series), 1e-9)
		})
	}
}
