package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "https://api.open-meteo.com/v1/forecast", cfg.WeatherBaseURL)
	assert.Equal(t, 5*time.Second, cfg.WeatherTimeout)
	assert.Equal(t, "https://overpass-api.de/api/interpreter", cfg.OverpassBaseURL)
	assert.Equal(t, 10*time.Second, cfg.OverpassTimeout)
	assert.Equal(t, 15.0, cfg.ZoneRadiusKm)
	assert.Equal(t, 500, cfg.ZoneCacheSize)
	assert.False(t, cfg.RedisEnabled)
	assert.Equal(t, 30*time.Minute, cfg.SnapshotTTL)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "fire-analysis", cfg.KafkaSinkTopic)
	assert.Empty(t, cfg.DoctrinePath)
	assert.Equal(t, "@every 15m", cfg.RefreshCron)
	assert.Empty(t, cfg.WatchedLocations)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("WEATHER_BASE_URL", "http://localhost:8081/v1/forecast")
	t.Setenv("WEATHER_TIMEOUT", "2s")
	t.Setenv("ZONE_RADIUS_KM", "25")
	t.Setenv("ZONE_CACHE_SIZE", "50")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "analysis-out")
	t.Setenv("SNAPSHOT_REFRESH_CRON", "@every 5m")
	t.Setenv("WATCHED_LOCATIONS", "39.47,-0.38;40.42,-3.70")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://localhost:8081/v1/forecast", cfg.WeatherBaseURL)
	assert.Equal(t, 2*time.Second, cfg.WeatherTimeout)
	assert.Equal(t, 25.0, cfg.ZoneRadiusKm)
	assert.Equal(t, 50, cfg.ZoneCacheSize)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "analysis-out", cfg.KafkaSinkTopic)
	assert.Equal(t, "@every 5m", cfg.RefreshCron)
	assert.Equal(t, []WatchedLocation{{Lat: 39.47, Lon: -0.38}, {Lat: 40.42, Lon: -3.70}}, cfg.WatchedLocations)
}

func TestLoad_RedisAddrImpliesEnabled(t *testing.T) {
	t.Setenv("REDIS_ADDR", "localhost:6379")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.RedisEnabled)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoad_RedisExplicitlyDisabled(t *testing.T) {
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.RedisEnabled)
}

func TestLoad_RedisEnabledWithoutAddr(t *testing.T) {
	t.Setenv("REDIS_ENABLED", "true")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_ADDR")
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_NegativeWeatherTimeout(t *testing.T) {
	t.Setenv("WEATHER_TIMEOUT", "-1s")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WEATHER_TIMEOUT")
}

func TestLoad_InvalidZoneRadius(t *testing.T) {
	t.Setenv("ZONE_RADIUS_KM", "-5")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ZONE_RADIUS_KM")
}

func TestParseWatchedLocations(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []WatchedLocation
		wantErr bool
	}{
		{"empty", "", nil, false},
		{"single", "39.47,-0.38", []WatchedLocation{{Lat: 39.47, Lon: -0.38}}, false},
		{"trailing separator", "39.47,-0.38;", []WatchedLocation{{Lat: 39.47, Lon: -0.38}}, false},
		{"spaces", " 39.47 , -0.38 ; 40.0 , 1.0 ", []WatchedLocation{{Lat: 39.47, Lon: -0.38}, {Lat: 40.0, Lon: 1.0}}, false},
		{"missing lon", "39.47", nil, true},
		{"not a number", "a,b", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWatchedLocations(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
