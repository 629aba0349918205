package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// WatchedLocation is a coordinate the scheduler keeps a fresh snapshot
// for, independent of incoming analysis requests.
type WatchedLocation struct {
	Lat float64
	Lon float64
}

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Weather provider (Open-Meteo).
	WeatherBaseURL string
	WeatherTimeout time.Duration

	// Facility/route provider (Overpass).
	OverpassBaseURL string
	OverpassTimeout time.Duration
	ZoneRadiusKm    float64
	ZoneCacheSize   int

	// Last-known snapshot cache.
	RedisEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SnapshotTTL   time.Duration

	// Outbound analysis publishing.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string

	// Doctrine override; empty means the embedded document.
	DoctrinePath string

	// Snapshot refresh schedule for watched locations.
	RefreshCron      string
	WatchedLocations []WatchedLocation
}

// Load reads configuration from environment variables, applying
// defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	weatherTimeout, err := parseDuration("WEATHER_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	overpassTimeout, err := parseDuration("OVERPASS_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	snapshotTTL, err := parseDuration("SNAPSHOT_TTL", "30m")
	if err != nil {
		return nil, err
	}

	watched, err := ParseWatchedLocations(os.Getenv("WATCHED_LOCATIONS"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		WeatherBaseURL: envOrDefault("WEATHER_BASE_URL", "https://api.open-meteo.com/v1/forecast"),
		WeatherTimeout: weatherTimeout,

		OverpassBaseURL: envOrDefault("OVERPASS_BASE_URL", "https://overpass-api.de/api/interpreter"),
		OverpassTimeout: overpassTimeout,
		ZoneRadiusKm:    envFloatOrDefault("ZONE_RADIUS_KM", 15),
		ZoneCacheSize:   envIntOrDefault("ZONE_CACHE_SIZE", 500),

		RedisEnabled:  os.Getenv("REDIS_ADDR") != "",
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       envIntOrDefault("REDIS_DB", 0),
		SnapshotTTL:   snapshotTTL,

		KafkaEnabled:   false,
		KafkaBrokers:   parseBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: envOrDefault("KAFKA_SINK_TOPIC", "fire-analysis"),

		DoctrinePath: os.Getenv("DOCTRINE_PATH"),

		RefreshCron:      envOrDefault("SNAPSHOT_REFRESH_CRON", "@every 15m"),
		WatchedLocations: watched,
	}

	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		cfg.KafkaEnabled = v == "true"
	}
	if v := os.Getenv("REDIS_ENABLED"); v != "" {
		cfg.RedisEnabled = v == "true"
	}

	if cfg.ZoneRadiusKm <= 0 {
		return nil, errors.New("ZONE_RADIUS_KM must be positive")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.RedisEnabled && cfg.RedisAddr == "" {
		return nil, errors.New("REDIS_ENABLED is true but REDIS_ADDR is not set")
	}

	return cfg, nil
}

// ParseWatchedLocations parses "lat,lon;lat,lon" into coordinates.
func ParseWatchedLocations(raw string) ([]WatchedLocation, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var out []WatchedLocation
	for _, pair := range strings.Split(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.Split(pair, ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid WATCHED_LOCATIONS entry %q", pair)
		}
		lat, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		lon, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("invalid WATCHED_LOCATIONS entry %q", pair)
		}
		out = append(out, WatchedLocation{Lat: lat, Lon: lon})
	}
	return out, nil
}

func parseBrokers(raw string) []string {
	var out []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return fallback
}

func envFloatOrDefault(key string, fallback float64) float64 {
	if s := os.Getenv(key); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	s := envOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}
