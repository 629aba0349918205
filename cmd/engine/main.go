package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/seojedaperez/ignismap-engine/internal/adapter/facilities"
	httpadapter "github.com/seojedaperez/ignismap-engine/internal/adapter/http"
	kafkaadapter "github.com/seojedaperez/ignismap-engine/internal/adapter/kafka"
	"github.com/seojedaperez/ignismap-engine/internal/adapter/openmeteo"
	"github.com/seojedaperez/ignismap-engine/internal/adapter/snapshotcache"
	"github.com/seojedaperez/ignismap-engine/internal/config"
	"github.com/seojedaperez/ignismap-engine/internal/domain"
	"github.com/seojedaperez/ignismap-engine/internal/engine"
	"github.com/seojedaperez/ignismap-engine/internal/observability"
	"github.com/seojedaperez/ignismap-engine/internal/scheduler"
)

func main() {
	// Local development convenience; absent .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	doctrine, err := loadDoctrine(cfg, logger)
	if err != nil {
		logger.Error("failed to load doctrine", "error", err)
		os.Exit(1)
	}

	weather := openmeteo.NewClient(cfg.WeatherBaseURL, cfg.WeatherTimeout, logger)
	facilityClient := facilities.NewCachedClient(
		facilities.NewClient(cfg.OverpassBaseURL, cfg.ZoneRadiusKm, cfg.OverpassTimeout, logger),
		cfg.ZoneCacheSize,
		metrics,
	)
	provider := facilities.NewEnrichedProvider(weather, facilityClient, logger)

	opts := engine.Options{
		Cache: buildSnapshotCache(cfg, logger),
	}

	var kafkaWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		kafkaWriter = kafkaadapter.NewWriter(cfg, logger)
		opts.Publisher = kafkaWriter
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka publishing disabled")
	}

	eng := engine.New(provider, facilityClient, doctrine, logger, metrics, opts)

	refresher := scheduler.New(eng, cfg.WatchedLocations, logger)
	if err := refresher.Start(cfg.RefreshCron); err != nil {
		logger.Error("failed to start snapshot refresher", "error", err)
		os.Exit(1)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, eng, eng, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	refresher.Stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// loadDoctrine reads the configured doctrine document, defaulting to
// the embedded one.
func loadDoctrine(cfg *config.Config, logger *slog.Logger) (*domain.Doctrine, error) {
	if cfg.DoctrinePath == "" {
		return domain.DefaultDoctrine()
	}
	doctrine, err := domain.LoadDoctrine(cfg.DoctrinePath)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded doctrine override", "path", cfg.DoctrinePath, "version", doctrine.Version)
	return doctrine, nil
}

// buildSnapshotCache picks Redis when configured, in-process otherwise.
func buildSnapshotCache(cfg *config.Config, logger *slog.Logger) engine.SnapshotCache {
	if !cfg.RedisEnabled {
		logger.Info("using in-memory snapshot cache", "ttl", cfg.SnapshotTTL)
		return snapshotcache.NewMemoryCache(cfg.SnapshotTTL)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	cache := snapshotcache.NewRedisCache(client, cfg.SnapshotTTL)

	if err := cache.Ping(context.Background()); err != nil {
		logger.Warn("redis unreachable at startup, continuing anyway", "addr", cfg.RedisAddr, "error", err)
	} else {
		logger.Info("using redis snapshot cache", "addr", cfg.RedisAddr, "ttl", cfg.SnapshotTTL)
	}
	return cache
}
