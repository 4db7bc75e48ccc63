package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/patient-records/internal/config"
	"github.com/jwalitptl/patient-records/internal/handler"
	backupHandler "github.com/jwalitptl/patient-records/internal/handler/backup"
	patientHandler "github.com/jwalitptl/patient-records/internal/handler/patient"
	visitHandler "github.com/jwalitptl/patient-records/internal/handler/visit"
	"github.com/jwalitptl/patient-records/internal/middleware"
	"github.com/jwalitptl/patient-records/internal/router"
	"github.com/jwalitptl/patient-records/internal/storage"
	"github.com/jwalitptl/patient-records/internal/store"
	"github.com/jwalitptl/patient-records/pkg/logger"
	"github.com/jwalitptl/patient-records/pkg/metrics"
	"github.com/jwalitptl/patient-records/pkg/security"
	"github.com/jwalitptl/patient-records/pkg/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	appLogger := logger.NewLogger(&logger.Config{
		Level:      level,
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
	})

	m := metrics.NewMetrics("patient_records")

	st, err := buildStorage(cfg.Storage, m)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}

	recordStore := store.New(st, appLogger, m)
	v := validator.New()

	healthHandler := handler.NewHandler(recordStore)
	r := router.NewRouter(
		router.Config{
			RateLimit:      rateLimit(cfg.RateLimit),
			RateBurst:      cfg.RateLimit.Burst,
			CacheTTL:       cacheTTL(cfg.Cache),
			MetricsEnabled: cfg.Monitoring.PrometheusEnabled,
			CORS:           middleware.DefaultCORSConfig(),
		},
		healthHandler,
		patientHandler.NewHandler(recordStore, v),
		visitHandler.NewHandler(recordStore, v),
		backupHandler.NewHandler(recordStore),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Str("backend", cfg.Storage.Backend).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

func buildStorage(cfg config.StorageConfig, m *metrics.Metrics) (storage.Storage, error) {
	var (
		st  storage.Storage
		err error
	)

	switch cfg.Backend {
	case "memory":
		st = storage.NewMemoryStorage()
	case "file", "":
		st, err = storage.NewFileStorage(cfg.Dir)
	case "redis":
		st, err = storage.NewRedisStorage(storage.RedisConfig{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
	case "postgres":
		st, err = storage.NewPostgresStorage(storage.PostgresConfig{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			Name:     cfg.Postgres.Name,
			SSLMode:  cfg.Postgres.SSLMode,
		})
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Passphrase != "" {
		// The salt is fixed per installation; an empty salt is a
		// misconfiguration, not a default.
		if cfg.Salt == "" {
			return nil, fmt.Errorf("storage.salt must be set when storage.passphrase is enabled")
		}
		key := security.DeriveKey(cfg.Passphrase, []byte(cfg.Salt))
		encryptor, encErr := security.NewAESEncryptor(key)
		if encErr != nil {
			return nil, encErr
		}
		st = storage.NewEncryptedStorage(st, encryptor)
	}

	backend := cfg.Backend
	if backend == "" {
		backend = "file"
	}
	return storage.Instrument(st, backend, m), nil
}

func rateLimit(cfg config.RateLimitConfig) rate.Limit {
	if !cfg.Enabled {
		return 0
	}
	return rate.Limit(cfg.RequestsPerSecond)
}

func cacheTTL(cfg config.CacheConfig) time.Duration {
	if !cfg.Enabled {
		return 0
	}
	return cfg.TTL
}
