package main

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ehr/clinassist/internal/config"
	"github.com/ehr/clinassist/internal/domain/billing"
	"github.com/ehr/clinassist/internal/domain/labsummary"
	"github.com/ehr/clinassist/internal/domain/numbering"
	"github.com/ehr/clinassist/internal/domain/triage"
	"github.com/ehr/clinassist/internal/platform/auth"
	"github.com/ehr/clinassist/internal/platform/db"
	"github.com/ehr/clinassist/internal/platform/middleware"
	"github.com/ehr/clinassist/internal/platform/reporting"
	"github.com/ehr/clinassist/internal/platform/telemetry"
	"github.com/ehr/clinassist/internal/platform/validate"
	"github.com/ehr/clinassist/migrations"
)

const requestTimeout = 15 * time.Second

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func migrationSource(dir string) fs.FS {
	if dir == "" {
		return migrations.FS
	}
	return os.DirFS(dir)
}

// numberingStore is the configured backend plus the probe /health/db uses.
type numberingStore struct {
	Store  numbering.Store
	Health db.Pinger
	Kind   string
}

func openStore(ctx context.Context, cfg *config.Config) (*numberingStore, func(), error) {
	switch cfg.NumberingStore {
	case config.StorePostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, nil, err
		}
		return &numberingStore{Store: numbering.NewPGStore(pool), Health: pool, Kind: cfg.NumberingStore}, pool.Close, nil

	case config.StoreRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		store := numbering.NewRedisStore(client, numbering.WithLockTiming(cfg.NumberingLockTTL, cfg.NumberingLockWait))
		return &numberingStore{Store: store, Health: store, Kind: cfg.NumberingStore}, func() { client.Close() }, nil

	case config.StoreMemory:
		ok := db.PingFunc(func(context.Context) error { return nil })
		return &numberingStore{Store: numbering.NewMemoryStore(nil), Health: ok, Kind: cfg.NumberingStore}, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown numbering store %q", cfg.NumberingStore)
}

func newServer(cfg *config.Config, logger zerolog.Logger, store *numberingStore) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validate.New()

	metrics := telemetry.NewProvider(telemetry.Config{ServiceVersion: version, IncludeRuntime: true})

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(metrics.MetricsMiddleware())
	e.Use(middleware.SecurityHeaders(cfg.TLSEnabled || cfg.IsProduction()))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, middleware.RequestIDHeader},
	}))

	// Health and metrics stay outside authentication.
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
		})
	})
	e.GET("/health/db", db.HealthHandler(store.Kind, store.Health))
	e.GET("/metrics", metrics.PrometheusHandler())

	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.BodyLimit("1M", "16M", "/api/v1/reports"))
	apiV1.Use(middleware.RequestTimeout(requestTimeout))

	// Auth middleware
	if cfg.IsDev() {
		apiV1.Use(auth.DevAuthMiddleware())
	} else {
		apiV1.Use(auth.JWTMiddleware(auth.JWTConfig{
			Issuer:     cfg.AuthIssuer,
			Audience:   cfg.AuthAudience,
			JWKSURL:    cfg.AuthJWKSURL,
			SigningKey: []byte(cfg.AuthSigningKey),
		}))
	}

	// Rate limiting runs after auth so callers are keyed by user.
	rateLimitCfg := middleware.DefaultRateLimitConfig()
	if cfg.RateLimitRPS > 0 {
		rateLimitCfg.RequestsPerSecond = cfg.RateLimitRPS
		rateLimitCfg.BurstSize = cfg.RateLimitBurst
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// Triage
	triageHandler := triage.NewHandler()
	triageHandler.SetMetrics(metrics)
	triageHandler.RegisterRoutes(apiV1)

	// Lab summaries
	labHandler := labsummary.NewHandler()
	labHandler.SetMetrics(metrics)
	labHandler.RegisterRoutes(apiV1)

	// Billing anomaly screening
	billingHandler := billing.NewHandler()
	billingHandler.SetMetrics(metrics)
	billingHandler.RegisterRoutes(apiV1)

	// Performance reports
	reporting.NewHandler().RegisterRoutes(apiV1)

	// Patient numbering
	gen := numbering.NewGenerator(store.Store,
		numbering.WithLogger(logger.With().Str("component", "numbering").Logger()),
		numbering.WithMetrics(metrics),
	)
	numbering.NewHandler(gen).RegisterRoutes(apiV1)

	return e
}
