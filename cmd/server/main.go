// Package main is the entry point for the matcat API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"matcat/internal/config"
	"matcat/internal/domain/catalogs/category"
	"matcat/internal/domain/catalogs/material"
	v1 "matcat/internal/infrastructure/http/v1"
	"matcat/internal/infrastructure/numerator"
	"matcat/internal/infrastructure/observability"
	"matcat/internal/infrastructure/seed"
	"matcat/internal/infrastructure/storage/postgres"
	"matcat/internal/infrastructure/storage/postgres/catalog_repo"
	"matcat/internal/infrastructure/storage/postgres/migrations"
	"matcat/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load(os.Getenv("MATCAT_CONFIG"))
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LoggerConfig())
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting matcat server", "version", version, "env", cfg.App.Env)

	// --- Schema ---
	if cfg.Database.AutoMigrate {
		if err := migrate(cfg, log); err != nil {
			log.Fatalw("failed to apply migrations", "error", err)
		}
	}

	// --- Database ---
	pool, err := postgres.NewPool(ctx, cfg.PoolConfig())
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	pool.LogPoolStats(ctx)

	txm := postgres.NewTxManager(pool)
	categoryRepo := catalog_repo.NewCategoryRepo(txm)
	materialRepo := catalog_repo.NewMaterialRepo(txm)

	// --- Metrics ---
	var (
		metrics        *observability.Metrics
		metricsHandler http.Handler
	)
	if cfg.Metrics.Enabled {
		reg := observability.NewRegistry()
		metrics, err = observability.NewMetrics(cfg.Metrics.Namespace, reg)
		if err != nil {
			log.Fatalw("failed to register metrics", "error", err)
		}
		metricsHandler = observability.Handler(reg)
	}

	// --- Services ---
	numOpts, err := cfg.NumeratorOptions()
	if err != nil {
		log.Fatalw("invalid numerator settings", "error", err)
	}
	numeratorOptions := []numerator.Option{numerator.WithLocker(txm)}
	if metrics != nil {
		numeratorOptions = append(numeratorOptions, numerator.WithObserver(metrics))
	}
	codes := numerator.New(materialRepo, numOpts, numeratorOptions...)
	log.Infow("material code numerator configured",
		"strategy", numOpts.Strategy.String(),
		"pad_width", numOpts.PadWidth,
	)

	categories := category.NewService(categoryRepo, txm)
	materials := material.NewService(material.ServiceConfig{
		Repo:       materialRepo,
		Categories: categoryRepo,
		Numerator:  codes,
		TxManager:  txm,
	})
	if metrics != nil {
		materials.ObserveMutations(metrics)
	}

	// --- Seed ---
	if cfg.Seed.Enabled {
		var recorder seed.Recorder
		if metrics != nil {
			recorder = metrics
		}
		seeder := seed.New(categoryRepo, materialRepo, txm, seedConfig(cfg), recorder)
		res, err := seeder.Run(ctx)
		if err != nil {
			log.Fatalw("failed to seed catalog", "error", err, "file", cfg.Seed.File)
		}
		if !res.Skipped {
			log.Infow("catalog seeded", "categories", res.Categories, "materials", res.Materials)
		}
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Database:       pool,
		Logger:         log,
		Materials:      materials,
		Categories:     categories,
		Metrics:        metrics,
		MetricsHandler: metricsHandler,
		MetricsPath:    cfg.Metrics.Path,
		MaxPageSize:    cfg.HTTP.MaxPageSize,
		AppName:        cfg.App.Name,
		Version:        version,
		Debug:          cfg.IsDevelopment(),
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Infow("server starting", "port", cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return
	}

	log.Info("server stopped")
}

func migrate(cfg *config.Config, log *logger.Logger) error {
	m, err := migrations.New(cfg.Database.URL, log.WithComponent("migrate"))
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()
	return m.Up()
}

func seedConfig(cfg *config.Config) seed.Config {
	return seed.Config{
		File:             cfg.Seed.File,
		DefaultPrefix:    cfg.Seed.DefaultPrefix,
		CategoryPrefixes: cfg.Seed.CategoryPrefixes,
	}
}
