// Entry point for the exoscan classification service
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/exoscan-ai/exoscan-go/pkg/api"
	"github.com/exoscan-ai/exoscan-go/pkg/config"
	"github.com/exoscan-ai/exoscan-go/pkg/modelstore"
	"github.com/exoscan-ai/exoscan-go/pkg/observability"
	"github.com/exoscan-ai/exoscan-go/pkg/pipeline"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("invalid configuration")
	}

	log := newLogger(cfg)
	log.Info().Str("environment", cfg.Environment).Str("port", cfg.Port).Msg("starting exoscan")

	store, err := modelstore.Open(cfg.ModelDBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.ModelDBPath).Msg("failed to open model store")
	}
	defer store.Close()

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector())
	metrics := observability.New(promRegistry)

	registry := api.NewDatasetRegistry(
		time.Duration(cfg.DatasetTTL)*time.Second,
		log,
		func(n int) { metrics.DatasetsActive.Set(float64(n)) },
	)
	if err := registry.StartEviction(); err != nil {
		log.Fatal().Err(err).Msg("failed to start dataset eviction")
	}
	defer registry.StopEviction()

	service := pipeline.NewService(store, log)
	server := api.NewServer(service, registry, metrics, log, api.ServerOptions{
		MaxUploadBytes: int64(cfg.MaxUploadMB) << 20,
		TestFraction:   cfg.TestFraction,
		DefaultSeed:    cfg.RandomSeed,
		Training:       cfg.Training,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Router(promRegistry),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()
	log.Info().Msg("server listening")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", "exoscan").Logger()
	if cfg.Environment == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return logger
}
