// Package main runs the HTTP API: analyses, stored records, fee tools and metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Psymen/fundsimulation-sub000/internal/api"
	"github.com/Psymen/fundsimulation-sub000/internal/config"
	"github.com/Psymen/fundsimulation-sub000/internal/logging"
	"github.com/Psymen/fundsimulation-sub000/internal/orchestrator"
	"github.com/Psymen/fundsimulation-sub000/internal/storage/setup"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file (optional)")
	httpAddr := flag.String("http-addr", "", "HTTP listen address (overrides config)")
	backend := flag.String("backend", "", "Storage backend: memory, postgres or redis (overrides config)")
	flag.Parse()

	cfg, err := loadConfig(*configPath, *httpAddr, *backend)
	if err != nil {
		logger := logging.New(config.LogConfig{}, "server")
		logger.Fatal().Err(err).Msg("load config")
	}

	logger := logging.New(cfg.Log, "server")

	// Create context cancelled on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		logger.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
	logger.Info().Msg("shutdown complete")
}

// loadConfig reads cfg and applies flag overrides.
func loadConfig(path, httpAddr, backend string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if httpAddr != "" {
		cfg.Server.HTTPAddr = httpAddr
	}
	if backend != "" {
		cfg.Storage.Backend = backend
		if err := cfg.Validate(); err != nil {
			return config.Config{}, fmt.Errorf("invalid config: %w", err)
		}
	}
	return cfg, nil
}

// run serves until ctx is cancelled. Storage is closed before it returns.
func run(ctx context.Context, cfg config.Config) error {
	stores, err := setup.Open(ctx, cfg.Storage, logging.New(cfg.Log, "storage"))
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer stores.Close()

	orch := orchestrator.New(orchestrator.Options{
		RunStore:    stores.Runs,
		GridStore:   stores.Grids,
		BandStore:   stores.Bands,
		Workers:     cfg.Simulation.Workers,
		GridWorkers: cfg.Simulation.GridWorkers,
		Seed:        cfg.Simulation.Seed,
		MaxWorkload: cfg.Simulation.MaxWorkload,
		Logger:      logging.New(cfg.Log, "orchestrator"),
	})

	server := api.NewServer(api.Options{
		Orchestrator:  orch,
		RunStore:      stores.Runs,
		GridStore:     stores.Grids,
		BandStore:     stores.Bands,
		CORSOrigins:   cfg.Server.CORSOrigins,
		VerifyWorkers: cfg.Simulation.Workers,
		ReleaseMode:   true,
		Logger:        logging.New(cfg.Log, "api"),
	})

	return server.ListenAndServe(ctx, cfg.Server.HTTPAddr)
}
