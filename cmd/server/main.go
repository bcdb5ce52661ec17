// Vicinity - User-Based Neighborhood Search for Collaborative Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vicinity

// Command server runs the Vicinity HTTP server: a BadgerDB-backed rating
// store with a user-based nearest-neighbor search API on top.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/vicinity/internal/api"
	"github.com/tomtom215/vicinity/internal/config"
	"github.com/tomtom215/vicinity/internal/logging"
	"github.com/tomtom215/vicinity/internal/neighbor"
	"github.com/tomtom215/vicinity/internal/similarity"
	"github.com/tomtom215/vicinity/internal/store"
	"github.com/tomtom215/vicinity/internal/supervisor"
	"github.com/tomtom215/vicinity/internal/supervisor/services"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("server exited with error")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(cfg.Logging)
	logging.Info().
		Str("version", version).
		Str("metric", cfg.Neighborhood.Metric).
		Str("normalizer", cfg.Neighborhood.Normalizer).
		Int("k", cfg.Neighborhood.K).
		Msg("vicinity starting")

	s, err := store.Open(cfg.Store, logging.Logger())
	if err != nil {
		return fmt.Errorf("open rating store: %w", err)
	}
	defer func() {
		if err := s.Close(); err != nil {
			logging.Error().Err(err).Msg("failed to close rating store")
		}
	}()

	metric, err := similarity.NewMetric(cfg.Neighborhood.Metric)
	if err != nil {
		return err
	}
	normalizer, err := similarity.NewNormalizer(cfg.Neighborhood.Normalizer)
	if err != nil {
		return err
	}

	finder, err := neighbor.NewFinder(s, s, metric, normalizer, cfg.Neighborhood.K, logging.Logger())
	if err != nil {
		return fmt.Errorf("build neighborhood finder: %w", err)
	}

	handler := api.NewHandler(finder, s, logging.Logger())
	router := api.NewRouter(handler, api.RouterConfig{
		CORSOrigins:       cfg.Server.CORSOrigins,
		RateLimitReqs:     cfg.Server.RateLimitReqs,
		RateLimitWindow:   cfg.Server.RateLimitWindow,
		RateLimitDisabled: cfg.Server.RateLimitDisabled,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	if !cfg.Store.InMemory {
		tree.AddDataService(services.NewStoreGCService(s, 5*time.Minute, logging.Logger()))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("listening")

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor stopped: %w", err)
	}

	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("service did not stop in time")
		}
	}

	logging.Info().Msg("vicinity stopped")
	return nil
}
