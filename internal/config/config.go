// Vicinity - User-Based Neighborhood Search for Collaborative Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vicinity

// Package config loads and validates Vicinity configuration from layered
// sources: built-in defaults, an optional YAML file, and environment
// variables, in ascending order of precedence.
package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/vicinity/internal/logging"
	"github.com/tomtom215/vicinity/internal/similarity"
	"github.com/tomtom215/vicinity/internal/store"
)

// Config is the root configuration for the Vicinity server.
type Config struct {
	Server       ServerConfig       `koanf:"server"`
	Store        store.Config       `koanf:"store"`
	Neighborhood NeighborhoodConfig `koanf:"neighborhood"`
	Logging      logging.Config     `koanf:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	// Host is the listen address. Default: 0.0.0.0.
	Host string `koanf:"host"`

	// Port is the listen port. Default: 8371.
	Port int `koanf:"port"`

	// Timeout bounds request reads and writes. Default: 30s.
	Timeout time.Duration `koanf:"timeout"`

	// CORSOrigins lists allowed CORS origins. Default: ["*"].
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitReqs is the request budget per client per window.
	// Default: 100.
	RateLimitReqs int `koanf:"rate_limit_reqs"`

	// RateLimitWindow is the rate limit window. Default: 1m.
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// RateLimitDisabled turns off rate limiting entirely.
	RateLimitDisabled bool `koanf:"rate_limit_disabled"`
}

// NeighborhoodConfig holds neighborhood search configuration.
type NeighborhoodConfig struct {
	// K is the neighborhood size per target item. Zero is valid and
	// yields empty neighborhoods. Default: 50.
	K int `koanf:"k"`

	// Metric selects the similarity metric: cosine or pearson.
	// Default: cosine.
	Metric string `koanf:"metric"`

	// Normalizer selects the rating normalization applied before
	// scoring: identity, mean_center, or zscore. Default: identity.
	Normalizer string `koanf:"normalizer"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8371,
			Timeout:           30 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
		},
		Store: store.Config{
			Path:     "/data/vicinity",
			InMemory: false,
		},
		Neighborhood: NeighborhoodConfig{
			K:          50,
			Metric:     similarity.MetricCosine,
			Normalizer: similarity.NormalizerIdentity,
		},
		Logging: logging.Config{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range [1, 65535]", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive, got %s", c.Server.Timeout)
	}
	if !c.Server.RateLimitDisabled {
		if c.Server.RateLimitReqs < 1 {
			return fmt.Errorf("server.rate_limit_reqs must be at least 1, got %d", c.Server.RateLimitReqs)
		}
		if c.Server.RateLimitWindow <= 0 {
			return fmt.Errorf("server.rate_limit_window must be positive, got %s", c.Server.RateLimitWindow)
		}
	}

	if !c.Store.InMemory && c.Store.Path == "" {
		return fmt.Errorf("store.path required unless store.in_memory is set")
	}

	if c.Neighborhood.K < 0 {
		return fmt.Errorf("neighborhood.k must be non-negative, got %d", c.Neighborhood.K)
	}
	if _, err := similarity.NewMetric(c.Neighborhood.Metric); err != nil {
		return fmt.Errorf("neighborhood.metric: %w", err)
	}
	if _, err := similarity.NewNormalizer(c.Neighborhood.Normalizer); err != nil {
		return fmt.Errorf("neighborhood.normalizer: %w", err)
	}

	return nil
}
