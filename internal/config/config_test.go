// Vicinity - User-Based Neighborhood Search for Collaborative Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vicinity

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8371 {
		t.Errorf("Server.Port = %d, want 8371", cfg.Server.Port)
	}
	if cfg.Server.Timeout != 30*time.Second {
		t.Errorf("Server.Timeout = %s, want 30s", cfg.Server.Timeout)
	}
	if cfg.Neighborhood.K != 50 {
		t.Errorf("Neighborhood.K = %d, want 50", cfg.Neighborhood.K)
	}
	if cfg.Neighborhood.Metric != "cosine" {
		t.Errorf("Neighborhood.Metric = %q, want cosine", cfg.Neighborhood.Metric)
	}
	if cfg.Neighborhood.Normalizer != "identity" {
		t.Errorf("Neighborhood.Normalizer = %q, want identity", cfg.Neighborhood.Normalizer)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9000
neighborhood:
  k: 10
  metric: pearson
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("NEIGHBORHOOD_K", "25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000 from file", cfg.Server.Port)
	}
	if cfg.Neighborhood.Metric != "pearson" {
		t.Errorf("Neighborhood.Metric = %q, want pearson from file", cfg.Neighborhood.Metric)
	}
	if cfg.Neighborhood.K != 25 {
		t.Errorf("Neighborhood.K = %d, want 25 from env override", cfg.Neighborhood.K)
	}
}

func TestLoad_CORSOriginsFromEnv(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Server.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
	for i := range want {
		if cfg.Server.CORSOrigins[i] != want[i] {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.Server.CORSOrigins[i], want[i])
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "zero k is valid",
			mutate:  func(c *Config) { c.Neighborhood.K = 0 },
			wantErr: false,
		},
		{
			name:    "negative k",
			mutate:  func(c *Config) { c.Neighborhood.K = -1 },
			wantErr: true,
		},
		{
			name:    "unknown metric",
			mutate:  func(c *Config) { c.Neighborhood.Metric = "jaccard" },
			wantErr: true,
		},
		{
			name:    "unknown normalizer",
			mutate:  func(c *Config) { c.Neighborhood.Normalizer = "rank" },
			wantErr: true,
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: true,
		},
		{
			name: "missing store path",
			mutate: func(c *Config) {
				c.Store.Path = ""
				c.Store.InMemory = false
			},
			wantErr: true,
		},
		{
			name: "in-memory store without path",
			mutate: func(c *Config) {
				c.Store.Path = ""
				c.Store.InMemory = true
			},
			wantErr: false,
		},
		{
			name:    "rate limit window must be positive",
			mutate:  func(c *Config) { c.Server.RateLimitWindow = 0 },
			wantErr: true,
		},
		{
			name: "rate limit ignored when disabled",
			mutate: func(c *Config) {
				c.Server.RateLimitDisabled = true
				c.Server.RateLimitReqs = 0
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
