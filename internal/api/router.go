// Vicinity - User-Based Neighborhood Search for Collaborative Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vicinity

// Package api provides Vicinity's HTTP surface: neighborhood search, rating
// ingestion, and read access to the rating store, routed with chi and wrapped
// in a consistent JSON response envelope.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds the HTTP-surface knobs the router needs.
type RouterConfig struct {
	// CORSOrigins lists allowed CORS origins.
	CORSOrigins []string

	// RateLimitReqs is the request budget per client IP per window.
	RateLimitReqs int

	// RateLimitWindow is the rate limit window.
	RateLimitWindow time.Duration

	// RateLimitDisabled turns off rate limiting. Intended for tests.
	RateLimitDisabled bool
}

// NewRouter assembles the chi router with the full middleware stack.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if !cfg.RateLimitDisabled {
			r.Use(httprate.LimitByIP(cfg.RateLimitReqs, cfg.RateLimitWindow))
		}
		r.Use(Metrics())

		r.Post("/neighborhoods", h.Neighborhoods)
		r.Post("/ratings", h.AddRating)
		r.Get("/items/{itemID}/raters", h.ItemRaters)
		r.Get("/users/{userID}/ratings", h.UserRatings)
	})

	return r
}
