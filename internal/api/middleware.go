// Vicinity - User-Based Neighborhood Search for Collaborative Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vicinity

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/tomtom215/vicinity/internal/logging"
	"github.com/tomtom215/vicinity/internal/metrics"
)

// requestIDHeader is the header carrying the request correlation ID.
const requestIDHeader = "X-Request-ID"

// RequestID attaches a correlation ID to every request. An incoming
// X-Request-ID is honored so IDs survive proxies; otherwise a new UUID is
// generated. The ID is echoed on the response.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)

			logger := logging.With().Str("request_id", id).Logger()
			next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
		})
	}
}

// Metrics records per-endpoint request counts and latency. The chi route
// pattern is resolved after the handler runs so parameterized paths collapse
// into one label value.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			endpoint := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					endpoint = pattern
				}
			}
			metrics.RecordAPIRequest(endpoint, r.Method, ww.Status(), time.Since(start))
		})
	}
}
