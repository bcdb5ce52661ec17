// Vicinity - User-Based Neighborhood Search for Collaborative Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vicinity

package api

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tomtom215/vicinity/internal/metrics"
	"github.com/tomtom215/vicinity/internal/neighbor"
)

// RatingStore is the store surface the handlers depend on.
// Satisfied by *store.Store.
type RatingStore interface {
	AddRating(ctx context.Context, userID int64, event neighbor.RatingEvent) error
	RatingsForUser(ctx context.Context, userID int64) ([]neighbor.RatingEvent, error)
	UsersForItem(ctx context.Context, itemID int64) (map[int64]struct{}, error)
}

// Handler holds the API endpoint implementations.
type Handler struct {
	finder *neighbor.Finder
	store  RatingStore
	logger zerolog.Logger
}

// NewHandler creates the API handler set.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(finder *neighbor.Finder, store RatingStore, logger zerolog.Logger) *Handler {
	return &Handler{
		finder: finder,
		store:  store,
		logger: logger.With().Str("component", "api").Logger(),
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &APIResponse{
		Status:   "success",
		Data:     map[string]string{"status": "healthy"},
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// Neighborhoods handles POST /api/v1/neighborhoods: for each target item,
// the K users most similar to the query user among that item's raters.
func (h *Handler) Neighborhoods(w http.ResponseWriter, r *http.Request) {
	var req NeighborhoodRequest
	if err := decodeJSON(r, &req); err != nil {
		metrics.SearchErrors.WithLabelValues("bad_request").Inc()
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "request body is not valid JSON", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		metrics.SearchErrors.WithLabelValues("bad_request").Inc()
		respondJSON(w, http.StatusBadRequest, &APIResponse{
			Status:   "error",
			Metadata: Metadata{Timestamp: time.Now()},
			Error:    apiErr,
		})
		return
	}
	if req.Items == nil {
		metrics.SearchErrors.WithLabelValues("bad_request").Inc()
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "items is required", nil)
		return
	}

	history := &neighbor.UserHistory{UserID: req.UserID, Events: req.Events}
	items := neighbor.NewItemSet(req.Items...)

	hitsBefore, missesBefore := h.finder.Cache().Stats()
	start := time.Now()

	neighborhoods, err := h.finder.FindNeighbors(r.Context(), history, items)
	elapsed := time.Since(start)
	metrics.SearchDuration.Observe(elapsed.Seconds())

	hitsAfter, missesAfter := h.finder.Cache().Stats()
	metrics.CacheHits.Add(float64(hitsAfter - hitsBefore))
	metrics.CacheMisses.Add(float64(missesAfter - missesBefore))
	metrics.CacheSize.Set(float64(h.finder.Cache().Len()))

	if err != nil {
		metrics.SearchErrors.WithLabelValues("data_access").Inc()
		respondError(w, http.StatusInternalServerError, "DATA_ERROR", "neighborhood search failed", err)
		return
	}

	returned := 0
	for _, ns := range neighborhoods {
		returned += len(ns)
	}
	metrics.SearchNeighbors.Observe(float64(returned))

	h.logger.Debug().
		Int64("user_id", req.UserID).
		Int("target_items", len(req.Items)).
		Int("neighbors", returned).
		Dur("elapsed", elapsed).
		Msg("neighborhood search served")

	respondJSON(w, http.StatusOK, &APIResponse{
		Status: "success",
		Data: NeighborhoodResponse{
			UserID:        req.UserID,
			K:             h.finder.K(),
			Neighborhoods: neighborhoods,
		},
		Metadata: Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: elapsed.Milliseconds(),
		},
	})
}

// AddRating handles POST /api/v1/ratings.
func (h *Handler) AddRating(w http.ResponseWriter, r *http.Request) {
	var req RatingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "request body is not valid JSON", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondJSON(w, http.StatusBadRequest, &APIResponse{
			Status:   "error",
			Metadata: Metadata{Timestamp: time.Now()},
			Error:    apiErr,
		})
		return
	}

	event := neighbor.RatingEvent{
		ItemID:    req.ItemID,
		Value:     req.Value,
		Timestamp: req.Timestamp,
	}

	start := time.Now()
	if err := h.store.AddRating(r.Context(), req.UserID, event); err != nil {
		respondError(w, http.StatusInternalServerError, "DATA_ERROR", "failed to store rating", err)
		return
	}
	metrics.RecordStoreOp("add_rating", time.Since(start))
	metrics.RatingsIngested.Inc()

	respondJSON(w, http.StatusCreated, &APIResponse{
		Status:   "success",
		Data:     req,
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// ItemRaters handles GET /api/v1/items/{itemID}/raters.
func (h *Handler) ItemRaters(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathInt64(chi.URLParam(r, "itemID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "itemID must be an integer", err)
		return
	}

	start := time.Now()
	raters, err := h.store.UsersForItem(r.Context(), itemID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATA_ERROR", "failed to read item raters", err)
		return
	}
	metrics.RecordStoreOp("users_for_item", time.Since(start))

	users := make([]int64, 0, len(raters))
	for userID := range raters {
		users = append(users, userID)
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })

	respondJSON(w, http.StatusOK, &APIResponse{
		Status:   "success",
		Data:     RatersResponse{ItemID: itemID, Users: users},
		Metadata: Metadata{Timestamp: time.Now()},
	})
}

// UserRatings handles GET /api/v1/users/{userID}/ratings.
func (h *Handler) UserRatings(w http.ResponseWriter, r *http.Request) {
	userID, err := pathInt64(chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "userID must be an integer", err)
		return
	}

	start := time.Now()
	events, err := h.store.RatingsForUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATA_ERROR", "failed to read user ratings", err)
		return
	}
	metrics.RecordStoreOp("ratings_for_user", time.Since(start))

	if events == nil {
		events = []neighbor.RatingEvent{}
	}
	respondJSON(w, http.StatusOK, &APIResponse{
		Status:   "success",
		Data:     RatingsResponse{UserID: userID, Events: events},
		Metadata: Metadata{Timestamp: time.Now()},
	})
}
