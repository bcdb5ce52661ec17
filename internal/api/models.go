// Vicinity - User-Based Neighborhood Search for Collaborative Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vicinity

package api

import (
	"time"

	"github.com/tomtom215/vicinity/internal/neighbor"
)

// APIResponse is the envelope for all API responses.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError is a structured error with a machine-readable code.
//
// Common codes:
//   - VALIDATION_ERROR: invalid request parameters
//   - INVALID_JSON: request body could not be decoded
//   - DATA_ERROR: the rating store failed
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// NeighborhoodRequest asks for the nearest neighbors of a query user over a
// set of target items. The query user's history travels with the request and
// is used as-is; it does not have to match anything in the store.
type NeighborhoodRequest struct {
	UserID int64                  `json:"user_id" validate:"gte=0"`
	Events []neighbor.RatingEvent `json:"events"`
	Items  []int64                `json:"items"`
}

// NeighborhoodResponse maps each target item to its neighbors. Items nobody
// rated are absent.
type NeighborhoodResponse struct {
	UserID        int64                         `json:"user_id"`
	K             int                           `json:"k"`
	Neighborhoods map[int64][]neighbor.Neighbor `json:"neighborhoods"`
}

// RatingRequest records one rating event.
type RatingRequest struct {
	UserID    int64   `json:"user_id" validate:"gte=0"`
	ItemID    int64   `json:"item_id" validate:"gte=0"`
	Value     float64 `json:"value"`
	Timestamp int64   `json:"timestamp" validate:"gte=0"`
}

// RatersResponse lists the users who rated an item.
type RatersResponse struct {
	ItemID int64   `json:"item_id"`
	Users  []int64 `json:"users"`
}

// RatingsResponse lists a user's rating events in insertion order.
type RatingsResponse struct {
	UserID int64                  `json:"user_id"`
	Events []neighbor.RatingEvent `json:"events"`
}
