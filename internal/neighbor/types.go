// Vicinity - User-Based Neighborhood Search for Collaborative Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vicinity

package neighbor

import (
	"context"
	"errors"
)

// Sentinel errors for invalid Finder arguments. Both are detected before any
// collaborator is called.
var (
	// ErrNilHistory indicates FindNeighbors was called without a query user history.
	ErrNilHistory = errors.New("query user history is required")

	// ErrNilItemSet indicates FindNeighbors was called without a target item set.
	ErrNilItemSet = errors.New("target item set is required")
)

// RatingEvent is a single timestamped rating of an item by a user.
type RatingEvent struct {
	// ItemID identifies the rated item.
	ItemID int64 `json:"item_id"`

	// Value is the rating value.
	Value float64 `json:"value"`

	// Timestamp is the rating time in seconds since the Unix epoch.
	Timestamp int64 `json:"timestamp"`
}

// RatingVector is a sparse mapping from item ID to rating value.
type RatingVector map[int64]float64

// Clone returns an independent copy of the vector.
func (v RatingVector) Clone() RatingVector {
	out := make(RatingVector, len(v))
	for item, value := range v {
		out[item] = value
	}
	return out
}

// UserHistory is a user's rating history as supplied by the caller for the
// query side of a neighborhood search.
type UserHistory struct {
	// UserID identifies the query user.
	UserID int64 `json:"user_id"`

	// Events is the user's rating events in event order.
	Events []RatingEvent `json:"events"`
}

// Vector folds the history's events into a sparse rating vector.
// When the same item is rated more than once, the later event in the
// sequence wins.
func (h *UserHistory) Vector() RatingVector {
	return vectorFromEvents(h.Events)
}

// Neighbor is a candidate user paired with their unnormalized rating vector
// and similarity score for one neighborhood computation.
type Neighbor struct {
	// UserID identifies the neighbor.
	UserID int64 `json:"user_id"`

	// Ratings is the neighbor's unnormalized rating vector.
	Ratings RatingVector `json:"ratings"`

	// Score is the similarity between the neighbor and the query user.
	// Always finite; NaN and infinite scores never produce a Neighbor.
	Score float64 `json:"score"`
}

// ItemSet is a set of item IDs.
type ItemSet map[int64]struct{}

// NewItemSet builds an ItemSet from the given IDs.
func NewItemSet(ids ...int64) ItemSet {
	s := make(ItemSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether the set contains the given item.
func (s ItemSet) Contains(itemID int64) bool {
	_, ok := s[itemID]
	return ok
}

// EventSource supplies a user's live rating events.
// Implementations must reflect the latest committed state at call time.
type EventSource interface {
	// RatingsForUser returns the user's rating events in event order.
	// An empty slice means the user has no ratings; that is not an error.
	RatingsForUser(ctx context.Context, userID int64) ([]RatingEvent, error)
}

// ItemIndex supplies the set of users who rated an item.
type ItemIndex interface {
	// UsersForItem returns the IDs of users who rated the item.
	// An item nobody rated yields an empty (or nil) set, not an error.
	UsersForItem(ctx context.Context, itemID int64) (map[int64]struct{}, error)
}

// Normalizer transforms a rating vector before similarity scoring.
// Implementations must be pure: the input vector is never mutated.
// The reference vector may be nil.
type Normalizer interface {
	Normalize(userID int64, ratings, reference RatingVector) RatingVector
}

// Metric scores the similarity of two normalized rating vectors.
// Implementations may return NaN or infinite values for undefined inputs;
// callers are responsible for filtering those out.
type Metric interface {
	Similarity(userA int64, vecA RatingVector, userB int64, vecB RatingVector) float64
}

// vectorFromEvents folds rating events into a sparse vector.
// Later events overwrite earlier ratings of the same item.
func vectorFromEvents(events []RatingEvent) RatingVector {
	v := make(RatingVector, len(events))
	for _, e := range events {
		v[e.ItemID] = e.Value
	}
	return v
}
