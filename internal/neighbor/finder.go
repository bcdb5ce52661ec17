// Vicinity - User-Based Neighborhood Search for Collaborative Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vicinity

package neighbor

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog"
)

// Finder performs user-based nearest-neighbor searches over an injected
// event source and item index. It is safe for concurrent use; the only
// shared mutable state is the rating-vector cache, which serializes its own
// access.
type Finder struct {
	index      ItemIndex
	metric     Metric
	normalizer Normalizer
	cache      *VectorCache
	k          int
	logger     zerolog.Logger
}

// NewFinder creates a Finder that retains at most k neighbors per target
// item. k must be >= 0; k = 0 produces empty neighborhoods.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewFinder(source EventSource, index ItemIndex, metric Metric, normalizer Normalizer, k int, logger zerolog.Logger) (*Finder, error) {
	if source == nil || index == nil || metric == nil || normalizer == nil {
		return nil, fmt.Errorf("all collaborators are required")
	}
	if k < 0 {
		return nil, fmt.Errorf("neighborhood size must be >= 0, got %d", k)
	}

	return &Finder{
		index:      index,
		metric:     metric,
		normalizer: normalizer,
		cache:      NewVectorCache(source),
		k:          k,
		logger:     logger.With().Str("component", "neighbor").Logger(),
	}, nil
}

// K returns the configured neighborhood size.
func (f *Finder) K() int {
	return f.k
}

// Cache returns the finder's rating-vector cache, for observability.
func (f *Finder) Cache() *VectorCache {
	return f.cache
}

// FindNeighbors returns, for each target item, the k users most similar to
// the query user among those who rated that item.
//
// The query user's vector is built from the supplied history, not the cache.
// Candidates are limited to users who rated at least one target item; the
// query user is never a candidate. Candidates whose similarity comes back
// NaN or infinite are skipped. Each returned slice holds at most k neighbors
// in unspecified order; target items nobody rated are absent from the result.
func (f *Finder) FindNeighbors(ctx context.Context, user *UserHistory, items ItemSet) (map[int64][]Neighbor, error) {
	if user == nil {
		return nil, ErrNilHistory
	}
	if items == nil {
		return nil, ErrNilItemSet
	}

	queryVec := user.Vector()
	queryNorm := f.normalizer.Normalize(user.UserID, queryVec, nil)

	candidates, err := f.findCandidates(ctx, user.UserID, items)
	if err != nil {
		return nil, err
	}

	f.logger.Trace().
		Int64("user_id", user.UserID).
		Int("candidates", len(candidates)).
		Int("target_items", len(items)).
		Msg("located candidate neighbors")

	heaps := make(map[int64]*topKHeap, len(items))
	skipped := 0

	for candidateID := range candidates {
		ratings, err := f.cache.Lookup(ctx, candidateID)
		if err != nil {
			return nil, err
		}
		norm := f.normalizer.Normalize(candidateID, ratings, nil)

		score := f.metric.Similarity(user.UserID, queryNorm, candidateID, norm)
		if math.IsNaN(score) || math.IsInf(score, 0) {
			skipped++
			continue
		}

		n := Neighbor{UserID: candidateID, Ratings: ratings, Score: score}
		for itemID := range ratings {
			if !items.Contains(itemID) {
				continue
			}
			heap, ok := heaps[itemID]
			if !ok {
				heap = newTopKHeap(f.k)
				heaps[itemID] = heap
			}
			heap.Insert(n)
		}
	}

	if skipped > 0 {
		f.logger.Debug().
			Int64("user_id", user.UserID).
			Int("skipped", skipped).
			Msg("discarded candidates with undefined similarity")
	}

	result := make(map[int64][]Neighbor, len(heaps))
	for itemID, heap := range heaps {
		result[itemID] = heap.Neighbors()
	}
	return result, nil
}

// findCandidates returns the users who rated at least one target item,
// excluding the query user. Cost is linear in the total rater count of the
// target items, with set insertion handling duplicates.
func (f *Finder) findCandidates(ctx context.Context, queryUserID int64, items ItemSet) (map[int64]struct{}, error) {
	candidates := make(map[int64]struct{})

	for itemID := range items {
		raters, err := f.index.UsersForItem(ctx, itemID)
		if err != nil {
			return nil, fmt.Errorf("fetch raters for item %d: %w", itemID, err)
		}
		for userID := range raters {
			candidates[userID] = struct{}{}
		}
	}

	delete(candidates, queryUserID)
	return candidates, nil
}
