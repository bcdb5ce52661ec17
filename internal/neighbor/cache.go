// Vicinity - User-Based Neighborhood Search for Collaborative Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vicinity

package neighbor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// cacheEntry is one memoized rating vector. Entries are immutable once
// stored; invalidation replaces the whole entry.
type cacheEntry struct {
	userID              int64
	ratings             RatingVector
	lastRatingTimestamp int64
	ratingCount         int
}

// VectorCache memoizes per-user sparse rating vectors built from an
// EventSource.
//
// A cached vector is reused only while the user's live rating count and
// maximum rating timestamp both match the values recorded when the vector was
// built. This assumes well-behaved timestamps: a rating added after the
// cached vector was computed carries a timestamp greater than any seen while
// computing it.
//
// The cache is never cleared and has no capacity bound; memory grows with the
// number of distinct users ever looked up.
type VectorCache struct {
	source EventSource

	mu      sync.Mutex
	entries map[int64]*cacheEntry

	hits   atomic.Int64
	misses atomic.Int64
}

// NewVectorCache creates a cache backed by the given event source.
func NewVectorCache(source EventSource) *VectorCache {
	return &VectorCache{
		source:  source,
		entries: make(map[int64]*cacheEntry),
	}
}

// Lookup returns the user's rating vector, reusing the cached copy when the
// user's ratings are unchanged.
//
// The returned vector is shared with the cache and must be treated as
// read-only by callers.
//
// The entire validate-then-replace step runs under one mutex, so concurrent
// lookups - including hits and lookups for different users - serialize
// through the same critical section. If the event source fails, the error
// propagates and no entry is modified.
func (c *VectorCache) Lookup(ctx context.Context, userID int64) (RatingVector, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	events, err := c.source.RatingsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch ratings for user %d: %w", userID, err)
	}

	count := len(events)
	ts := int64(-1)
	for _, e := range events {
		if e.Timestamp > ts {
			ts = e.Timestamp
		}
	}

	if e, ok := c.entries[userID]; ok && e.ratingCount == count && e.lastRatingTimestamp == ts {
		c.hits.Add(1)
		return e.ratings, nil
	}

	c.misses.Add(1)
	e := &cacheEntry{
		userID:              userID,
		ratings:             vectorFromEvents(events),
		lastRatingTimestamp: ts,
		ratingCount:         count,
	}
	c.entries[userID] = e

	return e.ratings, nil
}

// Len returns the number of cached users.
func (c *VectorCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the cumulative hit and miss counts.
func (c *VectorCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
