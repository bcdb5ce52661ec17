// Vicinity - User-Based Neighborhood Search for Collaborative Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vicinity

/*
Package neighbor implements user-based nearest-neighbor search for
collaborative filtering.

Given a query user's rating history and a set of target items, the Finder
returns, for each target item, the K users most similar to the query user
among those who have rated that item. The search is narrowed to users who
rated at least one target item; a user who rated none of them cannot
contribute a neighbor for any of them, so the full user population is never
scanned.

# Components

  - VectorCache memoizes per-user sparse rating vectors. An entry is reused
    only while the user's live rating count and maximum rating timestamp are
    unchanged; otherwise the vector is rebuilt and the entry replaced
    wholesale. The cache is never cleared and has no capacity bound - memory
    grows with the number of distinct users ever looked up.
  - Finder orchestrates candidate location, cached vector lookup,
    normalization, similarity scoring, and per-item top-K aggregation.
  - A bounded min-heap keyed by similarity score retains the K best
    neighbors per item; when full, the minimum is evicted only for a
    strictly greater score.

# Collaborators

The Finder consumes four injected interfaces: EventSource (per-user rating
events), ItemIndex (item to raters), Normalizer, and Metric. Rating
normalization policy and the similarity formula belong to the collaborators,
not to this package; similarity values that come back NaN or infinite are
silently excluded from results.

# Thread Safety

Finder is safe for concurrent use. All cache lookups - hit and miss paths
alike - serialize through a single mutex spanning the whole
validate-then-replace step, so concurrent lookups for different users contend
on the same lock. Finer-grained locking would be a behavior-preserving
refinement as long as validate-then-replace stays atomic per user.
*/
package neighbor
