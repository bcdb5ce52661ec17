// Vicinity - User-Based Neighborhood Search for Collaborative Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vicinity

/*
Package similarity provides the stock similarity metrics and vector
normalizers wired into the neighborhood finder.

Metrics operate on sparse rating vectors and intentionally do not clamp
undefined results: cosine similarity of a zero vector is NaN, and the finder
is responsible for filtering such scores. Normalizers are pure functions of
their input; they never mutate the vector they are given.

Both families are looked up by name (see NewMetric and NewNormalizer) so the
choice is configurable without code changes.
*/
package similarity
