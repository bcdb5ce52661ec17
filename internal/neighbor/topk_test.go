// Vicinity - User-Based Neighborhood Search for Collaborative Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vicinity

package neighbor

import (
	"sort"
	"testing"
)

func insertAll(h *topKHeap, scores ...float64) {
	for i, s := range scores {
		h.Insert(Neighbor{UserID: int64(i + 1), Score: s})
	}
}

func retainedScores(h *topKHeap) []float64 {
	ns := h.Neighbors()
	scores := make([]float64, len(ns))
	for i, n := range ns {
		scores[i] = n.Score
	}
	sort.Float64s(scores)
	return scores
}

func TestTopKHeap_Insert(t *testing.T) {
	tests := []struct {
		name   string
		k      int
		scores []float64
		want   []float64
	}{
		{
			name:   "below capacity keeps everything",
			k:      5,
			scores: []float64{0.3, 0.1, 0.9},
			want:   []float64{0.1, 0.3, 0.9},
		},
		{
			name:   "at capacity evicts minimum for greater score",
			k:      2,
			scores: []float64{0.5, 0.2, 0.8},
			want:   []float64{0.5, 0.8},
		},
		{
			name:   "equal score does not evict",
			k:      2,
			scores: []float64{0.5, 0.2, 0.2},
			want:   []float64{0.2, 0.5},
		},
		{
			name:   "lower score is discarded",
			k:      2,
			scores: []float64{0.5, 0.4, 0.1},
			want:   []float64{0.4, 0.5},
		},
		{
			name:   "zero capacity retains nothing",
			k:      0,
			scores: []float64{0.9, 0.8},
			want:   []float64{},
		},
		{
			name:   "negative scores order correctly",
			k:      2,
			scores: []float64{-0.4, -0.9, -0.1, -0.5},
			want:   []float64{-0.4, -0.1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTopKHeap(tt.k)
			insertAll(h, tt.scores...)

			if h.Len() != len(tt.want) {
				t.Fatalf("Len() = %d, want %d", h.Len(), len(tt.want))
			}

			got := retainedScores(h)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("retained scores = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestTopKHeap_MatchesBruteForce(t *testing.T) {
	// Deterministic pseudo-random sequence; compares the heap's retained set
	// against a sorted brute-force top-K.
	const k = 8
	scores := make([]float64, 0, 200)
	x := int64(42)
	for i := 0; i < 200; i++ {
		x = (x*6364136223846793005 + 1442695040888963407) % (1 << 31)
		if x < 0 {
			x = -x
		}
		scores = append(scores, float64(x%10000)/10000.0)
	}

	h := newTopKHeap(k)
	insertAll(h, scores...)

	sorted := append([]float64(nil), scores...)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
	want := append([]float64(nil), sorted[:k]...)
	sort.Float64s(want)

	got := retainedScores(h)
	if len(got) != k {
		t.Fatalf("retained %d neighbors, want %d", len(got), k)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("retained scores = %v, want %v", got, want)
		}
	}
}
