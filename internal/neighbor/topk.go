// Vicinity - User-Based Neighborhood Search for Collaborative Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vicinity

package neighbor

// topKHeap retains the k highest-scoring neighbors seen so far using a
// bounded min-heap keyed by similarity score. The root is always the weakest
// retained neighbor, so a full heap accepts a new neighbor only when its
// score strictly beats the root. Insert and evict are O(log k).
//
// One instance serves one target item for the duration of a single
// FindNeighbors call; it is not safe for concurrent use.
type topKHeap struct {
	k     int
	items []Neighbor
}

// newTopKHeap creates a heap retaining at most k neighbors. k = 0 is valid
// and retains nothing.
func newTopKHeap(k int) *topKHeap {
	capacity := k
	if capacity > 64 {
		capacity = 64
	}
	return &topKHeap{
		k:     k,
		items: make([]Neighbor, 0, capacity),
	}
}

// Insert offers a neighbor to the heap. Below capacity the neighbor is added
// unconditionally. At capacity the current minimum is evicted only when the
// new score is strictly greater; ties keep the incumbent.
func (h *topKHeap) Insert(n Neighbor) {
	if h.k == 0 {
		return
	}

	if len(h.items) < h.k {
		h.items = append(h.items, n)
		h.bubbleUp(len(h.items) - 1)
		return
	}

	if n.Score <= h.items[0].Score {
		return
	}

	h.items[0] = n
	h.bubbleDown(0)
}

// Len returns the number of retained neighbors.
func (h *topKHeap) Len() int {
	return len(h.items)
}

// Neighbors returns the retained neighbors in unspecified order.
func (h *topKHeap) Neighbors() []Neighbor {
	out := make([]Neighbor, len(h.items))
	copy(out, h.items)
	return out
}

// bubbleUp moves the element at index i up to its correct position.
func (h *topKHeap) bubbleUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[i].Score >= h.items[parent].Score {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

// bubbleDown moves the element at index i down to its correct position.
func (h *topKHeap) bubbleDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2

		if left < n && h.items[left].Score < h.items[smallest].Score {
			smallest = left
		}
		if right < n && h.items[right].Score < h.items[smallest].Score {
			smallest = right
		}

		if smallest == i {
			break
		}

		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}
