// Vicinity - User-Based Neighborhood Search for Collaborative Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vicinity

package similarity

import (
	"fmt"
	"math"

	"github.com/tomtom215/vicinity/internal/neighbor"
)

// Metric names accepted by NewMetric.
const (
	MetricCosine  = "cosine"
	MetricPearson = "pearson"
)

// NewMetric returns the metric registered under the given name.
func NewMetric(name string) (neighbor.Metric, error) {
	switch name {
	case MetricCosine:
		return Cosine{}, nil
	case MetricPearson:
		return Pearson{}, nil
	default:
		return nil, fmt.Errorf("unknown similarity metric %q", name)
	}
}

// Cosine computes cosine similarity between two sparse vectors.
//
// The dot product runs over the items the vectors share; the norms run over
// each full vector. A zero vector on either side yields NaN (0/0), which the
// finder discards.
type Cosine struct{}

// Similarity implements neighbor.Metric.
func (Cosine) Similarity(_ int64, vecA neighbor.RatingVector, _ int64, vecB neighbor.RatingVector) float64 {
	// Iterate the smaller vector for the intersection.
	small, large := vecA, vecB
	if len(large) < len(small) {
		small, large = large, small
	}

	var dot float64
	for item, v := range small {
		if w, ok := large[item]; ok {
			dot += v * w
		}
	}

	var normA, normB float64
	for _, v := range vecA {
		normA += v * v
	}
	for _, v := range vecB {
		normB += v * v
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Pearson computes the Pearson correlation over the items both vectors
// share. With no common items, or when either side has zero variance over
// the common items, the result is NaN and the finder discards it.
type Pearson struct{}

// Similarity implements neighbor.Metric.
func (Pearson) Similarity(_ int64, vecA neighbor.RatingVector, _ int64, vecB neighbor.RatingVector) float64 {
	small, large := vecA, vecB
	if len(large) < len(small) {
		small, large = large, small
	}

	common := make([]int64, 0, len(small))
	for item := range small {
		if _, ok := large[item]; ok {
			common = append(common, item)
		}
	}

	n := float64(len(common))
	var sumA, sumB float64
	for _, item := range common {
		sumA += vecA[item]
		sumB += vecB[item]
	}
	meanA := sumA / n
	meanB := sumB / n

	var num, denA, denB float64
	for _, item := range common {
		da := vecA[item] - meanA
		db := vecB[item] - meanB
		num += da * db
		denA += da * da
		denB += db * db
	}

	return num / (math.Sqrt(denA) * math.Sqrt(denB))
}
