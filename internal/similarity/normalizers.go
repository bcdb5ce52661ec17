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

// Normalizer names accepted by NewNormalizer.
const (
	NormalizerIdentity   = "identity"
	NormalizerMeanCenter = "mean_center"
	NormalizerZScore     = "zscore"
)

// NewNormalizer returns the normalizer registered under the given name.
func NewNormalizer(name string) (neighbor.Normalizer, error) {
	switch name {
	case NormalizerIdentity:
		return Identity{}, nil
	case NormalizerMeanCenter:
		return MeanCenter{}, nil
	case NormalizerZScore:
		return ZScore{}, nil
	default:
		return nil, fmt.Errorf("unknown normalizer %q", name)
	}
}

// Identity passes vectors through unchanged.
type Identity struct{}

// Normalize implements neighbor.Normalizer.
func (Identity) Normalize(_ int64, ratings, _ neighbor.RatingVector) neighbor.RatingVector {
	return ratings
}

// MeanCenter subtracts the user's mean rating from every entry, so metrics
// compare deviations from each user's own baseline rather than raw values.
type MeanCenter struct{}

// Normalize implements neighbor.Normalizer.
func (MeanCenter) Normalize(_ int64, ratings, _ neighbor.RatingVector) neighbor.RatingVector {
	if len(ratings) == 0 {
		return neighbor.RatingVector{}
	}

	var sum float64
	for _, v := range ratings {
		sum += v
	}
	mean := sum / float64(len(ratings))

	out := make(neighbor.RatingVector, len(ratings))
	for item, v := range ratings {
		out[item] = v - mean
	}
	return out
}

// ZScore centers each entry on the user's mean and divides by the standard
// deviation of the user's ratings. A user whose ratings are all identical
// has zero deviation; their entries normalize to zero rather than NaN so a
// flat rater still participates in candidate scoring.
type ZScore struct{}

// Normalize implements neighbor.Normalizer.
func (ZScore) Normalize(_ int64, ratings, _ neighbor.RatingVector) neighbor.RatingVector {
	if len(ratings) == 0 {
		return neighbor.RatingVector{}
	}

	var sum float64
	for _, v := range ratings {
		sum += v
	}
	mean := sum / float64(len(ratings))

	var variance float64
	for _, v := range ratings {
		variance += (v - mean) * (v - mean)
	}
	stddev := math.Sqrt(variance / float64(len(ratings)))

	out := make(neighbor.RatingVector, len(ratings))
	for item, v := range ratings {
		if stddev == 0 {
			out[item] = 0
		} else {
			out[item] = (v - mean) / stddev
		}
	}
	return out
}
