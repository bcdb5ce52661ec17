// Vicinity - User-Based Neighborhood Search for Collaborative Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vicinity

package services

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// ValueLogGC matches the store's Badger value-log garbage collection hook.
type ValueLogGC interface {
	RunValueLogGC(discardRatio float64) error
}

// StoreGCService periodically reclaims space from the rating store's value
// log. Badger never rewrites value-log files on its own; without this loop
// a long-running server's disk usage only grows.
//
// Not needed (and not registered) when the store runs in memory.
type StoreGCService struct {
	gc           ValueLogGC
	interval     time.Duration
	discardRatio float64
	logger       zerolog.Logger
	name         string
}

// NewStoreGCService creates a GC loop with the given interval. A discard
// ratio of 0.5 rewrites a value-log file once half of it is stale, which
// is Badger's recommended starting point.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewStoreGCService(gc ValueLogGC, interval time.Duration, logger zerolog.Logger) *StoreGCService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &StoreGCService{
		gc:           gc,
		interval:     interval,
		discardRatio: 0.5,
		logger:       logger.With().Str("component", "store-gc").Logger(),
		name:         "store-gc",
	}
}

// Serve implements suture.Service.
func (s *StoreGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// One tick may leave more files eligible; loop until a pass
			// finds nothing to rewrite.
			for {
				err := s.gc.RunValueLogGC(s.discardRatio)
				if err == nil {
					s.logger.Debug().Msg("value log file reclaimed")
					continue
				}
				if errors.Is(err, badger.ErrNoRewrite) {
					break
				}
				s.logger.Warn().Err(err).Msg("value log GC failed")
				break
			}
		}
	}
}

// String implements fmt.Stringer; suture uses it in log messages.
func (s *StoreGCService) String() string {
	return s.name
}
