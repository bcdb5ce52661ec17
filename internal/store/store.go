// Vicinity - User-Based Neighborhood Search for Collaborative Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vicinity

package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/vicinity/internal/neighbor"
)

// Key prefixes for BadgerDB storage.
const (
	ratingKeyPrefix = "rating:"
	itemKeyPrefix   = "item:"
	ratingSeqKey    = "seq:rating"
)

// seqBandwidth is how many sequence numbers Badger leases per fetch.
const seqBandwidth = 128

// Config holds rating store configuration.
type Config struct {
	// Path is the BadgerDB data directory. Ignored when InMemory is set.
	Path string `koanf:"path"`

	// InMemory keeps all data in memory; nothing survives a restart.
	// Intended for tests and local development.
	InMemory bool `koanf:"in_memory"`
}

// Store is a BadgerDB-backed rating event store. It implements
// neighbor.EventSource and neighbor.ItemIndex and is safe for concurrent use.
type Store struct {
	db     *badger.DB
	seq    *badger.Sequence
	logger zerolog.Logger
}

var (
	_ neighbor.EventSource = (*Store)(nil)
	_ neighbor.ItemIndex   = (*Store)(nil)
)

// Open opens (or creates) the rating store described by cfg.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg Config, logger zerolog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	// Badger's own logger is noisy; store-level events are logged here instead.
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", cfg.Path, err)
	}

	seq, err := db.GetSequence([]byte(ratingSeqKey), seqBandwidth)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("acquire rating sequence: %w", err)
	}

	return &Store{
		db:     db,
		seq:    seq,
		logger: logger.With().Str("component", "store").Logger(),
	}, nil
}

// Close releases the sequence lease and closes the database.
func (s *Store) Close() error {
	if err := s.seq.Release(); err != nil {
		s.logger.Error().Err(err).Msg("failed to release rating sequence")
	}
	return s.db.Close()
}

// AddRating appends a rating event for the user and indexes the item.
// Rating the same item again appends a second event rather than replacing
// the first; vector construction resolves duplicates downstream.
func (s *Store) AddRating(ctx context.Context, userID int64, event neighbor.RatingEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	seq, err := s.seq.Next()
	if err != nil {
		return fmt.Errorf("next rating sequence: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal rating event: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(ratingKey(userID, seq), data); err != nil {
			return fmt.Errorf("set rating: %w", err)
		}
		if err := txn.Set(itemKey(event.ItemID, userID), nil); err != nil {
			return fmt.Errorf("set item index: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Trace().
		Int64("user_id", userID).
		Int64("item_id", event.ItemID).
		Float64("value", event.Value).
		Msg("rating stored")
	return nil
}

// RatingsForUser returns the user's rating events in insertion order.
// A user with no ratings yields an empty slice.
func (s *Store) RatingsForUser(ctx context.Context, userID int64) ([]neighbor.RatingEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var events []neighbor.RatingEvent

	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("%s%020d:", ratingKeyPrefix, userID))

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			var event neighbor.RatingEvent
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &event)
			})
			if err != nil {
				return fmt.Errorf("decode rating event: %w", err)
			}
			events = append(events, event)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read ratings for user %d: %w", userID, err)
	}

	return events, nil
}

// UsersForItem returns the set of users who rated the item.
// An item nobody rated yields an empty set.
func (s *Store) UsersForItem(ctx context.Context, itemID int64) (map[int64]struct{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	users := make(map[int64]struct{})

	err := s.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("%s%020d:", itemKeyPrefix, itemID))

		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false // keys-only index scan
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			userID, err := userIDFromItemKey(it.Item().Key())
			if err != nil {
				return err
			}
			users[userID] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read raters for item %d: %w", itemID, err)
	}

	return users, nil
}

// RunValueLogGC runs one Badger value-log garbage collection pass.
// Returns badger.ErrNoRewrite when no file needed rewriting.
func (s *Store) RunValueLogGC(discardRatio float64) error {
	return s.db.RunValueLogGC(discardRatio)
}

// ratingKey builds rating:<user>:<seq> with fixed-width numeric fields.
func ratingKey(userID int64, seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d:%020d", ratingKeyPrefix, userID, seq))
}

// itemKey builds item:<item>:<user>.
func itemKey(itemID, userID int64) []byte {
	return []byte(fmt.Sprintf("%s%020d:%020d", itemKeyPrefix, itemID, userID))
}

// userIDFromItemKey extracts the trailing user ID from an item index key.
func userIDFromItemKey(key []byte) (int64, error) {
	k := string(key)
	idx := strings.LastIndexByte(k, ':')
	if idx < 0 {
		return 0, fmt.Errorf("malformed item index key %q", k)
	}
	userID, err := strconv.ParseInt(k[idx+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed item index key %q: %w", k, err)
	}
	return userID, nil
}
