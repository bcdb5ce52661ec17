// Vicinity - User-Based Neighborhood Search for Collaborative Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vicinity

/*
Package store persists rating events in BadgerDB and serves them back through
the neighbor package's EventSource and ItemIndex interfaces.

# Key Layout

Two key families share one database:

	rating:<user>:<seq>  ->  JSON-encoded rating event
	item:<item>:<user>   ->  (empty)

User and item IDs are zero-padded to fixed width so lexicographic key order
matches numeric order, and <seq> is a Badger sequence that makes per-user
iteration return events in insertion order. The item family is a pure index:
membership of the key is the fact; values are empty and iteration is
keys-only.

Ratings are append-only. A user rating the same item again appends a new
event; readers of the event stream see every rating, and the neighbor
package's vector fold resolves duplicates (last event wins).
*/
package store
