// Package domain defines the core domain types for the collatzgraph level
// explorer.
//
// This package contains the value objects shared by the enumeration core,
// the services, the repository and the HTTP layer.
//
// # Classification
//
// Tuple is the classification key of an odd value: its residue modulo 3,
// its bit length, its Color (the positional zone inside the bit-length
// interval) and its descendant Parity.
//
// # Statistics
//
// FrequencyTable counts values per Tuple. Tables are immutable; they are
// built with TableBuilder and combined with Merge or MergeAll, which never
// modify their inputs. Summary derives the report view (class counts,
// parity counts, breakdown ratios and per-length counts).
//
// # Runs
//
// Run is a persisted table for one seed list and bit bound, identified by a
// UUID and protected by a BLAKE2b digest of the table. Sweep groups the runs
// of one seed over a range of bounds.
//
// # Graphs
//
// Graph is the visualization view of a bounded expansion: one node per
// value, one edge per predecessor link.
//
// # Design Principles
//
// - Immutable value objects
// - No database or transport dependencies
// - Sentinel errors (ErrInvalidArgument, ErrNotFound, ErrLimitExceeded)
//   wrapped with context by callers
package domain
