// Package book implements the in-memory core of a central limit order book:
// an arena of intrusively linked order records, per-side red-black trees of
// FIFO price levels, an id index for O(1) cancels, and the matching engine
// that sweeps the book under strict price-time priority.
//
// The package is pure: no I/O, no locks. Order records live in the arena
// rather than in per-order heap objects; price levels, tree nodes, index
// entries and fill slices are ordinary heap allocations. One Engine
// instance is owned by exactly one caller; callers
// that need concurrency serialise in front of it (see the service package).
package book
