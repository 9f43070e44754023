// Package atomicw exposes the handful of atomic primitives the rest of the
// engine builds on: compare-and-swap, fetch-and-add, and an atomic AND,
// applied to signed machine words living inside a shared memory segment.
//
// Every mutation here compiles down to a genuine CPU atomic instruction via
// sync/atomic (a lock-prefixed instruction on amd64, LL/SC on arm64) — never
// a plain load-modify-store — because the freelist and lock words these
// operate on are published to other processes mapping the same segment.
package atomicw
