// Package alloc implements the two allocation disciplines §3 "Area"
// defines over a segment.Segment: fixed-length singly-linked freelists
// (§4.D, FixedArea) and the Doug-Lea-style bucketed variable-length
// allocator with a designated victim (§4.E, VarArea).
//
// Both allocators are grounded on the teacher's hive/alloc/fastalloc.go:
// segregated free lists keyed by size class, boundary-aware coalescing, and
// growth-by-doubling sub-areas that never cross a sub-area boundary. Where
// the teacher uses per-class min-heaps for best-fit, this package follows
// the spec's simpler doubly-linked-list-per-bucket design plus a single
// designated victim slot, since WhiteDB trades perfect best-fit for O(1)
// bucket-head operations.
package alloc
