// Package segment implements the attach/detach/create lifecycle of a
// WhiteDB memory segment (§4.B) and the data model described in spec §3:
// the segment header, its inlined built-in area headers, and the bump-
// pointer sub-area allocator (§4.C).
//
// A Segment is a single contiguous []byte, either backed by an anonymous
// process-local buffer (AttachLocal) or by OS shared memory mapped under a
// name (Attach). Every reference into a segment is a byte offset from the
// segment's own base, never a native pointer, so the same segment can be
// attached at different addresses by different processes (§3 "Segment").
package segment
