// Package journal implements the write-ahead log described in §4.I: an
// append-only file that records every mutating operation — record
// creation, deletion, field assignment, and value encoding — plus a replay
// function that rebuilds an equivalent segment from the log alone. Deletion
// and field assignment are logged before the segment is touched; creation
// and encoding are logged right after their allocation, since the offset
// they record does not exist beforehand (see Log).
//
// Entries are written and fsynced one at a time; callers are expected to
// hold the database write lock for the duration of a logged operation
// (§5 "all mutating operations must be bracketed by the write lock"), so
// the Writer itself does no internal locking.
package journal
