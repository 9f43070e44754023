package journal

import "errors"

var (
	// ErrBadMagic indicates a journal file's leading 4 bytes are not "wgdb",
	// or that it is shorter than the magic header (§4.I, §8 "Replay of a
	// journal whose magic bytes are corrupted fails without modifying the
	// segment").
	ErrBadMagic = errors.New("journal: bad magic header")

	// ErrWriteFailed wraps an underlying I/O error from appending or
	// flushing an entry. Returned before the corresponding segment mutation
	// has happened, so the caller may retry or abandon the operation
	// without detaching (§7 "journal failures before mutation are
	// non-fatal").
	ErrWriteFailed = errors.New("journal: write failed")

	// ErrInconsistent indicates the journal entry for an already-applied
	// mutation could not be written: the segment and the log have now
	// diverged, and per §7 ("journal failures during a mutation propagate
	// the inconsistent error") the caller must detach.
	ErrInconsistent = errors.New("journal: entry lost after mutation, segment and log diverged")

	// ErrCorrupt indicates a truncated entry or an unrecognized ENC type
	// during replay.
	ErrCorrupt = errors.New("journal: corrupt entry")
)
