package main

import (
	"errors"

	"github.com/wgdb/wgdb/dump"
	"github.com/wgdb/wgdb/journal"
	"github.com/wgdb/wgdb/segment"
)

// exitError pins a specific process exit code to an error, for the cases
// where the default (1, "non-fatal") is wrong (§6 "Exit codes").
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// withCode wraps err so execute() reports the given exit code instead of
// inferring one from classify.
func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// classify maps a core error to an exit code (§6): 1 for an ordinary
// recoverable failure, 2 for an error indicating the segment or a file may
// be corrupt or incompatible, 3 for the journal's "inconsistent" error,
// which per §7 means a mutation partially applied before the journal
// failed.
func classify(err error) int {
	if err == nil {
		return 0
	}
	var ce *exitError
	if errors.As(err, &ce) {
		return ce.code
	}
	switch {
	case errors.Is(err, journal.ErrInconsistent):
		return 3
	case errors.Is(err, journal.ErrBadMagic),
		errors.Is(err, journal.ErrCorrupt),
		errors.Is(err, segment.ErrBadMagic),
		errors.Is(err, segment.ErrVersionMismatch),
		errors.Is(err, segment.ErrFeatureMismatch),
		errors.Is(err, segment.ErrNotInitialized),
		errors.Is(err, dump.ErrBadMagic),
		errors.Is(err, dump.ErrVersionMismatch),
		errors.Is(err, dump.ErrFeatureMismatch),
		errors.Is(err, dump.ErrChecksumMismatch),
		errors.Is(err, dump.ErrTruncated):
		return 2
	default:
		return 1
	}
}
