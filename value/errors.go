package value

import "errors"

var (
	// ErrRange indicates a value does not fit the target immediate encoding
	// (e.g. a small int outside the shiftable range) and must be promoted to
	// a heap representation instead.
	ErrRange = errors.New("value: out of range for this encoding")

	// ErrWrongKind indicates decode was asked to interpret a word as a kind
	// its tag bits do not actually carry.
	ErrWrongKind = errors.New("value: word does not carry the requested kind")

	// ErrExternalRef indicates a record-reference word points at an offset
	// registered to another (external) database, which this build does not
	// resolve (§7.6).
	ErrExternalRef = errors.New("value: external database reference not recognized")

	// ErrBadArgument indicates a malformed input to a parsing helper (§7.3).
	ErrBadArgument = errors.New("value: bad argument")
)
