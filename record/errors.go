package record

import "errors"

var (
	// ErrHasBacklinks indicates Delete was attempted on a record still
	// referenced by at least one other record (§4.G "delete").
	ErrHasBacklinks = errors.New("record: cannot delete, backlink chain non-empty")

	// ErrNotNull indicates SetNewField was attempted on a slot that already
	// holds a non-NULL value.
	ErrNotNull = errors.New("record: field is not NULL")

	// ErrNotAtomic indicates UpdateAtomicField was attempted with a
	// non-immediate value, an indexed column, or journaling enabled.
	ErrNotAtomic = errors.New("record: field or mode is not eligible for atomic update")

	// ErrCASMismatch indicates the field's current value did not match the
	// caller's expected value.
	ErrCASMismatch = errors.New("record: compare-and-swap expected value mismatch")

	// ErrDeadlockSuspected indicates SetAtomicField/AddIntAtomicField gave up
	// after its retry budget was exhausted.
	ErrDeadlockSuspected = errors.New("record: deadlock suspected after repeated CAS failures")

	// ErrColumnRange indicates a column index outside the record's field
	// count.
	ErrColumnRange = errors.New("record: column index out of range")

	// ErrBacklinkNotFound indicates Unlink was asked to remove a backlink
	// entry that does not exist.
	ErrBacklinkNotFound = errors.New("record: backlink entry not found")

	// ErrBadArgument indicates a negative field count was requested.
	ErrBadArgument = errors.New("record: bad argument")
)
