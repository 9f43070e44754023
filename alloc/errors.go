package alloc

import "errors"

var (
	// ErrOutOfMemory indicates the area could not satisfy an allocation even
	// after attempting to grow (§7.2 "Out of memory in segment").
	ErrOutOfMemory = errors.New("alloc: out of memory in segment")

	// ErrBadArgument indicates a negative or nonsensical size was requested
	// (§7.3 "Bad argument").
	ErrBadArgument = errors.New("alloc: bad argument")

	// ErrNotInUse indicates Free was called on an offset whose header is not
	// tagged in-use.
	ErrNotInUse = errors.New("alloc: object is not in use")

	// ErrCorrupt indicates an internal consistency check (boundary tag,
	// freelist link) failed while walking the heap.
	ErrCorrupt = errors.New("alloc: heap structure corrupt")
)
