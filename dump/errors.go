package dump

import "errors"

var (
	// ErrExternalRefs indicates the source segment has at least one
	// registered external-database reference; dumping it would produce a
	// file that cannot be faithfully restored (§4.J "Dumps are refused if
	// the source segment has any registered external-database
	// references").
	ErrExternalRefs = errors.New("dump: segment has registered external database references")

	// ErrBadMagic indicates a dump file's header magic mark is neither
	// MagicMark nor byte-swapped MagicMark — either garbage or a segment
	// that never finished initializing.
	ErrBadMagic = errors.New("dump: bad magic mark")

	// ErrVersionMismatch indicates a dump file's version triple does not
	// match this build's.
	ErrVersionMismatch = errors.New("dump: version mismatch")

	// ErrFeatureMismatch indicates a dump file's feature bitmask does not
	// match this build's.
	ErrFeatureMismatch = errors.New("dump: feature bitmask mismatch")

	// ErrChecksumMismatch indicates the recomputed CRC32 does not match
	// the checksum word stored in the dump.
	ErrChecksumMismatch = errors.New("dump: checksum mismatch")

	// ErrTooSmall indicates the target segment is smaller than the dump's
	// used prefix and cannot hold it.
	ErrTooSmall = errors.New("dump: target segment smaller than dump's used prefix")

	// ErrTruncated indicates a dump file is shorter than a segment header,
	// or shorter than the used-prefix length its own header records.
	ErrTruncated = errors.New("dump: file truncated")
)
