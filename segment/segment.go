package segment

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/wgdb/wgdb/internal/wbin"
)

// Version is this build's segment format version (§4.B "verify ... the
// version word matches").
const (
	VersionMajor uint16 = 1
	VersionMinor uint16 = 0
	VersionPatch uint16 = 0
)

// DefaultAlignment is the sub-area alignment fixed by §4.C.
const DefaultAlignment = 8

// DefaultInitialSubAreaSize is the initial sub-area size before successive
// doubling, per §3 "Area" (default 8 KiB).
const DefaultInitialSubAreaSize = 8 * 1024

// DefaultKey is the attach key used when NormalizeKey rejects its input.
const DefaultKey = 1000

// segmentDir is where named OS-shared segments are created. A build-time
// constant, matching §6's "no environment variables control core behavior".
var segmentDir = filepath.Join(os.TempDir(), "wgdb")

// Segment is an attached WhiteDB memory segment: one contiguous byte slice,
// plus the file/mapping resources needed to detach it cleanly.
type Segment struct {
	buf    []byte
	size   int64
	name   string
	shared bool
	file   *os.File
}

// Bytes returns the full backing buffer. Callers treat every reference into
// it as a byte offset from index 0, never as a native pointer (§3).
func (s *Segment) Bytes() []byte { return s.buf }

// Size returns the segment's total declared size.
func (s *Segment) Size() int64 { return s.size }

// Header returns a view over the segment's scalar header fields.
func (s *Segment) Header() Header { return newHeader(s.buf) }

// NormalizeKey parses a textual attach key as decimal; values that don't
// parse, or that are <=0 or at the int64 extremes, map to DefaultKey (§6
// "Attach key").
func NormalizeKey(text string) int64 {
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return DefaultKey
	}
	if v <= 0 || v == math.MaxInt64 || v == math.MinInt64 {
		return DefaultKey
	}
	return v
}

// NormalizeMode normalizes an octal permission mask so the owner always has
// read/write and group/other bits are all-or-nothing (§6 "Permissions").
func NormalizeMode(mode os.FileMode) os.FileMode {
	m := mode.Perm() | 0o600
	group := m & 0o070
	other := m & 0o007
	if group != 0 {
		group = 0o070
	}
	if other != 0 {
		other = 0o007
	}
	return (m &^ 0o077) | group | other
}

// Options configures Attach.
type Options struct {
	Name         string // textual attach key; normalized via NormalizeKey
	MinSize      int64
	MaxSize      int64
	Create       bool
	Logging      bool
	Mode         os.FileMode
	LockProtocol LockProtocol
}

func keyPath(key int64) string {
	return filepath.Join(segmentDir, fmt.Sprintf("seg-%d", key))
}

// Attach maps the named segment, creating it if absent and opts.Create is
// true (§4.B "attach"). On creation, MaxSize is attempted first, falling
// back to MinSize if the larger allocation fails.
func Attach(opts Options) (*Segment, error) {
	key := NormalizeKey(opts.Name)
	if err := os.MkdirAll(segmentDir, 0o700); err != nil {
		return nil, fmt.Errorf("segment: create segment dir: %w", err)
	}
	path := keyPath(key)
	mode := NormalizeMode(opts.Mode)
	if mode == 0 {
		mode = 0o600
	}

	_, statErr := os.Stat(path)
	existed := statErr == nil

	if !existed && !opts.Create {
		return nil, fmt.Errorf("segment: %q does not exist and create=false: %w", opts.Name, os.ErrNotExist)
	}

	size := opts.MaxSize
	if existed {
		// Size is determined by the file itself; mapShared will not shrink
		// or grow an existing file.
		size = opts.MinSize
	}

	buf, f, err := mapShared(path, size, mode, !existed)
	if err != nil && !existed && opts.MaxSize != opts.MinSize {
		// Fall back to the minimum size (§4.B "falling back to min on failure").
		buf, f, err = mapShared(path, opts.MinSize, mode, true)
		size = opts.MinSize
	}
	if err != nil {
		return nil, err
	}

	seg := &Segment{buf: buf, size: int64(len(buf)), name: opts.Name, shared: true, file: f}

	if existed {
		if err := verifyCompat(seg, opts); err != nil {
			unmapShared(buf, f)
			return nil, err
		}
		return seg, nil
	}

	if err := initSegment(seg, key, opts.LockProtocol); err != nil {
		unmapShared(buf, f)
		deleteShared(path)
		return nil, err
	}
	return seg, nil
}

// verifyCompat checks an existing segment's header against the attaching
// process's expectations (§4.B): magic mark must be MARK, version must
// match, feature bitmask must match exactly, and (if a minimum size was
// requested) the recorded size must be at least that minimum. On mismatch,
// the segment is left untouched.
func verifyCompat(seg *Segment, opts Options) error {
	h := seg.Header()

	ok, swapped := wbin.MagicMatches(seg.buf, MagicMark)
	if swapped {
		return fmt.Errorf("segment: %w: opposite byte order", ErrBadMagic)
	}
	if !ok {
		if m, _ := wbin.MagicMatches(seg.buf, MagicInit); m {
			return ErrNotInitialized
		}
		return ErrBadMagic
	}

	major, minor, _ := h.Version()
	if major != VersionMajor || minor != VersionMinor {
		return ErrVersionMismatch
	}

	want := DefaultFeatures
	if opts.LockProtocol == LockTaskFairQueued {
		want |= FeatureQueuedLocks
	}
	if h.Features() != want {
		return ErrFeatureMismatch
	}

	if opts.MinSize > 0 && h.TotalSize() < opts.MinSize {
		return ErrTooSmall
	}
	return nil
}

// initSegment lays out a brand-new segment: writes MagicInit, zeroes and
// formats every inlined area header, sizes the string hash table, sets the
// bump pointer past the header/tail region, and finally flips the magic
// mark to MagicMark (invariant 8).
func initSegment(seg *Segment, shmKey int64, proto LockProtocol) error {
	h := seg.Header()
	h.setMagic(MagicInit)
	h.setVersion(VersionMajor, VersionMinor, VersionPatch)

	features := DefaultFeatures
	if proto == LockTaskFairQueued {
		features |= FeatureQueuedLocks
	}
	h.setFeatures(features)
	h.setLockProtocol(proto)
	h.SetChecksum(0)
	h.setTotalSize(seg.size)
	h.setOrigAddr(0)
	h.setShmKey(shmKey)

	free := wbin.AlignI64(int64(TailEnd), DefaultAlignment)

	// String hash bucket array: StringHashPercent% of the segment, in
	// 8-byte bucket heads (§3 "String hash table").
	buckets := (seg.size * StringHashPercent / 100) / 8
	if buckets < 16 {
		buckets = 16
	}
	shOff := free
	shSize := buckets * 8
	if shOff+shSize > seg.size {
		return ErrOutOfSpace
	}
	sh := h.StringHash()
	sh.setOffset(shOff)
	sh.setNumBuckets(buckets)
	free += shSize
	free = wbin.AlignI64(free, DefaultAlignment)

	h.setFreeOffset(free)
	h.setLockStateOffset(0) // lock package initializes this on first use

	for i := AreaID(0); i < NumAreas; i++ {
		a := h.Area(i)
		if i.Kind() == KindFixed {
			a.setObjLength(0)
			a.SetFreeListHead(0)
		} else {
			a.SetDVOffset(0)
			a.SetDVSize(0)
		}
		a.setSubAreaCount(0)
	}

	h.setMagic(MagicMark)
	return nil
}

// Detach unmaps the segment. It does not destroy the underlying OS object
// (§4.B "detach").
func Detach(s *Segment) error {
	if s == nil {
		return ErrInvalidHandle
	}
	if !s.shared {
		return nil
	}
	return unmapShared(s.buf, s.file)
}

// Delete destroys the OS-level segment identified by name (§4.B "delete").
func Delete(name string) error {
	key := NormalizeKey(name)
	return deleteShared(keyPath(key))
}

// AttachLocal allocates a process-local buffer (no OS object, no other
// process can attach to it) and initializes the same layout as a shared
// segment (§4.B "attach_local").
func AttachLocal(size int64, proto LockProtocol) (*Segment, error) {
	buf := make([]byte, size)
	seg := &Segment{buf: buf, size: size, shared: false}
	if err := initSegment(seg, 0, proto); err != nil {
		return nil, err
	}
	return seg, nil
}
