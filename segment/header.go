package segment

import (
	"fmt"

	"github.com/wgdb/wgdb/internal/wbin"
)

// Header is a zero-copy view over the scalar fields of a segment's header
// page, in the same spirit as the teacher's BaseBlock: it owns no memory of
// its own, it only interprets bytes that live in the Segment's buffer, so
// that every attached process reads (and CAS-writes) the exact same words.
type Header struct {
	buf []byte // the full segment buffer; accessors compute absolute offsets
}

func newHeader(buf []byte) Header { return Header{buf: buf} }

// NewHeaderView builds a Header over an arbitrary byte slice, for reading
// header fields out of a dump file that is not (yet, or any longer) an
// attached Segment (§4.J "check_dump").
func NewHeaderView(buf []byte) Header { return newHeader(buf) }

func (h Header) Magic() uint32      { return wbin.ReadU32(h.buf, MagicOffset) }
func (h Header) setMagic(v uint32)  { wbin.PutU32(h.buf, MagicOffset, v) }
func (h Header) Version() (major, minor, patch uint16) {
	b := h.buf
	return readU16(b, VersionMajorOffset), readU16(b, VersionMinorOffset), readU16(b, VersionPatchOffset)
}

// setVersion packs major/minor/patch into the three uint16 slots reserved
// for them (each slot is byte-addressed individually to avoid overlap).
func (h Header) setVersion(major, minor, patch uint16) {
	putU16(h.buf, VersionMajorOffset, major)
	putU16(h.buf, VersionMinorOffset, minor)
	putU16(h.buf, VersionPatchOffset, patch)
}

func putU16(b []byte, off int, v uint16) {
	b[off] = byte(v)
	b[off+1] = byte(v >> 8)
}

func readU16(b []byte, off int) uint16 {
	return uint16(b[off]) | uint16(b[off+1])<<8
}

func (h Header) Features() FeatureBits     { return FeatureBits(wbin.ReadU64(h.buf, FeatureBitmaskOffset)) }
func (h Header) setFeatures(f FeatureBits) { wbin.PutU64(h.buf, FeatureBitmaskOffset, uint64(f)) }

func (h Header) Checksum() uint32     { return wbin.ReadU32(h.buf, ChecksumOffset) }
func (h Header) SetChecksum(v uint32) { wbin.PutU32(h.buf, ChecksumOffset, v) }

func (h Header) TotalSize() int64     { return wbin.ReadI64(h.buf, TotalSizeOffset) }
func (h Header) setTotalSize(v int64) { wbin.PutI64(h.buf, TotalSizeOffset, v) }

func (h Header) FreeOffset() int64     { return wbin.ReadI64(h.buf, FreeOffsetOffset) }
func (h Header) setFreeOffset(v int64) { wbin.PutI64(h.buf, FreeOffsetOffset, v) }

func (h Header) OrigAddr() int64     { return wbin.ReadI64(h.buf, OrigAddrOffset) }
func (h Header) setOrigAddr(v int64) { wbin.PutI64(h.buf, OrigAddrOffset, v) }

func (h Header) ShmKey() int64     { return wbin.ReadI64(h.buf, ShmKeyOffset) }
func (h Header) setShmKey(v int64) { wbin.PutI64(h.buf, ShmKeyOffset, v) }

func (h Header) LockProtocol() LockProtocol { return LockProtocol(wbin.ReadU32(h.buf, LockProtocolOffset)) }
func (h Header) setLockProtocol(p LockProtocol) {
	wbin.PutU32(h.buf, LockProtocolOffset, uint32(p))
}

func (h Header) LockStateOffset() int64     { return wbin.ReadI64(h.buf, LockStateOffset) }
func (h Header) setLockStateOffset(v int64) { wbin.PutI64(h.buf, LockStateOffset, v) }

// ResetLockState clears the published lock-state block offset, forcing
// lock.New's ensureState to carve a fresh block on next use. dump.Import
// calls this after restoring segment bytes from a dump, since lock
// ownership does not survive a dump (§4.J).
func (h Header) ResetLockState() { h.setLockStateOffset(0) }

// Version() reads each component with readU16 directly; version components
// never exceed 16 bits.

// FeatureBits is the published feature bitmask (§6). Attach rejects a
// segment whose mask differs from the attaching process's build.
type FeatureBits uint64

const (
	Feature64BitData FeatureBits = 1 << iota
	FeatureQueuedLocks
	FeatureChainedTTree
	FeatureBacklinks
	FeatureChildDatabases
	FeatureIndexTemplates
)

// DefaultFeatures is what this implementation always builds with: 64-bit
// words, backlinks, and whichever lock protocol was requested at create
// time (queued locks is reflected separately via FeatureQueuedLocks so RP/WP
// segments don't carry it).
const DefaultFeatures = Feature64BitData | FeatureBacklinks

// LockProtocol selects one of the three interchangeable §4.H protocols.
// All processes attaching to a segment must agree (enforced via the
// feature bitmask at attach time).
type LockProtocol uint32

const (
	LockReaderPreference LockProtocol = iota
	LockWriterPreference
	LockTaskFairQueued
)

func (p LockProtocol) String() string {
	switch p {
	case LockReaderPreference:
		return "reader-preference"
	case LockWriterPreference:
		return "writer-preference"
	case LockTaskFairQueued:
		return "task-fair-queued"
	default:
		return fmt.Sprintf("LockProtocol(%d)", uint32(p))
	}
}

// AreaHeader is a zero-copy view over one of the NumAreas inlined area
// header blocks.
type AreaHeader struct {
	buf  []byte
	base int
	id   AreaID
}

func (h Header) Area(id AreaID) AreaHeader {
	return AreaHeader{buf: h.buf, base: AreasOffset + int(id)*AreaHeaderSize, id: id}
}

func (a AreaHeader) ID() AreaID     { return a.id }
func (a AreaHeader) Kind() AreaKind { return a.id.Kind() }

func (a AreaHeader) ObjLength() int64     { return wbin.ReadI64(a.buf, a.base+areaObjLengthOffset) }
func (a AreaHeader) setObjLength(v int64) { wbin.PutI64(a.buf, a.base+areaObjLengthOffset, v) }

func (a AreaHeader) FreeListHead() int64     { return wbin.ReadI64(a.buf, a.base+areaFreeListHeadOffset) }
func (a AreaHeader) SetFreeListHead(v int64) { wbin.PutI64(a.buf, a.base+areaFreeListHeadOffset, v) }

func (a AreaHeader) SubAreaCount() int {
	return int(wbin.ReadI32(a.buf, a.base+areaSubAreaCountOffset))
}
func (a AreaHeader) setSubAreaCount(n int) {
	wbin.PutI32(a.buf, a.base+areaSubAreaCountOffset, int32(n))
}

// SubArea returns the (offset, size) of the i'th sub-area carved for this
// area, or (0, 0) if i is out of range.
func (a AreaHeader) SubArea(i int) (offset, size int64) {
	if i < 0 || i >= MaxSubAreas {
		return 0, 0
	}
	base := a.base + areaSubAreasOffset + i*subAreaEntrySize
	return wbin.ReadI64(a.buf, base), wbin.ReadI64(a.buf, base+8)
}

func (a AreaHeader) appendSubArea(offset, size int64) error {
	n := a.SubAreaCount()
	if n >= MaxSubAreas {
		return ErrTooManySubAreas
	}
	base := a.base + areaSubAreasOffset + n*subAreaEntrySize
	wbin.PutI64(a.buf, base, offset)
	wbin.PutI64(a.buf, base+8, size)
	a.setSubAreaCount(n + 1)
	return nil
}

// ExactHead returns the freelist head offset for EXACT bucket i (variable
// areas only).
func (a AreaHeader) ExactHead(i int) int64 {
	return wbin.ReadI64(a.buf, a.base+areaExactHeadsOffset+i*8)
}
func (a AreaHeader) SetExactHead(i int, v int64) {
	wbin.PutI64(a.buf, a.base+areaExactHeadsOffset+i*8, v)
}

// VarHead returns the freelist head offset for VAR bucket i (variable areas
// only).
func (a AreaHeader) VarHead(i int) int64 {
	return wbin.ReadI64(a.buf, a.base+areaVarHeadsOffset+i*8)
}
func (a AreaHeader) SetVarHead(i int, v int64) {
	wbin.PutI64(a.buf, a.base+areaVarHeadsOffset+i*8, v)
}

func (a AreaHeader) DVOffset() int64     { return wbin.ReadI64(a.buf, a.base+areaDVOffsetOffset) }
func (a AreaHeader) SetDVOffset(v int64) { wbin.PutI64(a.buf, a.base+areaDVOffsetOffset, v) }

func (a AreaHeader) DVSize() int64     { return wbin.ReadI64(a.buf, a.base+areaDVSizeOffset) }
func (a AreaHeader) SetDVSize(v int64) { wbin.PutI64(a.buf, a.base+areaDVSizeOffset, v) }

// StringHash describes the global long-string interning table (§3 "String
// hash table").
type StringHash struct{ buf []byte }

func (h Header) StringHash() StringHash { return StringHash{buf: h.buf} }

func (s StringHash) Offset() int64     { return wbin.ReadI64(s.buf, stringHashOffsetOffset) }
func (s StringHash) setOffset(v int64) { wbin.PutI64(s.buf, stringHashOffsetOffset, v) }

func (s StringHash) NumBuckets() int64     { return wbin.ReadI64(s.buf, stringHashSizeOffset) }
func (s StringHash) setNumBuckets(v int64) { wbin.PutI64(s.buf, stringHashSizeOffset, v) }

func (s StringHash) BucketHead(i int64) int64 {
	return wbin.ReadI64(s.buf, int(s.Offset())+int(i)*8)
}
func (s StringHash) SetBucketHead(i int64, v int64) {
	wbin.PutI64(s.buf, int(s.Offset())+int(i)*8, v)
}

// ExtDBTable tracks the registered external-database keys referenced by
// encoded values (§7.6 "external reference not recognized"); dump refuses
// to run while this table is non-empty (§4.J).
type ExtDBTable struct{ buf []byte }

func (h Header) ExtDB() ExtDBTable { return ExtDBTable{buf: h.buf} }

func (e ExtDBTable) Count() int { return int(wbin.ReadI32(e.buf, extDBCountOffset)) }

func (e ExtDBTable) Register(key int64) error {
	n := e.Count()
	if n >= MaxExtDBRefs {
		return ErrTooManyExtDBRefs
	}
	wbin.PutI64(e.buf, extDBKeysOffset+n*8, key)
	wbin.PutI32(e.buf, extDBCountOffset, int32(n+1))
	return nil
}

func (e ExtDBTable) Has(key int64) bool {
	for i := 0; i < e.Count(); i++ {
		if wbin.ReadI64(e.buf, extDBKeysOffset+i*8) == key {
			return true
		}
	}
	return false
}

// LoggingState exposes the journal's active/inactive flag, persisted in the
// segment so every attaching process agrees on whether mutations must be
// journaled (§4.B "if logging, activate journal").
type LoggingState struct{ buf []byte }

func (h Header) Logging() LoggingState { return LoggingState{buf: h.buf} }

func (l LoggingState) Enabled() bool { return wbin.ReadU32(l.buf, loggingEnabledOffset) != 0 }
func (l LoggingState) SetEnabled(v bool) {
	if v {
		wbin.PutU32(l.buf, loggingEnabledOffset, 1)
	} else {
		wbin.PutU32(l.buf, loggingEnabledOffset, 0)
	}
}

func (l LoggingState) Generation() uint64 { return wbin.ReadU64(l.buf, loggingGenerationOffset) }
func (l LoggingState) BumpGeneration()    { wbin.PutU64(l.buf, loggingGenerationOffset, l.Generation()+1) }
