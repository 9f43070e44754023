package segment

// Binary layout of a Segment. Mirrors the teacher's "one page of scalar
// header fields, then fixed-size inlined sub-structures" layout
// (internal/format's REGF header followed by per-structure offset tables),
// generalized from a single HBIN pointer to WhiteDB's full area-header set.
const (
	// HeaderSize is the size in bytes of the fixed scalar prefix of the
	// segment header (magic, version, feature bitmask, checksum, bump
	// pointer, lock protocol selector, ...). One 4KiB page, as for the
	// teacher's REGF header.
	HeaderSize = 4096

	MagicOffset          = 0x000 // 4 bytes
	VersionMajorOffset   = 0x004 // uint16
	VersionMinorOffset   = 0x006 // uint16
	VersionPatchOffset   = 0x008 // uint16
	FeatureBitmaskOffset = 0x010 // uint64
	ChecksumOffset       = 0x018 // uint32 (CRC32 of dump prefix, see dump package)
	TotalSizeOffset      = 0x020 // int64
	FreeOffsetOffset     = 0x028 // int64, the bump pointer
	OrigAddrOffset       = 0x030 // int64, informational only
	ShmKeyOffset         = 0x038 // int64
	LockProtocolOffset   = 0x040 // uint32
	LockStateOffset      = 0x048 // int64, offset of the lock state block

	// MagicInit marks a segment that init_db_memsegment has not yet finished
	// building; MagicMark marks a fully initialized segment (invariant 8).
	MagicInit = 0x57444249 // "WDBI" little-endian
	MagicMark = 0x5744424d // "WDBM" little-endian
)

// AreaKind distinguishes the two allocation disciplines an Area can use.
type AreaKind uint8

const (
	KindFixed AreaKind = iota
	KindVariable
)

// AreaID indexes the built-in areas inlined into the segment header. Every
// segment has exactly these areas; there is no user-defined area creation.
type AreaID int

const (
	AreaDataRec    AreaID = iota // variable: data records
	AreaLongStr                 // variable: long strings
	AreaIndexHash                // variable: index hash table storage
	AreaListCell                 // fixed: backlink list cells
	AreaShortStr                 // fixed: short strings (<=32B payload)
	AreaWord                      // fixed: full-width integer objects
	AreaDoubleWord                // fixed: full-width double objects
	AreaTTree                     // fixed: T-tree nodes (opaque to the core)
	AreaIndexHdr                  // fixed: index headers (opaque to the core)
	AreaQueueNode                 // fixed: lock-protocol queue nodes (TFQ)
	NumAreas
)

var areaKinds = [NumAreas]AreaKind{
	AreaDataRec:    KindVariable,
	AreaLongStr:    KindVariable,
	AreaIndexHash:  KindVariable,
	AreaListCell:   KindFixed,
	AreaShortStr:   KindFixed,
	AreaWord:       KindFixed,
	AreaDoubleWord: KindFixed,
	AreaTTree:      KindFixed,
	AreaIndexHdr:   KindFixed,
	AreaQueueNode:  KindFixed,
}

// Kind reports whether id is a fixed- or variable-length area.
func (id AreaID) Kind() AreaKind { return areaKinds[id] }

// Per-area header layout. One block of this size is inlined into the
// segment header for every AreaID.
const (
	MaxSubAreas = 64 // §3 "Area": up to 64 sub-areas per area

	areaKindOffset         = 0x000 // 1 byte
	areaObjLengthOffset    = 0x008 // int64, fixed areas only
	areaFreeListHeadOffset = 0x010 // int64, fixed areas only
	areaSubAreaCountOffset = 0x018 // int32
	areaSubAreasOffset     = 0x020 // MaxSubAreas * subAreaEntrySize
	subAreaEntrySize       = 16    // {offset int64, size int64}

	// EXACT and VAR bucket layout (§4.E), variable areas only.
	ExactBuckets = 256
	VarBuckets   = 32

	areaExactHeadsOffset = areaSubAreasOffset + MaxSubAreas*subAreaEntrySize
	areaVarHeadsOffset   = areaExactHeadsOffset + ExactBuckets*8
	areaDVOffsetOffset   = areaVarHeadsOffset + VarBuckets*8
	areaDVSizeOffset     = areaDVOffsetOffset + 8

	// AreaHeaderSize is the total size of one inlined area header block.
	// Fixed areas only use the first areaSubAreasOffset+MaxSubAreas*16 bytes
	// of this; the bucket/DV tail is reserved but unused so that every area
	// slot has identical size and can be indexed uniformly.
	AreaHeaderSize = areaDVSizeOffset + 8
)

// Areas start immediately after the scalar header page.
const AreasOffset = HeaderSize

// Tail region: string hash table descriptor, external-db registration
// table, and logging state. Laid out right after the area header array.
const (
	tailOffset = AreasOffset + NumAreas*AreaHeaderSize

	stringHashOffsetOffset = tailOffset + 0x000 // int64
	stringHashSizeOffset   = tailOffset + 0x008 // int64, bucket count

	MaxExtDBRefs          = 64
	extDBCountOffset      = tailOffset + 0x010 // int32
	extDBKeysOffset       = tailOffset + 0x018 // MaxExtDBRefs * int64

	loggingEnabledOffset    = extDBKeysOffset + MaxExtDBRefs*8 // uint32
	loggingGenerationOffset = loggingEnabledOffset + 0x008     // uint64

	// TailEnd is the first byte after all inlined header structures; the
	// bump pointer (FreeOffset) starts here (word-aligned) on a fresh
	// segment.
	TailEnd = loggingGenerationOffset + 8
)

// String hash table sizing: a fixed percentage of the segment's declared
// size, matching §3 "String hash table. ... Size is chosen as a percentage
// of segment size."
const StringHashPercent = 1 // 1% of segment size, in buckets of 8 bytes each
