package value

// Word is one encoded machine word: either an immediate value shifted into
// its high bits, or a heap offset with a low-bits type tag (§3 "Encoded
// values").
type Word int64

// Kind names the sum type a Word decodes to (§9 "Tagged union of
// encodings").
type Kind int

const (
	KindNull Kind = iota
	KindSmallInt
	KindFullInt
	KindDouble
	KindFixpoint
	KindChar
	KindDate
	KindTime
	KindAnonConst
	KindVar
	KindShortStr
	KindLongStr
	KindURI
	KindXMLLiteral
	KindBlob
	KindRecordRef
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindSmallInt:
		return "smallint"
	case KindFullInt:
		return "int"
	case KindDouble:
		return "double"
	case KindFixpoint:
		return "fixpoint"
	case KindChar:
		return "char"
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindAnonConst:
		return "anonconst"
	case KindVar:
		return "var"
	case KindShortStr:
		return "shortstr"
	case KindLongStr:
		return "longstr"
	case KindURI:
		return "uri"
	case KindXMLLiteral:
		return "xmlliteral"
	case KindBlob:
		return "blob"
	case KindRecordRef:
		return "recordref"
	default:
		return "unknown"
	}
}

// Low 3-bit primary tags (§3 "Encoded values" table). Offset-carrying kinds
// use these directly; the 111 tag is subdivided further below.
const (
	tag3RecordRef Word = 0b000
	tag3FullInt   Word = 0b001
	tag3Double    Word = 0b010
	tag3SmallInt  Word = 0b011
	tag3LongStr   Word = 0b100
	tag3ShortStr  Word = 0b110
	tag3Extended  Word = 0b111

	tag3Mask  = 0b111
	shift3    = 3
	smallMask = ^Word(0) << shift3
)

// Within tag3Extended (low 3 bits == 111), bit 3 distinguishes the
// reasoner-variable immediate (0) from the further-tagged 4-bit family (1).
const (
	tag4Var      Word = 0b0111
	tag4Extended Word = 0b1111

	tag4Mask = 0b1111
	shift4   = 4
)

// Within tag4Extended, bits 4..7 (the next nibble) pick the specific
// immediate kind; the payload is shifted above that.
const (
	subFixpoint Word = 0b0001
	subChar     Word = 0b0011
	subDate     Word = 0b0101
	subTime     Word = 0b0111
	subAnonConst Word = 0b1011

	subMask = 0b1111
	shift8  = 8
)

func packSmallInt(v int64) Word { return (Word(v) << shift3) | tag3SmallInt }
func unpackSmallInt(w Word) int64 { return int64(w >> shift3) }

func packSub(sub Word, payload int64) Word {
	return (Word(payload) << shift8) | (sub << shift4) | tag4Extended
}
func unpackSub(w Word) int64 { return int64(w >> shift8) }

func packVar(idx int64) Word { return (Word(idx) << shift4) | tag4Var }
func unpackVar(w Word) int64 { return int64(w >> shift4) }

func packOffset(off int64, tag Word) Word { return Word(off) | tag }
func offsetOf(w Word) int64               { return int64(w &^ tag3Mask) }

// HasOffset reports whether w's kind carries a heap offset in its low tag
// bits (every kind except the 4-bit immediate family and small ints). The
// journal package uses this to decide, generically, whether a logged value
// needs offset translation on replay.
func HasOffset(w Word) bool {
	switch KindOf(w) {
	case KindRecordRef, KindFullInt, KindDouble, KindLongStr, KindShortStr:
		return true
	default:
		return false
	}
}

// Offset returns the heap offset an offset-carrying word points at, and
// true; for a word whose kind does not carry one, it returns false.
func Offset(w Word) (int64, bool) {
	if !HasOffset(w) {
		return 0, false
	}
	return offsetOf(w), true
}

// Retag rebuilds a word of the same kind as w but pointing at newOffset,
// used by journal replay to translate a heap offset after reallocation
// without needing to know which specific kind w is.
func Retag(w Word, newOffset int64) Word {
	return packOffset(newOffset, w&tag3Mask)
}

// KindOf inspects a word's tag bits and reports which Kind it carries,
// without fully decoding the payload.
func KindOf(w Word) Kind {
	if w == 0 {
		return KindNull
	}
	switch w & tag3Mask {
	case tag3RecordRef:
		return KindRecordRef
	case tag3FullInt:
		return KindFullInt
	case tag3Double:
		return KindDouble
	case tag3SmallInt:
		return KindSmallInt
	case tag3LongStr:
		return KindLongStr // subtype (str/uri/xml/blob) lives in the heap object
	case tag3ShortStr:
		return KindShortStr
	case tag3Extended:
		if w&tag4Mask == tag4Var {
			return KindVar
		}
		switch (w >> shift4) & subMask {
		case subFixpoint:
			return KindFixpoint
		case subChar:
			return KindChar
		case subDate:
			return KindDate
		case subTime:
			return KindTime
		case subAnonConst:
			return KindAnonConst
		}
	}
	return KindNull
}
