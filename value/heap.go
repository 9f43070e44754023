package value

import (
	"math"

	"github.com/wgdb/wgdb/alloc"
	"github.com/wgdb/wgdb/internal/wbin"
	"github.com/wgdb/wgdb/segment"
)

// HeapArea binds the fixed-length areas a segment dedicates to each heap
// value kind (§3: AreaWord, AreaDoubleWord, AreaShortStr) plus the
// variable-length area long strings live in.
type HeapArea struct {
	seg      *segment.Segment
	words    alloc.FixedArea
	doubles  alloc.FixedArea
	shortStr alloc.FixedArea
	longStr  alloc.VarArea
}

// ShortStrMaxLen is the payload ceiling for the fixed-size short-string
// area; longer strings are interned in the long-string area instead.
const ShortStrMaxLen = 32

// wordCellLen / doubleCellLen include the object's own 8-byte value; fixed
// areas round everything up to alloc.MinObjectSize in practice, but these
// are the meaningful payload widths.
const (
	wordCellLen   = 8
	doubleCellLen = 8
	shortStrCell  = 8 + ShortStrMaxLen // length prefix + payload
)

// NewHeapArea binds a HeapArea to a segment's built-in areas.
func NewHeapArea(seg *segment.Segment) HeapArea {
	return HeapArea{
		seg:      seg,
		words:    alloc.NewFixedArea(seg, segment.AreaWord),
		doubles:  alloc.NewFixedArea(seg, segment.AreaDoubleWord),
		shortStr: alloc.NewFixedArea(seg, segment.AreaShortStr),
		longStr:  alloc.NewVarArea(seg, segment.AreaLongStr),
	}
}

// EncodeFullInt allocates a full-width integer object, regardless of
// whether v would also fit as an immediate small int (callers decide that
// trade-off via EncodeInt first).
func (h HeapArea) EncodeFullInt(v int64) (Word, error) {
	off, err := h.words.Alloc(wordCellLen)
	if err != nil {
		return 0, err
	}
	wbin.PutI64(h.seg.Bytes(), int(off), v)
	return packOffset(off, tag3FullInt), nil
}

func (h HeapArea) DecodeFullInt(w Word) (int64, error) {
	if KindOf(w) != KindFullInt {
		return 0, ErrWrongKind
	}
	return wbin.ReadI64(h.seg.Bytes(), int(offsetOf(w))), nil
}

// FreeFullInt releases a full-int object back to its fixed area.
func (h HeapArea) FreeFullInt(w Word) error { return h.words.Free(offsetOf(w)) }

// EncodeDouble allocates a full-width double object.
func (h HeapArea) EncodeDouble(v float64) (Word, error) {
	off, err := h.doubles.Alloc(doubleCellLen)
	if err != nil {
		return 0, err
	}
	wbin.PutU64(h.seg.Bytes(), int(off), math.Float64bits(v))
	return packOffset(off, tag3Double), nil
}

func (h HeapArea) DecodeDouble(w Word) (float64, error) {
	if KindOf(w) != KindDouble {
		return 0, ErrWrongKind
	}
	bits := wbin.ReadU64(h.seg.Bytes(), int(offsetOf(w)))
	return math.Float64frombits(bits), nil
}

func (h HeapArea) FreeDouble(w Word) error { return h.doubles.Free(offsetOf(w)) }

// EncodeShortStr allocates a short-string object. Equality for short
// strings is by bit identity (§4.F): two equal strings encoded separately
// get distinct offsets and are not interned.
func (h HeapArea) EncodeShortStr(s string) (Word, error) {
	if len(s) > ShortStrMaxLen {
		return 0, ErrRange
	}
	off, err := h.shortStr.Alloc(shortStrCell)
	if err != nil {
		return 0, err
	}
	buf := h.seg.Bytes()
	wbin.PutI64(buf, int(off), int64(len(s)))
	copy(buf[off+8:off+8+int64(len(s))], s)
	return packOffset(off, tag3ShortStr), nil
}

func (h HeapArea) DecodeShortStr(w Word) (string, error) {
	if KindOf(w) != KindShortStr {
		return "", ErrWrongKind
	}
	off := offsetOf(w)
	buf := h.seg.Bytes()
	n := wbin.ReadI64(buf, int(off))
	return string(buf[off+8 : off+8+n]), nil
}

func (h HeapArea) FreeShortStr(w Word) error { return h.shortStr.Free(offsetOf(w)) }

// EncodeRecordRef tags a record's own header offset as a value word; no
// allocation happens here, the record already exists.
func EncodeRecordRef(recOffset int64) Word { return packOffset(recOffset, tag3RecordRef) }

func DecodeRecordRef(w Word) (int64, error) {
	if KindOf(w) != KindRecordRef {
		return 0, ErrWrongKind
	}
	return offsetOf(w), nil
}
