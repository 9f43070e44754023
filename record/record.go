package record

import (
	"github.com/wgdb/wgdb/internal/wbin"
	"github.com/wgdb/wgdb/segment"
	"github.com/wgdb/wgdb/value"
)

// Class is the record-class nibble stored in the meta word (§4.G "meta word
// (flags and record class: data/special/match/document/object/array)").
type Class int64

const (
	ClassData Class = iota
	ClassSpecial
	ClassMatch
	ClassDocument
	ClassObject
	ClassArray
)

// Header word layout, relative to a record's object offset. Word 0 (the
// size/tag word) belongs to the variable-area allocator itself (alloc.cell);
// record.Record neither reads nor writes it; the field count lives in the
// meta word instead. Words 1 and 2 are the two record-owned header words the spec
// names ("meta word" and "offset of the backlink chain").
const (
	metaOff     = 8
	backlinkOff = 16
	fieldsOff   = 24

	// classMask addresses the low byte of the meta word; the field count
	// occupies the bits from countShift (16) upward. Packing the count into the meta word
	// keeps the header at exactly the three words §4.G specifies instead of
	// adding a fourth (see DESIGN.md's Open Questions).
	classMask  = 0xFF
	countShift = 16
)

// Record is a zero-copy view over one record object living in a segment's
// data-record area, in the same spirit as the teacher's hive.NKRecord.
type Record struct {
	seg *segment.Segment
	off int64
}

// At constructs the Record view for an object at off.
func At(seg *segment.Segment, off int64) Record { return Record{seg: seg, off: off} }

// Offset returns the record's own offset, suitable for packing into a
// value.Word via value.EncodeRecordRef.
func (r Record) Offset() int64 { return r.off }

func (r Record) buf() []byte { return r.seg.Bytes() }

func (r Record) meta() int64     { return wbin.ReadI64(r.buf(), int(r.off+metaOff)) }
func (r Record) setMeta(v int64) { wbin.PutI64(r.buf(), int(r.off+metaOff), v) }

// Class reports the record's class.
func (r Record) Class() Class { return Class(r.meta() & classMask) }

func (r Record) setClassCount(c Class, n int) {
	r.setMeta(int64(c) | int64(n)<<countShift)
}

// NumFields reports the record's declared field count.
func (r Record) NumFields() int { return int(r.meta() >> countShift) }

// BacklinkHead returns the offset of the first backlink-chain cell, or 0 if
// the record has no backlinks.
func (r Record) BacklinkHead() int64 { return wbin.ReadI64(r.buf(), int(r.off+backlinkOff)) }
func (r Record) setBacklinkHead(v int64) {
	wbin.PutI64(r.buf(), int(r.off+backlinkOff), v)
}

// Field returns the raw encoded word at column col.
func (r Record) Field(col int) (value.Word, error) {
	if col < 0 || col >= r.NumFields() {
		return 0, ErrColumnRange
	}
	return value.Word(wbin.ReadI64(r.buf(), int(r.off+fieldsOff+int64(col)*8))), nil
}

func (r Record) setFieldRaw(col int, w value.Word) {
	wbin.PutI64(r.buf(), int(r.off+fieldsOff+int64(col)*8), int64(w))
}

// fieldOffset is the absolute byte offset of column col's word, used by the
// atomic-update path to build an atomicw.Cell directly over it.
func (r Record) fieldOffset(col int) int64 { return r.off + fieldsOff + int64(col)*8 }
