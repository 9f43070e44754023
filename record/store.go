package record

import (
	"github.com/wgdb/wgdb/alloc"
	"github.com/wgdb/wgdb/internal/wbin"
	"github.com/wgdb/wgdb/segment"
	"github.com/wgdb/wgdb/value"
)

// Store binds the collaborators record operations need: the data-record
// variable-length area itself, the value heap (for releasing long strings
// on overwrite/delete), and the backlink tracker.
type Store struct {
	seg  *segment.Segment
	data alloc.VarArea
	heap value.HeapArea
	bl   Backlinks
}

// NewStore binds a Store to a segment's built-in data-record area.
func NewStore(seg *segment.Segment) Store {
	return Store{
		seg:  seg,
		data: alloc.NewVarArea(seg, segment.AreaDataRec),
		heap: value.NewHeapArea(seg),
		bl:   NewBacklinks(seg),
	}
}

func (s Store) Backlinks() Backlinks { return s.bl }

// Create allocates an n-field record, zero-initializes every field to
// NULL, and notifies idx of each (§4.G "create").
func (s Store) Create(n int, idx Indexer) (Record, error) {
	rec, err := s.createZeroed(n)
	if err != nil {
		return Record{}, err
	}
	for col := 0; col < n; col++ {
		idx.IndexAdd(rec, col, 0)
	}
	return rec, nil
}

// CreateRaw allocates an n-field record without index notification; the
// caller must SetNewField every slot before the record is visible to
// readers that expect it to be fully populated (§4.G "create_raw").
func (s Store) CreateRaw(n int) (Record, error) {
	return s.createZeroed(n)
}

func (s Store) createZeroed(n int) (Record, error) {
	if n < 0 {
		return Record{}, ErrBadArgument
	}
	off, err := s.data.Alloc(int64(fieldsOff) + int64(n)*8)
	if err != nil {
		return Record{}, err
	}
	rec := At(s.seg, off)
	rec.setClassCount(ClassData, n)
	rec.setBacklinkHead(0)
	buf := s.seg.Bytes()
	for col := 0; col < n; col++ {
		wbin.PutI64(buf, int(rec.fieldOffset(col)), 0)
	}
	return rec, nil
}

// Delete removes rec: fails if anything still references it, otherwise
// de-indexes every field, releases any heap value or backlink each field
// holds, and frees the record object (§4.G "delete").
func (s Store) Delete(rec Record, idx Indexer) error {
	if !s.bl.Empty(rec) {
		return ErrHasBacklinks
	}
	n := rec.NumFields()
	for col := 0; col < n; col++ {
		w, _ := rec.Field(col)
		idx.IndexRemove(rec, col, w)
		s.releaseValue(w, rec.Offset())
	}
	return s.data.Free(rec.Offset())
}

// releaseValue drops a field's heap resource, if it holds one: long strings
// by refcount, record references by unlinking the one backlink entry this
// holder (referencer) owns.
func (s Store) releaseValue(w value.Word, referencer int64) {
	switch value.KindOf(w) {
	case value.KindLongStr:
		_ = s.heap.ReleaseLongStr(w)
	case value.KindRecordRef:
		if target, err := value.DecodeRecordRef(w); err == nil {
			_ = s.bl.Unlink(At(s.seg, target), referencer)
		}
	}
}

// acquireValue takes whatever reference-counted resource a field's new
// value implies: long strings get their refcount bumped here, once per
// field store (§4.F "set_field of a long-string value increments the
// target's refcount" — EncodeLongStr itself never touches refcount, fresh
// or interned), record references get a new backlink entry.
func (s Store) acquireValue(w value.Word, referencer int64) {
	switch value.KindOf(w) {
	case value.KindLongStr:
		_ = s.heap.AcquireLongStr(w)
	case value.KindRecordRef:
		if target, err := value.DecodeRecordRef(w); err == nil {
			_ = s.bl.Link(At(s.seg, target), referencer)
		}
	}
}

// GetFirst returns the offset of the first live (non-free, non-DV,
// non-special) record object in the data area, or 0 if the area is empty.
func (s Store) GetFirst() int64 {
	for i := 0; i < s.data.SubAreaCount(); i++ {
		off, size := s.data.SubArea(i)
		if off2, ok := s.firstLiveIn(off, size); ok {
			return off2
		}
	}
	return 0
}

// GetNext returns the offset of the next live record object after off, or 0
// if off was the last one (§4.G "get_first/get_next ... crosses sub-areas
// via the area's sub-area array").
func (s Store) GetNext(off int64) int64 {
	n := s.data.SubAreaCount()
	for i := 0; i < n; i++ {
		subOff, subSize := s.data.SubArea(i)
		if off < subOff || off >= subOff+subSize {
			continue
		}
		cur := off + s.data.ObjectSize(off)
		if off2, ok := s.firstLiveFrom(cur, subOff+subSize); ok {
			return off2
		}
		for j := i + 1; j < n; j++ {
			nextOff, nextSize := s.data.SubArea(j)
			if off2, ok := s.firstLiveIn(nextOff, nextSize); ok {
				return off2
			}
		}
		return 0
	}
	return 0
}

func (s Store) firstLiveIn(off, size int64) (int64, bool) {
	return s.firstLiveFrom(off, off+size)
}

func (s Store) firstLiveFrom(off, end int64) (int64, bool) {
	for off < end {
		tag := s.data.ObjectTag(off)
		if tag == alloc.TagUsed || tag == alloc.TagUsedPrevFree {
			return off, true
		}
		off += s.data.ObjectSize(off)
	}
	return 0, false
}
