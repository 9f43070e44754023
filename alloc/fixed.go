package alloc

import (
	"github.com/wgdb/wgdb/internal/wbin"
	"github.com/wgdb/wgdb/segment"
)

// FixedArea is a §4.D fixed-length allocator: every object in the area has
// the same declared length (the area's ObjLength, fixed by the first caller
// to grow the area), and free cells are threaded into a single singly-linked
// list through their first word. There is no header/tag/boundary-tag scheme
// here, unlike VarArea — get_first/get_next never walk a fixed area's sub-area
// byte ranges directly, so there is nothing that needs to distinguish a free
// cell from an in-use one except the freelist itself.
type FixedArea struct {
	seg *segment.Segment
	id  segment.AreaID
}

// NewFixedArea binds a FixedArea to one of the segment's built-in
// fixed-length AreaIDs.
func NewFixedArea(seg *segment.Segment, id segment.AreaID) FixedArea {
	return FixedArea{seg: seg, id: id}
}

func (f FixedArea) header() segment.AreaHeader { return f.seg.Header().Area(f.id) }

// ObjLength returns the area's per-object size, or 0 if no object has been
// allocated yet (the area is still unsized).
func (f FixedArea) ObjLength() int64 { return f.header().ObjLength() }

// Alloc returns the offset of one objLength-sized cell, formatting a fresh
// sub-area (by successive doubling, §3 "Area") if the freelist is empty. All
// callers in a given area must request the same objLength; the first call
// fixes it for the area's lifetime.
func (f FixedArea) Alloc(objLength int64) (int64, error) {
	if objLength < MinObjectSize {
		objLength = MinObjectSize
	}
	objLength = wbin.AlignI64(objLength, wordSize)

	a := f.header()
	if a.ObjLength() == 0 {
		a.setObjLength(objLength)
	} else if a.ObjLength() != objLength {
		return 0, ErrBadArgument
	}

	for {
		if head := a.FreeListHead(); head != 0 {
			next := wbin.ReadI64(f.seg.Bytes(), int(head))
			a.SetFreeListHead(next)
			return head, nil
		}
		if err := f.grow(objLength); err != nil {
			return 0, err
		}
	}
}

// Free returns a cell previously returned by Alloc back to the area's
// freelist, pushing it onto the head (§4.D "free").
func (f FixedArea) Free(off int64) error {
	if off <= 0 {
		return ErrBadArgument
	}
	a := f.header()
	buf := f.seg.Bytes()
	wbin.PutI64(buf, int(off), a.FreeListHead())
	a.SetFreeListHead(off)
	return nil
}

// grow carves one new sub-area (capped at segment.MaxSubAreas total) and
// formats every cell in it into the freelist chain.
func (f FixedArea) grow(objLength int64) error {
	a := f.header()
	if a.SubAreaCount() >= segment.MaxSubAreas {
		return ErrOutOfMemory
	}

	off, size, err := f.seg.GrowSubArea(f.id, objLength)
	if err != nil {
		return ErrOutOfMemory
	}

	buf := f.seg.Bytes()
	n := size / objLength
	head := a.FreeListHead()
	for i := n - 1; i >= 0; i-- {
		cellOff := off + i*objLength
		wbin.PutI64(buf, int(cellOff), head)
		head = cellOff
	}
	a.SetFreeListHead(head)
	return nil
}
