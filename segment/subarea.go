package segment

import "github.com/wgdb/wgdb/atomicw"

// Carve implements §4.C: atomically advance the segment's bump pointer by
// size (rounded up to DefaultAlignment) and return the pre-advance offset as
// the new region's base. Returns (0, ErrOutOfSpace) if the advance would
// exceed the segment's declared size or overflow negative.
//
// Carve never retreats the bump pointer (invariant 7): once returned, a
// region is never reclaimed, even if the caller that requested it later
// fails to use it.
func (s *Segment) Carve(size int64) (int64, error) {
	if size <= 0 {
		return 0, ErrOutOfSpace
	}
	slack := (DefaultAlignment - (size % DefaultAlignment)) % DefaultAlignment
	need := size + slack

	cell := atomicw.NewCell(s.buf, FreeOffsetOffset)
	for {
		cur := cell.Load()
		next := cur + need
		if next < cur || next > s.size {
			return 0, ErrOutOfSpace
		}
		if atomicw.CAS(cell, cur, next) {
			return cur, nil
		}
	}
}

// GrowSubArea carves a new sub-area for area id, sized by successive
// doubling from the last sub-area's size (or DefaultInitialSubAreaSize for
// the first one), falling back to successively halved sizes, down to
// minBytes, if the doubled request doesn't fit (§3 "Area", §4.D, §4.E). It records the new sub-area
// in the area's header and returns its (offset, size).
func (s *Segment) GrowSubArea(id AreaID, minBytes int64) (offset, size int64, err error) {
	h := s.Header()
	a := h.Area(id)

	n := a.SubAreaCount()
	var want int64
	if n == 0 {
		want = DefaultInitialSubAreaSize
	} else {
		_, lastSize := a.SubArea(n - 1)
		want = lastSize * 2
	}
	for want < minBytes {
		want *= 2
	}

	off, err := s.Carve(want)
	if err != nil {
		// Fallback to successively smaller sizes, down to minBytes.
		for fallback := want / 2; fallback >= minBytes; fallback /= 2 {
			off, err = s.Carve(fallback)
			if err == nil {
				want = fallback
				break
			}
		}
		if err != nil {
			return 0, 0, err
		}
	}

	if err := a.appendSubArea(off, want); err != nil {
		return 0, 0, err
	}
	return off, want, nil
}
