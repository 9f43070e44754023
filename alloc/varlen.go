package alloc

import (
	"github.com/wgdb/wgdb/internal/wbin"
	"github.com/wgdb/wgdb/segment"
)

// VarArea is a §4.E variable-length allocator: a Doug-Lea-style bucketed
// free-list scheme (256 EXACT buckets at 8-byte granularity, 32 VAR buckets
// covering power-of-two ranges above 256 bytes) plus one designated-victim
// (DV) slot per area, grounded on the teacher's hive/alloc/fastalloc.go
// segregated-list design but simplified to doubly-linked lists per bucket
// instead of per-class min-heaps.
type VarArea struct {
	seg *segment.Segment
	id  segment.AreaID
}

// NewVarArea binds a VarArea to one of the segment's built-in
// variable-length AreaIDs.
func NewVarArea(seg *segment.Segment, id segment.AreaID) VarArea {
	return VarArea{seg: seg, id: id}
}

func (v VarArea) header() segment.AreaHeader { return v.seg.Header().Area(v.id) }
func (v VarArea) buf() []byte                { return v.seg.Bytes() }

func (v VarArea) cellAt(off int64) cell { return atOffset(v.buf(), off) }

// ---- object walking (§4.G "get_first/get_next") ----

// ObjectSize returns the total byte span of the object at off.
func (v VarArea) ObjectSize(off int64) int64 { return v.cellAt(off).Size() }

// ObjectTag returns the status tag of the object at off.
func (v VarArea) ObjectTag(off int64) Tag { return v.cellAt(off).Tag() }

// DVOffset returns the current designated victim's offset, or 0 if the area
// has none; callers walking the area skip this object.
func (v VarArea) DVOffset() int64 { return v.header().DVOffset() }

// SubAreaCount and SubArea expose the area's carved sub-area list so
// callers can cross from one sub-area to the next while scanning.
func (v VarArea) SubAreaCount() int                 { return v.header().SubAreaCount() }
func (v VarArea) SubArea(i int) (offset, size int64) { return v.header().SubArea(i) }

// ---- free list bucket operations (doubly-linked, per §4.E) ----

func (v VarArea) bucketHead(i int) int64 {
	if isExact(i) {
		return v.header().ExactHead(i)
	}
	return v.header().VarHead(i - ExactBuckets)
}

func (v VarArea) setBucketHead(i int, off int64) {
	if isExact(i) {
		v.header().SetExactHead(i, off)
	} else {
		v.header().SetVarHead(i-ExactBuckets, off)
	}
}

// pushFree links a free cell onto the head of the bucket matching its size.
func (v VarArea) pushFree(off int64) {
	c := v.cellAt(off)
	idx := freebucketsIndex(c.Size())
	head := v.bucketHead(idx)
	c.setNextFree(head)
	c.setPrevFree(0)
	if head != 0 {
		v.cellAt(head).setPrevFree(off)
	}
	v.setBucketHead(idx, off)
}

// unlinkFree removes a free cell from whichever bucket it currently lives
// in (size must still reflect the bucket it was pushed into).
func (v VarArea) unlinkFree(off int64) {
	c := v.cellAt(off)
	idx := freebucketsIndex(c.Size())
	prev, next := c.prevFree(), c.nextFree()
	if prev != 0 {
		v.cellAt(prev).setNextFree(next)
	} else {
		v.setBucketHead(idx, next)
	}
	if next != 0 {
		v.cellAt(next).setPrevFree(prev)
	}
}

// ---- allocation (§4.E steps 1-5) ----

// Alloc returns the offset of a newly in-use object able to hold at least
// size bytes of payload (the returned object's own Size() may be larger):
//
//  1. An EXACT bucket match is taken whole, no split.
//  2. Otherwise the designated victim (DV), if large enough, is split: the
//     low part is returned, the remainder becomes the new (possibly empty) DV.
//  3. Otherwise the smallest sufficient VAR bucket is scanned for a split
//     candidate, which becomes the new DV, and allocation retries from (1).
//  4. Otherwise a new sub-area is grown (successive doubling) and becomes
//     the new DV, and allocation retries from (1).
//  5. If sub-area growth is refused (64-cap or segment out of space),
//     allocation fails with ErrOutOfMemory.
func (v VarArea) Alloc(size int64) (int64, error) {
	if size <= 0 {
		return 0, ErrBadArgument
	}
	need := wbin.AlignI64(size+2*wordSize, wordSize) // header + boundary tag
	if need < MinObjectSize {
		need = MinObjectSize
	}

	for {
		if off, ok := v.takeExact(need); ok {
			return v.finishAlloc(off, need), nil
		}
		if off, ok := v.takeFromDV(need); ok {
			return v.finishAlloc(off, need), nil
		}
		if v.splitFromVarBucket(need) {
			continue
		}
		if err := v.growDV(need); err != nil {
			return 0, err
		}
	}
}

// takeExact satisfies need from the exact-size bucket, if non-empty.
func (v VarArea) takeExact(need int64) (int64, bool) {
	idx := freebucketsIndex(need)
	if !isExact(idx) {
		return 0, false
	}
	head := v.bucketHead(idx)
	if head == 0 {
		return 0, false
	}
	v.unlinkFree(head)
	return head, true
}

// takeFromDV splits need bytes off the front of the designated victim, if it
// is large enough. The remainder (if still a viable object) becomes the new
// DV; if the remainder is too small to be its own object it is donated
// whole to the allocation instead of being left as an unusable sliver.
func (v VarArea) takeFromDV(need int64) (int64, bool) {
	a := v.header()
	dvOff, dvSize := a.DVOffset(), a.DVSize()
	if dvOff == 0 || dvSize < need {
		return 0, false
	}

	remainder := dvSize - need
	if remainder < MinObjectSize {
		a.SetDVOffset(0)
		a.SetDVSize(0)
		return dvOff, true
	}

	newDVOff := dvOff + need
	v.cellAt(dvOff).setSizeTag(need, TagSpecial)
	v.cellAt(newDVOff).setSizeTag(remainder, TagSpecial)
	a.SetDVOffset(newDVOff)
	a.SetDVSize(remainder)
	return dvOff, true
}

// splitFromVarBucket scans VAR buckets from the smallest that could possibly
// hold need upward, looking for any free cell of at least need bytes. The
// first candidate found is unlinked and installed as the new DV; the caller
// retries allocation from the top so takeExact/takeFromDV run against it
// (takeFromDV hands the whole cell over when the remainder would be smaller
// than MinObjectSize).
func (v VarArea) splitFromVarBucket(need int64) bool {
	start := freebucketsIndex(need)
	if isExact(start) {
		start = ExactBuckets
	}
	for idx := start; idx < ExactBuckets+VarBuckets; idx++ {
		for off := v.bucketHead(idx); off != 0; {
			c := v.cellAt(off)
			next := c.nextFree()
			if c.Size() >= need {
				v.unlinkFree(off)
				v.installDV(off, c.Size())
				return true
			}
			off = next
		}
	}
	return false
}

// growDV carves a new sub-area (successive doubling, at least large enough
// for need) and installs it whole as the new DV.
func (v VarArea) growDV(need int64) error {
	a := v.header()
	if a.SubAreaCount() >= segment.MaxSubAreas {
		return ErrOutOfMemory
	}
	off, size, err := v.seg.GrowSubArea(v.id, need)
	if err != nil {
		return ErrOutOfMemory
	}
	// A freshly carved sub-area becomes the DV in its entirety; installDV
	// tags the whole range TagSpecial, which doubles as the sub-area's
	// right boundary guard until the DV is split down by later allocations.
	v.installDV(off, size)
	return nil
}

// installDV replaces any existing DV (pushing it onto its free bucket first)
// with a fresh one spanning [off, off+size), formatted as TagSpecial.
func (v VarArea) installDV(off, size int64) {
	a := v.header()
	if old := a.DVOffset(); old != 0 {
		v.cellAt(old).setSizeTag(a.DVSize(), TagFree)
		v.cellAt(old).setBoundaryTag()
		v.pushFree(old)
	}
	v.cellAt(off).setSizeTag(size, TagSpecial)
	a.SetDVOffset(off)
	a.SetDVSize(size)
}

// finishAlloc marks the taken region as in-use, splitting off a legal
// remainder back into free space when the region is larger than need.
func (v VarArea) finishAlloc(off, need int64) int64 {
	c := v.cellAt(off)
	total := c.Size()
	if total-need >= MinObjectSize {
		c.setSizeTag(need, TagUsed)
		rem := v.cellAt(off + need)
		rem.setSizeTag(total-need, TagFree)
		rem.setBoundaryTag()
		v.pushFree(off + need)
		v.setPrevFreeHint(off+total, true)
	} else {
		c.setSizeTag(total, TagUsed)
		v.setPrevFreeHint(off+total, false)
	}
	return off
}

// setPrevFreeHint updates the tag of the object starting at off to reflect
// whether its left neighbour is free, preserving TagSpecial (§3 invariant 4:
// sentinels and the DV are exempt from the prev-free hint).
func (v VarArea) setPrevFreeHint(off int64, prevFree bool) {
	if off <= 0 || off >= v.seg.Size() {
		return
	}
	c := v.cellAt(off)
	switch c.Tag() {
	case TagUsed, TagUsedPrevFree:
		if prevFree {
			c.setSizeTag(c.Size(), TagUsedPrevFree)
		} else {
			c.setSizeTag(c.Size(), TagUsed)
		}
	}
}

// ---- free (§4.E "free", 5-step coalescing) ----

// Free returns an in-use object to the area, coalescing with a free left
// and/or right neighbour before relinking into the appropriate bucket (or
// becoming the new DV):
//
//  1. Reject an offset whose header is not tagged in-use.
//  2. If the object's own tag is TagUsedPrevFree, merge left: unlink the
//     left neighbour from its bucket (or clear DV) and absorb it.
//  3. Check the right neighbour's tag; if free, unlink it (or clear DV) and
//     absorb it.
//  4. If either absorbed neighbour was the DV, the merged object becomes the
//     new DV instead of going on a free bucket list.
//  5. Otherwise, if the merged object is larger than the area's current DV
//     (including when there is none, size 0), it is promoted to DV and the
//     old DV (if any) is pushed onto its own bucket's freelist. Only when
//     it is not larger is it pushed onto its own size bucket, with the
//     right neighbour-of-merged object's prev-free hint set.
func (v VarArea) Free(off int64) error {
	if off <= 0 || off >= v.seg.Size() {
		return ErrBadArgument
	}
	c := v.cellAt(off)
	switch c.Tag() {
	case TagUsed, TagUsedPrevFree:
	default:
		return ErrNotInUse
	}

	a := v.header()
	mergedOff := off
	mergedSize := c.Size()
	becameDV := false

	if c.Tag() == TagUsedPrevFree {
		leftSize := headerSize(wbin.ReadI64(v.buf(), int(off-wordSize)))
		leftOff := off - leftSize
		left := v.cellAt(leftOff)
		if left.Tag() == TagSpecial {
			// The only TagSpecial object an area ever has is its DV.
			if a.DVOffset() == leftOff {
				a.SetDVOffset(0)
				a.SetDVSize(0)
				becameDV = true
			}
		} else {
			v.unlinkFree(leftOff)
		}
		mergedOff = leftOff
		mergedSize += leftSize
	}

	right := v.cellAt(mergedOff + mergedSize)
	switch right.Tag() {
	case TagFree:
		v.unlinkFree(mergedOff + mergedSize)
		mergedSize += right.Size()
	case TagSpecial:
		if a.DVOffset() == mergedOff+mergedSize {
			a.SetDVOffset(0)
			a.SetDVSize(0)
			mergedSize += right.Size()
			becameDV = true
		}
	}

	if becameDV {
		v.installDV(mergedOff, mergedSize)
		return nil
	}

	// Neither neighbour was the DV: promote the merged object to DV if it
	// is now larger than whatever DV currently exists (or if there is no
	// DV at all, in which case its size is 0), per §4.E step 5. installDV
	// pushes the displaced DV, if any, onto its own bucket freelist.
	if mergedSize > a.DVSize() {
		v.installDV(mergedOff, mergedSize)
		return nil
	}

	merged := v.cellAt(mergedOff)
	merged.setSizeTag(mergedSize, TagFree)
	merged.setBoundaryTag()
	v.pushFree(mergedOff)
	v.setPrevFreeHint(mergedOff+mergedSize, true)
	return nil
}
