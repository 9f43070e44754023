package record

import (
	"github.com/wgdb/wgdb/alloc"
	"github.com/wgdb/wgdb/internal/wbin"
	"github.com/wgdb/wgdb/segment"
)

// Backlinks tracks which records reference a given record, so Delete can
// refuse to remove anything still in use (§4.G "delete ... fails if the
// backlink list is non-empty"). Entries are singly-linked cells out of the
// segment's fixed-length list-cell area — the same intrusive-freelist idiom
// as alloc.FixedArea itself, just repurposed to hold (referencer, next)
// pairs instead of being free.
type Backlinks struct {
	seg   *segment.Segment
	cells alloc.FixedArea
}

const (
	blRefOff  = 0
	blNextOff = 8
	blCellLen = 16
)

// NewBacklinks binds a Backlinks collaborator to the segment's built-in
// list-cell area.
func NewBacklinks(seg *segment.Segment) Backlinks {
	return Backlinks{seg: seg, cells: alloc.NewFixedArea(seg, segment.AreaListCell)}
}

// Link records that referencer now points at rec, inserting a new cell at
// the head of rec's backlink chain.
func (b Backlinks) Link(rec Record, referencer int64) error {
	off, err := b.cells.Alloc(blCellLen)
	if err != nil {
		return err
	}
	buf := b.seg.Bytes()
	wbin.PutI64(buf, int(off+blRefOff), referencer)
	wbin.PutI64(buf, int(off+blNextOff), rec.BacklinkHead())
	rec.setBacklinkHead(off)
	return nil
}

// Unlink removes exactly one backlink entry pointing at referencer from
// rec's chain.
func (b Backlinks) Unlink(rec Record, referencer int64) error {
	buf := b.seg.Bytes()
	prev := int64(0)
	for cur := rec.BacklinkHead(); cur != 0; {
		next := wbin.ReadI64(buf, int(cur+blNextOff))
		if wbin.ReadI64(buf, int(cur+blRefOff)) == referencer {
			if prev == 0 {
				rec.setBacklinkHead(next)
			} else {
				wbin.PutI64(buf, int(prev+blNextOff), next)
			}
			return b.cells.Free(cur)
		}
		prev = cur
		cur = next
	}
	return ErrBacklinkNotFound
}

// Empty reports whether rec has no backlinks, the precondition Delete
// checks.
func (b Backlinks) Empty(rec Record) bool { return rec.BacklinkHead() == 0 }

// Each calls fn once per referencer currently linked to rec.
func (b Backlinks) Each(rec Record, fn func(referencer int64)) {
	buf := b.seg.Bytes()
	for cur := rec.BacklinkHead(); cur != 0; cur = wbin.ReadI64(buf, int(cur+blNextOff)) {
		fn(wbin.ReadI64(buf, int(cur+blRefOff)))
	}
}
