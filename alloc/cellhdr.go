package alloc

import "github.com/wgdb/wgdb/internal/wbin"

// Tag is the 2-bit status tag carried in the low bits of every object
// header word (§3 "Object header conventions").
type Tag int64

const (
	// TagUsed marks an in-use object whose previous neighbour is also in use.
	TagUsed Tag = 0b00
	// TagFree marks a free object.
	TagFree Tag = 0b01
	// TagUsedPrevFree marks an in-use object whose previous neighbour is free.
	TagUsedPrevFree Tag = 0b10
	// TagSpecial marks a designated victim or a sub-area start/end sentinel.
	TagSpecial Tag = 0b11

	tagMask = 0x3

	// MinObjectSize is the minimum object size in bytes: 4 machine words
	// (header, two freelist pointers or payload, boundary tag).
	MinObjectSize = 4 * wordSize

	wordSize = 8
)

// packHeader combines a size (which must already be 8-byte aligned, so its
// low 3 bits are zero) with a 2-bit tag into one header word.
func packHeader(size int64, tag Tag) int64 {
	return size | int64(tag)
}

func headerSize(word int64) int64 { return word &^ tagMask }
func headerTag(word int64) Tag    { return Tag(word & tagMask) }

// cell is a zero-copy view over one heap object inside an area's sub-area,
// in the same spirit as the teacher's hive.Cell: it interprets bytes living
// in the segment buffer without copying them.
type cell struct {
	buf []byte
	off int64
}

func (c cell) header() int64     { return wbin.ReadI64(c.buf, int(c.off)) }
func (c cell) setHeader(w int64) { wbin.PutI64(c.buf, int(c.off), w) }

func (c cell) Size() int64 { return headerSize(c.header()) }
func (c cell) Tag() Tag    { return headerTag(c.header()) }

func (c cell) setSizeTag(size int64, tag Tag) {
	c.setHeader(packHeader(size, tag))
}

// end returns the offset immediately after this object.
func (c cell) end() int64 { return c.off + c.Size() }

// boundaryTagOffset is where a free object's trailing size word lives.
func (c cell) boundaryTagOffset() int64 { return c.off + c.Size() - wordSize }

func (c cell) setBoundaryTag() {
	wbin.PutI64(c.buf, int(c.boundaryTagOffset()), c.header())
}

func (c cell) boundaryTag() int64 { return wbin.ReadI64(c.buf, int(c.boundaryTagOffset())) }

// Free-object intrusive freelist pointers, stored in words 2 and 3 (the
// payload area of a free object is otherwise unused).
func (c cell) nextFree() int64     { return wbin.ReadI64(c.buf, int(c.off+8)) }
func (c cell) setNextFree(v int64) { wbin.PutI64(c.buf, int(c.off+8), v) }
func (c cell) prevFree() int64     { return wbin.ReadI64(c.buf, int(c.off+16)) }
func (c cell) setPrevFree(v int64) { wbin.PutI64(c.buf, int(c.off+16), v) }

// atOffset constructs the cell view for an object living at off in buf.
func atOffset(buf []byte, off int64) cell { return cell{buf: buf, off: off} }
