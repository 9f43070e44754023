// Package wbin provides little-endian word encoding and alignment helpers
// shared by every layer of the segment (header, cells, journal, dump).
//
// All persisted words in WhiteDB are native-width machine words stored in
// little-endian order so that a dump can be copied byte-for-byte between
// processes of the same endianness; decoding on a big-endian host is
// rejected at attach time (see segment.Attach) rather than byte-swapped.
package wbin

import "encoding/binary"

// WordSize is the width of one machine word in bytes. WhiteDB is defined in
// terms of 64-bit words; that is what every offset, size and tag field below
// is measured in.
const WordSize = 8

// Align rounds n up to the next multiple of align, which must be a power of two.
func Align(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// AlignI64 is the int64 form of Align, used on segment offsets.
func AlignI64(n, align int64) int64 {
	return (n + align - 1) &^ (align - 1)
}

// AlignWords rounds a byte count up to the next whole number of words.
func AlignWords(n int) int {
	return Align(n, WordSize)
}

func PutU32(b []byte, off int, v uint32) { binary.LittleEndian.PutUint32(b[off:off+4], v) }
func PutI32(b []byte, off int, v int32)  { binary.LittleEndian.PutUint32(b[off:off+4], uint32(v)) }
func PutU64(b []byte, off int, v uint64) { binary.LittleEndian.PutUint64(b[off:off+8], v) }
func PutI64(b []byte, off int, v int64)  { binary.LittleEndian.PutUint64(b[off:off+8], uint64(v)) }

func ReadU32(b []byte, off int) uint32 { return binary.LittleEndian.Uint32(b[off : off+4]) }
func ReadI32(b []byte, off int) int32  { return int32(binary.LittleEndian.Uint32(b[off : off+4])) }
func ReadU64(b []byte, off int) uint64 { return binary.LittleEndian.Uint64(b[off : off+8]) }
func ReadI64(b []byte, off int) int64  { return int64(binary.LittleEndian.Uint64(b[off : off+8])) }

// MagicMatches reports whether b carries the given 4-byte magic at offset 0,
// in either byte order. The second return value is true if the magic was
// found byte-swapped (i.e. the segment was written by a host of the opposite
// endianness).
func MagicMatches(b []byte, magic uint32) (ok bool, swapped bool) {
	if len(b) < 4 {
		return false, false
	}
	v := ReadU32(b, 0)
	if v == magic {
		return true, false
	}
	swappedMagic := binary.BigEndian.Uint32([]byte{
		byte(magic), byte(magic >> 8), byte(magic >> 16), byte(magic >> 24),
	})
	return v == swappedMagic, v == swappedMagic
}
