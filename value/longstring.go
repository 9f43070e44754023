package value

import (
	"github.com/wgdb/wgdb/internal/wbin"
)

// LongStrSubtype distinguishes the long-string area's four payload shapes;
// URI/XML-literal/blob share the long-string object layout and tag, and are
// told apart only by this field (§3's low-bits table has no separate tag
// for them — the spec reserves the distinction to the object header).
type LongStrSubtype int64

const (
	SubtypeString LongStrSubtype = iota
	SubtypeURI
	SubtypeXML
	SubtypeBlob
)

// Long-string object layout, relative to its carved offset (the object's
// own header/boundary-tag words are owned by the VarArea, not this
// package): subtype, refcount, hash-chain next offset, primary length,
// secondary length, primary payload, secondary payload.
const (
	lsSubtypeOff  = 8
	lsRefcntOff   = 16
	lsHashNextOff = 24
	lsLengthOff   = 32
	lsSecLenOff   = 40
	lsPayloadOff  = 48
)

func (h HeapArea) lsSubtype(off int64) LongStrSubtype {
	return LongStrSubtype(wbin.ReadI64(h.seg.Bytes(), int(off+lsSubtypeOff)))
}
func (h HeapArea) lsRefcount(off int64) int64 { return wbin.ReadI64(h.seg.Bytes(), int(off+lsRefcntOff)) }
func (h HeapArea) lsSetRefcount(off int64, v int64) {
	wbin.PutI64(h.seg.Bytes(), int(off+lsRefcntOff), v)
}
func (h HeapArea) lsHashNext(off int64) int64 {
	return wbin.ReadI64(h.seg.Bytes(), int(off+lsHashNextOff))
}
func (h HeapArea) lsSetHashNext(off int64, v int64) {
	wbin.PutI64(h.seg.Bytes(), int(off+lsHashNextOff), v)
}
func (h HeapArea) lsLength(off int64) int64    { return wbin.ReadI64(h.seg.Bytes(), int(off+lsLengthOff)) }
func (h HeapArea) lsSecLength(off int64) int64 { return wbin.ReadI64(h.seg.Bytes(), int(off+lsSecLenOff)) }

func (h HeapArea) lsPayload(off int64) []byte {
	n := h.lsLength(off)
	return h.seg.Bytes()[off+lsPayloadOff : off+lsPayloadOff+n]
}
func (h HeapArea) lsSecondary(off int64) []byte {
	n, sn := h.lsLength(off), h.lsSecLength(off)
	base := off + lsPayloadOff + n
	return h.seg.Bytes()[base : base+sn]
}

// longStrHash computes the two-part multiplicative hash over (payload,
// secondary, type, length) that §4.F's interning uses to pick a bucket.
// Grounded on the teacher's hive/subkeys/hash.go Windows-registry hash
// (hash = hash*37 + c for each byte), generalized to fold in the secondary
// string and subtype/length discriminators so that distinct-subtype or
// distinct-length values with identical payload bytes never collide into
// the same intern check.
func longStrHash(payload, secondary []byte, subtype LongStrSubtype, length int) uint64 {
	const mult = 37
	var hash uint64
	for _, b := range payload {
		hash = hash*mult + uint64(b)
	}
	for _, b := range secondary {
		hash = hash*mult + uint64(b)
	}
	hash = hash*mult + uint64(subtype)
	hash = hash*mult + uint64(length)
	return hash
}

// EncodeLongStr interns (payload, secondary) of the given subtype: if an
// identical object already exists in the hash bucket, its offset is reused
// as-is (encoding alone creates no field reference, so its refcount is left
// untouched); otherwise a new object is allocated at refcount 0 and linked
// into the bucket's hash chain. Passing unique=false skips the interning
// scan and always allocates (§4.F "if the caller disables uniqueness").
// Refcount is bumped only when the encoded word is actually stored into a
// field (record.Store.acquireValue), per §4.F's refcount discipline.
func (h HeapArea) EncodeLongStr(payload, secondary []byte, subtype LongStrSubtype, unique bool) (Word, error) {
	sh := h.seg.Header().StringHash()
	n := sh.NumBuckets()
	hash := longStrHash(payload, secondary, subtype, len(payload))
	bucket := int64(hash % uint64(n))

	if unique {
		if off, ok := h.findLongStr(bucket, payload, secondary, subtype); ok {
			return packOffset(off, tag3LongStr), nil
		}
	}

	need := lsPayloadOff - 8 + int64(len(payload)) + int64(len(secondary))
	off, err := h.longStr.Alloc(need)
	if err != nil {
		return 0, err
	}
	buf := h.seg.Bytes()
	wbin.PutI64(buf, int(off+lsSubtypeOff), int64(subtype))
	wbin.PutI64(buf, int(off+lsRefcntOff), 0)
	wbin.PutI64(buf, int(off+lsLengthOff), int64(len(payload)))
	wbin.PutI64(buf, int(off+lsSecLenOff), int64(len(secondary)))
	copy(buf[off+lsPayloadOff:], payload)
	copy(buf[off+lsPayloadOff+int64(len(payload)):], secondary)

	wbin.PutI64(buf, int(off+lsHashNextOff), sh.BucketHead(bucket))
	sh.SetBucketHead(bucket, off)

	return packOffset(off, tag3LongStr), nil
}

// findLongStr walks bucket's collision chain for a bytewise-equal object of
// the same subtype and length.
func (h HeapArea) findLongStr(bucket int64, payload, secondary []byte, subtype LongStrSubtype) (int64, bool) {
	sh := h.seg.Header().StringHash()
	for off := sh.BucketHead(bucket); off != 0; off = h.lsHashNext(off) {
		if h.lsSubtype(off) != subtype {
			continue
		}
		if h.lsLength(off) != int64(len(payload)) || h.lsSecLength(off) != int64(len(secondary)) {
			continue
		}
		if string(h.lsPayload(off)) == string(payload) && string(h.lsSecondary(off)) == string(secondary) {
			return off, true
		}
	}
	return 0, false
}

// EncodeString, EncodeURI, EncodeXML, and EncodeBlob are EncodeLongStr
// convenience wrappers for each subtype; XML and URI carry their namespace
// or base prefix as the secondary payload.
func (h HeapArea) EncodeString(s string, unique bool) (Word, error) {
	return h.EncodeLongStr([]byte(s), nil, SubtypeString, unique)
}
func (h HeapArea) EncodeURI(uri, base string, unique bool) (Word, error) {
	return h.EncodeLongStr([]byte(uri), []byte(base), SubtypeURI, unique)
}
func (h HeapArea) EncodeXML(xml, namespace string, unique bool) (Word, error) {
	return h.EncodeLongStr([]byte(xml), []byte(namespace), SubtypeXML, unique)
}
func (h HeapArea) EncodeBlob(data []byte, unique bool) (Word, error) {
	return h.EncodeLongStr(data, nil, SubtypeBlob, unique)
}

// DecodeLongStr returns the primary payload, secondary payload, and
// subtype of a long-string word.
func (h HeapArea) DecodeLongStr(w Word) (payload, secondary []byte, subtype LongStrSubtype, err error) {
	if KindOf(w) != KindLongStr {
		return nil, nil, 0, ErrWrongKind
	}
	off := offsetOf(w)
	return h.lsPayload(off), h.lsSecondary(off), h.lsSubtype(off), nil
}

// EffectiveKind refines KindOf for a long-string-tagged word by consulting
// its subtype field, since URI/XML-literal/blob share a single tag (§3).
func (h HeapArea) EffectiveKind(w Word) Kind {
	k := KindOf(w)
	if k != KindLongStr {
		return k
	}
	switch h.lsSubtype(offsetOf(w)) {
	case SubtypeURI:
		return KindURI
	case SubtypeXML:
		return KindXMLLiteral
	case SubtypeBlob:
		return KindBlob
	default:
		return KindLongStr
	}
}

// AcquireLongStr increments a long string's refcount; called once per
// field store of a long-string word (§4.F "set_field of a long-string value
// increments the target's refcount"), never by EncodeLongStr itself.
func (h HeapArea) AcquireLongStr(w Word) error {
	if KindOf(w) != KindLongStr {
		return ErrWrongKind
	}
	off := offsetOf(w)
	h.lsSetRefcount(off, h.lsRefcount(off)+1)
	return nil
}

// ReleaseLongStr decrements a long string's refcount (§4.F "Refcount
// discipline"); on reaching zero it is unlinked from its hash bucket and
// returned to its area.
func (h HeapArea) ReleaseLongStr(w Word) error {
	if KindOf(w) != KindLongStr {
		return ErrWrongKind
	}
	off := offsetOf(w)
	rc := h.lsRefcount(off) - 1
	if rc > 0 {
		h.lsSetRefcount(off, rc)
		return nil
	}

	sh := h.seg.Header().StringHash()
	hash := longStrHash(h.lsPayload(off), h.lsSecondary(off), h.lsSubtype(off), int(h.lsLength(off)))
	bucket := int64(hash % uint64(sh.NumBuckets()))

	prev := int64(0)
	for cur := sh.BucketHead(bucket); cur != 0; cur = h.lsHashNext(cur) {
		if cur == off {
			if prev == 0 {
				sh.SetBucketHead(bucket, h.lsHashNext(cur))
			} else {
				h.lsSetHashNext(prev, h.lsHashNext(cur))
			}
			break
		}
		prev = cur
	}
	return h.longStr.Free(off)
}
