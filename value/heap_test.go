package value

import (
	"testing"

	"github.com/wgdb/wgdb/segment"
)

func newTestHeap(t *testing.T) HeapArea {
	t.Helper()
	seg, err := segment.AttachLocal(1<<20, segment.LockReaderPreference)
	if err != nil {
		t.Fatal(err)
	}
	return NewHeapArea(seg)
}

func TestEncodeDecodeFullInt(t *testing.T) {
	h := newTestHeap(t)
	w, err := h.EncodeFullInt(1 << 40)
	if err != nil {
		t.Fatal(err)
	}
	if KindOf(w) != KindFullInt {
		t.Fatal("expected full-int kind")
	}
	got, err := h.DecodeFullInt(w)
	if err != nil || got != 1<<40 {
		t.Fatalf("got %d, err %v", got, err)
	}
	if err := h.FreeFullInt(w); err != nil {
		t.Fatal(err)
	}
}

func TestEncodeDecodeDouble(t *testing.T) {
	h := newTestHeap(t)
	w, err := h.EncodeDouble(2.71828)
	if err != nil {
		t.Fatal(err)
	}
	got, err := h.DecodeDouble(w)
	if err != nil || got != 2.71828 {
		t.Fatalf("got %v, err %v", got, err)
	}
}

func TestEncodeDecodeShortStr(t *testing.T) {
	h := newTestHeap(t)
	w, err := h.EncodeShortStr("hello")
	if err != nil {
		t.Fatal(err)
	}
	got, err := h.DecodeShortStr(w)
	if err != nil || got != "hello" {
		t.Fatalf("got %q, err %v", got, err)
	}
}

func TestEncodeShortStrRejectsOverlong(t *testing.T) {
	h := newTestHeap(t)
	long := make([]byte, ShortStrMaxLen+1)
	if _, err := h.EncodeShortStr(string(long)); err != ErrRange {
		t.Fatalf("expected ErrRange, got %v", err)
	}
}

func TestShortStrIdenticalValuesGetDistinctOffsets(t *testing.T) {
	h := newTestHeap(t)
	a, err := h.EncodeShortStr("same")
	if err != nil {
		t.Fatal(err)
	}
	b, err := h.EncodeShortStr("same")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("short strings must not be interned (equality is by bit identity)")
	}
}

func TestRecordRefRoundTrip(t *testing.T) {
	w := EncodeRecordRef(4096)
	if KindOf(w) != KindRecordRef {
		t.Fatal("expected record-ref kind")
	}
	got, err := DecodeRecordRef(w)
	if err != nil || got != 4096 {
		t.Fatalf("got %d, err %v", got, err)
	}
}
