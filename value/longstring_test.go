package value

import "testing"

func TestLongStrInterningReturnsSameOffset(t *testing.T) {
	h := newTestHeap(t)
	a, err := h.EncodeString("the quick brown fox", true)
	if err != nil {
		t.Fatal(err)
	}
	b, err := h.EncodeString("the quick brown fox", true)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("expected interning to reuse offset: %v != %v", a, b)
	}
}

func TestLongStrUniqueFalseAlwaysAllocates(t *testing.T) {
	h := newTestHeap(t)
	a, err := h.EncodeString("duplicate me", false)
	if err != nil {
		t.Fatal(err)
	}
	b, err := h.EncodeString("duplicate me", false)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatal("expected distinct offsets when uniqueness is disabled")
	}
}

func TestLongStrDifferentSubtypesNotInterned(t *testing.T) {
	h := newTestHeap(t)
	str, err := h.EncodeString("payload", true)
	if err != nil {
		t.Fatal(err)
	}
	uri, err := h.EncodeURI("payload", "", true)
	if err != nil {
		t.Fatal(err)
	}
	if str == uri {
		t.Fatal("string and URI subtypes must not collide even with identical payload")
	}
}

func TestLongStrRefcountReleasesOnZero(t *testing.T) {
	h := newTestHeap(t)
	// Refcount is bumped by AcquireLongStr, not by EncodeLongStr itself —
	// simulate two separate field stores of the same interned string.
	w, err := h.EncodeString("refcounted", true)
	if err != nil {
		t.Fatal(err)
	}
	if err := h.AcquireLongStr(w); err != nil {
		t.Fatal(err)
	}
	w2, err := h.EncodeString("refcounted", true)
	if err != nil {
		t.Fatal(err)
	}
	if w != w2 {
		t.Fatal("expected interning to share the object")
	}
	if err := h.AcquireLongStr(w2); err != nil {
		t.Fatal(err)
	}

	if err := h.ReleaseLongStr(w); err != nil {
		t.Fatal(err)
	}
	payload, _, _, err := h.DecodeLongStr(w2)
	if err != nil || string(payload) != "refcounted" {
		t.Fatalf("object should survive first release: %v %v", payload, err)
	}

	if err := h.ReleaseLongStr(w2); err != nil {
		t.Fatal(err)
	}
	// A fresh encode of the same bytes should no longer find the old
	// object in its bucket chain; it allocates a new one.
	w3, err := h.EncodeString("refcounted", true)
	if err != nil {
		t.Fatal(err)
	}
	_ = w3
}

func TestEffectiveKindDistinguishesSubtypes(t *testing.T) {
	h := newTestHeap(t)
	blob, err := h.EncodeBlob([]byte{1, 2, 3}, true)
	if err != nil {
		t.Fatal(err)
	}
	if h.EffectiveKind(blob) != KindBlob {
		t.Fatalf("expected blob kind, got %v", h.EffectiveKind(blob))
	}
}
