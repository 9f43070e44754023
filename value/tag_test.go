package value

import "testing"

func TestSmallIntRoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 12345, -12345, SmallIntMax, SmallIntMin} {
		w, ok := EncodeInt(v)
		if !ok {
			t.Fatalf("EncodeInt(%d) rejected", v)
		}
		if KindOf(w) != KindSmallInt {
			t.Fatalf("EncodeInt(%d) did not produce an immediate", v)
		}
		got, err := DecodeSmallInt(w)
		if err != nil || got != v {
			t.Fatalf("round trip %d: got %d, err %v", v, got, err)
		}
	}
}

func TestEncodeIntRejectsOutOfRange(t *testing.T) {
	if _, ok := EncodeInt(SmallIntMax + 1); ok {
		t.Fatal("expected EncodeInt to reject value above SmallIntMax")
	}
	if _, ok := EncodeInt(SmallIntMin - 1); ok {
		t.Fatal("expected EncodeInt to reject value below SmallIntMin")
	}
}

func TestNullWordIsZero(t *testing.T) {
	if KindOf(0) != KindNull {
		t.Fatal("zero word must decode as null")
	}
}

func TestCharFixpointVarAnonConstRoundTrip(t *testing.T) {
	c := EncodeChar('Q')
	if KindOf(c) != KindChar {
		t.Fatal("char kind mismatch")
	}
	gotC, err := DecodeChar(c)
	if err != nil || gotC != 'Q' {
		t.Fatalf("char round trip: %v %v", gotC, err)
	}

	fp := EncodeFixpoint(3.1400)
	if KindOf(fp) != KindFixpoint {
		t.Fatal("fixpoint kind mismatch")
	}
	gotFP, err := DecodeFixpoint(fp)
	if err != nil || gotFP != 3.14 {
		t.Fatalf("fixpoint round trip: %v %v", gotFP, err)
	}

	v := EncodeVar(7)
	if KindOf(v) != KindVar {
		t.Fatal("var kind mismatch")
	}
	gotV, err := DecodeVar(v)
	if err != nil || gotV != 7 {
		t.Fatalf("var round trip: %v %v", gotV, err)
	}

	ac := EncodeAnonConst(42)
	if KindOf(ac) != KindAnonConst {
		t.Fatal("anonconst kind mismatch")
	}
	gotAC, err := DecodeAnonConst(ac)
	if err != nil || gotAC != 42 {
		t.Fatalf("anonconst round trip: %v %v", gotAC, err)
	}
}

func TestWrongKindDecodeFails(t *testing.T) {
	c := EncodeChar('x')
	if _, err := DecodeSmallInt(c); err != ErrWrongKind {
		t.Fatalf("expected ErrWrongKind, got %v", err)
	}
}
