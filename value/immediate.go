package value

import "time"

// SmallIntRange bounds the values EncodeSmallInt can represent without
// losing bits to the 3-bit tag (§8 "∀ int i in smallint range:
// decode(encode_int(i)) == i and encode_int(i) is immediate").
const (
	SmallIntMax = int64(1)<<60 - 1
	SmallIntMin = -(int64(1) << 60)
)

// EncodeInt chooses between an immediate small-int encoding and a heap
// full-int object depending on range; callers that already know they want
// the heap form use HeapArea.EncodeFullInt directly.
func EncodeInt(v int64) (Word, bool) {
	if v < SmallIntMin || v > SmallIntMax {
		return 0, false
	}
	return packSmallInt(v), true
}

// DecodeSmallInt reports the integer an immediate small-int word carries.
func DecodeSmallInt(w Word) (int64, error) {
	if KindOf(w) != KindSmallInt {
		return 0, ErrWrongKind
	}
	return unpackSmallInt(w), nil
}

// EncodeChar packs a single byte (WhiteDB chars are single-byte, §4.F).
func EncodeChar(c byte) Word { return packSub(subChar, int64(c)) }

func DecodeChar(w Word) (byte, error) {
	if KindOf(w) != KindChar {
		return 0, ErrWrongKind
	}
	return byte(unpackSub(w)), nil
}

// EncodeDate packs a date as days since the Unix epoch.
func EncodeDate(t time.Time) Word {
	days := t.UTC().Truncate(24*time.Hour).Unix() / int64((24 * time.Hour).Seconds())
	return packSub(subDate, days)
}

func DecodeDate(w Word) (time.Time, error) {
	if KindOf(w) != KindDate {
		return time.Time{}, ErrWrongKind
	}
	days := unpackSub(w)
	return time.Unix(days*int64((24*time.Hour).Seconds()), 0).UTC(), nil
}

// EncodeTime packs a time-of-day in centiseconds since midnight.
func EncodeTime(t time.Time) Word {
	t = t.UTC()
	cs := int64(t.Hour())*360000 + int64(t.Minute())*6000 + int64(t.Second())*100 + int64(t.Nanosecond())/1e7
	return packSub(subTime, cs)
}

func DecodeTime(w Word) (int64, error) {
	if KindOf(w) != KindTime {
		return 0, ErrWrongKind
	}
	return unpackSub(w), nil
}

// FixpointScale is the fixed-point encoding's implicit denominator (§3
// "Immediate fixed-point (×10000)").
const FixpointScale = 10000

// EncodeFixpoint packs a decimal value as an integer numerator over
// FixpointScale.
func EncodeFixpoint(v float64) Word {
	scaled := int64(v*FixpointScale + sign(v)*0.5)
	return packSub(subFixpoint, scaled)
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

func DecodeFixpoint(w Word) (float64, error) {
	if KindOf(w) != KindFixpoint {
		return 0, ErrWrongKind
	}
	return float64(unpackSub(w)) / FixpointScale, nil
}

// EncodeAnonConst packs an index into the anonymous-constant table.
func EncodeAnonConst(idx int64) Word { return packSub(subAnonConst, idx) }

func DecodeAnonConst(w Word) (int64, error) {
	if KindOf(w) != KindAnonConst {
		return 0, ErrWrongKind
	}
	return unpackSub(w), nil
}

// EncodeVar packs a reasoner variable index.
func EncodeVar(idx int64) Word { return packVar(idx) }

func DecodeVar(w Word) (int64, error) {
	if KindOf(w) != KindVar {
		return 0, ErrWrongKind
	}
	return unpackVar(w), nil
}
