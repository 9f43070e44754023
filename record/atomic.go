package record

import (
	"time"

	"github.com/wgdb/wgdb/atomicw"
	"github.com/wgdb/wgdb/value"
)

// atomicRetryLimit and atomicBackoffEvery implement §4.G "loops calling
// update_atomic_field up to 1000 times with a short nanosleep after every
// tenth failed attempt".
const (
	atomicRetryLimit = 1000
	atomicBackoffEvery = 10
	atomicBackoffDelay = 50 * time.Microsecond
)

// immediate reports whether w is one of the kinds UpdateAtomicField allows
// (every immediate kind, NULL included, so a field can be swapped out of
// its initial NULL state).
func immediate(w value.Word) bool {
	switch value.KindOf(w) {
	case value.KindSmallInt, value.KindChar, value.KindDate, value.KindTime,
		value.KindFixpoint, value.KindVar, value.KindAnonConst, value.KindNull:
		return true
	default:
		return false
	}
}

// UpdateAtomicField performs a single lock-free CAS on column col:
// replaces it with want iff it currently holds expect. Only legal when
// both words are immediate, col is not indexed, and journalingEnabled is
// false (§4.G, §5 "restricted to non-indexed, immediate-valued columns on
// journal-disabled segments").
func (s Store) UpdateAtomicField(rec Record, col int, want, expect value.Word, idx Indexer, journalingEnabled bool) error {
	if journalingEnabled || idx.IsIndexed(col) || !immediate(want) || !immediate(expect) {
		return ErrNotAtomic
	}
	if col < 0 || col >= rec.NumFields() {
		return ErrColumnRange
	}
	cell := atomicw.NewCell(s.seg.Bytes(), int(rec.fieldOffset(col)))
	if !atomicw.CAS(cell, int64(expect), int64(want)) {
		return ErrCASMismatch
	}
	return nil
}

// SetAtomicField retries UpdateAtomicField until the field already holds
// want (treating that as success) or the retry budget is exhausted.
func (s Store) SetAtomicField(rec Record, col int, want value.Word, idx Indexer, journalingEnabled bool) error {
	for attempt := 0; attempt < atomicRetryLimit; attempt++ {
		cur, err := rec.Field(col)
		if err != nil {
			return err
		}
		if cur == want {
			return nil
		}
		if err := s.UpdateAtomicField(rec, col, want, cur, idx, journalingEnabled); err == nil {
			return nil
		} else if err != ErrCASMismatch {
			return err
		}
		if (attempt+1)%atomicBackoffEvery == 0 {
			time.Sleep(atomicBackoffDelay)
		}
	}
	return ErrDeadlockSuspected
}

// AddIntAtomicField atomically adds delta to an immediate small-int field,
// retrying on contention the same way SetAtomicField does.
func (s Store) AddIntAtomicField(rec Record, col int, delta int64, idx Indexer, journalingEnabled bool) error {
	for attempt := 0; attempt < atomicRetryLimit; attempt++ {
		cur, err := rec.Field(col)
		if err != nil {
			return err
		}
		curInt, err := value.DecodeSmallInt(cur)
		if err != nil {
			return ErrNotAtomic
		}
		want, ok := value.EncodeInt(curInt + delta)
		if !ok {
			return value.ErrRange
		}
		if err := s.UpdateAtomicField(rec, col, want, cur, idx, journalingEnabled); err == nil {
			return nil
		} else if err != ErrCASMismatch {
			return err
		}
		if (attempt+1)%atomicBackoffEvery == 0 {
			time.Sleep(atomicBackoffDelay)
		}
	}
	return ErrDeadlockSuspected
}
