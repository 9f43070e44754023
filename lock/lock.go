package lock

import (
	"time"

	"github.com/wgdb/wgdb/atomicw"
	"github.com/wgdb/wgdb/segment"
)

// Ticket is the opaque value a Start call hands back to the matching End
// call. RP and WP never need one (their state is entirely anonymous,
// database-wide words) and always return/accept 0; TFQ packs a queue node
// offset into it (§4.H "Contract for all three").
type Ticket int64

// RWLock is the database-wide readers-writer lock contract every protocol
// in §4.H implements: lexically bracketed start/end pairs, undefined
// behavior on upgrade or nesting attempts.
type RWLock interface {
	StartRead() Ticket
	EndRead(Ticket)
	StartWrite() Ticket
	EndWrite(Ticket)
}

// TimedRWLock is implemented only by the TFQ protocol (§5 "Only the TFQ
// lock supports time-limited acquisition"). Callers that need cancellable
// acquisition type-assert the RWLock New returns against this interface.
type TimedRWLock interface {
	RWLock
	StartWriteTimeout(time.Duration) (Ticket, error)
	StartReadTimeout(time.Duration) (Ticket, error)
}

// stateBlockSize is large enough to hold the largest protocol's state (TFQ:
// tail, openRun, openRunRefcount, joinable flag, queue mutex — 5 words); RP and WP use
// only their own leading words of the same carve.
const stateBlockSize = 64

// ensureState returns the segment's lock-state block offset, carving and
// publishing one via CAS on first use if none exists yet (segment.Header's
// LockStateOffset starts at 0 — "lock package initializes this on first
// use", per segment.initSegment's comment). A lost race just wastes one
// carved block; the bump pointer never retreats (§3 invariant 7), so that
// is harmless.
func ensureState(seg *segment.Segment) int64 {
	cell := atomicw.NewCell(seg.Bytes(), segment.LockStateOffset)
	for {
		if off := cell.Load(); off != 0 {
			return off
		}
		carved, err := seg.Carve(stateBlockSize)
		if err != nil {
			return 0
		}
		if atomicw.CAS(cell, 0, carved) {
			return carved
		}
	}
}

// New constructs the RWLock implementation selected by proto, binding it to
// seg's (possibly freshly carved) lock-state block. All processes attaching
// to seg must construct the same protocol — enforced at attach time via the
// segment's feature bitmask (§4.H, §6).
func New(seg *segment.Segment, proto segment.LockProtocol) (RWLock, error) {
	state := ensureState(seg)
	if state == 0 {
		return nil, ErrUnsupportedProtocol
	}
	switch proto {
	case segment.LockReaderPreference:
		return newRP(seg, state), nil
	case segment.LockWriterPreference:
		return newWP(seg, state), nil
	case segment.LockTaskFairQueued:
		return newTFQ(seg, state), nil
	default:
		return nil, ErrUnsupportedProtocol
	}
}
