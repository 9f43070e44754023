package lock

import (
	"time"

	"github.com/wgdb/wgdb/atomicw"
	"github.com/wgdb/wgdb/segment"
)

// spinDelay is the bounded sleep between spin bursts for both spinlock
// protocols (§5 "spinlock delay loops call a millisecond/nanosecond sleep
// between spin bursts").
const spinDelay = 20 * time.Microsecond

// rp implements the reader-preference spinlock (§4.H "RP"): a single
// shared word whose bit 0 is the writer-active flag and whose remaining
// bits count active readers (incremented by 2 so the two never collide).
type rp struct {
	word atomicw.Cell
}

func newRP(seg *segment.Segment, stateOff int64) *rp {
	return &rp{word: atomicw.NewCell(seg.Bytes(), int(stateOff))}
}

// StartRead never fails: it adds to the reader count
// unconditionally, then spins only if a writer had already set the bit
// (§4.H "faa to add reader count, spin until writer bit clears"). Once a
// reader has incremented, no writer's CAS from the zero state can succeed
// until every such reader releases — RP is fair to readers, writers may
// starve.
func (l *rp) StartRead() Ticket {
	atomicw.FAA(l.word, 2)
	for l.word.Load()&1 != 0 {
		time.Sleep(spinDelay)
	}
	return 0
}

func (l *rp) EndRead(Ticket) {
	atomicw.FAA(l.word, -2)
}

// StartWrite spins a CAS from the fully-idle state (no readers, no writer)
// to writer-active; there is no ordering between contending writers.
func (l *rp) StartWrite() Ticket {
	for !atomicw.CAS(l.word, 0, 1) {
		time.Sleep(spinDelay)
	}
	return 0
}

func (l *rp) EndWrite(Ticket) {
	atomicw.And(l.word, ^int64(1))
}
