package lock

import (
	"time"

	"github.com/wgdb/wgdb/atomicw"
	"github.com/wgdb/wgdb/segment"
)

// wp implements the writer-preference spinlock (§4.H "WP"): the same
// reader/writer word as rp, plus a second word counting writers currently
// trying to acquire. Readers refuse to join while any writer is waiting,
// so WP starves readers under sustained write load.
type wp struct {
	word    atomicw.Cell
	waiters atomicw.Cell
}

func newWP(seg *segment.Segment, stateOff int64) *wp {
	buf := seg.Bytes()
	return &wp{
		word:    atomicw.NewCell(buf, int(stateOff)),
		waiters: atomicw.NewCell(buf, int(stateOff+8)),
	}
}

// StartRead waits until no writer is waiting, then CASes its reader count
// in; if a writer's CAS beat it to the word, it loops back to waiting on
// the waiters count instead of retrying blindly (§4.H "if a writer appears
// during the CAS, loop").
func (l *wp) StartRead() Ticket {
	for {
		for l.waiters.Load() != 0 {
			time.Sleep(spinDelay)
		}
		cur := l.word.Load()
		if cur&1 != 0 {
			continue
		}
		if atomicw.CAS(l.word, cur, cur+2) {
			return 0
		}
	}
}

func (l *wp) EndRead(Ticket) {
	atomicw.FAA(l.word, -2)
}

// StartWrite registers intent (incrementing waiters so readers back off)
// before spinning the acquire CAS, and only clears that intent on release
// (§4.H "increment waiters, then CAS as before, then on release decrement
// waiters").
func (l *wp) StartWrite() Ticket {
	atomicw.Inc(l.waiters, 1)
	for !atomicw.CAS(l.word, 0, 1) {
		time.Sleep(spinDelay)
	}
	return 0
}

func (l *wp) EndWrite(Ticket) {
	atomicw.And(l.word, ^int64(1))
	atomicw.Inc(l.waiters, -1)
}
