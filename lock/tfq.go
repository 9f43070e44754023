package lock

import (
	"time"

	"github.com/wgdb/wgdb/alloc"
	"github.com/wgdb/wgdb/atomicw"
	"github.com/wgdb/wgdb/internal/wbin"
	"github.com/wgdb/wgdb/segment"
)

// Node kinds, stored in a queue node's kind word.
const (
	kindWriter int64 = 0
	kindReader int64 = 1
)

// Node layout: next/prev link the FIFO (prev is only needed to splice a
// cancelled waiter back out, §4.H "Cancellation"), kind records
// writer-vs-reader, waitFlag is 1 while the holder of this node is still
// queued and 0 once granted. waitFlag is also the word the futex wait/wake
// primitives address directly (tfq_linux.go), so every write to it that
// should become visible to a sleeping waiter goes through setWaitFlag,
// never a bare store.
const (
	tfqNodeNext     = 0
	tfqNodePrev     = 8
	tfqNodeKind     = 16
	tfqNodeWaitFlag = 24
	tfqNodeSize     = 32
)

// State block layout, relative to the segment's shared lock-state offset.
// Every field here is read and written only while queueMutex is held, which
// is what lets TFQ get away with plain (non-atomic) loads/stores on them
// instead of a lock-free scheme — the spec itself names "the internal queue
// mutex" as an existing concept (§4.H "Cancellation"); this implementation
// leans on it for every queue mutation, not just cancel.
const (
	tfqTail        = 0 // offset of the last node appended to the queue, 0 if empty
	tfqOpenRun     = 8 // anchor node of the currently granted reader run, 0 if none
	tfqOpenRunRefc = 16
	tfqJoinable    = 24 // 1 while new readers may still fast-join the open run
	tfqMutex       = 32
)

// tfq implements the task-fair queued lock (§4.H "TFQ"). Waiter nodes are
// carved from segment.AreaQueueNode via alloc.FixedArea, reusing the same
// plain stack-freelist allocator as every other fixed area — per the spec's
// own resolution of the queue-node-freelist open question (§9): "a correct
// implementation should use the plainer stack-freelist allocator for queue
// nodes".
//
// Exactly one reader run can be granted at a time (a writer never starts
// until the whole run ahead of it has drained, and a new run never opens
// until the writer ahead of it has released), so a single anchor node plus
// a shared refcount is enough to track it: the anchor is the only node in
// the linked list a fast-joining reader needs — joiners never allocate a
// node of their own, they just add to openRunRefc and hand back a Ticket
// that names the anchor. Whichever holder's EndRead happens to bring the
// refcount to zero (not necessarily the anchor's own holder, and not
// necessarily in arrival order) is the one that frees the anchor node and
// advances the queue; because the anchor is never freed before that last
// decrement, there is no window where a live Ticket can point at a reused
// node. A writer enqueuing behind an open run does not touch the anchor or
// its refcount at all — it only clears tfqJoinable, so the run keeps
// draining normally and still performs the handoff once it empties out.
type tfq struct {
	seg   *segment.Segment
	state int64
	nodes alloc.FixedArea
}

func newTFQ(seg *segment.Segment, stateOff int64) *tfq {
	return &tfq{
		seg:   seg,
		state: stateOff,
		nodes: alloc.NewFixedArea(seg, segment.AreaQueueNode),
	}
}

func (l *tfq) buf() []byte               { return l.seg.Bytes() }
func (l *tfq) i64(off int64) int64       { return wbin.ReadI64(l.buf(), int(off)) }
func (l *tfq) setI64(off int64, v int64) { wbin.PutI64(l.buf(), int(off), v) }

func (l *tfq) tail() int64            { return l.i64(l.state + tfqTail) }
func (l *tfq) setTail(v int64)        { l.setI64(l.state+tfqTail, v) }
func (l *tfq) openRun() int64         { return l.i64(l.state + tfqOpenRun) }
func (l *tfq) setOpenRun(v int64)     { l.setI64(l.state+tfqOpenRun, v) }
func (l *tfq) openRunRefc() int64     { return l.i64(l.state + tfqOpenRunRefc) }
func (l *tfq) setOpenRunRefc(v int64) { l.setI64(l.state+tfqOpenRunRefc, v) }
func (l *tfq) joinable() bool         { return l.i64(l.state+tfqJoinable) != 0 }
func (l *tfq) setJoinable(v bool) {
	n := int64(0)
	if v {
		n = 1
	}
	l.setI64(l.state+tfqJoinable, n)
}

func (l *tfq) nodeNext(n int64) int64    { return l.i64(n + tfqNodeNext) }
func (l *tfq) setNodeNext(n, v int64)    { l.setI64(n+tfqNodeNext, v) }
func (l *tfq) nodePrev(n int64) int64    { return l.i64(n + tfqNodePrev) }
func (l *tfq) setNodePrev(n, v int64)    { l.setI64(n+tfqNodePrev, v) }
func (l *tfq) nodeKind(n int64) int64    { return l.i64(n + tfqNodeKind) }
func (l *tfq) setNodeKind(n, v int64)    { l.setI64(n+tfqNodeKind, v) }
func (l *tfq) waitFlagOff(n int64) int64 { return n + tfqNodeWaitFlag }

// setWaitFlag publishes a node's grant state: 0 means "run now". Callers
// that wake a real sleeper pair this with wake() (tfq_linux.go's futex
// wake; tfq_fallback.go's waiter just polls the word).
func (l *tfq) setWaitFlag(n int64, v int64) { l.setI64(l.waitFlagOff(n), v) }

func (l *tfq) mutexCell() atomicw.Cell {
	return atomicw.NewCell(l.buf(), int(l.state+tfqMutex))
}

// lockMutex/unlockMutex are the "internal queue mutex" the spec names for
// TFQ's cancellation path (§4.H, §5); this implementation uses it to guard
// every queue mutation, not only cancellation. It is a plain CAS spinlock,
// the same primitive RP and WP build their whole protocol from.
func (l *tfq) lockMutex() {
	cell := l.mutexCell()
	for !atomicw.CAS(cell, 0, 1) {
		time.Sleep(spinDelay)
	}
}

func (l *tfq) unlockMutex() { l.mutexCell().Store(0) }

// allocNode must be called with queueMutex held. Running out of queue-node
// storage mid-wait has no good recovery (the caller has nowhere to queue
// itself), so it spins on the allocator rather than surfacing an error that
// none of RWLock's Start methods have anywhere to return.
func (l *tfq) allocNode(kind int64) int64 {
	n, err := l.nodes.Alloc(tfqNodeSize)
	for err != nil {
		time.Sleep(spinDelay)
		n, err = l.nodes.Alloc(tfqNodeSize)
	}
	l.setNodeNext(n, 0)
	l.setNodePrev(n, 0)
	l.setNodeKind(n, kind)
	l.setI64(l.waitFlagOff(n), 1)
	return n
}

func (l *tfq) freeNode(n int64) { _ = l.nodes.Free(n) }

// StartWrite enqueues a writer node; it is granted immediately only when
// the queue was completely empty, and otherwise always waits for its
// predecessor to finish, regardless of that predecessor's kind — this is
// what gives writers strict FIFO ordering against everything ahead of them,
// including an open reader run (§8 TFQ fairness scenario).
func (l *tfq) StartWrite() Ticket {
	l.lockMutex()
	n := l.allocNode(kindWriter)
	prev := l.tail()
	l.setTail(n)
	granted := prev == 0
	if granted {
		l.setWaitFlag(n, 0)
	} else {
		l.setNodePrev(n, prev)
		l.setNodeNext(prev, n)
		if prev == l.openRun() {
			// Close the run to new fast-joiners; its existing members keep
			// draining normally and still trigger the handoff to this
			// node once the last of them releases.
			l.setJoinable(false)
		}
	}
	l.unlockMutex()

	if !granted {
		l.waitFor(n)
	}
	return Ticket(n)
}

func (l *tfq) EndWrite(t Ticket) {
	l.lockMutex()
	l.advance(int64(t))
}

// StartRead joins an already-open reader run with nothing more than a
// refcount bump when one is still accepting joiners; otherwise it enqueues
// its own node, granted immediately only if the queue was empty (§8 "for
// readers behind a reader the wait is zero" — satisfied because every
// reader that becomes the head of a fresh run is itself the fast-join
// anchor for everyone who arrives while it, and its run, are still open).
func (l *tfq) StartRead() Ticket {
	l.lockMutex()

	if run := l.openRun(); run != 0 && l.joinable() {
		l.setOpenRunRefc(l.openRunRefc() + 1)
		l.unlockMutex()
		return Ticket(-run)
	}

	n := l.allocNode(kindReader)
	prev := l.tail()
	l.setTail(n)
	granted := prev == 0
	if granted {
		l.setWaitFlag(n, 0)
		l.setOpenRun(n)
		l.setOpenRunRefc(1)
		l.setJoinable(true)
	} else {
		l.setNodePrev(n, prev)
		l.setNodeNext(prev, n)
	}
	l.unlockMutex()

	if !granted {
		l.waitFor(n)
	}
	return Ticket(n)
}

// EndRead releases one reader's share of the run its ticket names (anchor
// holders and fast-joiners are handled identically — see tfq's doc comment)
// and, only when that run's refcount reaches zero, frees the anchor node
// and advances the queue.
func (l *tfq) EndRead(t Ticket) {
	off := int64(t)
	anchor := off
	if anchor < 0 {
		anchor = -anchor
	}

	l.lockMutex()
	remaining := l.openRunRefc() - 1
	l.setOpenRunRefc(remaining)
	if remaining > 0 {
		l.unlockMutex()
		return
	}
	l.setOpenRun(0)
	l.setJoinable(false)
	l.advance(anchor)
}

// advance must be called with queueMutex held; it hands the lock to the
// node after off (if any), frees off, and releases the mutex, waking the
// successor outside the critical section.
func (l *tfq) advance(off int64) {
	next := l.nodeNext(off)
	if next == 0 {
		if l.tail() == off {
			l.setTail(0)
		}
		l.freeNode(off)
		l.unlockMutex()
		return
	}
	l.setNodePrev(next, 0)
	if l.nodeKind(next) == kindReader {
		l.setOpenRun(next)
		l.setOpenRunRefc(1)
		l.setJoinable(true)
	}
	l.setWaitFlag(next, 0)
	l.freeNode(off)
	l.unlockMutex()
	l.wake(next)
}

// StartWriteTimeout and StartReadTimeout are the only cancellable
// acquisitions in this package (§5 "Only the TFQ lock supports time-limited
// acquisition"). On timeout, the caller's node is spliced out of the queue
// under queueMutex before returning ErrTimeout (§4.H "Cancellation"). A
// fast-joining reader never allocates a node and never blocks, so it never
// times out.
func (l *tfq) StartWriteTimeout(d time.Duration) (Ticket, error) {
	l.lockMutex()
	n := l.allocNode(kindWriter)
	prev := l.tail()
	l.setTail(n)
	granted := prev == 0
	if granted {
		l.setWaitFlag(n, 0)
	} else {
		l.setNodePrev(n, prev)
		l.setNodeNext(prev, n)
		if prev == l.openRun() {
			l.setJoinable(false)
		}
	}
	l.unlockMutex()
	if granted {
		return Ticket(n), nil
	}
	if l.waitForTimeout(n, d) {
		return Ticket(n), nil
	}
	if granted := !l.cancel(n); granted {
		// The node was granted in the instant between the timeout firing
		// and cancel() taking the mutex; the caller now owns the lock and
		// must release it normally rather than be told it timed out.
		return Ticket(n), nil
	}
	return 0, ErrTimeout
}

func (l *tfq) StartReadTimeout(d time.Duration) (Ticket, error) {
	l.lockMutex()
	if run := l.openRun(); run != 0 && l.joinable() {
		l.setOpenRunRefc(l.openRunRefc() + 1)
		l.unlockMutex()
		return Ticket(-run), nil
	}
	n := l.allocNode(kindReader)
	prev := l.tail()
	l.setTail(n)
	granted := prev == 0
	if granted {
		l.setWaitFlag(n, 0)
		l.setOpenRun(n)
		l.setOpenRunRefc(1)
		l.setJoinable(true)
	} else {
		l.setNodePrev(n, prev)
		l.setNodeNext(prev, n)
	}
	l.unlockMutex()
	if granted {
		return Ticket(n), nil
	}
	if l.waitForTimeout(n, d) {
		return Ticket(n), nil
	}
	if granted := !l.cancel(n); granted {
		return Ticket(n), nil
	}
	return 0, ErrTimeout
}

// cancel splices a still-queued (never granted) node out of the list and
// reports true if it did so. It is always safe to call on a timed-out node:
// nothing else relinks a waiting node's neighbors except advance() granting
// it (which this races against exactly once, resolved by the waitFlag check
// below) and this function. If the node was granted in that race, cancel
// does nothing and reports false — the caller now holds the lock and must
// release it through the normal path rather than treat this as a timeout.
func (l *tfq) cancel(n int64) bool {
	l.lockMutex()
	defer l.unlockMutex()
	if l.i64(l.waitFlagOff(n)) == 0 {
		return false
	}
	prev := l.nodePrev(n)
	next := l.nodeNext(n)
	if prev != 0 {
		l.setNodeNext(prev, next)
	}
	if next != 0 {
		l.setNodePrev(next, prev)
	} else if l.tail() == n {
		l.setTail(prev)
	}
	l.freeNode(n)
	return true
}
