//go:build linux

package lock

import (
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Futex operation codes (linux/include/uapi/linux/futex.h). x/sys/unix
// exposes SYS_FUTEX but, unlike mmap/shm, does not wrap the syscall itself
// in a friendly signature, so the two operations this package needs are
// issued directly via unix.Syscall6, the same raw-syscall style the
// teacher's mmfile package uses for mmap/munmap on platforms x/sys leaves
// unwrapped.
const (
	futexWait = 0
	futexWake = 1
)

// futexAddr returns a pointer to the low 4 bytes of the waitFlag word at the
// given segment offset. The segment format is little-endian-only (internal/
// wbin's package doc), so the word's low 4 bytes are always its first 4
// bytes regardless of host endianness of the process reading them — a
// little-endian host's native uint32 view of those bytes is exactly the
// word's low half.
func (l *tfq) futexAddr(n int64) *uint32 {
	buf := l.buf()
	off := l.waitFlagOff(n)
	//nolint:gosec // buf is the long-lived segment mapping; off is word-aligned by construction
	return (*uint32)(unsafe.Pointer(&buf[off]))
}

func futexWaitSyscall(addr *uint32, val uint32, timeout *unix.Timespec) {
	var tp unsafe.Pointer
	if timeout != nil {
		tp = unsafe.Pointer(timeout)
	}
	_, _, _ = unix.Syscall6(unix.SYS_FUTEX, uintptr(unsafe.Pointer(addr)),
		futexWait, uintptr(val), uintptr(tp), 0, 0)
}

func futexWakeSyscall(addr *uint32, n int) {
	_, _, _ = unix.Syscall6(unix.SYS_FUTEX, uintptr(unsafe.Pointer(addr)),
		futexWake, uintptr(n), 0, 0, 0)
}

// waitFor blocks until n's waitFlag is cleared to 0 by the releaser
// (advance), using a futex wait so a blocked goroutine does not spin-burn a
// CPU while queued behind a writer.
func (l *tfq) waitFor(n int64) {
	addr := l.futexAddr(n)
	for {
		if l.i64(l.waitFlagOff(n)) == 0 {
			return
		}
		futexWaitSyscall(addr, 1, nil)
	}
}

// waitForTimeout is waitFor bounded by d; it reports whether the node was
// granted before the deadline.
func (l *tfq) waitForTimeout(n int64, d time.Duration) bool {
	addr := l.futexAddr(n)
	deadline := time.Now().Add(d)
	for {
		if l.i64(l.waitFlagOff(n)) == 0 {
			return true
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return l.i64(l.waitFlagOff(n)) == 0
		}
		ts := unix.NsecToTimespec(remaining.Nanoseconds())
		futexWaitSyscall(addr, 1, &ts)
	}
}

// wake wakes one waiter blocked on n's waitFlag word.
func (l *tfq) wake(n int64) {
	futexWakeSyscall(l.futexAddr(n), 1)
}
