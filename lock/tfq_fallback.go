//go:build !linux

package lock

import "time"

// waitFor polls the waitFlag word with a bounded sleep between checks
// instead of blocking on a futex (Linux only), rather than pulling in cgo
// for a process-shared condition variable.
func (l *tfq) waitFor(n int64) {
	for l.i64(l.waitFlagOff(n)) != 0 {
		time.Sleep(spinDelay)
	}
}

func (l *tfq) waitForTimeout(n int64, d time.Duration) bool {
	deadline := time.Now().Add(d)
	for l.i64(l.waitFlagOff(n)) != 0 {
		if time.Now().After(deadline) {
			return l.i64(l.waitFlagOff(n)) == 0
		}
		time.Sleep(spinDelay)
	}
	return true
}

// wake is a no-op: waitFor's poll loop will observe the cleared waitFlag on
// its next iteration without needing an explicit signal.
func (l *tfq) wake(int64) {}
