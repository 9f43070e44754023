package atomicw_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wgdb/wgdb/atomicw"
)

func TestCAS(t *testing.T) {
	buf := make([]byte, 8)
	c := atomicw.NewCell(buf, 0)
	c.Store(5)

	require.False(t, atomicw.CAS(c, 4, 9), "CAS should fail on stale expected value")
	require.Equal(t, int64(5), c.Load())

	require.True(t, atomicw.CAS(c, 5, 9))
	require.Equal(t, int64(9), c.Load())
}

func TestFAA(t *testing.T) {
	buf := make([]byte, 8)
	c := atomicw.NewCell(buf, 0)
	c.Store(10)

	prev := atomicw.FAA(c, 3)
	require.Equal(t, int64(10), prev)
	require.Equal(t, int64(13), c.Load())
}

func TestAnd(t *testing.T) {
	buf := make([]byte, 8)
	c := atomicw.NewCell(buf, 0)
	c.Store(0b1111)

	prev := atomicw.And(c, 0b1010)
	require.Equal(t, int64(0b1111), prev)
	require.Equal(t, int64(0b1010), c.Load())
}

// TestConcurrentFAA is the lock-free analogue of the N-threads-K-increments
// lock property: N goroutines each add K via FAA with no external lock, and
// the final value must be exactly N*K (§8 "Locks" property, adapted to raw
// atomics instead of an RW lock).
func TestConcurrentFAA(t *testing.T) {
	const n, k = 8, 1000
	buf := make([]byte, 8)
	c := atomicw.NewCell(buf, 0)

	var wg sync.WaitGroup
	wg.Add(n)
	for range n {
		go func() {
			defer wg.Done()
			for range k {
				atomicw.FAA(c, 1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(n*k), c.Load())
}

func TestNewCellRejectsMisalignedOffset(t *testing.T) {
	buf := make([]byte, 16)
	require.Panics(t, func() { atomicw.NewCell(buf, 1) })
}

func TestNewCellRejectsOutOfRange(t *testing.T) {
	buf := make([]byte, 4)
	require.Panics(t, func() { atomicw.NewCell(buf, 0) })
}
