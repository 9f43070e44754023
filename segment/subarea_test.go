package segment_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wgdb/wgdb/segment"
)

func TestCarveAdvancesBumpPointerMonotonically(t *testing.T) {
	seg, err := segment.AttachLocal(1<<16, segment.LockReaderPreference)
	require.NoError(t, err)

	before := seg.Header().FreeOffset()
	off, err := seg.Carve(256)
	require.NoError(t, err)
	require.Equal(t, before, off)
	require.Equal(t, before+256, seg.Header().FreeOffset())
}

func TestCarveRejectsOversizedRequest(t *testing.T) {
	seg, err := segment.AttachLocal(1<<16, segment.LockReaderPreference)
	require.NoError(t, err)

	_, err = seg.Carve(1 << 20)
	require.ErrorIs(t, err, segment.ErrOutOfSpace)
}

// TestCarveConcurrentNeverOverlaps exercises invariant 7 (bump pointer never
// retreats, never double-issues a byte range) under concurrent carving.
func TestCarveConcurrentNeverOverlaps(t *testing.T) {
	seg, err := segment.AttachLocal(1<<20, segment.LockReaderPreference)
	require.NoError(t, err)

	const n = 64
	offs := make([]int64, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := range n {
		go func(i int) {
			defer wg.Done()
			off, err := seg.Carve(64)
			require.NoError(t, err)
			offs[i] = off
		}(i)
	}
	wg.Wait()

	seen := make(map[int64]bool, n)
	for _, off := range offs {
		require.False(t, seen[off], "offset %d carved twice", off)
		seen[off] = true
	}
}

func TestGrowSubAreaDoublesSize(t *testing.T) {
	seg, err := segment.AttachLocal(4<<20, segment.LockReaderPreference)
	require.NoError(t, err)

	_, size1, err := seg.GrowSubArea(segment.AreaDataRec, 0)
	require.NoError(t, err)
	require.Equal(t, int64(segment.DefaultInitialSubAreaSize), size1)

	_, size2, err := seg.GrowSubArea(segment.AreaDataRec, 0)
	require.NoError(t, err)
	require.Equal(t, size1*2, size2)

	require.Equal(t, 2, seg.Header().Area(segment.AreaDataRec).SubAreaCount())
}
