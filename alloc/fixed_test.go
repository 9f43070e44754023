package alloc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wgdb/wgdb/alloc"
	"github.com/wgdb/wgdb/segment"
)

func newTestSegment(t *testing.T, size int64) *segment.Segment {
	t.Helper()
	seg, err := segment.AttachLocal(size, segment.LockReaderPreference)
	require.NoError(t, err)
	return seg
}

func TestFixedAreaAllocFreeRoundTrip(t *testing.T) {
	seg := newTestSegment(t, 1<<20)
	fa := alloc.NewFixedArea(seg, segment.AreaListCell)

	off, err := fa.Alloc(32)
	require.NoError(t, err)
	require.NotZero(t, off)

	require.NoError(t, fa.Free(off))

	off2, err := fa.Alloc(32)
	require.NoError(t, err)
	require.Equal(t, off, off2, "freed cell should be reused before growing")
}

func TestFixedAreaRejectsMismatchedObjLength(t *testing.T) {
	seg := newTestSegment(t, 1<<20)
	fa := alloc.NewFixedArea(seg, segment.AreaWord)

	_, err := fa.Alloc(32)
	require.NoError(t, err)

	_, err = fa.Alloc(64)
	require.ErrorIs(t, err, alloc.ErrBadArgument)
}

func TestFixedAreaGrowsAndExhausts(t *testing.T) {
	seg := newTestSegment(t, 1<<16)
	fa := alloc.NewFixedArea(seg, segment.AreaShortStr)

	n := 0
	for {
		_, err := fa.Alloc(32)
		if err != nil {
			require.ErrorIs(t, err, alloc.ErrOutOfMemory)
			break
		}
		n++
		if n > 1<<20 {
			t.Fatal("allocator never ran out of space")
		}
	}
	require.Greater(t, n, 0)
}

func TestFixedAreaAllocationsNeverOverlap(t *testing.T) {
	seg := newTestSegment(t, 1<<20)
	fa := alloc.NewFixedArea(seg, segment.AreaTTree)

	seen := make(map[int64]bool)
	for i := 0; i < 200; i++ {
		off, err := fa.Alloc(24)
		require.NoError(t, err)
		require.False(t, seen[off], "offset %d allocated twice", off)
		seen[off] = true
	}
}
