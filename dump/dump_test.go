package dump_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wgdb/wgdb/dump"
	"github.com/wgdb/wgdb/lock"
	"github.com/wgdb/wgdb/record"
	"github.com/wgdb/wgdb/segment"
	"github.com/wgdb/wgdb/value"
)

func newSeg(t *testing.T) *segment.Segment {
	t.Helper()
	seg, err := segment.AttachLocal(1<<20, segment.LockReaderPreference)
	require.NoError(t, err)
	return seg
}

// TestDumpCheckImportRoundTrip exercises §8's "check_dump(dump(S)) succeeds"
// and "import(check_dump(dump(S))) yields a segment ... equal to S" (modulo
// checksum and lock state) properties.
func TestDumpCheckImportRoundTrip(t *testing.T) {
	src := newSeg(t)
	store := record.NewStore(src)
	heap := value.NewHeapArea(src)
	idx := record.NoopIndexer{}

	rec, err := store.Create(1, idx)
	require.NoError(t, err)
	w, err := heap.EncodeFullInt(7)
	require.NoError(t, err)
	require.NoError(t, store.SetNewField(rec, 0, w, idx))

	rw, err := lock.New(src, segment.LockReaderPreference)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "snap.dump")
	require.NoError(t, dump.Dump(src, rw, path))
	require.NoError(t, dump.CheckDump(path))

	dst := newSeg(t)
	require.NoError(t, dump.Import(dst, path))

	dstStore := record.NewStore(dst)
	dstHeap := value.NewHeapArea(dst)
	off := dstStore.GetFirst()
	require.NotZero(t, off)
	f0, err := record.At(dst, off).Field(0)
	require.NoError(t, err)
	v, err := dstHeap.DecodeFullInt(f0)
	require.NoError(t, err)
	require.Equal(t, int64(7), v)

	require.Zero(t, dst.Header().LockStateOffset())
	require.Zero(t, dst.Header().Checksum())
}

func TestDumpRefusesExternalRefs(t *testing.T) {
	src := newSeg(t)
	require.NoError(t, src.Header().ExtDB().Register(42))

	rw, err := lock.New(src, segment.LockReaderPreference)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "snap.dump")
	err = dump.Dump(src, rw, path)
	require.ErrorIs(t, err, dump.ErrExternalRefs)
}

func TestCheckDumpRejectsTamperedChecksum(t *testing.T) {
	src := newSeg(t)
	rw, err := lock.New(src, segment.LockReaderPreference)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "snap.dump")
	require.NoError(t, dump.Dump(src, rw, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[segment.HeaderSize/2] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o644))

	err = dump.CheckDump(path)
	require.ErrorIs(t, err, dump.ErrChecksumMismatch)
}

func TestImportRejectsTooSmallTarget(t *testing.T) {
	// A larger source segment means a larger string-hash bucket table and
	// so a larger used prefix, giving a wide margin over the minimal-but-
	// valid tiny target below.
	src, err := segment.AttachLocal(4<<20, segment.LockReaderPreference)
	require.NoError(t, err)
	rw, err := lock.New(src, segment.LockReaderPreference)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "snap.dump")
	require.NoError(t, dump.Dump(src, rw, path))

	tiny, err := segment.AttachLocal(64*1024, segment.LockReaderPreference)
	require.NoError(t, err)

	err = dump.Import(tiny, path)
	require.ErrorIs(t, err, dump.ErrTooSmall)
}
