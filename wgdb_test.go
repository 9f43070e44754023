package wgdb_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wgdb/wgdb"
	"github.com/wgdb/wgdb/segment"
	"github.com/wgdb/wgdb/value"
)

func TestAttachLocalCreateSetGetDetach(t *testing.T) {
	db, err := wgdb.AttachLocal(1<<20, wgdb.Options{LockProtocol: segment.LockReaderPreference})
	require.NoError(t, err)
	defer db.Detach()

	rec, err := db.Create(2)
	require.NoError(t, err)

	w, err := db.EncodeFullInt(99)
	require.NoError(t, err)
	require.NoError(t, db.SetField(rec, 0, w))

	ws, err := db.EncodeString("a string long enough to live in the long-string area", true)
	require.NoError(t, err)
	require.NoError(t, db.SetField(rec, 1, ws))

	off := db.GetFirst()
	require.Equal(t, rec.Offset(), off)
	require.Zero(t, db.GetNext(off))

	f0, err := db.Record(off).Field(0)
	require.NoError(t, err)
	v, err := db.DecodeFullInt(f0)
	require.NoError(t, err)
	require.Equal(t, int64(99), v)
}

func TestAttachLocalWithLoggingJournalsMutations(t *testing.T) {
	journalPath := filepath.Join(t.TempDir(), "test.journal")
	db, err := wgdb.AttachLocal(1<<20, wgdb.Options{
		LockProtocol: segment.LockReaderPreference,
		Logging:      true,
		JournalPath:  journalPath,
	})
	require.NoError(t, err)

	rec, err := db.Create(1)
	require.NoError(t, err)
	w, err := db.EncodeFullInt(7)
	require.NoError(t, err)
	require.NoError(t, db.SetField(rec, 0, w))
	require.NoError(t, db.Detach())

	dst, err := wgdb.AttachLocal(1<<20, wgdb.Options{LockProtocol: segment.LockReaderPreference})
	require.NoError(t, err)
	defer dst.Detach()
	require.NoError(t, dst.Replay(journalPath))

	off := dst.GetFirst()
	require.NotZero(t, off)
	f0, err := dst.Record(off).Field(0)
	require.NoError(t, err)
	v, err := dst.DecodeFullInt(f0)
	require.NoError(t, err)
	require.Equal(t, int64(7), v)
}

func TestDumpAndImportRoundTrip(t *testing.T) {
	db, err := wgdb.AttachLocal(1<<20, wgdb.Options{LockProtocol: segment.LockReaderPreference})
	require.NoError(t, err)
	defer db.Detach()

	rec, err := db.Create(1)
	require.NoError(t, err)
	w, err := db.EncodeFullInt(5)
	require.NoError(t, err)
	require.NoError(t, db.SetField(rec, 0, w))

	path := filepath.Join(t.TempDir(), "snap.dump")
	require.NoError(t, db.Dump(path))

	dst, err := wgdb.AttachLocal(1<<20, wgdb.Options{LockProtocol: segment.LockReaderPreference})
	require.NoError(t, err)
	defer dst.Detach()
	require.NoError(t, dst.Import(path))

	off := dst.GetFirst()
	require.NotZero(t, off)
	f0, err := dst.Record(off).Field(0)
	require.NoError(t, err)
	v, err := dst.DecodeFullInt(f0)
	require.NoError(t, err)
	require.Equal(t, int64(5), v)
}

func TestAtomicFieldUpdateBypassesLock(t *testing.T) {
	db, err := wgdb.AttachLocal(1<<20, wgdb.Options{LockProtocol: segment.LockReaderPreference})
	require.NoError(t, err)
	defer db.Detach()

	rec, err := db.Create(1)
	require.NoError(t, err)
	zero, ok := value.EncodeInt(0)
	require.True(t, ok)
	require.NoError(t, db.SetNewField(rec, 0, zero))

	require.NoError(t, db.AddIntAtomicField(rec, 0, 41))
	f0, err := db.Record(rec.Offset()).Field(0)
	require.NoError(t, err)
	got, err := value.DecodeSmallInt(f0)
	require.NoError(t, err)
	require.Equal(t, int64(41), got)
}
