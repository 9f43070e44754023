package record_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wgdb/wgdb/record"
	"github.com/wgdb/wgdb/segment"
	"github.com/wgdb/wgdb/value"
)

func newTestStore(t *testing.T) (record.Store, *segment.Segment) {
	t.Helper()
	seg, err := segment.AttachLocal(1<<20, segment.LockReaderPreference)
	require.NoError(t, err)
	return record.NewStore(seg), seg
}

func TestCreateZeroInitializesFields(t *testing.T) {
	s, _ := newTestStore(t)
	rec, err := s.Create(3, record.NoopIndexer{})
	require.NoError(t, err)
	require.Equal(t, 3, rec.NumFields())
	for i := 0; i < 3; i++ {
		w, err := rec.Field(i)
		require.NoError(t, err)
		require.Equal(t, value.Word(0), w)
	}
}

func TestSetFieldAndReadBack(t *testing.T) {
	s, _ := newTestStore(t)
	rec, err := s.Create(2, record.NoopIndexer{})
	require.NoError(t, err)

	w, ok := value.EncodeInt(42)
	require.True(t, ok)
	require.NoError(t, s.SetField(rec, 0, w, record.NoopIndexer{}))

	got, err := rec.Field(0)
	require.NoError(t, err)
	require.Equal(t, w, got)
}

func TestSetNewFieldRejectsNonNull(t *testing.T) {
	s, _ := newTestStore(t)
	rec, err := s.Create(1, record.NoopIndexer{})
	require.NoError(t, err)

	w, _ := value.EncodeInt(1)
	require.NoError(t, s.SetNewField(rec, 0, w, record.NoopIndexer{}))

	w2, _ := value.EncodeInt(2)
	require.ErrorIs(t, s.SetNewField(rec, 0, w2, record.NoopIndexer{}), record.ErrNotNull)
}

func TestDeleteFailsWithLiveBacklink(t *testing.T) {
	s, _ := newTestStore(t)
	target, err := s.Create(1, record.NoopIndexer{})
	require.NoError(t, err)
	holder, err := s.Create(1, record.NoopIndexer{})
	require.NoError(t, err)

	ref := value.EncodeRecordRef(target.Offset())
	require.NoError(t, s.SetField(holder, 0, ref, record.NoopIndexer{}))

	require.ErrorIs(t, s.Delete(target, record.NoopIndexer{}), record.ErrHasBacklinks)

	require.NoError(t, s.Delete(holder, record.NoopIndexer{}))
	require.NoError(t, s.Delete(target, record.NoopIndexer{}))
}

func TestGetFirstGetNextWalksAllLiveRecords(t *testing.T) {
	s, _ := newTestStore(t)
	var offs []int64
	for i := 0; i < 5; i++ {
		rec, err := s.Create(2, record.NoopIndexer{})
		require.NoError(t, err)
		offs = append(offs, rec.Offset())
	}

	var seen []int64
	off := s.GetFirst()
	for off != 0 {
		seen = append(seen, off)
		off = s.GetNext(off)
	}
	require.ElementsMatch(t, offs, seen)
}

func TestGetFirstGetNextSkipsDeletedRecords(t *testing.T) {
	s, _ := newTestStore(t)
	a, err := s.Create(1, record.NoopIndexer{})
	require.NoError(t, err)
	b, err := s.Create(1, record.NoopIndexer{})
	require.NoError(t, err)
	c, err := s.Create(1, record.NoopIndexer{})
	require.NoError(t, err)

	require.NoError(t, s.Delete(b, record.NoopIndexer{}))

	var seen []int64
	off := s.GetFirst()
	for off != 0 {
		seen = append(seen, off)
		off = s.GetNext(off)
	}
	require.ElementsMatch(t, []int64{a.Offset(), c.Offset()}, seen)
}

func TestUpdateAtomicFieldCASMismatch(t *testing.T) {
	s, _ := newTestStore(t)
	rec, err := s.Create(1, record.NoopIndexer{})
	require.NoError(t, err)

	w1, _ := value.EncodeInt(1)
	w2, _ := value.EncodeInt(2)
	wrongExpect, _ := value.EncodeInt(99)

	require.ErrorIs(t, s.UpdateAtomicField(rec, 0, w2, wrongExpect, record.NoopIndexer{}, false), record.ErrCASMismatch)
	require.NoError(t, s.UpdateAtomicField(rec, 0, w1, 0, record.NoopIndexer{}, false))

	got, _ := rec.Field(0)
	require.Equal(t, w1, got)
}

func TestUpdateAtomicFieldRejectsIndexedColumn(t *testing.T) {
	s, _ := newTestStore(t)
	rec, err := s.Create(1, record.NoopIndexer{})
	require.NoError(t, err)

	w, _ := value.EncodeInt(1)
	require.ErrorIs(t, s.UpdateAtomicField(rec, 0, w, 0, alwaysIndexed{}, false), record.ErrNotAtomic)
}

type alwaysIndexed struct{ record.NoopIndexer }

func (alwaysIndexed) IsIndexed(int) bool { return true }

func TestAddIntAtomicField(t *testing.T) {
	s, _ := newTestStore(t)
	rec, err := s.Create(1, record.NoopIndexer{})
	require.NoError(t, err)

	w, _ := value.EncodeInt(10)
	require.NoError(t, s.SetField(rec, 0, w, record.NoopIndexer{}))

	require.NoError(t, s.AddIntAtomicField(rec, 0, 5, record.NoopIndexer{}, false))

	got, err := rec.Field(0)
	require.NoError(t, err)
	gotInt, err := value.DecodeSmallInt(got)
	require.NoError(t, err)
	require.Equal(t, int64(15), gotInt)
}
