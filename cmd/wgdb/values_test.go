package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wgdb/wgdb"
	"github.com/wgdb/wgdb/segment"
	"github.com/wgdb/wgdb/value"
)

func newTestDB(t *testing.T) *wgdb.Database {
	t.Helper()
	db, err := wgdb.AttachLocal(1024*1024, wgdb.Options{LockProtocol: segment.LockReaderPreference})
	require.NoError(t, err)
	t.Cleanup(func() { db.Detach() })
	return db
}

func TestEncodeArgRoundTrip(t *testing.T) {
	db := newTestDB(t)

	tests := []struct {
		name string
		arg  string
		want string
	}{
		{"small int", "42", "42"},
		{"negative small int", "-7", "-7"},
		{"large int needs full encoding", "1152921504606846976", "1152921504606846976"},
		{"float", "3.5", "3.5"},
		{"short string", "hello", "hello"},
		{"long string", stringOfLen(value.ShortStrMaxLen + 1), stringOfLen(value.ShortStrMaxLen + 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := encodeArg(db, tt.arg)
			require.NoError(t, err)
			require.Equal(t, tt.want, decodeWord(db, w))
		})
	}
}

func stringOfLen(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('a' + i%26)
	}
	return string(b)
}

func TestDecodeWordNull(t *testing.T) {
	require.Equal(t, "NULL", decodeWord(newTestDB(t), value.Word(0)))
}

func TestMatchesConditionNumericAndLexical(t *testing.T) {
	db := newTestDB(t)
	rec, err := db.Create(2)
	require.NoError(t, err)

	intWord, err := encodeArg(db, "10")
	require.NoError(t, err)
	require.NoError(t, db.SetField(rec, 0, intWord))

	strWord, err := encodeArg(db, "banana")
	require.NoError(t, err)
	require.NoError(t, db.SetField(rec, 1, strWord))

	ok, err := matchesCondition(db, rec.Offset(), 0, ">", "5")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = matchesCondition(db, rec.Offset(), 0, "<", "5")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = matchesCondition(db, rec.Offset(), 1, "=", "banana")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = matchesCondition(db, rec.Offset(), 1, "!=", "apple")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEncodeJSONValue(t *testing.T) {
	db := newTestDB(t)

	w, err := encodeJSONValue(db, float64(7))
	require.NoError(t, err)
	require.Equal(t, "7", decodeWord(db, w))

	w, err = encodeJSONValue(db, "hi")
	require.NoError(t, err)
	require.Equal(t, "hi", decodeWord(db, w))

	w, err = encodeJSONValue(db, true)
	require.NoError(t, err)
	require.Equal(t, "1", decodeWord(db, w))

	w, err = encodeJSONValue(db, nil)
	require.NoError(t, err)
	require.Equal(t, "NULL", decodeWord(db, w))

	_, err = encodeJSONValue(db, map[string]interface{}{"x": 1})
	require.Error(t, err)
}
