package segment_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wgdb/wgdb/segment"
)

func TestAttachLocalInitializesMarkMagic(t *testing.T) {
	seg, err := segment.AttachLocal(1<<20, segment.LockReaderPreference)
	require.NoError(t, err)

	h := seg.Header()
	require.Equal(t, uint32(segment.MagicMark), h.Magic())

	major, minor, _ := h.Version()
	require.Equal(t, segment.VersionMajor, major)
	require.Equal(t, segment.VersionMinor, minor)
}

func TestAttachLocalBumpPointerPastHeader(t *testing.T) {
	seg, err := segment.AttachLocal(1<<20, segment.LockReaderPreference)
	require.NoError(t, err)

	require.Greater(t, seg.Header().FreeOffset(), int64(segment.TailEnd-1))
}

func TestNormalizeKeyDefaults(t *testing.T) {
	require.Equal(t, int64(segment.DefaultKey), segment.NormalizeKey("not-a-number"))
	require.Equal(t, int64(segment.DefaultKey), segment.NormalizeKey("0"))
	require.Equal(t, int64(segment.DefaultKey), segment.NormalizeKey("-5"))
	require.Equal(t, int64(42), segment.NormalizeKey("42"))
}

func TestNormalizeModeOwnerAlwaysRW(t *testing.T) {
	m := segment.NormalizeMode(0o000)
	require.Equal(t, os.FileMode(0o600), m.Perm()&0o600)
}

func TestNormalizeModeGroupOtherAllOrNothing(t *testing.T) {
	m := segment.NormalizeMode(0o644)
	require.Equal(t, os.FileMode(0o070), m.Perm()&0o070, "nonzero group bits become 0o070")
	require.Equal(t, os.FileMode(0o007), m.Perm()&0o007, "nonzero other bits become 0o007")

	m2 := segment.NormalizeMode(0o600)
	require.Equal(t, os.FileMode(0), m2.Perm()&0o077, "zero group/other bits stay zero")
}
