package dump

import (
	"fmt"
	"hash/crc32"
	"os"

	"github.com/wgdb/wgdb/internal/wbin"
	"github.com/wgdb/wgdb/lock"
	"github.com/wgdb/wgdb/segment"
)

// Dump takes rw's read lock, copies seg's used prefix [0, free_pointer)
// into path with the checksum word overwritten by the CRC32 of that same
// prefix (computed with the checksum word zeroed), and releases the lock
// (§4.J "dump").
func Dump(seg *segment.Segment, rw lock.RWLock, path string) error {
	if seg.Header().ExtDB().Count() > 0 {
		return ErrExternalRefs
	}

	tk := rw.StartRead()
	defer rw.EndRead(tk)

	used := seg.Header().FreeOffset()
	buf := make([]byte, used)
	copy(buf, seg.Bytes()[:used])

	wbin.PutU32(buf, segment.ChecksumOffset, 0)
	sum := crc32.ChecksumIEEE(buf)
	wbin.PutU32(buf, segment.ChecksumOffset, sum)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("dump: create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(buf); err != nil {
		return fmt.Errorf("dump: write %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("dump: sync %s: %w", path, err)
	}
	return nil
}

// CheckDump validates a dump file's header — magic, version, feature
// bitmask, endianness — and recomputes its CRC32 with the checksum field
// zeroed, comparing against the stored value (§4.J "check_dump").
func CheckDump(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("dump: read %s: %w", path, err)
	}
	if err := validateHeader(data); err != nil {
		return err
	}

	want := segment.NewHeaderView(data).Checksum()
	work := make([]byte, len(data))
	copy(work, data)
	wbin.PutU32(work, segment.ChecksumOffset, 0)
	if crc32.ChecksumIEEE(work) != want {
		return ErrChecksumMismatch
	}
	return nil
}

func validateHeader(data []byte) error {
	if len(data) < segment.HeaderSize {
		return ErrTruncated
	}
	ok, swapped := wbin.MagicMatches(data, segment.MagicMark)
	if swapped {
		return fmt.Errorf("%w: opposite byte order", ErrBadMagic)
	}
	if !ok {
		return ErrBadMagic
	}

	h := segment.NewHeaderView(data)
	major, minor, _ := h.Version()
	if major != segment.VersionMajor || minor != segment.VersionMinor {
		return ErrVersionMismatch
	}
	if h.Features()&segment.DefaultFeatures != segment.DefaultFeatures {
		return ErrFeatureMismatch
	}
	used := h.FreeOffset()
	if used < int64(segment.HeaderSize) || used > int64(len(data)) {
		return ErrTruncated
	}
	return nil
}

// Import validates path as a dump file, then restores it into seg: seg
// must be at least as large as the dump's used prefix. The checksum word
// is reset to 0 (meaningful only in a dump file, not a live segment) and
// the lock-state block offset is cleared so the next lock.New call carves
// a fresh one — lock ownership does not survive a dump (§4.J "import").
func Import(seg *segment.Segment, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("dump: read %s: %w", path, err)
	}
	if err := validateHeader(data); err != nil {
		return err
	}
	if int64(len(data)) > seg.Size() {
		return ErrTooSmall
	}

	copy(seg.Bytes(), data)
	h := seg.Header()
	h.SetChecksum(0)
	h.ResetLockState()
	return nil
}
