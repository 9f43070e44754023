//go:build unix

package segment

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// mapShared creates (if needed) or opens the backing file for a named OS
// segment under dir, truncates it to size, and mmaps it MAP_SHARED so every
// process attaching to the same name observes the same bytes. Grounded on
// the teacher's internal/mmfile/mmfile_unix.go, extended from read-only to
// read-write since the segment is mutated in place.
func mapShared(path string, size int64, mode os.FileMode, create bool) ([]byte, *os.File, error) {
	flags := os.O_RDWR
	if create {
		flags |= os.O_CREATE
	}
	f, err := os.OpenFile(path, flags, mode)
	if err != nil {
		return nil, nil, fmt.Errorf("segment: open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if info.Size() < size {
		if err := f.Truncate(size); err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("segment: truncate %s to %d: %w", path, size, err)
		}
	} else {
		size = info.Size()
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("segment: mmap %s: %w", path, err)
	}
	return data, f, nil
}

func unmapShared(data []byte, f *os.File) error {
	err := unix.Munmap(data)
	if f != nil {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func deleteShared(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
