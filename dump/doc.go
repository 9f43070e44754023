// Package dump implements §4.J: a whole-segment snapshot format (the used
// prefix [0, free_pointer) with a CRC32 checksum), validation of a dump
// file's header without attaching it, and import back into a live
// segment.
package dump
