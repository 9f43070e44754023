// Package lock implements §4.H's three interchangeable database-wide
// readers-writer lock protocols, each built directly on the shared word(s)
// the segment header reserves for lock state (segment.Header.LockStateOffset)
// so every attached process contends on the exact same bytes.
//
// RP and WP are spinlocks built from atomicw's CAS/FAA primitives, in the
// same house style as segment.Carve's CAS retry loop. TFQ additionally
// queues waiter nodes carved from the segment (alloc.FixedArea, reusing the
// same intrusive-freelist idiom as every other fixed area) and blocks on the
// Linux futex syscall via golang.org/x/sys/unix's SYS_FUTEX constant — the
// same x/sys dependency the teacher already carries for mmap — falling back
// to a bounded spin/sleep poll on non-Linux builds, since a process-shared
// condition variable isn't available without cgo.
package lock
