package lock

import "errors"

var (
	// ErrTimeout indicates a timed acquisition (TFQ only, §4.H
	// "Cancellation") did not succeed before its deadline (§7.10 "Lock
	// acquisition timeout").
	ErrTimeout = errors.New("lock: acquisition timed out")

	// ErrUnsupportedProtocol indicates New was asked for a
	// segment.LockProtocol value it does not recognize.
	ErrUnsupportedProtocol = errors.New("lock: unsupported protocol")

	// ErrNoTimeout indicates StartReadTimeout/StartWriteTimeout was called
	// on a protocol other than TFQ (§5 "Only the TFQ lock supports
	// time-limited acquisition").
	ErrNoTimeout = errors.New("lock: protocol does not support timed acquisition")
)
