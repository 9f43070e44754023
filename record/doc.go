// Package record implements §4.G's record model: fixed three-word headers
// (size/tag, meta, backlink-chain offset) followed by a run of tagged value
// words, allocated out of the segment's data-record variable-length area.
//
// The view-over-bytes style is grounded on the teacher's hive.NKRecord /
// hive.VKRecord: a thin struct that reads and writes fields at fixed byte
// offsets into a shared buffer rather than owning a decoded copy, so every
// attached process sees the same mutation immediately. The index
// notification contract (record.Indexer) is grounded on the teacher's
// hive/index.Index/ReadOnlyIndex split between read and read-write
// capability.
package record
