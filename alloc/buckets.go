package alloc

import "math"

// Bucket layout constants, restated from segment for readability within
// this package (§4.E): EXACT=256 exact-size buckets at 1-word (8-byte)
// granularity, VAR=32 power-of-two range buckets starting at 256 bytes.
const (
	ExactBuckets = 256
	VarBuckets   = 32
	VarBase      = 256
)

// freebucketsIndex returns the bucket index for a given object size, per
// §4.E's "freebuckets_index(size)": the literal size value when it is below
// the exact/var threshold, else a log2-scaled offset into the VAR range.
// Because every real object size is 8-byte aligned, only the multiples of 8
// among the first 256 indices are ever populated — that wastage is the
// spec's own bucket scheme, not a bug in this implementation.
func freebucketsIndex(size int64) int {
	if size < VarBase {
		return int(size)
	}
	idx := VarBase + int(math.Log2(float64(size)/VarBase))
	if idx >= ExactBuckets+VarBuckets {
		idx = ExactBuckets + VarBuckets - 1
	}
	return idx
}

// isExact reports whether bucket index i addresses an EXACT (vs VAR) bucket.
func isExact(i int) bool { return i < ExactBuckets }

// varBucketMinSize returns the smallest size that bucket index i (a VAR
// bucket) is guaranteed to hold, used when scanning upward from a given
// bucket for "strictly larger by at least min size" splits.
func varBucketMinSize(i int) int64 {
	rank := i - ExactBuckets
	return VarBase * (int64(1) << uint(rank))
}
