// Package value implements §4.F's tagged-word encoding: every field slot in
// a record is one machine word that either carries an immediate value
// shifted into its high bits, or a tagged byte offset to a heap object
// holding the actual payload.
//
// The tag scheme is grounded on the teacher's internal/format/vk.go
// DataInline()/InlineLength() pattern — a single flags-bearing field
// discriminates "data lives right here" from "data lives at this offset" —
// generalized from one inline bit to the fuller low-bits tag table the
// on-disk format needs. Heap objects are carved from the segment's
// FixedArea/VarArea areas (alloc package) exactly as §3 describes for
// AreaWord, AreaDoubleWord, AreaShortStr, and AreaLongStr.
package value
