package record

import "github.com/wgdb/wgdb/value"

// backlinkReindexDepth bounds how far SetField walks ancestor records when
// re-indexing after a change to a backlinked value (§4.G "traverse
// backlinks up to a fixed depth and re-index the ancestors").
const backlinkReindexDepth = 8

// SetField overwrites column col of rec with w: journals the intent (via
// the caller-held journal, outside this package's scope — see the journal
// package), de-indexes if col is indexed, releases the old value's heap
// resource, writes the new word, acquires the new value's heap resource,
// re-indexes, and walks up rec's own backlink chain re-indexing ancestors
// whose comparison value may have changed transitively (§4.G "set_field").
func (s Store) SetField(rec Record, col int, w value.Word, idx Indexer) error {
	old, err := rec.Field(col)
	if err != nil {
		return err
	}
	if idx.IsIndexed(col) {
		idx.IndexRemove(rec, col, old)
	}
	s.releaseValue(old, rec.Offset())

	rec.setFieldRaw(col, w)
	s.acquireValue(w, rec.Offset())

	if idx.IsIndexed(col) {
		idx.IndexAdd(rec, col, w)
	}

	s.reindexAncestors(rec, idx, backlinkReindexDepth)
	return nil
}

// SetNewField is SetField without any old-value handling; it is only legal
// on a slot that currently holds NULL (§4.G "set_new_field").
func (s Store) SetNewField(rec Record, col int, w value.Word, idx Indexer) error {
	old, err := rec.Field(col)
	if err != nil {
		return err
	}
	if old != 0 {
		return ErrNotNull
	}
	rec.setFieldRaw(col, w)
	s.acquireValue(w, rec.Offset())
	idx.IndexAdd(rec, col, w)
	return nil
}

// reindexAncestors walks rec's own backlink chain (records that reference
// rec) up to depth levels, re-notifying the indexer for every field of
// every ancestor visited — those fields may embed comparisons against rec
// that are now stale.
func (s Store) reindexAncestors(rec Record, idx Indexer, depth int) {
	if depth <= 0 {
		return
	}
	s.bl.Each(rec, func(referencer int64) {
		ancestor := At(s.seg, referencer)
		for col := 0; col < ancestor.NumFields(); col++ {
			if w, err := ancestor.Field(col); err == nil {
				idx.IndexAdd(ancestor, col, w)
			}
		}
		s.reindexAncestors(ancestor, idx, depth-1)
	})
}

