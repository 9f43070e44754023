package record

import "github.com/wgdb/wgdb/value"

// Indexer is the collaborator record operations notify of field changes,
// grounded on the teacher's hive/index.Index split between read and
// read-write capability: record itself never builds or walks an index, it
// only calls out to one when a field that might be indexed changes.
type Indexer interface {
	// IndexAdd notifies the indexer that record rec's column col now holds
	// w (called after create, set_field, set_new_field).
	IndexAdd(rec Record, col int, w value.Word)

	// IndexRemove notifies the indexer that record rec's column col no
	// longer holds w (called before the old value is overwritten or the
	// record is deleted).
	IndexRemove(rec Record, col int, w value.Word)

	// IsIndexed reports whether column col of any record currently has an
	// index built over it; set_field consults this to decide whether the
	// old/new-value dance is needed at all, and update_atomic_field refuses
	// indexed columns outright (§4.G).
	IsIndexed(col int) bool
}

// NoopIndexer implements Indexer with no-op notifications and no indexed
// columns, for callers that have not built any index yet.
type NoopIndexer struct{}

func (NoopIndexer) IndexAdd(Record, int, value.Word)    {}
func (NoopIndexer) IndexRemove(Record, int, value.Word) {}
func (NoopIndexer) IsIndexed(int) bool                  { return false }
