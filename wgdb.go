// Package wgdb wires the segment, allocator, value, record, lock, journal
// and dump packages into a single Database facade (§4.B, §6). Callers that
// only need one subsystem — a custom CLI, a test harness exercising the
// allocator directly — are free to use the lower packages on their own;
// Database exists for the common case of "attach, mutate, detach".
package wgdb

import (
	"fmt"
	"os"

	"github.com/wgdb/wgdb/dump"
	"github.com/wgdb/wgdb/journal"
	"github.com/wgdb/wgdb/lock"
	"github.com/wgdb/wgdb/record"
	"github.com/wgdb/wgdb/segment"
	"github.com/wgdb/wgdb/value"
)

// DefaultJournalPath is the build-time journal location (§6 "the journal
// file path is a build-time constant").
const DefaultJournalPath = "/tmp/wgdb.journal"

// Options configures Attach. Name, MinSize, MaxSize, Create and Mode map
// directly onto segment.Options; Logging and JournalPath select whether
// this process journals its own mutations and where that journal lives.
type Options struct {
	Name         string
	MinSize      int64
	MaxSize      int64
	Create       bool
	Mode         os.FileMode
	LockProtocol segment.LockProtocol

	Logging     bool
	JournalPath string // defaults to DefaultJournalPath when Logging is set

	Indexer record.Indexer // defaults to record.NoopIndexer{}
}

// Database is an attached segment plus the collaborators record and value
// operations need: the record store, the value heap, the selected lock
// protocol, and (when logging is enabled) a journal.Log standing in front
// of every mutation.
type Database struct {
	seg  *segment.Segment
	rw   lock.RWLock
	log  journal.Log
	idx  record.Indexer
	jrnl *journal.Writer

	store record.Store
	heap  value.HeapArea
}

// Attach maps (or creates) the named shared segment and wires up its
// collaborators (§4.B "attach"). On creation, opts.MaxSize is attempted
// first, falling back to opts.MinSize on failure — segment.Attach already
// implements that fallback.
func Attach(opts Options) (*Database, error) {
	seg, err := segment.Attach(segment.Options{
		Name:         opts.Name,
		MinSize:      opts.MinSize,
		MaxSize:      opts.MaxSize,
		Create:       opts.Create,
		Logging:      opts.Logging,
		Mode:         opts.Mode,
		LockProtocol: opts.LockProtocol,
	})
	if err != nil {
		return nil, err
	}
	return wire(seg, opts)
}

// AttachLocal allocates a process-local segment (§4.B "attach_local") and
// wires up its collaborators. Useful for tests and single-process embedding
// where no other process will ever attach to the same segment.
func AttachLocal(size int64, opts Options) (*Database, error) {
	seg, err := segment.AttachLocal(size, opts.LockProtocol)
	if err != nil {
		return nil, err
	}
	return wire(seg, opts)
}

// wire binds a freshly attached (or mapped) segment's store, heap, lock and
// journal together into a Database. If opts.Logging is requested but the
// segment's own logging flag disagrees, this process's choice wins and the
// header flag is updated to match, so the next process to attach with
// Logging set appends to the same file (§4.B "if logging, activate
// journal" only specifies the create path; this generalizes it to attach
// of an existing segment too — see DESIGN.md).
func wire(seg *segment.Segment, opts Options) (*Database, error) {
	rw, err := lock.New(seg, opts.LockProtocol)
	if err != nil {
		return nil, err
	}

	idx := opts.Indexer
	if idx == nil {
		idx = record.NoopIndexer{}
	}

	db := &Database{
		seg:   seg,
		rw:    rw,
		idx:   idx,
		store: record.NewStore(seg),
		heap:  value.NewHeapArea(seg),
	}

	if !opts.Logging {
		db.log = journal.NewLog(nil)
		return db, nil
	}

	path := opts.JournalPath
	if path == "" {
		path = DefaultJournalPath
	}

	logState := seg.Header().Logging()
	var w *journal.Writer
	if logState.Enabled() {
		w, err = journal.OpenAppend(path)
	} else {
		w, err = journal.Create(path)
	}
	if err != nil {
		return nil, fmt.Errorf("wgdb: activate journal: %w", err)
	}
	logState.SetEnabled(true)

	db.jrnl = w
	db.log = journal.NewLog(w)
	return db, nil
}

// Detach closes the journal handle and then unmaps the segment; both are
// attempted on every return path (§5 "both releases are guaranteed on every
// termination path").
func (db *Database) Detach() error {
	var jerr error
	if db.jrnl != nil {
		jerr = db.jrnl.Close()
	}
	serr := segment.Detach(db.seg)
	if serr != nil {
		return serr
	}
	return jerr
}

// Delete destroys the OS-level segment identified by name (§4.B "delete").
func Delete(name string) error { return segment.Delete(name) }

// Segment exposes the underlying attached segment, for callers that need
// direct access to areas this facade does not wrap (index storage, for
// instance).
func (db *Database) Segment() *segment.Segment { return db.seg }

// Lock exposes the database-wide lock directly, for callers that need to
// bracket several facade calls inside one acquisition (e.g. a read that
// walks every record and inspects fields one by one).
func (db *Database) Lock() lock.RWLock { return db.rw }

// Create allocates an n-field record, journals it, and notifies the
// indexer of every (NULL) field (§4.G "create"). Bracketed by the write
// lock per §5's "all mutating operations must be bracketed by the write
// lock".
func (db *Database) Create(n int) (record.Record, error) {
	tk := db.rw.StartWrite()
	defer db.rw.EndWrite(tk)
	return db.log.Create(db.store, n, db.idx)
}

// CreateRaw allocates an n-field record without index notification; the
// caller must SetNewField every slot (§4.G "create_raw").
func (db *Database) CreateRaw(n int) (record.Record, error) {
	tk := db.rw.StartWrite()
	defer db.rw.EndWrite(tk)
	rec, err := db.store.CreateRaw(n)
	if err != nil {
		return record.Record{}, err
	}
	if db.log.Enabled() {
		// CreateRaw has no Log-level wrapper since create_raw's whole point
		// is to skip the indexer dance Log.Create performs; journal the
		// offset directly through the writer instead.
		if jerr := db.journalRaw(rec, n); jerr != nil {
			return rec, jerr
		}
	}
	return rec, nil
}

func (db *Database) journalRaw(rec record.Record, n int) error {
	return db.jrnl.WriteCRE(int64(n), rec.Offset())
}

// Delete removes rec (§4.G "delete"): fails if anything still references
// it. Bracketed by the write lock.
func (db *Database) Delete(rec record.Record) error {
	tk := db.rw.StartWrite()
	defer db.rw.EndWrite(tk)
	return db.log.Delete(db.store, rec, db.idx)
}

// SetField overwrites column col of rec with w (§4.G "set_field").
// Bracketed by the write lock.
func (db *Database) SetField(rec record.Record, col int, w value.Word) error {
	tk := db.rw.StartWrite()
	defer db.rw.EndWrite(tk)
	return db.log.SetField(db.store, rec, col, w, db.idx)
}

// SetNewField populates a NULL slot of rec (§4.G "set_new_field").
// Bracketed by the write lock.
func (db *Database) SetNewField(rec record.Record, col int, w value.Word) error {
	tk := db.rw.StartWrite()
	defer db.rw.EndWrite(tk)
	return db.log.SetNewField(db.store, rec, col, w, db.idx)
}

// GetFirst returns the offset of the first live record, or 0 if the data
// area is empty (§4.G "get_first"). Bracketed by the read lock since it
// may walk several sub-areas.
func (db *Database) GetFirst() int64 {
	tk := db.rw.StartRead()
	defer db.rw.EndRead(tk)
	return db.store.GetFirst()
}

// GetNext returns the offset of the next live record after off, or 0
// (§4.G "get_next"). Bracketed by the read lock.
func (db *Database) GetNext(off int64) int64 {
	tk := db.rw.StartRead()
	defer db.rw.EndRead(tk)
	return db.store.GetNext(off)
}

// UpdateAtomicField performs a single lock-free CAS on column col. Per §5
// it is deliberately *not* bracketed by the database lock — it is only
// linearizable with respect to other UpdateAtomicField calls on the same
// cell, and is restricted by record.Store itself to non-indexed,
// immediate-valued columns on journal-disabled segments.
func (db *Database) UpdateAtomicField(rec record.Record, col int, want, expect value.Word) error {
	return db.store.UpdateAtomicField(rec, col, want, expect, db.idx, db.log.Enabled())
}

// SetAtomicField retries UpdateAtomicField until it succeeds or the retry
// budget is exhausted (§4.G "set_atomic_field").
func (db *Database) SetAtomicField(rec record.Record, col int, want value.Word) error {
	return db.store.SetAtomicField(rec, col, want, db.idx, db.log.Enabled())
}

// AddIntAtomicField atomically adds delta to an immediate small-int field
// (§4.G "add_int_atomic_field").
func (db *Database) AddIntAtomicField(rec record.Record, col int, delta int64) error {
	return db.store.AddIntAtomicField(rec, col, delta, db.idx, db.log.Enabled())
}

// EncodeFullInt, EncodeDouble, EncodeShortStr, EncodeString, EncodeURI,
// EncodeXML and EncodeBlob encode a value through the heap area, journaling
// the result (§4.F, §4.I). Each allocates, so each is bracketed by the
// write lock per §5.

func (db *Database) EncodeFullInt(v int64) (value.Word, error) {
	tk := db.rw.StartWrite()
	defer db.rw.EndWrite(tk)
	return db.log.EncodeFullInt(db.heap, v)
}

func (db *Database) EncodeDouble(v float64) (value.Word, error) {
	tk := db.rw.StartWrite()
	defer db.rw.EndWrite(tk)
	return db.log.EncodeDouble(db.heap, v)
}

func (db *Database) EncodeShortStr(s string) (value.Word, error) {
	tk := db.rw.StartWrite()
	defer db.rw.EndWrite(tk)
	return db.log.EncodeShortStr(db.heap, s)
}

func (db *Database) EncodeString(s string, unique bool) (value.Word, error) {
	tk := db.rw.StartWrite()
	defer db.rw.EndWrite(tk)
	return db.log.EncodeString(db.heap, s, unique)
}

func (db *Database) EncodeURI(uri, base string, unique bool) (value.Word, error) {
	tk := db.rw.StartWrite()
	defer db.rw.EndWrite(tk)
	return db.log.EncodeURI(db.heap, uri, base, unique)
}

func (db *Database) EncodeXML(xml, namespace string, unique bool) (value.Word, error) {
	tk := db.rw.StartWrite()
	defer db.rw.EndWrite(tk)
	return db.log.EncodeXML(db.heap, xml, namespace, unique)
}

func (db *Database) EncodeBlob(data []byte, unique bool) (value.Word, error) {
	tk := db.rw.StartWrite()
	defer db.rw.EndWrite(tk)
	return db.log.EncodeBlob(db.heap, data, unique)
}

// Decode helpers need no lock bracket beyond the single word/object read
// they perform; callers walking several fields should hold Lock().StartRead
// around the whole traversal instead.

func (db *Database) DecodeFullInt(w value.Word) (int64, error)   { return db.heap.DecodeFullInt(w) }
func (db *Database) DecodeDouble(w value.Word) (float64, error)  { return db.heap.DecodeDouble(w) }
func (db *Database) DecodeShortStr(w value.Word) (string, error) { return db.heap.DecodeShortStr(w) }
func (db *Database) DecodeLongStr(w value.Word) (payload, secondary []byte, subtype value.LongStrSubtype, err error) {
	return db.heap.DecodeLongStr(w)
}

// Record wraps an offset as a record.Record bound to this database's
// segment, for callers holding an offset obtained from GetFirst/GetNext or
// from a decoded record reference field.
func (db *Database) Record(off int64) record.Record { return record.At(db.seg, off) }

// Dump takes the read lock and snapshots the segment's used prefix to path
// (§4.J "dump").
func (db *Database) Dump(path string) error {
	return dump.Dump(db.seg, db.rw, path)
}

// Import restores a dump file into this database's segment and clears
// lock ownership, since it does not survive a dump (§4.J "import").
func (db *Database) Import(path string) error {
	return dump.Import(db.seg, path)
}

// Replay rebuilds this database's segment from a journal file. Per §5 the
// replay operation runs on a quiescent segment — callers are expected to
// hold the only handle to it for the duration — and only touches the write
// lock's bookkeeping afterward, to force a fresh lock-state block the same
// way dump.Import does (§4.J, §4.I "Replay").
func (db *Database) Replay(path string) error {
	if err := journal.Replay(db.seg, path, db.store, db.heap, db.idx); err != nil {
		return err
	}
	db.seg.Header().ResetLockState()
	rw, err := lock.New(db.seg, db.seg.Header().LockProtocol())
	if err != nil {
		return err
	}
	db.rw = rw
	return nil
}
