package journal

import (
	"fmt"

	"github.com/wgdb/wgdb/record"
	"github.com/wgdb/wgdb/value"
)

// Log decorates record.Store and value.HeapArea mutations with the §4.I
// writing-order discipline: for operations whose journal payload is known
// in advance (delete, set_field) the entry is written and flushed before
// the segment is touched; for operations whose payload depends on the
// mutation's own result (create, encode — the offset doesn't exist until
// the allocation happens) the entry is written immediately afterward, and
// a flush failure at that point is reported as ErrInconsistent rather than
// the ordinary non-fatal write error, per §7's "journal failures during a
// mutation propagate the inconsistent error" rule. A zero-value Log (nil
// Writer) performs no logging at all, for journaling-disabled segments.
type Log struct {
	w *Writer
}

// NewLog binds a Log to a Writer. Passing nil disables journaling.
func NewLog(w *Writer) Log { return Log{w: w} }

// Enabled reports whether this Log actually writes entries.
func (l Log) Enabled() bool { return l.w != nil }

// Create allocates an n-field record through store and journals its
// resulting offset.
func (l Log) Create(store record.Store, n int, idx record.Indexer) (record.Record, error) {
	rec, err := store.Create(n, idx)
	if err != nil {
		return record.Record{}, err
	}
	if l.w != nil {
		if err := l.w.WriteCRE(int64(n), rec.Offset()); err != nil {
			return rec, fmt.Errorf("%w: %v", ErrInconsistent, err)
		}
	}
	return rec, nil
}

// Delete journals rec's offset before asking store to delete it.
func (l Log) Delete(store record.Store, rec record.Record, idx record.Indexer) error {
	if l.w != nil {
		if err := l.w.WriteDEL(rec.Offset()); err != nil {
			return err
		}
	}
	return store.Delete(rec, idx)
}

// SetField journals the intent before writing the new field value.
func (l Log) SetField(store record.Store, rec record.Record, col int, w value.Word, idx record.Indexer) error {
	if l.w != nil {
		if err := l.w.WriteSET(rec.Offset(), int64(col), w); err != nil {
			return err
		}
	}
	return store.SetField(rec, col, w, idx)
}

// SetNewField journals the intent before populating a NULL field slot
// (the create_raw + set_new_field pattern record.Store documents).
func (l Log) SetNewField(store record.Store, rec record.Record, col int, w value.Word, idx record.Indexer) error {
	if l.w != nil {
		if err := l.w.WriteSET(rec.Offset(), int64(col), w); err != nil {
			return err
		}
	}
	return store.SetNewField(rec, col, w, idx)
}

// EncodeFullInt encodes v through heap and journals the resulting word.
func (l Log) EncodeFullInt(heap value.HeapArea, v int64) (value.Word, error) {
	w, err := heap.EncodeFullInt(v)
	if err != nil {
		return 0, err
	}
	if l.w != nil {
		if err := l.w.WriteEncScalar(EncFullInt, v, w); err != nil {
			return w, fmt.Errorf("%w: %v", ErrInconsistent, err)
		}
	}
	return w, nil
}

// EncodeDouble encodes v through heap and journals the resulting word.
func (l Log) EncodeDouble(heap value.HeapArea, v float64) (value.Word, error) {
	w, err := heap.EncodeDouble(v)
	if err != nil {
		return 0, err
	}
	if l.w != nil {
		if err := l.w.WriteEncDouble(v, w); err != nil {
			return w, fmt.Errorf("%w: %v", ErrInconsistent, err)
		}
	}
	return w, nil
}

// EncodeShortStr encodes s through heap and journals the resulting word.
func (l Log) EncodeShortStr(heap value.HeapArea, s string) (value.Word, error) {
	w, err := heap.EncodeShortStr(s)
	if err != nil {
		return 0, err
	}
	if l.w != nil {
		if err := l.w.WriteEncBytes(EncShortStr, []byte(s), nil, w); err != nil {
			return w, fmt.Errorf("%w: %v", ErrInconsistent, err)
		}
	}
	return w, nil
}

// EncodeString encodes s through heap and journals the resulting word.
func (l Log) EncodeString(heap value.HeapArea, s string, unique bool) (value.Word, error) {
	w, err := heap.EncodeString(s, unique)
	if err != nil {
		return 0, err
	}
	if l.w != nil {
		if err := l.w.WriteEncBytes(EncString, []byte(s), nil, w); err != nil {
			return w, fmt.Errorf("%w: %v", ErrInconsistent, err)
		}
	}
	return w, nil
}

// EncodeURI encodes (uri, base) through heap and journals the resulting
// word.
func (l Log) EncodeURI(heap value.HeapArea, uri, base string, unique bool) (value.Word, error) {
	w, err := heap.EncodeURI(uri, base, unique)
	if err != nil {
		return 0, err
	}
	if l.w != nil {
		if err := l.w.WriteEncBytes(EncURI, []byte(uri), []byte(base), w); err != nil {
			return w, fmt.Errorf("%w: %v", ErrInconsistent, err)
		}
	}
	return w, nil
}

// EncodeXML encodes (xml, namespace) through heap and journals the
// resulting word.
func (l Log) EncodeXML(heap value.HeapArea, xml, namespace string, unique bool) (value.Word, error) {
	w, err := heap.EncodeXML(xml, namespace, unique)
	if err != nil {
		return 0, err
	}
	if l.w != nil {
		if err := l.w.WriteEncBytes(EncXML, []byte(xml), []byte(namespace), w); err != nil {
			return w, fmt.Errorf("%w: %v", ErrInconsistent, err)
		}
	}
	return w, nil
}

// EncodeBlob encodes data through heap and journals the resulting word.
func (l Log) EncodeBlob(heap value.HeapArea, data []byte, unique bool) (value.Word, error) {
	w, err := heap.EncodeBlob(data, unique)
	if err != nil {
		return 0, err
	}
	if l.w != nil {
		if err := l.w.WriteEncBytes(EncBlob, data, nil, w); err != nil {
			return w, fmt.Errorf("%w: %v", ErrInconsistent, err)
		}
	}
	return w, nil
}
