package journal

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/wgdb/wgdb/internal/wbin"
	"github.com/wgdb/wgdb/record"
	"github.com/wgdb/wgdb/segment"
	"github.com/wgdb/wgdb/value"
)

// cursor reads sequential int64 words and byte runs out of an in-memory
// journal image, tracking position itself since entries have no per-entry
// length header (§4.I "replay is position-only").
type cursor struct {
	buf []byte
	pos int
}

func (c *cursor) i64() (int64, error) {
	if c.pos+8 > len(c.buf) {
		return 0, io.ErrUnexpectedEOF
	}
	v := wbin.ReadI64(c.buf, c.pos)
	c.pos += 8
	return v, nil
}

func (c *cursor) bytes(n int64) ([]byte, error) {
	if n < 0 || c.pos+int(n) > len(c.buf) {
		return nil, io.ErrUnexpectedEOF
	}
	b := c.buf[c.pos : c.pos+int(n)]
	c.pos += int(n)
	return b, nil
}

func (c *cursor) done() bool { return c.pos >= len(c.buf) }

// Replay reads the journal file at path and applies every entry, in order,
// to seg via store/heap/idx. Because allocations on a fresh segment will
// not generally land at the same offsets the original run used, Replay
// maintains a translation table from old offset to new offset: a CRE or
// ENC entry's logged result defines a new mapping; a SET or DEL entry
// looks its target offset up in the table (falling back to the offset
// itself for anything never seen, e.g. a reference into data that
// predates this journal). Replay is not idempotent — running it twice
// against the same segment double-applies every entry.
func Replay(seg *segment.Segment, path string, store record.Store, heap value.HeapArea, idx record.Indexer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("journal: read %s: %w", path, err)
	}
	if len(data) < len(Magic) || string(data[:len(Magic)]) != Magic {
		return ErrBadMagic
	}

	c := &cursor{buf: data, pos: len(Magic)}
	translate := make(map[int64]int64)

	for !c.done() {
		tag, err := c.i64()
		if err != nil {
			return fmt.Errorf("journal: %w: %v", ErrCorrupt, err)
		}
		switch tag {
		case TagCRE:
			if err := replayCRE(c, store, translate); err != nil {
				return err
			}
		case TagDEL:
			if err := replayDEL(c, seg, store, idx, translate); err != nil {
				return err
			}
		case TagSET:
			if err := replaySET(c, seg, store, idx, translate); err != nil {
				return err
			}
		case TagENC:
			if err := replayENC(c, heap, translate); err != nil {
				return err
			}
		default:
			return fmt.Errorf("journal: %w: unknown tag %d", ErrCorrupt, tag)
		}
	}
	return nil
}

func translated(t map[int64]int64, off int64) int64 {
	if n, ok := t[off]; ok {
		return n
	}
	return off
}

func recordTranslation(t map[int64]int64, old, new value.Word) {
	oldOff, ok := value.Offset(old)
	if !ok {
		return
	}
	newOff, ok := value.Offset(new)
	if !ok {
		return
	}
	t[oldOff] = newOff
}

func replayCRE(c *cursor, store record.Store, translate map[int64]int64) error {
	length, err := c.i64()
	if err != nil {
		return fmt.Errorf("journal: %w: %v", ErrCorrupt, err)
	}
	offset, err := c.i64()
	if err != nil {
		return fmt.Errorf("journal: %w: %v", ErrCorrupt, err)
	}
	rec, err := store.CreateRaw(int(length))
	if err != nil {
		return fmt.Errorf("journal: replay create: %w", err)
	}
	translate[offset] = rec.Offset()
	return nil
}

func replayDEL(c *cursor, seg *segment.Segment, store record.Store, idx record.Indexer, translate map[int64]int64) error {
	offset, err := c.i64()
	if err != nil {
		return fmt.Errorf("journal: %w: %v", ErrCorrupt, err)
	}
	rec := record.At(seg, translated(translate, offset))
	if err := store.Delete(rec, idx); err != nil {
		return fmt.Errorf("journal: replay delete: %w", err)
	}
	delete(translate, offset)
	return nil
}

func replaySET(c *cursor, seg *segment.Segment, store record.Store, idx record.Indexer, translate map[int64]int64) error {
	offset, err := c.i64()
	if err != nil {
		return fmt.Errorf("journal: %w: %v", ErrCorrupt, err)
	}
	column, err := c.i64()
	if err != nil {
		return fmt.Errorf("journal: %w: %v", ErrCorrupt, err)
	}
	raw, err := c.i64()
	if err != nil {
		return fmt.Errorf("journal: %w: %v", ErrCorrupt, err)
	}
	w := value.Word(raw)
	if off, ok := value.Offset(w); ok {
		w = value.Retag(w, translated(translate, off))
	}
	rec := record.At(seg, translated(translate, offset))
	if err := store.SetField(rec, int(column), w, idx); err != nil {
		return fmt.Errorf("journal: replay set: %w", err)
	}
	return nil
}

func replayENC(c *cursor, heap value.HeapArea, translate map[int64]int64) error {
	kind, err := c.i64()
	if err != nil {
		return fmt.Errorf("journal: %w: %v", ErrCorrupt, err)
	}
	switch kind {
	case EncFullInt:
		v, err := c.i64()
		if err != nil {
			return fmt.Errorf("journal: %w: %v", ErrCorrupt, err)
		}
		oldResult, err := c.i64()
		if err != nil {
			return fmt.Errorf("journal: %w: %v", ErrCorrupt, err)
		}
		w, err := heap.EncodeFullInt(v)
		if err != nil {
			return fmt.Errorf("journal: replay encode: %w", err)
		}
		recordTranslation(translate, value.Word(oldResult), w)
		return nil
	case EncDouble:
		bits, err := c.i64()
		if err != nil {
			return fmt.Errorf("journal: %w: %v", ErrCorrupt, err)
		}
		oldResult, err := c.i64()
		if err != nil {
			return fmt.Errorf("journal: %w: %v", ErrCorrupt, err)
		}
		w, err := heap.EncodeDouble(math.Float64frombits(uint64(bits)))
		if err != nil {
			return fmt.Errorf("journal: replay encode: %w", err)
		}
		recordTranslation(translate, value.Word(oldResult), w)
		return nil
	case EncShortStr, EncString, EncURI, EncXML, EncBlob:
		return replayEncBytes(c, heap, kind, translate)
	default:
		return fmt.Errorf("journal: %w: unknown enc type %d", ErrCorrupt, kind)
	}
}

func replayEncBytes(c *cursor, heap value.HeapArea, kind int64, translate map[int64]int64) error {
	length, err := c.i64()
	if err != nil {
		return fmt.Errorf("journal: %w: %v", ErrCorrupt, err)
	}
	extlen, err := c.i64()
	if err != nil {
		return fmt.Errorf("journal: %w: %v", ErrCorrupt, err)
	}
	payload, err := c.bytes(length)
	if err != nil {
		return fmt.Errorf("journal: %w: %v", ErrCorrupt, err)
	}
	secondary, err := c.bytes(extlen)
	if err != nil {
		return fmt.Errorf("journal: %w: %v", ErrCorrupt, err)
	}
	oldResult, err := c.i64()
	if err != nil {
		return fmt.Errorf("journal: %w: %v", ErrCorrupt, err)
	}

	var w value.Word
	switch kind {
	case EncShortStr:
		w, err = heap.EncodeShortStr(string(payload))
	case EncString:
		w, err = heap.EncodeString(string(payload), true)
	case EncURI:
		w, err = heap.EncodeURI(string(payload), string(secondary), true)
	case EncXML:
		w, err = heap.EncodeXML(string(payload), string(secondary), true)
	case EncBlob:
		w, err = heap.EncodeBlob(payload, true)
	}
	if err != nil {
		return fmt.Errorf("journal: replay encode: %w", err)
	}
	recordTranslation(translate, value.Word(oldResult), w)
	return nil
}
