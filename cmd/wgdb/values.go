package main

import (
	"fmt"
	"strconv"

	"github.com/wgdb/wgdb"
	"github.com/wgdb/wgdb/value"
)

// encodeArg guesses a field value's intended type the way the original
// command-line tool does: try integer, then float, then fall back to a
// string, picking the short- or long-string encoding by length.
func encodeArg(db *wgdb.Database, s string) (value.Word, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		if w, ok := value.EncodeInt(i); ok {
			return w, nil
		}
		return db.EncodeFullInt(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return db.EncodeDouble(f)
	}
	if len(s) <= value.ShortStrMaxLen {
		return db.EncodeShortStr(s)
	}
	return db.EncodeString(s, true)
}

// printRecord prints a record's offset and the decoded form of every
// field, space-separated, matching the original tool's "select" output.
func printRecord(db *wgdb.Database, off int64) {
	rec := db.Record(off)
	fmt.Printf("%d:", off)
	for col := 0; col < rec.NumFields(); col++ {
		w, err := rec.Field(col)
		if err != nil {
			fmt.Print(" <error>")
			continue
		}
		fmt.Print(" ", decodeWord(db, w))
	}
	fmt.Println()
}

// decodeWord renders a field's value as the CLI prints it: the decoded
// Go value's default string form, prefixed with its kind where that isn't
// obvious from the text alone.
func decodeWord(db *wgdb.Database, w value.Word) string {
	switch value.KindOf(w) {
	case value.KindNull:
		return "NULL"
	case value.KindSmallInt:
		v, _ := value.DecodeSmallInt(w)
		return strconv.FormatInt(v, 10)
	case value.KindFullInt:
		v, err := db.DecodeFullInt(w)
		if err != nil {
			return "<error>"
		}
		return strconv.FormatInt(v, 10)
	case value.KindDouble:
		v, err := db.DecodeDouble(w)
		if err != nil {
			return "<error>"
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	case value.KindFixpoint:
		v, err := value.DecodeFixpoint(w)
		if err != nil {
			return "<error>"
		}
		return strconv.FormatFloat(v, 'f', 4, 64)
	case value.KindChar:
		c, err := value.DecodeChar(w)
		if err != nil {
			return "<error>"
		}
		return string(rune(c))
	case value.KindDate:
		s, err := value.FormatISODateTime(w, 0)
		if err != nil {
			return "<error>"
		}
		return s
	case value.KindTime:
		s, err := value.FormatISODateTime(0, w)
		if err != nil {
			return "<error>"
		}
		return s
	case value.KindShortStr:
		v, err := db.DecodeShortStr(w)
		if err != nil {
			return "<error>"
		}
		return v
	case value.KindLongStr:
		payload, _, _, err := db.DecodeLongStr(w)
		if err != nil {
			return "<error>"
		}
		return string(payload)
	case value.KindRecordRef:
		off, _ := value.DecodeRecordRef(w)
		return fmt.Sprintf("-> %d", off)
	default:
		return fmt.Sprintf("<%s>", value.KindOf(w))
	}
}
