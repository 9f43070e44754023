package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wgdb/wgdb"
	"github.com/wgdb/wgdb/value"
)

// encodeJSONValue encodes a single decoded JSON value (number, string, bool
// or null) the way addjson builds a record field from it (§6 "addjson").
func encodeJSONValue(db *wgdb.Database, v interface{}) (value.Word, error) {
	switch t := v.(type) {
	case nil:
		return value.Word(0), nil
	case bool:
		if t {
			return mustSmallInt(1), nil
		}
		return mustSmallInt(0), nil
	case float64:
		if t == float64(int64(t)) {
			if w, ok := value.EncodeInt(int64(t)); ok {
				return w, nil
			}
			return db.EncodeFullInt(int64(t))
		}
		return db.EncodeDouble(t)
	case string:
		if len(t) <= value.ShortStrMaxLen {
			return db.EncodeShortStr(t)
		}
		return db.EncodeString(t, true)
	default:
		return value.Word(0), fmt.Errorf("addjson: unsupported json field type %T", v)
	}
}

func mustSmallInt(i int64) value.Word {
	w, _ := value.EncodeInt(i)
	return w
}

var addJSONCmd = &cobra.Command{
	Use:   "addjson [file]",
	Short: "Create one record per JSON array of field values, read from file or stdin",
	Long: `addjson reads a JSON array of records, each itself a JSON array of
field values, and creates one wgdb record per element (§6). Numbers become
small or full integers (or doubles if fractional), strings become short or
long strings depending on length, booleans become 0/1, and null becomes an
unset field.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = os.Stdin
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return withCode(1, fmt.Errorf("open %s: %w", args[0], err))
			}
			defer f.Close()
			r = f
		}

		var rows [][]interface{}
		if err := json.NewDecoder(r).Decode(&rows); err != nil {
			return withCode(1, fmt.Errorf("decode json: %w", err))
		}

		db, err := attachExisting()
		if err != nil {
			return err
		}
		defer db.Detach()

		for i, row := range rows {
			rec, err := db.Create(len(row))
			if err != nil {
				return withCode(1, fmt.Errorf("create row %d: %w", i, err))
			}
			for col, v := range row {
				w, err := encodeJSONValue(db, v)
				if err != nil {
					return withCode(1, err)
				}
				if err := db.SetField(rec, col, w); err != nil {
					return withCode(3, fmt.Errorf("row %d col %d: %w", i, col, err))
				}
			}
		}
		fmt.Printf("added %d record(s)\n", len(rows))
		return nil
	},
}

var findJSONCmd = &cobra.Command{
	Use:   "findjson <json>",
	Short: "Print every record matching a JSON array pattern (null fields are wildcards)",
	Long: `findjson takes a JSON array the same shape as one addjson row and
scans for records whose fields equal every non-null element at the same
column (§6). A pattern shorter than a record only constrains its leading
columns; null elements match any value.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var pattern []interface{}
		if err := json.Unmarshal([]byte(args[0]), &pattern); err != nil {
			return withCode(1, fmt.Errorf("decode json pattern: %w", err))
		}

		db, err := attachExisting()
		if err != nil {
			return err
		}
		defer db.Detach()

		for off := db.GetFirst(); off != 0; off = db.GetNext(off) {
			rec := db.Record(off)
			if rec.NumFields() < len(pattern) {
				continue
			}
			match := true
			for col, want := range pattern {
				if want == nil {
					continue
				}
				ok, err := matchesCondition(db, off, col, "=", jsonScalarString(want))
				if err != nil || !ok {
					match = false
					break
				}
			}
			if match {
				printRecord(db, off)
			}
		}
		return nil
	},
}

// jsonScalarString renders a decoded JSON scalar the same way decodeWord
// renders the matching field kind, so matchesCondition's string/numeric
// comparison lines up with addjson's encoding choice.
func jsonScalarString(v interface{}) string {
	switch t := v.(type) {
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool:
		if t {
			return "1"
		}
		return "0"
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}

func init() {
	rootCmd.AddCommand(addJSONCmd)
	rootCmd.AddCommand(findJSONCmd)
}
