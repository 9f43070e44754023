package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wgdb/wgdb"
)

// matchesCondition evaluates "col op want" against rec (§6 "cond in
// {= != < > <= >=}"). Comparisons are numeric when both sides parse as
// float64, otherwise lexical on the decoded string form.
func matchesCondition(db *wgdb.Database, off int64, col int, op, want string) (bool, error) {
	rec := db.Record(off)
	if col < 0 || col >= rec.NumFields() {
		return false, nil
	}
	w, err := rec.Field(col)
	if err != nil {
		return false, err
	}
	got := decodeWord(db, w)

	gotNum, gerr := strconv.ParseFloat(got, 64)
	wantNum, werr := strconv.ParseFloat(want, 64)
	if gerr == nil && werr == nil {
		return compareNum(gotNum, op, wantNum)
	}
	return compareStr(got, op, want)
}

func compareNum(got float64, op string, want float64) (bool, error) {
	switch op {
	case "=":
		return got == want, nil
	case "!=":
		return got != want, nil
	case "<":
		return got < want, nil
	case ">":
		return got > want, nil
	case "<=":
		return got <= want, nil
	case ">=":
		return got >= want, nil
	default:
		return false, fmt.Errorf("unknown condition %q", op)
	}
}

func compareStr(got, op, want string) (bool, error) {
	switch op {
	case "=":
		return got == want, nil
	case "!=":
		return got != want, nil
	case "<":
		return got < want, nil
	case ">":
		return got > want, nil
	case "<=":
		return got <= want, nil
	case ">=":
		return got >= want, nil
	default:
		return false, fmt.Errorf("unknown condition %q", op)
	}
}

var queryCmd = &cobra.Command{
	Use:   "query <col> <cond> <value>",
	Short: "Print every record whose column matches a condition",
	Long: `query scans every record and prints the ones whose column col
satisfies "cond value", where cond is one of = != < > <= >= (§6).

Example:
  wgdb query 0 = 5
  wgdb query 1 >= 2.5`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		col, err := strconv.Atoi(args[0])
		if err != nil {
			return withCode(1, fmt.Errorf("bad column %q: %w", args[0], err))
		}
		op, want := args[1], args[2]

		db, err := attachExisting()
		if err != nil {
			return err
		}
		defer db.Detach()

		for off := db.GetFirst(); off != 0; off = db.GetNext(off) {
			ok, err := matchesCondition(db, off, col, op, want)
			if err != nil {
				return withCode(1, err)
			}
			if ok {
				printRecord(db, off)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
}
