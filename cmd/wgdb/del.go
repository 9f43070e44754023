package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var delCmd = &cobra.Command{
	Use:   "del <col> <cond> <value>",
	Short: "Delete every record whose column matches a condition",
	Long: `del scans every record and deletes the ones whose column col
satisfies "cond value" (§6). Fails (without deleting anything already
queued after the failure) if a matching record still has live parents
(§4.G "delete").`,
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

		var matched []int64
		for off := db.GetFirst(); off != 0; off = db.GetNext(off) {
			ok, err := matchesCondition(db, off, col, op, want)
			if err != nil {
				return withCode(1, err)
			}
			if ok {
				matched = append(matched, off)
			}
		}

		deleted := 0
		for _, off := range matched {
			if err := db.Delete(db.Record(off)); err != nil {
				if deleted > 0 {
					return withCode(3, fmt.Errorf("delete %d (after %d prior deletes): %w", off, deleted, err))
				}
				return withCode(1, fmt.Errorf("delete %d: %w", off, err))
			}
			deleted++
		}
		fmt.Printf("deleted %d record(s)\n", deleted)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(delCmd)
}
