package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var selectCmd = &cobra.Command{
	Use:   "select <n> [from]",
	Short: "Print up to n records, optionally starting after offset \"from\"",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return withCode(1, fmt.Errorf("bad count %q: %w", args[0], err))
		}
		var from int64
		if len(args) > 1 {
			from, err = strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return withCode(1, fmt.Errorf("bad offset %q: %w", args[1], err))
			}
		}

		db, err := attachExisting()
		if err != nil {
			return err
		}
		defer db.Detach()

		var off int64
		if from == 0 {
			off = db.GetFirst()
		} else {
			off = db.GetNext(from)
		}
		printed := 0
		for off != 0 && printed < n {
			printRecord(db, off)
			printed++
			off = db.GetNext(off)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(selectCmd)
}
