package main

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportCSVCmd = &cobra.Command{
	Use:   "exportcsv <file>",
	Short: "Write every record as a CSV row",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := attachExisting()
		if err != nil {
			return err
		}
		defer db.Detach()

		f, err := os.Create(args[0])
		if err != nil {
			return withCode(1, fmt.Errorf("create %s: %w", args[0], err))
		}
		defer f.Close()

		w := csv.NewWriter(f)
		for off := db.GetFirst(); off != 0; off = db.GetNext(off) {
			rec := db.Record(off)
			row := make([]string, rec.NumFields())
			for col := range row {
				val, ferr := rec.Field(col)
				if ferr != nil {
					return withCode(1, ferr)
				}
				row[col] = decodeWord(db, val)
			}
			if err := w.Write(row); err != nil {
				return withCode(1, fmt.Errorf("write csv row: %w", err))
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return withCode(1, err)
		}
		fmt.Printf("exported %q to %s\n", dbName, args[0])
		return nil
	},
}

var importCSVCmd = &cobra.Command{
	Use:   "importcsv <file>",
	Short: "Create one record per CSV row",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := attachExisting()
		if err != nil {
			return err
		}
		defer db.Detach()

		f, err := os.Open(args[0])
		if err != nil {
			return withCode(1, fmt.Errorf("open %s: %w", args[0], err))
		}
		defer f.Close()

		r := csv.NewReader(f)
		r.FieldsPerRecord = -1

		added := 0
		for {
			row, err := r.Read()
			if err != nil {
				break
			}
			rec, err := db.Create(len(row))
			if err != nil {
				return withCode(1, fmt.Errorf("create row %d: %w", added, err))
			}
			for col, s := range row {
				w, err := encodeArg(db, s)
				if err != nil {
					return withCode(1, fmt.Errorf("row %d col %d: %w", added, col, err))
				}
				if err := db.SetField(rec, col, w); err != nil {
					return withCode(3, fmt.Errorf("row %d col %d: %w", added, col, err))
				}
			}
			added++
		}
		fmt.Printf("imported %d row(s) into %q\n", added, dbName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCSVCmd)
	rootCmd.AddCommand(importCSVCmd)
}
