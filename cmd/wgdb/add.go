package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <values...>",
	Short: "Create a record with one field per value",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := attachExisting()
		if err != nil {
			return err
		}
		defer db.Detach()

		rec, err := db.Create(len(args))
		if err != nil {
			return withCode(1, fmt.Errorf("create: %w", err))
		}
		for col, arg := range args {
			w, err := encodeArg(db, arg)
			if err != nil {
				return withCode(1, fmt.Errorf("encode %q: %w", arg, err))
			}
			if err := db.SetField(rec, col, w); err != nil {
				return withCode(3, fmt.Errorf("set field %d: %w", col, err))
			}
		}
		fmt.Printf("added record at offset %d\n", rec.Offset())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
}
