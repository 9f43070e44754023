package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wgdb/wgdb"
)

var freeCmd = &cobra.Command{
	Use:   "free",
	Short: "Destroy the OS-level database segment",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := wgdb.Delete(dbName); err != nil {
			return withCode(1, err)
		}
		fmt.Printf("deleted database %q\n", dbName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(freeCmd)
}
