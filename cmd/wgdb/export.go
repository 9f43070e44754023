package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportForce bool

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write a snapshot dump of the database to file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if !exportForce {
			if _, err := os.Stat(path); err == nil {
				return withCode(1, fmt.Errorf("%s already exists, use -f to overwrite", path))
			}
		}
		db, err := attachExisting()
		if err != nil {
			return err
		}
		defer db.Detach()

		if err := db.Dump(path); err != nil {
			return withCode(1, fmt.Errorf("dump: %w", err))
		}
		fmt.Printf("exported %q to %s\n", dbName, path)
		return nil
	},
}

func init() {
	exportCmd.Flags().BoolVarP(&exportForce, "force", "f", false, "overwrite an existing output file")
	rootCmd.AddCommand(exportCmd)
}
