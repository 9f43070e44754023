package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Rebuild the database from a journal file",
	Long: `replay applies every entry in the given journal file to the
database named by --db, in order. It is meant to run against an empty (or
otherwise quiescent) segment — running it twice double-applies every
entry.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		db, err := attachExisting()
		if err != nil {
			return err
		}
		defer db.Detach()

		if err := db.Replay(path); err != nil {
			return withCode(2, fmt.Errorf("replay: %w", err))
		}
		fmt.Printf("replayed %s into %q\n", path, dbName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
}
