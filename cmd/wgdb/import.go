package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wgdb/wgdb"
	"github.com/wgdb/wgdb/segment"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Restore a snapshot dump into the database",
	Long: `import attaches (creating if necessary) the database named by --db
and restores file's contents into it. The target segment must already be
at least as large as the dump's used prefix; a freshly created target is
sized to the dump file itself.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		stat, err := os.Stat(path)
		if err != nil {
			return withCode(1, fmt.Errorf("stat %s: %w", path, err))
		}

		db, err := wgdb.Attach(wgdb.Options{
			Name:         dbName,
			MinSize:      stat.Size(),
			MaxSize:      stat.Size(),
			Create:       true,
			Logging:      logging,
			LockProtocol: segment.LockReaderPreference,
		})
		if err != nil {
			return withCode(2, fmt.Errorf("attach %q: %w", dbName, err))
		}
		defer db.Detach()

		if err := db.Import(path); err != nil {
			return withCode(2, fmt.Errorf("import: %w", err))
		}
		fmt.Printf("imported %s into %q\n", path, dbName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
