package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wgdb/wgdb"
	"github.com/wgdb/wgdb/segment"
)

var (
	dbName  string
	logging bool
)

var rootCmd = &cobra.Command{
	Use:   "wgdb",
	Short: "Inspect and manipulate WhiteDB-style shared-memory databases",
	Long: `wgdb attaches to a shared-memory database segment and lets you
create, inspect, query, and mutate its records from the command line, plus
export/import snapshot dumps and replay write-ahead journals.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbName, "db", "1000", "database attach key")
	rootCmd.PersistentFlags().
		BoolVarP(&logging, "logging", "l", false, "journal mutations to "+wgdb.DefaultJournalPath)
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(classify(err))
	}
}

// attachExisting attaches the database named by --db without creating it.
func attachExisting() (*wgdb.Database, error) {
	db, err := wgdb.Attach(wgdb.Options{
		Name:         dbName,
		Create:       false,
		Logging:      logging,
		LockProtocol: segment.LockReaderPreference,
	})
	if err != nil {
		return nil, withCode(2, fmt.Errorf("attach %q: %w", dbName, err))
	}
	return db, nil
}

// parseSize parses a size argument (plain bytes, or a k/m/g suffix) into a
// byte count.
func parseSize(s string, def int64) (int64, error) {
	if s == "" {
		return def, nil
	}
	mult := int64(1)
	switch s[len(s)-1] {
	case 'k', 'K':
		mult = 1024
		s = s[:len(s)-1]
	case 'm', 'M':
		mult = 1024 * 1024
		s = s[:len(s)-1]
	case 'g', 'G':
		mult = 1024 * 1024 * 1024
		s = s[:len(s)-1]
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad size %q: %w", s, err)
	}
	return n * mult, nil
}

// parseMode parses an octal permission string ("0640") into os.FileMode,
// normalized per segment.NormalizeMode.
func parseMode(s string, def os.FileMode) (os.FileMode, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("bad mode %q: %w", s, err)
	}
	return segment.NormalizeMode(os.FileMode(n)), nil
}
