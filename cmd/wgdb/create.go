package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wgdb/wgdb"
	"github.com/wgdb/wgdb/segment"
)

const defaultSegmentSize = 8 * 1024 * 1024

var createCmd = &cobra.Command{
	Use:   "create [size [mode]]",
	Short: "Create a new database segment",
	Long: `create initializes a new shared-memory database under the
attach key given by --db (default "1000"), falling back to a smaller size
if the requested one cannot be allocated.

Example:
  wgdb --db 1001 create 16M
  wgdb --db 1001 create 16M 0640
  wgdb --db 1001 -l create`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var sizeArg, modeArg string
		if len(args) > 0 {
			sizeArg = args[0]
		}
		if len(args) > 1 {
			modeArg = args[1]
		}
		size, err := parseSize(sizeArg, defaultSegmentSize)
		if err != nil {
			return withCode(1, err)
		}
		mode, err := parseMode(modeArg, 0o600)
		if err != nil {
			return withCode(1, err)
		}

		db, err := wgdb.Attach(wgdb.Options{
			Name:         dbName,
			MinSize:      minCreateSize,
			MaxSize:      size,
			Create:       true,
			Mode:         mode,
			Logging:      logging,
			LockProtocol: segment.LockReaderPreference,
		})
		if err != nil {
			return withCode(2, fmt.Errorf("create %q: %w", dbName, err))
		}
		defer db.Detach()

		fmt.Printf("created database %q (%d bytes)\n", dbName, db.Segment().Size())
		return nil
	},
}

// minCreateSize is the smallest segment Attach will fall back to if the
// requested size cannot be mapped (§4.B "falling back to min on failure").
const minCreateSize = 256 * 1024

func init() {
	rootCmd.AddCommand(createCmd)
}
