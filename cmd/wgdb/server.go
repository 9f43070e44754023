package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wgdb/wgdb"
	"github.com/wgdb/wgdb/segment"
)

var serverCmd = &cobra.Command{
	Use:   "server [size]",
	Short: "Create (or attach) a database and hold it open until terminated",
	Long: `server keeps a database segment attached for the lifetime of the
process, so other processes can attach to it by the same --db key. It
exits on SIGINT/SIGTERM, detaching cleanly.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var sizeArg string
		if len(args) > 0 {
			sizeArg = args[0]
		}
		size, err := parseSize(sizeArg, defaultSegmentSize)
		if err != nil {
			return withCode(1, err)
		}

		db, err := wgdb.Attach(wgdb.Options{
			Name:         dbName,
			MinSize:      minCreateSize,
			MaxSize:      size,
			Create:       true,
			Logging:      logging,
			LockProtocol: segment.LockReaderPreference,
		})
		if err != nil {
			return withCode(2, fmt.Errorf("attach %q: %w", dbName, err))
		}

		fmt.Printf("serving database %q, press Ctrl-C to detach\n", dbName)

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		fmt.Println("detaching")
		return db.Detach()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
