package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print database header metadata",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := attachExisting()
		if err != nil {
			return err
		}
		defer db.Detach()

		h := db.Segment().Header()
		major, minor, patch := h.Version()
		fmt.Printf("database:       %s\n", dbName)
		fmt.Printf("size:           %d bytes\n", db.Segment().Size())
		fmt.Printf("free offset:    %d\n", h.FreeOffset())
		fmt.Printf("version:        %d.%d.%d\n", major, minor, patch)
		fmt.Printf("lock protocol:  %s\n", h.LockProtocol())
		fmt.Printf("logging:        %v\n", h.Logging().Enabled())
		fmt.Printf("ext-db refs:    %d\n", h.ExtDB().Count())

		count := 0
		for off := db.GetFirst(); off != 0; off = db.GetNext(off) {
			count++
		}
		fmt.Printf("records:        %d\n", count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
