package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// indexEntry is a declared index's metadata. No T-tree or hash structure is
// ever built for it: record.Indexer's IsIndexed/IndexAdd/IndexRemove hooks
// are the only thing a real index would need to plug into, and this
// registry exists only to let createindex/createhash/dropindex/listindex
// round-trip without lying about having built one.
type indexEntry struct {
	ID      int    `json:"id"`
	Kind    string `json:"kind"` // "tree" or "hash"
	Columns []int  `json:"columns"`
}

// indexRegistryPath is a sidecar file next to the database name, since the
// segment format has no index metadata area of its own.
func indexRegistryPath() string { return dbName + ".indexes.json" }

func loadIndexRegistry() ([]indexEntry, error) {
	data, err := os.ReadFile(indexRegistryPath())
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []indexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func saveIndexRegistry(entries []indexEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(indexRegistryPath(), data, 0644)
}

func nextIndexID(entries []indexEntry) int {
	max := 0
	for _, e := range entries {
		if e.ID > max {
			max = e.ID
		}
	}
	return max + 1
}

func parseColumns(args []string) ([]int, error) {
	cols := make([]int, len(args))
	for i, a := range args {
		c, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("bad column %q: %w", a, err)
		}
		cols[i] = c
	}
	return cols, nil
}

func addIndexCmd(kind string) *cobra.Command {
	return &cobra.Command{
		Use:   kind + "index <col...>",
		Short: fmt.Sprintf("Declare a %s index over one or more columns (recorded only, not built)", kind),
		Long: fmt.Sprintf(`Records a declared %s index: the named columns are considered
indexed (§6); no T-tree or hash structure is ever constructed, so
record.NoopIndexer still reports IsIndexed as false for them and query/del
keep doing a linear scan. The declaration exists only so listindex/dropindex
have something to round-trip.`, kind),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cols, err := parseColumns(args)
			if err != nil {
				return withCode(1, err)
			}
			entries, err := loadIndexRegistry()
			if err != nil {
				return withCode(1, err)
			}
			id := nextIndexID(entries)
			entries = append(entries, indexEntry{ID: id, Kind: kind, Columns: cols})
			if err := saveIndexRegistry(entries); err != nil {
				return withCode(1, err)
			}
			fmt.Printf("declared %s index %d on column(s) %v (not built)\n", kind, id, cols)
			return nil
		},
	}
}

var createIndexCmd = func() *cobra.Command {
	c := addIndexCmd("tree")
	c.Use = "createindex <col...>"
	return c
}()

var createHashCmd = func() *cobra.Command {
	c := addIndexCmd("hash")
	c.Use = "createhash <col...>"
	return c
}()

var dropIndexCmd = &cobra.Command{
	Use:   "dropindex <id>",
	Short: "Remove a declared index by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return withCode(1, fmt.Errorf("bad id %q: %w", args[0], err))
		}
		entries, err := loadIndexRegistry()
		if err != nil {
			return withCode(1, err)
		}
		kept := entries[:0]
		found := false
		for _, e := range entries {
			if e.ID == id {
				found = true
				continue
			}
			kept = append(kept, e)
		}
		if !found {
			return withCode(1, fmt.Errorf("no index with id %d", id))
		}
		if err := saveIndexRegistry(kept); err != nil {
			return withCode(1, err)
		}
		fmt.Printf("dropped index %d\n", id)
		return nil
	},
}

var listIndexCmd = &cobra.Command{
	Use:   "listindex",
	Short: "List declared indexes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := loadIndexRegistry()
		if err != nil {
			return withCode(1, err)
		}
		if len(entries) == 0 {
			fmt.Println("no indexes declared")
			return nil
		}
		for _, e := range entries {
			cols := make([]string, len(e.Columns))
			for i, c := range e.Columns {
				cols[i] = strconv.Itoa(c)
			}
			fmt.Printf("%d: %s(%s)\n", e.ID, e.Kind, strings.Join(cols, ","))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createIndexCmd)
	rootCmd.AddCommand(createHashCmd)
	rootCmd.AddCommand(dropIndexCmd)
	rootCmd.AddCommand(listIndexCmd)
}
