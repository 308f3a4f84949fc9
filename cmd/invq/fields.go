package main

import (
	"context"
	"maps"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/inventory"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/inventory/source"
)

var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List the fields a query can filter on",
	Long: `List the typed item fields and every attribute path found in the item
file, with how many items carry a value for each.`,
	Example: `  invq fields --items configs/items.yaml
  invq fields -o json`,
	Args: cobra.NoArgs,
	RunE: fieldsCmdRun,
}

func init() {
	rootCmd.AddCommand(fieldsCmd)
}

type fieldInfo struct {
	Path  string `json:"path"`
	Kind  string `json:"kind"`
	Items int    `json:"items"`
}

func fieldsCmdRun(cmd *cobra.Command, args []string) error {
	if err := checkOutput(); err != nil {
		return err
	}
	_, snap, err := newExecutor(context.Background())
	if err != nil {
		return err
	}
	fields := listFields(snap)

	w := cmd.OutOrStdout()
	if rootArgs.output == "json" {
		return printJSON(w, fields)
	}
	rows := make([][]string, 0, len(fields))
	for _, f := range fields {
		rows = append(rows, []string{f.Path, f.Kind, strconv.Itoa(f.Items)})
	}
	printTable(w, []string{"path", "kind", "items"}, rows)
	return nil
}

// listFields returns the suggested typed fields first, then attribute paths
// in lexical order. Attribute keys that shadow a typed field are skipped
// because the typed field wins on lookup.
func listFields(snap *source.Snapshot) []fieldInfo {
	fields := make([]fieldInfo, 0, len(inventory.SuggestedFields))
	for _, name := range inventory.SuggestedFields {
		fields = append(fields, fieldInfo{Path: name, Kind: "typed", Items: countPresent(snap.Items, name)})
	}

	attrs := make(map[string]int)
	for _, it := range snap.Items {
		collectPaths(it.Attributes, "", attrs)
	}
	for _, path := range slices.Sorted(maps.Keys(attrs)) {
		if inventory.IsKnownField(path) {
			continue
		}
		fields = append(fields, fieldInfo{Path: path, Kind: "attribute", Items: attrs[path]})
	}
	return fields
}

func countPresent(items []*inventory.Item, path string) int {
	n := 0
	for _, it := range items {
		v := it.Lookup(path)
		if v.Missing() || (v.IsList() && len(v.List) == 0) {
			continue
		}
		n++
	}
	return n
}

func collectPaths(node map[string]any, prefix string, seen map[string]int) {
	for key, val := range node {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if child, ok := val.(map[string]any); ok {
			collectPaths(child, path, seen)
			continue
		}
		if val != nil {
			seen[path]++
		}
	}
}
