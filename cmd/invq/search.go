package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/searcher/ranker"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Filter and sort the item file",
	Example: `  invq search 'name:dell' --items configs/items.yaml --sort price --order desc
  invq search 'quantity:<10' --sort-config 'category:asc,quantity:asc'
  invq search '' --limit 5 -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: searchCmdRun,
}

type searchFlags struct {
	sort       string
	order      string
	sortConfig string
	limit      int
	offset     int
}

var searchArgs searchFlags

func init() {
	searchCmd.Flags().StringVar(&searchArgs.sort, "sort", "",
		"Sort key, one of: relevance, name, date, price, quantity.")
	searchCmd.Flags().StringVar(&searchArgs.order, "order", "",
		"Sort direction, asc or desc.")
	searchCmd.Flags().StringVar(&searchArgs.sortConfig, "sort-config", "",
		"Multi-level sort as field:order pairs, primary first, e.g. 'category:asc,price:desc'.")
	searchCmd.Flags().IntVar(&searchArgs.limit, "limit", 0,
		"Maximum results. Defaults to search.defaultLimit.")
	searchCmd.Flags().IntVar(&searchArgs.offset, "offset", 0,
		"Number of results to skip.")
	rootCmd.AddCommand(searchCmd)
}

func searchCmdRun(cmd *cobra.Command, args []string) error {
	if err := checkOutput(); err != nil {
		return err
	}
	ctx := context.Background()
	exec, _, err := newExecutor(ctx)
	if err != nil {
		return err
	}

	req := executor.Request{
		SortBy: ranker.SortKey(strings.ToLower(searchArgs.sort)),
		Order:  ranker.Direction(strings.ToLower(searchArgs.order)),
		Limit:  searchArgs.limit,
		Offset: searchArgs.offset,
	}
	if len(args) > 0 {
		req.Query = args[0]
	}
	if searchArgs.sortConfig != "" {
		cfg, err := parseSortConfig(searchArgs.sortConfig)
		if err != nil {
			return err
		}
		req.SortConfig = &cfg
	}

	result, err := exec.Execute(ctx, req)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if rootArgs.output == "json" {
		return printJSON(w, result)
	}

	rows := make([][]string, 0, len(result.Results))
	for _, hit := range result.Results {
		it := hit.Item
		rows = append(rows, []string{
			it.ID,
			it.Name,
			it.Category,
			formatNumber(it.Price),
			formatNumber(it.Quantity),
			strconv.FormatFloat(hit.Score, 'f', 1, 64),
		})
	}
	printTable(w, []string{"id", "name", "category", "price", "quantity", "score"}, rows)
	fmt.Fprintf(w, "\n%d of %d items", len(result.Results), result.TotalHits)
	if result.Description != "" {
		fmt.Fprintf(w, " where %s", result.Description)
	}
	fmt.Fprintln(w)
	if s := result.Suggestions; s != nil && len(s.DidYouMean) > 0 {
		fmt.Fprintf(w, "did you mean: %s\n", strings.Join(s.DidYouMean, ", "))
	}
	return nil
}

// parseSortConfig reads "field:order,field:order". A missing order means asc.
func parseSortConfig(spec string) (ranker.SortConfig, error) {
	cfg := ranker.SortConfig{Secondary: []ranker.SortField{}}
	for i, part := range strings.Split(spec, ",") {
		field, order, _ := strings.Cut(strings.TrimSpace(part), ":")
		if order == "" {
			order = string(ranker.Asc)
		}
		dir := ranker.Direction(strings.ToLower(order))
		var err error
		if i == 0 {
			err = cfg.SetPrimary(field, dir)
		} else {
			err = cfg.AddSecondary(field, dir)
		}
		if err != nil {
			return cfg, fmt.Errorf("sort level %q: %w", part, err)
		}
	}
	return cfg, cfg.Validate()
}
