package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [query]",
	Short: "Offer spelling corrections and related searches",
	Example: `  invq suggest 'moniter' --items configs/items.yaml
  invq suggest 'dell latop' --history 'dell laptop' --history 'hp monitor'`,
	Args: cobra.ExactArgs(1),
	RunE: suggestCmdRun,
}

type suggestFlags struct {
	max     int
	history []string
}

var suggestArgs suggestFlags

func init() {
	suggestCmd.Flags().IntVar(&suggestArgs.max, "max", 0,
		"Suggestions per list. Defaults to search.suggestionLimit.")
	suggestCmd.Flags().StringArrayVar(&suggestArgs.history, "history", nil,
		"Earlier searches to draw corrections from, oldest first. Repeatable.")
	rootCmd.AddCommand(suggestCmd)
}

func suggestCmdRun(cmd *cobra.Command, args []string) error {
	if err := checkOutput(); err != nil {
		return err
	}
	exec, _, err := newExecutor(context.Background())
	if err != nil {
		return err
	}
	for _, q := range suggestArgs.history {
		exec.History().Add(q)
	}

	s := exec.Suggest(args[0], suggestArgs.max)
	w := cmd.OutOrStdout()
	if rootArgs.output == "json" {
		return printJSON(w, s)
	}
	if s.Empty() {
		fmt.Fprintln(w, "no suggestions")
		return nil
	}
	rows := make([][]string, 0, len(s.DidYouMean)+len(s.Related))
	for _, q := range s.DidYouMean {
		rows = append(rows, []string{"did you mean", q})
	}
	for _, q := range s.Related {
		rows = append(rows, []string{"related", q})
	}
	printTable(w, []string{"kind", "query"}, rows)
	return nil
}
