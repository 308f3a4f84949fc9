package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/searcher/query"
)

var parseCmd = &cobra.Command{
	Use:   "parse [query]",
	Short: "Show how a query is parsed",
	Example: `  invq parse 'category:=Electronics AND price:>100'
  invq parse 'tags:(laptop OR computer)' -o json`,
	Args: cobra.ExactArgs(1),
	RunE: parseCmdRun,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

type parseOutput struct {
	Query       string             `json:"query"`
	Canonical   string             `json:"canonical"`
	Description string             `json:"description"`
	Parsed      *query.ParsedQuery `json:"parsed"`
}

func parseCmdRun(cmd *cobra.Command, args []string) error {
	if err := checkOutput(); err != nil {
		return err
	}
	parsed := query.Parse(args[0])
	out := parseOutput{
		Query:       args[0],
		Canonical:   query.FormatQuery(parsed),
		Description: query.Describe(parsed),
		Parsed:      parsed,
	}
	w := cmd.OutOrStdout()
	if rootArgs.output == "json" {
		return printJSON(w, out)
	}

	fmt.Fprintf(w, "canonical: %s\n", out.Canonical)
	fmt.Fprintf(w, "logic:     %s\n", parsed.LogicalOperator)
	fmt.Fprintf(w, "meaning:   %s\n\n", out.Description)
	rows := make([][]string, 0, len(parsed.Conditions))
	for _, c := range parsed.Conditions {
		value := c.Value
		if c.Operator == query.OpBetween {
			value = c.Value + " .. " + c.ValueEnd
		}
		rows = append(rows, []string{c.Field, string(c.Operator), value, strconv.FormatBool(c.Negated), query.DescribeCondition(c)})
	}
	printTable(w, []string{"field", "operator", "value", "negated", "meaning"}, rows)
	return nil
}
