// Command invq runs advanced inventory queries against an item file from the
// command line.
//
//	invq parse 'category:=Electronics AND price:>100'
//	invq search 'name:dell' --items configs/items.yaml --sort price --order desc
//	invq suggest 'moniter' --items configs/items.yaml
//	invq fields --items configs/items.yaml
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:           "invq",
	Short:         "Query an inventory item catalog",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(logger.New(cmd.ErrOrStderr(), rootArgs.logLevel, "text"))
	},
}

type rootFlags struct {
	configPath string
	items      string
	output     string
	logLevel   string
}

var rootArgs = defaultRootFlags()

func defaultRootFlags() rootFlags {
	return rootFlags{output: "table", logLevel: "warn"}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootArgs.configPath, "config", rootArgs.configPath,
		"Path to a service config file. Built-in defaults are used when empty.")
	rootCmd.PersistentFlags().StringVar(&rootArgs.items, "items", rootArgs.items,
		"YAML or JSON item file. Defaults to inventory.file from the config.")
	rootCmd.PersistentFlags().StringVarP(&rootArgs.output, "output", "o", rootArgs.output,
		"Output format, one of: table, json.")
	rootCmd.PersistentFlags().StringVar(&rootArgs.logLevel, "log-level", rootArgs.logLevel,
		"Log level written to stderr.")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗", err)
		os.Exit(1)
	}
}
