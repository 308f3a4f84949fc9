package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/inventory/source"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/postgres"
)

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Upsert an item file into PostgreSQL",
	Long: `Writes every valid item of a YAML or JSON file to the inventory_items table
in one transaction, then announces a reload on the inventory-changes topic so
running search replicas pick the items up.`,
	Example: `  invq import configs/items.yaml --config configs/development.yaml`,
	Args:    cobra.ExactArgs(1),
	RunE:    importCmdRun,
}

type importFlags struct {
	notify  bool
	timeout time.Duration
}

var importArgs importFlags

func init() {
	importCmd.Flags().BoolVar(&importArgs.notify, "notify", true,
		"Publish a reload event when Kafka is enabled.")
	importCmd.Flags().DurationVar(&importArgs.timeout, "timeout", time.Minute,
		"Deadline for the whole import.")
	rootCmd.AddCommand(importCmd)
}

func importCmdRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), importArgs.timeout)
	defer cancel()

	items, err := source.NewFile(args[0]).Load(ctx)
	if err != nil {
		return err
	}
	items = source.Sanitize(items, slog.Default().With("component", "invq-import"))

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer db.Close()
	pg := source.NewPostgres(db)
	if err := pg.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := pg.Upsert(ctx, items); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✔ imported %d items\n", len(items))

	if !importArgs.notify || !cfg.Kafka.Enabled {
		return nil
	}
	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.InventoryChanges)
	defer producer.Close()
	if err := source.PublishChange(ctx, producer, source.ChangeEvent{Type: source.ChangeReload}); err != nil {
		return fmt.Errorf("items imported but reload announcement failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✔ reload announced on", cfg.Kafka.Topics.InventoryChanges)
	return nil
}
