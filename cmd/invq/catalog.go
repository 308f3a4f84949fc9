package main

import (
	"context"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/inventory/source"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/config"
)

func loadConfig() (*config.Config, error) {
	if rootArgs.configPath == "" {
		return config.Default(), nil
	}
	return config.Load(rootArgs.configPath)
}

// newExecutor loads the item file once and wraps it in an executor. The
// result limits from the config apply.
func newExecutor(ctx context.Context) (*executor.Executor, *source.Snapshot, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	path := rootArgs.items
	if path == "" {
		path = cfg.Inventory.File
	}
	if path == "" {
		return nil, nil, fmt.Errorf("no item file given, use --items")
	}

	catalog := source.NewCatalog(source.NewFile(path), cfg.Inventory, nil)
	snap, err := catalog.Reload(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading %s: %w", path, err)
	}
	weights, err := ranker.ParseWeights(cfg.Search.Weights)
	if err != nil {
		return nil, nil, err
	}
	scorer := ranker.NewScorer(cfg.Search.RecencyWindow, ranker.WithWeights(weights))
	return executor.New(catalog, cfg.Search, executor.WithScorer(scorer)), snap, nil
}
