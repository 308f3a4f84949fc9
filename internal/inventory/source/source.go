// Package source loads inventory snapshots from a file or PostgreSQL and
// keeps the current snapshot available to searches through a Catalog.
package source

import (
	"context"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/inventory"
)

// Source loads a complete item snapshot.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]*inventory.Item, error)
}

// Sanitize drops nil, invalid, and duplicate-id items, logging each one.
// The order of the remaining items is preserved.
func Sanitize(items []*inventory.Item, logger *slog.Logger) []*inventory.Item {
	out := make([]*inventory.Item, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, it := range items {
		if it == nil {
			logger.Warn("skipping empty item entry", "index", i)
			continue
		}
		if err := it.Validate(); err != nil {
			logger.Warn("skipping invalid item", "index", i, "error", err)
			continue
		}
		if seen[it.ID] {
			logger.Warn("skipping duplicate item id", "index", i, "id", it.ID)
			continue
		}
		seen[it.ID] = true
		if it.Tags == nil {
			it.Tags = []string{}
		}
		out = append(out, it)
	}
	return out
}
