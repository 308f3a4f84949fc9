package executor

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/inventory"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/searcher/query"
)

// parallelThreshold is the snapshot size from which Filter splits the work
// across goroutines.
var parallelThreshold = 4096

// Filter applies q to items. Large snapshots are cut into contiguous chunks
// filtered concurrently; the chunk results are joined in chunk order, so the
// output order matches query.Apply.
func Filter(ctx context.Context, items []*inventory.Item, q *query.ParsedQuery) ([]*inventory.Item, error) {
	if q == nil || q.Empty() || len(items) < parallelThreshold {
		return query.Apply(items, q)
	}
	if err := query.CheckItems(items); err != nil {
		return nil, err
	}

	workers := runtime.GOMAXPROCS(0)
	chunk := (len(items) + workers - 1) / workers
	parts := make([][]*inventory.Item, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		lo := w * chunk
		if lo >= len(items) {
			break
		}
		hi := min(lo+chunk, len(items))
		g.Go(func() error {
			out := make([]*inventory.Item, 0, (hi-lo)/4)
			for i, item := range items[lo:hi] {
				if i%1024 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				if q.Match(item) {
					out = append(out, item)
				}
			}
			parts[w] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	merged := make([]*inventory.Item, 0, total)
	for _, p := range parts {
		merged = append(merged, p...)
	}
	return merged, nil
}
