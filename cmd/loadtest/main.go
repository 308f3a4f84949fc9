// Command loadtest drives the search service with a mix of advanced
// inventory queries, suggestion lookups, and parse requests, then prints
// latency percentiles per endpoint.
//
// Usage:
//
//	go run ./cmd/loadtest [-url http://localhost:8080] [-concurrency 10] [-duration 30s]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/olekukonko/tablewriter"
)

// Target is one request shape in the mix.
type Target struct {
	Name   string
	Path   string
	Params func(q string) url.Values
	Weight int
}

type Config struct {
	BaseURL     string
	Concurrency int
	Duration    time.Duration
	Queries     []string
	Targets     []Target
}

// EndpointStats collects results for one target.
type EndpointStats struct {
	requests    atomic.Int64
	errors      atomic.Int64
	mu          sync.Mutex
	latencies   []time.Duration
	statusCodes map[int]int64
}

func newEndpointStats() *EndpointStats {
	return &EndpointStats{
		latencies:   make([]time.Duration, 0, 10000),
		statusCodes: make(map[int]int64),
	}
}

func (s *EndpointStats) Record(d time.Duration, statusCode int, err error) {
	s.requests.Add(1)
	if err != nil || statusCode < 200 || statusCode >= 300 {
		s.errors.Add(1)
	}
	if err != nil {
		return
	}
	s.mu.Lock()
	s.latencies = append(s.latencies, d)
	s.statusCodes[statusCode]++
	s.mu.Unlock()
}

var inventoryQueries = []string{
	"laptop",
	"name:dell",
	"name:^Dell AND price:>500",
	"category:=Electronics AND quantity:<10",
	"tags:(monitor OR display)",
	"price:100..500",
	"!description:*",
	"location:warehouse OR location:store",
	"lowStock:=true",
	"updatedAt:>2024-01-01",
	"sku:$-BLK",
	"attributes.color:=black",
	"moniter",
	"office chiar",
	"tags:!(refurbished, used)",
}

func defaultTargets() []Target {
	sorts := []string{"relevance", "name", "price", "quantity", "date"}
	var n atomic.Int64
	return []Target{
		{
			Name:   "search",
			Path:   "/api/v1/items/search",
			Weight: 6,
			Params: func(q string) url.Values {
				i := n.Add(1)
				v := url.Values{"q": {q}, "limit": {"20"}}
				v.Set("sort", sorts[i%int64(len(sorts))])
				if i%2 == 0 {
					v.Set("order", "desc")
				}
				if i%5 == 0 {
					v.Set("highlight", "true")
				}
				return v
			},
		},
		{
			Name:   "suggest",
			Path:   "/api/v1/suggest",
			Weight: 2,
			Params: func(q string) url.Values { return url.Values{"q": {q}} },
		},
		{
			Name:   "parse",
			Path:   "/api/v1/query/parse",
			Weight: 1,
			Params: func(q string) url.Values { return url.Values{"q": {q}} },
		},
	}
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the search service")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	flag.Parse()

	cfg := Config{
		BaseURL:     *baseURL,
		Concurrency: *concurrency,
		Duration:    *duration,
		Queries:     inventoryQueries,
		Targets:     defaultTargets(),
	}

	fmt.Println("=== Inventory Search Load Test ===")
	fmt.Printf("Target:      %s\n", cfg.BaseURL)
	fmt.Printf("Concurrency: %d\n", cfg.Concurrency)
	fmt.Printf("Duration:    %s\n", cfg.Duration)
	fmt.Printf("Queries:     %d unique\n", len(cfg.Queries))
	fmt.Println()

	stats := runLoadTest(cfg)
	if !printReport(os.Stdout, cfg.Targets, stats, cfg.Duration) {
		fmt.Println()
		fmt.Println("WARNING: No requests completed. Is the service running?")
		os.Exit(1)
	}
}

// schedule expands targets by weight into a round-robin order.
func schedule(targets []Target) []int {
	var order []int
	for i, t := range targets {
		for w := 0; w < max(t.Weight, 1); w++ {
			order = append(order, i)
		}
	}
	return order
}

func runLoadTest(cfg Config) []*EndpointStats {
	stats := make([]*EndpointStats, len(cfg.Targets))
	for i := range stats {
		stats[i] = newEndpointStats()
	}
	order := schedule(cfg.Targets)
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Concurrency * 2,
			MaxIdleConnsPerHost: cfg.Concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	var wg sync.WaitGroup
	fmt.Print("Running")
	for w := 0; w < cfg.Concurrency; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := workerID; ; i++ {
				if ctx.Err() != nil {
					return
				}
				ti := order[i%len(order)]
				target := cfg.Targets[ti]
				q := cfg.Queries[i%len(cfg.Queries)]
				rawURL := cfg.BaseURL + target.Path + "?" + target.Params(q).Encode()

				start := time.Now()
				status, err := do(ctx, client, rawURL)
				if ctx.Err() != nil {
					return
				}
				stats[ti].Record(time.Since(start), status, err)
			}
		}(w)
	}

	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Print(".")
			}
		}
	}()

	wg.Wait()
	fmt.Println(" done!")
	fmt.Println()
	return stats
}

func do(ctx context.Context, client *http.Client, rawURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// printReport writes one row per endpoint and reports whether any request
// completed.
func printReport(w io.Writer, targets []Target, stats []*EndpointStats, duration time.Duration) bool {
	var total int64
	rows := make([][]string, 0, len(targets))
	codes := make(map[int]int64)
	for i, t := range targets {
		s := stats[i]
		n := s.requests.Load()
		total += n

		s.mu.Lock()
		latencies := make([]time.Duration, len(s.latencies))
		copy(latencies, s.latencies)
		for code, c := range s.statusCodes {
			codes[code] += c
		}
		s.mu.Unlock()
		sort.Slice(latencies, func(a, b int) bool { return latencies[a] < latencies[b] })

		errRate := 0.0
		if n > 0 {
			errRate = float64(s.errors.Load()) / float64(n) * 100
		}
		rows = append(rows, []string{
			t.Name,
			strconv.FormatInt(n, 10),
			fmt.Sprintf("%.2f%%", errRate),
			fmt.Sprintf("%.1f", float64(n)/duration.Seconds()),
			mean(latencies).String(),
			percentile(latencies, 50).String(),
			percentile(latencies, 95).String(),
			percentile(latencies, 99).String(),
			stddev(latencies).String(),
		})
	}

	fmt.Fprintln(w, "=== Results ===")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"endpoint", "requests", "errors", "req/s", "avg", "p50", "p95", "p99", "stddev"})
	table.SetAutoFormatHeaders(true)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.AppendBulk(rows)
	table.Render()

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Status Codes ===")
	keys := make([]int, 0, len(codes))
	for code := range codes {
		keys = append(keys, code)
	}
	sort.Ints(keys)
	for _, code := range keys {
		fmt.Fprintf(w, "  %d: %d\n", code, codes[code])
	}
	return total > 0
}

func mean(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, l := range d {
		sum += l
	}
	return sum / time.Duration(len(d))
}

func stddev(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	avg := float64(mean(d))
	var sumSquared float64
	for _, l := range d {
		diff := float64(l) - avg
		sumSquared += diff * diff
	}
	return time.Duration(math.Sqrt(sumSquared / float64(len(d))))
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
