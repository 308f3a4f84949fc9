package analytics

import (
	"cmp"
	"context"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/kafka"
)

// maxLatencySamples bounds the latency window used for percentiles.
const maxLatencySamples = 10000

// AggregatedStats is the dashboard view of the search traffic seen so far.
type AggregatedStats struct {
	TotalSearches     int64            `json:"total_searches"`
	TotalSuggests     int64            `json:"total_suggests"`
	CacheHits         int64            `json:"cache_hits"`
	CacheMisses       int64            `json:"cache_misses"`
	ZeroResultCount   int64            `json:"zero_result_count"`
	ZeroResultRate    float64          `json:"zero_result_rate"`
	AvgLatencyMs      float64          `json:"avg_latency_ms"`
	P50LatencyMs      int64            `json:"p50_latency_ms"`
	P95LatencyMs      int64            `json:"p95_latency_ms"`
	P99LatencyMs      int64            `json:"p99_latency_ms"`
	TopQueries        []QueryCount     `json:"top_queries"`
	ZeroResultQueries []QueryCount     `json:"zero_result_queries"`
	TopFields         []QueryCount     `json:"top_fields"`
	LogicalOperators  map[string]int64 `json:"logical_operators"`
	QueriesPerMinute  float64          `json:"queries_per_minute"`
	Since             time.Time        `json:"since"`
}

// QueryCount pairs a query (or field) with how often it was seen.
type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator folds search events into running totals. It is safe for
// concurrent use and doubles as an in-process Tracker when Kafka is off.
type Aggregator struct {
	mu                sync.RWMutex
	totalSearches     int64
	totalSuggests     int64
	cacheHits         int64
	cacheMisses       int64
	zeroResults       int64
	latencies         []int64
	next              int
	queryCounts       map[string]int64
	zeroResultQueries map[string]int64
	fieldCounts       map[string]int64
	operators         map[string]int64
	startTime         time.Time

	logger *slog.Logger
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:         make([]int64, 0, 1024),
		queryCounts:       make(map[string]int64),
		zeroResultQueries: make(map[string]int64),
		fieldCounts:       make(map[string]int64),
		operators:         make(map[string]int64),
		startTime:         time.Now().UTC(),
		logger:            slog.Default().With("component", "analytics-aggregator"),
	}
}

// HandleEvent returns a Kafka handler feeding agg. Undecodable messages are
// logged and skipped.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[SearchEvent](value)
		if err != nil {
			agg.logger.Error("failed to decode analytics event",
				"error", err,
				"key", string(key),
			)
			return nil
		}
		agg.Record(event)
		return nil
	}
}

// Track records event directly.
func (a *Aggregator) Track(event SearchEvent) {
	a.Record(event)
}

// Record folds one event into the totals.
func (a *Aggregator) Record(event SearchEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if event.Type == EventSuggest {
		a.totalSuggests++
		return
	}
	a.totalSearches++
	if event.CacheHit {
		a.cacheHits++
	} else {
		a.cacheMisses++
	}
	a.recordLatency(event.LatencyMs)

	key := event.Canonical
	if key == "" {
		key = strings.TrimSpace(event.Query)
	}
	if key != "" {
		a.queryCounts[key]++
	}
	if event.TotalHits == 0 {
		a.zeroResults++
		if q := strings.TrimSpace(event.Query); q != "" {
			a.zeroResultQueries[q]++
		}
	}
	for _, f := range event.Fields {
		a.fieldCounts[strings.ToLower(f)]++
	}
	if event.LogicalOperator != "" {
		a.operators[event.LogicalOperator]++
	}
}

// recordLatency keeps the most recent maxLatencySamples values.
func (a *Aggregator) recordLatency(ms int64) {
	if len(a.latencies) < maxLatencySamples {
		a.latencies = append(a.latencies, ms)
		return
	}
	a.latencies[a.next] = ms
	a.next = (a.next + 1) % maxLatencySamples
}

// Stats computes a snapshot of the totals.
func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalSearches:     a.totalSearches,
		TotalSuggests:     a.totalSuggests,
		CacheHits:         a.cacheHits,
		CacheMisses:       a.cacheMisses,
		ZeroResultCount:   a.zeroResults,
		TopQueries:        topN(a.queryCounts, 10),
		ZeroResultQueries: topN(a.zeroResultQueries, 10),
		TopFields:         topN(a.fieldCounts, 10),
		LogicalOperators:  maps.Clone(a.operators),
		Since:             a.startTime,
	}
	if a.totalSearches > 0 {
		stats.ZeroResultRate = float64(a.zeroResults) / float64(a.totalSearches)
	}
	if n := len(a.latencies); n > 0 {
		sorted := slices.Clone(a.latencies)
		slices.Sort(sorted)
		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(n)
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	if elapsed := time.Since(a.startTime).Minutes(); elapsed > 0 {
		stats.QueriesPerMinute = float64(a.totalSearches) / elapsed
	}
	return stats
}

// Restore adds a persisted snapshot to the running totals so counts survive
// a restart. Only the top-N lists were persisted, so per-query counts
// outside them are lost. Latency samples are not restored.
func (a *Aggregator) Restore(s AggregatedStats) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalSearches += s.TotalSearches
	a.totalSuggests += s.TotalSuggests
	a.cacheHits += s.CacheHits
	a.cacheMisses += s.CacheMisses
	a.zeroResults += s.ZeroResultCount
	for _, qc := range s.TopQueries {
		a.queryCounts[qc.Query] += qc.Count
	}
	for _, qc := range s.ZeroResultQueries {
		a.zeroResultQueries[qc.Query] += qc.Count
	}
	for _, qc := range s.TopFields {
		a.fieldCounts[qc.Query] += qc.Count
	}
	for op, n := range s.LogicalOperators {
		a.operators[op] += n
	}
	if !s.Since.IsZero() && s.Since.Before(a.startTime) {
		a.startTime = s.Since
	}
	a.logger.Info("restored analytics snapshot", "total_searches", a.totalSearches, "since", a.startTime)
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[min(pct*len(sorted)/100, len(sorted)-1)]
}

// topN returns the n largest counts; equal counts order by key.
func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	slices.SortFunc(result, func(a, b QueryCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Query, b.Query)
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
