// Package executor runs an inventory search end to end: parse the advanced
// query, filter the catalog snapshot, order the matches, cut the requested
// page, highlight matched terms, and attach suggestions when nothing matched.
package executor

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/inventory"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/inventory/source"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/searcher/highlight"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/searcher/query"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/searcher/suggest"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/tracing"
)

// Snapshotter hands out the current item snapshot.
type Snapshotter interface {
	Snapshot() *source.Snapshot
}

// Request describes one search.
type Request struct {
	Query      string             `json:"query"`
	SortBy     ranker.SortKey     `json:"sort_by,omitempty"`
	Order      ranker.Direction   `json:"order,omitempty"`
	SortConfig *ranker.SortConfig `json:"sort_config,omitempty"`
	Limit      int                `json:"limit,omitempty"`
	Offset     int                `json:"offset,omitempty"`
	Highlight  bool               `json:"highlight,omitempty"`
}

// Hit is one result row.
type Hit struct {
	Item       *inventory.Item   `json:"item"`
	Score      float64           `json:"score"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Suggestions are offered when a search finds nothing.
type Suggestions struct {
	DidYouMean []string `json:"did_you_mean"`
	Related    []string `json:"related"`
}

// Empty reports whether there is nothing to suggest.
func (s *Suggestions) Empty() bool {
	return s == nil || (len(s.DidYouMean) == 0 && len(s.Related) == 0)
}

// SearchResult is the response to a Request.
type SearchResult struct {
	Query          string       `json:"query"`
	Canonical      string       `json:"canonical"`
	Description    string       `json:"description"`
	TotalHits      int          `json:"total_hits"`
	Limit          int          `json:"limit"`
	Offset         int          `json:"offset"`
	Results        []Hit        `json:"results"`
	Suggestions    *Suggestions `json:"suggestions,omitempty"`
	CatalogVersion uint64       `json:"catalog_version"`
}

// Explanation is the parse-only view of a query.
type Explanation struct {
	Query       string             `json:"query"`
	Parsed      *query.ParsedQuery `json:"parsed"`
	Canonical   string             `json:"canonical"`
	Description string             `json:"description"`
	Terms       []string           `json:"terms"`
}

// Executor runs searches against a catalog.
type Executor struct {
	catalog Snapshotter
	parser  query.Parser
	sorter  *ranker.Sorter
	history *suggest.History
	cfg     config.SearchConfig
	metrics *metrics.Metrics
	tracer  *tracing.Tracer
	logger  *slog.Logger

	mu        sync.Mutex
	suggester *suggest.Suggester
	vocabFor  uint64
}

// Option customises an Executor.
type Option func(*Executor)

// WithMetrics records search metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// WithTracer traces sampled searches.
func WithTracer(t *tracing.Tracer) Option {
	return func(e *Executor) { e.tracer = t }
}

// WithScorer replaces the relevance scorer built from the config.
func WithScorer(s *ranker.Scorer) Option {
	return func(e *Executor) { e.sorter = ranker.NewSorter(s) }
}

// New creates an Executor over catalog.
func New(catalog Snapshotter, cfg config.SearchConfig, opts ...Option) *Executor {
	e := &Executor{
		catalog: catalog,
		parser:  query.DefaultParser,
		sorter:  ranker.NewSorter(ranker.NewScorer(cfg.RecencyWindow)),
		history: suggest.NewHistory(cfg.HistorySize),
		cfg:     cfg,
		logger:  slog.Default().With("component", "query-executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// History is the recent-search list fed by Execute.
func (e *Executor) History() *suggest.History {
	return e.history
}

// Explain parses raw without searching.
func (e *Executor) Explain(raw string) *Explanation {
	parsed := e.parser.Parse(raw)
	return &Explanation{
		Query:       raw,
		Parsed:      parsed,
		Canonical:   query.FormatQuery(parsed),
		Description: query.Describe(parsed),
		Terms:       query.Terms(parsed),
	}
}

func (e *Executor) normalize(req *Request) error {
	if req.Offset < 0 {
		return apperrors.Invalid("offset must not be negative, got %d", req.Offset)
	}
	if req.Limit < 0 {
		return apperrors.Invalid("limit must not be negative, got %d", req.Limit)
	}
	if req.Limit == 0 {
		req.Limit = e.cfg.DefaultLimit
	}
	if e.cfg.MaxResults > 0 && req.Limit > e.cfg.MaxResults {
		req.Limit = e.cfg.MaxResults
	}
	if req.Order != "" && !req.Order.Valid() {
		return apperrors.Invalid("order %q must be asc or desc", req.Order)
	}
	if req.SortBy == "" {
		req.SortBy = ranker.SortRelevance
	}
	if req.SortConfig != nil {
		if err := req.SortConfig.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Execute runs req against the current snapshot. A search that matches
// nothing is not an error; it carries suggestions instead.
func (e *Executor) Execute(ctx context.Context, req Request) (*SearchResult, error) {
	start := time.Now()
	if err := e.normalize(&req); err != nil {
		e.observe("error", 0)
		return nil, err
	}

	ctx, span := e.tracer.Start(ctx, "search")
	defer span.End()
	span.SetAttr("query", req.Query)

	snap := e.catalog.Snapshot()

	_, parseSpan := tracing.StartChild(ctx, "parse")
	parsed := e.parser.Parse(req.Query)
	parseSpan.SetAttr("conditions", len(parsed.Conditions))
	parseSpan.End()
	if e.metrics != nil {
		e.metrics.QueryConditions.WithLabelValues(string(parsed.LogicalOperator)).Observe(float64(len(parsed.Conditions)))
	}

	filterCtx, filterSpan := tracing.StartChild(ctx, "filter")
	matched, err := Filter(filterCtx, snap.Items, parsed)
	filterSpan.SetAttr("matched", len(matched))
	filterSpan.End()
	if err != nil {
		e.observe("error", 0)
		return nil, err
	}

	_, sortSpan := tracing.StartChild(ctx, "sort")
	ordered, err := e.order(matched, parsed, req)
	sortSpan.End()
	if err != nil {
		e.observe("error", 0)
		return nil, err
	}

	result := &SearchResult{
		Query:          req.Query,
		Canonical:      query.FormatQuery(parsed),
		Description:    query.Describe(parsed),
		TotalHits:      len(ordered),
		Limit:          req.Limit,
		Offset:         req.Offset,
		CatalogVersion: snap.Version,
	}

	page := paginate(ordered, req.Offset, req.Limit)
	_, hlSpan := tracing.StartChild(ctx, "highlight")
	result.Results = e.hits(page, parsed, req.Highlight)
	hlSpan.End()

	trimmed := strings.TrimSpace(req.Query)
	if result.TotalHits == 0 && trimmed != "" {
		_, sugSpan := tracing.StartChild(ctx, "suggest")
		result.Suggestions = e.suggestions(snap, query.RelevanceText(trimmed, parsed), e.cfg.SuggestionLimit)
		sugSpan.End()
	}
	if trimmed != "" {
		e.history.Add(trimmed)
	}

	resultType := "hit"
	if result.TotalHits == 0 {
		resultType = "zero_result"
	}
	e.observe(resultType, result.TotalHits)
	span.SetAttr("total_hits", result.TotalHits)

	logger.FromContext(ctx).Info("search executed",
		"component", "query-executor",
		"query", req.Query,
		"conditions", len(parsed.Conditions),
		"logical_operator", parsed.LogicalOperator,
		"total_hits", result.TotalHits,
		"returned", len(result.Results),
		"catalog_version", snap.Version,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

func (e *Executor) order(items []*inventory.Item, parsed *query.ParsedQuery, req Request) ([]ranker.Scored, error) {
	if req.SortConfig != nil {
		sorted, err := ranker.MultiSort(items, *req.SortConfig)
		if err != nil {
			return nil, err
		}
		out := make([]ranker.Scored, len(sorted))
		for i, it := range sorted {
			out[i] = ranker.Scored{Item: it}
		}
		return out, nil
	}
	return e.sorter.Sort(items, req.SortBy, req.Order, query.RelevanceText(req.Query, parsed))
}

func paginate(scored []ranker.Scored, offset, limit int) []ranker.Scored {
	if offset >= len(scored) {
		return nil
	}
	end := len(scored)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return scored[offset:end]
}

func (e *Executor) hits(page []ranker.Scored, parsed *query.ParsedQuery, withHighlights bool) []Hit {
	hits := make([]Hit, len(page))
	var terms []string
	if withHighlights {
		terms = query.Terms(parsed)
	}
	for i, s := range page {
		hits[i] = Hit{Item: s.Item, Score: s.Score}
		if len(terms) == 0 {
			continue
		}
		hl := map[string]string{"name": highlight.HTML(s.Item.Name, terms)}
		if s.Item.Description != "" {
			hl["description"] = highlight.HTML(s.Item.Description, terms)
		}
		hits[i].Highlights = hl
	}
	return hits
}

// Suggest returns did-you-mean and related searches for q without running
// a search.
func (e *Executor) Suggest(q string, max int) *Suggestions {
	if max <= 0 {
		max = e.cfg.SuggestionLimit
	}
	parsed := e.parser.Parse(q)
	return e.suggestions(e.catalog.Snapshot(), query.RelevanceText(strings.TrimSpace(q), parsed), max)
}

func (e *Executor) suggestions(snap *source.Snapshot, text string, max int) *Suggestions {
	s := e.suggesterFor(snap)
	out := &Suggestions{
		DidYouMean: s.DidYouMean(text, e.history.Recent(e.cfg.HistorySize), max),
		Related:    s.Related(text, max),
	}
	if out.DidYouMean == nil {
		out.DidYouMean = []string{}
	}
	if out.Related == nil {
		out.Related = []string{}
	}
	if e.metrics != nil {
		e.metrics.SuggestionsServed.Add(float64(len(out.DidYouMean) + len(out.Related)))
	}
	return out
}

// suggesterFor rebuilds the vocabulary when the snapshot version moves.
func (e *Executor) suggesterFor(snap *source.Snapshot) *suggest.Suggester {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.suggester == nil || e.vocabFor != snap.Version {
		e.suggester = suggest.New(snap.Items)
		e.vocabFor = snap.Version
		e.logger.Debug("suggestion vocabulary rebuilt",
			"version", snap.Version,
			"words", e.suggester.VocabularySize(),
		)
	}
	return e.suggester
}

func (e *Executor) observe(resultType string, total int) {
	if e.metrics == nil {
		return
	}
	e.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	if resultType != "error" {
		e.metrics.SearchResultsCount.Observe(float64(total))
	}
}
