// Package handler exposes the inventory search service over HTTP/JSON.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/inventory/source"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/preferences"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/middleware"
)

// maxBodyBytes caps preset and sort-config request bodies.
const maxBodyBytes = 64 << 10

// SearchExecutor runs searches.
type SearchExecutor interface {
	Execute(ctx context.Context, req executor.Request) (*executor.SearchResult, error)
	Explain(raw string) *executor.Explanation
	Suggest(q string, max int) *executor.Suggestions
}

// Catalog is the snapshot holder the handler reads and reloads.
type Catalog interface {
	Snapshot() *source.Snapshot
	Reload(ctx context.Context) (*source.Snapshot, error)
}

// Handler serves the search API. Cache, preferences, tracker, and metrics
// are optional.
type Handler struct {
	executor SearchExecutor
	catalog  Catalog
	cache    *cache.QueryCache
	prefs    *preferences.Store
	tracker  analytics.Tracker
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// Deps groups the optional collaborators of a Handler.
type Deps struct {
	Cache       *cache.QueryCache
	Preferences *preferences.Store
	Tracker     analytics.Tracker
	Metrics     *metrics.Metrics
}

// New creates a Handler.
func New(exec SearchExecutor, catalog Catalog, deps Deps) *Handler {
	return &Handler{
		executor: exec,
		catalog:  catalog,
		cache:    deps.Cache,
		prefs:    deps.Preferences,
		tracker:  deps.Tracker,
		metrics:  deps.Metrics,
		logger:   slog.Default().With("component", "search-handler"),
	}
}

// Register mounts every route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/items/search", h.Search)
	mux.HandleFunc("GET /api/v1/query/parse", h.Parse)
	mux.HandleFunc("GET /api/v1/suggest", h.Suggest)
	mux.HandleFunc("GET /api/v1/presets", h.ListPresets)
	mux.HandleFunc("GET /api/v1/presets/{key}", h.GetPreset)
	mux.HandleFunc("PUT /api/v1/presets/{key}", h.PutPreset)
	mux.HandleFunc("DELETE /api/v1/presets/{key}", h.DeletePreset)
	mux.HandleFunc("GET /api/v1/sort-configs/{key}", h.GetSortConfig)
	mux.HandleFunc("PUT /api/v1/sort-configs/{key}", h.PutSortConfig)
	mux.HandleFunc("POST /api/v1/sort-configs/{key}/promote/{index}", h.PromoteSort)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("POST /api/v1/catalog/reload", h.ReloadCatalog)
}

// Search handles GET /api/v1/items/search. A preset parameter fills in the
// query and sort of a saved filter; explicit parameters win. A sort_config
// parameter orders by the stored multi-level config under that key.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	req, err := h.searchRequest(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	version := h.catalog.Snapshot().Version
	var result *executor.SearchResult
	cacheHit := false
	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, req, version, func() (*executor.SearchResult, error) {
			return h.executor.Execute(ctx, req)
		})
	} else {
		result, err = h.executor.Execute(ctx, req)
	}
	if err != nil {
		log.Error("search execution failed", "query", req.Query, "error", err)
		h.writeError(w, err)
		return
	}

	latency := time.Since(start)
	if h.metrics != nil {
		status := "miss"
		switch {
		case h.cache == nil || !h.cache.Enabled():
			status = "bypass"
		case cacheHit:
			status = "hit"
		}
		h.metrics.SearchLatency.WithLabelValues(status).Observe(latency.Seconds())
	}
	log.Info("search completed",
		"query", req.Query,
		"total_hits", result.TotalHits,
		"returned", len(result.Results),
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)
	h.track(ctx, req, result, cacheHit, latency)
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) searchRequest(r *http.Request) (executor.Request, error) {
	params := r.URL.Query()
	req := executor.Request{
		Query:  params.Get("q"),
		SortBy: ranker.SortKey(strings.ToLower(params.Get("sort"))),
		Order:  ranker.Direction(strings.ToLower(params.Get("order"))),
	}
	var err error
	if req.Limit, err = intParam(params.Get("limit"), "limit"); err != nil {
		return req, err
	}
	if req.Offset, err = intParam(params.Get("offset"), "offset"); err != nil {
		return req, err
	}
	if v := params.Get("highlight"); v != "" {
		if req.Highlight, err = strconv.ParseBool(v); err != nil {
			return req, apperrors.Invalid("highlight must be a boolean, got %q", v)
		}
	}

	if key := params.Get("preset"); key != "" {
		if h.prefs == nil {
			return req, apperrors.Disabled("preferences")
		}
		preset, err := h.prefs.Preset(r.Context(), key)
		if err != nil {
			return req, err
		}
		if req.Query == "" {
			req.Query = preset.Query
		}
		if req.SortBy == "" {
			req.SortBy = preset.SortBy
		}
		if req.Order == "" {
			req.Order = preset.Order
		}
	}
	if key := params.Get("sort_config"); key != "" {
		if h.prefs == nil {
			return req, apperrors.Disabled("preferences")
		}
		cfg, err := h.prefs.SortConfig(r.Context(), key)
		if err != nil {
			return req, err
		}
		req.SortConfig = &cfg
	}
	return req, nil
}

func intParam(v, name string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, apperrors.Invalid("%s must be a non-negative integer", name)
	}
	return n, nil
}

func (h *Handler) track(ctx context.Context, req executor.Request, result *executor.SearchResult, cacheHit bool, latency time.Duration) {
	if h.tracker == nil {
		return
	}
	eventType := analytics.EventSearch
	if result.TotalHits == 0 {
		eventType = analytics.EventZeroResult
	}
	explained := h.executor.Explain(req.Query)
	fields := make([]string, 0, len(explained.Parsed.Conditions))
	for _, c := range explained.Parsed.Conditions {
		fields = append(fields, c.Field)
	}
	sortBy := string(req.SortBy)
	if req.SortConfig != nil {
		sortBy = req.SortConfig.String()
	}
	suggestions := 0
	if s := result.Suggestions; s != nil {
		suggestions = len(s.DidYouMean) + len(s.Related)
	}
	h.tracker.Track(analytics.SearchEvent{
		Type:            eventType,
		Query:           req.Query,
		Canonical:       explained.Canonical,
		LogicalOperator: string(explained.Parsed.LogicalOperator),
		Fields:          fields,
		SortBy:          sortBy,
		TotalHits:       result.TotalHits,
		Returned:        len(result.Results),
		Suggestions:     suggestions,
		LatencyMs:       latency.Milliseconds(),
		CacheHit:        cacheHit,
		CatalogVersion:  result.CatalogVersion,
		Timestamp:       time.Now().UTC(),
		RequestID:       middleware.GetRequestID(ctx),
	})
}

// Parse handles GET /api/v1/query/parse.
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.executor.Explain(r.URL.Query().Get("q")))
}

// Suggest handles GET /api/v1/suggest.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	max, err := intParam(r.URL.Query().Get("max"), "max")
	if err != nil {
		h.writeError(w, err)
		return
	}
	s := h.executor.Suggest(q, max)
	if h.tracker != nil && strings.TrimSpace(q) != "" {
		h.tracker.Track(analytics.SearchEvent{
			Type:        analytics.EventSuggest,
			Query:       q,
			Suggestions: len(s.DidYouMean) + len(s.Related),
			Timestamp:   time.Now().UTC(),
			RequestID:   middleware.GetRequestID(r.Context()),
		})
	}
	h.writeJSON(w, http.StatusOK, s)
}

// ListPresets handles GET /api/v1/presets.
func (h *Handler) ListPresets(w http.ResponseWriter, r *http.Request) {
	if !h.requirePrefs(w) {
		return
	}
	presets, err := h.prefs.Presets(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"presets": presets})
}

// GetPreset handles GET /api/v1/presets/{key}.
func (h *Handler) GetPreset(w http.ResponseWriter, r *http.Request) {
	if !h.requirePrefs(w) {
		return
	}
	preset, err := h.prefs.Preset(r.Context(), r.PathValue("key"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, preset)
}

// PutPreset handles PUT /api/v1/presets/{key}.
func (h *Handler) PutPreset(w http.ResponseWriter, r *http.Request) {
	if !h.requirePrefs(w) {
		return
	}
	var in preferences.PresetInput
	if err := decodeBody(w, r, &in); err != nil {
		h.writeError(w, err)
		return
	}
	preset, err := h.prefs.SavePreset(r.Context(), r.PathValue("key"), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, preset)
}

// DeletePreset handles DELETE /api/v1/presets/{key}.
func (h *Handler) DeletePreset(w http.ResponseWriter, r *http.Request) {
	if !h.requirePrefs(w) {
		return
	}
	if err := h.prefs.DeletePreset(r.Context(), r.PathValue("key")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSortConfig handles GET /api/v1/sort-configs/{key}.
func (h *Handler) GetSortConfig(w http.ResponseWriter, r *http.Request) {
	if !h.requirePrefs(w) {
		return
	}
	cfg, err := h.prefs.SortConfig(r.Context(), r.PathValue("key"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, cfg)
}

// PutSortConfig handles PUT /api/v1/sort-configs/{key}.
func (h *Handler) PutSortConfig(w http.ResponseWriter, r *http.Request) {
	if !h.requirePrefs(w) {
		return
	}
	var cfg ranker.SortConfig
	if err := decodeBody(w, r, &cfg); err != nil {
		h.writeError(w, err)
		return
	}
	if cfg.Secondary == nil {
		cfg.Secondary = []ranker.SortField{}
	}
	if err := h.prefs.SaveSortConfig(r.Context(), r.PathValue("key"), cfg); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, cfg)
}

// PromoteSort handles POST /api/v1/sort-configs/{key}/promote/{index}.
func (h *Handler) PromoteSort(w http.ResponseWriter, r *http.Request) {
	if !h.requirePrefs(w) {
		return
	}
	i, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		h.writeError(w, apperrors.Invalid("index must be an integer"))
		return
	}
	cfg, err := h.prefs.PromoteSort(r.Context(), r.PathValue("key"), i)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, cfg)
}

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil || !h.cache.Enabled() {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

// CacheInvalidate handles POST /api/v1/cache/invalidate.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil || !h.cache.Enabled() {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "caching is disabled"})
		return
	}
	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cache invalidation failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

// ReloadCatalog handles POST /api/v1/catalog/reload.
func (h *Handler) ReloadCatalog(w http.ResponseWriter, r *http.Request) {
	snap, err := h.catalog.Reload(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"version":   snap.Version,
		"items":     len(snap.Items),
		"source":    snap.Source,
		"loaded_at": snap.LoadedAt,
	})
}

func (h *Handler) requirePrefs(w http.ResponseWriter) bool {
	if h.prefs == nil {
		h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "preferences are disabled"})
		return false
	}
	return true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.Invalid("invalid request body: %v", err)
	}
	return nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status, resp := apperrors.Public(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "status", status, "code", resp.Code, "error", err)
	}
	h.writeJSON(w, status, resp)
}
