// Package analytics records what users search for. The search service emits
// one SearchEvent per request through a Tracker; the analytics service
// consumes them from Kafka and aggregates them for dashboards.
package analytics

import "time"

type EventType string

const (
	EventSearch     EventType = "search"
	EventZeroResult EventType = "zero_result"
	EventSuggest    EventType = "suggest"
)

// SearchEvent describes one served search or suggestion request.
type SearchEvent struct {
	Type            EventType `json:"type"`
	Query           string    `json:"query"`
	Canonical       string    `json:"canonical"`
	LogicalOperator string    `json:"logical_operator,omitempty"`
	Fields          []string  `json:"fields,omitempty"`
	SortBy          string    `json:"sort_by,omitempty"`
	TotalHits       int       `json:"total_hits"`
	Returned        int       `json:"returned"`
	Suggestions     int       `json:"suggestions,omitempty"`
	LatencyMs       int64     `json:"latency_ms"`
	CacheHit        bool      `json:"cache_hit"`
	CatalogVersion  uint64    `json:"catalog_version"`
	Timestamp       time.Time `json:"timestamp"`
	RequestID       string    `json:"request_id,omitempty"`
}

// Tracker accepts search events. Implementations must not block the caller.
type Tracker interface {
	Track(event SearchEvent)
}
