// Package ranker scores items against free-text queries and orders result
// lists, either by a single sort key or by a multi-level SortConfig.
package ranker

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/inventory"
)

// DefaultRecencyWindow is how recently an item must have been updated to
// earn the recency boost.
const DefaultRecencyWindow = 7 * 24 * time.Hour

// Weights is the additive point table used by Scorer.
type Weights struct {
	NameExact    float64
	NamePrefix   float64
	NameContains float64
	Description  float64
	Tag          float64
	Category     float64
	Location     float64
	CodeExact    float64
	CodeContains float64
	Recent       float64
	LowStock     float64
}

// DefaultWeights returns the canonical table.
func DefaultWeights() Weights {
	return Weights{
		NameExact:    100,
		NamePrefix:   80,
		NameContains: 50,
		Description:  30,
		Tag:          40,
		Category:     35,
		Location:     25,
		CodeExact:    90,
		CodeContains: 45,
		Recent:       10,
		LowStock:     5,
	}
}

var weightNames = map[string]func(*Weights) *float64{
	"nameExact":    func(w *Weights) *float64 { return &w.NameExact },
	"namePrefix":   func(w *Weights) *float64 { return &w.NamePrefix },
	"nameContains": func(w *Weights) *float64 { return &w.NameContains },
	"description":  func(w *Weights) *float64 { return &w.Description },
	"tag":          func(w *Weights) *float64 { return &w.Tag },
	"category":     func(w *Weights) *float64 { return &w.Category },
	"location":     func(w *Weights) *float64 { return &w.Location },
	"codeExact":    func(w *Weights) *float64 { return &w.CodeExact },
	"codeContains": func(w *Weights) *float64 { return &w.CodeContains },
	"recent":       func(w *Weights) *float64 { return &w.Recent },
	"lowStock":     func(w *Weights) *float64 { return &w.LowStock },
}

// ParseWeights applies named overrides, as found under search.weights in the
// service config, on top of DefaultWeights. Unknown names and negative points
// are errors.
func ParseWeights(overrides map[string]float64) (Weights, error) {
	w := DefaultWeights()
	names := slices.Sorted(maps.Keys(overrides))
	for _, name := range names {
		field, ok := weightNames[name]
		if !ok {
			return Weights{}, fmt.Errorf("unknown relevance weight %q", name)
		}
		points := overrides[name]
		if points < 0 {
			return Weights{}, fmt.Errorf("relevance weight %q must not be negative, got %v", name, points)
		}
		*field(&w) = points
	}
	return w, nil
}

// Scorer computes relevance scores. It is safe for concurrent use.
type Scorer struct {
	weights Weights
	window  time.Duration
	now     func() time.Time
}

// ScorerOption customises a Scorer.
type ScorerOption func(*Scorer)

// WithWeights replaces the default point table.
func WithWeights(w Weights) ScorerOption {
	return func(s *Scorer) { s.weights = w }
}

// WithClock sets the time source used for the recency boost.
func WithClock(now func() time.Time) ScorerOption {
	return func(s *Scorer) { s.now = now }
}

// NewScorer returns a Scorer with the default weights. A non-positive window
// falls back to DefaultRecencyWindow.
func NewScorer(window time.Duration, opts ...ScorerOption) *Scorer {
	if window <= 0 {
		window = DefaultRecencyWindow
	}
	s := &Scorer{
		weights: DefaultWeights(),
		window:  window,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score returns the relevance of item for query. Every matching signal adds
// its weight; there is no upper bound. An empty query scores only the
// recency and low-stock boosts.
func (s *Scorer) Score(item *inventory.Item, query string) float64 {
	w := s.weights
	q := strings.ToLower(strings.TrimSpace(query))
	var score float64

	if q != "" {
		name := strings.ToLower(item.Name)
		switch {
		case name == q:
			score += w.NameExact
		case strings.HasPrefix(name, q):
			score += w.NamePrefix
		case strings.Contains(name, q):
			score += w.NameContains
		}
		if containsFold(item.Description, q) {
			score += w.Description
		}
		for _, tag := range item.Tags {
			if containsFold(tag, q) {
				score += w.Tag
				break
			}
		}
		if containsFold(item.Category, q) {
			score += w.Category
		}
		if containsFold(item.Location, q) {
			score += w.Location
		}
		switch {
		case strings.EqualFold(item.SKU, q) || strings.EqualFold(item.Barcode, q):
			score += w.CodeExact
		case containsFold(item.SKU, q) || containsFold(item.Barcode, q):
			score += w.CodeContains
		}
	}

	if s.recent(item.UpdatedAt) {
		score += w.Recent
	}
	if item.LowStock {
		score += w.LowStock
	}
	return score
}

func (s *Scorer) recent(updatedAt string) bool {
	t, ok := inventory.ParseTime(updatedAt)
	if !ok {
		return false
	}
	return s.now().Sub(t) <= s.window
}

// containsFold reports whether lowered q occurs in s; empty s never matches.
func containsFold(s, q string) bool {
	if s == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s), q)
}
