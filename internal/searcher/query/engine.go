package query

import (
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/inventory"
	apperrors "github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/errors"
)

// Match reports whether item satisfies the whole query. An empty query
// matches everything.
func (q *ParsedQuery) Match(item *inventory.Item) bool {
	if q.Empty() {
		return true
	}
	if q.LogicalOperator == LogicalOr {
		for _, cond := range q.Conditions {
			if Matches(item, cond) {
				return true
			}
		}
		return false
	}
	for _, cond := range q.Conditions {
		if !Matches(item, cond) {
			return false
		}
	}
	return true
}

// Apply filters items by q, keeping the original relative order. A query
// without conditions returns items as is. Bad query text never errors; a
// nil query or a nil entry in items does, since that is a caller bug.
func Apply(items []*inventory.Item, q *ParsedQuery) ([]*inventory.Item, error) {
	if q == nil {
		return nil, apperrors.Invalid("parsed query is nil")
	}
	if err := CheckItems(items); err != nil {
		return nil, err
	}
	if len(q.Conditions) == 0 {
		return items, nil
	}
	out := make([]*inventory.Item, 0, len(items))
	for _, item := range items {
		if q.Match(item) {
			out = append(out, item)
		}
	}
	return out, nil
}

// CheckItems rejects item slices holding nil entries.
func CheckItems(items []*inventory.Item) error {
	for i, item := range items {
		if item == nil {
			return apperrors.Invalid("item at index %d is nil", i)
		}
	}
	return nil
}
