package inventory

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	maxIDLength   = 255
	maxNameLength = 1024
	maxTags       = 256
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	ItemID string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		keys = append(keys, field)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, field := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	prefix := "item"
	if e.ItemID != "" {
		prefix = fmt.Sprintf("item %q", e.ItemID)
	}
	return prefix + ": " + strings.Join(parts, "; ")
}

// Validate checks the invariants item sources rely on: a unique non-empty id,
// a name, finite numbers, and parseable timestamps.
func (it *Item) Validate() error {
	errs := make(map[string]string)

	id := strings.TrimSpace(it.ID)
	if id == "" {
		errs["id"] = "id is required"
	} else if len(id) > maxIDLength {
		errs["id"] = fmt.Sprintf("id must be at most %d characters", maxIDLength)
	}
	name := strings.TrimSpace(it.Name)
	if name == "" {
		errs["name"] = "name is required"
	} else if len(name) > maxNameLength {
		errs["name"] = fmt.Sprintf("name must be at most %d characters", maxNameLength)
	}
	if it.Price != nil && (math.IsNaN(*it.Price) || math.IsInf(*it.Price, 0)) {
		errs["price"] = "price must be a finite number"
	}
	if it.Quantity != nil && (math.IsNaN(*it.Quantity) || math.IsInf(*it.Quantity, 0)) {
		errs["quantity"] = "quantity must be a finite number"
	}
	if len(it.Tags) > maxTags {
		errs["tags"] = fmt.Sprintf("at most %d tags are allowed", maxTags)
	}
	if it.UpdatedAt != "" {
		if _, ok := ParseTime(it.UpdatedAt); !ok {
			errs["updatedAt"] = fmt.Sprintf("unrecognised timestamp %q", it.UpdatedAt)
		}
	}
	if it.CreatedAt != "" {
		if _, ok := ParseTime(it.CreatedAt); !ok {
			errs["createdAt"] = fmt.Sprintf("unrecognised timestamp %q", it.CreatedAt)
		}
	}
	if len(errs) > 0 {
		return &ValidationError{ItemID: it.ID, Fields: errs}
	}
	return nil
}
