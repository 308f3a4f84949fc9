package ranker

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/inventory"
	apperrors "github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/errors"
)

// SortField is one level of a multi-level sort.
type SortField struct {
	Field string    `json:"field"`
	Order Direction `json:"order"`
}

// SortConfig orders by Primary, then by each Secondary entry in turn. The
// primary field never appears among the secondaries.
type SortConfig struct {
	Primary   SortField   `json:"primary"`
	Secondary []SortField `json:"secondary"`
}

// DefaultSortConfig sorts by name ascending.
func DefaultSortConfig() SortConfig {
	return SortConfig{
		Primary:   SortField{Field: "name", Order: Asc},
		Secondary: []SortField{},
	}
}

// Validate checks orders and that no field is used twice.
func (c *SortConfig) Validate() error {
	if strings.TrimSpace(c.Primary.Field) == "" {
		return apperrors.Invalid("primary sort field is required")
	}
	seen := map[string]bool{strings.ToLower(c.Primary.Field): true}
	if !c.Primary.Order.Valid() {
		return apperrors.Invalid("primary order %q must be asc or desc", c.Primary.Order)
	}
	for i, f := range c.Secondary {
		if strings.TrimSpace(f.Field) == "" {
			return apperrors.Invalid("secondary sort %d has no field", i)
		}
		if !f.Order.Valid() {
			return apperrors.Invalid("secondary sort %d order %q must be asc or desc", i, f.Order)
		}
		key := strings.ToLower(f.Field)
		if seen[key] {
			return apperrors.Invalid("sort field %q used more than once", f.Field)
		}
		seen[key] = true
	}
	return nil
}

// Promote makes Secondary[i] the primary. The previous primary takes its
// slot, so the other secondaries keep their order.
func (c *SortConfig) Promote(i int) error {
	if i < 0 || i >= len(c.Secondary) {
		return apperrors.Invalid("secondary index %d out of range [0, %d)", i, len(c.Secondary))
	}
	c.Primary, c.Secondary[i] = c.Secondary[i], c.Primary
	return nil
}

// SetPrimary sets the primary field and order. A field already present among
// the secondaries is promoted rather than duplicated.
func (c *SortConfig) SetPrimary(field string, order Direction) error {
	if strings.TrimSpace(field) == "" {
		return apperrors.Invalid("sort field is required")
	}
	if !order.Valid() {
		return apperrors.Invalid("order %q must be asc or desc", order)
	}
	if strings.EqualFold(c.Primary.Field, field) {
		c.Primary.Order = order
		return nil
	}
	if i := c.indexOf(field); i >= 0 {
		if err := c.Promote(i); err != nil {
			return err
		}
		c.Primary.Order = order
		return nil
	}
	c.Primary = SortField{Field: field, Order: order}
	return nil
}

// AddSecondary appends a secondary level.
func (c *SortConfig) AddSecondary(field string, order Direction) error {
	if strings.TrimSpace(field) == "" {
		return apperrors.Invalid("sort field is required")
	}
	if !order.Valid() {
		return apperrors.Invalid("order %q must be asc or desc", order)
	}
	if strings.EqualFold(c.Primary.Field, field) || c.indexOf(field) >= 0 {
		return apperrors.Invalid("sort field %q already in use", field)
	}
	c.Secondary = append(c.Secondary, SortField{Field: field, Order: order})
	return nil
}

// RemoveSecondary deletes Secondary[i].
func (c *SortConfig) RemoveSecondary(i int) error {
	if i < 0 || i >= len(c.Secondary) {
		return apperrors.Invalid("secondary index %d out of range [0, %d)", i, len(c.Secondary))
	}
	c.Secondary = append(c.Secondary[:i], c.Secondary[i+1:]...)
	return nil
}

// Toggle flips the order of field wherever it appears. It reports false when
// the config does not sort by field.
func (c *SortConfig) Toggle(field string) bool {
	if strings.EqualFold(c.Primary.Field, field) {
		c.Primary.Order = c.Primary.Order.Reverse()
		return true
	}
	if i := c.indexOf(field); i >= 0 {
		c.Secondary[i].Order = c.Secondary[i].Order.Reverse()
		return true
	}
	return false
}

func (c *SortConfig) indexOf(field string) int {
	for i, f := range c.Secondary {
		if strings.EqualFold(f.Field, field) {
			return i
		}
	}
	return -1
}

// Levels returns the primary followed by the secondaries.
func (c *SortConfig) Levels() []SortField {
	return append([]SortField{c.Primary}, c.Secondary...)
}

func (c *SortConfig) String() string {
	parts := make([]string, 0, len(c.Secondary)+1)
	for _, f := range c.Levels() {
		parts = append(parts, fmt.Sprintf("%s %s", f.Field, f.Order))
	}
	return strings.Join(parts, ", ")
}

// MultiSort returns items ordered by cfg. Ties across every level keep their
// input order.
func MultiSort(items []*inventory.Item, cfg SortConfig) ([]*inventory.Item, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	out := make([]*inventory.Item, len(items))
	for i, item := range items {
		if item == nil {
			return nil, apperrors.Invalid("item at index %d is nil", i)
		}
		out[i] = item
	}
	cmp := NewComparator(cfg)
	sort.SliceStable(out, func(i, j int) bool { return cmp.Compare(out[i], out[j]) < 0 })
	return out, nil
}

// Comparator compares items by a SortConfig. It holds a collator and must
// not be shared between goroutines.
type Comparator struct {
	levels []SortField
	coll   *collate.Collator
}

// NewComparator builds a Comparator for cfg. The field name "date" is read
// as updatedAt.
func NewComparator(cfg SortConfig) *Comparator {
	levels := cfg.Levels()
	for i := range levels {
		if strings.EqualFold(levels[i].Field, "date") {
			levels[i].Field = "updatedAt"
		}
	}
	return &Comparator{
		levels: levels,
		coll:   collate.New(language.English, collate.IgnoreCase),
	}
}

// Compare returns -1, 0 or 1. Levels are tried in order until one differs.
func (c *Comparator) Compare(a, b *inventory.Item) int {
	for _, level := range c.levels {
		r := c.compareField(a.Lookup(level.Field), b.Lookup(level.Field), isDateField(level.Field))
		if r == 0 {
			continue
		}
		if level.Order == Desc {
			return -r
		}
		return r
	}
	return 0
}

// compareField orders missing values first. Dates compare as instants,
// numbers numerically, and everything else as collated text.
func (c *Comparator) compareField(a, b inventory.Value, date bool) int {
	switch {
	case a.Missing() && b.Missing():
		return 0
	case a.Missing():
		return -1
	case b.Missing():
		return 1
	}
	if date {
		ta, okA := inventory.ParseTime(a.Str)
		tb, okB := inventory.ParseTime(b.Str)
		if okA && okB {
			return ta.Compare(tb)
		}
	}
	if a.Kind == inventory.KindNumber || a.Kind == inventory.KindBool ||
		b.Kind == inventory.KindNumber || b.Kind == inventory.KindBool {
		na, okA := inventory.ToComparableNumber(a)
		nb, okB := inventory.ToComparableNumber(b)
		if okA && okB {
			switch {
			case na < nb:
				return -1
			case na > nb:
				return 1
			default:
				return 0
			}
		}
	}
	return c.coll.CompareString(inventory.FormatScalar(a), inventory.FormatScalar(b))
}

func isDateField(field string) bool {
	switch strings.ToLower(field) {
	case "updatedat", "updated_at", "createdat", "created_at":
		return true
	}
	return false
}
