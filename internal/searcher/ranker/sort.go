package ranker

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/inventory"
	apperrors "github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/errors"
)

// SortKey selects the ordering used by Sort.
type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortName      SortKey = "name"
	SortDate      SortKey = "date"
	SortPrice     SortKey = "price"
	SortQuantity  SortKey = "quantity"
)

// Valid reports whether k is one of the sort keys above.
func (k SortKey) Valid() bool {
	switch k {
	case SortRelevance, SortName, SortDate, SortPrice, SortQuantity:
		return true
	}
	return false
}

// Direction is an ascending or descending order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Valid reports whether d is asc or desc.
func (d Direction) Valid() bool {
	return d == Asc || d == Desc
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// Scored pairs an item with the relevance score computed for one sort call.
// Items themselves are never annotated.
type Scored struct {
	Item  *inventory.Item `json:"item"`
	Score float64         `json:"score"`
}

// Items unwraps the item pointers, keeping order.
func Items(scored []Scored) []*inventory.Item {
	out := make([]*inventory.Item, len(scored))
	for i, s := range scored {
		out[i] = s.Item
	}
	return out
}

// Sorter orders result lists.
type Sorter struct {
	scorer *Scorer
	tag    language.Tag
}

// NewSorter returns a Sorter using scorer for relevance ordering. Names are
// compared with English collation.
func NewSorter(scorer *Scorer) *Sorter {
	if scorer == nil {
		scorer = NewScorer(DefaultRecencyWindow)
	}
	return &Sorter{scorer: scorer, tag: language.English}
}

// Sort returns a new ordering of items. Relevance sorts descending unless
// direction is asc; the other keys sort ascending unless direction is desc.
// An unknown key sorts by name ascending whatever the direction. Equal keys
// keep their input order. Scores are only computed for relevance.
func (s *Sorter) Sort(items []*inventory.Item, sortBy SortKey, direction Direction, query string) ([]Scored, error) {
	if items == nil {
		return nil, apperrors.Invalid("items must not be nil")
	}
	entries := make([]entry, len(items))
	for i, item := range items {
		if item == nil {
			return nil, apperrors.Invalid("item at index %d is nil", i)
		}
		entries[i].Item = item
	}

	desc := direction == Desc
	switch sortBy {
	case SortRelevance:
		for i := range entries {
			entries[i].Score = s.scorer.Score(entries[i].Item, query)
			entries[i].key = entries[i].Score
		}
		desc = direction != Asc
	case SortDate:
		for i := range entries {
			if t, ok := inventory.ParseTime(entries[i].Item.UpdatedAt); ok {
				entries[i].key = float64(t.UnixMilli())
			}
		}
	case SortPrice:
		for i := range entries {
			entries[i].key = orZero(entries[i].Item.Price)
		}
	case SortQuantity:
		for i := range entries {
			entries[i].key = orZero(entries[i].Item.Quantity)
		}
	case SortName:
	default:
		sortBy = SortName
		desc = false
	}

	if sortBy == SortName {
		coll := collate.New(s.tag, collate.IgnoreCase)
		sort.SliceStable(entries, func(i, j int) bool {
			c := coll.CompareString(entries[i].Item.Name, entries[j].Item.Name)
			if desc {
				return c > 0
			}
			return c < 0
		})
	} else {
		sort.SliceStable(entries, func(i, j int) bool {
			if desc {
				return entries[i].key > entries[j].key
			}
			return entries[i].key < entries[j].key
		})
	}

	out := make([]Scored, len(entries))
	for i, e := range entries {
		out[i] = e.Scored
	}
	return out, nil
}

type entry struct {
	Scored
	key float64
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
