package ranker

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/inventory"
	apperrors "github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/errors"
)

func itemIDs(items []*inventory.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestMultiSort(t *testing.T) {
	items := []*inventory.Item{
		{ID: "a", Name: "Desk", Category: "Furniture", Price: inventory.Float(200)},
		{ID: "b", Name: "mouse", Category: "Electronics", Price: inventory.Float(30)},
		{ID: "c", Name: "Monitor", Category: "Electronics", Price: inventory.Float(350)},
		{ID: "d", Name: "Cable", Price: inventory.Float(5)},
		{ID: "e", Name: "Chair", Category: "furniture", Price: inventory.Float(200)},
	}
	tests := []struct {
		name string
		cfg  SortConfig
		want []string
	}{
		{
			"category then price desc",
			SortConfig{Primary: SortField{"category", Asc}, Secondary: []SortField{{"price", Desc}}},
			[]string{"d", "c", "b", "a", "e"},
		},
		{
			"price then name",
			SortConfig{Primary: SortField{"price", Desc}, Secondary: []SortField{{"name", Asc}}},
			[]string{"c", "e", "a", "b", "d"},
		},
		{
			"all ties keep input order",
			SortConfig{Primary: SortField{"location", Asc}},
			[]string{"a", "b", "c", "d", "e"},
		},
		{
			"missing last when descending",
			SortConfig{Primary: SortField{"category", Desc}, Secondary: []SortField{{"name", Asc}}},
			[]string{"e", "a", "c", "b", "d"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MultiSort(items, tt.cfg)
			if err != nil {
				t.Fatalf("MultiSort: %v", err)
			}
			if !reflect.DeepEqual(itemIDs(got), tt.want) {
				t.Errorf("order = %v, want %v", itemIDs(got), tt.want)
			}
		})
	}
}

func TestMultiSortDatesCompareAsInstants(t *testing.T) {
	items := []*inventory.Item{
		{ID: "later", Name: "x", UpdatedAt: "2024-03-01T09:00:00-02:00"},
		{ID: "earlier", Name: "y", UpdatedAt: "2024-03-01T10:00:00Z"},
		{ID: "none", Name: "z"},
	}
	for _, field := range []string{"updatedAt", "date"} {
		got, err := MultiSort(items, SortConfig{Primary: SortField{field, Asc}})
		if err != nil {
			t.Fatalf("MultiSort: %v", err)
		}
		want := []string{"none", "earlier", "later"}
		if !reflect.DeepEqual(itemIDs(got), want) {
			t.Errorf("%s: order = %v, want %v", field, itemIDs(got), want)
		}
	}
}

func TestSortConfigPromote(t *testing.T) {
	cfg := SortConfig{
		Primary:   SortField{"name", Asc},
		Secondary: []SortField{{"price", Desc}, {"quantity", Asc}, {"category", Asc}},
	}
	if err := cfg.Promote(1); err != nil {
		t.Fatalf("Promote: %v", err)
	}
	want := SortConfig{
		Primary:   SortField{"quantity", Asc},
		Secondary: []SortField{{"price", Desc}, {"name", Asc}, {"category", Asc}},
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("cfg = %+v, want %+v", cfg, want)
	}
	if err := cfg.Promote(3); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("out of range Promote error = %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate after Promote: %v", err)
	}
}

func TestSortConfigEditing(t *testing.T) {
	cfg := DefaultSortConfig()
	if err := cfg.AddSecondary("price", Desc); err != nil {
		t.Fatalf("AddSecondary: %v", err)
	}
	if err := cfg.AddSecondary("quantity", Asc); err != nil {
		t.Fatalf("AddSecondary: %v", err)
	}
	if err := cfg.AddSecondary("Name", Asc); err == nil {
		t.Error("AddSecondary accepted the primary field")
	}
	if err := cfg.AddSecondary("price", Asc); err == nil {
		t.Error("AddSecondary accepted a duplicate secondary")
	}

	if err := cfg.SetPrimary("price", Asc); err != nil {
		t.Fatalf("SetPrimary: %v", err)
	}
	if cfg.Primary != (SortField{"price", Asc}) {
		t.Errorf("Primary = %+v, want price asc", cfg.Primary)
	}
	if cfg.Secondary[0] != (SortField{"name", Asc}) {
		t.Errorf("Secondary[0] = %+v, want name asc", cfg.Secondary[0])
	}

	if !cfg.Toggle("quantity") || cfg.Secondary[1].Order != Desc {
		t.Errorf("Toggle(quantity) did not flip: %+v", cfg.Secondary)
	}
	if !cfg.Toggle("price") || cfg.Primary.Order != Desc {
		t.Errorf("Toggle(price) did not flip primary: %+v", cfg.Primary)
	}
	if cfg.Toggle("location") {
		t.Error("Toggle of an unused field reported true")
	}

	if err := cfg.RemoveSecondary(0); err != nil {
		t.Fatalf("RemoveSecondary: %v", err)
	}
	if len(cfg.Secondary) != 1 || cfg.Secondary[0].Field != "quantity" {
		t.Errorf("Secondary = %+v, want [quantity]", cfg.Secondary)
	}
	if err := cfg.RemoveSecondary(5); err == nil {
		t.Error("RemoveSecondary accepted out of range index")
	}
	if got := cfg.String(); got != "price desc, quantity desc" {
		t.Errorf("String() = %q", got)
	}
}

func TestSortConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  SortConfig
		ok   bool
	}{
		{"default", DefaultSortConfig(), true},
		{"no primary", SortConfig{}, false},
		{"bad order", SortConfig{Primary: SortField{"name", "up"}}, false},
		{"duplicate", SortConfig{Primary: SortField{"name", Asc}, Secondary: []SortField{{"NAME", Desc}}}, false},
		{"empty secondary", SortConfig{Primary: SortField{"name", Asc}, Secondary: []SortField{{"", Asc}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}
