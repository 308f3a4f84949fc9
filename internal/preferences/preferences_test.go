package preferences

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/errors"
)

func newTestStore() *Store {
	s := NewStore(NewMemory(), "test:")
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return s
}

func TestKey(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Dell Monitors", "dell-monitors"},
		{"  Low stock / Warehouse A ", "low-stock-warehouse-a"},
		{"already-slugged", "already-slugged"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Key(tt.name); got != tt.want {
				t.Errorf("Key(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestSavePreset(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	p, err := s.SavePreset(ctx, "", PresetInput{Name: "Dell Monitors", Query: "name:dell AND tags:monitor", SortBy: ranker.SortPrice, Order: ranker.Desc})
	if err != nil {
		t.Fatalf("SavePreset: %v", err)
	}
	if p.Key != "dell-monitors" {
		t.Errorf("Key = %q, want dell-monitors", p.Key)
	}
	if p.ID == "" {
		t.Error("ID not assigned")
	}

	got, err := s.Preset(ctx, "dell-monitors")
	if err != nil {
		t.Fatalf("Preset: %v", err)
	}
	if got.Query != p.Query || got.SortBy != ranker.SortPrice {
		t.Errorf("Preset = %+v, want %+v", got, p)
	}

	updated, err := s.SavePreset(ctx, "dell-monitors", PresetInput{Name: "Dell Monitors", Query: "name:dell"})
	if err != nil {
		t.Fatalf("SavePreset update: %v", err)
	}
	if updated.ID != p.ID || !updated.CreatedAt.Equal(p.CreatedAt) {
		t.Errorf("update changed identity: %+v vs %+v", updated, p)
	}
	if !updated.UpdatedAt.After(p.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want after %v", updated.UpdatedAt, p.UpdatedAt)
	}
}

func TestSavePresetInvalid(t *testing.T) {
	s := newTestStore()
	tests := []struct {
		name string
		key  string
		in   PresetInput
	}{
		{"no name", "", PresetInput{Query: "x"}},
		{"bad sort", "", PresetInput{Name: "a", SortBy: "weight"}},
		{"bad order", "", PresetInput{Name: "a", Order: "up"}},
		{"key slugs to nothing", "///", PresetInput{Name: "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.SavePreset(context.Background(), tt.key, tt.in)
			if !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestPresetsAndDelete(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	for _, name := range []string{"Zebra", "Apple", "Mango"} {
		if _, err := s.SavePreset(ctx, "", PresetInput{Name: name, Query: "name:" + name}); err != nil {
			t.Fatalf("SavePreset(%s): %v", name, err)
		}
	}
	// A sort config under the same prefix must not show up as a preset.
	if err := s.SaveSortConfig(ctx, "apple", ranker.DefaultSortConfig()); err != nil {
		t.Fatalf("SaveSortConfig: %v", err)
	}

	list, err := s.Presets(ctx)
	if err != nil {
		t.Fatalf("Presets: %v", err)
	}
	if len(list) != 3 || list[0].Name != "Apple" || list[2].Name != "Zebra" {
		t.Fatalf("Presets = %+v", list)
	}

	if err := s.DeletePreset(ctx, "mango"); err != nil {
		t.Fatalf("DeletePreset: %v", err)
	}
	if err := s.DeletePreset(ctx, "mango"); !errors.Is(err, apperrors.ErrPresetNotFound) {
		t.Errorf("second delete err = %v, want ErrPresetNotFound", err)
	}
	if _, err := s.Preset(ctx, "mango"); apperrors.HTTPStatusCode(err) != 404 {
		t.Errorf("Preset after delete status = %d, want 404", apperrors.HTTPStatusCode(err))
	}
}

func TestPresetByName(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()
	saved, err := s.SavePreset(ctx, "Cheap Chairs", PresetInput{Name: "Cheap Chairs", Query: "tags:chair AND price:<100"})
	if err != nil {
		t.Fatalf("SavePreset: %v", err)
	}
	if saved.Key != "cheap-chairs" {
		t.Fatalf("Key = %q, want cheap-chairs", saved.Key)
	}
	for _, key := range []string{"Cheap Chairs", "cheap-chairs"} {
		got, err := s.Preset(ctx, key)
		if err != nil {
			t.Fatalf("Preset(%q): %v", key, err)
		}
		if got.ID != saved.ID {
			t.Errorf("Preset(%q).ID = %s, want %s", key, got.ID, saved.ID)
		}
	}
	if err := s.DeletePreset(ctx, "Cheap Chairs"); err != nil {
		t.Fatalf("DeletePreset: %v", err)
	}
	if _, err := s.Preset(ctx, "cheap-chairs"); !errors.Is(err, apperrors.ErrPresetNotFound) {
		t.Errorf("Preset after delete err = %v, want ErrPresetNotFound", err)
	}
}

func TestSortConfig(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	cfg, err := s.SortConfig(ctx, "user-1")
	if err != nil {
		t.Fatalf("SortConfig: %v", err)
	}
	if cfg.Primary.Field != "name" || cfg.Primary.Order != ranker.Asc {
		t.Errorf("default = %s, want name asc", cfg.String())
	}

	cfg = ranker.SortConfig{
		Primary: ranker.SortField{Field: "price", Order: ranker.Desc},
		Secondary: []ranker.SortField{
			{Field: "name", Order: ranker.Asc},
			{Field: "updatedAt", Order: ranker.Desc},
		},
	}
	if err := s.SaveSortConfig(ctx, "user-1", cfg); err != nil {
		t.Fatalf("SaveSortConfig: %v", err)
	}

	promoted, err := s.PromoteSort(ctx, "user-1", 1)
	if err != nil {
		t.Fatalf("PromoteSort: %v", err)
	}
	if promoted.Primary.Field != "updatedAt" || promoted.Secondary[1].Field != "price" {
		t.Errorf("promoted = %s", promoted.String())
	}
	stored, _ := s.SortConfig(ctx, "user-1")
	if stored.String() != promoted.String() {
		t.Errorf("stored = %s, want %s", stored.String(), promoted.String())
	}

	if _, err := s.PromoteSort(ctx, "user-1", 5); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("out of range promote err = %v, want ErrInvalidInput", err)
	}

	dup := ranker.SortConfig{
		Primary:   ranker.SortField{Field: "name", Order: ranker.Asc},
		Secondary: []ranker.SortField{{Field: "Name", Order: ranker.Desc}},
	}
	if err := s.SaveSortConfig(ctx, "user-1", dup); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Errorf("duplicate field err = %v, want ErrInvalidInput", err)
	}
}

func TestSortConfigCorruptBlob(t *testing.T) {
	mem := NewMemory()
	s := NewStore(mem, "p:")
	_ = mem.Set(context.Background(), "p:sort:k", []byte(`{"primary":{"field":"","order":"sideways"}}`))
	cfg, err := s.SortConfig(context.Background(), "k")
	if err != nil {
		t.Fatalf("SortConfig: %v", err)
	}
	if cfg.Primary.Field != "name" {
		t.Errorf("invalid stored config not replaced by default: %s", cfg.String())
	}

	_ = mem.Set(context.Background(), "p:sort:bad", []byte(`{not json`))
	if _, err := s.SortConfig(context.Background(), "bad"); err == nil {
		t.Error("expected decode error")
	}
}
