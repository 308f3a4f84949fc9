// Package preferences persists saved filter presets and multi-level sort
// configurations. Both are stored as JSON blobs under caller-chosen storage
// keys, in Redis or, for local runs, in memory.
package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/errors"
)

// ErrNotFound is returned by a Backend for an absent key.
var ErrNotFound = errors.New("preference key not found")

const (
	presetNamespace = "preset:"
	sortNamespace   = "sort:"
	maxNameLength   = 100
	maxQueryLength  = 2000
)

// Backend stores opaque blobs by key.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) (bool, error)
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Preset is a saved filter: a query plus how to sort its results.
type Preset struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Key       string           `json:"key"`
	Query     string           `json:"query"`
	SortBy    ranker.SortKey   `json:"sortBy,omitempty"`
	Order     ranker.Direction `json:"order,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// PresetInput is the caller-editable part of a Preset.
type PresetInput struct {
	Name   string           `json:"name"`
	Query  string           `json:"query"`
	SortBy ranker.SortKey   `json:"sortBy,omitempty"`
	Order  ranker.Direction `json:"order,omitempty"`
}

func (in PresetInput) validate() error {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return apperrors.Invalid("preset name is required")
	case len(name) > maxNameLength:
		return apperrors.Invalid("preset name exceeds %d characters", maxNameLength)
	case len(in.Query) > maxQueryLength:
		return apperrors.Invalid("preset query exceeds %d characters", maxQueryLength)
	case in.SortBy != "" && !in.SortBy.Valid():
		return apperrors.Invalid("unknown sortBy %q", in.SortBy)
	case in.Order != "" && !in.Order.Valid():
		return apperrors.Invalid("order %q must be asc or desc", in.Order)
	}
	return nil
}

// Store reads and writes presets and sort configs through a Backend.
type Store struct {
	backend Backend
	prefix  string
	now     func() time.Time
	logger  *slog.Logger
}

// NewStore returns a Store that namespaces every key with prefix.
func NewStore(backend Backend, prefix string) *Store {
	return &Store{
		backend: backend,
		prefix:  prefix,
		now:     func() time.Time { return time.Now().UTC() },
		logger:  slog.Default().With("component", "preferences"),
	}
}

// Key derives the storage key for a preset name.
func Key(name string) string {
	return slug.Make(name)
}

func (s *Store) presetKey(key string) string { return s.prefix + presetNamespace + key }
func (s *Store) sortKey(key string) string   { return s.prefix + sortNamespace + key }

// SavePreset creates or replaces the preset stored under key. An empty key
// is derived from the name. Replacing keeps the original id and creation
// time.
func (s *Store) SavePreset(ctx context.Context, key string, in PresetInput) (*Preset, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if key == "" {
		key = in.Name
	}
	key = Key(key)
	if key == "" {
		return nil, apperrors.Invalid("preset key is empty after normalisation")
	}

	now := s.now()
	preset := &Preset{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Key:       key,
		Query:     strings.TrimSpace(in.Query),
		SortBy:    in.SortBy,
		Order:     in.Order,
		CreatedAt: now,
		UpdatedAt: now,
	}
	existing, err := s.Preset(ctx, key)
	switch {
	case err == nil:
		preset.ID = existing.ID
		preset.CreatedAt = existing.CreatedAt
	case !errors.Is(err, apperrors.ErrPresetNotFound):
		return nil, err
	}

	if err := s.put(ctx, s.presetKey(key), preset); err != nil {
		return nil, fmt.Errorf("saving preset %s: %w", key, err)
	}
	s.logger.Info("preset saved", "key", key, "id", preset.ID)
	return preset, nil
}

// Preset returns the preset stored under key. Like SavePreset, it accepts a
// preset name as well as its key.
func (s *Store) Preset(ctx context.Context, key string) (*Preset, error) {
	var p Preset
	if err := s.get(ctx, s.presetKey(Key(key)), &p); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperrors.Newf(apperrors.ErrPresetNotFound, http.StatusNotFound, "preset %q not found", key)
		}
		return nil, fmt.Errorf("loading preset %s: %w", key, err)
	}
	return &p, nil
}

// Presets lists every saved preset ordered by name.
func (s *Store) Presets(ctx context.Context) ([]Preset, error) {
	keys, err := s.backend.Keys(ctx, s.prefix+presetNamespace)
	if err != nil {
		return nil, fmt.Errorf("listing presets: %w", err)
	}
	presets := make([]Preset, 0, len(keys))
	for _, k := range keys {
		var p Preset
		if err := s.get(ctx, k, &p); err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			s.logger.Warn("skipping unreadable preset", "key", k, "error", err)
			continue
		}
		presets = append(presets, p)
	}
	sort.Slice(presets, func(i, j int) bool {
		if presets[i].Name != presets[j].Name {
			return presets[i].Name < presets[j].Name
		}
		return presets[i].Key < presets[j].Key
	})
	return presets, nil
}

// DeletePreset removes the preset under key or name.
func (s *Store) DeletePreset(ctx context.Context, key string) error {
	ok, err := s.backend.Delete(ctx, s.presetKey(Key(key)))
	if err != nil {
		return fmt.Errorf("deleting preset %s: %w", key, err)
	}
	if !ok {
		return apperrors.Newf(apperrors.ErrPresetNotFound, http.StatusNotFound, "preset %q not found", key)
	}
	s.logger.Info("preset deleted", "key", key)
	return nil
}

// SortConfig returns the sort config under key, or the default config when
// none was saved.
func (s *Store) SortConfig(ctx context.Context, key string) (ranker.SortConfig, error) {
	var cfg ranker.SortConfig
	if err := s.get(ctx, s.sortKey(key), &cfg); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ranker.DefaultSortConfig(), nil
		}
		return ranker.SortConfig{}, fmt.Errorf("loading sort config %s: %w", key, err)
	}
	if cfg.Secondary == nil {
		cfg.Secondary = []ranker.SortField{}
	}
	if err := cfg.Validate(); err != nil {
		s.logger.Warn("stored sort config invalid, using default", "key", key, "error", err)
		return ranker.DefaultSortConfig(), nil
	}
	return cfg, nil
}

// SaveSortConfig validates and stores cfg under key.
func (s *Store) SaveSortConfig(ctx context.Context, key string, cfg ranker.SortConfig) error {
	if strings.TrimSpace(key) == "" {
		return apperrors.Invalid("sort config key is required")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := s.put(ctx, s.sortKey(key), cfg); err != nil {
		return fmt.Errorf("saving sort config %s: %w", key, err)
	}
	return nil
}

// PromoteSort makes secondary level i the primary of the config under key
// and stores the result.
func (s *Store) PromoteSort(ctx context.Context, key string, i int) (ranker.SortConfig, error) {
	cfg, err := s.SortConfig(ctx, key)
	if err != nil {
		return ranker.SortConfig{}, err
	}
	if err := cfg.Promote(i); err != nil {
		return ranker.SortConfig{}, err
	}
	if err := s.SaveSortConfig(ctx, key, cfg); err != nil {
		return ranker.SortConfig{}, err
	}
	return cfg, nil
}

func (s *Store) get(ctx context.Context, key string, dst any) error {
	data, err := s.backend.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

func (s *Store) put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.backend.Set(ctx, key, data)
}
