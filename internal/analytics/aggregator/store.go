// Package aggregator persists periodic snapshots of the search analytics
// aggregate to PostgreSQL so dashboards keep history across restarts.
package aggregator

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/pkg/postgres"
)

// StatsSource produces the aggregate to snapshot.
type StatsSource interface {
	Stats() analytics.AggregatedStats
}

// SnapshotSchema creates the search_analytics_snapshots table. The scalar
// columns duplicate parts of data so history can be charted in SQL.
var SnapshotSchema = []string{
	`CREATE TABLE IF NOT EXISTS search_analytics_snapshots (
    id               BIGSERIAL PRIMARY KEY,
    total_searches   BIGINT NOT NULL,
    zero_results     BIGINT NOT NULL,
    zero_result_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
    p95_latency_ms   BIGINT NOT NULL DEFAULT 0,
    top_query        TEXT,
    data             JSONB NOT NULL,
    captured_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE INDEX IF NOT EXISTS search_analytics_snapshots_captured_idx
    ON search_analytics_snapshots (captured_at DESC)`,
}

const selectSnapshots = `SELECT id, captured_at, data FROM search_analytics_snapshots ORDER BY captured_at DESC, id DESC LIMIT $1`

// Store persists snapshots in the search_analytics_snapshots table.
type Store struct {
	db     *postgres.Client
	now    func() time.Time
	logger *slog.Logger
}

// NewStore creates a snapshot store.
func NewStore(db *postgres.Client) *Store {
	return &Store{
		db:     db,
		now:    time.Now,
		logger: slog.Default().With("component", "analytics-store"),
	}
}

// EnsureSchema creates the snapshot table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	return s.db.EnsureSchema(ctx, "search_analytics_snapshots", SnapshotSchema...)
}

// SaveSnapshot inserts stats and returns the stored row.
func (s *Store) SaveSnapshot(ctx context.Context, stats analytics.AggregatedStats) (analytics.Snapshot, error) {
	data, err := json.Marshal(stats)
	if err != nil {
		return analytics.Snapshot{}, fmt.Errorf("marshaling stats: %w", err)
	}
	var topQuery sql.NullString
	if len(stats.TopQueries) > 0 {
		topQuery = sql.NullString{String: stats.TopQueries[0].Query, Valid: true}
	}
	snap := analytics.Snapshot{CapturedAt: s.now().UTC(), Stats: stats}
	err = s.db.DB.QueryRowContext(ctx,
		`INSERT INTO search_analytics_snapshots
		     (total_searches, zero_results, zero_result_rate, p95_latency_ms, top_query, data, captured_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		stats.TotalSearches, stats.ZeroResultCount, stats.ZeroResultRate, stats.P95LatencyMs,
		topQuery, data, snap.CapturedAt,
	).Scan(&snap.ID)
	if err != nil {
		return analytics.Snapshot{}, fmt.Errorf("saving analytics snapshot: %w", err)
	}
	s.logger.Debug("analytics snapshot saved",
		"id", snap.ID,
		"total_searches", stats.TotalSearches,
		"zero_results", stats.ZeroResultCount,
	)
	return snap, nil
}

// LatestSnapshot returns the newest snapshot, or nil when none exist.
func (s *Store) LatestSnapshot(ctx context.Context) (*analytics.Snapshot, error) {
	snaps, err := s.ListSnapshots(ctx, 1)
	if err != nil || len(snaps) == 0 {
		return nil, err
	}
	return &snaps[0], nil
}

// ListSnapshots returns up to limit snapshots, newest first. Rows whose data
// no longer decodes are skipped.
func (s *Store) ListSnapshots(ctx context.Context, limit int) ([]analytics.Snapshot, error) {
	rows, err := s.db.DB.QueryContext(ctx, selectSnapshots, limit)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]analytics.Snapshot, 0, limit)
	for rows.Next() {
		var (
			snap analytics.Snapshot
			data []byte
		)
		if err := rows.Scan(&snap.ID, &snap.CapturedAt, &data); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		if err := json.Unmarshal(data, &snap.Stats); err != nil {
			s.logger.Warn("skipping undecodable snapshot", "id", snap.ID, "error", err)
			continue
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

// Prune deletes snapshots captured before cutoff.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.DB.ExecContext(ctx,
		`DELETE FROM search_analytics_snapshots WHERE captured_at < $1`, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("pruning snapshots: %w", err)
	}
	return res.RowsAffected()
}

// StartPeriodicSave snapshots src every interval until ctx is cancelled,
// then takes one final snapshot.
func (s *Store) StartPeriodicSave(ctx context.Context, src StatsSource, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if _, err := s.SaveSnapshot(ctx, src.Stats()); err != nil {
					s.logger.Error("periodic snapshot failed", "error", err)
				}
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if _, err := s.SaveSnapshot(shutdownCtx, src.Stats()); err != nil {
					s.logger.Error("final snapshot failed", "error", err)
				}
				return
			}
		}
	}()
	s.logger.Info("periodic snapshot started", "interval", interval)
}
