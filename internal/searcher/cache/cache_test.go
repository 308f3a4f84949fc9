package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/searcher/ranker"
)

type memStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet bool
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return nil, errors.New("connection refused")
	}
	v, ok := m.data[key]
	if !ok {
		return nil, redis.Nil
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) FlushPrefix(_ context.Context, prefix string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

func TestKey(t *testing.T) {
	base := executor.Request{Query: "name:dell AND price:>100", SortBy: ranker.SortPrice, Limit: 10}
	tests := []struct {
		name string
		a, b executor.Request
		va   uint64
		vb   uint64
		same bool
	}{
		{"identical", base, base, 1, 1, true},
		{"surrounding space", base, executor.Request{Query: "  name:dell AND price:>100 ", SortBy: ranker.SortPrice, Limit: 10}, 1, 1, true},
		{"catalog version", base, base, 1, 2, false},
		{"different query", base, executor.Request{Query: "name:hp AND price:>100", SortBy: ranker.SortPrice, Limit: 10}, 1, 1, false},
		{"different limit", base, executor.Request{Query: base.Query, SortBy: ranker.SortPrice, Limit: 20}, 1, 1, false},
		{"different order", base, executor.Request{Query: base.Query, SortBy: ranker.SortPrice, Order: ranker.Desc, Limit: 10}, 1, 1, false},
		{"highlight", base, executor.Request{Query: base.Query, SortBy: ranker.SortPrice, Limit: 10, Highlight: true}, 1, 1, false},
		{"multi sort", base, executor.Request{Query: base.Query, Limit: 10, SortConfig: &ranker.SortConfig{Primary: ranker.SortField{Field: "price", Order: ranker.Asc}}}, 1, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ka, kb := Key(tt.a, tt.va), Key(tt.b, tt.vb)
			if (ka == kb) != tt.same {
				t.Errorf("Key equal = %v, want %v\n  %s\n  %s", ka == kb, tt.same, Fingerprint(tt.a, tt.va), Fingerprint(tt.b, tt.vb))
			}
			if !strings.HasPrefix(ka, keyPrefix) {
				t.Errorf("key %q lacks prefix %q", ka, keyPrefix)
			}
		})
	}
}

func TestGetOrCompute(t *testing.T) {
	c := New(newMemStore(), time.Minute, nil)
	ctx := context.Background()
	req := executor.Request{Query: "name:dell"}
	var calls int
	compute := func() (*executor.SearchResult, error) {
		calls++
		return &executor.SearchResult{Query: "name:dell", TotalHits: 3, Results: []executor.Hit{}}, nil
	}

	res, hit, err := c.GetOrCompute(ctx, req, 1, compute)
	if err != nil || hit {
		t.Fatalf("first call: hit=%v err=%v", hit, err)
	}
	if res.TotalHits != 3 {
		t.Errorf("TotalHits = %d, want 3", res.TotalHits)
	}

	res, hit, err = c.GetOrCompute(ctx, req, 1, compute)
	if err != nil || !hit {
		t.Fatalf("second call: hit=%v err=%v", hit, err)
	}
	if res.TotalHits != 3 || calls != 1 {
		t.Errorf("cached TotalHits = %d, calls = %d", res.TotalHits, calls)
	}

	if _, hit, _ = c.GetOrCompute(ctx, req, 2, compute); hit {
		t.Error("hit across catalog versions")
	}
	hits, misses := c.Stats()
	if hits != 1 || misses != 2 {
		t.Errorf("Stats = %d hits %d misses, want 1 and 2", hits, misses)
	}
}

func TestGetOrComputeError(t *testing.T) {
	store := newMemStore()
	c := New(store, time.Minute, nil)
	boom := errors.New("boom")
	_, _, err := c.GetOrCompute(context.Background(), executor.Request{Query: "x"}, 1, func() (*executor.SearchResult, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if len(store.data) != 0 {
		t.Error("failed computation was cached")
	}
}

func TestGetOrComputeStoreDown(t *testing.T) {
	store := newMemStore()
	store.failGet = true
	c := New(store, time.Minute, nil)
	res, hit, err := c.GetOrCompute(context.Background(), executor.Request{Query: "x"}, 1, func() (*executor.SearchResult, error) {
		return &executor.SearchResult{TotalHits: 1}, nil
	})
	if err != nil || hit || res.TotalHits != 1 {
		t.Errorf("store failure not treated as miss: res=%+v hit=%v err=%v", res, hit, err)
	}
}

func TestGetOrComputeSharesConcurrentMisses(t *testing.T) {
	c := New(newMemStore(), time.Minute, nil)
	release := make(chan struct{})
	var calls atomic.Int32
	compute := func() (*executor.SearchResult, error) {
		calls.Add(1)
		<-release
		return &executor.SearchResult{TotalHits: 7}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, _, err := c.GetOrCompute(context.Background(), executor.Request{Query: "q"}, 1, compute)
			if err != nil || res.TotalHits != 7 {
				t.Errorf("res=%+v err=%v", res, err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	if got := calls.Load(); got != 1 {
		t.Errorf("compute ran %d times, want 1", got)
	}
}

func TestDisabledCache(t *testing.T) {
	c := New(nil, time.Minute, nil)
	if c.Enabled() {
		t.Fatal("nil store reported enabled")
	}
	var calls int
	for i := 0; i < 2; i++ {
		_, hit, err := c.GetOrCompute(context.Background(), executor.Request{}, 1, func() (*executor.SearchResult, error) {
			calls++
			return &executor.SearchResult{}, nil
		})
		if err != nil || hit {
			t.Fatalf("hit=%v err=%v", hit, err)
		}
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if n, err := c.Invalidate(context.Background()); n != 0 || err != nil {
		t.Errorf("Invalidate = %d, %v", n, err)
	}
}

func TestInvalidate(t *testing.T) {
	store := newMemStore()
	store.data["preset:keep"] = []byte("{}")
	c := New(store, time.Minute, nil)
	ctx := context.Background()
	for _, q := range []string{"a", "b", "c"} {
		c.Set(ctx, executor.Request{Query: q}, 1, &executor.SearchResult{})
	}
	n, err := c.Invalidate(ctx)
	if err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if n != 3 {
		t.Errorf("deleted %d keys, want 3", n)
	}
	if _, ok := store.data["preset:keep"]; !ok {
		t.Error("Invalidate removed a non-search key")
	}
}
