package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMuxServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.CatalogItems.Set(42)
	m.SearchQueriesTotal.WithLabelValues("hit").Inc()

	srv := httptest.NewServer(Mux("searcher", reg))
	defer srv.Close()

	tests := []struct {
		path     string
		status   int
		contains string
	}{
		{"/metrics", http.StatusOK, "inventory_catalog_items 42"},
		{"/metrics", http.StatusOK, `search_queries_total{result_type="hit"} 1`},
		{"/", http.StatusOK, "searcher metrics"},
		{"/nope", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path+" "+tt.contains, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			if err != nil {
				t.Fatalf("GET %s: %v", tt.path, err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if !strings.Contains(string(body), tt.contains) {
				t.Errorf("body missing %q:\n%s", tt.contains, body)
			}
		})
	}
}
