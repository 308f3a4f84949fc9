package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Inventory-Search-Platform/internal/searcher/ranker"
)

const testItems = `
items:
  - id: m1
    name: Dell UltraSharp Monitor
    category: Electronics
    tags: [monitor, display]
    price: 420
    quantity: 8
  - id: l1
    name: Dell Latitude Laptop
    category: Computers
    tags: [laptop]
    price: 1350
    quantity: 3
  - id: c1
    name: Office Chair
    category: Furniture
    tags: [chair]
    price: 120
    quantity: 40
    attributes:
      color: black
      name: shadowed
      dims:
        width: 60
`

func writeItems(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.yaml")
	if err := os.WriteFile(path, []byte(testItems), 0o644); err != nil {
		t.Fatalf("writing items: %v", err)
	}
	return path
}

// executeCommand runs invq with args and returns stdout. Flag state is reset
// first because cobra binds flags to package variables.
func executeCommand(args ...string) (string, error) {
	rootArgs = defaultRootFlags()
	searchArgs = searchFlags{}
	suggestArgs = suggestFlags{}
	importArgs = importFlags{notify: true}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	_, err := rootCmd.ExecuteC()
	return out.String(), err
}

func TestParseCmd(t *testing.T) {
	out, err := executeCommand("parse", "category:=Electronics AND price:>100")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, want := range []string{`category:"Electronics" AND price:>100`, "AND", "equals", "greaterThan"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestParseCmdDescribesConditions(t *testing.T) {
	out, err := executeCommand("parse", "price:[10 TO 20] AND !sku:*")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, want := range []string{"Price is between 10 and 20", "Sku does not exist"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFieldsCmd(t *testing.T) {
	out, err := executeCommand("fields", "--items", writeItems(t), "-o", "json")
	if err != nil {
		t.Fatalf("fields: %v", err)
	}
	var got []fieldInfo
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding %s: %v", out, err)
	}
	byPath := make(map[string]fieldInfo, len(got))
	for _, f := range got {
		byPath[f.Path] = f
	}
	if f := byPath["name"]; f.Kind != "typed" || f.Items != 3 {
		t.Errorf("name = %+v, want typed on 3 items", f)
	}
	if f := byPath["description"]; f.Items != 0 {
		t.Errorf("description = %+v, want 0 items", f)
	}
	if f := byPath["color"]; f.Kind != "attribute" || f.Items != 1 {
		t.Errorf("color = %+v, want attribute on 1 item", f)
	}
	if _, ok := byPath["dims.width"]; !ok {
		t.Errorf("nested attribute missing from %v", got)
	}
	if len(got) != len(byPath) {
		t.Errorf("duplicate paths in %v", got)
	}
}

func TestParseCmdJSON(t *testing.T) {
	out, err := executeCommand("parse", "tags:(laptop OR computer)", "-o", "json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var got parseOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding %s: %v", out, err)
	}
	if len(got.Parsed.Conditions) != 1 || got.Parsed.Conditions[0].Operator != "in" {
		t.Errorf("parsed = %+v", got.Parsed)
	}
}

func TestSearchCmd(t *testing.T) {
	items := writeItems(t)
	tests := []struct {
		name    string
		args    []string
		wantIDs []string
	}{
		{"price descending", []string{"search", "name:dell", "--items", items, "--sort", "price", "--order", "desc"}, []string{"l1", "m1"}},
		{"empty query lists all", []string{"search", "--items", items, "--sort", "name"}, []string{"l1", "m1", "c1"}},
		{"multi-level", []string{"search", "--items", items, "--sort-config", "category:desc"}, []string{"c1", "m1", "l1"}},
		{"paged", []string{"search", "--items", items, "--sort", "price", "--limit", "1", "--offset", "1"}, []string{"m1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := executeCommand(append(tt.args, "-o", "json")...)
			if err != nil {
				t.Fatalf("search: %v", err)
			}
			var result executor.SearchResult
			if err := json.Unmarshal([]byte(out), &result); err != nil {
				t.Fatalf("decoding %s: %v", out, err)
			}
			if len(result.Results) != len(tt.wantIDs) {
				t.Fatalf("got %d results, want %d", len(result.Results), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got := result.Results[i].Item.ID; got != id {
					t.Errorf("result %d = %s, want %s", i, got, id)
				}
			}
		})
	}
}

func TestSearchCmdTable(t *testing.T) {
	out, err := executeCommand("search", "name:delll", "--items", writeItems(t))
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if !strings.Contains(out, "0 of 0 items") {
		t.Errorf("missing summary line:\n%s", out)
	}
	if !strings.Contains(out, "did you mean: dell") {
		t.Errorf("missing correction:\n%s", out)
	}
}

func TestSearchCmdErrors(t *testing.T) {
	items := writeItems(t)
	tests := []struct {
		name string
		args []string
	}{
		{"missing file", []string{"search", "x", "--items", filepath.Join(t.TempDir(), "nope.yaml")}},
		{"bad order", []string{"search", "x", "--items", items, "--order", "up"}},
		{"bad output", []string{"search", "x", "--items", items, "-o", "xml"}},
		{"duplicate sort level", []string{"search", "x", "--items", items, "--sort-config", "price:asc,price:desc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := executeCommand(tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestSuggestCmd(t *testing.T) {
	items := writeItems(t)
	out, err := executeCommand("suggest", "monitr", "--items", items, "-o", "json")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	var s executor.Suggestions
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("decoding %s: %v", out, err)
	}
	if len(s.DidYouMean) == 0 || s.DidYouMean[0] != "monitor" {
		t.Errorf("DidYouMean = %v, want monitor first", s.DidYouMean)
	}

	out, err = executeCommand("suggest", "standng desk", "--items", items, "--history", "standing desk")
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if !strings.Contains(out, "standing desk") {
		t.Errorf("history not used:\n%s", out)
	}
}

func TestParseSortConfig(t *testing.T) {
	cfg, err := parseSortConfig("Category, price:DESC")
	if err != nil {
		t.Fatalf("parseSortConfig: %v", err)
	}
	want := []ranker.SortField{{Field: "Category", Order: ranker.Asc}, {Field: "price", Order: ranker.Desc}}
	got := cfg.Levels()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Levels = %v, want %v", got, want)
	}
	if _, err := parseSortConfig(":asc"); err == nil {
		t.Error("expected error for empty field")
	}
}
