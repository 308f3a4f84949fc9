package query

import (
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		query string
		sep   string
		want  []string
	}{
		{"simple and", "name:dell AND price:>100", sepAnd, []string{"name:dell", "price:>100"}},
		{"quoted separator", `name:"a AND b" AND price:>1`, sepAnd, []string{`name:"a AND b"`, "price:>1"}},
		{"parenthesised separator", "tags:(a OR b) OR name:c", sepOr, []string{"tags:(a OR b)", "name:c"}},
		{"escaped quote", `name:"say \" AND x" AND y`, sepAnd, []string{`name:"say \" AND x"`, "y"}},
		{"unbalanced quote", `name:"open AND price:>1`, sepAnd, []string{`name:"open AND price:>1`}},
		{"unbalanced paren", "tags:(a AND b", sepAnd, []string{"tags:(a AND b"}},
		{"empty middle", "a AND  AND b", sepAnd, []string{"a", "", "b"}},
		{"trailing separator", "a AND ", sepAnd, []string{"a"}},
		{"no separator", "  name:dell  ", sepAnd, []string{"name:dell"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.query, tt.sep)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestParseCondition(t *testing.T) {
	tests := []struct {
		clause string
		want   Condition
	}{
		{"name:dell", Condition{Field: "name", Operator: OpContains, Value: "dell"}},
		{`name:"Dell Monitor"`, Condition{Field: "name", Operator: OpEquals, Value: "Dell Monitor"}},
		{"category:=Electronics", Condition{Field: "category", Operator: OpEquals, Value: "Electronics"}},
		{"category:!=Toys", Condition{Field: "category", Operator: OpNotEquals, Value: "Toys"}},
		{"price:>100", Condition{Field: "price", Operator: OpGreaterThan, Value: "100"}},
		{"quantity:<5", Condition{Field: "quantity", Operator: OpLessThan, Value: "5"}},
		{"name:^Dell", Condition{Field: "name", Operator: OpStartsWith, Value: "Dell"}},
		{"name:Monitor$", Condition{Field: "name", Operator: OpEndsWith, Value: "Monitor"}},
		{"sku:*", Condition{Field: "sku", Operator: OpExists}},
		{"!sku:*", Condition{Field: "sku", Operator: OpNotExists, Negated: true}},
		{"price:[10 TO 20]", Condition{Field: "price", Operator: OpBetween, Value: "10", ValueEnd: "20"}},
		{"price:[10]", Condition{Field: "price", Operator: OpBetween, Value: "10"}},
		{`tags:(laptop OR "gaming pc")`, Condition{Field: "tags", Operator: OpIn, Value: "laptop, gaming pc"}},
		{"!tags:(a OR b)", Condition{Field: "tags", Operator: OpNotIn, Value: "a, b", Negated: true}},
		{"!name:dell", Condition{Field: "name", Operator: OpContains, Value: "dell", Negated: true}},
		{"dell", Condition{Field: "name", Operator: OpContains, Value: "dell"}},
		{"!dell", Condition{Field: "name", Operator: OpContains, Value: "dell"}},
		{"updatedAt:>2024-01-01T00:00:00Z", Condition{Field: "updatedAt", Operator: OpGreaterThan, Value: "2024-01-01T00:00:00Z"}},
		{"priceRange.min:<10", Condition{Field: "priceRange.min", Operator: OpLessThan, Value: "10"}},
		{"name:~weird", Condition{Field: "name", Operator: OpContains, Value: "~weird"}},
		{":dell", Condition{Field: "", Operator: OpContains, Value: "dell"}},
		{"!", Condition{Field: "name", Operator: OpContains, Value: ""}},
	}
	for _, tt := range tests {
		t.Run(tt.clause, func(t *testing.T) {
			got, ok := ParseCondition(tt.clause)
			if !ok {
				t.Fatalf("ParseCondition(%q) dropped the clause", tt.clause)
			}
			if got != tt.want {
				t.Errorf("ParseCondition(%q) = %+v, want %+v", tt.clause, got, tt.want)
			}
		})
	}
}

func TestParseConditionDropsIncomplete(t *testing.T) {
	for _, clause := range []string{"name:", "name:   ", "!name:", ":", ""} {
		if cond, ok := ParseCondition(clause); ok {
			t.Errorf("ParseCondition(%q) = %+v, want dropped", clause, cond)
		}
	}
}

func TestParseLogicalOperator(t *testing.T) {
	tests := []struct {
		raw   string
		op    LogicalOperator
		count int
	}{
		{"", LogicalAnd, 0},
		{"dell", LogicalAnd, 1},
		{"name:dell AND price:>1", LogicalAnd, 2},
		{"name:dell OR price:>1", LogicalOr, 2},
		{"name:dell AND price:>1 OR sku:*", LogicalOr, 2},
		{"name:dell AND  AND price:>1", LogicalAnd, 2},
		{"name: AND price:>1", LogicalAnd, 1},
		{"tags:(a OR b)", LogicalOr, 1},
		{"name:dell AND tags:(a OR b)", LogicalOr, 1},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			q := Parse(tt.raw)
			if q.LogicalOperator != tt.op {
				t.Errorf("LogicalOperator = %s, want %s", q.LogicalOperator, tt.op)
			}
			if len(q.Conditions) != tt.count {
				t.Errorf("len(Conditions) = %d, want %d (%+v)", len(q.Conditions), tt.count, q.Conditions)
			}
		})
	}
}

func TestParseStartsWithOr(t *testing.T) {
	q := Parse("name:^Dell OR name:^Apple")
	want := &ParsedQuery{
		LogicalOperator: LogicalOr,
		Conditions: []Condition{
			{Field: "name", Operator: OpStartsWith, Value: "Dell"},
			{Field: "name", Operator: OpStartsWith, Value: "Apple"},
		},
	}
	if !reflect.DeepEqual(q, want) {
		t.Errorf("Parse = %+v, want %+v", q, want)
	}
}

func TestParseEmptyQueryHasNoConditions(t *testing.T) {
	q := Parse("   ")
	if q.Conditions == nil || len(q.Conditions) != 0 {
		t.Fatalf("Conditions = %v, want empty non-nil slice", q.Conditions)
	}
	if !q.Empty() {
		t.Error("Empty() = false for blank query")
	}
}

func BenchmarkParse(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Parse(`category:=Electronics AND price:[100 TO 500] AND name:"Dell Monitor" AND !sku:*`)
	}
}
