package inventory

import (
	"strings"
	"testing"
)

func sampleItem() *Item {
	return &Item{
		ID:        "sku-1",
		Name:      "Dell Monitor",
		Category:  "Electronics",
		Tags:      []string{"display", "dell"},
		Price:     Float(350),
		UpdatedAt: "2024-03-01T10:00:00Z",
		Attributes: map[string]any{
			"priceRange": map[string]any{"min": 300.0, "max": 400},
			"color":      "black",
			"ports":      []any{"hdmi", "dp", 2},
		},
	}
}

func TestLookupKnownFields(t *testing.T) {
	it := sampleItem()
	tests := []struct {
		path string
		kind Kind
		want string
	}{
		{"name", KindString, "Dell Monitor"},
		{"NAME", KindString, "Dell Monitor"},
		{"price", KindNumber, "350"},
		{"quantity", KindMissing, ""},
		{"description", KindMissing, ""},
		{"tags", KindList, "display,dell"},
		{"lowStock", KindBool, "false"},
		{"low_stock", KindBool, "false"},
		{"updated_at", KindString, "2024-03-01T10:00:00Z"},
		{"name.first", KindMissing, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			v := it.Lookup(tt.path)
			if v.Kind != tt.kind {
				t.Fatalf("Lookup(%q).Kind = %v, want %v", tt.path, v.Kind, tt.kind)
			}
			if got := FormatScalar(v); got != tt.want {
				t.Errorf("Lookup(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestLookupAttributes(t *testing.T) {
	it := sampleItem()
	tests := []struct {
		path string
		kind Kind
		want string
	}{
		{"priceRange.min", KindNumber, "300"},
		{"attributes.priceRange.max", KindNumber, "400"},
		{"color", KindString, "black"},
		{"ports", KindList, "hdmi,dp,2"},
		{"priceRange", KindObject, ""},
		{"attributes", KindObject, ""},
		{"priceRange.min.value", KindMissing, ""},
		{"nope.deeper", KindMissing, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			v := it.Lookup(tt.path)
			if v.Kind != tt.kind {
				t.Fatalf("Lookup(%q).Kind = %v, want %v", tt.path, v.Kind, tt.kind)
			}
			if got := FormatScalar(v); got != tt.want {
				t.Errorf("Lookup(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestLookupNilTagsIsEmptyList(t *testing.T) {
	it := &Item{ID: "x", Name: "x"}
	v := it.Lookup("tags")
	if !v.IsList() || len(v.List) != 0 {
		t.Fatalf("Lookup(tags) = %+v, want empty list", v)
	}
	if v := it.Lookup("attributes"); !v.Missing() {
		t.Errorf("Lookup(attributes) on nil map = %+v, want missing", v)
	}
}

func TestToComparableNumber(t *testing.T) {
	tests := []struct {
		name   string
		in     Value
		want   float64
		wantOK bool
	}{
		{"number", Value{Kind: KindNumber, Num: 4.5}, 4.5, true},
		{"numeric string", StringValue(" 12 "), 12, true},
		{"bool", BoolValue(true), 1, true},
		{"text", StringValue("monitor"), 0, false},
		{"missing", Value{}, 0, false},
		{"list", ListValue([]string{"1"}), 0, false},
		{"timestamp", StringValue("1970-01-01T00:00:01Z"), 1000, true},
		{"date only", StringValue("1970-01-02"), 86400000, true},
		{"month and day", StringValue("Oct 5"), 0, false},
		{"fraction with words", StringValue("12/24 pack"), 0, false},
		{"dotted version", StringValue("1.5.2"), 0, false},
		{"date with trailing word", StringValue("2024-03-01 restock"), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToComparableNumber(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseTimeLooseLayouts(t *testing.T) {
	for _, s := range []string{"2024-03-01", "2024-03-01 10:00:00", "2024/03/01", "Fri, 01 Mar 2024 10:00:00 GMT"} {
		if _, ok := ParseTime(s); !ok {
			t.Errorf("ParseTime(%q) failed", s)
		}
	}
	for _, s := range []string{"not a date", "Oct 5", "12/24 pack", "1.5.2", "2024-03-01 restock"} {
		if got, ok := ParseTime(s); ok {
			t.Errorf("ParseTime(%q) = %v, want rejected", s, got)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := sampleItem().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	bad := &Item{Price: Float(0), UpdatedAt: "yesterday-ish"}
	err := bad.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	for _, field := range []string{"id", "name", "updatedAt"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Errorf("missing error for %s in %v", field, verr.Fields)
		}
	}
	if !strings.HasPrefix(err.Error(), "item: id:") {
		t.Errorf("Error() = %q, want sorted field messages", err.Error())
	}
}
