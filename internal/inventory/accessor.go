package inventory

import "strings"

type extractor func(*Item) Value

// knownFields maps lowercased field names to typed extractors. Paths whose
// first segment is not listed here resolve inside Attributes.
var knownFields = map[string]extractor{
	"id":          func(it *Item) Value { return StringValue(it.ID) },
	"name":        func(it *Item) Value { return StringValue(it.Name) },
	"description": func(it *Item) Value { return StringValue(it.Description) },
	"category":    func(it *Item) Value { return StringValue(it.Category) },
	"location":    func(it *Item) Value { return StringValue(it.Location) },
	"tags":        func(it *Item) Value { return ListValue(it.Tags) },
	"price":       func(it *Item) Value { return NumberValue(it.Price) },
	"quantity":    func(it *Item) Value { return NumberValue(it.Quantity) },
	"sku":         func(it *Item) Value { return StringValue(it.SKU) },
	"barcode":     func(it *Item) Value { return StringValue(it.Barcode) },
	"lowstock":    func(it *Item) Value { return BoolValue(it.LowStock) },
	"low_stock":   func(it *Item) Value { return BoolValue(it.LowStock) },
	"updatedat":   func(it *Item) Value { return StringValue(it.UpdatedAt) },
	"updated_at":  func(it *Item) Value { return StringValue(it.UpdatedAt) },
	"createdat":   func(it *Item) Value { return StringValue(it.CreatedAt) },
	"created_at":  func(it *Item) Value { return StringValue(it.CreatedAt) },
}

// IsKnownField reports whether name is one of the typed item fields.
func IsKnownField(name string) bool {
	_, ok := knownFields[strings.ToLower(name)]
	return ok
}

// Lookup resolves a dotted field path on the item. Typed fields are matched
// case-insensitively; "attributes.x.y" and bare "x.y" both walk Attributes.
// Any missing intermediate yields a Missing value, as does descending into a
// scalar.
func (it *Item) Lookup(path string) Value {
	if it == nil {
		return Value{}
	}
	path = strings.TrimSpace(path)
	head, rest, nested := strings.Cut(path, ".")
	if ex, ok := knownFields[strings.ToLower(head)]; ok {
		if nested {
			return Value{}
		}
		return ex(it)
	}
	if head == "attributes" {
		if !nested {
			if it.Attributes == nil {
				return Value{}
			}
			return Value{Kind: KindObject}
		}
		return walk(it.Attributes, rest)
	}
	return walk(it.Attributes, path)
}

func walk(node map[string]any, path string) Value {
	segments := strings.Split(path, ".")
	var cur any = node
	for _, seg := range segments {
		m, ok := cur.(map[string]any)
		if !ok || m == nil {
			return Value{}
		}
		cur, ok = m[seg]
		if !ok {
			return Value{}
		}
	}
	return FromAny(cur)
}
