// Package inventory defines the item record the search core operates on and
// the typed field accessor used to read item fields by dotted path.
package inventory

// Item is one inventory record. The search core treats items as read-only.
// Optional text fields are empty when absent; optional numbers are nil.
type Item struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Category    string         `json:"category,omitempty" yaml:"category,omitempty"`
	Location    string         `json:"location,omitempty" yaml:"location,omitempty"`
	Tags        []string       `json:"tags" yaml:"tags"`
	Price       *float64       `json:"price,omitempty" yaml:"price,omitempty"`
	Quantity    *float64       `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	SKU         string         `json:"sku,omitempty" yaml:"sku,omitempty"`
	Barcode     string         `json:"barcode,omitempty" yaml:"barcode,omitempty"`
	LowStock    bool           `json:"lowStock,omitempty" yaml:"lowStock,omitempty"`
	UpdatedAt   string         `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
	CreatedAt   string         `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Float returns a pointer to v, for building items with optional numbers.
func Float(v float64) *float64 {
	return &v
}

// SuggestedFields is the field list offered to query builders. The evaluator
// accepts any dotted path, not just these.
var SuggestedFields = []string{
	"name", "description", "tags", "category", "location",
	"barcode", "price", "quantity", "updatedAt",
}
