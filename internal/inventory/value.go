package inventory

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindMissing Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is a field value resolved from an item. List elements are already
// rendered as strings.
type Value struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
	List []string
}

// Missing reports whether the field was absent.
func (v Value) Missing() bool {
	return v.Kind == KindMissing
}

// IsList reports whether the value is array-valued.
func (v Value) IsList() bool {
	return v.Kind == KindList
}

// StringValue wraps s; the empty string is treated as an absent field.
func StringValue(s string) Value {
	if s == "" {
		return Value{}
	}
	return Value{Kind: KindString, Str: s}
}

// NumberValue wraps an optional number.
func NumberValue(n *float64) Value {
	if n == nil {
		return Value{}
	}
	return Value{Kind: KindNumber, Num: *n}
}

// BoolValue wraps b.
func BoolValue(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}

// ListValue wraps a list. A nil list is an empty list, never missing.
func ListValue(list []string) Value {
	if list == nil {
		list = []string{}
	}
	return Value{Kind: KindList, List: list}
}

// FromAny converts a decoded JSON/YAML value into a Value.
func FromAny(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Value{}
	case string:
		return StringValue(v)
	case bool:
		return BoolValue(v)
	case float64:
		return Value{Kind: KindNumber, Num: v}
	case float32:
		return Value{Kind: KindNumber, Num: float64(v)}
	case int:
		return Value{Kind: KindNumber, Num: float64(v)}
	case int64:
		return Value{Kind: KindNumber, Num: float64(v)}
	case int32:
		return Value{Kind: KindNumber, Num: float64(v)}
	case uint64:
		return Value{Kind: KindNumber, Num: float64(v)}
	case []string:
		return ListValue(v)
	case []any:
		list := make([]string, 0, len(v))
		for _, elem := range v {
			list = append(list, FormatScalar(FromAny(elem)))
		}
		return ListValue(list)
	case map[string]any:
		return Value{Kind: KindObject}
	default:
		return Value{}
	}
}

// FormatScalar renders a value the way it appears in text comparisons,
// without lowercasing.
func FormatScalar(v Value) string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindList:
		return strings.Join(v.List, ",")
	default:
		return ""
	}
}

// ToComparableString is the lowercase text form used by text operators.
func ToComparableString(v Value) string {
	return strings.ToLower(FormatScalar(v))
}

// ToComparableNumber coerces a value for numeric operators. The second
// result is false when the value is incomparable; callers treat that as a
// non-match. Strings that are not numbers are tried as timestamps and compared
// as Unix milliseconds.
func ToComparableNumber(v Value) (float64, bool) {
	switch v.Kind {
	case KindNumber:
		if math.IsNaN(v.Num) {
			return 0, false
		}
		return v.Num, true
	case KindBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	case KindString:
		return ParseNumber(v.Str)
	default:
		return 0, false
	}
}

// ParseNumber parses a number or, failing that, a timestamp in Unix
// milliseconds.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	if t, ok := ParseTime(s); ok {
		return float64(t.UnixMilli()), true
	}
	return 0, false
}

var exactLayouts = []string{time.RFC3339Nano, time.RFC1123Z, time.RFC1123, time.RFC850, time.ANSIC}

// ParseTime accepts RFC 3339 and the looser layouts dateparse understands.
// The detected layout must cover the whole input and spell out a four-digit
// year, so text such as "Oct 5", "1.5.2" or "12/24 pack" is not a time.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range exactLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	layout, err := dateparse.ParseFormat(s)
	if err != nil || layout == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(layout, s, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	if t.Year() < 1000 || !strings.Contains(s, strconv.Itoa(t.Year())) {
		return time.Time{}, false
	}
	return t, true
}
